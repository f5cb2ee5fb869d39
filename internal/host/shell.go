package host

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// RunShellCommand executes a program with arguments and returns its
// combined output. Non-zero exit is an error carrying the output so the
// caller can surface what the command printed.
func RunShellCommand(ctx context.Context, command string, args []string) (string, error) {
	if command == "" {
		return "", fmt.Errorf("host: empty command")
	}
	out, err := exec.CommandContext(ctx, command, args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("host: %s: %w: %s", command, err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// RunShortcut runs a named macOS Shortcuts automation and returns its
// output.
func RunShortcut(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("host: empty shortcut name")
	}
	return RunShellCommand(ctx, "shortcuts", []string{"run", name})
}

// OpenInFileManager reveals a path in the platform file manager.
func OpenInFileManager(ctx context.Context, path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", path)
	case "windows":
		cmd = exec.CommandContext(ctx, "explorer", path)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", path)
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("host: open %s: %w: %s", path, err, strings.TrimSpace(string(out)))
	}
	return nil
}
