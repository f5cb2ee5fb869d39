// Package testutil provides shared test helpers for setting up vaults.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lifeos-dev/lifeos/internal/vault/local"
)

// TestVault creates a temporary selected vault backed by the local
// adapter. The global config file lives next to the vault so nothing
// leaks outside the test's temp dir.
func TestVault(t *testing.T) (string, *local.Adapter) {
	t.Helper()
	dir := t.TempDir()
	vaultDir := filepath.Join(dir, "vault")
	if err := os.MkdirAll(vaultDir, 0o755); err != nil {
		t.Fatal(err)
	}
	b := local.NewWithConfig(filepath.Join(dir, ".life-os-vault"))
	if err := b.SetVaultPath(context.Background(), vaultDir); err != nil {
		t.Fatal(err)
	}
	return vaultDir, b
}

// WriteVaultFile writes a file under the vault directory, creating
// parent directories as needed.
func WriteVaultFile(t *testing.T, vaultDir, rel, content string) {
	t.Helper()
	full := filepath.Join(vaultDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
