package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/lifeos-dev/lifeos/internal"
	"github.com/lifeos-dev/lifeos/internal/hostserver"
	"github.com/lifeos-dev/lifeos/internal/vault/local"
	pkgconfig "github.com/lifeos-dev/lifeos/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

// initVault scaffolds a new vault at the given path and records it as
// the selected vault.
func initVault(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: lifeos init <path>")
	}
	backend, err := local.New()
	if err != nil {
		return err
	}
	if err := backend.InitVault(ctx, path); err != nil {
		return fmt.Errorf("init vault: %w", err)
	}
	fmt.Printf("vault initialized at %s\n", path)
	return nil
}

// host runs the MCP stdio server over the local adapter so a remote
// client can drive the full operation set.
func host(_ context.Context, _ *cli.Command) error {
	backend, err := local.New()
	if err != nil {
		return err
	}
	return hostserver.New(backend).ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "lifeos",
		Usage:  "Personal knowledge and task manager over a Markdown vault",
		Action: serve,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server (default)",
				Action: serve,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:      "init",
				Usage:     "Scaffold a new vault directory",
				ArgsUsage: "<path>",
				Action:    initVault,
			},
			{
				Name:   "host",
				Usage:  "Serve the vault operation set over stdio for remote clients",
				Action: host,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
