package vault

import (
	"context"
	"fmt"

	"github.com/lifeos-dev/lifeos/internal/vault/grant"
	"github.com/lifeos-dev/lifeos/internal/vault/local"
	"github.com/lifeos-dev/lifeos/internal/vault/remote"
	"github.com/lifeos-dev/lifeos/internal/vault/sandbox"
)

// Mode selects which adapter backs the vault.
type Mode string

const (
	// ModeLocal runs directly against the file system with host
	// authority.
	ModeLocal Mode = "local"
	// ModeRemote forwards every operation to a host process over MCP
	// stdio.
	ModeRemote Mode = "remote"
	// ModeSandbox confines access to one granted directory and has no
	// host authority.
	ModeSandbox Mode = "sandbox"
)

// Options configures New.
type Options struct {
	Mode Mode

	// ConfigPath overrides the local adapter's global config file
	// (default ~/.life-os-vault).
	ConfigPath string

	// HostCommand and HostArgs launch the host process for ModeRemote.
	HostCommand string
	HostArgs    []string

	// GrantDB is the sandbox grant database path. Prober overrides the
	// permission prober (defaults to grant.OSProber).
	GrantDB string
	Prober  grant.Prober
}

// New builds the backend for the configured mode. The adapter choice
// is final for the lifetime of the returned Backend.
func New(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Mode {
	case ModeLocal, "":
		if opts.ConfigPath != "" {
			return local.NewWithConfig(opts.ConfigPath), nil
		}
		return local.New()

	case ModeRemote:
		if opts.HostCommand == "" {
			return nil, fmt.Errorf("vault: remote mode needs a host command")
		}
		return remote.Dial(ctx, opts.HostCommand, opts.HostArgs...)

	case ModeSandbox:
		if opts.GrantDB == "" {
			return nil, fmt.Errorf("vault: sandbox mode needs a grant database path")
		}
		store, err := grant.Open(opts.GrantDB)
		if err != nil {
			return nil, err
		}
		prober := opts.Prober
		if prober == nil {
			prober = grant.OSProber{}
		}

		adapter := sandbox.New()
		root, rec, ok, err := grant.Restore(ctx, store, prober)
		if err != nil {
			store.Close()
			return nil, err
		}
		if ok {
			adapter.InstallRoot(root, rec.Path)
		}
		return &sandboxBackend{Adapter: adapter, store: store}, nil

	default:
		return nil, fmt.Errorf("vault: unknown mode %q", opts.Mode)
	}
}

// sandboxBackend pairs the sandbox adapter with the grant store so a
// newly selected vault survives a restart.
type sandboxBackend struct {
	*sandbox.Adapter
	store *grant.Store
}

func (b *sandboxBackend) SetVaultPath(ctx context.Context, path string) error {
	if err := b.Adapter.SetVaultPath(ctx, path); err != nil {
		return err
	}
	return b.store.Save(grant.Record{Path: path, Display: path})
}

// Compile-time adapter checks.
var (
	_ Backend = (*local.Adapter)(nil)
	_ Backend = (*remote.Adapter)(nil)
	_ Backend = (*sandbox.Adapter)(nil)
	_ Backend = (*sandboxBackend)(nil)
)
