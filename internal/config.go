package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/lifeos-dev/lifeos/internal/vault"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App   ApplicationConfig `yaml:"app"`
	Vault VaultConfig       `yaml:"vault"`
	Auth  AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig selects the storage adapter and its parameters.
//
// Mode picks the adapter once at startup:
//   - "local" (default): direct filesystem access plus host integrations.
//   - "remote": every operation is forwarded to HostCommand over stdio.
//   - "sandbox": capability-scoped access through a persisted root grant.
type VaultConfig struct {
	Mode       string   `yaml:"mode"`
	Path       string   `yaml:"path"`
	ConfigPath string   `yaml:"config_path"`
	HostCmd    string   `yaml:"host_command"`
	HostArgs   []string `yaml:"host_args"`
	GrantDB    string   `yaml:"grant_db"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = string(vault.ModeLocal)
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(
			string(vault.ModeLocal), string(vault.ModeRemote), string(vault.ModeSandbox))),
	); err != nil {
		return err
	}
	if c.Mode == string(vault.ModeRemote) && c.HostCmd == "" {
		return fmt.Errorf("vault: mode is %q but host_command is empty", c.Mode)
	}
	if c.Mode == string(vault.ModeSandbox) && c.GrantDB == "" {
		return fmt.Errorf("vault: mode is %q but grant_db is empty", c.Mode)
	}
	return nil
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Mode: string(vault.ModeLocal),
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
