package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestVaultConfig_EmptyModeDefaultsLocal(t *testing.T) {
	cfg := VaultConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to local: %v", err)
	}
	if cfg.Mode != "local" {
		t.Errorf("mode = %q, want local", cfg.Mode)
	}
}

func TestVaultConfig_RemoteNeedsHostCommand(t *testing.T) {
	cfg := VaultConfig{Mode: "remote"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("remote mode without host_command should fail")
	}
	cfg.HostCmd = "lifeos-host"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("remote mode with host_command should pass: %v", err)
	}
}

func TestVaultConfig_SandboxNeedsGrantDB(t *testing.T) {
	cfg := VaultConfig{Mode: "sandbox"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("sandbox mode without grant_db should fail")
	}
	cfg.GrantDB = "/tmp/grants.db"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sandbox mode with grant_db should pass: %v", err)
	}
}

func TestVaultConfig_InvalidMode(t *testing.T) {
	cfg := VaultConfig{Mode: "magic"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.App.HTTP.Address() != ":8080" {
		t.Errorf("address = %q", cfg.App.HTTP.Address())
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}
