package internal

import (
	"strings"
	"testing"
	"time"
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

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestPanelConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Panel.Location() != time.Local {
		t.Errorf("default location = %v, want Local", cfg.Panel.Location())
	}
}

func TestPanelConfig_EmptyTimezoneDefaultsLocal(t *testing.T) {
	cfg := PanelConfig{EventBuffer: 1}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty timezone should default to Local: %v", err)
	}
	if cfg.Timezone != "Local" {
		t.Errorf("timezone = %q, want Local", cfg.Timezone)
	}
}

func TestPanelConfig_Timezone(t *testing.T) {
	cfg := PanelConfig{Timezone: "Europe/Berlin", EventBuffer: 1}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid zone rejected: %v", err)
	}
	if got := cfg.Location().String(); got != "Europe/Berlin" {
		t.Errorf("location = %q", got)
	}

	cfg.Timezone = "Mars/Olympus"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown zone should fail validation")
	}
}

func TestPanelConfig_Bounds(t *testing.T) {
	if err := (&PanelConfig{Timezone: "UTC", EventBuffer: 0}).Validate(); err == nil {
		t.Error("zero event buffer should fail")
	}
	if err := (&PanelConfig{Timezone: "UTC", EventBuffer: 1, InitialHeight: -1}).Validate(); err == nil {
		t.Error("negative initial height should fail")
	}
}

func TestFullConfig_PanelValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Panel.EventBuffer = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch panel error")
	}
}
