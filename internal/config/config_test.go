package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDoesNotInjectSecretDefaults(t *testing.T) {
	t.Setenv("FORM_TOKEN_SECRET", "")
	t.Setenv("RECAPTCHA_SECRET", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.FormTokenSecret != "" {
		t.Fatalf("expected empty FORM_TOKEN_SECRET when unset, got %q", cfg.FormTokenSecret)
	}
	if cfg.RecaptchaSecret != "" {
		t.Fatalf("expected empty RECAPTCHA_SECRET when unset, got %q", cfg.RecaptchaSecret)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PreferencesTTL() != 5*time.Minute {
		t.Fatalf("expected 5m preferences ttl, got %s", cfg.PreferencesTTL())
	}
	if !cfg.ApplyTax {
		t.Fatalf("expected tax deduction enabled by default")
	}
	if cfg.DisplayLocale != "es-AR" || cfg.CurrencySymbol != "$" {
		t.Fatalf("unexpected display defaults %q %q", cfg.DisplayLocale, cfg.CurrencySymbol)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("expected :8080, got %s", cfg.Address())
	}
}

func TestLoadReadsEnvFileWithoutOverridingProcessEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "PRICING_APPLY_TAX=false\nPORT=9999\nPREFERENCES_TTL_SECONDS=-3\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("PORT", "7070")
	t.Cleanup(func() {
		_ = os.Unsetenv("PRICING_APPLY_TAX")
		_ = os.Unsetenv("PREFERENCES_TTL_SECONDS")
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ApplyTax {
		t.Fatalf("expected env file to disable tax deduction")
	}
	if cfg.Port != "7070" {
		t.Fatalf("expected process env to win, got %s", cfg.Port)
	}
	if cfg.PreferencesTTLSeconds != 300 {
		t.Fatalf("expected invalid ttl to fall back to 300, got %d", cfg.PreferencesTTLSeconds)
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected parse error for non-numeric REDIS_DB")
	}
}
