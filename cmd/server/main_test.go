package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"silosremeco/backend/internal/config"
	"silosremeco/backend/internal/pricing"
)

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	cases := []config.Config{
		{FormTokenSecret: "short", AllowedOrigin: "https://silosremeco.com"},
		{FormTokenSecret: "0123456789abcdef0123456789abcdef", AllowedOrigin: "*"},
		{FormTokenSecret: "0123456789abcdef0123456789abcdef", AllowedOrigin: "https://silosremeco.com", SMTPHost: "smtp.example.com"},
	}
	for i, cfg := range cases {
		if err := validateSecurityConfig(cfg); err == nil {
			t.Fatalf("case %d: expected weak security config to be rejected", i)
		}
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{
		FormTokenSecret: "0123456789abcdef0123456789abcdef",
		AllowedOrigin:   "https://silosremeco.com",
		SMTPHost:        "smtp.example.com",
		EmailReceiver:   "ventas@silosremeco.com",
	})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("PRICING_APPLY_TAX", "true")

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := root.Execute()
	return out.String(), err
}

func TestQuoteCommandPrintsSeededPrice(t *testing.T) {
	out, err := runCLI(t, "quote", "8")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}

	formatter := pricing.NewFormatter(pricing.DefaultLocale, pricing.DefaultSymbol)
	if !strings.HasPrefix(out, "8\t"+formatter.Format(3434130)+"\n") {
		t.Fatalf("unexpected quote output %q", out)
	}
	if !strings.Contains(out, "base de fibra") {
		t.Fatalf("expected fiber base line, got %q", out)
	}
}

func TestQuoteCommandUnknownItem(t *testing.T) {
	if _, err := runCLI(t, "quote", "no-existe"); err == nil {
		t.Fatalf("expected error for unknown item")
	}
}

func TestSitemapCommandWritesXML(t *testing.T) {
	out, err := runCLI(t, "sitemap")
	if err != nil {
		t.Fatalf("sitemap: %v", err)
	}
	if !strings.Contains(out, "<urlset") || !strings.Contains(out, "/silos/aereos/8") {
		t.Fatalf("unexpected sitemap output %q", out)
	}
}

func TestQuoteCommandKeepsFileLogSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "silos.log")
	t.Setenv("LOG_OUTPUT", "file")
	t.Setenv("LOG_FILE", path)
	t.Setenv("LOG_FORMAT", "json")

	out, err := runCLI(t, "quote", "8")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if strings.Contains(out, "repository") {
		t.Fatalf("log entries leaked into command output %q", out)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(raw), `"message":"repository: in-memory"`) {
		t.Fatalf("expected startup entries in the log file, got %q", raw)
	}
}
