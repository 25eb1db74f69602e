package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadTemplateMatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bitsctl.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected existing config to be preserved")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite template: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("template drifted from defaults:\n got=%+v\nwant=%+v", cfg, Default())
	}
}

func TestLoadOverridesOnlyDefinedKeys(t *testing.T) {
	path := writeConfig(t, `
[decoder]
max_depth = 16
max_batch = 8
workers = 2

[server]
cors_origins = [" http://example.test ", ""]
token = " s3cret "

[log]
level = "debug"
json = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Default()
	if cfg.Decoder.MaxDepth != 16 || cfg.Decoder.MaxBatch != 8 || cfg.Decoder.Workers != 2 {
		t.Fatalf("unexpected decoder section: %+v", cfg.Decoder)
	}
	if cfg.Decoder.MaxDigits != def.Decoder.MaxDigits {
		t.Fatalf("max_digits should keep default, got %d", cfg.Decoder.MaxDigits)
	}
	if cfg.Server.Addr != def.Server.Addr {
		t.Fatalf("addr should keep default, got %q", cfg.Server.Addr)
	}
	if len(cfg.Server.CorsOrigins) != 1 || cfg.Server.CorsOrigins[0] != "http://example.test" {
		t.Fatalf("unexpected cors origins: %+v", cfg.Server.CorsOrigins)
	}
	if cfg.Server.Token != "s3cret" {
		t.Fatalf("unexpected token %q", cfg.Server.Token)
	}
	if !cfg.Log.Timestamp {
		t.Fatalf("timestamp should keep default")
	}

	limits := cfg.Decoder.Limits()
	if limits.MaxDepth != 16 || limits.MaxBatch != 8 || limits.MaxDigits != def.Decoder.MaxDigits {
		t.Fatalf("unexpected limits: %+v", limits)
	}
	lc := cfg.Log.Logging()
	if lc.Level != zerolog.DebugLevel || !lc.JSON {
		t.Fatalf("unexpected logging config: %+v", lc)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"negative depth": "[decoder]\nmax_depth = -1\n",
		"negative batch": "[decoder]\nmax_batch = -1\n",
		"empty addr":     "[server]\naddr = \"  \"\n",
		"bad level":      "[log]\nlevel = \"loud\"\n",
		"unknown key":    "[decoder]\nmax_width = 3\n",
		"bad toml":       "[decoder\n",
		"half tls":       "[server]\ntls_cert = \"a.crt\"\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	_, err := Load(writeConfig(t, "[decoder]\nmax_width = 3\n"))
	if err == nil || !strings.Contains(err.Error(), "decoder.max_width") {
		t.Fatalf("expected unknown key to be named, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}
