package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetDefaults(t *testing.T) {
	c := &Config{}
	c.SetDefaults()
	if len(c.Extract.BlockedExtensions) != 26 {
		t.Fatalf("expected 26 blocked extensions, got %d", len(c.Extract.BlockedExtensions))
	}
	if c.Extract.BlockedExtensions[0] != ".js" || c.Extract.BlockedExtensions[25] != ".eot" {
		t.Fatalf("unexpected blocklist bounds: %v", c.Extract.BlockedExtensions)
	}
	if len(c.Extract.APIPathHints) != 5 {
		t.Fatalf("expected 5 path hints")
	}
	if c.Extract.SlugMaxLen != 60 {
		t.Fatalf("expected slug max len 60")
	}
	if c.Output.Separator != "|" {
		t.Fatalf("expected default separator |")
	}
	if c.Server.Port != 3000 || c.Server.Host != "127.0.0.1" {
		t.Fatalf("unexpected server defaults")
	}
	if c.Log.Level != "info" {
		t.Fatalf("expected info level")
	}
}

func TestLoadFromYAML(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.yaml")
	data := "output:\n  separator: \";\"\nextract:\n  slug_max_len: 40\nstorage:\n  path: " + filepath.Join(tmp, "x.db") + "\n"
	if err := os.WriteFile(cfgPath, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Separator != ";" {
		t.Fatalf("unexpected separator %q", cfg.Output.Separator)
	}
	if cfg.Extract.SlugMaxLen != 40 {
		t.Fatalf("unexpected slug max len %d", cfg.Extract.SlugMaxLen)
	}
	if len(cfg.Extract.APIPathHints) != 5 {
		t.Fatalf("expected default path hints to survive partial config")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HARSIFT_OUTPUT_SEPARATOR", ",")
	t.Setenv("HARSIFT_SERVER_PORT", "8123")
	t.Setenv("HARSIFT_EXTRACT_INCLUDE_NONJSON", "true")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Separator != "," {
		t.Fatalf("expected env separator, got %q", cfg.Output.Separator)
	}
	if cfg.Server.Port != 8123 {
		t.Fatalf("expected env port, got %d", cfg.Server.Port)
	}
	if !cfg.Extract.IncludeNonJSON {
		t.Fatalf("expected env include_nonjson")
	}
}

func TestLoadResolvesStoragePath(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Path == "" {
		t.Fatalf("expected storage path resolved")
	}
}
