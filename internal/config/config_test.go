package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cdlconvert/internal/config"
)

func TestLoadDefaultsWhenFileIsMissing(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "cdlconvert", "config.toml"); resolved != want {
		t.Fatalf("resolved = %q, want %q", resolved, want)
	}
	if len(cfg.Output.Formats) != 1 || cfg.Output.Formats[0] != "cc" {
		t.Fatalf("unexpected default formats: %v", cfg.Output.Formats)
	}
	if cfg.Output.Precision != -1 {
		t.Fatalf("expected as-given precision by default, got %d", cfg.Output.Precision)
	}
	if !filepath.IsAbs(cfg.Output.Destination) || filepath.Base(cfg.Output.Destination) != "converted" {
		t.Fatalf("unexpected destination: %q", cfg.Output.Destination)
	}
	if !cfg.Output.SplitSingles {
		t.Fatal("expected collections to split into single files by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	configPath := filepath.Join(t.TempDir(), "cdlconvert.toml")

	type payload struct {
		Output struct {
			Formats     []string `toml:"formats"`
			Destination string   `toml:"destination"`
			Precision   int      `toml:"precision"`
		} `toml:"output"`
		Conversion struct {
			InputFormat string `toml:"input_format"`
			Halt        bool   `toml:"halt"`
		} `toml:"conversion"`
		Logging struct {
			Level string `toml:"level"`
			File  string `toml:"file"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Output.Formats = []string{"CCC", " nk,cc ", "ccc"}
	custom.Output.Destination = "~/grades"
	custom.Output.Precision = 6
	custom.Conversion.InputFormat = " ALE "
	custom.Conversion.Halt = true
	custom.Logging.Level = "DEBUG"
	custom.Logging.File = "~/logs/cdlconvert.log"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution %q exists=%v", resolved, exists)
	}
	if got := strings.Join(cfg.Output.Formats, ","); got != "ccc,nk,cc" {
		t.Fatalf("formats not normalized: %q", got)
	}
	if cfg.Output.Destination != filepath.Join(tempHome, "grades") {
		t.Fatalf("destination not expanded: %q", cfg.Output.Destination)
	}
	if cfg.Output.Precision != 6 || cfg.Conversion.InputFormat != "ale" || !cfg.Conversion.Halt {
		t.Fatalf("unexpected values: %+v %+v", cfg.Output, cfg.Conversion)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.File != filepath.Join(tempHome, "logs", "cdlconvert.log") {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(configPath, []byte("[output]\nformat = \"cc\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for misspelled key")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[conversion]") {
		t.Fatalf("sample config missing conversion section: %s", contents)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample does not load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to be found")
	}
	if cfg.Output.CollectionName != "merged" {
		t.Fatalf("unexpected collection name %q", cfg.Output.CollectionName)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"no formats":     func(c *config.Config) { c.Output.Formats = nil },
		"unknown format": func(c *config.Config) { c.Output.Formats = []string{"edl"} },
		"low precision":  func(c *config.Config) { c.Output.Precision = -2 },
		"high precision": func(c *config.Config) { c.Output.Precision = 40 },
		"input format":   func(c *config.Config) { c.Conversion.InputFormat = "xml" },
		"log format":     func(c *config.Config) { c.Logging.Format = "yaml" },
		"log level":      func(c *config.Config) { c.Logging.Level = "trace" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
