package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cdlconvert/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose destination lives in a unique temp
// directory per test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Output.Destination = filepath.Join(base, "converted")
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFormats sets the output formats on the test config.
func WithFormats(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Formats = names
	}
}

// WithPrecision sets the output precision on the test config.
func WithPrecision(places int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Precision = places
	}
}

// WithLogFile sends a copy of the logs to a file under the test directory.
func WithLogFile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.File = filepath.Join(b.baseDir, "logs", "cdlconvert.log")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Output.Destination)
}

// WriteConfig encodes cfg as TOML at path.
func WriteConfig(t testing.TB, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
