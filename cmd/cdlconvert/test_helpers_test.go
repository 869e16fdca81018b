package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cdlconvert/internal/config"
	"cdlconvert/internal/testsupport"
)

const nkSample = testsupport.NKSample

type cliTestEnv struct {
	cfg        *config.Config
	dir        string
	configPath string
	outDir     string
}

// setupCLITestEnv isolates HOME and points --config at a file that does not
// exist yet, so defaults apply unless a test writes one.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("CDLCONVERT_LOGGING_LEVEL", "error")
	return &cliTestEnv{
		cfg:        cfg,
		dir:        base,
		configPath: filepath.Join(base, "cdlconvert.toml"),
		outDir:     cfg.Output.Destination,
	}
}

func (env *cliTestEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	return testsupport.WriteFile(t, filepath.Join(env.dir, name), content)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q to contain %q", haystack, needle)
	}
}
