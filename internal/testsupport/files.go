package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// NKSample is a node script holding one transform named X.
const NKSample = "OCIOCDLTransform {\n slope {1.1 0.05 0.52}\n offset {0.005 0.06 0}\n power {0.13 0.26 0.12}\n saturation 0.25\n name X\n}\n"

// WriteFile writes content to path, creating parent directories, and
// returns path.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
