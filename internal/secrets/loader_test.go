package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  secret-value \n"), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}

	got, err := Load(Source{Name: "api key", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "secret-value" {
		t.Fatalf("expected trimmed secret, got %q", got)
	}
}

func TestLoadFilePrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("from-file"), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}

	got, err := Load(Source{File: path, Value: "from-value"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected file to win, got %q", got)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RESUME_QUALITY_TEST_SECRET", "from-env")

	got, err := Load(Source{Env: "RESUME_QUALITY_TEST_SECRET", Value: "from-value"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-env" {
		t.Fatalf("expected env to win over value, got %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(Source{Name: "api key"}); err == nil {
		t.Fatalf("expected error for empty source")
	}

	if _, err := Load(Source{Name: "api key", File: "/does/not/exist"}); err == nil {
		t.Fatalf("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, []byte("   "), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}
	if _, err := Load(Source{Name: "api key", File: path}); err == nil {
		t.Fatalf("expected error for empty file")
	}
}
