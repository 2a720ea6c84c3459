package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}

	got, err := Load(Source{Name: "gemini api key", Value: "inline", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "from-file" {
		t.Fatalf("expected file value, got %q", got)
	}
}

func TestLoadEmpty(t *testing.T) {
	_, err := Load(Source{Name: "gemini api key", Value: "   "})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}

	_, err = Load(Source{File: path})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured for empty file, got %v", err)
	}
}

func TestFirst(t *testing.T) {
	got, err := First(
		Source{Name: "form api key", Value: ""},
		Source{Name: "GEMINI_API_KEY", Value: " env-key "},
		Source{Name: "unused", Value: "never"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "env-key" {
		t.Fatalf("expected env-key, got %q", got)
	}

	if _, err := First(); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured with no sources, got %v", err)
	}

	missing := filepath.Join(t.TempDir(), "missing")
	_, err = First(Source{Name: "key file", File: missing}, Source{Value: "fallback"})
	if err == nil || errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected read error for missing file, got %v", err)
	}
}
