package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is returned when no source yields a usable secret.
var ErrNotConfigured = errors.New("secret is not configured")

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value provided via configuration, flags or a form field.
	Value string
	// File points to a file containing the secret value. When set it takes
	// precedence over Value.
	File string
}

// Load returns the resolved secret value from the provided source. When File is
// set it takes precedence over Value. The returned secret is always trimmed.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		src.Value = string(data)
		src.File = file
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		if src.File != "" {
			return "", fmt.Errorf("%s file %q is empty: %w", name, src.File, ErrNotConfigured)
		}
		return "", fmt.Errorf("%s: %w", name, ErrNotConfigured)
	}

	return secret, nil
}

// First returns the secret from the first source that has one. Sources are tried
// in order; a source whose file cannot be read stops the search with that error.
func First(sources ...Source) (string, error) {
	var lastErr error
	for _, src := range sources {
		secret, err := Load(src)
		if err == nil {
			return secret, nil
		}
		if !errors.Is(err, ErrNotConfigured) || strings.TrimSpace(src.File) != "" {
			return "", err
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = ErrNotConfigured
	}

	return "", lastErr
}
