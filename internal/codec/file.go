package codec

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes data to path, creating any missing parent directories.
// Overwrite semantics: an existing file at path is replaced, matching §7's
// "idempotent per path" requirement for per-iteration persistence.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("codec: create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("codec: write %s: %w", path, err)
	}
	return nil
}

// ReadFile reads and returns the raw bytes at path.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("codec: read %s: %w", path, err)
	}
	return data, nil
}
