package exam

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ReadSheet loads an exam sheet from a UTF-8 JSON file.
func ReadSheet(path string) (*Sheet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", path, err)
	}
	var s Sheet
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse sheet %s: %w", path, err)
	}
	return &s, nil
}

// WriteSheet persists a sheet, creating parent directories as needed.
func WriteSheet(path string, s *Sheet) error {
	return WriteJSON(path, s)
}

// WriteJSON writes v as 2-space indented UTF-8 JSON without HTML
// escaping. The output is deterministic (map keys are sorted), which is
// what lets the recompute tool produce byte-identical files.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// MarshalIndent renders v exactly as WriteJSON would write it,
// trailing newline included.
func MarshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
