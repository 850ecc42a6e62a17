package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func writeJSONLine(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return withCode(exitDB, fmt.Errorf("json encode: %w", err))
	}
	return nil
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return withCode(exitDB, fmt.Errorf("mkdir %s: %w", dir, err))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return withCode(exitDB, fmt.Errorf("write %s: %w", path, err))
	}
	return nil
}
