package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"congress-trades/models"
)

// JSONWriter publishes the report as a single compact JSON document.
type JSONWriter struct {
	path string
}

func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

// WriteReport replaces the file atomically so readers never see a partial
// document.
func (w *JSONWriter) WriteReport(report *models.Report) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("json: create output dir: %w", err)
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("json: encode report: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".congress-trades-*.json")
	if err != nil {
		return fmt.Errorf("json: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("json: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("json: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("json: rename into place: %w", err)
	}
	return nil
}

// Size returns the size in bytes of the written report.
func (w *JSONWriter) Size() (int64, error) {
	fi, err := os.Stat(w.path)
	if err != nil {
		return 0, fmt.Errorf("json: stat: %w", err)
	}
	return fi.Size(), nil
}

// ReadReport loads a previously written report.
func ReadReport(path string) (*models.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("json: read %q: %w", path, err)
	}
	var r models.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("json: decode %q: %w", path, err)
	}
	return &r, nil
}
