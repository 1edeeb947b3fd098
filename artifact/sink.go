// Package artifact persists pipeline outputs: stage payloads as files,
// run bookkeeping in SQLite, and a rendered markdown report.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Sink receives named artifacts and returns where each one landed.
type Sink interface {
	Write(name string, content []byte) (location string, err error)
}

// FSWriter writes artifacts into a single directory.
type FSWriter struct {
	dir    string
	logger *zap.Logger
}

// NewFSWriter creates the directory if needed.
func NewFSWriter(dir string, logger *zap.Logger) (*FSWriter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &FSWriter{dir: dir, logger: logger.With(zap.String("component", "artifact_writer"))}, nil
}

// Dir returns the writer's target directory.
func (w *FSWriter) Dir() string { return w.dir }

// Write implements Sink.
func (w *FSWriter) Write(name string, content []byte) (string, error) {
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", name, err)
	}
	w.logger.Debug("artifact written", zap.String("path", path), zap.Int("bytes", len(content)))
	return path, nil
}

// WriteJSON marshals v with indentation and writes it through sink.
func WriteJSON(sink Sink, name string, v any) (string, error) {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal artifact %s: %w", name, err)
	}
	return sink.Write(name, content)
}
