// Package transfer exports the project collection to a versioned JSON document
// and imports it back.
package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"github.com/tidwall/gjson"

	"github.com/steveyegge/pmc/internal/types"
)

// Version is the document format tag written as "v"
const Version = 1

const filePerms = 0o644

// Document is the exported file layout
type Document struct {
	Projects []types.Project `json:"projects"`
	V        int             `json:"v"`
}

// ValidationError describes why an import document was rejected
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid file: %s", e.Reason)
	}
	return fmt.Sprintf("invalid file: %s: %s", e.Field, e.Reason)
}

// Export writes every project as an indented document
func Export(w io.Writer, projects []types.Project) error {
	if projects == nil {
		projects = []types.Project{}
	}
	data, err := json.MarshalIndent(Document{Projects: projects, V: Version}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode projects: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// FileName is the export file name for the given day (UTC)
func FileName(now time.Time) string {
	return fmt.Sprintf("pm-copilot-%s.json", now.UTC().Format(time.DateOnly))
}

// WriteFile exports into dir under FileName(now) and returns the path written
func WriteFile(dir string, projects []types.Project, now time.Time) (string, error) {
	var buf bytes.Buffer
	if err := Export(&buf, projects); err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(now))
	if err := atomic.WriteFile(path, &buf); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	// atomic.WriteFile leaves new files with the temp file's mode
	if err := os.Chmod(path, filePerms); err != nil {
		return "", fmt.Errorf("failed to set file permissions: %w", err)
	}
	return path, nil
}

// Import reads a document and returns its projects, normalized.
// Nothing is returned unless the whole document is acceptable; the caller
// replaces state only on success.
func Import(r io.Reader) ([]types.Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import: %w", err)
	}

	if !gjson.ValidBytes(data) {
		return nil, &ValidationError{Reason: "not valid JSON"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &ValidationError{Reason: "top level must be an object"}
	}
	projectsField := root.Get("projects")
	if !projectsField.Exists() {
		return nil, &ValidationError{Field: "projects", Reason: "missing"}
	}
	if !projectsField.IsArray() {
		return nil, &ValidationError{Field: "projects", Reason: "must be a list"}
	}

	var projects []types.Project
	if err := json.Unmarshal([]byte(projectsField.Raw), &projects); err != nil {
		return nil, &ValidationError{Field: "projects", Reason: err.Error()}
	}
	if projects == nil {
		projects = []types.Project{}
	}
	for i := range projects {
		projects[i].Normalize()
	}
	return projects, nil
}

// ImportFile is Import over a file path
func ImportFile(path string) ([]types.Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Import(f)
}
