package library

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dchest/safefile"
)

// ErrNotFound is returned by a Persister when no document has been saved yet.
var ErrNotFound = errors.New("library document not found")

// Persister reads and writes the library document.
type Persister interface {
	// Load returns the stored document, ErrNotFound when there is none.
	Load(ctx context.Context) (*Document, error)
	// Save replaces the stored document.
	Save(ctx context.Context, doc *Document) error
}

// FilePersister stores the document as a single JSON file.
type FilePersister struct {
	path string
}

// NewFilePersister creates a persister for the JSON file at path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Path returns the location of the document.
func (p *FilePersister) Path() string {
	return p.path
}

// Load reads and decodes the document. An empty file is reported as ErrNotFound.
func (p *FilePersister) Load(ctx context.Context) (*Document, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", p.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNotFound
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", p.path, err)
	}
	return &doc, nil
}

// Save writes the document to a temporary file and atomically renames it over the target,
// so a crash mid-write never leaves a truncated document behind.
func (p *FilePersister) Save(ctx context.Context, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(p.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	f, err := safefile.Create(p.path, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", p.path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode library: %w", err)
	}

	if err := f.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", p.path, err)
	}
	return nil
}
