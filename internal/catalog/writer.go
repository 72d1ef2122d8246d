package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const frontmatterMarker = "---\n"

// Store reads and writes block files in a single directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the absolute location of filename in the store.
func (s *Store) Path(filename string) string {
	return filepath.Join(s.dir, filename)
}

// Write serializes b to filename, replacing any existing file.
func (s *Store) Write(filename string, b *Block) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	data, err := Marshal(b)
	if err != nil {
		return "", err
	}

	path := s.Path(filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", filename, err)
	}
	return path, nil
}

// Read loads a block previously written to filename.
func (s *Store) Read(filename string) (*Block, error) {
	return ReadBlock(s.Path(filename))
}

// Marshal renders a block as a frontmatter document with two-space
// indentation.
func Marshal(b *Block) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(frontmatterMarker)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return nil, fmt.Errorf("marshaling block: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshaling block: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadBlock parses the first YAML document of a block file. The leading
// "---" marker is optional.
func ReadBlock(path string) (*Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	var b Block
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&b); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing %s: empty document", filepath.Base(path))
		}
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return &b, nil
}
