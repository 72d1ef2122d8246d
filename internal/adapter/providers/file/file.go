// Package file reads a previously saved model catalog from disk.
package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/everstacklabs/blocksmith/internal/adapter"
)

func init() {
	adapter.Register(&File{})
}

// File adapter loads records from a JSON file in the /v1/models format.
type File struct {
	path string
}

func (f *File) Name() string { return "file" }

// Configure sets the input file path.
func (f *File) Configure(path string) {
	f.path = path
}

func (f *File) Discover(_ context.Context, _ adapter.DiscoverOptions) ([]adapter.Record, error) {
	if f.path == "" {
		return nil, fmt.Errorf("input file path is required")
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading input file: %w", err)
	}

	records, err := adapter.DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", f.path, err)
	}

	slog.Info("loaded models from file", "path", f.path, "models", len(records))
	return records, nil
}
