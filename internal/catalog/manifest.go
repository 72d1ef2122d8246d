package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// ManifestBlock describes one block in the manifest.
type ManifestBlock struct {
	File    string   `yaml:"file"`
	Name    string   `yaml:"name"`
	Model   string   `yaml:"model"`
	Version string   `yaml:"version"`
	Roles   []string `yaml:"roles"`
}

// ManifestStats holds aggregate counts.
type ManifestStats struct {
	TotalBlocks int            `yaml:"total_blocks"`
	ByRole      map[string]int `yaml:"by_role"`
}

// Manifest represents the index.yml file.
type Manifest struct {
	GeneratedAt   string          `yaml:"generated_at"`
	SchemaVersion string          `yaml:"schema_version"`
	Blocks        []ManifestBlock `yaml:"blocks"`
	Stats         ManifestStats   `yaml:"stats"`
}

// BuildManifest summarizes the parsed blocks of a catalog, sorted by file.
func BuildManifest(cat *Catalog, now time.Time) *Manifest {
	m := &Manifest{
		GeneratedAt:   now.UTC().Format(time.RFC3339),
		SchemaVersion: "1.0",
		Stats:         ManifestStats{ByRole: make(map[string]int)},
	}

	for _, file := range cat.Filenames() {
		b := cat.Blocks[file]
		mb := ManifestBlock{File: file, Name: b.Name, Version: b.Version}
		if pm := b.Primary(); pm != nil {
			mb.Model = pm.Model
			mb.Roles = pm.Roles
			for _, r := range pm.Roles {
				m.Stats.ByRole[r]++
			}
		}
		m.Blocks = append(m.Blocks, mb)
	}

	sort.Slice(m.Blocks, func(i, j int) bool { return m.Blocks[i].File < m.Blocks[j].File })
	m.Stats.TotalBlocks = len(m.Blocks)
	return m
}

// GenerateManifest rebuilds index.yml from the blocks on disk.
func GenerateManifest(basePath string) error {
	cat, err := Load(basePath)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(BuildManifest(cat, time.Now()))
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	header := "# Block Manifest\n# Auto-generated - DO NOT EDIT MANUALLY\n# Run: blocksmith generate to regenerate\n\n"
	return os.WriteFile(filepath.Join(basePath, ManifestFile), []byte(header+string(data)), 0o644)
}
