package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// ManifestFile is the index written next to the blocks. Its extension keeps it
// out of the block namespace, so no model name can collide with it.
const ManifestFile = "index.yml"

// Catalog holds every block found in an output directory.
type Catalog struct {
	BasePath string
	// Blocks is keyed by filename.
	Blocks map[string]*Block
	// Invalid holds files that could not be parsed, keyed by filename.
	Invalid map[string]error
}

// Load reads every block file in basePath. Files that fail to parse are
// collected in Invalid instead of failing the load.
func Load(basePath string) (*Catalog, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		return nil, fmt.Errorf("reading output dir: %w", err)
	}

	cat := &Catalog{
		BasePath: basePath,
		Blocks:   make(map[string]*Block),
		Invalid:  make(map[string]error),
	}
	store := NewStore(basePath)

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		b, err := store.Read(name)
		if err != nil {
			cat.Invalid[name] = err
			continue
		}
		cat.Blocks[name] = b
	}

	return cat, nil
}

// Filenames returns the parsed block filenames, sorted.
func (c *Catalog) Filenames() []string {
	names := make([]string, 0, len(c.Blocks))
	for name := range c.Blocks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
