// Package ledger persists per-model fingerprints and versions across runs.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"
)

// InitialVersion is assigned to a model the first time it is seen.
const InitialVersion = "1.0.0"

// Status is the outcome of comparing a model against the ledger.
type Status string

const (
	StatusCreated   Status = "created"
	StatusUpdated   Status = "updated"
	StatusUnchanged Status = "unchanged"
)

// Entry is the stored state for one model ID.
type Entry struct {
	Hash        string `json:"hash"`
	Version     string `json:"version"`
	Filename    string `json:"filename"`
	DisplayName string `json:"display_name"`
}

// Resolution is what the ledger decided for one model in this run.
type Resolution struct {
	Version string
	Status  Status
	// Previous is the stored entry, nil for created models.
	Previous *Entry
}

// Ledger maps model IDs to their last recorded state. It is not safe for
// concurrent use; a run owns it from Load to Save.
type Ledger struct {
	entries map[string]Entry
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[string]Entry)}
}

// Load reads a ledger file. A missing file yields an empty ledger, and so
// does a file that is not valid JSON (with a warning), so a damaged ledger
// costs a full regeneration rather than a failed run.
func Load(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	l := New()
	if err := json.Unmarshal(data, &l.entries); err != nil {
		slog.Warn("ledger file is not valid JSON, starting fresh", "path", path, "error", err)
		return New(), nil
	}
	if l.entries == nil {
		l.entries = make(map[string]Entry)
	}
	return l, nil
}

// Save writes the ledger to path, replacing the file atomically.
func (l *Ledger) Save(path string) error {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling ledger: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}

// Len returns the number of entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Get returns the entry for id.
func (l *Ledger) Get(id string) (Entry, bool) {
	e, ok := l.entries[id]
	return e, ok
}

// Put records the state for id.
func (l *Ledger) Put(id string, e Entry) {
	l.entries[id] = e
}

// Delete removes the entry for id.
func (l *Ledger) Delete(id string) {
	delete(l.entries, id)
}

// Resolve decides the version and status for a model with the given
// fingerprint. It does not modify the ledger.
func (l *Ledger) Resolve(id, hash string) Resolution {
	prev, ok := l.entries[id]
	if !ok {
		return Resolution{Version: InitialVersion, Status: StatusCreated}
	}

	if prev.Hash == hash {
		return Resolution{Version: prev.Version, Status: StatusUnchanged, Previous: &prev}
	}

	next, err := BumpMinor(prev.Version)
	if err != nil {
		slog.Warn("invalid version in ledger, resetting", "model", id, "version", prev.Version, "reset_to", InitialVersion)
		next = InitialVersion
	}
	return Resolution{Version: next, Status: StatusUpdated, Previous: &prev}
}

// Stale returns the IDs in the ledger that are not in seen, sorted. Stale
// entries are kept; callers only report them.
func (l *Ledger) Stale(seen map[string]bool) []string {
	var ids []string
	for id := range l.entries {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// BumpMinor increments the minor component of a major.minor.patch version
// and resets patch. Pre-release and build suffixes are dropped.
func BumpMinor(v string) (string, error) {
	parsed, err := parseSemver(v)
	if err != nil {
		return "", err
	}
	seg := parsed.Segments()
	if seg[1] == math.MaxInt {
		return "", fmt.Errorf("invalid semantic version: %q: minor out of range", v)
	}
	return fmt.Sprintf("%d.%d.0", seg[0], seg[1]+1), nil
}

// parseSemver accepts exactly three numeric components without leading
// zeros, plus an optional pre-release or build suffix. go-version alone also
// takes "1.2", "v1.2.3" and "01.2.3".
func parseSemver(v string) (*version.Version, error) {
	core := v
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	if strings.HasPrefix(core, "v") || strings.Count(core, ".") != 2 {
		return nil, fmt.Errorf("invalid semantic version: %q", v)
	}
	for _, part := range strings.Split(core, ".") {
		if len(part) > 1 && part[0] == '0' {
			return nil, fmt.Errorf("invalid semantic version: %q: leading zero", v)
		}
	}

	parsed, err := version.NewSemver(v)
	if err != nil {
		return nil, fmt.Errorf("invalid semantic version: %q: %w", v, err)
	}
	return parsed, nil
}
