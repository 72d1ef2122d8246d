package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry represents a cached catalog response.
type Entry struct {
	Body       []byte    `json:"body"`
	ETag       string    `json:"etag,omitempty"`
	LastMod    string    `json:"last_modified,omitempty"`
	StatusCode int       `json:"status_code"`
	CachedAt   time.Time `json:"cached_at"`
}

// FileCache provides TTL-based file caching for catalog responses.
type FileCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// New creates a new file cache rooted at dir.
func New(dir string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &FileCache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Key derives a cache key from a URL and the credential used to fetch it.
// The credential is hashed together with the URL and never stored.
func Key(url, credential string) string {
	if credential == "" {
		return url
	}
	h := sha256.Sum256([]byte(credential))
	return url + "#" + hex.EncodeToString(h[:8])
}

// Get retrieves a cached entry. The bool reports whether the entry is still
// fresh; an expired entry is still returned so callers can revalidate it.
func (c *FileCache) Get(key string) (*Entry, bool) {
	path := c.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false
	}

	if c.now().Sub(entry.CachedAt) > c.ttl {
		return &entry, false
	}
	return &entry, true
}

// Set stores an entry in the cache.
func (c *FileCache) Set(key string, entry *Entry) error {
	entry.CachedAt = c.now()
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	return os.WriteFile(c.path(key), data, 0o644)
}

func (c *FileCache) path(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:])+".json")
}
