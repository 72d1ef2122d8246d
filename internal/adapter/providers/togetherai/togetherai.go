package togetherai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/everstacklabs/blocksmith/internal/adapter"
	"github.com/everstacklabs/blocksmith/internal/httpclient"
)

// DefaultBaseURL is the public Together AI API root.
const DefaultBaseURL = "https://api.together.xyz/v1"

func init() {
	adapter.Register(&TogetherAI{})
}

// TogetherAI adapter reads the model catalog from the Together AI API.
type TogetherAI struct {
	apiKey  string
	baseURL string
	client  *httpclient.Client
}

func (t *TogetherAI) Name() string { return "togetherai" }

// Configure sets up the adapter with API credentials and HTTP client.
func (t *TogetherAI) Configure(apiKey, baseURL string, client *httpclient.Client) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	t.apiKey = apiKey
	t.baseURL = baseURL
	t.client = client
}

// MinExpectedModels returns the minimum model count for Together AI.
func (t *TogetherAI) MinExpectedModels() int { return 20 }

func (t *TogetherAI) Discover(ctx context.Context, opts adapter.DiscoverOptions) ([]adapter.Record, error) {
	if t.client == nil {
		return nil, fmt.Errorf("togetherai adapter not configured")
	}
	if t.apiKey == "" {
		return nil, fmt.Errorf("togetherai API key is required")
	}

	url := t.baseURL + "/models"
	headers := map[string]string{
		"Accept":        "application/json",
		"Authorization": "Bearer " + t.apiKey,
	}

	slog.Info("fetching models", "url", url)
	resp, err := t.client.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("togetherai API discovery: %w", err)
	}

	records, err := adapter.DecodeRecords(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("togetherai API discovery: %w", err)
	}

	if opts.SnapshotPath != "" {
		if err := writeSnapshot(opts.SnapshotPath, resp.Body); err != nil {
			slog.Warn("could not save API response", "path", opts.SnapshotPath, "error", err)
		} else {
			slog.Info("saved API response", "path", opts.SnapshotPath)
		}
	}

	slog.Info("togetherai API discovery complete", "models", len(records), "from_cache", resp.FromCache)
	return records, nil
}

func writeSnapshot(path string, body []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return fmt.Errorf("indenting response: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
