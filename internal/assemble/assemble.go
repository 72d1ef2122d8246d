// Package assemble builds the configuration block for one model.
package assemble

import (
	"log/slog"

	"github.com/everstacklabs/blocksmith/internal/adapter"
	"github.com/everstacklabs/blocksmith/internal/catalog"
	"github.com/everstacklabs/blocksmith/internal/roles"
)

// Build assembles the block for rec at the given version. The context block
// is included only when the record reports a context length.
func Build(rec adapter.Record, rs roles.Set, version string) *catalog.Block {
	m := catalog.BlockModel{
		Name:     rec.DisplayName,
		Provider: catalog.ProviderTogether,
		Model:    rec.ID,
		APIKey:   catalog.APIKeyInput,
		Roles:    rs.Strings(),
	}

	if rec.ContextLength > 0 {
		m.DefaultCompletionOptions = &catalog.CompletionOptions{ContextLength: rec.ContextLength}
	} else if rec.Type.IsConversational() {
		slog.Warn("no context length, defaultCompletionOptions will be omitted",
			"model", rec.ID, "display_name", rec.DisplayName)
	}

	return &catalog.Block{
		Name:    rec.DisplayName,
		Version: version,
		Schema:  catalog.SchemaV1,
		Models:  []catalog.BlockModel{m},
	}
}
