// Package fingerprint computes a stable digest over the record fields that
// shape a generated block.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/everstacklabs/blocksmith/internal/adapter"
)

type pricing struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// canonical is the hashed view of a record. encoding/json emits struct
// fields in declaration order, so the field order here is part of the
// digest format: keep it alphabetical.
type canonical struct {
	ContextLength int      `json:"context_length"`
	DisplayName   string   `json:"display_name"`
	ID            string   `json:"id"`
	Pricing       *pricing `json:"pricing"`
	Type          string   `json:"type"`
}

// Compute returns the hex SHA-256 digest of the version-relevant fields of
// rec: id, display name, type, context length, and pricing. Prices are
// compared by value, so 0.20 and 0.2 hash the same.
func Compute(rec adapter.Record) string {
	c := canonical{
		ContextLength: rec.ContextLength,
		DisplayName:   rec.DisplayName,
		ID:            rec.ID,
		Type:          string(rec.Type),
	}
	if rec.Pricing != nil {
		c.Pricing = &pricing{
			Input:  rec.Pricing.Input.String(),
			Output: rec.Pricing.Output.String(),
		}
	}

	// Marshal cannot fail: every field is a string, int, or nil pointer.
	data, _ := json.Marshal(c)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
