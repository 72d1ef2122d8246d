package adapter

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// catalogModel is one entry of the Together AI /v1/models array. Every
// field is optional on the wire.
type catalogModel struct {
	ID            string `json:"id"`
	Object        string `json:"object"`
	Created       int64  `json:"created"`
	Type          string `json:"type"`
	DisplayName   string `json:"display_name"`
	Organization  string `json:"organization"`
	Link          string `json:"link"`
	License       string `json:"license"`
	ContextLength *int   `json:"context_length"`
	Pricing       *struct {
		Input  *decimal.Decimal `json:"input"`
		Output *decimal.Decimal `json:"output"`
	} `json:"pricing"`
}

// DecodeRecords parses a catalog payload (a flat JSON array of models) into
// records, applying the documented defaults for missing fields.
func DecodeRecords(data []byte) ([]Record, error) {
	var raw []catalogModel
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing models payload: expected a JSON array: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for _, m := range raw {
		records = append(records, m.toRecord())
	}
	return records, nil
}

func (m catalogModel) toRecord() Record {
	r := Record{
		ID:           m.ID,
		DisplayName:  m.DisplayName,
		Type:         ParseModelType(m.Type),
		Organization: m.Organization,
		License:      m.License,
		Link:         m.Link,
		Created:      m.Created,
	}
	if m.ContextLength != nil && *m.ContextLength > 0 {
		r.ContextLength = *m.ContextLength
	}
	if m.Pricing != nil {
		p := &Pricing{}
		if m.Pricing.Input != nil {
			p.Input = *m.Pricing.Input
		}
		if m.Pricing.Output != nil {
			p.Output = *m.Pricing.Output
		}
		r.Pricing = p
	}
	return r
}
