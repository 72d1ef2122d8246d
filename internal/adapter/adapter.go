package adapter

import (
	"context"

	"github.com/shopspring/decimal"
)

// DiscoverOptions controls adapter behavior.
type DiscoverOptions struct {
	// SnapshotPath, when set, receives the raw catalog payload as fetched.
	SnapshotPath string
}

// Adapter loads model records from a catalog source.
type Adapter interface {
	// Name returns the source name (e.g., "togetherai").
	Name() string
	// Discover returns every model record the source knows about.
	Discover(ctx context.Context, opts DiscoverOptions) ([]Record, error)
}

// HealthChecker is an optional interface for sources that know roughly how
// many models a healthy response should contain.
type HealthChecker interface {
	// MinExpectedModels returns the minimum number of models expected.
	// A result below this threshold signals a data quality issue.
	MinExpectedModels() int
}

// ModelType is the upstream model category.
type ModelType string

const (
	TypeChat       ModelType = "chat"
	TypeLanguage   ModelType = "language"
	TypeEmbedding  ModelType = "embedding"
	TypeRerank     ModelType = "rerank"
	TypeImage      ModelType = "image"
	TypeAudio      ModelType = "audio"
	TypeModeration ModelType = "moderation"
	TypeMultimodal ModelType = "multimodal"
	TypeUnknown    ModelType = "unknown"
)

// ParseModelType maps an upstream type string onto the closed ModelType set.
// Anything unrecognized becomes TypeUnknown.
func ParseModelType(s string) ModelType {
	switch t := ModelType(s); t {
	case TypeChat, TypeLanguage, TypeEmbedding, TypeRerank, TypeImage,
		TypeAudio, TypeModeration, TypeMultimodal:
		return t
	default:
		return TypeUnknown
	}
}

// IsConversational reports whether the type produces chat/edit roles.
func (t ModelType) IsConversational() bool {
	return t == TypeChat || t == TypeLanguage
}

// Pricing is the per-token input/output rate pair.
type Pricing struct {
	Input  decimal.Decimal `json:"input"`
	Output decimal.Decimal `json:"output"`
}

// IsFree reports whether both rates are zero.
func (p *Pricing) IsFree() bool {
	return p.Input.IsZero() && p.Output.IsZero()
}

// Record is one model as described by the source catalog.
//
// ContextLength is 0 when the source does not report it. Pricing is nil
// when the source does not report it.
type Record struct {
	ID            string
	DisplayName   string
	Type          ModelType
	ContextLength int
	Pricing       *Pricing

	// Informational fields. They never affect the generated block.
	Organization string
	License      string
	Link         string
	Created      int64
}
