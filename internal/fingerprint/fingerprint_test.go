package fingerprint

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/everstacklabs/blocksmith/internal/adapter"
)

func baseRecord() adapter.Record {
	return adapter.Record{
		ID:            "meta/llama3-8b",
		DisplayName:   "Meta Llama 3 8B Instruct Turbo",
		Type:          adapter.TypeChat,
		ContextLength: 8192,
		Pricing: &adapter.Pricing{
			Input:  decimal.RequireFromString("0.18"),
			Output: decimal.RequireFromString("0.18"),
		},
		Organization: "Meta",
		License:      "llama3",
	}
}

func TestComputeIsStable(t *testing.T) {
	a := Compute(baseRecord())
	if b := Compute(baseRecord()); a != b {
		t.Errorf("Compute not stable: %s != %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("len = %d, want 64 hex chars", len(a))
	}
}

func TestComputeChangesWithTrackedFields(t *testing.T) {
	base := Compute(baseRecord())

	mutations := map[string]func(*adapter.Record){
		"id":             func(r *adapter.Record) { r.ID = "meta/llama3-8b-v2" },
		"display_name":   func(r *adapter.Record) { r.DisplayName = "Meta Llama 3 8B" },
		"type":           func(r *adapter.Record) { r.Type = adapter.TypeLanguage },
		"context_length": func(r *adapter.Record) { r.ContextLength = 16384 },
		"pricing input":  func(r *adapter.Record) { r.Pricing.Input = decimal.RequireFromString("0.2") },
		"pricing output": func(r *adapter.Record) { r.Pricing.Output = decimal.RequireFromString("0.9") },
		"pricing absent": func(r *adapter.Record) { r.Pricing = nil },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			rec := baseRecord()
			mutate(&rec)
			if Compute(rec) == base {
				t.Errorf("changing %s did not change the fingerprint", name)
			}
		})
	}
}

func TestComputeIgnoresUntrackedFields(t *testing.T) {
	base := Compute(baseRecord())

	rec := baseRecord()
	rec.Organization = "Someone Else"
	rec.License = "apache-2.0"
	rec.Link = "https://example.com/model"
	rec.Created = 1700000000

	if got := Compute(rec); got != base {
		t.Errorf("untracked fields changed the fingerprint: %s != %s", got, base)
	}
}

func TestComputeComparesPricesByValue(t *testing.T) {
	a := baseRecord()
	a.Pricing.Input = decimal.RequireFromString("0.20")

	b := baseRecord()
	b.Pricing.Input = decimal.RequireFromString("0.2")

	if Compute(a) != Compute(b) {
		t.Error("0.20 and 0.2 should fingerprint the same")
	}
}

func TestComputeZeroPricingDiffersFromAbsent(t *testing.T) {
	free := baseRecord()
	free.Pricing = &adapter.Pricing{}

	absent := baseRecord()
	absent.Pricing = nil

	if Compute(free) == Compute(absent) {
		t.Error("zero pricing and absent pricing should differ")
	}
}
