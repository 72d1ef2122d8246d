package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/everstacklabs/blocksmith/internal/adapter"
	"github.com/everstacklabs/blocksmith/internal/assemble"
	"github.com/everstacklabs/blocksmith/internal/catalog"
	"github.com/everstacklabs/blocksmith/internal/diff"
	"github.com/everstacklabs/blocksmith/internal/fingerprint"
	"github.com/everstacklabs/blocksmith/internal/ledger"
	"github.com/everstacklabs/blocksmith/internal/naming"
	"github.com/everstacklabs/blocksmith/internal/roles"
	"github.com/everstacklabs/blocksmith/internal/validate"
)

var (
	// ErrSkipped marks a record that cannot produce a block.
	ErrSkipped = errors.New("record skipped")
	// ErrInvalidBlock marks a block that failed validation.
	ErrInvalidBlock = errors.New("invalid block")
)

// PriorReader reads the block written for a model by an earlier run.
type PriorReader interface {
	Read(filename string) (*catalog.Block, error)
}

// Outcome is the result of processing one record.
type Outcome struct {
	Record   adapter.Record
	Filename string
	Block    *catalog.Block
	Roles    roles.Set
	Status   ledger.Status
	Version  string
	// Summary is set for updated models whose previous block was readable.
	Summary *diff.Summary
}

// Processor turns source records into blocks, one at a time, recording
// fingerprints and versions in the ledger it was given.
type Processor struct {
	ledger *ledger.Ledger
	allow  roles.Allowlist
	prior  PriorReader
}

// NewProcessor creates a Processor. prior may be nil, in which case updated
// models carry no change summary.
func NewProcessor(l *ledger.Ledger, allow roles.Allowlist, prior PriorReader) *Processor {
	return &Processor{ledger: l, allow: allow, prior: prior}
}

// Process classifies, versions, builds, and validates the block for rec.
//
// Records without an ID or a usable display name return ErrSkipped. Blocks
// that fail validation return ErrInvalidBlock and leave the ledger as it
// was, so the model is retried on the next run.
func (p *Processor) Process(rec adapter.Record) (*Outcome, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrSkipped)
	}
	if rec.DisplayName == "" {
		return nil, fmt.Errorf("%w: %s has no display name", ErrSkipped, rec.ID)
	}
	filename := naming.Filename(rec.DisplayName)
	if filename == "" {
		return nil, fmt.Errorf("%w: display name %q of %s sanitizes to nothing", ErrSkipped, rec.DisplayName, rec.ID)
	}

	rs := roles.Classify(rec, p.allow)
	hash := fingerprint.Compute(rec)
	res := p.ledger.Resolve(rec.ID, hash)
	block := assemble.Build(rec, rs, res.Version)

	out := &Outcome{
		Record:   rec,
		Filename: filename,
		Block:    block,
		Roles:    rs,
		Status:   res.Status,
		Version:  res.Version,
	}

	if res.Status == ledger.StatusUnchanged {
		return out, nil
	}

	if res.Status == ledger.StatusUpdated {
		out.Summary = p.summarize(res.Previous, filename, rs, rec.ContextLength)
	}

	if vr := validate.ValidateBlock(block, filename); vr.HasErrors() {
		first := vr.Errors()[0]
		return out, fmt.Errorf("%w: %s: %s %s", ErrInvalidBlock, rec.ID, first.Field, first.Message)
	}

	p.ledger.Put(rec.ID, ledger.Entry{
		Hash:        hash,
		Version:     res.Version,
		Filename:    filename,
		DisplayName: rec.DisplayName,
	})
	return out, nil
}

// summarize compares against the previously written block. The previous
// entry's filename is tried first since the display name may have changed.
func (p *Processor) summarize(prev *ledger.Entry, filename string, rs roles.Set, contextLength int) *diff.Summary {
	if p.prior == nil {
		return nil
	}
	name := filename
	if prev != nil && prev.Filename != "" {
		name = prev.Filename
	}
	b, err := p.prior.Read(name)
	if err != nil {
		slog.Debug("previous block unavailable, omitting change summary", "file", name, "error", err)
		return nil
	}
	return diff.Summarize(b, rs, contextLength)
}
