package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/everstacklabs/blocksmith/internal/adapter"
	"github.com/everstacklabs/blocksmith/internal/catalog"
	"github.com/everstacklabs/blocksmith/internal/config"
	"github.com/everstacklabs/blocksmith/internal/diff"
	"github.com/everstacklabs/blocksmith/internal/ledger"
	"github.com/everstacklabs/blocksmith/internal/roles"
)

// ExitCode constants for CLI.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitChanges = 2 // Changes detected (diff mode)
)

// progressEvery is how often, in records, progress is logged.
const progressEvery = 10

// draftThreshold is the changed-model count above which PRs open as drafts.
const draftThreshold = 25

// Pipeline orchestrates a generation run.
type Pipeline struct {
	cfg *config.Config
	now func() time.Time
}

// New creates a new Pipeline.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{cfg: cfg, now: time.Now}
}

// Result holds the outcome of a generate run.
type Result struct {
	ChangeSet *diff.ChangeSet
	PRNumber  int
	PRDraft   bool
	// DraftReasons lists why the PR was opened as a draft.
	DraftReasons []string
}

// Generate runs the full pipeline: fetch, process, write blocks, save the
// ledger, regenerate the manifest, and open a PR when GitHub is configured.
// With dry_run set nothing is written.
func (p *Pipeline) Generate(ctx context.Context) (*Result, error) {
	write := !p.cfg.DryRun

	cs, err := p.run(ctx, write)
	if err != nil {
		return nil, err
	}
	result := &Result{ChangeSet: cs}

	if !write {
		slog.Info("dry run, nothing written",
			"created", len(cs.Created), "updated", len(cs.Updated))
		return result, nil
	}

	if p.cfg.GitHub.Token == "" {
		return result, nil
	}
	if !cs.HasChanges() {
		slog.Info("no changes detected, skipping PR")
		return result, nil
	}

	result.PRDraft, result.DraftReasons = assessRisk(cs)
	prNum, err := p.createPR(ctx, cs, result.PRDraft)
	if err != nil {
		return result, fmt.Errorf("creating PR: %w", err)
	}
	result.PRNumber = prNum
	return result, nil
}

// Diff processes the catalog against the ledger without writing anything.
func (p *Pipeline) Diff(ctx context.Context) (*diff.ChangeSet, error) {
	return p.run(ctx, false)
}

// Discover fetches records from the configured source. The raw API payload
// is snapshotted only when snapshot is true.
func (p *Pipeline) Discover(ctx context.Context, snapshot bool) ([]adapter.Record, error) {
	name := p.cfg.Source()
	a, err := adapter.Get(name)
	if err != nil {
		return nil, err
	}

	opts := adapter.DiscoverOptions{}
	if snapshot {
		opts.SnapshotPath = p.cfg.SnapshotPath()
	}

	records, err := a.Discover(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("discovering models: %w", err)
	}

	if hc, ok := a.(adapter.HealthChecker); ok {
		if want := hc.MinExpectedModels(); len(records) < want {
			slog.Warn("source returned fewer models than expected",
				"source", name, "models", len(records), "expected_min", want)
		}
	}

	slog.Info("discovery complete", "source", name, "models", len(records))
	return records, nil
}

func (p *Pipeline) run(ctx context.Context, write bool) (*diff.ChangeSet, error) {
	records, err := p.Discover(ctx, write)
	if err != nil {
		return nil, err
	}

	l, err := p.loadLedger()
	if err != nil {
		return nil, err
	}

	store := catalog.NewStore(p.cfg.OutputDir)
	if write {
		if err := os.MkdirAll(store.Dir(), 0o755); err != nil {
			return nil, fmt.Errorf("creating output dir: %w", err)
		}
	}

	proc := NewProcessor(l, roles.NewAllowlist(p.cfg.Autocomplete), store)
	cs := &diff.ChangeSet{Source: p.cfg.Source()}
	seen := make(map[string]bool, len(records))

	for i, rec := range records {
		if i > 0 && i%progressEvery == 0 {
			slog.Info("progress", "processed", i, "total", len(records))
		}
		if rec.ID != "" {
			seen[rec.ID] = true
		}

		if reason := p.skipReason(rec); reason != "" {
			slog.Debug("skipping model", "model", rec.ID, "reason", reason)
			cs.Skipped = append(cs.Skipped, diff.SkippedModel{ID: rec.ID, Name: rec.DisplayName, Reason: reason})
			continue
		}

		prev, hadPrev := l.Get(rec.ID)
		out, err := proc.Process(rec)
		switch {
		case errors.Is(err, ErrSkipped):
			slog.Warn("skipping model", "model", rec.ID, "reason", err)
			cs.Skipped = append(cs.Skipped, diff.SkippedModel{ID: rec.ID, Name: rec.DisplayName, Reason: err.Error()})
			continue
		case err != nil:
			slog.Error("block failed validation", "model", rec.ID, "error", err)
			cs.Rejected = append(cs.Rejected, diff.SkippedModel{ID: rec.ID, Name: rec.DisplayName, Reason: err.Error()})
			continue
		}

		if write && out.Status != ledger.StatusUnchanged {
			if _, err := store.Write(out.Filename, out.Block); err != nil {
				slog.Error("writing block", "model", rec.ID, "error", err)
				if hadPrev {
					l.Put(rec.ID, prev)
				} else {
					l.Delete(rec.ID)
				}
				cs.Rejected = append(cs.Rejected, diff.SkippedModel{ID: rec.ID, Name: rec.DisplayName, Reason: err.Error()})
				continue
			}
		}

		record(cs, out)
	}
	slog.Info("progress", "processed", len(records), "total", len(records))

	cs.Stale = l.Stale(seen)
	if len(cs.Stale) > 0 {
		slog.Info("ledger entries not in this catalog", "count", len(cs.Stale))
	}

	if !write {
		return cs, nil
	}

	if err := l.Save(p.cfg.LedgerPath); err != nil {
		return nil, fmt.Errorf("saving ledger: %w", err)
	}
	if err := catalog.GenerateManifest(store.Dir()); err != nil {
		return nil, fmt.Errorf("generating manifest: %w", err)
	}

	slog.Info("generation complete",
		"created", len(cs.Created),
		"updated", len(cs.Updated),
		"unchanged", len(cs.Unchanged),
		"skipped", len(cs.Skipped),
		"rejected", len(cs.Rejected),
		"output_dir", store.Dir())
	return cs, nil
}

func (p *Pipeline) loadLedger() (*ledger.Ledger, error) {
	if p.cfg.ForceRegenerate {
		slog.Info("force regenerate, ignoring existing ledger", "path", p.cfg.LedgerPath)
		return ledger.New(), nil
	}
	l, err := ledger.Load(p.cfg.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	slog.Info("ledger loaded", "path", p.cfg.LedgerPath, "entries", l.Len())
	return l, nil
}

// skipReason returns why rec is filtered out by configuration, or "".
func (p *Pipeline) skipReason(rec adapter.Record) string {
	if slices.Contains(p.cfg.SkipTypes, string(rec.Type)) {
		return fmt.Sprintf("type %s is skipped", rec.Type)
	}
	if p.cfg.SkipFree && rec.Pricing != nil && rec.Pricing.IsFree() {
		return "free model"
	}
	return ""
}

func record(cs *diff.ChangeSet, out *Outcome) {
	mc := diff.ModelChange{
		ID:            out.Record.ID,
		Name:          out.Record.DisplayName,
		Filename:      out.Filename,
		Type:          string(out.Record.Type),
		Version:       out.Version,
		ContextLength: out.Record.ContextLength,
		Roles:         out.Roles.Strings(),
		Summary:       out.Summary,
	}
	switch out.Status {
	case ledger.StatusCreated:
		cs.Created = append(cs.Created, mc)
	case ledger.StatusUpdated:
		cs.Updated = append(cs.Updated, mc)
	default:
		cs.Unchanged = append(cs.Unchanged, mc)
	}
}

// assessRisk decides whether the PR should open as a draft, and why.
func assessRisk(cs *diff.ChangeSet) (bool, []string) {
	var reasons []string

	// Changed models > 25 → draft PR
	if cs.TotalChanged() > draftThreshold {
		reasons = append(reasons, fmt.Sprintf("%d models changed", cs.TotalChanged()))
	}

	// Any lost role → draft PR
	if cs.HasRoleRemovals() {
		reasons = append(reasons, "roles removed")
	}

	return len(reasons) > 0, reasons
}
