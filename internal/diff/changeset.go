package diff

// ChangeSet is the report of one run over the source catalog.
type ChangeSet struct {
	Source    string
	Created   []ModelChange
	Updated   []ModelChange
	Unchanged []ModelChange
	// Skipped holds records filtered out before classification.
	Skipped []SkippedModel
	// Rejected holds models whose block failed validation.
	Rejected []SkippedModel
	// Stale holds ledger IDs absent from this run. They are never pruned.
	Stale []string
}

// ModelChange is one processed model.
type ModelChange struct {
	ID            string
	Name          string
	Filename      string
	Type          string
	Version       string
	ContextLength int
	Roles         []string
	// Summary is set for updated models whose previous block was readable.
	Summary *Summary
}

// SkippedModel is a record that produced no block.
type SkippedModel struct {
	ID     string
	Name   string
	Reason string
}

// HasChanges reports whether the run created or updated any block.
func (cs *ChangeSet) HasChanges() bool {
	return len(cs.Created) > 0 || len(cs.Updated) > 0
}

// TotalChanged returns the count of created + updated models.
func (cs *ChangeSet) TotalChanged() int {
	return len(cs.Created) + len(cs.Updated)
}

// Processed returns created, updated, and unchanged models in that order.
func (cs *ChangeSet) Processed() []ModelChange {
	out := make([]ModelChange, 0, len(cs.Created)+len(cs.Updated)+len(cs.Unchanged))
	out = append(out, cs.Created...)
	out = append(out, cs.Updated...)
	return append(out, cs.Unchanged...)
}

// HasRoleRemovals reports whether any updated model lost a role.
func (cs *ChangeSet) HasRoleRemovals() bool {
	for _, u := range cs.Updated {
		if u.Summary != nil && len(u.Summary.RolesRemoved) > 0 {
			return true
		}
	}
	return false
}

// WithContextLength counts processed models that declare a context window.
func (cs *ChangeSet) WithContextLength() int {
	n := 0
	for _, m := range cs.Processed() {
		if m.ContextLength > 0 {
			n++
		}
	}
	return n
}
