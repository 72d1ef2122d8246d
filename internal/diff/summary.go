package diff

import (
	"github.com/everstacklabs/blocksmith/internal/catalog"
	"github.com/everstacklabs/blocksmith/internal/roles"
)

// ContextChange records a context window change. Old is nil when the
// previous block had no context block.
type ContextChange struct {
	Old *int
	New int
}

// Summary describes how an updated block differs from the previous one.
type Summary struct {
	RolesAdded    []string
	RolesRemoved  []string
	ContextLength *ContextChange
}

// HasChanges reports whether any role or context change was found. A nil
// summary has none.
func (s *Summary) HasChanges() bool {
	if s == nil {
		return false
	}
	return len(s.RolesAdded) > 0 || len(s.RolesRemoved) > 0 || s.ContextLength != nil
}

// Summarize compares the new roles and context length against the previous
// block. It returns nil when there is no usable previous block.
func Summarize(prev *catalog.Block, rs roles.Set, contextLength int) *Summary {
	if prev == nil {
		return nil
	}
	pm := prev.Primary()
	if pm == nil {
		return nil
	}

	s := &Summary{}
	s.RolesAdded, s.RolesRemoved = rs.Diff(pm.Roles)

	old, hadOld := pm.ContextLength()
	if contextLength > 0 && (!hadOld || old != contextLength) {
		cc := &ContextChange{New: contextLength}
		if hadOld {
			cc.Old = &old
		}
		s.ContextLength = cc
	}

	return s
}
