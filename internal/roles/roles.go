// Package roles maps model records to the capability roles a block
// advertises to the editor integration.
package roles

import (
	"sort"

	"github.com/everstacklabs/blocksmith/internal/adapter"
)

// Role is a capability tag on a generated block.
type Role string

func (r Role) String() string { return string(r) }

const (
	RoleApply        Role = "apply"
	RoleAudio        Role = "audio"
	RoleAutocomplete Role = "autocomplete"
	RoleChat         Role = "chat"
	RoleEdit         Role = "edit"
	RoleEmbed        Role = "embed"
	RoleImage        Role = "image"
	RoleModeration   Role = "moderation"
	RoleRerank       Role = "rerank"
)

// All lists every role in canonical order.
var All = []Role{
	RoleApply, RoleAudio, RoleAutocomplete, RoleChat, RoleEdit,
	RoleEmbed, RoleImage, RoleModeration, RoleRerank,
}

// Known reports whether s names a role.
func Known(s string) bool {
	for _, r := range All {
		if string(r) == s {
			return true
		}
	}
	return false
}

// MinApplyContext is the smallest context window eligible for apply.
const MinApplyContext = 8192

// Set is a sorted, duplicate-free list of roles.
type Set []Role

// NewSet builds a Set from roles in any order, dropping duplicates.
func NewSet(rs ...Role) Set {
	seen := make(map[Role]struct{}, len(rs))
	out := make(Set, 0, len(rs))
	for _, r := range rs {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Has reports whether r is in the set.
func (s Set) Has(r Role) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= r })
	return i < len(s) && s[i] == r
}

// Strings returns the roles as plain strings, in order.
func (s Set) Strings() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = string(r)
	}
	return out
}

// Diff returns the roles in s missing from prev (added) and the roles in
// prev missing from s (removed), each in canonical order.
func (s Set) Diff(prev []string) (added, removed []string) {
	old := make(map[string]bool, len(prev))
	for _, r := range prev {
		old[r] = true
	}
	cur := make(map[string]bool, len(s))
	for _, r := range s {
		cur[string(r)] = true
		if !old[string(r)] {
			added = append(added, string(r))
		}
	}
	for _, r := range prev {
		if !cur[r] {
			removed = append(removed, r)
		}
	}
	sort.Strings(removed)
	return added, removed
}

// Allowlist is the static set of display names or model IDs that receive the
// autocomplete role.
type Allowlist struct {
	entries []string
	index   map[string]struct{}
}

// NewAllowlist builds an allowlist, preserving entry order for reporting.
func NewAllowlist(entries []string) Allowlist {
	a := Allowlist{index: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		if e == "" {
			continue
		}
		if _, ok := a.index[e]; ok {
			continue
		}
		a.index[e] = struct{}{}
		a.entries = append(a.entries, e)
	}
	return a
}

// Contains reports whether key is allowlisted. Matching is exact.
func (a Allowlist) Contains(key string) bool {
	_, ok := a.index[key]
	return ok
}

// Entries returns the allowlist in configuration order.
func (a Allowlist) Entries() []string {
	return append([]string(nil), a.entries...)
}

// Classify returns the roles for rec.
//
// Allowlisted records get autocomplete whatever their type, so an
// allowlisted image or audio model is also marked autocomplete.
func Classify(rec adapter.Record, allow Allowlist) Set {
	var rs []Role

	switch rec.Type {
	case adapter.TypeChat, adapter.TypeLanguage:
		rs = append(rs, RoleChat, RoleEdit)
		if rec.ContextLength >= MinApplyContext {
			rs = append(rs, RoleApply)
		}
	case adapter.TypeEmbedding:
		rs = append(rs, RoleEmbed)
	case adapter.TypeRerank:
		rs = append(rs, RoleRerank)
	case adapter.TypeImage:
		rs = append(rs, RoleImage)
	case adapter.TypeAudio:
		rs = append(rs, RoleAudio)
	case adapter.TypeModeration:
		rs = append(rs, RoleModeration)
	case adapter.TypeMultimodal, adapter.TypeUnknown:
	}

	if allow.Contains(rec.DisplayName) || allow.Contains(rec.ID) {
		rs = append(rs, RoleAutocomplete)
	}

	return NewSet(rs...)
}
