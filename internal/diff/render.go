package diff

import (
	"fmt"
	"sort"
	"strings"
)

// RenderDiffSummary renders a short, line-per-model summary of a run.
func RenderDiffSummary(cs *ChangeSet) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %d created, %d updated, %d unchanged, %d skipped, %d rejected\n",
		cs.Source, len(cs.Created), len(cs.Updated), len(cs.Unchanged), len(cs.Skipped), len(cs.Rejected))

	for _, m := range cs.Created {
		fmt.Fprintf(&b, "  + %s (v%s) %s\n", m.Name, m.Version, strings.Join(m.Roles, ","))
	}
	for _, m := range cs.Updated {
		fmt.Fprintf(&b, "  ~ %s (v%s) %s\n", m.Name, m.Version, strings.Join(m.Roles, ","))
		writeSummaryLines(&b, m.Summary, "      ")
	}
	for _, r := range cs.Rejected {
		fmt.Fprintf(&b, "  ! %s: %s\n", r.Name, r.Reason)
	}
	if len(cs.Stale) > 0 {
		fmt.Fprintf(&b, "  %d ledger entries not in this catalog (kept)\n", len(cs.Stale))
	}

	return b.String()
}

func writeSummaryLines(b *strings.Builder, s *Summary, indent string) {
	if !s.HasChanges() {
		return
	}
	if len(s.RolesAdded) > 0 {
		fmt.Fprintf(b, "%s- Added roles: %s\n", indent, strings.Join(s.RolesAdded, ", "))
	}
	if len(s.RolesRemoved) > 0 {
		fmt.Fprintf(b, "%s- Removed roles: %s\n", indent, strings.Join(s.RolesRemoved, ", "))
	}
	if cc := s.ContextLength; cc != nil {
		old := "none"
		if cc.Old != nil {
			old = fmt.Sprint(*cc.Old)
		}
		fmt.Fprintf(b, "%s- Context length: %s → %d\n", indent, old, cc.New)
	}
}

type count struct {
	key string
	n   int
}

// mostCommon sorts counts descending, breaking ties by key.
func mostCommon(m map[string]int) []count {
	out := make([]count, 0, len(m))
	for k, n := range m {
		out = append(out, count{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].key < out[j].key
	})
	return out
}

// RenderReport renders the full statistics report: model types, role
// distribution, autocomplete coverage, and per-model version changes.
func RenderReport(cs *ChangeSet, allowlist []string) string {
	var b strings.Builder
	processed := cs.Processed()

	b.WriteString("Results:\n")
	fmt.Fprintf(&b, "  Created: %d models\n", len(cs.Created))
	fmt.Fprintf(&b, "  Updated: %d models\n", len(cs.Updated))
	fmt.Fprintf(&b, "  Unchanged: %d models\n", len(cs.Unchanged))
	fmt.Fprintf(&b, "  Skipped: %d models\n", len(cs.Skipped))
	fmt.Fprintf(&b, "  Rejected: %d models\n", len(cs.Rejected))
	fmt.Fprintf(&b, "  Models with contextLength: %d\n", cs.WithContextLength())

	types := make(map[string]int)
	roleCounts := make(map[string]int)
	byRole := make(map[string][]string)
	for _, m := range processed {
		types[m.Type]++
		for _, r := range m.Roles {
			roleCounts[r]++
			byRole[r] = append(byRole[r], m.Name)
		}
	}

	b.WriteString("\nModel types:\n")
	for _, c := range mostCommon(types) {
		fmt.Fprintf(&b, "  %s: %d models\n", c.key, c.n)
	}

	b.WriteString("\nRoles distribution:\n")
	for _, c := range mostCommon(roleCounts) {
		fmt.Fprintf(&b, "  %s: %d models\n", c.key, c.n)
		names := byRole[c.key]
		if c.key == "autocomplete" || len(names) <= 5 {
			for _, n := range names {
				fmt.Fprintf(&b, "    - %s\n", n)
			}
			continue
		}
		for _, n := range names[:3] {
			fmt.Fprintf(&b, "    - %s\n", n)
		}
		fmt.Fprintf(&b, "    - ... and %d more\n", c.n-3)
	}

	b.WriteString("\nAutocomplete configuration:\n")
	fmt.Fprintf(&b, "  Predefined autocomplete models: %d\n", len(allowlist))
	for _, a := range allowlist {
		fmt.Fprintf(&b, "    - %s\n", a)
	}
	if missing := MissingAllowlisted(cs, allowlist); len(missing) > 0 {
		b.WriteString("  Not found in the catalog:\n")
		for _, a := range missing {
			fmt.Fprintf(&b, "    - %s\n", a)
		}
	}

	if len(cs.Created) > 0 {
		b.WriteString("\nNewly added models:\n")
		for _, m := range cs.Created {
			fmt.Fprintf(&b, "  - %s (v%s)\n", m.Name, m.Version)
		}
	}
	if len(cs.Updated) > 0 {
		b.WriteString("\nUpdated models:\n")
		for _, m := range cs.Updated {
			fmt.Fprintf(&b, "  - %s (v%s)\n", m.Name, m.Version)
			writeSummaryLines(&b, m.Summary, "    ")
		}
	}
	if len(cs.Stale) > 0 {
		b.WriteString("\nLedger entries not in this catalog:\n")
		for _, id := range cs.Stale {
			fmt.Fprintf(&b, "  - %s\n", id)
		}
	}

	return b.String()
}

// MissingAllowlisted returns allowlist entries that matched no processed
// model by display name or ID, in allowlist order.
func MissingAllowlisted(cs *ChangeSet, allowlist []string) []string {
	found := make(map[string]bool)
	for _, m := range cs.Processed() {
		found[m.Name] = true
		found[m.ID] = true
	}
	var missing []string
	for _, a := range allowlist {
		if !found[a] {
			missing = append(missing, a)
		}
	}
	return missing
}

// RenderPRBody renders the markdown body of a catalog update PR.
func RenderPRBody(cs *ChangeSet) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## %s block update\n\n", cs.Source)
	fmt.Fprintf(&b, "**%d** created, **%d** updated, **%d** unchanged\n\n",
		len(cs.Created), len(cs.Updated), len(cs.Unchanged))

	if len(cs.Created) > 0 {
		b.WriteString("### New blocks\n\n")
		b.WriteString("| Block | Model | Version | Roles |\n")
		b.WriteString("|-------|-------|---------|-------|\n")
		for _, m := range cs.Created {
			fmt.Fprintf(&b, "| `%s` | `%s` | %s | %s |\n", m.Filename, m.ID, m.Version, strings.Join(m.Roles, ", "))
		}
		b.WriteString("\n")
	}

	if len(cs.Updated) > 0 {
		b.WriteString("### Updated blocks\n\n")
		b.WriteString("| Block | Version | Changes |\n")
		b.WriteString("|-------|---------|---------|\n")
		for _, m := range cs.Updated {
			fmt.Fprintf(&b, "| `%s` | %s | %s |\n", m.Filename, m.Version, summaryCell(m.Summary))
		}
		b.WriteString("\n")
	}

	if len(cs.Rejected) > 0 {
		b.WriteString("<details>\n<summary>Rejected by validation</summary>\n\n")
		for _, r := range cs.Rejected {
			fmt.Fprintf(&b, "- `%s`: %s\n", r.ID, r.Reason)
		}
		b.WriteString("\n</details>\n")
	}

	return b.String()
}

func summaryCell(s *Summary) string {
	if !s.HasChanges() {
		return "fingerprint changed"
	}
	var parts []string
	if len(s.RolesAdded) > 0 {
		parts = append(parts, "+"+strings.Join(s.RolesAdded, " +"))
	}
	if len(s.RolesRemoved) > 0 {
		parts = append(parts, "-"+strings.Join(s.RolesRemoved, " -"))
	}
	if cc := s.ContextLength; cc != nil {
		old := "none"
		if cc.Old != nil {
			old = fmt.Sprint(*cc.Old)
		}
		parts = append(parts, fmt.Sprintf("context %s → %d", old, cc.New))
	}
	return strings.Join(parts, "; ")
}
