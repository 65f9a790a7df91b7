package models

import "sort"

// MergeConflict records a scalar field where cluster members disagreed.
// The merge still resolves deterministically; conflicts are surfaced so the
// review layer can show what the policy overrode.
type MergeConflict struct {
	Field         string   `json:"field"`
	Values        []string `json:"values"`
	ContactIDs    []string `json:"contact_ids"`
	ResolvedValue string   `json:"resolved_value"`
}

// MergedRecord is the output of resolving a cluster: the canonical contact
// with policy-filled gaps, the deduplicated union of contact points, and the
// map every non-primary ID must be re-pointed through. Applying this to
// storage (and to associated notes/reminders) is the owning application's job.
type MergedRecord struct {
	Primary       Contact           `json:"primary"`
	ContactPoints []ContactPoint    `json:"contact_points"`
	Repointed     map[string]string `json:"repointed"`
	Conflicts     []MergeConflict   `json:"conflicts,omitempty"`
}

// SecondaryIDs returns the non-primary member IDs in deterministic order.
func (m *MergedRecord) SecondaryIDs() []string {
	out := make([]string, 0, len(m.Repointed))
	for id := range m.Repointed {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
