package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Ramsey-B/clover/pkg/fingerprint"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// Detector is a pure function from a record snapshot to match edges.
// Detectors never fail on per-record data issues; malformed values degrade
// to empty normalized forms, which produce no edges.
type Detector func(records []models.Contact, th models.Thresholds) []models.MatchEdge

// detectorFor returns the Detector implementing the given tier.
func detectorFor(tier models.Tier) (Detector, error) {
	switch tier {
	case models.TierExact:
		return DetectExact, nil
	case models.TierComposite:
		return DetectComposite, nil
	case models.TierFuzzy:
		return DetectFuzzy, nil
	case models.TierFingerprint:
		return DetectFingerprint, nil
	}
	return nil, fmt.Errorf("unknown tier %q", tier)
}

// DetectExact finds contacts sharing a normalized contact-point value: a
// case-insensitive email, a normalized phone number, or a canonical social
// handle. Group-by over the normalized value, then every pair within a group
// of two or more distinct contacts produces an edge.
func DetectExact(records []models.Contact, th models.Thresholds) []models.MatchEdge {
	groups := make(map[string][]string) // "type\x1fvalue" -> contact IDs

	for i := range records {
		c := &records[i]
		seen := make(map[string]bool)
		for _, cp := range c.ContactPoints {
			value := normalizeContactPoint(cp, th)
			if value == "" {
				continue
			}
			key := string(cp.Type) + "\x1f" + value
			if seen[key] {
				continue
			}
			seen[key] = true
			groups[key] = append(groups[key], c.ID)
		}
	}

	return edgesFromGroups(groups, models.TierExact)
}

// DetectComposite finds contacts with equal normalized given name, family
// name, and job title. All three fields are required; a missing title means
// no edge; common names need the title to disambiguate.
func DetectComposite(records []models.Contact, th models.Thresholds) []models.MatchEdge {
	groups := make(map[string][]string)

	for i := range records {
		c := &records[i]
		first := fingerprint.Key(c.FirstName)
		last := fingerprint.Key(c.LastName)
		title := fingerprint.Key(c.JobTitle)
		if first == "" || last == "" || title == "" {
			continue
		}
		key := first + "\x1f" + last + "\x1f" + title
		groups[key] = append(groups[key], c.ID)
	}

	return edgesFromGroups(groups, models.TierComposite)
}

// DetectFuzzy compares full names pairwise within phonetic blocks and emits
// an edge for every pair scoring at or above the review similarity cutoff.
// Records with an empty normalized name are excluded entirely; empty versus
// empty is never a match.
func DetectFuzzy(records []models.Contact, th models.Thresholds) []models.MatchEdge {
	type member struct {
		idx  int
		name string
	}

	candidates := make([]models.Contact, 0, len(records))
	names := make([]string, 0, len(records))
	for i := range records {
		name := normalizers.NormalizeName(records[i].FullName())
		if name == "" {
			continue
		}
		candidates = append(candidates, records[i])
		names = append(names, name)
	}

	index := BuildBlockingIndex(candidates, th.FallbackKeyWidth)
	scorer := NewScorer()

	var edges []models.MatchEdge
	emitted := make(map[string]bool)

	for _, block := range index.Blocks() {
		if len(block) < 2 {
			continue
		}
		members := make([]member, len(block))
		for i, idx := range block {
			members[i] = member{idx: idx, name: names[idx]}
		}
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				score := scorer.Similarity(members[i].name, members[j].name)
				if score < th.ReviewSimilarity {
					continue
				}
				edge := models.NewMatchEdge(
					candidates[members[i].idx].ID,
					candidates[members[j].idx].ID,
					models.TierFuzzy,
					score,
					members[i].name+" <-> "+members[j].name,
				)
				if emitted[edge.PairKey()] {
					continue
				}
				emitted[edge.PairKey()] = true
				edges = append(edges, edge)
			}
		}
	}

	sortEdges(edges)
	return edges
}

// DetectFingerprint finds contacts whose token-sorted name fingerprints are
// equal while the raw names differ. This catches reorderings ("Last, First"
// vs "First Last") and punctuation or diacritic variants that exact
// comparison misses, independent of the fuzzy similarity threshold.
func DetectFingerprint(records []models.Contact, th models.Thresholds) []models.MatchEdge {
	type entry struct {
		id   string
		name string
	}
	groups := make(map[string][]entry)

	for i := range records {
		c := &records[i]
		name := c.FullName()
		key := fingerprint.Key(name)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], entry{id: c.ID, name: name})
	}

	var edges []models.MatchEdge
	for key, entries := range groups {
		if len(entries) < 2 {
			continue
		}
		for i := 0; i < len(entries); i++ {
			for j := i + 1; j < len(entries); j++ {
				if entries[i].name == entries[j].name {
					// Identical raw names alone are not evidence
					continue
				}
				edges = append(edges, models.NewMatchEdge(
					entries[i].id, entries[j].id,
					models.TierFingerprint, 1.0, key,
				))
			}
		}
	}

	sortEdges(edges)
	return edges
}

// normalizeContactPoint applies the type-appropriate normalizer.
func normalizeContactPoint(cp models.ContactPoint, th models.Thresholds) string {
	switch cp.Type {
	case models.ContactPointEmail:
		return normalizers.NormalizeEmail(cp.Value)
	case models.ContactPointPhone:
		return normalizers.NormalizePhoneE164(cp.Value, th.PhoneRegion, th.PhoneStrict)
	case models.ContactPointSocial:
		return normalizers.NormalizeSocial(cp.Value)
	}
	return ""
}

// edgesFromGroups expands every group with two or more distinct members into
// pairwise edges, deduplicating pairs that share several values.
func edgesFromGroups(groups map[string][]string, tier models.Tier) []models.MatchEdge {
	var edges []models.MatchEdge
	emitted := make(map[string]bool)

	for key, ids := range groups {
		ids = uniqueStrings(ids)
		if len(ids) < 2 {
			continue
		}
		value := strings.ReplaceAll(key, "\x1f", " | ")
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				edge := models.NewMatchEdge(ids[i], ids[j], tier, 1.0, value)
				if emitted[edge.PairKey()] {
					continue
				}
				emitted[edge.PairKey()] = true
				edges = append(edges, edge)
			}
		}
	}

	sortEdges(edges)
	return edges
}

// sortEdges orders edges deterministically; map iteration order must never
// leak into detector output.
func sortEdges(edges []models.MatchEdge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		if edges[i].B != edges[j].B {
			return edges[i].B < edges[j].B
		}
		return edges[i].Tier < edges[j].Tier
	})
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
