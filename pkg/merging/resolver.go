// Package merging resolves a duplicate cluster into a single canonical
// contact with a deterministic field policy.
package merging

import (
	"fmt"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// Resolver merges the members of a cluster into a canonical record. It never
// touches storage; the caller applies the returned MergedRecord.
type Resolver struct {
	logger ectologger.Logger
}

// NewResolver creates a new merge resolver
func NewResolver(logger ectologger.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve merges the cluster's members into the primary record. If
// explicitPrimary is non-empty it overrides automatic selection but must name
// a cluster member. The same cluster and records always produce the same
// result.
func (r *Resolver) Resolve(cluster models.Cluster, records []models.Contact, explicitPrimary string) (*models.MergedRecord, error) {
	byID := make(map[string]*models.Contact, len(records))
	for i := range records {
		byID[records[i].ID] = &records[i]
	}

	members := make([]*models.Contact, 0, len(cluster.Members))
	for _, id := range cluster.Members {
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("cluster member %q not found in records", id)
		}
		members = append(members, c)
	}
	if len(members) < 2 {
		return nil, fmt.Errorf("cluster %q has %d members, need at least 2", cluster.ID, len(members))
	}

	var primary *models.Contact
	if explicitPrimary != "" {
		if !cluster.Contains(explicitPrimary) {
			return nil, fmt.Errorf("primary %q is not a member of cluster %q", explicitPrimary, cluster.ID)
		}
		primary = byID[explicitPrimary]
	} else {
		primary = selectPrimary(members)
	}

	merged := models.MergedRecord{
		Primary:   *primary,
		Repointed: make(map[string]string, len(members)-1),
	}
	for _, m := range members {
		if m.ID != primary.ID {
			merged.Repointed[m.ID] = primary.ID
		}
	}

	merged.Conflicts = r.fillScalars(&merged.Primary, members)
	merged.ContactPoints = unionContactPoints(primary, members)
	merged.Primary.ContactPoints = merged.ContactPoints
	merged.Primary.DuplicateGroupID = nil

	r.logger.WithFields(map[string]any{
		"cluster_id":     cluster.ID,
		"primary_id":     primary.ID,
		"member_count":   len(members),
		"conflict_count": len(merged.Conflicts),
	}).Debug("Resolved cluster")

	return &merged, nil
}

// selectPrimary picks the most complete member: most populated scalar fields,
// then most contact points, then smallest ID.
func selectPrimary(members []*models.Contact) *models.Contact {
	best := members[0]
	for _, c := range members[1:] {
		switch {
		case c.NonEmptyScalarCount() != best.NonEmptyScalarCount():
			if c.NonEmptyScalarCount() > best.NonEmptyScalarCount() {
				best = c
			}
		case len(c.ContactPoints) != len(best.ContactPoints):
			if len(c.ContactPoints) > len(best.ContactPoints) {
				best = c
			}
		case c.ID < best.ID:
			best = c
		}
	}
	return best
}

// fillScalars fills the primary's empty scalar fields from the other members
// in cluster member order. A populated primary field is never overwritten.
// Disagreements between populated values become conflicts.
func (r *Resolver) fillScalars(primary *models.Contact, members []*models.Contact) []models.MergeConflict {
	var conflicts []models.MergeConflict

	for _, field := range models.ScalarFieldOrder {
		resolved := strings.TrimSpace(primary.ScalarFields()[field])
		var values []string
		var contactIDs []string

		for _, m := range members {
			v := strings.TrimSpace(m.ScalarFields()[field])
			if v == "" {
				continue
			}
			if resolved == "" {
				resolved = v
				setScalar(primary, field, v)
			}
			if !containsString(values, v) {
				values = append(values, v)
				contactIDs = append(contactIDs, m.ID)
			}
		}

		if len(values) > 1 {
			conflicts = append(conflicts, models.MergeConflict{
				Field:         field,
				Values:        values,
				ContactIDs:    contactIDs,
				ResolvedValue: resolved,
			})
		}
	}
	return conflicts
}

func setScalar(c *models.Contact, field, value string) {
	switch field {
	case "first_name":
		c.FirstName = value
	case "last_name":
		c.LastName = value
	case "job_title":
		c.JobTitle = value
	case "description":
		c.Description = value
	}
}

// pointTypeOrder fixes the order merged contact points are emitted in.
var pointTypeOrder = []models.ContactPointType{
	models.ContactPointEmail,
	models.ContactPointPhone,
	models.ContactPointSocial,
}

// unionContactPoints collects the members' contact points grouped by type,
// primary first within each type, deduplicated by type plus normalized value.
// The first occurrence wins, so the primary's labels are preserved.
func unionContactPoints(primary *models.Contact, members []*models.Contact) []models.ContactPoint {
	ordered := make([]*models.Contact, 0, len(members))
	ordered = append(ordered, primary)
	for _, m := range members {
		if m.ID != primary.ID {
			ordered = append(ordered, m)
		}
	}

	seen := make(map[string]bool)
	var out []models.ContactPoint
	for _, pt := range pointTypeOrder {
		for _, m := range ordered {
			for _, cp := range m.PointsOfType(pt) {
				key := string(cp.Type) + "\x1f" + normalizePointValue(cp)
				if seen[key] {
					continue
				}
				seen[key] = true
				cp.ContactID = primary.ID
				out = append(out, cp)
			}
		}
	}
	return out
}

func normalizePointValue(cp models.ContactPoint) string {
	switch cp.Type {
	case models.ContactPointEmail:
		return normalizers.NormalizeEmail(cp.Value)
	case models.ContactPointPhone:
		return normalizers.NormalizePhone(cp.Value)
	case models.ContactPointSocial:
		return normalizers.NormalizeSocial(cp.Value)
	default:
		return strings.ToLower(strings.TrimSpace(cp.Value))
	}
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
