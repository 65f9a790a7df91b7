package models

import "time"

// ResolutionStatus is the lifecycle state of a duplicate group. Groups are
// created unresolved and move to confirmed or false_positive only through
// explicit operator or policy action; both are terminal for that group.
type ResolutionStatus string

const (
	ResolutionUnresolved    ResolutionStatus = "unresolved"
	ResolutionConfirmed     ResolutionStatus = "confirmed"
	ResolutionFalsePositive ResolutionStatus = "false_positive"
)

// Cluster is a maximal connected component of the match-edge graph: a set of
// two or more contact IDs believed to represent the same person. Members are
// sorted and the ID is a deterministic function of the member set, so the
// same partition always produces the same cluster identity across runs.
type Cluster struct {
	ID      string   `json:"id"`
	Members []string `json:"members"`
}

// Contains reports whether the given contact ID is a cluster member.
func (c Cluster) Contains(id string) bool {
	for _, m := range c.Members {
		if m == id {
			return true
		}
	}
	return false
}

// DuplicateGroup is the persisted record of a cluster awaiting resolution.
// ClusterKey is the deterministic cluster identity; ID is the storage row ID.
type DuplicateGroup struct {
	ID               string           `json:"id" db:"id"`
	ClusterKey       string           `json:"cluster_key" db:"cluster_key"`
	Status           ResolutionStatus `json:"status" db:"status"`
	MemberCount      int              `json:"member_count" db:"member_count"`
	PrimaryContactID *string          `json:"primary_contact_id,omitempty" db:"primary_contact_id"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
	ResolvedAt       *time.Time       `json:"resolved_at,omitempty" db:"resolved_at"`
}
