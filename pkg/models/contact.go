package models

import (
	"encoding/json"
	"strings"
	"time"
)

// ContactPointType identifies the kind of value a contact point holds
type ContactPointType string

const (
	ContactPointEmail  ContactPointType = "email"
	ContactPointPhone  ContactPointType = "phone"
	ContactPointSocial ContactPointType = "social"
)

// ContactPoint is a typed reachable value (email address, phone number,
// social profile) attached to a contact.
type ContactPoint struct {
	ID        string           `json:"id,omitempty" db:"id"`
	ContactID string           `json:"contact_id,omitempty" db:"contact_id"`
	Type      ContactPointType `json:"type" db:"type"`
	Value     string           `json:"value" db:"value"`
	Label     string           `json:"label,omitempty" db:"label"`
}

// Contact represents a single contact record in the snapshot handed to the
// matching engine. The ID is immutable and unique for the duration of a run.
// FullData is opaque passthrough preserved verbatim through merges.
type Contact struct {
	ID               string          `json:"id" db:"id"`
	FirstName        string          `json:"first_name" db:"first_name"`
	LastName         string          `json:"last_name" db:"last_name"`
	JobTitle         string          `json:"job_title" db:"job_title"`
	Description      string          `json:"description,omitempty" db:"description"`
	ContactPoints    []ContactPoint  `json:"contact_points,omitempty"`
	FullData         json.RawMessage `json:"full_data,omitempty" db:"full_data"`
	DuplicateGroupID *string         `json:"duplicate_group_id,omitempty" db:"duplicate_group_id"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// FullName returns "First Last" with surrounding whitespace trimmed.
func (c *Contact) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// ScalarFields returns the named scalar fields in their merge order.
func (c *Contact) ScalarFields() map[string]string {
	return map[string]string{
		"first_name":  c.FirstName,
		"last_name":   c.LastName,
		"job_title":   c.JobTitle,
		"description": c.Description,
	}
}

// ScalarFieldOrder is the deterministic iteration order for ScalarFields.
var ScalarFieldOrder = []string{"first_name", "last_name", "job_title", "description"}

// NonEmptyScalarCount counts populated scalar fields, used for primary selection.
func (c *Contact) NonEmptyScalarCount() int {
	count := 0
	for _, v := range c.ScalarFields() {
		if strings.TrimSpace(v) != "" {
			count++
		}
	}
	return count
}

// PointsOfType returns the contact points matching the given type.
func (c *Contact) PointsOfType(t ContactPointType) []ContactPoint {
	var out []ContactPoint
	for _, cp := range c.ContactPoints {
		if cp.Type == t {
			out = append(out, cp)
		}
	}
	return out
}
