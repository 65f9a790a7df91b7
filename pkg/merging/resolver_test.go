package merging

import (
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestResolverResolve(t *testing.T) {
	r := NewResolver(testLogger())

	t.Run("should pick the most complete record as primary", func(t *testing.T) {
		records := []models.Contact{
			{ID: "c1", FirstName: "Jane"},
			{ID: "c2", FirstName: "Jane", LastName: "Doe", JobTitle: "Engineer"},
		}
		cluster := models.Cluster{ID: "k1", Members: []string{"c1", "c2"}}

		merged, err := r.Resolve(cluster, records, "")
		require.NoError(t, err)
		assert.Equal(t, "c2", merged.Primary.ID)
		assert.Equal(t, map[string]string{"c1": "c2"}, merged.Repointed)
	})

	t.Run("should break completeness ties by contact point count then smallest ID", func(t *testing.T) {
		records := []models.Contact{
			{ID: "c2", FirstName: "Jane", ContactPoints: []models.ContactPoint{
				{ID: "p1", Type: models.ContactPointEmail, Value: "a@x.com"},
			}},
			{ID: "c1", FirstName: "Jane"},
			{ID: "c3", FirstName: "Jane"},
		}
		cluster := models.Cluster{ID: "k1", Members: []string{"c1", "c2", "c3"}}

		merged, err := r.Resolve(cluster, records, "")
		require.NoError(t, err)
		assert.Equal(t, "c2", merged.Primary.ID)

		// With equal points too, the smallest ID wins
		records[0].ContactPoints = nil
		merged, err = r.Resolve(cluster, records, "")
		require.NoError(t, err)
		assert.Equal(t, "c1", merged.Primary.ID)
	})

	t.Run("should fill empty primary fields without overwriting populated ones", func(t *testing.T) {
		records := []models.Contact{
			{ID: "c1", FirstName: "Jane", LastName: "Doe", JobTitle: "Engineer"},
			{ID: "c2", FirstName: "Janet", Description: "Met at conference"},
		}
		cluster := models.Cluster{ID: "k1", Members: []string{"c1", "c2"}}

		merged, err := r.Resolve(cluster, records, "")
		require.NoError(t, err)
		assert.Equal(t, "c1", merged.Primary.ID)
		assert.Equal(t, "Jane", merged.Primary.FirstName)
		assert.Equal(t, "Met at conference", merged.Primary.Description)
	})

	t.Run("should record conflicts for disagreeing populated values", func(t *testing.T) {
		records := []models.Contact{
			{ID: "c1", FirstName: "Jane", LastName: "Doe", JobTitle: "Engineer"},
			{ID: "c2", FirstName: "Janet", LastName: "Doe"},
		}
		cluster := models.Cluster{ID: "k1", Members: []string{"c1", "c2"}}

		merged, err := r.Resolve(cluster, records, "")
		require.NoError(t, err)
		require.Len(t, merged.Conflicts, 1)
		assert.Equal(t, "first_name", merged.Conflicts[0].Field)
		assert.ElementsMatch(t, []string{"Jane", "Janet"}, merged.Conflicts[0].Values)
		assert.Equal(t, "Jane", merged.Conflicts[0].ResolvedValue)
	})

	t.Run("should union contact points keeping the first label per value", func(t *testing.T) {
		records := []models.Contact{
			{ID: "c1", FirstName: "Jane", LastName: "Doe", JobTitle: "x", ContactPoints: []models.ContactPoint{
				{ID: "p1", ContactID: "c1", Type: models.ContactPointEmail, Value: "jane@x.com", Label: "work"},
			}},
			{ID: "c2", FirstName: "Jane", ContactPoints: []models.ContactPoint{
				{ID: "p2", ContactID: "c2", Type: models.ContactPointEmail, Value: "JANE@X.COM", Label: "personal"},
				{ID: "p3", ContactID: "c2", Type: models.ContactPointPhone, Value: "(202) 555-0123"},
			}},
		}
		cluster := models.Cluster{ID: "k1", Members: []string{"c1", "c2"}}

		merged, err := r.Resolve(cluster, records, "")
		require.NoError(t, err)
		require.Len(t, merged.ContactPoints, 2)
		assert.Equal(t, "jane@x.com", merged.ContactPoints[0].Value)
		assert.Equal(t, "work", merged.ContactPoints[0].Label)
		for _, cp := range merged.ContactPoints {
			assert.Equal(t, merged.Primary.ID, cp.ContactID)
		}
	})

	t.Run("should order merged points email, phone, then social", func(t *testing.T) {
		records := []models.Contact{
			{ID: "c1", FirstName: "Jane", LastName: "Doe", JobTitle: "x", ContactPoints: []models.ContactPoint{
				{ID: "p1", ContactID: "c1", Type: models.ContactPointPhone, Value: "(202) 555-0123"},
				{ID: "p2", ContactID: "c1", Type: models.ContactPointEmail, Value: "jane@x.com"},
			}},
			{ID: "c2", FirstName: "Jane", ContactPoints: []models.ContactPoint{
				{ID: "p3", ContactID: "c2", Type: models.ContactPointSocial, Value: "linkedin.com/in/janedoe"},
			}},
		}
		cluster := models.Cluster{ID: "k1", Members: []string{"c1", "c2"}}

		merged, err := r.Resolve(cluster, records, "")
		require.NoError(t, err)
		require.Len(t, merged.ContactPoints, 3)
		assert.Equal(t, models.ContactPointEmail, merged.ContactPoints[0].Type)
		assert.Equal(t, models.ContactPointPhone, merged.ContactPoints[1].Type)
		assert.Equal(t, models.ContactPointSocial, merged.ContactPoints[2].Type)
	})

	t.Run("should honor an explicit primary", func(t *testing.T) {
		records := []models.Contact{
			{ID: "c1", FirstName: "Jane"},
			{ID: "c2", FirstName: "Jane", LastName: "Doe"},
		}
		cluster := models.Cluster{ID: "k1", Members: []string{"c1", "c2"}}

		merged, err := r.Resolve(cluster, records, "c1")
		require.NoError(t, err)
		assert.Equal(t, "c1", merged.Primary.ID)
		assert.Equal(t, "Doe", merged.Primary.LastName)
	})

	t.Run("should reject an explicit primary outside the cluster", func(t *testing.T) {
		records := []models.Contact{
			{ID: "c1", FirstName: "Jane"},
			{ID: "c2", FirstName: "Jane"},
			{ID: "c9", FirstName: "Other"},
		}
		cluster := models.Cluster{ID: "k1", Members: []string{"c1", "c2"}}

		_, err := r.Resolve(cluster, records, "c9")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "c9")
	})

	t.Run("should fail when a member record is missing", func(t *testing.T) {
		records := []models.Contact{{ID: "c1"}}
		cluster := models.Cluster{ID: "k1", Members: []string{"c1", "c2"}}

		_, err := r.Resolve(cluster, records, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "c2")
	})

	t.Run("should be idempotent for the same inputs", func(t *testing.T) {
		records := []models.Contact{
			{ID: "c1", FirstName: "Jane", LastName: "Doe"},
			{ID: "c2", FirstName: "Janet", LastName: "Doe", JobTitle: "Engineer"},
		}
		cluster := models.Cluster{ID: "k1", Members: []string{"c1", "c2"}}

		first, err := r.Resolve(cluster, records, "")
		require.NoError(t, err)
		second, err := r.Resolve(cluster, records, "")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("should clear the group pointer on the merged primary", func(t *testing.T) {
		groupID := "g1"
		records := []models.Contact{
			{ID: "c1", FirstName: "Jane", DuplicateGroupID: &groupID},
			{ID: "c2", FirstName: "Jane", DuplicateGroupID: &groupID},
		}
		cluster := models.Cluster{ID: "k1", Members: []string{"c1", "c2"}}

		merged, err := r.Resolve(cluster, records, "")
		require.NoError(t, err)
		assert.Nil(t, merged.Primary.DuplicateGroupID)
	})
}
