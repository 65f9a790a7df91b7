package matching

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestEngineBuildEdges(t *testing.T) {
	engine := NewEngine(testLogger())
	ctx := context.Background()

	records := []models.Contact{
		{
			ID: "c1", FirstName: "José", LastName: "García",
			ContactPoints: []models.ContactPoint{
				{ID: "p1", Type: models.ContactPointEmail, Value: "jose.garcia@acme.com"},
			},
		},
		{
			ID: "c2", FirstName: "Jose", LastName: "Garcia",
			ContactPoints: []models.ContactPoint{
				{ID: "p2", Type: models.ContactPointEmail, Value: "JOSE.GARCIA@ACME.COM"},
			},
		},
		{ID: "c3", FirstName: "Wanda", LastName: "Maximoff"},
	}

	t.Run("should union edges across tiers", func(t *testing.T) {
		edges, err := engine.BuildEdges(ctx, records, models.DefaultThresholds())
		require.NoError(t, err)

		tiers := make(map[models.Tier]bool)
		for _, e := range edges {
			assert.Equal(t, "c1", e.A)
			assert.Equal(t, "c2", e.B)
			tiers[e.Tier] = true
		}
		assert.True(t, tiers[models.TierExact])
		assert.True(t, tiers[models.TierFuzzy])
		assert.True(t, tiers[models.TierFingerprint])
	})

	t.Run("should be deterministic across runs", func(t *testing.T) {
		first, err := engine.BuildEdges(ctx, records, models.DefaultThresholds())
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			again, err := engine.BuildEdges(ctx, records, models.DefaultThresholds())
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})

	t.Run("should run only enabled tiers", func(t *testing.T) {
		th := models.DefaultThresholds()
		th.EnabledTiers = []models.Tier{models.TierExact}

		edges, err := engine.BuildEdges(ctx, records, th)
		require.NoError(t, err)
		require.Len(t, edges, 1)
		assert.Equal(t, models.TierExact, edges[0].Tier)
	})

	t.Run("should reject out-of-range thresholds before any work", func(t *testing.T) {
		th := models.DefaultThresholds()
		th.ReviewSimilarity = 1.5

		_, err := engine.BuildEdges(ctx, records, th)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid thresholds")
	})

	t.Run("should reject unknown tiers", func(t *testing.T) {
		th := models.DefaultThresholds()
		th.EnabledTiers = []models.Tier{"psychic"}

		_, err := engine.BuildEdges(ctx, records, th)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "psychic")
	})

	t.Run("should return no edges for an empty snapshot", func(t *testing.T) {
		edges, err := engine.BuildEdges(ctx, nil, models.DefaultThresholds())
		require.NoError(t, err)
		assert.Empty(t, edges)
	})
}

func TestSkippedEmptyNames(t *testing.T) {
	records := []models.Contact{
		{ID: "c1", FirstName: "Jane", LastName: "Doe"},
		{ID: "c2"},
		{ID: "c3", FirstName: "---"},
	}
	assert.Equal(t, 2, SkippedEmptyNames(records))
}
