// Package matching implements the tiered duplicate-detection funnel: exact
// contact-point identity, composite name+title, blocked fuzzy similarity,
// and fingerprint reordering/typo matching.
package matching

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"golang.org/x/sync/errgroup"

	"github.com/Ramsey-B/clover/internal/tracing"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// Engine runs the enabled tier detectors over an immutable record snapshot
// and unions their edges. Tier outputs are independent, so the final edge set
// does not depend on execution order; tiers run concurrently.
type Engine struct {
	logger ectologger.Logger
}

// NewEngine creates a new match engine
func NewEngine(logger ectologger.Logger) *Engine {
	return &Engine{logger: logger}
}

// BuildEdges runs every enabled detector over the snapshot and returns the
// unioned edge set in deterministic order. Invalid configuration fails the
// call before any comparison work begins; per-record data issues never do.
func (e *Engine) BuildEdges(ctx context.Context, records []models.Contact, th models.Thresholds) ([]models.MatchEdge, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Engine.BuildEdges")
	defer span.End()

	if err := th.Validate(); err != nil {
		return nil, err
	}

	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"record_count": len(records),
	})

	tiers := make([]models.Tier, 0, 4)
	detectors := make([]Detector, 0, 4)
	for _, tier := range models.AllTiers() {
		if !th.TierEnabled(tier) {
			continue
		}
		detector, err := detectorFor(tier)
		if err != nil {
			return nil, fmt.Errorf("invalid thresholds: %w", err)
		}
		tiers = append(tiers, tier)
		detectors = append(detectors, detector)
	}

	// Detectors only read the shared snapshot; each writes its own slot
	results := make([][]models.MatchEdge, len(detectors))
	g, _ := errgroup.WithContext(ctx)
	for i := range detectors {
		i := i
		g.Go(func() error {
			results[i] = detectors[i](records, th)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var edges []models.MatchEdge
	for i, tierEdges := range results {
		log.WithFields(map[string]any{
			"tier":       tiers[i],
			"edge_count": len(tierEdges),
		}).Debug("Tier detection complete")
		edges = append(edges, tierEdges...)
	}

	sortEdges(edges)

	log.WithFields(map[string]any{"edge_count": len(edges)}).Debug("Built match edges")
	return edges, nil
}

// SkippedEmptyNames counts records the fuzzy tier will exclude for having an
// empty normalized name. Surfaced as a diagnostic, not a failure.
func SkippedEmptyNames(records []models.Contact) int {
	count := 0
	for i := range records {
		if normalizers.NormalizeName(records[i].FullName()) == "" {
			count++
		}
	}
	return count
}
