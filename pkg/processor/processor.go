// Package processor orchestrates the dedup pipeline: load the contact
// snapshot, build match edges, cluster, and persist or resolve duplicate
// groups.
package processor

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/internal/repositories/contact"
	"github.com/Ramsey-B/clover/internal/repositories/dupgroup"
	"github.com/Ramsey-B/clover/internal/tracing"
	"github.com/Ramsey-B/clover/pkg/clustering"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/merging"
	"github.com/Ramsey-B/clover/pkg/models"
)

// Processor wires the matching engine, clusterer, and merge resolver to the
// repositories.
type Processor struct {
	logger     ectologger.Logger
	contacts   *contact.Repository
	groups     *dupgroup.Repository
	engine     *matching.Engine
	resolver   *merging.Resolver
	thresholds models.Thresholds
}

// NewProcessor creates a new dedup processor
func NewProcessor(
	logger ectologger.Logger,
	contacts *contact.Repository,
	groups *dupgroup.Repository,
	thresholds models.Thresholds,
) *Processor {
	return &Processor{
		logger:     logger,
		contacts:   contacts,
		groups:     groups,
		engine:     matching.NewEngine(logger),
		resolver:   merging.NewResolver(logger),
		thresholds: thresholds,
	}
}

// FlagResult summarizes one detection pass.
type FlagResult struct {
	RecordCount      int                `json:"record_count"`
	EdgeCount        int                `json:"edge_count"`
	ExcludedEdges    int                `json:"excluded_edges"`
	SkippedEmptyName int                `json:"skipped_empty_name"`
	Clusters         []models.Cluster   `json:"clusters"`
	Edges            []models.MatchEdge `json:"edges,omitempty"`
	NewGroups        int                `json:"new_groups"`
	RetiredGroups    int                `json:"retired_groups"`
}

// AnalyzeDuplicates runs detection and clustering without persisting
// anything. Excluded pairs are still honored.
func (p *Processor) AnalyzeDuplicates(ctx context.Context) (*FlagResult, error) {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.AnalyzeDuplicates")
	defer span.End()

	result, _, err := p.detect(ctx, p.thresholds)
	return result, err
}

// FlagDuplicates runs detection, persists a duplicate group per new cluster,
// and points member contacts at their group. Clusters are recomputed from
// scratch on every run, so unresolved groups the new partition no longer
// supports are retired and contacts that fell out of every cluster are
// detached. Groups already rejected as false positives are never re-proposed
// because their pairs are excluded.
func (p *Processor) FlagDuplicates(ctx context.Context) (*FlagResult, error) {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.FlagDuplicates")
	defer span.End()

	result, records, err := p.detect(ctx, p.thresholds)
	if err != nil {
		return nil, err
	}

	currentKeys := make(map[string]bool, len(result.Clusters))
	currentMembers := make(map[string]bool)
	for _, cluster := range result.Clusters {
		currentKeys[cluster.ID] = true
		for _, id := range cluster.Members {
			currentMembers[id] = true
		}
	}

	existing, err := p.groups.ListByStatus(ctx, models.ResolutionUnresolved)
	if err != nil {
		return nil, err
	}
	for _, group := range existing {
		if currentKeys[group.ClusterKey] {
			continue
		}
		if err := p.groups.Delete(ctx, group.ID); err != nil {
			return nil, err
		}
		result.RetiredGroups++
	}

	var departed []string
	for i := range records {
		if records[i].DuplicateGroupID != nil && !currentMembers[records[i].ID] {
			departed = append(departed, records[i].ID)
		}
	}
	if err := p.contacts.ClearDuplicateGroup(ctx, departed); err != nil {
		return nil, err
	}

	for _, cluster := range result.Clusters {
		group, created, err := p.groups.Upsert(ctx, cluster.ID, len(cluster.Members))
		if err != nil {
			return nil, err
		}
		if group.Status != models.ResolutionUnresolved {
			continue
		}
		if created {
			result.NewGroups++
		}
		if err := p.contacts.SetDuplicateGroup(ctx, cluster.Members, group.ID); err != nil {
			return nil, err
		}
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"record_count":   result.RecordCount,
		"edge_count":     result.EdgeCount,
		"cluster_count":  len(result.Clusters),
		"new_groups":     result.NewGroups,
		"retired_groups": result.RetiredGroups,
		"trace_id":       tracing.GetTraceID(ctx),
	}).Info("Flagged duplicates")
	return result, nil
}

// ResolveGroup merges an unresolved group's members into a single contact.
// explicitPrimary overrides automatic primary selection when non-empty.
func (p *Processor) ResolveGroup(ctx context.Context, groupID, explicitPrimary string) (*models.MergedRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.ResolveGroup")
	defer span.End()

	group, cluster, records, err := p.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	merged, err := p.resolver.Resolve(*cluster, records, explicitPrimary)
	if err != nil {
		return nil, err
	}

	if err := p.contacts.ApplyMerge(ctx, merged); err != nil {
		return nil, err
	}
	if err := p.groups.MarkResolved(ctx, group.ID, models.ResolutionConfirmed, merged.Primary.ID); err != nil {
		return nil, err
	}
	return merged, nil
}

// RejectGroup marks an unresolved group as a false positive, excludes every
// member pair from future matching, and detaches the members.
func (p *Processor) RejectGroup(ctx context.Context, groupID string) error {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.RejectGroup")
	defer span.End()

	group, cluster, _, err := p.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}

	var pairs [][2]string
	for i := 0; i < len(cluster.Members); i++ {
		for j := i + 1; j < len(cluster.Members); j++ {
			pairs = append(pairs, [2]string{cluster.Members[i], cluster.Members[j]})
		}
	}
	if err := p.groups.AddExcludedPairs(ctx, pairs); err != nil {
		return err
	}
	if err := p.contacts.ClearDuplicateGroup(ctx, cluster.Members); err != nil {
		return err
	}
	return p.groups.MarkResolved(ctx, group.ID, models.ResolutionFalsePositive, "")
}

// AutoMerge detects at the auto-merge threshold and resolves every resulting
// cluster without review. Fuzzy edges are held to the stricter bar; the exact
// tiers are unaffected.
func (p *Processor) AutoMerge(ctx context.Context) ([]*models.MergedRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.AutoMerge")
	defer span.End()

	strict := p.thresholds
	strict.ReviewSimilarity = strict.AutoMergeSimilarity

	result, _, err := p.detect(ctx, strict)
	if err != nil {
		return nil, err
	}

	var merges []*models.MergedRecord
	for _, cluster := range result.Clusters {
		group, _, err := p.groups.Upsert(ctx, cluster.ID, len(cluster.Members))
		if err != nil {
			return nil, err
		}
		if group.Status != models.ResolutionUnresolved {
			continue
		}

		records, err := p.contacts.GetByIDs(ctx, cluster.Members)
		if err != nil {
			return nil, err
		}
		merged, err := p.resolver.Resolve(cluster, records, "")
		if err != nil {
			return nil, err
		}
		if err := p.contacts.ApplyMerge(ctx, merged); err != nil {
			return nil, err
		}
		if err := p.groups.MarkResolved(ctx, group.ID, models.ResolutionConfirmed, merged.Primary.ID); err != nil {
			return nil, err
		}
		merges = append(merges, merged)
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"merge_count": len(merges),
		"trace_id":    tracing.GetTraceID(ctx),
	}).Info("Auto-merge complete")
	return merges, nil
}

func (p *Processor) detect(ctx context.Context, th models.Thresholds) (*FlagResult, []models.Contact, error) {
	records, err := p.contacts.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	edges, err := p.engine.BuildEdges(ctx, records, th)
	if err != nil {
		return nil, nil, err
	}

	excluded, err := p.groups.ListExcludedPairs(ctx)
	if err != nil {
		return nil, nil, err
	}

	kept := edges[:0]
	excludedCount := 0
	for _, edge := range edges {
		if excluded[edge.PairKey()] {
			excludedCount++
			continue
		}
		kept = append(kept, edge)
	}
	edges = kept

	return &FlagResult{
		RecordCount:      len(records),
		EdgeCount:        len(edges),
		ExcludedEdges:    excludedCount,
		SkippedEmptyName: matching.SkippedEmptyNames(records),
		Clusters:         clustering.Cluster(edges),
		Edges:            edges,
	}, records, nil
}

func (p *Processor) loadGroup(ctx context.Context, groupID string) (*models.DuplicateGroup, *models.Cluster, []models.Contact, error) {
	group, err := p.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, nil, nil, err
	}
	if group.Status != models.ResolutionUnresolved {
		return nil, nil, nil, fmt.Errorf("group %q already resolved as %s", groupID, group.Status)
	}

	records, err := p.contacts.ListAll(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	var members []string
	for _, c := range records {
		if c.DuplicateGroupID != nil && *c.DuplicateGroupID == group.ID {
			members = append(members, c.ID)
		}
	}
	if len(members) < 2 {
		return nil, nil, nil, fmt.Errorf("group %q has %d attached contacts, need at least 2", groupID, len(members))
	}

	cluster := &models.Cluster{ID: group.ClusterKey, Members: members}
	return group, cluster, records, nil
}
