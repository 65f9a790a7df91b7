// Package dupgroup persists duplicate groups and the excluded pairs produced
// by false-positive rejections.
package dupgroup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/internal/database"
	"github.com/Ramsey-B/clover/internal/tracing"
	"github.com/Ramsey-B/clover/pkg/models"
)

// ErrNotFound is returned when a duplicate group does not exist.
var ErrNotFound = errors.New("duplicate group not found")

// Repository handles duplicate group persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new duplicate group repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Upsert creates the group for a cluster key if it does not exist and returns
// it along with whether it was created. An existing group keeps its status and
// row ID; only the member count is refreshed while the group is unresolved.
func (r *Repository) Upsert(ctx context.Context, clusterKey string, memberCount int) (*models.DuplicateGroup, bool, error) {
	ctx, span := tracing.StartSpan(ctx, "dupgroup.Repository.Upsert")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":      "Upsert",
		"cluster_key": clusterKey,
	})

	existing, err := r.GetByClusterKey(ctx, clusterKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	now := time.Now().UTC()
	if existing != nil {
		if existing.Status == models.ResolutionUnresolved && existing.MemberCount != memberCount {
			ub := sqlbuilder.SQLite.NewUpdateBuilder()
			ub.Update("duplicate_groups")
			ub.Set(
				ub.Assign("member_count", memberCount),
				ub.Assign("updated_at", now),
			)
			ub.Where(ub.Equal("id", existing.ID))

			query, args := ub.Build()
			if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
				log.WithError(err).Error("Failed to update duplicate group")
				return nil, false, fmt.Errorf("failed to update duplicate group: %w", err)
			}
			existing.MemberCount = memberCount
			existing.UpdatedAt = now
		}
		return existing, false, nil
	}

	group := &models.DuplicateGroup{
		ID:          uuid.New().String(),
		ClusterKey:  clusterKey,
		Status:      models.ResolutionUnresolved,
		MemberCount: memberCount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto("duplicate_groups")
	ib.Cols("id", "cluster_key", "status", "member_count", "created_at", "updated_at")
	ib.Values(group.ID, group.ClusterKey, group.Status, group.MemberCount, group.CreatedAt, group.UpdatedAt)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to insert duplicate group")
		return nil, false, fmt.Errorf("failed to insert duplicate group: %w", err)
	}

	log.WithFields(map[string]any{"id": group.ID}).Debug("Created duplicate group")
	return group, true, nil
}

// GetByID returns the group with the given row ID or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.DuplicateGroup, error) {
	ctx, span := tracing.StartSpan(ctx, "dupgroup.Repository.GetByID")
	defer span.End()

	sb := selectGroups()
	sb.Where(sb.Equal("id", id))
	return r.getOne(ctx, sb)
}

// GetByClusterKey returns the group for the given cluster key or ErrNotFound.
func (r *Repository) GetByClusterKey(ctx context.Context, clusterKey string) (*models.DuplicateGroup, error) {
	ctx, span := tracing.StartSpan(ctx, "dupgroup.Repository.GetByClusterKey")
	defer span.End()

	sb := selectGroups()
	sb.Where(sb.Equal("cluster_key", clusterKey))
	return r.getOne(ctx, sb)
}

// ListByStatus returns the groups with the given status, oldest first.
func (r *Repository) ListByStatus(ctx context.Context, status models.ResolutionStatus) ([]models.DuplicateGroup, error) {
	ctx, span := tracing.StartSpan(ctx, "dupgroup.Repository.ListByStatus")
	defer span.End()

	sb := selectGroups()
	sb.Where(sb.Equal("status", status))
	sb.OrderBy("created_at", "id")

	query, args := sb.Build()
	var groups []models.DuplicateGroup
	if err := r.db.SelectContext(ctx, &groups, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list duplicate groups")
		return nil, fmt.Errorf("failed to list duplicate groups: %w", err)
	}
	return groups, nil
}

// MarkResolved moves an unresolved group to a terminal status. The primary
// contact ID is recorded for confirmed merges and left empty for rejections.
func (r *Repository) MarkResolved(ctx context.Context, id string, status models.ResolutionStatus, primaryContactID string) error {
	ctx, span := tracing.StartSpan(ctx, "dupgroup.Repository.MarkResolved")
	defer span.End()

	if status != models.ResolutionConfirmed && status != models.ResolutionFalsePositive {
		return fmt.Errorf("status %q is not a terminal resolution", status)
	}

	now := time.Now().UTC()
	ub := sqlbuilder.SQLite.NewUpdateBuilder()
	ub.Update("duplicate_groups")
	assignments := []string{
		ub.Assign("status", status),
		ub.Assign("updated_at", now),
		ub.Assign("resolved_at", now),
	}
	if primaryContactID != "" {
		assignments = append(assignments, ub.Assign("primary_contact_id", primaryContactID))
	}
	ub.Set(assignments...)
	ub.Where(
		ub.Equal("id", id),
		ub.Equal("status", models.ResolutionUnresolved),
	)

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to resolve duplicate group")
		return fmt.Errorf("failed to resolve duplicate group: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("group %q is not unresolved: %w", id, ErrNotFound)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":     id,
		"status": status,
	}).Info("Resolved duplicate group")
	return nil
}

// Delete removes an unresolved group. Resolved groups are history and are
// left untouched.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "dupgroup.Repository.Delete")
	defer span.End()

	db := sqlbuilder.SQLite.NewDeleteBuilder()
	db.DeleteFrom("duplicate_groups")
	db.Where(
		db.Equal("id", id),
		db.Equal("status", models.ResolutionUnresolved),
	)

	query, args := db.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete duplicate group")
		return fmt.Errorf("failed to delete duplicate group: %w", err)
	}
	return nil
}

// AddExcludedPairs records contact pairs that must never be matched again.
// Pairs are stored in canonical order and duplicates are ignored.
func (r *Repository) AddExcludedPairs(ctx context.Context, pairs [][2]string) error {
	ctx, span := tracing.StartSpan(ctx, "dupgroup.Repository.AddExcludedPairs")
	defer span.End()

	if len(pairs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		if b < a {
			a, b = b, a
		}

		ib := sqlbuilder.SQLite.NewInsertBuilder()
		ib.InsertIgnoreInto("excluded_pairs")
		ib.Cols("contact_a", "contact_b", "created_at")
		ib.Values(a, b, now)

		query, args := ib.Build()
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to add excluded pair")
			return fmt.Errorf("failed to add excluded pair: %w", err)
		}
	}
	return nil
}

// ListExcludedPairs returns the excluded pair set keyed by the canonical
// pair key used by match edges.
func (r *Repository) ListExcludedPairs(ctx context.Context) (map[string]bool, error) {
	ctx, span := tracing.StartSpan(ctx, "dupgroup.Repository.ListExcludedPairs")
	defer span.End()

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("contact_a", "contact_b")
	sb.From("excluded_pairs")

	query, args := sb.Build()
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list excluded pairs")
		return nil, fmt.Errorf("failed to list excluded pairs: %w", err)
	}
	defer rows.Close()

	excluded := make(map[string]bool)
	for rows.Next() {
		var a, b string
		if err := rows.Scan(&a, &b); err != nil {
			return nil, fmt.Errorf("failed to scan excluded pair: %w", err)
		}
		excluded[a+"\x1f"+b] = true
	}
	return excluded, rows.Err()
}

func (r *Repository) getOne(ctx context.Context, sb *sqlbuilder.SelectBuilder) (*models.DuplicateGroup, error) {
	query, args := sb.Build()
	var group models.DuplicateGroup
	if err := r.db.GetContext(ctx, &group, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get duplicate group")
		return nil, fmt.Errorf("failed to get duplicate group: %w", err)
	}
	return &group, nil
}

func selectGroups() *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("id", "cluster_key", "status", "member_count", "primary_contact_id",
		"created_at", "updated_at", "resolved_at")
	sb.From("duplicate_groups")
	return sb
}
