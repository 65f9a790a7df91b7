// Package contact persists contact records and their contact points.
package contact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	"github.com/Ramsey-B/clover/internal/database"
	"github.com/Ramsey-B/clover/internal/tracing"
	"github.com/Ramsey-B/clover/pkg/models"
)

// Repository handles contact persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new contact repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a contact and its contact points.
func (r *Repository) Create(ctx context.Context, contact *models.Contact) error {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":     "Create",
		"contact_id": contact.ID,
	})

	now := time.Now().UTC()
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = now
	}
	contact.UpdatedAt = now

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		ib := sqlbuilder.SQLite.NewInsertBuilder()
		ib.InsertInto("contacts")
		ib.Cols("id", "first_name", "last_name", "job_title", "description",
			"full_data", "duplicate_group_id", "created_at", "updated_at")
		ib.Values(contact.ID, contact.FirstName, contact.LastName, contact.JobTitle,
			contact.Description, nullableJSON(contact.FullData), contact.DuplicateGroupID,
			contact.CreatedAt, contact.UpdatedAt)

		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		return insertContactPoints(ctx, tx, contact.ID, contact.ContactPoints)
	})
	if err != nil {
		log.WithError(err).Error("Failed to create contact")
		return fmt.Errorf("failed to create contact: %w", err)
	}

	log.Debug("Created contact")
	return nil
}

// ListAll returns every contact with its contact points attached.
func (r *Repository) ListAll(ctx context.Context) ([]models.Contact, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.ListAll")
	defer span.End()

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("id", "first_name", "last_name", "job_title", "description",
		"full_data", "duplicate_group_id", "created_at", "updated_at")
	sb.From("contacts")
	sb.OrderBy("id")

	query, args := sb.Build()
	var rows []contactRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list contacts")
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	contacts := make([]models.Contact, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		contacts = append(contacts, row.toModel())
		ids = append(ids, row.ID)
	}

	if err := r.attachContactPoints(ctx, contacts, ids); err != nil {
		return nil, err
	}
	return contacts, nil
}

// GetByIDs returns the contacts with the given IDs, with contact points
// attached. Missing IDs are simply absent from the result.
func (r *Repository) GetByIDs(ctx context.Context, ids []string) ([]models.Contact, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.GetByIDs")
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("id", "first_name", "last_name", "job_title", "description",
		"full_data", "duplicate_group_id", "created_at", "updated_at")
	sb.From("contacts")
	sb.Where(sb.In("id", sqlbuilder.List(ids)))
	sb.OrderBy("id")

	query, args := sb.Build()
	var rows []contactRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get contacts")
		return nil, fmt.Errorf("failed to get contacts: %w", err)
	}

	contacts := make([]models.Contact, 0, len(rows))
	found := make([]string, 0, len(rows))
	for _, row := range rows {
		contacts = append(contacts, row.toModel())
		found = append(found, row.ID)
	}

	if err := r.attachContactPoints(ctx, contacts, found); err != nil {
		return nil, err
	}
	return contacts, nil
}

// SetDuplicateGroup points the given contacts at a duplicate group.
func (r *Repository) SetDuplicateGroup(ctx context.Context, contactIDs []string, groupID string) error {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.SetDuplicateGroup")
	defer span.End()

	if len(contactIDs) == 0 {
		return nil
	}

	ub := sqlbuilder.SQLite.NewUpdateBuilder()
	ub.Update("contacts")
	ub.Set(
		ub.Assign("duplicate_group_id", groupID),
		ub.Assign("updated_at", time.Now().UTC()),
	)
	ub.Where(ub.In("id", sqlbuilder.List(contactIDs)))

	query, args := ub.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to set duplicate group")
		return fmt.Errorf("failed to set duplicate group: %w", err)
	}
	return nil
}

// ClearDuplicateGroup detaches the given contacts from any duplicate group.
func (r *Repository) ClearDuplicateGroup(ctx context.Context, contactIDs []string) error {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.ClearDuplicateGroup")
	defer span.End()

	if len(contactIDs) == 0 {
		return nil
	}

	ub := sqlbuilder.SQLite.NewUpdateBuilder()
	ub.Update("contacts")
	ub.Set(
		ub.Assign("duplicate_group_id", nil),
		ub.Assign("updated_at", time.Now().UTC()),
	)
	ub.Where(ub.In("id", sqlbuilder.List(contactIDs)))

	query, args := ub.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to clear duplicate group")
		return fmt.Errorf("failed to clear duplicate group: %w", err)
	}
	return nil
}

// ApplyMerge persists a resolved merge in one transaction: the primary's
// scalar fields and contact points are replaced with the merged result and
// the secondary contacts are deleted.
func (r *Repository) ApplyMerge(ctx context.Context, merged *models.MergedRecord) error {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.ApplyMerge")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":     "ApplyMerge",
		"primary_id": merged.Primary.ID,
	})

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		ub := sqlbuilder.SQLite.NewUpdateBuilder()
		ub.Update("contacts")
		ub.Set(
			ub.Assign("first_name", merged.Primary.FirstName),
			ub.Assign("last_name", merged.Primary.LastName),
			ub.Assign("job_title", merged.Primary.JobTitle),
			ub.Assign("description", merged.Primary.Description),
			ub.Assign("duplicate_group_id", nil),
			ub.Assign("updated_at", time.Now().UTC()),
		)
		ub.Where(ub.Equal("id", merged.Primary.ID))

		query, args := ub.Build()
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("primary contact %q not found", merged.Primary.ID)
		}

		db := sqlbuilder.SQLite.NewDeleteBuilder()
		db.DeleteFrom("contact_points")
		db.Where(db.Equal("contact_id", merged.Primary.ID))
		query, args = db.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}

		// Secondaries go first so their contact point rows cascade away
		// before the merged set reuses those IDs under the primary.
		secondaries := merged.SecondaryIDs()
		if len(secondaries) > 0 {
			db := sqlbuilder.SQLite.NewDeleteBuilder()
			db.DeleteFrom("contacts")
			db.Where(db.In("id", sqlbuilder.List(secondaries)))
			query, args = db.Build()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return err
			}
		}

		return insertContactPoints(ctx, tx, merged.Primary.ID, merged.ContactPoints)
	})
	if err != nil {
		log.WithError(err).Error("Failed to apply merge")
		return fmt.Errorf("failed to apply merge: %w", err)
	}

	log.WithFields(map[string]any{
		"secondary_count": len(merged.Repointed),
	}).Info("Applied merge")
	return nil
}

func (r *Repository) attachContactPoints(ctx context.Context, contacts []models.Contact, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("id", "contact_id", "type", "value", "label")
	sb.From("contact_points")
	sb.Where(sb.In("contact_id", sqlbuilder.List(ids)))
	sb.OrderBy("contact_id", "id")

	query, args := sb.Build()
	var points []models.ContactPoint
	if err := r.db.SelectContext(ctx, &points, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load contact points")
		return fmt.Errorf("failed to load contact points: %w", err)
	}

	byContact := make(map[string][]models.ContactPoint, len(contacts))
	for _, p := range points {
		byContact[p.ContactID] = append(byContact[p.ContactID], p)
	}
	for i := range contacts {
		contacts[i].ContactPoints = byContact[contacts[i].ID]
	}
	return nil
}

func insertContactPoints(ctx context.Context, tx *sqlx.Tx, contactID string, points []models.ContactPoint) error {
	if len(points) == 0 {
		return nil
	}

	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto("contact_points")
	ib.Cols("id", "contact_id", "type", "value", "label")
	for _, p := range points {
		id := p.ID
		if id == "" {
			return errors.New("contact point is missing an ID")
		}
		ib.Values(id, contactID, p.Type, p.Value, p.Label)
	}

	query, args := ib.Build()
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

type contactRow struct {
	ID               string         `db:"id"`
	FirstName        string         `db:"first_name"`
	LastName         string         `db:"last_name"`
	JobTitle         string         `db:"job_title"`
	Description      string         `db:"description"`
	FullData         sql.NullString `db:"full_data"`
	DuplicateGroupID *string        `db:"duplicate_group_id"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (row contactRow) toModel() models.Contact {
	c := models.Contact{
		ID:               row.ID,
		FirstName:        row.FirstName,
		LastName:         row.LastName,
		JobTitle:         row.JobTitle,
		Description:      row.Description,
		DuplicateGroupID: row.DuplicateGroupID,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if row.FullData.Valid && row.FullData.String != "" {
		c.FullData = []byte(row.FullData.String)
	}
	return c
}

func nullableJSON(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	return string(data)
}
