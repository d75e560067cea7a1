package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/inbalnitzani/Integrations/internal/models"
)

const integrationColumns = "id, name, integration_type, supplier, description, tags, api_docs_url, config_example, logo_url, author, created_at, updated_at"

// IntegrationRepository manages persistence for integration records.
type IntegrationRepository struct {
	db *sqlx.DB
}

// NewIntegrationRepository constructs an IntegrationRepository.
func NewIntegrationRepository(db *sqlx.DB) *IntegrationRepository {
	return &IntegrationRepository{db: db}
}

// buildIntegrationFilter renders the shared FROM/WHERE clause for filtered
// queries along with its positional arguments.
func buildIntegrationFilter(filter models.IntegrationFilter) (string, []interface{}) {
	base := "FROM integrations WHERE 1=1"
	var args []interface{}

	if filter.Type != nil {
		base += fmt.Sprintf(" AND integration_type = $%d", len(args)+1)
		args = append(args, *filter.Type)
	}
	if filter.Supplier != "" {
		base += fmt.Sprintf(" AND supplier = $%d", len(args)+1)
		args = append(args, filter.Supplier)
	}
	// The date range is applied only when both bounds are present.
	if filter.CreatedFrom != nil && filter.CreatedTo != nil {
		base += fmt.Sprintf(" AND created_at >= $%d AND created_at <= $%d", len(args)+1, len(args)+2)
		args = append(args, *filter.CreatedFrom, *filter.CreatedTo)
	}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND (LOWER(name) LIKE $%d OR LOWER(description) LIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	return base, args
}

// List returns integrations matching the filter together with the total count
// of matches independent of the page window. Results are always ordered by
// creation time descending.
func (r *IntegrationRepository) List(ctx context.Context, filter models.IntegrationFilter) ([]models.Integration, int, error) {
	base, args := buildIntegrationFilter(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", integrationColumns, base, size, offset)

	var records []models.Integration
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list integrations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count integrations: %w", err)
	}

	return records, total, nil
}

// ListAll returns every integration matching the filter without a page window,
// ordered by creation time descending. A single unwindowed query keeps the
// result consistent against concurrent writes. Used by exports.
func (r *IntegrationRepository) ListAll(ctx context.Context, filter models.IntegrationFilter) ([]models.Integration, error) {
	base, args := buildIntegrationFilter(filter)
	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC", integrationColumns, base)

	var records []models.Integration
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list all integrations: %w", err)
	}
	return records, nil
}

// FindByID fetches a single integration by ID.
func (r *IntegrationRepository) FindByID(ctx context.Context, id string) (*models.Integration, error) {
	query := fmt.Sprintf("SELECT %s FROM integrations WHERE id = $1 LIMIT 1", integrationColumns)
	var record models.Integration
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find integration by id: %w", err)
	}
	return &record, nil
}

// DistinctSuppliers returns the sorted set of supplier strings.
func (r *IntegrationRepository) DistinctSuppliers(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT supplier FROM integrations ORDER BY supplier ASC`
	var suppliers []string
	if err := r.db.SelectContext(ctx, &suppliers, query); err != nil {
		return nil, fmt.Errorf("distinct suppliers: %w", err)
	}
	return suppliers, nil
}

// Create inserts a new integration record.
func (r *IntegrationRepository) Create(ctx context.Context, record *models.Integration) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	const query = `INSERT INTO integrations (id, name, integration_type, supplier, description, tags, api_docs_url, config_example, logo_url, author, created_at, updated_at)
        VALUES (:id, :name, :integration_type, :supplier, :description, :tags, :api_docs_url, :config_example, :logo_url, :author, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create integration: %w", err)
	}
	return nil
}

// Update modifies the mutable fields of an existing integration.
func (r *IntegrationRepository) Update(ctx context.Context, record *models.Integration) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE integrations SET name = :name, integration_type = :integration_type, supplier = :supplier, description = :description, tags = :tags, api_docs_url = :api_docs_url, config_example = :config_example, logo_url = :logo_url, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("update integration: %w", err)
	}
	return nil
}

// Delete removes an integration row. Deletes are hard; there is no soft-delete.
func (r *IntegrationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM integrations WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete integration: %w", err)
	}
	return nil
}
