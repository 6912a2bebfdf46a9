package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"salespulse_backend/platform/apperr"
)

const customerNotFoundMessage = "customer not found"

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new customers repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a customer by ID within a tenant.
func (r *Repo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (Customer, error) {
	query := `
		SELECT id, tenant_id, name, email, phone, status, created_at, updated_at
		FROM customers
		WHERE id = $1 AND tenant_id = $2`

	var c Customer
	err := r.pool.QueryRow(ctx, query, id, tenantID).Scan(
		&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, apperr.NotFound(customerNotFoundMessage)
		}
		return Customer{}, fmt.Errorf("get customer by id: %w", err)
	}
	return c, nil
}

// List retrieves customers for a tenant with optional search and status filters.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Customer, int, error) {
	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}
	var statusParam interface{}
	if params.Status != "" {
		statusParam = params.Status
	}

	countQuery := `
		SELECT COUNT(*)
		FROM customers
		WHERE tenant_id = $1
		  AND ($2::text IS NULL OR name ILIKE $2)
		  AND ($3::text IS NULL OR status = $3)`

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, params.TenantID, searchParam, statusParam).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	query := `
		SELECT id, tenant_id, name, email, phone, status, created_at, updated_at
		FROM customers
		WHERE tenant_id = $1
		  AND ($2::text IS NULL OR name ILIKE $2)
		  AND ($3::text IS NULL OR status = $3)
		ORDER BY name ASC
		OFFSET $4 LIMIT $5`

	rows, err := r.pool.Query(ctx, query, params.TenantID, searchParam, statusParam, params.Offset, params.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]Customer, 0)
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate customers: %w", err)
	}

	return customers, total, nil
}

// Exists reports whether a customer exists within a tenant.
func (r *Repo) Exists(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1 AND tenant_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id, tenantID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check customer exists: %w", err)
	}
	return exists, nil
}

// RecordActivity inserts a new activity for a customer.
func (r *Repo) RecordActivity(ctx context.Context, params RecordActivityParams) (Activity, error) {
	query := `
		INSERT INTO customer_activities (tenant_id, customer_id, activity_type, subject, notes, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, tenant_id, customer_id, activity_type, subject, notes, occurred_at, created_at`

	var a Activity
	err := r.pool.QueryRow(ctx, query,
		params.TenantID, params.CustomerID, params.ActivityType, params.Subject, params.Notes, params.OccurredAt,
	).Scan(&a.ID, &a.TenantID, &a.CustomerID, &a.ActivityType, &a.Subject, &a.Notes, &a.OccurredAt, &a.CreatedAt)
	if err != nil {
		return Activity{}, fmt.Errorf("record activity: %w", err)
	}
	return a, nil
}

// ListActivities retrieves the most recent activities for a customer.
func (r *Repo) ListActivities(ctx context.Context, tenantID, customerID uuid.UUID, limit int) ([]Activity, error) {
	query := `
		SELECT id, tenant_id, customer_id, activity_type, subject, notes, occurred_at, created_at
		FROM customer_activities
		WHERE tenant_id = $1 AND customer_id = $2
		ORDER BY occurred_at DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, tenantID, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	activities := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.TenantID, &a.CustomerID, &a.ActivityType, &a.Subject, &a.Notes, &a.OccurredAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}

	return activities, nil
}
