package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetAISettings retrieves a tenant's AI settings. A tenant without a row is
// simply not entitled; no error is raised.
func (r *Repo) GetAISettings(ctx context.Context, tenantID uuid.UUID) (AISettings, error) {
	query := `
		SELECT tenant_id, ai_enabled, digest_email
		FROM organization_ai_settings
		WHERE tenant_id = $1`

	var s AISettings
	err := r.pool.QueryRow(ctx, query, tenantID).Scan(&s.TenantID, &s.AIEnabled, &s.DigestEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AISettings{TenantID: tenantID, AIEnabled: false}, nil
		}
		return AISettings{}, fmt.Errorf("get ai settings: %w", err)
	}
	return s, nil
}

// UpsertAISettings creates or updates a tenant's AI settings.
func (r *Repo) UpsertAISettings(ctx context.Context, settings AISettings) (AISettings, error) {
	query := `
		INSERT INTO organization_ai_settings (tenant_id, ai_enabled, digest_email)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id) DO UPDATE SET
			ai_enabled = EXCLUDED.ai_enabled,
			digest_email = EXCLUDED.digest_email,
			updated_at = now()
		RETURNING tenant_id, ai_enabled, digest_email`

	var s AISettings
	err := r.pool.QueryRow(ctx, query, settings.TenantID, settings.AIEnabled, settings.DigestEmail).
		Scan(&s.TenantID, &s.AIEnabled, &s.DigestEmail)
	if err != nil {
		return AISettings{}, fmt.Errorf("upsert ai settings: %w", err)
	}
	return s, nil
}

// ListAIEnabledTenants returns every tenant entitled to scheduled scans.
func (r *Repo) ListAIEnabledTenants(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT tenant_id FROM organization_ai_settings WHERE ai_enabled = true`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list ai-enabled tenants: %w", err)
	}
	defer rows.Close()

	tenants := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tenant id: %w", err)
		}
		tenants = append(tenants, id)
	}
	return tenants, rows.Err()
}
