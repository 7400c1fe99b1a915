package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docuchat/docuchat/internal/core/domain"
)

type TenantRepository struct {
	db *sql.DB
}

func NewTenantRepository(db *sql.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// GetOrCreate resolves a tenant by name, creating the row on first use.
// The no-op DO UPDATE makes RETURNING yield the existing row on conflict.
func (r *TenantRepository) GetOrCreate(ctx context.Context, name string) (*domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx, `
INSERT INTO tenants (id, name, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name, created_at
`, uuid.NewString(), name, time.Now().UTC())

	var tenant domain.Tenant
	if err := row.Scan(&tenant.ID, &tenant.Name, &tenant.CreatedAt); err != nil {
		return nil, fmt.Errorf("get or create tenant: %w", err)
	}
	return &tenant, nil
}
