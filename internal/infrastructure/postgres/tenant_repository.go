package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/subzonix/subzonix-api/internal/domain"
	"github.com/subzonix/subzonix-api/internal/domain/entity"
	"github.com/subzonix/subzonix-api/internal/domain/repository"
)

var _ repository.TenantRepository = (*TenantRepo)(nil)

// TenantRepo implementación de TenantRepository (usable con pool o tx).
type TenantRepo struct {
	q Querier
}

// NewTenantRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTenantRepository(q Querier) *TenantRepo {
	return &TenantRepo{q: q}
}

// Create persiste un nuevo tenant.
func (r *TenantRepo) Create(ctx context.Context, t *entity.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, phone, email, plan, retention_months, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Name, t.Phone, t.Email, t.Plan, t.RetentionMonths, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

// GetByID obtiene un tenant por ID.
func (r *TenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	query := `
		SELECT id, name, phone, email, plan, retention_months, status, created_at, updated_at
		FROM tenants WHERE id = $1`
	var t entity.Tenant
	err := r.q.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Phone, &t.Email, &t.Plan, &t.RetentionMonths, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &t, nil
}

// Update actualiza un tenant. El trigger de la tabla emite el NOTIFY que
// refresca el entitlement en el motor.
func (r *TenantRepo) Update(ctx context.Context, t *entity.Tenant) error {
	query := `
		UPDATE tenants SET name = $2, phone = $3, email = $4, plan = $5,
			retention_months = $6, status = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Name, t.Phone, t.Email, t.Plan, t.RetentionMonths, t.Status, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	return nil
}

// HasActiveModule informa si el tenant tiene el módulo activo y sin vencer.
func (r *TenantRepo) HasActiveModule(ctx context.Context, tenantID, moduleName string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM tenant_modules
			WHERE tenant_id = $1 AND module_name = $2 AND is_active
				AND (expires_at IS NULL OR expires_at > NOW())
		)`
	var active bool
	if err := r.q.QueryRow(ctx, query, tenantID, moduleName).Scan(&active); err != nil {
		return false, fmt.Errorf("check module: %w", err)
	}
	return active, nil
}

// ListModules lista los módulos del tenant.
func (r *TenantRepo) ListModules(ctx context.Context, tenantID string) ([]*entity.TenantModule, error) {
	query := `
		SELECT id, tenant_id, module_name, is_active, activated_at, expires_at, created_at, updated_at
		FROM tenant_modules WHERE tenant_id = $1 ORDER BY module_name`
	rows, err := r.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()
	var list []*entity.TenantModule
	for rows.Next() {
		var m entity.TenantModule
		if err := rows.Scan(&m.ID, &m.TenantID, &m.ModuleName, &m.IsActive, &m.ActivatedAt, &m.ExpiresAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
