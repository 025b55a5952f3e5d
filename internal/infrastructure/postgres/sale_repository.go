package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/subzonix/subzonix-api/internal/domain/entity"
	"github.com/subzonix/subzonix-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL. Recibe el pool
// (no un Querier) porque venta + ítems se escriben como un agregado en una
// transacción propia.
type SaleRepo struct {
	pool *pgxpool.Pool
}

// NewSaleRepository construye el adaptador.
func NewSaleRepository(pool *pgxpool.Pool) *SaleRepo {
	return &SaleRepo{pool: pool}
}

// Create persiste la venta y sus ítems en una transacción. El trigger de la
// tabla sales emite el NOTIFY que alimenta el feed.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.SaleRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO sales (id, tenant_id, client_name, client_phone, client_status,
			vendor_name, vendor_phone, vendor_status,
			total_cost, total_sale, profit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = tx.Exec(ctx, query,
		sale.ID, sale.TenantID, sale.ClientName, sale.ClientPhone, sale.ClientStatus,
		sale.VendorName, sale.VendorPhone, sale.VendorStatus,
		sale.Finance.TotalCost, sale.Finance.TotalSale, sale.Finance.Profit,
		sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	if err := insertItems(ctx, tx, sale.Items); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertItems(ctx context.Context, tx pgx.Tx, items []entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, label, expiry_date, cost, price)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, it := range items {
		if _, err := tx.Exec(ctx, query, it.ID, it.SaleID, it.Label, it.ExpiryDate, it.Cost, it.Price); err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una venta con sus ítems; nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.SaleRecord, error) {
	query := `
		SELECT id, tenant_id, client_name, client_phone, client_status,
			vendor_name, vendor_phone, vendor_status,
			total_cost, total_sale, profit, created_at, updated_at
		FROM sales WHERE id = $1`
	var s entity.SaleRecord
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.TenantID, &s.ClientName, &s.ClientPhone, &s.ClientStatus,
		&s.VendorName, &s.VendorPhone, &s.VendorStatus,
		&s.Finance.TotalCost, &s.Finance.TotalSale, &s.Finance.Profit,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	items, err := r.itemsBySale(ctx, []string{s.ID})
	if err != nil {
		return nil, err
	}
	s.Items = items[s.ID]
	return &s, nil
}

// ListByTenant devuelve el snapshot completo del tenant: created_at desc con
// desempate por id desc, la misma ordenación que usa el agregador.
func (r *SaleRepo) ListByTenant(ctx context.Context, tenantID string) ([]entity.SaleRecord, error) {
	query := `
		SELECT id, tenant_id, client_name, client_phone, client_status,
			vendor_name, vendor_phone, vendor_status,
			total_cost, total_sale, profit, created_at, updated_at
		FROM sales WHERE tenant_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var list []entity.SaleRecord
	var ids []string
	for rows.Next() {
		var s entity.SaleRecord
		if err := rows.Scan(
			&s.ID, &s.TenantID, &s.ClientName, &s.ClientPhone, &s.ClientStatus,
			&s.VendorName, &s.VendorPhone, &s.VendorStatus,
			&s.Finance.TotalCost, &s.Finance.TotalSale, &s.Finance.Profit,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}
	items, err := r.itemsBySale(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Items = items[list[i].ID]
	}
	return list, nil
}

func (r *SaleRepo) itemsBySale(ctx context.Context, saleIDs []string) (map[string][]entity.SaleItem, error) {
	query := `
		SELECT id, sale_id, label, expiry_date, cost, price
		FROM sale_items WHERE sale_id = ANY($1)
		ORDER BY expiry_date, id`
	rows, err := r.pool.Query(ctx, query, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]entity.SaleItem, len(saleIDs))
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.Label, &it.ExpiryDate, &it.Cost, &it.Price); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		out[it.SaleID] = append(out[it.SaleID], it)
	}
	return out, rows.Err()
}

// Update reescribe la venta y reemplaza sus ítems en una transacción.
func (r *SaleRepo) Update(ctx context.Context, sale *entity.SaleRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE sales SET client_name = $2, client_phone = $3, client_status = $4,
			vendor_name = $5, vendor_phone = $6, vendor_status = $7,
			total_cost = $8, total_sale = $9, profit = $10, updated_at = $11
		WHERE id = $1`
	_, err = tx.Exec(ctx, query,
		sale.ID, sale.ClientName, sale.ClientPhone, sale.ClientStatus,
		sale.VendorName, sale.VendorPhone, sale.VendorStatus,
		sale.Finance.TotalCost, sale.Finance.TotalSale, sale.Finance.Profit,
		sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, sale.ID); err != nil {
		return fmt.Errorf("delete sale items: %w", err)
	}
	if err := insertItems(ctx, tx, sale.Items); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Delete elimina la venta; los ítems caen por ON DELETE CASCADE.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	return nil
}
