package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/doglivery/internal/catalog/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

const storeColumns = `id, slug, name, phone, whatsapp, email, street, number, neighborhood, city, state, zip_code, pix_key, is_active`

func scanStore(row pgx.Row) (domain.Store, error) {
	var s domain.Store
	err := row.Scan(&s.ID, &s.Slug, &s.Name, &s.Phone, &s.WhatsApp, &s.Email,
		&s.Address.Street, &s.Address.Number, &s.Address.Neighborhood, &s.Address.City, &s.Address.State, &s.Address.ZipCode,
		&s.PixKey, &s.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Store{}, domain.ErrStoreNotFound
	}
	return s, err
}

func (r *Repository) StoreBySlug(ctx context.Context, slug string) (domain.Store, error) {
	return scanStore(r.pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE slug=$1 AND is_active`, slug))
}

func (r *Repository) StoreByID(ctx context.Context, id string) (domain.Store, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Store{}, domain.ErrStoreNotFound
	}
	return scanStore(r.pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE id=$1`, id))
}

func (r *Repository) DeliverySettings(ctx context.Context, storeID string) (domain.DeliverySettings, bool, error) {
	var ds domain.DeliverySettings
	var free decimal.NullDecimal
	err := r.pool.QueryRow(ctx, `SELECT store_id, delivery_fee, min_order_value, free_delivery_above, estimated_minutes
		FROM delivery_settings WHERE store_id=$1`, storeID).
		Scan(&ds.StoreID, &ds.DeliveryFee, &ds.MinOrderValue, &free, &ds.EstimatedMinutes)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DeliverySettings{}, false, nil
	}
	if err != nil {
		return domain.DeliverySettings{}, false, err
	}
	ds.FreeDeliveryAbove = optional(free)
	return ds, true, nil
}

const productColumns = `p.id, p.store_id, COALESCE(c.name, ''), p.name, p.slug, p.description, p.product_type,
	p.price, p.unit, p.order_mode, COALESCE(p.default_order_mode, ''), p.min_order_quantity, p.min_order_value,
	p.bag_options, p.stock_quantity, p.is_featured, p.is_active`

const productFrom = ` FROM products p LEFT JOIN categories c ON c.id = p.category_id`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	var minQty, minValue, stock decimal.NullDecimal
	var bags []byte
	err := row.Scan(&p.ID, &p.StoreID, &p.CategoryName, &p.Name, &p.Slug, &p.Description, &p.ProductType,
		&p.Price, &p.Unit, &p.OrderMode, &p.DefaultOrderMode, &minQty, &minValue,
		&bags, &stock, &p.IsFeatured, &p.IsActive)
	if err != nil {
		return domain.Product{}, err
	}
	if len(bags) > 0 {
		if err := json.Unmarshal(bags, &p.BagOptions); err != nil {
			return domain.Product{}, fmt.Errorf("product %s bag options: %w", p.ID, err)
		}
	}
	p.MinOrderQuantity = optional(minQty)
	p.MinOrderValue = optional(minValue)
	p.StockQuantity = optional(stock)
	return p, nil
}

func (r *Repository) Products(ctx context.Context, storeID string, featuredOnly bool) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+productFrom+`
		WHERE p.store_id=$1 AND p.is_active AND (NOT $2 OR p.is_featured)
		ORDER BY p.name`, storeID, featuredOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *Repository) ProductBySlug(ctx context.Context, storeID, slug string) (domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+productFrom+`
		WHERE p.store_id=$1 AND p.slug=$2 AND p.is_active`, storeID, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, err
}

// ProductsByID includes inactive products so callers can tell them apart
// from unknown ids.
func (r *Repository) ProductsByID(ctx context.Context, ids []string) ([]domain.Product, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+productFrom+` WHERE p.id = ANY($1::uuid[])`, valid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func optional(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	v := n.Decimal
	return &v
}
