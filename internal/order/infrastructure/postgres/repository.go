package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/doglivery/internal/order/domain"
	"github.com/dmehra2102/doglivery/pkg/outbox"
)

const aggregateType = "order"

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// SaveWithOutbox inserts the order, its items and the event in one
// transaction.
func (r *Repository) SaveWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte, headers map[string]string, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO orders (id, order_number, store_id, status, customer_name, customer_phone,
			delivery_street, delivery_number, delivery_neighborhood, delivery_complement, delivery_city, delivery_state, delivery_zip_code,
			payment_method, cash_change_for, cash_change, subtotal, delivery_fee, total, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
		o.ID, o.Number, o.StoreID, o.Status, o.Customer.Name, o.Customer.Phone,
		o.Delivery.Street, o.Delivery.Number, o.Delivery.Neighborhood, o.Delivery.Complement, o.Delivery.City, o.Delivery.State, o.Delivery.ZipCode,
		o.Payment.Method, nullable(o.Payment.CashChangeFor), nullable(o.Payment.CashChange), o.Subtotal, o.DeliveryFee, o.Total, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, item := range o.Items {
		batch.Queue(`INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price, order_type, requested_value, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			item.ID, o.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.OrderType, nullable(item.RequestedValue), item.Subtotal)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	if err = outbox.Append(ctx, tx, event(o.ID, eventType, payload, headers, traceparent)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) UpdateStatusWithOutbox(ctx context.Context, o domain.Order, from domain.OrderStatus, eventType string, payload []byte, headers map[string]string, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1 AND status=$4`, o.ID, o.Status, o.UpdatedAt, from)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	if err = outbox.Append(ctx, tx, event(o.ID, eventType, payload, headers, traceparent)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func event(orderID, eventType string, payload []byte, headers map[string]string, traceparent string) outbox.Event {
	if headers == nil {
		headers = map[string]string{}
	}
	return outbox.Event{
		AggregateType: aggregateType,
		AggregateID:   orderID,
		Type:          eventType,
		Payload:       payload,
		Headers:       headers,
		Traceparent:   traceparent,
	}
}

const orderColumns = `id, order_number, store_id, status, customer_name, customer_phone,
	delivery_street, delivery_number, delivery_neighborhood, delivery_complement, delivery_city, delivery_state, delivery_zip_code,
	payment_method, cash_change_for, cash_change, subtotal, delivery_fee, total, created_at, updated_at`

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var changeFor, change decimal.NullDecimal
	err := row.Scan(&o.ID, &o.Number, &o.StoreID, &o.Status, &o.Customer.Name, &o.Customer.Phone,
		&o.Delivery.Street, &o.Delivery.Number, &o.Delivery.Neighborhood, &o.Delivery.Complement, &o.Delivery.City, &o.Delivery.State, &o.Delivery.ZipCode,
		&o.Payment.Method, &changeFor, &change, &o.Subtotal, &o.DeliveryFee, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	o.Payment.CashChangeFor = optional(changeFor)
	o.Payment.CashChange = optional(change)
	return o, nil
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, product_id, product_name, quantity, unit_price, order_type, requested_value, subtotal
		FROM order_items WHERE order_id=$1 ORDER BY product_name`, o.ID)
	if err != nil {
		return domain.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.Item
		var requested decimal.NullDecimal
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.OrderType, &requested, &it.Subtotal); err != nil {
			return domain.Order{}, err
		}
		it.RequestedValue = optional(requested)
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

// ListByStore returns the store's orders newest first. An empty status
// matches every status.
func (r *Repository) ListByStore(ctx context.Context, storeID string, status domain.OrderStatus) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE store_id=$1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC`, storeID, string(status))
}

func (r *Repository) ListByPhone(ctx context.Context, storeID, phoneDigits string) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE store_id=$1 AND regexp_replace(customer_phone, '\D', '', 'g') = $2
		ORDER BY created_at DESC`, storeID, phoneDigits)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func optional(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}
