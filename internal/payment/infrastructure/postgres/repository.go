package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/doglivery/internal/payment/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// Save refreshes the payload of an existing charge but keeps its status
// and creation time.
func (r *Repository) Save(ctx context.Context, c domain.Charge) (domain.Charge, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO payments (order_id, txid, amount, pix_key, payload, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
		ON CONFLICT (order_id) DO UPDATE SET txid=$2, amount=$3, pix_key=$4, payload=$5, updated_at=now()
		RETURNING status, created_at`,
		c.OrderID, c.TxID, c.Amount, c.Key, c.Payload, c.Status, c.CreatedAt).
		Scan(&c.Status, &c.CreatedAt)
	if err != nil {
		return domain.Charge{}, err
	}
	return c, nil
}
