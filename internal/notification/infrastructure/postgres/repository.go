package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/doglivery/internal/notification/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Save(ctx context.Context, n domain.Notification) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO notifications (order_id, event_type, phone, channel, message, link, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		n.OrderID, n.EventType, n.Phone, n.Channel, n.Message, n.Link, n.CreatedAt)
	return err
}
