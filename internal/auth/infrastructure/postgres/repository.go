package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/doglivery/internal/auth/domain"
)

const uniqueViolation = "23505"

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Create(ctx context.Context, p domain.Profile) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO profiles (id, email, password_hash, full_name, phone, role, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.Email, p.PasswordHash, p.FullName, p.Phone, p.Role, p.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrProfileExists
	}
	return err
}

const profileColumns = `id, email, password_hash, full_name, phone, role, created_at`

func (r *Repository) one(ctx context.Context, where string, arg any) (domain.Profile, error) {
	var p domain.Profile
	err := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE `+where+` LIMIT 1`, arg).
		Scan(&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.Phone, &p.Role, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return p, err
}

func (r *Repository) ByID(ctx context.Context, id string) (domain.Profile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return r.one(ctx, `id = $1`, id)
}

func (r *Repository) ByEmail(ctx context.Context, email string) (domain.Profile, error) {
	return r.one(ctx, `lower(email) = lower($1)`, email)
}

func (r *Repository) ByPhone(ctx context.Context, phoneDigits string) (domain.Profile, error) {
	return r.one(ctx, `regexp_replace(phone, '\D', '', 'g') = $1 ORDER BY created_at`, phoneDigits)
}

func (r *Repository) Update(ctx context.Context, p domain.Profile) error {
	ct, err := r.pool.Exec(ctx, `UPDATE profiles SET email=$2, full_name=$3, phone=$4 WHERE id=$1`,
		p.ID, p.Email, p.FullName, p.Phone)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrProfileExists
	}
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
