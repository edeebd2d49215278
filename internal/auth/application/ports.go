package application

import (
	"context"
	"time"

	"github.com/dmehra2102/doglivery/internal/auth/domain"
)

type ProfileRepository interface {
	// Create reports domain.ErrProfileExists when the email is taken.
	Create(ctx context.Context, p domain.Profile) error
	ByID(ctx context.Context, id string) (domain.Profile, error)
	ByEmail(ctx context.Context, email string) (domain.Profile, error)
	ByPhone(ctx context.Context, phoneDigits string) (domain.Profile, error)
	Update(ctx context.Context, p domain.Profile) error
}

type TokenRevocations interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	Revoked(ctx context.Context, tokenID string) (bool, error)
}
