package application

import (
	"context"

	"github.com/dmehra2102/doglivery/internal/notification/domain"
)

type NotificationRepository interface {
	Save(ctx context.Context, n domain.Notification) error
}
