package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmehra2102/doglivery/internal/notification/domain"
	order "github.com/dmehra2102/doglivery/internal/order/domain"
)

type Service struct {
	log  *slog.Logger
	repo NotificationRepository
	now  func() time.Time
}

func NewService(log *slog.Logger, repo NotificationRepository) *Service {
	return &Service{log: log, repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Handle turns an order event into a customer notification. Events the
// notifier does not know, and payloads that do not decode, are skipped:
// redelivering them cannot help. A returned error means the event should
// be retried.
func (s *Service) Handle(ctx context.Context, eventType string, payload []byte) error {
	var n domain.Notification
	switch eventType {
	case order.EventOrderCreated:
		var ev order.OrderCreated
		if err := json.Unmarshal(payload, &ev); err != nil {
			s.log.Error("undecodable event dropped", "type", eventType, "err", err)
			return nil
		}
		n = domain.ForOrderCreated(ev, s.now())
	case order.EventOrderStatusChanged:
		var ev order.OrderStatusChanged
		if err := json.Unmarshal(payload, &ev); err != nil {
			s.log.Error("undecodable event dropped", "type", eventType, "err", err)
			return nil
		}
		n = domain.ForStatusChanged(ev, s.now())
	default:
		s.log.Debug("event ignored", "type", eventType)
		return nil
	}

	if n.Phone == "" {
		s.log.Warn("notification skipped, no phone", "order_id", n.OrderID, "type", eventType)
		return nil
	}
	if err := s.repo.Save(ctx, n); err != nil {
		return fmt.Errorf("save notification: %w", err)
	}
	s.log.Info("notification stored", "order_id", n.OrderID, "type", eventType, "channel", n.Channel)
	return nil
}
