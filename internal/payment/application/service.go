package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	order "github.com/dmehra2102/doglivery/internal/order/domain"
	"github.com/dmehra2102/doglivery/internal/payment/domain"
)

type Service struct {
	log    *slog.Logger
	repo   ChargeRepository
	orders OrderReader
	stores StoreReader
	city   string
}

func NewService(log *slog.Logger, repo ChargeRepository, orders OrderReader, stores StoreReader, merchantCity string) *Service {
	return &Service{log: log, repo: repo, orders: orders, stores: stores, city: merchantCity}
}

// PixCharge builds the copy-and-paste pix code for a pix order.
func (s *Service) PixCharge(ctx context.Context, orderID string) (domain.Charge, error) {
	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Charge{}, err
	}
	if o.Payment.Method != order.PaymentPix {
		return domain.Charge{}, domain.ErrNotPixOrder
	}
	if o.Status.Terminal() {
		return domain.Charge{}, fmt.Errorf("%w: %s", domain.ErrOrderClosed, o.Status)
	}
	store, err := s.stores.StoreByID(ctx, o.StoreID)
	if err != nil {
		return domain.Charge{}, err
	}
	if store.PixKey == "" {
		return domain.Charge{}, domain.ErrPixUnavailable
	}

	city := store.Address.City
	if city == "" {
		city = s.city
	}
	txid := domain.TxID(o.Number)
	payload, err := domain.BRCode(domain.PixParams{
		Key:          store.PixKey,
		MerchantName: store.Name,
		MerchantCity: city,
		Amount:       o.Total,
		TxID:         txid,
	})
	if err != nil {
		return domain.Charge{}, err
	}

	charge, err := s.repo.Save(ctx, domain.Charge{
		OrderID:     o.ID,
		OrderNumber: o.Number,
		TxID:        txid,
		Amount:      o.Total,
		Key:         store.PixKey,
		Payload:     payload,
		Status:      domain.StatusPending,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return domain.Charge{}, err
	}
	s.log.Info("pix charge issued", "order_id", o.ID, "txid", txid, "status", charge.Status)
	return charge, nil
}
