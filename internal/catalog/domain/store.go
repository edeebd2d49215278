package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrStoreNotFound   = errors.New("store not found")
	ErrProductNotFound = errors.New("product not found")
)

type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
}

type Store struct {
	ID       string  `json:"id"`
	Slug     string  `json:"slug"`
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	WhatsApp string  `json:"whatsapp"`
	Email    string  `json:"email"`
	Address  Address `json:"address"`
	PixKey   string  `json:"-"`
	IsActive bool    `json:"is_active"`
}

type DeliverySettings struct {
	StoreID           string           `json:"store_id"`
	DeliveryFee       decimal.Decimal  `json:"delivery_fee"`
	MinOrderValue     decimal.Decimal  `json:"min_order_value"`
	FreeDeliveryAbove *decimal.Decimal `json:"free_delivery_above,omitempty"`
	EstimatedMinutes  int              `json:"estimated_minutes"`
}

// FeeFor returns the delivery fee charged for an order of subtotal.
func (d DeliverySettings) FeeFor(subtotal decimal.Decimal) decimal.Decimal {
	if d.FreeDeliveryAbove != nil && subtotal.GreaterThanOrEqual(*d.FreeDeliveryAbove) {
		return decimal.Zero
	}
	return d.DeliveryFee
}
