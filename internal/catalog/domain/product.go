package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// OrderMode is what a product row allows; Mode is what a customer picks.
type OrderMode string

const (
	OrderModeQuantity OrderMode = "quantity"
	OrderModeValue    OrderMode = "value"
	OrderModeBoth     OrderMode = "both"
	OrderModeBag      OrderMode = "bag"
)

type Mode string

const (
	ModeQuantity Mode = "quantity"
	ModeValue    Mode = "value"
	ModeBag      Mode = "bag"
)

var ErrBagNotFound = errors.New("bag option not found")

// BagOption is a fixed-size, fixed-price package of a bulk product.
type BagOption struct {
	Size   string          `json:"size"`
	Weight decimal.Decimal `json:"weight"`
	Price  decimal.Decimal `json:"price"`
	Stock  int             `json:"stock"`
	SKU    string          `json:"sku,omitempty"`
}

type Product struct {
	ID               string           `json:"id"`
	StoreID          string           `json:"store_id"`
	CategoryName     string           `json:"category,omitempty"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	Description      string           `json:"description"`
	ProductType      string           `json:"product_type"`
	Price            decimal.Decimal  `json:"price"`
	Unit             string           `json:"unit"`
	OrderMode        OrderMode        `json:"order_mode"`
	DefaultOrderMode Mode             `json:"default_order_mode,omitempty"`
	MinOrderQuantity *decimal.Decimal `json:"min_order_quantity,omitempty"`
	MinOrderValue    *decimal.Decimal `json:"min_order_value,omitempty"`
	BagOptions       []BagOption      `json:"bag_options"`
	StockQuantity    *decimal.Decimal `json:"stock_quantity,omitempty"`
	IsFeatured       bool             `json:"is_featured"`
	IsActive         bool             `json:"is_active"`
}

func (p Product) CanOrderByValue() bool {
	return p.OrderMode == OrderModeBoth || p.OrderMode == OrderModeValue
}

func (p Product) CanOrderByQuantity() bool {
	return p.OrderMode == OrderModeBoth || p.OrderMode == OrderModeQuantity
}

func (p Product) HasBagOptions() bool { return len(p.BagOptions) > 0 }

// Allows reports whether the customer may buy p in mode m.
func (p Product) Allows(m Mode) bool {
	switch m {
	case ModeValue:
		return p.CanOrderByValue()
	case ModeQuantity:
		return p.CanOrderByQuantity()
	case ModeBag:
		return p.HasBagOptions()
	}
	return false
}

// DefaultMode is the mode a product page opens in.
func (p Product) DefaultMode() Mode {
	if p.DefaultOrderMode != "" && p.Allows(p.DefaultOrderMode) {
		return p.DefaultOrderMode
	}
	for _, m := range []Mode{ModeValue, ModeQuantity, ModeBag} {
		if p.Allows(m) {
			return m
		}
	}
	return ModeValue
}

func (p Product) Bag(size string) (BagOption, error) {
	for _, b := range p.BagOptions {
		if b.Size == size {
			return b, nil
		}
	}
	return BagOption{}, ErrBagNotFound
}

// QuantityForValue is how much of p a given amount of money buys.
func (p Product) QuantityForValue(value decimal.Decimal) decimal.Decimal {
	if p.Price.IsZero() {
		return decimal.Zero
	}
	return value.DivRound(p.Price, 3)
}

func (p Product) ValueForQuantity(qty decimal.Decimal) decimal.Decimal {
	return qty.Mul(p.Price).Round(2)
}
