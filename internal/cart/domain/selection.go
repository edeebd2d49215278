package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	catalog "github.com/dmehra2102/doglivery/internal/catalog/domain"
)

var (
	ErrModeNotAllowed = errors.New("product cannot be ordered in this mode")
	ErrBelowMinimum   = errors.New("amount below product minimum")
	ErrOutOfStock     = errors.New("bag out of stock")
)

// Selection is what the product page submits.
type Selection struct {
	ProductID   string           `json:"productId"`
	Mode        catalog.Mode     `json:"mode"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	Value       *decimal.Decimal `json:"value,omitempty"`
	BagSize     string           `json:"bagSize,omitempty"`
	BagQuantity int              `json:"bagQuantity,omitempty"`
}

// BuildItem prices a selection against p. Line ids are derived from the
// product and mode so adding the same choice twice merges.
func BuildItem(p catalog.Product, sel Selection) (Item, error) {
	mode := sel.Mode
	if mode == "" {
		mode = p.DefaultMode()
	}
	if !p.Allows(mode) {
		return Item{}, fmt.Errorf("%w: %s", ErrModeNotAllowed, mode)
	}

	switch mode {
	case catalog.ModeBag:
		return bagItem(p, sel)
	case catalog.ModeValue:
		if sel.Value == nil || !sel.Value.IsPositive() {
			return Item{}, ErrInvalidQuantity
		}
		value := sel.Value.Round(2)
		if p.MinOrderValue != nil && value.LessThan(*p.MinOrderValue) {
			return Item{}, fmt.Errorf("%w: minimum value %s", ErrBelowMinimum, p.MinOrderValue)
		}
		return Item{
			ID:             p.ID + "-value",
			ProductID:      p.ID,
			ProductName:    p.Name,
			ProductSlug:    p.Slug,
			ProductType:    p.ProductType,
			Price:          p.Price,
			Unit:           p.Unit,
			OrderType:      ByValue,
			Quantity:       p.QuantityForValue(value),
			RequestedValue: &value,
			Subtotal:       value,
		}, nil
	default:
		if sel.Quantity == nil || !sel.Quantity.IsPositive() {
			return Item{}, ErrInvalidQuantity
		}
		qty := *sel.Quantity
		if p.MinOrderQuantity != nil && qty.LessThan(*p.MinOrderQuantity) {
			return Item{}, fmt.Errorf("%w: minimum quantity %s", ErrBelowMinimum, p.MinOrderQuantity)
		}
		return Item{
			ID:          p.ID + "-quantity",
			ProductID:   p.ID,
			ProductName: p.Name,
			ProductSlug: p.Slug,
			ProductType: p.ProductType,
			Price:       p.Price,
			Unit:        p.Unit,
			OrderType:   ByQuantity,
			Quantity:    qty,
			Subtotal:    p.ValueForQuantity(qty),
		}, nil
	}
}

func bagItem(p catalog.Product, sel Selection) (Item, error) {
	bag, err := p.Bag(sel.BagSize)
	if err != nil {
		return Item{}, err
	}
	count := sel.BagQuantity
	if count == 0 {
		count = 1
	}
	if count < 0 {
		return Item{}, ErrInvalidQuantity
	}
	if bag.Stock < count {
		return Item{}, fmt.Errorf("%w: %d available", ErrOutOfStock, bag.Stock)
	}
	qty := decimal.NewFromInt(int64(count))
	weight := bag.Weight
	return Item{
		ID:          fmt.Sprintf("%s-bag-%s", p.ID, bag.Size),
		ProductID:   p.ID,
		ProductName: fmt.Sprintf("%s - Saco %s", p.Name, bag.Size),
		ProductSlug: p.Slug,
		ProductType: "packaged",
		Price:       bag.Price,
		Unit:        "un",
		OrderType:   ByBag,
		Quantity:    qty,
		BagSize:     bag.Size,
		BagWeight:   &weight,
		Subtotal:    bag.Price.Mul(qty),
	}, nil
}
