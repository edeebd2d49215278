package domain

import "github.com/shopspring/decimal"

// StockLine is one requested line in a stock check. BagSize is set for
// bag purchases, where Quantity counts bags.
type StockLine struct {
	ProductID string          `json:"product_id"`
	BagSize   string          `json:"bag_size,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type StockShortage struct {
	ProductID string          `json:"product_id"`
	BagSize   string          `json:"bag_size,omitempty"`
	Requested decimal.Decimal `json:"requested"`
	Available decimal.Decimal `json:"available"`
}

// Shortage checks one line against p. Products without a stock figure
// are not tracked and never short.
func (p Product) Shortage(line StockLine) (StockShortage, bool) {
	if line.BagSize != "" {
		bag, err := p.Bag(line.BagSize)
		if err != nil {
			return StockShortage{ProductID: p.ID, BagSize: line.BagSize, Requested: line.Quantity, Available: decimal.Zero}, true
		}
		avail := decimal.NewFromInt(int64(bag.Stock))
		if line.Quantity.GreaterThan(avail) {
			return StockShortage{ProductID: p.ID, BagSize: line.BagSize, Requested: line.Quantity, Available: avail}, true
		}
		return StockShortage{}, false
	}
	if p.StockQuantity != nil && line.Quantity.GreaterThan(*p.StockQuantity) {
		return StockShortage{ProductID: p.ID, Requested: line.Quantity, Available: *p.StockQuantity}, true
	}
	return StockShortage{}, false
}
