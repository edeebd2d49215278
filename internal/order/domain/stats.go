package domain

import "github.com/shopspring/decimal"

type DashboardStats struct {
	Total        int             `json:"total"`
	Pending      int             `json:"pending"`
	Preparing    int             `json:"preparing"`
	Delivering   int             `json:"delivering"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// Stats summarises orders for the admin dashboard. Cancelled orders do
// not count towards revenue.
func Stats(orders []Order) DashboardStats {
	s := DashboardStats{Total: len(orders), TotalRevenue: decimal.Zero}
	for _, o := range orders {
		switch o.Status {
		case StatusPending:
			s.Pending++
		case StatusPreparing:
			s.Preparing++
		case StatusOutForDelivery:
			s.Delivering++
		}
		if o.Status != StatusCancelled {
			s.TotalRevenue = s.TotalRevenue.Add(o.Total)
		}
	}
	return s
}
