package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const topN = 5

// DailySales is one point of the month-to-date sales trend.
type DailySales struct {
	Date     time.Time
	Total    decimal.Decimal
	Quantity int
}

// StatusBreakdown counts sales per payment status.
type StatusBreakdown struct {
	Paid    int
	Pending int
}

// DeviceCount is a device name with the number of units sold.
type DeviceCount struct {
	Name     string
	Quantity int
}

// SellerTotal is a seller with the value of everything they sold.
type SellerTotal struct {
	Name  string
	Total decimal.Decimal
}

// Dashboard is everything the dashboard page renders.
type Dashboard struct {
	Summary    Summary
	DailySales []DailySales
	Status     StatusBreakdown
	TopDevices []DeviceCount
	TopSellers []SellerTotal
}

// BuildDashboard computes the dashboard from the full sales list.
func BuildDashboard(sales []Sale, now time.Time) Dashboard {
	return Dashboard{
		Summary:    Summarize(sales),
		DailySales: MonthToDate(sales, now),
		Status:     CountByStatus(sales),
		TopDevices: TopDevices(sales, topN),
		TopSellers: TopSellers(sales, topN),
	}
}

// MonthToDate returns one point per calendar day from the first of now's
// month through today, in now's location.
func MonthToDate(sales []Sale, now time.Time) []DailySales {
	loc := now.Location()
	today := startOfDay(now, loc)
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)

	var points []DailySales
	index := make(map[int64]int)
	for d := first; !d.After(today); d = d.AddDate(0, 0, 1) {
		index[d.Unix()] = len(points)
		points = append(points, DailySales{Date: d, Total: decimal.Zero})
	}

	for _, s := range sales {
		i, ok := index[startOfDay(s.SaleDate, loc).Unix()]
		if !ok {
			continue
		}
		points[i].Total = points[i].Total.Add(s.TotalAmount)
		points[i].Quantity++
	}
	return points
}

// CountByStatus counts paid and pending sales.
func CountByStatus(sales []Sale) StatusBreakdown {
	var b StatusBreakdown
	for _, s := range sales {
		switch s.Status {
		case StatusPaid:
			b.Paid++
		case StatusPending:
			b.Pending++
		}
	}
	return b
}

// TopDevices ranks device names by units sold. Ties keep first-seen order.
func TopDevices(sales []Sale, n int) []DeviceCount {
	var out []DeviceCount
	index := make(map[string]int)
	for _, s := range sales {
		if i, ok := index[s.DeviceName]; ok {
			out[i].Quantity++
			continue
		}
		index[s.DeviceName] = len(out)
		out = append(out, DeviceCount{Name: s.DeviceName, Quantity: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// TopSellers ranks sellers by total sale value. Ties keep first-seen order.
func TopSellers(sales []Sale, n int) []SellerTotal {
	var out []SellerTotal
	index := make(map[string]int)
	for _, s := range sales {
		if i, ok := index[s.SellerName]; ok {
			out[i].Total = out[i].Total.Add(s.TotalAmount)
			continue
		}
		index[s.SellerName] = len(out)
		out = append(out, SellerTotal{Name: s.SellerName, Total: s.TotalAmount})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
