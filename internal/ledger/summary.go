package ledger

import "github.com/shopspring/decimal"

// Summary is the dashboard headline: totals over the whole sales list.
type Summary struct {
	TotalSales    decimal.Decimal
	DevicesSold   int
	TotalReceived decimal.Decimal
	TotalPending  decimal.Decimal
}

// Summarize computes the headline totals in one pass. Only pending sales
// contribute to TotalPending.
func Summarize(sales []Sale) Summary {
	sum := Summary{
		TotalSales:    decimal.Zero,
		TotalReceived: decimal.Zero,
		TotalPending:  decimal.Zero,
	}
	for _, s := range sales {
		sum.TotalSales = sum.TotalSales.Add(s.TotalAmount)
		sum.DevicesSold++
		sum.TotalReceived = sum.TotalReceived.Add(s.DownPayment)
		if s.IsPending() {
			sum.TotalPending = sum.TotalPending.Add(s.RemainingAmount)
		}
	}
	return sum
}
