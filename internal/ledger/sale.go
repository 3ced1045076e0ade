// Package ledger holds the pure aggregation functions behind the dashboard,
// sales list, payments and reminder views. Nothing here talks to the store or
// reads the clock: callers pass the sales list and "now" explicitly.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// DueAfterDays is the number of calendar days between a sale and its payment due date.
const DueAfterDays = 8

// Status is the payment status of a sale.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Sale is one installment sale as loaded from the store.
type Sale struct {
	ID              int64
	SellerName      string
	CustomerName    string
	DeviceName      string
	IMEI            string
	SaleDate        time.Time
	DownPayment     decimal.Decimal
	TotalAmount     decimal.Decimal
	RemainingAmount decimal.Decimal
	PaymentDueDate  time.Time
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// IsPending reports whether the sale still has an open balance.
func (s Sale) IsPending() bool {
	return s.Status == StatusPending
}

// DeriveRemaining returns the amount still owed after the down payment.
// Negative results are returned as-is.
func DeriveRemaining(total, down decimal.Decimal) decimal.Decimal {
	return total.Sub(down)
}

// DeriveDueDate returns the payment due date for a sale made on saleDate.
func DeriveDueDate(saleDate time.Time) time.Time {
	return saleDate.AddDate(0, 0, DueAfterDays)
}

// startOfDay truncates t to midnight in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// endOfDay returns the last representable instant of t's calendar day in loc.
func endOfDay(t time.Time, loc *time.Location) time.Time {
	return startOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
