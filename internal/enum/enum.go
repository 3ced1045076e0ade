package enum

// ── Group A: State machines (CHECK constrained in DB) ──

// Sale status only moves pending → paid.
const (
	SaleStatusPending = "pending"
	SaleStatusPaid    = "paid"
)

// ── Group B: List view parameters (query string, no DB constraint) ──

const (
	DateRangeAll   = "all"
	DateRangeToday = "today"
	DateRangeWeek  = "week"
	DateRangeMonth = "month"
)

const (
	StatusFilterAll = "all"
)

const (
	SortBySaleDate     = "sale_date"
	SortByTotalAmount  = "total_amount"
	SortByCustomerName = "customer_name"
	SortBySellerName   = "seller_name"
)

const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// ── Group C: Realtime event types ──

const (
	EventSalesChanged = "sales.changed"
	EventReminders    = "reminders"
)

// IsSaleStatus reports whether s is a stored sale status.
func IsSaleStatus(s string) bool {
	return s == SaleStatusPending || s == SaleStatusPaid
}

// IsDateRange reports whether s is a known list date range.
func IsDateRange(s string) bool {
	switch s {
	case DateRangeAll, DateRangeToday, DateRangeWeek, DateRangeMonth:
		return true
	}
	return false
}

// IsSortKey reports whether s is a sortable list column.
func IsSortKey(s string) bool {
	switch s {
	case SortBySaleDate, SortByTotalAmount, SortByCustomerName, SortBySellerName:
		return true
	}
	return false
}

// IsSortOrder reports whether s is asc or desc.
func IsSortOrder(s string) bool {
	return s == SortOrderAsc || s == SortOrderDesc
}
