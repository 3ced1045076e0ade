package ledger

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DateRange limits the list by sale date.
type DateRange string

const (
	RangeAll   DateRange = "all"
	RangeToday DateRange = "today"
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
)

// StatusFilter limits the list by payment status. StatusAny disables it.
const StatusAny Status = "all"

// SortKey selects the field the list is ordered by.
type SortKey string

const (
	SortBySaleDate     SortKey = "sale_date"
	SortByTotalAmount  SortKey = "total_amount"
	SortByCustomerName SortKey = "customer_name"
	SortBySellerName   SortKey = "seller_name"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Filter is the sales list view state.
type Filter struct {
	Search    string
	DateRange DateRange
	Status    Status
	SortBy    SortKey
	SortOrder SortOrder
}

// DefaultFilter is what the list shows before the user touches anything.
func DefaultFilter() Filter {
	return Filter{
		DateRange: RangeAll,
		Status:    StatusAny,
		SortBy:    SortBySaleDate,
		SortOrder: OrderDesc,
	}
}

// Apply runs search, date range, status and sort over sales and returns a new
// slice. Date ranges are evaluated against SaleDate in now's location. Names
// are compared with the collation rules of locale.
func Apply(sales []Sale, f Filter, now time.Time, locale language.Tag) []Sale {
	result := make([]Sale, 0, len(sales))
	for _, s := range sales {
		if matchesSearch(s, f.Search) && inRange(s, f.DateRange, now) && matchesStatus(s, f.Status) {
			result = append(result, s)
		}
	}
	sortSales(result, f.SortBy, f.SortOrder, locale)
	return result
}

func matchesSearch(s Sale, search string) bool {
	if search == "" {
		return true
	}
	q := strings.ToLower(search)
	return strings.Contains(strings.ToLower(s.CustomerName), q) ||
		strings.Contains(strings.ToLower(s.SellerName), q) ||
		strings.Contains(strings.ToLower(s.IMEI), q) ||
		strings.Contains(strings.ToLower(s.DeviceName), q)
}

func inRange(s Sale, r DateRange, now time.Time) bool {
	if r == "" || r == RangeAll {
		return true
	}
	loc := now.Location()
	var start time.Time
	switch r {
	case RangeToday:
		start = startOfDay(now, loc)
	case RangeWeek:
		start = now.AddDate(0, 0, -7)
	case RangeMonth:
		start = now.AddDate(0, 0, -30)
	default:
		start = time.Unix(0, 0)
	}
	end := endOfDay(now, loc)
	return !s.SaleDate.Before(start) && !s.SaleDate.After(end)
}

func matchesStatus(s Sale, st Status) bool {
	if st == "" || st == StatusAny {
		return true
	}
	return s.Status == st
}

// sortSales orders sales in place. The base comparators put the earliest
// date, the smallest amount and the first name in collation order first;
// desc reverses them. Unknown keys leave the order untouched.
func sortSales(sales []Sale, key SortKey, order SortOrder, locale language.Tag) {
	var cmp func(a, b Sale) int
	switch key {
	case SortBySaleDate:
		cmp = func(a, b Sale) int { return a.SaleDate.Compare(b.SaleDate) }
	case SortByTotalAmount:
		cmp = func(a, b Sale) int { return a.TotalAmount.Cmp(b.TotalAmount) }
	case SortByCustomerName:
		c := collate.New(locale)
		cmp = func(a, b Sale) int { return c.CompareString(a.CustomerName, b.CustomerName) }
	case SortBySellerName:
		c := collate.New(locale)
		cmp = func(a, b Sale) int { return c.CompareString(a.SellerName, b.SellerName) }
	default:
		return
	}

	sign := 1
	if order != OrderAsc {
		sign = -1
	}
	sort.SliceStable(sales, func(i, j int) bool {
		return sign*cmp(sales[i], sales[j]) < 0
	})
}
