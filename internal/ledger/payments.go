package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentGroup is a due-date bucket of pending sales.
type PaymentGroup struct {
	Date        time.Time // midnight of the due day in the grouping location
	Sales       []Sale
	TotalAmount decimal.Decimal // sum of RemainingAmount over Sales
}

// GroupByDueDate buckets pending sales by the calendar day of their payment
// due date in loc. Groups come back oldest first; within a group sales keep
// their input order.
func GroupByDueDate(sales []Sale, loc *time.Location) []PaymentGroup {
	var groups []PaymentGroup
	index := make(map[int64]int)

	for _, s := range sales {
		if !s.IsPending() {
			continue
		}
		day := startOfDay(s.PaymentDueDate, loc)
		if i, ok := index[day.Unix()]; ok {
			groups[i].Sales = append(groups[i].Sales, s)
			groups[i].TotalAmount = groups[i].TotalAmount.Add(s.RemainingAmount)
			continue
		}
		index[day.Unix()] = len(groups)
		groups = append(groups, PaymentGroup{
			Date:        day,
			Sales:       []Sale{s},
			TotalAmount: s.RemainingAmount,
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Date.Before(groups[j].Date)
	})
	return groups
}

// Reminders is the notification projection: what is due today and what comes next.
type Reminders struct {
	Today []Sale
	Next  *Sale
}

// Count is the badge number: payments due today.
func (r Reminders) Count() int {
	return len(r.Today)
}

// SelectReminders picks the pending sales due on now's calendar day and the
// single earliest pending sale due after today.
func SelectReminders(sales []Sale, now time.Time) Reminders {
	var r Reminders
	for i := range sales {
		s := sales[i]
		if !s.IsPending() {
			continue
		}
		days := DaysUntil(s.PaymentDueDate, now)
		switch {
		case days == 0:
			r.Today = append(r.Today, s)
		case days > 0:
			if r.Next == nil || s.PaymentDueDate.Before(r.Next.PaymentDueDate) {
				next := s
				r.Next = &next
			}
		}
	}
	return r
}
