package handler

import (
	"context"
	"net/http"

	"github.com/devicesales/api/internal/enum"
	"github.com/devicesales/api/internal/ledger"
	"github.com/devicesales/api/internal/service"
	"github.com/devicesales/api/internal/ws"
	"github.com/go-chi/chi/v5"
)

// ViewHandler serves the read-only views computed from the full ledger:
// dashboard, payments by due date and reminders.
type ViewHandler struct {
	svc  *service.SaleService
	opts Options
}

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(svc *service.SaleService, opts Options) *ViewHandler {
	if opts.Location == nil {
		opts.Location = svc.Location()
	}
	return &ViewHandler{svc: svc, opts: opts}
}

// RegisterRoutes registers the view endpoints at the router root.
func (h *ViewHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Dashboard)
	r.Get("/payments", h.Payments)
	r.Get("/reminders", h.Reminders)
}

// --- Response types ---

type summaryResponse struct {
	TotalSales    string `json:"total_sales"`
	DevicesSold   int    `json:"devices_sold"`
	TotalReceived string `json:"total_received"`
	TotalPending  string `json:"total_pending"`
}

type dailySalesResponse struct {
	Date     string `json:"date"`
	Label    string `json:"label"`
	Total    string `json:"total"`
	Quantity int    `json:"quantity"`
}

type statusBreakdownResponse struct {
	Paid    int `json:"paid"`
	Pending int `json:"pending"`
}

type deviceCountResponse struct {
	DeviceName string `json:"device_name"`
	Quantity   int    `json:"quantity"`
}

type sellerTotalResponse struct {
	SellerName string `json:"seller_name"`
	Total      string `json:"total"`
}

type dashboardResponse struct {
	Summary    summaryResponse         `json:"summary"`
	DailySales []dailySalesResponse    `json:"daily_sales"`
	Status     statusBreakdownResponse `json:"status"`
	TopDevices []deviceCountResponse   `json:"top_devices"`
	TopSellers []sellerTotalResponse   `json:"top_sellers"`
}

type paymentSaleResponse struct {
	saleResponse
	Urgency     string `json:"urgency"`
	Days        int    `json:"days"`
	Description string `json:"description"`
}

type paymentGroupResponse struct {
	Date        string                `json:"date"`
	Label       string                `json:"label"`
	Status      string                `json:"status"`
	Days        int                   `json:"days"`
	Description string                `json:"description"`
	TotalAmount string                `json:"total_amount"`
	Count       int                   `json:"count"`
	Sales       []paymentSaleResponse `json:"sales"`
}

type remindersResponse struct {
	Count int            `json:"count"`
	Today []saleResponse `json:"today"`
	Next  *saleResponse  `json:"next"`
}

// --- Handlers ---

// Dashboard handles GET /dashboard.
func (h *ViewHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sales, err := h.svc.ListSales(r.Context())
	if err != nil {
		writeInternal(w, "list sales for dashboard", err)
		return
	}

	writeJSON(w, http.StatusOK, toDashboardResponse(ledger.BuildDashboard(sales, h.opts.now())))
}

// Payments handles GET /payments: pending sales grouped by due day, oldest
// first, each group classified against today.
func (h *ViewHandler) Payments(w http.ResponseWriter, r *http.Request) {
	sales, err := h.svc.ListSales(r.Context())
	if err != nil {
		writeInternal(w, "list sales for payments", err)
		return
	}

	now := h.opts.now()
	groups := ledger.GroupByDueDate(sales, now.Location())

	resp := make([]paymentGroupResponse, len(groups))
	for i, g := range groups {
		members := make([]paymentSaleResponse, len(g.Sales))
		for j, s := range g.Sales {
			members[j] = paymentSaleResponse{
				saleResponse: toSaleResponse(s),
				Urgency:      string(ledger.Classify(s.PaymentDueDate, now)),
				Days:         ledger.DaysUntil(s.PaymentDueDate, now),
				Description:  ledger.DescribeDue(s.PaymentDueDate, now),
			}
		}
		resp[i] = paymentGroupResponse{
			Date:        g.Date.Format("2006-01-02"),
			Label:       g.Date.Format("02/01/2006"),
			Status:      string(ledger.Classify(g.Date, now)),
			Days:        ledger.DaysUntil(g.Date, now),
			Description: ledger.DescribeDue(g.Date, now),
			TotalAmount: money(g.TotalAmount),
			Count:       len(g.Sales),
			Sales:       members,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Reminders handles GET /reminders.
func (h *ViewHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	sales, err := h.svc.ListSales(r.Context())
	if err != nil {
		writeInternal(w, "list sales for reminders", err)
		return
	}

	writeJSON(w, http.StatusOK, toRemindersResponse(ledger.SelectReminders(sales, h.opts.now())))
}

// Greeting returns the websocket greeting: the current reminder snapshot.
func (h *ViewHandler) Greeting() ws.Greeting {
	return func(ctx context.Context) (ws.Event, error) {
		return ReminderEvent(ctx, h.svc, h.opts)
	}
}

// ReminderEvent builds a reminders event from a fresh read of the ledger.
func ReminderEvent(ctx context.Context, svc *service.SaleService, opts Options) (ws.Event, error) {
	sales, err := svc.ListSales(ctx)
	if err != nil {
		return ws.Event{}, err
	}
	return ws.NewEvent(enum.EventReminders, toRemindersResponse(ledger.SelectReminders(sales, opts.now())))
}

// --- Conversion ---

func toDashboardResponse(d ledger.Dashboard) dashboardResponse {
	resp := dashboardResponse{
		Summary: summaryResponse{
			TotalSales:    money(d.Summary.TotalSales),
			DevicesSold:   d.Summary.DevicesSold,
			TotalReceived: money(d.Summary.TotalReceived),
			TotalPending:  money(d.Summary.TotalPending),
		},
		DailySales: make([]dailySalesResponse, len(d.DailySales)),
		Status:     statusBreakdownResponse{Paid: d.Status.Paid, Pending: d.Status.Pending},
		TopDevices: make([]deviceCountResponse, len(d.TopDevices)),
		TopSellers: make([]sellerTotalResponse, len(d.TopSellers)),
	}
	for i, p := range d.DailySales {
		resp.DailySales[i] = dailySalesResponse{
			Date:     p.Date.Format("2006-01-02"),
			Label:    p.Date.Format("02/01"),
			Total:    money(p.Total),
			Quantity: p.Quantity,
		}
	}
	for i, dc := range d.TopDevices {
		resp.TopDevices[i] = deviceCountResponse{DeviceName: dc.Name, Quantity: dc.Quantity}
	}
	for i, st := range d.TopSellers {
		resp.TopSellers[i] = sellerTotalResponse{SellerName: st.Name, Total: money(st.Total)}
	}
	return resp
}

func toRemindersResponse(rem ledger.Reminders) remindersResponse {
	resp := remindersResponse{
		Count: rem.Count(),
		Today: toSaleResponses(rem.Today),
	}
	if rem.Next != nil {
		next := toSaleResponse(*rem.Next)
		resp.Next = &next
	}
	return resp
}
