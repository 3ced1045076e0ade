package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/devicesales/api/internal/enum"
	"github.com/devicesales/api/internal/ledger"
	"github.com/devicesales/api/internal/service"
	"github.com/devicesales/api/internal/ws"
	"github.com/go-chi/chi/v5"
)

// SaleHandler handles the sales list and sale lifecycle endpoints.
type SaleHandler struct {
	svc      *service.SaleService
	notifier Notifier
	opts     Options
}

// NewSaleHandler creates a new SaleHandler. notifier may be nil.
func NewSaleHandler(svc *service.SaleService, notifier Notifier, opts Options) *SaleHandler {
	if opts.Location == nil {
		opts.Location = svc.Location()
	}
	return &SaleHandler{svc: svc, notifier: notifier, opts: opts}
}

// RegisterRoutes registers sale endpoints on the given Chi router.
// Expected to be mounted at /sales
func (h *SaleHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/export", h.Export)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/paid", h.MarkPaid)
}

// --- Request types ---

type saleRequest struct {
	SellerName   string      `json:"seller_name"`
	CustomerName string      `json:"customer_name"`
	DeviceName   string      `json:"device_name"`
	IMEI         string      `json:"imei"`
	SaleDate     string      `json:"sale_date"`
	DownPayment  json.Number `json:"down_payment"`
	TotalAmount  json.Number `json:"total_amount"`
}

func (req saleRequest) input() service.SaleInput {
	return service.SaleInput{
		SellerName:   req.SellerName,
		CustomerName: req.CustomerName,
		DeviceName:   req.DeviceName,
		IMEI:         req.IMEI,
		SaleDate:     req.SaleDate,
		DownPayment:  req.DownPayment.String(),
		TotalAmount:  req.TotalAmount.String(),
	}
}

// --- Handlers ---

// List handles GET /sales with search, date_range, status, sort_by and
// sort_order query parameters.
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sales, err := h.svc.ListSales(r.Context())
	if err != nil {
		writeInternal(w, "list sales", err)
		return
	}

	view := ledger.Apply(sales, filter, h.opts.now(), h.opts.Locale)
	writeJSON(w, http.StatusOK, toSaleResponses(view))
}

// Get handles GET /sales/{id}.
func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseSaleID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sale, err := h.svc.GetSale(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSaleNotFound) {
			writeError(w, http.StatusNotFound, "sale not found")
			return
		}
		writeInternal(w, "get sale", err)
		return
	}

	writeJSON(w, http.StatusOK, toSaleResponse(sale))
}

// Create handles POST /sales.
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sale, err := h.svc.CreateSale(r.Context(), req.input())
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeInternal(w, "create sale", err)
		return
	}

	h.notify(r.Context(), "created", sale.ID)
	writeJSON(w, http.StatusCreated, toSaleResponse(sale))
}

// Update handles PUT /sales/{id}.
func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseSaleID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req saleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sale, err := h.svc.UpdateSale(r.Context(), id, req.input(), h.opts.now())
	if err != nil {
		switch {
		case isValidationError(err):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSaleNotFound):
			writeError(w, http.StatusNotFound, "sale not found")
		default:
			writeInternal(w, "update sale", err)
		}
		return
	}

	h.notify(r.Context(), "updated", sale.ID)
	writeJSON(w, http.StatusOK, toSaleResponse(sale))
}

// Delete handles DELETE /sales/{id}.
func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseSaleID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.DeleteSale(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrSaleNotFound) {
			writeError(w, http.StatusNotFound, "sale not found")
			return
		}
		writeInternal(w, "delete sale", err)
		return
	}

	h.notify(r.Context(), "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// MarkPaid handles POST /sales/{id}/paid.
func (h *SaleHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := parseSaleID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sale, err := h.svc.MarkPaid(r.Context(), id, h.opts.now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSaleNotFound):
			writeError(w, http.StatusNotFound, "sale not found")
		case errors.Is(err, service.ErrAlreadyPaid):
			writeError(w, http.StatusConflict, "sale is already paid")
		default:
			writeInternal(w, "mark sale paid", err)
		}
		return
	}

	h.notify(r.Context(), "paid", sale.ID)
	writeJSON(w, http.StatusOK, toSaleResponse(sale))
}

// --- Notifications ---

type salesChangedPayload struct {
	Action string `json:"action"`
	SaleID int64  `json:"sale_id"`
}

// notify tells live clients to re-fetch and pushes the new reminder badge.
// Failures are logged only: the mutation already succeeded.
func (h *SaleHandler) notify(ctx context.Context, action string, id int64) {
	if h.notifier == nil {
		return
	}

	changed, err := ws.NewEvent(enum.EventSalesChanged, salesChangedPayload{Action: action, SaleID: id})
	if err != nil {
		log.Printf("ERROR: build %s event: %v", enum.EventSalesChanged, err)
		return
	}
	if !h.notifier.Broadcast(changed) {
		log.Printf("WARN: %s event dropped", enum.EventSalesChanged)
	}

	reminders, err := ReminderEvent(ctx, h.svc, h.opts)
	if err != nil {
		log.Printf("ERROR: build reminders event: %v", err)
		return
	}
	h.notifier.Broadcast(reminders)
}

// --- Query parsing ---

func parseFilter(r *http.Request) (ledger.Filter, error) {
	q := r.URL.Query()
	f := ledger.DefaultFilter()
	f.Search = strings.TrimSpace(q.Get("search"))

	if v := q.Get("date_range"); v != "" {
		if !enum.IsDateRange(v) {
			return ledger.Filter{}, errors.New("invalid date_range, expected all, today, week or month")
		}
		f.DateRange = ledger.DateRange(v)
	}
	if v := q.Get("status"); v != "" {
		if v != enum.StatusFilterAll && !enum.IsSaleStatus(v) {
			return ledger.Filter{}, errors.New("invalid status, expected all, pending or paid")
		}
		f.Status = ledger.Status(v)
	}
	if v := q.Get("sort_by"); v != "" {
		if !enum.IsSortKey(v) {
			return ledger.Filter{}, errors.New("invalid sort_by, expected sale_date, total_amount, customer_name or seller_name")
		}
		f.SortBy = ledger.SortKey(v)
	}
	if v := q.Get("sort_order"); v != "" {
		if !enum.IsSortOrder(v) {
			return ledger.Filter{}, errors.New("invalid sort_order, expected asc or desc")
		}
		f.SortOrder = ledger.SortOrder(v)
	}
	return f, nil
}
