package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/devicesales/api/internal/ledger"
	"github.com/devicesales/api/internal/service"
	"github.com/devicesales/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// Notifier pushes events to live clients. Satisfied by *ws.Hub.
type Notifier interface {
	Broadcast(event ws.Event) bool
}

// Options carries the calendar and collation settings shared by handlers.
type Options struct {
	Location *time.Location
	Locale   language.Tag
	Now      func() time.Time // overridable in tests
}

func (o Options) now() time.Time {
	loc := o.Location
	if loc == nil {
		loc = time.UTC
	}
	if o.Now != nil {
		return o.Now().In(loc)
	}
	return time.Now().In(loc)
}

// --- Response types ---

type saleResponse struct {
	ID              int64      `json:"id"`
	SellerName      string     `json:"seller_name"`
	CustomerName    string     `json:"customer_name"`
	DeviceName      string     `json:"device_name"`
	IMEI            string     `json:"imei"`
	SaleDate        time.Time  `json:"sale_date"`
	DownPayment     string     `json:"down_payment"`
	TotalAmount     string     `json:"total_amount"`
	RemainingAmount string     `json:"remaining_amount"`
	PaymentDueDate  time.Time  `json:"payment_due_date"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`
}

func toSaleResponse(s ledger.Sale) saleResponse {
	return saleResponse{
		ID:              s.ID,
		SellerName:      s.SellerName,
		CustomerName:    s.CustomerName,
		DeviceName:      s.DeviceName,
		IMEI:            s.IMEI,
		SaleDate:        s.SaleDate,
		DownPayment:     money(s.DownPayment),
		TotalAmount:     money(s.TotalAmount),
		RemainingAmount: money(s.RemainingAmount),
		PaymentDueDate:  s.PaymentDueDate,
		Status:          string(s.Status),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func toSaleResponses(sales []ledger.Sale) []saleResponse {
	resp := make([]saleResponse, len(sales))
	for i, s := range sales {
		resp[i] = toSaleResponse(s)
	}
	return resp
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeInternal(w http.ResponseWriter, op string, err error) {
	log.Printf("ERROR: %s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func parseSaleID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid sale ID")
	}
	return id, nil
}

// isValidationError reports whether err is a form validation failure.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrSellerRequired) ||
		errors.Is(err, service.ErrCustomerRequired) ||
		errors.Is(err, service.ErrDeviceRequired) ||
		errors.Is(err, service.ErrIMEIRequired) ||
		errors.Is(err, service.ErrSaleDateRequired) ||
		errors.Is(err, service.ErrInvalidSaleDate) ||
		errors.Is(err, service.ErrTotalRequired) ||
		errors.Is(err, service.ErrInvalidAmount)
}
