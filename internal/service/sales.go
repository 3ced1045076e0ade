package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devicesales/api/internal/database"
	"github.com/devicesales/api/internal/enum"
	"github.com/devicesales/api/internal/ledger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Errors returned by the sale service.
var (
	ErrSellerRequired   = errors.New("seller_name is required")
	ErrCustomerRequired = errors.New("customer_name is required")
	ErrDeviceRequired   = errors.New("device_name is required")
	ErrIMEIRequired     = errors.New("imei is required")
	ErrSaleDateRequired = errors.New("sale_date is required")
	ErrInvalidSaleDate  = errors.New("invalid sale_date, expected YYYY-MM-DD or RFC3339")
	ErrTotalRequired    = errors.New("total_amount is required")
	ErrInvalidAmount    = errors.New("invalid amount format")
	ErrSaleNotFound     = errors.New("sale not found")
	ErrAlreadyPaid      = errors.New("sale is already paid")
)

// SaleStore defines the DB methods needed by the sale service.
// Satisfied by *database.Queries and *sqlite.Store.
type SaleStore interface {
	ListSales(ctx context.Context) ([]database.Sale, error)
	GetSale(ctx context.Context, id int64) (database.Sale, error)
	CreateSale(ctx context.Context, arg database.CreateSaleParams) (database.Sale, error)
	UpdateSale(ctx context.Context, arg database.UpdateSaleParams) (database.Sale, error)
	MarkSalePaid(ctx context.Context, arg database.MarkSalePaidParams) (database.Sale, error)
	DeleteSale(ctx context.Context, id int64) (int64, error)
}

// SaleInput is the sale form as submitted. Amounts are decimal strings.
type SaleInput struct {
	SellerName   string
	CustomerName string
	DeviceName   string
	IMEI         string
	SaleDate     string // YYYY-MM-DD (business timezone) or RFC3339
	DownPayment  string // empty means 0
	TotalAmount  string
}

// saleFields is a validated SaleInput with its derived columns.
type saleFields struct {
	seller, customer, device, imei string
	saleDate, dueDate              time.Time
	down, total, remaining         decimal.Decimal
}

// SaleService handles sale lifecycle rules: validation, derived fields and
// the pending → paid transition.
type SaleService struct {
	store SaleStore
	loc   *time.Location
}

// NewSaleService creates a new SaleService. Bare dates are interpreted in loc.
func NewSaleService(store SaleStore, loc *time.Location) *SaleService {
	if loc == nil {
		loc = time.UTC
	}
	return &SaleService{store: store, loc: loc}
}

// Location is the business timezone used for calendar-day decisions.
func (s *SaleService) Location() *time.Location {
	return s.loc
}

// ListSales fetches the full ledger, most recent sale first.
func (s *SaleService) ListSales(ctx context.Context) ([]ledger.Sale, error) {
	rows, err := s.store.ListSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	sales := make([]ledger.Sale, len(rows))
	for i, row := range rows {
		sales[i] = toLedgerSale(row)
	}
	return sales, nil
}

// GetSale fetches one sale.
func (s *SaleService) GetSale(ctx context.Context, id int64) (ledger.Sale, error) {
	row, err := s.store.GetSale(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Sale{}, ErrSaleNotFound
		}
		return ledger.Sale{}, fmt.Errorf("get sale: %w", err)
	}
	return toLedgerSale(row), nil
}

// CreateSale validates the form, derives remaining amount and due date and
// stores the sale as pending.
func (s *SaleService) CreateSale(ctx context.Context, in SaleInput) (ledger.Sale, error) {
	f, err := s.parse(in)
	if err != nil {
		return ledger.Sale{}, err
	}

	down, total, remaining, err := f.numerics()
	if err != nil {
		return ledger.Sale{}, err
	}

	row, err := s.store.CreateSale(ctx, database.CreateSaleParams{
		SellerName:      f.seller,
		CustomerName:    f.customer,
		DeviceName:      f.device,
		Imei:            f.imei,
		SaleDate:        f.saleDate,
		DownPayment:     down,
		TotalAmount:     total,
		RemainingAmount: remaining,
		PaymentDueDate:  f.dueDate,
		Status:          enum.SaleStatusPending,
	})
	if err != nil {
		return ledger.Sale{}, fmt.Errorf("create sale: %w", err)
	}
	return toLedgerSale(row), nil
}

// UpdateSale replaces a sale with the edited form. Remaining amount and due
// date are re-derived from the submitted values. A paid sale stays paid and
// keeps a zero balance.
func (s *SaleService) UpdateSale(ctx context.Context, id int64, in SaleInput, now time.Time) (ledger.Sale, error) {
	f, err := s.parse(in)
	if err != nil {
		return ledger.Sale{}, err
	}

	current, err := s.store.GetSale(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Sale{}, ErrSaleNotFound
		}
		return ledger.Sale{}, fmt.Errorf("get sale: %w", err)
	}
	if current.Status == enum.SaleStatusPaid {
		f.remaining = decimal.Zero
	}

	down, total, remaining, err := f.numerics()
	if err != nil {
		return ledger.Sale{}, err
	}

	row, err := s.store.UpdateSale(ctx, database.UpdateSaleParams{
		ID:              id,
		SellerName:      f.seller,
		CustomerName:    f.customer,
		DeviceName:      f.device,
		Imei:            f.imei,
		SaleDate:        f.saleDate,
		DownPayment:     down,
		TotalAmount:     total,
		RemainingAmount: remaining,
		PaymentDueDate:  f.dueDate,
		Status:          current.Status,
		UpdatedAt:       pgtype.Timestamptz{Time: now, Valid: true},
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Sale{}, ErrSaleNotFound
		}
		return ledger.Sale{}, fmt.Errorf("update sale: %w", err)
	}
	return toLedgerSale(row), nil
}

// MarkPaid settles a pending sale: status paid, remaining zero.
func (s *SaleService) MarkPaid(ctx context.Context, id int64, now time.Time) (ledger.Sale, error) {
	row, err := s.store.MarkSalePaid(ctx, database.MarkSalePaidParams{
		ID:        id,
		UpdatedAt: pgtype.Timestamptz{Time: now, Valid: true},
	})
	if err == nil {
		return toLedgerSale(row), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return ledger.Sale{}, fmt.Errorf("mark sale paid: %w", err)
	}

	// Nothing matched: either the sale is gone or it is not pending.
	if _, err := s.store.GetSale(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Sale{}, ErrSaleNotFound
		}
		return ledger.Sale{}, fmt.Errorf("get sale: %w", err)
	}
	return ledger.Sale{}, ErrAlreadyPaid
}

// DeleteSale removes a sale.
func (s *SaleService) DeleteSale(ctx context.Context, id int64) error {
	n, err := s.store.DeleteSale(ctx, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if n == 0 {
		return ErrSaleNotFound
	}
	return nil
}

// --- Validation ---

func (s *SaleService) parse(in SaleInput) (saleFields, error) {
	f := saleFields{
		seller:   strings.TrimSpace(in.SellerName),
		customer: strings.TrimSpace(in.CustomerName),
		device:   strings.TrimSpace(in.DeviceName),
		imei:     strings.TrimSpace(in.IMEI),
	}
	switch {
	case f.seller == "":
		return saleFields{}, ErrSellerRequired
	case f.customer == "":
		return saleFields{}, ErrCustomerRequired
	case f.device == "":
		return saleFields{}, ErrDeviceRequired
	case f.imei == "":
		return saleFields{}, ErrIMEIRequired
	}

	saleDate, err := parseSaleDate(in.SaleDate, s.loc)
	if err != nil {
		return saleFields{}, err
	}
	f.saleDate = saleDate
	f.dueDate = ledger.DeriveDueDate(saleDate)

	if strings.TrimSpace(in.TotalAmount) == "" {
		return saleFields{}, ErrTotalRequired
	}
	f.total, err = decimal.NewFromString(strings.TrimSpace(in.TotalAmount))
	if err != nil {
		return saleFields{}, fmt.Errorf("total_amount: %w", ErrInvalidAmount)
	}
	f.down = decimal.Zero
	if v := strings.TrimSpace(in.DownPayment); v != "" {
		f.down, err = decimal.NewFromString(v)
		if err != nil {
			return saleFields{}, fmt.Errorf("down_payment: %w", ErrInvalidAmount)
		}
	}
	// Amounts are stored with two decimals; round first so remaining is
	// exactly total - down. No range checks: negative amounts and down > total
	// are accepted.
	f.total = f.total.Round(2)
	f.down = f.down.Round(2)
	f.remaining = ledger.DeriveRemaining(f.total, f.down)
	return f, nil
}

func (f saleFields) numerics() (down, total, remaining pgtype.Numeric, err error) {
	if down, err = database.NumericFromDecimal(f.down); err != nil {
		return
	}
	if total, err = database.NumericFromDecimal(f.total); err != nil {
		return
	}
	remaining, err = database.NumericFromDecimal(f.remaining)
	return
}

func parseSaleDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrSaleDateRequired
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidSaleDate
}

// --- Conversion ---

func toLedgerSale(row database.Sale) ledger.Sale {
	sale := ledger.Sale{
		ID:              row.ID,
		SellerName:      row.SellerName,
		CustomerName:    row.CustomerName,
		DeviceName:      row.DeviceName,
		IMEI:            row.Imei,
		SaleDate:        row.SaleDate,
		DownPayment:     database.DecimalFromNumeric(row.DownPayment),
		TotalAmount:     database.DecimalFromNumeric(row.TotalAmount),
		RemainingAmount: database.DecimalFromNumeric(row.RemainingAmount),
		PaymentDueDate:  row.PaymentDueDate,
		Status:          ledger.Status(row.Status),
		CreatedAt:       row.CreatedAt,
	}
	if row.UpdatedAt.Valid {
		t := row.UpdatedAt.Time
		sale.UpdatedAt = &t
	}
	return sale
}
