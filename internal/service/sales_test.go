package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devicesales/api/internal/database"
	"github.com/devicesales/api/internal/ledger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// --- Mock implementation ---

// mockSaleStore is an in-memory SaleStore keyed by id.
type mockSaleStore struct {
	sales   map[int64]database.Sale
	nextID  int64
	failErr error

	markCalls int
}

func newMockStore() *mockSaleStore {
	return &mockSaleStore{sales: map[int64]database.Sale{}, nextID: 1}
}

func (m *mockSaleStore) ListSales(ctx context.Context) ([]database.Sale, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}
	out := []database.Sale{}
	for id := m.nextID - 1; id >= 1; id-- {
		if s, ok := m.sales[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSaleStore) GetSale(ctx context.Context, id int64) (database.Sale, error) {
	s, ok := m.sales[id]
	if !ok {
		return database.Sale{}, pgx.ErrNoRows
	}
	return s, nil
}

func (m *mockSaleStore) CreateSale(ctx context.Context, arg database.CreateSaleParams) (database.Sale, error) {
	if m.failErr != nil {
		return database.Sale{}, m.failErr
	}
	s := database.Sale{
		ID:              m.nextID,
		SellerName:      arg.SellerName,
		CustomerName:    arg.CustomerName,
		DeviceName:      arg.DeviceName,
		Imei:            arg.Imei,
		SaleDate:        arg.SaleDate,
		DownPayment:     arg.DownPayment,
		TotalAmount:     arg.TotalAmount,
		RemainingAmount: arg.RemainingAmount,
		PaymentDueDate:  arg.PaymentDueDate,
		Status:          arg.Status,
		CreatedAt:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	m.sales[s.ID] = s
	m.nextID++
	return s, nil
}

func (m *mockSaleStore) UpdateSale(ctx context.Context, arg database.UpdateSaleParams) (database.Sale, error) {
	s, ok := m.sales[arg.ID]
	if !ok {
		return database.Sale{}, pgx.ErrNoRows
	}
	s.SellerName = arg.SellerName
	s.CustomerName = arg.CustomerName
	s.DeviceName = arg.DeviceName
	s.Imei = arg.Imei
	s.SaleDate = arg.SaleDate
	s.DownPayment = arg.DownPayment
	s.TotalAmount = arg.TotalAmount
	s.RemainingAmount = arg.RemainingAmount
	s.PaymentDueDate = arg.PaymentDueDate
	s.Status = arg.Status
	s.UpdatedAt = arg.UpdatedAt
	m.sales[arg.ID] = s
	return s, nil
}

func (m *mockSaleStore) MarkSalePaid(ctx context.Context, arg database.MarkSalePaidParams) (database.Sale, error) {
	m.markCalls++
	s, ok := m.sales[arg.ID]
	if !ok || s.Status != "pending" {
		return database.Sale{}, pgx.ErrNoRows
	}
	s.Status = "paid"
	s.RemainingAmount = makeNumeric("0.00")
	s.UpdatedAt = arg.UpdatedAt
	m.sales[arg.ID] = s
	return s, nil
}

func (m *mockSaleStore) DeleteSale(ctx context.Context, id int64) (int64, error) {
	if m.failErr != nil {
		return 0, m.failErr
	}
	if _, ok := m.sales[id]; !ok {
		return 0, nil
	}
	delete(m.sales, id)
	return 1, nil
}

// --- Test helpers ---

var saoPaulo = func() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}()

func makeNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func decimalEquals(d decimal.Decimal, expected string) bool {
	exp, _ := decimal.NewFromString(expected)
	return d.Equal(exp)
}

func basicInput() SaleInput {
	return SaleInput{
		SellerName:   "Carlos",
		CustomerName: "Maria Silva",
		DeviceName:   "iPhone 13",
		IMEI:         "356938035643809",
		SaleDate:     "2024-05-12",
		DownPayment:  "200.00",
		TotalAmount:  "1200.00",
	}
}

var testNow = time.Date(2024, 5, 20, 15, 0, 0, 0, saoPaulo)

// =====================
// Validation tests
// =====================

func TestCreateSale_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SaleInput)
		want   error
	}{
		{"seller", func(in *SaleInput) { in.SellerName = "  " }, ErrSellerRequired},
		{"customer", func(in *SaleInput) { in.CustomerName = "" }, ErrCustomerRequired},
		{"device", func(in *SaleInput) { in.DeviceName = "" }, ErrDeviceRequired},
		{"imei", func(in *SaleInput) { in.IMEI = "" }, ErrIMEIRequired},
		{"sale date", func(in *SaleInput) { in.SaleDate = "" }, ErrSaleDateRequired},
		{"total", func(in *SaleInput) { in.TotalAmount = "" }, ErrTotalRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			svc := NewSaleService(store, saoPaulo)
			in := basicInput()
			tt.mutate(&in)

			_, err := svc.CreateSale(context.Background(), in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got: %v", tt.want, err)
			}
			if len(store.sales) != 0 {
				t.Fatalf("expected nothing stored, got %d sales", len(store.sales))
			}
		})
	}
}

func TestCreateSale_InvalidSaleDate(t *testing.T) {
	svc := NewSaleService(newMockStore(), saoPaulo)
	in := basicInput()
	in.SaleDate = "12/05/2024"

	_, err := svc.CreateSale(context.Background(), in)
	if !errors.Is(err, ErrInvalidSaleDate) {
		t.Fatalf("expected ErrInvalidSaleDate, got: %v", err)
	}
}

func TestCreateSale_InvalidAmount(t *testing.T) {
	svc := NewSaleService(newMockStore(), saoPaulo)

	in := basicInput()
	in.TotalAmount = "abc"
	if _, err := svc.CreateSale(context.Background(), in); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("total: expected ErrInvalidAmount, got: %v", err)
	}

	in = basicInput()
	in.DownPayment = "1,5"
	if _, err := svc.CreateSale(context.Background(), in); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("down payment: expected ErrInvalidAmount, got: %v", err)
	}
}

// =====================
// Derived fields
// =====================

func TestCreateSale_DerivesRemainingAndDueDate(t *testing.T) {
	svc := NewSaleService(newMockStore(), saoPaulo)

	sale, err := svc.CreateSale(context.Background(), basicInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !decimalEquals(sale.RemainingAmount, "1000.00") {
		t.Errorf("remaining: expected 1000.00, got %s", sale.RemainingAmount)
	}
	if sale.Status != ledger.StatusPending {
		t.Errorf("status: expected pending, got %s", sale.Status)
	}
	wantDue := time.Date(2024, 5, 20, 0, 0, 0, 0, saoPaulo)
	if !sale.PaymentDueDate.Equal(wantDue) {
		t.Errorf("due date: expected %s, got %s", wantDue, sale.PaymentDueDate)
	}
	if sale.UpdatedAt != nil {
		t.Errorf("updated_at: expected nil on create, got %v", sale.UpdatedAt)
	}
}

func TestCreateSale_EmptyDownPaymentIsZero(t *testing.T) {
	svc := NewSaleService(newMockStore(), saoPaulo)
	in := basicInput()
	in.DownPayment = ""

	sale, err := svc.CreateSale(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decimalEquals(sale.DownPayment, "0") || !decimalEquals(sale.RemainingAmount, "1200") {
		t.Errorf("expected down 0 and remaining 1200, got %s / %s", sale.DownPayment, sale.RemainingAmount)
	}
}

func TestCreateSale_RoundsAmountsBeforeDeriving(t *testing.T) {
	svc := NewSaleService(newMockStore(), saoPaulo)
	in := basicInput()
	in.TotalAmount = "10.005"
	in.DownPayment = "0.004"

	sale, err := svc.CreateSale(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decimalEquals(sale.TotalAmount, "10.01") || !decimalEquals(sale.DownPayment, "0") {
		t.Errorf("expected total 10.01 and down 0, got %s / %s", sale.TotalAmount, sale.DownPayment)
	}
	if !decimalEquals(sale.RemainingAmount, "10.01") {
		t.Errorf("remaining: expected 10.01, got %s", sale.RemainingAmount)
	}
	if !sale.RemainingAmount.Equal(sale.TotalAmount.Sub(sale.DownPayment)) {
		t.Errorf("remaining %s != total - down %s", sale.RemainingAmount, sale.TotalAmount.Sub(sale.DownPayment))
	}
}

func TestUpdateSale_RoundsAmountsBeforeDeriving(t *testing.T) {
	store := newMockStore()
	svc := NewSaleService(store, saoPaulo)
	created, err := svc.CreateSale(context.Background(), basicInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	in := basicInput()
	in.TotalAmount = "1200.999"
	in.DownPayment = "200.994"
	sale, err := svc.UpdateSale(context.Background(), created.ID, in, testNow)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !decimalEquals(sale.RemainingAmount, "1000.01") {
		t.Errorf("remaining: expected 1000.01 (1201.00 - 200.99), got %s", sale.RemainingAmount)
	}
}

func TestCreateSale_DownAboveTotalGoesNegative(t *testing.T) {
	svc := NewSaleService(newMockStore(), saoPaulo)
	in := basicInput()
	in.DownPayment = "1500.00"

	sale, err := svc.CreateSale(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decimalEquals(sale.RemainingAmount, "-300.00") {
		t.Errorf("expected -300.00, got %s", sale.RemainingAmount)
	}
}

func TestCreateSale_RFC3339Date(t *testing.T) {
	svc := NewSaleService(newMockStore(), saoPaulo)
	in := basicInput()
	in.SaleDate = "2024-05-12T14:30:00Z"

	sale, err := svc.CreateSale(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 5, 20, 14, 30, 0, 0, time.UTC)
	if !sale.PaymentDueDate.Equal(want) {
		t.Errorf("expected due %s, got %s", want, sale.PaymentDueDate)
	}
}

func TestCreateSale_StoreError(t *testing.T) {
	store := newMockStore()
	store.failErr = errors.New("connection refused")
	svc := NewSaleService(store, saoPaulo)

	_, err := svc.CreateSale(context.Background(), basicInput())
	if err == nil || errors.Is(err, ErrSaleNotFound) {
		t.Fatalf("expected wrapped store error, got: %v", err)
	}
}

// =====================
// Update
// =====================

func TestUpdateSale_RederivesFromEditedValues(t *testing.T) {
	store := newMockStore()
	svc := NewSaleService(store, saoPaulo)
	created, _ := svc.CreateSale(context.Background(), basicInput())

	in := basicInput()
	in.SaleDate = "2024-05-15"
	in.DownPayment = "500.00"
	in.CustomerName = "Maria S. Silva"

	got, err := svc.UpdateSale(context.Background(), created.ID, in, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decimalEquals(got.RemainingAmount, "700.00") {
		t.Errorf("remaining: expected 700.00, got %s", got.RemainingAmount)
	}
	if got.PaymentDueDate.Day() != 23 {
		t.Errorf("due day: expected 23, got %d", got.PaymentDueDate.Day())
	}
	if got.CustomerName != "Maria S. Silva" {
		t.Errorf("customer: got %q", got.CustomerName)
	}
	if got.UpdatedAt == nil || !got.UpdatedAt.Equal(testNow) {
		t.Errorf("updated_at: expected %s, got %v", testNow, got.UpdatedAt)
	}
	if got.Status != ledger.StatusPending {
		t.Errorf("status: expected pending, got %s", got.Status)
	}
}

func TestUpdateSale_PaidStaysPaid(t *testing.T) {
	store := newMockStore()
	svc := NewSaleService(store, saoPaulo)
	created, _ := svc.CreateSale(context.Background(), basicInput())
	if _, err := svc.MarkPaid(context.Background(), created.ID, testNow); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	in := basicInput()
	in.TotalAmount = "1500.00"
	got, err := svc.UpdateSale(context.Background(), created.ID, in, testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != ledger.StatusPaid {
		t.Errorf("status: expected paid, got %s", got.Status)
	}
	if !got.RemainingAmount.IsZero() {
		t.Errorf("remaining: expected 0, got %s", got.RemainingAmount)
	}
	if !decimalEquals(got.TotalAmount, "1500.00") {
		t.Errorf("total: expected 1500.00, got %s", got.TotalAmount)
	}
}

func TestUpdateSale_NotFound(t *testing.T) {
	svc := NewSaleService(newMockStore(), saoPaulo)

	_, err := svc.UpdateSale(context.Background(), 99, basicInput(), testNow)
	if !errors.Is(err, ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound, got: %v", err)
	}
}

func TestUpdateSale_ValidatesBeforeLookup(t *testing.T) {
	svc := NewSaleService(newMockStore(), saoPaulo)
	in := basicInput()
	in.IMEI = ""

	_, err := svc.UpdateSale(context.Background(), 99, in, testNow)
	if !errors.Is(err, ErrIMEIRequired) {
		t.Fatalf("expected ErrIMEIRequired, got: %v", err)
	}
}

// =====================
// Mark paid
// =====================

func TestMarkPaid_SettlesPendingSale(t *testing.T) {
	store := newMockStore()
	svc := NewSaleService(store, saoPaulo)
	created, _ := svc.CreateSale(context.Background(), basicInput())

	got, err := svc.MarkPaid(context.Background(), created.ID, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != ledger.StatusPaid {
		t.Errorf("status: expected paid, got %s", got.Status)
	}
	if !got.RemainingAmount.IsZero() {
		t.Errorf("remaining: expected 0, got %s", got.RemainingAmount)
	}
	if got.UpdatedAt == nil || !got.UpdatedAt.Equal(testNow) {
		t.Errorf("updated_at: expected %s, got %v", testNow, got.UpdatedAt)
	}
	if !decimalEquals(got.TotalAmount, "1200.00") || !decimalEquals(got.DownPayment, "200.00") {
		t.Errorf("amounts changed: total %s down %s", got.TotalAmount, got.DownPayment)
	}
}

func TestMarkPaid_AlreadyPaid(t *testing.T) {
	store := newMockStore()
	svc := NewSaleService(store, saoPaulo)
	created, _ := svc.CreateSale(context.Background(), basicInput())
	_, _ = svc.MarkPaid(context.Background(), created.ID, testNow)

	_, err := svc.MarkPaid(context.Background(), created.ID, testNow)
	if !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got: %v", err)
	}
	if store.markCalls != 2 {
		t.Errorf("expected 2 store calls, got %d", store.markCalls)
	}
}

func TestMarkPaid_NotFound(t *testing.T) {
	svc := NewSaleService(newMockStore(), saoPaulo)

	_, err := svc.MarkPaid(context.Background(), 42, testNow)
	if !errors.Is(err, ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound, got: %v", err)
	}
}

// =====================
// Delete / list / get
// =====================

func TestDeleteSale(t *testing.T) {
	store := newMockStore()
	svc := NewSaleService(store, saoPaulo)
	created, _ := svc.CreateSale(context.Background(), basicInput())

	if err := svc.DeleteSale(context.Background(), created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeleteSale(context.Background(), created.ID); !errors.Is(err, ErrSaleNotFound) {
		t.Fatalf("second delete: expected ErrSaleNotFound, got: %v", err)
	}
}

func TestListSales_ConvertsRows(t *testing.T) {
	store := newMockStore()
	svc := NewSaleService(store, saoPaulo)
	_, _ = svc.CreateSale(context.Background(), basicInput())
	in := basicInput()
	in.CustomerName = "João"
	_, _ = svc.CreateSale(context.Background(), in)

	sales, err := svc.ListSales(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sales) != 2 {
		t.Fatalf("expected 2 sales, got %d", len(sales))
	}
	if sales[0].CustomerName != "João" {
		t.Errorf("expected newest first, got %q", sales[0].CustomerName)
	}
	if sales[1].IMEI != "356938035643809" {
		t.Errorf("imei not carried over: %q", sales[1].IMEI)
	}
	if summary := ledger.Summarize(sales); !decimalEquals(summary.TotalSales, "2400.00") {
		t.Errorf("summary total: expected 2400.00, got %s", summary.TotalSales)
	}
}

func TestListSales_StoreError(t *testing.T) {
	store := newMockStore()
	store.failErr = errors.New("boom")
	svc := NewSaleService(store, saoPaulo)

	if _, err := svc.ListSales(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetSale_NotFound(t *testing.T) {
	svc := NewSaleService(newMockStore(), saoPaulo)

	if _, err := svc.GetSale(context.Background(), 7); !errors.Is(err, ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound, got: %v", err)
	}
}
