/*
Package sqlite provides a SQLite-backed sales store for local development and tests.

It implements the same query methods as *database.Queries so the service layer
can run against either backend. Differences from PostgreSQL:
  - Money is stored as TEXT with two decimal places and converted through
    shopspring/decimal on the way in and out.
  - Timestamps are stored as fixed-width RFC3339 TEXT (nanoseconds, UTC) so
    text order matches time order.
  - "No row" is reported as pgx.ErrNoRows so handlers see one not-found sentinel.

Use ":memory:" for an in-memory database; the pool is pinned to a single
connection so every query sees the same in-memory schema.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/devicesales/api/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Store implements the sales store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and migrates) the SQLite database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seller_name TEXT NOT NULL,
		customer_name TEXT NOT NULL,
		device_name TEXT NOT NULL,
		imei TEXT NOT NULL,
		sale_date TEXT NOT NULL,
		down_payment TEXT NOT NULL DEFAULT '0.00',
		total_amount TEXT NOT NULL DEFAULT '0.00',
		remaining_amount TEXT NOT NULL DEFAULT '0.00',
		payment_due_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'paid')),
		created_at TEXT NOT NULL,
		updated_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sales_sale_date ON sales(sale_date DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

const saleColumns = `id, seller_name, customer_name, device_name, imei, sale_date, down_payment, total_amount, remaining_amount, payment_due_date, status, created_at, updated_at`

// ListSales returns every sale, most recent sale date first.
func (s *Store) ListSales(ctx context.Context) ([]database.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+saleColumns+" FROM sales ORDER BY sale_date DESC, id DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := []database.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

// GetSale returns one sale or pgx.ErrNoRows.
func (s *Store) GetSale(ctx context.Context, id int64) (database.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+saleColumns+" FROM sales WHERE id = ?", id)
	return scanSale(row)
}

// CreateSale inserts a sale and returns the stored row.
func (s *Store) CreateSale(ctx context.Context, arg database.CreateSaleParams) (database.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sales (
			seller_name, customer_name, device_name, imei, sale_date,
			down_payment, total_amount, remaining_amount, payment_due_date, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.SellerName, arg.CustomerName, arg.DeviceName, arg.Imei,
		formatTime(arg.SaleDate),
		formatNumeric(arg.DownPayment),
		formatNumeric(arg.TotalAmount),
		formatNumeric(arg.RemainingAmount),
		formatTime(arg.PaymentDueDate),
		arg.Status,
		formatTime(time.Now()),
	)
	if err != nil {
		return database.Sale{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return database.Sale{}, err
	}

	row := s.db.QueryRowContext(ctx, "SELECT "+saleColumns+" FROM sales WHERE id = ?", id)
	return scanSale(row)
}

// UpdateSale replaces every editable column of a sale.
func (s *Store) UpdateSale(ctx context.Context, arg database.UpdateSaleParams) (database.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE sales SET
			seller_name = ?, customer_name = ?, device_name = ?, imei = ?, sale_date = ?,
			down_payment = ?, total_amount = ?, remaining_amount = ?, payment_due_date = ?,
			status = ?, updated_at = ?
		WHERE id = ?`,
		arg.SellerName, arg.CustomerName, arg.DeviceName, arg.Imei,
		formatTime(arg.SaleDate),
		formatNumeric(arg.DownPayment),
		formatNumeric(arg.TotalAmount),
		formatNumeric(arg.RemainingAmount),
		formatTime(arg.PaymentDueDate),
		arg.Status,
		formatTimestamptz(arg.UpdatedAt),
		arg.ID,
	)
	if err != nil {
		return database.Sale{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return database.Sale{}, err
	} else if n == 0 {
		return database.Sale{}, pgx.ErrNoRows
	}

	row := s.db.QueryRowContext(ctx, "SELECT "+saleColumns+" FROM sales WHERE id = ?", arg.ID)
	return scanSale(row)
}

// MarkSalePaid settles a pending sale. Returns pgx.ErrNoRows when the sale is
// missing or not pending.
func (s *Store) MarkSalePaid(ctx context.Context, arg database.MarkSalePaidParams) (database.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE sales SET status = 'paid', remaining_amount = '0.00', updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		formatTimestamptz(arg.UpdatedAt), arg.ID,
	)
	if err != nil {
		return database.Sale{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return database.Sale{}, err
	} else if n == 0 {
		return database.Sale{}, pgx.ErrNoRows
	}

	row := s.db.QueryRowContext(ctx, "SELECT "+saleColumns+" FROM sales WHERE id = ?", arg.ID)
	return scanSale(row)
}

// DeleteSale removes a sale and reports how many rows went away.
func (s *Store) DeleteSale(ctx context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM sales WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- Conversion helpers ---

func scanSale(row interface{ Scan(...any) error }) (database.Sale, error) {
	var (
		sale                         database.Sale
		saleDate, dueDate, createdAt string
		down, total, remaining       string
		updatedAt                    sql.NullString
	)
	err := row.Scan(
		&sale.ID, &sale.SellerName, &sale.CustomerName, &sale.DeviceName, &sale.Imei,
		&saleDate, &down, &total, &remaining, &dueDate, &sale.Status, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return database.Sale{}, pgx.ErrNoRows
	}
	if err != nil {
		return database.Sale{}, err
	}

	if sale.SaleDate, err = time.Parse(time.RFC3339Nano, saleDate); err != nil {
		return database.Sale{}, fmt.Errorf("parse sale_date: %w", err)
	}
	if sale.PaymentDueDate, err = time.Parse(time.RFC3339Nano, dueDate); err != nil {
		return database.Sale{}, fmt.Errorf("parse payment_due_date: %w", err)
	}
	if sale.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return database.Sale{}, fmt.Errorf("parse created_at: %w", err)
	}
	if updatedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, updatedAt.String)
		if err != nil {
			return database.Sale{}, fmt.Errorf("parse updated_at: %w", err)
		}
		sale.UpdatedAt = pgtype.Timestamptz{Time: t, Valid: true}
	}

	if sale.DownPayment, err = parseNumeric(down); err != nil {
		return database.Sale{}, err
	}
	if sale.TotalAmount, err = parseNumeric(total); err != nil {
		return database.Sale{}, err
	}
	if sale.RemainingAmount, err = parseNumeric(remaining); err != nil {
		return database.Sale{}, err
	}
	return sale, nil
}

func parseNumeric(s string) (pgtype.Numeric, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return pgtype.Numeric{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return database.NumericFromDecimal(d)
}

func formatNumeric(n pgtype.Numeric) string {
	return database.DecimalFromNumeric(n).StringFixed(2)
}

// timeLayout keeps every fractional digit so stored values sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimestamptz(t pgtype.Timestamptz) any {
	if !t.Valid {
		return nil
	}
	return formatTime(t.Time)
}
