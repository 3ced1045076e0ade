package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const saleColumns = `id, seller_name, customer_name, device_name, imei, sale_date, down_payment, total_amount, remaining_amount, payment_due_date, status, created_at, updated_at`

func scanSale(row interface{ Scan(...interface{}) error }) (Sale, error) {
	var i Sale
	err := row.Scan(
		&i.ID,
		&i.SellerName,
		&i.CustomerName,
		&i.DeviceName,
		&i.Imei,
		&i.SaleDate,
		&i.DownPayment,
		&i.TotalAmount,
		&i.RemainingAmount,
		&i.PaymentDueDate,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listSales = `SELECT ` + saleColumns + ` FROM sales
ORDER BY sale_date DESC, id DESC`

func (q *Queries) ListSales(ctx context.Context) ([]Sale, error) {
	rows, err := q.db.Query(ctx, listSales)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Sale{}
	for rows.Next() {
		i, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getSale = `SELECT ` + saleColumns + ` FROM sales
WHERE id = $1`

func (q *Queries) GetSale(ctx context.Context, id int64) (Sale, error) {
	row := q.db.QueryRow(ctx, getSale, id)
	return scanSale(row)
}

const createSale = `INSERT INTO sales (
    seller_name, customer_name, device_name, imei, sale_date,
    down_payment, total_amount, remaining_amount, payment_due_date, status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + saleColumns

type CreateSaleParams struct {
	SellerName      string         `json:"seller_name"`
	CustomerName    string         `json:"customer_name"`
	DeviceName      string         `json:"device_name"`
	Imei            string         `json:"imei"`
	SaleDate        time.Time      `json:"sale_date"`
	DownPayment     pgtype.Numeric `json:"down_payment"`
	TotalAmount     pgtype.Numeric `json:"total_amount"`
	RemainingAmount pgtype.Numeric `json:"remaining_amount"`
	PaymentDueDate  time.Time      `json:"payment_due_date"`
	Status          string         `json:"status"`
}

func (q *Queries) CreateSale(ctx context.Context, arg CreateSaleParams) (Sale, error) {
	row := q.db.QueryRow(ctx, createSale,
		arg.SellerName,
		arg.CustomerName,
		arg.DeviceName,
		arg.Imei,
		arg.SaleDate,
		arg.DownPayment,
		arg.TotalAmount,
		arg.RemainingAmount,
		arg.PaymentDueDate,
		arg.Status,
	)
	return scanSale(row)
}

const updateSale = `UPDATE sales SET
    seller_name = $2,
    customer_name = $3,
    device_name = $4,
    imei = $5,
    sale_date = $6,
    down_payment = $7,
    total_amount = $8,
    remaining_amount = $9,
    payment_due_date = $10,
    status = $11,
    updated_at = $12
WHERE id = $1
RETURNING ` + saleColumns

type UpdateSaleParams struct {
	ID              int64              `json:"id"`
	SellerName      string             `json:"seller_name"`
	CustomerName    string             `json:"customer_name"`
	DeviceName      string             `json:"device_name"`
	Imei            string             `json:"imei"`
	SaleDate        time.Time          `json:"sale_date"`
	DownPayment     pgtype.Numeric     `json:"down_payment"`
	TotalAmount     pgtype.Numeric     `json:"total_amount"`
	RemainingAmount pgtype.Numeric     `json:"remaining_amount"`
	PaymentDueDate  time.Time          `json:"payment_due_date"`
	Status          string             `json:"status"`
	UpdatedAt       pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateSale(ctx context.Context, arg UpdateSaleParams) (Sale, error) {
	row := q.db.QueryRow(ctx, updateSale,
		arg.ID,
		arg.SellerName,
		arg.CustomerName,
		arg.DeviceName,
		arg.Imei,
		arg.SaleDate,
		arg.DownPayment,
		arg.TotalAmount,
		arg.RemainingAmount,
		arg.PaymentDueDate,
		arg.Status,
		arg.UpdatedAt,
	)
	return scanSale(row)
}

const markSalePaid = `UPDATE sales SET
    status = 'paid',
    remaining_amount = 0,
    updated_at = $2
WHERE id = $1 AND status = 'pending'
RETURNING ` + saleColumns

type MarkSalePaidParams struct {
	ID        int64              `json:"id"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) MarkSalePaid(ctx context.Context, arg MarkSalePaidParams) (Sale, error) {
	row := q.db.QueryRow(ctx, markSalePaid, arg.ID, arg.UpdatedAt)
	return scanSale(row)
}

const deleteSale = `DELETE FROM sales
WHERE id = $1`

func (q *Queries) DeleteSale(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteSale, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
