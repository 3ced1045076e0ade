package database

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type Sale struct {
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
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       pgtype.Timestamptz `json:"updated_at"`
}
