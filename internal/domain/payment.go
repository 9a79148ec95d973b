package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is shared by payments and their installments
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Valid reports whether s is a known payment status
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Payment records how an order is paid. When Installments > 1 the payment
// owns a generated schedule of Installment rows.
type Payment struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	OrderID       uuid.UUID     `json:"order_id" db:"order_id"`
	Amount        float64       `json:"amount" db:"amount"`
	Status        PaymentStatus `json:"status" db:"status"`
	Method        string        `json:"method" db:"method"`
	Installments  int           `json:"installments" db:"installments"`
	TransactionID string        `json:"transaction_id,omitempty" db:"transaction_id"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// Installment is one scheduled partial payment within a split payment
type Installment struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	PaymentID uuid.UUID     `json:"payment_id" db:"payment_id"`
	Number    int           `json:"installment_number" db:"installment_number"`
	Amount    float64       `json:"amount" db:"amount"`
	DueDate   time.Time     `json:"due_date" db:"due_date"`
	PaidAt    *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
	Status    PaymentStatus `json:"status" db:"status"`
}
