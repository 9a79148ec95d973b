package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrInstallmentNotFound = errors.New("installment not found")
)

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error)
	List(ctx context.Context) ([]*domain.Payment, error)
	Update(ctx context.Context, payment *domain.Payment) error
}

// InstallmentRepository defines the interface for installment data access
type InstallmentRepository interface {
	Create(ctx context.Context, installment *domain.Installment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Installment, error)
	ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]*domain.Installment, error)
	Update(ctx context.Context, installment *domain.Installment) error
}

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new instance of PaymentRepository
func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = "id, order_id, amount, status, method, installments, transaction_id, created_at, updated_at"

// Create inserts a new payment into the database
func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, order_id, amount, status, method, installments, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := conn(ctx, r.db).ExecContext(
		ctx,
		query,
		payment.ID,
		payment.OrderID,
		payment.Amount,
		payment.Status,
		payment.Method,
		payment.Installments,
		payment.TransactionID,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// FindByID retrieves a payment by ID
func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(conn(ctx, r.db).QueryRowContext(ctx, query, id))
}

// FindByOrder retrieves the payment recorded for an order
func (r *paymentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1`
	return scanPayment(conn(ctx, r.db).QueryRowContext(ctx, query, orderID))
}

// List retrieves all payments
func (r *paymentRepository) List(ctx context.Context) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY created_at ASC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []*domain.Payment{}
	for rows.Next() {
		payment := &domain.Payment{}
		if err := rows.Scan(
			&payment.ID,
			&payment.OrderID,
			&payment.Amount,
			&payment.Status,
			&payment.Method,
			&payment.Installments,
			&payment.TransactionID,
			&payment.CreatedAt,
			&payment.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}

// Update replaces the mutable fields of an existing payment
func (r *paymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET amount = $2, status = $3, method = $4, installments = $5, transaction_id = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := conn(ctx, r.db).ExecContext(
		ctx,
		query,
		payment.ID,
		payment.Amount,
		payment.Status,
		payment.Method,
		payment.Installments,
		payment.TransactionID,
		payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return requireRowsAffected(result, ErrPaymentNotFound)
}

func scanPayment(row *sql.Row) (*domain.Payment, error) {
	payment := &domain.Payment{}
	err := row.Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.Amount,
		&payment.Status,
		&payment.Method,
		&payment.Installments,
		&payment.TransactionID,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return payment, nil
}

type installmentRepository struct {
	db *sql.DB
}

// NewInstallmentRepository creates a new instance of InstallmentRepository
func NewInstallmentRepository(db *sql.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

const installmentColumns = "id, payment_id, installment_number, amount, due_date, paid_at, status"

// Create inserts one scheduled installment
func (r *installmentRepository) Create(ctx context.Context, installment *domain.Installment) error {
	query := `
		INSERT INTO installments (id, payment_id, installment_number, amount, due_date, paid_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var paidAt sql.NullTime
	if installment.PaidAt != nil {
		paidAt = sql.NullTime{Time: *installment.PaidAt, Valid: true}
	}

	_, err := conn(ctx, r.db).ExecContext(
		ctx,
		query,
		installment.ID,
		installment.PaymentID,
		installment.Number,
		installment.Amount,
		installment.DueDate,
		paidAt,
		installment.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create installment: %w", err)
	}
	return nil
}

// FindByID retrieves an installment by ID
func (r *installmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE id = $1`

	installment := &domain.Installment{}
	var paidAt sql.NullTime
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&installment.ID,
		&installment.PaymentID,
		&installment.Number,
		&installment.Amount,
		&installment.DueDate,
		&paidAt,
		&installment.Status,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInstallmentNotFound
		}
		return nil, fmt.Errorf("failed to find installment: %w", err)
	}
	if paidAt.Valid {
		installment.PaidAt = &paidAt.Time
	}
	return installment, nil
}

// ListByPayment retrieves a payment's installments in schedule order
func (r *installmentRepository) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]*domain.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE payment_id = $1 ORDER BY installment_number ASC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	defer rows.Close()

	installments := []*domain.Installment{}
	for rows.Next() {
		installment := &domain.Installment{}
		var paidAt sql.NullTime
		if err := rows.Scan(
			&installment.ID,
			&installment.PaymentID,
			&installment.Number,
			&installment.Amount,
			&installment.DueDate,
			&paidAt,
			&installment.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		if paidAt.Valid {
			installment.PaidAt = &paidAt.Time
		}
		installments = append(installments, installment)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating installments: %w", err)
	}

	return installments, nil
}

// Update replaces the mutable fields of an existing installment
func (r *installmentRepository) Update(ctx context.Context, installment *domain.Installment) error {
	query := `
		UPDATE installments
		SET amount = $2, due_date = $3, paid_at = $4, status = $5
		WHERE id = $1
	`

	var paidAt sql.NullTime
	if installment.PaidAt != nil {
		paidAt = sql.NullTime{Time: *installment.PaidAt, Valid: true}
	}

	result, err := conn(ctx, r.db).ExecContext(
		ctx,
		query,
		installment.ID,
		installment.Amount,
		installment.DueDate,
		paidAt,
		installment.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update installment: %w", err)
	}
	return requireRowsAffected(result, ErrInstallmentNotFound)
}
