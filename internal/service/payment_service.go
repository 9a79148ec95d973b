package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// ErrPaymentExists is returned when an order already has a payment
var ErrPaymentExists = errors.New("order already has a payment")

// PaymentInput describes a payment for an order. Installments above 1
// generate a monthly schedule.
type PaymentInput struct {
	OrderID      uuid.UUID
	Method       string
	Installments int
}

// PaymentView is a payment with its installment schedule
type PaymentView struct {
	Payment      *domain.Payment       `json:"payment"`
	Installments []*domain.Installment `json:"installments,omitempty"`
}

// PaymentService defines the interface for payment management
type PaymentService interface {
	CreatePayment(ctx context.Context, in PaymentInput) (*PaymentView, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*PaymentView, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*PaymentView, error)
	GetInstallment(ctx context.Context, id uuid.UUID) (*domain.Installment, error)
	ListPayments(ctx context.Context) ([]*domain.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*domain.Payment, error)
	PayInstallment(ctx context.Context, installmentID uuid.UUID) (*domain.Installment, error)
}

type paymentService struct {
	paymentRepo     repository.PaymentRepository
	installmentRepo repository.InstallmentRepository
	orderRepo       repository.OrderRepository
	txManager       repository.TxManager
}

// NewPaymentService creates a new instance of PaymentService
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	installmentRepo repository.InstallmentRepository,
	orderRepo repository.OrderRepository,
	txManager repository.TxManager,
) PaymentService {
	return &paymentService{
		paymentRepo:     paymentRepo,
		installmentRepo: installmentRepo,
		orderRepo:       orderRepo,
		txManager:       txManager,
	}
}

// CreatePayment records a payment for an order. The amount always comes
// from the order total. With N installments the amount is split into N
// monthly parts rounded to cents, the last installment absorbing the
// rounding remainder so the parts sum to the exact amount.
func (s *paymentService) CreatePayment(ctx context.Context, in PaymentInput) (*PaymentView, error) {
	if in.Method == "" {
		return nil, fmt.Errorf("%w: payment method is required", ErrInvalidInput)
	}
	if in.Installments < 1 {
		return nil, fmt.Errorf("%w: installments must be at least 1", ErrInvalidInput)
	}

	order, err := s.orderRepo.FindByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	existing, err := s.paymentRepo.FindByOrder(ctx, in.OrderID)
	if err != nil && !errors.Is(err, repository.ErrPaymentNotFound) {
		return nil, fmt.Errorf("failed to check existing payment: %w", err)
	}
	if existing != nil {
		return nil, ErrPaymentExists
	}

	now := time.Now()
	payment := &domain.Payment{
		ID:           uuid.New(),
		OrderID:      in.OrderID,
		Amount:       order.Total,
		Status:       domain.PaymentPending,
		Method:       in.Method,
		Installments: in.Installments,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	schedule := buildSchedule(payment, now)

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		for _, inst := range schedule {
			if err := s.installmentRepo.Create(ctx, inst); err != nil {
				return fmt.Errorf("failed to create installment: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &PaymentView{Payment: payment, Installments: schedule}, nil
}

// buildSchedule splits the payment amount into monthly installments.
// Single-installment payments get no schedule rows.
func buildSchedule(payment *domain.Payment, from time.Time) []*domain.Installment {
	if payment.Installments <= 1 {
		return nil
	}

	n := payment.Installments
	per := round2(payment.Amount / float64(n))
	schedule := make([]*domain.Installment, 0, n)

	for i := 1; i <= n; i++ {
		amount := per
		if i == n {
			amount = round2(payment.Amount - per*float64(n-1))
		}
		schedule = append(schedule, &domain.Installment{
			ID:        uuid.New(),
			PaymentID: payment.ID,
			Number:    i,
			Amount:    amount,
			DueDate:   from.AddDate(0, i, 0),
			Status:    domain.PaymentPending,
		})
	}

	return schedule
}

// GetPayment returns a payment with its installment schedule
func (s *paymentService) GetPayment(ctx context.Context, id uuid.UUID) (*PaymentView, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.viewOf(ctx, payment)
}

// GetByOrder returns the payment for an order with its schedule
func (s *paymentService) GetByOrder(ctx context.Context, orderID uuid.UUID) (*PaymentView, error) {
	payment, err := s.paymentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.viewOf(ctx, payment)
}

func (s *paymentService) viewOf(ctx context.Context, payment *domain.Payment) (*PaymentView, error) {
	installments, err := s.installmentRepo.ListByPayment(ctx, payment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	return &PaymentView{Payment: payment, Installments: installments}, nil
}

func (s *paymentService) GetInstallment(ctx context.Context, id uuid.UUID) (*domain.Installment, error) {
	return s.installmentRepo.FindByID(ctx, id)
}

func (s *paymentService) ListPayments(ctx context.Context) ([]*domain.Payment, error) {
	return s.paymentRepo.List(ctx)
}

// UpdateStatus changes a payment's status
func (s *paymentService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*domain.Payment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, status)
	}

	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payment.Status = status
	payment.UpdatedAt = time.Now()
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	return payment, nil
}

// PayInstallment marks one installment as paid. When it is the last
// outstanding one the payment itself flips to paid in the same
// transaction.
func (s *paymentService) PayInstallment(ctx context.Context, installmentID uuid.UUID) (*domain.Installment, error) {
	installment, err := s.installmentRepo.FindByID(ctx, installmentID)
	if err != nil {
		return nil, err
	}
	if installment.Status == domain.PaymentPaid {
		return nil, fmt.Errorf("%w: installment is already paid", ErrInvalidInput)
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		siblings, err := s.installmentRepo.ListByPayment(ctx, installment.PaymentID)
		if err != nil {
			return fmt.Errorf("failed to list installments: %w", err)
		}

		allPaid := true
		for _, sib := range siblings {
			if sib.ID != installment.ID && sib.Status != domain.PaymentPaid {
				allPaid = false
				break
			}
		}

		now := time.Now()
		installment.Status = domain.PaymentPaid
		installment.PaidAt = &now
		if err := s.installmentRepo.Update(ctx, installment); err != nil {
			return fmt.Errorf("failed to update installment: %w", err)
		}

		if allPaid {
			payment, err := s.paymentRepo.FindByID(ctx, installment.PaymentID)
			if err != nil {
				return err
			}
			payment.Status = domain.PaymentPaid
			payment.UpdatedAt = now
			if err := s.paymentRepo.Update(ctx, payment); err != nil {
				return fmt.Errorf("failed to update payment: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return installment, nil
}
