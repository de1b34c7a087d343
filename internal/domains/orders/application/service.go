package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
)

// Service orchestrates the order placement and fulfillment use cases.
type Service struct {
	repo           ports.Repository
	payments       ports.PaymentGateway
	idempotency    ports.IdempotencyStore
	online         ports.WorkflowOrchestrator
	confirmBackOff func() backoff.BackOff
	now            func() time.Time
}

// Option configures optional collaborators.
type Option func(*Service)

// WithPaymentGateway enables ONLINE checkout. Without a gateway ONLINE orders fail closed.
func WithPaymentGateway(gateway ports.PaymentGateway) Option {
	return func(s *Service) {
		s.payments = gateway
	}
}

// WithIdempotencyStore makes PlaceOrder replay the original order for a repeated Idempotency-Key.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

// WithOnlineCheckout hands ONLINE placements to a durable orchestrator instead of running
// reserve, capture, and confirm in-process.
func WithOnlineCheckout(orchestrator ports.WorkflowOrchestrator) Option {
	return func(s *Service) {
		s.online = orchestrator
	}
}

// WithConfirmBackOff sets the retry schedule for confirming a captured payment in-process.
func WithConfirmBackOff(newBackOff func() backoff.BackOff) Option {
	return func(s *Service) {
		if newBackOff != nil {
			s.confirmBackOff = newBackOff
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the orders service with its dependencies.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, confirmBackOff: defaultConfirmBackOff, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder converts the caller's cart into an order. COD orders commit in a single
// transaction; ONLINE orders are reserved, captured, then confirmed or released.
// A repeated Idempotency-Key replays the first order whichever path placed it.
func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	mode, err := validatePlacement(input)
	if err != nil {
		return nil, err
	}
	if s.idempotency == nil || strings.TrimSpace(input.IdempotencyKey) == "" {
		return s.place(ctx, input, mode)
	}
	hash, err := FingerprintPlaceOrder(input)
	if err != nil {
		return nil, err
	}
	if order, err := s.replay(ctx, input, hash); err != nil || order != nil {
		return order, err
	}
	order, err := s.place(ctx, input, mode)
	if err != nil {
		return nil, err
	}
	// A durable run started earlier under this key may belong to a different payload.
	if placed, err := fingerprintOrder(order); err != nil || placed != hash {
		return nil, ports.ErrIdempotencyConflict
	}
	if err := s.remember(ctx, input, hash, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) place(ctx context.Context, input ports.PlaceOrderInput, mode domain.PaymentMode) (*domain.Order, error) {
	if mode != domain.PaymentOnline {
		return s.checkout(ctx, input, domain.PaymentCOD)
	}
	if s.online != nil {
		order, err := s.online.PlaceOnlineOrder(ctx, input)
		if err != nil {
			return nil, mapError(err)
		}
		return order, nil
	}
	return s.placeOnline(ctx, input)
}

// ListOrders returns the caller's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthorized
	}
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

// GetOrder loads one order. Orders owned by someone else are reported as missing unless
// the caller is an admin.
func (s *Service) GetOrder(ctx context.Context, input ports.GetOrderInput) (*domain.Order, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, ErrUnauthorized
	}
	order, err := s.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	if !input.IsAdmin && order.UserID != input.UserID {
		return nil, ports.ErrNotFound
	}
	return order, nil
}

// UpdateStatus moves an order forward in its fulfillment sequence.
func (s *Service) UpdateStatus(ctx context.Context, input ports.UpdateStatusInput) (*domain.Order, error) {
	status, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	if strings.TrimSpace(input.OrderID) == "" {
		return nil, ports.ErrNotFound
	}
	order, err := s.repo.Update(ctx, input.OrderID, func(o *domain.Order) error {
		return o.AdvanceStatus(status, s.now().UTC())
	})
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// ReserveOrder runs the checkout transaction for an ONLINE order with payment pending.
func (s *Service) ReserveOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	mode, err := validatePlacement(input)
	if err != nil {
		return nil, err
	}
	if mode != domain.PaymentOnline {
		return nil, fmt.Errorf("%w: only ONLINE orders are reserved", ErrInvalidInput)
	}
	if s.payments == nil {
		return nil, ports.ErrPaymentUnavailable
	}
	return s.checkout(ctx, input, domain.PaymentOnline)
}

// CapturePayment charges the reserved order total through the gateway.
func (s *Service) CapturePayment(ctx context.Context, input ports.CapturePaymentInput) (*ports.CaptureReceipt, error) {
	if s.payments == nil {
		return nil, ports.ErrPaymentUnavailable
	}
	receipt, err := s.payments.Capture(ctx, ports.CaptureRequest{
		OrderID: input.OrderID,
		UserID:  input.UserID,
		Amount:  input.Total,
	})
	if err != nil {
		if errors.Is(err, ports.ErrPaymentDeclined) || errors.Is(err, ports.ErrPaymentUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ports.ErrPaymentUnavailable, err)
	}
	if receipt == nil || strings.TrimSpace(receipt.TransactionID) == "" {
		return nil, fmt.Errorf("%w: gateway returned no transaction id", ports.ErrPaymentUnavailable)
	}
	return receipt, nil
}

// ConfirmPayment marks a reserved order as paid.
func (s *Service) ConfirmPayment(ctx context.Context, input ports.ConfirmPaymentInput) (*domain.Order, error) {
	order, err := s.repo.Update(ctx, input.OrderID, func(o *domain.Order) error {
		return o.MarkPaid(input.TransactionID, s.now().UTC())
	})
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// ReleaseOrder compensates a failed capture: stock and cart lines are restored and the
// payment is marked failed. Releasing an already failed order is a no-op.
func (s *Service) ReleaseOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.Release(ctx, orderID, func(o *domain.Order) error {
		return o.MarkPaymentFailed(s.now().UTC())
	})
	if err == nil {
		return order, nil
	}
	if errors.Is(err, domain.ErrPaymentSettled) {
		existing, getErr := s.repo.GetByID(ctx, orderID)
		if getErr == nil && existing.PaymentStatus == domain.PaymentFailed {
			return existing, nil
		}
	}
	return nil, mapError(err)
}

func (s *Service) placeOnline(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	order, err := s.ReserveOrder(ctx, input)
	if err != nil {
		return nil, err
	}
	receipt, err := s.CapturePayment(ctx, ports.CapturePaymentInput{
		OrderID: order.ID,
		UserID:  order.UserID,
		Total:   order.Total,
	})
	if err != nil {
		// Compensation must run even when the request context is gone.
		if _, releaseErr := s.ReleaseOrder(context.WithoutCancel(ctx), order.ID); releaseErr != nil {
			return nil, errors.Join(err, releaseErr)
		}
		return nil, err
	}
	return s.confirmCaptured(ctx, order.ID, receipt.TransactionID)
}

// confirmCaptured records a capture that already charged the customer, so it retries
// storage failures and ignores request cancellation. The final error names the
// transaction so it can be reconciled by hand.
func (s *Service) confirmCaptured(ctx context.Context, orderID, transactionID string) (*domain.Order, error) {
	ctx = context.WithoutCancel(ctx)
	input := ports.ConfirmPaymentInput{OrderID: orderID, TransactionID: transactionID}
	var confirmed *domain.Order
	err := backoff.Retry(func() error {
		order, err := s.ConfirmPayment(ctx, input)
		if err != nil {
			if errors.Is(err, ErrPersistence) {
				return err
			}
			return backoff.Permanent(err)
		}
		confirmed = order
		return nil
	}, s.confirmBackOff())
	if err != nil {
		return nil, fmt.Errorf("confirm order %s after capture %s: %w", orderID, transactionID, err)
	}
	return confirmed, nil
}

func defaultConfirmBackOff() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = time.Second
	return backoff.WithMaxRetries(policy, 4)
}

func (s *Service) checkout(ctx context.Context, input ports.PlaceOrderInput, mode domain.PaymentMode) (*domain.Order, error) {
	orderID := strings.TrimSpace(input.OrderID)
	order, err := s.repo.Checkout(ctx, input.UserID, orderID, func(lines []domain.CartLine) (*domain.Order, error) {
		order, err := domain.NewOrder(input.UserID, input.Address, mode, lines, s.now().UTC())
		if err != nil || orderID == "" {
			return order, err
		}
		return order, order.AssignID(orderID)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// validatePlacement checks the request fields in the order the API reports them:
// payment mode, identity, address.
func validatePlacement(input ports.PlaceOrderInput) (domain.PaymentMode, error) {
	mode, err := domain.ParsePaymentMode(input.PaymentMode)
	if err != nil {
		return "", mapError(err)
	}
	if strings.TrimSpace(input.UserID) == "" {
		return "", ErrUnauthorized
	}
	if _, err := domain.NormalizeAddress(input.Address); err != nil {
		return "", mapError(err)
	}
	return mode, nil
}

var _ ports.Service = (*Service)(nil)
