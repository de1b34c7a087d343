package observability

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/observability/service"

// Service decorates the orders service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core orders service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(os.Stderr, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.PlaceOrder",
		trace.WithAttributes(attribute.String("user.id", input.UserID), attribute.String("order.payment_mode", input.PaymentMode)))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.String("user.id", input.UserID), slog.String("payment.mode", input.PaymentMode))
	result, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		s.metrics.recordCheckoutFailure(ctx, input.PaymentMode, err)
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("user.id", input.UserID))
	}
	span.SetAttributes(attribute.String("order.id", result.ID), attribute.Int("order.items", len(result.Items)))
	s.metrics.recordPlaced(ctx, result.PaymentMode)
	s.logInfo(ctx, "order placed",
		slog.String("order.id", result.ID),
		slog.String("total", result.Total.StringFixed(2)),
		slog.String("payment.status", string(result.PaymentStatus)))
	return result, nil
}

func (s *Service) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.ListOrders", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	result, err := s.inner.ListOrders(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.String("user.id", userID))
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, input ports.GetOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.GetOrder", trace.WithAttributes(attribute.String("order.id", input.OrderID)))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", input.OrderID))
	}
	return result, nil
}

func (s *Service) UpdateStatus(ctx context.Context, input ports.UpdateStatusInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.UpdateStatus",
		trace.WithAttributes(attribute.String("order.id", input.OrderID), attribute.String("order.status", input.Status)))
	defer span.End()

	s.logInfo(ctx, "updating order status", slog.String("order.id", input.OrderID), slog.String("status", input.Status))
	result, err := s.inner.UpdateStatus(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status", slog.String("order.id", input.OrderID))
	}
	s.metrics.recordTransition(ctx, result.Status)
	s.logInfo(ctx, "order status updated", slog.String("order.id", result.ID), slog.String("status", string(result.Status)))
	return result, nil
}

func (s *Service) ReserveOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.ReserveOrder", trace.WithAttributes(attribute.String("user.id", input.UserID)))
	defer span.End()

	result, err := s.inner.ReserveOrder(ctx, input)
	if err != nil {
		s.metrics.recordCheckoutFailure(ctx, input.PaymentMode, err)
		return nil, s.handleError(ctx, span, err, "failed to reserve order", slog.String("user.id", input.UserID))
	}
	s.logInfo(ctx, "order reserved", slog.String("order.id", result.ID), slog.String("total", result.Total.StringFixed(2)))
	return result, nil
}

func (s *Service) CapturePayment(ctx context.Context, input ports.CapturePaymentInput) (*ports.CaptureReceipt, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.CapturePayment", trace.WithAttributes(attribute.String("order.id", input.OrderID)))
	defer span.End()

	result, err := s.inner.CapturePayment(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "payment capture failed", slog.String("order.id", input.OrderID))
	}
	s.logInfo(ctx, "payment captured", slog.String("order.id", input.OrderID), slog.String("transaction.id", result.TransactionID))
	return result, nil
}

func (s *Service) ConfirmPayment(ctx context.Context, input ports.ConfirmPaymentInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.ConfirmPayment", trace.WithAttributes(attribute.String("order.id", input.OrderID)))
	defer span.End()

	result, err := s.inner.ConfirmPayment(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to confirm payment",
			slog.String("order.id", input.OrderID), slog.String("transaction.id", input.TransactionID))
	}
	s.logInfo(ctx, "payment confirmed", slog.String("order.id", result.ID), slog.String("transaction.id", input.TransactionID))
	return result, nil
}

func (s *Service) ReleaseOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.ReleaseOrder", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	s.logInfo(ctx, "releasing order reservation", slog.String("order.id", orderID))
	result, err := s.inner.ReleaseOrder(ctx, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to release order", slog.String("order.id", orderID))
	}
	s.metrics.recordReleased(ctx)
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	ordersPlaced      metric.Int64Counter
	checkoutFailures  metric.Int64Counter
	statusTransitions metric.Int64Counter
	reservationsFreed metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("orders.service.orders_placed", metric.WithDescription("Number of orders placed and paid or COD"))
	checkoutFailures, _ := m.Int64Counter("orders.service.checkout_failures", metric.WithDescription("Number of rejected checkouts"))
	statusTransitions, _ := m.Int64Counter("orders.service.status_transitions", metric.WithDescription("Number of applied status updates"))
	reservationsFreed, _ := m.Int64Counter("orders.service.reservations_released", metric.WithDescription("Number of ONLINE reservations released"))
	return serviceMetrics{
		ordersPlaced:      ordersPlaced,
		checkoutFailures:  checkoutFailures,
		statusTransitions: statusTransitions,
		reservationsFreed: reservationsFreed,
	}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, mode domain.PaymentMode) {
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.String("order.payment_mode", string(mode))))
	}
}

func (m serviceMetrics) recordCheckoutFailure(ctx context.Context, mode string, err error) {
	if m.checkoutFailures != nil {
		m.checkoutFailures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("order.payment_mode", mode),
			attribute.String("reason", failureReason(err)),
		))
	}
}

func (m serviceMetrics) recordTransition(ctx context.Context, status domain.Status) {
	if m.statusTransitions != nil {
		m.statusTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

func (m serviceMetrics) recordReleased(ctx context.Context) {
	if m.reservationsFreed != nil {
		m.reservationsFreed.Add(ctx, 1)
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ports.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ports.ErrPaymentDeclined):
		return "payment_declined"
	case errors.Is(err, ports.ErrPaymentUnavailable):
		return "payment_unavailable"
	case errors.Is(err, ports.ErrIdempotencyConflict):
		return "idempotency_conflict"
	default:
		return "other"
	}
}

var _ ports.Service = (*Service)(nil)
