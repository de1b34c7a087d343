package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordersmemory "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-storefront/internal/platform/memorydb"
)

var fixedNow = time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)

type fakeGateway struct {
	err      error
	requests []ports.CaptureRequest
}

func (f *fakeGateway) Capture(_ context.Context, req ports.CaptureRequest) (*ports.CaptureReceipt, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &ports.CaptureReceipt{TransactionID: "txn-" + req.OrderID}, nil
}

type fixture struct {
	db  *memorydb.DB
	svc *Service
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	db := memorydb.New()
	db.WithClock(func() time.Time { return fixedNow })
	require.NoError(t, db.Transaction(func(tb *memorydb.Tables) error {
		tb.Products["A"] = memorydb.Product{ID: "A", Name: "Lamp", Price: decimal.NewFromInt(100), Stock: 5, ImageURLs: []string{"lamp.png"}}
		tb.Products["B"] = memorydb.Product{ID: "B", Name: "Shade", Price: decimal.NewFromInt(50), Stock: 3}
		tb.CartLines["u1"] = []memorydb.CartLine{
			{UserID: "u1", ProductID: "A", Quantity: 2, CreatedAt: fixedNow},
			{UserID: "u1", ProductID: "B", Quantity: 1, CreatedAt: fixedNow.Add(time.Second)},
		}
		return nil
	}))
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return &fixture{db: db, svc: NewService(ordersmemory.NewRepository(db), opts...)}
}

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	var stock int
	require.NoError(t, f.db.Read(func(tb *memorydb.Tables) error {
		stock = tb.Products[productID].Stock
		return nil
	}))
	return stock
}

func (f *fixture) cartSize(t *testing.T, userID string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.Read(func(tb *memorydb.Tables) error {
		n = len(tb.CartLines[userID])
		return nil
	}))
	return n
}

func TestPlaceOrder_COD(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{UserID: "u1", Address: "221B Baker Street", PaymentMode: "COD"})
	require.NoError(t, err)

	assert.True(t, order.Total.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, domain.StatusPlaced, order.Status)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "A", order.Items[0].ProductID)
	require.NotNil(t, order.Items[0].Product)
	assert.Equal(t, "lamp.png", order.Items[0].Product.ImageURL)

	assert.Equal(t, 3, f.stock(t, "A"))
	assert.Equal(t, 2, f.stock(t, "B"))
	assert.Zero(t, f.cartSize(t, "u1"))
}

func TestPlaceOrder_EmptyCartLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{UserID: "u2", Address: "addr", PaymentMode: "COD"})
	require.ErrorIs(t, err, domain.ErrEmptyCart)

	assert.Equal(t, 5, f.stock(t, "A"))
	orders, err := f.svc.ListOrders(context.Background(), "u2")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlaceOrder_ValidationOrder(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name    string
		input   ports.PlaceOrderInput
		wantErr error
	}{
		{name: "mode checked first", input: ports.PlaceOrderInput{PaymentMode: "CARD"}, wantErr: ErrInvalidInput},
		{name: "identity before address", input: ports.PlaceOrderInput{PaymentMode: "COD"}, wantErr: ErrUnauthorized},
		{name: "blank address", input: ports.PlaceOrderInput{UserID: "u1", Address: "  ", PaymentMode: "COD"}, wantErr: domain.ErrEmptyAddress},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.PlaceOrder(context.Background(), tc.input)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
	assert.Equal(t, 2, f.cartSize(t, "u1"))
}

func TestPlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Transaction(func(tb *memorydb.Tables) error {
		p := tb.Products["B"]
		p.Stock = 0
		tb.Products["B"] = p
		return nil
	}))

	_, err := f.svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{UserID: "u1", Address: "addr", PaymentMode: "COD"})
	require.ErrorIs(t, err, ports.ErrInsufficientStock)

	assert.Equal(t, 5, f.stock(t, "A"))
	assert.Equal(t, 2, f.cartSize(t, "u1"))
}

func TestPlaceOrder_OnlineWithoutGatewayFailsClosed(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{UserID: "u1", Address: "addr", PaymentMode: "ONLINE"})
	require.ErrorIs(t, err, ports.ErrPaymentUnavailable)
	assert.Equal(t, 2, f.cartSize(t, "u1"))
	assert.Equal(t, 5, f.stock(t, "A"))
}

func TestPlaceOrder_OnlineCaptured(t *testing.T) {
	gateway := &fakeGateway{}
	f := newFixture(t, WithPaymentGateway(gateway))

	order, err := f.svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{UserID: "u1", Address: "addr", PaymentMode: "ONLINE"})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, "txn-"+order.ID, order.PaymentReference)
	require.Len(t, gateway.requests, 1)
	assert.Equal(t, order.ID, gateway.requests[0].OrderID)
	assert.True(t, gateway.requests[0].Amount.Equal(decimal.NewFromInt(250)))
	assert.Zero(t, f.cartSize(t, "u1"))
}

func TestPlaceOrder_OnlineDeclinedReleasesReservation(t *testing.T) {
	gateway := &fakeGateway{err: ports.ErrPaymentDeclined}
	f := newFixture(t, WithPaymentGateway(gateway))

	_, err := f.svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{UserID: "u1", Address: "addr", PaymentMode: "ONLINE"})
	require.ErrorIs(t, err, ports.ErrPaymentDeclined)

	assert.Equal(t, 5, f.stock(t, "A"))
	assert.Equal(t, 3, f.stock(t, "B"))
	assert.Equal(t, 2, f.cartSize(t, "u1"))

	orders, err := f.svc.ListOrders(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.PaymentFailed, orders[0].PaymentStatus)
}

func TestCapturePayment_WrapsTransportErrors(t *testing.T) {
	f := newFixture(t, WithPaymentGateway(&fakeGateway{err: errors.New("connection reset")}))

	_, err := f.svc.CapturePayment(context.Background(), ports.CapturePaymentInput{OrderID: "o1", Total: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ports.ErrPaymentUnavailable)
}

func TestReleaseOrder_IsIdempotent(t *testing.T) {
	f := newFixture(t, WithPaymentGateway(&fakeGateway{}))
	order, err := f.svc.ReserveOrder(context.Background(), ports.PlaceOrderInput{UserID: "u1", Address: "addr", PaymentMode: "ONLINE"})
	require.NoError(t, err)
	assert.Equal(t, 3, f.stock(t, "A"))

	_, err = f.svc.ReleaseOrder(context.Background(), order.ID)
	require.NoError(t, err)
	released, err := f.svc.ReleaseOrder(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentFailed, released.PaymentStatus)
	assert.Equal(t, 5, f.stock(t, "A"))
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{UserID: "u1", Address: "addr", PaymentMode: "COD"})
	require.NoError(t, err)

	shipped, err := f.svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{OrderID: order.ID, Status: "SHIPPED"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, shipped.Status)

	again, err := f.svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{OrderID: order.ID, Status: "SHIPPED"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, again.Status)

	_, err = f.svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{OrderID: order.ID, Status: "PLACED"})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{OrderID: order.ID, Status: "CANCELLED"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{OrderID: "missing", Status: "SHIPPED"})
	require.ErrorIs(t, err, ports.ErrNotFound)

	stored, err := f.svc.GetOrder(context.Background(), ports.GetOrderInput{OrderID: order.ID, UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, stored.Status)
}

func TestGetOrder_HidesOtherUsersOrders(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{UserID: "u1", Address: "addr", PaymentMode: "COD"})
	require.NoError(t, err)

	_, err = f.svc.GetOrder(context.Background(), ports.GetOrderInput{OrderID: order.ID, UserID: "intruder"})
	require.ErrorIs(t, err, ports.ErrNotFound)

	got, err := f.svc.GetOrder(context.Background(), ports.GetOrderInput{OrderID: order.ID, UserID: "admin", IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.svc.ListOrders(context.Background(), " ")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestPlaceOrder_IdempotencyKeyReplaysOrder(t *testing.T) {
	f := newFixture(t, WithIdempotencyStore(ordersmemory.NewIdempotencyStore()))
	input := ports.PlaceOrderInput{UserID: "u1", Address: "addr", PaymentMode: "COD", IdempotencyKey: "retry-1"}

	first, err := f.svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)
	second, err := f.svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, f.stock(t, "A"))

	input.Address = "elsewhere"
	_, err = f.svc.PlaceOrder(context.Background(), input)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)

	other := ports.PlaceOrderInput{UserID: "u2", Address: "addr", PaymentMode: "COD", IdempotencyKey: "retry-1"}
	_, err = f.svc.PlaceOrder(context.Background(), other)
	require.ErrorIs(t, err, domain.ErrEmptyCart)
}
