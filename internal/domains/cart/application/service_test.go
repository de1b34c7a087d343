package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartmemory "github.com/Apurer/go-gin-storefront/internal/domains/cart/adapters/memory"
	"github.com/Apurer/go-gin-storefront/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/cart/ports"
	"github.com/Apurer/go-gin-storefront/internal/platform/memorydb"
)

func newCartService(t *testing.T) *Service {
	t.Helper()
	db := memorydb.New()
	require.NoError(t, db.Transaction(func(tb *memorydb.Tables) error {
		tb.Products["A"] = memorydb.Product{ID: "A", Name: "Lamp", Price: decimal.NewFromInt(100), Stock: 5, ImageURLs: []string{"lamp.png"}}
		tb.Products["B"] = memorydb.Product{ID: "B", Name: "Shade", Price: decimal.NewFromInt(50), Stock: 3}
		return nil
	}))
	return NewService(cartmemory.NewRepository(db))
}

func TestAddItem_MergesQuantities(t *testing.T) {
	svc := newCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, ports.AddItemInput{UserID: "u1", ProductID: "A", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, ports.AddItemInput{UserID: "u1", ProductID: "B", Quantity: 1})
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, ports.AddItemInput{UserID: "u1", ProductID: "A", Quantity: 1})
	require.NoError(t, err)

	require.Len(t, cart.Lines, 2)
	assert.Equal(t, "A", cart.Lines[0].ProductID)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, "lamp.png", cart.Lines[0].Product.ImageURL)
	assert.True(t, cart.Total().Equal(decimal.NewFromInt(250)))
}

func TestAddItem_Rejections(t *testing.T) {
	svc := newCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, ports.AddItemInput{ProductID: "A", Quantity: 1})
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.AddItem(ctx, ports.AddItemInput{UserID: "u1", ProductID: "A", Quantity: 0})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = svc.AddItem(ctx, ports.AddItemInput{UserID: "u1", ProductID: "ghost", Quantity: 1})
	require.ErrorIs(t, err, ports.ErrProductNotFound)
}

func TestRemoveItem(t *testing.T) {
	svc := newCartService(t)
	ctx := context.Background()
	_, err := svc.AddItem(ctx, ports.AddItemInput{UserID: "u1", ProductID: "A", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(ctx, "u1", "A"))
	require.ErrorIs(t, svc.RemoveItem(ctx, "u1", "A"), ports.ErrLineNotFound)

	cart, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}
