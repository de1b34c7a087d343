//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-storefront/internal/platform/migrations"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func seedCatalogAndCart(t *testing.T, db *gorm.DB) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, db.Create(&[]productRecord{
		{ID: "A", Name: "Lamp", Price: decimal.NewFromInt(100), Stock: 5, ImageURLs: pq.StringArray{"lamp.png"}},
		{ID: "B", Name: "Shade", Price: decimal.NewFromInt(50), Stock: 3},
	}).Error)
	require.NoError(t, db.Create(&[]cartItemRecord{
		{UserID: "u1", ProductID: "A", Quantity: 2, CreatedAt: now, UpdatedAt: now},
		{UserID: "u1", ProductID: "B", Quantity: 1, CreatedAt: now.Add(time.Millisecond), UpdatedAt: now},
	}).Error)
}

func stockOf(t *testing.T, db *gorm.DB, id string) int {
	t.Helper()
	var rec productRecord
	require.NoError(t, db.First(&rec, "id = ?", id).Error)
	return rec.Stock
}

func cartCount(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&cartItemRecord{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func checkoutCOD(userID string) ports.CheckoutFunc {
	return func(lines []domain.CartLine) (*domain.Order, error) {
		return domain.NewOrder(userID, "221B Baker Street", domain.PaymentCOD, lines, time.Now().UTC())
	}
}

func TestRepository_CheckoutMaterializesCart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	seedCatalogAndCart(t, db)

	repo := NewRepository(db)
	ctx := context.Background()

	order, err := repo.Checkout(ctx, "u1", "", checkoutCOD("u1"))
	require.NoError(t, err)

	assert.True(t, order.Total.Equal(decimal.NewFromInt(250)))
	require.Len(t, order.Items, 2)
	assert.Equal(t, "A", order.Items[0].ProductID)
	require.NotNil(t, order.Items[0].Product)
	assert.Equal(t, "lamp.png", order.Items[0].Product.ImageURL)
	assert.Equal(t, 3, stockOf(t, db, "A"))
	assert.Equal(t, 2, stockOf(t, db, "B"))
	assert.Zero(t, cartCount(t, db, "u1"))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, order.ID, list[0].ID)
}

func TestRepository_CheckoutRollsBackOnInsufficientStock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	seedCatalogAndCart(t, db)
	require.NoError(t, db.Model(&productRecord{}).Where("id = ?", "B").Update("stock", 0).Error)

	repo := NewRepository(db)
	_, err := repo.Checkout(context.Background(), "u1", "", checkoutCOD("u1"))
	require.ErrorIs(t, err, ports.ErrInsufficientStock)

	assert.Equal(t, 5, stockOf(t, db, "A"))
	assert.Equal(t, int64(2), cartCount(t, db, "u1"))
	var orders int64
	require.NoError(t, db.Model(&orderRecord{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestRepository_CheckoutEmptyCart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	_, err := repo.Checkout(context.Background(), "nobody", "", checkoutCOD("nobody"))
	require.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestRepository_UpdateAndRelease(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	seedCatalogAndCart(t, db)

	repo := NewRepository(db)
	ctx := context.Background()
	order, err := repo.Checkout(ctx, "u1", "", func(lines []domain.CartLine) (*domain.Order, error) {
		return domain.NewOrder("u1", "addr", domain.PaymentOnline, lines, time.Now().UTC())
	})
	require.NoError(t, err)

	_, err = repo.Update(ctx, order.ID, func(o *domain.Order) error {
		return o.AdvanceStatus(domain.StatusShipped, time.Now().UTC())
	})
	require.ErrorIs(t, err, domain.ErrPaymentNotSettled)

	released, err := repo.Release(ctx, order.ID, func(o *domain.Order) error {
		return o.MarkPaymentFailed(time.Now().UTC())
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, released.PaymentStatus)
	assert.Equal(t, domain.StatusPlaced, released.Status)
	assert.Equal(t, 5, stockOf(t, db, "A"))
	assert.Equal(t, 3, stockOf(t, db, "B"))
	assert.Equal(t, int64(2), cartCount(t, db, "u1"))

	paid, err := repo.Checkout(ctx, "u1", "", checkoutCOD("u1"))
	require.NoError(t, err)
	shipped, err := repo.Update(ctx, paid.ID, func(o *domain.Order) error {
		return o.AdvanceStatus(domain.StatusShipped, time.Now().UTC())
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, shipped.Status)

	_, err = repo.Update(ctx, paid.ID, func(o *domain.Order) error {
		return o.AdvanceStatus(domain.StatusPlaced, time.Now().UTC())
	})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = repo.Update(ctx, "missing", func(*domain.Order) error { return nil })
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_ConcurrentCheckoutOfOneCart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	seedCatalogAndCart(t, db)
	repo := NewRepository(db)

	const callers = 6
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Checkout(context.Background(), "u1", "", checkoutCOD("u1"))
		}(i)
	}
	wg.Wait()

	placed := 0
	for _, err := range errs {
		if err == nil {
			placed++
			continue
		}
		require.ErrorIs(t, err, domain.ErrEmptyCart)
	}
	assert.Equal(t, 1, placed)

	orders, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 3, stockOf(t, db, "A"))
	assert.Equal(t, 2, stockOf(t, db, "B"))
}

func TestRepository_CheckoutWithPreassignedID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	seedCatalogAndCart(t, db)
	repo := NewRepository(db)
	ctx := context.Background()
	orderID := "5f0c1a3e-8e7b-4c1d-9a2f-0d6b7c8e9f10"
	build := func(userID string) ports.CheckoutFunc {
		return func(lines []domain.CartLine) (*domain.Order, error) {
			order, err := checkoutCOD(userID)(lines)
			if err != nil {
				return nil, err
			}
			return order, order.AssignID(orderID)
		}
	}

	first, err := repo.Checkout(ctx, "u1", orderID, build("u1"))
	require.NoError(t, err)
	assert.Equal(t, orderID, first.ID)

	again, err := repo.Checkout(ctx, "u1", orderID, build("u1"))
	require.NoError(t, err)
	assert.Equal(t, orderID, again.ID)
	require.Len(t, again.Items, 2)
	assert.Equal(t, 3, stockOf(t, db, "A"))

	_, err = repo.Checkout(ctx, "u2", orderID, build("u2"))
	require.ErrorIs(t, err, ports.ErrOrderIDConflict)
}

func TestRepository_ListByUserNewestFirstAndDeletedProducts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	seedCatalogAndCart(t, db)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&productRecord{ID: "gone", Name: "Discontinued", Price: decimal.NewFromInt(10), Stock: 1}).Error)
	require.NoError(t, db.Create(&cartItemRecord{UserID: "u1", ProductID: "gone", Quantity: 1, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}).Error)
	require.NoError(t, db.Delete(&productRecord{}, "id = ?", "gone").Error)

	base := time.Now().UTC().Truncate(time.Second)
	older, err := repo.Checkout(ctx, "u1", "", func(lines []domain.CartLine) (*domain.Order, error) {
		return domain.NewOrder("u1", "addr", domain.PaymentCOD, lines, base)
	})
	require.NoError(t, err)
	require.Len(t, older.Items, 2, "lines of deleted products are skipped")
	assert.Zero(t, cartCount(t, db, "u1"))

	require.NoError(t, db.Create(&cartItemRecord{UserID: "u1", ProductID: "A", Quantity: 1, CreatedAt: base, UpdatedAt: base}).Error)
	newer, err := repo.Checkout(ctx, "u1", "", func(lines []domain.CartLine) (*domain.Order, error) {
		return domain.NewOrder("u1", "addr", domain.PaymentCOD, lines, base.Add(time.Hour))
	})
	require.NoError(t, err)

	orders, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)
	assert.Equal(t, older.ID, orders[1].ID)
}
