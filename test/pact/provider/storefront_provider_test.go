//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	pacttest "github.com/Apurer/go-gin-storefront/test/pact"

	storefrontserver "github.com/Apurer/go-gin-storefront/go"
	cartmemory "github.com/Apurer/go-gin-storefront/internal/domains/cart/adapters/memory"
	cartapp "github.com/Apurer/go-gin-storefront/internal/domains/cart/application"
	catalogmemory "github.com/Apurer/go-gin-storefront/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/Apurer/go-gin-storefront/internal/domains/catalog/application"
	identitymemory "github.com/Apurer/go-gin-storefront/internal/domains/identity/adapters/memory"
	identityapp "github.com/Apurer/go-gin-storefront/internal/domains/identity/application"
	ordersmemory "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/observability"
	ordersapp "github.com/Apurer/go-gin-storefront/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-storefront/internal/platform/memorydb"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestStorefrontProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateCartReady: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.db.Reset()
			if setup {
				app.seedCart(t)
			}
			return nil, nil
		},
		pacttest.StateOrderPlaced: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.db.Reset()
			if setup {
				app.seedCart(t)
				app.placeOrder(t)
			}
			return nil, nil
		},
		pacttest.StateNoOrders: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.db.Reset()
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.db.Reset()
			return nil
		},
	})
	require.NoError(t, err)
}

type contractProviderApp struct {
	db     *memorydb.DB
	orders ordersports.Service
	server *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()

	db := memorydb.New()
	sessions := identitymemory.NewSessionStore()
	_, err := identityapp.SeedStaticTokens(context.Background(), sessions, pacttest.CustomerToken+":"+pacttest.CustomerID)
	require.NoError(t, err)

	orderService := ordersobs.New(ordersapp.NewService(ordersmemory.NewRepository(db)))
	handlers := storefrontserver.ApiHandleFunctions{
		OrdersAPI:     storefrontserver.NewOrdersAPI(orderService),
		CartAPI:       storefrontserver.NewCartAPI(cartapp.NewService(cartmemory.NewRepository(db))),
		CatalogAPI:    storefrontserver.NewCatalogAPI(catalogapp.NewService(catalogmemory.NewRepository(db))),
		Authenticator: identityapp.NewService(sessions),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router = storefrontserver.NewRouterWithGinEngine(router, handlers)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &contractProviderApp{db: db, orders: orderService, server: server}
}

func (a *contractProviderApp) seedCart(t testing.TB) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, a.db.Transaction(func(tb *memorydb.Tables) error {
		tb.Products[pacttest.LampID] = memorydb.Product{
			ID: pacttest.LampID, Name: pacttest.LampName, Price: decimal.NewFromInt(pacttest.LampPrice),
			Stock: 10, ImageURLs: []string{pacttest.LampImage}, CreatedAt: now, UpdatedAt: now,
		}
		tb.Products[pacttest.ShadeID] = memorydb.Product{
			ID: pacttest.ShadeID, Name: pacttest.ShadeName, Price: decimal.NewFromInt(pacttest.ShadePrice),
			Stock: 10, CreatedAt: now, UpdatedAt: now,
		}
		tb.CartLines[pacttest.CustomerID] = []memorydb.CartLine{
			{UserID: pacttest.CustomerID, ProductID: pacttest.LampID, Quantity: 2, CreatedAt: now, UpdatedAt: now},
			{UserID: pacttest.CustomerID, ProductID: pacttest.ShadeID, Quantity: 1, CreatedAt: now.Add(time.Millisecond), UpdatedAt: now},
		}
		return nil
	}))
}

func (a *contractProviderApp) placeOrder(t testing.TB) {
	t.Helper()
	_, err := a.orders.PlaceOrder(context.Background(), ordersports.PlaceOrderInput{
		UserID:      pacttest.CustomerID,
		Address:     pacttest.DeliveryAddress,
		PaymentMode: "COD",
	})
	require.NoError(t, err)
}
