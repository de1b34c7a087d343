//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/go-gin-storefront/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type orderPayload struct {
	ID            string `json:"id"`
	Address       string `json:"address"`
	Total         string `json:"total"`
	PaymentMode   string `json:"paymentMode"`
	PaymentStatus string `json:"paymentStatus"`
	Status        string `json:"status"`
}

type placedPayload struct {
	Message string       `json:"message"`
	Order   orderPayload `json:"order"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status int
	title  string
	detail string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func (e apiError) Status() int {
	return e.status
}

func TestStorefrontWebContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	orderMatcher := matchers.Map{
		"id":            matchers.Regex("3f1c9a52-6c1e-4f7a-9d55-2b8e4c0b7a10", "^[0-9a-f-]{36}$"),
		"address":       matchers.Like(pacttest.DeliveryAddress),
		"total":         matchers.Like(pacttest.CartTotal),
		"paymentMode":   matchers.Term("COD", "COD|ONLINE"),
		"paymentStatus": matchers.Term("PAID", "PENDING|PAID|FAILED"),
		"status":        matchers.Term("PLACED", "PLACED|SHIPPED|DELIVERED"),
		"items": matchers.EachLike(matchers.Map{
			"productId": matchers.Like(pacttest.LampID),
			"quantity":  matchers.Like(2),
			"price":     matchers.Like("100.00"),
		}, 1),
	}
	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	bearer := matchers.S("Bearer " + pacttest.CustomerToken)

	pact.AddInteraction().
		Given(pacttest.StateCartReady).
		UponReceiving("a COD checkout of the cart").
		WithRequest("POST", "/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("Authorization", bearer)
			b.JSONBody(pacttest.ExamplePlaceOrderPayload())
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"message": matchers.S("Order Placed Successfully"),
				"order":   orderMatcher,
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderPlaced).
		UponReceiving("a request for the caller's orders").
		WithRequest("GET", "/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", bearer)
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(orderMatcher, 1))
		})

	pact.AddInteraction().
		Given(pacttest.StateNoOrders).
		UponReceiving("a request for a missing order").
		WithRequest("GET", "/orders/"+pacttest.MissingOrderID, func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", bearer)
		}).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateNoOrders).
		UponReceiving("an anonymous request for orders").
		WithRequest("GET", "/orders").
		WillRespondWith(http.StatusUnauthorized, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/unauthorized"),
				"status": matchers.Like(http.StatusUnauthorized),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newStorefrontClient(config, pacttest.CustomerToken)
		anonymous := newStorefrontClient(config, "")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		placed, err := client.PlaceOrder(ctx, pacttest.DeliveryAddress, "COD")
		if err != nil {
			return fmt.Errorf("place order: %w", err)
		}
		if placed.Order.ID == "" || placed.Order.Total != pacttest.CartTotal {
			return fmt.Errorf("unexpected order %+v", placed.Order)
		}

		orders, err := client.ListOrders(ctx)
		if err != nil {
			return fmt.Errorf("list orders: %w", err)
		}
		if len(orders) == 0 {
			return fmt.Errorf("expected at least one order")
		}

		if _, err := client.GetOrder(ctx, pacttest.MissingOrderID); err == nil {
			return fmt.Errorf("expected 404 for order %s", pacttest.MissingOrderID)
		} else if apiErr, ok := err.(apiError); ok && apiErr.Status() != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %d", apiErr.Status())
		}

		if _, err := anonymous.ListOrders(ctx); err == nil {
			return fmt.Errorf("expected 401 without a token")
		} else if apiErr, ok := err.(apiError); ok && apiErr.Status() != http.StatusUnauthorized {
			return fmt.Errorf("expected 401, got %d", apiErr.Status())
		}
		return nil
	})
	require.NoError(t, err)
}

type storefrontClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func newStorefrontClient(config pactconsumer.MockServerConfig, token string) *storefrontClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	return &storefrontClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		token:      token,
		httpClient: client,
	}
}

func (c *storefrontClient) PlaceOrder(ctx context.Context, address, mode string) (*placedPayload, error) {
	body, err := json.Marshal(map[string]string{"address": address, "paymentMode": mode})
	if err != nil {
		return nil, err
	}
	var payload placedPayload
	if err := c.do(ctx, http.MethodPost, "/orders", body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *storefrontClient) ListOrders(ctx context.Context) ([]orderPayload, error) {
	var payload []orderPayload
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *storefrontClient) GetOrder(ctx context.Context, id string) (*orderPayload, error) {
	var payload orderPayload
	if err := c.do(ctx, http.MethodGet, "/orders/"+id, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *storefrontClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(res)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{
		status: status,
		title:  problem.Title,
		detail: problem.Detail,
	}
}
