//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "storefront-api"
	ConsumerName = "storefront-web"

	StateCartReady   = "pact-user has a cart with a lamp and a shade"
	StateOrderPlaced = "pact-user has placed an order"
	StateNoOrders    = "no orders exist"
)

const (
	CustomerToken  = "pact-customer-token"
	CustomerID     = "pact-user"
	MissingOrderID = "00000000-0000-0000-0000-000000000000"

	DeliveryAddress = "221B Baker Street"
)

// Catalog fixtures shared by the consumer expectations and provider states.
const (
	LampID     = "lamp"
	LampName   = "Pact Lamp"
	LampPrice  = 100
	LampImage  = "https://example.pact/products/lamp.png"
	ShadeID    = "shade"
	ShadeName  = "Pact Shade"
	ShadePrice = 50
	CartTotal  = "250.00"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront web consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExamplePlaceOrderPayload is the checkout request the consumer sends.
func ExamplePlaceOrderPayload() map[string]any {
	return map[string]any{
		"address":     DeliveryAddress,
		"paymentMode": "COD",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
