package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status enumerates fulfillment progression. The order of statusSequence is the
// only allowed direction of travel.
type Status string

const (
	StatusPlaced    Status = "PLACED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
)

var statusSequence = []Status{StatusPlaced, StatusShipped, StatusDelivered}

// PaymentMode enumerates how the customer pays.
type PaymentMode string

const (
	PaymentCOD    PaymentMode = "COD"
	PaymentOnline PaymentMode = "ONLINE"
)

// PaymentStatus tracks settlement of the order total.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

var (
	ErrInvalidPaymentMode = errors.New("invalid payment mode")
	ErrEmptyAddress       = errors.New("invalid address")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidTotal       = errors.New("invalid total")
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
	ErrInvalidTransition  = errors.New("cannot downgrade status")
	ErrPaymentSettled     = errors.New("payment already settled")
	ErrPaymentNotSettled  = errors.New("payment not settled")
	ErrInvalidOrderID     = errors.New("invalid order id")
)

// CartLine is a product/quantity pair awaiting checkout, priced at the product's current price.
type CartLine struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// ProductSummary is the read-side view of the product an item refers to.
type ProductSummary struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	ImageURL string
}

// Item is a line of an order. Price is the unit price captured at checkout.
type Item struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	Price     decimal.Decimal
	Product   *ProductSummary
}

// Subtotal returns price × quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the checkout aggregate. Only Status and payment fields change after creation.
type Order struct {
	ID               string
	UserID           string
	Address          string
	Total            decimal.Decimal
	PaymentMode      PaymentMode
	PaymentStatus    PaymentStatus
	PaymentReference string
	Status           Status
	Items            []Item
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ParsePaymentMode accepts only the enumerated modes, case-sensitively.
func ParsePaymentMode(raw string) (PaymentMode, error) {
	switch mode := PaymentMode(raw); mode {
	case PaymentCOD, PaymentOnline:
		return mode, nil
	default:
		return "", ErrInvalidPaymentMode
	}
}

// ParseStatus accepts only the enumerated statuses, case-sensitively.
func ParseStatus(raw string) (Status, error) {
	status := Status(raw)
	if status.rank() < 0 {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// NormalizeAddress trims the delivery address and rejects blanks.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", ErrEmptyAddress
	}
	return address, nil
}

// CartTotal sums unit price × quantity over the lines.
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// NewOrder materializes an order from cart lines. COD orders are considered paid on
// placement; ONLINE orders start pending until the gateway captures the total.
func NewOrder(userID, address string, mode PaymentMode, lines []CartLine, now time.Time) (*Order, error) {
	if _, err := ParsePaymentMode(string(mode)); err != nil {
		return nil, err
	}
	address, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}
	total := CartTotal(lines)
	if !total.IsPositive() {
		return nil, ErrInvalidTotal
	}

	order := &Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		Address:       address,
		Total:         total,
		PaymentMode:   mode,
		PaymentStatus: PaymentPaid,
		Status:        StatusPlaced,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if mode == PaymentOnline {
		order.PaymentStatus = PaymentPending
	}
	order.Items = make([]Item, 0, len(lines))
	for _, line := range lines {
		order.Items = append(order.Items, Item{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice,
		})
	}
	return order, nil
}

// AdvanceStatus moves the order forward along PLACED → SHIPPED → DELIVERED.
// Re-applying the current status is accepted. Nothing ships before the total is paid.
func (o *Order) AdvanceStatus(next Status, now time.Time) error {
	if next.rank() < 0 {
		return ErrInvalidStatus
	}
	if next.rank() < o.Status.rank() {
		return ErrInvalidTransition
	}
	if next.rank() > StatusPlaced.rank() && o.PaymentStatus != PaymentPaid {
		return ErrPaymentNotSettled
	}
	o.Status = next
	o.UpdatedAt = now
	return nil
}

// AssignID replaces the generated order ID with a caller-chosen one, so a retried
// checkout can find the order it already created.
func (o *Order) AssignID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return ErrInvalidOrderID
	}
	o.ID = parsed.String()
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	return nil
}

// MarkPaid records a successful capture.
func (o *Order) MarkPaid(reference string, now time.Time) error {
	if o.PaymentStatus != PaymentPending {
		if o.PaymentStatus == PaymentPaid && o.PaymentReference == reference {
			return nil
		}
		return ErrPaymentSettled
	}
	o.PaymentStatus = PaymentPaid
	o.PaymentReference = reference
	o.UpdatedAt = now
	return nil
}

// MarkPaymentFailed records a failed capture. Only pending orders can fail, so a
// release is applied at most once.
func (o *Order) MarkPaymentFailed(now time.Time) error {
	if o.PaymentStatus != PaymentPending {
		return ErrPaymentSettled
	}
	o.PaymentStatus = PaymentFailed
	o.UpdatedAt = now
	return nil
}

// Statuses returns the fixed status sequence.
func Statuses() []Status {
	return append([]Status(nil), statusSequence...)
}

func (s Status) rank() int {
	for i, candidate := range statusSequence {
		if candidate == s {
			return i
		}
	}
	return -1
}
