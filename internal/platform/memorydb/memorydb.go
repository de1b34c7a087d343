// Package memorydb holds the in-memory tables shared by the memory adapters of the
// catalog, cart, and orders bounded contexts. Writers run inside Transaction, which
// works on a copy of the tables and only publishes it when the callback succeeds.
package memorydb

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Product mirrors a catalog row.
type Product struct {
	ID          string
	Name        string
	Description string
	CategoryID  string
	Price       decimal.Decimal
	Stock       int
	ImageURLs   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category mirrors a categories row.
type Category struct {
	ID        string
	Name      string
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartLine mirrors a cart_items row.
type CartLine struct {
	UserID    string
	ProductID string
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem mirrors an order_items row.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// Order mirrors an orders row together with its items.
type Order struct {
	ID               string
	UserID           string
	Address          string
	Total            decimal.Decimal
	PaymentMode      string
	PaymentStatus    string
	PaymentReference string
	Status           string
	Items            []OrderItem
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Tables is the mutable view handed to Read and Transaction callbacks.
type Tables struct {
	Categories map[string]Category
	Products   map[string]Product
	CartLines  map[string][]CartLine
	Orders     map[string]Order
}

// DB is a copy-on-write in-memory database.
type DB struct {
	mu     sync.RWMutex
	tables *Tables
	now    func() time.Time
}

// New returns an empty database.
func New() *DB {
	return &DB{tables: newTables(), now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (db *DB) WithClock(now func() time.Time) {
	if now != nil {
		db.now = now
	}
}

// Now returns the current time of the configured clock in UTC.
func (db *DB) Now() time.Time {
	return db.now().UTC()
}

// Read runs fn against the committed tables under a shared lock. fn must not mutate them.
func (db *DB) Read(fn func(t *Tables) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(db.tables)
}

// Transaction runs fn against a private copy of the tables. The copy replaces the
// committed tables only when fn returns nil; otherwise nothing is visible.
func (db *DB) Transaction(fn func(t *Tables) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	working := db.tables.clone()
	if err := fn(working); err != nil {
		return err
	}
	db.tables = working
	return nil
}

// Reset drops every row.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.tables = newTables()
}

// SortedCartLines returns the user's cart lines ordered by insertion time.
func (t *Tables) SortedCartLines(userID string) []CartLine {
	lines := append([]CartLine(nil), t.CartLines[userID]...)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].CreatedAt.Before(lines[j].CreatedAt) })
	return lines
}

func newTables() *Tables {
	return &Tables{
		Categories: map[string]Category{},
		Products:   map[string]Product{},
		CartLines:  map[string][]CartLine{},
		Orders:     map[string]Order{},
	}
}

func (t *Tables) clone() *Tables {
	out := &Tables{
		Categories: make(map[string]Category, len(t.Categories)),
		Products:   make(map[string]Product, len(t.Products)),
		CartLines:  make(map[string][]CartLine, len(t.CartLines)),
		Orders:     make(map[string]Order, len(t.Orders)),
	}
	for id, c := range t.Categories {
		out.Categories[id] = c
	}
	for id, p := range t.Products {
		p.ImageURLs = append([]string(nil), p.ImageURLs...)
		out.Products[id] = p
	}
	for user, lines := range t.CartLines {
		out.CartLines[user] = append([]CartLine(nil), lines...)
	}
	for id, o := range t.Orders {
		o.Items = append([]OrderItem(nil), o.Items...)
		out.Orders[id] = o
	}
	return out
}
