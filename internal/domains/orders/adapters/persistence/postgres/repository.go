package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

const itemBatchSize = 100

// Repository persists orders in PostgreSQL using GORM. Checkout and release touch the
// products and cart_items tables inside the same transaction.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

type orderRecord struct {
	ID               string            `gorm:"primaryKey;column:id;type:varchar(36)"`
	UserID           string            `gorm:"column:user_id;index:idx_orders_user_created"`
	Address          string            `gorm:"column:address"`
	Total            decimal.Decimal   `gorm:"column:total;type:numeric(12,2)"`
	PaymentMode      string            `gorm:"column:payment_mode;type:varchar(16)"`
	PaymentStatus    string            `gorm:"column:payment_status;type:varchar(16)"`
	PaymentReference string            `gorm:"column:payment_reference"`
	Status           string            `gorm:"column:status;type:varchar(16);index"`
	Items            []orderItemRecord `gorm:"foreignKey:OrderID"`
	CreatedAt        time.Time         `gorm:"column:created_at;index:idx_orders_user_created"`
	UpdatedAt        time.Time         `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID        string          `gorm:"primaryKey;column:id;type:varchar(36)"`
	OrderID   string          `gorm:"column:order_id;index"`
	Position  int             `gorm:"column:position"`
	ProductID string          `gorm:"column:product_id;index"`
	Quantity  int             `gorm:"column:quantity"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Product   *productRecord  `gorm:"foreignKey:ProductID"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// productRecord is the slice of the catalog row an order needs.
type productRecord struct {
	ID        string          `gorm:"primaryKey;column:id"`
	Name      string          `gorm:"column:name"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Stock     int             `gorm:"column:stock"`
	ImageURLs pq.StringArray  `gorm:"column:image_urls;type:text[]"`
}

func (productRecord) TableName() string { return "products" }

type cartItemRecord struct {
	UserID    string    `gorm:"primaryKey;column:user_id"`
	ProductID string    `gorm:"primaryKey;column:product_id"`
	Quantity  int       `gorm:"column:quantity"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (cartItemRecord) TableName() string { return "cart_items" }

type pricedLine struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// Checkout materializes the user's cart into an order in one transaction.
// A preassigned orderID that is already stored short-circuits to that order.
func (r *Repository) Checkout(ctx context.Context, userID, orderID string, fn ports.CheckoutFunc) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []pricedLine
		if err := tx.Table("cart_items").
			Select("cart_items.product_id, cart_items.quantity, products.price").
			Joins("JOIN products ON products.id = cart_items.product_id").
			Where("cart_items.user_id = ?", userID).
			Order("cart_items.created_at, cart_items.product_id").
			Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "cart_items"}}).
			Scan(&rows).Error; err != nil {
			return err
		}
		// Checked after the cart lock so a concurrent attempt with the same ID sees the committed order.
		if orderID != "" {
			var owner orderRecord
			err := tx.Select("id", "user_id").Take(&owner, "id = ?", orderID).Error
			switch {
			case err == nil:
				if owner.UserID != userID {
					return fmt.Errorf("%w: order %s", ports.ErrOrderIDConflict, orderID)
				}
				return nil
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}
		lines := make([]domain.CartLine, 0, len(rows))
		for _, row := range rows {
			lines = append(lines, domain.CartLine{ProductID: row.ProductID, Quantity: row.Quantity, UnitPrice: row.Price})
		}
		order, err := fn(lines)
		if err != nil {
			return err
		}

		record := toRecord(order)
		if err := tx.Omit(clause.Associations).Create(&record).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).CreateInBatches(record.Items, itemBatchSize).Error; err != nil {
			return err
		}
		if err := decrementStock(tx, order.Items, r.now().UTC()); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&cartItemRecord{}).Error; err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

// Update applies fn to the order under a row lock.
func (r *Repository) Update(ctx context.Context, orderID string, fn ports.MutateFunc) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if err := fn(order); err != nil {
			return err
		}
		return saveMutable(tx, order)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

// Release applies fn, then returns the order quantities to stock and to the owner's cart.
func (r *Repository) Release(ctx context.Context, orderID string, fn ports.MutateFunc) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if err := fn(order); err != nil {
			return err
		}
		now := r.now().UTC()
		if err := restock(tx, order.Items, now); err != nil {
			return err
		}
		if err := restoreCart(tx, order, now); err != nil {
			return err
		}
		return saveMutable(tx, order)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

// GetByID fetches an order with its items and product summaries.
func (r *Repository) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := withItems(r.db.WithContext(ctx)).First(&record, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// ListByUser returns the user's orders newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := withItems(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.position") }).
		Preload("Items.Product")
}

func lockOrder(tx *gorm.DB, orderID string) (*domain.Order, error) {
	var record orderRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.position") }).
		First(&record, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func saveMutable(tx *gorm.DB, order *domain.Order) error {
	return tx.Model(&orderRecord{}).Where("id = ?", order.ID).Updates(map[string]any{
		"status":            string(order.Status),
		"payment_status":    string(order.PaymentStatus),
		"payment_reference": order.PaymentReference,
		"updated_at":        order.UpdatedAt,
	}).Error
}

// decrementStock subtracts every item quantity in a single conditional UPDATE. A product
// without enough stock is left out of the update, which surfaces as a short row count.
func decrementStock(tx *gorm.DB, items []domain.Item, now time.Time) error {
	if len(items) == 0 {
		return nil
	}
	delta, deltaArgs, ids := quantityCase(items)
	args := append([]any{}, deltaArgs...)
	args = append(args, now, ids)
	args = append(args, deltaArgs...)
	result := tx.Exec(
		"UPDATE products SET stock = stock - "+delta+", updated_at = ? WHERE id IN ? AND stock >= "+delta,
		args...,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != int64(len(ids)) {
		return fmt.Errorf("%w: %d of %d products available", ports.ErrInsufficientStock, result.RowsAffected, len(ids))
	}
	return nil
}

func restock(tx *gorm.DB, items []domain.Item, now time.Time) error {
	if len(items) == 0 {
		return nil
	}
	delta, deltaArgs, ids := quantityCase(items)
	args := append([]any{}, deltaArgs...)
	args = append(args, now, ids)
	return tx.Exec("UPDATE products SET stock = stock + "+delta+", updated_at = ? WHERE id IN ?", args...).Error
}

func quantityCase(items []domain.Item) (string, []any, []string) {
	var b strings.Builder
	args := make([]any, 0, len(items)*2)
	ids := make([]string, 0, len(items))
	b.WriteString("CASE id")
	for _, item := range items {
		b.WriteString(" WHEN ? THEN ?::integer")
		args = append(args, item.ProductID, item.Quantity)
		ids = append(ids, item.ProductID)
	}
	b.WriteString(" END")
	return b.String(), args, ids
}

func restoreCart(tx *gorm.DB, order *domain.Order, now time.Time) error {
	if len(order.Items) == 0 {
		return nil
	}
	lines := make([]cartItemRecord, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, cartItemRecord{
			UserID:    order.UserID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
			"updated_at": gorm.Expr("EXCLUDED.updated_at"),
		}),
	}).Create(&lines).Error
}

func toRecord(order *domain.Order) orderRecord {
	rec := orderRecord{
		ID:               order.ID,
		UserID:           order.UserID,
		Address:          order.Address,
		Total:            order.Total,
		PaymentMode:      string(order.PaymentMode),
		PaymentStatus:    string(order.PaymentStatus),
		PaymentReference: order.PaymentReference,
		Status:           string(order.Status),
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
		Items:            make([]orderItemRecord, 0, len(order.Items)),
	}
	for i, item := range order.Items {
		rec.Items = append(rec.Items, orderItemRecord{
			ID:        item.ID,
			OrderID:   order.ID,
			Position:  i,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return rec
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:               r.ID,
		UserID:           r.UserID,
		Address:          r.Address,
		Total:            r.Total,
		PaymentMode:      domain.PaymentMode(r.PaymentMode),
		PaymentStatus:    domain.PaymentStatus(r.PaymentStatus),
		PaymentReference: r.PaymentReference,
		Status:           domain.Status(r.Status),
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
		Items:            make([]domain.Item, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		di := domain.Item{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
		if item.Product != nil {
			di.Product = &domain.ProductSummary{ID: item.Product.ID, Name: item.Product.Name, Price: item.Product.Price}
			if len(item.Product.ImageURLs) > 0 {
				di.Product.ImageURL = item.Product.ImageURLs[0]
			}
		}
		order.Items = append(order.Items, di)
	}
	return order
}
