package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-storefront/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/cart/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists cart lines in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type cartItemRecord struct {
	UserID    string    `gorm:"primaryKey;column:user_id"`
	ProductID string    `gorm:"primaryKey;column:product_id"`
	Quantity  int       `gorm:"column:quantity"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (cartItemRecord) TableName() string { return "cart_items" }

type lineRow struct {
	ProductID string
	Quantity  int
	Name      string
	Price     decimal.Decimal
	Stock     int
	ImageURLs pq.StringArray
}

// AddLine merges the quantity into the user's line for the product.
func (r *Repository) AddLine(ctx context.Context, userID, productID string, quantity int) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table("products").Where("id = ?", productID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ports.ErrProductNotFound
		}
		now := time.Now().UTC()
		rec := cartItemRecord{UserID: userID, ProductID: productID, Quantity: quantity, CreatedAt: now, UpdatedAt: now}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
				"updated_at": gorm.Expr("EXCLUDED.updated_at"),
			}),
		}).Create(&rec).Error
	})
}

// RemoveLine deletes the user's line for the product.
func (r *Repository) RemoveLine(ctx context.Context, userID, productID string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&cartItemRecord{}, "user_id = ? AND product_id = ?", userID, productID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrLineNotFound
	}
	return nil
}

// Get loads the cart joined with current product data.
func (r *Repository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var rows []lineRow
	if err := r.db.WithContext(ctx).Table("cart_items").
		Select("cart_items.product_id, cart_items.quantity, products.name, products.price, products.stock, products.image_urls").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.created_at, cart_items.product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	cart := &domain.Cart{UserID: userID, Lines: make([]domain.Line, 0, len(rows))}
	for _, row := range rows {
		view := domain.ProductView{Name: row.Name, Price: row.Price, Stock: row.Stock}
		if len(row.ImageURLs) > 0 {
			view.ImageURL = row.ImageURLs[0]
		}
		cart.Lines = append(cart.Lines, domain.Line{ProductID: row.ProductID, Quantity: row.Quantity, Product: view})
	}
	return cart, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres cart repository not configured")
	}
	return nil
}
