package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Adapters do not migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&categoryRecord{},
		&productRecord{},
		&cartItemRecord{},
		&orderRecord{},
		&orderItemRecord{},
		&idempotencyRecord{},
		&sessionRecord{},
	)
}

// Category schema mirrors the catalog Postgres adapter.
type categoryRecord struct {
	ID        string    `gorm:"primaryKey;column:id;type:varchar(64)"`
	Name      string    `gorm:"column:name;index"`
	Image     string    `gorm:"column:image"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (categoryRecord) TableName() string { return "categories" }

// Product schema mirrors the catalog Postgres adapter.
type productRecord struct {
	ID          string          `gorm:"primaryKey;column:id;type:varchar(64)"`
	Name        string          `gorm:"column:name;index"`
	Description string          `gorm:"column:description"`
	CategoryID  string          `gorm:"column:category_id;index"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Stock       int             `gorm:"column:stock;check:chk_products_stock,stock >= 0"`
	ImageURLs   pq.StringArray  `gorm:"column:image_urls;type:text[]"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// Cart schema mirrors the cart Postgres adapter.
type cartItemRecord struct {
	UserID    string    `gorm:"primaryKey;column:user_id;type:varchar(64)"`
	ProductID string    `gorm:"primaryKey;column:product_id;type:varchar(64)"`
	Quantity  int       `gorm:"column:quantity"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (cartItemRecord) TableName() string { return "cart_items" }

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID               string          `gorm:"primaryKey;column:id;type:varchar(36)"`
	UserID           string          `gorm:"column:user_id;index:idx_orders_user_created"`
	Address          string          `gorm:"column:address"`
	Total            decimal.Decimal `gorm:"column:total;type:numeric(12,2)"`
	PaymentMode      string          `gorm:"column:payment_mode;type:varchar(16)"`
	PaymentStatus    string          `gorm:"column:payment_status;type:varchar(16)"`
	PaymentReference string          `gorm:"column:payment_reference"`
	Status           string          `gorm:"column:status;type:varchar(16);index"`
	CreatedAt        time.Time       `gorm:"column:created_at;index:idx_orders_user_created"`
	UpdatedAt        time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID        string          `gorm:"primaryKey;column:id;type:varchar(36)"`
	OrderID   string          `gorm:"column:order_id;index"`
	Position  int             `gorm:"column:position"`
	ProductID string          `gorm:"column:product_id;index"`
	Quantity  int             `gorm:"column:quantity"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// Checkout idempotency keys mirror the orders idempotency store.
type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderID     string    `gorm:"column:order_id;size:36;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }

// Session schema mirrors the identity session store. Rows are written by the auth service.
type sessionRecord struct {
	Token     string     `gorm:"primaryKey;column:token;size:512"`
	UserID    string     `gorm:"column:user_id;index"`
	Role      string     `gorm:"column:role;type:varchar(16)"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time  `gorm:"column:created_at;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;index"`
}

func (sessionRecord) TableName() string { return "user_sessions" }
