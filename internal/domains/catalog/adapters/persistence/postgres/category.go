package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-storefront/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-storefront/internal/shared/projection"
)

type categoryRecord struct {
	ID        string    `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name"`
	Image     string    `gorm:"column:image"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (categoryRecord) TableName() string { return "categories" }

// UpsertCategory inserts or replaces a category, keeping its creation time.
func (r *Repository) UpsertCategory(ctx context.Context, category *domain.Category) (*ports.CategoryProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if category == nil {
		return nil, errors.New("category is nil")
	}
	record := categoryRecord{ID: category.ID, Name: category.Name, Image: category.Image}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":       record.Name,
				"image":      record.Image,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetCategory(ctx, record.ID)
}

func (r *Repository) GetCategory(ctx context.Context, id string) (*ports.CategoryProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record categoryRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrCategoryNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]*ports.CategoryProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []categoryRecord
	if err := r.db.WithContext(ctx).Order("name, id").Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]*ports.CategoryProjection, 0, len(records))
	for i := range records {
		out = append(out, records[i].toProjection())
	}
	return out, nil
}

func (r categoryRecord) toProjection() *ports.CategoryProjection {
	return &ports.CategoryProjection{
		Entity:   &domain.Category{ID: r.ID, Name: r.Name, Image: r.Image},
		Metadata: projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}
