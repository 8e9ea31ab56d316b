package repository

import (
	"context"
	"fmt"

	"financial-news-ai/internal/entity"

	"gorm.io/gorm"
)

// NewPostgresNewsRepository reads the catalog from the news_items table.
// The table is seeded by migration and is read-only for this service.
func NewPostgresNewsRepository(db *gorm.DB) NewsRepository {
	return &postgresNewsRepository{db: db}
}

type postgresNewsRepository struct {
	db *gorm.DB
}

// FetchNewsCatalog loads every record in catalog order (published_at DESC, id ASC).
func (r *postgresNewsRepository) FetchNewsCatalog(ctx context.Context) ([]entity.NewsItem, error) {
	var items []entity.NewsItem
	err := r.db.WithContext(ctx).
		Order("published_at DESC").
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news catalog: %w", err)
	}
	return items, nil
}
