package entity

import (
	"time"

	"github.com/lib/pq"
)

// Category partitions the feed into tabs. "all" is not stored on records; it means no partition.
type Category string

const (
	CategoryAll       Category = "all"
	CategoryEarnings  Category = "earnings"
	CategoryMarket    Category = "market"
	CategoryDividends Category = "dividends"
)

// Categories lists the stored categories in tab order.
var Categories = []Category{CategoryEarnings, CategoryMarket, CategoryDividends}

// NewsItem is a single curated news record. Records are authored once and never mutated.
type NewsItem struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	Ticker      string         `gorm:"uniqueIndex;not null" json:"ticker"`
	Company     string         `gorm:"not null" json:"company"`
	Headline    string         `gorm:"not null" json:"headline"`
	Source      string         `json:"source"`
	SourceIcon  string         `json:"sourceIcon"`
	URL         string         `json:"url"`
	PublishedAt time.Time      `gorm:"not null" json:"publishedAt"`
	Category    Category       `gorm:"not null" json:"category"`
	IsHalal     bool           `gorm:"not null" json:"isHalal"`
	Price       float64        `gorm:"not null" json:"price"`
	PriceChange float64        `gorm:"not null" json:"priceChange"`
	Summary     pq.StringArray `gorm:"type:text[]" json:"summary"`
}

// TableName specifies the table name for the NewsItem model.
func (NewsItem) TableName() string {
	return "news_items"
}

// Clone returns a copy that shares no slices with n.
func (n NewsItem) Clone() NewsItem {
	c := n
	if n.Summary != nil {
		c.Summary = append(pq.StringArray(nil), n.Summary...)
	}
	return c
}
