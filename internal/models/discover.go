package models

import (
	"time"
)

// 探索清單來源
const (
	SourceLibrary = "library"
	SourceWeb     = "web"
)

// DiscoverFeedItem 每週探索清單的一列
type DiscoverFeedItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index:idx_feed_user_week,priority:1" json:"user_id"`
	WeekStart  time.Time `gorm:"type:date;not null;index:idx_feed_user_week,priority:2" json:"week_start"`
	Source     string    `gorm:"size:10;not null" json:"source"`
	SortRank   int       `gorm:"not null" json:"sort_rank"`
	DishID     *uint     `json:"dish_id"`
	Dish       *Dish     `gorm:"foreignKey:DishID" json:"dish,omitempty"`
	Name       string    `gorm:"size:200" json:"name"`
	ImageURL   string    `gorm:"column:image_url;size:500" json:"image_url"`
	SourceURL  string    `gorm:"column:source_url;size:500" json:"source_url"`
	TimeMin    int       `gorm:"column:time_min" json:"time_min"`
	Cuisine    string    `gorm:"size:80" json:"cuisine"`
	Difficulty string    `gorm:"size:20" json:"difficulty"`
	Veg        bool      `json:"veg"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName 指定資料表名稱
func (DiscoverFeedItem) TableName() string {
	return "discover_feed"
}

// Materialized 是否已轉成正式菜色
func (f *DiscoverFeedItem) Materialized() bool {
	return f.DishID != nil && *f.DishID != 0
}

// ExternalRecipe 外部食譜來源的標準化結果
type ExternalRecipe struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Cuisine    string `json:"cuisine"`
	TimeMin    int    `json:"time_min"`
	Difficulty string `json:"difficulty"`
	Veg        bool   `json:"veg"`
	SpiceLevel string `json:"spice_level"`
	ImageURL   string `json:"image_url"`
	SourceURL  string `json:"source_url"`
}

// Snapshot 把外部食譜轉成探索清單的快照欄位
func (r ExternalRecipe) Snapshot() DiscoverFeedItem {
	return DiscoverFeedItem{
		Source:     SourceWeb,
		Name:       r.Name,
		ImageURL:   r.ImageURL,
		SourceURL:  r.SourceURL,
		TimeMin:    r.TimeMin,
		Cuisine:    r.Cuisine,
		Difficulty: r.Difficulty,
		Veg:        r.Veg,
	}
}
