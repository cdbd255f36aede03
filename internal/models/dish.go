package models

import (
	"time"
)

// 辣度等級
const (
	SpiceLow    = "Low"
	SpiceMedium = "Medium"
	SpiceHigh   = "High"
	SpiceSpicy  = "Spicy"
)

// 難度等級
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// PlaceholderImage 沒有圖片時使用的預設圖
const PlaceholderImage = "/static/img/placeholder.jpg"

// Dish 菜色
type Dish struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:200;not null;uniqueIndex" json:"name"`
	Cuisine     string       `gorm:"size:80" json:"cuisine"`
	TimeMin     int          `gorm:"column:time_min;not null;default:30" json:"time_min"`
	Difficulty  string       `gorm:"size:20;not null;default:'Easy'" json:"difficulty"`
	Veg         bool         `gorm:"not null" json:"veg"`
	SpiceLevel  string       `gorm:"column:spice_level;size:20" json:"spice_level"`
	ImageURL    string       `gorm:"column:image_url;size:500" json:"image_url"`
	Ingredients []Ingredient `gorm:"many2many:dish_ingredients;" json:"ingredients,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// IngredientIDs 回傳菜色連結的食材 ID
func (d *Dish) IngredientIDs() []uint {
	ids := make([]uint, 0, len(d.Ingredients))
	for _, ing := range d.Ingredients {
		ids = append(ids, ing.ID)
	}
	return ids
}

// Ingredient 食材，名稱為正規化後的小寫字串
type Ingredient struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:120;not null;uniqueIndex" json:"name"`
}

// DishIngredient 菜色與食材的關聯
type DishIngredient struct {
	DishID       uint `gorm:"primaryKey"`
	IngredientID uint `gorm:"primaryKey"`
}

// TableName 指定關聯表名稱
func (DishIngredient) TableName() string {
	return "dish_ingredients"
}
