package models

import (
	"time"
)

// LibraryEntry 使用者菜單庫中的一道菜
type LibraryEntry struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;uniqueIndex:idx_library_user_dish,priority:1" json:"user_id"`
	DishID       uint       `gorm:"not null;uniqueIndex:idx_library_user_dish,priority:2" json:"dish_id"`
	Dish         Dish       `gorm:"foreignKey:DishID" json:"dish"`
	Active       bool       `gorm:"not null" json:"active"`
	LastCookedAt *time.Time `json:"last_cooked_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName 指定資料表名稱
func (LibraryEntry) TableName() string {
	return "user_library"
}

// DayPlanEntry 某使用者某一天的菜色
type DayPlanEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_day_plan_user_date,priority:1" json:"user_id"`
	Date       time.Time `gorm:"type:date;not null;uniqueIndex:idx_day_plan_user_date,priority:2" json:"date"`
	DishID     uint      `gorm:"not null" json:"dish_id"`
	Dish       Dish      `gorm:"foreignKey:DishID" json:"dish"`
	IsOverride bool      `gorm:"not null" json:"is_override"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName 指定資料表名稱
func (DayPlanEntry) TableName() string {
	return "day_plan"
}
