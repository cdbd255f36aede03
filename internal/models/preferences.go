package models

import (
	"time"
)

// 飲食類型
const (
	DietNone  = "None"
	DietVeg   = "Veg"
	DietVegan = "Vegan"
)

// Preferences 使用者偏好設定（每位使用者一筆）
type Preferences struct {
	UserID           uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Diet             string    `gorm:"size:20;not null" json:"diet"`
	SpiceLevel       string    `gorm:"column:spice_level;size:20;not null" json:"spice_level"`
	TimeMax          int       `gorm:"column:time_max;not null" json:"time_max"`
	CooldownDays     int       `gorm:"column:cooldown_days;not null" json:"cooldown_days"`
	NotifyTime       string    `gorm:"column:notify_time;size:5;not null" json:"notify_time"`
	Allergies        string    `gorm:"type:text" json:"allergies"`
	Avoid            string    `gorm:"type:text" json:"avoid"`
	DailySuggestions bool      `gorm:"not null" json:"daily_suggestions"`
	WeeklyDiscovery  bool      `gorm:"not null" json:"weekly_discovery"`
	AutoSuggestions  bool      `gorm:"not null" json:"auto_suggestions"`
	Theme            string    `gorm:"size:10;not null" json:"theme"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DefaultPreferences 建立預設偏好
func DefaultPreferences(userID uint) *Preferences {
	return &Preferences{
		UserID:           userID,
		Diet:             DietNone,
		SpiceLevel:       SpiceMedium,
		TimeMax:          60,
		NotifyTime:       "19:00",
		DailySuggestions: true,
		WeeklyDiscovery:  true,
		AutoSuggestions:  true,
		Theme:            "light",
	}
}
