package database

import (
	"context"
	"time"

	"mealmind/internal/core/meal"
	"mealmind/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ---- 偏好 ----

// FindPreferences 查詢偏好
func (s *Store) FindPreferences(ctx context.Context, userID uint) (*models.Preferences, error) {
	var prefs models.Preferences
	ok, err := first(s.with(ctx).Where("user_id = ?", userID), &prefs)
	if err != nil || !ok {
		return nil, wrap("find preferences", err)
	}
	return &prefs, nil
}

// CreatePreferences 已存在時不覆寫
func (s *Store) CreatePreferences(ctx context.Context, prefs *models.Preferences) error {
	err := s.with(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(prefs).Error
	return wrap("create preferences", err)
}

// SavePreferences 整筆覆寫
func (s *Store) SavePreferences(ctx context.Context, prefs *models.Preferences) error {
	err := s.with(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, UpdateAll: true}).
		Create(prefs).Error
	return wrap("save preferences", err)
}

// ---- 每週探索 ----

// ListFeedItems 依 sort_rank 排序
func (s *Store) ListFeedItems(ctx context.Context, userID uint, weekStart time.Time) ([]models.DiscoverFeedItem, error) {
	var items []models.DiscoverFeedItem
	err := s.with(ctx).
		Preload("Dish").
		Where("user_id = ? AND week_start = ?", userID, meal.DateOf(weekStart)).
		Order("sort_rank").
		Find(&items).Error
	if err != nil {
		return nil, wrap("list feed", err)
	}
	return items, nil
}

// ReplaceWeek 在同一個交易裡刪除並重建該週清單
func (s *Store) ReplaceWeek(ctx context.Context, userID uint, weekStart time.Time, items []models.DiscoverFeedItem) error {
	week := meal.DateOf(weekStart)
	err := s.with(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND week_start = ?", userID, week).
			Delete(&models.DiscoverFeedItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].ID = 0
			items[i].UserID = userID
			items[i].WeekStart = week
		}
		return tx.Omit(clause.Associations).Create(&items).Error
	})
	return wrap("replace feed week", err)
}

// FindFeedItem 只回傳屬於該使用者的列
func (s *Store) FindFeedItem(ctx context.Context, userID, itemID uint) (*models.DiscoverFeedItem, error) {
	var item models.DiscoverFeedItem
	ok, err := first(s.with(ctx).Where("id = ? AND user_id = ?", itemID, userID), &item)
	if err != nil || !ok {
		return nil, wrap("find feed item", err)
	}
	return &item, nil
}

// LinkFeedItem 連結到正式菜色
func (s *Store) LinkFeedItem(ctx context.Context, itemID, dishID uint) error {
	err := s.with(ctx).Model(&models.DiscoverFeedItem{}).
		Where("id = ?", itemID).
		Update("dish_id", dishID).Error
	return wrap("link feed item", err)
}
