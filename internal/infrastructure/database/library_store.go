package database

import (
	"context"
	"time"

	"mealmind/internal/core/meal"
	"mealmind/internal/models"

	"gorm.io/gorm/clause"
)

// ---- 菜單庫 ----

// ListActive 啟用中的項目，keep 在取回後套用
func (s *Store) ListActive(ctx context.Context, userID uint, keep func(*models.Dish) bool) ([]models.LibraryEntry, error) {
	var entries []models.LibraryEntry
	err := s.with(ctx).
		Preload("Dish.Ingredients").
		Where("user_id = ? AND active = ?", userID, true).
		Order("id").
		Find(&entries).Error
	if err != nil {
		return nil, wrap("list library", err)
	}
	if keep == nil {
		return entries, nil
	}

	out := entries[:0]
	for _, e := range entries {
		if keep(&e.Dish) {
			out = append(out, e)
		}
	}
	return out, nil
}

// UpsertMembership 加入菜單庫，已存在則重新啟用
func (s *Store) UpsertMembership(ctx context.Context, userID, dishID uint) error {
	entry := models.LibraryEntry{UserID: userID, DishID: dishID, Active: true}
	err := s.with(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "dish_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"active": true}),
		}).
		Create(&entry).Error
	return wrap("upsert library entry", err)
}

// Deactivate 移出菜單庫
func (s *Store) Deactivate(ctx context.Context, userID, dishID uint) error {
	err := s.with(ctx).Model(&models.LibraryEntry{}).
		Where("user_id = ? AND dish_id = ?", userID, dishID).
		Update("active", false).Error
	return wrap("deactivate library entry", err)
}

// TouchLastCooked 更新最後烹調時間
func (s *Store) TouchLastCooked(ctx context.Context, userID, dishID uint, at time.Time) error {
	err := s.with(ctx).Model(&models.LibraryEntry{}).
		Where("user_id = ? AND dish_id = ?", userID, dishID).
		Update("last_cooked_at", at).Error
	return wrap("touch last cooked", err)
}

// ---- 每日菜色 ----

// FindDayPlan 依 (user, date) 查詢
func (s *Store) FindDayPlan(ctx context.Context, userID uint, date time.Time) (*models.DayPlanEntry, error) {
	var plan models.DayPlanEntry
	ok, err := first(s.with(ctx).
		Preload("Dish.Ingredients").
		Where("user_id = ? AND date = ?", userID, meal.DateOf(date)), &plan)
	if err != nil || !ok {
		return nil, wrap("find day plan", err)
	}
	return &plan, nil
}

// CreateDayPlanIfAbsent 當天已有紀錄時不動
func (s *Store) CreateDayPlanIfAbsent(ctx context.Context, entry *models.DayPlanEntry) error {
	entry.Date = meal.DateOf(entry.Date)
	err := s.with(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoNothing: true,
		}).
		Create(entry).Error
	return wrap("create day plan", err)
}

// UpsertDayPlan 依 (user, date) 新增或覆寫
func (s *Store) UpsertDayPlan(ctx context.Context, entry *models.DayPlanEntry) error {
	entry.Date = meal.DateOf(entry.Date)
	err := s.with(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"dish_id", "is_override", "updated_at"}),
		}).
		Create(entry).Error
	return wrap("upsert day plan", err)
}

// ListPlannedDishIDs 日期區間 [from, to] 內出現過的菜色
func (s *Store) ListPlannedDishIDs(ctx context.Context, userID uint, from, to time.Time) ([]uint, error) {
	var ids []uint
	err := s.with(ctx).Model(&models.DayPlanEntry{}).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, meal.DateOf(from), meal.DateOf(to)).
		Pluck("dish_id", &ids).Error
	if err != nil {
		return nil, wrap("list planned dishes", err)
	}
	return ids, nil
}

// ListRecentPlans 最近的紀錄，新的在前
func (s *Store) ListRecentPlans(ctx context.Context, userID uint, limit int) ([]models.DayPlanEntry, error) {
	tx := s.with(ctx).Preload("Dish").Where("user_id = ?", userID).Order("date DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var plans []models.DayPlanEntry
	if err := tx.Find(&plans).Error; err != nil {
		return nil, wrap("list recent plans", err)
	}
	return plans, nil
}
