package meal

import (
	"context"
	"fmt"
	"time"

	"mealmind/internal/models"
)

// PoolTier 候選池放寬到哪一層
type PoolTier int

// 候選池依序放寬：冷卻+偏好、只有偏好、整個菜單庫
const (
	TierNone PoolTier = iota
	TierCooldown
	TierFiltered
	TierLibrary
)

func (t PoolTier) String() string {
	switch t {
	case TierCooldown:
		return "cooldown"
	case TierFiltered:
		return "filtered"
	case TierLibrary:
		return "library"
	default:
		return "none"
	}
}

// candidatePool 每日推薦與替代選項共用的候選池
type candidatePool struct {
	library  LibraryStore
	dayPlans DayPlanStore
}

// cooledDishIDs 冷卻區間 [today-cd, today] 內排過的菜色
func (p candidatePool) cooledDishIDs(ctx context.Context, profile *Profile, today time.Time) (map[uint]bool, error) {
	from := today.AddDate(0, 0, -profile.CooldownDays)
	ids, err := p.dayPlans.ListPlannedDishIDs(ctx, profile.UserID, from, today)
	if err != nil {
		return nil, fmt.Errorf("list planned dishes: %w", err)
	}
	cooled := make(map[uint]bool, len(ids))
	for _, id := range ids {
		cooled[id] = true
	}
	return cooled, nil
}

// build 依序嘗試各層，回傳第一個非空的候選池
func (p candidatePool) build(ctx context.Context, profile *Profile, today time.Time, exclude uint) ([]models.LibraryEntry, PoolTier, error) {
	filtered, err := p.library.ListActive(ctx, profile.UserID, profile.Filter.Match)
	if err != nil {
		return nil, TierNone, fmt.Errorf("list filtered library: %w", err)
	}
	cooled, err := p.cooledDishIDs(ctx, profile, today)
	if err != nil {
		return nil, TierNone, err
	}

	if pool := withoutDishes(filtered, func(id uint) bool { return id == exclude || cooled[id] }); len(pool) > 0 {
		return pool, TierCooldown, nil
	}
	if pool := withoutDishes(filtered, func(id uint) bool { return id == exclude }); len(pool) > 0 {
		return pool, TierFiltered, nil
	}

	all, err := p.library.ListActive(ctx, profile.UserID, nil)
	if err != nil {
		return nil, TierNone, fmt.Errorf("list library: %w", err)
	}
	if pool := withoutDishes(all, func(id uint) bool { return id == exclude }); len(pool) > 0 {
		return pool, TierLibrary, nil
	}
	return nil, TierNone, nil
}

func withoutDishes(entries []models.LibraryEntry, drop func(dishID uint) bool) []models.LibraryEntry {
	out := make([]models.LibraryEntry, 0, len(entries))
	for _, e := range entries {
		if drop(e.DishID) {
			continue
		}
		out = append(out, e)
	}
	return out
}
