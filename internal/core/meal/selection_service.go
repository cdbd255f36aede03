package meal

import (
	"context"
	"fmt"
	"sort"
	"time"

	"mealmind/internal/models"
	"mealmind/internal/pkg/common"

	"go.uber.org/zap"
)

// DailyPick 今日推薦
type DailyPick struct {
	Dish      *models.Dish         `json:"dish"`
	Plan      *models.DayPlanEntry `json:"plan,omitempty"`
	Persisted bool                 `json:"persisted"`
	Tier      string               `json:"tier,omitempty"`
}

// SelectionService 每日推薦與替代選項
type SelectionService struct {
	pool     candidatePool
	dishes   DishStore
	dayPlans DayPlanStore
	feed     FeedStore
	clock    Clock
	rng      RandSource
}

// NewSelectionService 創建推薦服務
func NewSelectionService(store Store, clock Clock, rng RandSource) *SelectionService {
	return &SelectionService{
		pool:     candidatePool{library: store, dayPlans: store},
		dishes:   store,
		dayPlans: store,
		feed:     store,
		clock:    clock,
		rng:      rng,
	}
}

// staleness 距上次烹調的分數，從未煮過大於任何有限值
type staleness struct {
	never bool
	value float64
}

func (a staleness) greater(b staleness) bool {
	if a.never != b.never {
		return a.never
	}
	return a.value > b.value
}

// SelectDaily 今日已有紀錄時直接回傳，否則挑選並（自動建議開啟時）寫入
func (s *SelectionService) SelectDaily(ctx context.Context, profile *Profile) (*DailyPick, error) {
	today := DateOf(s.clock.Now())

	plan, err := s.dayPlans.FindDayPlan(ctx, profile.UserID, today)
	if err != nil {
		return nil, fmt.Errorf("find day plan: %w", err)
	}
	if plan != nil {
		return s.pickFromPlan(ctx, plan)
	}

	entry, tier, err := s.PickCandidate(ctx, profile)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		common.LogDebug("沒有可推薦的菜色", zap.Uint("user_id", profile.UserID))
		return nil, nil
	}

	pick := &DailyPick{Dish: &entry.Dish, Tier: tier.String()}
	if profile.Preferences == nil || !profile.Preferences.AutoSuggestions {
		return pick, nil
	}

	plan = &models.DayPlanEntry{
		UserID: profile.UserID,
		Date:   today,
		DishID: entry.DishID,
	}
	if err := s.dayPlans.CreateDayPlanIfAbsent(ctx, plan); err != nil {
		return nil, fmt.Errorf("create day plan: %w", err)
	}

	// 併發請求時以先寫入者為準
	stored, err := s.dayPlans.FindDayPlan(ctx, profile.UserID, today)
	if err != nil {
		return nil, fmt.Errorf("reload day plan: %w", err)
	}
	if stored == nil {
		return pick, nil
	}
	persisted, err := s.pickFromPlan(ctx, stored)
	if err != nil {
		return nil, err
	}
	if persisted.Dish != nil && persisted.Dish.ID == entry.DishID {
		persisted.Tier = pick.Tier
	}
	return persisted, nil
}

func (s *SelectionService) pickFromPlan(ctx context.Context, plan *models.DayPlanEntry) (*DailyPick, error) {
	dish := &plan.Dish
	if dish.ID == 0 {
		found, err := s.dishes.FindDishByID(ctx, plan.DishID)
		if err != nil {
			return nil, fmt.Errorf("find planned dish: %w", err)
		}
		if found == nil {
			return nil, nil
		}
		dish = found
	}
	return &DailyPick{Dish: dish, Plan: plan, Persisted: true}, nil
}

// PickCandidate 從候選池中挑最久沒煮的菜色，隨機抖動只用來打破同分
func (s *SelectionService) PickCandidate(ctx context.Context, profile *Profile) (*models.LibraryEntry, PoolTier, error) {
	today := DateOf(s.clock.Now())
	pool, tier, err := s.pool.build(ctx, profile, today, 0)
	if err != nil {
		return nil, TierNone, err
	}
	if len(pool) == 0 {
		return nil, TierNone, nil
	}

	best := -1
	var bestScore staleness
	for i := range pool {
		score := s.score(pool[i], today)
		if best < 0 || score.greater(bestScore) {
			best, bestScore = i, score
		}
	}
	return &pool[best], tier, nil
}

func (s *SelectionService) score(e models.LibraryEntry, today time.Time) staleness {
	jitter := s.rng.Float64()
	if e.LastCookedAt == nil {
		return staleness{never: true, value: jitter}
	}
	return staleness{value: float64(DaysBetween(*e.LastCookedAt, today)) + jitter}
}

// AltPicks 替代選項，菜單庫不足時以本週尚未轉換的外部探索項目補足
func (s *SelectionService) AltPicks(ctx context.Context, profile *Profile, excludeDishID uint, limit int) ([]Candidate, error) {
	if limit <= 0 {
		return nil, nil
	}
	today := DateOf(s.clock.Now())
	pool, _, err := s.pool.build(ctx, profile, today, excludeDishID)
	if err != nil {
		return nil, err
	}

	sortByStaleness(pool, s.rng)

	top := pool
	if len(top) > 2*limit {
		top = top[:2*limit]
	}
	s.rng.Shuffle(len(top), func(i, j int) { top[i], top[j] = top[j], top[i] })
	if len(top) > limit {
		top = top[:limit]
	}

	picks := make([]Candidate, 0, limit)
	seen := make(map[string]bool, limit)
	for i := range top {
		picks = append(picks, LocalCandidate{Dish: &top[i].Dish})
		seen[common.NameKey(top[i].Dish.Name)] = true
	}
	if len(picks) >= limit {
		return picks, nil
	}

	items, err := s.feed.ListFeedItems(ctx, profile.UserID, WeekStart(today))
	if err != nil {
		return nil, fmt.Errorf("list discover feed: %w", err)
	}
	for _, item := range items {
		if len(picks) >= limit {
			break
		}
		if item.Source != models.SourceWeb || item.Materialized() {
			continue
		}
		key := common.NameKey(item.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		picks = append(picks, ExternalCandidate{Recipe: recipeFromFeed(item), FeedItemID: item.ID})
	}
	return picks, nil
}

// sortByStaleness 從未煮過優先，其次最久沒煮，再來最新加入；剩餘同分隨機
func sortByStaleness(pool []models.LibraryEntry, rng RandSource) {
	tie := make(map[uint]float64, len(pool))
	for _, e := range pool {
		tie[e.ID] = rng.Float64()
	}
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if (a.LastCookedAt == nil) != (b.LastCookedAt == nil) {
			return a.LastCookedAt == nil
		}
		if a.LastCookedAt != nil && !a.LastCookedAt.Equal(*b.LastCookedAt) {
			return a.LastCookedAt.Before(*b.LastCookedAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return tie[a.ID] < tie[b.ID]
	})
}
