package meal

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"mealmind/internal/models"
	"mealmind/internal/pkg/common"

	"go.uber.org/zap"
)

// 外部食譜轉成菜色時的預設值
const (
	defaultExternalTime    = 40
	defaultExternalCuisine = "Pakistani"
	defaultHistoryLimit    = 60
)

// DishInput 新增菜色的輸入
type DishInput struct {
	Name        string `json:"name"`
	Ingredients string `json:"ingredients"`
	TimeMin     int    `json:"time_min"`
	Veg         bool   `json:"veg"`
	Difficulty  string `json:"difficulty"`
	Cuisine     string `json:"cuisine"`
	SpiceLevel  string `json:"spice_level"`
	ImageURL    string `json:"image_url"`
}

// LibraryService 菜單庫與每日紀錄
type LibraryService struct {
	dishes         DishStore
	library        LibraryStore
	dayPlans       DayPlanStore
	clock          Clock
	defaultCuisine string
}

// NewLibraryService 創建菜單庫服務
func NewLibraryService(store Store, clock Clock, defaultCuisine string) *LibraryService {
	if defaultCuisine == "" {
		defaultCuisine = defaultExternalCuisine
	}
	return &LibraryService{
		dishes:         store,
		library:        store,
		dayPlans:       store,
		clock:          clock,
		defaultCuisine: defaultCuisine,
	}
}

// AddDish 找到或建立菜色、加入菜單庫並連結食材
func (s *LibraryService) AddDish(ctx context.Context, userID uint, in DishInput) (*models.Dish, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrEmptyDishName
	}

	dish, err := s.dishes.FindDishByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find dish: %w", err)
	}
	if dish == nil {
		dish = &models.Dish{
			Name:       name,
			Cuisine:    strings.TrimSpace(in.Cuisine),
			TimeMin:    in.TimeMin,
			Difficulty: in.Difficulty,
			Veg:        in.Veg,
			SpiceLevel: in.SpiceLevel,
			ImageURL:   strings.TrimSpace(in.ImageURL),
		}
		if dish.TimeMin <= 0 {
			dish.TimeMin = 30
		}
		if dish.Difficulty == "" {
			dish.Difficulty = models.DifficultyEasy
		}
		if dish.SpiceLevel == "" {
			dish.SpiceLevel = models.SpiceMedium
		}
		if err := s.dishes.CreateDish(ctx, dish); err != nil {
			return nil, fmt.Errorf("create dish: %w", err)
		}
		common.LogInfo("新增菜色", zap.Uint("dish_id", dish.ID), zap.String("name", dish.Name))
	}

	if err := s.library.UpsertMembership(ctx, userID, dish.ID); err != nil {
		return nil, fmt.Errorf("add to library: %w", err)
	}

	for _, term := range IngredientTerms(in.Ingredients) {
		ing, err := s.dishes.EnsureIngredient(ctx, CanonicalName(term))
		if err != nil {
			return nil, fmt.Errorf("ensure ingredient %q: %w", term, err)
		}
		if err := s.dishes.LinkIngredient(ctx, dish.ID, ing.ID); err != nil {
			return nil, fmt.Errorf("link ingredient %q: %w", term, err)
		}
	}
	return dish, nil
}

// Remove 從菜單庫移除（只停用，不刪除）
func (s *LibraryService) Remove(ctx context.Context, userID, dishID uint) error {
	if err := s.library.Deactivate(ctx, userID, dishID); err != nil {
		return fmt.Errorf("deactivate library entry: %w", err)
	}
	return nil
}

// List 依菜名排序的啟用項目，q 不分大小寫比對菜名
func (s *LibraryService) List(ctx context.Context, userID uint, q string) ([]models.LibraryEntry, error) {
	needle := strings.ToLower(strings.TrimSpace(q))
	var keep func(*models.Dish) bool
	if needle != "" {
		keep = func(d *models.Dish) bool {
			return strings.Contains(strings.ToLower(d.Name), needle)
		}
	}
	entries, err := s.library.ListActive(ctx, userID, keep)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Dish.Name) < strings.ToLower(entries[j].Dish.Name)
	})
	return entries, nil
}

// MarkCooked 寫入今天的紀錄並更新最後烹調時間
func (s *LibraryService) MarkCooked(ctx context.Context, userID, dishID uint, override bool) (*models.DayPlanEntry, error) {
	dish, err := s.dishes.FindDishByID(ctx, dishID)
	if err != nil {
		return nil, fmt.Errorf("find dish: %w", err)
	}
	if dish == nil {
		return nil, ErrDishNotFound
	}

	now := s.clock.Now()
	plan := &models.DayPlanEntry{
		UserID:     userID,
		Date:       DateOf(now),
		DishID:     dish.ID,
		IsOverride: override,
	}
	if err := s.dayPlans.UpsertDayPlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("upsert day plan: %w", err)
	}
	if err := s.library.TouchLastCooked(ctx, userID, dish.ID, now); err != nil {
		return nil, fmt.Errorf("touch last cooked: %w", err)
	}
	plan.Dish = *dish

	common.LogInfo("標記已烹調",
		zap.Uint("user_id", userID),
		zap.Uint("dish_id", dish.ID),
		zap.Bool("override", override),
	)
	return plan, nil
}

// History 最近的每日紀錄，新到舊
func (s *LibraryService) History(ctx context.Context, userID uint, limit int) ([]models.DayPlanEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	plans, err := s.dayPlans.ListRecentPlans(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent plans: %w", err)
	}
	return plans, nil
}

// EnsureExternalDish 外部食譜轉成菜色並加入菜單庫，同名菜色只補圖片
func (s *LibraryService) EnsureExternalDish(ctx context.Context, userID uint, rec models.ExternalRecipe) (*models.Dish, error) {
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		return nil, ErrEmptyDishName
	}

	dish, err := s.dishes.FindDishByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find dish: %w", err)
	}

	if dish != nil {
		if err := s.library.UpsertMembership(ctx, userID, dish.ID); err != nil {
			return nil, fmt.Errorf("add to library: %w", err)
		}
		if dish.ImageURL == "" && rec.ImageURL != "" {
			if err := s.dishes.UpdateDishImageIfEmpty(ctx, dish.ID, rec.ImageURL); err != nil {
				return nil, fmt.Errorf("update dish image: %w", err)
			}
			dish.ImageURL = rec.ImageURL
		}
		return dish, nil
	}

	// 快照有值就沿用，缺的欄位才補預設
	dish = &models.Dish{
		Name:       name,
		Cuisine:    orDefault(strings.TrimSpace(rec.Cuisine), s.defaultCuisine),
		TimeMin:    rec.TimeMin,
		Difficulty: orDefault(rec.Difficulty, models.DifficultyMedium),
		Veg:        rec.Veg,
		SpiceLevel: orDefault(rec.SpiceLevel, models.SpiceMedium),
		ImageURL:   orDefault(rec.ImageURL, models.PlaceholderImage),
	}
	if dish.TimeMin <= 0 {
		dish.TimeMin = defaultExternalTime
	}
	if err := s.dishes.CreateDish(ctx, dish); err != nil {
		return nil, fmt.Errorf("create dish: %w", err)
	}
	if err := s.library.UpsertMembership(ctx, userID, dish.ID); err != nil {
		return nil, fmt.Errorf("add to library: %w", err)
	}
	common.LogInfo("外部食譜加入菜單庫",
		zap.Uint("user_id", userID),
		zap.Uint("dish_id", dish.ID),
		zap.String("name", dish.Name),
	)
	return dish, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
