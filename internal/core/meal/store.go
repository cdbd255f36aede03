package meal

import (
	"context"
	"time"

	"mealmind/internal/models"
)

// DishStore 菜色與食材資料存取
//
// 查無資料時 Find* 回傳 (nil, nil)，由呼叫端決定是否建立。
// 回傳的菜色需預載 Ingredients，過濾規則依賴完整食材清單。
type DishStore interface {
	FindDishByID(ctx context.Context, id uint) (*models.Dish, error)
	FindDishByName(ctx context.Context, name string) (*models.Dish, error)
	// SearchDishesByName 名稱包含 text 的菜色，完全相符優先，其次名稱較短者；limit <= 0 表示不限
	SearchDishesByName(ctx context.Context, text string, limit int) ([]models.Dish, error)
	// ListDishesByIngredients 連結到任一指定食材的菜色
	ListDishesByIngredients(ctx context.Context, ingredientIDs []uint) ([]models.Dish, error)
	CreateDish(ctx context.Context, dish *models.Dish) error
	UpdateDishImageIfEmpty(ctx context.Context, dishID uint, imageURL string) error

	FindIngredientsByNames(ctx context.Context, names []string) ([]models.Ingredient, error)
	ListIngredients(ctx context.Context) ([]models.Ingredient, error)
	EnsureIngredient(ctx context.Context, name string) (*models.Ingredient, error)
	// LinkIngredient 重複連結為 no-op
	LinkIngredient(ctx context.Context, dishID, ingredientID uint) error
}

// LibraryStore 使用者菜單庫
type LibraryStore interface {
	// ListActive 列出啟用中的項目（預載 Dish），keep 為 nil 時不過濾
	ListActive(ctx context.Context, userID uint, keep func(*models.Dish) bool) ([]models.LibraryEntry, error)
	// UpsertMembership 加入菜單庫，已存在則重新啟用
	UpsertMembership(ctx context.Context, userID, dishID uint) error
	Deactivate(ctx context.Context, userID, dishID uint) error
	TouchLastCooked(ctx context.Context, userID, dishID uint, at time.Time) error
}

// DayPlanStore 每日菜色紀錄，(user, date) 唯一
type DayPlanStore interface {
	FindDayPlan(ctx context.Context, userID uint, date time.Time) (*models.DayPlanEntry, error)
	// CreateDayPlanIfAbsent 僅在當天尚無紀錄時寫入，衝突不視為錯誤
	CreateDayPlanIfAbsent(ctx context.Context, entry *models.DayPlanEntry) error
	// UpsertDayPlan 依 (user, date) 新增或覆寫
	UpsertDayPlan(ctx context.Context, entry *models.DayPlanEntry) error
	// ListPlannedDishIDs 日期區間 [from, to] 內出現過的菜色
	ListPlannedDishIDs(ctx context.Context, userID uint, from, to time.Time) ([]uint, error)
	ListRecentPlans(ctx context.Context, userID uint, limit int) ([]models.DayPlanEntry, error)
}

// PreferenceStore 使用者偏好
type PreferenceStore interface {
	FindPreferences(ctx context.Context, userID uint) (*models.Preferences, error)
	// CreatePreferences 已存在時不覆寫
	CreatePreferences(ctx context.Context, prefs *models.Preferences) error
	SavePreferences(ctx context.Context, prefs *models.Preferences) error
}

// FeedStore 每週探索清單
type FeedStore interface {
	// ListFeedItems 依 sort_rank 排序，library 列預載 Dish
	ListFeedItems(ctx context.Context, userID uint, weekStart time.Time) ([]models.DiscoverFeedItem, error)
	// ReplaceWeek 刪除該週所有列後整批寫入
	ReplaceWeek(ctx context.Context, userID uint, weekStart time.Time, items []models.DiscoverFeedItem) error
	FindFeedItem(ctx context.Context, userID, itemID uint) (*models.DiscoverFeedItem, error)
	LinkFeedItem(ctx context.Context, itemID, dishID uint) error
}

// Store 引擎需要的所有資料存取
type Store interface {
	DishStore
	LibraryStore
	DayPlanStore
	PreferenceStore
	FeedStore
}

// RecipeSource 外部食譜來源，失敗時回傳空清單而非錯誤
type RecipeSource interface {
	Search(ctx context.Context, query string) []models.ExternalRecipe
	AreaList(ctx context.Context, area string, limit int) []models.ExternalRecipe
}

// noopSource 未設定外部來源時使用
type noopSource struct{}

func (noopSource) Search(context.Context, string) []models.ExternalRecipe { return nil }

func (noopSource) AreaList(context.Context, string, int) []models.ExternalRecipe { return nil }
