package meal

import (
	"context"
	"time"

	"mealmind/internal/infrastructure/memory"
	"mealmind/internal/models"
)

// memStore 記憶體 Store 加上測試用的建立資料輔助
type memStore struct {
	*memory.Store
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{Store: memory.NewStore()}
}

// ---- 測試輔助 ----

type dishOpt func(*models.Dish)

func withTime(minutes int) dishOpt { return func(d *models.Dish) { d.TimeMin = minutes } }

func withVeg() dishOpt { return func(d *models.Dish) { d.Veg = true } }

func withSpice(level string) dishOpt { return func(d *models.Dish) { d.SpiceLevel = level } }

// seedDish 建立菜色、加入使用者菜單庫並連結食材
func (m *memStore) seedDish(userID uint, name string, ingredients []string, opts ...dishOpt) uint {
	ctx := context.Background()
	d := &models.Dish{Name: name, TimeMin: 30, SpiceLevel: models.SpiceMedium, Difficulty: models.DifficultyEasy}
	for _, opt := range opts {
		opt(d)
	}
	_ = m.CreateDish(ctx, d)
	if userID != 0 {
		_ = m.UpsertMembership(ctx, userID, d.ID)
	}
	for _, name := range ingredients {
		ing, _ := m.EnsureIngredient(ctx, name)
		_ = m.LinkIngredient(ctx, d.ID, ing.ID)
	}
	return d.ID
}

func (m *memStore) ingredientID(name string) uint {
	found, _ := m.FindIngredientsByNames(context.Background(), []string{name})
	if len(found) == 0 {
		return 0
	}
	return found[0].ID
}

func (m *memStore) setLastCooked(userID, dishID uint, at time.Time) {
	_ = m.TouchLastCooked(context.Background(), userID, dishID, at)
}

func (m *memStore) addPlan(userID, dishID uint, date time.Time) {
	_ = m.UpsertDayPlan(context.Background(), &models.DayPlanEntry{UserID: userID, DishID: dishID, Date: DateOf(date)})
}

func (m *memStore) dishCount() int {
	return m.DishCount()
}

// fakeSource 測試用外部來源
type fakeSource struct {
	search map[string][]models.ExternalRecipe
	areas  map[string][]models.ExternalRecipe
	calls  int
}

func (f *fakeSource) Search(_ context.Context, query string) []models.ExternalRecipe {
	f.calls++
	return f.search[query]
}

func (f *fakeSource) AreaList(_ context.Context, area string, limit int) []models.ExternalRecipe {
	f.calls++
	out := f.areas[area]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// 測試用固定日期：2024-05-15 星期三
var testNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func testProfile(userID uint, cooldown int) *Profile {
	prefs := models.DefaultPreferences(userID)
	return &Profile{
		UserID:       userID,
		Preferences:  prefs,
		CooldownDays: cooldown,
		Filter:       NewPredicate(),
	}
}
