//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"mealmind/internal/core/meal"
	"mealmind/internal/infrastructure/config"
	"mealmind/internal/models"
	"mealmind/internal/testinfra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := testinfra.StartPostgres(t)

	db, err := Open(config.DatabaseConfig{URL: dsn, MaxOpenConns: 4}, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, RunMigrations(db))
	// 第二次執行不應報錯
	require.NoError(t, RunMigrations(db))
	return NewStore(db)
}

func createDish(t *testing.T, s *Store, name string, ingredients ...string) *models.Dish {
	t.Helper()
	ctx := context.Background()
	dish := &models.Dish{Name: name, TimeMin: 30, Difficulty: models.DifficultyEasy, SpiceLevel: models.SpiceMedium}
	require.NoError(t, s.CreateDish(ctx, dish))
	for _, n := range ingredients {
		ing, err := s.EnsureIngredient(ctx, n)
		require.NoError(t, err)
		require.NoError(t, s.LinkIngredient(ctx, dish.ID, ing.ID))
		require.NoError(t, s.LinkIngredient(ctx, dish.ID, ing.ID))
	}
	return dish
}

func TestStoreDishesAndIngredients(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	karahi := createDish(t, s, "Chicken Karahi", "chicken", "tomato")
	createDish(t, s, "Karahi", "mutton")
	createDish(t, s, "Dal 100% Tadka", "dal")

	found, err := s.FindDishByID(ctx, karahi.ID)
	require.NoError(t, err)
	assert.Len(t, found.Ingredients, 2)

	missing, err := s.FindDishByName(ctx, "Nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	hits, err := s.SearchDishesByName(ctx, "KARAHI", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "Karahi", hits[0].Name)

	pct, err := s.SearchDishesByName(ctx, "100%", 0)
	require.NoError(t, err)
	assert.Len(t, pct, 1)

	tomato, err := s.EnsureIngredient(ctx, "tomato")
	require.NoError(t, err)
	byIng, err := s.ListDishesByIngredients(ctx, []uint{tomato.ID})
	require.NoError(t, err)
	require.Len(t, byIng, 1)
	assert.Equal(t, karahi.ID, byIng[0].ID)

	all, err := s.ListIngredients(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	require.NoError(t, s.UpdateDishImageIfEmpty(ctx, karahi.ID, "https://img/a.jpg"))
	require.NoError(t, s.UpdateDishImageIfEmpty(ctx, karahi.ID, "https://img/b.jpg"))
	found, err = s.FindDishByID(ctx, karahi.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://img/a.jpg", found.ImageURL)
}

func TestStoreLibraryAndPlans(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	dish := createDish(t, s, "Nihari", "beef")
	other := createDish(t, s, "Haleem", "wheat")

	require.NoError(t, s.UpsertMembership(ctx, 1, dish.ID))
	require.NoError(t, s.UpsertMembership(ctx, 1, other.ID))
	require.NoError(t, s.Deactivate(ctx, 1, other.ID))
	require.NoError(t, s.UpsertMembership(ctx, 1, dish.ID))

	entries, err := s.ListActive(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Nihari", entries[0].Dish.Name)
	assert.Len(t, entries[0].Dish.Ingredients, 1)

	none, err := s.ListActive(ctx, 1, func(d *models.Dish) bool { return d.Veg })
	require.NoError(t, err)
	assert.Empty(t, none)

	today := time.Date(2024, 5, 15, 18, 30, 0, 0, time.UTC)
	require.NoError(t, s.CreateDayPlanIfAbsent(ctx, &models.DayPlanEntry{UserID: 1, Date: today, DishID: dish.ID}))
	require.NoError(t, s.CreateDayPlanIfAbsent(ctx, &models.DayPlanEntry{UserID: 1, Date: today, DishID: other.ID}))

	plan, err := s.FindDayPlan(ctx, 1, today)
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, dish.ID, plan.DishID)
	assert.Equal(t, meal.DateOf(today), plan.Date.UTC())

	require.NoError(t, s.UpsertDayPlan(ctx, &models.DayPlanEntry{UserID: 1, Date: today, DishID: other.ID, IsOverride: true}))
	plan, err = s.FindDayPlan(ctx, 1, today)
	require.NoError(t, err)
	assert.Equal(t, other.ID, plan.DishID)
	assert.True(t, plan.IsOverride)

	require.NoError(t, s.UpsertDayPlan(ctx, &models.DayPlanEntry{UserID: 1, Date: today.AddDate(0, 0, -3), DishID: dish.ID}))
	ids, err := s.ListPlannedDishIDs(ctx, 1, today.AddDate(0, 0, -4), today)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{other.ID, dish.ID}, ids)

	recent, err := s.ListRecentPlans(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Haleem", recent[0].Dish.Name)

	require.NoError(t, s.TouchLastCooked(ctx, 1, dish.ID, today))
	entries, err = s.ListActive(ctx, 1, nil)
	require.NoError(t, err)
	require.NotNil(t, entries[0].LastCookedAt)
	assert.True(t, entries[0].LastCookedAt.Equal(today))
}

func TestStorePreferences(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	prefs := models.DefaultPreferences(7)
	require.NoError(t, s.CreatePreferences(ctx, prefs))

	changed := models.DefaultPreferences(7)
	changed.Diet = models.DietVeg
	require.NoError(t, s.CreatePreferences(ctx, changed))

	got, err := s.FindPreferences(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.DietNone, got.Diet)

	changed.WeeklyDiscovery = false
	require.NoError(t, s.SavePreferences(ctx, changed))
	got, err = s.FindPreferences(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.DietVeg, got.Diet)
	assert.False(t, got.WeeklyDiscovery)

	// 零值也要整筆寫入，time_max=0 代表不限時間
	changed.TimeMax = 0
	changed.CooldownDays = 0
	require.NoError(t, s.SavePreferences(ctx, changed))
	got, err = s.FindPreferences(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TimeMax)
	assert.Equal(t, 0, got.CooldownDays)

	fresh := models.DefaultPreferences(9)
	fresh.TimeMax = 0
	require.NoError(t, s.SavePreferences(ctx, fresh))
	got, err = s.FindPreferences(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TimeMax)

	none, err := s.FindPreferences(ctx, 8)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestStoreFeed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	dish := createDish(t, s, "Pulao", "rice")
	week := meal.WeekStart(time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC))

	items := []models.DiscoverFeedItem{
		{Source: models.SourceLibrary, SortRank: 0, DishID: &dish.ID, Name: dish.Name},
		{Source: models.SourceWeb, SortRank: 1, Name: "Web Biryani", Cuisine: "Indian"},
	}
	require.NoError(t, s.ReplaceWeek(ctx, 1, week, items))
	require.NoError(t, s.ReplaceWeek(ctx, 1, week, items))

	got, err := s.ListFeedItems(ctx, 1, week)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Dish)
	assert.Equal(t, "Pulao", got[0].Dish.Name)
	assert.False(t, got[1].Materialized())

	other, err := s.FindFeedItem(ctx, 2, got[1].ID)
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, s.LinkFeedItem(ctx, got[1].ID, dish.ID))
	linked, err := s.FindFeedItem(ctx, 1, got[1].ID)
	require.NoError(t, err)
	assert.True(t, linked.Materialized())
}

func TestEngineAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	engine := meal.NewEngine(s, nil, meal.Options{
		Clock: meal.FixedClock{At: time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)},
		Rand:  meal.NewRand(3),
	})

	for _, name := range []string{"Aloo Gosht", "Chana Masala", "Bhindi"} {
		_, err := engine.Library.AddDish(ctx, 1, meal.DishInput{Name: name, Ingredients: "onion, tomato"})
		require.NoError(t, err)
	}

	profile, err := engine.Preferences.Profile(ctx, 1)
	require.NoError(t, err)

	first, err := engine.Selection.SelectDaily(ctx, profile)
	require.NoError(t, err)
	require.NotNil(t, first)
	second, err := engine.Selection.SelectDaily(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, first.Dish.ID, second.Dish.ID)

	res, err := engine.OverrideSearch(ctx, profile, "tomato")
	require.NoError(t, err)
	assert.Len(t, res.Results, 3)
}
