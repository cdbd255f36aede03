package meal

import (
	"context"
	"testing"

	"mealmind/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLibrary(store *memStore) *LibraryService {
	return NewLibraryService(store, FixedClock{At: testNow}, "")
}

func TestAddDishLinksIngredients(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newLibrary(store)

	dish, err := svc.AddDish(ctx, 1, DishInput{Name: " Aloo Gosht ", Ingredients: "aloo, mutton + Onions"})
	require.NoError(t, err)
	assert.Equal(t, "Aloo Gosht", dish.Name)
	assert.Equal(t, 30, dish.TimeMin)
	assert.Equal(t, models.DifficultyEasy, dish.Difficulty)
	assert.Equal(t, models.SpiceMedium, dish.SpiceLevel)

	stored, err := store.FindDishByID(ctx, dish.ID)
	require.NoError(t, err)
	var names []string
	for _, ing := range stored.Ingredients {
		names = append(names, ing.Name)
	}
	assert.ElementsMatch(t, []string{"potato", "mutton", "onion"}, names)

	// 再加一次不會重複建立
	again, err := svc.AddDish(ctx, 1, DishInput{Name: "Aloo Gosht", Ingredients: "potato, tomato"})
	require.NoError(t, err)
	assert.Equal(t, dish.ID, again.ID)
	assert.Equal(t, 1, store.dishCount())

	stored, err = store.FindDishByID(ctx, dish.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Ingredients, 4)
}

func TestAddDishRequiresName(t *testing.T) {
	_, err := newLibrary(newMemStore()).AddDish(context.Background(), 1, DishInput{Name: "  "})
	assert.ErrorIs(t, err, ErrEmptyDishName)
}

func TestRemoveAndList(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newLibrary(store)
	zarda := store.seedDish(1, "Zarda", nil)
	store.seedDish(1, "aloo tikki", nil)
	store.seedDish(1, "Biryani", nil)

	entries, err := svc.List(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "aloo tikki", entries[0].Dish.Name)
	assert.Equal(t, "Zarda", entries[2].Dish.Name)

	require.NoError(t, svc.Remove(ctx, 1, zarda))
	entries, err = svc.List(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = svc.List(ctx, 1, "BIRY")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Biryani", entries[0].Dish.Name)
}

func TestMarkCooked(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newLibrary(store)
	first := store.seedDish(1, "Paya", nil)
	second := store.seedDish(1, "Kofta", nil)

	plan, err := svc.MarkCooked(ctx, 1, first, false)
	require.NoError(t, err)
	assert.Equal(t, DateOf(testNow), plan.Date)
	assert.Equal(t, "Paya", plan.Dish.Name)

	// 同一天改變心意時覆寫
	_, err = svc.MarkCooked(ctx, 1, second, true)
	require.NoError(t, err)

	stored, err := store.FindDayPlan(ctx, 1, testNow)
	require.NoError(t, err)
	assert.Equal(t, second, stored.DishID)
	assert.True(t, stored.IsOverride)

	entries, err := store.ListActive(ctx, 1, nil)
	require.NoError(t, err)
	for _, e := range entries {
		require.NotNil(t, e.LastCookedAt, e.Dish.Name)
		assert.True(t, e.LastCookedAt.Equal(testNow))
	}

	_, err = svc.MarkCooked(ctx, 1, 999, false)
	assert.ErrorIs(t, err, ErrDishNotFound)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dish := store.seedDish(1, "Nihari", nil)
	for i := 0; i < 5; i++ {
		store.addPlan(1, dish, testNow.AddDate(0, 0, -i))
	}

	plans, err := newLibrary(store).History(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, DateOf(testNow), plans[0].Date)
	assert.Equal(t, DateOf(testNow.AddDate(0, 0, -2)), plans[2].Date)
}

func TestEnsureExternalDish(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newLibrary(store)
	existing := store.seedDish(0, "Chicken Handi", nil)

	dish, err := svc.EnsureExternalDish(ctx, 1, models.ExternalRecipe{Name: "Chicken Handi", ImageURL: "https://img/handi.jpg"})
	require.NoError(t, err)
	assert.Equal(t, existing, dish.ID)
	assert.Equal(t, "https://img/handi.jpg", dish.ImageURL)

	stored, err := store.FindDishByID(ctx, existing)
	require.NoError(t, err)
	assert.Equal(t, "https://img/handi.jpg", stored.ImageURL)

	created, err := svc.EnsureExternalDish(ctx, 1, models.ExternalRecipe{Name: "Seekh Kabab"})
	require.NoError(t, err)
	assert.Equal(t, models.PlaceholderImage, created.ImageURL)
	assert.Equal(t, "Pakistani", created.Cuisine)
	assert.Equal(t, 40, created.TimeMin)
	assert.Equal(t, models.DifficultyMedium, created.Difficulty)
	assert.Equal(t, models.SpiceMedium, created.SpiceLevel)

	snapshot, err := svc.EnsureExternalDish(ctx, 1, models.ExternalRecipe{
		Name:       "Butter Chicken",
		Cuisine:    "Indian",
		TimeMin:    55,
		Difficulty: models.DifficultyHard,
		SpiceLevel: models.SpiceLow,
	})
	require.NoError(t, err)
	assert.Equal(t, "Indian", snapshot.Cuisine)
	assert.Equal(t, 55, snapshot.TimeMin)
	assert.Equal(t, models.DifficultyHard, snapshot.Difficulty)
	assert.Equal(t, models.SpiceLow, snapshot.SpiceLevel)

	entries, err := store.ListActive(ctx, 1, nil)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
