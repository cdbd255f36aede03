package meal

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mealmind/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webRecipes(prefix string, n int) []models.ExternalRecipe {
	out := make([]models.ExternalRecipe, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.ExternalRecipe{
			ExternalID: fmt.Sprintf("%s-%d", prefix, i),
			Name:       fmt.Sprintf("%s Dish %d", prefix, i),
			Cuisine:    prefix,
			TimeMin:    35 + i,
			Difficulty: models.DifficultyHard,
			ImageURL:   fmt.Sprintf("https://img.example/%s-%d.jpg", prefix, i),
			SourceURL:  fmt.Sprintf("https://www.themealdb.com/meal/%s-%d", prefix, i),
		})
	}
	return out
}

func newDiscovery(store *memStore, source RecipeSource, seed int64) *DiscoveryService {
	clock := FixedClock{At: testNow}
	library := NewLibraryService(store, clock, "Pakistani")
	return NewDiscoveryService(store, source, library, clock, NewRand(seed), DefaultDiscoveryOptions())
}

func TestWeekStart(t *testing.T) {
	monday := time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, WeekStart(testNow))
	assert.Equal(t, monday, WeekStart(monday.Add(3*time.Hour)))
	assert.Equal(t, monday, WeekStart(time.Date(2024, 5, 19, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, monday.AddDate(0, 0, 7), WeekStart(time.Date(2024, 5, 20, 1, 0, 0, 0, time.UTC)))
}

func TestEnsureWeeklyFeedMixesSources(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	for i := 0; i < 6; i++ {
		store.seedDish(1, fmt.Sprintf("Library %d", i), nil)
	}
	cooled := store.seedDish(1, "Cooled", nil)
	store.addPlan(1, cooled, testNow.AddDate(0, 0, -1))

	source := &fakeSource{areas: map[string][]models.ExternalRecipe{
		"Pakistani": append([]models.ExternalRecipe{{Name: "library 2", Cuisine: "Pakistani"}}, webRecipes("Pakistani", 2)...),
		"Indian":    webRecipes("Indian", 5),
	}}
	svc := newDiscovery(store, source, 1)
	profile := testProfile(1, 4)

	require.NoError(t, svc.EnsureWeeklyFeed(ctx, profile, 0))
	items, err := store.ListFeedItems(ctx, 1, WeekStart(testNow))
	require.NoError(t, err)
	require.Len(t, items, 8)

	var lib, web int
	names := make(map[string]bool)
	for i, item := range items {
		assert.Equal(t, i, item.SortRank)
		assert.False(t, names[item.Name], "duplicate %s", item.Name)
		names[item.Name] = true
		switch item.Source {
		case models.SourceLibrary:
			lib++
			require.NotNil(t, item.DishID)
			assert.NotEqual(t, cooled, *item.DishID)
		case models.SourceWeb:
			web++
			assert.Nil(t, item.DishID)
			assert.NotEqual(t, "library 2", item.Name)
		}
	}
	assert.Equal(t, 4, lib)
	assert.Equal(t, 4, web)
}

func TestEnsureWeeklyFeedIsNoopOnceTargetMet(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	for i := 0; i < 6; i++ {
		store.seedDish(1, fmt.Sprintf("Library %d", i), nil)
	}
	source := &fakeSource{areas: map[string][]models.ExternalRecipe{"Pakistani": webRecipes("Pakistani", 10)}}
	profile := testProfile(1, 4)

	require.NoError(t, newDiscovery(store, source, 1).EnsureWeeklyFeed(ctx, profile, 0))
	first, err := store.ListFeedItems(ctx, 1, WeekStart(testNow))
	require.NoError(t, err)
	calls := source.calls

	require.NoError(t, newDiscovery(store, source, 99).EnsureWeeklyFeed(ctx, profile, 0))
	second, err := store.ListFeedItems(ctx, 1, WeekStart(testNow))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, calls, source.calls)
}

func TestEnsureWeeklyFeedHonorsLargerTarget(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	for i := 0; i < 6; i++ {
		store.seedDish(1, fmt.Sprintf("Library %d", i), nil)
	}
	source := &fakeSource{areas: map[string][]models.ExternalRecipe{"Pakistani": webRecipes("Pakistani", 20)}}
	profile := testProfile(1, 4)

	require.NoError(t, newDiscovery(store, source, 1).EnsureWeeklyFeed(ctx, profile, 12))
	first, err := store.ListFeedItems(ctx, 1, WeekStart(testNow))
	require.NoError(t, err)
	require.Len(t, first, 12)
	calls := source.calls

	require.NoError(t, newDiscovery(store, source, 99).EnsureWeeklyFeed(ctx, profile, 12))
	second, err := store.ListFeedItems(ctx, 1, WeekStart(testNow))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, calls, source.calls)
}

func TestEnsureWeeklyFeedWithoutExternalSource(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedDish(1, "Only", nil)

	svc := newDiscovery(store, nil, 1)
	require.NoError(t, svc.EnsureWeeklyFeed(ctx, testProfile(1, 4), 0))
	items, err := store.ListFeedItems(ctx, 1, WeekStart(testNow))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.SourceLibrary, items[0].Source)
}

func TestFeedRespectsWeeklyDiscoveryToggle(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedDish(1, "Only", nil)
	profile := testProfile(1, 4)
	profile.Preferences.WeeklyDiscovery = false

	items, err := newDiscovery(store, nil, 1).Feed(ctx, profile)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMaterializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	source := &fakeSource{areas: map[string][]models.ExternalRecipe{"Pakistani": webRecipes("Pakistani", 4)}}
	svc := newDiscovery(store, source, 1)
	require.NoError(t, svc.EnsureWeeklyFeed(ctx, testProfile(1, 4), 0))

	items, err := store.ListFeedItems(ctx, 1, WeekStart(testNow))
	require.NoError(t, err)
	require.NotEmpty(t, items)
	target := items[0]
	require.Equal(t, models.SourceWeb, target.Source)

	before := store.dishCount()
	first, err := svc.Materialize(ctx, 1, target.ID)
	require.NoError(t, err)
	second, err := svc.Materialize(ctx, 1, target.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before+1, store.dishCount())

	dish, err := store.FindDishByID(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, target.Name, dish.Name)
	assert.Equal(t, target.Cuisine, dish.Cuisine)
	assert.Equal(t, target.TimeMin, dish.TimeMin)
	assert.Equal(t, models.DifficultyHard, dish.Difficulty)
	assert.Equal(t, target.ImageURL, dish.ImageURL)

	linked, err := store.FindFeedItem(ctx, 1, target.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.DishID)
	assert.Equal(t, first, *linked.DishID)

	entries, err := store.ListActive(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, first, entries[0].DishID)
}

func TestMaterializeUnknownItem(t *testing.T) {
	_, err := newDiscovery(newMemStore(), nil, 1).Materialize(context.Background(), 1, 404)
	assert.ErrorIs(t, err, ErrFeedItemNotFound)
}

func TestMaterializeOtherUsersItem(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	source := &fakeSource{areas: map[string][]models.ExternalRecipe{"Pakistani": webRecipes("Pakistani", 1)}}
	svc := newDiscovery(store, source, 1)
	require.NoError(t, svc.EnsureWeeklyFeed(ctx, testProfile(1, 4), 0))
	items, err := store.ListFeedItems(ctx, 1, WeekStart(testNow))
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = svc.Materialize(ctx, 2, items[0].ID)
	assert.ErrorIs(t, err, ErrFeedItemNotFound)
}

func TestMaterializeWeek(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedDish(1, "Library Pick", nil)
	source := &fakeSource{areas: map[string][]models.ExternalRecipe{"Indian": webRecipes("Indian", 3)}}
	svc := newDiscovery(store, source, 1)
	require.NoError(t, svc.EnsureWeeklyFeed(ctx, testProfile(1, 4), 0))

	ids, err := svc.MaterializeWeek(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	again, err := svc.MaterializeWeek(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, again)

	items, err := store.ListFeedItems(ctx, 1, WeekStart(testNow))
	require.NoError(t, err)
	for _, item := range items {
		assert.True(t, item.Materialized(), item.Name)
	}
}
