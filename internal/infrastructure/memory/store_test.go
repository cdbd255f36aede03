package memory

import (
	"context"
	"testing"
	"time"

	"mealmind/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDishesAndIngredients(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	dish := &models.Dish{Name: "Aloo Gosht"}
	require.NoError(t, s.CreateDish(ctx, dish))
	require.NoError(t, s.CreateDish(ctx, &models.Dish{Name: "Aloo"}))

	potato, err := s.EnsureIngredient(ctx, "potato")
	require.NoError(t, err)
	again, err := s.EnsureIngredient(ctx, "potato")
	require.NoError(t, err)
	assert.Equal(t, potato.ID, again.ID)

	require.NoError(t, s.LinkIngredient(ctx, dish.ID, potato.ID))
	require.NoError(t, s.LinkIngredient(ctx, dish.ID, potato.ID))

	found, err := s.FindDishByID(ctx, dish.ID)
	require.NoError(t, err)
	require.Len(t, found.Ingredients, 1)

	hits, err := s.SearchDishesByName(ctx, "aloo", 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "Aloo", hits[0].Name)

	byIng, err := s.ListDishesByIngredients(ctx, []uint{potato.ID})
	require.NoError(t, err)
	require.Len(t, byIng, 1)
	assert.Equal(t, dish.ID, byIng[0].ID)

	missing, err := s.FindDishByName(ctx, "Nihari")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDayPlanUniquePerDate(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	day := time.Date(2024, 5, 15, 18, 30, 0, 0, time.UTC)

	first := &models.DayPlanEntry{UserID: 1, Date: day, DishID: 10}
	require.NoError(t, s.CreateDayPlanIfAbsent(ctx, first))
	require.NoError(t, s.CreateDayPlanIfAbsent(ctx, &models.DayPlanEntry{UserID: 1, Date: day, DishID: 11}))

	plan, err := s.FindDayPlan(ctx, 1, day.Add(-10*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, uint(10), plan.DishID)

	require.NoError(t, s.UpsertDayPlan(ctx, &models.DayPlanEntry{UserID: 1, Date: day, DishID: 12, IsOverride: true}))
	plan, err = s.FindDayPlan(ctx, 1, day)
	require.NoError(t, err)
	assert.Equal(t, uint(12), plan.DishID)
	assert.True(t, plan.IsOverride)

	ids, err := s.ListPlannedDishIDs(ctx, 1, day.AddDate(0, 0, -4), day)
	require.NoError(t, err)
	assert.Equal(t, []uint{12}, ids)
}

func TestFeedReplaceAndLink(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	week := time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC)

	items := []models.DiscoverFeedItem{
		{Source: models.SourceWeb, Name: "Chapli Kebab", SortRank: 1},
		{Source: models.SourceWeb, Name: "Sajji", SortRank: 0},
	}
	require.NoError(t, s.ReplaceWeek(ctx, 1, week, items))

	listed, err := s.ListFeedItems(ctx, 1, week)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Sajji", listed[0].Name)

	other, err := s.FindFeedItem(ctx, 2, listed[0].ID)
	require.NoError(t, err)
	assert.Nil(t, other)

	dish := &models.Dish{Name: "Sajji"}
	require.NoError(t, s.CreateDish(ctx, dish))
	require.NoError(t, s.LinkFeedItem(ctx, listed[0].ID, dish.ID))

	listed, err = s.ListFeedItems(ctx, 1, week)
	require.NoError(t, err)
	assert.True(t, listed[0].Materialized())
	require.NotNil(t, listed[0].Dish)
	assert.Equal(t, "Sajji", listed[0].Dish.Name)

	require.NoError(t, s.ReplaceWeek(ctx, 1, week, nil))
	listed, err = s.ListFeedItems(ctx, 1, week)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
