package meal

import (
	"context"
	"testing"

	"mealmind/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMatcher(store *memStore) *MatchService {
	return NewMatchService(store, NewIngredientResolver(store, nil, 0.8), 5)
}

func hitIDs(hits []LocalCandidate) []uint {
	ids := make([]uint, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.Dish.ID)
	}
	return ids
}

func TestIngredientHitsNeverReturnsExcluded(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedDish(1, "Chicken Karahi", []string{"chicken", "tomato", "ginger"})
	store.seedDish(1, "Chicken Peanut Salad", []string{"chicken", "peanut"})
	store.seedDish(1, "Peanut Chutney", []string{"peanut", "chili"})
	store.seedDish(1, "Tomato Rice", []string{"rice", "tomato"})

	chicken, tomato, peanut, rice := store.ingredientID("chicken"), store.ingredientID("tomato"),
		store.ingredientID("peanut"), store.ingredientID("rice")
	m := newMatcher(store)

	cases := []struct {
		required, optional, excluded []uint
	}{
		{nil, []uint{chicken, tomato}, []uint{peanut}},
		{[]uint{chicken}, nil, []uint{peanut}},
		{nil, []uint{rice, peanut}, []uint{peanut}},
		{[]uint{tomato}, []uint{chicken}, []uint{peanut, rice}},
	}
	for _, c := range cases {
		hits, err := m.IngredientHits(ctx, c.required, c.optional, c.excluded, nil)
		require.NoError(t, err)
		for _, h := range hits {
			for _, ing := range h.Dish.Ingredients {
				assert.NotContains(t, c.excluded, ing.ID, h.Dish.Name)
			}
		}
	}
}

func TestIngredientHitsRequiredAndScoring(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	both := store.seedDish(1, "Aloo Keema", []string{"keema", "potato"}, withTime(45))
	only := store.seedDish(1, "Keema Naan", []string{"keema", "flour"}, withTime(30))
	none := store.seedDish(1, "Aloo Paratha", []string{"potato", "flour"})

	keema, potato := store.ingredientID("keema"), store.ingredientID("potato")
	hits, err := newMatcher(store).IngredientHits(ctx, []uint{keema}, []uint{potato}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []uint{both, only}, hitIDs(hits))
	assert.NotContains(t, hitIDs(hits), none)
	assert.Equal(t, 3, hits[0].MatchScore)
	assert.Equal(t, 2, hits[1].MatchScore)
}

func TestIngredientHitsTieBreak(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	slow := store.seedDish(1, "Alpha", []string{"rice"}, withTime(50))
	fastB := store.seedDish(1, "Bravo", []string{"rice"}, withTime(20))
	fastA := store.seedDish(1, "Able", []string{"rice"}, withTime(20))

	hits, err := newMatcher(store).IngredientHits(ctx, nil, []uint{store.ingredientID("rice")}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{fastA, fastB, slow}, hitIDs(hits))
}

func TestIngredientHitsExcludedOnlyScoresNothing(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedDish(1, "Plain Rice", []string{"rice"})
	store.seedDish(1, "Egg Fried Rice", []string{"rice", "egg"})

	hits, err := newMatcher(store).IngredientHits(ctx, nil, nil, []uint{store.ingredientID("egg")}, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestNameHits(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	long := store.seedDish(1, "Dal Makhani Deluxe", nil)
	exact := store.seedDish(1, "dal", nil)
	short := store.seedDish(1, "Dal Fry", nil)
	for _, name := range []string{"Dal Tadka", "Dal Gosht", "Moong Dal Halwa"} {
		store.seedDish(1, name, nil)
	}

	hits, err := newMatcher(store).NameHits(ctx, "Dal", nil)
	require.NoError(t, err)
	require.Len(t, hits, 5)
	assert.Equal(t, exact, hits[0].Dish.ID)
	assert.Equal(t, short, hits[1].Dish.ID)
	assert.NotContains(t, hitIDs(hits), long)
	for _, h := range hits {
		assert.Equal(t, NameHitScore, h.MatchScore)
	}

	notExact := func(d *models.Dish) bool { return d.Name != "dal" }
	hits, err = newMatcher(store).NameHits(ctx, "dal", notExact)
	require.NoError(t, err)
	assert.NotContains(t, hitIDs(hits), exact)
	assert.Len(t, hits, 5)
}

func TestMatchNameHitsFirstAndDeduped(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	keemaDish := store.seedDish(1, "Keema", []string{"keema", "onion"})
	alooKeema := store.seedDish(1, "Aloo Keema", []string{"keema", "potato"})

	res, err := newMatcher(store).Match(ctx, "qeema", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"keema"}, res.Query.Required)
	// 同分同時間時依名稱排序
	assert.Equal(t, []uint{alooKeema, keemaDish}, hitIDs(res.Hits))

	res, err = newMatcher(store).Match(ctx, "keema", nil)
	require.NoError(t, err)
	require.Len(t, res.Hits, 2)
	assert.Equal(t, keemaDish, res.Hits[0].Dish.ID)
	assert.Equal(t, NameHitScore, res.Hits[0].MatchScore)
}

func TestMatchDropsUnresolvedTokens(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dish := store.seedDish(1, "Saag Paneer", []string{"spinach", "paneer"})

	res, err := newMatcher(store).Match(ctx, "saag and zzzz", nil)
	require.NoError(t, err)
	assert.NotContains(t, res.Resolved, "zzzz")
	assert.Equal(t, []uint{dish}, hitIDs(res.Hits))
}
