package meal

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"mealmind/internal/models"
)

// DefaultNameHitLimit 名稱命中的最大筆數
const DefaultNameHitLimit = 5

// MatchResult 覆寫搜尋的本地比對結果
type MatchResult struct {
	Query    ParsedQuery      `json:"query"`
	Resolved map[string]uint  `json:"resolved"`
	Hits     []LocalCandidate `json:"-"`
}

// MatchService 菜色比對與排序
type MatchService struct {
	dishes       DishStore
	resolver     *IngredientResolver
	nameHitLimit int
}

// NewMatchService 創建比對服務
func NewMatchService(dishes DishStore, resolver *IngredientResolver, nameHitLimit int) *MatchService {
	if nameHitLimit <= 0 {
		nameHitLimit = DefaultNameHitLimit
	}
	return &MatchService{
		dishes:       dishes,
		resolver:     resolver,
		nameHitLimit: nameHitLimit,
	}
}

// NameHits 名稱包含輸入文字的菜色，分數固定為最高
func (s *MatchService) NameHits(ctx context.Context, raw string, keep func(*models.Dish) bool) ([]LocalCandidate, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, nil
	}
	dishes, err := s.dishes.SearchDishesByName(ctx, text, 0)
	if err != nil {
		return nil, fmt.Errorf("search dishes by name: %w", err)
	}

	hits := make([]LocalCandidate, 0, s.nameHitLimit)
	for i := range dishes {
		if keep != nil && !keep(&dishes[i]) {
			continue
		}
		hits = append(hits, LocalCandidate{Dish: &dishes[i], MatchScore: NameHitScore})
		if len(hits) == s.nameHitLimit {
			break
		}
	}
	return hits, nil
}

// IngredientHits 依食材比對：不得含排除食材，必要食材須全部包含
//
// 分數 = 2 × 命中必要食材數 + 命中可選食材數，分數 <= 0 的不列入。
func (s *MatchService) IngredientHits(ctx context.Context, required, optional, excluded []uint, keep func(*models.Dish) bool) ([]LocalCandidate, error) {
	all := make([]uint, 0, len(required)+len(optional)+len(excluded))
	all = append(all, required...)
	all = append(all, optional...)
	all = append(all, excluded...)
	if len(all) == 0 {
		return nil, nil
	}

	dishes, err := s.dishes.ListDishesByIngredients(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("list dishes by ingredients: %w", err)
	}
	return scoreIngredientHits(dishes, required, optional, excluded, keep), nil
}

func scoreIngredientHits(dishes []models.Dish, required, optional, excluded []uint, keep func(*models.Dish) bool) []LocalCandidate {
	hits := make([]LocalCandidate, 0, len(dishes))
	for i := range dishes {
		d := &dishes[i]
		if keep != nil && !keep(d) {
			continue
		}
		have := make(map[uint]bool, len(d.Ingredients))
		for _, ing := range d.Ingredients {
			have[ing.ID] = true
		}
		if containsAny(have, excluded) {
			continue
		}
		req := countIn(have, required)
		if len(required) > 0 && req < len(required) {
			continue
		}
		score := 2*req + countIn(have, optional)
		if score <= 0 {
			continue
		}
		hits = append(hits, LocalCandidate{Dish: d, MatchScore: score})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if a.Dish.TimeMin != b.Dish.TimeMin {
			return a.Dish.TimeMin < b.Dish.TimeMin
		}
		return a.Dish.Name < b.Dish.Name
	})
	return hits
}

func containsAny(have map[uint]bool, ids []uint) bool {
	for _, id := range ids {
		if have[id] {
			return true
		}
	}
	return false
}

// countIn 不重複計算
func countIn(have map[uint]bool, ids []uint) int {
	seen := make(map[uint]bool, len(ids))
	n := 0
	for _, id := range ids {
		if have[id] && !seen[id] {
			n++
		}
		seen[id] = true
	}
	return n
}

// Match 名稱命中在前，食材命中在後，重複的菜色以名稱命中為準
func (s *MatchService) Match(ctx context.Context, raw string, keep func(*models.Dish) bool) (*MatchResult, error) {
	query := ParseQuery(raw)
	result := &MatchResult{Query: query, Resolved: map[string]uint{}}

	nameHits, err := s.NameHits(ctx, raw, keep)
	if err != nil {
		return nil, err
	}

	if !query.Empty() {
		resolved, err := s.resolver.Resolve(ctx, query.All())
		if err != nil {
			return nil, err
		}
		result.Resolved = resolved
	}

	ingredientHits, err := s.IngredientHits(ctx,
		ResolveIDs(query.Required, result.Resolved),
		ResolveIDs(query.Optional, result.Resolved),
		ResolveIDs(query.Excluded, result.Resolved),
		keep,
	)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(nameHits))
	result.Hits = make([]LocalCandidate, 0, len(nameHits)+len(ingredientHits))
	for _, h := range nameHits {
		seen[h.Dish.ID] = true
		result.Hits = append(result.Hits, h)
	}
	for _, h := range ingredientHits {
		if seen[h.Dish.ID] {
			continue
		}
		result.Hits = append(result.Hits, h)
	}
	return result, nil
}
