package meal

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"

	"mealmind/internal/models"
)

var collapseSpace = regexp.MustCompile(`\s+`)

// DefaultFuzzyCutoff 模糊比對的最低相似度
const DefaultFuzzyCutoff = 0.8

// SimilarityFunc 回傳 0..1 的字串相似度
type SimilarityFunc func(a, b string) float64

// LevenshteinSimilarity 1 - 編輯距離 / 較長字串長度
func LevenshteinSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}

// CanonicalName 食材標準名稱：NFC、小寫、去頭尾並合併空白
func CanonicalName(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(strings.TrimSpace(s))
	return collapseSpace.ReplaceAllString(s, " ")
}

// IngredientResolver 將 token 對應到食材 ID，先精確後模糊
type IngredientResolver struct {
	store      DishStore
	similarity SimilarityFunc
	cutoff     float64
}

// NewIngredientResolver 創建食材解析器，similarity 為 nil 時使用 Levenshtein
func NewIngredientResolver(store DishStore, similarity SimilarityFunc, cutoff float64) *IngredientResolver {
	if similarity == nil {
		similarity = LevenshteinSimilarity
	}
	if cutoff <= 0 {
		cutoff = DefaultFuzzyCutoff
	}
	return &IngredientResolver{
		store:      store,
		similarity: similarity,
		cutoff:     cutoff,
	}
}

// Resolve 回傳 token 對應的食材 ID，無法對應的 token 不會出現在結果中
func (r *IngredientResolver) Resolve(ctx context.Context, tokens []string) (map[string]uint, error) {
	resolved := make(map[string]uint, len(tokens))
	if len(tokens) == 0 {
		return resolved, nil
	}

	canon := make(map[string]string, len(tokens))
	names := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		c := CanonicalName(tok)
		if c == "" {
			continue
		}
		if _, ok := canon[tok]; !ok {
			canon[tok] = c
			names = append(names, c)
		}
	}

	found, err := r.store.FindIngredientsByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("lookup ingredients: %w", err)
	}
	byName := make(map[string]uint, len(found))
	for _, ing := range found {
		byName[ing.Name] = ing.ID
	}

	var pending []string
	for tok, c := range canon {
		if id, ok := byName[c]; ok {
			resolved[tok] = id
			continue
		}
		pending = append(pending, tok)
	}
	if len(pending) == 0 {
		return resolved, nil
	}

	vocab, err := r.store.ListIngredients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	for _, tok := range pending {
		if id, ok := r.closest(canon[tok], vocab); ok {
			resolved[tok] = id
		}
	}
	return resolved, nil
}

// closest 相似度最高且達到門檻的食材，同分取先出現者
func (r *IngredientResolver) closest(name string, vocab []models.Ingredient) (uint, bool) {
	var (
		bestID    uint
		bestScore float64
	)
	for _, ing := range vocab {
		score := r.similarity(name, ing.Name)
		if score >= r.cutoff && score > bestScore {
			bestID, bestScore = ing.ID, score
		}
	}
	return bestID, bestScore > 0
}

// ResolveIDs 只取 ID，保持 token 順序並去重
func ResolveIDs(tokens []string, resolved map[string]uint) []uint {
	seen := make(map[uint]bool)
	ids := make([]uint, 0, len(tokens))
	for _, tok := range tokens {
		id, ok := resolved[tok]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
