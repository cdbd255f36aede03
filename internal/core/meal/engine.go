package meal

import (
	"context"
	"strings"

	"mealmind/internal/models"
	"mealmind/internal/pkg/common"

	"go.uber.org/zap"
)

// Options 引擎設定，由 config 轉入
type Options struct {
	CooldownDays   int
	FuzzyCutoff    float64
	Similarity     SimilarityFunc
	NameHitLimit   int
	AltLimit       int
	HistoryLimit   int
	DefaultCuisine string
	Discovery      DiscoveryOptions
	Clock          Clock
	Rand           RandSource
}

// Engine 推薦與比對引擎
type Engine struct {
	Preferences *PreferenceService
	Selection   *SelectionService
	Matcher     *MatchService
	Library     *LibraryService
	Discovery   *DiscoveryService

	source       RecipeSource
	altLimit     int
	historyLimit int
}

// NewEngine 組裝所有服務
func NewEngine(store Store, source RecipeSource, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Rand == nil {
		opts.Rand = NewRand(0)
	}
	if opts.AltLimit <= 0 {
		opts.AltLimit = 3
	}
	if source == nil {
		source = noopSource{}
	}

	resolver := NewIngredientResolver(store, opts.Similarity, opts.FuzzyCutoff)
	library := NewLibraryService(store, opts.Clock, opts.DefaultCuisine)
	return &Engine{
		Preferences:  NewPreferenceService(store, resolver, opts.CooldownDays),
		Selection:    NewSelectionService(store, opts.Clock, opts.Rand),
		Matcher:      NewMatchService(store, resolver, opts.NameHitLimit),
		Library:      library,
		Discovery:    NewDiscoveryService(store, source, library, opts.Clock, opts.Rand, opts.Discovery),
		source:       source,
		altLimit:     opts.AltLimit,
		historyLimit: opts.HistoryLimit,
	}
}

// AltLimit 預設替代選項數
func (e *Engine) AltLimit() int {
	return e.altLimit
}

// HistoryLimit 預設歷史筆數
func (e *Engine) HistoryLimit() int {
	return e.historyLimit
}

// OverrideResult 覆寫搜尋結果
type OverrideResult struct {
	Query    ParsedQuery
	Resolved map[string]uint
	Results  []Candidate
}

// OverrideSearch 本地比對加上外部搜尋後合併排序，外部失敗時只回傳本地結果
func (e *Engine) OverrideSearch(ctx context.Context, profile *Profile, raw string) (*OverrideResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &OverrideResult{Resolved: map[string]uint{}}, nil
	}

	match, err := e.Matcher.Match(ctx, raw, profile.Filter.Match)
	if err != nil {
		return nil, err
	}
	external := e.source.Search(ctx, raw)
	results := Combine(raw, match.Hits, external)

	common.LogDebug("覆寫搜尋完成",
		zap.Uint("user_id", profile.UserID),
		zap.Int("local", len(match.Hits)),
		zap.Int("external", len(external)),
		zap.Int("merged", len(results)),
	)
	return &OverrideResult{
		Query:    match.Query,
		Resolved: match.Resolved,
		Results:  results,
	}, nil
}

// ConfirmExternal 外部食譜加入菜單庫並記為今天的覆寫
func (e *Engine) ConfirmExternal(ctx context.Context, userID uint, rec models.ExternalRecipe) (*models.DayPlanEntry, error) {
	dish, err := e.Library.EnsureExternalDish(ctx, userID, rec)
	if err != nil {
		return nil, err
	}
	return e.Library.MarkCooked(ctx, userID, dish.ID, true)
}
