package meal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mealmind/internal/models"
	"mealmind/internal/pkg/common"

	"go.uber.org/zap"
)

// DiscoveryOptions 每週探索的數量與外部來源設定
type DiscoveryOptions struct {
	Total          int
	LibraryTarget  int
	WebTarget      int
	Areas          []string
	AreaFetchLimit int
}

// DefaultDiscoveryOptions 預設每週 8 筆：菜單庫 4、外部 4
func DefaultDiscoveryOptions() DiscoveryOptions {
	return DiscoveryOptions{
		Total:          8,
		LibraryTarget:  4,
		WebTarget:      4,
		Areas:          []string{"Pakistani", "Indian"},
		AreaFetchLimit: 60,
	}
}

// DiscoveryService 每週探索清單
type DiscoveryService struct {
	feed    FeedStore
	pool    candidatePool
	library LibraryStore
	source  RecipeSource
	dishes  *LibraryService
	clock   Clock
	rng     RandSource
	opts    DiscoveryOptions
}

// NewDiscoveryService 創建探索服務，source 為 nil 時不取外部資料
func NewDiscoveryService(store Store, source RecipeSource, dishes *LibraryService, clock Clock, rng RandSource, opts DiscoveryOptions) *DiscoveryService {
	if source == nil {
		source = noopSource{}
	}
	if opts.Total <= 0 {
		opts.Total = DefaultDiscoveryOptions().Total
	}
	return &DiscoveryService{
		feed:    store,
		pool:    candidatePool{library: store, dayPlans: store},
		library: store,
		source:  source,
		dishes:  dishes,
		clock:   clock,
		rng:     rng,
		opts:    opts,
	}
}

// CurrentWeek 本週的星期一
func (s *DiscoveryService) CurrentWeek() time.Time {
	return WeekStart(s.clock.Now())
}

// EnsureWeeklyFeed 本週列數未達 target 時重建整週清單，達到則不動
func (s *DiscoveryService) EnsureWeeklyFeed(ctx context.Context, profile *Profile, target int) error {
	if target <= 0 {
		target = s.opts.Total
	}
	week := s.CurrentWeek()

	existing, err := s.feed.ListFeedItems(ctx, profile.UserID, week)
	if err != nil {
		return fmt.Errorf("list feed items: %w", err)
	}
	if len(existing) >= target {
		return nil
	}

	items, err := s.buildFeed(ctx, profile, existing, target)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].UserID = profile.UserID
		items[i].WeekStart = week
		items[i].SortRank = i
	}
	if err := s.feed.ReplaceWeek(ctx, profile.UserID, week, items); err != nil {
		return fmt.Errorf("replace week feed: %w", err)
	}

	common.LogInfo("重建每週探索清單",
		zap.Uint("user_id", profile.UserID),
		zap.Time("week_start", week),
		zap.Int("items", len(items)),
	)
	return nil
}

// buildFeed 菜單庫候選在前，外部候選在後，總數不超過 total
func (s *DiscoveryService) buildFeed(ctx context.Context, profile *Profile, existing []models.DiscoverFeedItem, total int) ([]models.DiscoverFeedItem, error) {
	today := DateOf(s.clock.Now())

	filtered, err := s.library.ListActive(ctx, profile.UserID, profile.Filter.Match)
	if err != nil {
		return nil, fmt.Errorf("list filtered library: %w", err)
	}
	cooled, err := s.pool.cooledDishIDs(ctx, profile, today)
	if err != nil {
		return nil, err
	}
	libCandidates := withoutDishes(filtered, func(id uint) bool { return cooled[id] })
	s.rng.Shuffle(len(libCandidates), func(i, j int) {
		libCandidates[i], libCandidates[j] = libCandidates[j], libCandidates[i]
	})

	seenIDs := make(map[uint]bool)
	seenNames := make(map[string]bool)
	items := make([]models.DiscoverFeedItem, 0, total)
	for i := range libCandidates {
		if len(items) >= s.opts.LibraryTarget {
			break
		}
		d := libCandidates[i].Dish
		key := common.NameKey(d.Name)
		if seenIDs[d.ID] || seenNames[key] {
			continue
		}
		seenIDs[d.ID] = true
		seenNames[key] = true
		items = append(items, libraryFeedItem(d))
	}

	// 外部候選排除菜單庫已有與本週已出現過的名稱
	blocked := make(map[string]bool)
	all, err := s.library.ListActive(ctx, profile.UserID, nil)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	for _, e := range all {
		blocked[common.NameKey(e.Dish.Name)] = true
	}
	for _, item := range existing {
		blocked[common.NameKey(item.Name)] = true
	}

	// total 大於兩邊目標之和時，差額由外部候選補上
	webTarget := s.opts.WebTarget
	if extra := total - s.opts.LibraryTarget - s.opts.WebTarget; extra > 0 {
		webTarget += extra
	}
	webAdded := 0
	for _, rec := range s.webCandidates(ctx) {
		if webAdded >= webTarget || len(items) >= total {
			break
		}
		key := common.NameKey(rec.Name)
		if key == "" || blocked[key] || seenNames[key] {
			continue
		}
		seenNames[key] = true
		items = append(items, rec.Snapshot())
		webAdded++
	}
	return items, nil
}

// webCandidates 依序取各菜系清單
func (s *DiscoveryService) webCandidates(ctx context.Context) []models.ExternalRecipe {
	var out []models.ExternalRecipe
	for _, area := range s.opts.Areas {
		out = append(out, s.source.AreaList(ctx, area, s.opts.AreaFetchLimit)...)
	}
	return out
}

func libraryFeedItem(d models.Dish) models.DiscoverFeedItem {
	id := d.ID
	return models.DiscoverFeedItem{
		Source:     models.SourceLibrary,
		DishID:     &id,
		Name:       d.Name,
		ImageURL:   d.ImageURL,
		TimeMin:    d.TimeMin,
		Cuisine:    d.Cuisine,
		Difficulty: d.Difficulty,
		Veg:        d.Veg,
	}
}

// Feed 確保本週清單後回傳，關閉每週探索時只回傳既有資料
func (s *DiscoveryService) Feed(ctx context.Context, profile *Profile) ([]models.DiscoverFeedItem, error) {
	if profile.Preferences == nil || profile.Preferences.WeeklyDiscovery {
		if err := s.EnsureWeeklyFeed(ctx, profile, 0); err != nil {
			return nil, err
		}
	}
	items, err := s.feed.ListFeedItems(ctx, profile.UserID, s.CurrentWeek())
	if err != nil {
		return nil, fmt.Errorf("list feed items: %w", err)
	}
	return items, nil
}

// Materialize 把外部探索項目轉成菜色；已連結時直接回傳既有 ID
func (s *DiscoveryService) Materialize(ctx context.Context, userID, itemID uint) (uint, error) {
	item, err := s.feed.FindFeedItem(ctx, userID, itemID)
	if err != nil {
		return 0, fmt.Errorf("find feed item: %w", err)
	}
	if item == nil {
		return 0, ErrFeedItemNotFound
	}
	if item.Materialized() {
		return *item.DishID, nil
	}

	dish, err := s.dishes.EnsureExternalDish(ctx, userID, recipeFromFeed(*item))
	if err != nil {
		return 0, err
	}
	if err := s.feed.LinkFeedItem(ctx, item.ID, dish.ID); err != nil {
		return 0, fmt.Errorf("link feed item: %w", err)
	}
	return dish.ID, nil
}

// MaterializeWeek 轉換本週所有尚未連結的外部項目，回傳菜色 ID
func (s *DiscoveryService) MaterializeWeek(ctx context.Context, userID uint) ([]uint, error) {
	items, err := s.feed.ListFeedItems(ctx, userID, s.CurrentWeek())
	if err != nil {
		return nil, fmt.Errorf("list feed items: %w", err)
	}
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if item.Source != models.SourceWeb || item.Materialized() {
			continue
		}
		id, err := s.Materialize(ctx, userID, item.ID)
		if errors.Is(err, ErrEmptyDishName) {
			common.LogWarn("略過沒有名稱的探索項目", zap.Uint("feed_item_id", item.ID))
			continue
		}
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
