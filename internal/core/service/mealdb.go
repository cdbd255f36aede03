package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mealmind/internal/core/cache"
	"mealmind/internal/core/meal"
	"mealmind/internal/infrastructure/config"
	"mealmind/internal/models"
	"mealmind/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	mealPageURL     = "https://www.themealdb.com/meal/%s"
	unknownArea     = "Unknown"
	externalTimeMin = 40
)

// queryReplacer 外部搜尋不認得運算子，轉成空白
var queryReplacer = strings.NewReplacer("+", " ", "|", " ", "-", " ")

// MealDBClient TheMealDB 食譜來源，失敗一律回傳空清單
type MealDBClient struct {
	cfg     config.MealDBConfig
	client  *resty.Client
	cache   cache.Store
	breaker *Breaker
	rng     meal.RandSource
	allowed map[string]bool
}

// mealDBResponse search.php 與 filter.php 共用的回應
type mealDBResponse struct {
	Meals []mealDBMeal `json:"meals"`
}

type mealDBMeal struct {
	ID        string `json:"idMeal"`
	Name      string `json:"strMeal"`
	Area      string `json:"strArea"`
	Category  string `json:"strCategory"`
	Thumbnail string `json:"strMealThumb"`
	Source    string `json:"strSource"`
}

// NewMealDBClient 創建 TheMealDB 客戶端
func NewMealDBClient(cfg config.MealDBConfig, store cache.Store, rng meal.RandSource) *MealDBClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "mealmind")

	if store == nil {
		store = cache.Nop{}
	}
	if rng == nil {
		rng = meal.NewRand(0)
	}

	allowed := make(map[string]bool, len(cfg.AllowedAreas))
	for _, area := range cfg.AllowedAreas {
		allowed[strings.ToLower(area)] = true
	}

	return &MealDBClient{
		cfg:     cfg,
		client:  client,
		cache:   store,
		breaker: NewBreaker("themealdb", cfg.Breaker),
		rng:     rng,
		allowed: allowed,
	}
}

// Search 依名稱搜尋，限定地區；沒結果時改用第一個詞且不過濾地區
func (c *MealDBClient) Search(ctx context.Context, query string) []models.ExternalRecipe {
	q := strings.TrimSpace(queryReplacer.Replace(query))
	if q == "" {
		return nil
	}

	start := time.Now()
	meals, err := c.fetch(ctx, "search", "/search.php", "s", q)
	if err != nil {
		common.LogExternalCall("search", q, time.Since(start), 0, err)
		return nil
	}

	var out []models.ExternalRecipe
	for _, m := range meals {
		if !c.allowed[strings.ToLower(areaOrUnknown(m.Area))] {
			continue
		}
		out = append(out, c.normalize(m, ""))
	}

	if len(out) == 0 {
		best := strings.Fields(strings.ToLower(q))[0]
		fallback, err := c.fetch(ctx, "search", "/search.php", "s", best)
		if err != nil {
			common.LogExternalCall("search_fallback", best, time.Since(start), 0, err)
			return nil
		}
		if limit := c.cfg.FallbackLimit; limit > 0 && len(fallback) > limit {
			fallback = fallback[:limit]
		}
		for _, m := range fallback {
			out = append(out, c.normalize(m, ""))
		}
	}

	out = dedupeByName(out)
	if limit := c.cfg.MaxResults; limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	common.LogExternalCall("search", q, time.Since(start), len(out), nil)
	return out
}

// AreaList 依地區批次取得，洗牌後截斷
func (c *MealDBClient) AreaList(ctx context.Context, area string, limit int) []models.ExternalRecipe {
	area = strings.TrimSpace(area)
	if area == "" {
		return nil
	}
	if limit <= 0 {
		limit = c.cfg.AreaFetchLimit
	}

	start := time.Now()
	meals, err := c.fetch(ctx, "area", "/filter.php", "a", area)
	if err != nil {
		common.LogExternalCall("area", area, time.Since(start), 0, err)
		return nil
	}

	out := make([]models.ExternalRecipe, 0, len(meals))
	for _, m := range meals {
		rec := c.normalize(m, area)
		// filter.php 不帶 strSource
		rec.SourceURL = fmt.Sprintf(mealPageURL, m.ID)
		out = append(out, rec)
	}
	c.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	common.LogExternalCall("area", area, time.Since(start), len(out), nil)
	return out
}

// BreakerState 斷路器狀態，給健康檢查用
func (c *MealDBClient) BreakerState() string {
	return c.breaker.State()
}

// fetch 先查快取，未命中時經斷路器呼叫外部 API
func (c *MealDBClient) fetch(ctx context.Context, op, path, param, value string) ([]mealDBMeal, error) {
	key := cache.Key("mealdb:"+op, strings.ToLower(value))
	if body, err := c.cache.Get(ctx, key); err == nil {
		if meals, err := decodeMeals(body); err == nil {
			return meals, nil
		}
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		resp, err := c.client.R().
			SetContext(ctx).
			SetQueryParam(param, value).
			Get(path)
		if err != nil {
			return nil, fmt.Errorf("failed to send request to TheMealDB: %w", err)
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("TheMealDB returned status %d", resp.StatusCode())
		}
		return resp.Body(), nil
	})
	if err != nil {
		return nil, err
	}

	meals, err := decodeMeals(body)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, body, c.cfg.CacheTTL); err != nil {
		common.LogDebug("Failed to cache TheMealDB response", zap.String("op", op), zap.Error(err))
	}
	return meals, nil
}

func decodeMeals(body []byte) ([]mealDBMeal, error) {
	var resp mealDBResponse
	if err := common.ParseJSONBytes(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse TheMealDB response: %w", err)
	}
	return resp.Meals, nil
}

// normalize 轉成共用的候選格式，外部來源不提供時間與難度，一律用預設
func (c *MealDBClient) normalize(m mealDBMeal, area string) models.ExternalRecipe {
	if area == "" {
		area = areaOrUnknown(m.Area)
	}
	source := m.Source
	if source == "" {
		source = fmt.Sprintf(mealPageURL, m.ID)
	}
	category := strings.ToLower(m.Category)
	return models.ExternalRecipe{
		ExternalID: m.ID,
		Name:       strings.TrimSpace(m.Name),
		Cuisine:    area,
		TimeMin:    externalTimeMin,
		Difficulty: models.DifficultyMedium,
		Veg:        category == "vegetarian" || category == "vegan",
		SpiceLevel: models.SpiceMedium,
		ImageURL:   m.Thumbnail,
		SourceURL:  source,
	}
}

func areaOrUnknown(area string) string {
	if strings.TrimSpace(area) == "" {
		return unknownArea
	}
	return area
}

// dedupeByName 同名只留第一筆
func dedupeByName(in []models.ExternalRecipe) []models.ExternalRecipe {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, r := range in {
		if r.Name == "" || seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		out = append(out, r)
	}
	return out
}

var _ meal.RecipeSource = (*MealDBClient)(nil)
