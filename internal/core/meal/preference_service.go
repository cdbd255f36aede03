package meal

import (
	"context"
	"fmt"
	"strings"

	"mealmind/internal/models"
	"mealmind/internal/pkg/common"

	"go.uber.org/zap"
)

// DefaultCooldownDays 未設定時的冷卻天數
const DefaultCooldownDays = 4

// Profile 單次請求使用的使用者設定，由呼叫端明確傳入各服務
type Profile struct {
	UserID       uint
	Preferences  *models.Preferences
	CooldownDays int
	Filter       Predicate
}

// PreferenceService 偏好讀取與過濾條件建立
type PreferenceService struct {
	store           PreferenceStore
	resolver        *IngredientResolver
	defaultCooldown int
}

// NewPreferenceService 創建偏好服務
func NewPreferenceService(store PreferenceStore, resolver *IngredientResolver, defaultCooldown int) *PreferenceService {
	if defaultCooldown <= 0 {
		defaultCooldown = DefaultCooldownDays
	}
	return &PreferenceService{
		store:           store,
		resolver:        resolver,
		defaultCooldown: defaultCooldown,
	}
}

// Get 取得偏好，沒有紀錄時以預設值建立
func (s *PreferenceService) Get(ctx context.Context, userID uint) (*models.Preferences, error) {
	prefs, err := s.store.FindPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find preferences: %w", err)
	}
	if prefs != nil {
		return prefs, nil
	}

	prefs = models.DefaultPreferences(userID)
	if err := s.store.CreatePreferences(ctx, prefs); err != nil {
		return nil, fmt.Errorf("create preferences: %w", err)
	}
	common.LogDebug("建立預設偏好", zap.Uint("user_id", userID))

	// 併發建立時以資料庫內的為準
	if stored, err := s.store.FindPreferences(ctx, userID); err == nil && stored != nil {
		return stored, nil
	}
	return prefs, nil
}

// Save 整筆覆寫偏好
func (s *PreferenceService) Save(ctx context.Context, prefs *models.Preferences) error {
	if prefs == nil || prefs.UserID == 0 {
		return common.NewValidationError("user id is required")
	}
	if err := normalizePreferences(prefs); err != nil {
		return err
	}
	if err := s.store.SavePreferences(ctx, prefs); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// normalizePreferences 驗證並補上預設值
func normalizePreferences(p *models.Preferences) error {
	switch p.Diet {
	case "":
		p.Diet = models.DietNone
	case models.DietNone, models.DietVeg, models.DietVegan:
	default:
		return common.NewValidationError(fmt.Sprintf("unknown diet %q", p.Diet))
	}
	switch p.SpiceLevel {
	case "":
		p.SpiceLevel = models.SpiceMedium
	case models.SpiceLow, models.SpiceMedium, models.SpiceHigh, models.SpiceSpicy:
	default:
		return common.NewValidationError(fmt.Sprintf("unknown spice level %q", p.SpiceLevel))
	}
	if p.TimeMax < 0 {
		return common.NewValidationError("time_max must not be negative")
	}
	if p.CooldownDays < 0 {
		return common.NewValidationError("cooldown_days must not be negative")
	}
	if p.NotifyTime == "" {
		p.NotifyTime = "19:00"
	}
	if p.Theme == "" {
		p.Theme = "light"
	}
	return nil
}

// CooldownDays 使用者設定優先，否則用全域預設
func (s *PreferenceService) CooldownDays(prefs *models.Preferences) int {
	if prefs != nil && prefs.CooldownDays > 0 {
		return prefs.CooldownDays
	}
	return s.defaultCooldown
}

// BuildPredicate 依偏好組出過濾條件
func (s *PreferenceService) BuildPredicate(ctx context.Context, prefs *models.Preferences) (Predicate, error) {
	var rules []FilterRule
	if prefs.TimeMax > 0 {
		rules = append(rules, TimeCapRule(prefs.TimeMax))
	}
	if prefs.Diet == models.DietVeg || prefs.Diet == models.DietVegan {
		rules = append(rules, VegetarianRule())
	}
	if prefs.SpiceLevel != "" {
		rules = append(rules, SpiceCeilingRule(prefs.SpiceLevel))
	}

	ids, err := s.avoidedIngredients(ctx, prefs)
	if err != nil {
		return Predicate{}, err
	}
	if len(ids) > 0 {
		rules = append(rules, ExcludeIngredientsRule(ids))
	}
	return NewPredicate(rules...), nil
}

// avoidedIngredients 過敏與忌口文字一律視為排除，不分運算子
func (s *PreferenceService) avoidedIngredients(ctx context.Context, prefs *models.Preferences) ([]uint, error) {
	text := strings.TrimSpace(prefs.Allergies + ", " + prefs.Avoid)
	if s.resolver == nil || strings.Trim(text, ", ") == "" {
		return nil, nil
	}
	tokens := ParseQuery(text).All()
	resolved, err := s.resolver.Resolve(ctx, tokens)
	if err != nil {
		return nil, fmt.Errorf("resolve avoided ingredients: %w", err)
	}
	return ResolveIDs(tokens, resolved), nil
}

// Profile 讀取偏好並組出本次請求的 Profile
func (s *PreferenceService) Profile(ctx context.Context, userID uint) (*Profile, error) {
	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	filter, err := s.BuildPredicate(ctx, prefs)
	if err != nil {
		return nil, err
	}
	return &Profile{
		UserID:       userID,
		Preferences:  prefs,
		CooldownDays: s.CooldownDays(prefs),
		Filter:       filter,
	}, nil
}
