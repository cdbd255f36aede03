package meal

import (
	"strings"

	"mealmind/internal/models"
)

// FilterRule 具名的過濾規則
type FilterRule struct {
	Name string
	Keep func(d *models.Dish) bool
}

// Predicate 依序以 AND 組合的過濾規則
type Predicate struct {
	rules []FilterRule
}

// NewPredicate 組合規則
func NewPredicate(rules ...FilterRule) Predicate {
	return Predicate{rules: rules}
}

// Match 所有規則都通過才保留
func (p Predicate) Match(d *models.Dish) bool {
	if d == nil {
		return false
	}
	for _, rule := range p.rules {
		if !rule.Keep(d) {
			return false
		}
	}
	return true
}

// Rules 回傳規則副本
func (p Predicate) Rules() []FilterRule {
	out := make([]FilterRule, len(p.rules))
	copy(out, p.rules)
	return out
}

// RuleNames 規則名稱，用於日誌
func (p Predicate) RuleNames() []string {
	names := make([]string, 0, len(p.rules))
	for _, rule := range p.rules {
		names = append(names, rule.Name)
	}
	return names
}

// SpiceRank 辣度排序：Low < Medium < High/Spicy，空值視為 Medium
func SpiceRank(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "low", "mild":
		return 0
	case "high", "spicy", "hot":
		return 2
	default:
		return 1
	}
}

// TimeCapRule 烹調時間不超過上限
func TimeCapRule(maxMinutes int) FilterRule {
	return FilterRule{
		Name: "time_cap",
		Keep: func(d *models.Dish) bool {
			return d.TimeMin <= maxMinutes
		},
	}
}

// VegetarianRule 只保留素食
func VegetarianRule() FilterRule {
	return FilterRule{
		Name: "vegetarian",
		Keep: func(d *models.Dish) bool {
			return d.Veg
		},
	}
}

// SpiceCeilingRule 排除比上限更辣的菜色
func SpiceCeilingRule(ceiling string) FilterRule {
	limit := SpiceRank(ceiling)
	return FilterRule{
		Name: "spice_ceiling",
		Keep: func(d *models.Dish) bool {
			return SpiceRank(d.SpiceLevel) <= limit
		},
	}
}

// ExcludeIngredientsRule 排除連結到任一指定食材的菜色
func ExcludeIngredientsRule(ingredientIDs []uint) FilterRule {
	blocked := make(map[uint]struct{}, len(ingredientIDs))
	for _, id := range ingredientIDs {
		blocked[id] = struct{}{}
	}
	return FilterRule{
		Name: "exclude_ingredients",
		Keep: func(d *models.Dish) bool {
			for _, ing := range d.Ingredients {
				if _, hit := blocked[ing.ID]; hit {
					return false
				}
			}
			return true
		},
	}
}
