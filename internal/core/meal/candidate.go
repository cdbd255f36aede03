package meal

import (
	"mealmind/internal/models"
)

// NameHitScore 名稱命中的分數，高於任何食材比對分數
const NameHitScore = 999

// unknownTime 沒有烹調時間時的排序值
const unknownTime = 999

// Candidate 可排序的推薦候選，本地菜色與外部食譜共用
type Candidate interface {
	Name() string
	Score() int
	CookTime() int
	Source() string
}

// LocalCandidate 菜單庫中的菜色
type LocalCandidate struct {
	Dish       *models.Dish
	MatchScore int
}

func (c LocalCandidate) Name() string { return c.Dish.Name }

// Score 未評分時視為 1
func (c LocalCandidate) Score() int {
	if c.MatchScore == 0 {
		return 1
	}
	return c.MatchScore
}

func (c LocalCandidate) CookTime() int { return c.Dish.TimeMin }

func (c LocalCandidate) Source() string { return models.SourceLibrary }

// ExternalCandidate 外部來源的食譜
type ExternalCandidate struct {
	Recipe     models.ExternalRecipe
	MatchScore int
	// FeedItemID 來自探索清單時的列 ID，可用於 materialize
	FeedItemID uint
}

func (c ExternalCandidate) Name() string { return c.Recipe.Name }

func (c ExternalCandidate) Score() int { return c.MatchScore }

func (c ExternalCandidate) CookTime() int { return c.Recipe.TimeMin }

func (c ExternalCandidate) Source() string { return models.SourceWeb }

// sortTime 0 代表未知，排在最後
func sortTime(c Candidate) int {
	if t := c.CookTime(); t > 0 {
		return t
	}
	return unknownTime
}

// recipeFromFeed 探索清單列轉回外部食譜
func recipeFromFeed(item models.DiscoverFeedItem) models.ExternalRecipe {
	return models.ExternalRecipe{
		Name:       item.Name,
		Cuisine:    item.Cuisine,
		TimeMin:    item.TimeMin,
		Difficulty: item.Difficulty,
		Veg:        item.Veg,
		ImageURL:   item.ImageURL,
		SourceURL:  item.SourceURL,
	}
}
