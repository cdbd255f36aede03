package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mealmind/internal/core/meal"
	"mealmind/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store 以 postgres 實作引擎的所有資料存取
type Store struct {
	db *gorm.DB
}

var _ meal.Store = (*Store)(nil)

// NewStore 創建 Store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB 底層連線
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) with(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// first 查無資料時回傳 false 而非錯誤
func first(tx *gorm.DB, dest interface{}) (bool, error) {
	err := tx.First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// escapeLike 跳脫 LIKE 的萬用字元
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ---- 菜色與食材 ----

// FindDishByID 依 ID 查詢菜色
func (s *Store) FindDishByID(ctx context.Context, id uint) (*models.Dish, error) {
	var dish models.Dish
	ok, err := first(s.with(ctx).Preload("Ingredients").Where("id = ?", id), &dish)
	if err != nil || !ok {
		return nil, wrap("find dish", err)
	}
	return &dish, nil
}

// FindDishByName 依名稱精確查詢
func (s *Store) FindDishByName(ctx context.Context, name string) (*models.Dish, error) {
	var dish models.Dish
	ok, err := first(s.with(ctx).Preload("Ingredients").Where("name = ?", name), &dish)
	if err != nil || !ok {
		return nil, wrap("find dish by name", err)
	}
	return &dish, nil
}

// SearchDishesByName 名稱包含 text，完全相符優先，其次名稱較短者
func (s *Store) SearchDishesByName(ctx context.Context, text string, limit int) ([]models.Dish, error) {
	needle := strings.ToLower(text)
	tx := s.with(ctx).
		Preload("Ingredients").
		Where("LOWER(name) LIKE ?", "%"+escapeLike(needle)+"%").
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                "CASE WHEN LOWER(name) = ? THEN 0 ELSE 1 END, LENGTH(name), name",
			Vars:               []interface{}{needle},
			WithoutParentheses: true,
		}})
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var dishes []models.Dish
	if err := tx.Find(&dishes).Error; err != nil {
		return nil, wrap("search dishes", err)
	}
	return dishes, nil
}

// ListDishesByIngredients 連結到任一指定食材的菜色
func (s *Store) ListDishesByIngredients(ctx context.Context, ingredientIDs []uint) ([]models.Dish, error) {
	if len(ingredientIDs) == 0 {
		return nil, nil
	}

	linked := s.with(ctx).Model(&models.DishIngredient{}).
		Select("dish_id").
		Where("ingredient_id IN ?", ingredientIDs)

	var dishes []models.Dish
	err := s.with(ctx).
		Preload("Ingredients").
		Where("id IN (?)", linked).
		Order("id").
		Find(&dishes).Error
	if err != nil {
		return nil, wrap("list dishes by ingredients", err)
	}
	return dishes, nil
}

// CreateDish 新增菜色，不處理食材關聯
func (s *Store) CreateDish(ctx context.Context, dish *models.Dish) error {
	return wrap("create dish", s.with(ctx).Omit(clause.Associations).Create(dish).Error)
}

// UpdateDishImageIfEmpty 只在原本沒有圖片時寫入
func (s *Store) UpdateDishImageIfEmpty(ctx context.Context, dishID uint, imageURL string) error {
	err := s.with(ctx).Model(&models.Dish{}).
		Where("id = ? AND (image_url IS NULL OR image_url = '')", dishID).
		Update("image_url", imageURL).Error
	return wrap("update dish image", err)
}

// FindIngredientsByNames 依名稱精確查詢
func (s *Store) FindIngredientsByNames(ctx context.Context, names []string) ([]models.Ingredient, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var out []models.Ingredient
	if err := s.with(ctx).Where("name IN ?", names).Find(&out).Error; err != nil {
		return nil, wrap("find ingredients", err)
	}
	return out, nil
}

// ListIngredients 所有食材，依名稱排序
func (s *Store) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	var out []models.Ingredient
	if err := s.with(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, wrap("list ingredients", err)
	}
	return out, nil
}

// EnsureIngredient 依名稱取得或建立
func (s *Store) EnsureIngredient(ctx context.Context, name string) (*models.Ingredient, error) {
	ing := models.Ingredient{Name: name}
	err := s.with(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&ing).Error
	if err != nil {
		return nil, wrap("create ingredient", err)
	}
	if ing.ID != 0 {
		return &ing, nil
	}

	// 衝突時 RETURNING 沒有資料，重新讀取
	var existing models.Ingredient
	if err := s.with(ctx).Where("name = ?", name).First(&existing).Error; err != nil {
		return nil, wrap("find ingredient", err)
	}
	return &existing, nil
}

// LinkIngredient 重複連結為 no-op
func (s *Store) LinkIngredient(ctx context.Context, dishID, ingredientID uint) error {
	err := s.with(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.DishIngredient{DishID: dishID, IngredientID: ingredientID}).Error
	return wrap("link ingredient", err)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
