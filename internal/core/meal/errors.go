package meal

import "errors"

var (
	// ErrFeedItemNotFound 探索項目不存在或不屬於該使用者
	ErrFeedItemNotFound = errors.New("discover feed item not found")
	// ErrDishNotFound 菜色不存在
	ErrDishNotFound = errors.New("dish not found")
	// ErrEmptyDishName 菜名不可為空
	ErrEmptyDishName = errors.New("dish name is required")
)
