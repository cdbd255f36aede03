// Package memory 記憶體版的資料存取，供本機試用與測試，重啟後資料即消失
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"mealmind/internal/models"
)

// Store 以 map 實作所有資料存取介面
type Store struct {
	mu          sync.Mutex
	nextID      uint
	dishes      map[uint]*models.Dish
	ingredients map[uint]models.Ingredient
	links       map[uint]map[uint]bool
	library     map[[2]uint]*models.LibraryEntry
	plans       map[planKey]*models.DayPlanEntry
	prefs       map[uint]*models.Preferences
	feed        map[uint]*models.DiscoverFeedItem
}

type planKey struct {
	user uint
	date time.Time
}

// NewStore 創建空的記憶體 Store
func NewStore() *Store {
	return &Store{
		dishes:      make(map[uint]*models.Dish),
		ingredients: make(map[uint]models.Ingredient),
		links:       make(map[uint]map[uint]bool),
		library:     make(map[[2]uint]*models.LibraryEntry),
		plans:       make(map[planKey]*models.DayPlanEntry),
		prefs:       make(map[uint]*models.Preferences),
		feed:        make(map[uint]*models.DiscoverFeedItem),
	}
}

// Ping 永遠可用
func (m *Store) Ping(context.Context) error { return nil }

// DishCount 菜色總數
func (m *Store) DishCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dishes)
}

// dateOf 與 meal.DateOf 相同：取日曆日期，以 UTC 午夜表示
func dateOf(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func (m *Store) id() uint {
	m.nextID++
	return m.nextID
}

// dishCopy 回傳帶食材的副本，呼叫端需持有鎖
func (m *Store) dishCopy(id uint) models.Dish {
	d := *m.dishes[id]
	d.Ingredients = nil
	ids := make([]uint, 0, len(m.links[id]))
	for ingID := range m.links[id] {
		ids = append(ids, ingID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, ingID := range ids {
		d.Ingredients = append(d.Ingredients, m.ingredients[ingID])
	}
	return d
}

func (m *Store) FindDishByID(_ context.Context, id uint) (*models.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dishes[id]; !ok {
		return nil, nil
	}
	d := m.dishCopy(id)
	return &d, nil
}

func (m *Store) FindDishByName(_ context.Context, name string) (*models.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, d := range m.dishes {
		if d.Name == name {
			c := m.dishCopy(id)
			return &c, nil
		}
	}
	return nil, nil
}

// SearchDishesByName 完全相符優先，其次名稱較短者
func (m *Store) SearchDishesByName(_ context.Context, text string, limit int) ([]models.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	needle := strings.ToLower(text)
	var out []models.Dish
	for id, d := range m.dishes {
		if strings.Contains(strings.ToLower(d.Name), needle) {
			out = append(out, m.dishCopy(id))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ei := strings.EqualFold(out[i].Name, text)
		ej := strings.EqualFold(out[j].Name, text)
		if ei != ej {
			return ei
		}
		if len(out[i].Name) != len(out[j].Name) {
			return len(out[i].Name) < len(out[j].Name)
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Store) ListDishesByIngredients(_ context.Context, ingredientIDs []uint) ([]models.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Dish
	for id := range m.dishes {
		for _, ingID := range ingredientIDs {
			if m.links[id][ingID] {
				out = append(out, m.dishCopy(id))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Store) CreateDish(_ context.Context, dish *models.Dish) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	dish.ID = m.id()
	if dish.CreatedAt.IsZero() {
		dish.CreatedAt = time.Now()
	}
	c := *dish
	c.Ingredients = nil
	m.dishes[dish.ID] = &c
	return nil
}

func (m *Store) UpdateDishImageIfEmpty(_ context.Context, dishID uint, imageURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.dishes[dishID]; ok && d.ImageURL == "" {
		d.ImageURL = imageURL
	}
	return nil
}

func (m *Store) FindIngredientsByNames(_ context.Context, names []string) ([]models.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []models.Ingredient
	for _, ing := range m.ingredients {
		if want[ing.Name] {
			out = append(out, ing)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Store) ListIngredients(_ context.Context) ([]models.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Ingredient, 0, len(m.ingredients))
	for _, ing := range m.ingredients {
		out = append(out, ing)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Store) EnsureIngredient(_ context.Context, name string) (*models.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ing := range m.ingredients {
		if ing.Name == name {
			c := ing
			return &c, nil
		}
	}
	ing := models.Ingredient{ID: m.id(), Name: name}
	m.ingredients[ing.ID] = ing
	return &ing, nil
}

func (m *Store) LinkIngredient(_ context.Context, dishID, ingredientID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.links[dishID] == nil {
		m.links[dishID] = make(map[uint]bool)
	}
	m.links[dishID][ingredientID] = true
	return nil
}

func (m *Store) ListActive(_ context.Context, userID uint, keep func(*models.Dish) bool) ([]models.LibraryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.LibraryEntry
	for key, e := range m.library {
		if key[0] != userID || !e.Active {
			continue
		}
		c := *e
		c.Dish = m.dishCopy(e.DishID)
		if keep != nil && !keep(&c.Dish) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Store) UpsertMembership(_ context.Context, userID, dishID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]uint{userID, dishID}
	if e, ok := m.library[key]; ok {
		e.Active = true
		return nil
	}
	m.library[key] = &models.LibraryEntry{
		ID:        m.id(),
		UserID:    userID,
		DishID:    dishID,
		Active:    true,
		CreatedAt: time.Now(),
	}
	return nil
}

func (m *Store) Deactivate(_ context.Context, userID, dishID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.library[[2]uint{userID, dishID}]; ok {
		e.Active = false
	}
	return nil
}

func (m *Store) TouchLastCooked(_ context.Context, userID, dishID uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.library[[2]uint{userID, dishID}]; ok {
		t := at
		e.LastCookedAt = &t
	}
	return nil
}

func (m *Store) FindDayPlan(_ context.Context, userID uint, date time.Time) (*models.DayPlanEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[planKey{userID, dateOf(date)}]
	if !ok {
		return nil, nil
	}
	c := *p
	if _, ok := m.dishes[p.DishID]; ok {
		c.Dish = m.dishCopy(p.DishID)
	}
	return &c, nil
}

func (m *Store) CreateDayPlanIfAbsent(_ context.Context, entry *models.DayPlanEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := planKey{entry.UserID, dateOf(entry.Date)}
	if _, ok := m.plans[key]; ok {
		return nil
	}
	entry.ID = m.id()
	c := *entry
	m.plans[key] = &c
	return nil
}

func (m *Store) UpsertDayPlan(_ context.Context, entry *models.DayPlanEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := planKey{entry.UserID, dateOf(entry.Date)}
	if p, ok := m.plans[key]; ok {
		p.DishID = entry.DishID
		p.IsOverride = entry.IsOverride
		entry.ID = p.ID
		return nil
	}
	entry.ID = m.id()
	c := *entry
	m.plans[key] = &c
	return nil
}

func (m *Store) ListPlannedDishIDs(_ context.Context, userID uint, from, to time.Time) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	from, to = dateOf(from), dateOf(to)
	var out []uint
	for key, p := range m.plans {
		if key.user != userID || key.date.Before(from) || key.date.After(to) {
			continue
		}
		out = append(out, p.DishID)
	}
	return out, nil
}

func (m *Store) ListRecentPlans(_ context.Context, userID uint, limit int) ([]models.DayPlanEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DayPlanEntry
	for key, p := range m.plans {
		if key.user == userID {
			c := *p
			if _, ok := m.dishes[p.DishID]; ok {
				c.Dish = m.dishCopy(p.DishID)
			}
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Store) FindPreferences(_ context.Context, userID uint) (*models.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prefs[userID]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (m *Store) CreatePreferences(_ context.Context, prefs *models.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.prefs[prefs.UserID]; ok {
		return nil
	}
	c := *prefs
	m.prefs[prefs.UserID] = &c
	return nil
}

func (m *Store) SavePreferences(_ context.Context, prefs *models.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefs.UpdatedAt = time.Now()
	c := *prefs
	m.prefs[prefs.UserID] = &c
	return nil
}

func (m *Store) ListFeedItems(_ context.Context, userID uint, weekStart time.Time) ([]models.DiscoverFeedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	week := dateOf(weekStart)
	var out []models.DiscoverFeedItem
	for _, item := range m.feed {
		if item.UserID != userID || !dateOf(item.WeekStart).Equal(week) {
			continue
		}
		c := *item
		if c.DishID != nil {
			if _, ok := m.dishes[*c.DishID]; ok {
				d := m.dishCopy(*c.DishID)
				c.Dish = &d
			}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortRank < out[j].SortRank })
	return out, nil
}

// ReplaceWeek 刪除該週所有列後整批寫入
func (m *Store) ReplaceWeek(_ context.Context, userID uint, weekStart time.Time, items []models.DiscoverFeedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	week := dateOf(weekStart)
	for id, item := range m.feed {
		if item.UserID == userID && dateOf(item.WeekStart).Equal(week) {
			delete(m.feed, id)
		}
	}
	for i := range items {
		items[i].ID = m.id()
		items[i].UserID = userID
		items[i].WeekStart = week
		c := items[i]
		c.Dish = nil
		m.feed[c.ID] = &c
	}
	return nil
}

func (m *Store) FindFeedItem(_ context.Context, userID, itemID uint) (*models.DiscoverFeedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.feed[itemID]
	if !ok || item.UserID != userID {
		return nil, nil
	}
	c := *item
	return &c, nil
}

func (m *Store) LinkFeedItem(_ context.Context, itemID, dishID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.feed[itemID]; ok {
		id := dishID
		item.DishID = &id
	}
	return nil
}
