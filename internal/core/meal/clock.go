package meal

import (
	"math/rand"
	"sync"
	"time"
)

// Clock 提供目前時間，測試時可替換
type Clock interface {
	Now() time.Time
}

// SystemClock 使用系統時間
type SystemClock struct {
	Location *time.Location
}

// Now 回傳目前時間
func (c SystemClock) Now() time.Time {
	if c.Location != nil {
		return time.Now().In(c.Location)
	}
	return time.Now()
}

// FixedClock 固定時間
type FixedClock struct {
	At time.Time
}

// Now 回傳固定時間
func (c FixedClock) Now() time.Time {
	return c.At
}

// DateOf 取日曆日期，以 UTC 午夜表示
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart 回傳當天或之前最近的星期一
func WeekStart(day time.Time) time.Time {
	day = DateOf(day)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// DaysBetween 兩個日曆日期相差的天數
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// RandSource 隨機來源，抖動與洗牌都經由它
type RandSource interface {
	Float64() float64
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// lockedRand 可在多個請求間共用的隨機來源
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRand 建立隨機來源，seed 為 0 時以目前時間為種子
func NewRand(seed int64) RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{rng: rand.New(rand.NewSource(seed))}
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

func (r *lockedRand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(n, swap)
}
