package meal

import (
	"regexp"
	"sort"
	"strings"

	"mealmind/internal/models"
	"mealmind/internal/pkg/common"
)

var wordPattern = regexp.MustCompile(`[a-z]+`)

// affinityCuisines 與使用者飲食圈相關的菜系，外部結果額外加一分
var affinityCuisines = map[string]bool{
	"pakistani":   true,
	"indian":      true,
	"bangladeshi": true,
	"afghan":      true,
}

// queryWords 查詢中的英文單字（去掉 and/or），並加入別名形式
func queryWords(raw string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(strings.ToLower(raw), -1) {
		if w == "and" || w == "or" {
			continue
		}
		words[w] = true
		for _, part := range strings.Fields(NormalizeToken(w)) {
			words[part] = true
		}
	}
	return words
}

// nameOverlap 名稱與查詢共有的單字數
func nameOverlap(query map[string]bool, name string) int {
	seen := make(map[string]bool)
	n := 0
	for _, w := range wordPattern.FindAllString(strings.ToLower(name), -1) {
		if query[w] && !seen[w] {
			n++
		}
		seen[w] = true
	}
	return n
}

// ScoreExternal 外部結果分數 = 1 + 名稱重疊字數 + 菜系加成
func ScoreExternal(raw string, recipes []models.ExternalRecipe) []ExternalCandidate {
	words := queryWords(raw)
	out := make([]ExternalCandidate, 0, len(recipes))
	for _, r := range recipes {
		score := 1 + nameOverlap(words, r.Name)
		if affinityCuisines[strings.ToLower(strings.TrimSpace(r.Cuisine))] {
			score++
		}
		out = append(out, ExternalCandidate{Recipe: r, MatchScore: score})
	}
	return out
}

// Combine 合併本地與外部結果：以名稱去重（本地優先），再依分數、來源、時間、名稱排序
func Combine(raw string, local []LocalCandidate, external []models.ExternalRecipe) []Candidate {
	merged := make([]Candidate, 0, len(local)+len(external))
	seen := make(map[string]bool, len(local)+len(external))
	add := func(c Candidate) {
		key := common.NameKey(c.Name())
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		merged = append(merged, c)
	}
	for _, c := range local {
		add(c)
	}
	for _, c := range ScoreExternal(raw, external) {
		add(c)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Score() != b.Score() {
			return a.Score() > b.Score()
		}
		if a.Source() != b.Source() {
			return a.Source() == models.SourceLibrary
		}
		if ta, tb := sortTime(a), sortTime(b); ta != tb {
			return ta < tb
		}
		return strings.ToLower(a.Name()) < strings.ToLower(b.Name())
	})
	return merged
}
