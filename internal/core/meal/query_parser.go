package meal

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// 查詢運算子
const (
	opRequired = "+"
	opOptional = "|"
	opExcluded = "-"
)

var (
	andPattern      = regexp.MustCompile(`\band\b`)
	orPattern       = regexp.MustCompile(`\bor\b`)
	operatorPattern = regexp.MustCompile(`([+|\-])`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

// ingredientAliases 口語或音譯食材名稱對應的標準名稱
var ingredientAliases = map[string]string{
	"chkn":     "chicken",
	"chikn":    "chicken",
	"chk":      "chicken",
	"murghi":   "chicken",
	"qeema":    "keema",
	"keema":    "keema",
	"aloo":     "potato",
	"bhindi":   "okra",
	"saag":     "spinach",
	"machli":   "fish",
	"dal":      "dal",
	"daal":     "dal",
	"dāl":      "dal",
	"masoor":   "masoor dal",
	"moong":    "moong dal",
	"chanadal": "chana dal",
	"chana":    "chana dal",
	"mash":     "urad dal",
	"urad":     "urad dal",
	"chawal":   "rice",
	"chāwal":   "rice",
}

// ParsedQuery 食材查詢解析結果
type ParsedQuery struct {
	Required []string `json:"required"`
	Optional []string `json:"optional"`
	Excluded []string `json:"excluded"`
}

// All 三組 token 的聯集，保持出現順序
func (q ParsedQuery) All() []string {
	out := make([]string, 0, len(q.Required)+len(q.Optional)+len(q.Excluded))
	out = append(out, q.Required...)
	out = append(out, q.Optional...)
	out = append(out, q.Excluded...)
	return out
}

// Empty 是否沒有任何 token
func (q ParsedQuery) Empty() bool {
	return len(q.Required) == 0 && len(q.Optional) == 0 && len(q.Excluded) == 0
}

// NormalizeToken 去除複數 s 並套用別名表
//
// 只有去掉 s 後仍超過 3 個字元時才視為複數，"peas"、"nuts" 保持原樣。
func NormalizeToken(tok string) string {
	tok = norm.NFC.String(strings.TrimSpace(strings.ToLower(tok)))
	if strings.HasSuffix(tok, "s") && utf8.RuneCountInString(tok)-1 > 3 {
		tok = strings.TrimSuffix(tok, "s")
	}
	if alias, ok := ingredientAliases[tok]; ok {
		return alias
	}
	return tok
}

// ParseQuery 把自由文字轉成必要、可選、排除三組 token
//
// 逗號與空白同義；"and" 與 "+" 為必要，"or"、"/" 與 "|" 為可選，"-" 為排除。
// 同一 token 出現在多個運算子之後時以最後一次為準。
func ParseQuery(raw string) ParsedQuery {
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.ReplaceAll(s, ",", " ")
	s = strings.ReplaceAll(s, "/", " | ")
	s = andPattern.ReplaceAllString(s, " + ")
	s = orPattern.ReplaceAllString(s, " | ")
	s = operatorPattern.ReplaceAllString(s, " $1 ")
	s = spacePattern.ReplaceAllString(s, " ")

	bucket := make(map[string]string)
	order := make([]string, 0)
	current := opRequired
	for _, tok := range strings.Fields(s) {
		switch tok {
		case opRequired, opOptional, opExcluded:
			current = tok
			continue
		}
		tok = NormalizeToken(tok)
		if tok == "" {
			continue
		}
		if _, seen := bucket[tok]; !seen {
			order = append(order, tok)
		}
		bucket[tok] = current
	}

	var q ParsedQuery
	for _, tok := range order {
		switch bucket[tok] {
		case opRequired:
			q.Required = append(q.Required, tok)
		case opOptional:
			q.Optional = append(q.Optional, tok)
		case opExcluded:
			q.Excluded = append(q.Excluded, tok)
		}
	}
	return q
}

// IngredientTerms 把菜色的食材描述拆成去重後的食材名稱
//
// 所有運算子都只當作分隔符號。
func IngredientTerms(text string) []string {
	s := strings.ToLower(text)
	s = strings.NewReplacer(",", " ", "+", " ", "|", " ", "-", " ", "/", " ").Replace(s)

	seen := make(map[string]bool)
	terms := make([]string, 0)
	for _, tok := range strings.Fields(s) {
		tok = NormalizeToken(tok)
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
	}
	return terms
}
