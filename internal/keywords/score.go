package keywords

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// Classification of a page based on its extractable text.
type Classification string

const (
	// ClassificationText marks a page with enough text to score lexically.
	ClassificationText Classification = "text"
	// ClassificationDrawing marks a page with too little extractable text
	// to score, presumed to be a drawing or diagram.
	ClassificationDrawing Classification = "drawing"
)

const (
	// MinTextLength is the minimum trimmed character count for a page to be
	// classified as text. Pages below it are presumed drawings regardless of
	// content.
	MinTextLength = 50

	// SnippetLength is the maximum length of the human-review snippet.
	SnippetLength = 200
)

// PageScore is the result of scoring one page's text against a bank.
type PageScore struct {
	Classification    Classification `json:"classification"`
	Score             float64        `json:"score"`
	MatchedKeywords   []string       `json:"matched_keywords"`
	MatchedCategories []string       `json:"matched_categories"`
	Snippet           string         `json:"snippet"`
}

// phrasePatterns caches compiled whole-phrase patterns. Bank phrases are a
// small fixed vocabulary so the cache stays bounded in practice.
var phrasePatterns sync.Map // phrase -> *regexp.Regexp

func phrasePattern(phrase string) *regexp.Regexp {
	if cached, ok := phrasePatterns.Load(phrase); ok {
		return cached.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(phrase)) + `\b`)
	phrasePatterns.Store(phrase, re)
	return re
}

// Score scores a page's text against the bank, skipping disabled categories.
// Pages whose trimmed text is shorter than MinTextLength are classified as
// drawings with a zero score. The score for text pages is the total phrase
// hit count divided by the square root of the normalized text length,
// rounded to 4 decimal places.
func Score(text string, bank Bank, disabled map[string]struct{}) PageScore {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextLength {
		return PageScore{
			Classification:    ClassificationDrawing,
			Score:             0.0,
			MatchedKeywords:   []string{},
			MatchedCategories: []string{},
			Snippet:           "",
		}
	}

	normalized := Normalize(text)

	hits := 0
	matchedKeywords := []string{}
	matchedCategories := []string{}

	// Iterate categories in sorted order so matched keyword order is stable.
	for _, category := range bank.Categories() {
		if _, skip := disabled[category]; skip {
			continue
		}
		categoryHit := false
		for _, kw := range bank[category] {
			count := len(phrasePattern(kw).FindAllStringIndex(normalized, -1))
			if count > 0 {
				hits += count
				matchedKeywords = append(matchedKeywords, kw)
				categoryHit = true
			}
		}
		if categoryHit {
			matchedCategories = append(matchedCategories, category)
		}
	}
	sort.Strings(matchedCategories)

	score := 0.0
	if n := utf8.RuneCountInString(normalized); n > 0 {
		score = float64(hits) / math.Sqrt(float64(n))
		score = math.Round(score*10000) / 10000
	}

	return PageScore{
		Classification:    ClassificationText,
		Score:             score,
		MatchedKeywords:   matchedKeywords,
		MatchedCategories: matchedCategories,
		Snippet:           makeSnippet(text, SnippetLength),
	}
}

// makeSnippet returns the first limit characters of the original text with
// newlines flattened to spaces. Cosmetic metadata for human review only.
// Truncation counts runes so a multibyte character is never split.
func makeSnippet(text string, limit int) string {
	s := strings.TrimSpace(text)
	if runes := []rune(s); len(runes) > limit {
		s = string(runes[:limit])
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "\r", " ")
}
