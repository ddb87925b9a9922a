package keywords

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalize(t *testing.T) {
	t.Run("lowercases and strips punctuation", func(t *testing.T) {
		got := Normalize("LED Display, 40' x 22' (Outdoor)!")
		want := "led display 40 x 22 outdoor"
		if got != want {
			t.Errorf("Normalize() = %q, want %q", got, want)
		}
	})

	t.Run("collapses whitespace", func(t *testing.T) {
		got := Normalize("  pixel\n\npitch\t\t10mm  ")
		want := "pixel pitch 10mm"
		if got != want {
			t.Errorf("Normalize() = %q, want %q", got, want)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		inputs := []string{
			"LED Display, 40' x 22'",
			"  multi\n line \t text!! ",
			"",
			"already normalized text",
			"sym#bols$ever%ywhere^",
		}
		for _, in := range inputs {
			once := Normalize(in)
			twice := Normalize(once)
			if once != twice {
				t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
			}
		}
	})
}

func TestScore_DrawingHeuristic(t *testing.T) {
	bank := DefaultBank()

	t.Run("empty text", func(t *testing.T) {
		ps := Score("", bank, nil)
		if ps.Classification != ClassificationDrawing {
			t.Errorf("Classification = %q, want drawing", ps.Classification)
		}
		if ps.Score != 0.0 {
			t.Errorf("Score = %v, want 0.0", ps.Score)
		}
	})

	t.Run("short text below threshold classified as drawing even with keywords", func(t *testing.T) {
		ps := Score("led display scoreboard", bank, nil)
		if ps.Classification != ClassificationDrawing {
			t.Errorf("Classification = %q, want drawing", ps.Classification)
		}
		if ps.Score != 0.0 {
			t.Errorf("Score = %v, want 0.0", ps.Score)
		}
		if len(ps.MatchedKeywords) != 0 || len(ps.MatchedCategories) != 0 {
			t.Error("expected empty match sets for drawing page")
		}
		if ps.Snippet != "" {
			t.Errorf("Snippet = %q, want empty", ps.Snippet)
		}
	})

	t.Run("whitespace padding does not count toward length", func(t *testing.T) {
		text := "short   " + strings.Repeat(" ", 100)
		ps := Score(text, bank, nil)
		if ps.Classification != ClassificationDrawing {
			t.Errorf("Classification = %q, want drawing", ps.Classification)
		}
	})

	t.Run("text at threshold classified as text", func(t *testing.T) {
		text := strings.Repeat("x ", MinTextLength) // well past 50 chars
		ps := Score(text, bank, nil)
		if ps.Classification != ClassificationText {
			t.Errorf("Classification = %q, want text", ps.Classification)
		}
	})

	t.Run("threshold counts runes not bytes", func(t *testing.T) {
		// 30 characters, 60 bytes: below the threshold either way only
		// when length is measured in runes.
		text := strings.Repeat("é", 30)
		ps := Score(text, bank, nil)
		if ps.Classification != ClassificationDrawing {
			t.Errorf("Classification = %q, want drawing for 30-character page", ps.Classification)
		}
	})
}

func TestScore_WholePhrase(t *testing.T) {
	bank := Bank{"display_hardware": {"led display"}, "test": {"led"}}
	filler := strings.Repeat("lorem ipsum dolor sit amet ", 4)

	t.Run("keyword does not match inside larger word", func(t *testing.T) {
		ps := Score(filler+"general ledger reconciliation", bank, nil)
		if ps.Score != 0 {
			t.Errorf("Score = %v, want 0 (ledger must not match led)", ps.Score)
		}
		if len(ps.MatchedKeywords) != 0 {
			t.Errorf("MatchedKeywords = %v, want none", ps.MatchedKeywords)
		}
	})

	t.Run("multi-word phrase matches", func(t *testing.T) {
		ps := Score(filler+"the led display measures forty feet", bank, nil)
		found := false
		for _, kw := range ps.MatchedKeywords {
			if kw == "led display" {
				found = true
			}
		}
		if !found {
			t.Errorf("MatchedKeywords = %v, want to contain %q", ps.MatchedKeywords, "led display")
		}
	})

	t.Run("phrase survives punctuation normalization", func(t *testing.T) {
		ps := Score(filler+"LED-Display specifications attached", bank, nil)
		if len(ps.MatchedKeywords) == 0 {
			t.Error("expected led display to match after hyphen normalization")
		}
	})
}

func TestScore_SqrtDenominator(t *testing.T) {
	bank := Bank{"specs": {"brightness"}}
	filler := func(n int) string { return strings.Repeat("zz ", n) }

	t.Run("monotonic in hit count for fixed length", func(t *testing.T) {
		base := filler(40)
		one := Score(base+"brightness "+filler(4), bank, nil)
		two := Score(base+"brightness brightness", bank, nil)
		if two.Score < one.Score {
			t.Errorf("score with two hits (%v) < score with one hit (%v)", two.Score, one.Score)
		}
	})

	t.Run("strictly decreasing in length for fixed hits", func(t *testing.T) {
		short := Score("brightness "+filler(20), bank, nil)
		long := Score("brightness "+filler(200), bank, nil)
		if long.Score >= short.Score {
			t.Errorf("longer page score %v not below shorter page score %v", long.Score, short.Score)
		}
	})

	t.Run("score uses sqrt of normalized length", func(t *testing.T) {
		text := "brightness " + filler(30)
		ps := Score(text, bank, nil)
		normalized := Normalize(text)
		want := math.Round(1/math.Sqrt(float64(len(normalized)))*10000) / 10000
		if ps.Score != want {
			t.Errorf("Score = %v, want %v", ps.Score, want)
		}
	})
}

func TestScore_Categories(t *testing.T) {
	filler := strings.Repeat("pad words here ", 4)

	t.Run("disabled categories are skipped", func(t *testing.T) {
		bank := Bank{
			"specs":      {"brightness"},
			"electrical": {"voltage"},
		}
		disabled := map[string]struct{}{"electrical": {}}
		ps := Score(filler+"brightness and voltage requirements", bank, disabled)
		if len(ps.MatchedCategories) != 1 || ps.MatchedCategories[0] != "specs" {
			t.Errorf("MatchedCategories = %v, want [specs]", ps.MatchedCategories)
		}
		for _, kw := range ps.MatchedKeywords {
			if kw == "voltage" {
				t.Error("disabled category keyword should not match")
			}
		}
	})

	t.Run("unknown disabled category is a no-op", func(t *testing.T) {
		bank := Bank{"specs": {"brightness"}}
		disabled := map[string]struct{}{"no_such_category": {}}
		ps := Score(filler+"brightness levels specified", bank, disabled)
		if len(ps.MatchedCategories) != 1 {
			t.Errorf("MatchedCategories = %v, want [specs]", ps.MatchedCategories)
		}
	})

	t.Run("duplicate keyword across categories recorded per category", func(t *testing.T) {
		bank := Bank{
			"control_data":  {"novastar"},
			"manufacturers": {"novastar"},
		}
		ps := Score(filler+"novastar controller on site", bank, nil)
		if len(ps.MatchedKeywords) != 2 {
			t.Errorf("MatchedKeywords = %v, want novastar twice", ps.MatchedKeywords)
		}
		if len(ps.MatchedCategories) != 2 {
			t.Errorf("MatchedCategories = %v, want both categories", ps.MatchedCategories)
		}
	})
}

func TestScore_Snippet(t *testing.T) {
	bank := DefaultBank()

	t.Run("snippet is original text with newlines flattened", func(t *testing.T) {
		text := "Line one of the page\nLine two of the page with more content to pass the length gate"
		ps := Score(text, bank, nil)
		if strings.Contains(ps.Snippet, "\n") {
			t.Error("snippet contains newline")
		}
		if !strings.HasPrefix(ps.Snippet, "Line one of the page Line two") {
			t.Errorf("Snippet = %q", ps.Snippet)
		}
	})

	t.Run("snippet truncated to limit", func(t *testing.T) {
		text := strings.Repeat("a", 500)
		ps := Score(text, bank, nil)
		if len(ps.Snippet) != SnippetLength {
			t.Errorf("len(Snippet) = %d, want %d", len(ps.Snippet), SnippetLength)
		}
	})

	t.Run("truncation never splits a multibyte character", func(t *testing.T) {
		text := strings.Repeat("é", 500)
		ps := Score(text, bank, nil)
		if !utf8.ValidString(ps.Snippet) {
			t.Errorf("Snippet is not valid UTF-8: %q", ps.Snippet)
		}
		if got := utf8.RuneCountInString(ps.Snippet); got != SnippetLength {
			t.Errorf("snippet rune count = %d, want %d", got, SnippetLength)
		}
	})
}

func TestBank_Overlays(t *testing.T) {
	t.Run("WithCustom does not mutate base bank", func(t *testing.T) {
		base := DefaultBank()
		before := len(base)
		overlay := base.WithCustom([]string{"jumbotron", "halo board"})

		if len(base) != before {
			t.Error("base bank category count changed")
		}
		if _, ok := base[CustomCategory]; ok {
			t.Error("custom category leaked into base bank")
		}
		if phrases, ok := overlay[CustomCategory]; !ok || len(phrases) != 2 {
			t.Errorf("overlay custom category = %v", phrases)
		}
	})

	t.Run("WithCustom empty phrases returns receiver", func(t *testing.T) {
		base := DefaultBank()
		overlay := base.WithCustom(nil)
		if len(overlay) != len(base) {
			t.Error("empty custom overlay should not add categories")
		}
	})

	t.Run("custom keywords score under custom category", func(t *testing.T) {
		bank := DefaultBank().WithCustom([]string{"halo board"})
		filler := strings.Repeat("unrelated filler words ", 3)
		ps := Score(filler+"the halo board above center court", bank, nil)
		found := false
		for _, c := range ps.MatchedCategories {
			if c == CustomCategory {
				found = true
			}
		}
		if !found {
			t.Errorf("MatchedCategories = %v, want to contain custom", ps.MatchedCategories)
		}
	})

	t.Run("WithExtra appends to existing category without mutation", func(t *testing.T) {
		base := Bank{"specs": {"brightness"}}
		overlay := base.WithExtra(map[string][]string{"specs": {"halation"}})
		if len(base["specs"]) != 1 {
			t.Errorf("base specs = %v, mutated", base["specs"])
		}
		if len(overlay["specs"]) != 2 {
			t.Errorf("overlay specs = %v, want 2 phrases", overlay["specs"])
		}
	})
}

func TestRecommend(t *testing.T) {
	cases := []struct {
		name           string
		score          float64
		classification Classification
		want           Recommendation
	}{
		{"zero score discards", 0.0, ClassificationText, RecommendDiscard},
		{"low score maybe", 0.15, ClassificationText, RecommendMaybe},
		{"threshold keeps", 0.3, ClassificationText, RecommendKeep},
		{"high score keeps", 0.5, ClassificationText, RecommendKeep},
		{"drawing always review", 0.0, ClassificationDrawing, RecommendReview},
		{"drawing with high score still review", 0.9, ClassificationDrawing, RecommendReview},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Recommend(tc.score, tc.classification)
			if got != tc.want {
				t.Errorf("Recommend(%v, %s) = %q, want %q", tc.score, tc.classification, got, tc.want)
			}
		})
	}
}
