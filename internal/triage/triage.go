// Package triage classifies and scores document pages to decide which
// merit further (costlier) extraction processing.
package triage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/specsift/specsift/internal/keywords"
)

// failureSnippetLength caps the descriptive snippet on per-page sentinels.
const failureSnippetLength = 100

// Reader yields per-page text from an opened document.
type Reader interface {
	PageCount() int
	PageText(ctx context.Context, pageNum int) (string, error)
}

// Page is the triage result for a single document page.
type Page struct {
	PageNum           int                     `json:"page_num"`
	Classification    keywords.Classification `json:"classification"`
	Score             float64                 `json:"score"`
	TextLength        int                     `json:"text_length"`
	MatchedKeywords   []string                `json:"matched_keywords"`
	MatchedCategories []string                `json:"matched_categories"`
	Snippet           string                  `json:"snippet"`
	Recommended       keywords.Recommendation `json:"recommended"`
}

// Result aggregates the triage of a whole document.
type Result struct {
	TotalPages   int    `json:"total_pages"`
	TextPages    int    `json:"text_pages"`
	DrawingPages int    `json:"drawing_pages"`
	Pages        []Page `json:"pages"`
}

// Request holds per-request triage options. CustomKeywords become a
// transient "custom" category; neither option mutates the shared bank.
type Request struct {
	CustomKeywords     []string
	DisabledCategories []string
	Logger             *slog.Logger
}

// Run scores every page of the document in order. A page whose text cannot
// be extracted degrades to a review sentinel instead of aborting the
// document. Run fails only when the context is cancelled.
func Run(ctx context.Context, doc Reader, bank keywords.Bank, req Request) (*Result, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}

	localBank := bank.WithCustom(req.CustomKeywords)
	disabled := toSet(req.DisabledCategories)

	total := doc.PageCount()
	result := &Result{
		TotalPages: total,
		Pages:      make([]Page, 0, total),
	}

	for pageNum := 1; pageNum <= total; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := doc.PageText(ctx, pageNum)
		if err != nil {
			log.Warn("page text extraction failed", "page", pageNum, "error", err)
			result.Pages = append(result.Pages, failurePage(pageNum, err))
			result.DrawingPages++
			continue
		}

		ps := keywords.Score(text, localBank, disabled)
		if ps.Classification == keywords.ClassificationText {
			result.TextPages++
		} else {
			result.DrawingPages++
		}

		result.Pages = append(result.Pages, Page{
			PageNum:           pageNum,
			Classification:    ps.Classification,
			Score:             ps.Score,
			TextLength:        utf8.RuneCountInString(text),
			MatchedKeywords:   ps.MatchedKeywords,
			MatchedCategories: ps.MatchedCategories,
			Snippet:           ps.Snippet,
			Recommended:       keywords.Recommend(ps.Score, ps.Classification),
		})
	}

	log.Debug("triage complete", "total", result.TotalPages, "text", result.TextPages, "drawing", result.DrawingPages)
	return result, nil
}

// failurePage builds the sentinel for a page whose text could not be read.
func failurePage(pageNum int, err error) Page {
	snippet := fmt.Sprintf("text extraction failed: %v", err)
	if runes := []rune(snippet); len(runes) > failureSnippetLength {
		snippet = string(runes[:failureSnippetLength])
	}
	return Page{
		PageNum:           pageNum,
		Classification:    keywords.ClassificationDrawing,
		Score:             0.0,
		MatchedKeywords:   []string{},
		MatchedCategories: []string{},
		Snippet:           snippet,
		Recommended:       keywords.RecommendReview,
	}
}

func toSet(items []string) map[string]struct{} {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			set[item] = struct{}{}
		}
	}
	return set
}
