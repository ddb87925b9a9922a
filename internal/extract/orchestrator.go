// Package extract orchestrates specification extraction: it partitions
// triaged pages into a text cohort and a drawing cohort, materializes
// backend-specific payloads, dispatches both cohorts concurrently, and
// merges provenance-tagged results.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/specsift/specsift/internal/backends"
	"github.com/specsift/specsift/internal/keywords"
	"github.com/specsift/specsift/internal/pdf"
	"github.com/specsift/specsift/internal/triage"
)

// Renderer materializes page content from an opened document: plain text
// for the text cohort, rasterized PNGs for the drawing cohort.
type Renderer interface {
	PageText(ctx context.Context, pageNum int) (string, error)
	RenderPage(ctx context.Context, pageNum, dpi int) ([]byte, error)
}

// Request holds one extraction run's inputs. Pages is the prior triage
// result; Selected optionally narrows it to explicit page numbers.
type Request struct {
	Pages          []triage.Page
	Selected       []int
	ProjectContext string
	DPI            int
	Logger         *slog.Logger
}

// Result is the merged outcome of one extraction run.
type Result struct {
	Screens               []backends.ScreenRecord `json:"screens"`
	TotalScreens          int                     `json:"total_screens"`
	ScreensFromText       int                     `json:"screens_from_text"`
	ScreensFromDrawings   int                     `json:"screens_from_drawings"`
	TextPagesProcessed    int                     `json:"text_pages_processed"`
	DrawingPagesProcessed int                     `json:"drawing_pages_processed"`
	ProcessingTimeMS      int64                   `json:"processing_time_ms"`
}

// Orchestrator fans extraction work out to the two backends.
type Orchestrator struct {
	text   backends.TextExtractor
	vision backends.VisionExtractor
}

// New creates an Orchestrator over the given backends.
func New(text backends.TextExtractor, vision backends.VisionExtractor) *Orchestrator {
	return &Orchestrator{text: text, vision: vision}
}

// branch is one unit of concurrent dispatch: either the single batched
// text call or one per-image vision call. The fan-out/fan-in barrier below
// treats both variants identically.
type branch func(ctx context.Context) []backends.ScreenRecord

// Run partitions eligible pages into cohorts, dispatches both cohorts
// concurrently, and merges the results. A failure in any branch degrades
// to sentinel records for its own pages and never blocks other branches.
// With no eligible pages Run short-circuits without touching a backend.
func (o *Orchestrator) Run(ctx context.Context, doc Renderer, req Request) *Result {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}
	dpi := req.DPI
	if dpi <= 0 {
		dpi = pdf.DefaultDPI
	}

	textCohort, drawingCohort := partition(req.Pages, req.Selected)
	result := &Result{
		Screens:               []backends.ScreenRecord{},
		TextPagesProcessed:    len(textCohort),
		DrawingPagesProcessed: len(drawingCohort),
	}

	// Backend calls are costly; with nothing eligible there is nothing to do.
	if len(textCohort) == 0 && len(drawingCohort) == 0 {
		return result
	}

	start := time.Now()
	log.Info("starting extraction", "text_pages", len(textCohort), "drawing_pages", len(drawingCohort))

	// Materialize payloads. A page that cannot be materialized degrades to
	// a sentinel for that page; the rest of its cohort proceeds.
	var merged []backends.ScreenRecord

	textPayloads := make([]backends.TextPayload, 0, len(textCohort))
	for _, pageNum := range textCohort {
		text, err := doc.PageText(ctx, pageNum)
		if err != nil {
			log.Warn("text materialization failed", "page", pageNum, "error", err)
			merged = append(merged, backends.APIErrorRecord(pageNum, backends.SourceTypeText,
				fmt.Sprintf("failed to read page text: %v", err)))
			continue
		}
		textPayloads = append(textPayloads, backends.TextPayload{PageNum: pageNum, Text: text})
	}

	imagePayloads := make([]backends.ImagePayload, 0, len(drawingCohort))
	for _, pageNum := range drawingCohort {
		png, err := doc.RenderPage(ctx, pageNum, dpi)
		if err != nil {
			log.Warn("page rasterization failed", "page", pageNum, "error", err)
			merged = append(merged, backends.APIErrorRecord(pageNum, backends.SourceTypeDrawing,
				fmt.Sprintf("failed to rasterize page: %v", err)))
			continue
		}
		imagePayloads = append(imagePayloads, backends.ImagePayload{PageNum: pageNum, PNG: png})
	}

	// Build branches: one batched text call, one vision call per image.
	var branches []branch
	if len(textPayloads) > 0 {
		branches = append(branches, func(ctx context.Context) []backends.ScreenRecord {
			return o.text.ExtractText(ctx, textPayloads, req.ProjectContext)
		})
	}
	for _, img := range imagePayloads {
		img := img
		branches = append(branches, func(ctx context.Context) []backends.ScreenRecord {
			return o.vision.ExtractDrawing(ctx, img, req.ProjectContext)
		})
	}

	merged = append(merged, o.dispatch(ctx, branches)...)

	for _, rec := range merged {
		switch rec.SourceType {
		case backends.SourceTypeText:
			result.ScreensFromText++
		case backends.SourceTypeDrawing:
			result.ScreensFromDrawings++
		}
	}

	result.Screens = merged
	result.TotalScreens = len(merged)
	result.ProcessingTimeMS = time.Since(start).Milliseconds()

	log.Info("extraction complete",
		"screens", result.TotalScreens,
		"from_text", result.ScreensFromText,
		"from_drawings", result.ScreensFromDrawings,
		"elapsed_ms", result.ProcessingTimeMS)
	return result
}

// dispatch runs every branch concurrently and waits for all of them. Merge
// order follows branch order so output is deterministic.
func (o *Orchestrator) dispatch(ctx context.Context, branches []branch) []backends.ScreenRecord {
	if len(branches) == 0 {
		return nil
	}

	type branchResult struct {
		idx     int
		records []backends.ScreenRecord
	}

	results := make(chan branchResult, len(branches))
	for i, b := range branches {
		go func(idx int, b branch) {
			results <- branchResult{idx: idx, records: b(ctx)}
		}(i, b)
	}

	collected := make([][]backends.ScreenRecord, len(branches))
	for range branches {
		r := <-results
		collected[r.idx] = r.records
	}

	var merged []backends.ScreenRecord
	for _, records := range collected {
		merged = append(merged, records...)
	}
	return merged
}

// partition splits eligible pages into deduplicated, sorted text and
// drawing cohorts. Pages recommended for discard are excluded - discarding
// them was the point of triage. A non-empty selection narrows eligibility
// to the listed page numbers.
func partition(pages []triage.Page, selected []int) (textCohort, drawingCohort []int) {
	selectedSet := make(map[int]struct{}, len(selected))
	for _, n := range selected {
		selectedSet[n] = struct{}{}
	}

	textSeen := make(map[int]struct{})
	drawingSeen := make(map[int]struct{})
	for _, p := range pages {
		if p.Recommended == keywords.RecommendDiscard {
			continue
		}
		if len(selectedSet) > 0 {
			if _, ok := selectedSet[p.PageNum]; !ok {
				continue
			}
		}
		if p.Classification == keywords.ClassificationText {
			textSeen[p.PageNum] = struct{}{}
		} else {
			drawingSeen[p.PageNum] = struct{}{}
		}
	}

	textCohort = sortedKeys(textSeen)
	drawingCohort = sortedKeys(drawingSeen)
	return textCohort, drawingCohort
}

func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
