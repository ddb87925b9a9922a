package keywords

// Recommendation is the triage action suggested for a page.
type Recommendation string

const (
	RecommendKeep    Recommendation = "keep"
	RecommendMaybe   Recommendation = "maybe"
	RecommendDiscard Recommendation = "discard"
	RecommendReview  Recommendation = "review"
)

const (
	// KeepThreshold is the minimum score for an unconditional keep.
	KeepThreshold = 0.3
	// MaybeThreshold is the exclusive lower bound for a maybe; at or below
	// it the page is discarded.
	MaybeThreshold = 0.0
)

// Recommend maps a score and classification to a triage recommendation.
// Drawing pages are always routed to review: their value cannot be measured
// lexically, so they are never auto-discarded.
func Recommend(score float64, classification Classification) Recommendation {
	if classification == ClassificationDrawing {
		return RecommendReview
	}
	switch {
	case score >= KeepThreshold:
		return RecommendKeep
	case score > MaybeThreshold:
		return RecommendMaybe
	default:
		return RecommendDiscard
	}
}
