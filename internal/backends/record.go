// Package backends implements the two specification-extraction backends:
// a batched text LLM and a per-image vision LLM. Both return ScreenRecords
// and degrade failures to sentinel records rather than erroring, so a bad
// page never fails a whole extraction request.
package backends

import "context"

// Source modality of an extracted record.
const (
	SourceTypeText    = "text"
	SourceTypeDrawing = "drawing"
)

// Sentinel screen_name markers for degraded results.
const (
	ParseErrorName = "PARSE_ERROR"
	APIErrorName   = "API_ERROR"
)

// ScreenRecord is one detected display/screen specification. Numeric fields
// are nil when the backend could not determine a value.
type ScreenRecord struct {
	ScreenName          string   `json:"screen_name"`
	Location            string   `json:"location,omitempty"`
	Size                string   `json:"size,omitempty"`
	SizeWidthFt         *float64 `json:"size_width_ft"`
	SizeHeightFt        *float64 `json:"size_height_ft"`
	PixelPitchMM        *float64 `json:"pixel_pitch_mm"`
	Resolution          string   `json:"resolution,omitempty"`
	IndoorOutdoor       string   `json:"indoor_outdoor,omitempty"`
	Quantity            *int     `json:"quantity"`
	MountingType        string   `json:"mounting_type,omitempty"`
	NitsBrightness      *float64 `json:"nits_brightness"`
	SpecialRequirements string   `json:"special_requirements,omitempty"`
	Confidence          float64  `json:"confidence"`
	RawNotes            string   `json:"raw_notes,omitempty"`
	SourcePage          int      `json:"source_page"`
	SourceType          string   `json:"source_type"`
}

// IsSentinel reports whether the record marks a degraded failure rather
// than a detected screen.
func (r ScreenRecord) IsSentinel() bool {
	return r.ScreenName == ParseErrorName || r.ScreenName == APIErrorName
}

// ParseErrorRecord builds the sentinel for a response body that could not
// be parsed as structured output. rawNotes carries the raw response text.
func ParseErrorRecord(page int, sourceType, rawNotes string) ScreenRecord {
	return ScreenRecord{
		ScreenName: ParseErrorName,
		Confidence: 0.0,
		RawNotes:   rawNotes,
		SourcePage: page,
		SourceType: sourceType,
	}
}

// APIErrorRecord builds the sentinel for a transport or API failure.
// rawNotes carries the error message.
func APIErrorRecord(page int, sourceType, rawNotes string) ScreenRecord {
	return ScreenRecord{
		ScreenName: APIErrorName,
		Confidence: 0.0,
		RawNotes:   rawNotes,
		SourcePage: page,
		SourceType: sourceType,
	}
}

// TextPayload is a text-cohort page prepared for the text backend.
type TextPayload struct {
	PageNum int
	Text    string
}

// ImagePayload is a drawing-cohort page rasterized for the vision backend.
type ImagePayload struct {
	PageNum int
	PNG     []byte
}

// TextExtractor handles one batched call carrying all text-cohort pages.
// Implementations never return an error: failures degrade to sentinel
// records tagged with the cohort's first page.
type TextExtractor interface {
	Name() string
	ExtractText(ctx context.Context, pages []TextPayload, projectContext string) []ScreenRecord
}

// VisionExtractor handles one call per drawing-cohort image. Failures
// degrade to a sentinel record tagged with the image's page.
type VisionExtractor interface {
	Name() string
	ExtractDrawing(ctx context.Context, img ImagePayload, projectContext string) []ScreenRecord
}
