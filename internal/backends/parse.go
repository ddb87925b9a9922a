package backends

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// screensSchema constrains the backend response shape: an array of objects,
// with a 0-1 confidence when present. It is deliberately permissive about
// field types beyond that - models are inconsistent about numbers vs
// strings and coercion happens after validation.
const screensSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"confidence": {"type": ["number", "integer", "null"], "minimum": 0, "maximum": 1}
		}
	}
}`

var compiledScreensSchema = jsonschema.MustCompileString("screens.json", screensSchema)

// ParseScreens parses a backend response body into screen records. It
// strips an optional markdown code fence, validates the payload shape, and
// coerces loosely-typed fields. Any failure returns an error so the caller
// can substitute a parse-error sentinel.
func ParseScreens(content string) ([]ScreenRecord, error) {
	cleaned := stripCodeFences(content)
	if cleaned == "" {
		return nil, fmt.Errorf("empty response body")
	}

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	if err := compiledScreensSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("response does not match screens schema: %w", err)
	}

	items := doc.([]any)
	records := make([]ScreenRecord, 0, len(items))
	for _, item := range items {
		obj := item.(map[string]any)
		records = append(records, recordFromMap(obj))
	}
	return records, nil
}

// stripCodeFences removes a wrapping markdown code fence, if present.
func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}

	// Drop first fence line (may carry a language tag).
	lines = lines[1:]
	// Drop trailing fence if present.
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func recordFromMap(obj map[string]any) ScreenRecord {
	rec := ScreenRecord{
		ScreenName:          stringField(obj, "screen_name"),
		Location:            stringField(obj, "location"),
		Size:                stringField(obj, "size"),
		SizeWidthFt:         floatField(obj, "size_width_ft"),
		SizeHeightFt:        floatField(obj, "size_height_ft"),
		PixelPitchMM:        floatField(obj, "pixel_pitch_mm"),
		Resolution:          stringField(obj, "resolution"),
		IndoorOutdoor:       stringField(obj, "indoor_outdoor"),
		Quantity:            intField(obj, "quantity"),
		MountingType:        stringField(obj, "mounting_type"),
		NitsBrightness:      floatField(obj, "nits_brightness"),
		SpecialRequirements: stringField(obj, "special_requirements"),
		RawNotes:            stringField(obj, "raw_notes"),
	}
	if c := floatField(obj, "confidence"); c != nil {
		rec.Confidence = *c
	}
	if p := intField(obj, "source_page"); p != nil {
		rec.SourcePage = *p
	}
	return rec
}

func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func floatField(obj map[string]any, key string) *float64 {
	switch v := obj[key].(type) {
	case float64:
		return &v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return &f
		}
	}
	return nil
}

func intField(obj map[string]any, key string) *int {
	if f := floatField(obj, key); f != nil {
		n := int(*f)
		return &n
	}
	return nil
}
