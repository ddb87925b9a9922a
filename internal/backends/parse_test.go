package backends

import (
	"strings"
	"testing"
)

func TestParseScreens(t *testing.T) {
	t.Run("plain JSON array", func(t *testing.T) {
		screens, err := ParseScreens(`[{"screen_name":"Main Videoboard","confidence":0.9,"size_width_ft":40,"quantity":2}]`)
		if err != nil {
			t.Fatalf("ParseScreens() error = %v", err)
		}
		if len(screens) != 1 {
			t.Fatalf("got %d screens, want 1", len(screens))
		}
		s := screens[0]
		if s.ScreenName != "Main Videoboard" {
			t.Errorf("ScreenName = %q", s.ScreenName)
		}
		if s.Confidence != 0.9 {
			t.Errorf("Confidence = %v", s.Confidence)
		}
		if s.SizeWidthFt == nil || *s.SizeWidthFt != 40 {
			t.Errorf("SizeWidthFt = %v", s.SizeWidthFt)
		}
		if s.Quantity == nil || *s.Quantity != 2 {
			t.Errorf("Quantity = %v", s.Quantity)
		}
	})

	t.Run("code fence stripped", func(t *testing.T) {
		content := "```json\n[{\"screen_name\":\"Ribbon Board\"}]\n```"
		screens, err := ParseScreens(content)
		if err != nil {
			t.Fatalf("ParseScreens() error = %v", err)
		}
		if len(screens) != 1 || screens[0].ScreenName != "Ribbon Board" {
			t.Errorf("screens = %+v", screens)
		}
	})

	t.Run("empty array", func(t *testing.T) {
		screens, err := ParseScreens("[]")
		if err != nil {
			t.Fatalf("ParseScreens() error = %v", err)
		}
		if len(screens) != 0 {
			t.Errorf("got %d screens, want 0", len(screens))
		}
	})

	t.Run("nullable numerics stay nil", func(t *testing.T) {
		screens, err := ParseScreens(`[{"screen_name":"X","pixel_pitch_mm":null,"nits_brightness":null}]`)
		if err != nil {
			t.Fatalf("ParseScreens() error = %v", err)
		}
		if screens[0].PixelPitchMM != nil || screens[0].NitsBrightness != nil {
			t.Error("expected nil numeric fields")
		}
	})

	t.Run("numeric strings coerced", func(t *testing.T) {
		screens, err := ParseScreens(`[{"screen_name":"X","size_width_ft":"40.5","quantity":"3"}]`)
		if err != nil {
			t.Fatalf("ParseScreens() error = %v", err)
		}
		if screens[0].SizeWidthFt == nil || *screens[0].SizeWidthFt != 40.5 {
			t.Errorf("SizeWidthFt = %v", screens[0].SizeWidthFt)
		}
		if screens[0].Quantity == nil || *screens[0].Quantity != 3 {
			t.Errorf("Quantity = %v", screens[0].Quantity)
		}
	})

	t.Run("free text fails", func(t *testing.T) {
		if _, err := ParseScreens("I could not find any displays in this document."); err == nil {
			t.Error("expected error for non-JSON content")
		}
	})

	t.Run("non-array JSON fails", func(t *testing.T) {
		if _, err := ParseScreens(`{"screen_name":"X"}`); err == nil {
			t.Error("expected error for object payload")
		}
	})

	t.Run("empty content fails", func(t *testing.T) {
		if _, err := ParseScreens("   "); err == nil {
			t.Error("expected error for empty content")
		}
	})
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `[1]`, `[1]`},
		{"json fence", "```json\n[1]\n```", "[1]"},
		{"bare fence", "```\n[1]\n```", "[1]"},
		{"no trailing fence", "```json\n[1]", "[1]"},
		{"surrounding whitespace", "  ```json\n[1]\n```  ", "[1]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripCodeFences(tc.in); got != tc.want {
				t.Errorf("stripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSentinelRecords(t *testing.T) {
	parse := ParseErrorRecord(7, SourceTypeDrawing, "raw body")
	if parse.ScreenName != ParseErrorName || parse.Confidence != 0.0 {
		t.Errorf("parse sentinel = %+v", parse)
	}
	if parse.SourcePage != 7 || parse.SourceType != SourceTypeDrawing {
		t.Errorf("parse sentinel provenance = %d/%s", parse.SourcePage, parse.SourceType)
	}
	if !parse.IsSentinel() {
		t.Error("IsSentinel() = false")
	}

	api := APIErrorRecord(3, SourceTypeText, "connection refused")
	if api.ScreenName != APIErrorName || !strings.Contains(api.RawNotes, "connection refused") {
		t.Errorf("api sentinel = %+v", api)
	}
}
