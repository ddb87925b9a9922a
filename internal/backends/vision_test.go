package backends

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func visionChatResponse(content string, extra map[string]any) map[string]any {
	message := map[string]any{
		"role":    "assistant",
		"content": content,
	}
	for k, v := range extra {
		message[k] = v
	}
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "glm-4.6v-flash",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       message,
				"finish_reason": "stop",
			},
		},
		"usage": map[string]int{
			"prompt_tokens":     100,
			"completion_tokens": 50,
			"total_tokens":      150,
		},
	}
}

func TestVisionClient_ExtractDrawing(t *testing.T) {
	t.Run("successful extraction tags provenance", func(t *testing.T) {
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			json.NewDecoder(r.Body).Decode(&gotBody)

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(visionChatResponse(
				`[{"screen_name":"Ribbon Board East","confidence":0.8,"source_page":999}]`, nil))
		}))
		defer server.Close()

		client := NewVisionClient(VisionConfig{BaseURL: server.URL, APIKey: "test-key"})
		screens := client.ExtractDrawing(context.Background(), ImagePayload{PageNum: 6, PNG: []byte("png-bytes")}, "")

		if len(screens) != 1 {
			t.Fatalf("got %d screens, want 1", len(screens))
		}
		if screens[0].SourcePage != 6 {
			t.Errorf("SourcePage = %d, want 6 (backend value must be overridden)", screens[0].SourcePage)
		}
		if screens[0].SourceType != SourceTypeDrawing {
			t.Errorf("SourceType = %q", screens[0].SourceType)
		}

		// Request must carry the image as a data URL content part.
		raw, _ := json.Marshal(gotBody)
		if !strings.Contains(string(raw), "data:image/png;base64,") {
			t.Error("request body missing base64 image data URL")
		}
	})

	t.Run("empty content falls back to reasoning_content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(visionChatResponse("", map[string]any{
				"reasoning_content": `[{"screen_name":"Marquee","confidence":0.6}]`,
			}))
		}))
		defer server.Close()

		client := NewVisionClient(VisionConfig{BaseURL: server.URL})
		screens := client.ExtractDrawing(context.Background(), ImagePayload{PageNum: 2, PNG: []byte("x")}, "")
		if len(screens) != 1 || screens[0].ScreenName != "Marquee" {
			t.Errorf("screens = %+v", screens)
		}
	})

	t.Run("unparseable content degrades to parse sentinel", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(visionChatResponse("The drawing shows two displays near the entrance.", nil))
		}))
		defer server.Close()

		client := NewVisionClient(VisionConfig{BaseURL: server.URL})
		screens := client.ExtractDrawing(context.Background(), ImagePayload{PageNum: 3, PNG: []byte("x")}, "")
		if len(screens) != 1 {
			t.Fatalf("got %d records, want 1 sentinel", len(screens))
		}
		s := screens[0]
		if s.ScreenName != ParseErrorName || s.Confidence != 0.0 || s.SourcePage != 3 || s.SourceType != SourceTypeDrawing {
			t.Errorf("sentinel = %+v", s)
		}
		if !strings.Contains(s.RawNotes, "two displays") {
			t.Errorf("RawNotes = %q, want raw response", s.RawNotes)
		}
	})

	t.Run("transport failure degrades to api sentinel", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"bad request"}}`, http.StatusBadRequest)
		}))
		defer server.Close()

		client := NewVisionClient(VisionConfig{BaseURL: server.URL})
		screens := client.ExtractDrawing(context.Background(), ImagePayload{PageNum: 9, PNG: []byte("x")}, "")
		if len(screens) != 1 || screens[0].ScreenName != APIErrorName {
			t.Errorf("screens = %+v", screens)
		}
		if screens[0].SourcePage != 9 {
			t.Errorf("SourcePage = %d, want 9", screens[0].SourcePage)
		}
	})
}
