package backends

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
)

const (
	// TextBackendName identifies the batched text extraction backend.
	TextBackendName = "text-llm"

	defaultTextWorkspace = "rfp-extraction"

	// DefaultTextTimeout is generous because the single batched call embeds
	// the full text-cohort content.
	DefaultTextTimeout = 120 * time.Second
)

// TextConfig holds configuration for the text extraction backend client
// (an AnythingLLM-style workspace chat API).
type TextConfig struct {
	BaseURL    string
	APIKey     string
	Workspace  string        // workspace slug (default: rfp-extraction)
	Timeout    time.Duration // HTTP timeout (default: 120s)
	MaxRetries int           // transport retry attempts (default: 3)
	RetryDelay time.Duration // base delay between retries (default: 1s)
	HTTPClient *http.Client  // optional (tests)
	Logger     *slog.Logger
}

// TextClient implements TextExtractor against a workspace chat endpoint.
type TextClient struct {
	baseURL    string
	apiKey     string
	workspace  string
	maxRetries int
	retryDelay time.Duration
	client     *http.Client
	logger     *slog.Logger
}

// NewTextClient creates a text backend client.
func NewTextClient(cfg TextConfig) *TextClient {
	if cfg.Workspace == "" {
		cfg.Workspace = defaultTextWorkspace
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTextTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &TextClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		workspace:  cfg.Workspace,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		client:     client,
		logger:     cfg.Logger,
	}
}

// Name returns the backend identifier.
func (c *TextClient) Name() string { return TextBackendName }

type textChatRequest struct {
	Message string `json:"message"`
	Mode    string `json:"mode"`
}

type textChatResponse struct {
	TextResponse string `json:"textResponse"`
}

// ExtractText sends all text-cohort pages in one batched call and parses
// the returned screen records. Transport and parse failures degrade to a
// single sentinel record attributed to the cohort's first page.
func (c *TextClient) ExtractText(ctx context.Context, pages []TextPayload, projectContext string) []ScreenRecord {
	if len(pages) == 0 {
		return nil
	}

	firstPage := pages[0].PageNum
	requestID := uuid.New().String()

	prompt := buildTextPrompt(pages, projectContext)

	content, err := c.chat(ctx, prompt)
	if err != nil {
		c.logger.Error("text backend call failed", "request_id", requestID, "pages", len(pages), "error", err)
		return []ScreenRecord{APIErrorRecord(firstPage, SourceTypeText, err.Error())}
	}

	screens, err := ParseScreens(content)
	if err != nil {
		c.logger.Warn("text backend response unparseable", "request_id", requestID, "error", err)
		return []ScreenRecord{ParseErrorRecord(firstPage, SourceTypeText, content)}
	}

	for i := range screens {
		screens[i].SourceType = SourceTypeText
		if screens[i].SourcePage == 0 {
			screens[i].SourcePage = firstPage
		}
	}
	return screens
}

// chat posts the prompt to the workspace chat endpoint, retrying transient
// transport failures.
func (c *TextClient) chat(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/api/v1/workspace/%s/chat", c.baseURL, c.workspace)

	body, err := json.Marshal(textChatRequest{Message: prompt, Mode: "chat"})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var content string
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Accept", "application/json")
			if c.apiKey != "" {
				req.Header.Set("Authorization", "Bearer "+c.apiKey)
			}

			resp, err := c.client.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			respBody, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}

			if resp.StatusCode != http.StatusOK {
				err := fmt.Errorf("text backend error (status %d): %s", resp.StatusCode, string(respBody))
				if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
					return err
				}
				return retry.Unrecoverable(err)
			}

			var chatResp textChatResponse
			if err := json.Unmarshal(respBody, &chatResp); err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to unmarshal response: %w", err))
			}
			content = chatResp.TextResponse
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}
	return content, nil
}

// buildTextPrompt concatenates all cohort pages with page-boundary markers
// plus the shared project context.
func buildTextPrompt(pages []TextPayload, projectContext string) string {
	var combined strings.Builder
	for _, p := range pages {
		fmt.Fprintf(&combined, "\n\n--- PAGE %d ---\n%s", p.PageNum, p.Text)
	}

	contextLine := ""
	if projectContext != "" {
		contextLine = fmt.Sprintf("This is for: %s\n", projectContext)
	}

	return fmt.Sprintf(`Extract all LED display/screen specifications from this RFP text.
%s
For each display/screen found, return a JSON object with these fields:
- screen_name: Display name (e.g. "Main Videoboard", "Fascia Ribbon Board")
- location: Where in the venue
- size: Dimensions as written (e.g. "40' x 22'", "3'-6\" high x 450' long")
- size_width_ft: Width in feet (number)
- size_height_ft: Height in feet (number)
- pixel_pitch_mm: Pixel pitch in mm (number, null if not specified)
- resolution: Resolution (e.g. "1220 x 671", null if not specified)
- indoor_outdoor: "indoor" or "outdoor"
- quantity: How many of this display
- mounting_type: Mounting method
- nits_brightness: Brightness in nits (number, null if not specified)
- special_requirements: Any special requirements
- confidence: 0.0-1.0
- raw_notes: Relevant quote from the text
- source_page: The page number where this was found

Return ONLY a JSON array of screen objects. If no displays are found, return an empty array. No other text.

RFP TEXT:
%s`, contextLine, combined.String())
}

var _ TextExtractor = (*TextClient)(nil)
