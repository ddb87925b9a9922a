package backends

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	// VisionBackendName identifies the per-image vision extraction backend.
	VisionBackendName = "vision-llm"

	defaultVisionModel = "glm-4.6v-flash"

	// DefaultVisionTimeout is shorter than the text backend's: vision calls
	// carry a single page each.
	DefaultVisionTimeout = 60 * time.Second
)

// VisionConfig holds configuration for the vision extraction backend
// (an OpenAI-compatible chat completions API with image input).
type VisionConfig struct {
	BaseURL    string
	APIKey     string
	Model      string        // default: glm-4.6v-flash
	Timeout    time.Duration // per-call timeout (default: 60s)
	MaxRetries int           // SDK transport retries (default: 3)
	HTTPClient *http.Client  // optional (tests)
	Logger     *slog.Logger
}

// VisionClient implements VisionExtractor using the OpenAI SDK.
type VisionClient struct {
	model  string
	client openai.Client
	logger *slog.Logger
}

// NewVisionClient creates a vision backend client.
func NewVisionClient(cfg VisionConfig) *VisionClient {
	if cfg.Model == "" {
		cfg.Model = defaultVisionModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultVisionTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &VisionClient{
		model:  cfg.Model,
		client: openai.NewClient(opts...),
		logger: cfg.Logger,
	}
}

// Name returns the backend identifier.
func (c *VisionClient) Name() string { return VisionBackendName }

// ExtractDrawing sends one rasterized page to the vision model and parses
// the returned screen records. Failures degrade to a sentinel record for
// this page only.
func (c *VisionClient) ExtractDrawing(ctx context.Context, img ImagePayload, projectContext string) []ScreenRecord {
	requestID := uuid.New().String()
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(img.PNG)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL,
				}),
				openai.TextContentPart(buildVisionPrompt(projectContext)),
			}),
		},
		MaxTokens:   openai.Int(4096),
		Temperature: openai.Float(0.1),
	})
	if err != nil {
		c.logger.Error("vision backend call failed", "request_id", requestID, "page", img.PageNum, "error", err)
		return []ScreenRecord{APIErrorRecord(img.PageNum, SourceTypeDrawing, err.Error())}
	}
	if len(resp.Choices) == 0 {
		return []ScreenRecord{APIErrorRecord(img.PageNum, SourceTypeDrawing, "no choices in response")}
	}

	msg := resp.Choices[0].Message
	content := msg.Content
	if strings.TrimSpace(content) == "" {
		// Some reasoning models put their output in reasoning_content and
		// leave content empty; fall back to it.
		if f, ok := msg.JSON.ExtraFields["reasoning_content"]; ok {
			var reasoning string
			if err := json.Unmarshal([]byte(f.Raw()), &reasoning); err == nil {
				content = reasoning
			}
		}
	}

	screens, err := ParseScreens(content)
	if err != nil {
		c.logger.Warn("vision backend response unparseable", "request_id", requestID, "page", img.PageNum, "error", err)
		return []ScreenRecord{ParseErrorRecord(img.PageNum, SourceTypeDrawing, content)}
	}

	for i := range screens {
		screens[i].SourcePage = img.PageNum
		screens[i].SourceType = SourceTypeDrawing
	}
	return screens
}

// buildVisionPrompt returns the extraction instructions sent alongside each
// drawing image.
func buildVisionPrompt(projectContext string) string {
	target := "Analyze this architectural drawing from an RFP"
	if projectContext != "" {
		target = fmt.Sprintf("%s for %s", target, projectContext)
	}

	return fmt.Sprintf(`You are an LED display specification extractor for construction RFPs.
You analyze architectural drawings and floor plans to identify LED displays, video boards,
scoreboards, ribbon boards, digital signage, and similar display systems.

For each display you find, extract:
- screen_name: What the display is labeled as (e.g. "Main Videoboard", "Ribbon Board East")
- location: Where in the venue (be specific: section numbers, elevation, orientation)
- size: Dimensions as shown (e.g. "40' x 22'")
- size_width_ft: Width in feet (number only)
- size_height_ft: Height in feet (number only)
- pixel_pitch_mm: If specified (null if not shown)
- resolution: If specified (null if not shown)
- indoor_outdoor: "indoor" or "outdoor" based on location context
- quantity: Number of this display type
- mounting_type: How it's mounted (steel, rigging, wall, etc.)
- nits_brightness: If specified (null if not shown)
- special_requirements: Any special notes (weatherproof, curved, transparent, etc.)
- confidence: 0.0-1.0 how confident you are this is an LED display
- raw_notes: Your detailed notes about what you see

Return a JSON array of screen objects. If no displays are found in the drawing, return an empty array.
Only return the JSON array, no other text.

%s. Extract all LED display/video board specifications you can identify.`, target)
}

var _ VisionExtractor = (*VisionClient)(nil)
