package endpoints

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/specsift/specsift/internal/api"
	"github.com/specsift/specsift/internal/pdf"
	"github.com/specsift/specsift/internal/svcctx"
	"github.com/specsift/specsift/internal/triage"
)

// TriageResponse is the response for POST /api/triage.
type TriageResponse struct {
	Filename         string        `json:"filename"`
	TotalPages       int           `json:"total_pages"`
	TextPages        int           `json:"text_pages"`
	DrawingPages     int           `json:"drawing_pages"`
	ProcessingTimeMS int64         `json:"processing_time_ms"`
	Pages            []triage.Page `json:"pages"`
}

// TriageEndpoint handles POST /api/triage with a multipart PDF upload.
type TriageEndpoint struct{}

var _ api.Endpoint = (*TriageEndpoint)(nil)

func (e *TriageEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/triage", e.handler
}

func (e *TriageEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Triage a PDF's pages
//	@Description	Score every page of an uploaded PDF against the keyword bank and recommend which pages to keep for extraction
//	@Tags			triage
//	@Accept			mpfd
//	@Produce		json
//	@Param			file				formData	file	true	"PDF document to triage"
//	@Param			custom_keywords		formData	string	false	"Comma-separated extra keywords scored under a custom category"
//	@Param			disabled_categories	formData	string	false	"Comma-separated category names to exclude from scoring, merged with the configured disabled list"
//	@Success		200	{object}	TriageResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/triage [post]
func (e *TriageEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	path, filename, ok := saveUploadedPDF(w, r)
	if !ok {
		return
	}
	defer os.Remove(path)

	bank := svcctx.BankFrom(r.Context())
	if bank == nil {
		writeError(w, http.StatusServiceUnavailable, "keyword bank not initialized")
		return
	}

	doc, err := pdf.Open(path)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid PDF: %v", err))
		return
	}

	disabled := splitCSV(r.FormValue("disabled_categories"))
	if cm := svcctx.ConfigManagerFrom(r.Context()); cm != nil {
		disabled = mergeDisabled(cm.Get().Keywords.Disabled, disabled)
	}

	req := triage.Request{
		CustomKeywords:     splitCSV(r.FormValue("custom_keywords")),
		DisabledCategories: disabled,
		Logger:             svcctx.LoggerFrom(r.Context()),
	}

	result, err := triage.Run(r.Context(), doc, bank, req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("triage failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, TriageResponse{
		Filename:         filename,
		TotalPages:       result.TotalPages,
		TextPages:        result.TextPages,
		DrawingPages:     result.DrawingPages,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
		Pages:            result.Pages,
	})
}

func (e *TriageEndpoint) Command(getServerURL func() string) *cobra.Command {
	var customKeywords, disabledCategories string
	cmd := &cobra.Command{
		Use:   "triage <file.pdf>",
		Short: "Triage a PDF's pages against the keyword bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			fields := map[string]string{}
			if customKeywords != "" {
				fields["custom_keywords"] = customKeywords
			}
			if disabledCategories != "" {
				fields["disabled_categories"] = disabledCategories
			}

			var resp TriageResponse
			if err := client.PostFile(cmd.Context(), "/api/triage", "file", args[0], fields, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&customKeywords, "keywords", "", "Comma-separated extra keywords")
	cmd.Flags().StringVar(&disabledCategories, "disable", "", "Comma-separated categories to disable")
	return cmd
}

// saveUploadedPDF validates and persists the multipart "file" field to the
// uploads directory. On failure it writes the error response and returns
// ok=false. The caller owns removal of the returned path.
func saveUploadedPDF(w http.ResponseWriter, r *http.Request) (path, filename string, ok bool) {
	maxBytes := int64(500 << 20)
	if cm := svcctx.ConfigManagerFrom(r.Context()); cm != nil {
		maxBytes = cm.Get().MaxUploadBytes()
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return "", "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return "", "", false
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file %s is not a PDF", header.Filename))
		return "", "", false
	}

	homeDir := svcctx.HomeFrom(r.Context())
	if homeDir == nil {
		writeError(w, http.StatusServiceUnavailable, "home directory not initialized")
		return "", "", false
	}

	dest := homeDir.UploadPath(uuid.New().String())
	dst, err := os.Create(dest)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create upload file: %v", err))
		return "", "", false
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(dest)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save upload: %v", err))
		return "", "", false
	}
	dst.Close()

	return dest, header.Filename, true
}

// mergeDisabled combines the configured default disabled categories with a
// request's list, dropping duplicates.
func mergeDisabled(base, extra []string) []string {
	if len(base) == 0 {
		return extra
	}
	seen := make(map[string]struct{}, len(base)+len(extra))
	merged := make([]string, 0, len(base)+len(extra))
	for _, c := range base {
		if _, dup := seen[c]; !dup {
			seen[c] = struct{}{}
			merged = append(merged, c)
		}
	}
	for _, c := range extra {
		if _, dup := seen[c]; !dup {
			seen[c] = struct{}{}
			merged = append(merged, c)
		}
	}
	return merged
}

// splitCSV splits a comma-separated value into trimmed non-empty parts.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
