package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/specsift/specsift/internal/api"
	"github.com/specsift/specsift/internal/extract"
	"github.com/specsift/specsift/internal/pdf"
	"github.com/specsift/specsift/internal/svcctx"
	"github.com/specsift/specsift/internal/triage"
)

// ExtractEndpoint handles POST /api/extract with a multipart PDF upload and
// a prior triage result.
type ExtractEndpoint struct{}

var _ api.Endpoint = (*ExtractEndpoint)(nil)

func (e *ExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/extract", e.handler
}

func (e *ExtractEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Extract display specifications
//	@Description	Run LLM extraction over the triaged pages of an uploaded PDF. Text pages go to the text backend in one batched call; drawing pages each go to the vision backend.
//	@Tags			extract
//	@Accept			mpfd
//	@Produce		json
//	@Param			file			formData	file	true	"PDF document previously triaged"
//	@Param			pages			formData	string	true	"JSON array of triaged page results"
//	@Param			selected_pages	formData	string	false	"Comma-separated page numbers to restrict extraction to"
//	@Param			project_context	formData	string	false	"Free-text project context forwarded to both backends"
//	@Success		200	{object}	extract.Result
//	@Failure		400	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/extract [post]
func (e *ExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	path, _, ok := saveUploadedPDF(w, r)
	if !ok {
		return
	}
	defer os.Remove(path)

	pagesJSON := r.FormValue("pages")
	if pagesJSON == "" {
		writeError(w, http.StatusBadRequest, "missing pages field")
		return
	}
	var pages []triage.Page
	if err := json.Unmarshal([]byte(pagesJSON), &pages); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid pages JSON: %v", err))
		return
	}

	var selected []int
	for _, s := range splitCSV(r.FormValue("selected_pages")) {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid page number %q", s))
			return
		}
		selected = append(selected, n)
	}

	orchestrator := svcctx.OrchestratorFrom(r.Context())
	if orchestrator == nil {
		writeError(w, http.StatusServiceUnavailable, "extraction backends not initialized")
		return
	}

	doc, err := pdf.Open(path)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid PDF: %v", err))
		return
	}

	dpi := 0
	if cm := svcctx.ConfigManagerFrom(r.Context()); cm != nil {
		dpi = cm.Get().Render.DPI
	}

	result := orchestrator.Run(r.Context(), doc, extract.Request{
		Pages:          pages,
		Selected:       selected,
		ProjectContext: r.FormValue("project_context"),
		DPI:            dpi,
		Logger:         svcctx.LoggerFrom(r.Context()),
	})

	writeJSON(w, http.StatusOK, result)
}

func (e *ExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	var pagesFile, selectedPages, projectContext string
	cmd := &cobra.Command{
		Use:   "extract <file.pdf>",
		Short: "Extract display specifications from triaged pages",
		Long: `Extract display specifications from a PDF using a prior triage result.

The triage result is read from the file given by --pages (the "pages" array
of a triage response, as JSON).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pagesFile == "" {
				return fmt.Errorf("--pages is required")
			}
			pagesJSON, err := os.ReadFile(pagesFile)
			if err != nil {
				return fmt.Errorf("failed to read pages file: %w", err)
			}

			fields := map[string]string{"pages": string(pagesJSON)}
			if selectedPages != "" {
				fields["selected_pages"] = selectedPages
			}
			if projectContext != "" {
				fields["project_context"] = projectContext
			}

			client := api.NewClient(getServerURL())
			var resp extract.Result
			if err := client.PostFile(cmd.Context(), "/api/extract", "file", args[0], fields, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&pagesFile, "pages", "", "Path to a JSON file holding the triage pages array")
	cmd.Flags().StringVar(&selectedPages, "select", "", "Comma-separated page numbers to extract")
	cmd.Flags().StringVar(&projectContext, "context", "", "Project context forwarded to the backends")
	return cmd
}
