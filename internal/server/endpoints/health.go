package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/specsift/specsift/internal/api"
	"github.com/specsift/specsift/internal/svcctx"
	"github.com/specsift/specsift/version"
)

// HealthResponse is the response for health check endpoints.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Backends string `json:"backends,omitempty"`
}

// HealthEndpoint handles GET /health.
type HealthEndpoint struct{}

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) RequiresInit() bool { return false }

func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: version.GitRelease})
}

func (e *HealthEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/health", &resp); err != nil {
				return err
			}
			fmt.Printf("Status:  %s\n", resp.Status)
			fmt.Printf("Version: %s\n", resp.Version)
			return nil
		},
	}
}

// ReadyEndpoint handles GET /ready.
type ReadyEndpoint struct{}

func (e *ReadyEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/ready", e.handler
}

func (e *ReadyEndpoint) RequiresInit() bool { return false }

func (e *ReadyEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Backends: "ok"}

	svcs := svcctx.ServicesFrom(r.Context())
	if svcs == nil || svcs.TextBackend == nil || svcs.VisionBackend == nil {
		resp.Status = "degraded"
		resp.Backends = "not_initialized"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ReadyEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "ready",
		Short: "Check server readiness (includes extraction backends)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/ready", &resp); err != nil {
				return err
			}
			fmt.Printf("Status:   %s\n", resp.Status)
			if resp.Backends != "" {
				fmt.Printf("Backends: %s\n", resp.Backends)
			}
			return nil
		},
	}
}

// StatusResponse is the detailed status response.
type StatusResponse struct {
	Server   string         `json:"server"`
	Backends BackendsStatus `json:"backends"`
	Keywords KeywordsStatus `json:"keywords"`
}

// BackendsStatus shows the configured extraction backends.
type BackendsStatus struct {
	Text   string `json:"text"`
	Vision string `json:"vision"`
}

// KeywordsStatus summarizes the active keyword bank.
type KeywordsStatus struct {
	Categories int `json:"categories"`
	Phrases    int `json:"phrases"`
}

// StatusEndpoint handles GET /status.
type StatusEndpoint struct{}

func (e *StatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/status", e.handler
}

func (e *StatusEndpoint) RequiresInit() bool { return false }

func (e *StatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Server: "running",
		Backends: BackendsStatus{
			Text:   "not_initialized",
			Vision: "not_initialized",
		},
	}

	svcs := svcctx.ServicesFrom(r.Context())
	if svcs != nil {
		if svcs.TextBackend != nil {
			resp.Backends.Text = "configured"
		}
		if svcs.VisionBackend != nil {
			resp.Backends.Vision = "configured"
		}
		resp.Keywords.Categories = len(svcs.Bank)
		for _, phrases := range svcs.Bank {
			resp.Keywords.Phrases += len(phrases)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *StatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get detailed server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp StatusResponse
			if err := client.Get(cmd.Context(), "/status", &resp); err != nil {
				return err
			}
			fmt.Printf("Server: %s\n", resp.Server)
			fmt.Printf("Backends:\n")
			fmt.Printf("  Text:   %s\n", resp.Backends.Text)
			fmt.Printf("  Vision: %s\n", resp.Backends.Vision)
			fmt.Printf("Keywords:\n")
			fmt.Printf("  Categories: %d\n", resp.Keywords.Categories)
			fmt.Printf("  Phrases:    %d\n", resp.Keywords.Phrases)
			return nil
		},
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
