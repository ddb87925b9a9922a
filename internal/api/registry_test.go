package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
)

// stubEndpoint is a minimal Endpoint; a nil cmdUse yields no CLI command.
type stubEndpoint struct {
	method string
	path   string
	init   bool
	cmdUse string
}

func (s *stubEndpoint) Route() (string, string, http.HandlerFunc) {
	return s.method, s.path, func(w http.ResponseWriter, r *http.Request) {}
}

func (s *stubEndpoint) RequiresInit() bool { return s.init }

func (s *stubEndpoint) Command(getServerURL func() string) *cobra.Command {
	if s.cmdUse == "" {
		return nil
	}
	return &cobra.Command{Use: s.cmdUse}
}

func TestRegistry_BuildCommands(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubEndpoint{method: "GET", path: "/health", cmdUse: "health"})
	r.Register(&stubEndpoint{method: "GET", path: "/swagger.json"})
	r.Register(&stubEndpoint{method: "POST", path: "/api/triage", init: true, cmdUse: "triage"})

	apiCmd := r.BuildCommands(func() string { return "http://localhost:8080" })
	if apiCmd.Use != "api" {
		t.Errorf("root command use = %q, want api", apiCmd.Use)
	}

	subs := apiCmd.Commands()
	if len(subs) != 2 {
		t.Fatalf("subcommand count = %d, want 2 (nil commands skipped)", len(subs))
	}
	names := map[string]bool{}
	for _, c := range subs {
		names[c.Use] = true
	}
	if !names["health"] || !names["triage"] {
		t.Errorf("subcommands = %v, want health and triage", names)
	}
}

func TestRegistry_RegisterRoutes(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubEndpoint{method: "GET", path: "/health"})
	r.Register(&stubEndpoint{method: "POST", path: "/api/triage", init: true})

	wrapped := 0
	mux := http.NewServeMux()
	r.RegisterRoutes(mux, func(h http.HandlerFunc) http.HandlerFunc {
		wrapped++
		return h
	})

	if wrapped != 1 {
		t.Errorf("init middleware applied %d times, want 1", wrapped)
	}
	if _, pattern := mux.Handler(httptest.NewRequest("GET", "/health", nil)); pattern != "GET /health" {
		t.Errorf("health route pattern = %q", pattern)
	}
}
