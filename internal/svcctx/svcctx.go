// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/specsift/specsift/internal/backends"
	"github.com/specsift/specsift/internal/config"
	"github.com/specsift/specsift/internal/extract"
	"github.com/specsift/specsift/internal/home"
	"github.com/specsift/specsift/internal/keywords"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Bank          keywords.Bank
	TextBackend   backends.TextExtractor
	VisionBackend backends.VisionExtractor
	Orchestrator  *extract.Orchestrator
	ConfigManager *config.Manager
	Logger        *slog.Logger
	Home          *home.Dir
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// BankFrom extracts the keyword bank from context.
func BankFrom(ctx context.Context) keywords.Bank {
	if s := ServicesFrom(ctx); s != nil {
		return s.Bank
	}
	return nil
}

// TextBackendFrom extracts the text extraction backend from context.
func TextBackendFrom(ctx context.Context) backends.TextExtractor {
	if s := ServicesFrom(ctx); s != nil {
		return s.TextBackend
	}
	return nil
}

// VisionBackendFrom extracts the vision extraction backend from context.
func VisionBackendFrom(ctx context.Context) backends.VisionExtractor {
	if s := ServicesFrom(ctx); s != nil {
		return s.VisionBackend
	}
	return nil
}

// OrchestratorFrom extracts the extraction orchestrator from context.
func OrchestratorFrom(ctx context.Context) *extract.Orchestrator {
	if s := ServicesFrom(ctx); s != nil {
		return s.Orchestrator
	}
	return nil
}

// ConfigManagerFrom extracts the config manager from context.
func ConfigManagerFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.ConfigManager
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}
