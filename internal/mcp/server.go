package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/learnerhours/internal/domain/hours"
)

// SessionService defines session operations needed by MCP.
type SessionService interface {
	List(ctx context.Context) ([]hours.Session, error)
	Create(ctx context.Context, in hours.Input) (hours.Session, error)
	Update(ctx context.Context, id string, in hours.Input) (hours.Session, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) (hours.SearchResult, error)
	TotalDuration(ctx context.Context) (hours.Total, error)
}

// Config contains server configuration.
type Config struct {
	Sessions      SessionService
	Validator     TokenValidator
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "learner-hours",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is local only and never authenticated.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled && cfg.Validator != nil {
		server.AddReceivingMiddleware(authMiddleware(cfg.Validator))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Sessions)

	return server
}
