package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/yanqian/faq-engine/internal/domain/admin"
	"github.com/yanqian/faq-engine/internal/domain/faq"
	"github.com/yanqian/faq-engine/internal/infra/config"
)

// Server exposes the FAQ service as MCP tools.
type Server struct {
	mcp      *server.MCPServer
	faqSvc   faq.Service
	adminSvc admin.Service
	logger   *slog.Logger
}

// NewServer creates a new MCP server instance with the FAQ tools registered.
func NewServer(cfg config.MCPConfig, faqSvc faq.Service, adminSvc admin.Service, logger *slog.Logger) *Server {
	s := &Server{
		mcp:      server.NewMCPServer(cfg.Name, cfg.Version, server.WithToolCapabilities(false), server.WithRecovery()),
		faqSvc:   faqSvc,
		adminSvc: adminSvc,
		logger:   logger.With("component", "mcp.server"),
	}
	s.mcp.AddTool(searchFAQTool(), s.handleSearchFAQ)
	s.mcp.AddTool(addFAQTool(), s.handleAddFAQ)
	return s
}

// Handler serves the tools over streamable HTTP at path. Request headers are captured into the
// tool context so add_faq can authenticate the caller.
func (s *Server) Handler(path string) http.Handler {
	return server.NewStreamableHTTPServer(s.mcp,
		server.WithEndpointPath(path),
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return withSession(ctx, sessionFromHeaders(r.Header.Get))
		}),
	)
}

// ServeStdio runs the tools over stdio and blocks until the input closes. There are no request
// headers on stdio, so the caller supplies the credentials every tool call runs with.
func (s *Server) ServeStdio(password, user string) error {
	sess := session{Password: password, User: strings.TrimSpace(user)}
	return server.ServeStdio(s.mcp, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
		return withSession(ctx, sess)
	}))
}
