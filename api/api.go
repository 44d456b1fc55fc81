package api

import (
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/knolhq/knol/pkg/rag"
)

// Server is the HTTP API server for the knol knowledge base.
type Server struct {
	config  Config
	service *rag.Service
	logger  *zap.Logger
	app     *fiber.App
}

// NewServer creates a new API server over the given knowledge-base service.
// mcpHandler, when non-nil, is mounted at /mcp.
func NewServer(config Config, service *rag.Service, mcpHandler http.Handler, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		service: service,
		logger:  logger,
		app:     app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/documents", s.handleUploadDocuments)
	app.Get("/documents", s.handleListDocuments)
	app.Delete("/documents/:id", s.handleRemoveDocument)
	app.Post("/ask", s.handleAsk)
	app.Get("/history", s.handleHistory)
	app.Post("/reset", s.handleReset)

	if mcpHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(mcpHandler))
		app.All("/mcp/*", adaptor.HTTPHandler(mcpHandler))
	}

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}
