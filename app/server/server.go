package server

import (
	"context"
	"log"
	"log/slog"

	"pdfrag/app/agent"
	"pdfrag/app/api"
	"pdfrag/model"
	"pdfrag/store"
	"pdfrag/types"

	"github.com/gofiber/fiber/v2"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

type Server struct {
	listenAddr string
	logger     *slog.Logger
}

func NewServer(addr string) *Server {
	return &Server{
		listenAddr: addr,
		logger:     slog.Default(),
	}
}

func (s *Server) Stop() {
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	ctx := context.Background()

	// The loader owns schema creation. Queries against a never-built index
	// surface ErrIndexNotFound instead of silently creating empty tables.
	pool, err := store.NewPostgresStore(ctx, types.PostgresDSN())
	if err != nil {
		log.Fatal("error to connect to Postgres database: ", err)
	}

	gemini, err := model.NewGeminiClient()
	if err != nil {
		log.Fatal(err)
	}

	cfg := types.ConfigFromEnv()

	var (
		app          = fiber.New(config)
		checkHandler = api.NewCheckHandler()
		askHandler   = api.NewAskHandler(agent.New(pool, gemini, gemini))
		fileHandler  = api.NewFileHandler(cfg.SourceDir)
		check        = app.Group("/check")
		apiv1        = app.Group("/api/v1")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Post("/ask", askHandler.HandleAsk)
	apiv1.Post("/upload", fileHandler.HandleUpload)

	if err := app.Listen(s.listenAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
	}
}
