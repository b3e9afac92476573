package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/botdock/botdock/internal/api"
	"github.com/botdock/botdock/internal/config"
	"github.com/botdock/botdock/internal/extract"
	"github.com/botdock/botdock/internal/ollama"
	"github.com/botdock/botdock/internal/repository"
	"github.com/botdock/botdock/internal/service"
)

var configPath = flag.String("config", "", "Path to config file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	db, err := repository.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	chatbotRepo := repository.NewChatbotRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	qaRepo := repository.NewQARepository(db)
	convRepo := repository.NewConversationRepository(db)

	ollamaClient := ollama.NewClient(cfg.Ollama.BaseURL, cfg.Ollama.Timeout)
	resolver := ollama.NewResolver(ollamaClient, cfg.Ollama.FallbackModels, logger)

	pdfExtractor := extract.NewPDFExtractor(cfg.Ingest.MaxPDFBytes, logger)
	linkExtractor := extract.NewLinkExtractor(cfg.Ingest.FetchTimeout, cfg.Ingest.MaxContentLength, logger)

	summarizer := service.NewSummarizer(ollamaClient, resolver, cfg.Ollama.Model)
	retriever := service.NewRetriever(qaRepo, logger)

	ingestService := service.NewIngestService(
		chatbotRepo,
		docRepo,
		pdfExtractor,
		linkExtractor,
		summarizer,
		cfg.Storage.Uploads,
		cfg.Ingest.MinContentLength,
		logger,
	)

	chatService := service.NewChatService(
		chatbotRepo,
		docRepo,
		convRepo,
		retriever,
		ollamaClient,
		resolver,
		cfg.Ollama.Model,
		logger,
	)

	adminService := service.NewAdminService(
		chatbotRepo,
		docRepo,
		qaRepo,
		convRepo,
		cfg.Server.BaseURL,
		cfg.Storage.Uploads,
		logger,
	)

	router := api.SetupRouter(adminService, ingestService, chatService, api.RouterConfig{
		APIKey:       cfg.Admin.APIKey,
		AllowOrigins: cfg.Server.AllowOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting BotDock server",
			zap.String("address", cfg.Address()),
			zap.String("base_url", cfg.Server.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Let in-flight document processing reach a terminal state.
	ingestService.Wait()

	logger.Info("Server exited")
}
