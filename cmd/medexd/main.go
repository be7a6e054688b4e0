// medexd is the long-running daemon: HTTP API on one port, gRPC health
// on another, Postgres or SQLite behind the repositories.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rajiviyer/medical-doc-extractor/internal/common"
	"github.com/rajiviyer/medical-doc-extractor/internal/export"
	"github.com/rajiviyer/medical-doc-extractor/internal/extract"
	"github.com/rajiviyer/medical-doc-extractor/internal/ingest"
	"github.com/rajiviyer/medical-doc-extractor/internal/llm/openai"
	"github.com/rajiviyer/medical-doc-extractor/internal/pipeline"
	"github.com/rajiviyer/medical-doc-extractor/internal/repository"
	"github.com/rajiviyer/medical-doc-extractor/internal/rules"
	"github.com/rajiviyer/medical-doc-extractor/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("daemon.config_invalid", "err", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		docs repository.DocumentRepository
		runs repository.RunRepository
	)
	if cfg.Database.DSN != "" {
		pool, err := repository.Open(ctx, repository.Config{
			DSN:              cfg.Database.DSN,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
			DialTimeout:      cfg.Database.DialTimeout,
			StatementTimeout: cfg.Database.StatementTimeout,
		}, logger)
		if err != nil {
			logger.Error("daemon.db_open_failed", "err", err)
			os.Exit(1)
		}
		defer repository.Close(pool, logger)
		if err := repository.HealthCheck(ctx, pool, time.Second, logger); err != nil {
			logger.Error("daemon.db_unhealthy", "err", err)
			os.Exit(1)
		}
		docs = repository.NewDocumentRepository(pool, logger)
		runs = repository.NewRunRepository(pool, logger)
	} else {
		store, err := repository.OpenSQLite(ctx, cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Error("daemon.sqlite_open_failed", "path", cfg.Database.SQLitePath, "err", err)
			os.Exit(1)
		}
		defer store.Close()
		docs = store.Documents()
		runs = store.Runs()
	}

	engine, err := rules.NewEngine(rules.DefaultConfig())
	if err != nil {
		logger.Error("daemon.engine_config_invalid", "err", err)
		os.Exit(2)
	}

	extractor := extract.NewExtractor(extract.Config{
		Pdftotext:     cfg.Extract.Pdftotext,
		Pdftoppm:      cfg.Extract.Pdftoppm,
		Tesseract:     cfg.Extract.Tesseract,
		TesseractLang: cfg.Extract.TesseractLang,
		TessdataDir:   cfg.Extract.TessdataDir,
		DPI:           cfg.Extract.DPI,
		MaxPages:      cfg.Extract.MaxPages,
	}, logger)

	llmClient := openai.NewClient(openai.Config{
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		Timeout:         cfg.LLM.Timeout,
		LenientSanitize: true,
	}, logger)

	processor := pipeline.NewProcessor(logger, docs, runs, extractor, llmClient, engine, cfg.LLM.Model)
	ingestor := ingest.NewFSIngestor(docs, logger)
	exporter := export.NewService(logger)

	srv := server.New(logger, processor, ingestor, docs, runs, exporter)
	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcSrv := server.NewGRPCServer(logger)
	grpcLis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("daemon.grpc_listen_failed", "addr", cfg.Server.GRPCAddr, "err", err)
		os.Exit(1)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("daemon.http_serve", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := grpcSrv.Serve(grpcLis); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("daemon.shutdown_signal")
	case err := <-errCh:
		logger.Error("daemon.serve_failed", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("daemon.http_shutdown_error", "err", err)
	}
	grpcSrv.Stop()
	logger.Info("daemon.stopped")
}
