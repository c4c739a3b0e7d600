package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RichardoC/askbot/internal/api"
	"github.com/RichardoC/askbot/internal/app"
	"github.com/RichardoC/askbot/internal/auth"
	"github.com/RichardoC/askbot/internal/chat"
	"github.com/RichardoC/askbot/internal/config"
	"github.com/RichardoC/askbot/internal/db"
	"github.com/RichardoC/askbot/internal/llm"
	"github.com/RichardoC/askbot/internal/usage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, addr string

	cmd := &cobra.Command{
		Use:          "askbot-server",
		Short:        "Chat API for weather, stock and F1 questions",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "config.yaml", "Configuration file path")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := app.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	database, err := db.New(cfg.Database.Driver, cfg.Database.Path)
	if err != nil {
		logger.Error("failed to initialize database",
			zap.Error(err),
			zap.String("dbPath", cfg.Database.Path))
		return err
	}
	defer database.Close()

	var titler chat.Titler
	if cfg.LLMConfigured() {
		llmService, err := llm.New(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, logger)
		if err != nil {
			return fmt.Errorf("initialize LLM service: %w", err)
		}
		titler = llmService
	}

	counters := usage.NewCounters()
	reporter := usage.NewReporter(counters, logger)
	if err := reporter.Schedule(cfg.Usage.ReportCron); err != nil {
		return err
	}
	reporter.Start()
	defer reporter.Stop()

	chats := chat.NewService(database, app.NewAssistant(cfg, counters, logger), titler, logger)
	handler := api.NewHandler(chats, database, logger)
	router := api.NewRouter(handler, auth.New(cfg.Auth.Tokens, cfg.Auth.UserHeader))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", cfg.Server.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
