package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/innocurve/inoclone/internal/api"
	"github.com/innocurve/inoclone/internal/composer"
	"github.com/innocurve/inoclone/internal/config"
	"github.com/innocurve/inoclone/internal/notify"
	"github.com/innocurve/inoclone/internal/openai"
	"github.com/innocurve/inoclone/internal/persona"
	"github.com/innocurve/inoclone/internal/pipeline"
	"github.com/innocurve/inoclone/internal/retrieval"
	"github.com/innocurve/inoclone/internal/speech"
	"github.com/innocurve/inoclone/internal/storage"
	"github.com/innocurve/inoclone/internal/translate"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the inoclone server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "inoclone version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Build the conversational pipeline.
	openaiClient := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.ChatModel)
	resolver := persona.NewResolver(store, cfg.Owner.Representative)
	retriever := retrieval.NewRetriever(store, 0)
	comp := composer.New(cfg.Owner.Representative)
	orchestrator := pipeline.NewOrchestrator(store, resolver, retriever, comp, openaiClient)

	// Optional provider clients; endpoints without credentials answer 503.
	deps := api.Deps{
		OwnerID:            cfg.Owner.ID,
		OwnerPhone:         cfg.Owner.Phone,
		SenderNumber:       cfg.Solapi.SenderNumber,
		CustomerTemplateID: cfg.Solapi.CustomerTemplateID,
		OwnerTemplateID:    cfg.Solapi.OwnerTemplateID,
		Chat:               orchestrator,
		Store:              store,
		Transcriber:        openaiClient,
	}
	if cfg.ElevenLabs.APIKey != "" && cfg.ElevenLabs.VoiceID != "" {
		deps.Synthesizer = speech.NewClient(cfg.ElevenLabs.APIKey, cfg.ElevenLabs.VoiceID)
	}
	if cfg.DeepL.APIKey != "" {
		deps.Translator = translate.NewClient(cfg.DeepL.APIKey)
	}
	if cfg.Solapi.APIKey != "" && cfg.Solapi.APISecret != "" {
		deps.Alimtalk = notify.NewAlimtalkClient(cfg.Solapi.APIKey, cfg.Solapi.APISecret, cfg.Solapi.PFID)
	}
	if cfg.Sens.AccessKey != "" && cfg.Sens.SecretKey != "" {
		deps.SMS = notify.NewSMSClient(cfg.Sens.AccessKey, cfg.Sens.SecretKey, cfg.Sens.ServiceID, cfg.Solapi.SenderNumber)
	}
	if cfg.Inquiry.WebhookURL != "" {
		deps.Inquiry = notify.NewWebhookRelay(cfg.Inquiry.WebhookURL)
	}

	handler := api.NewHandler(deps)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Build and start MCP server (stdio transport in a goroutine).
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Store:   store,
		Chat:    orchestrator,
		OwnerID: cfg.Owner.ID,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "inoclone listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
