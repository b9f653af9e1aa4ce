package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/z-chat/internal/config"
	"github.com/zhouzirui/z-chat/internal/handler"
	chatHandler "github.com/zhouzirui/z-chat/internal/handler/chat"
	"github.com/zhouzirui/z-chat/internal/model/persona"
	"github.com/zhouzirui/z-chat/internal/service/ai"
	"github.com/zhouzirui/z-chat/internal/service/chat"
	"github.com/zhouzirui/z-chat/internal/service/dispatch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := cfg.Dispatch.Validate(); err != nil {
		log.Fatalf("invalid chat backend configuration: %v", err)
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Info("no .env file loaded, using system environment only", zap.Error(envErr))
	}

	personaStore := persona.NewMemoryStore(persona.Seed())

	backend, err := dispatch.NewBackend(cfg.Dispatch)
	if err != nil {
		logger.Fatal("failed to build chat backend", zap.Error(err))
	}
	logger.Info("chat backend selected",
		zap.String("backend", backend.Name()),
		zap.Duration("timeout", cfg.Dispatch.Timeout),
	)

	sessions := chat.NewService(dispatch.New(backend, logger), logger)

	router := handler.NewRouter(handler.Deps{
		Personas: personaStore,
		Sessions: sessions,
		Replier:  newReplier(ctx, cfg, personaStore, logger),
		Logger:   logger,
	})

	startServer(ctx, cfg.Server, router, logger)
}

// newReplier returns nil when no language model is configured, so /chat
// answers 503 and the page shows its fallback message.
func newReplier(ctx context.Context, cfg *config.Config, personas persona.Store, logger *zap.Logger) chatHandler.Replier {
	if !cfg.AI.Enabled() {
		logger.Info("ark credentials not configured, /chat will answer 503")
		return nil
	}

	p, ok := persona.Resolve(personas, cfg.Dispatch.PersonaID)
	if !ok {
		logger.Warn("unknown CHAT_PERSONA, using default", zap.String("personaId", cfg.Dispatch.PersonaID))
		p, _ = persona.Resolve(personas, "")
	}

	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		logger.Warn("failed to create chat model, continuing without /chat", zap.Error(err))
		return nil
	}

	svc, err := ai.NewService(ctx, chatModel, p, logger)
	if err != nil {
		logger.Warn("failed to initialize AI service, continuing without /chat", zap.Error(err))
		return nil
	}

	logger.Info("AI service initialized", zap.String("model", cfg.AI.Model), zap.String("personaId", p.ID))
	return svc
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("z-chat listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
