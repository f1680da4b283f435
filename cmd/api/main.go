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

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"

	"github.com/shirokuma-ai/companion/internal/config"
	"github.com/shirokuma-ai/companion/internal/handler"
	"github.com/shirokuma-ai/companion/internal/model/persona"
	"github.com/shirokuma-ai/companion/internal/service/ai"
	chatservice "github.com/shirokuma-ai/companion/internal/service/chat"
	"github.com/shirokuma-ai/companion/internal/service/conversation"
	"github.com/shirokuma-ai/companion/internal/service/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())

	var chatModel model.ChatModel
	if cfg.AI.Enabled() {
		chatModel, err = cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize chat model: %v", err)
			log.Println("continuing in degraded mode - every reply will be the confused fallback")
		} else {
			log.Println("chat model initialized successfully")
		}
	} else {
		log.Println("model credentials not configured, running in degraded mode")
	}

	gateway := ai.NewService(chatModel, cfg.AI, cfg.Companion)

	factory := func(p persona.Persona) *conversation.Service {
		systemPrompt := ai.BuildSystemPrompt(p, cfg.Companion.MaxResponseLength)
		engine := memory.NewEngine(memory.Config{
			SystemPrompt:     systemPrompt,
			MaxContextTokens: cfg.Companion.MaxContextTokens,
			SummaryThreshold: cfg.Companion.SummaryThreshold,
			KeepExchanges:    cfg.Companion.KeepExchanges,
		}, gateway)
		engine.AddSystem(systemPrompt)
		return conversation.NewService(engine, gateway)
	}

	chatSvc := chatservice.NewService(personaStore, factory)
	router := handler.NewRouter(personaStore, chatSvc)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("companion backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
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
