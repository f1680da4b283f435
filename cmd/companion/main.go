// Command companion runs the interactive CLI companion: a read-eval loop that
// sends user lines through the conversation pipeline and drives the animation
// and speech agents from its output channels.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"

	"github.com/shirokuma-ai/companion/internal/agent"
	"github.com/shirokuma-ai/companion/internal/config"
	"github.com/shirokuma-ai/companion/internal/model/persona"
	"github.com/shirokuma-ai/companion/internal/service/ai"
	"github.com/shirokuma-ai/companion/internal/service/conversation"
	"github.com/shirokuma-ai/companion/internal/service/memory"
	"github.com/shirokuma-ai/companion/pkg/tokencount"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	p := personaStore.Default()
	if cfg.Companion.DefaultPersona != "" {
		if found, ok := personaStore.FindByID(cfg.Companion.DefaultPersona); ok {
			p = found
		} else {
			log.Printf("warning: unknown persona %q, using %s", cfg.Companion.DefaultPersona, p.ID)
		}
	}

	var chatModel model.ChatModel
	if cfg.AI.Enabled() {
		chatModel, err = cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize chat model: %v", err)
		}
	} else {
		log.Println("model credentials not configured, running in degraded mode")
	}

	gateway := ai.NewService(chatModel, cfg.AI, cfg.Companion)

	systemPrompt := ai.BuildSystemPrompt(p, cfg.Companion.MaxResponseLength)
	engine := memory.NewEngine(memory.Config{
		SystemPrompt:     systemPrompt,
		MaxContextTokens: cfg.Companion.MaxContextTokens,
		SummaryThreshold: cfg.Companion.SummaryThreshold,
		KeepExchanges:    cfg.Companion.KeepExchanges,
	}, gateway)
	engine.AddSystem(systemPrompt)

	orchestrator := conversation.NewService(engine, gateway)

	animationAgent := agent.NewAnimationAgent(orchestrator.Emotions())
	animationAgent.Start(ctx)
	defer animationAgent.Stop()

	speechAgent := agent.NewSpeechAgent(orchestrator.Speech())
	speechAgent.Start(ctx)
	defer speechAgent.Stop()

	fmt.Printf("%s is listening. Type 'exit' to quit.\n", p.Name)
	fmt.Printf("%s: %s\n", p.Name, p.OpeningLine)

	runLoop(ctx, cfg.Companion, p, orchestrator)

	fmt.Println("Goodbye!")
}

func runLoop(ctx context.Context, cfg config.CompanionConfig, p persona.Persona, orchestrator *conversation.Service) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		default:
		}

		fmt.Print("You: ")
		if !scanner.Scan() {
			return
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "exit", "quit", "bye":
			return
		}

		result := orchestrator.HandleTurn(ctx, input)

		fmt.Printf("%s: %s\n", p.Name, result.Text)
		fmt.Printf("Emotion: %s\n", result.Emotion)

		usage := float64(result.TokenCount) / float64(cfg.MaxContextTokens) * 100
		log.Printf("[context] %s tokens (~%.1f%% of window)", tokencount.Format(result.TokenCount), usage)
		if summary := orchestrator.Summary(); summary != "" {
			log.Printf("[context] rolling summary active: %.50s...", summary)
		}
	}
}
