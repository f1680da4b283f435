// Package conversation drives one request/response cycle per user turn and
// fans the result out to the animation and speech channels.
package conversation

import (
	"context"
	"log"
	"sync"

	"github.com/shirokuma-ai/companion/internal/analysis/emotion"
	"github.com/shirokuma-ai/companion/internal/model/chat"
	"github.com/shirokuma-ai/companion/internal/service/memory"
)

// Generator produces a raw assistant reply for a rendered message list. Must
// be fail-soft; the orchestrator never handles generation errors.
type Generator interface {
	Generate(ctx context.Context, messages []chat.Message) string
}

// TurnResult is the outcome of one conversation turn.
type TurnResult struct {
	Text       string          `json:"text"`
	Emotion    emotion.Emotion `json:"emotion"`
	TokenCount int             `json:"tokenCount"`
}

// channelBuffer bounds the best-effort consumer channels. Sends never block;
// items are dropped once a consumer falls this far behind.
const channelBuffer = 16

// Service orchestrates turns for a single session. Calls are serialized with
// an internal mutex so the engine sees at most one mutation at a time.
type Service struct {
	mu        sync.Mutex
	engine    *memory.Engine
	generator Generator
	emotions  chan emotion.Emotion
	speech    chan string
}

// NewService wires an engine and a generator into a turn orchestrator.
func NewService(engine *memory.Engine, generator Generator) *Service {
	return &Service{
		engine:    engine,
		generator: generator,
		emotions:  make(chan emotion.Emotion, channelBuffer),
		speech:    make(chan string, channelBuffer),
	}
}

// HandleTurn runs one full cycle: record the user message, compress history if
// the token budget demands it, query the model, record the reply and route its
// emotion and clean text downstream. Safe to call repeatedly in a tight loop;
// no cleanup is required between calls.
func (s *Service) HandleTurn(ctx context.Context, userText string) TurnResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.AddUser(userText)

	if s.engine.ShouldSummarize() {
		log.Printf("[conversation] context at %d tokens, summarizing", s.engine.TokenCount())
		s.engine.Summarize(ctx)
	}

	raw := s.generator.Generate(ctx, s.engine.RenderForModel())
	clean, emo := s.engine.AddAssistant(raw)

	s.publish(emo, clean)

	return TurnResult{
		Text:       clean,
		Emotion:    emo,
		TokenCount: s.engine.TokenCount(),
	}
}

// Emotions is the channel of bare emotion tags, one per completed turn.
func (s *Service) Emotions() <-chan emotion.Emotion {
	return s.emotions
}

// Speech is the channel of marker-free reply text, one per completed turn.
func (s *Service) Speech() <-chan string {
	return s.speech
}

// LatestAssistant exposes the engine's most recent reply for read-only
// surfaces.
func (s *Service) LatestAssistant() (string, emotion.Emotion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.LatestAssistant()
}

// TokenCount reports the engine's running token count.
func (s *Service) TokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.TokenCount()
}

// Summary reports the engine's current rolling summary.
func (s *Service) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Summary()
}

// publish routes the turn outcome downstream without ever blocking the
// producer. Consumers that fall behind lose items; that is the contract.
func (s *Service) publish(emo emotion.Emotion, text string) {
	select {
	case s.emotions <- emo:
	default:
		log.Printf("[conversation] emotion channel full, dropping %s", emo)
	}

	select {
	case s.speech <- text:
	default:
		log.Printf("[conversation] speech channel full, dropping reply")
	}
}
