// Package memory owns a session's conversation history, its running token
// count and the rolling summary that keeps the model context bounded.
package memory

import (
	"context"
	"log"

	"github.com/shirokuma-ai/companion/internal/analysis/emotion"
	"github.com/shirokuma-ai/companion/internal/model/chat"
	"github.com/shirokuma-ai/companion/pkg/tokencount"
)

// Summarizer produces a condensed summary of a transcript. It must be
// fail-soft: a degraded summary is acceptable, an error is not part of the
// contract.
type Summarizer interface {
	GenerateSummary(ctx context.Context, transcript []chat.Message) string
}

// Config carries the context-window management knobs for one engine.
type Config struct {
	SystemPrompt     string
	MaxContextTokens int
	SummaryThreshold float64
	KeepExchanges    int
}

// Engine is the per-session context state machine. It is not internally
// synchronized: callers serialize access, normally behind the orchestrator's
// mutex.
type Engine struct {
	cfg        Config
	summarizer Summarizer
	messages   []chat.Message
	tokenCount int
	summary    string
}

const (
	summaryPreamble = "Here's a summary of our previous conversation: "
	summaryAck      = "I remember our conversation. Let's continue."
)

// NewEngine builds an empty engine. The caller injects the system prompt with
// AddSystem before the first user turn.
func NewEngine(cfg Config, summarizer Summarizer) *Engine {
	if cfg.KeepExchanges <= 0 {
		cfg.KeepExchanges = 3
	}
	return &Engine{cfg: cfg, summarizer: summarizer}
}

// AddSystem appends a system message. Called once per session before any user
// turn.
func (e *Engine) AddSystem(content string) {
	e.messages = append(e.messages, chat.System(content))
	e.tokenCount += tokencount.Estimate(content)
}

// AddUser appends a user message.
func (e *Engine) AddUser(content string) {
	e.messages = append(e.messages, chat.User(content))
	e.tokenCount += tokencount.Estimate(content)
}

// AddAssistant extracts the emotion from raw model output, stores the message
// with its original content intact for audit, and returns the cleaned text and
// emotion for routing.
func (e *Engine) AddAssistant(raw string) (string, emotion.Emotion) {
	clean, emo := emotion.Extract(raw)
	e.messages = append(e.messages, chat.Assistant(raw, emo))
	e.tokenCount += tokencount.Estimate(raw)
	return clean, emo
}

// ShouldSummarize reports whether the running token count has crossed the
// configured fraction of the context window. Pure predicate, no side effects.
func (e *Engine) ShouldSummarize() bool {
	return float64(e.tokenCount) > float64(e.cfg.MaxContextTokens)*e.cfg.SummaryThreshold
}

// Summarize compresses the conversation: it asks the summarizer for a fresh
// summary of the currently visible transcript, prunes history to the most
// recent exchanges and recomputes the token count from scratch. Each summary
// overwrites the previous one; prior compressions survive only through the
// retained tail that fed this transcript. A no-op on empty history.
func (e *Engine) Summarize(ctx context.Context) {
	if len(e.messages) == 0 {
		return
	}

	e.summary = e.summarizer.GenerateSummary(ctx, e.transcript())
	log.Printf("[memory] new summary created: %s", truncate(e.summary, 50))

	e.prune(e.cfg.KeepExchanges)
	e.Recalculate()
}

// Recalculate rebuilds the token count from scratch: summary plus every
// retained message. Mandatory after any boundary where whole messages are
// discarded, so incremental drift cannot survive a prune.
func (e *Engine) Recalculate() {
	total := 0
	if e.summary != "" {
		total += tokencount.Estimate(e.summary)
	}
	for _, msg := range e.messages {
		total += tokencount.Estimate(msg.Content)
	}
	e.tokenCount = total
}

// RenderForModel derives the message list sent to the model: the system
// prompt first, then, when a summary exists, a synthetic user/assistant pair
// priming the model with it, then every retained message in order. Assistant
// content is emotion-stripped so the model never sees its own markers echoed
// back as history.
func (e *Engine) RenderForModel() []chat.Message {
	rendered := make([]chat.Message, 0, len(e.messages)+3)
	rendered = append(rendered, chat.System(e.systemPrompt()))

	if e.summary != "" {
		rendered = append(rendered, chat.User(summaryPreamble+e.summary))
		rendered = append(rendered, chat.Assistant(summaryAck, emotion.Neutral))
	}

	rendered = append(rendered, e.conversation()...)
	return rendered
}

// LatestAssistant returns the most recent assistant reply, emotion-stripped,
// with its emotion tag. Empty text and the default emotion when none exists.
func (e *Engine) LatestAssistant() (string, emotion.Emotion) {
	for i := len(e.messages) - 1; i >= 0; i-- {
		msg := e.messages[i]
		if msg.Role != chat.RoleAssistant {
			continue
		}
		emo := msg.Emotion
		if emo == "" {
			emo = emotion.Default
		}
		return emotion.Strip(msg.Content), emo
	}
	return "", emotion.Default
}

// TokenCount returns the current running token count.
func (e *Engine) TokenCount() int {
	return e.tokenCount
}

// Summary returns the current rolling summary, empty when no compression has
// happened yet.
func (e *Engine) Summary() string {
	return e.summary
}

// Messages returns a copy of the retained history.
func (e *Engine) Messages() []chat.Message {
	return append([]chat.Message(nil), e.messages...)
}

// transcript renders the full visible conversation for summary generation:
// system prompt plus all retained turns, assistant content emotion-stripped.
func (e *Engine) transcript() []chat.Message {
	transcript := make([]chat.Message, 0, len(e.messages)+1)
	transcript = append(transcript, chat.System(e.systemPrompt()))
	transcript = append(transcript, e.conversation()...)
	return transcript
}

// conversation renders the retained non-system messages with assistant turns
// emotion-stripped.
func (e *Engine) conversation() []chat.Message {
	rendered := make([]chat.Message, 0, len(e.messages))
	for _, msg := range e.messages {
		switch msg.Role {
		case chat.RoleUser:
			rendered = append(rendered, chat.User(msg.Content))
		case chat.RoleAssistant:
			rendered = append(rendered, chat.Assistant(emotion.Strip(msg.Content), msg.Emotion))
		}
	}
	return rendered
}

// prune retains the system message plus the last keepExchanges*2 non-system
// messages, preserving relative order.
func (e *Engine) prune(keepExchanges int) {
	keep := keepExchanges * 2

	var retained []chat.Message
	var rest []chat.Message
	for _, msg := range e.messages {
		if msg.Role == chat.RoleSystem {
			retained = append(retained, msg)
		} else {
			rest = append(rest, msg)
		}
	}

	if len(rest) > keep {
		rest = rest[len(rest)-keep:]
	}
	e.messages = append(retained, rest...)
}

// systemPrompt prefers the injected system message, falling back to the
// configured prompt.
func (e *Engine) systemPrompt() string {
	for _, msg := range e.messages {
		if msg.Role == chat.RoleSystem {
			return msg.Content
		}
	}
	return e.cfg.SystemPrompt
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
