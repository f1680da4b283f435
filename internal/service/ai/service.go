package ai

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/shirokuma-ai/companion/internal/config"
	"github.com/shirokuma-ai/companion/internal/model/chat"
	"github.com/shirokuma-ai/companion/pkg/tokencount"
)

// FallbackReply is substituted whenever the backing model cannot produce a
// reply. The confused marker keeps the failure visible downstream while the
// conversation loop proceeds as normal.
const FallbackReply = "I'm having trouble thinking right now. [confused]"

// Service is a fail-soft gateway to the chat-completion model. Transport and
// service failures never reach the caller; they degrade into FallbackReply.
type Service struct {
	chatModel model.BaseChatModel
	cfg       config.AIConfig
	companion config.CompanionConfig
}

// NewService wraps a chat model. A nil chatModel yields a service that always
// answers with the degraded fallback, which keeps the rest of the pipeline
// usable without credentials.
func NewService(chatModel model.BaseChatModel, cfg config.AIConfig, companion config.CompanionConfig) *Service {
	return &Service{chatModel: chatModel, cfg: cfg, companion: companion}
}

// Generate runs one chat completion at the configured default temperature and
// returns the assistant's raw text, emotion marker included.
func (s *Service) Generate(ctx context.Context, messages []chat.Message) string {
	return s.generate(ctx, messages, s.cfg.Temperature)
}

// GenerateSummary condenses a transcript. The summary request is appended as a
// final user turn and generation runs at the lower summary temperature.
func (s *Service) GenerateSummary(ctx context.Context, transcript []chat.Message) string {
	request := make([]chat.Message, 0, len(transcript)+1)
	request = append(request, transcript...)
	request = append(request, chat.User(SummaryPrompt(s.companion.MaxResponseLength)))
	return s.generate(ctx, request, s.cfg.SummaryTemperature)
}

func (s *Service) generate(ctx context.Context, messages []chat.Message, temperature float32) string {
	if s.chatModel == nil {
		log.Printf("[ai] no chat model configured, returning fallback reply")
		return FallbackReply
	}

	estimated := estimateTokens(messages)
	log.Printf("[ai] sending ~%s tokens to model (budget %d)", tokencount.Format(estimated), s.companion.MaxContextTokens)

	callCtx := ctx
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	response, err := s.chatModel.Generate(callCtx, toSchemaMessages(messages), model.WithTemperature(temperature))
	if err != nil {
		log.Printf("[ai] model call failed: %v", err)
		return FallbackReply
	}
	log.Printf("[ai] response in %.2fs", time.Since(start).Seconds())

	return ExtractText(response)
}

// ExtractText normalizes heterogeneous response shapes into plain text. This
// is the single normalization boundary for the external service's schema; an
// entirely unrecognized shape is stringified rather than dropped so nothing is
// lost from the logs.
func ExtractText(response any) string {
	switch resp := response.(type) {
	case *schema.Message:
		if resp != nil {
			return resp.Content
		}
	case schema.Message:
		return resp.Content
	case map[string]any:
		if message, ok := resp["message"]; ok {
			switch m := message.(type) {
			case map[string]any:
				if content, ok := m["content"].(string); ok {
					return content
				}
			case *schema.Message:
				if m != nil {
					return m.Content
				}
			}
		}
	}
	return fmt.Sprintf("%v", response)
}

func toSchemaMessages(messages []chat.Message) []*schema.Message {
	converted := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleSystem:
			converted = append(converted, schema.SystemMessage(msg.Content))
		case chat.RoleUser:
			converted = append(converted, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			converted = append(converted, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return converted
}

func estimateTokens(messages []chat.Message) int {
	counted := make([]tokencount.Message, 0, len(messages))
	for _, msg := range messages {
		counted = append(counted, tokencount.Message{Role: string(msg.Role), Content: msg.Content})
	}
	return tokencount.EstimateMessages(counted)
}
