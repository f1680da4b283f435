package chat

import "github.com/shirokuma-ai/companion/internal/analysis/emotion"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of conversation history as sent to the model. Assistant
// messages keep their raw content, emotion markers included, for audit
// purposes; markers are stripped at render time.
type Message struct {
	Role    Role            `json:"role"`
	Content string          `json:"content"`
	Emotion emotion.Emotion `json:"emotion,omitempty"`
}

// System builds a system message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User builds a user message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Assistant builds an assistant message carrying its extracted emotion.
func Assistant(content string, emo emotion.Emotion) Message {
	return Message{Role: RoleAssistant, Content: content, Emotion: emo}
}
