package ai

import (
	"fmt"
	"strings"

	"github.com/shirokuma-ai/companion/internal/analysis/emotion"
	"github.com/shirokuma-ai/companion/internal/model/persona"
)

// BuildSystemPrompt assembles the system prompt for a persona: the personality
// description followed by the hard formatting rules. The emotion-tag rule is
// shared by every persona because the downstream pipeline depends on it.
func BuildSystemPrompt(p persona.Persona, maxResponseLength int) string {
	var builder strings.Builder
	builder.WriteString(strings.TrimSpace(p.Personality))

	if len(p.Traits) > 0 {
		builder.WriteString("\nYour defining traits: ")
		builder.WriteString(strings.Join(p.Traits, ", "))
		builder.WriteString(".")
	}

	builder.WriteString(fmt.Sprintf(`

YOU MUST FOLLOW THESE RULES EXACTLY:
1. Keep responses under %d characters
2. End with exactly ONE emotion tag: %s
3. Don't repeat what the user said
4. Remember all previous information in the conversation`, maxResponseLength, emotionTagList()))

	return builder.String()
}

// SummaryPrompt is the request appended to a transcript when asking the model
// to compress the conversation.
func SummaryPrompt(maxWords int) string {
	return fmt.Sprintf(`Concisely summarize our conversation so far.
Include only important information like my identity and our relationship,
as well as the main topics discussed. Maximum %d words.`, maxWords)
}

func emotionTagList() string {
	tags := []string{
		string(emotion.Excited),
		string(emotion.Evil),
		string(emotion.Embarrassed),
		string(emotion.Annoyed),
		string(emotion.Curious),
		string(emotion.Triumphant),
		string(emotion.Sad),
		string(emotion.Neutral),
	}
	for i, tag := range tags {
		tags[i] = "[" + tag + "]"
	}
	return strings.Join(tags, ", ")
}
