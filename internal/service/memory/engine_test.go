package memory

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shirokuma-ai/companion/internal/analysis/emotion"
	"github.com/shirokuma-ai/companion/internal/model/chat"
	"github.com/shirokuma-ai/companion/pkg/tokencount"
)

type fakeSummarizer struct {
	summary    string
	transcript []chat.Message
	calls      int
}

func (f *fakeSummarizer) GenerateSummary(_ context.Context, transcript []chat.Message) string {
	f.calls++
	f.transcript = transcript
	return f.summary
}

func testConfig() Config {
	return Config{
		SystemPrompt:     "You are a test companion.",
		MaxContextTokens: 1000,
		SummaryThreshold: 0.7,
		KeepExchanges:    3,
	}
}

func TestShouldSummarizeBoundary(t *testing.T) {
	engine := NewEngine(testConfig(), &fakeSummarizer{})

	// Estimate is len/4+1, so 2796 bytes land exactly on 700 tokens.
	engine.AddUser(strings.Repeat("a", 2796))
	if engine.TokenCount() != 700 {
		t.Fatalf("setup: token count %d, want 700", engine.TokenCount())
	}
	if engine.ShouldSummarize() {
		t.Fatal("should not summarize at exactly the threshold")
	}

	// An empty message still costs one token, crossing to 701.
	engine.AddUser("")
	if engine.TokenCount() != 701 {
		t.Fatalf("setup: token count %d, want 701", engine.TokenCount())
	}
	if !engine.ShouldSummarize() {
		t.Fatal("should summarize one token past the threshold")
	}
}

func TestAddAssistantExtractsEmotionKeepsRaw(t *testing.T) {
	engine := NewEngine(testConfig(), &fakeSummarizer{})

	clean, emo := engine.AddAssistant("Nice to meet you! [excited]")
	if clean != "Nice to meet you!" {
		t.Fatalf("unexpected clean text: %q", clean)
	}
	if emo != emotion.Excited {
		t.Fatalf("unexpected emotion: %s", emo)
	}

	messages := engine.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].Content != "Nice to meet you! [excited]" {
		t.Fatalf("raw content must be stored intact, got %q", messages[0].Content)
	}
	if messages[0].Emotion != emotion.Excited {
		t.Fatalf("stored emotion: %s", messages[0].Emotion)
	}
}

func TestSummarizeRetentionWindow(t *testing.T) {
	summarizer := &fakeSummarizer{summary: "we talked about many things"}
	engine := NewEngine(testConfig(), summarizer)

	engine.AddSystem("You are a test companion.")
	for i := 0; i < 10; i++ {
		engine.AddUser(fmt.Sprintf("question %d", i))
		engine.AddAssistant(fmt.Sprintf("answer %d [curious]", i))
	}

	engine.Summarize(context.Background())

	var nonSystem []chat.Message
	for _, msg := range engine.Messages() {
		if msg.Role != chat.RoleSystem {
			nonSystem = append(nonSystem, msg)
		}
	}
	if len(nonSystem) != 6 {
		t.Fatalf("expected 6 non-system messages after prune, got %d", len(nonSystem))
	}

	// The retained tail is the last three exchanges, order preserved.
	wantContents := []string{
		"question 7", "answer 7 [curious]",
		"question 8", "answer 8 [curious]",
		"question 9", "answer 9 [curious]",
	}
	for i, want := range wantContents {
		if nonSystem[i].Content != want {
			t.Fatalf("message %d: got %q want %q", i, nonSystem[i].Content, want)
		}
	}
}

func TestSummarizeTokenAccountingExact(t *testing.T) {
	summarizer := &fakeSummarizer{summary: "a summary of moderate length for accounting"}
	engine := NewEngine(testConfig(), summarizer)

	engine.AddSystem("You are a test companion.")
	for i := 0; i < 8; i++ {
		engine.AddUser(fmt.Sprintf("user message number %d with some padding text", i))
		engine.AddAssistant(fmt.Sprintf("assistant reply number %d [sad]", i))
	}

	engine.Summarize(context.Background())

	want := tokencount.Estimate(summarizer.summary)
	for _, msg := range engine.Messages() {
		want += tokencount.Estimate(msg.Content)
	}
	if engine.TokenCount() != want {
		t.Fatalf("token count drifted: got %d want %d", engine.TokenCount(), want)
	}

	// A second recalculation must be a fixed point.
	engine.Recalculate()
	if engine.TokenCount() != want {
		t.Fatalf("recalculate not idempotent: got %d want %d", engine.TokenCount(), want)
	}
}

func TestSummarizeOverwritesPriorSummary(t *testing.T) {
	summarizer := &fakeSummarizer{summary: "first summary"}
	engine := NewEngine(testConfig(), summarizer)

	engine.AddSystem("You are a test companion.")
	engine.AddUser("hello")
	engine.AddAssistant("hi [neutral]")
	engine.Summarize(context.Background())

	summarizer.summary = "second summary"
	engine.AddUser("more")
	engine.AddAssistant("sure [neutral]")
	engine.Summarize(context.Background())

	if engine.Summary() != "second summary" {
		t.Fatalf("summaries must overwrite, not concatenate: %q", engine.Summary())
	}
	if summarizer.calls != 2 {
		t.Fatalf("expected 2 summarizer calls, got %d", summarizer.calls)
	}
}

func TestSummarizeEmptyHistoryNoOp(t *testing.T) {
	summarizer := &fakeSummarizer{summary: "unused"}
	engine := NewEngine(testConfig(), summarizer)

	engine.Summarize(context.Background())

	if summarizer.calls != 0 {
		t.Fatal("summarizer must not be called on empty history")
	}
	if engine.Summary() != "" || engine.TokenCount() != 0 {
		t.Fatal("empty engine must stay untouched")
	}
}

func TestSummarizeTranscriptStripsMarkers(t *testing.T) {
	summarizer := &fakeSummarizer{summary: "s"}
	engine := NewEngine(testConfig(), summarizer)

	engine.AddSystem("You are a test companion.")
	engine.AddUser("hello")
	engine.AddAssistant("mwahaha [evil]")
	engine.Summarize(context.Background())

	if len(summarizer.transcript) != 3 {
		t.Fatalf("transcript length: got %d want 3", len(summarizer.transcript))
	}
	if summarizer.transcript[0].Role != chat.RoleSystem {
		t.Fatal("transcript must begin with the system prompt")
	}
	if got := summarizer.transcript[2].Content; got != "mwahaha" {
		t.Fatalf("assistant turns must be emotion-stripped in transcripts, got %q", got)
	}
}

func TestRenderForModelWithoutSummary(t *testing.T) {
	engine := NewEngine(testConfig(), &fakeSummarizer{})
	engine.AddSystem("You are a test companion.")
	engine.AddUser("hello")
	engine.AddAssistant("hi there [excited]")

	rendered := engine.RenderForModel()
	if len(rendered) != 3 {
		t.Fatalf("rendered length: got %d want 3", len(rendered))
	}
	if rendered[0].Role != chat.RoleSystem || rendered[0].Content != "You are a test companion." {
		t.Fatalf("unexpected system message: %+v", rendered[0])
	}
	if rendered[2].Content != "hi there" {
		t.Fatalf("assistant content must be stripped, got %q", rendered[2].Content)
	}
}

func TestRenderForModelWithSummaryPrimer(t *testing.T) {
	summarizer := &fakeSummarizer{summary: "you are Alex, we discussed the sea"}
	engine := NewEngine(testConfig(), summarizer)

	engine.AddSystem("You are a test companion.")
	engine.AddUser("hello")
	engine.AddAssistant("hi [neutral]")
	engine.Summarize(context.Background())

	rendered := engine.RenderForModel()
	if rendered[0].Role != chat.RoleSystem {
		t.Fatal("system prompt must come first")
	}
	if rendered[1].Role != chat.RoleUser || rendered[1].Content != "Here's a summary of our previous conversation: you are Alex, we discussed the sea" {
		t.Fatalf("unexpected summary primer: %+v", rendered[1])
	}
	if rendered[2].Role != chat.RoleAssistant || rendered[2].Content != "I remember our conversation. Let's continue." {
		t.Fatalf("unexpected summary acknowledgment: %+v", rendered[2])
	}
}

func TestLatestAssistant(t *testing.T) {
	engine := NewEngine(testConfig(), &fakeSummarizer{})

	text, emo := engine.LatestAssistant()
	if text != "" || emo != emotion.Neutral {
		t.Fatalf("empty engine: got (%q, %s)", text, emo)
	}

	engine.AddSystem("You are a test companion.")
	engine.AddUser("one")
	engine.AddAssistant("first [sad]")
	engine.AddUser("two")
	engine.AddAssistant("second [triumphant]")

	text, emo = engine.LatestAssistant()
	if text != "second" {
		t.Fatalf("unexpected latest text: %q", text)
	}
	if emo != emotion.Triumphant {
		t.Fatalf("unexpected latest emotion: %s", emo)
	}
}
