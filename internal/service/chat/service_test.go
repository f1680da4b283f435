package chat_test

import (
	"context"
	"testing"

	"github.com/shirokuma-ai/companion/internal/model/chat"
	"github.com/shirokuma-ai/companion/internal/model/persona"
	chatservice "github.com/shirokuma-ai/companion/internal/service/chat"
	"github.com/shirokuma-ai/companion/internal/service/conversation"
	"github.com/shirokuma-ai/companion/internal/service/memory"
)

type fakeGenerator struct{ reply string }

func (f *fakeGenerator) Generate(_ context.Context, _ []chat.Message) string {
	return f.reply
}

func (f *fakeGenerator) GenerateSummary(_ context.Context, _ []chat.Message) string {
	return "summary"
}

func newRegistry(reply string) *chatservice.Service {
	store := persona.NewMemoryStore(persona.Seed())
	generator := &fakeGenerator{reply: reply}
	factory := func(p persona.Persona) *conversation.Service {
		engine := memory.NewEngine(memory.Config{
			SystemPrompt:     p.Personality,
			MaxContextTokens: 1000,
			SummaryThreshold: 0.7,
			KeepExchanges:    3,
		}, generator)
		engine.AddSystem(p.Personality)
		return conversation.NewService(engine, generator)
	}
	return chatservice.NewService(store, factory)
}

func TestCreateAndGetSession(t *testing.T) {
	svc := newRegistry("ok [neutral]")
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, persona.DefaultID)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	got, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if got.ID != session.ID {
		t.Fatalf("unexpected session ID: got %s want %s", got.ID, session.ID)
	}
	if got.PersonaID != persona.DefaultID {
		t.Fatalf("unexpected persona ID: got %s", got.PersonaID)
	}
}

func TestCreateSessionDefaultPersona(t *testing.T) {
	svc := newRegistry("ok [neutral]")

	session, err := svc.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	if session.PersonaID != persona.DefaultID {
		t.Fatalf("expected default persona, got %s", session.PersonaID)
	}
}

func TestCreateSessionUnknownPersona(t *testing.T) {
	svc := newRegistry("ok [neutral]")

	if _, err := svc.CreateSession(context.Background(), "missing"); err != chatservice.ErrPersonaNotFound {
		t.Fatalf("expected ErrPersonaNotFound, got %v", err)
	}
}

func TestTurnRecordsBothSides(t *testing.T) {
	svc := newRegistry("Delighted! [excited]")
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	result, err := svc.Turn(ctx, session.ID, "Hello")
	if err != nil {
		t.Fatalf("Turn err: %v", err)
	}
	if result.Text != "Delighted!" || result.Emotion != "excited" {
		t.Fatalf("unexpected result: %+v", result)
	}

	records, err := svc.Transcript(ctx, session.ID)
	if err != nil {
		t.Fatalf("Transcript err: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Role != chat.RoleUser || records[0].Content != "Hello" {
		t.Fatalf("unexpected user record: %+v", records[0])
	}
	if records[1].Role != chat.RoleAssistant || records[1].Emotion != "excited" {
		t.Fatalf("unexpected assistant record: %+v", records[1])
	}
}

func TestTurnUnknownSession(t *testing.T) {
	svc := newRegistry("ok [neutral]")

	if _, err := svc.Turn(context.Background(), "missing", "hi"); err != chatservice.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	svc := newRegistry("reply [sad]")
	ctx := context.Background()

	first, _ := svc.CreateSession(ctx, "")
	second, _ := svc.CreateSession(ctx, "")

	if _, err := svc.Turn(ctx, first.ID, "only for the first"); err != nil {
		t.Fatalf("Turn err: %v", err)
	}

	records, err := svc.Transcript(ctx, second.ID)
	if err != nil {
		t.Fatalf("Transcript err: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("second session must stay empty, got %d records", len(records))
	}
}
