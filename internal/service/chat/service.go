package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shirokuma-ai/companion/internal/model/chat"
	"github.com/shirokuma-ai/companion/internal/model/persona"
	"github.com/shirokuma-ai/companion/internal/service/conversation"
)

var (
	ErrPersonaNotFound = errors.New("persona not found")
	ErrSessionNotFound = errors.New("session not found")
)

// Factory builds the per-session turn orchestrator for a persona.
type Factory func(p persona.Persona) *conversation.Service

// Service is the in-memory session registry for the HTTP surface. Each
// session owns its own context engine and orchestrator, so different sessions
// never share conversational state.
type Service struct {
	mu       sync.RWMutex
	personas persona.Store
	factory  Factory
	sessions map[string]chat.Session
	turns    map[string]*conversation.Service
	records  map[string][]chat.Record
}

// NewService bootstraps the registry.
func NewService(personas persona.Store, factory Factory) *Service {
	return &Service{
		personas: personas,
		factory:  factory,
		sessions: make(map[string]chat.Session),
		turns:    make(map[string]*conversation.Service),
		records:  make(map[string][]chat.Record),
	}
}

// CreateSession provisions an anonymous session bound to a persona. An empty
// persona id selects the default persona.
func (s *Service) CreateSession(_ context.Context, personaID string) (chat.Session, error) {
	var p persona.Persona
	if personaID == "" {
		p = s.personas.Default()
	} else {
		found, ok := s.personas.FindByID(personaID)
		if !ok {
			return chat.Session{}, ErrPersonaNotFound
		}
		p = found
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		PersonaID: p.ID,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.turns[session.ID] = s.factory(p)
	s.records[session.ID] = make([]chat.Record, 0, 16)
	s.mu.Unlock()

	return session, nil
}

// Turn runs one conversation turn for a session and appends both sides of the
// exchange to the audit log.
func (s *Service) Turn(ctx context.Context, sessionID, userText string) (conversation.TurnResult, error) {
	s.mu.RLock()
	orchestrator, ok := s.turns[sessionID]
	s.mu.RUnlock()
	if !ok {
		return conversation.TurnResult{}, ErrSessionNotFound
	}

	result := orchestrator.HandleTurn(ctx, userText)

	now := time.Now().UTC()
	s.mu.Lock()
	s.records[sessionID] = append(s.records[sessionID],
		chat.Record{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Role:      chat.RoleUser,
			Content:   userText,
			CreatedAt: now,
		},
		chat.Record{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Role:      chat.RoleAssistant,
			Content:   result.Text,
			Emotion:   string(result.Emotion),
			CreatedAt: now,
		},
	)
	s.mu.Unlock()

	return result, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Orchestrator exposes a session's turn orchestrator for streaming surfaces.
func (s *Service) Orchestrator(sessionID string) (*conversation.Service, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orchestrator, ok := s.turns[sessionID]
	return orchestrator, ok
}

// Transcript returns the stored records for the provided session.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]chat.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.records[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Record, len(records))
	copy(copied, records)
	return copied, nil
}
