package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/zhouzirui/z-chat/internal/model/chat"
	"github.com/zhouzirui/z-chat/internal/service/conversation"
)

var (
	ErrPersonaRequired = errors.New("persona id is required")
	ErrSessionNotFound = errors.New("session not found")
)

type entry struct {
	session    chat.Session
	controller *conversation.Controller
}

// Service keeps one conversation per open page. Nothing outlives the process.
type Service struct {
	mu         sync.RWMutex
	sessions   map[string]entry
	dispatcher conversation.Dispatcher
	logger     *zap.Logger
}

// NewService creates an empty registry whose conversations use dispatcher.
func NewService(dispatcher conversation.Dispatcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sessions:   make(map[string]entry),
		dispatcher: dispatcher,
		logger:     logger.Named("sessions"),
	}
}

// CreateSession provisions an empty conversation bound to a persona.
func (s *Service) CreateSession(_ context.Context, personaID string) (chat.Session, error) {
	if personaID == "" {
		return chat.Session{}, ErrPersonaRequired
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		PersonaID: personaID,
		CreatedAt: time.Now().UTC(),
	}

	controller := conversation.NewController(
		conversation.NewStore(),
		s.dispatcher,
		s.logger.With(zap.String("sessionId", session.ID)),
	)

	s.mu.Lock()
	s.sessions[session.ID] = entry{session: session, controller: controller}
	s.mu.Unlock()

	s.logger.Info("session created",
		zap.String("sessionId", session.ID),
		zap.String("personaId", personaID),
		zap.Int("open", s.Count()),
	)
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return e.session, nil
}

// Controller returns the submit controller of a session.
func (s *Service) Controller(_ context.Context, sessionID string) (*conversation.Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.controller, nil
}

// DeleteSession discards a session and releases its subscribers.
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	e.controller.Store().Close()
	s.logger.Info("session discarded", zap.String("sessionId", sessionID), zap.Int("open", s.Count()))
	return nil
}

// Count returns the number of open sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
