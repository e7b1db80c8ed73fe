// Package session keeps the per-user chat state of one conversation.
package session

import (
	"github.com/google/uuid"

	"pdfchat/internal/domain"
)

// Session is owned by a single UI instance and is not safe for concurrent use.
type Session struct {
	ID          string
	Messages    []domain.ChatMessage
	LastContext domain.ParsedContext
}

func New() *Session {
	return &Session{ID: uuid.NewString(), LastContext: domain.EmptyContext()}
}

// Append adds a message to the history.
func (s *Session) Append(role domain.Role, content string) {
	s.Messages = append(s.Messages, domain.ChatMessage{Role: role, Content: content})
}

// SetContext records the context used for the most recent question.
func (s *Session) SetContext(pc domain.ParsedContext) {
	s.LastContext = pc
}

// Reset starts a new conversation with a fresh id.
func (s *Session) Reset() {
	s.ID = uuid.NewString()
	s.Messages = nil
	s.LastContext = domain.EmptyContext()
}
