package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/domain"
)

func TestAppendKeepsOrder(t *testing.T) {
	s := New()
	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)

	s.Append(domain.RoleUser, "What is machine learning?")
	s.Append(domain.RoleAssistant, "Learning from data.")
	require.Len(t, s.Messages, 2)
	assert.Equal(t, domain.RoleUser, s.Messages[0].Role)
	assert.Equal(t, "Learning from data.", s.Messages[1].Content)
}

func TestResetClearsState(t *testing.T) {
	s := New()
	id := s.ID
	s.Append(domain.RoleUser, "q")
	s.SetContext(domain.ParsedContext{Images: []string{"aGk="}, Texts: []domain.Document{{Content: "t"}}})

	s.Reset()
	assert.NotEqual(t, id, s.ID)
	assert.Empty(t, s.Messages)
	assert.Equal(t, domain.EmptyContext(), s.LastContext)
}
