package server

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pdfchat/internal/domain"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

type QuestionRequest struct {
	Question string `json:"question" binding:"required"`
}

type AskResponse struct {
	RequestID  string               `json:"request_id"`
	Answer     string               `json:"answer"`
	AnswerHTML string               `json:"answer_html,omitempty"`
	Context    domain.ParsedContext `json:"context"`
	LatencyMS  int64                `json:"latency_ms"`
}

type RetrieveResponse struct {
	RequestID string               `json:"request_id"`
	Context   domain.ParsedContext `json:"context"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   "pdfchat",
		Version:   s.version,
	})
}

func (s *Server) ask(c *gin.Context) {
	q, ok := bindQuestion(c)
	if !ok {
		return
	}
	ans, err := s.chain.Ask(c.Request.Context(), q)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, AskResponse{
		RequestID:  requestID(c),
		Answer:     ans.Text,
		AnswerHTML: s.renderMarkdown(ans.Text),
		Context:    ans.Context,
		LatencyMS:  ans.Latency.Milliseconds(),
	})
}

func (s *Server) retrieve(c *gin.Context) {
	q, ok := bindQuestion(c)
	if !ok {
		return
	}
	pc, err := s.chain.RetrieveDocuments(c.Request.Context(), q)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, RetrieveResponse{RequestID: requestID(c), Context: pc})
}

func bindQuestion(c *gin.Context) (string, bool) {
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error(), RequestID: requestID(c)})
		return "", false
	}
	q := strings.TrimSpace(req.Question)
	if q == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "question must not be empty", RequestID: requestID(c)})
		return "", false
	}
	return q, true
}

// fail reports an upstream failure; the server keeps serving.
func (s *Server) fail(c *gin.Context, err error) {
	rid := requestID(c)
	s.logger.Error().Err(err).Str("request_id", rid).Msg("Question failed")
	c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error(), RequestID: rid})
}

func (s *Server) renderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(md), &buf); err != nil {
		s.logger.Warn().Err(err).Msg("Could not render answer markdown")
		return ""
	}
	return buf.String()
}

func requestID(c *gin.Context) string {
	return GetRequestID(c.Request.Context())
}
