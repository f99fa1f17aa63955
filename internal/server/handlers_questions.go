package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Mugdhazope/hemut-qna/internal/broadcast"
	apperrors "github.com/Mugdhazope/hemut-qna/internal/errors"
)

type submitQuestionRequest struct {
	Author  string `json:"author"`
	Message string `json:"message"`
}

type addAnswerRequest struct {
	Author string `json:"author"`
	Answer string `json:"answer"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleSubmitQuestion(c echo.Context) error {
	var req submitQuestionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	question, err := s.qa.Submit(c.Request().Context(), req.Author, req.Message)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, broadcast.NewQuestionPayload(question))
}

func (s *Server) handleListQuestions(c echo.Context) error {
	questions, err := s.qa.List(c.Request().Context())
	if err != nil {
		return err
	}

	payload := make([]broadcast.QuestionPayload, 0, len(questions))
	for i := range questions {
		payload = append(payload, broadcast.NewQuestionPayload(&questions[i]))
	}

	return c.JSON(http.StatusOK, payload)
}

func (s *Server) handleAddAnswer(c echo.Context) error {
	var req addAnswerRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	question, err := s.qa.AddAnswer(c.Request().Context(), c.Param("id"), req.Author, req.Answer)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, broadcast.NewQuestionPayload(question))
}

func (s *Server) handleSetStatus(c echo.Context) error {
	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	credential := bearerCredential(c.Request().Header.Get(echo.HeaderAuthorization))
	question, err := s.qa.SetStatus(c.Request().Context(), credential, c.Param("id"), req.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, broadcast.NewQuestionPayload(question))
}

// bearerCredential extracts the token from an "Authorization: Bearer x" header.
// Returns "" when the header is absent or malformed; the core rejects empty
// credentials.
func bearerCredential(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
