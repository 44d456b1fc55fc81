package api

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/knolhq/knol/pkg/knowledge"
)

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}

// UploadResponse is the body returned by POST /documents.
type UploadResponse struct {
	Count   int                      `json:"count"`
	Results []knowledge.IngestResult `json:"results"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleUploadDocuments ingests the uploaded multipart files (field name
// "files"). Each file gets its own result; one bad file never fails the
// batch.
func (s *Server) handleUploadDocuments(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "multipart form required"})
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "at least one file is required in the 'files' field"})
	}

	files := make([]knowledge.File, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "reading upload " + h.Filename})
		}

		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "reading upload " + h.Filename})
		}

		files = append(files, knowledge.File{Name: h.Filename, Data: data})
	}

	results := s.service.IngestAll(c.Context(), files)

	return c.JSON(UploadResponse{
		Count:   len(results),
		Results: results,
	})
}

// handleListDocuments returns the stored documents.
func (s *Server) handleListDocuments(c *fiber.Ctx) error {
	docs, err := s.service.Documents(c.Context())
	if err != nil {
		s.logger.Error("listing documents failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list documents"})
	}

	return c.JSON(map[string]any{
		"count":     len(docs),
		"documents": docs,
	})
}

// handleRemoveDocument deletes a document and its chunks.
func (s *Server) handleRemoveDocument(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id parameter required"})
	}

	if err := s.service.Remove(c.Context(), id); err != nil {
		s.logger.Error("removing document failed",
			zap.String("document_id", id),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to remove document"})
	}

	return c.JSON(map[string]any{"removed": id})
}

// handleAsk answers a question against the knowledge base. A question with
// no relevant documents still returns 200 with an ungrounded record; only a
// backend failure maps to an error status.
func (s *Server) handleAsk(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "question is required"})
	}

	record, err := s.service.Ask(c.Context(), req.Question)
	if err != nil {
		s.logger.Error("answering question failed", zap.Error(err))

		if errors.Is(err, knowledge.ErrGenerationFailed) || errors.Is(err, knowledge.ErrEmbeddingUnavailable) {
			return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to answer question"})
	}

	return c.JSON(record)
}

// handleHistory returns the recorded question/answer exchanges.
func (s *Server) handleHistory(c *fiber.Ctx) error {
	records := s.service.History()
	return c.JSON(map[string]any{
		"count":   len(records),
		"history": records,
	})
}

// handleReset clears the knowledge base.
func (s *Server) handleReset(c *fiber.Ctx) error {
	if err := s.service.Reset(c.Context()); err != nil {
		s.logger.Error("reset failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to reset knowledge base"})
	}

	return c.JSON(map[string]any{"reset": true})
}
