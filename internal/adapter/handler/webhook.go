package handler

import (
	"io"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/boardcut/boardcut/errors"
	"github.com/boardcut/boardcut/internal/usecase/highlight"
)

// TranscriptWebhookHandler handles transcription callbacks from AssemblyAI
type TranscriptWebhookHandler struct {
	svc    highlight.Service
	logger *zap.Logger
}

// NewTranscriptWebhookHandler creates a new handler
func NewTranscriptWebhookHandler(svc highlight.Service, logger *zap.Logger) *TranscriptWebhookHandler {
	return &TranscriptWebhookHandler{svc: svc, logger: logger}
}

// HandleAssemblyAIWebhook receives webhooks from AssemblyAI
func (h *TranscriptWebhookHandler) HandleAssemblyAIWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	// AssemblyAI signs requests in a header; try common header names
	signature := c.Request().Header.Get("x-assemblyai-signature")
	if signature == "" {
		signature = c.Request().Header.Get("Authorization")
	}

	if err := h.svc.HandleTranscriptWebhook(c.Request().Context(), body, signature); err != nil {
		if h.logger != nil {
			h.logger.Error("transcript webhook handler error", zap.Error(err))
		}
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ok"})
}
