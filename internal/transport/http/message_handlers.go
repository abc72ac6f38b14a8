package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/mailbridge/internal/core"
	"github.com/vovakirdan/mailbridge/internal/store"
)

// MessageHandlers serves the conversation API.
type MessageHandlers struct {
	channel *core.Channel
	log     *zerolog.Logger
}

// NewMessageHandlers creates handlers over the user's channel.
func NewMessageHandlers(ch *core.Channel, logger *zerolog.Logger) *MessageHandlers {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &MessageHandlers{
		channel: ch,
		log:     logger,
	}
}

// SendRequest represents the send request body.
type SendRequest struct {
	Message string `json:"message"`
}

// SendResponse reports whether the message was stored.
type SendResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ListMessages returns the merged conversation in timestamp order.
// GET /api/messages
func (h *MessageHandlers) ListMessages(c *gin.Context) {
	msgs, err := h.channel.History(c.Request.Context())
	if err != nil {
		// Partial history is still useful to the page.
		h.log.Warn().Err(err).Msg("failed to load part of the conversation")
	}
	c.JSON(http.StatusOK, toMessageResponses(msgs))
}

// Send stores a user message for the assistant.
// POST /api/send
func (h *MessageHandlers) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid send request")
		c.JSON(http.StatusBadRequest, SendResponse{Error: "invalid request body"})
		return
	}

	text := strings.TrimSpace(req.Message)
	if text == "" {
		c.JSON(http.StatusBadRequest, SendResponse{Error: "message is required"})
		return
	}

	if err := h.channel.Submit(c.Request.Context(), store.SenderUser, text); err != nil {
		h.log.Error().Err(err).Msg("failed to store user message")
		c.JSON(http.StatusInternalServerError, SendResponse{Error: "failed to store message"})
		return
	}

	c.JSON(http.StatusOK, SendResponse{Success: true})
}
