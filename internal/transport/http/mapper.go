package http

import (
	"github.com/vovakirdan/mailbridge/internal/store"
)

// MessageResponse is a conversation entry as shown to the page.
type MessageResponse struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func toMessageResponses(msgs []store.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, MessageResponse{
			Sender:    string(msg.Sender),
			Message:   msg.Message,
			Timestamp: msg.TimestampText(),
		})
	}
	return out
}
