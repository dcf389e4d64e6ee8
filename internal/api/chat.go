package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/schemapilot/pilotctl/schema"
)

// GetChatHistory lists chat messages, best effort: any failure yields an
// empty list so callers can render an empty state.
func (c *Client) GetChatHistory(ctx context.Context, runID string) []schema.ChatMessage {
	var out []schema.ChatMessage
	if err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/get-chat-history/" + url.PathEscape(runID),
		fallback: "Failed to get chat history",
	}, &out); err != nil {
		return nil
	}
	return out
}

// SaveChatMessage persists one chat message. The backend dedupes on the
// message id, so re-saving a locally minted draft id is safe.
func (c *Client) SaveChatMessage(ctx context.Context, runID string, msg schema.ChatMessage) error {
	return c.do(ctx, call{
		method:      http.MethodPost,
		path:        "/save-chat-message/" + url.PathEscape(runID),
		body:        jsonBody(msg),
		contentType: "application/json",
		fallback:    "Failed to save chat message",
	}, nil)
}

// DeleteChatMessage removes one chat message by id.
func (c *Client) DeleteChatMessage(ctx context.Context, runID, messageID string) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/delete-chat-message/" + url.PathEscape(runID) + "?message_id=" + url.QueryEscape(messageID),
		fallback: "Failed to delete chat message",
	}, nil)
}
