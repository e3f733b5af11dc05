package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/innocurve/inoclone/internal/pipeline"
)

type chatRequest struct {
	Messages []pipeline.Turn `json:"messages"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func handleChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if len(req.Messages) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "messages is required and must not be empty")
			return
		}

		reply, meta, err := deps.Chat.Chat(r.Context(), deps.OwnerID, req.Messages)
		if err != nil {
			if errors.Is(err, pipeline.ErrNoUserMessage) {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "messages must contain a user message")
				return
			}
			slog.Error("chat request failed", "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "An error occurred during the conversation")
			return
		}

		slog.Debug("chat request served",
			"person_resolved", meta.PersonResolved,
			"knowledge_used", meta.KnowledgeUsed,
			"duration_ms", meta.DurationMs,
		)
		writeJSON(w, http.StatusOK, chatResponse{Response: reply})
	}
}

type historyTurn struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func handleChatHistory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		turns, err := deps.Store.ListChatHistory(deps.OwnerID)
		if err != nil {
			slog.Error("listing chat history failed", "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load chat history")
			return
		}

		history := make([]historyTurn, len(turns))
		for i, t := range turns {
			history[i] = historyTurn{
				ID:        t.ID,
				Role:      t.Role,
				Content:   t.Content,
				CreatedAt: t.CreatedAt.Format(time.RFC3339),
			}
		}
		writeJSON(w, http.StatusOK, history)
	}
}
