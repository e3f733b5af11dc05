package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/innocurve/inoclone/internal/notify"
	"github.com/innocurve/inoclone/internal/storage"
)

type kakaoMessageRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

// handleSendKakaoMessage captures a "contact me via KakaoTalk" request from
// the card page. The contact is stored as a reservation row so the owner can
// follow up even when message delivery fails; when a KakaoTalk channel is
// configured the visitor also gets the templated confirmation message.
func handleSendKakaoMessage(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req kakaoMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Name == "" || req.PhoneNumber == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name and phoneNumber are required")
			return
		}

		contact := storage.Reservation{
			ID:          uuid.New().String(),
			Name:        req.Name,
			PhoneNumber: req.PhoneNumber,
			Date:        time.Now().UTC(),
			Message:     "카카오톡 안내 요청",
			CreatedAt:   time.Now().UTC(),
		}
		if err := deps.Store.SaveReservation(contact); err != nil {
			slog.Error("saving kakao contact failed", "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save contact")
			return
		}

		if deps.Alimtalk != nil {
			msg := notify.AlimtalkMessage{
				To:         req.PhoneNumber,
				From:       deps.SenderNumber,
				TemplateID: deps.CustomerTemplateID,
				Variables: map[string]string{
					"#{name}": req.Name,
					"#{date}": formatKoreanDate(contact.Date),
				},
			}
			if err := deps.Alimtalk.Send(r.Context(), msg); err != nil {
				slog.Warn("kakao message delivery failed", "to", req.PhoneNumber, "error", err)
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": contact.ID})
	}
}
