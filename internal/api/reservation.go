package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/innocurve/inoclone/internal/notify"
	"github.com/innocurve/inoclone/internal/storage"
)

type reservationRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Date        string `json:"date"`
	Message     string `json:"message"`
}

func handleReservation(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req reservationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Name == "" || req.PhoneNumber == "" || req.Date == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name, phoneNumber and date are required")
			return
		}

		date, err := parseReservationDate(req.Date)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid date: %v", err)
			return
		}

		reservation := storage.Reservation{
			ID:          uuid.New().String(),
			Name:        req.Name,
			Email:       req.Email,
			PhoneNumber: req.PhoneNumber,
			Date:        date,
			Message:     req.Message,
			CreatedAt:   time.Now().UTC(),
		}
		if err := deps.Store.SaveReservation(reservation); err != nil {
			slog.Error("saving reservation failed", "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save reservation")
			return
		}

		// Notifications are best effort: the reservation is already durable,
		// so a messaging failure must not fail the request.
		switch {
		case deps.Alimtalk != nil:
			notifyReservation(r, deps, reservation)
		case deps.SMS != nil:
			notifyReservationSMS(r, deps, reservation)
		}

		writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": reservation.ID})
	}
}

func notifyReservation(r *http.Request, deps Deps, reservation storage.Reservation) {
	formattedDate := formatKoreanDate(reservation.Date)

	customer := notify.AlimtalkMessage{
		To:         reservation.PhoneNumber,
		From:       deps.SenderNumber,
		TemplateID: deps.CustomerTemplateID,
		Variables: map[string]string{
			"#{name}": reservation.Name,
			"#{date}": formattedDate,
		},
	}
	if err := deps.Alimtalk.Send(r.Context(), customer); err != nil {
		slog.Warn("customer reservation notification failed", "error", err)
	}

	if deps.OwnerPhone == "" {
		return
	}
	owner := notify.AlimtalkMessage{
		To:         deps.OwnerPhone,
		From:       deps.SenderNumber,
		TemplateID: deps.OwnerTemplateID,
		Variables: map[string]string{
			"#{name}":    reservation.Name,
			"#{date}":    formattedDate,
			"#{phone}":   reservation.PhoneNumber,
			"#{message}": reservation.Message,
		},
	}
	if err := deps.Alimtalk.Send(r.Context(), owner); err != nil {
		slog.Warn("owner reservation notification failed", "error", err)
	}
}

// notifyReservationSMS tells the owner about the reservation by plain SMS
// when no KakaoTalk channel is configured. The customer gets no SMS; only
// templated KakaoTalk messages go to customers.
func notifyReservationSMS(r *http.Request, deps Deps, reservation storage.Reservation) {
	if deps.OwnerPhone == "" {
		return
	}
	content := fmt.Sprintf("[예약] %s / %s / %s",
		reservation.Name, formatKoreanDate(reservation.Date), reservation.PhoneNumber)
	if err := deps.SMS.Send(r.Context(), deps.OwnerPhone, content); err != nil {
		slog.Warn("owner reservation SMS failed", "error", err)
	}
}

func parseReservationDate(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", raw)
}

var koreanWeekdays = [...]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

// formatKoreanDate renders a date the way the notification templates expect,
// e.g. "2026년 8월 28일 금요일".
func formatKoreanDate(t time.Time) string {
	return fmt.Sprintf("%d년 %d월 %d일 %s", t.Year(), int(t.Month()), t.Day(), koreanWeekdays[t.Weekday()])
}
