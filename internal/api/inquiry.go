package api

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// handleInquiry forwards the raw inquiry payload to the automation webhook
// and mirrors the upstream verdict. The webhook itself enforces abuse rules;
// a denial comes back as a plain-text reason which we surface as 400.
func handleInquiry(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Inquiry == nil {
			notConfigured(w, "inquiry relay")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "reading request body: %v", err)
			return
		}
		if len(payload) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "request body is required")
			return
		}

		result, err := deps.Inquiry.Relay(r.Context(), payload)
		if err != nil {
			slog.Error("inquiry relay failed", "error", err)
			httpError(w, http.StatusBadGateway, "api_error", "inquiry delivery failed")
			return
		}

		if result.StatusCode < 200 || result.StatusCode >= 300 {
			slog.Warn("inquiry rejected upstream", "status", result.StatusCode, "body", result.Body)
			httpError(w, http.StatusBadRequest, "invalid_request_error", "inquiry rejected: %s", strings.TrimSpace(result.Body))
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
