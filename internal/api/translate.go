package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type translateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
}

func handleTranslate(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Translator == nil {
			notConfigured(w, "translation")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req translateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Text == "" || req.TargetLanguage == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "text and targetLanguage are required")
			return
		}

		translated, err := deps.Translator.Translate(r.Context(), req.Text, req.TargetLanguage)
		if err != nil {
			slog.Error("translation failed", "target", req.TargetLanguage, "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "translation failed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"translatedText": translated})
	}
}
