package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/innocurve/inoclone/internal/speech"
)

// Whisper rejects uploads above 25MB; mirror the limit here so oversized
// requests fail fast with a clear message.
const maxAudioUploadSize = 25 << 20

func handleSTT(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Transcriber == nil {
			notConfigured(w, "speech-to-text")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxAudioUploadSize)
		if err := r.ParseMultipartForm(maxAudioUploadSize); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid multipart form: %v", err)
			return
		}

		file, header, err := r.FormFile("audio")
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "audio file is required")
			return
		}
		defer file.Close()

		text, err := deps.Transcriber.Transcribe(r.Context(), header.Filename, file)
		if err != nil {
			slog.Error("transcription failed", "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "transcription failed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"text": text})
	}
}

type ttsRequest struct {
	Text          string                `json:"text"`
	VoiceSettings *speech.VoiceSettings `json:"voice_settings,omitempty"`
}

func handleTTS(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Synthesizer == nil {
			notConfigured(w, "text-to-speech")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req ttsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Text == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "text is required")
			return
		}

		audio, err := deps.Synthesizer.Synthesize(r.Context(), req.Text, req.VoiceSettings)
		if err != nil {
			slog.Error("speech synthesis failed", "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "speech synthesis failed")
			return
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(audio)
	}
}
