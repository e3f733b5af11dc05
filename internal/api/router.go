package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/innocurve/inoclone/internal/notify"
	"github.com/innocurve/inoclone/internal/pipeline"
	"github.com/innocurve/inoclone/internal/speech"
	"github.com/innocurve/inoclone/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// ChatService answers a conversation as the owner's clone.
// Implemented by pipeline.Orchestrator.
type ChatService interface {
	Chat(ctx context.Context, ownerID int64, turns []pipeline.Turn) (string, pipeline.Metadata, error)
}

// Store is the storage access the HTTP layer needs.
// Implemented by storage.Store.
type Store interface {
	ListChatHistory(ownerID int64) ([]storage.ChatTurn, error)
	SaveReservation(r storage.Reservation) error
	GetGalleryItem(id int64) (storage.GalleryItem, error)
}

// Transcriber converts uploaded audio to text.
// Implemented by openai.Client.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// Synthesizer converts text to MPEG audio.
// Implemented by speech.Client.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, settings *speech.VoiceSettings) ([]byte, error)
}

// Translator translates text into a target language.
// Implemented by translate.Client.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// AlimtalkSender delivers KakaoTalk notification messages.
// Implemented by notify.AlimtalkClient.
type AlimtalkSender interface {
	Send(ctx context.Context, msg notify.AlimtalkMessage) error
}

// SMSSender delivers plain text messages when KakaoTalk delivery is not
// available. Implemented by notify.SMSClient.
type SMSSender interface {
	Send(ctx context.Context, to, content string) error
}

// InquiryRelay forwards inquiry payloads to the automation webhook.
// Implemented by notify.WebhookRelay.
type InquiryRelay interface {
	Relay(ctx context.Context, payload []byte) (notify.RelayResult, error)
}

// Deps holds everything the HTTP surface is wired with. Provider-backed
// fields (Transcriber, Synthesizer, Translator, Alimtalk, SMS, Inquiry) may
// be nil when the matching credentials are not configured; the affected
// endpoints then answer 503.
type Deps struct {
	OwnerID            int64
	OwnerPhone         string
	SenderNumber       string
	CustomerTemplateID string
	OwnerTemplateID    string

	Chat        ChatService
	Store       Store
	Transcriber Transcriber
	Synthesizer Synthesizer
	Translator  Translator
	Alimtalk    AlimtalkSender
	SMS         SMSSender
	Inquiry     InquiryRelay
}

// NewHandler returns the http.Handler for the whole REST API.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/chat", handleChat(deps))
	r.Get("/chat", handleChatHistory(deps))
	r.Post("/stt", handleSTT(deps))
	r.Post("/tts", handleTTS(deps))
	r.Post("/translate", handleTranslate(deps))
	r.Post("/reservation", handleReservation(deps))
	r.Post("/inquiry", handleInquiry(deps))
	r.Post("/send-kakao-message", handleSendKakaoMessage(deps))
	r.Get("/gallery/{id}", handleGalleryItem(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

func notConfigured(w http.ResponseWriter, what string) {
	httpError(w, http.StatusServiceUnavailable, "api_error", "%s is not configured", what)
}
