package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/innocurve/inoclone/internal/storage"
)

type galleryResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	CreatedAt   string `json:"created_at"`
}

func handleGalleryItem(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid gallery id")
			return
		}

		item, err := deps.Store.GetGalleryItem(id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, "invalid_request_error", "gallery item %d not found", id)
				return
			}
			slog.Error("loading gallery item failed", "id", id, "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load gallery item")
			return
		}

		writeJSON(w, http.StatusOK, galleryResponse{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			ImageURL:    item.ImageURL,
			CreatedAt:   item.CreatedAt.Format(time.RFC3339),
		})
	}
}
