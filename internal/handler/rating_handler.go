package handler

import (
	"net/http"
)

type rateRequest struct {
	Score  *float64 `json:"score" validate:"required"`
	Review string   `json:"review" validate:"max=2000"`
}

// Ratings — сводка оценок; для авторизованного запроса с его собственной оценкой.
func (h *Handler) Ratings(w http.ResponseWriter, r *http.Request) {
	id, ok := h.artworkID(w, r)
	if !ok {
		return
	}

	summary, err := h.ratings.Summary(r.Context(), SessionFromContext(r.Context()), id)
	if err != nil {
		h.respondWithUseCaseError(w, r, "Ratings", err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary, h.logger)
}

// Rate ставит или заменяет оценку текущего пользователя.
// Диапазон балла проверяет usecase, чтобы ответ был единым 400 с его текстом.
func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.artworkID(w, r)
	if !ok {
		return
	}
	var req rateRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	summary, err := h.ratings.Rate(r.Context(), SessionFromContext(r.Context()), id, *req.Score, req.Review)
	if err != nil {
		h.respondWithUseCaseError(w, r, "Rate", err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary, h.logger)
}
