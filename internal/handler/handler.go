package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/GoArmGo/ArtMarket/internal/domain"
	"github.com/GoArmGo/ArtMarket/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Handler — обработчик HTTP-запросов галереи, оценок и аккаунтов.
type Handler struct {
	artworks       usecase.ArtworkUseCase
	ratings        usecase.RatingUseCase
	accounts       usecase.AccountUseCase
	validate       *validator.Validate
	uploadLimiter  chan struct{}
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewHandler создаёт новый экземпляр Handler.
// uploadLimiter ограничивает число одновременных загрузок изображений.
func NewHandler(
	artworks usecase.ArtworkUseCase,
	ratings usecase.RatingUseCase,
	accounts usecase.AccountUseCase,
	limiter chan struct{},
	maxUploadBytes int64,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		artworks:       artworks,
		ratings:        ratings,
		accounts:       accounts,
		validate:       validator.New(),
		uploadLimiter:  limiter,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// respondWithJSON — отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError — отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"error": message}, logger)
}

// statusFor сопоставляет доменную ошибку с HTTP-статусом.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrSelfRatingForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidScore),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTransientIO):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondWithUseCaseError логирует ошибку и отвечает статусом по её типу.
// Текст внутренних ошибок клиенту не отдаётся.
func (h *Handler) respondWithUseCaseError(w http.ResponseWriter, r *http.Request, op string, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("request failed", "op", op, "path", r.URL.Path, "error", err)
		if code == http.StatusServiceUnavailable {
			respondWithError(w, code, domain.ErrTransientIO.Error(), h.logger)
			return
		}
		respondWithError(w, code, "Внутренняя ошибка сервера", h.logger)
		return
	}
	h.logger.Warn("request rejected", "op", op, "path", r.URL.Path, "status", code, "error", err)
	respondWithError(w, code, err.Error(), h.logger)
}

// decodeJSON читает тело запроса и проверяет его тегами validate.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректный JSON", h.logger)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		respondWithJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "Некорректные данные",
			"details": err.Error(),
		}, h.logger)
		return false
	}
	return true
}

// artworkID разбирает {id} из пути.
func (h *Handler) artworkID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Warn("invalid artwork id", "id", raw, "error", err)
		respondWithError(w, http.StatusBadRequest, "Некорректный id работы", h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// pageParam читает ?page=; всё, что не число, означает первую страницу.
func pageParam(r *http.Request) int {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	return page
}

// Health — проверка живости.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}
