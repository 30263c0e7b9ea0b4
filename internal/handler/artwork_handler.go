package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/GoArmGo/ArtMarket/internal/domain"
	"github.com/GoArmGo/ArtMarket/internal/imaging"
	"github.com/GoArmGo/ArtMarket/internal/usecase"
)

// multipartOverhead — запас на поля формы сверх самого файла.
const multipartOverhead = 1 << 20

type createArtworkRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Artist      string `json:"artist" validate:"max=200"`
	Description string `json:"description" validate:"max=5000"`
	Category    string `json:"category"`
	AspectRatio string `json:"aspect_ratio"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	ImageData   string `json:"image_data"`
}

type updateArtworkRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Artist      *string `json:"artist" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

type flagRequest struct {
	Flagged *bool `json:"flagged" validate:"required"`
}

// Gallery — общая лента с фильтром ?category= и страницей ?page=.
func (h *Handler) Gallery(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	page := pageParam(r)

	view, err := h.artworks.Gallery(r.Context(), SessionFromContext(r.Context()), category, page)
	if err != nil {
		h.respondWithUseCaseError(w, r, "Gallery", err)
		return
	}

	h.logger.Debug("gallery page served",
		"category", view.Category,
		"page", view.Page,
		"total_pages", view.TotalPages,
		"items", len(view.Items),
	)
	respondWithJSON(w, http.StatusOK, view, h.logger)
}

// MyArtworks — работы текущего пользователя.
func (h *Handler) MyArtworks(w http.ResponseWriter, r *http.Request) {
	view, err := h.artworks.MyArtworks(r.Context(), SessionFromContext(r.Context()), pageParam(r))
	if err != nil {
		h.respondWithUseCaseError(w, r, "MyArtworks", err)
		return
	}
	respondWithJSON(w, http.StatusOK, view, h.logger)
}

// CreateArtwork принимает JSON (image_url или image_data) либо
// multipart/form-data с файлом в поле "image".
func (h *Handler) CreateArtwork(w http.ResponseWriter, r *http.Request) {
	var (
		in usecase.NewArtwork
		ok bool
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		in, ok = h.readMultipartArtwork(w, r)
	} else {
		in, ok = h.readJSONArtwork(w, r)
	}
	if !ok {
		return
	}

	release, err := h.acquireUpload(r.Context())
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "Сервер перегружен, повторите позже", h.logger)
		return
	}
	defer release()

	artwork, err := h.artworks.Create(r.Context(), SessionFromContext(r.Context()), in)
	if err != nil {
		h.respondWithUseCaseError(w, r, "CreateArtwork", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, artwork, h.logger)
}

func (h *Handler) readJSONArtwork(w http.ResponseWriter, r *http.Request) (usecase.NewArtwork, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes*2+multipartOverhead)
	var req createArtworkRequest
	if !h.decodeJSON(w, r, &req) {
		return usecase.NewArtwork{}, false
	}
	return usecase.NewArtwork{
		Title:       req.Title,
		Artist:      req.Artist,
		Description: req.Description,
		Category:    req.Category,
		AspectRatio: req.AspectRatio,
		ImageURL:    req.ImageURL,
		ImageData:   req.ImageData,
	}, true
}

func (h *Handler) readMultipartArtwork(w http.ResponseWriter, r *http.Request) (usecase.NewArtwork, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Файл слишком большой", h.logger)
			return usecase.NewArtwork{}, false
		}
		respondWithError(w, http.StatusBadRequest, "Некорректная форма", h.logger)
		return usecase.NewArtwork{}, false
	}

	in := usecase.NewArtwork{
		Title:       r.FormValue("title"),
		Artist:      r.FormValue("artist"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		AspectRatio: r.FormValue("aspect_ratio"),
		ImageURL:    r.FormValue("image_url"),
	}

	file, _, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return in, true
	case err != nil:
		respondWithError(w, http.StatusBadRequest, "Не удалось прочитать файл", h.logger)
		return in, false
	}
	defer file.Close()

	data, err := imaging.ReadLimited(file, h.maxUploadBytes)
	if err != nil {
		respondWithError(w, statusFor(err), err.Error(), h.logger)
		return in, false
	}
	in.ImageBytes = data
	return in, true
}

// acquireUpload занимает слот лимитера загрузок или ждёт отмены запроса.
func (h *Handler) acquireUpload(ctx context.Context) (func(), error) {
	if h.uploadLimiter == nil {
		return func() {}, nil
	}
	select {
	case h.uploadLimiter <- struct{}{}:
		return func() { <-h.uploadLimiter }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetArtwork — работа со сводкой оценок.
func (h *Handler) GetArtwork(w http.ResponseWriter, r *http.Request) {
	id, ok := h.artworkID(w, r)
	if !ok {
		return
	}

	details, err := h.artworks.Get(r.Context(), SessionFromContext(r.Context()), id)
	if err != nil {
		h.respondWithUseCaseError(w, r, "GetArtwork", err)
		return
	}
	respondWithJSON(w, http.StatusOK, details, h.logger)
}

// UpdateArtwork меняет название, автора или описание.
func (h *Handler) UpdateArtwork(w http.ResponseWriter, r *http.Request) {
	id, ok := h.artworkID(w, r)
	if !ok {
		return
	}
	var req updateArtworkRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	artwork, err := h.artworks.UpdateDetails(r.Context(), SessionFromContext(r.Context()), id, domain.ArtworkPatch{
		Title:       req.Title,
		Artist:      req.Artist,
		Description: req.Description,
	})
	if err != nil {
		h.respondWithUseCaseError(w, r, "UpdateArtwork", err)
		return
	}
	respondWithJSON(w, http.StatusOK, artwork, h.logger)
}

// DeleteArtwork удаляет работу (владелец или админ).
func (h *Handler) DeleteArtwork(w http.ResponseWriter, r *http.Request) {
	id, ok := h.artworkID(w, r)
	if !ok {
		return
	}

	if err := h.artworks.Delete(r.Context(), SessionFromContext(r.Context()), id); err != nil {
		h.respondWithUseCaseError(w, r, "DeleteArtwork", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FlagArtwork ставит или снимает отметку модерации.
func (h *Handler) FlagArtwork(w http.ResponseWriter, r *http.Request) {
	id, ok := h.artworkID(w, r)
	if !ok {
		return
	}
	var req flagRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.artworks.SetFlagged(r.Context(), SessionFromContext(r.Context()), id, *req.Flagged); err != nil {
		h.respondWithUseCaseError(w, r, "FlagArtwork", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"id": id, "flagged": *req.Flagged}, h.logger)
}

// AdminOverview — работы и счётчики для панели администратора.
// ?flagged=true оставляет в списке только отмеченные работы.
func (h *Handler) AdminOverview(w http.ResponseWriter, r *http.Request) {
	flaggedOnly := false
	if raw := r.URL.Query().Get("flagged"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Некорректный параметр flagged", h.logger)
			return
		}
		flaggedOnly = v
	}

	overview, err := h.artworks.AdminOverview(r.Context(), SessionFromContext(r.Context()), flaggedOnly)
	if err != nil {
		h.respondWithUseCaseError(w, r, "AdminOverview", err)
		return
	}
	respondWithJSON(w, http.StatusOK, overview, h.logger)
}
