package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/GoArmGo/ArtMarket/internal/core/ports"
	"github.com/GoArmGo/ArtMarket/internal/domain"
	"github.com/GoArmGo/ArtMarket/internal/gallery"
	"github.com/GoArmGo/ArtMarket/internal/imaging"
	"github.com/GoArmGo/ArtMarket/internal/messaging/payloads"
	"github.com/GoArmGo/ArtMarket/internal/rating"
	"github.com/google/uuid"
)

const (
	maxTitleLen       = 200
	maxArtistLen      = 200
	maxDescriptionLen = 5000
)

// ArtworkOptions — настройки галереи и конвейера изображений.
type ArtworkOptions struct {
	GalleryPageSize      int
	MyArtworkPageSize    int
	MaxImageBytes        int64
	MaxImagePixels       int64
	ImageTargetWidth     int
	MirrorExternalImages bool
}

// artworkUseCase implements ArtworkUseCase
type artworkUseCase struct {
	artworks  ports.ArtworkStorage
	users     ports.UserStorage
	files     ports.FileStorage
	fetcher   ports.ImageFetcher
	publisher ports.ArtworkEventPublisher
	opts      ArtworkOptions
	logger    *slog.Logger
	now       func() time.Time
}

// NewArtworkUseCase создает новый экземпляр ArtworkUseCase
func NewArtworkUseCase(
	artworks ports.ArtworkStorage,
	users ports.UserStorage,
	files ports.FileStorage,
	fetcher ports.ImageFetcher,
	publisher ports.ArtworkEventPublisher,
	opts ArtworkOptions,
	logger *slog.Logger,
) ArtworkUseCase {
	return &artworkUseCase{
		artworks:  artworks,
		users:     users,
		files:     files,
		fetcher:   fetcher,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Create проверяет данные, обрабатывает изображение и сохраняет работу.
// Автор по умолчанию и признак админской загрузки берутся из профиля.
func (uc *artworkUseCase) Create(ctx context.Context, sess *domain.Session, in NewArtwork) (*domain.Artwork, error) {
	if sess == nil {
		return nil, domain.ErrUnauthorized
	}
	sess, err := currentActor(ctx, uc.users, sess)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" || len(title) > maxTitleLen {
		return nil, fmt.Errorf("%w: название обязательно (до %d символов)", domain.ErrInvalidInput, maxTitleLen)
	}
	artist := strings.TrimSpace(in.Artist)
	if artist == "" {
		artist = sess.Name()
	}
	if len(artist) > maxArtistLen || len(in.Description) > maxDescriptionLen {
		return nil, fmt.Errorf("%w: слишком длинное поле", domain.ErrInvalidInput)
	}

	category, err := domain.ParseCategory(in.Category)
	if err != nil {
		return nil, err
	}
	if !imaging.ValidAspectRatio(in.AspectRatio) {
		return nil, fmt.Errorf("%w: соотношение сторон %q", domain.ErrInvalidInput, in.AspectRatio)
	}

	artwork := &domain.Artwork{
		ID:            uuid.New(),
		Title:         title,
		Artist:        artist,
		Description:   strings.TrimSpace(in.Description),
		OwnerID:       sess.UserID,
		AspectRatio:   in.AspectRatio,
		Category:      category,
		IsAdminUpload: sess.IsAdmin,
		Ratings:       domain.Ratings{},
		CreatedAt:     uc.now().UTC(),
	}

	if err := uc.attachImage(ctx, artwork, in); err != nil {
		return nil, err
	}

	if err := uc.artworks.CreateArtwork(ctx, artwork); err != nil {
		if artwork.ImageKey != "" {
			if delErr := uc.files.DeleteFile(ctx, artwork.ImageKey); delErr != nil {
				uc.logger.Warn("failed to remove orphaned image", "key", artwork.ImageKey, "error", delErr)
			}
		}
		return nil, fmt.Errorf("usecase: ошибка при сохранении работы: %w", err)
	}

	uc.logger.Info("artwork created",
		"artwork_id", artwork.ID,
		"owner_id", artwork.OwnerID,
		"category", artwork.Category,
		"admin_upload", artwork.IsAdminUpload,
	)

	ev := payloads.NewArtworkEvent(payloads.ArtworkCreated, artwork.ID, artwork.OwnerID)
	ev.ActorID = sess.UserID
	ev.ImageKey = artwork.ImageKey
	publishEvent(ctx, uc.publisher, uc.logger, ev)

	return artwork, nil
}

// attachImage выбирает источник изображения и при необходимости
// прогоняет его через конвейер с загрузкой в хранилище.
func (uc *artworkUseCase) attachImage(ctx context.Context, artwork *domain.Artwork, in NewArtwork) error {
	sources := 0
	for _, present := range []bool{len(in.ImageBytes) > 0, in.ImageData != "", strings.TrimSpace(in.ImageURL) != ""} {
		if present {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("%w: нужен ровно один источник изображения", domain.ErrInvalidInput)
	}

	var raw []byte
	switch {
	case len(in.ImageBytes) > 0:
		raw = in.ImageBytes
	case in.ImageData != "":
		data, err := imaging.DecodeDataURL(in.ImageData)
		if err != nil {
			return err
		}
		raw = data
	default:
		imageURL := strings.TrimSpace(in.ImageURL)
		if err := validateImageURL(imageURL); err != nil {
			return err
		}
		if !uc.opts.MirrorExternalImages || uc.fetcher == nil {
			artwork.ImageURL = imageURL
			return nil
		}
		data, _, err := uc.fetcher.Fetch(ctx, imageURL, uc.opts.MaxImageBytes)
		if err != nil {
			return fmt.Errorf("usecase: ошибка при загрузке внешнего изображения: %w", err)
		}
		raw = data
	}

	processed, err := imaging.Process(raw, imaging.Options{
		AspectRatio: in.AspectRatio,
		TargetWidth: uc.opts.ImageTargetWidth,
		MaxBytes:    uc.opts.MaxImageBytes,
		MaxPixels:   uc.opts.MaxImagePixels,
	})
	if err != nil {
		return err
	}

	key := fmt.Sprintf("artworks/%s.jpg", artwork.ID)
	publicURL, err := uc.files.UploadFile(ctx, key, bytes.NewReader(processed.Data), processed.MIME)
	if err != nil {
		return fmt.Errorf("usecase: ошибка загрузки изображения в хранилище: %w: %v", domain.ErrTransientIO, err)
	}
	artwork.ImageKey = key
	artwork.ImageURL = publicURL
	return nil
}

func validateImageURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: некорректный URL изображения", domain.ErrInvalidInput)
	}
	return nil
}

func (uc *artworkUseCase) Get(ctx context.Context, sess *domain.Session, id uuid.UUID) (*ArtworkDetails, error) {
	artwork, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ArtworkDetails{
		Artwork:   artwork,
		ImageSrc:  artwork.ImageSource(),
		Rating:    rating.Aggregate(artwork.Ratings, callerID(sess)),
		CanModify: sess.CanModify(artwork.OwnerID),
	}, nil
}

// Gallery отдаёт страницу общей ленты.
func (uc *artworkUseCase) Gallery(ctx context.Context, sess *domain.Session, category string, page int) (GalleryPage, error) {
	filter, err := domain.ParseCategoryFilter(category)
	if err != nil {
		return GalleryPage{}, err
	}

	artworks, err := uc.artworks.ListArtworks(ctx, domain.ArtworkFilter{})
	if err != nil {
		return GalleryPage{}, fmt.Errorf("usecase: ошибка при получении галереи: %w", err)
	}
	return uc.paginate(artworks, filter, uc.opts.GalleryPageSize, page, sess), nil
}

// MyArtworks отдаёт страницу работ владельца сессии.
func (uc *artworkUseCase) MyArtworks(ctx context.Context, sess *domain.Session, page int) (GalleryPage, error) {
	if sess == nil {
		return GalleryPage{}, domain.ErrUnauthorized
	}

	owner := sess.UserID
	artworks, err := uc.artworks.ListArtworks(ctx, domain.ArtworkFilter{OwnerID: &owner})
	if err != nil {
		return GalleryPage{}, fmt.Errorf("usecase: ошибка при получении работ пользователя: %w", err)
	}
	return uc.paginate(artworks, domain.CategoryAll, uc.opts.MyArtworkPageSize, page, sess), nil
}

// paginate режет список на страницы; сводка оценок считается только для видимых карточек.
func (uc *artworkUseCase) paginate(artworks []domain.Artwork, category domain.Category, size, page int, sess *domain.Session) GalleryPage {
	cards := make([]ArtworkCard, len(artworks))
	for i := range artworks {
		cards[i] = ArtworkCard{Artwork: artworks[i]}
	}

	view := gallery.Paginate(cards, string(category), size, page)

	caller := callerID(sess)
	for i := range view.Items {
		view.Items[i].ImageSrc = view.Items[i].ImageSource()
		view.Items[i].Rating = rating.Aggregate(view.Items[i].Ratings, caller)
		view.Items[i].TopReviews = view.Items[i].Rating.TopReviews(CardReviews)
	}
	return view
}

// UpdateDetails меняет название, автора или описание. Только владелец или админ.
func (uc *artworkUseCase) UpdateDetails(ctx context.Context, sess *domain.Session, id uuid.UUID, patch domain.ArtworkPatch) (*domain.Artwork, error) {
	if sess == nil {
		return nil, domain.ErrUnauthorized
	}

	artwork, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.CanModify(artwork.OwnerID) {
		return nil, domain.ErrForbidden
	}

	patch, err = cleanPatch(patch)
	if err != nil {
		return nil, err
	}

	if err := uc.artworks.UpdateArtworkDetails(ctx, id, patch, uc.now().UTC()); err != nil {
		return nil, fmt.Errorf("usecase: ошибка при обновлении работы %s: %w", id, err)
	}

	uc.logger.Info("artwork details updated", "artwork_id", id, "actor_id", sess.UserID)
	return uc.load(ctx, id)
}

func cleanPatch(p domain.ArtworkPatch) (domain.ArtworkPatch, error) {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	p.Title, p.Artist, p.Description = trim(p.Title), trim(p.Artist), trim(p.Description)

	if p.Title != nil && (*p.Title == "" || len(*p.Title) > maxTitleLen) {
		return p, fmt.Errorf("%w: название не может быть пустым", domain.ErrInvalidInput)
	}
	if p.Artist != nil && (*p.Artist == "" || len(*p.Artist) > maxArtistLen) {
		return p, fmt.Errorf("%w: автор не может быть пустым", domain.ErrInvalidInput)
	}
	if p.Description != nil && len(*p.Description) > maxDescriptionLen {
		return p, fmt.Errorf("%w: слишком длинное описание", domain.ErrInvalidInput)
	}
	if p.Title == nil && p.Artist == nil && p.Description == nil {
		return p, fmt.Errorf("%w: нечего обновлять", domain.ErrInvalidInput)
	}
	return p, nil
}

// SetFlagged ставит или снимает отметку модерации. Только админ.
func (uc *artworkUseCase) SetFlagged(ctx context.Context, sess *domain.Session, id uuid.UUID, flagged bool) error {
	if sess == nil {
		return domain.ErrUnauthorized
	}
	if !sess.IsAdmin {
		return domain.ErrForbidden
	}

	artwork, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.artworks.SetFlagged(ctx, id, flagged); err != nil {
		return fmt.Errorf("usecase: ошибка при изменении отметки работы %s: %w", id, err)
	}

	ev := payloads.NewArtworkEvent(payloads.ArtworkFlagged, id, artwork.OwnerID)
	ev.ActorID = sess.UserID
	ev.Flagged = flagged
	publishEvent(ctx, uc.publisher, uc.logger, ev)
	return nil
}

// Delete удаляет работу; объект изображения удаляет воркер по событию.
func (uc *artworkUseCase) Delete(ctx context.Context, sess *domain.Session, id uuid.UUID) error {
	if sess == nil {
		return domain.ErrUnauthorized
	}

	artwork, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if !sess.CanModify(artwork.OwnerID) {
		return domain.ErrForbidden
	}

	if err := uc.artworks.DeleteArtwork(ctx, id); err != nil {
		return fmt.Errorf("usecase: ошибка при удалении работы %s: %w", id, err)
	}
	uc.logger.Info("artwork deleted", "artwork_id", id, "actor_id", sess.UserID)

	ev := payloads.NewArtworkEvent(payloads.ArtworkDeleted, id, artwork.OwnerID)
	ev.ActorID = sess.UserID
	ev.ImageKey = artwork.ImageKey
	publishEvent(ctx, uc.publisher, uc.logger, ev)
	return nil
}

func (uc *artworkUseCase) AdminOverview(ctx context.Context, sess *domain.Session, flaggedOnly bool) (*AdminOverview, error) {
	if sess == nil {
		return nil, domain.ErrUnauthorized
	}
	if !sess.IsAdmin {
		return nil, domain.ErrForbidden
	}

	artworks, err := uc.artworks.ListArtworks(ctx, domain.ArtworkFilter{FlaggedOnly: flaggedOnly})
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении работ: %w", err)
	}
	stats, err := uc.artworks.ArtworkStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении статистики: %w", err)
	}
	return &AdminOverview{Artworks: artworks, Stats: stats}, nil
}

func (uc *artworkUseCase) load(ctx context.Context, id uuid.UUID) (*domain.Artwork, error) {
	artwork, err := uc.artworks.GetArtwork(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении работы %s: %w", id, err)
	}
	if artwork == nil {
		return nil, domain.ErrNotFound
	}
	return artwork, nil
}

func callerID(sess *domain.Session) uuid.UUID {
	if sess == nil {
		return uuid.Nil
	}
	return sess.UserID
}
