package usecase

import (
	"context"
	"time"

	"github.com/GoArmGo/ArtMarket/internal/domain"
	"github.com/GoArmGo/ArtMarket/internal/gallery"
	"github.com/GoArmGo/ArtMarket/internal/rating"
	"github.com/google/uuid"
)

// NewArtwork — данные для публикации работы. Источник изображения —
// ровно одно из ImageBytes, ImageData (data URL) или ImageURL.
type NewArtwork struct {
	Title       string
	Artist      string
	Description string
	Category    string
	AspectRatio string
	ImageURL    string
	ImageData   string
	ImageBytes  []byte
}

// CardReviews — сколько отзывов видно на свёрнутой карточке.
const CardReviews = 2

// ArtworkCard — работа в списке вместе со сводкой оценок.
type ArtworkCard struct {
	domain.Artwork
	ImageSrc   string          `json:"image_src"`
	Rating     rating.Summary  `json:"rating"`
	TopReviews []domain.Rating `json:"top_reviews"`
}

// GalleryPage — видимая страница галереи.
type GalleryPage = gallery.Page[ArtworkCard]

// ArtworkDetails — страница одной работы.
type ArtworkDetails struct {
	Artwork   *domain.Artwork `json:"artwork"`
	ImageSrc  string          `json:"image_src"`
	Rating    rating.Summary  `json:"rating"`
	CanModify bool            `json:"can_modify"`
}

// AdminOverview — данные панели администратора.
type AdminOverview struct {
	Artworks []domain.Artwork    `json:"artworks"`
	Stats    domain.ArtworkStats `json:"stats"`
}

// AuthResult — результат регистрации или входа.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// ArtworkUseCase определяет бизнес-логику работы с галереей.
// Сессия передаётся явно, nil означает анонимный запрос
type ArtworkUseCase interface {
	// Create публикует работу от имени пользователя сессии
	Create(ctx context.Context, sess *domain.Session, in NewArtwork) (*domain.Artwork, error)
	Get(ctx context.Context, sess *domain.Session, id uuid.UUID) (*ArtworkDetails, error)
	// Gallery — общая лента: фильтр по категории, затем страница
	Gallery(ctx context.Context, sess *domain.Session, category string, page int) (GalleryPage, error)
	// MyArtworks — работы пользователя сессии
	MyArtworks(ctx context.Context, sess *domain.Session, page int) (GalleryPage, error)
	UpdateDetails(ctx context.Context, sess *domain.Session, id uuid.UUID, patch domain.ArtworkPatch) (*domain.Artwork, error)
	SetFlagged(ctx context.Context, sess *domain.Session, id uuid.UUID, flagged bool) error
	Delete(ctx context.Context, sess *domain.Session, id uuid.UUID) error
	// AdminOverview — работы (только отмеченные при flaggedOnly) и общие счётчики
	AdminOverview(ctx context.Context, sess *domain.Session, flaggedOnly bool) (*AdminOverview, error)
}

// RatingUseCase — чтение и запись оценок.
type RatingUseCase interface {
	Summary(ctx context.Context, sess *domain.Session, artworkID uuid.UUID) (rating.Summary, error)
	// Rate добавляет или заменяет оценку пользователя сессии и возвращает
	// сводку по записанному массиву
	Rate(ctx context.Context, sess *domain.Session, artworkID uuid.UUID, score float64, review string) (rating.Summary, error)
}

// AccountUseCase — регистрация, вход и профиль.
type AccountUseCase interface {
	Register(ctx context.Context, email, password, username string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Profile(ctx context.Context, sess *domain.Session) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, sess *domain.Session, displayName, bio string) (*domain.Profile, error)
}
