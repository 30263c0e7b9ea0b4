package ports

import (
	"context"
	"io"
	"time"

	"github.com/GoArmGo/ArtMarket/internal/domain"
	"github.com/google/uuid"
)

// ArtworkStorage определяет методы для взаимодействия с хранилищем работ
type ArtworkStorage interface {
	CreateArtwork(ctx context.Context, artwork *domain.Artwork) error
	// GetArtwork возвращает nil, nil если работы нет
	GetArtwork(ctx context.Context, id uuid.UUID) (*domain.Artwork, error)
	// ListArtworks отдаёт работы от новых к старым
	ListArtworks(ctx context.Context, filter domain.ArtworkFilter) ([]domain.Artwork, error)
	UpdateArtworkDetails(ctx context.Context, id uuid.UUID, patch domain.ArtworkPatch, editedAt time.Time) error
	SetFlagged(ctx context.Context, id uuid.UUID, flagged bool) error
	DeleteArtwork(ctx context.Context, id uuid.UUID) error
	CountArtworksByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
	ArtworkStats(ctx context.Context) (domain.ArtworkStats, error)

	// ReplaceRatings перезаписывает весь массив оценок, если версия записи
	// всё ещё равна expectedVersion. Иначе domain.ErrConflict.
	ReplaceRatings(ctx context.Context, id uuid.UUID, ratings domain.Ratings, expectedVersion int64) (int64, error)
}

// UserStorage определяет методы для взаимодействия с хранилищем пользователей
type UserStorage interface {
	// CreateUser возвращает domain.ErrEmailTaken при повторном email
	CreateUser(ctx context.Context, user *domain.User) error
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, username, bio string) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// FileStorage — хранилище бинарных данных (MinIO / S3)
type FileStorage interface {
	// UploadFile загружает файл и возвращает его публичный URL
	UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
}

// ImageFetcher скачивает внешнее изображение по URL
type ImageFetcher interface {
	Fetch(ctx context.Context, url string, maxBytes int64) ([]byte, string, error)
}
