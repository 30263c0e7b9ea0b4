package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/ArtMarket/internal/core/ports"
	"github.com/GoArmGo/ArtMarket/internal/domain"
	"github.com/GoArmGo/ArtMarket/internal/messaging/payloads"
	"github.com/GoArmGo/ArtMarket/internal/rating"
	"github.com/google/uuid"
)

// ratingUseCase implements RatingUseCase
type ratingUseCase struct {
	artworks  ports.ArtworkStorage
	users     ports.UserStorage
	publisher ports.ArtworkEventPublisher
	attempts  int
	logger    *slog.Logger
	now       func() time.Time
}

// NewRatingUseCase создает RatingUseCase. attempts — сколько раз повторять
// цикл чтение/запись, если массив оценок успели изменить параллельно.
func NewRatingUseCase(artworks ports.ArtworkStorage, users ports.UserStorage, publisher ports.ArtworkEventPublisher, attempts int, logger *slog.Logger) RatingUseCase {
	if attempts < 1 {
		attempts = 1
	}
	return &ratingUseCase{
		artworks:  artworks,
		users:     users,
		publisher: publisher,
		attempts:  attempts,
		logger:    logger,
		now:       time.Now,
	}
}

func (uc *ratingUseCase) Summary(ctx context.Context, sess *domain.Session, artworkID uuid.UUID) (rating.Summary, error) {
	artwork, err := uc.artworks.GetArtwork(ctx, artworkID)
	if err != nil {
		return rating.Summary{}, fmt.Errorf("usecase: ошибка при получении работы %s: %w", artworkID, err)
	}
	if artwork == nil {
		return rating.Summary{}, domain.ErrNotFound
	}
	return rating.Aggregate(artwork.Ratings, callerID(sess)), nil
}

// Rate: чтение документа, новый массив через rating.Submit, условная
// запись по версии. При конфликте цикл повторяется целиком.
// В оценку пишется текущее имя из профиля, а не из токена.
func (uc *ratingUseCase) Rate(ctx context.Context, sess *domain.Session, artworkID uuid.UUID, score float64, review string) (rating.Summary, error) {
	if sess == nil {
		return rating.Summary{}, domain.ErrUnauthorized
	}
	sess, err := currentActor(ctx, uc.users, sess)
	if err != nil {
		return rating.Summary{}, err
	}

	for attempt := 1; attempt <= uc.attempts; attempt++ {
		artwork, err := uc.artworks.GetArtwork(ctx, artworkID)
		if err != nil {
			return rating.Summary{}, fmt.Errorf("usecase: ошибка при получении работы %s: %w", artworkID, err)
		}
		if artwork == nil {
			return rating.Summary{}, domain.ErrNotFound
		}

		next, err := rating.Submit(artwork.Ratings, rating.Submission{
			ActorID:   sess.UserID,
			ActorName: sess.Name(),
			OwnerID:   artwork.OwnerID,
			Score:     score,
			Review:    review,
		}, uc.now())
		if err != nil {
			return rating.Summary{}, err
		}

		_, err = uc.artworks.ReplaceRatings(ctx, artworkID, next, artwork.Version)
		if errors.Is(err, domain.ErrConflict) {
			uc.logger.Warn("ratings changed concurrently, retrying",
				"artwork_id", artworkID,
				"attempt", attempt,
			)
			continue
		}
		if err != nil {
			return rating.Summary{}, fmt.Errorf("usecase: ошибка при сохранении оценки: %w", err)
		}

		uc.logger.Info("rating saved",
			"artwork_id", artworkID,
			"user_id", sess.UserID,
			"score", rating.Round1(score),
			"attempt", attempt,
		)

		ev := payloads.NewArtworkEvent(payloads.ArtworkRated, artworkID, artwork.OwnerID)
		ev.ActorID = sess.UserID
		ev.Score = rating.Round1(score)
		publishEvent(ctx, uc.publisher, uc.logger, ev)

		return rating.Aggregate(next, sess.UserID), nil
	}

	return rating.Summary{}, fmt.Errorf("usecase: оценка не сохранена после %d попыток: %w", uc.attempts, domain.ErrConflict)
}
