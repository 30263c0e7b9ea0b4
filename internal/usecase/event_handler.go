package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/ArtMarket/internal/core/ports"
	"github.com/GoArmGo/ArtMarket/internal/messaging/payloads"
)

// NewArtworkEventHandler возвращает обработчик событий для воркера.
// artwork.deleted удаляет объект изображения, остальные события только логируются.
func NewArtworkEventHandler(files ports.FileStorage, logger *slog.Logger) func(context.Context, payloads.ArtworkEvent) error {
	return func(ctx context.Context, ev payloads.ArtworkEvent) error {
		switch ev.Type {
		case payloads.ArtworkDeleted:
			if ev.ImageKey == "" {
				logger.Info("deleted artwork had no stored image", "artwork_id", ev.ArtworkID)
				return nil
			}
			if err := files.DeleteFile(ctx, ev.ImageKey); err != nil {
				return fmt.Errorf("worker: ошибка удаления изображения %s: %w", ev.ImageKey, err)
			}
			logger.Info("artwork image removed", "artwork_id", ev.ArtworkID, "key", ev.ImageKey)
		case payloads.ArtworkCreated, payloads.ArtworkRated, payloads.ArtworkFlagged:
			logger.Info("artwork event received",
				"type", ev.Type,
				"artwork_id", ev.ArtworkID,
				"actor_id", ev.ActorID,
			)
		default:
			logger.Warn("unknown artwork event type", "type", ev.Type, "artwork_id", ev.ArtworkID)
		}
		return nil
	}
}
