package usecase

import (
	"context"
	"log/slog"

	"github.com/GoArmGo/ArtMarket/internal/core/ports"
	"github.com/GoArmGo/ArtMarket/internal/messaging/payloads"
)

// publishEvent отправляет событие; неудача только логируется, запись уже сделана.
func publishEvent(ctx context.Context, pub ports.ArtworkEventPublisher, logger *slog.Logger, ev payloads.ArtworkEvent) {
	if pub == nil {
		return
	}
	if err := pub.PublishArtworkEvent(ctx, ev); err != nil {
		logger.Warn("failed to publish artwork event",
			"type", ev.Type,
			"artwork_id", ev.ArtworkID,
			"error", err,
		)
	}
}
