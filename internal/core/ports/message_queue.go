package ports

import (
	"context"

	"github.com/GoArmGo/ArtMarket/internal/messaging/payloads"
)

// ArtworkEventPublisher публикует события о работах.
// Используется use case'ами после успешной записи
type ArtworkEventPublisher interface {
	PublishArtworkEvent(ctx context.Context, event payloads.ArtworkEvent) error
}

// ArtworkEventConsumer используется воркером для получения событий из очереди
type ArtworkEventConsumer interface {
	// StartConsumingArtworkEvents начинает прослушивание очереди;
	// handler вызывается для каждого сообщения. Возвращённый канал получает
	// ошибку, если доставка прекратилась до отмены ctx, и закрывается при остановке.
	StartConsumingArtworkEvents(ctx context.Context, handler func(context.Context, payloads.ArtworkEvent) error) (<-chan error, error)
}
