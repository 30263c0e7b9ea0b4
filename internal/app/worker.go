package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// runWorker запускает потребителя RabbitMQ и обрабатывает события до отмены ctx.
// Если доставка прекратилась раньше, возвращает ошибку, чтобы процесс перезапустили.
func runWorker(ctx context.Context, svc Services, logger *slog.Logger) error {
	if svc.EventConsumer == nil || svc.EventHandler == nil {
		return errors.New("воркер не настроен: нет потребителя или обработчика событий")
	}

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	stopped, err := svc.EventConsumer.StartConsumingArtworkEvents(workerCtx, svc.EventHandler)
	if err != nil {
		return fmt.Errorf("ошибка при запуске потребителя RabbitMQ: %w", err)
	}
	logger.Info("worker started, waiting for artwork events")

	select {
	case <-ctx.Done():
		logger.Info("worker received shutdown signal")
		return nil
	case err, ok := <-stopped:
		if !ok || err == nil {
			err = errors.New("потребитель RabbitMQ остановился")
		}
		logger.Error("worker consumer stopped", "error", err)
		return fmt.Errorf("воркер остановлен: %w", err)
	}
}
