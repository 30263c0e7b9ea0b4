package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/ArtMarket/internal/config"
	"github.com/GoArmGo/ArtMarket/internal/core/ports"
	"github.com/GoArmGo/ArtMarket/internal/handler"
	"github.com/GoArmGo/ArtMarket/internal/messaging/payloads"
	"github.com/GoArmGo/ArtMarket/internal/usecase"
)

// Mode — режим запуска процесса.
type Mode string

const (
	ModeServer Mode = "server"
	ModeWorker Mode = "worker"
)

// Services — всё, что нужно режимам запуска.
type Services struct {
	Artworks usecase.ArtworkUseCase
	Ratings  usecase.RatingUseCase
	Accounts usecase.AccountUseCase
	Sessions handler.SessionParser

	EventConsumer ports.ArtworkEventConsumer
	EventHandler  func(context.Context, payloads.ArtworkEvent) error
}

// Closer — ресурс, закрываемый при завершении (БД, AMQP).
type Closer struct {
	Name  string
	Close func() error
}

type App struct {
	Config   *config.Config
	logger   *slog.Logger
	services Services
	closers  []Closer
}

func NewApp(cfg *config.Config, logger *slog.Logger, services Services, closers ...Closer) *App {
	return &App{
		Config:   cfg,
		logger:   logger,
		services: services,
		closers:  closers,
	}
}

// LoggerIns возвращает основной логгер приложения
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

func (a *App) Run(ctx context.Context, mode Mode) error {
	// канал для graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting app", "mode", mode)

	var err error
	switch mode {
	case ModeServer:
		err = runServer(ctx, a.Config, a.services, a.logger)
	case ModeWorker:
		err = runWorker(ctx, a.services, a.logger)
	default:
		err = fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", mode)
	}

	a.logger.Info("shutting down")
	// аккуратно закрываем ресурсы
	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown finished with errors", "error", closeErr)
	}
	return err
}

// Shutdown закрывает все ресурсы приложения в обратном порядке
func (a *App) Shutdown() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("ошибка закрытия %s: %w", c.Name, err))
			continue
		}
		a.logger.Info("resource closed", "resource", c.Name)
	}
	a.closers = nil
	return errors.Join(errs...)
}
