package di

import (
	"context"

	"github.com/GoArmGo/ArtMarket/internal/adapter/remoteimage"
	"github.com/GoArmGo/ArtMarket/internal/adapter/storage/minio"
	"github.com/GoArmGo/ArtMarket/internal/app"
	"github.com/GoArmGo/ArtMarket/internal/auth"
	"github.com/GoArmGo/ArtMarket/internal/config"
	"github.com/GoArmGo/ArtMarket/internal/database/client"
	"github.com/GoArmGo/ArtMarket/internal/database/postgres"
	"github.com/GoArmGo/ArtMarket/internal/database/storage"
	"github.com/GoArmGo/ArtMarket/internal/logger"
	"github.com/GoArmGo/ArtMarket/internal/rabbitmq"
	"github.com/GoArmGo/ArtMarket/internal/usecase"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
// При ошибке уже открытые ресурсы закрываются.
func BuildApp(ctx context.Context) (_ *app.App, err error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	var closers []app.Closer
	defer func() {
		if err == nil {
			return
		}
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	// 2. PostgreSQL: sqlx для работ и миграций, gorm для пользователей
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, app.Closer{Name: "postgres", Close: dbClient.Close})

	gormDB, err := postgres.NewGormDB(cfg, slogger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, app.Closer{Name: "gorm", Close: func() error { return postgres.CloseGormDB(gormDB) }})

	// 3. Инициализация хранилищ
	artworkStorage := storage.NewArtworkStorage(dbClient.DB, slogger)
	userStorage := postgres.NewGormUserStorage(gormDB, slogger)

	// 4. Инициализация клиентов внешних сервисов
	fileStorage, err := minio.NewMinioClient(ctx, cfg, slogger) // S3 / MinIO адаптер
	if err != nil {
		return nil, err
	}
	imageFetcher := remoteimage.NewClient(slogger)

	// 5. RabbitMQ: один клиент и публикует, и потребляет
	rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, app.Closer{Name: "rabbitmq", Close: rabbitMQClient.Close})

	// 6. Авторизация
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	// 7. Инициализация бизнес-логики (usecases)
	services := app.Services{
		Artworks: usecase.NewArtworkUseCase(artworkStorage, userStorage, fileStorage, imageFetcher, rabbitMQClient, usecase.ArtworkOptions{
			GalleryPageSize:      cfg.GalleryPageSize,
			MyArtworkPageSize:    cfg.MyArtworkPageSize,
			MaxImageBytes:        cfg.MaxImageBytes,
			MaxImagePixels:       cfg.MaxImagePixels,
			ImageTargetWidth:     cfg.ImageTargetWidth,
			MirrorExternalImages: cfg.MirrorExternalImages,
		}, slogger),
		Ratings:       usecase.NewRatingUseCase(artworkStorage, userStorage, rabbitMQClient, cfg.RatingWriteAttempts, slogger),
		Accounts:      usecase.NewAccountUseCase(userStorage, artworkStorage, tokens, auth.BcryptHasher{}, cfg.IsAdminEmail, slogger),
		Sessions:      tokens,
		EventConsumer: rabbitMQClient,
		EventHandler:  usecase.NewArtworkEventHandler(fileStorage, slogger),
	}

	// 8. Сборка итогового приложения
	application := app.NewApp(cfg, slogger, services, closers...)

	slogger.Info("all dependencies initialized")
	return application, nil
}
