package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	ServerPort     string        `env:"SERVER_PORT" envDefault:"8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Авторизация
	JWTSecret   string        `env:"JWT_SECRET,required"`
	JWTTTL      time.Duration `env:"JWT_TTL" envDefault:"24h"`
	AdminEmails []string      `env:"ADMIN_EMAILS" envSeparator:","`

	// Галерея и рейтинги
	GalleryPageSize     int `env:"GALLERY_PAGE_SIZE" envDefault:"3"`
	MyArtworkPageSize   int `env:"MY_ARTWORK_PAGE_SIZE" envDefault:"3"`
	RatingWriteAttempts int `env:"RATING_WRITE_ATTEMPTS" envDefault:"3"`

	// Изображения
	MaxImageBytes        int64 `env:"MAX_IMAGE_BYTES" envDefault:"10485760"`
	MaxImagePixels       int64 `env:"MAX_IMAGE_PIXELS" envDefault:"40000000"`
	ImageTargetWidth     int   `env:"IMAGE_TARGET_WIDTH" envDefault:"800"`
	MirrorExternalImages bool  `env:"MIRROR_EXTERNAL_IMAGES" envDefault:"false"`

	// Сколько загрузок одновременно проходят через обработку изображений
	UploadConcurrency int `env:"UPLOAD_CONCURRENCY" envDefault:"5"`

	// Настройки для MinIO
	MinioEndpoint        string `env:"MINIO_ENDPOINT,required"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID,required"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY,required"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME,required"`
	MinioRegion          string `env:"MINIO_REGION" envDefault:"us-east-1"`
	MinioPublicURL       string `env:"MINIO_PUBLIC_URL"`

	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL,required"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"artwork_events"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	cfg.AdminEmails = normalizeEmails(cfg.AdminEmails)
	cfg.MinioPublicURL = strings.TrimRight(cfg.MinioPublicURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет значения, которые env не умеет проверить сам.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET не может быть пустым"))
	}
	if c.GalleryPageSize < 1 {
		errs = append(errs, fmt.Errorf("GALLERY_PAGE_SIZE должен быть > 0, получено %d", c.GalleryPageSize))
	}
	if c.MyArtworkPageSize < 1 {
		errs = append(errs, fmt.Errorf("MY_ARTWORK_PAGE_SIZE должен быть > 0, получено %d", c.MyArtworkPageSize))
	}
	if c.RatingWriteAttempts < 1 {
		errs = append(errs, fmt.Errorf("RATING_WRITE_ATTEMPTS должен быть >= 1, получено %d", c.RatingWriteAttempts))
	}
	if c.MaxImageBytes < 1 {
		errs = append(errs, fmt.Errorf("MAX_IMAGE_BYTES должен быть > 0, получено %d", c.MaxImageBytes))
	}
	if c.MaxImagePixels < 1 {
		errs = append(errs, fmt.Errorf("MAX_IMAGE_PIXELS должен быть > 0, получено %d", c.MaxImagePixels))
	}
	if c.ImageTargetWidth < 1 {
		errs = append(errs, fmt.Errorf("IMAGE_TARGET_WIDTH должен быть > 0, получено %d", c.ImageTargetWidth))
	}
	if c.UploadConcurrency < 1 {
		errs = append(errs, fmt.Errorf("UPLOAD_CONCURRENCY должен быть > 0, получено %d", c.UploadConcurrency))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL должен быть положительным, получено %s", c.JWTTTL))
	}
	if len(errs) > 0 {
		return fmt.Errorf("некорректная конфигурация: %w", errors.Join(errs...))
	}
	return nil
}

// IsAdminEmail сообщает, входит ли email в список администраторов.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range c.AdminEmails {
		if e == email {
			return true
		}
	}
	return false
}

func normalizeEmails(in []string) []string {
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}
