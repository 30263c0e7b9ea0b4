package postgres

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/ArtMarket/internal/database/dberr"
	"github.com/GoArmGo/ArtMarket/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// GormUserStorage реализует интерфейс ports.UserStorage с использованием GORM
type GormUserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormUserStorage создает новый экземпляр GormUserStorage
func NewGormUserStorage(db *gorm.DB, logger *slog.Logger) *GormUserStorage {
	return &GormUserStorage{db: db, logger: logger}
}

// CreateUser сохраняет нового пользователя, email хранится в нижнем регистре
func (s *GormUserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		s.logger.Error("failed to create user", "email", user.Email, "error", err)
		return dberr.Wrap("ошибка при создании пользователя с GORM", err)
	}

	s.logger.Info("user created", "user_id", user.ID)
	return nil
}

// FindUserByEmail ищет пользователя по email, nil если не найден
func (s *GormUserStorage) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to find user by email", "error", err)
		return nil, dberr.Wrap("ошибка при поиске пользователя по email с GORM", err)
	}
	return &user, nil
}

// FindUserByID ищет пользователя по ID, nil если не найден
func (s *GormUserStorage) FindUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to find user by id", "user_id", id, "error", err)
		return nil, dberr.Wrap("ошибка при поиске пользователя по ID с GORM", err)
	}
	return &user, nil
}

func (s *GormUserStorage) UpdateProfile(ctx context.Context, id uuid.UUID, username, bio string) error {
	res := s.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"username":   username,
			"bio":        bio,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		s.logger.Error("failed to update profile", "user_id", id, "error", res.Error)
		return dberr.Wrap("ошибка при обновлении профиля с GORM", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *GormUserStorage) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
	if err != nil {
		return dberr.Wrap("ошибка при обновлении времени входа с GORM", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
