package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/GoArmGo/ArtMarket/internal/core/ports"
	"github.com/GoArmGo/ArtMarket/internal/domain"
	"github.com/google/uuid"
)

const (
	minPasswordLen = 6
	maxUsernameLen = 50
	maxBioLen      = 1000
)

// TokenIssuer выпускает токен сессии для пользователя
type TokenIssuer interface {
	Issue(user *domain.User) (string, time.Time, error)
}

// PasswordHasher — хеширование и проверка паролей
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(hash, password string) (bool, error)
}

// accountUseCase implements AccountUseCase
type accountUseCase struct {
	users    ports.UserStorage
	artworks ports.ArtworkStorage
	tokens   TokenIssuer
	hasher   PasswordHasher
	isAdmin  func(email string) bool
	logger   *slog.Logger
	now      func() time.Time
}

// NewAccountUseCase создает AccountUseCase. isAdmin решает, получает ли
// новый аккаунт права администратора.
func NewAccountUseCase(
	users ports.UserStorage,
	artworks ports.ArtworkStorage,
	tokens TokenIssuer,
	hasher PasswordHasher,
	isAdmin func(email string) bool,
	logger *slog.Logger,
) AccountUseCase {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &accountUseCase{
		users:    users,
		artworks: artworks,
		tokens:   tokens,
		hasher:   hasher,
		isAdmin:  isAdmin,
		logger:   logger,
		now:      time.Now,
	}
}

func (uc *accountUseCase) Register(ctx context.Context, email, password, username string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: некорректный email", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: пароль короче %d символов", domain.ErrInvalidInput, minPasswordLen)
	}
	username = strings.TrimSpace(username)
	if len(username) > maxUsernameLen {
		return nil, fmt.Errorf("%w: имя длиннее %d символов", domain.ErrInvalidInput, maxUsernameLen)
	}

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      uc.isAdmin(email),
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLoginAt:  &now,
	}
	if err := uc.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("user registered", "user_id", user.ID, "admin", user.IsAdmin)
	return uc.issue(user)
}

func (uc *accountUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := uc.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при поиске пользователя: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := uc.hasher.Check(user.PasswordHash, password)
	if err != nil || !ok {
		return nil, domain.ErrInvalidCredentials
	}

	now := uc.now().UTC()
	if err := uc.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		uc.logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}

	uc.logger.Info("user logged in", "user_id", user.ID)
	return uc.issue(user)
}

func (uc *accountUseCase) issue(user *domain.User) (*AuthResult, error) {
	token, exp, err := uc.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (uc *accountUseCase) Profile(ctx context.Context, sess *domain.Session) (*domain.Profile, error) {
	if sess == nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := uc.users.FindUserByID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении профиля: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}

	total, err := uc.artworks.CountArtworksByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при подсчёте работ: %w", err)
	}

	return &domain.Profile{
		User:          user,
		DisplayName:   user.DisplayName(),
		TotalArtworks: total,
	}, nil
}

// UpdateProfile меняет отображаемое имя и описание. Имя не может быть пустым.
func (uc *accountUseCase) UpdateProfile(ctx context.Context, sess *domain.Session, displayName, bio string) (*domain.Profile, error) {
	if sess == nil {
		return nil, domain.ErrUnauthorized
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" || len(displayName) > maxUsernameLen {
		return nil, fmt.Errorf("%w: имя обязательно (до %d символов)", domain.ErrInvalidInput, maxUsernameLen)
	}
	bio = strings.TrimSpace(bio)
	if len(bio) > maxBioLen {
		return nil, fmt.Errorf("%w: описание длиннее %d символов", domain.ErrInvalidInput, maxBioLen)
	}

	if err := uc.users.UpdateProfile(ctx, sess.UserID, displayName, bio); err != nil {
		return nil, fmt.Errorf("usecase: ошибка при обновлении профиля: %w", err)
	}
	return uc.Profile(ctx, sess)
}
