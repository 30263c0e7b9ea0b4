package usecase

import (
	"context"
	"fmt"

	"github.com/GoArmGo/ArtMarket/internal/core/ports"
	"github.com/GoArmGo/ArtMarket/internal/domain"
)

// currentActor перечитывает пользователя сессии из хранилища.
// Имя и права в токене фиксируются при входе и могут устареть.
func currentActor(ctx context.Context, users ports.UserStorage, sess *domain.Session) (*domain.Session, error) {
	if sess == nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := users.FindUserByID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении пользователя %s: %w", sess.UserID, err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	return &domain.Session{
		UserID:      user.ID,
		DisplayName: user.Username,
		Email:       user.Email,
		IsAdmin:     user.IsAdmin,
	}, nil
}
