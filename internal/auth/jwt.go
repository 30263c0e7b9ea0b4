// Package auth выпускает и проверяет токены сессии и хеширует пароли.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/GoArmGo/ArtMarket/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken — токен не прошёл проверку (подпись, срок, claims).
var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer подписывает сессии HS256.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer создаёт TokenIssuer.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue выпускает токен для пользователя.
func (t *TokenIssuer) Issue(user *domain.User) (string, time.Time, error) {
	expiresAt := t.now().Add(t.ttl)
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"name":  user.DisplayName(),
		"email": user.Email,
		"admin": user.IsAdmin,
		"iat":   t.now().Unix(),
		"exp":   expiresAt.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return token, expiresAt, nil
}

// Parse проверяет токен и восстанавливает сессию.
func (t *TokenIssuer) Parse(tokenString string) (*domain.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: sub отсутствует", ErrInvalidToken)
	}
	userID, err := uuid.Parse(sub)
	if err != nil || userID == uuid.Nil {
		return nil, fmt.Errorf("%w: некорректный sub", ErrInvalidToken)
	}

	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	admin, _ := claims["admin"].(bool)

	return &domain.Session{
		UserID:      userID,
		DisplayName: name,
		Email:       email,
		IsAdmin:     admin,
	}, nil
}
