// internal/domain/user.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const AnonymousName = "Anonymous"

// User представляет модель пользователя в системе.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Username     string     `json:"username"`
	Email        string     `json:"email" gorm:"uniqueIndex"`
	PasswordHash string     `json:"-"`
	IsAdmin      bool       `json:"is_admin"`
	Bio          string     `json:"bio"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName возвращает имя для показа, "Anonymous" если оно не задано.
func (u *User) DisplayName() string {
	return displayNameOrAnonymous(u.Username)
}

// Session — текущий пользователь, явно передаваемый в каждый вызов.
// nil означает неаутентифицированный запрос.
type Session struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	IsAdmin     bool
}

// CanModify — владелец или админ.
func (s *Session) CanModify(ownerID uuid.UUID) bool {
	if s == nil {
		return false
	}
	return s.IsAdmin || s.UserID == ownerID
}

// Name возвращает имя для снимка в оценке.
func (s *Session) Name() string {
	if s == nil {
		return AnonymousName
	}
	return displayNameOrAnonymous(s.DisplayName)
}

func displayNameOrAnonymous(name string) string {
	if strings.TrimSpace(name) == "" {
		return AnonymousName
	}
	return name
}

// Profile — данные страницы профиля.
type Profile struct {
	User          *User  `json:"user"`
	DisplayName   string `json:"display_name"`
	TotalArtworks int    `json:"total_artworks"`
}
