package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/GoArmGo/ArtMarket/internal/domain"
	"github.com/GoArmGo/ArtMarket/internal/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountFixture() (*memUsers, *memArtworks, AccountUseCase) {
	users := newMemUsers()
	artworks := newMemArtworks()
	isAdmin := func(email string) bool { return email == "boss@example.com" }
	return users, artworks, NewAccountUseCase(users, artworks, stubTokens{}, plainHasher{}, isAdmin, logger.Discard())
}

func TestRegisterAndLogin(t *testing.T) {
	users, _, uc := newAccountFixture()
	ctx := context.Background()

	res, err := uc.Register(ctx, " Ann@Example.com ", "secret1", " ann ")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", res.User.Email)
	assert.Equal(t, "ann", res.User.Username)
	assert.False(t, res.User.IsAdmin)
	assert.Equal(t, "token-"+res.User.ID.String(), res.Token)

	stored := users.items[res.User.ID]
	require.NotNil(t, stored)
	assert.Equal(t, "hash:secret1", stored.PasswordHash)

	login, err := uc.Login(ctx, "ANN@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
	assert.NotNil(t, users.items[res.User.ID].LastLoginAt)
}

func TestRegisterAdminEmail(t *testing.T) {
	_, _, uc := newAccountFixture()

	res, err := uc.Register(context.Background(), "boss@example.com", "secret1", "")
	require.NoError(t, err)
	assert.True(t, res.User.IsAdmin)
}

func TestRegisterValidation(t *testing.T) {
	_, _, uc := newAccountFixture()
	ctx := context.Background()

	tests := []struct {
		name, email, password, username string
		want                             error
	}{
		{"bad email", "not-an-email", "secret1", "", domain.ErrInvalidInput},
		{"short password", "a@b.com", "123", "", domain.ErrInvalidInput},
		{"long username", "a@b.com", "secret1", strings.Repeat("x", 51), domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Register(ctx, tt.email, tt.password, tt.username)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := uc.Register(ctx, "dup@b.com", "secret1", "")
	require.NoError(t, err)
	_, err = uc.Register(ctx, "DUP@b.com", "secret1", "")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLoginFailures(t *testing.T) {
	_, _, uc := newAccountFixture()
	ctx := context.Background()
	_, err := uc.Register(ctx, "ann@example.com", "secret1", "")
	require.NoError(t, err)

	_, err = uc.Login(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = uc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestProfile(t *testing.T) {
	_, artworks, uc := newAccountFixture()
	ctx := context.Background()

	res, err := uc.Register(ctx, "ann@example.com", "secret1", "")
	require.NoError(t, err)
	sess := &domain.Session{UserID: res.User.ID}

	artworks.put(domain.Artwork{OwnerID: res.User.ID})
	artworks.put(domain.Artwork{OwnerID: res.User.ID})
	artworks.put(domain.Artwork{OwnerID: uuid.New()})

	p, err := uc.Profile(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalArtworks)
	assert.Equal(t, "Anonymous", p.DisplayName)

	p, err = uc.UpdateProfile(ctx, sess, " Ann ", "paints")
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.DisplayName)
	assert.Equal(t, "paints", p.User.Bio)

	_, err = uc.UpdateProfile(ctx, sess, "  ", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Profile(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Profile(ctx, &domain.Session{UserID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
