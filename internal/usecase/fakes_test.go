package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/GoArmGo/ArtMarket/internal/domain"
	"github.com/GoArmGo/ArtMarket/internal/messaging/payloads"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// memArtworks — ArtworkStorage в памяти с версионированием оценок.
type memArtworks struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*domain.Artwork
	createErr error
	// beforeReplace вызывается перед проверкой версии, чтобы имитировать
	// параллельную запись
	beforeReplace func(a *domain.Artwork)
	replaceCalls  int
}

func newMemArtworks() *memArtworks {
	return &memArtworks{items: map[uuid.UUID]*domain.Artwork{}}
}

func clone(a *domain.Artwork) *domain.Artwork {
	c := *a
	c.Ratings = append(domain.Ratings{}, a.Ratings...)
	return &c
}

func (m *memArtworks) put(a domain.Artwork) *domain.Artwork {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Ratings == nil {
		a.Ratings = domain.Ratings{}
	}
	m.items[a.ID] = clone(&a)
	return &a
}

func (m *memArtworks) CreateArtwork(_ context.Context, a *domain.Artwork) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.put(*a)
	return nil
}

func (m *memArtworks) GetArtwork(_ context.Context, id uuid.UUID) (*domain.Artwork, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return clone(a), nil
}

func (m *memArtworks) ListArtworks(_ context.Context, f domain.ArtworkFilter) ([]domain.Artwork, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Artwork{}
	for _, a := range m.items {
		if f.OwnerID != nil && a.OwnerID != *f.OwnerID {
			continue
		}
		if f.FlaggedOnly && !a.Flagged {
			continue
		}
		if f.Category != "" && f.Category != domain.CategoryAll && a.Category != f.Category {
			continue
		}
		out = append(out, *clone(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memArtworks) UpdateArtworkDetails(_ context.Context, id uuid.UUID, p domain.ArtworkPatch, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Artist != nil {
		a.Artist = *p.Artist
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	a.LastEditedAt = &at
	return nil
}

func (m *memArtworks) SetFlagged(_ context.Context, id uuid.UUID, flagged bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Flagged = flagged
	return nil
}

func (m *memArtworks) DeleteArtwork(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memArtworks) CountArtworksByOwner(_ context.Context, owner uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.items {
		if a.OwnerID == owner {
			n++
		}
	}
	return n, nil
}

func (m *memArtworks) ArtworkStats(context.Context) (domain.ArtworkStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s domain.ArtworkStats
	for _, a := range m.items {
		s.Total++
		if a.Flagged {
			s.Flagged++
		}
		if a.IsAdminUpload {
			s.AdminUploads++
		}
	}
	return s, nil
}

func (m *memArtworks) ReplaceRatings(_ context.Context, id uuid.UUID, ratings domain.Ratings, expected int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceCalls++
	a, ok := m.items[id]
	if !ok {
		return 0, domain.ErrConflict
	}
	if m.beforeReplace != nil {
		m.beforeReplace(a)
	}
	if a.Version != expected {
		return 0, domain.ErrConflict
	}
	a.Ratings = append(domain.Ratings{}, ratings...)
	a.Version++
	return a.Version, nil
}

// memUsers — UserStorage в памяти.
type memUsers struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{items: map[uuid.UUID]*domain.User{}}
}

// add заводит пользователя под сессию и возвращает её.
func (m *memUsers) add(sess *domain.Session) *domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[sess.UserID] = &domain.User{
		ID:       sess.UserID,
		Username: sess.DisplayName,
		Email:    sess.UserID.String() + "@example.com",
		IsAdmin:  sess.IsAdmin,
	}
	return sess
}

func (m *memUsers) CreateUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	c := *u
	m.items[u.ID] = &c
	return nil
}

func (m *memUsers) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.items {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindUserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id uuid.UUID, username, bio string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Username, u.Bio = username, bio
	return nil
}

func (m *memUsers) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.items[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

// memFiles — FileStorage в памяти.
type memFiles struct {
	objects   map[string][]byte
	uploadErr error
	deleteErr error
}

func newMemFiles() *memFiles {
	return &memFiles{objects: map[string][]byte{}}
}

func (f *memFiles) UploadFile(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	return "http://files.test/" + key, nil
}

func (f *memFiles) DeleteFile(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

type recPublisher struct {
	events []payloads.ArtworkEvent
	err    error
}

func (p *recPublisher) PublishArtworkEvent(_ context.Context, ev payloads.ArtworkEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recPublisher) types() []payloads.EventType {
	out := make([]payloads.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type stubFetcher struct {
	data  []byte
	err   error
	calls int
}

func (s *stubFetcher) Fetch(context.Context, string, int64) ([]byte, string, error) {
	s.calls++
	if s.err != nil {
		return nil, "", s.err
	}
	return s.data, "image/png", nil
}

type stubTokens struct{}

func (stubTokens) Issue(u *domain.User) (string, time.Time, error) {
	return "token-" + u.ID.String(), time.Now().Add(time.Hour), nil
}

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hash:" + p, nil }

func (plainHasher) Check(h, p string) (bool, error) {
	if h == "" {
		return false, errors.New("empty hash")
	}
	return h == "hash:"+p, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func session(admin bool) *domain.Session {
	return &domain.Session{UserID: uuid.New(), DisplayName: "tester", IsAdmin: admin}
}

func encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
