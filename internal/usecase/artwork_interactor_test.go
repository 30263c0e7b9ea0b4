package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/GoArmGo/ArtMarket/internal/domain"
	"github.com/GoArmGo/ArtMarket/internal/logger"
	"github.com/GoArmGo/ArtMarket/internal/messaging/payloads"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type artworkFixture struct {
	uc        *artworkUseCase
	store     *memArtworks
	users     *memUsers
	files     *memFiles
	fetcher   *stubFetcher
	publisher *recPublisher
}

func newArtworkFixture(t *testing.T, mirror bool) *artworkFixture {
	t.Helper()
	f := &artworkFixture{
		store:     newMemArtworks(),
		users:     newMemUsers(),
		files:     newMemFiles(),
		fetcher:   &stubFetcher{data: pngBytes(t, 40, 30)},
		publisher: &recPublisher{},
	}
	f.uc = NewArtworkUseCase(f.store, f.users, f.files, f.fetcher, f.publisher, ArtworkOptions{
		GalleryPageSize:      3,
		MyArtworkPageSize:    3,
		MaxImageBytes:        10 << 20,
		ImageTargetWidth:     80,
		MirrorExternalImages: mirror,
	}, logger.Discard()).(*artworkUseCase)
	return f
}

func (f *artworkFixture) seed(n int, owner uuid.UUID, category domain.Category) []*domain.Artwork {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*domain.Artwork, n)
	for i := 0; i < n; i++ {
		out[i] = f.store.put(domain.Artwork{
			Title:     fmt.Sprintf("art %d", i),
			OwnerID:   owner,
			Category:  category,
			ImageURL:  "http://img/x.jpg",
			CreatedAt: base.Add(time.Duration(len(f.store.items)) * time.Minute),
		})
	}
	return out
}

func TestCreateRequiresSession(t *testing.T) {
	f := newArtworkFixture(t, false)

	_, err := f.uc.Create(context.Background(), nil, NewArtwork{Title: "x", ImageURL: "http://a/b.jpg"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreateWithUploadedBytes(t *testing.T) {
	f := newArtworkFixture(t, false)
	sess := f.users.add(session(false))

	a, err := f.uc.Create(context.Background(), sess, NewArtwork{
		Title:       "  Harbor ",
		Category:    "art-painting",
		AspectRatio: "4:3",
		ImageBytes:  pngBytes(t, 200, 100),
	})
	require.NoError(t, err)

	assert.Equal(t, "Harbor", a.Title)
	assert.Equal(t, "tester", a.Artist)
	assert.Equal(t, sess.UserID, a.OwnerID)
	assert.Equal(t, domain.CategoryArtPainting, a.Category)
	assert.False(t, a.IsAdminUpload)
	assert.Equal(t, "artworks/"+a.ID.String()+".jpg", a.ImageKey)
	assert.Equal(t, "http://files.test/"+a.ImageKey, a.ImageURL)
	assert.Contains(t, f.files.objects, a.ImageKey)

	stored, _ := f.store.GetArtwork(context.Background(), a.ID)
	require.NotNil(t, stored)
	assert.Empty(t, stored.Ratings)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, payloads.ArtworkCreated, f.publisher.events[0].Type)
	assert.Equal(t, a.ID, f.publisher.events[0].ArtworkID)
}

func TestCreateFromDataURLByAdmin(t *testing.T) {
	f := newArtworkFixture(t, false)

	a, err := f.uc.Create(context.Background(), f.users.add(session(true)), NewArtwork{
		Title:     "Admin pick",
		ImageData: "data:image/png;base64," + encode(pngBytes(t, 20, 20)),
	})
	require.NoError(t, err)
	assert.True(t, a.IsAdminUpload)
	assert.Equal(t, domain.CategoryUncategorized, a.Category)
	assert.NotEmpty(t, a.ImageKey)
}

func TestCreateUsesCurrentProfile(t *testing.T) {
	f := newArtworkFixture(t, false)
	ctx := context.Background()
	sess := f.users.add(session(true))
	require.NoError(t, f.users.UpdateProfile(ctx, sess.UserID, "Renamed", ""))
	f.users.items[sess.UserID].IsAdmin = false

	a, err := f.uc.Create(ctx, sess, NewArtwork{Title: "x", ImageURL: "http://a/b.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", a.Artist)
	assert.False(t, a.IsAdminUpload)
}

func TestCreateUnknownUser(t *testing.T) {
	f := newArtworkFixture(t, false)

	_, err := f.uc.Create(context.Background(), session(false), NewArtwork{Title: "x", ImageURL: "http://a/b.jpg"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, f.store.items)
}

func TestCreateExternalURLKeptWithoutMirroring(t *testing.T) {
	f := newArtworkFixture(t, false)

	a, err := f.uc.Create(context.Background(), f.users.add(session(false)), NewArtwork{
		Title:    "Linked",
		ImageURL: "https://example.com/a.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.jpg", a.ImageURL)
	assert.Empty(t, a.ImageKey)
	assert.Zero(t, f.fetcher.calls)
	assert.Empty(t, f.files.objects)
}

func TestCreateExternalURLMirrored(t *testing.T) {
	f := newArtworkFixture(t, true)

	a, err := f.uc.Create(context.Background(), f.users.add(session(false)), NewArtwork{
		Title:       "Mirrored",
		AspectRatio: "1:1",
		ImageURL:    "https://example.com/a.png",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.fetcher.calls)
	assert.NotEmpty(t, a.ImageKey)
	assert.Contains(t, f.files.objects, a.ImageKey)
}

func TestCreateValidation(t *testing.T) {
	f := newArtworkFixture(t, false)
	sess := f.users.add(session(false))
	img := pngBytes(t, 10, 10)

	tests := []struct {
		name string
		in   NewArtwork
		want error
	}{
		{"missing title", NewArtwork{ImageBytes: img}, domain.ErrInvalidInput},
		{"bad category", NewArtwork{Title: "x", Category: "sculpture", ImageBytes: img}, domain.ErrInvalidCategory},
		{"bad ratio", NewArtwork{Title: "x", AspectRatio: "2:1", ImageBytes: img}, domain.ErrInvalidInput},
		{"no image", NewArtwork{Title: "x"}, domain.ErrInvalidInput},
		{"two images", NewArtwork{Title: "x", ImageBytes: img, ImageURL: "http://a/b.jpg"}, domain.ErrInvalidInput},
		{"bad url", NewArtwork{Title: "x", ImageURL: "javascript:alert(1)"}, domain.ErrInvalidInput},
		{"not an image", NewArtwork{Title: "x", ImageBytes: []byte("%PDF-1.4")}, domain.ErrInvalidImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Create(context.Background(), sess, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.store.items)
}

func TestCreateRejectsImageOverPixelLimit(t *testing.T) {
	f := newArtworkFixture(t, false)
	f.uc.opts.MaxImagePixels = 100

	_, err := f.uc.Create(context.Background(), f.users.add(session(false)), NewArtwork{Title: "x", ImageBytes: pngBytes(t, 20, 20)})
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
	assert.Empty(t, f.files.objects)
	assert.Empty(t, f.store.items)
}

func TestCreateRemovesImageWhenSaveFails(t *testing.T) {
	f := newArtworkFixture(t, false)
	f.store.createErr = errors.New("db down")

	_, err := f.uc.Create(context.Background(), f.users.add(session(false)), NewArtwork{Title: "x", ImageBytes: pngBytes(t, 10, 10)})
	require.Error(t, err)
	assert.Empty(t, f.files.objects)
	assert.Empty(t, f.publisher.events)
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	f := newArtworkFixture(t, false)
	f.publisher.err = errors.New("broker down")

	_, err := f.uc.Create(context.Background(), f.users.add(session(false)), NewArtwork{Title: "x", ImageURL: "http://a/b.jpg"})
	require.NoError(t, err)
}

func TestGalleryPaginationAndClamp(t *testing.T) {
	f := newArtworkFixture(t, false)
	f.seed(7, uuid.New(), domain.CategoryArtPainting)

	p1, err := f.uc.Gallery(context.Background(), nil, "", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, p1.TotalPages)
	assert.Len(t, p1.Items, 3)
	assert.Equal(t, "art 6", p1.Items[0].Title)

	p3, err := f.uc.Gallery(context.Background(), nil, "all", 3)
	require.NoError(t, err)
	assert.Len(t, p3.Items, 1)

	p5, err := f.uc.Gallery(context.Background(), nil, "all", 5)
	require.NoError(t, err)
	assert.Equal(t, 3, p5.Page)
}

func TestGalleryCategoryFilter(t *testing.T) {
	f := newArtworkFixture(t, false)
	owner := uuid.New()
	f.seed(3, owner, domain.CategoryArtPainting)
	f.seed(2, owner, domain.CategoryDigitalPhotography)

	page, err := f.uc.Gallery(context.Background(), nil, "digital-photography", 4)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 2, page.TotalItems)

	_, err = f.uc.Gallery(context.Background(), nil, "sculpture", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestGalleryEmpty(t *testing.T) {
	f := newArtworkFixture(t, false)

	page, err := f.uc.Gallery(context.Background(), nil, "", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Items)
}

func TestGalleryCardsCarryCallerRating(t *testing.T) {
	f := newArtworkFixture(t, false)
	sess := f.users.add(session(false))
	review := "nice"
	f.store.put(domain.Artwork{
		OwnerID:   uuid.New(),
		Category:  domain.CategoryArtPainting,
		ImageData: "data:image/png;base64,AAAA",
		ImageURL:  "http://img/legacy.jpg",
		CreatedAt: time.Now(),
		Ratings: domain.Ratings{
			{UserID: sess.UserID, Score: 4, Review: &review, Timestamp: time.Now().Format(time.RFC3339Nano)},
			{UserID: uuid.New(), Score: 2, Timestamp: time.Now().Format(time.RFC3339Nano)},
		},
	})

	page, err := f.uc.Gallery(context.Background(), sess, "", 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	card := page.Items[0]
	assert.Equal(t, "data:image/png;base64,AAAA", card.ImageSrc)
	assert.Equal(t, 2, card.Rating.Count)
	assert.Equal(t, 3.0, card.Rating.Average)
	assert.True(t, card.Rating.HasCallerRating)
	assert.Equal(t, 4.0, card.Rating.CallerRating)
	assert.Equal(t, "nice", card.Rating.CallerReview)
	assert.Len(t, card.TopReviews, 2)
}

func TestMyArtworks(t *testing.T) {
	f := newArtworkFixture(t, false)
	sess := f.users.add(session(false))
	f.seed(4, sess.UserID, domain.CategoryArtPainting)
	f.seed(3, uuid.New(), domain.CategoryArtPainting)

	_, err := f.uc.MyArtworks(context.Background(), nil, 1)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	page, err := f.uc.MyArtworks(context.Background(), sess, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, sess.UserID, page.Items[0].OwnerID)
}

func TestGet(t *testing.T) {
	f := newArtworkFixture(t, false)
	owner := session(false)
	a := f.seed(1, owner.UserID, domain.CategoryArtPainting)[0]

	d, err := f.uc.Get(context.Background(), owner, a.ID)
	require.NoError(t, err)
	assert.True(t, d.CanModify)
	assert.Equal(t, "http://img/x.jpg", d.ImageSrc)
	assert.Equal(t, 0, d.Rating.Count)

	d, err = f.uc.Get(context.Background(), nil, a.ID)
	require.NoError(t, err)
	assert.False(t, d.CanModify)

	_, err = f.uc.Get(context.Background(), nil, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateDetailsPermissions(t *testing.T) {
	f := newArtworkFixture(t, false)
	owner := session(false)
	a := f.seed(1, owner.UserID, domain.CategoryArtPainting)[0]
	title := " Renamed "

	_, err := f.uc.UpdateDetails(context.Background(), session(false), a.ID, domain.ArtworkPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.UpdateDetails(context.Background(), nil, a.ID, domain.ArtworkPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	updated, err := f.uc.UpdateDetails(context.Background(), owner, a.ID, domain.ArtworkPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.NotNil(t, updated.LastEditedAt)

	artist := "Someone"
	updated, err = f.uc.UpdateDetails(context.Background(), session(true), a.ID, domain.ArtworkPatch{Artist: &artist})
	require.NoError(t, err)
	assert.Equal(t, "Someone", updated.Artist)

	blank := "  "
	_, err = f.uc.UpdateDetails(context.Background(), owner, a.ID, domain.ArtworkPatch{Title: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.UpdateDetails(context.Background(), owner, a.ID, domain.ArtworkPatch{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSetFlagged(t *testing.T) {
	f := newArtworkFixture(t, false)
	a := f.seed(1, uuid.New(), domain.CategoryArtPainting)[0]

	assert.ErrorIs(t, f.uc.SetFlagged(context.Background(), session(false), a.ID, true), domain.ErrForbidden)
	assert.ErrorIs(t, f.uc.SetFlagged(context.Background(), nil, a.ID, true), domain.ErrUnauthorized)
	assert.ErrorIs(t, f.uc.SetFlagged(context.Background(), session(true), uuid.New(), true), domain.ErrNotFound)

	require.NoError(t, f.uc.SetFlagged(context.Background(), session(true), a.ID, true))
	stored, _ := f.store.GetArtwork(context.Background(), a.ID)
	assert.True(t, stored.Flagged)
	assert.Equal(t, []payloads.EventType{payloads.ArtworkFlagged}, f.publisher.types())
	assert.True(t, f.publisher.events[0].Flagged)
}

func TestDelete(t *testing.T) {
	f := newArtworkFixture(t, false)
	owner := session(false)
	a := f.store.put(domain.Artwork{OwnerID: owner.UserID, ImageKey: "artworks/k.jpg", CreatedAt: time.Now()})

	assert.ErrorIs(t, f.uc.Delete(context.Background(), session(false), a.ID), domain.ErrForbidden)
	require.NoError(t, f.uc.Delete(context.Background(), owner, a.ID))
	assert.ErrorIs(t, f.uc.Delete(context.Background(), owner, a.ID), domain.ErrNotFound)

	require.Len(t, f.publisher.events, 1)
	ev := f.publisher.events[0]
	assert.Equal(t, payloads.ArtworkDeleted, ev.Type)
	assert.Equal(t, "artworks/k.jpg", ev.ImageKey)
}

func TestAdminOverview(t *testing.T) {
	f := newArtworkFixture(t, false)
	f.store.put(domain.Artwork{OwnerID: uuid.New(), Flagged: true, CreatedAt: time.Now()})
	f.store.put(domain.Artwork{OwnerID: uuid.New(), IsAdminUpload: true, CreatedAt: time.Now()})
	f.store.put(domain.Artwork{OwnerID: uuid.New(), CreatedAt: time.Now()})

	_, err := f.uc.AdminOverview(context.Background(), session(false), false)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	o, err := f.uc.AdminOverview(context.Background(), session(true), false)
	require.NoError(t, err)
	assert.Len(t, o.Artworks, 3)
	assert.Equal(t, domain.ArtworkStats{Total: 3, Flagged: 1, AdminUploads: 1}, o.Stats)
}

func TestAdminOverviewFlaggedOnly(t *testing.T) {
	f := newArtworkFixture(t, false)
	flagged := f.store.put(domain.Artwork{OwnerID: uuid.New(), Flagged: true, CreatedAt: time.Now()})
	f.store.put(domain.Artwork{OwnerID: uuid.New(), CreatedAt: time.Now()})

	o, err := f.uc.AdminOverview(context.Background(), session(true), true)
	require.NoError(t, err)
	require.Len(t, o.Artworks, 1)
	assert.Equal(t, flagged.ID, o.Artworks[0].ID)
	assert.Equal(t, 2, o.Stats.Total)
}
