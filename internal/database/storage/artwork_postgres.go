package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/ArtMarket/internal/database/dberr"
	"github.com/GoArmGo/ArtMarket/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const artworkColumns = `id, title, artist, description, owner_id, image_data, image_url, image_key,
	aspect_ratio, category, is_admin_upload, flagged, ratings, version, created_at, last_edited_at`

// ArtworkStorage — хранилище работ на sqlx
type ArtworkStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewArtworkStorage(db *sqlx.DB, logger *slog.Logger) *ArtworkStorage {
	return &ArtworkStorage{db: db, logger: logger}
}

// CreateArtwork сохраняет новую работу
func (s *ArtworkStorage) CreateArtwork(ctx context.Context, artwork *domain.Artwork) error {
	start := time.Now()

	if artwork.ID == uuid.Nil {
		artwork.ID = uuid.New()
	}
	if artwork.CreatedAt.IsZero() {
		artwork.CreatedAt = time.Now().UTC()
	}
	if artwork.Ratings == nil {
		artwork.Ratings = domain.Ratings{}
	}

	query := `
	INSERT INTO artworks (id, title, artist, description, owner_id, image_data, image_url, image_key,
		aspect_ratio, category, is_admin_upload, flagged, ratings, version, created_at)
	VALUES (:id, :title, :artist, :description, :owner_id, :image_data, :image_url, :image_key,
		:aspect_ratio, :category, :is_admin_upload, :flagged, :ratings, :version, :created_at)
	`

	if _, err := s.db.NamedExecContext(ctx, query, artwork); err != nil {
		s.logger.Error("failed to save artwork", "owner_id", artwork.OwnerID, "error", err)
		return dberr.Wrap("ошибка при сохранении работы", err)
	}

	s.logger.Info("artwork saved successfully",
		"id", artwork.ID,
		"owner_id", artwork.OwnerID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetArtwork получает работу по ID, nil если её нет
func (s *ArtworkStorage) GetArtwork(ctx context.Context, id uuid.UUID) (*domain.Artwork, error) {
	start := time.Now()

	var artwork domain.Artwork
	query := `SELECT ` + artworkColumns + ` FROM artworks WHERE id = $1 LIMIT 1`

	if err := s.db.GetContext(ctx, &artwork, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("artwork not found by id", "id", id)
			return nil, nil
		}
		s.logger.Error("failed to get artwork by id", "id", id, "error", err)
		return nil, dberr.Wrap("ошибка при получении работы по ID", err)
	}
	normalize(&artwork)

	s.logger.Debug("artwork retrieved by id",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &artwork, nil
}

// ListArtworks возвращает работы от новых к старым.
// Категория фильтруется после нормализации: старые строки хранят
// значения вроде "painting", которые SQL-сравнение бы пропустило.
func (s *ArtworkStorage) ListArtworks(ctx context.Context, filter domain.ArtworkFilter) ([]domain.Artwork, error) {
	start := time.Now()

	var (
		where []string
		args  []any
	)
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filter.FlaggedOnly {
		where = append(where, "flagged = TRUE")
	}

	q := `SELECT ` + artworkColumns + ` FROM artworks`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, id`

	var rows []domain.Artwork
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		s.logger.Error("failed to list artworks", "error", err)
		return nil, dberr.Wrap("ошибка при получении списка работ", err)
	}

	artworks := make([]domain.Artwork, 0, len(rows))
	for i := range rows {
		normalize(&rows[i])
		if filter.Category != "" && filter.Category != domain.CategoryAll && rows[i].Category != filter.Category {
			continue
		}
		artworks = append(artworks, rows[i])
	}

	s.logger.Debug("listed artworks successfully",
		"count", len(artworks),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return artworks, nil
}

// UpdateArtworkDetails меняет переданные поля и проставляет last_edited_at
func (s *ArtworkStorage) UpdateArtworkDetails(ctx context.Context, id uuid.UUID, patch domain.ArtworkPatch, editedAt time.Time) error {
	start := time.Now()

	q := `
	UPDATE artworks
	SET title = COALESCE($2, title),
	    artist = COALESCE($3, artist),
	    description = COALESCE($4, description),
	    last_edited_at = $5
	WHERE id = $1
	`

	res, err := s.db.ExecContext(ctx, q, id, patch.Title, patch.Artist, patch.Description, editedAt)
	if err != nil {
		s.logger.Error("failed to update artwork", "id", id, "error", err)
		return dberr.Wrap("ошибка при обновлении работы", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}

	s.logger.Info("artwork details updated",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// SetFlagged ставит или снимает отметку модерации
func (s *ArtworkStorage) SetFlagged(ctx context.Context, id uuid.UUID, flagged bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE artworks SET flagged = $2 WHERE id = $1`, id, flagged)
	if err != nil {
		s.logger.Error("failed to set flagged", "id", id, "error", err)
		return dberr.Wrap("ошибка при изменении отметки", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	s.logger.Info("artwork flag changed", "id", id, "flagged", flagged)
	return nil
}

// DeleteArtwork удаляет работу
func (s *ArtworkStorage) DeleteArtwork(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM artworks WHERE id = $1`, id)
	if err != nil {
		s.logger.Error("failed to delete artwork", "id", id, "error", err)
		return dberr.Wrap("ошибка при удалении работы", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	s.logger.Info("artwork deleted", "id", id)
	return nil
}

func (s *ArtworkStorage) CountArtworksByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM artworks WHERE owner_id = $1`, ownerID); err != nil {
		s.logger.Error("failed to count artworks", "owner_id", ownerID, "error", err)
		return 0, dberr.Wrap("ошибка при подсчёте работ", err)
	}
	return n, nil
}

// ArtworkStats — счётчики для админской панели
func (s *ArtworkStorage) ArtworkStats(ctx context.Context) (domain.ArtworkStats, error) {
	q := `
	SELECT COUNT(*) AS total,
	       COUNT(*) FILTER (WHERE flagged) AS flagged,
	       COUNT(*) FILTER (WHERE is_admin_upload) AS admin_uploads
	FROM artworks
	`
	var stats domain.ArtworkStats
	if err := s.db.GetContext(ctx, &stats, q); err != nil {
		s.logger.Error("failed to load artwork stats", "error", err)
		return domain.ArtworkStats{}, dberr.Wrap("ошибка при получении статистики", err)
	}
	return stats, nil
}

// ReplaceRatings записывает весь массив оценок, если версия не изменилась
// с момента чтения. Возвращает новую версию.
func (s *ArtworkStorage) ReplaceRatings(ctx context.Context, id uuid.UUID, ratings domain.Ratings, expectedVersion int64) (int64, error) {
	start := time.Now()

	q := `
	UPDATE artworks
	SET ratings = $2, version = version + 1
	WHERE id = $1 AND version = $3
	RETURNING version
	`

	var version int64
	err := s.db.QueryRowxContext(ctx, q, id, ratings, expectedVersion).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("ratings write lost the race", "id", id, "expected_version", expectedVersion)
		return 0, domain.ErrConflict
	}
	if err != nil {
		s.logger.Error("failed to replace ratings", "id", id, "error", err)
		return 0, dberr.Wrap("ошибка при сохранении оценок", err)
	}

	s.logger.Info("ratings replaced",
		"id", id,
		"count", len(ratings),
		"version", version,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return version, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return dberr.Wrap("ошибка при чтении результата", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func normalize(a *domain.Artwork) {
	a.Category = domain.NormalizeCategory(string(a.Category))
	if a.Ratings == nil {
		a.Ratings = domain.Ratings{}
	}
}
