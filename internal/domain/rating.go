package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Rating — оценка одного пользователя для одной работы.
// Хранится внутри artworks.ratings (JSONB) целым массивом.
type Rating struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Score     float64   `json:"score"`
	Review    *string   `json:"review,omitempty"`
	Timestamp string    `json:"timestamp"`
}

// HasReview сообщает, есть ли у оценки непустой текст отзыва.
func (r Rating) HasReview() bool {
	return r.Review != nil && *r.Review != ""
}

// Time разбирает Timestamp; при ошибке возвращает нулевое время.
func (r Rating) Time() time.Time {
	t, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Ratings — массив оценок работы в порядке вставки.
type Ratings []Rating

// Value сериализует массив в JSONB. nil пишется как пустой массив.
func (rs Ratings) Value() (driver.Value, error) {
	if rs == nil {
		return []byte("[]"), nil
	}
	b, err := json.Marshal([]Rating(rs))
	if err != nil {
		return nil, fmt.Errorf("marshal ratings: %w", err)
	}
	return b, nil
}

// Scan читает JSONB. NULL и битый JSON читаются как пустой массив:
// старые документы не должны ломать выдачу работы.
func (rs *Ratings) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*rs = Ratings{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		*rs = Ratings{}
		return nil
	}

	var out []Rating
	if err := json.Unmarshal(data, &out); err != nil {
		*rs = Ratings{}
		return nil
	}
	*rs = out
	return nil
}
