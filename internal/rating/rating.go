// Package rating считает сводку оценок работы и следующее состояние
// массива оценок после отправки оценки или отзыва.
// Функции пакета чистые: хранилище вызывает usecase.
package rating

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/GoArmGo/ArtMarket/internal/domain"
	"github.com/google/uuid"
)

const (
	MinScore = 1.0
	MaxScore = 5.0
)

// Stars — корзины распределения, от 1 до 5.
var Stars = [...]int{1, 2, 3, 4, 5}

// Summary — сводка оценок одной работы.
type Summary struct {
	Count        int             `json:"count"`
	Average      float64         `json:"average"`
	Distribution map[int]int     `json:"distribution"`
	Reviews      []domain.Rating `json:"reviews"`

	// Оценка вызывающего пользователя для предзаполнения формы.
	HasCallerRating bool    `json:"has_caller_rating"`
	CallerRating    float64 `json:"caller_rating,omitempty"`
	CallerReview    string  `json:"caller_review,omitempty"`
}

// TopReviews возвращает первые n отзывов (свёрнутый список на карточке).
func (s Summary) TopReviews(n int) []domain.Rating {
	if n < 0 || n >= len(s.Reviews) {
		return s.Reviews
	}
	return s.Reviews[:n]
}

// Round1 округляет до одного знака после запятой.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Bucket — корзина распределения для оценки: округлённое значение в [1, 5].
func Bucket(score float64) int {
	b := int(math.Round(score))
	if b < 1 {
		return 1
	}
	if b > 5 {
		return 5
	}
	return b
}

// Aggregate считает сводку по массиву оценок. callerID == uuid.Nil означает,
// что пользователь не вошёл. Записи с баллом NaN или ±Inf в сводку не входят:
// Count, Distribution и Average считаются только по числовым баллам.
func Aggregate(ratings []domain.Rating, callerID uuid.UUID) Summary {
	s := Summary{
		Distribution: make(map[int]int, len(Stars)),
		Reviews:      []domain.Rating{},
	}
	for _, star := range Stars {
		s.Distribution[star] = 0
	}

	var sum float64
	for _, r := range ratings {
		if math.IsNaN(r.Score) || math.IsInf(r.Score, 0) {
			continue
		}
		s.Count++
		sum += r.Score
		s.Distribution[Bucket(r.Score)]++

		if r.HasReview() {
			s.Reviews = append(s.Reviews, r)
		}
		if callerID != uuid.Nil && r.UserID == callerID {
			s.HasCallerRating = true
			s.CallerRating = r.Score
			if r.Review != nil {
				s.CallerReview = *r.Review
			}
		}
	}

	if s.Count > 0 {
		s.Average = Round1(sum / float64(s.Count))
	}

	sort.SliceStable(s.Reviews, func(i, j int) bool {
		return s.Reviews[i].Time().After(s.Reviews[j].Time())
	})

	return s
}

// Submission — отправка оценки (и, возможно, отзыва) пользователем.
type Submission struct {
	ActorID   uuid.UUID
	ActorName string
	OwnerID   uuid.UUID
	Score     float64
	Review    string
}

// Submit проверяет отправку и возвращает новый массив оценок: прежняя запись
// автора удалена, новая добавлена в конец. Входной срез не меняется.
func Submit(ratings []domain.Rating, sub Submission, now time.Time) ([]domain.Rating, error) {
	if sub.ActorID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	if sub.ActorID == sub.OwnerID {
		return nil, domain.ErrSelfRatingForbidden
	}
	if !(sub.Score >= MinScore && sub.Score <= MaxScore) {
		return nil, domain.ErrInvalidScore
	}

	next := make([]domain.Rating, 0, len(ratings)+1)
	for _, r := range ratings {
		if r.UserID == sub.ActorID {
			continue
		}
		next = append(next, r)
	}

	name := sub.ActorName
	if strings.TrimSpace(name) == "" {
		name = domain.AnonymousName
	}

	entry := domain.Rating{
		UserID:    sub.ActorID,
		Username:  name,
		Score:     Round1(sub.Score),
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}
	if review := strings.TrimSpace(sub.Review); review != "" {
		entry.Review = &review
	}

	return append(next, entry), nil
}
