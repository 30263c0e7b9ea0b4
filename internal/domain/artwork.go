package domain

import (
	"time"

	"github.com/google/uuid"
)

// Artwork представляет работу в галерее,
// соответствует таблице artworks в бд
type Artwork struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Artist        string     `json:"artist" db:"artist"`
	Description   string     `json:"description,omitempty" db:"description"`
	OwnerID       uuid.UUID  `json:"owner_id" db:"owner_id"`
	ImageData     string     `json:"image_data,omitempty" db:"image_data"`
	ImageURL      string     `json:"image_url,omitempty" db:"image_url"`
	ImageKey      string     `json:"-" db:"image_key"`
	AspectRatio   string     `json:"aspect_ratio,omitempty" db:"aspect_ratio"`
	Category      Category   `json:"category" db:"category"`
	IsAdminUpload bool       `json:"is_admin_upload" db:"is_admin_upload"`
	Flagged       bool       `json:"flagged" db:"flagged"`
	Ratings       Ratings    `json:"ratings" db:"ratings"`
	Version       int64      `json:"-" db:"version"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	LastEditedAt  *time.Time `json:"last_edited_at,omitempty" db:"last_edited_at"`
}

// ImageSource возвращает то, что можно отдать в <img src>:
// встроенные данные важнее внешнего URL.
func (a Artwork) ImageSource() string {
	if a.ImageData != "" {
		return a.ImageData
	}
	return a.ImageURL
}

// ItemID и ItemCategory позволяют листать работы через gallery.Pager.
func (a Artwork) ItemID() string {
	return a.ID.String()
}

func (a Artwork) ItemCategory() string {
	return string(a.Category)
}

// ArtworkFilter — условия выборки для ListArtworks.
type ArtworkFilter struct {
	OwnerID     *uuid.UUID
	Category    Category
	FlaggedOnly bool
}

// ArtworkPatch — поля, которые владелец или админ может менять.
type ArtworkPatch struct {
	Title       *string
	Artist      *string
	Description *string
}

// ArtworkStats — сводка для админской панели.
type ArtworkStats struct {
	Total        int `json:"total" db:"total"`
	Flagged      int `json:"flagged" db:"flagged"`
	AdminUploads int `json:"admin_uploads" db:"admin_uploads"`
}
