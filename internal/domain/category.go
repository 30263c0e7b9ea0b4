package domain

import (
	"fmt"
	"strings"
)

// Category — раздел галереи, к которому относится работа.
type Category string

const (
	CategoryDigitalPhotography Category = "digital-photography"
	CategoryArtPainting        Category = "art-painting"
	CategoryUncategorized      Category = "uncategorized"

	// CategoryAll — фильтр галереи "все категории", не хранится в БД.
	CategoryAll Category = "all"
)

// Categories перечисляет все допустимые значения для хранения.
var Categories = []Category{
	CategoryDigitalPhotography,
	CategoryArtPainting,
	CategoryUncategorized,
}

func (c Category) String() string {
	return string(c)
}

func (c Category) Valid() bool {
	switch c {
	case CategoryDigitalPhotography, CategoryArtPainting, CategoryUncategorized:
		return true
	}
	return false
}

// ParseCategory строго разбирает значение из запроса.
// Пустая строка означает uncategorized.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return CategoryUncategorized, nil
	}
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// ParseCategoryFilter разбирает фильтр галереи: "all" (или пусто) либо категория.
func ParseCategoryFilter(s string) (Category, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == string(CategoryAll) {
		return CategoryAll, nil
	}
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// NormalizeCategory приводит значение из хранилища к перечислению.
// Старые записи содержат "photography", "digital", "painting" или вообще ничего.
func NormalizeCategory(s string) Category {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case string(CategoryDigitalPhotography), "photography", "digital":
		return CategoryDigitalPhotography
	case string(CategoryArtPainting), "painting":
		return CategoryArtPainting
	default:
		return CategoryUncategorized
	}
}
