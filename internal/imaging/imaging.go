// Package imaging приводит загруженные изображения к виду, в котором они
// хранятся в галерее: кадрирование по соотношению сторон, ресайз, JPEG.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"
	"math"
	"strings"

	// декодеры для image.Decode
	_ "image/gif"
	_ "image/png"

	"github.com/GoArmGo/ArtMarket/internal/domain"
	"github.com/nfnt/resize"
)

const (
	DefaultTargetWidth = 800
	DefaultQuality     = 85
	// Без заданного соотношения сторон картинка не кадрируется,
	// а только ужимается до этой ширины.
	FreeformMaxWidth = 1200
	FreeformQuality  = 80
	OutputMIME       = "image/jpeg"
	// Предел ширина*высота до декодирования: несжатая копия занимает 4 байта на пиксель.
	DefaultMaxPixels = 40_000_000
)

// AspectRatio — соотношение сторон ширина:высота.
type AspectRatio struct {
	W, H int
}

// AspectRatios — поддерживаемые варианты кадрирования.
var AspectRatios = map[string]AspectRatio{
	"3:4":  {W: 3, H: 4},
	"4:3":  {W: 4, H: 3},
	"16:9": {W: 16, H: 9},
	"1:1":  {W: 1, H: 1},
}

// Options управляют обработкой.
type Options struct {
	AspectRatio string
	TargetWidth int
	Quality     int
	MaxBytes    int64
	// MaxPixels — предел ширина*высота, 0 означает DefaultMaxPixels.
	MaxPixels int64
}

// Result — готовое изображение.
type Result struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// ValidAspectRatio сообщает, поддерживается ли значение. Пустая строка допустима.
func ValidAspectRatio(s string) bool {
	if s == "" {
		return true
	}
	_, ok := AspectRatios[s]
	return ok
}

// ReadLimited читает r целиком, но не больше max байт.
func ReadLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения изображения: %w", err)
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w: размер превышает %d байт", domain.ErrInvalidImage, max)
	}
	return data, nil
}

// Process декодирует картинку, кадрирует по центру, уменьшает и кодирует в JPEG.
func Process(data []byte, opts Options) (*Result, error) {
	if opts.MaxBytes > 0 && int64(len(data)) > opts.MaxBytes {
		return nil, fmt.Errorf("%w: размер превышает %d байт", domain.ErrInvalidImage, opts.MaxBytes)
	}
	if _, ok := DetectMIME(data); !ok {
		return nil, fmt.Errorf("%w: неподдерживаемый формат", domain.ErrInvalidImage)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}
	maxPixels := opts.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, fmt.Errorf("%w: размер %dx%d превышает %d пикселей", domain.ErrInvalidImage, cfg.Width, cfg.Height, maxPixels)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}

	var out image.Image
	quality := opts.Quality
	if opts.AspectRatio == "" {
		out = fitWidth(src, FreeformMaxWidth)
		if quality == 0 {
			quality = FreeformQuality
		}
	} else {
		ratio, ok := AspectRatios[opts.AspectRatio]
		if !ok {
			return nil, fmt.Errorf("%w: соотношение сторон %q", domain.ErrInvalidInput, opts.AspectRatio)
		}
		width := opts.TargetWidth
		if width <= 0 {
			width = DefaultTargetWidth
		}
		height := int(math.Round(float64(width) * float64(ratio.H) / float64(ratio.W)))
		out = resize.Resize(uint(width), uint(height), cropCenter(src, ratio), resize.Lanczos3)
		if quality == 0 {
			quality = DefaultQuality
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("ошибка кодирования JPEG: %w", err)
	}

	b := out.Bounds()
	return &Result{Data: buf.Bytes(), MIME: OutputMIME, Width: b.Dx(), Height: b.Dy()}, nil
}

// cropCenter вырезает из центра максимальную область с нужным соотношением
// и кладёт её на белый фон (прозрачность PNG/GIF становится белой).
func cropCenter(src image.Image, ratio AspectRatio) image.Image {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()
	target := float64(ratio.W) / float64(ratio.H)

	cw, ch := sw, sh
	if float64(sw)/float64(sh) > target {
		cw = int(math.Round(float64(sh) * target))
	} else {
		ch = int(math.Round(float64(sw) / target))
	}
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}
	x0 := b.Min.X + (sw-cw)/2
	y0 := b.Min.Y + (sh-ch)/2

	dst := image.NewRGBA(image.Rect(0, 0, cw, ch))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, image.Pt(x0, y0), draw.Over)
	return dst
}

func fitWidth(src image.Image, maxWidth int) image.Image {
	b := src.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), src, b.Min, draw.Over)
	if b.Dx() <= maxWidth {
		return flat
	}
	return resize.Resize(uint(maxWidth), 0, flat, resize.Lanczos3)
}

// DecodeDataURL разбирает data:image/...;base64,... в байты.
func DecodeDataURL(s string) ([]byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, fmt.Errorf("%w: ожидался data URL", domain.ErrInvalidImage)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: ожидался base64 data URL", domain.ErrInvalidImage)
	}
	if !strings.HasPrefix(meta, "image/") {
		return nil, fmt.Errorf("%w: data URL не является изображением", domain.ErrInvalidImage)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}
	return data, nil
}
