// Package utils предоставляет утилиты для обработки изображений.
package utils

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Регистрируем PNG декодер
	"strings"

	"github.com/nfnt/resize"
)

// ErrInvalidDataURI возвращается когда строка не является base64 data URI.
var ErrInvalidDataURI = errors.New("invalid data uri")

// ParseDataURI разбирает строку вида data:<mime>;base64,<payload>.
//
// Возвращает MIME тип и декодированные байты.
func ParseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURI)
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload separator", ErrInvalidDataURI)
	}

	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok || mime == "" {
		return "", nil, fmt.Errorf("%w: expected <mime>;base64", ErrInvalidDataURI)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("%w: empty payload", ErrInvalidDataURI)
	}

	return mime, data, nil
}

// EncodeDataURI собирает base64 data URI.
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ResizeImage ресайзит изображение до указанной ширины, сохраняя пропорции.
//
// Параметры:
//   - data: байты исходного изображения (JPEG, PNG)
//   - maxWidth: целевая ширина в пикселях. Если 0 или меньше исходной ширины — ресайз не применяется.
//   - quality: качество JPEG при кодировании (1-100). Рекомендуется 85.
//
// Возвращает байты JPEG изображения (для LLM и base64).
func ResizeImage(data []byte, maxWidth int, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if maxWidth > 0 && bounds.Dx() > maxWidth {
		aspectRatio := float64(bounds.Dy()) / float64(bounds.Dx())
		newHeight := uint(float64(maxWidth) * aspectRatio)
		img = resize.Resize(uint(maxWidth), newHeight, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode to jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// DownscaleDataURI уменьшает фото из data URI перед отправкой в vision модель.
//
// Форматы, которые не умеем декодировать (например, image/webp), возвращаются
// без изменений — модель примет их как есть.
func DownscaleDataURI(uri string, maxWidth int, quality int) (string, error) {
	mime, data, err := ParseDataURI(uri)
	if err != nil {
		return "", err
	}
	if maxWidth <= 0 || (mime != "image/jpeg" && mime != "image/png") {
		return uri, nil
	}

	resized, err := ResizeImage(data, maxWidth, quality)
	if err != nil {
		return "", err
	}
	return EncodeDataURI("image/jpeg", resized), nil
}
