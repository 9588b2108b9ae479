// Package imaging turns uploaded photos into the inline data URLs stored on bus and driver records.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"github.com/disintegration/imaging"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/apperror"
)

const (
	DefaultMaxWidth  = 1024
	DefaultMaxHeight = 768
	// MaxUploadBytes caps what is read from an upload before decoding.
	MaxUploadBytes = 8 << 20
)

var (
	ErrInvalidImage  = apperror.New(http.StatusBadRequest, apperror.KindValidation, "file is not a supported image")
	ErrImageTooLarge = apperror.New(http.StatusRequestEntityTooLarge, apperror.KindValidation, "image exceeds upload limit")
)

// Processor resizes images into a bounding box and encodes them as JPEG.
type Processor struct {
	maxWidth  int
	maxHeight int
	quality   int
}

// NewProcessor creates a Processor with the default bounding box.
func NewProcessor() *Processor {
	return &Processor{
		maxWidth:  DefaultMaxWidth,
		maxHeight: DefaultMaxHeight,
		quality:   80,
	}
}

// NewProcessorWithBounds allows a custom bounding box.
func NewProcessorWithBounds(maxWidth, maxHeight int) *Processor {
	p := NewProcessor()
	p.maxWidth = maxWidth
	p.maxHeight = maxHeight
	return p
}

// Fit decodes content, shrinks it to fit the bounding box (never enlarging) and re-encodes as JPEG.
func (p *Processor) Fit(content io.Reader) ([]byte, error) {
	limited := io.LimitReader(content, MaxUploadBytes+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(raw) > MaxUploadBytes {
		return nil, ErrImageTooLarge
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	b := img.Bounds()
	if b.Dx() > p.maxWidth || b.Dy() > p.maxHeight {
		img = imaging.Fit(img, p.maxWidth, p.maxHeight, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL runs Fit and returns the result as a data:image/jpeg;base64 URL.
func (p *Processor) DataURL(content io.Reader) (string, error) {
	jpg, err := p.Fit(content)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpg), nil
}
