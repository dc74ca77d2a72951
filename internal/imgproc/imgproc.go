// Package imgproc produces the two output encodings of an extracted image:
// a size-bounded JPEG for download and a small data-URI thumbnail for preview.
package imgproc

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Compression defaults. The quality ladder runs 80, 70, ..., 10, so a single
// source image is re-encoded at most 8 times.
const (
	DefaultSizeLimit    = 50 * 1024
	DefaultStartQuality = 80
	DefaultQualityStep  = 10
	DefaultMinQuality   = 10
	DefaultThumbSize    = 80
	DefaultThumbQuality = 60
)

// ErrSizeExceeded reports that an image could not be compressed below the
// size ceiling even at the minimum JPEG quality. Callers must treat this as
// recoverable for the one image, not fatal to the request.
var ErrSizeExceeded = errors.New("image exceeds size limit at minimum quality")

// Compressor re-encodes images to JPEG within a byte budget and renders
// preview thumbnails. It is stateless and safe for concurrent use.
type Compressor struct {
	SizeLimit    int // byte ceiling for Compress output
	StartQuality int
	QualityStep  int
	MinQuality   int
	ThumbSize    int // thumbnail bounding box, pixels
	ThumbQuality int
}

// NewCompressor creates a Compressor with the default settings.
func NewCompressor() *Compressor {
	return &Compressor{
		SizeLimit:    DefaultSizeLimit,
		StartQuality: DefaultStartQuality,
		QualityStep:  DefaultQualityStep,
		MinQuality:   DefaultMinQuality,
		ThumbSize:    DefaultThumbSize,
		ThumbQuality: DefaultThumbQuality,
	}
}

// Compress decodes data and re-encodes it as JPEG, stepping the quality down
// from StartQuality until the output fits SizeLimit. The source is decoded
// once; only the encode repeats. Returns ErrSizeExceeded (wrapped) when even
// the MinQuality output is over the limit, and a plain decode/encode error
// for malformed or unsupported source data.
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	quality := c.StartQuality
	out, err := encodeJPEG(img, quality)
	if err != nil {
		return nil, err
	}
	for len(out) > c.SizeLimit && quality > c.MinQuality {
		quality -= c.QualityStep
		out, err = encodeJPEG(img, quality)
		if err != nil {
			return nil, err
		}
	}

	if len(out) > c.SizeLimit {
		return nil, fmt.Errorf("%d bytes at quality %d: %w", len(out), quality, ErrSizeExceeded)
	}
	return out, nil
}

// Thumbnail renders a JPEG preview that fits inside a ThumbSize square,
// preserving aspect ratio and never upscaling, and returns it wrapped as a
// "data:image/jpeg;base64," URI. Single attempt, no size ceiling.
func (c *Compressor) Thumbnail(data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	thumb := imaging.Fit(img, c.ThumbSize, c.ThumbSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(c.ThumbQuality)); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
