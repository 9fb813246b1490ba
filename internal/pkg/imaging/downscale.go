package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ContentType of every image produced by Downscale
const ContentType = "image/jpeg"

// Options bound the re-encoded image
type Options struct {
	MaxWidth int
	// Quality is the JPEG quality, 1 to 100
	Quality int
}

// Result is a re-encoded image
type Result struct {
	Data   []byte
	Width  int
	Height int
}

// Downscale decodes a JPEG, PNG or WebP image, shrinks it to at most
// MaxWidth pixels wide keeping the aspect ratio, and re-encodes it as JPEG.
// Images already narrower than MaxWidth keep their size but are still re-encoded.
func Downscale(r io.Reader, opts Options) (*Result, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("error decoding %s image: empty bounds", format)
	}

	if opts.MaxWidth > 0 && width > opts.MaxWidth {
		height = max(1, height*opts.MaxWidth/width)
		width = opts.MaxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	quality := opts.Quality
	if quality < 1 || quality > 100 {
		quality = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("error encoding jpeg: %w", err)
	}

	return &Result{Data: buf.Bytes(), Width: width, Height: height}, nil
}
