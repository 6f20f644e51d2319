// Package imgio encodes rendered grayscale buffers and writes them to disk.
package imgio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var (
	// ErrUnsupportedFormat is returned for output paths with an unknown extension.
	ErrUnsupportedFormat = errors.New("imgio: unsupported format")

	// ErrBufferSize is returned when a pixel buffer does not match its bounds.
	ErrBufferSize = errors.New("imgio: buffer size mismatch")
)

// Format is an output image encoding.
type Format int

const (
	PNG Format = iota
	BMP
	TIFF
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case BMP:
		return "bmp"
	case TIFF:
		return "tiff"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromPath picks the encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png":
		return PNG, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// NewGray wraps a row-major pixel buffer as an image without copying.
func NewGray(pix []byte, width, height int) (*image.Gray, error) {
	if width <= 0 || height <= 0 || len(pix) != width*height {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrBufferSize, len(pix), width, height)
	}
	return &image.Gray{
		Pix:    pix,
		Stride: width,
		Rect:   image.Rect(0, 0, width, height),
	}, nil
}

// Encode writes img to w in format f.
func Encode(w io.Writer, f Format, img image.Image) error {
	var err error
	switch f {
	case PNG:
		err = png.Encode(w, img)
	case BMP:
		err = bmp.Encode(w, img)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return fmt.Errorf("imgio: encode %s: %w", f, err)
	}
	return nil
}

// WriteFile encodes img in the format implied by path's extension.
// The image is written to a temporary file next to path and renamed into
// place only once fully encoded, so a failed write leaves no file at path.
func WriteFile(path string, img image.Image) (err error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("imgio: create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := Encode(bw, f, img); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("imgio: write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("imgio: chmod: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("imgio: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("imgio: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("imgio: rename into place: %w", err)
	}
	return nil
}
