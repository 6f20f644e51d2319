package mandel

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// PixelToPoint maps pixel (x, y) of a width×height grid onto the viewport.
// Row 0 is the top edge, imag(UpperLeft); row height is imag(LowerRight).
// Coordinates outside the grid extrapolate linearly.
func (v Viewport) PixelToPoint(x, y, width, height float64) complex128 {
	widthSpan := real(v.LowerRight) - real(v.UpperLeft)
	heightSpan := imag(v.UpperLeft) - imag(v.LowerRight)
	return complex(
		float64(x/width*widthSpan)+real(v.UpperLeft),
		imag(v.UpperLeft)-float64(y/height*heightSpan),
	)
}

// Render fills pix with one intensity byte per pixel, row-major.
// pix must hold exactly b.Pixels() bytes.
func Render(pix []byte, b Bounds, v Viewport, limit uint) error {
	if err := checkBuffer(pix, b, limit); err != nil {
		return err
	}
	renderRows(pix, b, v, limit, 0, b.Height)
	return nil
}

// RenderParallel renders the same image as Render, splitting rows into bands
// rendered by up to workers goroutines. workers <= 0 means GOMAXPROCS.
func RenderParallel(ctx context.Context, pix []byte, b Bounds, v Viewport, limit uint, workers int) error {
	if err := checkBuffer(pix, b, limit); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	if workers == 1 {
		renderRows(pix, b, v, limit, 0, b.Height)
		Logger().Debug("render finished", "bounds", b, "workers", 1, "elapsed", time.Since(start))
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, band := range SplitRows(b.Height, bandHeight(b.Height, workers)) {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			renderRows(pix, b, v, limit, band.Y0, band.Y1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	Logger().Debug("render finished", "bounds", b, "workers", workers, "elapsed", time.Since(start))
	return nil
}

func checkBuffer(pix []byte, b Bounds, limit uint) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := validateLimit(limit); err != nil {
		return err
	}
	if len(pix) != b.Pixels() {
		return fmt.Errorf("%w: have %d bytes, want %d for %s", ErrBufferSize, len(pix), b.Pixels(), b)
	}
	return nil
}

// renderRows renders rows [y0, y1) into their slice of pix.
func renderRows(pix []byte, b Bounds, v Viewport, limit uint, y0, y1 int) {
	w, h := float64(b.Width), float64(b.Height)
	for y := y0; y < y1; y++ {
		row := pix[y*b.Width : (y+1)*b.Width]
		for x := range row {
			c := v.PixelToPoint(float64(x), float64(y), w, h)
			row[x] = Intensity(EscapeTime(c, limit))
		}
	}
}

// Band is a half-open range of rows [Y0, Y1).
type Band struct {
	Y0, Y1 int
}

// SplitRows splits height rows into bands of bandH rows.
// The last band is shorter if height is not divisible.
func SplitRows(height, bandH int) []Band {
	if bandH <= 0 {
		panic("band height must be positive")
	}

	var bands []Band
	for y := 0; y < height; y += bandH {
		bands = append(bands, Band{Y0: y, Y1: min(y+bandH, height)})
	}
	return bands
}

// bandHeight aims for a few bands per worker so uneven rows balance out.
func bandHeight(height, workers int) int {
	const bandsPerWorker = 4
	n := height / (workers * bandsPerWorker)
	return max(n, 1)
}
