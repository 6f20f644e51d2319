package mandel

import (
	"context"
	"image"
)

// Renderer turns a job into a grayscale image.
// LocalRenderer renders in-process; wsrender.Client asks a render service.
type Renderer interface {
	Render(ctx context.Context, job Job) (*image.Gray, error)
}

// LocalRenderer renders jobs on this machine's CPUs.
// Workers <= 0 uses GOMAXPROCS; 1 renders sequentially.
type LocalRenderer struct {
	Workers int
}

func (lr LocalRenderer) Render(ctx context.Context, job Job) (*image.Gray, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	// image.Gray with a zero origin has Stride == Width, the flat
	// row-major layout Render writes.
	img := image.NewGray(image.Rect(0, 0, job.Bounds.Width, job.Bounds.Height))
	if err := RenderParallel(ctx, img.Pix, job.Bounds, job.Viewport, job.Limit, lr.Workers); err != nil {
		return nil, err
	}
	return img, nil
}

var _ Renderer = LocalRenderer{}
