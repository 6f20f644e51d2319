package mandel

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
)

func TestPixelToPoint_Corners(t *testing.T) {
	v := Viewport{UpperLeft: complex(-2, 1), LowerRight: complex(1, -1)}

	tests := []struct {
		name string
		x, y float64
		want complex128
	}{
		{"top-left", 0, 0, complex(-2, 1)},
		{"bottom-right", 300, 200, complex(1, -1)},
		{"center", 150, 100, complex(-0.5, 0)},
		{"top-right", 300, 0, complex(1, 1)},
		{"bottom-left", 0, 200, complex(-2, -1)},
		{"extrapolated left", -150, 0, complex(-3.5, 1)},
		{"extrapolated below", 0, 400, complex(-2, -3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.PixelToPoint(tt.x, tt.y, 300, 200); got != tt.want {
				t.Errorf("PixelToPoint(%g, %g) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestPixelToPoint_NonDyadicCorners(t *testing.T) {
	v := Viewport{UpperLeft: complex(-1.20, 0.35), LowerRight: complex(-1.00, 0.20)}

	if got := v.PixelToPoint(0, 0, 100, 100); got != v.UpperLeft {
		t.Errorf("PixelToPoint(0, 0) = %v, want %v", got, v.UpperLeft)
	}

	got := v.PixelToPoint(100, 100, 100, 100)
	const eps = 1e-15
	if math.Abs(real(got)-real(v.LowerRight)) > eps || math.Abs(imag(got)-imag(v.LowerRight)) > eps {
		t.Errorf("PixelToPoint(100, 100) = %v, want %v", got, v.LowerRight)
	}
}

// Row 0 is the top of the image and must carry the viewport's largest
// imaginary part, with imaginary values falling row by row.
func TestPixelToPoint_VerticalOrientation(t *testing.T) {
	v := Viewport{UpperLeft: complex(-1, 0.5), LowerRight: complex(0, -2.5)}
	const h = 30

	prev := math.Inf(1)
	for y := range h {
		im := imag(v.PixelToPoint(0, float64(y), 10, h))
		if im >= prev {
			t.Fatalf("row %d: imag %g not below row above (%g)", y, im, prev)
		}
		prev = im
	}
	if top := imag(v.PixelToPoint(0, 0, 10, h)); top != 0.5 {
		t.Errorf("top row imag = %g, want 0.5", top)
	}
}

// The set is symmetric under conjugation, and the evaluator keeps that
// symmetry bit for bit. A viewport mirrored across the real axis therefore
// renders the vertically mirrored image, which is why orientation is checked
// on the mapper rather than on rendered pixels.
func TestEscapeTime_ConjugateSymmetry(t *testing.T) {
	v := Viewport{UpperLeft: complex(-2, 1), LowerRight: complex(1, -0.5)}
	const w, h = 16, 8
	for y := range h {
		for x := range w {
			c := v.PixelToPoint(float64(x), float64(y), w, h)
			n, esc := EscapeTime(c, DefaultLimit)
			cn, cesc := EscapeTime(complex(real(c), -imag(c)), DefaultLimit)
			if n != cn || esc != cesc {
				t.Fatalf("c=%v gives (%d, %v), conjugate gives (%d, %v)", c, n, esc, cn, cesc)
			}
		}
	}
}

func TestRender_Scenario(t *testing.T) {
	b, err := ParseSize("100x100")
	if err != nil {
		t.Fatal(err)
	}
	v, err := ParseViewport("-1.20,0.35", "-1.00,0.20")
	if err != nil {
		t.Fatal(err)
	}

	pix := make([]byte, b.Pixels())
	if err := Render(pix, b, v, DefaultLimit); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(pix) != 10000 {
		t.Fatalf("len(pix) = %d, want 10000", len(pix))
	}

	n, escaped := EscapeTime(v.UpperLeft, 255)
	if !escaped {
		n = 255
	}
	if want := uint8(255 - n); pix[0] != want {
		t.Errorf("pix[0] = %d, want %d", pix[0], want)
	}

	// spot check an interior pixel against the per-pixel rule
	x, y := 37, 81
	c := v.PixelToPoint(float64(x), float64(y), 100, 100)
	if want := Intensity(EscapeTime(c, 255)); pix[y*100+x] != want {
		t.Errorf("pix[%d,%d] = %d, want %d", x, y, pix[y*100+x], want)
	}
}

func TestRender_InteriorIsBlack(t *testing.T) {
	// Small square around the origin, well inside the main cardioid.
	v := Viewport{UpperLeft: complex(-0.1, 0.1), LowerRight: complex(0.1, -0.1)}
	b := Bounds{Width: 8, Height: 8}
	pix := make([]byte, b.Pixels())
	for i := range pix {
		pix[i] = 0xAA
	}
	if err := Render(pix, b, v, DefaultLimit); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pix, make([]byte, b.Pixels())) {
		t.Errorf("interior render not all black: %v", pix)
	}
}

func TestRender_Errors(t *testing.T) {
	v := FullSet
	tests := []struct {
		name  string
		pix   []byte
		b     Bounds
		limit uint
		want  error
	}{
		{"short buffer", make([]byte, 5), Bounds{2, 3}, 255, ErrBufferSize},
		{"long buffer", make([]byte, 7), Bounds{2, 3}, 255, ErrBufferSize},
		{"zero width", nil, Bounds{0, 3}, 255, ErrBounds},
		{"negative height", nil, Bounds{3, -1}, 255, ErrBounds},
		{"zero limit", make([]byte, 6), Bounds{2, 3}, 0, ErrLimit},
		{"limit too large", make([]byte, 6), Bounds{2, 3}, 256, ErrLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Render(tt.pix, tt.b, v, tt.limit); !errors.Is(err, tt.want) {
				t.Errorf("Render() error = %v, want %v", err, tt.want)
			}
			err := RenderParallel(context.Background(), tt.pix, tt.b, v, tt.limit, 4)
			if !errors.Is(err, tt.want) {
				t.Errorf("RenderParallel() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRenderParallel_MatchesSequential(t *testing.T) {
	b := Bounds{Width: 37, Height: 23}
	want := make([]byte, b.Pixels())
	if err := Render(want, b, FullSet, DefaultLimit); err != nil {
		t.Fatal(err)
	}

	for _, workers := range []int{0, 1, 2, 3, 7, 64} {
		got := make([]byte, b.Pixels())
		if err := RenderParallel(context.Background(), got, b, FullSet, DefaultLimit, workers); err != nil {
			t.Fatalf("workers=%d: RenderParallel() error = %v", workers, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("workers=%d: output differs from sequential render", workers)
		}
	}
}

func TestRenderParallel_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := Bounds{Width: 10, Height: 10}
	pix := make([]byte, b.Pixels())
	for _, workers := range []int{1, 4} {
		err := RenderParallel(ctx, pix, b, FullSet, DefaultLimit, workers)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("workers=%d: RenderParallel() error = %v, want context.Canceled", workers, err)
		}
	}
}

func TestSplitRows(t *testing.T) {
	tests := []struct {
		name          string
		height, bandH int
		want          []Band
	}{
		{"even", 8, 4, []Band{{0, 4}, {4, 8}}},
		{"remainder", 10, 4, []Band{{0, 4}, {4, 8}, {8, 10}}},
		{"single band", 3, 10, []Band{{0, 3}}},
		{"empty", 0, 4, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitRows(tt.height, tt.bandH)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitRows(%d, %d) = %v, want %v", tt.height, tt.bandH, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("band %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitRows_PanicsOnZeroBand(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("SplitRows(10, 0) did not panic")
		}
	}()
	SplitRows(10, 0)
}

func TestLocalRenderer(t *testing.T) {
	job := Job{Bounds: Bounds{Width: 20, Height: 12}, Viewport: SeahorseValley, Limit: DefaultLimit}

	img, err := LocalRenderer{Workers: 3}.Render(context.Background(), job)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if img.Rect.Dx() != 20 || img.Rect.Dy() != 12 || img.Stride != 20 {
		t.Fatalf("image rect %v stride %d, want 20x12 stride 20", img.Rect, img.Stride)
	}

	want := make([]byte, job.Bounds.Pixels())
	if err := Render(want, job.Bounds, job.Viewport, job.Limit); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(img.Pix, want) {
		t.Error("LocalRenderer output differs from Render")
	}

	bad := job
	bad.Viewport = Viewport{UpperLeft: 1, LowerRight: -1}
	if _, err := (LocalRenderer{}).Render(context.Background(), bad); !errors.Is(err, ErrViewport) {
		t.Errorf("Render(bad viewport) error = %v, want ErrViewport", err)
	}
}

func BenchmarkRender(b *testing.B) {
	bounds := Bounds{Width: 200, Height: 150}
	pix := make([]byte, bounds.Pixels())
	for b.Loop() {
		_ = Render(pix, bounds, SeahorseValley, DefaultLimit)
	}
}

func BenchmarkRenderParallel(b *testing.B) {
	bounds := Bounds{Width: 200, Height: 150}
	pix := make([]byte, bounds.Pixels())
	ctx := context.Background()
	for b.Loop() {
		_ = RenderParallel(ctx, pix, bounds, SeahorseValley, DefaultLimit, 0)
	}
}
