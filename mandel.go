package mandel

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"
)

var (
	ErrParse      = errors.New("mandel: parse error")
	ErrBounds     = errors.New("mandel: invalid image bounds")
	ErrViewport   = errors.New("mandel: invalid viewport")
	ErrLimit      = errors.New("mandel: iteration limit out of range")
	ErrBufferSize = errors.New("mandel: pixel buffer size mismatch")
)

// DefaultLimit is the iteration limit used when none is given.
// Escape counts below it map directly onto one byte of intensity.
const DefaultLimit uint = 255

// MaxLimit is the largest limit whose escape counts still fit 255-n.
const MaxLimit uint = 255

// Viewport is a rectangle of the complex plane given by two opposite corners.
// UpperLeft carries the smaller real part and the larger imaginary part.
type Viewport struct {
	UpperLeft  complex128
	LowerRight complex128
}

// Validate reports whether v satisfies the corner ordering invariant.
func (v Viewport) Validate() error {
	for _, c := range []complex128{v.UpperLeft, v.LowerRight} {
		if cmplx.IsNaN(c) || cmplx.IsInf(c) {
			return fmt.Errorf("%w: non-finite corner %v", ErrViewport, c)
		}
	}
	if real(v.UpperLeft) > real(v.LowerRight) {
		return fmt.Errorf("%w: upper-left real %g > lower-right real %g",
			ErrViewport, real(v.UpperLeft), real(v.LowerRight))
	}
	if imag(v.UpperLeft) < imag(v.LowerRight) {
		return fmt.Errorf("%w: upper-left imaginary %g < lower-right imaginary %g",
			ErrViewport, imag(v.UpperLeft), imag(v.LowerRight))
	}
	return nil
}

// Bounds is the pixel-grid size of a rendered image.
type Bounds struct {
	Width, Height int
}

// Pixels is the number of bytes a pixel buffer for b holds.
func (b Bounds) Pixels() int {
	return b.Width * b.Height
}

func (b Bounds) Validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBounds, b.Width, b.Height)
	}
	if b.Width > math.MaxInt/b.Height {
		return fmt.Errorf("%w: %dx%d overflows", ErrBounds, b.Width, b.Height)
	}
	return nil
}

func (b Bounds) String() string {
	return FormatSize(b)
}

// Job is a single render request.
type Job struct {
	Bounds   Bounds
	Viewport Viewport
	Limit    uint
}

func (j Job) Validate() error {
	if err := j.Bounds.Validate(); err != nil {
		return err
	}
	if err := j.Viewport.Validate(); err != nil {
		return err
	}
	return validateLimit(j.Limit)
}

func validateLimit(limit uint) error {
	if limit == 0 || limit > MaxLimit {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrLimit, limit, MaxLimit)
	}
	return nil
}

// region builds a viewport from axis extents.
func region(xmin, xmax, ymin, ymax float64) Viewport {
	return Viewport{
		UpperLeft:  complex(xmin, ymax),
		LowerRight: complex(xmax, ymin),
	}
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Full Set – the whole set, the usual starting view
	FullSet = region(-2.5, 1.0, -1.25, 1.25)

	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = region(-0.8, -0.7, 0.05, 0.15)

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = region(-1.85, -1.75, -0.10, -0.02)

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = region(-0.7435, -0.7420, 0.1310, 0.1325)

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = region(-0.7480, -0.7450, 0.0950, 0.0980)

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = region(-0.7400, -0.7350, 0.1800, 0.1850)

	// Minibrot in a Mini-Spiral – self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = region(-1.7390, -1.7375, -0.0235, -0.0220)
)

// Landmarks maps preset names to their viewports.
var Landmarks = map[string]Viewport{
	"full-set":                FullSet,
	"seahorse-valley":         SeahorseValley,
	"elephant-valley":         ElephantValley,
	"spiral-minibrot":         SpiralMinibrot,
	"triple-spiral":           TripleSpiral,
	"valley-of-the-dragon":    ValleyOfTheDragon,
	"minibrot-in-mini-spiral": MinibrotInMiniSpiral,
}

// Landmark looks up a preset viewport by name.
func Landmark(name string) (Viewport, bool) {
	v, ok := Landmarks[name]
	return v, ok
}

// LandmarkNames returns the preset names in sorted order.
func LandmarkNames() []string {
	names := make([]string, 0, len(Landmarks))
	for n := range Landmarks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
