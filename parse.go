package mandel

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePair splits s at the first sep and parses both halves.
// ok is false if sep is missing or either half fails to parse.
func ParsePair[T any](s string, sep byte, parse func(string) (T, error)) (l, r T, ok bool) {
	left, right, found := strings.Cut(s, string(sep))
	if !found {
		return l, r, false
	}
	lv, lerr := parse(left)
	rv, rerr := parse(right)
	if lerr != nil || rerr != nil {
		return l, r, false
	}
	return lv, rv, true
}

func parseDim(s string) (int, error) {
	n, err := strconv.ParseUint(s, 10, strconv.IntSize-1)
	return int(n), err
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// ParseSize parses an image size such as "1000x750".
func ParseSize(s string) (Bounds, error) {
	w, h, ok := ParsePair(s, 'x', parseDim)
	if !ok {
		return Bounds{}, fmt.Errorf("%w: size %q, want <width>x<height>", ErrParse, s)
	}
	b := Bounds{Width: w, Height: h}
	if err := b.Validate(); err != nil {
		return Bounds{}, fmt.Errorf("%w: size %q: %w", ErrParse, s, err)
	}
	return b, nil
}

// ParseComplex parses a complex number such as "-1.20,0.35".
func ParseComplex(s string) (complex128, error) {
	re, im, ok := ParsePair(s, ',', parseFloat)
	if !ok {
		return 0, fmt.Errorf("%w: point %q, want <real>,<imag>", ErrParse, s)
	}
	return complex(re, im), nil
}

// ParseViewport parses the two corner strings of a viewport and validates it.
func ParseViewport(upperLeft, lowerRight string) (Viewport, error) {
	ul, err := ParseComplex(upperLeft)
	if err != nil {
		return Viewport{}, err
	}
	lr, err := ParseComplex(lowerRight)
	if err != nil {
		return Viewport{}, err
	}
	v := Viewport{UpperLeft: ul, LowerRight: lr}
	if err := v.Validate(); err != nil {
		return Viewport{}, err
	}
	return v, nil
}

func FormatSize(b Bounds) string {
	return strconv.Itoa(b.Width) + "x" + strconv.Itoa(b.Height)
}

// FormatComplex is the inverse of ParseComplex; the shortest exact
// representation is used so values survive a round trip unchanged.
func FormatComplex(c complex128) string {
	return strconv.FormatFloat(real(c), 'g', -1, 64) + "," + strconv.FormatFloat(imag(c), 'g', -1, 64)
}
