package mandel

// escapeRadiusSq is the squared escape radius (|z| > 2).
const escapeRadiusSq = 4.0

// EscapeTime iterates z = z*z + c from z = 0 and reports the iteration index
// at which |z| first exceeds 2. escaped is false if that does not happen
// within limit iterations.
func EscapeTime(c complex128, limit uint) (n uint, escaped bool) {
	cr, ci := real(c), imag(c)
	var zr, zi float64

	for i := range limit {
		// Explicit conversions round every product, so no fused multiply-add
		// changes results between architectures.
		zr2, zi2 := float64(zr*zr), float64(zi*zi)
		zi = float64(2*zr*zi) + ci
		zr = zr2 - zi2 + cr
		if float64(zr*zr)+float64(zi*zi) > escapeRadiusSq {
			return i, true
		}
	}
	return 0, false
}

// Intensity turns an escape result into a grayscale byte.
// Points that never escape are black, fast escapes are bright.
func Intensity(n uint, escaped bool) uint8 {
	if !escaped {
		return 0
	}
	if n >= 255 {
		return 0
	}
	return uint8(255 - n)
}
