// Package stick turns raw analog stick samples into conditioned vectors and
// discrete direction indices.
package stick

import (
	"fmt"
	"math"

	"github.com/Versifine/pietype/internal/vmath"
)

const twoPi = float32(2 * math.Pi)

// Condition clamps raw to the unit disk with a quadratic response curve:
// the result keeps raw's direction and has magnitude min(|raw|², 1).
func Condition(raw vmath.Vector2) vmath.Vector2 {
	magSquared := raw.MagnitudeSquared()
	if magSquared >= 1 {
		magSquared = 1
	}
	conditioned := raw.Normalized()
	conditioned.Scale(magSquared)
	return conditioned
}

// Quantize maps the direction of v onto one of n equal sectors, index 0 being
// centred on up and indices advancing clockwise. Ties round towards the next
// sector clockwise.
//
// Quantize panics when n is not positive or the computed index leaves [0, n);
// both indicate a programming error rather than bad input.
func Quantize(v vmath.Vector2, n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("stick: quantize with %d sectors", n))
	}
	turn := v.Angle() / twoPi
	// The conversion keeps the multiply from being fused with the add.
	index := int(float32(turn*float32(n))+0.5) % n
	if index < 0 || index >= n {
		panic(fmt.Sprintf("stick: quantized index %d outside [0,%d)", index, n))
	}
	return index
}
