package types

import (
	"fmt"

	"github.com/flywave/go3d/float64/vec4"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// LinearToSRGB8 converts one linear channel to an 8-bit sRGB value,
// clamping to [0, 255].
func LinearToSRGB8(c float64) uint8 {
	r, _, _ := colorful.LinearRgb(c, c, c).Clamped().RGB255()
	return r
}

// HexFromLinear encodes the RGB channels of a linear color as #rrggbb.
// Alpha is not encoded.
func HexFromLinear(c vec4.T) string {
	return colorful.LinearRgb(c[0], c[1], c[2]).Clamped().Hex()
}

// LinearFromHex decodes #rrggbb (or #rgb) into a linear color with alpha 1.
func LinearFromHex(s string) (vec4.T, error) {
	col, err := colorful.Hex(s)
	if err != nil {
		return vec4.T{}, fmt.Errorf("decoding color %q: %w", s, err)
	}
	r, g, b := col.LinearRgb()
	return vec4.T{r, g, b, 1}, nil
}
