package types

import "github.com/flywave/go3d/float64/vec4"

// Menu describes the on-screen menu of a container. Colors are linear RGBA.
type Menu struct {
	Name      string
	Alignment Alignment
	Primary   vec4.T
	Secondary vec4.T
	Text      vec4.T
}

// Default menu colors.
var (
	DefaultPrimaryColor   = vec4.T{0.038, 0.479, 0.342, 1}
	DefaultSecondaryColor = vec4.T{0.325, 0.501, 0.379, 1}
	DefaultTextColor      = vec4.T{0.617, 0.0082, 0.159, 1}
)

// DefaultMenu returns a centered menu with the default palette.
func DefaultMenu(name string) *Menu {
	return &Menu{
		Name:      name,
		Alignment: AlignCenter,
		Primary:   DefaultPrimaryColor,
		Secondary: DefaultSecondaryColor,
		Text:      DefaultTextColor,
	}
}
