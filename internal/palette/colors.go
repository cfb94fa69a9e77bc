package palette

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// ParseRGBA converts a hex color string ("#D5EBF7" or "D5EBF7") to an opaque RGBA.
func ParseRGBA(hex string) (color.RGBA, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color length: %s", hex)
	}

	r, err := strconv.ParseUint(hex[0:2], 16, 8)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid red component in %s: %w", hex, err)
	}
	g, err := strconv.ParseUint(hex[2:4], 16, 8)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid green component in %s: %w", hex, err)
	}
	b, err := strconv.ParseUint(hex[4:6], 16, 8)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid blue component in %s: %w", hex, err)
	}

	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}, nil
}

// ParseHexColor converts a hex color string to a tcell.Color.
func ParseHexColor(hex string) (tcell.Color, error) {
	c, err := ParseRGBA(hex)
	if err != nil {
		return tcell.ColorDefault, err
	}
	return TerminalColor(c), nil
}

// TerminalColor converts an RGBA to the nearest tcell true colour.
func TerminalColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
