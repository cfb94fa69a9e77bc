package palette

import (
	"fmt"
	"image/color"
	"sort"
)

const paletteFile = "palette.json"

// BandData is the on-disk form of a height band.
type BandData struct {
	Name      string  `json:"name"`
	MinHeight float64 `json:"minHeight"`
	Color     string  `json:"color"`
	Glyph     string  `json:"glyph"`
}

// Data is the on-disk form of the palette.
type Data struct {
	Background string     `json:"background"`
	Path       string     `json:"path"`
	Follower   string     `json:"follower"`
	Bands      []BandData `json:"bands"`
}

// Band is a resolved height band.
type Band struct {
	Name      string
	MinHeight float64
	Color     color.RGBA
	Glyph     rune
}

// Palette maps terrain heights to colours and glyphs.
type Palette struct {
	Background color.RGBA
	Path       color.RGBA
	Follower   color.RGBA
	// Bands are ordered from highest threshold to lowest.
	Bands []Band
}

// Default loads the embedded palette.
func Default() (*Palette, error) {
	data, err := Load[Data](paletteFile)
	if err != nil {
		return nil, err
	}
	return Build(data)
}

// Build resolves the colours in data. Bands may be listed in any order.
func Build(data Data) (*Palette, error) {
	if len(data.Bands) == 0 {
		return nil, fmt.Errorf("palette has no bands")
	}

	p := &Palette{}
	var err error
	if p.Background, err = ParseRGBA(data.Background); err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	if p.Path, err = ParseRGBA(data.Path); err != nil {
		return nil, fmt.Errorf("path: %w", err)
	}
	if p.Follower, err = ParseRGBA(data.Follower); err != nil {
		return nil, fmt.Errorf("follower: %w", err)
	}

	for _, bd := range data.Bands {
		c, err := ParseRGBA(bd.Color)
		if err != nil {
			return nil, fmt.Errorf("band %s: %w", bd.Name, err)
		}
		glyph := '.'
		if r := []rune(bd.Glyph); len(r) > 0 {
			glyph = r[0]
		}
		p.Bands = append(p.Bands, Band{Name: bd.Name, MinHeight: bd.MinHeight, Color: c, Glyph: glyph})
	}
	sort.SliceStable(p.Bands, func(i, j int) bool {
		return p.Bands[i].MinHeight > p.Bands[j].MinHeight
	})
	return p, nil
}

// BandFor returns the band index for height. Thresholds are exclusive, so a
// height equal to a threshold falls into the band below; anything under the
// lowest threshold takes the lowest band.
func (p *Palette) BandFor(height float64) int {
	for i, b := range p.Bands {
		if height > b.MinHeight {
			return i
		}
	}
	return len(p.Bands) - 1
}

// At returns the band for height.
func (p *Palette) At(height float64) Band {
	return p.Bands[p.BandFor(height)]
}
