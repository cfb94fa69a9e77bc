package palette

import (
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestDefaultPalette(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if len(p.Bands) != 5 {
		t.Fatalf("expected 5 bands, got %d", len(p.Bands))
	}
	want := color.RGBA{R: 0x0b, G: 0x1c, B: 0x25, A: 0xff}
	if p.Background != want {
		t.Errorf("Background = %v, want %v", p.Background, want)
	}
	for i := 1; i < len(p.Bands); i++ {
		if p.Bands[i-1].MinHeight <= p.Bands[i].MinHeight {
			t.Errorf("bands not ordered by threshold at %d", i)
		}
	}
}

func TestBandFor(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	tests := []struct {
		height float64
		want   string
	}{
		{25, "peak"},
		{20.5, "peak"},
		{20, "ridge"},
		{16, "ridge"},
		{12, "slope"},
		{7, "hill"},
		{5, "valley"},
		{0.1, "valley"},
		{0, "valley"},
		{-3, "valley"},
	}
	for _, tt := range tests {
		if got := p.At(tt.height).Name; got != tt.want {
			t.Errorf("At(%v) = %s, want %s", tt.height, got, tt.want)
		}
	}
}

func TestBuildSortsBands(t *testing.T) {
	p, err := Build(Data{
		Background: "#000000",
		Path:       "#111111",
		Follower:   "#222222",
		Bands: []BandData{
			{Name: "low", MinHeight: 0, Color: "#010101", Glyph: "."},
			{Name: "high", MinHeight: 10, Color: "#020202", Glyph: "^"},
		},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if p.Bands[0].Name != "high" || p.Bands[0].Glyph != '^' {
		t.Errorf("first band = %+v, want high", p.Bands[0])
	}
}

func TestBuildRejectsBadColor(t *testing.T) {
	_, err := Build(Data{
		Background: "#000000",
		Path:       "#000000",
		Follower:   "#000000",
		Bands:      []BandData{{Name: "x", Color: "#GG0000"}},
	})
	if err == nil {
		t.Fatal("expected error for invalid band colour")
	}

	if _, err := Build(Data{}); err == nil {
		t.Fatal("expected error for empty palette")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    tcell.Color
		wantErr bool
	}{
		{"#31759D", tcell.NewRGBColor(0x31, 0x75, 0x9d), false},
		{"d5ebf7", tcell.NewRGBColor(0xd5, 0xeb, 0xf7), false},
		{"#FFF", tcell.ColorDefault, true},
		{"#ZZ0000", tcell.ColorDefault, true},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHexColor(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
