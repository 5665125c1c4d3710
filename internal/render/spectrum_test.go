package render

import "testing"

func TestSpectrumDotLevels(t *testing.T) {
	s := SpectrumRenderer{Downsample: DownsamplePeak}
	levels := s.DotLevels([]float64{-60, 0, -30, -61}, -60, 60, 4, 2)
	want := []int{-1, 0, 4, -1}
	for i := range want {
		if levels[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, levels)
		}
	}
}

func TestSpectrumRenderLightsOnlyLoudColumns(t *testing.T) {
	values := make([]float64, 64)
	for i := range values {
		values[i] = -60
	}
	values[40] = 0
	p, _ := NewPalette(ThemeClassic, 16)
	s := SpectrumRenderer{Downsample: DownsamplePeak, Palette: p}
	g := s.Render(values, -60, 60, 16, 4)
	if g.Width != 16 || g.Height != 4 {
		t.Fatalf("expected 16x4 grid, got %dx%d", g.Width, g.Height)
	}
	// 64 bins over 32 dot columns: bin 40 is dot column 20, the left half of cell 10.
	for y := range g.Height {
		for x := range g.Width {
			c := g.At(x, y)
			if x == 10 && y == 0 {
				if c.Glyph != '⠁' {
					t.Fatalf("expected top-left dot at cell 10, got %q", c.Glyph)
				}
				if want := p.At(1 - 0.5/4); c.FG != want {
					t.Fatalf("expected top row coloured %v, got %v", want, c.FG)
				}
				continue
			}
			if c.Glyph != ' ' {
				t.Fatalf("expected (%d,%d) blank, got %q", x, y, c.Glyph)
			}
		}
	}
}

func TestSpectrumRenderFilled(t *testing.T) {
	s := SpectrumRenderer{Downsample: DownsamplePeak, Fill: true}
	g := s.Render([]float64{0, 0}, -60, 60, 1, 3)
	for y := range 3 {
		if got := g.At(0, y).Glyph; got != '⣿' {
			t.Fatalf("row %d: expected full cell, got %q", y, got)
		}
	}
}
