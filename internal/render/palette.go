package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// MaxPaletteSteps is the largest ramp a palette index can address.
const MaxPaletteSteps = 256

// Theme names a colour ramp from low to high power.
type Theme string

const (
	ThemeClassic   Theme = "classic"
	ThemeThermal   Theme = "thermal"
	ThemeGrayscale Theme = "grayscale"
	ThemeJungle    Theme = "jungle"
	ThemeMarine    Theme = "marine"
	ThemeHeat      Theme = "heat"
	ThemeHue       Theme = "hue"
)

var themeStops = map[Theme][]string{
	ThemeClassic:   {"#000000", "#0000c8", "#00c8ff", "#00e040", "#ffff00", "#ff2000", "#ffffff"},
	ThemeThermal:   {"#000004", "#3b0f70", "#8c2981", "#de4968", "#fe9f6d", "#fcfdbf"},
	ThemeGrayscale: {"#000000", "#ffffff"},
	ThemeJungle:    {"#000000", "#0a3d0a", "#1f7a1f", "#7fd13b", "#eaff7b"},
	ThemeMarine:    {"#000814", "#001d3d", "#003566", "#0077b6", "#48cae4", "#caf0f8"},
	ThemeHeat:      {"#101946", "#00aeff", "#14ffa1", "#ffe65c", "#ff503c"},
}

// Themes lists the built-in palettes.
func Themes() []Theme {
	return []Theme{ThemeClassic, ThemeThermal, ThemeGrayscale, ThemeJungle, ThemeMarine, ThemeHeat, ThemeHue}
}

// ParseTheme resolves a palette name.
func ParseTheme(name string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(name)))
	if t == "" {
		return ThemeClassic, nil
	}
	for _, known := range Themes() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown palette %q", name)
}

// Palette is a fixed-size colour ramp, index 0 for the floor of the
// display range and Steps()-1 for the reference level.
type Palette struct {
	theme  Theme
	colors []Color
}

// NewPalette builds a ramp of steps colours for the theme.
func NewPalette(theme Theme, steps int) (*Palette, error) {
	if steps < 2 || steps > MaxPaletteSteps {
		return nil, fmt.Errorf("palette steps %d outside [2, %d]", steps, MaxPaletteSteps)
	}
	ramp, err := themeRamp(theme)
	if err != nil {
		return nil, err
	}
	p := &Palette{theme: theme, colors: make([]Color, steps)}
	for i := range steps {
		r, g, b := ramp(float64(i) / float64(steps-1)).Clamped().RGB255()
		p.colors[i] = RGB(r, g, b)
	}
	return p, nil
}

func themeRamp(theme Theme) (func(t float64) colorful.Color, error) {
	if theme == ThemeHue {
		// Blue through red like a heatmap, darkening towards the floor.
		return func(t float64) colorful.Color {
			return colorful.Hsv(236*(1-t), 1, 0.15+0.8*t)
		}, nil
	}
	hex, ok := themeStops[theme]
	if !ok {
		return nil, fmt.Errorf("unknown palette %q", theme)
	}
	stops := make([]colorful.Color, len(hex))
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("palette %s: %w", theme, err)
		}
		stops[i] = c
	}
	return func(t float64) colorful.Color {
		seg := t * float64(len(stops)-1)
		i := min(int(seg), len(stops)-2)
		return stops[i].BlendLab(stops[i+1], seg-float64(i))
	}, nil
}

// Theme returns the palette's theme.
func (p *Palette) Theme() Theme { return p.theme }

// Steps returns the number of colours in the ramp.
func (p *Palette) Steps() int { return len(p.colors) }

// Quantize maps a dB value to a palette index, with floor mapping to 0 and
// floor+dynamicRange to the last index.
func (p *Palette) Quantize(v, floor, dynamicRange float64) uint8 {
	if dynamicRange <= 0 || math.IsNaN(v) {
		return 0
	}
	steps := len(p.colors)
	idx := int(math.Floor((v - floor) / dynamicRange * float64(steps)))
	return uint8(min(max(idx, 0), steps-1))
}

// Color returns the colour of a palette index.
func (p *Palette) Color(idx uint8) Color {
	return p.colors[min(int(idx), len(p.colors)-1)]
}

// At returns the colour for a position t in [0,1] along the ramp.
func (p *Palette) At(t float64) Color {
	return p.Color(p.Quantize(t, 0, 1))
}
