package render

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
)

// Profile is the colour capability of the output terminal.
type Profile uint8

const (
	ProfileNone Profile = iota
	ProfileANSI16
	ProfileANSI256
	ProfileTrueColor
)

func (p Profile) String() string {
	switch p {
	case ProfileANSI16:
		return "ansi16"
	case ProfileANSI256:
		return "ansi256"
	case ProfileTrueColor:
		return "truecolor"
	default:
		return "none"
	}
}

var (
	detectOnce sync.Once
	detected   Profile
	seqCache   sync.Map
)

// DetectProfile inspects NO_COLOR, COLORTERM and TERM once per process.
func DetectProfile() Profile {
	detectOnce.Do(func() {
		detected = profileFromEnv(os.LookupEnv)
	})
	return detected
}

func profileFromEnv(lookup func(string) (string, bool)) Profile {
	if _, ok := lookup("NO_COLOR"); ok {
		return ProfileNone
	}
	term, _ := lookup("TERM")
	ct, _ := lookup("COLORTERM")
	term = strings.ToLower(term)
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "truecolor"), strings.Contains(ct, "24bit"):
		return ProfileTrueColor
	case strings.Contains(term, "256color"):
		return ProfileANSI256
	case term == "dumb":
		return ProfileNone
	case term == "" && runtime.GOOS == "windows":
		return ProfileANSI16
	case term == "":
		return ProfileNone
	default:
		return ProfileANSI16
	}
}

const ansiReset = "\x1b[0m"

// colorSequence returns the SGR escape selecting c as foreground, or as
// background when bg is set. Results are cached per profile and colour.
func colorSequence(p Profile, c Color, bg bool) string {
	key := uint32(p)<<25 | c.key()
	if bg {
		key |= 1 << 30
	}
	if seq, ok := seqCache.Load(key); ok {
		return seq.(string)
	}

	base := 38
	if bg {
		base = 48
	}
	var seq string
	switch p {
	case ProfileTrueColor:
		seq = fmt.Sprintf("\x1b[%d;2;%d;%d;%dm", base, c.R, c.G, c.B)
	case ProfileANSI256:
		seq = fmt.Sprintf("\x1b[%d;5;%dm", base, ansi256Index(c))
	case ProfileANSI16:
		idx := ansi16Index(c)
		code := 30 + idx
		if idx >= 8 {
			code = 90 + idx - 8
		}
		if bg {
			code += 10
		}
		seq = fmt.Sprintf("\x1b[%dm", code)
	}
	seqCache.Store(key, seq)
	return seq
}

func ansi256Index(c Color) int {
	r := int(c.R) * 5 / 255
	g := int(c.G) * 5 / 255
	b := int(c.B) * 5 / 255
	return 16 + 36*r + 6*g + b
}

func ansi16Index(c Color) int {
	best := 0
	bestDist := 1<<31 - 1
	for i, p := range ansi16Palette {
		dr := int(c.R) - int(p[0])
		dg := int(c.G) - int(p[1])
		db := int(c.B) - int(p[2])
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

var ansi16Palette = [16][3]uint8{
	{0, 0, 0},       // black
	{205, 49, 49},   // red
	{13, 188, 121},  // green
	{229, 229, 16},  // yellow
	{36, 114, 200},  // blue
	{188, 63, 188},  // magenta
	{17, 168, 205},  // cyan
	{229, 229, 229}, // white
	{102, 102, 102}, // bright black
	{241, 76, 76},   // bright red
	{35, 209, 139},  // bright green
	{245, 245, 67},  // bright yellow
	{59, 142, 234},  // bright blue
	{214, 112, 214}, // bright magenta
	{41, 184, 219},  // bright cyan
	{255, 255, 255}, // bright white
}

// ansiState tracks the colours last emitted so runs of equal cells share
// one escape.
type ansiState struct {
	profile Profile
	fg, bg  uint32
	dirty   bool
}

func newANSIState(p Profile) ansiState {
	unset := Color{}.key()
	return ansiState{profile: p, fg: unset, bg: unset}
}

func (s *ansiState) set(sb *strings.Builder, fg, bg Color) {
	if s.profile == ProfileNone {
		return
	}
	fk, bk := fg.key(), bg.key()
	if fk == s.fg && bk == s.bg {
		return
	}
	// Dropping back to a default colour needs a full reset.
	if (!fg.Set && s.fg != fk) || (!bg.Set && s.bg != bk) {
		sb.WriteString(ansiReset)
		s.fg, s.bg = Color{}.key(), Color{}.key()
		s.dirty = false
	}
	if fg.Set && fk != s.fg {
		sb.WriteString(colorSequence(s.profile, fg, false))
		s.fg = fk
		s.dirty = true
	}
	if bg.Set && bk != s.bg {
		sb.WriteString(colorSequence(s.profile, bg, true))
		s.bg = bk
		s.dirty = true
	}
}

func (s *ansiState) reset(sb *strings.Builder) {
	if !s.dirty {
		return
	}
	sb.WriteString(ansiReset)
	s.fg, s.bg = Color{}.key(), Color{}.key()
	s.dirty = false
}

// Encode renders a grid as text with SGR colour escapes for the profile,
// one line per row. Colours are reset at the end of every line.
func Encode(g CellGrid, p Profile) string {
	var sb strings.Builder
	sb.Grow(g.Width*g.Height*4 + g.Height)
	st := newANSIState(p)
	for y := range g.Height {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for _, c := range g.Row(y) {
			st.set(&sb, c.FG, c.BG)
			sb.WriteRune(c.Glyph)
		}
		st.reset(&sb)
	}
	return sb.String()
}
