package render

import "testing"

func TestBrailleGlyph(t *testing.T) {
	cases := []struct {
		left, right int
		want        rune
	}{
		{0, 0, '⣿'},
		{1, 2, '⣦'},
		{-1, 3, '⢀'},
		{2, -1, '⡄'},
		{-1, -1, '⠀'},
	}
	for _, tc := range cases {
		if got := BrailleGlyph(tc.left, tc.right, true); got != tc.want {
			t.Fatalf("BrailleGlyph(%d, %d): expected %q, got %q", tc.left, tc.right, tc.want, got)
		}
	}
	if got := BrailleGlyph(1, 3, false); got != '⢂' {
		t.Fatalf("expected single dots for an unfilled trace, got %q", got)
	}
}

// levelsFromBottom converts dot heights measured from the bottom of a
// rows-high grid to PackBraille levels.
func levelsFromBottom(rows int, heights ...int) []int {
	out := make([]int, len(heights))
	for i, h := range heights {
		out[i] = rows*4 - 1 - h
	}
	return out
}

func TestPackBrailleFilledColumns(t *testing.T) {
	const rows = 6
	cases := []struct {
		heights []int
		want    map[int]rune // cell row counted from the bottom
	}{
		{[]int{4, 6}, map[int]rune{3: ' ', 2: '⣰', 1: '⣿'}},
		{[]int{4, 8}, map[int]rune{4: ' ', 3: '⢀', 2: '⣸', 1: '⣿'}},
		{[]int{13, 2}, map[int]rune{5: ' ', 4: '⡄', 3: '⡇', 2: '⡇', 1: '⣷'}},
	}
	for _, tc := range cases {
		g := PackBraille(levelsFromBottom(rows, tc.heights...), rows, true)
		for fromBottom, want := range tc.want {
			if got := g.At(0, rows-fromBottom).Glyph; got != want {
				t.Fatalf("heights %v, row %d from bottom: expected %q, got %q", tc.heights, fromBottom, want, got)
			}
		}
	}
}

func TestPackBrailleLineOnlyLightsTrace(t *testing.T) {
	g := PackBraille([]int{5, -1, -1, -1}, 3, false)
	if g.Width != 2 || g.Height != 3 {
		t.Fatalf("expected 2x3 grid, got %dx%d", g.Width, g.Height)
	}
	for y := range 3 {
		for x := range 2 {
			c := g.At(x, y)
			if x == 0 && y == 1 {
				if c.Glyph != '⠂' {
					t.Fatalf("expected dot in row 1 of the trace cell, got %q", c.Glyph)
				}
				continue
			}
			if c.Glyph != ' ' {
				t.Fatalf("expected (%d,%d) blank, got %q", x, y, c.Glyph)
			}
		}
	}
}
