package render

// BrailleBlank is the empty braille pattern.
const BrailleBlank = rune(0x2800)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// BrailleGlyph returns the glyph for one cell given the topmost lit dot
// row (0-3) of its left and right dot columns, or -1 for an unlit column.
// With fill set every dot below the topmost one is lit too.
func BrailleGlyph(left, right int, fill bool) rune {
	var pattern uint
	for dx, top := range [2]int{left, right} {
		if top < 0 || top > 3 {
			continue
		}
		if !fill {
			pattern |= 1 << brailleBits[dx][top]
			continue
		}
		for dy := top; dy < 4; dy++ {
			pattern |= 1 << brailleBits[dx][dy]
		}
	}
	return BrailleBlank + rune(pattern)
}

// PackBraille lays out one level per dot column into a grid of
// len(levels)/2 columns and rows cells. A level is the dot row, counted
// from the top of the grid, of the column's trace; negative levels are
// unlit. Cells with no lit dots keep a plain space.
func PackBraille(levels []int, rows int, fill bool) CellGrid {
	cols := len(levels) / 2
	g := NewGrid(cols, rows)
	for col := range cols {
		left, right := levels[2*col], levels[2*col+1]
		for row := range rows {
			glyph := BrailleGlyph(cellDot(left, row, fill), cellDot(right, row, fill), fill)
			if glyph != BrailleBlank {
				g.Set(col, row, Cell{Glyph: glyph})
			}
		}
	}
	return g
}

// cellDot maps a grid level to the topmost lit dot within cell row,
// or -1 when the cell has none of the column's dots.
func cellDot(level, row int, fill bool) int {
	if level < 0 {
		return -1
	}
	top := row * 4
	switch {
	case level < top:
		if fill {
			return 0
		}
		return -1
	case level < top+4:
		return level - top
	default:
		return -1
	}
}
