package render

import "testing"

func TestHistoryNeverExceedsBound(t *testing.T) {
	h := NewHistory(4)
	for i := range 10 {
		h.Push([]uint8{uint8(i)})
		if h.Len() > 4 {
			t.Fatalf("history grew to %d rows", h.Len())
		}
	}
	rows := h.Rows()
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	for i, r := range rows {
		if want := uint8(6 + i); r[0] != want {
			t.Fatalf("row %d: expected %d, got %d (oldest first)", i, want, r[0])
		}
	}
	if h.Newest(0)[0] != 9 {
		t.Fatalf("expected newest row 9, got %d", h.Newest(0)[0])
	}
}

func TestHistoryCopiesRows(t *testing.T) {
	h := NewHistory(2)
	row := []uint8{1, 2, 3}
	h.Push(row)
	row[0] = 99
	if h.Newest(0)[0] != 1 {
		t.Fatal("expected history to keep its own copy of a pushed row")
	}
}

func TestHistoryResizeKeepsNewest(t *testing.T) {
	h := NewHistory(6)
	for i := range 5 {
		h.Push([]uint8{uint8(i)})
	}
	h.Resize(3)
	if h.Len() != 3 || h.Cap() != 3 {
		t.Fatalf("expected 3/3 rows after shrinking, got %d/%d", h.Len(), h.Cap())
	}
	if got := h.Rows(); got[0][0] != 2 || got[2][0] != 4 {
		t.Fatalf("expected rows 2..4, got %v", got)
	}
	h.Resize(5)
	h.Push([]uint8{5})
	h.Push([]uint8{6})
	h.Push([]uint8{7})
	got := h.Rows()
	if len(got) != 5 || got[0][0] != 3 || got[4][0] != 7 {
		t.Fatalf("expected rows 3..7 after growing, got %v", got)
	}
}

func TestHistoryZeroBound(t *testing.T) {
	h := NewHistory(0)
	h.Push([]uint8{1})
	if h.Len() != 0 {
		t.Fatalf("expected empty history, got %d rows", h.Len())
	}
}
