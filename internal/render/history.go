package render

// History is a ring buffer of quantized waterfall rows. Pushing a row is
// O(1): it overwrites the slot after the head instead of shifting.
type History struct {
	rows  [][]uint8
	head  int // slot of the newest row
	count int
}

// NewHistory returns a history holding at most capacity rows.
func NewHistory(capacity int) *History {
	h := &History{}
	h.Resize(capacity)
	return h
}

// Cap returns the bound on the number of rows.
func (h *History) Cap() int { return len(h.rows) }

// Len returns the number of rows held.
func (h *History) Len() int { return h.count }

// Push records row as the newest, evicting the oldest when full. The row
// is copied into the slot's existing storage.
func (h *History) Push(row []uint8) {
	if len(h.rows) == 0 {
		return
	}
	h.head = (h.head + 1) % len(h.rows)
	h.rows[h.head] = append(h.rows[h.head][:0], row...)
	if h.count < len(h.rows) {
		h.count++
	}
}

// Newest returns the i-th most recent row, 0 being the newest, or nil.
func (h *History) Newest(i int) []uint8 {
	if i < 0 || i >= h.count {
		return nil
	}
	n := len(h.rows)
	return h.rows[(h.head-i+n)%n]
}

// Rows returns the held rows oldest first.
func (h *History) Rows() [][]uint8 {
	out := make([][]uint8, h.count)
	for i := range h.count {
		out[h.count-1-i] = h.Newest(i)
	}
	return out
}

// Resize changes the bound, keeping the most recent rows that still fit.
func (h *History) Resize(capacity int) {
	capacity = max(capacity, 0)
	if capacity == len(h.rows) {
		return
	}
	keep := min(h.count, capacity)
	rows := make([][]uint8, capacity)
	for i := range keep {
		rows[keep-1-i] = h.Newest(i)
	}
	h.rows = rows
	h.count = keep
	h.head = 0
	if keep > 0 {
		h.head = keep - 1
	} else if capacity > 0 {
		h.head = capacity - 1
	}
}

// Clear drops every row but keeps the bound.
func (h *History) Clear() {
	h.count = 0
}
