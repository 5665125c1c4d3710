package pipeline

import (
	"sync"
	"testing"

	"github.com/olivier-w/termspec/internal/dsp"
)

func TestSlotTakeEmpty(t *testing.T) {
	var s Slot
	if _, ok := s.Take(); ok {
		t.Fatal("expected empty slot")
	}
}

func TestSlotKeepsOnlyLatest(t *testing.T) {
	var s Slot
	for i := range 5 {
		s.Store(dsp.SpectrumRow{Seq: uint64(i)})
	}
	row, ok := s.Take()
	if !ok || row.Seq != 4 {
		t.Fatalf("expected latest row 4, got %d (%v)", row.Seq, ok)
	}
	if _, ok := s.Take(); ok {
		t.Fatal("expected take to empty the slot")
	}
	if s.Overwritten() != 4 || s.Stored() != 5 {
		t.Fatalf("expected 4 overwritten of 5 stored, got %d of %d", s.Overwritten(), s.Stored())
	}
}

func TestSlotConcurrentUse(t *testing.T) {
	var s Slot
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 1000 {
			s.Store(dsp.SpectrumRow{Seq: uint64(i + 1)})
		}
	}()
	var last uint64
	for range 1000 {
		if row, ok := s.Take(); ok {
			if row.Seq < last {
				t.Fatalf("took row %d after %d", row.Seq, last)
			}
			last = row.Seq
		}
	}
	wg.Wait()
}
