package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Status is the content of the status line.
type Status struct {
	Title      string
	CenterFreq float64
	SampleRate float64
	BinWidth   float64
	Geometry   Geometry
	FrameRate  int
	Levels     Levels
	Gain       float64
	HasGain    bool
	Dropped    uint64
	Elapsed    time.Duration
}

// FormatDuration formats a duration as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func (s Status) String() string {
	parts := []string{
		humanize.SIWithDigits(s.CenterFreq, 4, "Hz"),
		humanize.SIWithDigits(s.SampleRate, 3, "S/s"),
		"RBW " + humanize.SIWithDigits(s.BinWidth, 2, "Hz"),
		fmt.Sprintf("N %d/%d", s.Geometry.FrameSize, s.Geometry.HopSize),
		fmt.Sprintf("%g..%g dB", s.Levels.Floor(), s.Levels.Reference),
	}
	if s.HasGain {
		parts = append(parts, fmt.Sprintf("gain %.1f dB", s.Gain))
	}
	parts = append(parts, fmt.Sprintf("%d fps", s.FrameRate))
	if s.Dropped > 0 {
		parts = append(parts, "drop "+humanize.Comma(int64(s.Dropped)))
	}
	parts = append(parts, FormatDuration(s.Elapsed))
	if s.Title != "" {
		parts = append(parts, s.Title)
	}
	return " " + strings.Join(parts, " | ")
}
