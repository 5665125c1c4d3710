package source

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

var (
	otoCtx      *oto.Context
	otoRate     int
	otoChannels int
	otoOnce     sync.Once
	otoInitErr  error
)

// audioContext opens the audio device once per process. oto allows a single
// context, so later monitors must match its format.
func audioContext(rate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
			otoRate, otoChannels = rate, channels
		}
	})
	if otoInitErr != nil {
		return nil, otoInitErr
	}
	if rate != otoRate || channels != otoChannels {
		return nil, fmt.Errorf("audio device already open at %d Hz, %d channels", otoRate, otoChannels)
	}
	return otoCtx, nil
}

// Monitor plays an audio file through the sound card alongside the display.
// It decodes the file independently of the sample stream.
type Monitor struct {
	r      frameReader
	player *oto.Player
}

// NewMonitor opens a second decoder on path for playback.
func NewMonitor(path, format string, loop bool) (*Monitor, error) {
	r, err := openFrameReader(path, format, 0)
	if err != nil {
		return nil, err
	}
	if ch := r.Channels(); ch > 2 {
		r.Close()
		return nil, fmt.Errorf("cannot play %d channel audio", ch)
	}
	ctx, err := audioContext(int(r.SampleRate()), r.Channels())
	if err != nil {
		r.Close()
		return nil, err
	}
	return &Monitor{r: r, player: ctx.NewPlayer(&pcm16{r: r, loop: loop})}, nil
}

// Start begins playback.
func (m *Monitor) Start() { m.player.Play() }

// Close stops playback and releases the decoder.
func (m *Monitor) Close() error {
	m.player.Pause()
	err := m.player.Close()
	if cerr := m.r.Close(); err == nil {
		err = cerr
	}
	return err
}
