package source

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrFixedFrequency is returned when retuning a source whose frequency is
// baked into its samples.
var ErrFixedFrequency = errors.New("source frequency cannot be changed")

// Software gain limits in dB.
const (
	minSoftGain = -60
	maxSoftGain = 60
)

// Tuning holds a source's center frequency and gain. It is safe for use by
// the display goroutine while the source streams.
type Tuning struct {
	mu      sync.Mutex
	center  float64
	gain    float64
	minGain float64
	maxGain float64
	fixed   bool

	// Optional hardware hooks, called with the lock held.
	setFreq func(hz float64) error
	setGain func(db float64) error
}

func newTuning(center, gain float64) *Tuning {
	return &Tuning{
		center:  center,
		gain:    max(minSoftGain, min(maxSoftGain, gain)),
		minGain: minSoftGain,
		maxGain: maxSoftGain,
	}
}

// Center returns the current center frequency in Hz.
func (t *Tuning) Center() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.center
}

// Gain returns the current gain in dB.
func (t *Tuning) Gain() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gain
}

// linearGain returns the amplitude factor for a software gain.
func (t *Tuning) linearGain() float64 {
	return math.Pow(10, t.Gain()/20)
}

// AdjustFrequency moves the center frequency by delta Hz and returns the
// new frequency.
func (t *Tuning) AdjustFrequency(delta float64) (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fixed {
		return t.center, ErrFixedFrequency
	}
	next := t.center + delta
	if next <= 0 {
		return t.center, fmt.Errorf("center frequency %.0f Hz out of range", next)
	}
	if t.setFreq != nil {
		if err := t.setFreq(next); err != nil {
			return t.center, err
		}
	}
	t.center = next
	return next, nil
}

// AdjustGain moves the gain by delta dB, clamped to the source's range,
// and returns the new gain.
func (t *Tuning) AdjustGain(delta float64) (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := max(t.minGain, min(t.maxGain, t.gain+delta))
	if next == t.gain {
		return next, nil
	}
	if t.setGain != nil {
		if err := t.setGain(next); err != nil {
			return t.gain, err
		}
	}
	t.gain = next
	return next, nil
}
