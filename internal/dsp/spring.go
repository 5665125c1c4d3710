package dsp

import "github.com/charmbracelet/harmonica"

// springField eases each bin towards its target with a damped spring.
type springField struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

func newSpringField(fps int, frequency, damping float64) springField {
	if fps < 1 {
		fps = 1
	}
	return springField{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

// seed places every bin at rest on its target.
func (s *springField) seed(targets []float64) {
	s.pos = append(s.pos[:0], targets...)
	s.vel = make([]float64, len(targets))
}

func (s *springField) step(i int, target float64) float64 {
	p, v := s.spring.Update(s.pos[i], s.vel[i], target)
	s.pos[i] = p
	s.vel[i] = v
	return p
}
