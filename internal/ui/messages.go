package ui

import "github.com/olivier-w/termspec/internal/render"

// gridMsg carries a composed frame from the scheduler.
type gridMsg render.CellGrid
