package objective

import (
	"errors"

	"ts-objective/internal/model"
)

// ErrEmptyHorizon is returned when no observed record falls at or after the
// horizon start.
var ErrEmptyHorizon = errors.New("no observed record at or after horizon start")

// Phase is the cursor's position in its seed/advance/exhausted life.
type Phase int

const (
	PhaseUnseeded Phase = iota
	PhaseAdvancing
	PhaseExhausted
)

func (p Phase) String() string {
	switch p {
	case PhaseAdvancing:
		return "ADVANCING"
	case PhaseExhausted:
		return "EXHAUSTED"
	default:
		return "UNSEEDED"
	}
}

// Cursor tracks which observed record is current. It only ever moves
// forward, and once exhausted its time stays past the horizon.
type Cursor struct {
	series  *model.TimeSeries
	horizon model.Horizon

	startIndex int
	endIndex   int
	nextIndex  int
	current    float64
	phase      Phase
}

// NewCursor returns an unseeded cursor over series.
func NewCursor(series *model.TimeSeries) *Cursor {
	return &Cursor{series: series}
}

// Seed positions the cursor at the first record inside the horizon and finds
// the last one.
func (c *Cursor) Seed(h model.Horizon) error {
	c.horizon = h
	c.phase = PhaseUnseeded

	start := -1
	for i := 0; i < c.series.NumRows(); i++ {
		if c.series.DateTime(i) >= h.Start {
			start = i
			break
		}
	}
	if start < 0 {
		return ErrEmptyHorizon
	}

	c.startIndex = start
	c.nextIndex = start
	c.endIndex = start
	c.current = c.series.DateTime(start)
	for j := start; j < c.series.NumRows(); j++ {
		if c.series.DateTime(j) > h.End() {
			break
		}
		c.endIndex = j
	}
	c.phase = PhaseAdvancing
	return nil
}

// Advance moves to the next in-horizon record when the provider reported a
// successful update. Anything else, including running out of records, parks
// the cursor on the horizon sentinel for the rest of the run.
func (c *Cursor) Advance(providerStatus model.Status) {
	if c.phase != PhaseAdvancing {
		return
	}
	if providerStatus == model.StatusUpdated {
		next := c.nextIndex + 1
		if next <= c.endIndex && next < c.series.NumRows() {
			c.nextIndex = next
			c.current = c.series.DateTime(next)
			return
		}
	}
	c.current = c.horizon.Sentinel()
	c.phase = PhaseExhausted
}

func (c *Cursor) CurrentDateTime() float64 { return c.current }

func (c *Cursor) StartIndex() int { return c.startIndex }

func (c *Cursor) EndIndex() int { return c.endIndex }

func (c *Cursor) NextIndex() int { return c.nextIndex }

func (c *Cursor) Phase() Phase { return c.phase }

func (c *Cursor) Exhausted() bool { return c.phase == PhaseExhausted }

// RecordLength is the number of observed records inside the horizon.
func (c *Cursor) RecordLength() int { return c.endIndex - c.startIndex + 1 }
