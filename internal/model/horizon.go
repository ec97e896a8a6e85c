package model

// SentinelOffset is added past the horizon end to mark an objective as
// finished without landing exactly on the end time. Units: days.
const SentinelOffset = 0.000001

// Horizon is the simulation window [Start, Start+Duration] in julian days.
type Horizon struct {
	Start    float64
	Duration float64
}

// NewHorizon builds a horizon from start and end julian days.
func NewHorizon(start, end float64) Horizon {
	return Horizon{Start: start, Duration: end - start}
}

func (h Horizon) End() float64 { return h.Start + h.Duration }

// Sentinel is the just-past-horizon time used for finished cursors.
func (h Horizon) Sentinel() float64 { return h.End() + SentinelOffset }

// Complete reports whether t has reached the end of the horizon.
func (h Horizon) Complete(t float64) bool { return t >= h.End() }
