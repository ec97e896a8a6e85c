// Package provider defines the simulation side an objective reads from.
package provider

import (
	"ts-objective/internal/geometry"
	"ts-objective/internal/model"
)

// Provider publishes time-stamped values for an ordered, stable set of
// geometries. Time indices grow as the simulation advances; the last index
// is the current snapshot and the one before it the previous snapshot.
type Provider interface {
	Status() model.Status
	Geometries() []geometry.Geometry
	TimeCount() int
	// Time returns the julian day of snapshot i.
	Time(i int) float64
	Value(timeIndex, geometryIndex int) float64
	// UpdateValues advances the simulation until it has published a
	// snapshot at or after queryTime, or cannot advance any further.
	UpdateValues(queryTime float64)
}

// CanConsume reports whether p publishes line features an objective can be
// matched against. The message explains a refusal.
func CanConsume(p Provider) (ok bool, message string) {
	if p == nil {
		return false, "Provider is nil"
	}
	geoms := p.Geometries()
	if len(geoms) == 0 {
		return false, "Provider publishes no geometries"
	}
	for _, g := range geoms {
		if !g.Kind.IsLine() {
			return false, "Provider must be a LineString"
		}
	}
	return true, ""
}
