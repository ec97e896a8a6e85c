// Package geometry holds the closed set of feature shapes an objective can be
// tracked on, and the matcher that pairs observed features with the features
// published by a simulation provider.
package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// DefaultEpsilon is the point distance under which two line vertices are
// considered coincident.
const DefaultEpsilon = 0.00001

// Kind is the concrete shape family of a Geometry.
type Kind int

const (
	KindUnknown Kind = iota
	KindPoint
	KindMultiPoint
	KindLineString
	KindMultiLineString
	KindPolygon
	KindMultiPolygon
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "POINT"
	case KindMultiPoint:
		return "MULTIPOINT"
	case KindLineString:
		return "LINESTRING"
	case KindMultiLineString:
		return "MULTILINESTRING"
	case KindPolygon:
		return "POLYGON"
	case KindMultiPolygon:
		return "MULTIPOLYGON"
	default:
		return "UNKNOWN"
	}
}

// IsLine reports whether k uses the vertex-tolerance equality rule.
func (k Kind) IsLine() bool { return k == KindLineString }

// Geometry is a tagged shape: Kind always agrees with the concrete type of
// Shape. Build values with New or the From* helpers.
type Geometry struct {
	Kind  Kind
	Shape orb.Geometry
}

// New tags an orb geometry with its kind. Collections and bounds are rejected.
func New(g orb.Geometry) (Geometry, error) {
	switch v := g.(type) {
	case orb.Point:
		return Geometry{Kind: KindPoint, Shape: v}, nil
	case orb.MultiPoint:
		return Geometry{Kind: KindMultiPoint, Shape: v}, nil
	case orb.LineString:
		return Geometry{Kind: KindLineString, Shape: v}, nil
	case orb.MultiLineString:
		return Geometry{Kind: KindMultiLineString, Shape: v}, nil
	case orb.Polygon:
		return Geometry{Kind: KindPolygon, Shape: v}, nil
	case orb.MultiPolygon:
		return Geometry{Kind: KindMultiPolygon, Shape: v}, nil
	case nil:
		return Geometry{}, fmt.Errorf("nil geometry")
	default:
		return Geometry{}, fmt.Errorf("unsupported geometry type %s", g.GeoJSONType())
	}
}

// FromLineString is a shorthand for line features built in code.
func FromLineString(ls orb.LineString) Geometry {
	return Geometry{Kind: KindLineString, Shape: ls}
}

// FromPoint is a shorthand for point features built in code.
func FromPoint(p orb.Point) Geometry {
	return Geometry{Kind: KindPoint, Shape: p}
}

// LineString returns the line payload; ok is false for other kinds.
func (g Geometry) LineString() (orb.LineString, bool) {
	if g.Kind != KindLineString {
		return nil, false
	}
	ls, ok := g.Shape.(orb.LineString)
	return ls, ok
}

// Equal reports whether a and b describe the same feature.
//
// Lines are equal when they have the same number of vertices and at least one
// pair of corresponding vertices lies closer than epsilon. Every other kind
// uses exact geometric equality.
func Equal(a, b Geometry, epsilon float64) bool {
	if a.Kind != b.Kind || a.Kind == KindUnknown {
		return false
	}
	if a.Kind.IsLine() {
		la, okA := a.LineString()
		lb, okB := b.LineString()
		if !okA || !okB || len(la) != len(lb) {
			return false
		}
		for i := range la {
			if planar.Distance(la[i], lb[i]) < epsilon {
				return true
			}
		}
		return false
	}
	return orb.Equal(a.Shape, b.Shape)
}
