package geometry

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

// SourceKind names where geometries for an objective are read from.
type SourceKind string

const (
	SourceShapefile SourceKind = "SHAPEFILE"
	SourceWKT       SourceKind = "WKT"
	SourceGeoJSON   SourceKind = "GEOJSON"
)

// ParseSourceKind matches a source token case-insensitively.
func ParseSourceKind(s string) (SourceKind, error) {
	for _, k := range []SourceKind{SourceShapefile, SourceWKT, SourceGeoJSON} {
		if strings.EqualFold(strings.TrimSpace(s), string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown geometry source %q", s)
}

// Load reads geometries from source. For SourceWKT the source is the WKT text
// itself; for the file kinds it is a path.
func Load(kind SourceKind, source string) ([]Geometry, error) {
	switch kind {
	case SourceWKT:
		g, err := ParseWKT(source)
		if err != nil {
			return nil, err
		}
		return []Geometry{g}, nil
	case SourceGeoJSON:
		return ReadGeoJSON(source)
	case SourceShapefile:
		return ReadShapefile(source)
	default:
		return nil, fmt.Errorf("unknown geometry source %q", kind)
	}
}

// LoadFile picks the reader from the file extension: ".shp" is a
// shapefile, ".geojson" and ".json" GeoJSON, anything else a WKT file.
func LoadFile(path string) ([]Geometry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return ReadShapefile(path)
	case ".geojson", ".json":
		return ReadGeoJSON(path)
	default:
		return ReadWKTFile(path)
	}
}

// ParseWKT parses a single well-known-text geometry.
func ParseWKT(s string) (Geometry, error) {
	g, err := wkt.Unmarshal(strings.TrimSpace(s))
	if err != nil {
		return Geometry{}, fmt.Errorf("parse wkt: %w", err)
	}
	return New(g)
}

// ReadWKTFile reads one WKT geometry per non-empty line. Lines starting with
// "#" are skipped.
func ReadWKTFile(path string) ([]Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Geometry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		g, err := ParseWKT(text)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		out = append(out, g)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadGeoJSON reads every feature geometry of a FeatureCollection file.
func ReadGeoJSON(path string) ([]Geometry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}
	out := make([]Geometry, 0, len(fc.Features))
	for i, f := range fc.Features {
		g, err := New(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// ReadShapefile reads every shape of an ESRI shapefile in record order.
func ReadShapefile(path string) ([]Geometry, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile: %w", err)
	}
	defer r.Close()

	var out []Geometry
	for r.Next() {
		n, s := r.Shape()
		g, err := fromShape(s)
		if err != nil {
			return nil, fmt.Errorf("shape %d: %w", n, err)
		}
		out = append(out, g)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read shapefile: %w", err)
	}
	return out, nil
}

func fromShape(s shp.Shape) (Geometry, error) {
	switch v := s.(type) {
	case *shp.Point:
		return FromPoint(orb.Point{v.X, v.Y}), nil
	case *shp.PolyLine:
		parts := splitParts(v.Parts, v.Points)
		if len(parts) == 1 {
			return FromLineString(orb.LineString(parts[0])), nil
		}
		mls := make(orb.MultiLineString, len(parts))
		for i, p := range parts {
			mls[i] = orb.LineString(p)
		}
		return New(mls)
	case *shp.Polygon:
		parts := splitParts(v.Parts, v.Points)
		poly := make(orb.Polygon, len(parts))
		for i, p := range parts {
			poly[i] = orb.Ring(p)
		}
		return New(poly)
	default:
		return Geometry{}, fmt.Errorf("unsupported shape type %T", s)
	}
}

func splitParts(parts []int32, points []shp.Point) [][]orb.Point {
	if len(parts) == 0 {
		parts = []int32{0}
	}
	out := make([][]orb.Point, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		seg := make([]orb.Point, 0, end-start)
		for _, p := range points[start:end] {
			seg = append(seg, orb.Point{p.X, p.Y})
		}
		out = append(out, seg)
	}
	return out
}
