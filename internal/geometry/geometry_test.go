package geometry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(pts ...float64) Geometry {
	ls := make(orb.LineString, 0, len(pts)/2)
	for i := 0; i+1 < len(pts); i += 2 {
		ls = append(ls, orb.Point{pts[i], pts[i+1]})
	}
	return FromLineString(ls)
}

func TestEqual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Geometry
		want bool
	}{
		{
			name: "identical lines",
			a:    line(0, 0, 1, 1, 2, 2),
			b:    line(0, 0, 1, 1, 2, 2),
			want: true,
		},
		{
			// Only one vertex pair needs to coincide.
			name: "one coincident vertex is enough",
			a:    line(0, 0, 1, 1, 2, 2),
			b:    line(50, 50, 1.000001, 1, 90, -4),
			want: true,
		},
		{
			name: "different vertex count",
			a:    line(0, 0, 1, 1),
			b:    line(0, 0, 1, 1, 2, 2),
			want: false,
		},
		{
			name: "no vertex within epsilon",
			a:    line(0, 0, 1, 1),
			b:    line(0.001, 0, 1.001, 1),
			want: false,
		},
		{
			name: "kinds differ",
			a:    line(0, 0, 1, 1),
			b:    FromPoint(orb.Point{0, 0}),
			want: false,
		},
		{
			name: "points use exact equality",
			a:    FromPoint(orb.Point{1, 2}),
			b:    FromPoint(orb.Point{1, 2.000000001}),
			want: false,
		},
		{
			name: "equal points",
			a:    FromPoint(orb.Point{1, 2}),
			b:    FromPoint(orb.Point{1, 2}),
			want: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Equal(tt.a, tt.b, DefaultEpsilon))
		})
	}
}

func TestMatchFirstWins(t *testing.T) {
	t.Parallel()

	local := []Geometry{
		line(0, 0, 1, 0),
		line(5, 5, 6, 6),
		line(9, 9, 10, 10),
	}
	provider := []Geometry{
		line(5, 5, 6, 6),
		line(0, 0, 7, 7), // shares the first vertex with local[0]
		line(0, 0, 1, 0),
	}

	got := Match(local, provider)
	want := Mapping{0: 1, 1: 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, got.Has(2))
	assert.Equal(t, []int{0, 1}, got.Local())
}

func TestMatchNoProviderGeometries(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Match([]Geometry{line(0, 0, 1, 1)}, nil))
}

func TestParseWKT(t *testing.T) {
	t.Parallel()

	g, err := ParseWKT("LINESTRING (0 0, 1 1, 2 3)")
	require.NoError(t, err)
	assert.Equal(t, KindLineString, g.Kind)
	ls, ok := g.LineString()
	require.True(t, ok)
	assert.Len(t, ls, 3)

	_, err = ParseWKT("LINESTRING (0 0,")
	assert.Error(t, err)
}

func TestReadWKTFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reaches.wkt")
	body := "# reaches\nLINESTRING (0 0, 1 1)\n\nPOINT (3 4)\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	geoms, err := ReadWKTFile(path)
	require.NoError(t, err)
	require.Len(t, geoms, 2)
	assert.Equal(t, KindLineString, geoms[0].Kind)
	assert.Equal(t, KindPoint, geoms[1].Kind)
}

func TestReadGeoJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reaches.geojson")
	body := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]}}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	geoms, err := Load(SourceGeoJSON, path)
	require.NoError(t, err)
	require.Len(t, geoms, 1)
	assert.Equal(t, KindLineString, geoms[0].Kind)
}

func TestParseSourceKind(t *testing.T) {
	t.Parallel()

	k, err := ParseSourceKind("shapefile")
	require.NoError(t, err)
	assert.Equal(t, SourceShapefile, k)

	_, err = ParseSourceKind("KML")
	assert.Error(t, err)
}

func TestLoadFileByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	wktPath := filepath.Join(dir, "reaches.wkt")
	require.NoError(t, os.WriteFile(wktPath, []byte("LINESTRING (0 0, 1 1)\n"), 0o644))

	got, err := LoadFile(wktPath)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, KindLineString, got[0].Kind)

	_, err = LoadFile(filepath.Join(dir, "missing.shp"))
	assert.Error(t, err)
}

func TestReadShapefile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	linesPath := filepath.Join(dir, "reaches.shp")
	w, err := shp.Create(linesPath, shp.POLYLINE)
	require.NoError(t, err)
	w.Write(shp.NewPolyLine([][]shp.Point{
		{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 1}},
	}))
	w.Write(shp.NewPolyLine([][]shp.Point{
		{{X: 0, Y: 0}, {X: 1, Y: 1}},
		{{X: 5, Y: 5}, {X: 6, Y: 6}, {X: 7, Y: 5}},
	}))
	w.Close()

	got, err := ReadShapefile(linesPath)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, KindLineString, got[0].Kind)
	if diff := cmp.Diff(orb.LineString{{0, 0}, {1, 0}, {2, 1}}, got[0].Shape); diff != "" {
		t.Errorf("single part mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, KindMultiLineString, got[1].Kind)
	want := orb.MultiLineString{
		{{0, 0}, {1, 1}},
		{{5, 5}, {6, 6}, {7, 5}},
	}
	if diff := cmp.Diff(want, got[1].Shape); diff != "" {
		t.Errorf("two parts mismatch (-want +got):\n%s", diff)
	}

	pointsPath := filepath.Join(dir, "gauges.shp")
	w, err = shp.Create(pointsPath, shp.POINT)
	require.NoError(t, err)
	w.Write(&shp.Point{X: 3, Y: 4})
	w.Close()

	got, err = LoadFile(pointsPath)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, KindPoint, got[0].Kind)
	assert.Equal(t, orb.Point{3, 4}, got[0].Shape)
}
