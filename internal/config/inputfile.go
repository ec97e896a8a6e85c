package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"ts-objective/internal/geometry"
	"ts-objective/internal/model"
)

type section int

const (
	sectionNone section = iota
	sectionOptions
	sectionObjectives
	sectionGeometries
)

// sectionKeywords maps a header line to the section it opens.
var sectionKeywords = map[string]section{
	"[OPTIONS]":              sectionOptions,
	"[OBJECTIVES]":           sectionObjectives,
	"[OBJECTIVE_GEOMETRIES]": sectionGeometries,
}

const (
	optionStartDateTime = "START_DATETIME"
	optionEndDateTime   = "END_DATETIME"
)

var fieldDelimiters = regexp.MustCompile(`[\s,;]+`)

// ObjectiveSpec is one row of the [OBJECTIVES] section.
type ObjectiveSpec struct {
	Name       string
	Algorithm  model.Algorithm
	SeriesPath string
}

// GeometrySpec is one row of the [OBJECTIVE_GEOMETRIES] section. Source is a
// resolved path for file kinds and the WKT text for geometry.SourceWKT.
type GeometrySpec struct {
	Name   string
	Kind   geometry.SourceKind
	Source string
}

// InputFile is a parsed objective definition file.
type InputFile struct {
	Path       string
	Start      float64
	End        float64
	Objectives []ObjectiveSpec
	Geometries []GeometrySpec
}

// Horizon returns the [Start, End] window.
func (f *InputFile) Horizon() model.Horizon { return model.NewHorizon(f.Start, f.End) }

// GeometriesFor returns the geometry rows of objective name in file order.
func (f *InputFile) GeometriesFor(name string) []GeometrySpec {
	var out []GeometrySpec
	for _, g := range f.Geometries {
		if g.Name == name {
			out = append(out, g)
		}
	}
	return out
}

// LoadInputFile parses path; relative paths inside it resolve against its
// directory.
func LoadInputFile(path string) (*InputFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: input file does not exist: %s", ErrConfiguration, path)
	}
	defer f.Close()

	in, err := ParseInputFile(f, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	in.Path = path
	return in, nil
}

// ParseInputFile reads the section-based objective definition format.
//
//	[OPTIONS]
//	START_DATETIME 2015-06-01 00:00:00
//	END_DATETIME   2015-06-30 00:00:00
//	[OBJECTIVES]
//	;; name  algorithm  time series
//	flow    RMSE       obs/flow.csv
//	[OBJECTIVE_GEOMETRIES]
//	flow    WKT        LINESTRING (0 0, 1 1)
func ParseInputFile(r io.Reader, baseDir string) (*InputFile, error) {
	in := &InputFile{}
	var startSet, endSet bool

	current := sectionNone
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if s, ok := sectionKeywords[line]; ok {
			current = s
			continue
		}
		if strings.HasPrefix(line, ";;") {
			continue
		}

		switch current {
		case sectionOptions:
			cols := fieldDelimiters.Split(line, -1)
			if len(cols) != 3 {
				return nil, lineError(lineNo, "expected option name, date and time")
			}
			t, err := model.ParseDateTime(cols[1] + " " + cols[2])
			if err != nil {
				return nil, lineError(lineNo, "error reading date time: %v", err)
			}
			switch strings.ToUpper(cols[0]) {
			case optionStartDateTime:
				in.Start = model.ToJulianDay(t)
				startSet = true
			case optionEndDateTime:
				in.End = model.ToJulianDay(t)
				endSet = true
			default:
				return nil, lineError(lineNo, "unknown option %q", cols[0])
			}

		case sectionObjectives:
			cols := fieldDelimiters.Split(line, -1)
			if len(cols) != 3 {
				return nil, lineError(lineNo, "expected name, algorithm and time series file")
			}
			alg, err := model.ParseAlgorithm(cols[1])
			if err != nil {
				return nil, lineError(lineNo, "wrong algorithm specification %q", cols[1])
			}
			path := resolveExisting(baseDir, cols[2])
			if _, err := os.Stat(path); err != nil {
				return nil, lineError(lineNo, "time series file does not exist: %s", path)
			}
			in.Objectives = append(in.Objectives, ObjectiveSpec{
				Name:       cols[0],
				Algorithm:  alg,
				SeriesPath: path,
			})

		case sectionGeometries:
			cols := fieldDelimiters.Split(line, 3)
			if len(cols) != 3 || strings.TrimSpace(cols[2]) == "" {
				return nil, lineError(lineNo, "expected 3 arguments")
			}
			kind, err := geometry.ParseSourceKind(cols[1])
			if err != nil {
				return nil, lineError(lineNo, "%v", err)
			}
			source := strings.TrimSpace(cols[2])
			if kind != geometry.SourceWKT {
				source = resolveExisting(baseDir, source)
			}
			in.Geometries = append(in.Geometries, GeometrySpec{Name: cols[0], Kind: kind, Source: source})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: read input file: %v", ErrConfiguration, err)
	}

	if err := in.validate(startSet, endSet); err != nil {
		return nil, err
	}
	return in, nil
}

func (f *InputFile) validate(startSet, endSet bool) error {
	if !startSet || !endSet {
		return fmt.Errorf("%w: %s and %s are required", ErrConfiguration, optionStartDateTime, optionEndDateTime)
	}
	if f.Start > f.End {
		return fmt.Errorf("%w: start date time is after end date time", ErrConfiguration)
	}
	if len(f.Objectives) == 0 {
		return fmt.Errorf("%w: no objectives defined", ErrConfiguration)
	}
	for _, o := range f.Objectives {
		if len(f.GeometriesFor(o.Name)) == 0 {
			return fmt.Errorf("%w: objective %q has no geometry source", ErrConfiguration, o.Name)
		}
	}
	return nil
}

func lineError(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrConfiguration, line, fmt.Sprintf(format, args...))
}

func resolveExisting(dir, p string) string {
	if filepath.IsAbs(p) || dir == "" {
		return p
	}
	return filepath.Join(dir, p)
}
