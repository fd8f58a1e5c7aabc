package domain

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"go.trai.ch/zerr"
)

var regionCodePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*(/[a-z0-9][a-z0-9-]*)*$`)

// Coverage is the area of interest of a task. It is either a GeoJSON feature
// with a Polygon or MultiPolygon geometry, or a symbolic region code that is
// resolved against the region catalog on first acquisition.
type Coverage struct {
	Region  string
	Feature *geojson.Feature
}

// RegionCoverage returns a coverage pending resolution of the given region code.
func RegionCoverage(code string) Coverage {
	return Coverage{Region: code}
}

// GeometryCoverage wraps a geometry into a coverage feature named name.
func GeometryCoverage(name string, g orb.Geometry) Coverage {
	f := geojson.NewFeature(g)
	if name != "" {
		f.Properties["name"] = name
	}
	return Coverage{Feature: f}
}

// IsZero reports whether the coverage carries neither a region code nor a geometry.
func (c Coverage) IsZero() bool {
	return c.Region == "" && c.Feature == nil
}

// IsRegionCode reports whether the coverage still is a symbolic region code.
func (c Coverage) IsRegionCode() bool {
	return c.Feature == nil && c.Region != ""
}

// Geometry returns the coverage geometry, or nil for an unresolved region code.
func (c Coverage) Geometry() orb.Geometry {
	if c.Feature == nil {
		return nil
	}
	return c.Feature.Geometry
}

// Name returns the "name" property of the coverage feature, if any.
func (c Coverage) Name() string {
	if c.Feature == nil {
		return ""
	}
	return c.Feature.Properties.MustString("name", "")
}

// MarshalJSON encodes the coverage the way it is stored: a GeoJSON Feature or
// {"geofabrikRegion": "<code>"}.
func (c Coverage) MarshalJSON() ([]byte, error) {
	if c.Feature != nil {
		return c.Feature.MarshalJSON()
	}
	return json.Marshal(struct {
		Region string `json:"geofabrikRegion"`
	}{c.Region})
}

// UnmarshalJSON decodes a stored coverage. Bare GeoJSON geometries are accepted
// and wrapped into a feature.
func (c *Coverage) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type   string `json:"type"`
		Region string `json:"geofabrikRegion"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return zerr.Wrap(err, ErrInvalidCoverage.Error())
	}

	switch {
	case probe.Region != "":
		*c = RegionCoverage(probe.Region)
		return nil
	case probe.Type == "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return zerr.Wrap(err, ErrInvalidCoverage.Error())
		}
		if err := checkGeometry(f.Geometry); err != nil {
			return err
		}
		*c = Coverage{Feature: f}
		return nil
	case probe.Type != "":
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return zerr.Wrap(err, ErrInvalidCoverage.Error())
		}
		if err := checkGeometry(g.Geometry()); err != nil {
			return err
		}
		*c = GeometryCoverage("", g.Geometry())
		return nil
	default:
		return ErrInvalidCoverage
	}
}

// ParseCoverage reads a coverage given on the command line: GeoJSON (feature or
// geometry), WKT, or a region code such as "germany" or "europe/germany".
func ParseCoverage(s string) (Coverage, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Coverage{}, ErrInvalidCoverage
	}

	if strings.HasPrefix(s, "{") {
		var c Coverage
		if err := c.UnmarshalJSON([]byte(s)); err != nil {
			return Coverage{}, err
		}
		return c, nil
	}

	if regionCodePattern.MatchString(s) {
		return RegionCoverage(s), nil
	}

	g, err := wkt.Unmarshal(s)
	if err != nil {
		return Coverage{}, zerr.With(zerr.Wrap(err, ErrInvalidCoverage.Error()), "input", s)
	}
	if err := checkGeometry(g); err != nil {
		return Coverage{}, err
	}
	return GeometryCoverage("", g), nil
}

// Equal reports whether two coverages encode to the same JSON.
func (c Coverage) Equal(other Coverage) bool {
	a, errA := c.MarshalJSON()
	b, errB := other.MarshalJSON()
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

func checkGeometry(g orb.Geometry) error {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return nil
	default:
		if g == nil {
			return zerr.With(ErrUnsupportedGeometry, "type", "null")
		}
		return zerr.With(ErrUnsupportedGeometry, "type", g.GeoJSONType())
	}
}
