// Package matcher finds the regional extract that best covers a task.
package matcher

import (
	"strings"

	"github.com/paulmach/orb"
	"go.trai.ch/rtosm/internal/core/domain"
)

// Match is the catalog entry chosen for a coverage.
type Match struct {
	// Name is the hierarchical region name, e.g. "europe/germany".
	Name string
	// Geometry is the region boundary; a MultiPolygon when the region has several parts.
	Geometry orb.Geometry
	// Area is the summed area of all parts in square meters.
	Area float64
}

// FindExtract returns the smallest catalog region that contains the coverage,
// or for a region code the region with that name. A nil catalog never matches.
func FindExtract(c domain.Coverage, cat *domain.Catalog) (Match, bool) {
	if cat == nil {
		return Match{}, false
	}
	if c.IsRegionCode() {
		return findByCode(c.Region, cat.Regions())
	}

	g := c.Geometry()
	if g == nil {
		return Match{}, false
	}

	best := -1
	for i, r := range cat.Regions() {
		if best >= 0 && r.Area >= cat.Regions()[best].Area {
			continue
		}
		if domain.Within(g, r.Polygon) {
			best = i
		}
	}
	if best < 0 {
		return Match{}, false
	}

	r := cat.Regions()[best]
	return Match{Name: r.Name, Geometry: r.Polygon, Area: r.Area}, true
}

// findByCode prefers an exact name, then the shortest name ending in "/code".
func findByCode(code string, regions []domain.Region) (Match, bool) {
	suffix := "/" + code
	chosen := ""
	for _, r := range regions {
		switch {
		case r.Name == code:
			chosen = code
		case strings.HasSuffix(r.Name, suffix):
			if chosen == "" || (chosen != code && len(r.Name) < len(chosen)) {
				chosen = r.Name
			}
		}
		if chosen == code {
			break
		}
	}
	if chosen == "" {
		return Match{}, false
	}

	var parts orb.MultiPolygon
	var area float64
	for _, r := range regions {
		if r.Name == chosen {
			parts = append(parts, r.Polygon)
			area += r.Area
		}
	}

	m := Match{Name: chosen, Area: area, Geometry: parts}
	if len(parts) == 1 {
		m.Geometry = parts[0]
	}
	return m, true
}
