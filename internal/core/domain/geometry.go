package domain

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// Polygons flattens a Polygon or MultiPolygon into its polygons.
func Polygons(g orb.Geometry) []orb.Polygon {
	switch v := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{v}
	case orb.MultiPolygon:
		return []orb.Polygon(v)
	default:
		return nil
	}
}

// Area returns the geodesic area of a polygon in square meters.
func Area(p orb.Polygon) float64 {
	return math.Abs(geo.Area(p))
}

// Within reports whether every polygon of inner lies inside outer. Points on
// the boundary of outer count as inside.
func Within(inner orb.Geometry, outer orb.Polygon) bool {
	polys := Polygons(inner)
	if len(polys) == 0 || len(outer) == 0 {
		return false
	}

	ob := outer.Bound()
	for _, p := range polys {
		if !ob.Contains(p.Bound().Min) || !ob.Contains(p.Bound().Max) {
			return false
		}
	}

	for _, p := range polys {
		for _, ring := range p {
			for _, pt := range ring {
				if !planar.PolygonContains(outer, pt) && !onPolygonBoundary(outer, pt) {
					return false
				}
			}
			if ringsCross(ring, outer) {
				return false
			}
		}
	}

	// A hole of outer that sits strictly inside the coverage excludes it.
	for _, hole := range outer[1:] {
		for _, pt := range hole {
			for _, p := range polys {
				if planar.PolygonContains(p, pt) && !onPolygonBoundary(p, pt) {
					return false
				}
			}
		}
	}

	return true
}

func ringsCross(ring orb.Ring, poly orb.Polygon) bool {
	for i := 0; i+1 < len(ring); i++ {
		for _, other := range poly {
			for j := 0; j+1 < len(other); j++ {
				if properCross(ring[i], ring[i+1], other[j], other[j+1]) {
					return true
				}
			}
		}
	}
	return false
}

func onPolygonBoundary(p orb.Polygon, pt orb.Point) bool {
	for _, ring := range p {
		for i := 0; i+1 < len(ring); i++ {
			if onSegment(ring[i], ring[i+1], pt) {
				return true
			}
		}
	}
	return false
}

// properCross reports whether segments ab and cd intersect in a single point
// interior to both.
func properCross(a, b, c, d orb.Point) bool {
	o1 := orientation(a, b, c)
	o2 := orientation(a, b, d)
	o3 := orientation(c, d, a)
	o4 := orientation(c, d, b)
	return o1*o2 < 0 && o3*o4 < 0
}

func onSegment(a, b, p orb.Point) bool {
	if orientation(a, b, p) != 0 {
		return false
	}
	return math.Min(a[0], b[0]) <= p[0] && p[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= p[1] && p[1] <= math.Max(a[1], b[1])
}

func orientation(a, b, c orb.Point) int {
	v := (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
