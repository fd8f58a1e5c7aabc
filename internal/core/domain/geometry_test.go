package domain_test

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/rtosm/internal/core/domain"
)

func TestWithin(t *testing.T) {
	outer := square(0, 0, 10, 10)
	withHole := orb.Polygon{
		outer[0],
		{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
	}

	tests := []struct {
		name  string
		inner orb.Geometry
		outer orb.Polygon
		want  bool
	}{
		{name: "strictly inside", inner: square(1, 1, 2, 2), outer: outer, want: true},
		{name: "identical", inner: outer, outer: outer, want: true},
		{name: "touching boundary", inner: square(0, 0, 5, 5), outer: outer, want: true},
		{name: "overlapping", inner: square(5, 5, 15, 15), outer: outer, want: false},
		{name: "disjoint", inner: square(20, 20, 21, 21), outer: outer, want: false},
		{name: "larger", inner: square(-1, -1, 11, 11), outer: outer, want: false},
		{name: "multipolygon inside", inner: orb.MultiPolygon{square(1, 1, 2, 2), square(7, 7, 8, 8)}, outer: outer, want: true},
		{name: "multipolygon partly outside", inner: orb.MultiPolygon{square(1, 1, 2, 2), square(9, 9, 12, 12)}, outer: outer, want: false},
		{name: "around a hole", inner: square(3, 3, 7, 7), outer: withHole, want: false},
		{name: "beside a hole", inner: square(1, 1, 3, 3), outer: withHole, want: true},
		{name: "point is not a coverage", inner: orb.Point{1, 1}, outer: outer, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Within(tt.inner, tt.outer))
		})
	}
}

func TestArea_Positive(t *testing.T) {
	small := domain.Area(square(0, 0, 1, 1))
	large := domain.Area(square(0, 0, 2, 2))

	assert.Greater(t, small, 0.0)
	assert.Greater(t, large, small)
}

func TestLayout(t *testing.T) {
	assert.Equal(t, "7_berlin.osm.pbf", domain.ExtractFileName(7, "berlin"))
	assert.Equal(t, "/data/new_7_berlin.osm.pbf", domain.SideFile("/data/7_berlin.osm.pbf", domain.UpdatePrefix))
	assert.Equal(t, "/work/task7.poly", domain.PolyFilePath("/work", 7))
	assert.Equal(t, "/work/osmupdate_temp/task7", domain.UpdateTempDir("/work", 7))
}

func TestTask_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, domain.Task{}.Expired(now))
	assert.True(t, domain.Task{ExpirationDate: &past}.Expired(now))
	assert.False(t, domain.Task{ExpirationDate: &future}.Expired(now))
	assert.Equal(t, domain.DefaultUpdateInterval, domain.Task{}.Interval())
}
