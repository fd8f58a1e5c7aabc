package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rtosm/internal/core/domain"
)

func square(x0, y0, x1, y1 float64) orb.Polygon {
	return orb.Polygon{{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}}
}

func TestCoverage_RegionCodeRoundTrip(t *testing.T) {
	c := domain.RegionCoverage("germany")

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"geofabrikRegion":"germany"}`, string(data))

	var decoded domain.Coverage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.IsRegionCode())
	assert.Equal(t, "germany", decoded.Region)
	assert.Nil(t, decoded.Geometry())
}

func TestCoverage_UnmarshalFeature(t *testing.T) {
	raw := `{"type":"Feature","properties":{"name":"berlin"},
		"geometry":{"type":"Polygon","coordinates":[[[13,52],[14,52],[14,53],[13,53],[13,52]]]}}`

	var c domain.Coverage
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	assert.False(t, c.IsRegionCode())
	assert.Equal(t, "berlin", c.Name())
	poly, ok := c.Geometry().(orb.Polygon)
	require.True(t, ok)
	assert.Len(t, poly[0], 5)
}

func TestCoverage_UnmarshalBareGeometry(t *testing.T) {
	raw := `{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,1],[0,0]]],[[[2,2],[3,2],[3,3],[2,3],[2,2]]]]}`

	var c domain.Coverage
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	mp, ok := c.Geometry().(orb.MultiPolygon)
	require.True(t, ok)
	assert.Len(t, mp, 2)
	assert.Empty(t, c.Name())
}

func TestCoverage_RejectsPoint(t *testing.T) {
	var c domain.Coverage
	err := json.Unmarshal([]byte(`{"type":"Point","coordinates":[1,2]}`), &c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported coverage geometry")
}

func TestParseCoverage(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantRegion string
		wantGeom   bool
		wantErr    bool
	}{
		{name: "region code", input: "germany", wantRegion: "germany"},
		{name: "hierarchical region code", input: "europe/germany", wantRegion: "europe/germany"},
		{name: "wkt polygon", input: "POLYGON((0 0, 1 0, 1 1, 0 1, 0 0))", wantGeom: true},
		{name: "geojson geometry", input: `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`, wantGeom: true},
		{name: "wkt point", input: "POINT(1 2)", wantErr: true},
		{name: "empty", input: "  ", wantErr: true},
		{name: "garbage", input: "Not A Region!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := domain.ParseCoverage(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRegion, c.Region)
			assert.Equal(t, tt.wantGeom, c.Geometry() != nil)
		})
	}
}

func TestCoverage_Equal(t *testing.T) {
	a := domain.GeometryCoverage("x", square(0, 0, 1, 1))
	b := domain.GeometryCoverage("x", square(0, 0, 1, 1))
	c := domain.GeometryCoverage("x", square(0, 0, 2, 2))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(domain.RegionCoverage("x")))
}

func TestNewTask_Validate(t *testing.T) {
	valid := domain.NewTask{Name: "berlin_1", Coverage: domain.RegionCoverage("berlin")}
	require.NoError(t, valid.Validate())

	badName := valid
	badName.Name = "../etc"
	require.ErrorIs(t, badName.Validate(), domain.ErrInvalidTaskName)

	noCoverage := valid
	noCoverage.Coverage = domain.Coverage{}
	require.ErrorIs(t, noCoverage.Validate(), domain.ErrInvalidCoverage)
}
