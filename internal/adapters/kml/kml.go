// Package kml loads region boundaries from KML files.
package kml

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"go.trai.ch/rtosm/internal/core/domain"
	"go.trai.ch/rtosm/internal/core/ports"
	"go.trai.ch/zerr"
)

const fileExt = ".kml"

// Loader implements ports.BoundaryLoader for a directory tree of KML files.
type Loader struct {
	logger ports.Logger
}

var _ ports.BoundaryLoader = (*Loader)(nil)

// NewLoader creates a Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load parses every KML file below dir. Each polygon becomes one region named
// after the file path relative to dir, without extension. Files that cannot be
// parsed are logged and skipped.
func (l *Loader) Load(ctx context.Context, dir string) ([]domain.Region, error) {
	var regions []domain.Region

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), fileExt) {
			return nil
		}

		name, err := RegionName(dir, path)
		if err != nil {
			return err
		}

		polys, err := ParseFile(path)
		if err != nil {
			l.logger.Warn(fmt.Sprintf("skipping boundary file %s: %v", path, err))
			return nil
		}
		for _, p := range polys {
			regions = append(regions, domain.Region{Name: name, Polygon: p, Area: domain.Area(p)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return regions, nil
}

// RegionName derives the hierarchical region name of a boundary file.
func RegionName(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrBoundaryParseFailed.Error()), "path", path)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.ToSlash(rel), nil
}

// ParseFile reads all polygons of a KML file.
func ParseFile(path string) ([]orb.Polygon, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from a directory walk
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrBoundaryParseFailed.Error()), "path", path)
	}
	defer func() { _ = f.Close() }()

	polys, err := Parse(f)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return polys, nil
}

type polygonElement struct {
	Outer string   `xml:"outerBoundaryIs>LinearRing>coordinates"`
	Inner []string `xml:"innerBoundaryIs>LinearRing>coordinates"`
}

// Parse decodes every Polygon element of a KML document, wherever it is nested.
func Parse(r io.Reader) ([]orb.Polygon, error) {
	dec := xml.NewDecoder(r)
	var polys []orb.Polygon

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return polys, nil
		}
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrBoundaryParseFailed.Error())
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Polygon" {
			continue
		}

		var el polygonElement
		if err := dec.DecodeElement(&el, &start); err != nil {
			return nil, zerr.Wrap(err, domain.ErrBoundaryParseFailed.Error())
		}

		outer, err := parseCoordinates(el.Outer)
		if err != nil {
			return nil, err
		}
		poly := orb.Polygon{outer}
		for _, inner := range el.Inner {
			ring, err := parseCoordinates(inner)
			if err != nil {
				return nil, err
			}
			poly = append(poly, ring)
		}
		polys = append(polys, poly)
	}
}

// parseCoordinates reads whitespace separated "lon,lat[,alt]" tuples and
// closes the ring if needed.
func parseCoordinates(s string) (orb.Ring, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return nil, zerr.With(domain.ErrBoundaryParseFailed, "reason", "ring has fewer than 3 points")
	}

	ring := make(orb.Ring, 0, len(fields)+1)
	for _, f := range fields {
		parts := strings.Split(f, ",")
		if len(parts) < 2 {
			return nil, zerr.With(domain.ErrBoundaryParseFailed, "coordinate", f)
		}
		lon, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrBoundaryParseFailed.Error()), "coordinate", f)
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrBoundaryParseFailed.Error()), "coordinate", f)
		}
		ring = append(ring, orb.Point{lon, lat})
	}

	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring, nil
}
