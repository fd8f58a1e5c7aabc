// Package polyfile encodes boundaries in the Osmosis polygon filter file format.
package polyfile

import (
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"go.trai.ch/rtosm/internal/core/domain"
	"go.trai.ch/rtosm/internal/core/ports"
	"go.trai.ch/zerr"
)

const undefinedName = "undefined"

// Encoder writes poly files into a work directory.
type Encoder struct {
	dir string
}

var _ ports.PolyEncoder = (*Encoder)(nil)

// NewEncoder creates an Encoder writing into dir.
func NewEncoder(dir string) *Encoder {
	return &Encoder{dir: dir}
}

// Encode writes the poly file of a task and returns its path. The caller removes it.
func (e *Encoder) Encode(taskID int64, name string, g orb.Geometry) (string, error) {
	text, err := Render(name, g)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.dir, domain.DirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrPolyWriteFailed.Error()), "dir", e.dir)
	}

	path := domain.PolyFilePath(e.dir, taskID)
	if err := os.WriteFile(path, []byte(text), domain.FilePerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrPolyWriteFailed.Error()), "path", path)
	}
	return path, nil
}

// Render encodes g as poly file text. Rings are numbered from 1 in file
// order; holes carry a negated index.
func Render(name string, g orb.Geometry) (string, error) {
	polys := domain.Polygons(g)
	if len(polys) == 0 {
		if g == nil {
			return "", domain.ErrCoverageUnresolved
		}
		return "", zerr.With(domain.ErrUnsupportedGeometry, "type", g.GeoJSONType())
	}

	if strings.TrimSpace(name) == "" {
		name = undefinedName
	}

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('\n')

	index := 0
	for _, poly := range polys {
		for i, ring := range poly {
			index++
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteString(strconv.Itoa(index))
			b.WriteByte('\n')
			for _, pt := range ring {
				b.WriteByte('\t')
				b.WriteString(strconv.FormatFloat(pt.Lon(), 'f', -1, 64))
				b.WriteByte('\t')
				b.WriteString(strconv.FormatFloat(pt.Lat(), 'f', -1, 64))
				b.WriteByte('\n')
			}
			b.WriteString("END\n")
		}
	}
	b.WriteString("END\n")

	return b.String(), nil
}
