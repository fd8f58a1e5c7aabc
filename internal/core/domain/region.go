package domain

import (
	"slices"
	"time"

	"github.com/paulmach/orb"
)

// Region is one named boundary polygon of the extract provider, such as
// "europe/germany". Regions split into several parts appear once per part.
type Region struct {
	Name    string
	Polygon orb.Polygon
	Area    float64
}

// Catalog is an immutable snapshot of all known regions together with the
// fingerprint of the archive it was built from.
type Catalog struct {
	regions     []Region
	fingerprint uint64
	builtAt     time.Time
}

// NewCatalog builds a catalog from regions. The slice is copied.
func NewCatalog(regions []Region, fingerprint uint64, builtAt time.Time) *Catalog {
	return &Catalog{
		regions:     slices.Clone(regions),
		fingerprint: fingerprint,
		builtAt:     builtAt,
	}
}

// Regions returns the catalog entries in load order. Callers must not modify the result.
func (c *Catalog) Regions() []Region {
	if c == nil {
		return nil
	}
	return c.regions
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.regions)
}

// Fingerprint returns the hash of the archive the catalog was built from.
func (c *Catalog) Fingerprint() uint64 {
	if c == nil {
		return 0
	}
	return c.fingerprint
}

// BuiltAt returns when the catalog was published.
func (c *Catalog) BuiltAt() time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.builtAt
}
