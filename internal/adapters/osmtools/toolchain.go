// Package osmtools builds the command lines of the external OpenStreetMap tools.
package osmtools

import (
	"path/filepath"

	"go.trai.ch/rtosm/internal/core/domain"
	"go.trai.ch/rtosm/internal/core/ports"
)

const (
	// wget prints this when a conditional fetch finds the remote file unchanged.
	notModifiedMarker = "304 Not Modified"
	// wget prints this after writing a file.
	savedMarker = "saved"

	upToDateMarker  = "Your OSM file is already up-to-date."
	completedMarker = "Completed successfully"
)

// Toolchain implements ports.Toolchain for wget, tar, osmupdate and osmconvert.
type Toolchain struct {
	tools domain.ToolsConfig
}

var _ ports.Toolchain = (*Toolchain)(nil)

// New creates a Toolchain using the configured executables.
func New(tools domain.ToolsConfig) *Toolchain {
	return &Toolchain{tools: tools}
}

// FetchCatalog conditionally downloads the boundary archive into dir.
func (t *Toolchain) FetchCatalog(sourceURL, dir string) ports.Command {
	return ports.Command{
		Kind:          ports.KindCatalogFetch,
		Name:          t.tools.Wget,
		Args:          []string{"--progress=dot:giga", "-N", sourceURL},
		Dir:           dir,
		NoopMarker:    notModifiedMarker,
		SuccessMarker: savedMarker,
	}
}

// ExtractArchive unpacks a gzipped tarball inside dir.
func (t *Toolchain) ExtractArchive(archive, dir string) ports.Command {
	return ports.Command{
		Kind: ports.KindCatalogExtract,
		Name: t.tools.Tar,
		Args: []string{"xzf", filepath.Base(archive)},
		Dir:  dir,
	}
}

// Download fetches a regional extract into out.
func (t *Toolchain) Download(url, out string) ports.Command {
	return ports.Command{
		Kind: ports.KindDownload,
		Name: t.tools.Wget,
		Args: []string{"--progress=dot:giga", "-O", out, url},
	}
}

// Update applies the pending change files to in and writes the result to out.
func (t *Toolchain) Update(in, out, tempDir string) ports.Command {
	return ports.Command{
		Kind:          ports.KindUpdate,
		Name:          t.tools.OSMUpdate,
		Args:          []string{"-v", "--max-merge=2", "-t=" + tempDir + string(filepath.Separator), in, out},
		NoopMarker:    upToDateMarker,
		SuccessMarker: completedMarker,
	}
}

// Clip cuts in along the poly file and writes the result to out.
func (t *Toolchain) Clip(in, poly, out string) ports.Command {
	return ports.Command{
		Kind: ports.KindClip,
		Name: t.tools.OSMConvert,
		Args: []string{in, "-B=" + poly, "-o=" + out},
	}
}

// PlanetExtract cuts a new extract out of the planet file.
func (t *Toolchain) PlanetExtract(planet, poly, out string) ports.Command {
	c := t.Clip(planet, poly, out)
	c.Kind = ports.KindPlanetExtract
	return c
}
