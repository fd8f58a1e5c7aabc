package domain

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ExtractSuffix is the file extension of every extract.
	ExtractSuffix = ".osm.pbf"
	// UpdatePrefix marks the side file written by downloads and incremental updates.
	UpdatePrefix = "new_"
	// ClipPrefix marks the side file written by clipping.
	ClipPrefix = "clipped_"
	// UpdateTempDirName is the work dir subdirectory used by the incremental updater.
	UpdateTempDirName = "osmupdate_temp"
	// LockFileName is the name of the single-instance lock inside the data dir.
	LockFileName = ".rtosm.lock"

	// DirPerm is the permission used for every directory the service creates.
	DirPerm os.FileMode = 0o750
	// FilePerm is the permission used for every file the service creates.
	FilePerm os.FileMode = 0o640
)

// ExtractFileName returns the base name of the extract of task id.
func ExtractFileName(id int64, name string) string {
	return fmt.Sprintf("%d_%s%s", id, name, ExtractSuffix)
}

// ExtractPath returns where the extract of task id lives inside dataDir.
func ExtractPath(dataDir string, id int64, name string) string {
	return filepath.Join(dataDir, ExtractFileName(id, name))
}

// SideFile returns the sibling of path whose base name carries prefix.
func SideFile(path, prefix string) string {
	return filepath.Join(filepath.Dir(path), prefix+filepath.Base(path))
}

// PolyFilePath returns the poly file location of task id.
func PolyFilePath(workDir string, id int64) string {
	return filepath.Join(workDir, fmt.Sprintf("task%d.poly", id))
}

// UpdateTempDir returns the temp dir handed to the incremental updater for task id.
func UpdateTempDir(workDir string, id int64) string {
	return filepath.Join(workDir, UpdateTempDirName, fmt.Sprintf("task%d", id))
}
