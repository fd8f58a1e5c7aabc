package worker

import (
	"errors"
	"io/fs"
	"os"

	"go.trai.ch/rtosm/internal/core/domain"
	"go.trai.ch/rtosm/internal/core/ports"
	"go.trai.ch/zerr"
)

// replace moves src over dst.
func replace(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return zerr.With(zerr.With(zerr.Wrap(err, domain.ErrReplaceFailed.Error()), "from", src), "to", dst)
	}
	return nil
}

// removeFiles deletes paths, ignoring files that are already gone.
func removeFiles(logger ports.Logger, paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("failed to remove " + p + ": " + err.Error())
		}
	}
}

// exists reports whether path exists and returns its modification info.
func exists(path string) (fs.FileInfo, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	return info, true
}
