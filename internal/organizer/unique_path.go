package organizer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	orgerrors "github.com/obby/download-organizer/internal/errors"
)

// UniquePath returns a path inside folder for name that does not exist at the
// time of the call. Collisions are resolved as "base (n)ext" with n counting up
// from 1. The result is only a snapshot; callers that move concurrently must
// serialise the check and the move themselves.
func UniquePath(folder, name string) (string, error) {
	candidate := filepath.Join(folder, name)
	free, err := isFree(candidate)
	if err != nil {
		return "", err
	}
	if free {
		return candidate, nil
	}

	base, ext := splitExt(name)
	for n := 1; ; n++ {
		candidate = filepath.Join(folder, fmt.Sprintf("%s (%d)%s", base, n, ext))
		free, err := isFree(candidate)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
	}
}

func isFree(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	return false, orgerrors.NewResolve(path, err)
}
