package chunk

import (
	"context"

	"github.com/ligustah/chunkset/pkg/fsio"
)

// Clean removes every chunk entry from dir and returns how many were
// removed. Entries that are not chunks, and dir itself, are left alone.
// Use it to discard the output of a failed or unwanted split.
//
// Returns an error if:
//   - dir cannot be listed
//   - a chunk cannot be removed
//   - the context is cancelled
func Clean(ctx context.Context, fsys fsio.FS, dir string) (int, error) {
	s, err := scan(ctx, "clean", fsys, dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, i := range s.indices {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := fsys.Remove(ctx, s.Path(i)); err != nil && !fsio.IsNotExist(err) {
			return removed, ioError("clean", s.Path(i), i, err)
		}
		removed++
	}
	return removed, nil
}
