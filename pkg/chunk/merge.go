package chunk

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/ligustah/chunkset/pkg/fsio"
)

// merge reassembles the chunks in opts.InDir into opts.OutFile. The output
// is written to a temporary sibling and renamed into place, so OutFile is
// either the complete file or left as it was.
func merge(ctx context.Context, fsys fsio.FS, opts MergeOptions) (err error) {
	s, err := scan(ctx, "merge", fsys, opts.InDir)
	if err != nil {
		return err
	}
	if err := s.validate("merge"); err != nil {
		return err
	}

	r, err := s.NewReader(ctx)
	if err != nil {
		return err
	}
	r.WithObserver(opts.Observer)
	defer r.Close()

	if err := fsys.MkdirAll(ctx, fsys.Dir(opts.OutFile)); err != nil {
		return ioError("merge", fsys.Dir(opts.OutFile), -1, err)
	}

	tmp := partialName(fsys, opts.OutFile)
	out, err := fsys.Create(ctx, tmp)
	if err != nil {
		return ioError("merge", tmp, -1, err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rmErr := fsys.Remove(context.WithoutCancel(ctx), tmp); rmErr != nil && !fsio.IsNotExist(rmErr) {
			err = errors.Join(err, ioError("merge", tmp, -1, rmErr))
		}
	}()

	buf := make([]byte, bufferLen(opts.BufferSize, 0))
	if _, err := io.CopyBuffer(writerOnly{out}, r, buf); err != nil {
		out.Close()
		var chunkErr *Error
		if errors.As(err, &chunkErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return ioError("merge", tmp, -1, err)
	}

	if err := out.Close(); err != nil {
		return ioError("merge", tmp, -1, err)
	}
	if err := fsys.Rename(ctx, tmp, opts.OutFile); err != nil {
		return ioError("merge", opts.OutFile, -1, err)
	}
	return nil
}

// partialName returns the temporary name merge writes to before renaming
// over name.
func partialName(fsys fsio.FS, name string) string {
	return fsys.Join(fsys.Dir(name), "."+fsys.Base(name)+"."+uuid.NewString()+".partial")
}

// writerOnly hides any ReaderFrom of the wrapped writer so that
// io.CopyBuffer streams through the caller's buffer.
type writerOnly struct {
	io.Writer
}
