package chunk

import (
	"context"
	"errors"
	"io"

	"github.com/ligustah/chunkset/pkg/fsio"
)

// Reader streams the chunks of a complete set in index order, as the bytes
// of the original file.
type Reader struct {
	ctx context.Context
	set *Set
	obs Observer

	currentChunk  int
	currentReader io.ReadCloser
	currentBytes  int64
	inChunk       bool
	err           error
	closed        bool
}

// OpenReader scans dir and returns a Reader over its chunks. The set must be
// exactly {0 … n-1} with no other entries.
func OpenReader(ctx context.Context, fsys fsio.FS, dir string) (*Reader, error) {
	s, err := scan(ctx, "read", fsys, dir)
	if err != nil {
		return nil, err
	}
	return s.NewReader(ctx)
}

// NewReader returns a Reader over the set. The context is used for every
// chunk opened while reading.
func (s *Set) NewReader(ctx context.Context) (*Reader, error) {
	if err := s.validate("read"); err != nil {
		return nil, err
	}
	return &Reader{ctx: ctx, set: s, obs: nopObserver{}}, nil
}

// WithObserver sets the observer notified as each chunk is read and returns
// r. It must be called before the first Read.
func (r *Reader) WithObserver(o Observer) *Reader {
	r.obs = observerOrNop(o)
	return r
}

// Read reads the next bytes of the reassembled file.
func (r *Reader) Read(p []byte) (n int, err error) {
	if r.closed {
		return 0, io.ErrClosedPipe
	}
	if r.err != nil {
		return 0, r.err
	}

	for {
		if r.currentReader != nil {
			n, err = r.currentReader.Read(p)
			r.currentBytes += int64(n)
			if err == io.EOF {
				if err := r.finishChunk(); err != nil {
					return n, err
				}
				if n > 0 {
					return n, nil
				}
				continue
			}
			if err != nil {
				return n, r.fail(ioError("read", r.set.Path(r.currentChunk-1), r.currentChunk-1, err))
			}
			return n, nil
		}

		if r.currentChunk >= r.set.Len() {
			return 0, io.EOF
		}

		if err := r.ctx.Err(); err != nil {
			r.err = err
			return 0, err
		}

		r.obs.ChunkStarted()
		r.inChunk = true
		reader, err := r.set.Open(r.ctx, r.currentChunk)
		if err != nil {
			return 0, r.fail(err)
		}
		r.currentReader = reader
		r.currentBytes = 0
		r.currentChunk++
	}
}

func (r *Reader) finishChunk() error {
	err := r.currentReader.Close()
	r.currentReader = nil
	if err != nil {
		return r.fail(ioError("read", r.set.Path(r.currentChunk-1), r.currentChunk-1, err))
	}
	r.inChunk = false
	r.obs.ChunkCompleted(r.currentBytes)
	return nil
}

// fail records err so later reads return it, and reports the chunk that was
// in progress as failed.
func (r *Reader) fail(err error) error {
	r.err = err
	if r.inChunk {
		r.inChunk = false
		r.obs.ChunkFailed()
	}
	return err
}

// Close closes the chunk being read, if any.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	if r.currentReader != nil {
		err := r.currentReader.Close()
		r.currentReader = nil
		if err != nil && !errors.Is(err, io.ErrClosedPipe) {
			return ioError("read", r.set.Path(r.currentChunk-1), r.currentChunk-1, err)
		}
	}
	return nil
}

// Set returns the set being read.
func (r *Reader) Set() *Set {
	return r.set
}
