package fsio

import (
	"context"
	"errors"
	"io"
	"io/fs"

	"gocloud.dev/gcerrors"
)

// ErrIsDir is returned by FS.Size when the path names a directory.
var ErrIsDir = errors.New("fsio: is a directory")

// ErrSchedulerClosed is returned by cooperative operations submitted after
// the scheduler was closed.
var ErrSchedulerClosed = errors.New("fsio: scheduler closed")

// Entry is one directory entry returned by FS.ReadDir.
type Entry struct {
	Name  string
	IsDir bool
}

// FS is the set of operations the chunk engines perform. All filesystem
// mutation done by the engines goes through it.
type FS interface {
	// Open opens name for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Create opens name for writing, creating it or truncating it.
	// The data is only guaranteed to be persisted once Close returns nil.
	Create(ctx context.Context, name string) (io.WriteCloser, error)

	// MkdirAll creates dir and any missing parents.
	MkdirAll(ctx context.Context, dir string) error

	// ReadDir lists the entries of dir, sorted by name.
	ReadDir(ctx context.Context, dir string) ([]Entry, error)

	// Size returns the length of the file name in bytes.
	Size(ctx context.Context, name string) (int64, error)

	// Remove deletes the file name.
	Remove(ctx context.Context, name string) error

	// Rename replaces to with from.
	Rename(ctx context.Context, from, to string) error

	// Join returns the path of name inside dir.
	Join(dir, name string) string

	// Dir returns the parent directory of name.
	Dir(name string) string

	// Base returns the last element of name.
	Base(name string) string
}

// IsNotExist reports whether err indicates a missing file, directory or
// object, for any backend.
func IsNotExist(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, fs.ErrNotExist) || gcerrors.Code(err) == gcerrors.NotFound
}

// ReadFull reads into buf until it is full or r is exhausted. Reaching the
// end of r early is not an error: the returned count is simply shorter than
// len(buf).
func ReadFull(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return n, nil
	}
	return n, err
}

// WriteAll writes all of p to w.
func WriteAll(w io.Writer, p []byte) error {
	n, err := w.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return io.ErrShortWrite
	}
	return nil
}
