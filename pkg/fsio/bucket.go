package fsio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

// Bucket is the backend for object storage. Paths are object keys; a
// directory is the set of keys sharing the prefix "dir/". Object stores have
// no empty directories, so MkdirAll does nothing and listing a prefix that
// holds no objects yields no entries rather than an error.
type Bucket struct {
	bucket *blob.Bucket
}

// NewBucket returns a backend operating on an already opened bucket. The
// caller keeps ownership of b.
func NewBucket(b *blob.Bucket) *Bucket {
	return &Bucket{bucket: b}
}

// OpenBucket opens the bucket at url (for example "s3://name?region=...",
// "gs://name", "file:///path" or "mem://"). Close releases it.
func OpenBucket(ctx context.Context, url string) (*Bucket, error) {
	b, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fsio: open bucket: %w", err)
	}
	return &Bucket{bucket: b}, nil
}

// Close closes the underlying bucket.
func (b *Bucket) Close() error {
	return b.bucket.Close()
}

func (b *Bucket) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	r, err := b.bucket.NewReader(ctx, key(name), nil)
	if err != nil {
		return nil, wrap("open", name, err)
	}
	return r, nil
}

func (b *Bucket) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	w, err := b.bucket.NewWriter(ctx, key(name), nil)
	if err != nil {
		return nil, wrap("create", name, err)
	}
	return w, nil
}

func (b *Bucket) MkdirAll(ctx context.Context, dir string) error {
	return ctx.Err()
}

func (b *Bucket) ReadDir(ctx context.Context, dir string) ([]Entry, error) {
	prefix := key(dir)
	if prefix != "" {
		prefix += "/"
	}

	var entries []Entry
	iter := b.bucket.List(&blob.ListOptions{Prefix: prefix, Delimiter: "/"})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrap("readdir", dir, err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), "/")
		if name == "" {
			continue
		}
		entries = append(entries, Entry{Name: name, IsDir: obj.IsDir})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (b *Bucket) Size(ctx context.Context, name string) (int64, error) {
	attrs, err := b.bucket.Attributes(ctx, key(name))
	if err == nil {
		return attrs.Size, nil
	}
	if gcerrors.Code(err) == gcerrors.NotFound {
		isDir, lerr := b.isPrefix(ctx, name)
		if lerr != nil {
			return 0, wrap("size", name, lerr)
		}
		if isDir {
			return 0, &fs.PathError{Op: "size", Path: name, Err: ErrIsDir}
		}
	}
	return 0, wrap("size", name, err)
}

// isPrefix reports whether any object lives below name.
func (b *Bucket) isPrefix(ctx context.Context, name string) (bool, error) {
	k := key(name)
	if k == "" {
		return true, nil
	}
	iter := b.bucket.List(&blob.ListOptions{Prefix: k + "/"})
	_, err := iter.Next(ctx)
	if err == io.EOF {
		return false, nil
	}
	return err == nil, err
}

func (b *Bucket) Remove(ctx context.Context, name string) error {
	return wrap("remove", name, b.bucket.Delete(ctx, key(name)))
}

func (b *Bucket) Rename(ctx context.Context, from, to string) error {
	if err := b.bucket.Copy(ctx, key(to), key(from), nil); err != nil {
		return wrap("rename", from, err)
	}
	return wrap("rename", from, b.bucket.Delete(ctx, key(from)))
}

func (b *Bucket) Join(dir, name string) string {
	return path.Join(dir, name)
}

func (b *Bucket) Dir(name string) string {
	return path.Dir(name)
}

func (b *Bucket) Base(name string) string {
	return path.Base(name)
}

// key converts a slash separated path into an object key.
func key(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

// wrap annotates a bucket error with the operation and path. Missing objects
// additionally match fs.ErrNotExist so callers can treat every backend alike.
func wrap(op, name string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if gcerrors.Code(err) == gcerrors.NotFound {
		return fmt.Errorf("fsio: %s %s: %w: %w", op, name, fs.ErrNotExist, err)
	}
	return fmt.Errorf("fsio: %s %s: %w", op, name, err)
}
