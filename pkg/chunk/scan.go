package chunk

import (
	"context"
	"io"
	"slices"

	"github.com/ligustah/chunkset/pkg/fsio"
)

// Set is the ordered view of the chunk entries found in one directory.
// Indices are sorted by numeric value, never by name.
type Set struct {
	fsys    fsio.FS
	dir     string
	indices []int
	invalid []string
}

// Scan lists dir and classifies its entries. It does not validate the set;
// see Set.Missing and Set.Invalid.
func Scan(ctx context.Context, fsys fsio.FS, dir string) (*Set, error) {
	return scan(ctx, "scan", fsys, dir)
}

func scan(ctx context.Context, op string, fsys fsio.FS, dir string) (*Set, error) {
	entries, err := fsys.ReadDir(ctx, dir)
	if err != nil {
		return nil, ioError(op, dir, -1, err)
	}

	s := &Set{fsys: fsys, dir: dir}
	for _, e := range entries {
		if idx, ok := ParseIndex(e.Name); ok && !e.IsDir {
			s.indices = append(s.indices, idx)
			continue
		}
		s.invalid = append(s.invalid, e.Name)
	}
	slices.Sort(s.indices)
	slices.Sort(s.invalid)
	return s, nil
}

// Dir returns the scanned directory.
func (s *Set) Dir() string {
	return s.dir
}

// Len returns the number of chunk entries.
func (s *Set) Len() int {
	return len(s.indices)
}

// Indices returns the chunk indices in ascending order.
func (s *Set) Indices() []int {
	return slices.Clone(s.indices)
}

// Invalid returns the names of entries that are not chunks: names that are
// not canonical indices, and subdirectories.
func (s *Set) Invalid() []string {
	return slices.Clone(s.invalid)
}

// Has reports whether chunk i is present.
func (s *Set) Has(i int) bool {
	_, found := slices.BinarySearch(s.indices, i)
	return found
}

// Max returns the highest index present, or -1 for an empty set.
func (s *Set) Max() int {
	if len(s.indices) == 0 {
		return -1
	}
	return s.indices[len(s.indices)-1]
}

// Missing returns the indices in [0, n) that are absent.
func (s *Set) Missing(n int) []int {
	var missing []int
	for i := 0; i < n; i++ {
		if !s.Has(i) {
			missing = append(missing, i)
		}
	}
	return missing
}

// Above returns the present indices that are n or greater.
func (s *Set) Above(n int) []int {
	pos, _ := slices.BinarySearch(s.indices, n)
	return slices.Clone(s.indices[pos:])
}

// Path returns the path of chunk i.
func (s *Set) Path(i int) string {
	return s.fsys.Join(s.dir, Name(i))
}

// Size returns the length of chunk i.
func (s *Set) Size(ctx context.Context, i int) (int64, error) {
	size, err := s.fsys.Size(ctx, s.Path(i))
	if err != nil {
		return 0, ioError("scan", s.Path(i), i, err)
	}
	return size, nil
}

// Open opens chunk i for reading.
func (s *Set) Open(ctx context.Context, i int) (io.ReadCloser, error) {
	if !s.Has(i) {
		return nil, structError(KindMissingChunk, "read", s.dir, i, "chunk %d is not in the set", i)
	}
	r, err := s.fsys.Open(ctx, s.Path(i))
	if err != nil {
		return nil, ioError("read", s.Path(i), i, err)
	}
	return r, nil
}

// TotalSize sums the lengths of every chunk present.
func (s *Set) TotalSize(ctx context.Context) (int64, error) {
	var total int64
	for _, i := range s.indices {
		size, err := s.Size(ctx, i)
		if err != nil {
			return 0, err
		}
		total += size
	}
	return total, nil
}

// validate fails unless the set is exactly {0, ..., Max()} with no other
// entries. It is the precondition for streaming the set in order.
func (s *Set) validate(op string) error {
	if len(s.invalid) > 0 {
		return structError(KindUnexpectedChunk, op, s.fsys.Join(s.dir, s.invalid[0]), -1,
			"unexpected entry %q", s.invalid[0])
	}
	if len(s.indices) == 0 {
		return structError(KindMissingChunk, op, s.dir, 0, "no chunks found")
	}
	for pos, idx := range s.indices {
		if idx != pos {
			return structError(KindMissingChunk, op, s.dir, pos, "missing chunk %d", pos)
		}
	}
	return nil
}
