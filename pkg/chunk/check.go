package chunk

import (
	"context"
	"fmt"

	"github.com/ligustah/chunkset/pkg/fsio"
)

// CheckResult is the outcome of a check. Structural problems are reported
// here; only I/O failures are returned as errors.
type CheckResult struct {
	Success bool        `json:"success"`
	Error   *CheckError `json:"error,omitempty"`
}

// Err returns the failure as an error, or nil on success.
func (r *CheckResult) Err() error {
	if r == nil || r.Success || r.Error == nil {
		return nil
	}
	return r.Error
}

// CheckError describes the first structural problem found in a chunk set.
type CheckError struct {
	Kind    Kind   `json:"kind"`
	Index   int    `json:"index"`             // offending chunk, or -1
	Name    string `json:"name,omitempty"`    // offending entry name for KindUnexpectedChunk
	Missing []int  `json:"missing,omitempty"` // every absent index for KindMissingChunk
	Message string `json:"message"`
}

func (e *CheckError) Error() string {
	return "chunk: check: " + e.Message
}

func checkFailed(kind Kind, index int, format string, args ...any) *CheckResult {
	return &CheckResult{Error: &CheckError{
		Kind:    kind,
		Index:   index,
		Message: fmt.Sprintf(format, args...),
	}}
}

func check(ctx context.Context, fsys fsio.FS, opts CheckOptions) (*CheckResult, error) {
	s, err := scan(ctx, "check", fsys, opts.InDir)
	if err != nil {
		return nil, err
	}

	if invalid := s.Invalid(); len(invalid) > 0 {
		res := checkFailed(KindUnexpectedChunk, -1, "unexpected entry %q in %s", invalid[0], opts.InDir)
		res.Error.Name = invalid[0]
		return res, nil
	}

	want := opts.TotalChunks
	if want == 0 {
		return checkFailed(KindChunkCountMismatch, -1,
			"expected 0 chunks but a chunk set holds at least one, found %d", s.Len()), nil
	}

	if s.Len() != want {
		return checkCount(ctx, s, opts)
	}

	if missing := s.Missing(want); len(missing) > 0 {
		res := checkFailed(KindMissingChunk, missing[0],
			"missing chunk %d, found out-of-range chunks %v", missing[0], s.Above(want))
		res.Error.Missing = missing
		return res, nil
	}

	sizes := make([]int64, want)
	var total int64
	for i := range sizes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		size, err := s.Size(ctx, i)
		if err != nil {
			return nil, err
		}
		sizes[i] = size
		total += size
	}

	if res := checkChunkSizes(sizes, opts.FileSize); res != nil {
		return res, nil
	}

	if total != opts.FileSize {
		return checkFailed(KindSizeMismatch, -1,
			"chunks add up to %d bytes, expected %d", total, opts.FileSize), nil
	}

	return &CheckResult{Success: true}, nil
}

// checkCount classifies a set whose chunk count differs from the expected
// count. Absent bytes are reported as missing chunks; a set that is complete
// for opts.FileSize but disagrees with opts.TotalChunks is a count mismatch.
func checkCount(ctx context.Context, s *Set, opts CheckOptions) (*CheckResult, error) {
	want := opts.TotalChunks
	countMismatch := checkFailed(KindChunkCountMismatch, -1,
		"expected %d chunks, found %d", want, s.Len())

	if s.Len() > want {
		return countMismatch, nil
	}

	// Fewer chunks than expected, so at least one index below want is absent.
	missing := s.Missing(want)

	missingChunk := checkFailed(KindMissingChunk, missing[0],
		"missing chunk %d of %d", missing[0], want)
	missingChunk.Error.Missing = missing

	if s.Len() == 0 || missing[0] < s.Max() {
		return missingChunk, nil
	}

	total, err := s.TotalSize(ctx)
	if err != nil {
		return nil, err
	}
	if total != opts.FileSize {
		return missingChunk, nil
	}
	return countMismatch, nil
}

// checkChunkSizes verifies that every chunk but the last has the chunk size
// implied by fileSize and that the last is neither empty nor longer than the
// others. It returns nil when the lengths are consistent.
func checkChunkSizes(sizes []int64, fileSize int64) *CheckResult {
	n := len(sizes)
	if n < 2 {
		return nil
	}

	ref := referenceSize(sizes, fileSize)
	for i, size := range sizes[:n-1] {
		if size != ref {
			return checkFailed(KindChunkSizeMismatch, i,
				"chunk %d holds %d bytes, expected %d", i, size, ref)
		}
	}

	last := sizes[n-1]
	switch {
	case last == 0:
		return checkFailed(KindChunkSizeMismatch, n-1, "last chunk %d is empty", n-1)
	case last > ref && n == 2:
		return checkFailed(KindChunkSizeMismatch, 0,
			"chunk 0 holds %d bytes, less than the last chunk's %d", ref, last)
	case last > ref:
		return checkFailed(KindChunkSizeMismatch, n-1,
			"last chunk %d holds %d bytes, more than the chunk size %d", n-1, last, ref)
	}
	return nil
}

// referenceSize infers the length every chunk but the last must have. The
// interior chunks share fileSize minus the last chunk evenly when that
// division is exact and at least as long as the last chunk. Otherwise it is
// the most common interior length that cuts fileSize into len(sizes) chunks,
// or failing that the most common interior length.
func referenceSize(sizes []int64, fileSize int64) int64 {
	n := int64(len(sizes))
	last := sizes[n-1]
	if rest := fileSize - last; rest > 0 && rest%(n-1) == 0 && rest/(n-1) >= last {
		return rest / (n - 1)
	}

	interior := sizes[:n-1]
	var fitting []int64
	for _, size := range interior {
		if size > 0 && (fileSize+size-1)/size == n {
			fitting = append(fitting, size)
		}
	}
	if len(fitting) > 0 {
		return mostCommon(fitting)
	}
	return mostCommon(interior)
}

// mostCommon returns the most frequent value, preferring the larger one on a
// tie.
func mostCommon(sizes []int64) int64 {
	counts := make(map[int64]int, 2)
	var ref int64
	best := 0
	for _, size := range sizes {
		counts[size]++
		c := counts[size]
		if c > best || (c == best && size > ref) {
			ref, best = size, c
		}
	}
	return ref
}
