package chunk

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInvalidConfiguration means the parameters were rejected before any I/O.
	KindInvalidConfiguration
	// KindIOFailure means an open, read, write or stat failed on a path.
	KindIOFailure
	// KindChunkCountMismatch means the number of chunks differs from the expected count.
	KindChunkCountMismatch
	// KindMissingChunk means an index in the expected range is absent.
	KindMissingChunk
	// KindUnexpectedChunk means an entry is not part of the expected sequence.
	KindUnexpectedChunk
	// KindSizeMismatch means the chunks do not add up to the expected file size.
	KindSizeMismatch
	// KindChunkSizeMismatch means one chunk has the wrong length.
	KindChunkSizeMismatch
)

var kindCodes = [...]string{
	KindUnknown:              "unknown",
	KindInvalidConfiguration: "invalid_configuration",
	KindIOFailure:            "io",
	KindChunkCountMismatch:   "chunk_count",
	KindMissingChunk:         "missing",
	KindUnexpectedChunk:      "unexpected",
	KindSizeMismatch:         "size",
	KindChunkSizeMismatch:    "chunk_size",
}

// String returns the stable code of the kind, such as "missing" or "size".
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindCodes) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindCodes[k]
}

// ParseKind returns the kind with the given code.
func ParseKind(code string) (Kind, bool) {
	for k, c := range kindCodes {
		if k != int(KindUnknown) && c == code {
			return Kind(k), true
		}
	}
	return KindUnknown, false
}

// MarshalText encodes the kind as its code.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Error is a hard failure of an engine. Use errors.As to inspect it, or
// KindOf for just the kind.
type Error struct {
	Kind  Kind
	Op    string // split, check, merge, scan, read or clean
	Path  string // path the failure relates to, if any
	Index int    // chunk index, or -1
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("chunk: ")
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Index >= 0 {
		fmt.Fprintf(&b, " [chunk %d]", e.Index)
	}
	b.WriteString(": ")
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString(e.Kind.String())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error or *CheckError in err's chain,
// or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var ce *CheckError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func ioError(op, path string, index int, err error) *Error {
	return &Error{Kind: KindIOFailure, Op: op, Path: path, Index: index, Err: err}
}

func configError(op, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidConfiguration, Op: op, Index: -1, Err: fmt.Errorf(format, args...)}
}

func structError(kind Kind, op, path string, index int, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Index: index, Err: fmt.Errorf(format, args...)}
}
