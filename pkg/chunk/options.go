package chunk

const (
	// DefaultChunkSize is the chunk size used when none is configured.
	DefaultChunkSize int64 = 2 * 1024 * 1024

	// DefaultBufferSize caps the I/O buffer of split and merge. The buffer
	// is never larger than the chunk size.
	DefaultBufferSize int64 = 10 * 1024 * 1024
)

// Observer is notified as split and merge process each chunk.
// internal/progress.Reporter implements it.
type Observer interface {
	ChunkStarted()
	ChunkCompleted(size int64)
	ChunkFailed()
}

type nopObserver struct{}

func (nopObserver) ChunkStarted()        {}
func (nopObserver) ChunkCompleted(int64) {}
func (nopObserver) ChunkFailed()         {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}

// SplitOptions is the validated configuration of one split.
type SplitOptions struct {
	InFile     string
	OutDir     string
	ChunkSize  int64
	BufferSize int64
	Observer   Observer
}

// Validate checks the options without touching the filesystem.
func (o SplitOptions) Validate() error {
	switch {
	case o.InFile == "":
		return configError("split", "input file is required")
	case o.OutDir == "":
		return configError("split", "output directory is required")
	case o.ChunkSize <= 0:
		return configError("split", "chunk size must be positive, got %d", o.ChunkSize)
	case o.BufferSize <= 0:
		return configError("split", "buffer size must be positive, got %d", o.BufferSize)
	}
	return nil
}

// CheckOptions is the validated configuration of one check.
type CheckOptions struct {
	InDir       string
	FileSize    int64
	TotalChunks int
}

// Validate checks the options without touching the filesystem.
func (o CheckOptions) Validate() error {
	switch {
	case o.InDir == "":
		return configError("check", "input directory is required")
	case o.FileSize < 0:
		return configError("check", "file size must not be negative, got %d", o.FileSize)
	case o.TotalChunks < 0:
		return configError("check", "total chunks must not be negative, got %d", o.TotalChunks)
	}
	return nil
}

// MergeOptions is the validated configuration of one merge.
type MergeOptions struct {
	InDir      string
	OutFile    string
	BufferSize int64
	Observer   Observer
}

// Validate checks the options without touching the filesystem.
func (o MergeOptions) Validate() error {
	switch {
	case o.InDir == "":
		return configError("merge", "input directory is required")
	case o.OutFile == "":
		return configError("merge", "output file is required")
	case o.BufferSize <= 0:
		return configError("merge", "buffer size must be positive, got %d", o.BufferSize)
	}
	return nil
}

// bufferLen returns the size of the single buffer an operation streams
// through: the configured buffer size, never more than limit.
func bufferLen(bufferSize, limit int64) int {
	n := bufferSize
	if limit > 0 && limit < n {
		n = limit
	}
	return int(n)
}
