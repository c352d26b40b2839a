package chunk

import (
	"context"

	"github.com/ligustah/chunkset/pkg/fsio"
)

// execution holds the backend choice shared by the builders.
type execution struct {
	fsys  fsio.FS
	sched *fsio.Scheduler
}

// direct returns the configured backend, the local filesystem by default.
func (e execution) direct() fsio.FS {
	if e.fsys == nil {
		return fsio.Local()
	}
	return e.fsys
}

// cooperative returns the configured backend wrapped by the configured
// scheduler, or by fsio.DefaultScheduler.
func (e execution) cooperative() fsio.FS {
	sched := e.sched
	if sched == nil {
		sched = fsio.DefaultScheduler()
	}
	return sched.Wrap(e.direct())
}

// Split configures a split. The zero value is not usable; start from
// NewSplit. Setters return a modified copy.
type Split struct {
	opts SplitOptions
	exec execution
}

// NewSplit returns a split with the default chunk and buffer sizes on the
// local filesystem.
func NewSplit() Split {
	return Split{opts: SplitOptions{
		ChunkSize:  DefaultChunkSize,
		BufferSize: DefaultBufferSize,
	}}
}

func (b Split) InFile(name string) Split          { b.opts.InFile = name; return b }
func (b Split) OutDir(dir string) Split           { b.opts.OutDir = dir; return b }
func (b Split) ChunkSize(n int64) Split           { b.opts.ChunkSize = n; return b }
func (b Split) BufferSize(n int64) Split          { b.opts.BufferSize = n; return b }
func (b Split) FS(fsys fsio.FS) Split             { b.exec.fsys = fsys; return b }
func (b Split) Scheduler(s *fsio.Scheduler) Split { b.exec.sched = s; return b }
func (b Split) Observer(o Observer) Split         { b.opts.Observer = o; return b }

// Options validates the configuration and returns it.
func (b Split) Options() (SplitOptions, error) {
	if err := b.opts.Validate(); err != nil {
		return SplitOptions{}, err
	}
	return b.opts, nil
}

// Run splits the input file and blocks until done.
func (b Split) Run(ctx context.Context) (FileMetadata, error) {
	opts, err := b.Options()
	if err != nil {
		return FileMetadata{}, err
	}
	return split(ctx, b.exec.direct(), opts)
}

// Start splits the input file in the background. File operations run on the
// configured scheduler.
func (b Split) Start(ctx context.Context) *Task[FileMetadata] {
	opts, err := b.Options()
	if err != nil {
		return failedTask[FileMetadata](err)
	}
	fsys := b.exec.cooperative()
	return start(ctx, func(ctx context.Context) (FileMetadata, error) {
		return split(ctx, fsys, opts)
	})
}

// Check configures a check. FileSize and TotalChunks must both be set.
type Check struct {
	opts      CheckOptions
	hasSize   bool
	hasChunks bool
	exec      execution
}

// NewCheck returns a check on the local filesystem.
func NewCheck() Check {
	return Check{}
}

func (b Check) InDir(dir string) Check            { b.opts.InDir = dir; return b }
func (b Check) FileSize(n int64) Check            { b.opts.FileSize = n; b.hasSize = true; return b }
func (b Check) TotalChunks(n int) Check           { b.opts.TotalChunks = n; b.hasChunks = true; return b }
func (b Check) FS(fsys fsio.FS) Check             { b.exec.fsys = fsys; return b }
func (b Check) Scheduler(s *fsio.Scheduler) Check { b.exec.sched = s; return b }

// Metadata sets the expected file size and chunk count from the result of
// a split.
func (b Check) Metadata(m FileMetadata) Check {
	return b.FileSize(m.FileSize).TotalChunks(m.TotalChunks)
}

// Options validates the configuration and returns it.
func (b Check) Options() (CheckOptions, error) {
	switch {
	case !b.hasSize:
		return CheckOptions{}, configError("check", "file size is required")
	case !b.hasChunks:
		return CheckOptions{}, configError("check", "total chunks is required")
	}
	if err := b.opts.Validate(); err != nil {
		return CheckOptions{}, err
	}
	return b.opts, nil
}

// Run checks the chunk set and blocks until done.
func (b Check) Run(ctx context.Context) (*CheckResult, error) {
	opts, err := b.Options()
	if err != nil {
		return nil, err
	}
	return check(ctx, b.exec.direct(), opts)
}

// Start checks the chunk set in the background.
func (b Check) Start(ctx context.Context) *Task[*CheckResult] {
	opts, err := b.Options()
	if err != nil {
		return failedTask[*CheckResult](err)
	}
	fsys := b.exec.cooperative()
	return start(ctx, func(ctx context.Context) (*CheckResult, error) {
		return check(ctx, fsys, opts)
	})
}

// Merge configures a merge. Setters return a modified copy.
type Merge struct {
	opts MergeOptions
	exec execution
}

// NewMerge returns a merge with the default buffer size on the local
// filesystem.
func NewMerge() Merge {
	return Merge{opts: MergeOptions{BufferSize: DefaultBufferSize}}
}

func (b Merge) InDir(dir string) Merge            { b.opts.InDir = dir; return b }
func (b Merge) OutFile(name string) Merge         { b.opts.OutFile = name; return b }
func (b Merge) BufferSize(n int64) Merge          { b.opts.BufferSize = n; return b }
func (b Merge) FS(fsys fsio.FS) Merge             { b.exec.fsys = fsys; return b }
func (b Merge) Scheduler(s *fsio.Scheduler) Merge { b.exec.sched = s; return b }
func (b Merge) Observer(o Observer) Merge         { b.opts.Observer = o; return b }

// Options validates the configuration and returns it.
func (b Merge) Options() (MergeOptions, error) {
	if err := b.opts.Validate(); err != nil {
		return MergeOptions{}, err
	}
	return b.opts, nil
}

// Run merges the chunk set and blocks until done.
func (b Merge) Run(ctx context.Context) error {
	opts, err := b.Options()
	if err != nil {
		return err
	}
	return merge(ctx, b.exec.direct(), opts)
}

// Start merges the chunk set in the background.
func (b Merge) Start(ctx context.Context) *Task[struct{}] {
	opts, err := b.Options()
	if err != nil {
		return failedTask[struct{}](err)
	}
	fsys := b.exec.cooperative()
	return start(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, merge(ctx, fsys, opts)
	})
}
