package fsio

import (
	"context"
	"io"
	"runtime"
	"sync"
)

// Scheduler executes filesystem operations on a fixed pool of I/O workers.
// It is safe for concurrent use and keeps no state about the operations it
// runs.
type Scheduler struct {
	jobs chan func()
	quit chan struct{}

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewScheduler starts a scheduler with the given number of workers.
// A non-positive count uses GOMAXPROCS.
func NewScheduler(workers int) *Scheduler {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	s := &Scheduler{
		jobs: make(chan func()),
		quit: make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case job := <-s.jobs:
					job()
				case <-s.quit:
					return
				}
			}
		}()
	}

	return s
}

var (
	defaultOnce      sync.Once
	defaultScheduler *Scheduler
)

// DefaultScheduler returns the process wide scheduler, starting it on first
// use. It is never closed.
func DefaultScheduler() *Scheduler {
	defaultOnce.Do(func() {
		defaultScheduler = NewScheduler(0)
	})
	return defaultScheduler
}

// Close stops the workers after they finish the operations they own.
// Operations submitted afterwards fail with ErrSchedulerClosed.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
	s.wg.Wait()
}

// Wrap returns a cooperative view of fsys whose operations run on s.
func (s *Scheduler) Wrap(fsys FS) FS {
	if c, ok := fsys.(*cooperative); ok && c.sched == s {
		return c
	}
	return &cooperative{sched: s, fsys: fsys}
}

// submit hands op to a worker and suspends until it has run. ctx is only
// consulted while waiting for a free worker.
func submit[T any](ctx context.Context, s *Scheduler, op func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	var (
		val  T
		err  error
		done = make(chan struct{})
	)
	job := func() {
		defer close(done)
		val, err = op()
	}

	select {
	case s.jobs <- job:
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-s.quit:
		return zero, ErrSchedulerClosed
	}

	<-done
	return val, err
}

func submitErr(ctx context.Context, s *Scheduler, op func() error) error {
	_, err := submit(ctx, s, func() (struct{}, error) {
		return struct{}{}, op()
	})
	return err
}

type cooperative struct {
	sched *Scheduler
	fsys  FS
}

func (c *cooperative) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	r, err := submit(ctx, c.sched, func() (io.ReadCloser, error) {
		return c.fsys.Open(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return &coopReader{ctx: ctx, sched: c.sched, r: r}, nil
}

func (c *cooperative) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	w, err := submit(ctx, c.sched, func() (io.WriteCloser, error) {
		return c.fsys.Create(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return &coopWriter{ctx: ctx, sched: c.sched, w: w}, nil
}

func (c *cooperative) MkdirAll(ctx context.Context, dir string) error {
	return submitErr(ctx, c.sched, func() error {
		return c.fsys.MkdirAll(ctx, dir)
	})
}

func (c *cooperative) ReadDir(ctx context.Context, dir string) ([]Entry, error) {
	return submit(ctx, c.sched, func() ([]Entry, error) {
		return c.fsys.ReadDir(ctx, dir)
	})
}

func (c *cooperative) Size(ctx context.Context, name string) (int64, error) {
	return submit(ctx, c.sched, func() (int64, error) {
		return c.fsys.Size(ctx, name)
	})
}

func (c *cooperative) Remove(ctx context.Context, name string) error {
	return submitErr(ctx, c.sched, func() error {
		return c.fsys.Remove(ctx, name)
	})
}

func (c *cooperative) Rename(ctx context.Context, from, to string) error {
	return submitErr(ctx, c.sched, func() error {
		return c.fsys.Rename(ctx, from, to)
	})
}

func (c *cooperative) Join(dir, name string) string {
	return c.fsys.Join(dir, name)
}

func (c *cooperative) Dir(name string) string {
	return c.fsys.Dir(name)
}

func (c *cooperative) Base(name string) string {
	return c.fsys.Base(name)
}

type coopReader struct {
	ctx   context.Context
	sched *Scheduler
	r     io.ReadCloser
}

func (r *coopReader) Read(p []byte) (int, error) {
	return submit(r.ctx, r.sched, func() (int, error) {
		return r.r.Read(p)
	})
}

// Close still runs after the context is cancelled so the handle is released.
func (r *coopReader) Close() error {
	err := submitErr(context.WithoutCancel(r.ctx), r.sched, r.r.Close)
	if err == ErrSchedulerClosed {
		return r.r.Close()
	}
	return err
}

type coopWriter struct {
	ctx   context.Context
	sched *Scheduler
	w     io.WriteCloser
}

func (w *coopWriter) Write(p []byte) (int, error) {
	return submit(w.ctx, w.sched, func() (int, error) {
		return w.w.Write(p)
	})
}

func (w *coopWriter) Close() error {
	err := submitErr(context.WithoutCancel(w.ctx), w.sched, w.w.Close)
	if err == ErrSchedulerClosed {
		return w.w.Close()
	}
	return err
}
