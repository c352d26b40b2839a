// Package fsio defines the filesystem operations the chunk engines issue and
// the backends that execute them.
//
// Every engine in package chunk is written once against [FS]. Which backend
// runs the operations, and whether the caller blocks on them, is chosen when
// the engine is invoked.
//
// # Backends
//
//   - [Local]: the host filesystem through package os.
//   - [Bucket]: any gocloud.dev/blob bucket (file://, mem://, s3://, gs://).
//     Directories are key prefixes separated by "/".
//
// # Cooperative execution
//
// [Scheduler] runs operations on a fixed pool of I/O workers. [Scheduler.Wrap]
// turns any backend into a cooperative one: each call, including every Read,
// Write and Close on the handles it returns, is submitted to the pool and the
// caller suspends until a worker has finished it. Calls from unrelated engine
// invocations interleave on the same pool.
//
// A call is only cancelled before it is handed to a worker. Once a worker owns
// it, it runs to completion, so a caller's buffer is never touched after the
// call has returned.
//
//	sched := fsio.NewScheduler(4)
//	defer sched.Close()
//
//	fsys := sched.Wrap(fsio.Local())
//	r, err := fsys.Open(ctx, "/data/chunks/0")
package fsio
