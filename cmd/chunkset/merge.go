package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ligustah/chunkset/internal/progress"
	"github.com/ligustah/chunkset/pkg/chunk"
)

// runMerge reassembles a chunk directory into a file, or streams it to
// stdout with -out -.
func (c *cli) runMerge(args []string) int {
	fs := c.newFlagSet("merge", `Usage: chunkset merge [options]

Reassemble a chunk directory into the original file. The chunk set must be
complete. The output is written to a temporary file and renamed into place,
so an existing file is only replaced by a complete one. Use -out - to write
to stdout instead.`)

	var shared sharedFlags
	shared.register(fs)
	in := fs.String("in", "", "Chunk directory (required)")
	out := fs.String("out", "", "Output file, or - for stdout (required)")
	fs.String("buffer-size", progress.FormatBytes(chunk.DefaultBufferSize), "Maximum I/O buffer size")

	if code, ok := parse(fs, args); !ok {
		return code
	}

	if *in == "" || *out == "" {
		fmt.Fprintln(c.stderr, "Error: -in and -out are required")
		fs.Usage()
		return ExitInvalidArgs
	}

	cfg, err := shared.loadConfig(fs)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	ctx, cancel := c.signalContext()
	defer cancel()

	sess, err := c.openSession(ctx, cfg, shared.verbose)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error opening storage: %v\n", err)
		return ExitStorageError
	}
	defer sess.Close()

	set, err := chunk.Scan(ctx, sess.storage(), *in)
	if err != nil {
		return c.fail(ctx, err)
	}

	var reporter *progress.Reporter
	if cfg.Progress {
		total, err := set.TotalSize(ctx)
		if err != nil {
			return c.fail(ctx, err)
		}
		var chunkSize int64
		if set.Has(0) {
			if chunkSize, err = set.Size(ctx, 0); err != nil {
				return c.fail(ctx, err)
			}
		}
		reporter = c.startReporter(cfg, progress.Options{
			Operation:   "Merging",
			Label:       *in,
			TotalSize:   total,
			TotalChunks: set.Len(),
			ChunkSize:   chunkSize,
		})
	}
	obs := sess.observer("merge", reporter)

	if *out == "-" {
		err = c.mergeToStdout(ctx, set, cfg.BufferSize, obs)
	} else {
		b := chunk.NewMerge().
			FS(sess.fsys).
			InDir(*in).
			OutFile(*out).
			BufferSize(cfg.BufferSize).
			Observer(obs)
		if sess.sched != nil {
			_, err = b.Scheduler(sess.sched).Start(ctx).Wait(ctx)
		} else {
			err = b.Run(ctx)
		}
	}
	if reporter != nil {
		reporter.Stop()
	}
	if err != nil {
		return c.fail(ctx, err)
	}

	if *out != "-" {
		fmt.Fprintf(c.stderr, "[chunkset] Merge complete: %s -> %s\n", *in, *out)
	}
	return ExitSuccess
}

// mergeToStdout streams the set to stdout through one buffer.
func (c *cli) mergeToStdout(ctx context.Context, set *chunk.Set, bufferSize int64, obs chunk.Observer) error {
	r, err := set.NewReader(ctx)
	if err != nil {
		return err
	}
	defer r.Close()
	r.WithObserver(obs)

	buf := make([]byte, bufferSize)
	if _, err := io.CopyBuffer(struct{ io.Writer }{c.stdout}, r, buf); err != nil {
		return fmt.Errorf("write stdout: %w", err)
	}
	return nil
}
