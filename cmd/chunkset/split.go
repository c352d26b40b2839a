package main

import (
	"encoding/json"
	"fmt"

	"github.com/ligustah/chunkset/internal/progress"
	"github.com/ligustah/chunkset/pkg/chunk"
)

// runSplit cuts a file into a directory of numbered chunks and prints the
// resulting metadata, which check needs later.
func (c *cli) runSplit(args []string) int {
	fs := c.newFlagSet("split", `Usage: chunkset split [options]

Cut a file into a directory of numbered chunks. Existing entries in the
output directory are kept; run 'chunkset clean' first to start fresh.`)

	var shared sharedFlags
	shared.register(fs)
	in := fs.String("in", "", "Input file (required)")
	out := fs.String("out", "", "Output directory (required)")
	fs.String("chunk-size", progress.FormatBytes(chunk.DefaultChunkSize), "Size of each chunk")
	fs.String("buffer-size", progress.FormatBytes(chunk.DefaultBufferSize), "Maximum I/O buffer size")
	asJSON := fs.Bool("json", false, "Print the metadata as JSON")

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

	size, err := sess.storage().Size(ctx, *in)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return ExitStorageError
	}
	expected := chunk.NewFileMetadata(size, cfg.ChunkSize)

	reporter := c.startReporter(cfg, progress.Options{
		Operation:   "Splitting",
		Label:       *in,
		TotalSize:   expected.FileSize,
		TotalChunks: expected.TotalChunks,
		ChunkSize:   expected.ChunkSize,
	})

	b := chunk.NewSplit().
		FS(sess.fsys).
		InFile(*in).
		OutDir(*out).
		ChunkSize(cfg.ChunkSize).
		BufferSize(cfg.BufferSize).
		Observer(sess.observer("split", reporter))

	var meta chunk.FileMetadata
	if sess.sched != nil {
		meta, err = b.Scheduler(sess.sched).Start(ctx).Wait(ctx)
	} else {
		meta, err = b.Run(ctx)
	}
	if reporter != nil {
		reporter.Stop()
	}
	if err != nil {
		return c.fail(ctx, err)
	}

	if *asJSON {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(meta); err != nil {
			return c.fail(ctx, err)
		}
	} else {
		fmt.Fprintf(c.stdout, "File: %s\n", *in)
		fmt.Fprintf(c.stdout, "File size: %d bytes\n", meta.FileSize)
		fmt.Fprintf(c.stdout, "Chunks: %d x %s\n", meta.TotalChunks, progress.FormatBytes(meta.ChunkSize))
	}

	fmt.Fprintf(c.stderr, "[chunkset] Split complete: %s -> %s\n", *in, *out)
	return ExitSuccess
}
