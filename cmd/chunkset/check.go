package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ligustah/chunkset/pkg/chunk"
)

// runCheck verifies a chunk directory against the expected file size and
// chunk count without reading any chunk data.
func (c *cli) runCheck(args []string) int {
	fs := c.newFlagSet("check", `Usage: chunkset check [options]

Verify that a chunk directory holds exactly the expected chunks with
consistent sizes. Only lengths are inspected, never contents.

The expected values come from -size and -chunks, or from -metadata, the
JSON printed by 'chunkset split -json'.`)

	var shared sharedFlags
	shared.register(fs)
	in := fs.String("in", "", "Chunk directory (required)")
	size := fs.Int64("size", -1, "Expected file size in bytes")
	chunks := fs.Int("chunks", -1, "Expected number of chunks")
	metadata := fs.String("metadata", "", "Local JSON file with the expected metadata")
	asJSON := fs.Bool("json", false, "Print the result as JSON")

	if code, ok := parse(fs, args); !ok {
		return code
	}

	if *in == "" {
		fmt.Fprintln(c.stderr, "Error: -in is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	b := chunk.NewCheck().InDir(*in)
	switch {
	case *metadata != "":
		meta, err := readMetadata(*metadata)
		if err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return ExitInvalidArgs
		}
		b = b.Metadata(meta)
	case *size >= 0 && *chunks >= 0:
		b = b.FileSize(*size).TotalChunks(*chunks)
	default:
		fmt.Fprintln(c.stderr, "Error: -size and -chunks, or -metadata, are required")
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

	b = b.FS(sess.fsys)
	var result *chunk.CheckResult
	if sess.sched != nil {
		result, err = b.Scheduler(sess.sched).Start(ctx).Wait(ctx)
	} else {
		result, err = b.Run(ctx)
	}
	if err != nil {
		return c.fail(ctx, err)
	}
	sess.log.Debug("check finished", "success", result.Success)

	if *asJSON {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return c.fail(ctx, err)
		}
	} else {
		opts, _ := b.Options()
		fmt.Fprintf(c.stdout, "Directory: %s\n", *in)
		fmt.Fprintf(c.stdout, "Expected: %d bytes in %d chunks\n", opts.FileSize, opts.TotalChunks)
		if result.Success {
			fmt.Fprintln(c.stdout, "Status: VALID")
		} else {
			fmt.Fprintln(c.stdout, "Status: INVALID")
			fmt.Fprintf(c.stdout, "Reason: %s\n", result.Error.Kind)
			if result.Error.Index >= 0 {
				fmt.Fprintf(c.stdout, "Chunk: %d\n", result.Error.Index)
			}
			if len(result.Error.Missing) > 0 {
				fmt.Fprintf(c.stdout, "Missing chunks: %v\n", result.Error.Missing)
			}
			fmt.Fprintf(c.stdout, "Error: %s\n", result.Error.Message)
		}
	}

	if !result.Success {
		return ExitValidationFailed
	}
	return ExitSuccess
}

// readMetadata loads split metadata written with 'chunkset split -json'.
func readMetadata(path string) (chunk.FileMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return chunk.FileMetadata{}, fmt.Errorf("read metadata: %w", err)
	}
	var meta chunk.FileMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return chunk.FileMetadata{}, fmt.Errorf("parse metadata: %w", err)
	}
	return meta, nil
}
