package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/ligustah/chunkset/pkg/chunk"
)

// runClean removes the chunks from a directory, leaving any other entries.
// By default prompts for confirmation unless -force is specified.
func (c *cli) runClean(args []string) int {
	fs := c.newFlagSet("clean", `Usage: chunkset clean [options]

Remove every chunk from a directory. Entries that are not chunks, and the
directory itself, are left in place.`)

	var shared sharedFlags
	shared.register(fs)
	in := fs.String("in", "", "Chunk directory (required)")
	fs.Bool("force", false, "Skip confirmation prompt")

	if code, ok := parse(fs, args); !ok {
		return code
	}

	if *in == "" {
		fmt.Fprintln(c.stderr, "Error: -in is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	cfg, err := shared.loadConfig(fs)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	if !cfg.Force {
		fmt.Fprintf(c.stderr, "Remove all chunks from %s? [y/N]: ", *in)
		reader := bufio.NewReader(c.stdin)
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(c.stderr, "Cancelled")
			return ExitSuccess
		}
	}

	ctx, cancel := c.signalContext()
	defer cancel()

	sess, err := c.openSession(ctx, cfg, shared.verbose)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error opening storage: %v\n", err)
		return ExitStorageError
	}
	defer sess.Close()

	n, err := chunk.Clean(ctx, sess.storage(), *in)
	if err != nil {
		return c.fail(ctx, err)
	}

	fmt.Fprintf(c.stderr, "[chunkset] Removed %d chunks from %s\n", n, *in)
	return ExitSuccess
}
