package main

import (
	"fmt"
	"io"
	"os"
)

// Exit codes
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitInvalidArgs      = 2
	ExitStorageError     = 5
	ExitValidationFailed = 7
)

// cli holds the standard streams a command talks to.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(c.run(os.Args[1:]))
}

func (c *cli) run(args []string) int {
	if len(args) == 0 {
		c.printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "split":
		return c.runSplit(cmdArgs)
	case "check":
		return c.runCheck(cmdArgs)
	case "merge":
		return c.runMerge(cmdArgs)
	case "clean":
		return c.runClean(cmdArgs)
	case "help", "-h", "--help":
		c.printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(c.stderr, "Unknown command: %s\n", command)
		c.printUsage()
		return ExitInvalidArgs
	}
}

func (c *cli) printUsage() {
	fmt.Fprintln(c.stderr, `Usage: chunkset <command> [options]

Commands:
  split     Cut a file into a directory of numbered chunks
  check     Verify a chunk directory against the expected size and count
  merge     Reassemble a chunk directory into the original file
  clean     Remove the chunks from a directory

Storage is the local filesystem unless -storage names a bucket URL
(s3://, gs://, file://, mem://).

Run 'chunkset <command> -h' for command-specific help.`)
}
