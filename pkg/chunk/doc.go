// Package chunk splits a file into a directory of fixed-size chunks, checks
// such a directory against the expected layout, and merges it back into the
// original file.
//
// # Layout
//
// A chunk set is a directory holding one regular file per chunk, named by
// its zero-based decimal index without padding:
//
//	out/0
//	out/1
//	...
//	out/10
//
// Every chunk except the last holds exactly the chunk size; the last holds
// the remainder. An empty input produces a single empty chunk. Chunks are
// always ordered by numeric index, so "10" follows "9".
//
// # Operations
//
// Each operation is configured with a builder whose setters return a copy:
//
//   - [NewSplit]: cut a file into chunks, returning [FileMetadata]
//   - [NewCheck]: verify a directory against a file size and chunk count,
//     returning a [CheckResult]
//   - [NewMerge]: reassemble the chunks into a file
//
// Run executes an operation and blocks. Start executes it in the
// background, routing every file operation through a [fsio.Scheduler], and
// returns a [Task].
//
// [Scan], [OpenReader] and [Clean] work on a chunk set directly.
//
// # Errors
//
// Failures carry a [Kind]. Hard failures are returned as [*Error]; the
// structural findings of a check are returned as data in [CheckResult].
// Use [KindOf] to classify either.
package chunk
