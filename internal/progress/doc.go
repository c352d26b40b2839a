// Package progress reports the progress of a split or merge.
//
// The Reporter counts chunks as the engine notifies it and prints a status
// line to stderr. When the output is a terminal the status is rewritten in
// place; otherwise only the header and the final summary are printed.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    Operation:   "Splitting",
//	    Label:       "backup.tar",
//	    TotalSize:   meta.FileSize,
//	    TotalChunks: meta.TotalChunks,
//	    ChunkSize:   meta.ChunkSize,
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	chunk.NewSplit().Observer(reporter)...
//
// # Output Format
//
//	[chunkset] Splitting: backup.tar
//	[chunkset] Total size: 2.5 GiB | Chunks: 1280 x 2.0 MiB
//	[chunkset] Progress: 45.2% | 1.1 GiB / 2.5 GiB | Speed: 412 MiB/s | ETA: 3s
//	[chunkset] Chunks: 579 completed | 1 in-progress | 700 pending
package progress
