// Package config defines configuration for the chunkset CLI.
//
// Configuration can be provided via, in increasing precedence:
//   - YAML configuration file
//   - Environment variables (CHUNKSET_ prefix)
//   - Command-line flags
//
// Sizes are written as strings such as "2MiB" or "500KB".
//
// # Structure
//
//	type Config struct {
//	    Storage    string // bucket URL; empty means the local filesystem
//	    ChunkSize  int64
//	    BufferSize int64
//	    Workers    int    // scheduler workers for -async
//	    Async      bool
//	    Progress   bool
//	    Force      bool
//	}
package config
