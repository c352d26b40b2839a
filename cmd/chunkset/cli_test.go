package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ligustah/chunkset/internal/testutils"
	"github.com/ligustah/chunkset/pkg/chunk"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := &cli{stdin: strings.NewReader(stdin), stdout: &stdout, stderr: &stderr}
	code := c.run(args)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		args []string
		code int
	}{
		{nil, ExitInvalidArgs},
		{[]string{"help"}, ExitSuccess},
		{[]string{"-h"}, ExitSuccess},
		{[]string{"upload"}, ExitInvalidArgs},
		{[]string{"split", "-h"}, ExitSuccess},
	}

	for _, tt := range tests {
		res := runCLI(t, "", tt.args...)
		if res.code != tt.code {
			t.Errorf("run(%v) = %d, want %d\n%s", tt.args, res.code, tt.code, res.stderr)
		}
		if !strings.Contains(res.stderr, "Usage: chunkset") {
			t.Errorf("run(%v) printed no usage", tt.args)
		}
	}
}

func TestSplitCheckMergeClean(t *testing.T) {
	for _, mode := range [][]string{nil, {"-async", "-workers", "2"}} {
		t.Run(fmt.Sprintf("args=%v", mode), func(t *testing.T) {
			dir := t.TempDir()
			data := testutils.GenerateTestData(t, 10000)
			in := testutils.WriteTestFile(t, dir, "input.bin", data)
			chunks := filepath.Join(dir, "chunks")

			args := append([]string{"split", "-in", in, "-out", chunks, "-chunk-size", "4KiB", "-json"}, mode...)
			res := runCLI(t, "", args...)
			if res.code != ExitSuccess {
				t.Fatalf("split = %d\n%s", res.code, res.stderr)
			}
			var meta chunk.FileMetadata
			if err := json.Unmarshal([]byte(res.stdout), &meta); err != nil {
				t.Fatalf("split output: %v\n%s", err, res.stdout)
			}
			if want := (chunk.FileMetadata{FileSize: 10000, TotalChunks: 3, ChunkSize: 4096}); meta != want {
				t.Fatalf("metadata = %+v, want %+v", meta, want)
			}
			metaPath := testutils.WriteTestFile(t, dir, "meta.json", []byte(res.stdout))

			args = append([]string{"check", "-in", chunks, "-size", "10000", "-chunks", "3"}, mode...)
			res = runCLI(t, "", args...)
			if res.code != ExitSuccess || !strings.Contains(res.stdout, "Status: VALID") {
				t.Fatalf("check = %d\n%s%s", res.code, res.stdout, res.stderr)
			}

			args = append([]string{"check", "-in", chunks, "-metadata", metaPath}, mode...)
			if res = runCLI(t, "", args...); res.code != ExitSuccess {
				t.Fatalf("check -metadata = %d\n%s%s", res.code, res.stdout, res.stderr)
			}

			out := filepath.Join(dir, "restored", "output.bin")
			args = append([]string{"merge", "-in", chunks, "-out", out}, mode...)
			if res = runCLI(t, "", args...); res.code != ExitSuccess {
				t.Fatalf("merge = %d\n%s", res.code, res.stderr)
			}
			got, err := os.ReadFile(out)
			if err != nil {
				t.Fatalf("read output: %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Error("merged file differs from input")
			}

			args = append([]string{"merge", "-in", chunks, "-out", "-"}, mode...)
			if res = runCLI(t, "", args...); res.code != ExitSuccess {
				t.Fatalf("merge to stdout = %d\n%s", res.code, res.stderr)
			}
			if res.stdout != string(data) {
				t.Errorf("stdout = %d bytes, want %d", len(res.stdout), len(data))
			}

			args = append([]string{"clean", "-in", chunks, "-force"}, mode...)
			res = runCLI(t, "", args...)
			if res.code != ExitSuccess || !strings.Contains(res.stderr, "Removed 3 chunks") {
				t.Fatalf("clean = %d\n%s", res.code, res.stderr)
			}
			entries, err := os.ReadDir(chunks)
			if err != nil || len(entries) != 0 {
				t.Errorf("chunk directory after clean: %v, %v", entries, err)
			}
		})
	}
}

func TestCheckFailure(t *testing.T) {
	dir := t.TempDir()
	in := testutils.WriteTestFile(t, dir, "input.bin", testutils.GenerateTestData(t, 10))
	chunks := filepath.Join(dir, "chunks")

	if res := runCLI(t, "", "split", "-in", in, "-out", chunks, "-chunk-size", "4"); res.code != ExitSuccess {
		t.Fatalf("split = %d\n%s", res.code, res.stderr)
	}
	if err := os.Remove(filepath.Join(chunks, "1")); err != nil {
		t.Fatalf("remove chunk: %v", err)
	}

	res := runCLI(t, "", "check", "-in", chunks, "-size", "10", "-chunks", "3")
	if res.code != ExitValidationFailed {
		t.Fatalf("check = %d, want %d\n%s", res.code, ExitValidationFailed, res.stderr)
	}
	for _, want := range []string{"Status: INVALID", "Reason: missing", "Chunk: 1", "Missing chunks: [1]"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("output missing %q:\n%s", want, res.stdout)
		}
	}

	res = runCLI(t, "", "check", "-in", chunks, "-size", "10", "-chunks", "3", "-json")
	if res.code != ExitValidationFailed {
		t.Errorf("check -json = %d, want %d", res.code, ExitValidationFailed)
	}
	var raw struct {
		Success bool `json:"success"`
		Error   struct {
			Kind    string `json:"kind"`
			Index   int    `json:"index"`
			Missing []int  `json:"missing"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &raw); err != nil {
		t.Fatalf("check -json output: %v\n%s", err, res.stdout)
	}
	if raw.Success || raw.Error.Kind != "missing" || raw.Error.Index != 1 {
		t.Errorf("check -json = %+v", raw)
	}

	res = runCLI(t, "", "merge", "-in", chunks, "-out", filepath.Join(dir, "out.bin"))
	if res.code != ExitValidationFailed {
		t.Errorf("merge = %d, want %d\n%s", res.code, ExitValidationFailed, res.stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "out.bin")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output created by failed merge: %v", err)
	}
}

func TestInvalidArguments(t *testing.T) {
	dir := t.TempDir()
	in := testutils.WriteTestFile(t, dir, "input.bin", []byte("data"))

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"split without input", []string{"split", "-out", dir}, ExitInvalidArgs},
		{"split bad chunk size", []string{"split", "-in", in, "-out", dir, "-chunk-size", "lots"}, ExitInvalidArgs},
		{"split zero chunk size", []string{"split", "-in", in, "-out", dir, "-chunk-size", "0"}, ExitInvalidArgs},
		{"split unknown flag", []string{"split", "-in", in, "-out", dir, "-shards", "3"}, ExitInvalidArgs},
		{"split extra argument", []string{"split", "-in", in, "-out", dir, "extra"}, ExitInvalidArgs},
		{"split missing input", []string{"split", "-in", filepath.Join(dir, "nope"), "-out", dir}, ExitStorageError},
		{"check without expectations", []string{"check", "-in", dir}, ExitInvalidArgs},
		{"check bad metadata", []string{"check", "-in", dir, "-metadata", in}, ExitInvalidArgs},
		{"check missing directory", []string{"check", "-in", filepath.Join(dir, "nope"), "-size", "1", "-chunks", "1"}, ExitStorageError},
		{"merge without output", []string{"merge", "-in", dir}, ExitInvalidArgs},
		{"merge zero workers", []string{"merge", "-in", dir, "-out", "x", "-async", "-workers", "0"}, ExitInvalidArgs},
		{"clean without input", []string{"clean", "-force"}, ExitInvalidArgs},
		{"bad storage", []string{"check", "-in", dir, "-size", "1", "-chunks", "1", "-storage", "nosuch://bucket"}, ExitStorageError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, "", tt.args...)
			if res.code != tt.code {
				t.Errorf("exit = %d, want %d\n%s", res.code, tt.code, res.stderr)
			}
		})
	}
}

func TestBucketStorage(t *testing.T) {
	dir := t.TempDir()
	data := testutils.GenerateTestData(t, 5000)
	testutils.WriteTestFile(t, dir, "uploads/input.bin", data)
	storage := "file://" + filepath.ToSlash(dir)

	steps := [][]string{
		{"split", "-storage", storage, "-in", "uploads/input.bin", "-out", "uploads/chunks", "-chunk-size", "1KiB"},
		{"check", "-storage", storage, "-in", "uploads/chunks", "-size", "5000", "-chunks", "5"},
		{"merge", "-storage", storage, "-async", "-in", "uploads/chunks", "-out", "restored/output.bin"},
	}
	for _, args := range steps {
		if res := runCLI(t, "", args...); res.code != ExitSuccess {
			t.Fatalf("%s = %d\n%s%s", args[0], res.code, res.stdout, res.stderr)
		}
	}

	got, err := os.ReadFile(filepath.Join(dir, "restored", "output.bin"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("merged object differs from input")
	}
}

func TestCleanPrompt(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteTestFile(t, dir, "0", []byte("a"))

	res := runCLI(t, "n\n", "clean", "-in", dir)
	if res.code != ExitSuccess || !strings.Contains(res.stderr, "Cancelled") {
		t.Fatalf("clean = %d\n%s", res.code, res.stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "0")); err != nil {
		t.Errorf("chunk removed after declining: %v", err)
	}

	res = runCLI(t, "yes\n", "clean", "-in", dir)
	if res.code != ExitSuccess || !strings.Contains(res.stderr, "Removed 1 chunks") {
		t.Fatalf("clean = %d\n%s", res.code, res.stderr)
	}
}

func TestVerboseAndProgress(t *testing.T) {
	dir := t.TempDir()
	in := testutils.WriteTestFile(t, dir, "input.bin", testutils.GenerateTestData(t, 10))

	res := runCLI(t, "", "split", "-in", in, "-out", filepath.Join(dir, "chunks"), "-chunk-size", "4", "-v", "-progress")
	if res.code != ExitSuccess {
		t.Fatalf("split = %d\n%s", res.code, res.stderr)
	}
	for _, want := range []string{
		"msg=\"session opened\"",
		"msg=\"chunk completed\" op=split chunk=2 bytes=2",
		"[chunkset] Splitting: " + in,
		"Chunks: 3 completed | 0 failed | 3 total",
	} {
		if !strings.Contains(res.stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, res.stderr)
		}
	}
}

func TestMergeProgressUsesChunkSize(t *testing.T) {
	dir := t.TempDir()
	in := testutils.WriteTestFile(t, dir, "input.bin", testutils.GenerateTestData(t, 5000))
	chunks := filepath.Join(dir, "chunks")

	if res := runCLI(t, "", "split", "-in", in, "-out", chunks, "-chunk-size", "1KiB"); res.code != ExitSuccess {
		t.Fatalf("split = %d\n%s", res.code, res.stderr)
	}

	res := runCLI(t, "", "merge", "-in", chunks, "-out", filepath.Join(dir, "out.bin"), "-progress")
	if res.code != ExitSuccess {
		t.Fatalf("merge = %d\n%s", res.code, res.stderr)
	}
	if want := "Chunks: 5 x 1.0 KiB"; !strings.Contains(res.stderr, want) {
		t.Errorf("stderr missing %q:\n%s", want, res.stderr)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "chunk_size: 8KiB\nbuffer_size: 64KiB\nworkers: 3\n"
	if err := os.WriteFile(configPath, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CHUNKSET_BUFFER_SIZE", "32KiB")
	t.Setenv("CHUNKSET_WORKERS", "5")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var shared sharedFlags
	shared.register(fs)
	fs.String("chunk-size", "", "")
	fs.String("buffer-size", "", "")
	if err := fs.Parse([]string{"-config", configPath, "-workers", "7", "-async"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg, err := shared.loadConfig(fs)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.ChunkSize != 8*1024 {
		t.Errorf("ChunkSize = %d, want the file's 8KiB", cfg.ChunkSize)
	}
	if cfg.BufferSize != 32*1024 {
		t.Errorf("BufferSize = %d, want the environment's 32KiB", cfg.BufferSize)
	}
	if cfg.Workers != 7 || !cfg.Async {
		t.Errorf("Workers = %d, Async = %v, want the flags' 7, true", cfg.Workers, cfg.Async)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{&chunk.Error{Kind: chunk.KindInvalidConfiguration}, ExitInvalidArgs},
		{&chunk.Error{Kind: chunk.KindIOFailure}, ExitStorageError},
		{fmt.Errorf("wrapped: %w", &chunk.Error{Kind: chunk.KindMissingChunk}), ExitValidationFailed},
		{&chunk.Error{Kind: chunk.KindUnexpectedChunk}, ExitValidationFailed},
		{errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.code {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.code)
		}
	}
}
