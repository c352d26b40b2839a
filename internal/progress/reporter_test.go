package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1024 * 1024, "1.0 MiB"},
		{256 * 1024 * 1024, "256 MiB"},
		{1024 * 1024 * 1024, "1.0 GiB"},
		{1024 * 1024 * 1024 * 1024, "1.0 TiB"},
		{2.5 * 1024 * 1024 * 1024 * 1024, "2.5 TiB"},
	}

	for _, tt := range tests {
		result := FormatBytes(tt.input)
		if result != tt.expected {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"100", 100},
		{"100B", 100},
		{"1KiB", 1024},
		{"1.5KiB", 1536},
		{"256MiB", 256 * 1024 * 1024},
		{"1GiB", 1024 * 1024 * 1024},
		{"1TiB", 1024 * 1024 * 1024 * 1024},
		// SI units
		{"1KB", 1000},
		{"1MB", 1000 * 1000},
		{"1GB", 1000 * 1000 * 1000},
	}

	for _, tt := range tests {
		result, err := ParseBytes(tt.input)
		if err != nil {
			t.Errorf("ParseBytes(%q): %v", tt.input, err)
			continue
		}
		if result != tt.expected {
			t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, result, tt.expected)
		}
	}
}

func TestParseBytesInvalid(t *testing.T) {
	_, err := ParseBytes("invalid")
	if err == nil {
		t.Error("expected error for invalid input")
	}
}

func TestParseBytesTooLarge(t *testing.T) {
	if _, err := ParseBytes("100EiB"); err == nil {
		t.Error("expected error for a size beyond int64")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{0, "0s"},
		{42 * time.Second, "42s"},
		{2*time.Minute + 5*time.Second, "2m 5s"},
		{3*time.Hour + 4*time.Minute + 5*time.Second, "3h 4m 5s"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.input); got != tt.expected {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestReporterChunkTracking(t *testing.T) {
	reporter := NewReporter(Options{
		TotalSize:      1024,
		TotalChunks:    4,
		UpdateInterval: 100 * time.Millisecond,
	})

	// Test chunk tracking without starting the reporter
	reporter.ChunkStarted()
	if reporter.inProgress.Load() != 1 {
		t.Errorf("expected 1 in-progress, got %d", reporter.inProgress.Load())
	}

	reporter.ChunkCompleted(256)
	if reporter.inProgress.Load() != 0 {
		t.Errorf("expected 0 in-progress after complete, got %d", reporter.inProgress.Load())
	}
	if reporter.completedChunks.Load() != 1 {
		t.Errorf("expected 1 completed, got %d", reporter.completedChunks.Load())
	}
	if reporter.completedBytes.Load() != 256 {
		t.Errorf("expected 256 bytes, got %d", reporter.completedBytes.Load())
	}

	reporter.ChunkStarted()
	reporter.ChunkFailed()
	if reporter.inProgress.Load() != 0 {
		t.Errorf("expected 0 in-progress after fail, got %d", reporter.inProgress.Load())
	}
	if reporter.failedChunks.Load() != 1 {
		t.Errorf("expected 1 failed, got %d", reporter.failedChunks.Load())
	}

	// Stop without Start is a no-op.
	reporter.Stop()
}

func TestReporterStartStop(t *testing.T) {
	var out bytes.Buffer
	reporter := NewReporter(Options{
		Operation:      "Splitting",
		Label:          "file.bin",
		TotalSize:      512 * 1024,
		TotalChunks:    2,
		ChunkSize:      256 * 1024,
		Output:         &out,
		UpdateInterval: 10 * time.Millisecond,
		Live:           true,
	})

	reporter.Start()

	reporter.ChunkStarted()
	reporter.ChunkCompleted(256 * 1024)
	reporter.ChunkStarted()
	reporter.ChunkCompleted(256 * 1024)

	time.Sleep(50 * time.Millisecond) // Let updates run

	reporter.Stop()
	reporter.Stop()

	if reporter.completedChunks.Load() != 2 {
		t.Errorf("expected 2 completed chunks, got %d", reporter.completedChunks.Load())
	}

	text := out.String()
	for _, want := range []string{
		"[chunkset] Splitting: file.bin",
		"Chunks: 2 x 256 KiB",
		"512 KiB / 512 KiB | Complete!",
		"2 completed | 0 failed | 2 total",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestReporterNotLive(t *testing.T) {
	var out bytes.Buffer
	reporter := NewReporter(Options{
		Operation:      "Merging",
		TotalSize:      10,
		TotalChunks:    3,
		ChunkSize:      4,
		Output:         &out,
		UpdateInterval: time.Millisecond,
	})

	reporter.Start()
	reporter.ChunkStarted()
	reporter.ChunkCompleted(4)
	reporter.ChunkStarted()
	reporter.ChunkFailed()
	time.Sleep(20 * time.Millisecond)
	reporter.Stop()

	text := out.String()
	if strings.Contains(text, "\r") || strings.Contains(text, "ETA") {
		t.Errorf("non-terminal output has in-place updates:\n%q", text)
	}
	if !strings.Contains(text, "4 B / 10 B | Incomplete") {
		t.Errorf("output missing incomplete status:\n%s", text)
	}
	if !strings.Contains(text, "1 completed | 1 failed | 3 total") {
		t.Errorf("output missing chunk summary:\n%s", text)
	}
}
