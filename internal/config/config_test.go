package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Workers != 4 {
		t.Errorf("expected default workers 4, got %d", cfg.Workers)
	}
	if cfg.ChunkSize != 2*1024*1024 {
		t.Errorf("expected default chunk size 2MiB, got %d", cfg.ChunkSize)
	}
	if cfg.BufferSize != 10*1024*1024 {
		t.Errorf("expected default buffer size 10MiB, got %d", cfg.BufferSize)
	}
	if cfg.Storage != "" {
		t.Errorf("expected local storage by default, got %q", cfg.Storage)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
storage: s3://backups?region=eu-west-1
workers: 8
chunk_size: 64MiB
buffer_size: 1MB
async: true
progress: true
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Storage != "s3://backups?region=eu-west-1" {
		t.Errorf("expected storage URL, got %q", cfg.Storage)
	}
	if cfg.Workers != 8 {
		t.Errorf("expected workers 8, got %d", cfg.Workers)
	}
	if cfg.ChunkSize != 64*1024*1024 {
		t.Errorf("expected chunk size 64MiB, got %d", cfg.ChunkSize)
	}
	if cfg.BufferSize != 1000*1000 {
		t.Errorf("expected buffer size 1MB, got %d", cfg.BufferSize)
	}
	if !cfg.Async {
		t.Error("expected async true")
	}
	if !cfg.Progress {
		t.Error("expected progress true")
	}
	if cfg.Force {
		t.Error("expected force false")
	}
}

func TestLoadFromYAMLKeepsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("force: true\n"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	want := Default()
	want.Force = true
	if cfg != want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHUNKSET_STORAGE", "mem://")
	t.Setenv("CHUNKSET_WORKERS", "16")
	t.Setenv("CHUNKSET_CHUNK_SIZE", "1GiB")
	t.Setenv("CHUNKSET_BUFFER_SIZE", "4KB")
	t.Setenv("CHUNKSET_ASYNC", "1")
	t.Setenv("CHUNKSET_PROGRESS", "true")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.Storage != "mem://" {
		t.Errorf("expected storage mem://, got %q", cfg.Storage)
	}
	if cfg.Workers != 16 {
		t.Errorf("expected workers 16, got %d", cfg.Workers)
	}
	if cfg.ChunkSize != 1024*1024*1024 {
		t.Errorf("expected chunk size 1GiB, got %d", cfg.ChunkSize)
	}
	if cfg.BufferSize != 4000 {
		t.Errorf("expected buffer size 4KB, got %d", cfg.BufferSize)
	}
	if !cfg.Async {
		t.Error("expected async true")
	}
	if !cfg.Progress {
		t.Error("expected progress true")
	}
}

func TestLoadFromEnvInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"CHUNKSET_WORKERS", "many"},
		{"CHUNKSET_CHUNK_SIZE", "huge"},
		{"CHUNKSET_BUFFER_SIZE", "-"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			cfg := Default()
			if err := cfg.LoadFromEnv(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(*Config) {}, false},
		{"bucket storage", func(c *Config) { c.Storage = "mem://" }, false},
		{"invalid chunk size", func(c *Config) { c.ChunkSize = 0 }, true},
		{"invalid buffer size", func(c *Config) { c.BufferSize = -1 }, true},
		{"invalid workers", func(c *Config) { c.Workers = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	base.Storage = "file:///srv/chunks"

	override := Config{
		ChunkSize: 1024,
		Async:     true,
	}

	merged := base.Merge(override)

	if merged.Storage != "file:///srv/chunks" {
		t.Errorf("expected Storage preserved, got %s", merged.Storage)
	}
	if merged.BufferSize != base.BufferSize {
		t.Errorf("expected BufferSize preserved, got %d", merged.BufferSize)
	}
	if merged.Workers != base.Workers {
		t.Errorf("expected Workers preserved, got %d", merged.Workers)
	}

	if merged.ChunkSize != 1024 {
		t.Errorf("expected ChunkSize overridden to 1024, got %d", merged.ChunkSize)
	}
	if !merged.Async {
		t.Error("expected Async overridden")
	}
}

func TestLoadYAMLFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadYAMLInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadYAMLInvalidSize(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("chunk_size: lots\n"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected error for invalid chunk_size")
	}
}
