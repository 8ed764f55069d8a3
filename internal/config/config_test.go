package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Default()
	if *cfg != *def {
		t.Fatalf("config = %+v, want defaults %+v", cfg, def)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, "gaps:\n  window: 8\nlog_level: debug\n")
	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gaps.Window != 8 {
		t.Errorf("window gap = %d, want 8", cfg.Gaps.Window)
	}
	if cfg.Gaps.Partition != Default().Gaps.Partition {
		t.Errorf("partition gap lost its default: %d", cfg.Gaps.Partition)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"negative gap", "gaps:\n  window: -1\n", "non-negative"},
		{"unordered thresholds", "thresholds:\n  restructure: 0.9\n  split: 0.6\n  swap: 1.0\n", "ordered"},
		{"zero poll", "poll_interval_ms: 0\n", "poll_interval_ms"},
		{"bad log level", "log_level: loud\n", "log_level"},
		{"bad yaml", "gaps: [\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromPath(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestTilingOptions(t *testing.T) {
	path := writeConfig(t, "gaps:\n  window: 10\n  partition: 30\nthresholds:\n  restructure: 0.1\n  split: 0.5\n  swap: 0.9\n")
	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	opts := cfg.TilingOptions()
	if opts.WindowGap != 10 || opts.PartitionGap != 30 {
		t.Errorf("gaps = %d/%d, want 10/30", opts.WindowGap, opts.PartitionGap)
	}
	if opts.AddToParentThreshold != 0.1 || opts.SplitThreshold != 0.5 || opts.SwapThreshold != 0.9 {
		t.Errorf("thresholds not carried over: %+v", opts)
	}
}
