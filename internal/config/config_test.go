package config

import (
	"os"
	"testing"
)

func TestAdjustOptions_Defaults(t *testing.T) {
	os.Unsetenv(EnvIFrameOffset)
	os.Unsetenv(EnvShortCutMode)
	os.Unsetenv(EnvMergeRanges)
	os.Unsetenv(EnvMinGap)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	opts := cfg.AdjustOptions()
	if opts.IFrameOffset != 1 {
		t.Errorf("default IFrameOffset = %d, want 1", opts.IFrameOffset)
	}
	if !opts.ShortCutMode {
		t.Error("default ShortCutMode = false, want true")
	}
	if !opts.MergeRanges {
		t.Error("default MergeRanges = false, want true")
	}
	if opts.MinGap != 100 {
		t.Errorf("default MinGap = %d, want 100", opts.MinGap)
	}
}

func TestAdjustOptions_FromEnv(t *testing.T) {
	os.Setenv(EnvIFrameOffset, "2")
	os.Setenv(EnvShortCutMode, "false")
	os.Setenv(EnvMinGap, "50")
	defer func() {
		os.Unsetenv(EnvIFrameOffset)
		os.Unsetenv(EnvShortCutMode)
		os.Unsetenv(EnvMinGap)
	}()

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	opts := cfg.AdjustOptions()
	if opts.IFrameOffset != 2 {
		t.Errorf("IFrameOffset = %d, want 2", opts.IFrameOffset)
	}
	if opts.ShortCutMode {
		t.Error("ShortCutMode = true, want false")
	}
	if opts.MinGap != 50 {
		t.Errorf("MinGap = %d, want 50", opts.MinGap)
	}
}

func TestAdjustOptions_InvalidOffset(t *testing.T) {
	os.Setenv(EnvIFrameOffset, "0")
	defer os.Unsetenv(EnvIFrameOffset)

	if _, err := New(); err == nil {
		t.Fatal("expected error for zero i-frame offset")
	}
}

func TestPort_Invalid(t *testing.T) {
	os.Setenv(EnvPort, "notaport")
	defer os.Unsetenv(EnvPort)

	if _, err := New(); err == nil {
		t.Fatal("expected error for non-numeric port")
	}
}
