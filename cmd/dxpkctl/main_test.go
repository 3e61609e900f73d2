package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRecordThenReplayEndToEnd(t *testing.T) {
	out := filepath.Join(t.TempDir(), "session.dxpk")

	if err := runRecord([]string{
		"-device-file=testdata/device.json",
		"testdata/trace.txt",
		out,
	}); err != nil {
		t.Fatalf("runRecord: %v", err)
	}

	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected %s to exist: %v", out, err)
	}

	if err := runReplay([]string{
		"-driver=wdg",
		"-driver-file=testdata/driver_wdg.json",
		"-time-sensitive=false",
		out,
	}); err != nil {
		t.Fatalf("runReplay: %v", err)
	}
}
