package memory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ets2dash/tdashboard/internal/config"
	"github.com/ets2dash/tdashboard/pkg/core"
)

func TestExportFileName(t *testing.T) {
	s := testSession()

	tests := []struct {
		name     string
		game     string
		compress bool
		expected string
	}{
		{"plain", "ETS", false, "ETS_20240115_103000_3f2a9c1e.json"},
		{"gzip", "ATS", true, "ATS_20240115_103000_3f2a9c1e.json.gz"},
		{"empty game", "", false, "session_20240115_103000_3f2a9c1e.json"},
		{"unsafe chars", "a b:c", false, "a_b_c_20240115_103000_3f2a9c1e.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.Game = tt.game
			if got := exportFileName(s, tt.compress); got != tt.expected {
				t.Errorf("exportFileName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func recordSession(t *testing.T, b *Backend) {
	t.Helper()
	if err := b.StartSession(testSession()); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	for i := 1; i <= 3; i++ {
		f := &core.Frame{
			Seq:       uint64(i),
			SessionID: testSession().ID,
			Snapshot:  &core.Snapshot{Truck: core.Truck{ID: "scania"}},
		}
		f.Derived.JobIncome = "€ 12,500.-"
		_ = b.RecordFrame(f)
	}

	ended := testSession()
	ended.EndTime = ended.StartTime.Add(time.Hour)
	if err := b.EndSession(ended); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}
}

func TestExport_Gzip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "frames")
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true, HistorySize: 2})
	recordSession(t, b)

	path := b.ExportedFilePath()
	if !strings.HasSuffix(path, ".json.gz") {
		t.Fatalf("expected gzip export, got %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("export file missing: %v", err)
	}

	export, err := ReadExport(path)
	if err != nil {
		t.Fatalf("ReadExport failed: %v", err)
	}
	if export.FrameCount != 3 || export.EvictedFrames != 1 {
		t.Errorf("counts = %d/%d, want 3/1", export.FrameCount, export.EvictedFrames)
	}
	if len(export.Frames) != 2 || export.Frames[0].Seq != 2 {
		t.Fatalf("unexpected frames: %+v", export.Frames)
	}
	if export.Frames[0].Snapshot != nil {
		t.Error("snapshots should not be exported")
	}
	if export.Frames[1].Derived.JobIncome != "€ 12,500.-" {
		t.Errorf("derived not exported: %q", export.Frames[1].Derived.JobIncome)
	}
	if export.Session.EndTime.IsZero() {
		t.Error("expected session end time in export")
	}
}

func TestExport_Plain(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir(), CompressOutput: false, HistorySize: 10})
	recordSession(t, b)

	path := b.ExportedFilePath()
	if !strings.HasSuffix(path, ".json") {
		t.Fatalf("expected plain export, got %s", path)
	}
	export, err := ReadExport(path)
	if err != nil {
		t.Fatalf("ReadExport failed: %v", err)
	}
	if len(export.Frames) != 3 {
		t.Errorf("expected 3 frames, got %d", len(export.Frames))
	}
}

func TestExport_KeepsLiveHistory(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir(), HistorySize: 10})
	recordSession(t, b)

	for _, f := range b.History() {
		if f.Snapshot == nil {
			t.Fatal("export must not strip snapshots from the live history")
		}
	}
}

func TestReadExport_Missing(t *testing.T) {
	if _, err := ReadExport(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
