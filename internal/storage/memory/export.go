package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ets2dash/tdashboard/pkg/core"
)

// SessionExport is the root JSON structure written at session end.
type SessionExport struct {
	Session       core.Session `json:"session"`
	FrameCount    uint64       `json:"frameCount"`
	EvictedFrames uint64       `json:"evictedFrames"`
	Frames        []core.Frame `json:"frames"`
}

var unsafeName = strings.NewReplacer(" ", "_", ":", "_", "/", "_", "\\", "_")

// exportFileName builds "<game>_<start>_<id8>.json[.gz]".
func exportFileName(s *core.Session, compress bool) string {
	game := s.Game
	if game == "" {
		game = "session"
	}
	id := s.ID
	if len(id) > 8 {
		id = id[:8]
	}
	name := fmt.Sprintf("%s_%s_%s.json", unsafeName.Replace(game), s.StartTime.Format("20060102_150405"), id)
	if compress {
		name += ".gz"
	}
	return name
}

func (b *Backend) buildExport() SessionExport {
	frames := b.history.Items()
	if frames == nil {
		frames = []core.Frame{}
	}
	for i := range frames {
		frames[i].Snapshot = nil
	}
	return SessionExport{
		Session:       *b.session,
		FrameCount:    b.frames,
		EvictedFrames: b.dropped,
		Frames:        frames,
	}
}

// exportJSON writes the session history to the output directory.
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(b.cfg.OutputDir, exportFileName(b.session, b.cfg.CompressOutput))

	if err := writeExport(outputPath, export, b.cfg.CompressOutput); err != nil {
		return err
	}
	b.lastExportPath = outputPath
	return nil
}

func writeExport(path string, data SessionExport, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	if compress {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		w = gz
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// ReadExport loads an export written by EndSession.
func ReadExport(path string) (SessionExport, error) {
	f, err := os.Open(path)
	if err != nil {
		return SessionExport{}, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return SessionExport{}, fmt.Errorf("open gzip export: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	var export SessionExport
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return SessionExport{}, fmt.Errorf("decode export: %w", err)
	}
	return export, nil
}
