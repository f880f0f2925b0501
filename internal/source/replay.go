package source

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ets2dash/tdashboard/pkg/core"
)

const maxLineSize = 4 << 20

// Replay reads snapshots from a JSON-lines file, one document per line.
// Files ending in .gz are gunzipped.
type Replay struct {
	path string
	loop bool

	file    *os.File
	gz      *gzip.Reader
	scanner *bufio.Scanner
	line    int
	read    int
}

// OpenReplay opens path. With loop set the file restarts at EOF instead of
// returning io.EOF.
func OpenReplay(path string, loop bool) (*Replay, error) {
	r := &Replay{path: path, loop: loop}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Replay) Name() string { return TypeReplay }

func (r *Replay) open() error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("open replay file: %w", err)
	}

	var in io.Reader = f
	if strings.HasSuffix(r.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return fmt.Errorf("open gzip replay: %w", err)
		}
		r.gz = gz
		in = gz
	}

	r.file = f
	r.scanner = bufio.NewScanner(in)
	r.scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	r.line = 0
	return nil
}

// Next returns the next snapshot in the file.
func (r *Replay) Next(ctx context.Context) (*core.Snapshot, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r.scanner == nil {
			return nil, io.EOF
		}

		if r.scanner.Scan() {
			r.line++
			data := bytes.TrimSpace(r.scanner.Bytes())
			if len(data) == 0 {
				continue
			}
			var snap core.Snapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				return nil, fmt.Errorf("%s:%d: decode snapshot: %w", r.path, r.line, err)
			}
			r.read++
			return &snap, nil
		}
		if err := r.scanner.Err(); err != nil {
			return nil, fmt.Errorf("read replay file: %w", err)
		}

		// a file with no snapshots would spin forever when looping
		if !r.loop || r.read == 0 {
			return nil, io.EOF
		}
		if err := r.Close(); err != nil {
			return nil, err
		}
		if err := r.open(); err != nil {
			return nil, err
		}
	}
}

// Close releases the file.
func (r *Replay) Close() error {
	var err error
	if r.gz != nil {
		err = r.gz.Close()
		r.gz = nil
	}
	if r.file != nil {
		if cerr := r.file.Close(); err == nil {
			err = cerr
		}
		r.file = nil
	}
	r.scanner = nil
	return err
}
