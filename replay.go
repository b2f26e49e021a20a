package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// ReplayRecord is one line of the replay log
type ReplayRecord struct {
	At        time.Time `json:"at"`
	MatchID   string    `json:"match"`
	Index     int       `json:"index"`
	Connected *bool     `json:"connected,omitempty"`
	Snapshot  *Snapshot `json:"snapshot,omitempty"`
}

// ReplayWriter records relay traffic as JSON lines in hourly zstd files
// named <dir>/<prefix>-YYYY-MM-DD-HH.jsonl.zst.
type ReplayWriter struct {
	baseDir string
	prefix  string
	matchID string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewReplayWriter(baseDir, prefix, matchID string) *ReplayWriter {
	return &ReplayWriter{
		baseDir: baseDir,
		prefix:  prefix,
		matchID: matchID,
		now:     time.Now,
	}
}

// PeerChanged implements RelayObserver
func (w *ReplayWriter) PeerChanged(index int, connected bool) {
	w.record(ReplayRecord{Index: index, Connected: &connected})
}

// SnapshotReceived implements RelayObserver
func (w *ReplayWriter) SnapshotReceived(index int, s Snapshot) {
	w.record(ReplayRecord{Index: index, Snapshot: &s})
}

func (w *ReplayWriter) record(r ReplayRecord) {
	if err := w.Write(r); err != nil {
		log.Printf("replay: write error: %v", err)
	}
}

// Write appends one record, rotating the file when the hour changes
func (w *ReplayWriter) Write(r ReplayRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	at := w.now().UTC()
	if r.At.IsZero() {
		r.At = at
	}
	if r.MatchID == "" {
		r.MatchID = w.matchID
	}
	hour := at.Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Close flushes and closes the current file
func (w *ReplayWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *ReplayWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.PathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curHour = hour
	return nil
}

func (w *ReplayWriter) closeLocked() error {
	var err error
	if w.w != nil {
		err = w.w.Flush()
	}
	if w.enc != nil {
		if cerr := w.enc.Close(); err == nil {
			err = cerr
		}
		w.enc = nil
	}
	if w.f != nil {
		if cerr := w.f.Close(); err == nil {
			err = cerr
		}
		w.f = nil
	}
	w.w = nil
	w.curHour = ""
	return err
}

// PathForHour returns the file a record stamped in hour (2006-01-02-15) goes to
func (w *ReplayWriter) PathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// ReadReplay decodes every record of one replay file
func ReadReplay(path string) ([]ReplayRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []ReplayRecord
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), MaxFramePayload*4)
	for sc.Scan() {
		var r ReplayRecord
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			return out, fmt.Errorf("replay %s line %d: %w", path, len(out)+1, err)
		}
		out = append(out, r)
	}
	return out, sc.Err()
}
