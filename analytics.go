package main

import (
	"log"
	"sync"
	"time"
)

const (
	recorderQueue     = 1024
	recorderBatch     = 50
	recorderFlushTick = 5 * time.Second
)

// Recorder persists relayed deaths with batched background writes. It
// derives deaths from the score events carried by peer snapshots: a point
// given to a player is a shot death of the opponent, a point taken is a
// wall death of that player.
type Recorder struct {
	db      *DB
	matchID string
	events  chan DeathRow
	stop    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup

	mu     sync.Mutex
	cursor eventCursor
	deaths [2]int
}

// NewRecorder creates and starts the recorder background writer
func NewRecorder(db *DB, matchID string) *Recorder {
	r := &Recorder{
		db:      db,
		matchID: matchID,
		events:  make(chan DeathRow, recorderQueue),
		stop:    make(chan struct{}),
	}
	r.wg.Add(1)
	go r.writer()
	return r
}

// PeerChanged implements RelayObserver
func (r *Recorder) PeerChanged(index int, connected bool) {
	if !connected {
		return
	}
	r.mu.Lock()
	r.cursor.reset(index)
	r.mu.Unlock()
}

// SnapshotReceived implements RelayObserver
func (r *Recorder) SnapshotReceived(index int, s Snapshot) {
	r.mu.Lock()
	fresh := r.cursor.fresh(index, s)
	r.mu.Unlock()

	now := time.Now().UTC()
	for _, ev := range fresh {
		switch {
		case ev.Delta < 0:
			r.Track(DeathRow{MatchID: r.matchID, Player: ev.Player, Reason: ReasonWall, At: now})
		case ev.Delta > 0:
			r.Track(DeathRow{MatchID: r.matchID, Player: Opponent(ev.Player), Reason: ReasonShot, At: now})
		}
	}
}

// Track enqueues a death for async persistence (non-blocking)
func (r *Recorder) Track(d DeathRow) {
	if d.Player >= 1 && d.Player <= 2 {
		r.mu.Lock()
		r.deaths[d.Player-1]++
		r.mu.Unlock()
	}
	select {
	case r.events <- d:
	default:
		log.Printf("recorder: queue full, dropping death of player %d", d.Player)
	}
}

// Deaths returns the deaths seen so far per player
func (r *Recorder) Deaths() [2]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deaths
}

// Stop flushes pending deaths and shuts the writer down
func (r *Recorder) Stop() {
	r.once.Do(func() { close(r.stop) })
	r.wg.Wait()
}

func (r *Recorder) writer() {
	defer r.wg.Done()

	batch := make([]DeathRow, 0, 64)
	ticker := time.NewTicker(recorderFlushTick)
	defer ticker.Stop()

	for {
		select {
		case d := <-r.events:
			batch = append(batch, d)
			if len(batch) >= recorderBatch {
				r.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				r.flush(batch)
				batch = batch[:0]
			}
		case <-r.stop:
			for {
				select {
				case d := <-r.events:
					batch = append(batch, d)
				default:
					r.flush(batch)
					return
				}
			}
		}
	}
}

func (r *Recorder) flush(batch []DeathRow) {
	if r.db == nil || len(batch) == 0 {
		return
	}
	if err := r.db.RecordDeaths(batch); err != nil {
		log.Printf("recorder: write %d deaths: %v", len(batch), err)
	}
}
