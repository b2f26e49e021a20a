package main

import (
	"errors"
	"io"
	"log"
	"net"
	"sync"
	"sync/atomic"
)

var ErrRelayFull = errors.New("relay: both peer slots are taken")

// SpawnFunc creates the craft for a newly accepted peer slot (0 or 1)
type SpawnFunc func(index int) (Snapshot, error)

// RelayObserver sees relay traffic. Calls come from worker goroutines and
// must not block.
type RelayObserver interface {
	PeerChanged(index int, connected bool)
	SnapshotReceived(index int, s Snapshot)
}

// relaySlot is the per-index state shared between the two workers. The
// owning worker is the only writer of latest; the other worker only reads.
type relaySlot struct {
	conn      net.Conn // guarded by RelayServer.mu
	ever      atomic.Bool
	connected atomic.Bool
	latest    atomic.Pointer[Snapshot]
}

// RelayServer accepts two peers and forwards each one's latest snapshot
// to the other.
type RelayServer struct {
	addr     string
	spawn    SpawnFunc
	listener net.Listener

	mu        sync.Mutex
	slots     [2]relaySlot
	observers []RelayObserver

	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewRelayServer(addr string, spawn SpawnFunc) *RelayServer {
	return &RelayServer{
		addr:   addr,
		spawn:  spawn,
		stopCh: make(chan struct{}),
	}
}

// AddObserver registers an observer; call before Start
func (r *RelayServer) AddObserver(o RelayObserver) {
	r.observers = append(r.observers, o)
}

// Start binds the listener and begins accepting
func (r *RelayServer) Start() error {
	if !r.running.CompareAndSwap(false, true) {
		return nil
	}
	ln, err := net.Listen("tcp", r.addr)
	if err != nil {
		r.running.Store(false)
		return err
	}
	r.listener = ln
	log.Printf("relay: listening on %s", ln.Addr())

	r.wg.Add(1)
	go r.acceptLoop()
	return nil
}

// Addr returns the bound address, nil before Start
func (r *RelayServer) Addr() net.Addr {
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

func (r *RelayServer) acceptLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopCh:
			return
		default:
		}

		conn, err := r.listener.Accept()
		if err != nil {
			select {
			case <-r.stopCh:
				return
			default:
				log.Printf("relay: accept error: %v", err)
				continue
			}
		}
		r.admit(conn)
	}
}

// admit binds conn to the lowest free slot, or rejects it
func (r *RelayServer) admit(conn net.Conn) {
	r.mu.Lock()
	index := -1
	for i := range r.slots {
		if r.slots[i].conn == nil {
			index = i
			break
		}
	}
	if index < 0 {
		r.mu.Unlock()
		log.Printf("relay: rejecting %s: %v", conn.RemoteAddr(), ErrRelayFull)
		WriteFrame(conn, Frame{Type: FrameReject})
		conn.Close()
		return
	}
	r.slots[index].conn = conn
	r.mu.Unlock()

	snap, err := r.spawn(index)
	if err != nil {
		log.Printf("relay: spawn for slot %d failed: %v", index, err)
		r.release(index, conn)
		return
	}
	slot := &r.slots[index]
	slot.latest.Store(&snap)
	slot.ever.Store(true)
	slot.connected.Store(true)
	log.Printf("relay: peer %s bound to slot %d", conn.RemoteAddr(), index)
	for _, o := range r.observers {
		o.PeerChanged(index, true)
	}

	r.wg.Add(1)
	go r.worker(index, conn, snap)
}

func (r *RelayServer) release(index int, conn net.Conn) {
	conn.Close()
	r.mu.Lock()
	if r.slots[index].conn == conn {
		r.slots[index].conn = nil
	}
	r.mu.Unlock()
}

// worker serves one peer: spawn handoff, then one reply per received
// snapshot.
func (r *RelayServer) worker(index int, conn net.Conn, spawn Snapshot) {
	defer r.wg.Done()
	slot := &r.slots[index]
	defer func() {
		slot.connected.Store(false)
		for _, o := range r.observers {
			o.PeerChanged(index, false)
		}
		r.release(index, conn)
	}()

	if err := WriteSnapshot(conn, FrameSpawn, spawn); err != nil {
		log.Printf("relay: slot %d spawn write error: %v", index, err)
		return
	}

	other := &r.slots[1-index]
	for {
		f, err := ReadFrame(conn)
		if err != nil {
			if errors.Is(err, io.EOF) || r.stopping() {
				log.Printf("relay: slot %d disconnected", index)
			} else {
				log.Printf("relay: slot %d read error: %v", index, err)
			}
			return
		}
		if f.Type != FrameSnapshot {
			log.Printf("relay: slot %d sent unexpected %s frame", index, f.Type)
			return
		}
		snap, err := f.Snapshot()
		if err != nil {
			log.Printf("relay: slot %d bad snapshot: %v", index, err)
			return
		}
		slot.latest.Store(&snap)
		for _, o := range r.observers {
			o.SnapshotReceived(index, snap)
		}

		if err := r.reply(conn, other); err != nil {
			log.Printf("relay: slot %d write error: %v", index, err)
			return
		}
	}
}

func (r *RelayServer) reply(conn net.Conn, other *relaySlot) error {
	if !other.ever.Load() {
		return WriteFrame(conn, Frame{Type: FrameNoPeer})
	}
	latest := other.latest.Load()
	typ := FrameRelay
	if !other.connected.Load() {
		typ = FramePeerLost
	}
	return WriteSnapshot(conn, typ, *latest)
}

func (r *RelayServer) stopping() bool {
	select {
	case <-r.stopCh:
		return true
	default:
		return false
	}
}

// Connected returns how many slots currently hold a live peer
func (r *RelayServer) Connected() int {
	n := 0
	for i := range r.slots {
		if r.slots[i].connected.Load() {
			n++
		}
	}
	return n
}

// Latest returns the last snapshot seen for a slot and whether its peer is
// still connected.
func (r *RelayServer) Latest(index int) (snap Snapshot, ok, connected bool) {
	if index < 0 || index > 1 {
		return Snapshot{}, false, false
	}
	slot := &r.slots[index]
	p := slot.latest.Load()
	if p == nil {
		return Snapshot{}, false, false
	}
	return *p, true, slot.connected.Load()
}

// Close stops accepting, drops live peers and waits for the workers
func (r *RelayServer) Close() error {
	if !r.running.CompareAndSwap(true, false) {
		return nil
	}
	close(r.stopCh)
	var err error
	if r.listener != nil {
		err = r.listener.Close()
	}
	r.mu.Lock()
	for i := range r.slots {
		if c := r.slots[i].conn; c != nil {
			c.Close()
		}
	}
	r.mu.Unlock()
	r.wg.Wait()
	return err
}
