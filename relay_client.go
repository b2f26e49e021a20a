package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// RelayClient is one peer's connection to a relay server
type RelayClient struct {
	conn  net.Conn
	Spawn Snapshot // authoritative starting state handed out by the server
}

// DialRelay connects and waits for the spawn handoff
func DialRelay(ctx context.Context, addr string) (*RelayClient, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	}
	f, err := ReadFrame(conn)
	conn.SetReadDeadline(time.Time{})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("relay handshake: %w", err)
	}
	switch f.Type {
	case FrameSpawn:
	case FrameReject:
		conn.Close()
		return nil, ErrRelayFull
	default:
		conn.Close()
		return nil, fmt.Errorf("relay handshake: unexpected %s frame", f.Type)
	}
	spawn, err := f.Snapshot()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("relay handshake: %w", err)
	}
	return &RelayClient{conn: conn, Spawn: spawn}, nil
}

// Exchange sends the local snapshot and blocks for the server's reply.
// ok is false when the reply carries no opponent state (FrameNoPeer).
func (c *RelayClient) Exchange(local Snapshot) (remote Snapshot, typ FrameType, ok bool, err error) {
	if err := WriteSnapshot(c.conn, FrameSnapshot, local); err != nil {
		return Snapshot{}, 0, false, err
	}
	f, err := ReadFrame(c.conn)
	if err != nil {
		return Snapshot{}, 0, false, err
	}
	switch f.Type {
	case FrameNoPeer:
		return Snapshot{}, f.Type, false, nil
	case FrameRelay, FramePeerLost:
		s, err := f.Snapshot()
		if err != nil {
			return Snapshot{}, f.Type, false, err
		}
		return s, f.Type, true, nil
	}
	return Snapshot{}, f.Type, false, fmt.Errorf("relay: unexpected %s frame", f.Type)
}

func (c *RelayClient) Close() error { return c.conn.Close() }

// Pump runs the exchange on its own goroutine so the frame loop never
// waits on the network. The loop publishes its latest snapshot and reads
// the latest remote one.
type Pump struct {
	client   *RelayClient
	interval time.Duration

	local  atomic.Pointer[Snapshot]
	remote atomic.Pointer[Snapshot]
	status atomic.Uint32 // FrameType of the last reply

	errMu sync.Mutex
	err   error
	done  chan struct{}
}

func NewPump(c *RelayClient, interval time.Duration) *Pump {
	return &Pump{client: c, interval: interval, done: make(chan struct{})}
}

// Publish replaces the snapshot sent on the next exchange
func (p *Pump) Publish(s Snapshot) { p.local.Store(&s) }

// Remote returns the newest opponent snapshot, if any arrived
func (p *Pump) Remote() (Snapshot, bool) {
	s := p.remote.Load()
	if s == nil {
		return Snapshot{}, false
	}
	return *s, true
}

// PeerLost reports whether the server said the opponent disconnected
func (p *Pump) PeerLost() bool { return FrameType(p.status.Load()) == FramePeerLost }

// Err returns the error that ended the pump
func (p *Pump) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

// Done is closed when Run returns
func (p *Pump) Done() <-chan struct{} { return p.done }

// Run exchanges snapshots every interval until ctx ends or the connection
// fails. The connection is closed on return.
func (p *Pump) Run(ctx context.Context) {
	defer close(p.done)
	stop := context.AfterFunc(ctx, func() { p.client.Close() })
	defer stop()
	defer p.client.Close()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.fail(ctx.Err())
			return
		case <-ticker.C:
		}
		local := p.local.Load()
		if local == nil {
			continue
		}
		remote, typ, ok, err := p.client.Exchange(*local)
		if err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			p.fail(err)
			return
		}
		p.status.Store(uint32(typ))
		if ok {
			p.remote.Store(&remote)
		}
	}
}

func (p *Pump) fail(err error) {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	if p.err == nil && !errors.Is(err, context.Canceled) {
		p.err = err
	}
}
