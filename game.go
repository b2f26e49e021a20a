package main

import (
	"context"
	"sync"
	"time"
)

// maxFrameBudgets caps dt after a stall so crafts do not tunnel through
// terrain on the next tick.
const maxFrameBudgets = 3

// Command is a session-level request from the input layer
type Command uint8

const (
	CmdNone Command = iota
	CmdReset
	CmdQuit
)

// InputSource yields the intents for the next tick
type InputSource interface {
	Poll(now float64) (Intents, Command)
}

// Renderer draws a session after each tick
type Renderer interface {
	Render(s *Session, kills []KillEvent)
}

// TickHook runs after every step, before rendering
type TickHook func(s *Session, kills []KillEvent)

// Loop drives a session from a ticker at the configured frame rate
type Loop struct {
	mu      sync.Mutex
	session *Session
	input   InputSource
	render  Renderer
	hooks   []TickHook
	budget  time.Duration
	start   time.Time
	last    time.Time
	stopped bool
	stop    chan struct{}
}

// NewLoop creates a loop for s. render may be nil.
func NewLoop(s *Session, in InputSource, render Renderer) *Loop {
	return &Loop{
		session: s,
		input:   in,
		render:  render,
		budget:  time.Second / time.Duration(s.Tuning().FPS),
		stop:    make(chan struct{}),
	}
}

// OnTick registers a hook; not safe to call while running
func (l *Loop) OnTick(h TickHook) { l.hooks = append(l.hooks, h) }

// Run ticks until ctx is done, Stop is called or the input asks to quit
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.budget)
	defer ticker.Stop()

	l.start = time.Now()
	l.last = l.start
	for {
		select {
		case now := <-ticker.C:
			if !l.step(now) {
				l.Stop()
				return nil
			}
		case <-l.stop:
			return nil
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		}
	}
}

// Stop terminates the loop. A loop cannot be restarted.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.stopped {
		l.stopped = true
		close(l.stop)
	}
}

// step runs one tick at wall-clock time now. It reports false when the
// input asked to quit.
func (l *Loop) step(now time.Time) bool {
	dt := l.frameDelta(now)
	clock := now.Sub(l.start).Seconds()

	in, cmd := l.input.Poll(clock)
	switch cmd {
	case CmdQuit:
		return false
	case CmdReset:
		if err := l.session.Reset(); err != nil {
			return false
		}
	}

	kills := l.session.Step(dt, clock, in)
	for _, h := range l.hooks {
		h(l.session, kills)
	}
	if l.render != nil {
		l.render.Render(l.session, kills)
	}
	return true
}

// frameDelta returns the seconds since the previous tick, capped
func (l *Loop) frameDelta(now time.Time) float64 {
	d := now.Sub(l.last)
	l.last = now
	if d < 0 {
		d = 0
	}
	if limit := l.budget * maxFrameBudgets; d > limit {
		d = limit
	}
	return d.Seconds()
}
