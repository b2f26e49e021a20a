package main

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
)

func drain(s beep.Streamer) int {
	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok || n == 0 {
			return total
		}
	}
}

func TestAudioDisabledIsSilent(t *testing.T) {
	a := NewAudio()
	a.Shot(1)
	a.Exhaust(1)
	a.Explosion(2, ReasonWall)
	if n := a.Pending(); n != 0 {
		t.Errorf("disabled audio queued %d sounds", n)
	}
}

func TestAudioThrottlesExhaust(t *testing.T) {
	a := NewAudio()
	a.enabled = true
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.clock = func() time.Time { return now }

	a.Exhaust(1)
	a.Exhaust(1)
	a.Exhaust(2)
	if n := a.Pending(); n != 2 {
		t.Fatalf("expected one rumble per player, got %d", n)
	}
	now = now.Add(exhaustEvery)
	a.Exhaust(1)
	if n := a.Pending(); n != 3 {
		t.Errorf("expected rumble after the throttle window, got %d", n)
	}
}

func TestAudioEventsQueueSounds(t *testing.T) {
	a := NewAudio()
	a.enabled = true
	a.Shot(1)
	a.Explosion(1, ReasonShot)
	if n := a.Pending(); n != 2 {
		t.Errorf("expected 2 queued sounds, got %d", n)
	}
}

func TestToneLengths(t *testing.T) {
	if n := drain(shotTone(1)); n != sampleRate.N(60*time.Millisecond) {
		t.Errorf("shot tone has %d samples", n)
	}
	if n := drain(exhaustTone()); n != sampleRate.N(exhaustEvery) {
		t.Errorf("exhaust tone has %d samples", n)
	}
}

func TestNoiseBurstDecays(t *testing.T) {
	g := newNoiseBurst(sampleRate, 10*time.Millisecond)
	buf := make([][2]float64, g.total+10)
	g.Stream(buf)
	for _, s := range buf[g.total:] {
		if s[0] != 0 {
			t.Fatal("noise should be silent after its duration")
		}
	}
}
