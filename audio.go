package main

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate   = beep.SampleRate(44100)
	exhaustEvery = 120 * time.Millisecond
)

// Audio plays short tones for craft events. It implements EffectSink; a
// failed speaker init leaves it silent.
type Audio struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	enabled     bool
	speaker     bool
	lastExhaust [2]time.Time
	clock       func() time.Time
}

func NewAudio() *Audio {
	return &Audio{
		mixer: &beep.Mixer{},
		clock: time.Now,
	}
}

// Initialize opens the speaker and starts the mixer
func (a *Audio) Initialize() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enabled {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	speaker.Play(a.mixer)
	a.enabled = true
	a.speaker = true
	return nil
}

// Close silences and releases the speaker
func (a *Audio) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.speaker {
		return
	}
	speaker.Clear()
	speaker.Close()
	a.enabled = false
	a.speaker = false
}

func (a *Audio) play(s beep.Streamer) {
	if s == nil {
		return
	}
	if a.speaker {
		speaker.Lock()
		defer speaker.Unlock()
	}
	a.mixer.Add(s)
}

// Exhaust implements EffectSink; the rumble is throttled per player
func (a *Audio) Exhaust(player int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.enabled || player < 1 || player > 2 {
		return
	}
	now := a.clock()
	if now.Sub(a.lastExhaust[player-1]) < exhaustEvery {
		return
	}
	a.lastExhaust[player-1] = now
	a.play(exhaustTone())
}

// Shot implements EffectSink
func (a *Audio) Shot(player int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.enabled {
		return
	}
	a.play(shotTone(player))
}

// Explosion implements EffectSink
func (a *Audio) Explosion(player int, reason KillReason) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.enabled {
		return
	}
	d := 400 * time.Millisecond
	if reason == ReasonShot {
		d = 250 * time.Millisecond
	}
	a.play(beep.Take(sampleRate.N(d), newNoiseBurst(sampleRate, d)))
}

// Pending returns the number of sounds queued in the mixer
func (a *Audio) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.speaker {
		speaker.Lock()
		defer speaker.Unlock()
	}
	return a.mixer.Len()
}

func shotTone(player int) beep.Streamer {
	freq := 880.0
	if player == 2 {
		freq = 660
	}
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return nil
	}
	return beep.Take(sampleRate.N(60*time.Millisecond), sine)
}

func exhaustTone() beep.Streamer {
	return beep.Take(sampleRate.N(exhaustEvery), &rumble{sr: sampleRate, freq: 70})
}

// rumble is a quiet low square-ish hum
type rumble struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

func (g *rumble) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		v := 0.1*math.Sin(2*math.Pi*g.freq*t) + 0.05*math.Sin(2*math.Pi*g.freq*3*t)
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *rumble) Err() error { return nil }

// noiseBurst is white noise with a linear decay over its duration
type noiseBurst struct {
	total int
	pos   int
}

func newNoiseBurst(sr beep.SampleRate, d time.Duration) *noiseBurst {
	return &noiseBurst{total: max(sr.N(d), 1)}
}

func (g *noiseBurst) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		env := 1 - float64(g.pos)/float64(g.total)
		if env < 0 {
			env = 0
		}
		v := (rand.Float64()*2 - 1) * 0.4 * env
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *noiseBurst) Err() error { return nil }
