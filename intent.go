package main

import "strings"

// Intent is the set of actions a player requests for one tick
type Intent uint8

const (
	IntentThrust Intent = 1 << iota
	IntentRotateLeft
	IntentRotateRight
	IntentFire
)

func (i Intent) Has(f Intent) bool { return i&f != 0 }

func (i Intent) String() string {
	if i == 0 {
		return "none"
	}
	var parts []string
	for _, n := range []struct {
		f    Intent
		name string
	}{
		{IntentThrust, "thrust"},
		{IntentRotateLeft, "left"},
		{IntentRotateRight, "right"},
		{IntentFire, "fire"},
	} {
		if i.Has(n.f) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "+")
}

// KeyBindings maps key names to intents
type KeyBindings map[string]Intent

var keySchemes = map[string]KeyBindings{
	"wasd": {
		"w": IntentThrust,
		"a": IntentRotateLeft,
		"d": IntentRotateRight,
		"s": IntentFire,
	},
	"arrows": {
		"up":    IntentThrust,
		"left":  IntentRotateLeft,
		"right": IntentRotateRight,
		"down":  IntentFire,
	},
}

// Bindings returns a named key scheme
func Bindings(scheme string) (KeyBindings, bool) {
	b, ok := keySchemes[scheme]
	return b, ok
}

// Resolve folds the currently held keys into one intent
func (kb KeyBindings) Resolve(held []string) Intent {
	var in Intent
	for _, k := range held {
		in |= kb[k]
	}
	return in
}

// Intents is one tick of input for both player slots
type Intents [2]Intent

// For returns the intent of player 1 or 2
func (in Intents) For(player int) Intent {
	if player < 1 || player > 2 {
		return 0
	}
	return in[player-1]
}
