package main

import "testing"

func TestKeySchemes(t *testing.T) {
	wasd, ok := Bindings("wasd")
	if !ok {
		t.Fatal("wasd scheme missing")
	}
	in := wasd.Resolve([]string{"w", "a", "up"})
	if !in.Has(IntentThrust) || !in.Has(IntentRotateLeft) {
		t.Errorf("expected thrust+left, got %s", in)
	}
	if in.Has(IntentFire) || in.Has(IntentRotateRight) {
		t.Errorf("unexpected intents %s", in)
	}

	arrows, _ := Bindings("arrows")
	if got := arrows.Resolve([]string{"down", "w"}); got != IntentFire {
		t.Errorf("expected fire only, got %s", got)
	}
	if _, ok := Bindings("mouse"); ok {
		t.Error("unknown scheme should not resolve")
	}
}

func TestIntentString(t *testing.T) {
	if s := (IntentThrust | IntentFire).String(); s != "thrust+fire" {
		t.Errorf("got %q", s)
	}
	if s := Intent(0).String(); s != "none" {
		t.Errorf("got %q", s)
	}
}

func TestIntentsFor(t *testing.T) {
	in := Intents{IntentThrust, IntentFire}
	if in.For(1) != IntentThrust || in.For(2) != IntentFire || in.For(3) != 0 {
		t.Errorf("unexpected lookup %v", in)
	}
}
