package main

// FuelTank is the bounded fuel counter attached to a craft.
// Amount always stays within [0, Max].
type FuelTank struct {
	Amount int
	Max    int
}

// NewFuelTank returns a full tank
func NewFuelTank(max int) FuelTank {
	return FuelTank{Amount: max, Max: max}
}

// Empty reports whether no fuel is left
func (f *FuelTank) Empty() bool { return f.Amount <= 0 }

// Drain consumes one unit and reports whether any was available
func (f *FuelTank) Drain() bool {
	if f.Amount <= 0 {
		f.Amount = 0
		return false
	}
	f.Amount--
	return true
}

// Regenerate adds rate units, clamped to Max
func (f *FuelTank) Regenerate(rate int) {
	f.Amount = min(f.Amount+rate, f.Max)
	if f.Amount < 0 {
		f.Amount = 0
	}
}

// Percent returns the fill level in [0, 1] for display
func (f *FuelTank) Percent() float64 {
	if f.Max <= 0 {
		return 0
	}
	return Clamp(float64(f.Amount)/float64(f.Max), 0, 1)
}
