package editor

import (
	"errors"
	"sync"

	"brandconsole/internal/catalog"
)

// DefaultHighValueThreshold is the commission percentage above which a save
// needs explicit confirmation.
const DefaultHighValueThreshold = 30.0

var (
	// ErrGateBusy is returned when a submit arrives while a confirmation is
	// already pending.
	ErrGateBusy = errors.New("editor: a high-value confirmation is pending")
	// ErrNothingPending is returned by Release when no submit is held.
	ErrNothingPending = errors.New("editor: no submit awaiting confirmation")
)

// GateState is the state of the high-value confirmation gate.
type GateState int

const (
	GateIdle GateState = iota
	GatePending
)

func (s GateState) String() string {
	if s == GatePending {
		return "pending_high_value_confirm"
	}
	return "idle"
}

// Gate intercepts submits whose percentage commission exceeds a threshold and
// holds the exact payload until the user confirms or cancels. The threshold
// is only checked by Intercept; Release hands back the held payload without
// checking again. It is safe for concurrent use.
type Gate struct {
	threshold float64

	mu      sync.Mutex
	state   GateState
	pending catalog.Campaign
}

// NewGate returns an idle gate. A non-positive threshold uses the default.
func NewGate(threshold float64) *Gate {
	if threshold <= 0 {
		threshold = DefaultHighValueThreshold
	}
	return &Gate{threshold: threshold}
}

// Threshold returns the commission threshold.
func (g *Gate) Threshold() float64 { return g.threshold }

// Exceeds reports whether c carries a percentage commission above the
// threshold. Fixed commissions are amounts, not percentages, and never trip
// the gate.
func (g *Gate) Exceeds(c catalog.Campaign) bool {
	if c.CommissionType != catalog.CommissionPercentage {
		return false
	}
	return c.Commission > g.threshold
}

// Intercept is the original submit path. It reports true when c was held for
// confirmation, in which case the caller must not save it.
func (g *Gate) Intercept(c catalog.Campaign) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == GatePending {
		return false, ErrGateBusy
	}
	if !g.Exceeds(c) {
		return false, nil
	}
	g.state = GatePending
	g.pending = c.Clone()
	return true, nil
}

// Release returns the held payload unchanged and returns the gate to idle.
func (g *Gate) Release() (catalog.Campaign, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GatePending {
		return catalog.Campaign{}, ErrNothingPending
	}
	c := g.pending
	g.pending = catalog.Campaign{}
	g.state = GateIdle
	return c, nil
}

// Cancel drops the held payload. It reports whether anything was held.
func (g *Gate) Cancel() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GatePending {
		return false
	}
	g.pending = catalog.Campaign{}
	g.state = GateIdle
	return true
}

// State returns the gate state.
func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Pending returns a copy of the held payload.
func (g *Gate) Pending() (catalog.Campaign, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GatePending {
		return catalog.Campaign{}, false
	}
	return g.pending.Clone(), true
}
