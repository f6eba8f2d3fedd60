// Package chord decides, tick by tick, which keystrokes a pair of sticks and
// a handful of buttons produce.
package chord

import (
	"errors"
	"fmt"

	"github.com/Versifine/pietype/internal/keys"
	"github.com/Versifine/pietype/internal/layout"
	"github.com/Versifine/pietype/internal/stick"
	"github.com/Versifine/pietype/internal/vmath"
)

const (
	DefaultTypeThreshold   = float32(0.7)
	DefaultReturnThreshold = float32(0.5)
)

var ErrThresholds = errors.New("invalid chord thresholds")

// Sink receives the keystrokes produced by the machine.
type Sink interface {
	Press(key keys.Key) error
	Release(key keys.Key) error
	Click(key keys.Key) error
}

// State is the chord state carried between ticks. The zero value is not
// armed; use NewState.
type State struct {
	CanType       bool
	CanToggleCaps bool
	BackspaceHeld bool
	ShiftHeld     bool
}

func NewState() State {
	return State{CanType: true, CanToggleCaps: true}
}

// Input is one tick's reading of the controller. Sticks are raw samples.
type Input struct {
	East         bool
	LeftThumb    bool
	RightTrigger bool
	Primary      vmath.Vector2
	Secondary    vmath.Vector2
}

// Result describes what a tick saw and did. Primary and Secondary are -1
// when the respective stick selects nothing: the primary is below the return
// threshold, or the secondary is at rest.
type Result struct {
	Gated     bool
	Primary   int
	Secondary int
	Char      rune
	HasChar   bool
	// Magnitude is the conditioned magnitude of the secondary stick.
	Magnitude float32
	Commands  []Command
}

type Action int

const (
	ActionPress Action = iota
	ActionRelease
	ActionClick
)

func (a Action) String() string {
	switch a {
	case ActionPress:
		return "press"
	case ActionRelease:
		return "release"
	default:
		return "click"
	}
}

// Command is one call made on the sink.
type Command struct {
	Action Action
	Key    keys.Key
}

type Machine struct {
	table *layout.Table
	high  float32
	low   float32
}

// NewMachine returns a machine typing from table. high must be above low and
// both must lie in (0, 1].
func NewMachine(table *layout.Table, high, low float32) (*Machine, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil table", ErrThresholds)
	}
	if low <= 0 || high > 1 || high <= low {
		return nil, fmt.Errorf("%w: type=%.2f return=%.2f", ErrThresholds, high, low)
	}
	return &Machine{table: table, high: high, low: low}, nil
}

func (m *Machine) Table() *layout.Table { return m.table }

// Step evaluates one tick. Keys are emitted in order: held keys, the caps
// toggle, then the typed character. Sink errors are collected and returned;
// they never change the state transitions.
func (m *Machine) Step(state *State, in Input, sink Sink) (Result, error) {
	res := Result{Primary: -1, Secondary: -1}
	e := emitter{sink: sink, res: &res}

	m.hold(&state.BackspaceHeld, in.East, keys.Backspace, &e)
	m.hold(&state.ShiftHeld, in.LeftThumb, keys.Shift, &e)

	if in.RightTrigger && state.CanToggleCaps {
		e.click(keys.Control(keys.CapsLock))
		state.CanToggleCaps = false
	} else if !in.RightTrigger && !state.CanToggleCaps {
		state.CanToggleCaps = true
	}

	primary := stick.Condition(in.Primary)
	secondary := stick.Condition(in.Secondary)
	if primary.Magnitude() < m.low {
		res.Gated = true
		return res, e.err()
	}

	res.Primary = stick.Quantize(primary, m.table.Primary())
	res.Magnitude = secondary.Magnitude()
	if res.Magnitude > 0 {
		res.Secondary = stick.Quantize(secondary, m.table.Secondary())
		res.Char, res.HasChar = m.table.Lookup(res.Primary, res.Secondary)
	}

	if res.Magnitude >= m.high {
		if state.CanType && res.HasChar {
			e.click(keys.Char(res.Char))
			state.CanType = false
		}
	} else if res.Magnitude <= m.low {
		state.CanType = true
	}
	return res, e.err()
}

// ReleaseAll lets go of any key still held down and returns the releases it
// issued.
func (m *Machine) ReleaseAll(state *State, sink Sink) ([]Command, error) {
	res := Result{}
	e := emitter{sink: sink, res: &res}
	m.hold(&state.BackspaceHeld, false, keys.Backspace, &e)
	m.hold(&state.ShiftHeld, false, keys.Shift, &e)
	return res.Commands, e.err()
}

func (m *Machine) hold(held *bool, pressed bool, name keys.Named, e *emitter) {
	key := keys.Control(name)
	if pressed {
		e.press(key)
		*held = true
		return
	}
	if *held {
		e.release(key)
		*held = false
	}
}

type emitter struct {
	sink Sink
	res  *Result
	errs []error
}

func (e *emitter) press(k keys.Key)   { e.send(ActionPress, k, e.sink.Press) }
func (e *emitter) release(k keys.Key) { e.send(ActionRelease, k, e.sink.Release) }
func (e *emitter) click(k keys.Key)   { e.send(ActionClick, k, e.sink.Click) }

func (e *emitter) send(action Action, k keys.Key, fn func(keys.Key) error) {
	e.res.Commands = append(e.res.Commands, Command{Action: action, Key: k})
	if err := fn(k); err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s %s: %w", action, k, err))
	}
}

func (e *emitter) err() error {
	return errors.Join(e.errs...)
}
