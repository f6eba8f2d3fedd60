// Package pipeline runs the poll loop that feeds controller state through the
// chord machine.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Versifine/pietype/internal/chord"
	"github.com/Versifine/pietype/internal/event"
	"github.com/Versifine/pietype/internal/gamepad"
	"github.com/Versifine/pietype/internal/vmath"
)

const DefaultPollInterval = 5 * time.Millisecond

var ErrMissingDependency = errors.New("pipeline dependency missing")

type Loop struct {
	provider gamepad.Provider
	machine  *chord.Machine
	sink     chord.Sink
	bus      *event.Bus
	interval time.Duration

	state     chord.State
	active    gamepad.DeviceID
	hasActive bool
}

// New builds a loop. bus may be nil; interval <= 0 selects DefaultPollInterval.
func New(provider gamepad.Provider, machine *chord.Machine, sink chord.Sink, bus *event.Bus, interval time.Duration) (*Loop, error) {
	if provider == nil || machine == nil || sink == nil {
		return nil, ErrMissingDependency
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Loop{
		provider: provider,
		machine:  machine,
		sink:     sink,
		bus:      bus,
		interval: interval,
		state:    chord.NewState(),
	}, nil
}

// State returns a copy of the chord state.
func (l *Loop) State() chord.State { return l.state }

// Tick drains pending controller events and, if any arrived, evaluates the
// latest state of the most recently active device once. It reports whether an
// evaluation took place.
func (l *Loop) Tick() bool {
	events := l.provider.DrainEvents()
	if len(events) == 0 {
		return false
	}
	for _, evt := range events {
		if evt.Kind == gamepad.EventDisconnected {
			continue
		}
		if !l.hasActive || evt.Device != l.active {
			l.active = evt.Device
			l.hasActive = true
			slog.Info("Active gamepad changed", "device", evt.Device)
			l.bus.Publish(event.EventDevice, event.DeviceActive{Device: evt.Device})
		}
	}

	in := l.read(l.active)
	res, err := l.machine.Step(&l.state, in, l.sink)
	if err != nil {
		slog.Warn("Keystroke sink failed", "error", err)
	}
	l.publish(res)
	return true
}

// Run ticks every poll interval until ctx ends, then releases held keys.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	slog.Info("Poll loop started", "interval", l.interval, "layout", l.machine.Table().Name())
	for {
		l.Tick()
		select {
		case <-ctx.Done():
			l.Shutdown()
			return nil
		case <-ticker.C:
		}
	}
}

// Shutdown releases any key the loop still holds.
func (l *Loop) Shutdown() {
	released, err := l.machine.ReleaseAll(&l.state, l.sink)
	if err != nil {
		slog.Warn("Releasing held keys failed", "error", err)
	}
	if len(released) > 0 {
		slog.Info("Released held keys", "count", len(released))
	}
	for _, cmd := range released {
		l.bus.Publish(event.EventKey, event.KeyEmitted{Action: cmd.Action, Key: cmd.Key})
	}
}

func (l *Loop) read(id gamepad.DeviceID) chord.Input {
	p := l.provider
	return chord.Input{
		East:         p.ButtonPressed(id, gamepad.ButtonEast),
		LeftThumb:    p.ButtonPressed(id, gamepad.ButtonLeftThumb),
		RightTrigger: p.ButtonPressed(id, gamepad.ButtonRightTrigger),
		Primary: vmath.Vector2{
			X: p.AxisValue(id, gamepad.AxisLeftX),
			Y: p.AxisValue(id, gamepad.AxisLeftY),
		},
		Secondary: vmath.Vector2{
			X: p.AxisValue(id, gamepad.AxisRightX),
			Y: p.AxisValue(id, gamepad.AxisRightY),
		},
	}
}

func (l *Loop) publish(res chord.Result) {
	for _, cmd := range res.Commands {
		slog.Debug("Key emitted", "action", cmd.Action, "key", cmd.Key)
		l.bus.Publish(event.EventKey, event.KeyEmitted{Action: cmd.Action, Key: cmd.Key})
	}
	l.bus.Publish(event.EventSnapshot, event.Snapshot{
		Device:    l.active,
		Gated:     res.Gated,
		Primary:   res.Primary,
		Secondary: res.Secondary,
		Char:      res.Char,
		HasChar:   res.HasChar,
		Magnitude: res.Magnitude,
		State:     l.state,
	})
}
