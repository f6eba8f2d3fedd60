package gamepad

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/0xcafed00d/joystick"
)

const (
	defaultJoystickPoll = 4 * time.Millisecond
	joystickAxisMax     = 32767
)

// JoystickMapping names the axis and button indices of a joystick-API device.
// Indices below zero are left unmapped.
type JoystickMapping struct {
	LeftX        int  `yaml:"left_x"`
	LeftY        int  `yaml:"left_y"`
	RightX       int  `yaml:"right_x"`
	RightY       int  `yaml:"right_y"`
	East         int  `yaml:"east"`
	LeftThumb    int  `yaml:"left_thumb"`
	RightTrigger int  `yaml:"right_trigger"`
	InvertY      bool `yaml:"invert_y"`
}

// XpadMapping is the layout the Linux xpad driver reports for Xbox-style pads.
func XpadMapping() JoystickMapping {
	return JoystickMapping{
		LeftX:        0,
		LeftY:        1,
		RightX:       3,
		RightY:       4,
		East:         1,
		LeftThumb:    9,
		RightTrigger: 5,
		InvertY:      true,
	}
}

// JoystickProvider polls a joystick opened through the platform joystick API
// and turns state differences into events.
type JoystickProvider struct {
	*Hub
	js       joystick.Joystick
	id       DeviceID
	mapping  JoystickMapping
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func OpenJoystick(index int, mapping JoystickMapping, interval time.Duration) (*JoystickProvider, error) {
	js, err := joystick.Open(index)
	if err != nil {
		return nil, fmt.Errorf("%w: joystick %d: %v", ErrNoDevice, index, err)
	}
	if interval <= 0 {
		interval = defaultJoystickPoll
	}
	p := &JoystickProvider{
		Hub:      NewHub(),
		js:       js,
		id:       DeviceID(index),
		mapping:  mapping,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	slog.Info("Opened joystick", "index", index, "name", js.Name(), "axes", js.AxisCount(), "buttons", js.ButtonCount())
	p.Connect(p.id)
	go p.pollLoop()
	return p, nil
}

func (p *JoystickProvider) pollLoop() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			state, err := p.js.Read()
			if err != nil {
				slog.Warn("Joystick read failed", "error", err)
				p.Disconnect(p.id)
				return
			}
			p.apply(state)
		}
	}
}

func (p *JoystickProvider) apply(state joystick.State) {
	m := p.mapping
	p.setAxis(state.AxisData, m.LeftX, AxisLeftX, false)
	p.setAxis(state.AxisData, m.LeftY, AxisLeftY, m.InvertY)
	p.setAxis(state.AxisData, m.RightX, AxisRightX, false)
	p.setAxis(state.AxisData, m.RightY, AxisRightY, m.InvertY)
	p.setButton(state.Buttons, m.East, ButtonEast)
	p.setButton(state.Buttons, m.LeftThumb, ButtonLeftThumb)
	p.setButton(state.Buttons, m.RightTrigger, ButtonRightTrigger)
}

func (p *JoystickProvider) setAxis(data []int, index int, axis Axis, invert bool) {
	if index < 0 || index >= len(data) {
		return
	}
	v := float32(data[index]) / joystickAxisMax
	if invert {
		v = -v
	}
	p.SetAxis(p.id, axis, v)
}

func (p *JoystickProvider) setButton(bits uint32, index int, button Button) {
	if index < 0 || index >= 32 {
		return
	}
	p.SetButton(p.id, button, bits&(1<<uint(index)) != 0)
}

func (p *JoystickProvider) Close() error {
	p.stopOnce.Do(func() {
		close(p.stopCh)
		<-p.done
		p.js.Close()
	})
	return nil
}
