//go:build linux

package gamepad

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync/atomic"

	evdev "github.com/holoplot/go-evdev"
)

var evdevAxes = map[evdev.EvCode]Axis{
	evdev.ABS_X:  AxisLeftX,
	evdev.ABS_Y:  AxisLeftY,
	evdev.ABS_RX: AxisRightX,
	evdev.ABS_RY: AxisRightY,
}

var evdevButtons = map[evdev.EvCode]Button{
	evdev.BTN_EAST:   ButtonEast,
	evdev.BTN_THUMBL: ButtonLeftThumb,
	evdev.BTN_TR:     ButtonRightTrigger,
}

type absRange struct {
	min, max int32
}

// EvdevProvider reads one Linux input device.
type EvdevProvider struct {
	*Hub
	dev    *evdev.InputDevice
	id     DeviceID
	ranges map[evdev.EvCode]absRange
	closed atomic.Bool
}

// OpenEvdev opens the device at path, or the first gamepad-like device when
// path is empty.
func OpenEvdev(path string) (*EvdevProvider, error) {
	dev, path, err := openEvdevDevice(path)
	if err != nil {
		return nil, err
	}

	infos, err := dev.AbsInfos()
	if err != nil {
		_ = dev.Close()
		return nil, fmt.Errorf("read abs info: %w", err)
	}
	p := &EvdevProvider{
		Hub:    NewHub(),
		dev:    dev,
		ranges: make(map[evdev.EvCode]absRange),
	}
	for code := range evdevAxes {
		info, ok := infos[code]
		if !ok {
			continue
		}
		r := absRange{min: info.Minimum, max: info.Maximum}
		p.ranges[code] = r
		p.SetAxis(p.id, evdevAxes[code], p.normalize(code, info.Value))
	}

	name, _ := dev.Name()
	slog.Info("Opened evdev gamepad", "name", name, "path", path)
	p.Connect(p.id)
	go p.readLoop()
	return p, nil
}

func openEvdevDevice(path string) (*evdev.InputDevice, string, error) {
	if path != "" {
		dev, err := evdev.Open(path)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s: %v", ErrNoDevice, path, err)
		}
		return dev, path, nil
	}

	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, "", fmt.Errorf("%w: list input devices: %v", ErrNoDevice, err)
	}
	for _, candidate := range paths {
		dev, err := evdev.Open(candidate.Path)
		if err != nil {
			slog.Debug("Skipping input device", "path", candidate.Path, "error", err)
			continue
		}
		if looksLikeGamepad(dev) {
			return dev, candidate.Path, nil
		}
		_ = dev.Close()
	}
	return nil, "", ErrNoDevice
}

func looksLikeGamepad(dev *evdev.InputDevice) bool {
	abs := dev.CapableEvents(evdev.EV_ABS)
	keys := dev.CapableEvents(evdev.EV_KEY)
	return slices.Contains(abs, evdev.ABS_RX) && slices.Contains(keys, evdev.BTN_EAST)
}

func (p *EvdevProvider) readLoop() {
	for {
		ev, err := p.dev.ReadOne()
		if err != nil {
			if !p.closed.Load() {
				slog.Warn("Gamepad read failed", "error", err)
				p.Disconnect(p.id)
			}
			return
		}
		switch ev.Type {
		case evdev.EV_ABS:
			if axis, ok := evdevAxes[ev.Code]; ok {
				p.SetAxis(p.id, axis, p.normalize(ev.Code, ev.Value))
			}
		case evdev.EV_KEY:
			if button, ok := evdevButtons[ev.Code]; ok {
				p.SetButton(p.id, button, ev.Value != 0)
			}
		}
	}
}

// normalize maps a raw axis value onto [-1, 1]. Evdev Y axes grow downwards,
// so they are flipped to keep up positive.
func (p *EvdevProvider) normalize(code evdev.EvCode, value int32) float32 {
	r, ok := p.ranges[code]
	if !ok {
		return 0
	}
	v := scaleAxis(value, r.min, r.max)
	if code == evdev.ABS_Y || code == evdev.ABS_RY {
		v = -v
	}
	return v
}

func (p *EvdevProvider) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.dev.Close()
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}
