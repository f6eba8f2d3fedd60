package gamepad

import (
	"fmt"
	"time"
)

const (
	DriverEvdev     = "evdev"
	DriverJoystick  = "joystick"
	DriverGCAdapter = "gcadapter"
)

// Options selects and configures a hardware driver.
type Options struct {
	Driver       string
	Device       string
	Index        int
	Joystick     JoystickMapping
	PollInterval time.Duration
}

// Open starts the hardware driver named by opts.Driver.
func Open(opts Options) (Provider, error) {
	switch opts.Driver {
	case DriverEvdev:
		p, err := OpenEvdev(opts.Device)
		if err != nil {
			return nil, err
		}
		return p, nil
	case DriverJoystick:
		p, err := OpenJoystick(opts.Index, opts.Joystick, opts.PollInterval)
		if err != nil {
			return nil, err
		}
		return p, nil
	case DriverGCAdapter:
		p, err := OpenGCAdapter()
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
