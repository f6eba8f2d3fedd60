// Package sink injects keystrokes into the host.
package sink

import (
	"errors"
	"fmt"
	"io"

	"github.com/Versifine/pietype/internal/keys"
)

var (
	ErrUnmappedKey   = errors.New("key has no mapping")
	ErrUnknownDriver = errors.New("unknown sink driver")
)

const (
	DriverUinput  = "uinput"
	DriverRobotgo = "robotgo"
	DriverKeybd   = "keybd"
	DriverLog     = "log"
)

// Sink accepts press, release and click commands and must be closed when done.
type Sink interface {
	Press(key keys.Key) error
	Release(key keys.Key) error
	Click(key keys.Key) error
	io.Closer
}

// Options selects and configures a sink driver.
type Options struct {
	Driver string
	// DeviceName names the virtual keyboard where the driver creates one.
	DeviceName string
}

func Open(opts Options) (Sink, error) {
	switch opts.Driver {
	case DriverUinput:
		s, err := NewUinput(opts.DeviceName)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverRobotgo:
		return NewRobotgo(), nil
	case DriverKeybd:
		s, err := NewKeybd()
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverLog, "":
		return NewLog(nil), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
