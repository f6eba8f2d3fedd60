package sink

import (
	"fmt"

	"github.com/Versifine/pietype/internal/keys"
	"github.com/go-vgo/robotgo"
)

var robotgoNamed = map[keys.Named]string{
	keys.Backspace: "backspace",
	keys.Shift:     "shift",
	keys.CapsLock:  "capslock",
}

// Robotgo types through robotgo's platform keyboard backend.
type Robotgo struct{}

func NewRobotgo() *Robotgo { return &Robotgo{} }

func robotgoKey(key keys.Key) (string, error) {
	if key.IsChar() {
		switch {
		case key.Char == ' ':
			return "space", nil
		case key.Char >= 'a' && key.Char <= 'z', key.Char >= '0' && key.Char <= '9':
			return string(key.Char), nil
		case key.Char == '.' || key.Char == ',':
			return string(key.Char), nil
		}
	} else if name, ok := robotgoNamed[key.Named]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnmappedKey, key)
}

func (r *Robotgo) Press(key keys.Key) error {
	name, err := robotgoKey(key)
	if err != nil {
		return err
	}
	return robotgo.KeyToggle(name, "down")
}

func (r *Robotgo) Release(key keys.Key) error {
	name, err := robotgoKey(key)
	if err != nil {
		return err
	}
	return robotgo.KeyToggle(name, "up")
}

func (r *Robotgo) Click(key keys.Key) error {
	name, err := robotgoKey(key)
	if err != nil {
		return err
	}
	return robotgo.KeyTap(name)
}

func (r *Robotgo) Close() error { return nil }
