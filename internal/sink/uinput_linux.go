//go:build linux

package sink

import (
	"fmt"

	"github.com/Versifine/pietype/internal/keys"
	"github.com/bendahl/uinput"
)

const uinputPath = "/dev/uinput"

var uinputNamed = map[keys.Named]int{
	keys.Backspace: uinput.KeyBackspace,
	keys.Shift:     uinput.KeyLeftshift,
	keys.CapsLock:  uinput.KeyCapslock,
}

var uinputChars = map[rune]int{
	'a': uinput.KeyA, 'b': uinput.KeyB, 'c': uinput.KeyC, 'd': uinput.KeyD,
	'e': uinput.KeyE, 'f': uinput.KeyF, 'g': uinput.KeyG, 'h': uinput.KeyH,
	'i': uinput.KeyI, 'j': uinput.KeyJ, 'k': uinput.KeyK, 'l': uinput.KeyL,
	'm': uinput.KeyM, 'n': uinput.KeyN, 'o': uinput.KeyO, 'p': uinput.KeyP,
	'q': uinput.KeyQ, 'r': uinput.KeyR, 's': uinput.KeyS, 't': uinput.KeyT,
	'u': uinput.KeyU, 'v': uinput.KeyV, 'w': uinput.KeyW, 'x': uinput.KeyX,
	'y': uinput.KeyY, 'z': uinput.KeyZ,
	' ': uinput.KeySpace, '.': uinput.KeyDot, ',': uinput.KeyComma,
}

// Uinput types through a virtual keyboard created with /dev/uinput.
type Uinput struct {
	kb uinput.Keyboard
}

func NewUinput(name string) (*Uinput, error) {
	if name == "" {
		name = "pietype"
	}
	kb, err := uinput.CreateKeyboard(uinputPath, []byte(name))
	if err != nil {
		return nil, fmt.Errorf("create virtual keyboard: %w", err)
	}
	return &Uinput{kb: kb}, nil
}

func uinputCode(key keys.Key) (int, error) {
	if key.IsChar() {
		if code, ok := uinputChars[key.Char]; ok {
			return code, nil
		}
	} else if code, ok := uinputNamed[key.Named]; ok {
		return code, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnmappedKey, key)
}

func (u *Uinput) Press(key keys.Key) error {
	code, err := uinputCode(key)
	if err != nil {
		return err
	}
	return u.kb.KeyDown(code)
}

func (u *Uinput) Release(key keys.Key) error {
	code, err := uinputCode(key)
	if err != nil {
		return err
	}
	return u.kb.KeyUp(code)
}

func (u *Uinput) Click(key keys.Key) error {
	code, err := uinputCode(key)
	if err != nil {
		return err
	}
	return u.kb.KeyPress(code)
}

func (u *Uinput) Close() error {
	return u.kb.Close()
}
