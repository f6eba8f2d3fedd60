package sink

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Versifine/pietype/internal/keys"
	"github.com/micmonay/keybd_event"
)

// keybd_event needs time for the desktop to pick up its virtual device on linux.
const keybdLinuxSettle = 2 * time.Second

var keybdChars = map[rune]int{
	'a': keybd_event.VK_A, 'b': keybd_event.VK_B, 'c': keybd_event.VK_C, 'd': keybd_event.VK_D,
	'e': keybd_event.VK_E, 'f': keybd_event.VK_F, 'g': keybd_event.VK_G, 'h': keybd_event.VK_H,
	'i': keybd_event.VK_I, 'j': keybd_event.VK_J, 'k': keybd_event.VK_K, 'l': keybd_event.VK_L,
	'm': keybd_event.VK_M, 'n': keybd_event.VK_N, 'o': keybd_event.VK_O, 'p': keybd_event.VK_P,
	'q': keybd_event.VK_Q, 'r': keybd_event.VK_R, 's': keybd_event.VK_S, 't': keybd_event.VK_T,
	'u': keybd_event.VK_U, 'v': keybd_event.VK_V, 'w': keybd_event.VK_W, 'x': keybd_event.VK_X,
	'y': keybd_event.VK_Y, 'z': keybd_event.VK_Z,
	' ': keybd_event.VK_SPACE,
}

var keybdNamed = map[keys.Named]int{
	keys.Backspace: keybd_event.VK_BACKSPACE,
	keys.CapsLock:  keybd_event.VK_CAPSLOCK,
}

// Keybd types through micmonay/keybd_event. Shift is driven through the
// bonding's modifier flag since the library has no standalone shift code.
type Keybd struct {
	mu sync.Mutex
	kb keybd_event.KeyBonding
}

func NewKeybd() (*Keybd, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("initialize keyboard: %w", err)
	}
	if runtime.GOOS == "linux" {
		time.Sleep(keybdLinuxSettle)
	}
	return &Keybd{kb: kb}, nil
}

func keybdCode(key keys.Key) (int, error) {
	if key.IsChar() {
		if code, ok := keybdChars[key.Char]; ok {
			return code, nil
		}
	} else if code, ok := keybdNamed[key.Named]; ok {
		return code, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnmappedKey, key)
}

func (k *Keybd) prepare(key keys.Key) error {
	k.kb.Clear()
	k.kb.HasSHIFT(false)
	if key.Named == keys.Shift {
		k.kb.HasSHIFT(true)
		return nil
	}
	code, err := keybdCode(key)
	if err != nil {
		return err
	}
	k.kb.SetKeys(code)
	return nil
}

func (k *Keybd) Press(key keys.Key) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.prepare(key); err != nil {
		return err
	}
	return k.kb.Press()
}

func (k *Keybd) Release(key keys.Key) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.prepare(key); err != nil {
		return err
	}
	return k.kb.Release()
}

func (k *Keybd) Click(key keys.Key) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.prepare(key); err != nil {
		return err
	}
	return k.kb.Launching()
}

func (k *Keybd) Close() error { return nil }
