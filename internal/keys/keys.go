// Package keys identifies the keystrokes the chord machine can emit.
package keys

import "fmt"

type Named int

const (
	NoKey Named = iota
	Backspace
	Shift
	CapsLock
)

func (n Named) String() string {
	switch n {
	case Backspace:
		return "Backspace"
	case Shift:
		return "Shift"
	case CapsLock:
		return "CapsLock"
	default:
		return "None"
	}
}

// Key is either a named control key or a literal character.
type Key struct {
	Named Named
	Char  rune
}

func Control(n Named) Key { return Key{Named: n} }

func Char(r rune) Key { return Key{Char: r} }

func (k Key) IsChar() bool { return k.Named == NoKey && k.Char != 0 }

func (k Key) String() string {
	if k.IsChar() {
		return fmt.Sprintf("%q", k.Char)
	}
	return k.Named.String()
}
