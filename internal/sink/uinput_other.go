//go:build !linux

package sink

import (
	"errors"

	"github.com/Versifine/pietype/internal/keys"
)

type Uinput struct{}

func NewUinput(string) (*Uinput, error) {
	return nil, errors.New("uinput sink is only available on linux")
}

func (u *Uinput) Press(keys.Key) error   { return nil }
func (u *Uinput) Release(keys.Key) error { return nil }
func (u *Uinput) Click(keys.Key) error   { return nil }
func (u *Uinput) Close() error           { return nil }
