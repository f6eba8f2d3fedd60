//go:build !linux

package gamepad

import "errors"

type EvdevProvider struct {
	*Hub
}

func OpenEvdev(string) (*EvdevProvider, error) {
	return nil, errors.New("evdev driver is only available on linux")
}
