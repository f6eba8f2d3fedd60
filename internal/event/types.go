package event

import (
	"github.com/Versifine/pietype/internal/chord"
	"github.com/Versifine/pietype/internal/gamepad"
	"github.com/Versifine/pietype/internal/keys"
)

const (
	EventSnapshot = "chord.snapshot"
	EventKey      = "key.emitted"
	EventDevice   = "device.active"
)

// Snapshot is what one evaluated tick saw. Presentation reads it; nothing
// writes it back.
type Snapshot struct {
	Device    gamepad.DeviceID
	Gated     bool
	Primary   int
	Secondary int
	Char      rune
	HasChar   bool
	Magnitude float32
	State     chord.State
}

type KeyEmitted struct {
	Action chord.Action
	Key    keys.Key
}

type DeviceActive struct {
	Device gamepad.DeviceID
}
