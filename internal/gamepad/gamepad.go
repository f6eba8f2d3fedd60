// Package gamepad reads controllers and exposes their latest axis and button
// state together with a queue of change events.
package gamepad

import (
	"errors"
	"time"
)

var (
	ErrNoDevice      = errors.New("no gamepad found")
	ErrUnknownDriver = errors.New("unknown gamepad driver")
)

type DeviceID int

type Axis string

const (
	AxisLeftX  Axis = "left-stick-x"
	AxisLeftY  Axis = "left-stick-y"
	AxisRightX Axis = "right-stick-x"
	AxisRightY Axis = "right-stick-y"
)

type Button string

const (
	ButtonEast         Button = "east"
	ButtonLeftThumb    Button = "left-thumb"
	ButtonRightTrigger Button = "right-trigger"
)

type EventKind int

const (
	EventAxis EventKind = iota
	EventButton
	EventConnected
	EventDisconnected
)

// Event is a single change reported by a device.
type Event struct {
	Device DeviceID
	Kind   EventKind
	Axis   Axis
	Button Button
	Value  float32
	Time   time.Time
}

// Provider is a source of controller state.
type Provider interface {
	// DrainEvents returns every event queued since the last call without blocking.
	DrainEvents() []Event
	// AxisValue reports the latest value in [-1, 1]; unknown axes read 0.
	AxisValue(id DeviceID, axis Axis) float32
	// ButtonPressed reports the latest button level; unknown buttons read false.
	ButtonPressed(id DeviceID, button Button) bool
	Close() error
}
