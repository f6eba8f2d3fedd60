package gamepad

import (
	"sync"
	"time"
)

const defaultQueueCapacity = 1024

type deviceState struct {
	axes    map[Axis]float32
	buttons map[Button]bool
}

// Hub stores the latest per-device state and queues change events. Drivers
// record into it from their reader goroutines; the poll loop drains it.
type Hub struct {
	mu       sync.RWMutex
	devices  map[DeviceID]*deviceState
	queue    []Event
	capacity int
	now      func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		devices:  make(map[DeviceID]*deviceState),
		capacity: defaultQueueCapacity,
		now:      time.Now,
	}
}

func (h *Hub) device(id DeviceID) *deviceState {
	d, ok := h.devices[id]
	if !ok {
		d = &deviceState{axes: make(map[Axis]float32), buttons: make(map[Button]bool)}
		h.devices[id] = d
	}
	return d
}

// SetAxis records an axis value, clamped to [-1, 1]. Unchanged values are not queued.
func (h *Hub) SetAxis(id DeviceID, axis Axis, value float32) {
	value = clampUnit(value)
	h.mu.Lock()
	defer h.mu.Unlock()
	d := h.device(id)
	if old, ok := d.axes[axis]; ok && old == value {
		return
	}
	d.axes[axis] = value
	h.pushLocked(Event{Device: id, Kind: EventAxis, Axis: axis, Value: value})
}

// SetButton records a button level. Unchanged levels are not queued.
func (h *Hub) SetButton(id DeviceID, button Button, pressed bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	d := h.device(id)
	if old, ok := d.buttons[button]; ok && old == pressed {
		return
	}
	d.buttons[button] = pressed
	var v float32
	if pressed {
		v = 1
	}
	h.pushLocked(Event{Device: id, Kind: EventButton, Button: button, Value: v})
}

// Connect registers a device and queues a connection event.
func (h *Hub) Connect(id DeviceID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.device(id)
	h.pushLocked(Event{Device: id, Kind: EventConnected})
}

// Disconnect forgets a device's state; subsequent reads are neutral.
func (h *Hub) Disconnect(id DeviceID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.devices[id]; !ok {
		return
	}
	delete(h.devices, id)
	h.pushLocked(Event{Device: id, Kind: EventDisconnected})
}

func (h *Hub) pushLocked(evt Event) {
	evt.Time = h.now()
	if len(h.queue) >= h.capacity {
		// Only state is read on evaluation, so the oldest change can go.
		h.queue = append(h.queue[:0], h.queue[1:]...)
	}
	h.queue = append(h.queue, evt)
}

func (h *Hub) DrainEvents() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.queue) == 0 {
		return nil
	}
	out := make([]Event, len(h.queue))
	copy(out, h.queue)
	h.queue = h.queue[:0]
	return out
}

func (h *Hub) AxisValue(id DeviceID, axis Axis) float32 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if d, ok := h.devices[id]; ok {
		return d.axes[axis]
	}
	return 0
}

func (h *Hub) ButtonPressed(id DeviceID, button Button) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if d, ok := h.devices[id]; ok {
		return d.buttons[button]
	}
	return false
}

func (h *Hub) Close() error { return nil }

func clampUnit(v float32) float32 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	case v != v: // NaN
		return 0
	}
	return v
}
