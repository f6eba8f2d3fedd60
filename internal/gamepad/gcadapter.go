package gamepad

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/karalabe/usb"
)

const (
	gcVendorID   = 0x057E
	gcProductID  = 0x0337
	gcReportSize = 37
	gcReportTag  = 0x21
	gcPorts      = 4

	gcStickRadius  = 80.0
	gcStickScale   = 1.0 / gcStickRadius
	gcStickEpsilon = 1e-3
)

var gcStartPayload = []byte{0x13}

type gcButtons struct {
	A, B, X, Y, Z, L, R, Start bool
}

type gcPort struct {
	PluggedIn bool
	Buttons   gcButtons
	StickX    uint8
	StickY    uint8
	CX        uint8
	CY        uint8
}

func neutralGCPort() gcPort {
	return gcPort{StickX: 128, StickY: 128, CX: 128, CY: 128}
}

// decodeGCReport splits an adapter report into its four ports.
func decodeGCReport(data []byte) ([gcPorts]gcPort, error) {
	var ports [gcPorts]gcPort
	if len(data) < gcReportSize {
		return ports, fmt.Errorf("short adapter report: %d bytes", len(data))
	}
	if data[0] != gcReportTag {
		return ports, fmt.Errorf("unexpected adapter report tag 0x%02x", data[0])
	}
	for i := range ports {
		b := data[9*i+1:]
		status := b[0]
		ports[i] = gcPort{
			PluggedIn: status == 0x10 || status == 0x14,
			Buttons: gcButtons{
				Y:     b[1]&0x08 != 0,
				X:     b[1]&0x04 != 0,
				B:     b[1]&0x02 != 0,
				A:     b[1]&0x01 != 0,
				L:     b[2]&0x08 != 0,
				R:     b[2]&0x04 != 0,
				Z:     b[2]&0x02 != 0,
				Start: b[2]&0x01 != 0,
			},
			StickX: b[3],
			StickY: b[4],
			CX:     b[5],
			CY:     b[6],
		}
	}
	return ports, nil
}

// gcStick converts a raw stick reading into [-1, 1] relative to the neutral
// position captured at plug-in, clamped to the octagonal gate radius.
func gcStick(x, y, neutralX, neutralY uint8) (float32, float32) {
	fx := clampOffset(int(x) - int(neutralX))
	fy := clampOffset(int(y) - int(neutralY))
	magSquared := fx*fx + fy*fy
	if magSquared < gcStickEpsilon {
		return 0, 0
	}
	if mag := math.Sqrt(magSquared); mag > gcStickRadius {
		fx = fx * gcStickRadius / mag
		fy = fy * gcStickRadius / mag
	}
	return float32(fx * gcStickScale), float32(fy * gcStickScale)
}

func clampOffset(d int) float64 {
	if d > 127 {
		d = 127
	} else if d < -128 {
		d = -128
	}
	return float64(d)
}

// GCAdapterProvider reads a GameCube controller USB adapter. Every port is
// reported as its own device.
type GCAdapterProvider struct {
	*Hub
	dev     usb.Device
	mu      sync.Mutex
	offsets [gcPorts]gcPort
	plugged [gcPorts]bool
	closed  atomic.Bool
	done    chan struct{}
}

func OpenGCAdapter() (*GCAdapterProvider, error) {
	infos, err := usb.Enumerate(gcVendorID, gcProductID)
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate usb: %v", ErrNoDevice, err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("%w: no GameCube adapter", ErrNoDevice)
	}
	dev, err := infos[0].Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open GameCube adapter: %v", ErrNoDevice, err)
	}
	if _, err := dev.Write(gcStartPayload); err != nil {
		_ = dev.Close()
		return nil, fmt.Errorf("start GameCube adapter: %w", err)
	}

	p := &GCAdapterProvider{Hub: NewHub(), dev: dev, done: make(chan struct{})}
	for i := range p.offsets {
		p.offsets[i] = neutralGCPort()
	}
	slog.Info("Opened GameCube adapter", "path", infos[0].Path)
	go p.readLoop()
	return p, nil
}

func (p *GCAdapterProvider) readLoop() {
	defer close(p.done)
	buf := make([]byte, gcReportSize)
	for {
		n, err := p.dev.Read(buf)
		if err != nil {
			if !p.closed.Load() {
				slog.Warn("GameCube adapter read failed", "error", err)
				for i := 0; i < gcPorts; i++ {
					p.Disconnect(DeviceID(i))
				}
			}
			return
		}
		ports, err := decodeGCReport(buf[:n])
		if err != nil {
			slog.Debug("Dropping adapter report", "error", err)
			continue
		}
		p.apply(ports)
	}
}

func (p *GCAdapterProvider) apply(ports [gcPorts]gcPort) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, port := range ports {
		id := DeviceID(i)
		if port.PluggedIn != p.plugged[i] {
			p.plugged[i] = port.PluggedIn
			if !port.PluggedIn {
				p.Disconnect(id)
				continue
			}
			// Sticks are assumed to rest when the controller is plugged in.
			p.offsets[i] = port
			p.Connect(id)
		}
		if !port.PluggedIn {
			continue
		}
		off := p.offsets[i]
		lx, ly := gcStick(port.StickX, port.StickY, off.StickX, off.StickY)
		rx, ry := gcStick(port.CX, port.CY, off.CX, off.CY)
		p.SetAxis(id, AxisLeftX, lx)
		p.SetAxis(id, AxisLeftY, ly)
		p.SetAxis(id, AxisRightX, rx)
		p.SetAxis(id, AxisRightY, ry)
		p.SetButton(id, ButtonEast, port.Buttons.B)
		p.SetButton(id, ButtonLeftThumb, port.Buttons.L)
		p.SetButton(id, ButtonRightTrigger, port.Buttons.R)
	}
}

func (p *GCAdapterProvider) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.dev.Close()
}
