package gamepad

import (
	"errors"
	"math"
	"sync"
	"testing"
)

// TestHubRecordsChangesOnly 测试只有变化的值才会进入事件队列
func TestHubRecordsChangesOnly(t *testing.T) {
	h := NewHub()
	h.SetAxis(0, AxisLeftX, 0.5)
	h.SetAxis(0, AxisLeftX, 0.5)
	h.SetButton(0, ButtonEast, true)
	h.SetButton(0, ButtonEast, true)
	h.SetButton(0, ButtonEast, false)

	events := h.DrainEvents()
	if len(events) != 3 {
		t.Fatalf("events=%d, 期望 3: %+v", len(events), events)
	}
	if events[0].Kind != EventAxis || events[0].Axis != AxisLeftX || events[0].Value != 0.5 {
		t.Errorf("events[0]=%+v", events[0])
	}
	if events[2].Kind != EventButton || events[2].Value != 0 {
		t.Errorf("events[2]=%+v", events[2])
	}
	if again := h.DrainEvents(); again != nil {
		t.Fatalf("second drain returned %v", again)
	}
}

func TestHubLatestStateAndDefaults(t *testing.T) {
	h := NewHub()
	if h.AxisValue(3, AxisRightY) != 0 {
		t.Fatal("unknown device axis should read 0")
	}
	if h.ButtonPressed(3, ButtonRightTrigger) {
		t.Fatal("unknown device button should read false")
	}

	h.SetAxis(1, AxisRightY, 0.2)
	h.SetAxis(1, AxisRightY, -0.4)
	h.SetButton(1, ButtonLeftThumb, true)
	if got := h.AxisValue(1, AxisRightY); got != -0.4 {
		t.Fatalf("AxisValue=%v want -0.4", got)
	}
	if !h.ButtonPressed(1, ButtonLeftThumb) {
		t.Fatal("ButtonPressed should be true")
	}
	if h.AxisValue(1, AxisLeftX) != 0 {
		t.Fatal("unset axis should read 0")
	}
}

func TestHubClampsAxis(t *testing.T) {
	h := NewHub()
	tests := []struct {
		in, want float32
	}{
		{1.5, 1},
		{-3, -1},
		{float32(math.NaN()), 0},
		{0.25, 0.25},
	}
	for _, tt := range tests {
		h.SetAxis(0, AxisLeftY, tt.in)
		if got := h.AxisValue(0, AxisLeftY); got != tt.want {
			t.Errorf("SetAxis(%v) stored %v want %v", tt.in, got, tt.want)
		}
	}
}

func TestHubDisconnectResetsState(t *testing.T) {
	h := NewHub()
	h.Connect(2)
	h.SetButton(2, ButtonEast, true)
	h.Disconnect(2)
	if h.ButtonPressed(2, ButtonEast) {
		t.Fatal("disconnected device should read neutral")
	}
	events := h.DrainEvents()
	if len(events) != 3 || events[0].Kind != EventConnected || events[2].Kind != EventDisconnected {
		t.Fatalf("events=%+v", events)
	}
	h.Disconnect(2)
	if len(h.DrainEvents()) != 0 {
		t.Fatal("disconnecting an unknown device should not queue")
	}
}

func TestHubQueueBounded(t *testing.T) {
	h := NewHub()
	h.capacity = 4
	for i := 0; i < 10; i++ {
		h.SetAxis(0, AxisLeftX, float32(i)/10)
	}
	events := h.DrainEvents()
	if len(events) != 4 {
		t.Fatalf("queue length=%d want 4", len(events))
	}
	if events[3].Value != 0.9 {
		t.Fatalf("newest event value=%v want 0.9", events[3].Value)
	}
}

// TestHubConcurrentAccess 测试并发写入与读取的线程安全性
func TestHubConcurrentAccess(t *testing.T) {
	h := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.SetAxis(DeviceID(id), AxisLeftX, float32(j)/100)
				h.SetButton(DeviceID(id), ButtonEast, j%2 == 0)
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 100; j++ {
			h.DrainEvents()
			h.AxisValue(0, AxisLeftX)
		}
	}()
	wg.Wait()
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(Options{Driver: "telepathy"})
	if !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("Open error=%v want ErrUnknownDriver", err)
	}
}
