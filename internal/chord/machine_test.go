package chord

import (
	"errors"
	"math"
	"testing"

	"github.com/Versifine/pietype/internal/keys"
	"github.com/Versifine/pietype/internal/layout"
	"github.com/Versifine/pietype/internal/vmath"
)

type mockSink struct {
	commands []Command
	failOn   Action
	fail     bool
}

func (m *mockSink) do(action Action, key keys.Key) error {
	m.commands = append(m.commands, Command{Action: action, Key: key})
	if m.fail && m.failOn == action {
		return errors.New("sink failure")
	}
	return nil
}

func (m *mockSink) Press(key keys.Key) error   { return m.do(ActionPress, key) }
func (m *mockSink) Release(key keys.Key) error { return m.do(ActionRelease, key) }
func (m *mockSink) Click(key keys.Key) error   { return m.do(ActionClick, key) }

func (m *mockSink) clicks() []keys.Key {
	var out []keys.Key
	for _, c := range m.commands {
		if c.Action == ActionClick {
			out = append(out, c.Key)
		}
	}
	return out
}

// stickAt returns a raw sample whose conditioned magnitude is m.
func stickAt(deg float64, m float64) vmath.Vector2 {
	raw := math.Sqrt(m)
	rad := deg * math.Pi / 180
	return vmath.Vector2{X: float32(math.Sin(rad) * raw), Y: float32(math.Cos(rad) * raw)}
}

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	m, err := NewMachine(layout.Octant(), DefaultTypeThreshold, DefaultReturnThreshold)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	return m
}

func TestNewMachineValidatesThresholds(t *testing.T) {
	tests := []struct {
		name      string
		high, low float32
		wantErr   bool
	}{
		{"默认值", 0.7, 0.5, false},
		{"高阈值等于低阈值", 0.5, 0.5, true},
		{"高阈值低于低阈值", 0.4, 0.5, true},
		{"低阈值为零", 0.7, 0, true},
		{"高阈值超过1", 1.2, 0.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMachine(layout.Octant(), tt.high, tt.low)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewMachine(%v,%v) error=%v wantErr %v", tt.high, tt.low, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrThresholds) {
				t.Fatalf("error %v should wrap ErrThresholds", err)
			}
		})
	}
	if _, err := NewMachine(nil, 0.7, 0.5); err == nil {
		t.Fatal("NewMachine(nil table) should fail")
	}
}

// TestScenarioSingleClickPerStroke 场景A: 一次推杆只输出一个字符
func TestScenarioSingleClickPerStroke(t *testing.T) {
	m := newTestMachine(t)
	state := NewState()
	sink := &mockSink{}
	primary := stickAt(0, 1.0)

	for _, mag := range []float64{0, 0.2, 0.5, 0.65, 0.8, 0.8, 0.6, 0.3} {
		if _, err := m.Step(&state, Input{Primary: primary, Secondary: stickAt(90, mag)}, sink); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	clicks := sink.clicks()
	if len(clicks) != 1 || clicks[0] != keys.Char('b') {
		t.Fatalf("clicks=%v, 期望只有一次 'b'", clicks)
	}

	for _, mag := range []float64{0.6, 0.69, 0.6} {
		m.Step(&state, Input{Primary: primary, Secondary: stickAt(90, mag)}, sink)
	}
	if n := len(sink.clicks()); n != 1 {
		t.Fatalf("clicks after staying below HIGH=%d want 1", n)
	}

	m.Step(&state, Input{Primary: primary, Secondary: stickAt(90, 0.8)}, sink)
	if n := len(sink.clicks()); n != 2 {
		t.Fatalf("clicks after re-arm and rise=%d want 2", n)
	}
}

// TestHysteresisBand 测试迟滞区间内状态保持
func TestHysteresisBand(t *testing.T) {
	m := newTestMachine(t)
	state := NewState()
	sink := &mockSink{}
	primary := stickAt(90, 1.0)

	m.Step(&state, Input{Primary: primary, Secondary: stickAt(0, 0.9)}, sink)
	if state.CanType {
		t.Fatal("CanType should be false after firing")
	}
	for _, mag := range []float64{0.69, 0.51, 0.55, 0.68, 0.52} {
		m.Step(&state, Input{Primary: primary, Secondary: stickAt(0, mag)}, sink)
		if state.CanType {
			t.Fatalf("CanType re-armed inside band at m=%.2f", mag)
		}
	}
	if n := len(sink.clicks()); n != 1 {
		t.Fatalf("clicks=%d want 1", n)
	}

	m.Step(&state, Input{Primary: primary, Secondary: stickAt(0, 0.4)}, sink)
	if !state.CanType {
		t.Fatal("CanType should re-arm at m<=LOW")
	}
	for _, mag := range []float64{0.55, 0.65} {
		m.Step(&state, Input{Primary: primary, Secondary: stickAt(0, mag)}, sink)
	}
	if !state.CanType || len(sink.clicks()) != 1 {
		t.Fatal("rising inside the band must not fire")
	}
	m.Step(&state, Input{Primary: primary, Secondary: stickAt(0, 0.75)}, sink)
	if clicks := sink.clicks(); len(clicks) != 2 || clicks[1] != keys.Char('i') {
		t.Fatalf("clicks=%v want second click 'i'", clicks)
	}
}

func TestNoClickOnEmptyCellKeepsArmed(t *testing.T) {
	m := newTestMachine(t)
	state := NewState()
	sink := &mockSink{}
	// octant 7 quadrant 1 is empty
	res, _ := m.Step(&state, Input{Primary: stickAt(315, 1), Secondary: stickAt(90, 1)}, sink)
	if res.HasChar {
		t.Fatalf("expected empty cell, got %q", res.Char)
	}
	if len(sink.clicks()) != 0 || !state.CanType {
		t.Fatal("empty cell must not fire nor disarm")
	}
	// Moving onto a populated cell while still deflected fires.
	m.Step(&state, Input{Primary: stickAt(315, 1), Secondary: stickAt(0, 1)}, sink)
	if clicks := sink.clicks(); len(clicks) != 1 || clicks[0] != keys.Char(' ') {
		t.Fatalf("clicks=%v want space", clicks)
	}
}

// TestScenarioPrimaryGate 场景B: 主摇杆幅度不足时不输入
func TestScenarioPrimaryGate(t *testing.T) {
	m := newTestMachine(t)
	state := NewState()
	sink := &mockSink{}
	primary := vmath.Vector2{X: 0, Y: 0.3}

	for _, mag := range []float64{0, 0.9, 1, 0.2, 1} {
		res, err := m.Step(&state, Input{Primary: primary, Secondary: stickAt(90, mag)}, sink)
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if !res.Gated {
			t.Fatal("tick should be gated")
		}
		if res.Primary != -1 || res.Secondary != -1 {
			t.Fatalf("gated tick reported indices %d/%d", res.Primary, res.Secondary)
		}
	}
	if len(sink.commands) != 0 {
		t.Fatalf("gated ticks emitted %v", sink.commands)
	}
}

func TestGateDoesNotRearmTyping(t *testing.T) {
	m := newTestMachine(t)
	state := NewState()
	sink := &mockSink{}

	m.Step(&state, Input{Primary: stickAt(0, 1), Secondary: stickAt(0, 1)}, sink)
	// Primary released while secondary returns: typing state is left alone.
	m.Step(&state, Input{Secondary: stickAt(0, 0)}, sink)
	if state.CanType {
		t.Fatal("gated tick must not re-arm typing")
	}
	m.Step(&state, Input{Primary: stickAt(0, 1), Secondary: stickAt(0, 1)}, sink)
	if n := len(sink.clicks()); n != 1 {
		t.Fatalf("clicks=%d want 1", n)
	}
}

// TestSecondaryAtRestSelectsNothing 测试副摇杆静止时不报告象限
func TestSecondaryAtRestSelectsNothing(t *testing.T) {
	m := newTestMachine(t)
	state := NewState()
	sink := &mockSink{}

	res, err := m.Step(&state, Input{Primary: stickAt(90, 1)}, sink)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if res.Gated || res.Primary != 2 {
		t.Fatalf("result=%+v, 期望主扇区 2", res)
	}
	if res.Secondary != -1 || res.HasChar || res.Char != 0 || res.Magnitude != 0 {
		t.Fatalf("result=%+v, 期望静止的副摇杆无选择", res)
	}
	if !state.CanType {
		t.Fatal("静止的副摇杆应保持可输入状态")
	}

	res, _ = m.Step(&state, Input{Primary: stickAt(90, 1), Secondary: stickAt(0, 0.1)}, sink)
	if res.Secondary != 0 || res.Char != 'i' {
		t.Fatalf("result=%+v, 期望轻推副摇杆即选中 'i'", res)
	}
	if len(sink.commands) != 0 {
		t.Fatalf("commands=%v, 期望无输出", sink.commands)
	}
}

func TestGatedTickStillAppliesButtons(t *testing.T) {
	m := newTestMachine(t)
	state := NewState()
	sink := &mockSink{}

	m.Step(&state, Input{East: true, RightTrigger: true}, sink)
	want := []Command{
		{ActionPress, keys.Control(keys.Backspace)},
		{ActionClick, keys.Control(keys.CapsLock)},
	}
	assertCommands(t, sink.commands, want)
}

// TestScenarioCapsToggleEdges 场景C: 每次上升沿只切换一次大写锁定
func TestScenarioCapsToggleEdges(t *testing.T) {
	m := newTestMachine(t)
	state := NewState()
	sink := &mockSink{}

	for _, pressed := range []bool{true, true, true, false, true, true} {
		m.Step(&state, Input{RightTrigger: pressed}, sink)
	}
	clicks := sink.clicks()
	if len(clicks) != 2 {
		t.Fatalf("caps clicks=%d, 期望 2", len(clicks))
	}
	for _, k := range clicks {
		if k != keys.Control(keys.CapsLock) {
			t.Fatalf("unexpected click %v", k)
		}
	}
	if state.CanToggleCaps {
		t.Fatal("caps should stay disarmed while trigger is held")
	}
}

// TestScenarioBackspaceHold 场景D: 按住期间每帧按下, 松开时只释放一次
func TestScenarioBackspaceHold(t *testing.T) {
	m := newTestMachine(t)
	state := NewState()
	sink := &mockSink{}

	for _, pressed := range []bool{true, true, true, false, false} {
		m.Step(&state, Input{East: pressed}, sink)
	}
	bs := keys.Control(keys.Backspace)
	assertCommands(t, sink.commands, []Command{
		{ActionPress, bs},
		{ActionPress, bs},
		{ActionPress, bs},
		{ActionRelease, bs},
	})
	if state.BackspaceHeld {
		t.Fatal("BackspaceHeld should be cleared")
	}
}

func TestShiftHoldTracksLevel(t *testing.T) {
	m := newTestMachine(t)
	state := NewState()
	sink := &mockSink{}

	m.Step(&state, Input{LeftThumb: true}, sink)
	if !state.ShiftHeld {
		t.Fatal("ShiftHeld should be set")
	}
	m.Step(&state, Input{}, sink)
	shift := keys.Control(keys.Shift)
	assertCommands(t, sink.commands, []Command{{ActionPress, shift}, {ActionRelease, shift}})
}

// TestEmissionOrder 测试同一帧内的输出顺序: 保持键, 切换键, 字符
func TestEmissionOrder(t *testing.T) {
	m := newTestMachine(t)
	state := NewState()
	sink := &mockSink{}

	res, err := m.Step(&state, Input{
		LeftThumb:    true,
		RightTrigger: true,
		Primary:      stickAt(0, 1),
		Secondary:    stickAt(90, 1),
	}, sink)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	want := []Command{
		{ActionPress, keys.Control(keys.Shift)},
		{ActionClick, keys.Control(keys.CapsLock)},
		{ActionClick, keys.Char('b')},
	}
	assertCommands(t, sink.commands, want)
	assertCommands(t, res.Commands, want)
	if res.Primary != 0 || res.Secondary != 1 || res.Char != 'b' {
		t.Fatalf("result=%+v", res)
	}
}

func TestSinkErrorsDoNotChangeTransitions(t *testing.T) {
	m := newTestMachine(t)
	state := NewState()
	sink := &mockSink{fail: true, failOn: ActionClick}

	_, err := m.Step(&state, Input{Primary: stickAt(0, 1), Secondary: stickAt(0, 1)}, sink)
	if err == nil {
		t.Fatal("expected sink error")
	}
	if state.CanType {
		t.Fatal("CanType should flip even when the click failed")
	}
}

func TestReleaseAll(t *testing.T) {
	m := newTestMachine(t)
	state := NewState()
	sink := &mockSink{}

	m.Step(&state, Input{East: true, LeftThumb: true}, sink)
	sink.commands = nil
	released, err := m.ReleaseAll(&state, sink)
	if err != nil {
		t.Fatalf("ReleaseAll: %v", err)
	}
	assertCommands(t, released, sink.commands)
	assertCommands(t, sink.commands, []Command{
		{ActionRelease, keys.Control(keys.Backspace)},
		{ActionRelease, keys.Control(keys.Shift)},
	})
	sink.commands = nil
	if released, _ := m.ReleaseAll(&state, sink); len(released) != 0 || len(sink.commands) != 0 {
		t.Fatalf("second ReleaseAll emitted %v", sink.commands)
	}
}

func TestDenseLayoutUsesEightSecondarySectors(t *testing.T) {
	m, err := NewMachine(layout.Dense(), DefaultTypeThreshold, DefaultReturnThreshold)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	state := NewState()
	sink := &mockSink{}
	res, _ := m.Step(&state, Input{Primary: stickAt(0, 1), Secondary: stickAt(45, 1)}, sink)
	if res.Secondary != 1 || res.Char != 'a' {
		t.Fatalf("dense result=%+v want secondary 1 'a'", res)
	}
}

func assertCommands(t *testing.T, got, want []Command) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("commands=%v, 期望 %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("command[%d]=%v, 期望 %v", i, got[i], want[i])
		}
	}
}
