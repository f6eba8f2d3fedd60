// Package overlay draws the character wheels and the text typed so far in the
// terminal. It only observes the pipeline through the event bus.
package overlay

import (
	"context"
	"fmt"
	"math"
	"sync"
	"unicode"

	"github.com/Versifine/pietype/internal/chord"
	"github.com/Versifine/pietype/internal/event"
	"github.com/Versifine/pietype/internal/keys"
	"github.com/Versifine/pietype/internal/layout"
	"github.com/gdamore/tcell/v2"
)

const (
	wheelWidth  = 9
	wheelHeight = 5
	maxText     = 64
	emptyGlyph  = '·'
	spaceGlyph  = '␣'
)

var (
	styleNormal = tcell.StyleDefault
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleActive = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleCursor = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorGreen)
)

// wheelSlots places the eight primary sectors, clockwise from up, around the
// centre of a 3x3 grid.
var wheelSlots = [8][2]int{
	{1, 0}, {2, 0}, {2, 1}, {2, 2}, {1, 2}, {0, 2}, {0, 1}, {0, 0},
}

type View struct {
	screen tcell.Screen
	table  *layout.Table

	mu        sync.Mutex
	snap      event.Snapshot
	hasSnap   bool
	text      []rune
	caps      bool
	shift     bool
	backspace bool

	dirty chan struct{}
}

func New(screen tcell.Screen, table *layout.Table) *View {
	return &View{
		screen: screen,
		table:  table,
		dirty:  make(chan struct{}, 1),
	}
}

// Attach subscribes the view to snapshot and key events.
func (v *View) Attach(bus *event.Bus) {
	bus.Subscribe(event.EventSnapshot, v.handleSnapshot)
	bus.Subscribe(event.EventKey, v.handleKey)
}

func (v *View) handleSnapshot(raw any) {
	snap, ok := raw.(event.Snapshot)
	if !ok {
		return
	}
	v.mu.Lock()
	v.snap = snap
	v.hasSnap = true
	v.mu.Unlock()
	v.markDirty()
}

func (v *View) handleKey(raw any) {
	evt, ok := raw.(event.KeyEmitted)
	if !ok {
		return
	}
	v.mu.Lock()
	v.applyKey(evt)
	v.mu.Unlock()
	v.markDirty()
}

// applyKey mirrors the emitted keystrokes onto the preview text. Held keys
// are pressed every tick, so only the first press after a release counts.
func (v *View) applyKey(evt event.KeyEmitted) {
	k := evt.Key
	switch {
	case k.IsChar() && evt.Action == chord.ActionClick:
		r := k.Char
		if v.caps != v.shift {
			r = unicode.ToUpper(r)
		}
		v.text = append(v.text, r)
		if len(v.text) > maxText {
			v.text = v.text[len(v.text)-maxText:]
		}
	case k.Named == keys.CapsLock && evt.Action == chord.ActionClick:
		v.caps = !v.caps
	case k.Named == keys.Shift:
		v.shift = evt.Action == chord.ActionPress
	case k.Named == keys.Backspace:
		pressed := evt.Action == chord.ActionPress
		if pressed && !v.backspace && len(v.text) > 0 {
			v.text = v.text[:len(v.text)-1]
		}
		v.backspace = pressed
	}
}

func (v *View) markDirty() {
	select {
	case v.dirty <- struct{}{}:
	default:
	}
}

// Text returns the preview of what has been typed.
func (v *View) Text() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return string(v.text)
}

// Run redraws on every change until ctx ends or the user presses Esc or
// Ctrl-C. The caller owns Init and Fini of the screen.
func (v *View) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-v.dirty:
			v.Draw()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					return nil
				}
			case *tcell.EventResize:
				v.screen.Sync()
				v.Draw()
			}
		}
	}
}

// Draw renders the current state and shows it.
func (v *View) Draw() {
	v.mu.Lock()
	snap, hasSnap := v.snap, v.hasSnap
	text := string(v.text)
	caps, shift := v.caps, v.shift
	v.mu.Unlock()

	v.screen.Clear()
	for p := 0; p < v.table.Primary() && p < len(wheelSlots); p++ {
		x := wheelSlots[p][0] * (wheelWidth + 1)
		y := wheelSlots[p][1] * (wheelHeight + 1)
		active := hasSnap && !snap.Gated && snap.Primary == p
		cursor := -1
		if active {
			cursor = snap.Secondary
		}
		v.drawWheel(x, y, p, active, cursor)
	}

	cx, cy := wheelWidth+1, wheelHeight+1
	status := styleDim
	if hasSnap && !snap.Gated {
		status = styleStatus
	}
	v.putString(cx+1, cy+1, v.table.Name(), status)
	v.putString(cx+1, cy+2, fmt.Sprintf("m %.2f", snap.Magnitude), status)
	mods := ""
	if caps {
		mods += "C"
	}
	if shift {
		mods += "S"
	}
	v.putString(cx+1, cy+3, mods, styleActive)

	textY := 3 * (wheelHeight + 1)
	v.putString(0, textY, "> "+text, styleNormal)
	v.screen.Show()
}

func (v *View) drawWheel(x, y, primary int, active bool, cursor int) {
	n := v.table.Secondary()
	for s := 0; s < n; s++ {
		dx, dy := slotOffset(s, n)
		r, ok := v.table.Lookup(primary, s)
		glyph := r
		switch {
		case !ok:
			glyph = emptyGlyph
		case r == ' ':
			glyph = spaceGlyph
		}
		style := styleDim
		if active {
			style = styleActive
		}
		if s == cursor {
			style = styleCursor
		}
		v.screen.SetContent(x+wheelWidth/2+dx, y+wheelHeight/2+dy, glyph, nil, style)
	}
}

// slotOffset positions sector s of n around a wheel centre, clockwise from up.
func slotOffset(s, n int) (int, int) {
	a := float64(s) * 2 * math.Pi / float64(n)
	dx := int(math.Round(math.Sin(a) * float64(wheelWidth/2-1)))
	dy := int(math.Round(-math.Cos(a) * float64(wheelHeight/2)))
	return dx, dy
}

func (v *View) putString(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
