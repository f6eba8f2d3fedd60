// Package debug provides a raw-mode terminal console that stands in for a
// gamepad, so the typing pipeline can be driven without hardware.
package debug

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Versifine/pietype/internal/gamepad"
	"github.com/Versifine/pietype/internal/vmath"
	"golang.org/x/term"
)

const (
	defaultTickInterval = 5 * time.Millisecond
	defaultFlickPulse   = 120 * time.Millisecond
	defaultButtonPulse  = 120 * time.Millisecond

	keyCtrlC = 3
	keyCtrlD = 4
	keyEsc   = 27
)

// leftKeys and rightKeys lay out eight directions, clockwise from up, on two
// 3x3 key clusters.
var (
	leftKeys = map[byte]float64{
		'w': 0, 'e': 45, 'd': 90, 'c': 135, 'x': 180, 'z': 225, 'a': 270, 'q': 315,
	}
	rightKeys = map[byte]float64{
		'i': 0, 'o': 45, 'l': 90, '.': 135, ',': 180, 'm': 225, 'j': 270, 'u': 315,
	}
)

// Console is a virtual gamepad fed from the keyboard. It records into an
// embedded Hub, so it is itself a gamepad.Provider.
type Console struct {
	*gamepad.Hub

	device       gamepad.DeviceID
	out          io.Writer
	tickInterval time.Duration
	flickPulse   time.Duration
	buttonPulse  time.Duration

	mu           sync.Mutex
	left         vmath.Vector2
	right        vmath.Vector2
	rightUntil   time.Time
	east         bool
	eastUntil    time.Time
	shift        bool
	trigger      bool
	triggerUntil time.Time
	commandMode  bool
	commandBuf   []rune
	statusWidth  int
}

func NewConsole() *Console {
	c := &Console{
		Hub:          gamepad.NewHub(),
		out:          os.Stdout,
		tickInterval: defaultTickInterval,
		flickPulse:   defaultFlickPulse,
		buttonPulse:  defaultButtonPulse,
	}
	c.Connect(c.device)
	return c
}

// Start puts the terminal in raw mode and reads keys until ctx ends or the
// user presses Ctrl-C or Ctrl-D.
func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Fprint(c.out, "\r\n")
	}()

	fmt.Fprint(c.out, "[debug] console started (QWE/AD/ZXC left stick, S centre, UIO/JL/M,. flick right stick, :help)\r\n")
	c.renderStatusLine()

	go c.tickLoop(ctx)

	// The read blocks until a key arrives, so it runs apart from ctx.
	done := make(chan error, 1)
	go func() { done <- c.readLoop(bufio.NewReader(os.Stdin)) }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-done:
		return err
	}
}

func (c *Console) readLoop(reader *bufio.Reader) error {
	for {
		b, err := reader.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		if !c.handleKey(reader, b) {
			return nil
		}
	}
}

func (c *Console) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sync(time.Now())
		}
	}
}

// sync expires pulses and records the current virtual state into the hub.
func (c *Console) sync(now time.Time) {
	c.mu.Lock()
	c.applyPulsesLocked(now)
	left, right := c.left, c.right
	east, shift, trigger := c.east, c.shift, c.trigger
	c.mu.Unlock()

	c.SetAxis(c.device, gamepad.AxisLeftX, left.X)
	c.SetAxis(c.device, gamepad.AxisLeftY, left.Y)
	c.SetAxis(c.device, gamepad.AxisRightX, right.X)
	c.SetAxis(c.device, gamepad.AxisRightY, right.Y)
	c.SetButton(c.device, gamepad.ButtonEast, east)
	c.SetButton(c.device, gamepad.ButtonLeftThumb, shift)
	c.SetButton(c.device, gamepad.ButtonRightTrigger, trigger)
}

// handleKey applies one key and reports whether the console should keep
// reading.
func (c *Console) handleKey(reader *bufio.Reader, b byte) bool {
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return true
	}

	now := time.Now()
	if deg, ok := leftKeys[b]; ok {
		c.setLeft(direction(deg, 1))
		c.renderStatusLine()
		return true
	}
	if deg, ok := rightKeys[b]; ok {
		c.flick(direction(deg, 1), now)
		c.renderStatusLine()
		return true
	}

	switch b {
	case keyCtrlC, keyCtrlD:
		return false
	case ':':
		c.enterCommandMode()
		return true
	case 's', 'S':
		c.setLeft(vmath.Vector2{})
	case 'b', 'B', 127:
		c.pulseEast(now)
	case '[':
		c.toggleShift()
	case ']':
		c.pulseTrigger(now)
	case '0':
		c.clearInput()
	case keyEsc: // ESC + arrow sequence
		next, err := reader.ReadByte()
		if err != nil || next != '[' {
			return true
		}
		arrow, err := reader.ReadByte()
		if err != nil {
			return true
		}
		switch arrow {
		case 'A': // up
			c.flick(direction(0, 1), now)
		case 'C': // right
			c.flick(direction(90, 1), now)
		case 'B': // down
			c.flick(direction(180, 1), now)
		case 'D': // left
			c.flick(direction(270, 1), now)
		}
	}
	c.renderStatusLine()
	return true
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	fmt.Fprint(c.out, "\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		fmt.Fprint(c.out, "\r\n")
		if cmd != "" {
			c.executeCommand(cmd)
		}
		c.renderStatusLine()
		return
	case keyEsc: // cancel command mode
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		fmt.Fprint(c.out, "\r\n[debug] command cancelled\r\n")
		c.renderStatusLine()
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s ", buf)
		fmt.Fprintf(c.out, "\r:%s", buf)
		return
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s", buf)
	}
}

func (c *Console) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "state":
		c.mu.Lock()
		left, right := c.left, c.right
		c.mu.Unlock()
		fmt.Fprintf(c.out, "[debug] left=(%.3f,%.3f) |%.3f| right=(%.3f,%.3f) |%.3f|\r\n",
			left.X, left.Y, left.Magnitude(),
			right.X, right.Y, right.Magnitude(),
		)
	case "left", "right":
		v, ok := parseStick(parts[1:])
		if !ok {
			fmt.Fprintf(c.out, "[debug] usage: :%s <degrees> [magnitude]\r\n", parts[0])
			return
		}
		if parts[0] == "left" {
			c.setLeft(v)
		} else {
			c.setRight(v)
		}
		fmt.Fprintf(c.out, "[debug] %s stick set to (%.3f, %.3f)\r\n", parts[0], v.X, v.Y)
	case "pulse":
		if len(parts) != 2 {
			fmt.Fprintf(c.out, "[debug] usage: :pulse <duration>\r\n")
			return
		}
		d, err := time.ParseDuration(parts[1])
		if err != nil || d <= 0 {
			fmt.Fprintf(c.out, "[debug] invalid pulse duration\r\n")
			return
		}
		c.mu.Lock()
		c.flickPulse = d
		c.buttonPulse = d
		c.mu.Unlock()
		fmt.Fprintf(c.out, "[debug] pulse set to %s\r\n", d)
	default:
		fmt.Fprintf(c.out, "[debug] unknown command: %s\r\n", parts[0])
	}
}

func parseStick(args []string) (vmath.Vector2, bool) {
	if len(args) < 1 || len(args) > 2 {
		return vmath.Vector2{}, false
	}
	deg, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return vmath.Vector2{}, false
	}
	mag := 1.0
	if len(args) == 2 {
		mag, err = strconv.ParseFloat(args[1], 64)
		if err != nil || mag < 0 || mag > 1 {
			return vmath.Vector2{}, false
		}
	}
	return direction(deg, mag), true
}

// direction returns a stick sample pointing deg degrees clockwise from up.
func direction(deg, mag float64) vmath.Vector2 {
	rad := deg * math.Pi / 180
	return vmath.Vector2{
		X: float32(math.Round(math.Sin(rad)*mag*1e6) / 1e6),
		Y: float32(math.Round(math.Cos(rad)*mag*1e6) / 1e6),
	}
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, "[debug] keys:\r\n")
	fmt.Fprint(c.out, "  Q/W/E/A/D/Z/X/C: hold left stick in a direction\r\n")
	fmt.Fprint(c.out, "  S: centre left stick\r\n")
	fmt.Fprint(c.out, "  U/I/O/J/L/M/,/.: flick right stick in a direction\r\n")
	fmt.Fprint(c.out, "  Arrows: flick right stick up/right/down/left\r\n")
	fmt.Fprint(c.out, "  B or Backspace: tap backspace button\r\n")
	fmt.Fprint(c.out, "  [: toggle shift button\r\n")
	fmt.Fprint(c.out, "  ]: tap caps trigger\r\n")
	fmt.Fprint(c.out, "  0: clear all input\r\n")
	fmt.Fprint(c.out, "  Ctrl-C: quit\r\n")
	fmt.Fprint(c.out, "  : enter command mode\r\n")
	fmt.Fprint(c.out, "[debug] commands:\r\n")
	fmt.Fprint(c.out, "  :left <degrees> [magnitude]\r\n")
	fmt.Fprint(c.out, "  :right <degrees> [magnitude]\r\n")
	fmt.Fprint(c.out, "  :pulse <duration>\r\n")
	fmt.Fprint(c.out, "  :state\r\n")
	fmt.Fprint(c.out, "  :help\r\n")
}

func (c *Console) renderStatusLine() {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	left, right := c.left, c.right
	east, shift, trigger := c.east, c.shift, c.trigger
	width := c.statusWidth
	c.mu.Unlock()

	line := fmt.Sprintf(
		"[L:(%.2f,%.2f) R:(%.2f,%.2f) | BS:%s SH:%s CAPS:%s]",
		left.X, left.Y,
		right.X, right.Y,
		boolLabel(east),
		boolLabel(shift),
		boolLabel(trigger),
	)

	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	fmt.Fprintf(c.out, "\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

func (c *Console) setLeft(v vmath.Vector2) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.left = v
}

func (c *Console) setRight(v vmath.Vector2) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.right = v
	c.rightUntil = time.Time{}
}

func (c *Console) flick(v vmath.Vector2, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.right = v
	c.rightUntil = now.Add(c.flickPulse)
}

func (c *Console) pulseEast(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.east = true
	c.eastUntil = now.Add(c.buttonPulse)
}

func (c *Console) pulseTrigger(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trigger = true
	c.triggerUntil = now.Add(c.buttonPulse)
}

func (c *Console) toggleShift() {
	c.mu.Lock()
	c.shift = !c.shift
	enabled := c.shift
	c.mu.Unlock()
	slog.Debug("debug shift toggled", "enabled", enabled)
}

func (c *Console) applyPulsesLocked(now time.Time) {
	if !c.rightUntil.IsZero() && !now.Before(c.rightUntil) {
		c.right = vmath.Vector2{}
		c.rightUntil = time.Time{}
	}
	if !c.eastUntil.IsZero() && !now.Before(c.eastUntil) {
		c.east = false
		c.eastUntil = time.Time{}
	}
	if !c.triggerUntil.IsZero() && !now.Before(c.triggerUntil) {
		c.trigger = false
		c.triggerUntil = time.Time{}
	}
}

func (c *Console) clearInput() {
	c.mu.Lock()
	c.left = vmath.Vector2{}
	c.right = vmath.Vector2{}
	c.rightUntil = time.Time{}
	c.east = false
	c.eastUntil = time.Time{}
	c.shift = false
	c.trigger = false
	c.triggerUntil = time.Time{}
	c.mu.Unlock()
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
