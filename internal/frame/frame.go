// Package frame tracks the per-frame values fed to the shader uniforms:
// pointer and wheel input, elapsed time and the frame rate display.
package frame

import (
	"math"
	"sync"
	"time"
)

// Button identifies a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Input holds mouse and scroll state. Mouse is (x, y, left, right) with the
// origin at the bottom-left corner; x and y are -1 until the pointer moves.
// Scroll accumulates wheel deltas in x and y; z is reserved.
type Input struct {
	mu     sync.Mutex
	mouse  [4]float32
	scroll [3]float32
}

// NewInput returns input state with the pointer unset.
func NewInput() *Input {
	return &Input{mouse: [4]float32{-1, -1, 0, 0}}
}

// Move records the pointer at (x, y) in window coordinates, where y grows
// downward from the top edge of a window height pixels tall.
func (in *Input) Move(x, y, height float64) {
	in.mu.Lock()
	in.mouse[0] = float32(x)
	in.mouse[1] = float32(height - y)
	in.mu.Unlock()
}

// Press marks a button as held. The right button sets mouse.w, any other
// button sets mouse.z.
func (in *Input) Press(b Button) {
	in.mu.Lock()
	if b == ButtonRight {
		in.mouse[3] = 1
	} else {
		in.mouse[2] = 1
	}
	in.mu.Unlock()
}

// Release clears both button flags.
func (in *Input) Release() {
	in.mu.Lock()
	in.mouse[2], in.mouse[3] = 0, 0
	in.mu.Unlock()
}

// Wheel adds a wheel delta.
func (in *Input) Wheel(dx, dy float64) {
	in.mu.Lock()
	in.scroll[0] += float32(dx)
	in.scroll[1] += float32(dy)
	in.mu.Unlock()
}

// Snapshot returns copies of the mouse and scroll vectors.
func (in *Input) Snapshot() (mouse [4]float32, scroll [3]float32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.mouse, in.scroll
}

// Uniforms are the values uploaded before each draw.
type Uniforms struct {
	Resolution [3]float32
	Mouse      [4]float32
	Scroll     [3]float32
	Time       float32
}

// Clock measures iTime from the moment a program was installed.
type Clock struct {
	now   func() time.Time
	start time.Time
}

// NewClock starts a clock. A nil now uses time.Now.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now, start: now()}
}

// Reset restarts the clock at zero.
func (c *Clock) Reset() {
	c.start = c.now()
}

// Elapsed returns seconds since the last reset.
func (c *Clock) Elapsed() float32 {
	return float32(c.now().Sub(c.start).Seconds())
}

// Uniforms collects the values for a frame of the given size.
func (c *Clock) Uniforms(width, height int, in *Input) Uniforms {
	mouse, scroll := in.Snapshot()
	return Uniforms{
		Resolution: [3]float32{float32(width), float32(height), 1},
		Mouse:      mouse,
		Scroll:     scroll,
		Time:       c.Elapsed(),
	}
}

const (
	fpsFirstDelay = 100 * time.Millisecond
	fpsInterval   = time.Second
)

// FPSMeter turns frame timings into a display value that changes at most
// once a second, with the first value shown shortly after start.
type FPSMeter struct {
	last      time.Time
	current   int
	shown     int
	nextShow  time.Time
	started   bool
	published bool
}

// Tick records a frame finishing at now.
func (m *FPSMeter) Tick(now time.Time) {
	if !m.started {
		m.started = true
		m.last = now
		m.nextShow = now.Add(fpsFirstDelay)
		return
	}
	if dt := now.Sub(m.last); dt > 0 {
		m.current = int(math.Round(float64(time.Second) / float64(dt)))
	}
	m.last = now
	if !now.Before(m.nextShow) {
		m.shown = m.current
		m.published = true
		m.nextShow = now.Add(fpsInterval)
	}
}

// Display returns the value to show and whether any value is ready yet.
func (m *FPSMeter) Display() (int, bool) {
	return m.shown, m.published
}
