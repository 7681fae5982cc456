package frame

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInput(t *testing.T) {
	in := NewInput()
	mouse, scroll := in.Snapshot()
	assert.Equal(t, [4]float32{-1, -1, 0, 0}, mouse)
	assert.Equal(t, [3]float32{}, scroll)

	in.Move(120, 30, 600)
	in.Press(ButtonLeft)
	mouse, _ = in.Snapshot()
	assert.Equal(t, [4]float32{120, 570, 1, 0}, mouse)

	in.Press(ButtonRight)
	mouse, _ = in.Snapshot()
	assert.Equal(t, [4]float32{120, 570, 1, 1}, mouse)

	in.Release()
	mouse, _ = in.Snapshot()
	assert.Equal(t, [4]float32{120, 570, 0, 0}, mouse)

	in.Press(ButtonMiddle)
	mouse, _ = in.Snapshot()
	assert.Equal(t, float32(1), mouse[2])

	in.Wheel(2, -3)
	in.Wheel(1, -3)
	_, scroll = in.Snapshot()
	assert.Equal(t, [3]float32{3, -6, 0}, scroll)
}

func TestInputConcurrent(t *testing.T) {
	in := NewInput()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				in.Wheel(1, 1)
				in.Snapshot()
			}
		}()
	}
	wg.Wait()
	_, scroll := in.Snapshot()
	assert.Equal(t, [3]float32{800, 800, 0}, scroll)
}

type fakeTime struct{ t time.Time }

func (f *fakeTime) now() time.Time { return f.t }

func TestClockUniforms(t *testing.T) {
	ft := &fakeTime{t: time.Unix(1000, 0)}
	c := NewClock(ft.now)
	in := NewInput()
	in.Move(10, 10, 100)

	ft.t = ft.t.Add(1500 * time.Millisecond)
	u := c.Uniforms(640, 480, in)
	assert.Equal(t, [3]float32{640, 480, 1}, u.Resolution)
	assert.Equal(t, [4]float32{10, 90, 0, 0}, u.Mouse)
	assert.InDelta(t, 1.5, u.Time, 1e-6)

	c.Reset()
	assert.Zero(t, c.Elapsed())
	ft.t = ft.t.Add(250 * time.Millisecond)
	assert.InDelta(t, 0.25, c.Elapsed(), 1e-6)
}

func TestFPSMeter(t *testing.T) {
	var m FPSMeter
	start := time.Unix(0, 0)
	step := 20 * time.Millisecond

	now := start
	m.Tick(now)
	_, ok := m.Display()
	assert.False(t, ok)

	// 50 fps; the first value appears once 100ms have passed.
	for i := 0; i < 4; i++ {
		now = now.Add(step)
		m.Tick(now)
	}
	_, ok = m.Display()
	assert.False(t, ok)

	now = now.Add(step)
	m.Tick(now)
	fps, ok := m.Display()
	assert.True(t, ok)
	assert.Equal(t, 50, fps)

	// Faster frames are not shown until a second later.
	step = 10 * time.Millisecond
	for i := 0; i < 99; i++ {
		now = now.Add(step)
		m.Tick(now)
	}
	fps, _ = m.Display()
	assert.Equal(t, 50, fps)

	now = now.Add(step)
	m.Tick(now)
	fps, _ = m.Display()
	assert.Equal(t, 100, fps)
}
