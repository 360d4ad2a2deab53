package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fakeClock(p *Profiler, start time.Time) *time.Time {
	now := start
	p.now = func() time.Time { return now }
	p.lastTime = start
	p.lastFrame = start
	return &now
}

func TestTickReportsAfterInterval(t *testing.T) {
	p := NewProfiler(time.Second)
	now := fakeClock(p, time.Unix(100, 0))

	for range 9 {
		*now = now.Add(100 * time.Millisecond)
		_, ok := p.Tick(2)
		assert.False(t, ok)
	}
	*now = now.Add(100 * time.Millisecond)
	s, ok := p.Tick(2)
	assert.True(t, ok)
	assert.Equal(t, 10, s.Frames)
	assert.InDelta(t, 10.0, s.FPS, 1e-9)
	assert.Equal(t, 2, s.Draws)
	assert.Equal(t, 100*time.Millisecond, s.FrameMax)
	assert.Greater(t, s.SysMB, 0.0)
}

func TestTickResetsBetweenIntervals(t *testing.T) {
	p := NewProfiler(time.Second)
	now := fakeClock(p, time.Unix(100, 0))

	*now = now.Add(2 * time.Second)
	s, ok := p.Tick(1)
	assert.True(t, ok)
	assert.Equal(t, 1, s.Frames)
	assert.Equal(t, 2*time.Second, s.FrameMax)

	*now = now.Add(500 * time.Millisecond)
	_, ok = p.Tick(1)
	assert.False(t, ok)
	*now = now.Add(500 * time.Millisecond)
	s, ok = p.Tick(1)
	assert.True(t, ok)
	assert.Equal(t, 2, s.Frames)
	assert.Equal(t, 500*time.Millisecond, s.FrameMax)
}

func TestDefaultInterval(t *testing.T) {
	assert.Equal(t, time.Second, NewProfiler(0).updateInterval)
}
