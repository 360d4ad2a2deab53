package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/internal/logger"

	"go.uber.org/zap"
)

// Stats is one reporting interval's worth of frame and memory statistics.
type Stats struct {
	FPS         float64
	Frames      int
	FrameMax    time.Duration
	Draws       int
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Stats are logged through zap at a configurable interval.
type Profiler struct {
	log            *zap.Logger
	now            func() time.Time
	frameCount     int
	frameMax       time.Duration
	draws          int
	lastTime       time.Time
	lastFrame      time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler that reports every interval.
// Intervals of zero or less default to 1 second.
//
// Parameters:
//   - interval: how often stats are reported
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	now := time.Now()
	return &Profiler{
		log:            logger.Named("profiler"),
		now:            time.Now,
		lastTime:       now,
		lastFrame:      now,
		updateInterval: interval,
	}
}

// Tick should be called once per rendered frame.
// Logs performance statistics when the update interval has elapsed.
//
// Parameters:
//   - draws: the number of entities drawn this frame
//
// Returns:
//   - Stats: the reported stats, valid only when the bool is true
//   - bool: true if stats were logged this tick
func (p *Profiler) Tick(draws int) (Stats, bool) {
	currentTime := p.now()
	p.frameCount++
	p.draws += draws
	if ft := currentTime.Sub(p.lastFrame); ft > p.frameMax {
		p.frameMax = ft
	}
	p.lastFrame = currentTime

	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:      float64(p.frameCount) / elapsed.Seconds(),
		Frames:   p.frameCount,
		FrameMax: p.frameMax,
		Draws:    p.draws / p.frameCount,
		HeapMB:   float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:    float64(p.memStats.Sys) / 1024 / 1024,
		GCCount:  p.memStats.NumGC,
	}
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	s.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	if s.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
		s.LastPauseUs = p.memStats.PauseNs[(s.GCCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if s.GCCount-startIdx > 256 {
			startIdx = s.GCCount - 256
		}
		for i := startIdx; i < s.GCCount; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.log.Info("frame stats",
		zap.Float64("fps", s.FPS),
		zap.Duration("frame_max", s.FrameMax),
		zap.Int("draws_per_frame", s.Draws),
		zap.Float64("heap_mb", s.HeapMB),
		zap.Float64("alloc_rate_mb_s", s.AllocRateMB),
		zap.Uint32("gc", s.GCCount),
		zap.Uint64("gc_last_pause_us", s.LastPauseUs),
		zap.Uint64("gc_max_pause_us", s.MaxPauseUs),
		zap.Float64("sys_mb", s.SysMB),
	)

	p.frameCount = 0
	p.frameMax = 0
	p.draws = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return s, true
}
