package game

import (
	"fmt"
	"strings"
)

// reportWindowTicks is the default sliding window for recent-behaviour
// summaries (~5s of simulation at 120 steps/s).
const reportWindowTicks = 600

// WorldReport is a snapshot of the simulation at one tick.
type WorldReport struct {
	Tick int

	// Streaming.
	ActiveChunks int
	PendingBuild int
	PendingEvict int
	BuiltTick    int
	EvictedTick  int

	// Player.
	PlayerX, PlayerY, PlayerZ float64
	Speed                     float64
	Grounded                  bool
	Underwater                bool
	Mode                      PlayerMode

	// Particles.
	ParticlesUpdated int
	ParticleStride   int
}

// WindowReport aggregates a slice of history.
type WindowReport struct {
	FromTick, ToTick int
	ChunksBuilt      int
	ChunksEvicted    int
	MinActive        int
	MaxActive        int
	GroundedTicks    int
	UnderwaterTicks  int
	AvgSpeed         float64
}

// Format renders the window summary block.
func (wr *WindowReport) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- window [%d..%d] ---\n", wr.FromTick, wr.ToTick)
	fmt.Fprintf(&b, "chunks: built=%d evicted=%d resident[min/max]=%d/%d\n",
		wr.ChunksBuilt, wr.ChunksEvicted, wr.MinActive, wr.MaxActive)
	fmt.Fprintf(&b, "player: grounded=%dt underwater=%dt avgSpeed=%.2f\n",
		wr.GroundedTicks, wr.UnderwaterTicks, wr.AvgSpeed)
	return b.String()
}

// FrameReporter collects periodic WorldReports and summarizes sliding windows.
// The game collects every ~1s of sim time; the headless binary every tick.
type FrameReporter struct {
	history     []WorldReport
	windowTicks int
}

// NewFrameReporter creates a reporter with the given window size.
func NewFrameReporter(windowTicks int) *FrameReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &FrameReporter{windowTicks: windowTicks}
}

// Collect snapshots the world.
func (r *FrameReporter) Collect(w *World) {
	builds, evicts := w.chunks.QueueDepths()
	p := &w.Player
	r.history = append(r.history, WorldReport{
		Tick:             w.tick,
		ActiveChunks:     w.chunks.ActiveCount(),
		PendingBuild:     builds,
		PendingEvict:     evicts,
		BuiltTick:        w.chunks.builtLastTick,
		EvictedTick:      w.chunks.evictedLastTick,
		PlayerX:          p.Pos.X(),
		PlayerY:          p.Pos.Y(),
		PlayerZ:          p.Pos.Z(),
		Speed:            p.Vel.Len(),
		Grounded:         p.Grounded,
		Underwater:       p.Underwater,
		Mode:             p.Mode,
		ParticlesUpdated: w.particles.updatedLastTick,
		ParticleStride:   w.particles.stride(),
	})
}

// Latest returns the most recent report, or nil.
func (r *FrameReporter) Latest() *WorldReport {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// History returns all collected reports.
func (r *FrameReporter) History() []WorldReport {
	return r.history
}

// WindowSummary aggregates the reports inside the trailing window.
func (r *FrameReporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}
	last := r.history[len(r.history)-1]
	from := last.Tick - r.windowTicks
	wr := &WindowReport{FromTick: last.Tick, ToTick: last.Tick, MinActive: last.ActiveChunks}

	n := 0
	var speedSum float64
	for i := len(r.history) - 1; i >= 0; i-- {
		rep := r.history[i]
		if rep.Tick < from {
			break
		}
		wr.FromTick = rep.Tick
		wr.ChunksBuilt += rep.BuiltTick
		wr.ChunksEvicted += rep.EvictedTick
		if rep.ActiveChunks < wr.MinActive {
			wr.MinActive = rep.ActiveChunks
		}
		if rep.ActiveChunks > wr.MaxActive {
			wr.MaxActive = rep.ActiveChunks
		}
		if rep.Grounded {
			wr.GroundedTicks++
		}
		if rep.Underwater {
			wr.UnderwaterTicks++
		}
		speedSum += rep.Speed
		n++
	}
	if n > 0 {
		wr.AvgSpeed = speedSum / float64(n)
	}
	return wr
}

// FormatLatest renders the newest snapshot as a one-screen block.
func (r *FrameReporter) FormatLatest() string {
	rep := r.Latest()
	if rep == nil {
		return "(no reports collected)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "=== world report T=%d ===\n", rep.Tick)
	fmt.Fprintf(&b, "chunks: active=%d queue[build/evict]=%d/%d tick[built/evicted]=%d/%d\n",
		rep.ActiveChunks, rep.PendingBuild, rep.PendingEvict, rep.BuiltTick, rep.EvictedTick)
	fmt.Fprintf(&b, "player: pos=(%.1f, %.1f, %.1f) speed=%.2f grounded=%v underwater=%v mode=%s\n",
		rep.PlayerX, rep.PlayerY, rep.PlayerZ, rep.Speed, rep.Grounded, rep.Underwater, rep.Mode)
	fmt.Fprintf(&b, "particles: updated=%d stride=%d\n", rep.ParticlesUpdated, rep.ParticleStride)
	return b.String()
}
