package game

import (
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// World owns every piece of mutable simulation state: height field, chunk
// registry, player, particles, and the seeded RNG streams. Nothing here is
// global; ticks mutate only through this object, one writer per subsystem.
type World struct {
	cfg Config
	hf  *HeightField

	chunks    *ChunkStreamer
	Player    Player
	particles *ParticleSystem

	// accum drives the fixed-step physics loop; excess beyond the step cap is
	// discarded so a stall degrades sync, never responsiveness.
	accum float64

	tick int
	log  *SimLog

	treeBuf []TreeRecord
}

// NewWorld builds a simulation from config. Seed 0 falls back to wall clock;
// any other value reproduces the entire run, placement and jitter included.
func NewWorld(cfg Config) *World {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	hf := NewHeightField(seed, cfg)
	// Independent streams for placement and particles so adding particles
	// never reshuffles the forests.
	placeRng := rand.New(rand.NewSource(seed + 101)) // #nosec G404 -- simulation, not crypto
	partRng := rand.New(rand.NewSource(seed + 202))  // #nosec G404 -- simulation, not crypto

	w := &World{
		cfg: cfg,
		hf:  hf,
		log: NewSimLog(false),
	}
	w.chunks = NewChunkStreamer(hf, &w.cfg, placeRng)
	w.Player = spawnPlayer(hf, cfg)
	w.particles = NewParticleSystem(&w.cfg, partRng, w.Player.Pos)
	return w
}

// Config returns a copy of the current tuning.
func (w *World) Config() Config { return w.cfg }

// Height is the public terrain query, consumed by rendering and the map.
func (w *World) Height(x, z float64) float64 { return w.hf.At(x, z) }

// HeightField exposes the terrain function for read-only collaborators.
func (w *World) HeightField() *HeightField { return w.hf }

// Chunks exposes the streamer for read-only iteration and spatial queries.
func (w *World) Chunks() *ChunkStreamer { return w.chunks }

// ParticleSystem exposes the swarm's read-only buffers.
func (w *World) ParticleSystem() *ParticleSystem { return w.particles }

// Log returns the structured simulation log.
func (w *World) Log() *SimLog { return w.log }

// Tick returns the fixed-step counter.
func (w *World) Tick() int { return w.tick }

// UpdateChunks runs one streaming tick for the current player position.
// Returns true when chunks were created or destroyed, so the caller can
// refresh dependent caches. Runs before physics and particles in a frame, so
// fresh chunks are visible to collision the same tick.
func (w *World) UpdateChunks() bool {
	didWork := w.chunks.Tick(w.Player.Pos.X(), w.Player.Pos.Z())
	if w.chunks.builtLastTick > 0 {
		w.log.Add(w.tick, "chunk", "build", "built", "", float64(w.chunks.builtLastTick))
	}
	if w.chunks.evictedLastTick > 0 {
		w.log.Add(w.tick, "chunk", "evict", "evicted", "", float64(w.chunks.evictedLastTick))
	}
	return didWork
}

// UpdatePhysics runs a single fixed physics step. The accumulator loop in
// Advance (or a test harness) decides how many of these happen per frame.
func (w *World) UpdatePhysics(dt float64, cam Camera, in InputState) {
	wasGrounded := w.Player.Grounded
	wasUnder := w.Player.Underwater
	w.stepPhysics(dt, cam, in)
	if w.Player.Grounded != wasGrounded {
		w.log.AddVerbose(w.tick, "player", "state", "grounded", boolWord(w.Player.Grounded), 0)
	}
	if w.Player.Underwater != wasUnder {
		w.log.Add(w.tick, "player", "state", "underwater", boolWord(w.Player.Underwater), 0)
	}
}

// UpdateParticles runs one particle tick against the current player position.
func (w *World) UpdateParticles(dt float64, cam Camera) {
	w.particles.Update(dt, w.Player.Pos, cam, w.hf, w.chunks)
	if n := w.particles.recycledLastTick; n > 0 {
		w.log.AddVerbose(w.tick, "particle", "recycle", "stray", "", float64(n))
	}
}

// Advance is the outer fixed-step loop: clamp the wall-clock delta, pour it
// into the accumulator, then run bounded simulation steps in the required
// order (chunks, then physics, then particles). Leftover time beyond the step
// cap is dropped.
func (w *World) Advance(realDt float64, cam Camera, in InputState) {
	if realDt > w.cfg.MaxFrameDelta {
		realDt = w.cfg.MaxFrameDelta
	}
	w.accum += realDt

	steps := 0
	for w.accum >= w.cfg.FixedDt && steps < w.cfg.MaxStepsPerTick {
		w.accum -= w.cfg.FixedDt
		w.tick++
		w.UpdateChunks()
		w.UpdatePhysics(w.cfg.FixedDt, cam, in)
		w.UpdateParticles(w.cfg.FixedDt, cam)
		steps++
	}
	if steps == w.cfg.MaxStepsPerTick && w.accum >= w.cfg.FixedDt {
		// Load shedding: discard the backlog rather than death-spiral.
		w.accum = 0
	}
}

// Observer returns the player position as a plain vector for collaborators.
func (w *World) Observer() mgl64.Vec3 { return w.Player.Pos }

func boolWord(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
