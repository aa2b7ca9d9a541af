package game

import "github.com/go-gl/mathgl/mgl64"

// TestSim is a headless harness used exclusively by tests and the headless
// binary. It mirrors the display loop's fixed-step ordering (chunks →
// physics → particles) with no ebiten dependency, deterministic seeding, and
// structured logging.
type TestSim struct {
	World    *World
	Cam      Camera
	Input    InputState
	Reporter *FrameReporter

	cfg Config
}

// SimOption is a builder function applied during construction. Config options
// run before the World exists; placement options run after.
type SimOption struct {
	cfgFn   func(*Config)
	worldFn func(*World)
}

// WithSeed sets the master RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{cfgFn: func(c *Config) { c.Seed = seed }}
}

// WithConfig applies an arbitrary tuning mutation before world creation.
func WithConfig(fn func(*Config)) SimOption {
	return SimOption{cfgFn: fn}
}

// WithRenderDistance shrinks or grows the chunk ring for the test.
func WithRenderDistance(r int) SimOption {
	return SimOption{cfgFn: func(c *Config) { c.RenderDistance = r }}
}

// WithVerboseLog records per-step state flips in the SimLog.
func WithVerboseLog() SimOption {
	return SimOption{worldFn: func(w *World) { w.log.verbose = true }}
}

// WithPlayerAt overrides the spawn position.
func WithPlayerAt(x, y, z float64) SimOption {
	return SimOption{worldFn: func(w *World) {
		w.Player.Pos = mgl64.Vec3{x, y, z}
		w.Player.Vel = mgl64.Vec3{}
	}}
}

// NewTestSim constructs a deterministic headless world. Default seed is 1;
// particle count is reduced so tight test loops stay fast unless a test
// raises it back up.
func NewTestSim(opts ...SimOption) *TestSim {
	cfg := DefaultConfig()
	cfg.ParticleCount = 120
	cfg.UpdatesPerFrame = 40
	for _, o := range opts {
		if o.cfgFn != nil {
			o.cfgFn(&cfg)
		}
	}
	ts := &TestSim{
		World:    NewWorld(cfg),
		Reporter: NewFrameReporter(reportWindowTicks),
		cfg:      cfg,
	}
	for _, o := range opts {
		if o.worldFn != nil {
			o.worldFn(ts.World)
		}
	}
	return ts
}

// RunTicks advances n fixed simulation steps with the current input and
// camera, collecting a report each step.
func (ts *TestSim) RunTicks(n int) {
	dt := ts.World.cfg.FixedDt
	for i := 0; i < n; i++ {
		ts.World.tick++
		ts.World.UpdateChunks()
		ts.World.UpdatePhysics(dt, ts.Cam, ts.Input)
		ts.World.UpdateParticles(dt, ts.Cam)
		ts.Reporter.Collect(ts.World)
	}
}

// SettleChunks ticks streaming alone until the ring around the player is
// fully built or the budget runs out. Physics-focused tests use this so the
// ground exists before the first step.
func (ts *TestSim) SettleChunks(maxTicks int) {
	for i := 0; i < maxTicks; i++ {
		ts.World.tick++
		if !ts.World.UpdateChunks() {
			builds, _ := ts.World.chunks.QueueDepths()
			if builds == 0 {
				return
			}
		}
	}
}

// CurrentTick returns the world tick counter.
func (ts *TestSim) CurrentTick() int { return ts.World.tick }

// Log returns the world's sim log.
func (ts *TestSim) Log() *SimLog { return ts.World.log }
