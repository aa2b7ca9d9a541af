package game

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Particle is one airborne mote. Fixed population, array-of-structs; positions
// persist between the strided updates so motion stays smooth even though only
// a subset advances each frame.
type Particle struct {
	Pos     mgl64.Vec3
	Vel     mgl64.Vec3
	Cluster int
}

// cluster is a drifting anchor shared by every particle with the same id.
// The offset wanders relative to the observer; swirl sign and speed are rolled
// once and never change, which gives each cluster a recognizable character.
type cluster struct {
	offset      mgl64.Vec3
	driftVel    mgl64.Vec3
	driftTarget mgl64.Vec3
	driftTimer  float64
	swirlSpeed  float64 // signed; sign is the orbit direction
}

// ParticleSystem simulates the ambient swarm. It reads the height field and
// tree registry but owns no world state beyond its own buffers.
type ParticleSystem struct {
	cfg *Config
	rng *rand.Rand

	particles []Particle
	clusters  []cluster

	wind       mgl64.Vec3
	windTarget mgl64.Vec3
	windTimer  float64

	cursor  int // rotating start offset for the round-robin stride
	treeBuf []TreeRecord

	updatedLastTick  int
	recycledLastTick int
}

// NewParticleSystem seeds the pool around the observer. Cluster assignment is
// round-robin (index mod clusterCount) so clusters stay equal-sized.
func NewParticleSystem(cfg *Config, rng *rand.Rand, observer mgl64.Vec3) *ParticleSystem {
	ps := &ParticleSystem{
		cfg:       cfg,
		rng:       rng,
		particles: make([]Particle, cfg.ParticleCount),
		clusters:  make([]cluster, cfg.ClusterCount),
	}
	for i := range ps.clusters {
		c := &ps.clusters[i]
		c.offset = ps.randomOffset(cfg.TetherRadius * 0.5)
		c.driftTarget = ps.randomOffset(1).Mul(2)
		swirl := 0.4 + ps.rng.Float64()*0.8
		if ps.rng.Intn(2) == 0 {
			swirl = -swirl
		}
		c.swirlSpeed = swirl
	}
	for i := range ps.particles {
		p := &ps.particles[i]
		p.Cluster = i % cfg.ClusterCount
		center := observer.Add(ps.clusters[p.Cluster].offset)
		p.Pos = center.Add(ps.randomOffset(6))
		p.Vel = ps.randomOffset(1)
	}
	return ps
}

// randomOffset returns a uniform random vector with components in [-r, r),
// with the vertical component halved to keep the swarm flatter than wide.
func (ps *ParticleSystem) randomOffset(r float64) mgl64.Vec3 {
	return mgl64.Vec3{
		(ps.rng.Float64()*2 - 1) * r,
		(ps.rng.Float64()*2 - 1) * r * 0.5,
		(ps.rng.Float64()*2 - 1) * r,
	}
}

// stride is the round-robin period: how many frames a full coverage pass takes.
func (ps *ParticleSystem) stride() int {
	if ps.cfg.UpdatesPerFrame <= 0 || ps.cfg.UpdatesPerFrame >= len(ps.particles) {
		return 1
	}
	return (len(ps.particles) + ps.cfg.UpdatesPerFrame - 1) / ps.cfg.UpdatesPerFrame
}

// Update advances cluster drift, wind, and one strided batch of particles.
// Each particle's effective dt is scaled by the stride so aggregate motion is
// frame-rate independent despite the reduced update frequency.
func (ps *ParticleSystem) Update(dt float64, observer mgl64.Vec3, view Camera, hf *HeightField, chunks *ChunkStreamer) {
	ps.updateClusters(dt)
	ps.updateWind(dt)

	n := ps.stride()
	effDt := dt * float64(n)
	ps.updatedLastTick = 0
	ps.recycledLastTick = 0
	for i := ps.cursor; i < len(ps.particles); i += n {
		ps.updateParticle(i, effDt, observer, view, hf, chunks)
		ps.updatedLastTick++
	}
	ps.cursor++
	if ps.cursor >= n {
		ps.cursor = 0
	}
}

// updateClusters drifts each anchor: the drift velocity chases a target that
// is re-rolled on a timer, and the offset is clamped inside the tether bound.
func (ps *ParticleSystem) updateClusters(dt float64) {
	bound := ps.cfg.TetherRadius * 0.7
	for i := range ps.clusters {
		c := &ps.clusters[i]
		c.driftTimer -= dt
		if c.driftTimer <= 0 {
			c.driftTimer = 3 + ps.rng.Float64()*5
			c.driftTarget = ps.randomOffset(1).Mul(2.5)
		}
		blend := 0.5 * dt
		if blend > 1 {
			blend = 1
		}
		c.driftVel = c.driftVel.Add(c.driftTarget.Sub(c.driftVel).Mul(blend))
		c.offset = c.offset.Add(c.driftVel.Mul(dt))
		if l := c.offset.Len(); l > bound {
			c.offset = c.offset.Mul(bound / l)
		}
	}
}

// updateWind re-rolls a global wind target on a timer and blends toward it.
func (ps *ParticleSystem) updateWind(dt float64) {
	ps.windTimer -= dt
	if ps.windTimer <= 0 {
		ps.windTimer = ps.cfg.WindRerollSeconds * (0.5 + ps.rng.Float64())
		ps.windTarget = mgl64.Vec3{
			(ps.rng.Float64()*2 - 1) * ps.cfg.WindStrength,
			(ps.rng.Float64()*2 - 1) * ps.cfg.WindStrength * 0.2,
			(ps.rng.Float64()*2 - 1) * ps.cfg.WindStrength,
		}
	}
	blend := 0.3 * dt
	if blend > 1 {
		blend = 1
	}
	ps.wind = ps.wind.Add(ps.windTarget.Sub(ps.wind).Mul(blend))
}

func (ps *ParticleSystem) updateParticle(i int, dt float64, observer mgl64.Vec3, view Camera, hf *HeightField, chunks *ChunkStreamer) {
	cfg := ps.cfg
	p := &ps.particles[i]
	center := observer.Add(ps.clusters[p.Cluster].offset)

	// Boid neighbors: a small uniform random sample of the population stands
	// in for a true nearest-neighbor query. Statistically it converges to the
	// same flocking behavior at a fraction of the cost.
	var centroid, avgVel, separation mgl64.Vec3
	found := 0
	for s := 0; s < cfg.NeighborSamples; s++ {
		j := ps.rng.Intn(len(ps.particles))
		if j == i {
			continue
		}
		o := &ps.particles[j]
		diff := p.Pos.Sub(o.Pos)
		d := diff.Len()
		if d > cfg.NeighborRadius || d < 1e-9 {
			continue
		}
		centroid = centroid.Add(o.Pos)
		avgVel = avgVel.Add(o.Vel)
		separation = separation.Add(diff.Mul(1 / (d * d)))
		found++
	}
	if found > 0 {
		inv := 1 / float64(found)
		cohesion := centroid.Mul(inv).Sub(p.Pos)
		alignment := avgVel.Mul(inv).Sub(p.Vel)
		p.Vel = p.Vel.Add(cohesion.Mul(cfg.CohesionWeight * dt))
		p.Vel = p.Vel.Add(alignment.Mul(cfg.AlignmentWeight * dt))
		p.Vel = p.Vel.Add(separation.Mul(cfg.SeparationWeight * dt))
	}

	// Swirl: rotate the horizontal offset from the cluster center 90° and use
	// it as a tangential velocity, for orbiting instead of clumping.
	offX := p.Pos.X() - center.X()
	offZ := p.Pos.Z() - center.Z()
	swirl := ps.clusters[p.Cluster].swirlSpeed
	p.Vel[0] += -offZ * swirl * dt
	p.Vel[2] += offX * swirl * dt

	// Observer repulsion inside the bubble; light damping plus jitter outside
	// so idle particles stay lively.
	toP := p.Pos.Sub(observer)
	if d := toP.Len(); d < cfg.RepulseRadius && d > 1e-9 {
		p.Vel = p.Vel.Add(toP.Mul((cfg.RepulseRadius - d) / d * 4 * dt))
	} else {
		p.Vel = p.Vel.Mul(1 - 0.15*dt)
		p.Vel = p.Vel.Add(ps.randomOffset(0.8).Mul(dt))
	}

	p.Vel = p.Vel.Add(ps.wind.Mul(dt))

	if l := p.Vel.Len(); l > cfg.ParticleMaxSpeed {
		p.Vel = p.Vel.Mul(cfg.ParticleMaxSpeed / l)
	}

	p.Pos = p.Pos.Add(p.Vel.Mul(dt))

	ps.avoidObstacles(p, dt, hf, chunks)

	// Mild vertical damping keeps particles from pressing against the
	// ceiling or floor pushes.
	p.Vel[1] *= 1 - 0.4*dt

	ps.recycleIfStray(p, observer, view, center)

	// Final height clamp into the allowed band above ground, never below the
	// water surface.
	ground := hf.At(p.Pos.X(), p.Pos.Z())
	floor := ground + cfg.ParticleMinHover
	if wl := hf.WaterLevel() + cfg.ParticleMinHover; wl > floor {
		floor = wl
	}
	ceil := ground + cfg.ParticleMaxHover
	if p.Pos[1] < floor {
		p.Pos[1] = floor
	}
	if p.Pos[1] > ceil {
		p.Pos[1] = ceil
	}
}

// avoidObstacles applies soft pushes away from terrain, the hover-band
// ceiling, and nearby trees. Tree geometry comes from the same treeShape
// derivation the player collider uses.
func (ps *ParticleSystem) avoidObstacles(p *Particle, dt float64, hf *HeightField, chunks *ChunkStreamer) {
	cfg := ps.cfg
	ground := hf.At(p.Pos.X(), p.Pos.Z())
	clearance := p.Pos.Y() - ground

	// Below the hover floor the lift is a force; the band clamp at the end of
	// the update is only the backstop.
	if below := cfg.ParticleMinHover - clearance; below > 0 {
		p.Vel[1] += below * 10 * dt
	}
	if clearance < cfg.ParticleMinHover*2 {
		nx, ny, nz := hf.NormalAt(p.Pos.X(), p.Pos.Z())
		push := (cfg.ParticleMinHover*2 - clearance) * 6 * dt
		p.Vel[0] += nx * push
		p.Vel[1] += ny * push
		p.Vel[2] += nz * push
	}
	// Soft ceiling near the top of the band.
	if over := clearance - (cfg.ParticleMaxHover - 3); over > 0 {
		p.Vel[1] -= over * 2 * dt
	}

	ps.treeBuf = chunks.TreesNear(p.Pos.X(), p.Pos.Z(), ps.treeBuf)
	for _, t := range ps.treeBuf {
		dx := p.Pos.X() - t.X
		dz := p.Pos.Z() - t.Z
		d := math.Hypot(dx, dz)
		if d >= cfg.TreeAvoidRadius || d < 1e-9 {
			continue
		}
		shape := t.shape(hf.At(t.X, t.Z))
		if p.Pos.Y() > shape.canopyTop {
			continue
		}
		push := (cfg.TreeAvoidRadius - d) / cfg.TreeAvoidRadius * 8 * dt
		p.Vel[0] += dx / d * push
		p.Vel[2] += dz / d * push
	}
}

// recycleIfStray respawns a particle that escaped the tether or fell far
// behind the view. Respawn candidates near the cluster center are preferred
// outside the forward view cone so pop-in happens off screen.
func (ps *ParticleSystem) recycleIfStray(p *Particle, observer mgl64.Vec3, view Camera, center mgl64.Vec3) {
	cfg := ps.cfg
	toP := p.Pos.Sub(observer)
	d := toP.Len()

	fx, fy, fz := view.Forward()
	behind := false
	if d > cfg.BehindRadius && d > 1e-9 {
		dot := (toP.X()*fx + toP.Y()*fy + toP.Z()*fz) / d
		behind = dot < -0.35
	}
	if d <= cfg.TetherRadius && !behind {
		return
	}

	// A handful of candidates; take the first outside the view cone, fall
	// back to the last one tried.
	var pos mgl64.Vec3
	for try := 0; try < 5; try++ {
		pos = center.Add(ps.randomOffset(8))
		toC := pos.Sub(observer)
		l := toC.Len()
		if l < 1e-9 {
			continue
		}
		if (toC.X()*fx+toC.Y()*fy+toC.Z()*fz)/l < 0.4 {
			break
		}
	}
	p.Pos = pos
	p.Vel = ps.randomOffset(1.5)
	ps.recycledLastTick++
}

// Particles exposes the pool read-only for rendering.
func (ps *ParticleSystem) Particles() []Particle { return ps.particles }

// Stride reports the current round-robin period (frames per full coverage).
func (ps *ParticleSystem) Stride() int { return ps.stride() }
