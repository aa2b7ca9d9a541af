package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PlayerMode is the movement mode: normal walking physics, or free flight
// which bypasses gravity and collision entirely.
type PlayerMode uint8

const (
	ModeWalking PlayerMode = iota
	ModeFlying
)

func (m PlayerMode) String() string {
	if m == ModeFlying {
		return "flying"
	}
	return "walking"
}

// Player is the observer's physical state. Position is the eye point:
// eye Y = ground Y + collision height when standing on something. Mutated
// only by the physics integrator; everything else reads it.
type Player struct {
	Pos        mgl64.Vec3
	Vel        mgl64.Vec3
	Grounded   bool
	Underwater bool
	Mode       PlayerMode

	// colHeight interpolates between standing and crouching eye height so a
	// crouch doesn't teleport the camera.
	colHeight float64

	// prevToggleFly latches the fly key for edge detection.
	prevToggleFly bool

	// jumpedThisStep suppresses step-up snapping on the step a jump launched.
	jumpedThisStep bool
}

const playerRadius = 0.45

// spawnPlayer places the player above the terrain at the origin.
func spawnPlayer(hf *HeightField, cfg Config) Player {
	return Player{
		Pos:       mgl64.Vec3{0, hf.At(0, 0) + cfg.PlayerHeight + 2, 0},
		colHeight: cfg.PlayerHeight,
	}
}

// stepPhysics advances the player one fixed timestep. Sub-step order matters:
// wish-dir, speed selection, accelerate/gravity, integrate, tree collision,
// ground resolve, safety net. Later steps observe earlier writes.
func (w *World) stepPhysics(dt float64, cam Camera, in InputState) {
	p := &w.Player
	cfg := &w.cfg

	// Fly latch: rising edge of the toggle key flips mode.
	if in.ToggleFly && !p.prevToggleFly {
		if p.Mode == ModeWalking {
			p.Mode = ModeFlying
		} else {
			p.Mode = ModeWalking
		}
		p.Grounded = false
		w.log.Add(w.tick, "player", "mode", "toggle", p.Mode.String(), 0)
	}
	p.prevToggleFly = in.ToggleFly

	// Underwater is a pure threshold on eye height, evaluated before any
	// speed or gravity term so multipliers apply from the first step after
	// the crossing.
	p.Underwater = p.Pos.Y() < w.hf.WaterLevel()

	// Smooth collision height toward the stance target.
	targetH := cfg.PlayerHeight
	if in.Crouch && p.Mode == ModeWalking {
		targetH = cfg.CrouchHeight
	}
	blend := 12 * dt
	if blend > 1 {
		blend = 1
	}
	p.colHeight += (targetH - p.colHeight) * blend

	if p.Mode == ModeFlying {
		w.stepFlying(dt, cam, in)
		return
	}

	// Horizontal wish direction from pressed keys, camera-relative, flattened.
	fx, fz, rx, rz := cam.FlatBasis()
	var wx, wz float64
	if in.Forward {
		wx += fx
		wz += fz
	}
	if in.Back {
		wx -= fx
		wz -= fz
	}
	if in.Right {
		wx += rx
		wz += rz
	}
	if in.Left {
		wx -= rx
		wz -= rz
	}
	if l := math.Hypot(wx, wz); l > 1e-9 {
		wx /= l
		wz /= l
	} else {
		wx, wz = 0, 0
	}

	target := cfg.MoveSpeed
	if in.Sprint {
		target *= cfg.SprintMult
	}
	if in.Crouch {
		target *= cfg.CrouchMult
	}
	if p.Underwater {
		target *= cfg.WaterSpeedMult
	}

	p.jumpedThisStep = false
	if p.Grounded {
		w.applyFriction(dt)
		w.accelerate(wx, wz, target, cfg.GroundAccel, dt)
		if in.Jump {
			p.Vel[1] = cfg.JumpSpeed
			p.Grounded = false
			p.jumpedThisStep = true
		}
	} else {
		airCap := target
		if airCap > cfg.MaxAirSpeed {
			airCap = cfg.MaxAirSpeed
		}
		w.accelerate(wx, wz, airCap, cfg.AirAccel, dt)
		g := cfg.Gravity
		if p.Underwater {
			g *= cfg.WaterGravMult
			// Extra vertical drag so the player doesn't plummet or rocket.
			p.Vel[1] -= p.Vel[1] * cfg.WaterDrag * dt
		}
		p.Vel[1] -= g * dt
	}

	p.Pos = p.Pos.Add(p.Vel.Mul(dt))

	w.resolveTreeCollisions()
	w.resolveGround()

	// Safety net: out-of-world recovery, not an error.
	if p.Pos.Y() < cfg.WorldFloor {
		w.log.Add(w.tick, "player", "respawn", "world_floor", "", p.Pos.Y())
		p.Pos = mgl64.Vec3{0, w.hf.At(0, 0) + cfg.PlayerHeight + 2, 0}
		p.Vel = mgl64.Vec3{}
		p.Grounded = false
	}
}

// stepFlying is direct velocity-from-input integration in full 3D.
func (w *World) stepFlying(dt float64, cam Camera, in InputState) {
	p := &w.Player
	fx, fy, fz := cam.Forward()
	_, _, rX, rZ := cam.FlatBasis()

	var v mgl64.Vec3
	if in.Forward {
		v = v.Add(mgl64.Vec3{fx, fy, fz})
	}
	if in.Back {
		v = v.Sub(mgl64.Vec3{fx, fy, fz})
	}
	if in.Right {
		v = v.Add(mgl64.Vec3{rX, 0, rZ})
	}
	if in.Left {
		v = v.Sub(mgl64.Vec3{rX, 0, rZ})
	}
	if in.Up || in.Jump {
		v = v.Add(mgl64.Vec3{0, 1, 0})
	}
	if in.Down || in.Crouch {
		v = v.Sub(mgl64.Vec3{0, 1, 0})
	}
	if l := v.Len(); l > 1e-9 {
		v = v.Mul(w.cfg.FlySpeed / l)
	}
	p.Vel = v
	p.Pos = p.Pos.Add(v.Mul(dt))
	p.Grounded = false
}

// applyFriction decays horizontal speed exponentially, snapping to zero below
// a small threshold so the player doesn't glide forever.
func (w *World) applyFriction(dt float64) {
	p := &w.Player
	f := w.cfg.Friction
	if p.Underwater {
		f *= 0.6
	}
	speed := math.Hypot(p.Vel.X(), p.Vel.Z())
	if speed < 0.05 {
		p.Vel[0] = 0
		p.Vel[2] = 0
		return
	}
	drop := speed * f * dt
	scale := (speed - drop) / speed
	if scale < 0 {
		scale = 0
	}
	p.Vel[0] *= scale
	p.Vel[2] *= scale
}

// accelerate closes only the deficit between current speed along the wish
// direction and the target speed, with the per-step gain clamped so strafing
// cannot stack speed.
func (w *World) accelerate(wx, wz, targetSpeed, accel, dt float64) {
	p := &w.Player
	if wx == 0 && wz == 0 {
		return
	}
	cur := p.Vel.X()*wx + p.Vel.Z()*wz
	add := targetSpeed - cur
	if add <= 0 {
		return
	}
	a := accel * targetSpeed * dt
	if a > add {
		a = add
	}
	p.Vel[0] += wx * a
	p.Vel[2] += wz * a
}

// resolveTreeCollisions pushes the player out of trunk cylinders and canopy
// cones of every nearby tree. Shallow canopy penetration from above becomes a
// stand-on instead of a push-out, so canopies are walkable.
func (w *World) resolveTreeCollisions() {
	p := &w.Player
	w.treeBuf = w.chunks.TreesNear(p.Pos.X(), p.Pos.Z(), w.treeBuf)
	feet := p.Pos.Y() - p.colHeight

	for _, t := range w.treeBuf {
		shape := t.shape(w.hf.At(t.X, t.Z))
		dx := p.Pos.X() - t.X
		dz := p.Pos.Z() - t.Z
		d := math.Hypot(dx, dz)

		// Trunk cylinder: push out horizontally while the feet are below the
		// trunk top. Standing exactly on the top (within the step tolerance)
		// is handled by ground resolve instead.
		if feet < shape.trunkTop-0.3 {
			if r := shape.trunkRadius + playerRadius; d < r {
				w.pushOut(dx, dz, d, r, t)
			}
		}

		// Canopy cone.
		if feet < shape.canopyTop && feet > shape.canopyBase-p.colHeight {
			coneR := shape.radiusAt(feet)
			if coneR <= 0 || d >= coneR+playerRadius {
				continue
			}
			surface := shape.surfaceY(d)
			if feet >= surface-0.6 && p.Vel.Y() <= 0 {
				// Shallow: stand on the canopy. Ground resolve snaps us.
				if p.Vel[1] < 0 {
					p.Vel[1] = 0
				}
				continue
			}
			w.pushOut(dx, dz, d, coneR+playerRadius, t)
		}
	}
}

// pushOut moves the player horizontally to radius r from the tree axis.
// Degenerate zero distance falls back to +X.
func (w *World) pushOut(dx, dz, d, r float64, t TreeRecord) {
	p := &w.Player
	if d < 1e-9 {
		dx, dz, d = 1, 0, 1
	}
	nx, nz := dx/d, dz/d
	p.Pos[0] = t.X + nx*r
	p.Pos[2] = t.Z + nz*r
	// Kill the inward velocity component.
	inward := p.Vel.X()*nx + p.Vel.Z()*nz
	if inward < 0 {
		p.Vel[0] -= nx * inward
		p.Vel[2] -= nz * inward
	}
}

// surfaceY returns the world Y of the cone surface at horizontal distance d
// from the axis, i.e. the height at which the cone's radius equals d.
func (s treeShape) surfaceY(d float64) float64 {
	if s.canopyRadius < 1e-9 {
		return s.canopyTop
	}
	frac := d / s.canopyRadius
	if frac > 1 {
		frac = 1
	}
	return s.canopyTop - frac*(s.canopyTop-s.canopyBase)
}

// groundHeightUnder returns the supporting height beneath the player: terrain,
// or any tree surface the player currently stands above within tolerance.
// Uses the same treeShape formulas as collision; the two must never diverge.
func (w *World) groundHeightUnder() float64 {
	p := &w.Player
	ground := w.hf.At(p.Pos.X(), p.Pos.Z())
	feet := p.Pos.Y() - p.colHeight

	w.treeBuf = w.chunks.TreesNear(p.Pos.X(), p.Pos.Z(), w.treeBuf)
	for _, t := range w.treeBuf {
		shape := t.shape(w.hf.At(t.X, t.Z))
		dx := p.Pos.X() - t.X
		dz := p.Pos.Z() - t.Z
		d := math.Hypot(dx, dz)
		if d < shape.canopyRadius {
			if s := shape.surfaceY(d); s > ground && feet >= s-0.6 {
				ground = s
			}
		}
		if d < shape.trunkRadius+playerRadius && feet >= shape.trunkTop-0.3 {
			if shape.trunkTop > ground {
				ground = shape.trunkTop
			}
		}
	}
	return ground
}

// resolveGround snaps the player to the supporting surface, steps up small
// ledges while grounded, or transitions to airborne.
func (w *World) resolveGround() {
	p := &w.Player
	ground := w.groundHeightUnder()
	feet := p.Pos.Y() - p.colHeight
	gap := feet - ground

	switch {
	case gap <= 0:
		// Penetrating: snap up.
		p.Pos[1] = ground + p.colHeight
		if p.Vel[1] < 0 {
			p.Vel[1] = 0
		}
		p.Grounded = true
	case p.Grounded && gap <= w.cfg.StepHeight && !p.jumpedThisStep && p.Vel.Y() <= 0:
		// Step-up/down within tolerance keeps traversal of small bumps smooth.
		p.Pos[1] = ground + p.colHeight
		p.Vel[1] = 0
		p.Grounded = true
	default:
		p.Grounded = false
	}
}
