package game

import "math"

// InputState is the keys-pressed snapshot handed to a physics step. The core
// never reads the keyboard itself; the display layer (or a test) fills this
// in once per step.
type InputState struct {
	Forward   bool
	Back      bool
	Left      bool
	Right     bool
	Up        bool // fly mode ascend
	Down      bool // fly mode descend
	Jump      bool
	Sprint    bool
	Crouch    bool
	ToggleFly bool // level state of the fly key; the World edge-detects it
}

// Camera is the observer orientation as plain data. Yaw 0 looks down -Z,
// increasing clockwise when viewed from above; pitch is positive upward.
type Camera struct {
	Yaw   float64
	Pitch float64
}

// Forward returns the full 3D view direction.
func (c Camera) Forward() (x, y, z float64) {
	cp := math.Cos(c.Pitch)
	return cp * math.Sin(c.Yaw), math.Sin(c.Pitch), -cp * math.Cos(c.Yaw)
}

// FlatBasis returns the horizontal-plane forward and right vectors used for
// movement, so looking up or down never changes walking speed.
func (c Camera) FlatBasis() (fx, fz, rx, rz float64) {
	fx = math.Sin(c.Yaw)
	fz = -math.Cos(c.Yaw)
	return fx, fz, -fz, fx
}
