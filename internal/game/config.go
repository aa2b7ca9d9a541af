package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every tuneable constant of the simulation. A zero Seed means
// "seed from the wall clock"; anything else gives fully reproducible runs.
type Config struct {
	Seed int64 `yaml:"seed"`

	// World / terrain.
	ChunkSize      float64 `yaml:"chunk_size"`      // world-space edge length of one chunk
	ChunkGrid      int     `yaml:"chunk_grid"`      // height samples per chunk edge
	RenderDistance int     `yaml:"render_distance"` // Chebyshev ring radius, in chunks
	WaterLevel     float64 `yaml:"water_level"`     // world Y of the water surface
	HeightOffset   float64 `yaml:"height_offset"`   // terrain lowered by this much overall
	RidgeScale     float64 `yaml:"ridge_scale"`     // low-frequency ridged layer, 1/wavelength
	RidgeAmp       float64 `yaml:"ridge_amp"`
	RidgePower     float64 `yaml:"ridge_power"`
	DetailScale    float64 `yaml:"detail_scale"` // additive high-frequency layer
	DetailAmp      float64 `yaml:"detail_amp"`

	// Chunk streaming budgets.
	MaxBuildsPerFrame int     `yaml:"max_builds_per_frame"`
	MaxEvictsPerFrame int     `yaml:"max_evicts_per_frame"`
	RecomputeMoveSq   float64 `yaml:"recompute_move_sq"` // observer must move this far² before the needed-set is recomputed

	// Vegetation.
	TreesPerChunk    int     `yaml:"trees_per_chunk"`
	GrassPerChunk    int     `yaml:"grass_per_chunk"`
	TreeMinSeparSq   float64 `yaml:"tree_min_separ_sq"`
	TreeMaxSlope     float64 `yaml:"tree_max_slope"`
	TreeMinElevation float64 `yaml:"tree_min_elevation"`
	TreeDensityScale float64 `yaml:"tree_density_scale"`
	TreeDensityMin   float64 `yaml:"tree_density_min"` // density-noise sample must exceed this

	// Player physics.
	FixedDt         float64 `yaml:"fixed_dt"`
	MaxStepsPerTick int     `yaml:"max_steps_per_tick"`
	MaxFrameDelta   float64 `yaml:"max_frame_delta"`
	MoveSpeed       float64 `yaml:"move_speed"`
	SprintMult      float64 `yaml:"sprint_mult"`
	CrouchMult      float64 `yaml:"crouch_mult"`
	WaterSpeedMult  float64 `yaml:"water_speed_mult"`
	GroundAccel     float64 `yaml:"ground_accel"`
	AirAccel        float64 `yaml:"air_accel"`
	MaxAirSpeed     float64 `yaml:"max_air_speed"`
	Friction        float64 `yaml:"friction"`
	Gravity         float64 `yaml:"gravity"`
	WaterGravMult   float64 `yaml:"water_grav_mult"`
	WaterDrag       float64 `yaml:"water_drag"`
	JumpSpeed       float64 `yaml:"jump_speed"`
	FlySpeed        float64 `yaml:"fly_speed"`
	PlayerHeight    float64 `yaml:"player_height"`
	CrouchHeight    float64 `yaml:"crouch_height"`
	StepHeight      float64 `yaml:"step_height"`
	WorldFloor      float64 `yaml:"world_floor"` // below this Y the player is respawned
	Sensitivity     float64 `yaml:"sensitivity"`
	Curvature       float64 `yaml:"curvature"` // render-side world bend, carried for the display layer

	// Particle swarm.
	ParticleCount     int     `yaml:"particle_count"`
	ClusterCount      int     `yaml:"cluster_count"`
	UpdatesPerFrame   int     `yaml:"updates_per_frame"` // particle updates allowed per tick
	TetherRadius      float64 `yaml:"tether_radius"`
	BehindRadius      float64 `yaml:"behind_radius"` // recycle behind the view beyond this
	NeighborSamples   int     `yaml:"neighbor_samples"`
	NeighborRadius    float64 `yaml:"neighbor_radius"`
	CohesionWeight    float64 `yaml:"cohesion_weight"`
	AlignmentWeight   float64 `yaml:"alignment_weight"`
	SeparationWeight  float64 `yaml:"separation_weight"`
	RepulseRadius     float64 `yaml:"repulse_radius"`
	ParticleMaxSpeed  float64 `yaml:"particle_max_speed"`
	ParticleMinHover  float64 `yaml:"particle_min_hover"`
	ParticleMaxHover  float64 `yaml:"particle_max_hover"`
	TreeAvoidRadius   float64 `yaml:"tree_avoid_radius"`
	WindStrength      float64 `yaml:"wind_strength"`
	WindRerollSeconds float64 `yaml:"wind_reroll_seconds"`
}

// DefaultConfig returns the tuning the game ships with.
func DefaultConfig() Config {
	return Config{
		Seed: 1,

		ChunkSize:      32,
		ChunkGrid:      32,
		RenderDistance: 6,
		WaterLevel:     -5,
		HeightOffset:   8,
		RidgeScale:     0.008,
		RidgeAmp:       26,
		RidgePower:     1.8,
		DetailScale:    0.06,
		DetailAmp:      1.6,

		MaxBuildsPerFrame: 1,
		MaxEvictsPerFrame: 1,
		RecomputeMoveSq:   4.0,

		TreesPerChunk:    14,
		GrassPerChunk:    120,
		TreeMinSeparSq:   16.0,
		TreeMaxSlope:     1.1,
		TreeMinElevation: 0.5,
		TreeDensityScale: 0.015,
		TreeDensityMin:   0.55,

		FixedDt:         1.0 / 120.0,
		MaxStepsPerTick: 5,
		MaxFrameDelta:   0.25,
		MoveSpeed:       9.0,
		SprintMult:      1.7,
		CrouchMult:      0.45,
		WaterSpeedMult:  0.4,
		GroundAccel:     10.0,
		AirAccel:        2.5,
		MaxAirSpeed:     3.0,
		Friction:        8.0,
		Gravity:         30.0,
		WaterGravMult:   0.2,
		WaterDrag:       2.5,
		JumpSpeed:       10.0,
		FlySpeed:        24.0,
		PlayerHeight:    1.7,
		CrouchHeight:    1.0,
		StepHeight:      1.0,
		WorldFloor:      -80,
		Sensitivity:     0.0025,
		Curvature:       0.0008,

		ParticleCount:     600,
		ClusterCount:      6,
		UpdatesPerFrame:   150,
		TetherRadius:      70,
		BehindRadius:      40,
		NeighborSamples:   6,
		NeighborRadius:    8,
		CohesionWeight:    0.9,
		AlignmentWeight:   0.7,
		SeparationWeight:  1.4,
		RepulseRadius:     6,
		ParticleMaxSpeed:  7,
		ParticleMinHover:  1.5,
		ParticleMaxHover:  28,
		TreeAvoidRadius:   5,
		WindStrength:      1.2,
		WindRerollSeconds: 7,
	}
}

// LoadConfig reads a YAML overlay on top of DefaultConfig. Fields absent from
// the file keep their defaults, so a config file only needs the values it
// actually changes. An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Runtime setters for the slider-adjustable subset. The simulation reads these
// fresh every tick, so changing them between ticks is always safe.

func (w *World) SetMoveSpeed(v float64)   { w.cfg.MoveSpeed = v }
func (w *World) SetJumpSpeed(v float64)   { w.cfg.JumpSpeed = v }
func (w *World) SetGravity(v float64)     { w.cfg.Gravity = v }
func (w *World) SetSensitivity(v float64) { w.cfg.Sensitivity = v }
func (w *World) SetCurvature(v float64)   { w.cfg.Curvature = v }

// Curvature is read by the display layer only; the core never bends space.
func (w *World) Curvature() float64 { return w.cfg.Curvature }
