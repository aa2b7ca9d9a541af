package game

import (
	"image/color"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// HeightField is the authoritative terrain elevation function. It is pure:
// two HeightFields built from the same seed and tuning agree everywhere, which
// is what lets chunk generation, physics, particles and the map all share one
// notion of "ground" without ever storing heights per point.
type HeightField struct {
	ridge   opensimplex.Noise // low-frequency ridged hills, [-1,1]
	detail  opensimplex.Noise // high-frequency surface detail, [-1,1]
	density opensimplex.Noise // tree clumping field, [0,1]

	ridgeScale   float64
	ridgeAmp     float64
	ridgePower   float64
	detailScale  float64
	detailAmp    float64
	heightOffset float64
	densityScale float64
	waterLevel   float64
}

// NewHeightField builds the three noise layers from one seed. The density
// layer deliberately shares the seed stream (seed+2) rather than taking its
// own parameter so that a World is fully described by a single seed.
func NewHeightField(seed int64, cfg Config) *HeightField {
	return &HeightField{
		ridge:        opensimplex.New(seed),
		detail:       opensimplex.New(seed + 1),
		density:      opensimplex.NewNormalized(seed + 2),
		ridgeScale:   cfg.RidgeScale,
		ridgeAmp:     cfg.RidgeAmp,
		ridgePower:   cfg.RidgePower,
		detailScale:  cfg.DetailScale,
		detailAmp:    cfg.DetailAmp,
		heightOffset: cfg.HeightOffset,
		densityScale: cfg.TreeDensityScale,
		waterLevel:   cfg.WaterLevel,
	}
}

// At returns terrain elevation at a world (x,z). Continuous across chunk
// borders because it only ever sees world coordinates.
func (hf *HeightField) At(x, z float64) float64 {
	// Ridged layer: 1-|n| folds the noise into sharp crests, the power term
	// widens the valleys between them.
	r := 1 - math.Abs(hf.ridge.Eval2(x*hf.ridgeScale, z*hf.ridgeScale))
	h := math.Pow(r, hf.ridgePower) * hf.ridgeAmp
	h += hf.detail.Eval2(x*hf.detailScale, z*hf.detailScale) * hf.detailAmp
	return h - hf.heightOffset
}

// Density samples the tree-clumping field in [0,1]. High values become
// forests; low values stay open meadow.
func (hf *HeightField) Density(x, z float64) float64 {
	return hf.density.Eval2(x*hf.densityScale, z*hf.densityScale)
}

// NormalAt estimates the ground normal by central differences. Only obstacle
// avoidance consumes this, so a coarse epsilon is fine.
func (hf *HeightField) NormalAt(x, z float64) (nx, ny, nz float64) {
	const eps = 0.5
	dx := hf.At(x+eps, z) - hf.At(x-eps, z)
	dz := hf.At(x, z+eps) - hf.At(x, z-eps)
	nx, ny, nz = -dx, 2*eps, -dz
	l := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if l < 1e-9 {
		return 0, 1, 0
	}
	return nx / l, ny / l, nz / l
}

// WaterLevel returns the world Y of the water surface.
func (hf *HeightField) WaterLevel() float64 { return hf.waterLevel }

// Biome color bands by elevation. The minimap and the chunk mesh both call
// BiomeColor, so the two can never disagree about what a hill looks like.
var (
	colorSand   = color.RGBA{R: 194, G: 178, B: 128, A: 255}
	colorGrass  = color.RGBA{R: 86, G: 152, B: 74, A: 255}
	colorForest = color.RGBA{R: 44, G: 102, B: 52, A: 255}
	colorRock   = color.RGBA{R: 130, G: 126, B: 122, A: 255}
)

// Band edges in world elevation.
const (
	biomeSandTop   = 0.5
	biomeGrassTop  = 7.0
	biomeForestTop = 13.0
	biomeBlend     = 1.5
)

// BiomeColor classifies an elevation into the four terrain bands, linearly
// blending across band edges so the mesh has no hard color seams.
func BiomeColor(h float64) color.RGBA {
	switch {
	case h < biomeSandTop:
		return lerpColor(colorSand, colorGrass, smooth01((h-(biomeSandTop-biomeBlend))/biomeBlend))
	case h < biomeGrassTop:
		return lerpColor(colorGrass, colorForest, smooth01((h-(biomeGrassTop-biomeBlend))/biomeBlend))
	case h < biomeForestTop:
		return lerpColor(colorForest, colorRock, smooth01((h-(biomeForestTop-biomeBlend))/biomeBlend))
	default:
		return colorRock
	}
}

func smooth01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: 255,
	}
}
