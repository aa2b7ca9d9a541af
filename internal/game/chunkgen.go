package game

import (
	"image/color"
	"math/rand"
)

// generateChunk synthesizes one chunk: the height/color sample grid plus tree
// and grass placement. Heights are deterministic per seed; object placement
// draws from the World's dedicated placement RNG stream, which is itself
// seeded, so a whole run reproduces from Config.Seed alone.
func generateChunk(hf *HeightField, cfg Config, coord ChunkCoord, rng *rand.Rand) *Chunk {
	grid := cfg.ChunkGrid
	step := cfg.ChunkSize / float64(grid)
	baseX := float64(coord.X) * cfg.ChunkSize
	baseZ := float64(coord.Z) * cfg.ChunkSize

	c := &Chunk{
		Coord:  coord,
		Grid:   grid,
		Height: make([]float64, (grid+1)*(grid+1)),
		Colors: make([]color.RGBA, (grid+1)*(grid+1)),
	}

	// Sample one row/column past the edge so adjacent chunks share their
	// border samples exactly.
	for iz := 0; iz <= grid; iz++ {
		for ix := 0; ix <= grid; ix++ {
			h := hf.At(baseX+float64(ix)*step, baseZ+float64(iz)*step)
			c.Height[iz*(grid+1)+ix] = h
			c.Colors[iz*(grid+1)+ix] = BiomeColor(h)
		}
	}

	placeTrees(hf, cfg, c, baseX, baseZ, rng)
	placeGrass(hf, cfg, c, baseX, baseZ, rng)
	return c
}

// placeTrees runs rejection sampling: up to 3× the target count of candidates,
// rejecting any that land outside a forest-density clump, crowd an accepted
// tree, sit on too steep a slope, or stand in the water.
func placeTrees(hf *HeightField, cfg Config, c *Chunk, baseX, baseZ float64, rng *rand.Rand) {
	attempts := cfg.TreesPerChunk * 3
	for i := 0; i < attempts && len(c.Trees) < cfg.TreesPerChunk; i++ {
		x := baseX + rng.Float64()*cfg.ChunkSize
		z := baseZ + rng.Float64()*cfg.ChunkSize

		if hf.Density(x, z) < cfg.TreeDensityMin {
			continue
		}

		tooClose := false
		for _, t := range c.Trees {
			dx := t.X - x
			dz := t.Z - z
			if dx*dx+dz*dz < cfg.TreeMinSeparSq {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		h := hf.At(x, z)
		if h < cfg.TreeMinElevation {
			continue
		}
		// Slope check: height delta over a 1-unit finite difference.
		if absf(hf.At(x+1, z)-h) > cfg.TreeMaxSlope || absf(hf.At(x, z+1)-h) > cfg.TreeMaxSlope {
			continue
		}

		// Taller trees tend to be wider: height scale correlates with width.
		w := 0.7 + rng.Float64()*0.6
		c.Trees = append(c.Trees, TreeRecord{
			X:           x,
			Z:           z,
			WidthScale:  w,
			HeightScale: w*0.6 + 0.4 + rng.Float64()*0.5,
		})
	}
}

// placeGrass scatters ground cover uniformly. Above elevation 0 it is normal
// grass, between the water line and 0 the dry beach variant, underwater none.
func placeGrass(hf *HeightField, cfg Config, c *Chunk, baseX, baseZ float64, rng *rand.Rand) {
	for i := 0; i < cfg.GrassPerChunk; i++ {
		x := baseX + rng.Float64()*cfg.ChunkSize
		z := baseZ + rng.Float64()*cfg.ChunkSize
		h := hf.At(x, z)
		if h < cfg.WaterLevel {
			continue
		}
		kind := GrassNormal
		if h < 0 {
			kind = GrassDry
		}
		c.Grass = append(c.Grass, GrassInstance{X: x, Z: z, Y: h, Kind: kind})
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
