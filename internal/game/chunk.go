package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// ChunkCoord identifies one fixed-size terrain tile on the chunk grid.
type ChunkCoord struct {
	X int32
	Z int32
}

// chunkKey packs the two signed coordinates into one map key. Cheaper to hash
// than a struct and allocation-free to build.
type chunkKey uint64

func (c ChunkCoord) key() chunkKey {
	return chunkKey(uint64(uint32(c.X))<<32 | uint64(uint32(c.Z)))
}

// chunkCoordAt maps a world position onto the chunk grid.
func chunkCoordAt(x, z, chunkSize float64) ChunkCoord {
	return ChunkCoord{
		X: int32(floorDiv(x, chunkSize)),
		Z: int32(floorDiv(z, chunkSize)),
	}
}

func floorDiv(v, size float64) int {
	q := v / size
	i := int(q)
	if q < 0 && float64(i) != q {
		i--
	}
	return i
}

// chebyshev returns the chunk-grid ring distance between two coordinates.
func chebyshev(a, b ChunkCoord) int {
	dx := int(a.X - b.X)
	dz := int(a.Z - b.Z)
	if dx < 0 {
		dx = -dx
	}
	if dz < 0 {
		dz = -dz
	}
	if dx > dz {
		return dx
	}
	return dz
}

// gridDistSq is the squared euclidean chunk-grid distance, used as queue
// priority (nearest builds first, farthest evicts first).
func gridDistSq(a, b ChunkCoord) int {
	dx := int(a.X - b.X)
	dz := int(a.Z - b.Z)
	return dx*dx + dz*dz
}

// TreeRecord is one placed tree. Immutable after generation; both player
// collision and particle avoidance derive identical trunk/canopy geometry
// from it via treeShape.
type TreeRecord struct {
	X           float64
	Z           float64
	WidthScale  float64
	HeightScale float64
}

// treeShape is the single authoritative derivation of a tree's collision
// geometry. GroundY is the terrain height at the trunk.
type treeShape struct {
	trunkRadius  float64 // cylinder radius
	trunkTop     float64 // world Y of the trunk top
	canopyBase   float64 // world Y where the cone starts
	canopyTop    float64 // world Y of the cone tip
	canopyRadius float64 // cone radius at its base
}

func (t TreeRecord) shape(groundY float64) treeShape {
	return treeShape{
		trunkRadius:  0.8 * t.WidthScale,
		trunkTop:     groundY + 3.0*t.HeightScale,
		canopyBase:   groundY + 2.0*t.HeightScale,
		canopyTop:    groundY + 9.0*t.HeightScale,
		canopyRadius: 3.0 * t.WidthScale,
	}
}

// radiusAt returns the canopy cone radius at world Y, tapering linearly from
// canopyRadius at the base to zero at the tip. Below the canopy it reports the
// trunk radius; above the tip, zero.
func (s treeShape) radiusAt(y float64) float64 {
	if y >= s.canopyTop {
		return 0
	}
	if y < s.canopyBase {
		if y <= s.trunkTop {
			return s.trunkRadius
		}
		return 0
	}
	frac := (s.canopyTop - y) / (s.canopyTop - s.canopyBase)
	return s.canopyRadius * frac
}

// GrassKind distinguishes normal meadow grass from the dry beach variant.
type GrassKind uint8

const (
	GrassNormal GrassKind = iota
	GrassDry
)

// GrassInstance is one ground-cover transform, consumed by rendering only.
type GrassInstance struct {
	X, Z float64
	Y    float64
	Kind GrassKind
}

// Chunk owns everything generated for one tile: the height/color sample grid,
// the tree records used for spatial queries, and the grass transforms. The
// streamer's registry is the sole owner; the renderer holds a transient
// reference during a frame and must not keep it past eviction.
type Chunk struct {
	Coord  ChunkCoord
	Grid   int         // samples per edge
	Height []float64   // (Grid+1)² row-major heights, inclusive of far edges
	Colors []color.RGBA // same layout as Height
	Trees  []TreeRecord
	Grass  []GrassInstance

	// tile is the rendered terrain image, built lazily on first draw and
	// released on eviction. Headless runs never touch it.
	tile *ebiten.Image
}

// HeightAtSample returns the stored grid sample (ix, iz), both in [0, Grid].
func (c *Chunk) HeightAtSample(ix, iz int) float64 {
	return c.Height[iz*(c.Grid+1)+ix]
}

// Bounds returns the chunk's world-space XZ extent.
func (c *Chunk) Bounds(chunkSize float64) (minX, minZ, maxX, maxZ float64) {
	minX = float64(c.Coord.X) * chunkSize
	minZ = float64(c.Coord.Z) * chunkSize
	return minX, minZ, minX + chunkSize, minZ + chunkSize
}

// release frees GPU-side resources. Safe to call on a never-drawn chunk.
func (c *Chunk) release() {
	if c.tile != nil {
		c.tile.Deallocate()
		c.tile = nil
	}
}
