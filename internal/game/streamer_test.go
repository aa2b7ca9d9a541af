package game

import (
	"math/rand"
	"testing"
)

func testStreamer(t *testing.T, renderDist int) (*ChunkStreamer, *Config) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RenderDistance = renderDist
	hf := NewHeightField(42, cfg)
	rng := rand.New(rand.NewSource(42)) // #nosec G404 -- test determinism
	return NewChunkStreamer(hf, &cfg, rng), &cfg
}

// The registry invariant: a coordinate is active, queued for build, or queued
// for evict, never more than one of the three.
func assertRegistryConsistent(t *testing.T, s *ChunkStreamer) {
	t.Helper()
	for k := range s.queuedBuild {
		if _, ok := s.active[k]; ok {
			t.Fatal("coordinate both active and queued for build")
		}
		if _, ok := s.queuedEvict[k]; ok {
			t.Fatal("coordinate queued for both build and evict")
		}
	}
	for k := range s.queuedEvict {
		if _, ok := s.active[k]; !ok {
			t.Fatal("evict queued for a coordinate that is not active")
		}
	}
	builds, evicts := s.QueueDepths()
	if builds != len(s.queuedBuild) || evicts != len(s.queuedEvict) {
		t.Fatalf("queue depth mismatch: heap %d/%d vs map %d/%d",
			builds, evicts, len(s.queuedBuild), len(s.queuedEvict))
	}
}

func TestStreamer_BudgetOneBuildPerTick(t *testing.T) {
	s, _ := testStreamer(t, 3)

	for i := 0; i < 10; i++ {
		s.Tick(0, 0)
		if s.builtLastTick > 1 {
			t.Fatalf("tick %d built %d chunks, budget is 1", i, s.builtLastTick)
		}
		assertRegistryConsistent(t, s)
	}
	if s.ActiveCount() != 10 {
		t.Fatalf("10 ticks built %d chunks, want exactly 10", s.ActiveCount())
	}
}

func TestStreamer_RingCompletes(t *testing.T) {
	s, cfg := testStreamer(t, 2)

	side := 2*cfg.RenderDistance + 1
	want := side * side
	for i := 0; i < want+5; i++ {
		s.Tick(0, 0)
	}
	if s.ActiveCount() != want {
		t.Fatalf("ring not complete: %d active, want %d", s.ActiveCount(), want)
	}

	// Every coordinate of the ring must be present.
	center := chunkCoordAt(0, 0, cfg.ChunkSize)
	for dz := -cfg.RenderDistance; dz <= cfg.RenderDistance; dz++ {
		for dx := -cfg.RenderDistance; dx <= cfg.RenderDistance; dx++ {
			coord := ChunkCoord{X: center.X + int32(dx), Z: center.Z + int32(dz)}
			if s.ChunkAt(coord) == nil {
				t.Fatalf("missing chunk (%d,%d)", coord.X, coord.Z)
			}
		}
	}
	assertRegistryConsistent(t, s)
}

func TestStreamer_NearestBuildsFirst(t *testing.T) {
	s, cfg := testStreamer(t, 3)

	// After the first tick only the observer's own chunk should exist.
	s.Tick(0, 0)
	center := chunkCoordAt(0, 0, cfg.ChunkSize)
	if s.ChunkAt(center) == nil {
		t.Fatal("first build was not the observer's chunk")
	}

	// Builds 2..9 must all be ring-1 neighbors, never ring 2+.
	for i := 0; i < 8; i++ {
		s.Tick(0, 0)
	}
	s.Each(func(c *Chunk) {
		if chebyshev(c.Coord, center) > 1 {
			t.Errorf("chunk (%d,%d) built before ring 1 finished", c.Coord.X, c.Coord.Z)
		}
	})
}

func TestStreamer_EvictsAfterTeleport(t *testing.T) {
	s, cfg := testStreamer(t, 2)

	for i := 0; i < 40; i++ {
		s.Tick(0, 0)
	}
	before := s.ActiveCount()

	// Jump ten chunks away; the old ring drains at one evict per tick while
	// the new ring builds at one build per tick.
	farX := 10 * cfg.ChunkSize
	side := 2*cfg.RenderDistance + 1
	for i := 0; i < before+side*side+10; i++ {
		s.Tick(farX, 0)
		if s.evictedLastTick > 1 {
			t.Fatalf("evicted %d in one tick, budget is 1", s.evictedLastTick)
		}
		assertRegistryConsistent(t, s)
	}

	newCenter := chunkCoordAt(farX, 0, cfg.ChunkSize)
	s.Each(func(c *Chunk) {
		if chebyshev(c.Coord, newCenter) > cfg.RenderDistance+1 {
			t.Errorf("stale chunk (%d,%d) survived the move", c.Coord.X, c.Coord.Z)
		}
	})
	if s.ActiveCount() != side*side {
		t.Fatalf("%d active after settling, want %d", s.ActiveCount(), side*side)
	}
}

// A chunk queued for eviction that re-enters the ring must have the evict
// cancelled; the chunk never flickers out and back.
func TestStreamer_CancelOnReuse(t *testing.T) {
	s, cfg := testStreamer(t, 2)

	for i := 0; i < 40; i++ {
		s.Tick(0, 0)
	}

	// Step far enough to queue evicts for the trailing edge, but do not tick
	// enough times to drain them.
	s.refreshNeededSet(4*cfg.ChunkSize, 0)
	if len(s.queuedEvict) == 0 {
		t.Fatal("expected evicts queued after the sideways move")
	}

	// Move back: every queued evict is for a coordinate inside the ring again.
	s.refreshNeededSet(0, 0)
	if len(s.queuedEvict) != 0 {
		t.Fatalf("%d evicts survived returning to the origin", len(s.queuedEvict))
	}
	assertRegistryConsistent(t, s)
}

func TestStreamer_HysteresisSkipsSmallMoves(t *testing.T) {
	s, _ := testStreamer(t, 2)
	s.Tick(0, 0)
	scanX := s.lastScanX

	// A sub-threshold wiggle must not trigger a rescan.
	s.Tick(0.5, 0.5)
	if s.lastScanX != scanX {
		t.Fatal("needed-set rescanned for a move below the hysteresis threshold")
	}

	// Crossing the threshold does.
	s.Tick(10, 0)
	if s.lastScanX == scanX {
		t.Fatal("needed-set not rescanned after a move past the threshold")
	}
}

func TestStreamer_StaleBuildsPruned(t *testing.T) {
	s, cfg := testStreamer(t, 2)

	// One tick queues the whole ring; then sprint away before it builds.
	s.Tick(0, 0)
	s.Tick(20*cfg.ChunkSize, 0)

	center := chunkCoordAt(20*cfg.ChunkSize, 0, cfg.ChunkSize)
	for _, job := range s.queuedBuild {
		if chebyshev(job.coord, center) > cfg.RenderDistance+1 {
			t.Fatalf("stale build for (%d,%d) kept after the observer left",
				job.coord.X, job.coord.Z)
		}
	}
	assertRegistryConsistent(t, s)
}

func TestTreesNear_CoversNeighborhood(t *testing.T) {
	s, cfg := testStreamer(t, 2)
	for i := 0; i < 40; i++ {
		s.Tick(0, 0)
	}

	// Collect trees of the 3×3 block around the origin by hand.
	center := chunkCoordAt(0, 0, cfg.ChunkSize)
	want := 0
	for dz := int32(-1); dz <= 1; dz++ {
		for dx := int32(-1); dx <= 1; dx++ {
			c := s.ChunkAt(ChunkCoord{X: center.X + dx, Z: center.Z + dz})
			if c == nil {
				t.Fatal("neighborhood chunk missing; settle loop too short")
			}
			want += len(c.Trees)
		}
	}

	got := s.TreesNear(0, 0, nil)
	if len(got) != want {
		t.Fatalf("TreesNear returned %d records, neighborhood holds %d", len(got), want)
	}

	// Reusing the buffer must not change the result.
	got = s.TreesNear(0, 0, got)
	if len(got) != want {
		t.Fatalf("buffer reuse changed result: %d vs %d", len(got), want)
	}
}
