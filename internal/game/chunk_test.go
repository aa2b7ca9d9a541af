package game

import (
	"math"
	"testing"
)

func TestChunkCoordAt_NegativeCoordinates(t *testing.T) {
	cases := []struct {
		x, z     float64
		wantX    int32
		wantZ    int32
	}{
		{0, 0, 0, 0},
		{31.9, 31.9, 0, 0},
		{32, 32, 1, 1},
		{-0.1, -0.1, -1, -1},
		{-32, -32, -1, -1},
		{-32.1, -0.1, -2, -1},
	}
	for _, tc := range cases {
		got := chunkCoordAt(tc.x, tc.z, 32)
		if got.X != tc.wantX || got.Z != tc.wantZ {
			t.Errorf("chunkCoordAt(%v, %v) = (%d,%d), want (%d,%d)",
				tc.x, tc.z, got.X, got.Z, tc.wantX, tc.wantZ)
		}
	}
}

func TestChunkKey_DistinctForSignedCoords(t *testing.T) {
	seen := map[chunkKey]ChunkCoord{}
	for x := int32(-3); x <= 3; x++ {
		for z := int32(-3); z <= 3; z++ {
			c := ChunkCoord{X: x, Z: z}
			if prev, dup := seen[c.key()]; dup {
				t.Fatalf("key collision between %v and %v", prev, c)
			}
			seen[c.key()] = c
		}
	}
}

func TestChebyshev(t *testing.T) {
	a := ChunkCoord{X: 0, Z: 0}
	if d := chebyshev(a, ChunkCoord{X: 3, Z: -2}); d != 3 {
		t.Errorf("chebyshev = %d, want 3", d)
	}
	if d := chebyshev(ChunkCoord{X: -5, Z: 1}, a); d != 5 {
		t.Errorf("chebyshev = %d, want 5", d)
	}
}

func TestTreeShape_Derivation(t *testing.T) {
	tr := TreeRecord{X: 10, Z: 20, WidthScale: 1.5, HeightScale: 2.0}
	s := tr.shape(100)

	if s.trunkRadius != 0.8*1.5 {
		t.Errorf("trunkRadius = %v", s.trunkRadius)
	}
	if s.trunkTop != 100+3.0*2.0 {
		t.Errorf("trunkTop = %v", s.trunkTop)
	}
	if s.canopyBase != 100+2.0*2.0 {
		t.Errorf("canopyBase = %v", s.canopyBase)
	}
	if s.canopyTop != 100+9.0*2.0 {
		t.Errorf("canopyTop = %v", s.canopyTop)
	}
	if s.canopyRadius != 3.0*1.5 {
		t.Errorf("canopyRadius = %v", s.canopyRadius)
	}
}

func TestTreeShape_RadiusTaper(t *testing.T) {
	s := TreeRecord{WidthScale: 1, HeightScale: 1}.shape(0)

	if r := s.radiusAt(s.canopyBase); math.Abs(r-s.canopyRadius) > 1e-12 {
		t.Errorf("radius at canopy base = %v, want %v", r, s.canopyRadius)
	}
	if r := s.radiusAt(s.canopyTop); r != 0 {
		t.Errorf("radius at canopy tip = %v, want 0", r)
	}
	mid := (s.canopyBase + s.canopyTop) / 2
	if r := s.radiusAt(mid); math.Abs(r-s.canopyRadius/2) > 1e-12 {
		t.Errorf("radius at midpoint = %v, want %v", r, s.canopyRadius/2)
	}
	if r := s.radiusAt(s.trunkTop - 0.5); r != s.trunkRadius {
		t.Errorf("radius in trunk region = %v, want %v", r, s.trunkRadius)
	}
	if r := s.radiusAt(s.canopyTop + 5); r != 0 {
		t.Errorf("radius above tip = %v, want 0", r)
	}
}

func TestTreeShape_SurfaceYInverseOfRadius(t *testing.T) {
	s := TreeRecord{WidthScale: 1.2, HeightScale: 1.4}.shape(50)

	// surfaceY(radiusAt(y)) must recover y inside the cone.
	for _, y := range []float64{s.canopyBase + 0.1, (s.canopyBase + s.canopyTop) / 2, s.canopyTop - 0.1} {
		d := s.radiusAt(y)
		if got := s.surfaceY(d); math.Abs(got-y) > 1e-9 {
			t.Errorf("surfaceY(radiusAt(%v)) = %v", y, got)
		}
	}
}
