package game

import (
	"container/heap"
	"math/rand"
)

// chunkJob is one pending build or evict, prioritized by squared chunk-grid
// distance from the observer at enqueue time.
type chunkJob struct {
	coord  ChunkCoord
	distSq int
	index  int // heap index, maintained for O(log n) cancellation
}

// jobQueue is a heap of chunkJobs. min=true pops nearest-first (builds),
// min=false pops farthest-first (evicts).
type jobQueue struct {
	jobs []*chunkJob
	min  bool
}

func (q *jobQueue) Len() int { return len(q.jobs) }

func (q *jobQueue) Less(i, j int) bool {
	if q.min {
		return q.jobs[i].distSq < q.jobs[j].distSq
	}
	return q.jobs[i].distSq > q.jobs[j].distSq
}

func (q *jobQueue) Swap(i, j int) {
	q.jobs[i], q.jobs[j] = q.jobs[j], q.jobs[i]
	q.jobs[i].index = i
	q.jobs[j].index = j
}

func (q *jobQueue) Push(x any) {
	j := x.(*chunkJob)
	j.index = len(q.jobs)
	q.jobs = append(q.jobs, j)
}

func (q *jobQueue) Pop() any {
	old := q.jobs
	n := len(old)
	j := old[n-1]
	old[n-1] = nil
	q.jobs = old[:n-1]
	return j
}

// ChunkStreamer owns the active-chunk registry and the frame-budgeted build
// and evict queues. A coordinate lives in at most one of {active, build queue,
// evict queue}; the queuedBuild/queuedEvict maps make that membership check
// O(1) and give cancellation a handle into the heaps.
type ChunkStreamer struct {
	hf  *HeightField
	cfg *Config
	rng *rand.Rand // placement stream, owned by the streamer

	active      map[chunkKey]*Chunk
	buildQueue  jobQueue
	evictQueue  jobQueue
	queuedBuild map[chunkKey]*chunkJob
	queuedEvict map[chunkKey]*chunkJob

	// Needed-set recompute hysteresis: skip the ring scan until the observer
	// has moved far enough from where the last scan ran.
	lastScanX, lastScanZ float64
	scanned              bool

	// Per-tick counters, read by the reporter.
	builtLastTick   int
	evictedLastTick int
}

// NewChunkStreamer creates an empty registry around the given height field.
func NewChunkStreamer(hf *HeightField, cfg *Config, rng *rand.Rand) *ChunkStreamer {
	return &ChunkStreamer{
		hf:          hf,
		cfg:         cfg,
		rng:         rng,
		active:      make(map[chunkKey]*Chunk),
		buildQueue:  jobQueue{min: true},
		evictQueue:  jobQueue{min: false},
		queuedBuild: make(map[chunkKey]*chunkJob),
		queuedEvict: make(map[chunkKey]*chunkJob),
	}
}

// Tick advances streaming one simulation frame: recompute the needed set if
// the observer moved past the hysteresis threshold, then drain at most the
// configured number of build and evict jobs. Returns true if any chunk was
// created or destroyed, so the caller can refresh derived caches.
func (s *ChunkStreamer) Tick(observerX, observerZ float64) bool {
	s.refreshNeededSet(observerX, observerZ)

	s.builtLastTick = 0
	s.evictedLastTick = 0

	for i := 0; i < s.cfg.MaxBuildsPerFrame && s.buildQueue.Len() > 0; i++ {
		job := heap.Pop(&s.buildQueue).(*chunkJob)
		delete(s.queuedBuild, job.coord.key())
		if _, ok := s.active[job.coord.key()]; ok {
			continue
		}
		s.active[job.coord.key()] = generateChunk(s.hf, *s.cfg, job.coord, s.rng)
		s.builtLastTick++
	}

	for i := 0; i < s.cfg.MaxEvictsPerFrame && s.evictQueue.Len() > 0; i++ {
		job := heap.Pop(&s.evictQueue).(*chunkJob)
		delete(s.queuedEvict, job.coord.key())
		c, ok := s.active[job.coord.key()]
		if !ok {
			continue
		}
		c.release()
		delete(s.active, job.coord.key())
		s.evictedLastTick++
	}

	return s.builtLastTick > 0 || s.evictedLastTick > 0
}

// refreshNeededSet enqueues builds for every absent coordinate within the
// render ring and evicts for anything resident past ring+1. An evict queued
// for a coordinate that re-enters the ring is cancelled rather than processed.
func (s *ChunkStreamer) refreshNeededSet(ox, oz float64) {
	if s.scanned {
		dx := ox - s.lastScanX
		dz := oz - s.lastScanZ
		if dx*dx+dz*dz < s.cfg.RecomputeMoveSq {
			return
		}
	}
	s.lastScanX, s.lastScanZ = ox, oz
	s.scanned = true

	center := chunkCoordAt(ox, oz, s.cfg.ChunkSize)
	r := s.cfg.RenderDistance

	for dz := -r; dz <= r; dz++ {
		for dx := -r; dx <= r; dx++ {
			coord := ChunkCoord{X: center.X + int32(dx), Z: center.Z + int32(dz)}
			k := coord.key()
			// Cancel-on-reuse: a needed coordinate awaiting eviction stays active.
			if job, ok := s.queuedEvict[k]; ok {
				heap.Remove(&s.evictQueue, job.index)
				delete(s.queuedEvict, k)
			}
			if _, ok := s.active[k]; ok {
				continue
			}
			if _, ok := s.queuedBuild[k]; ok {
				continue
			}
			job := &chunkJob{coord: coord, distSq: dx*dx + dz*dz}
			heap.Push(&s.buildQueue, job)
			s.queuedBuild[k] = job
		}
	}

	// Active chunks past the keep ring go onto the evict queue.
	for k, c := range s.active {
		if chebyshev(c.Coord, center) <= r+1 {
			continue
		}
		if _, ok := s.queuedEvict[k]; ok {
			continue
		}
		job := &chunkJob{coord: c.Coord, distSq: gridDistSq(c.Coord, center)}
		heap.Push(&s.evictQueue, job)
		s.queuedEvict[k] = job
	}

	// Queued builds that drifted out of the ring are stale: drop them so a
	// sprinting observer doesn't waste its budget building chunks behind it.
	for k, job := range s.queuedBuild {
		if chebyshev(job.coord, center) > r+1 {
			heap.Remove(&s.buildQueue, job.index)
			delete(s.queuedBuild, k)
		}
	}
}

// ChunkAt returns the active chunk for a key, or nil.
func (s *ChunkStreamer) ChunkAt(coord ChunkCoord) *Chunk {
	return s.active[coord.key()]
}

// Each iterates the active registry. The callback must not retain chunks.
func (s *ChunkStreamer) Each(fn func(*Chunk)) {
	for _, c := range s.active {
		fn(c)
	}
}

// ActiveCount reports the resident chunk count.
func (s *ChunkStreamer) ActiveCount() int { return len(s.active) }

// QueueDepths reports pending build and evict counts.
func (s *ChunkStreamer) QueueDepths() (builds, evicts int) {
	return s.buildQueue.Len(), s.evictQueue.Len()
}

// TreesNear returns the tree records of the 3×3 chunk neighborhood around a
// world position. Trees owned by a neighboring chunk but standing near the
// border are found because all nine neighbors are scanned. The returned slice
// aliases chunk storage and is valid only for the current tick.
func (s *ChunkStreamer) TreesNear(x, z float64, buf []TreeRecord) []TreeRecord {
	center := chunkCoordAt(x, z, s.cfg.ChunkSize)
	buf = buf[:0]
	for dz := int32(-1); dz <= 1; dz++ {
		for dx := int32(-1); dx <= 1; dx++ {
			c := s.active[ChunkCoord{X: center.X + dx, Z: center.Z + dz}.key()]
			if c == nil {
				continue
			}
			buf = append(buf, c.Trees...)
		}
	}
	return buf
}
