package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
)

// DebugReport renders a diagnostics dump of the whole simulation: config
// seed, player state, chunk registry, and particle stats. Bound to F8 in the
// display layer, which copies it to the clipboard for bug reports.
func (w *World) DebugReport() string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- driftmere debug report ---\n")
	fmt.Fprintf(&b, "seed=%d tick=%d\n\n", w.cfg.Seed, w.tick)

	p := &w.Player
	fmt.Fprintf(&b, "player: pos=(%.2f, %.2f, %.2f) vel=(%.2f, %.2f, %.2f)\n",
		p.Pos.X(), p.Pos.Y(), p.Pos.Z(), p.Vel.X(), p.Vel.Y(), p.Vel.Z())
	fmt.Fprintf(&b, "        mode=%s grounded=%v underwater=%v colHeight=%.2f\n",
		p.Mode, p.Grounded, p.Underwater, p.colHeight)
	fmt.Fprintf(&b, "        terrain_here=%.2f water_level=%.2f\n\n",
		w.hf.At(p.Pos.X(), p.Pos.Z()), w.hf.WaterLevel())

	builds, evicts := w.chunks.QueueDepths()
	fmt.Fprintf(&b, "chunks: active=%d queued_build=%d queued_evict=%d ring=%d\n",
		w.chunks.ActiveCount(), builds, evicts, w.cfg.RenderDistance)

	// Sorted coordinate list so two reports diff cleanly.
	type row struct {
		coord ChunkCoord
		trees int
		grass int
	}
	var rows []row
	w.chunks.Each(func(c *Chunk) {
		rows = append(rows, row{c.Coord, len(c.Trees), len(c.Grass)})
	})
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].coord.X != rows[j].coord.X {
			return rows[i].coord.X < rows[j].coord.X
		}
		return rows[i].coord.Z < rows[j].coord.Z
	})
	totalTrees := 0
	for _, r := range rows {
		totalTrees += r.trees
	}
	fmt.Fprintf(&b, "        total_trees=%d\n", totalTrees)
	for _, r := range rows {
		fmt.Fprintf(&b, "        (%4d,%4d) trees=%-3d grass=%d\n", r.coord.X, r.coord.Z, r.trees, r.grass)
	}

	ps := w.particles
	fmt.Fprintf(&b, "\nparticles: count=%d clusters=%d stride=%d updated_last=%d\n",
		len(ps.particles), len(ps.clusters), ps.stride(), ps.updatedLastTick)
	fmt.Fprintf(&b, "           wind=(%.2f, %.2f, %.2f)\n", ps.wind.X(), ps.wind.Y(), ps.wind.Z())
	return b.String()
}

// CopyDebugReport places the report on the system clipboard.
func (w *World) CopyDebugReport() error {
	return clipboard.WriteAll(w.DebugReport())
}
