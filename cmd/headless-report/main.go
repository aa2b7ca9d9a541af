package main

import (
	"flag"
	"fmt"
	"math"

	"driftmere/internal/game"
)

type runStats struct {
	runIndex int
	seed     int64

	firstUnderwaterTick int
	firstRespawnTick    int

	chunksBuilt     int
	chunksEvicted   int
	underwaterFlips int
	modeToggles     int
	respawns        int
	recycles        int

	finalActive   int
	distanceMoved float64

	windowSummary *game.WindowReport
	latest        *game.WorldReport
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenario string
	var configPath string

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 7200, "fixed steps per run (120/s)")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenario, "scenario", "hike", "scenario name")
	flag.StringVar(&configPath, "config", "", "optional YAML tuning overlay")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	if scenario != "hike" {
		fmt.Printf("error: unsupported scenario %q (supported: hike)\n", scenario)
		return
	}
	base, err := game.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("=== Headless Exploration Report ===\n")
	fmt.Printf("scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n",
		scenario, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats := runScenarioHike(i+1, seed, ticks, base)
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all)
}

// runScenarioHike walks the player forward at sprint speed, turning the view
// slowly so the route sweeps a wide arc through terrain, water crossings, and
// forests. Everything the core streams, collides, or recycles shows up in the
// sim log.
func runScenarioHike(runIndex int, seed int64, ticks int, base game.Config) runStats {
	ts := game.NewTestSim(
		game.WithConfig(func(c *game.Config) { *c = base }),
		game.WithSeed(seed),
		game.WithVerboseLog(),
	)
	ts.Input.Forward = true
	ts.Input.Sprint = true

	start := ts.World.Player.Pos

	// Turn in segments rather than per tick: long straight legs cross chunk
	// boundaries, turns exercise evict/rebuild churn.
	const segment = 600
	for done := 0; done < ticks; done += segment {
		n := segment
		if rem := ticks - done; rem < n {
			n = rem
		}
		ts.RunTicks(n)
		ts.Cam.Yaw += math.Pi / 3
	}

	log := ts.Log()
	stats := runStats{
		runIndex:      runIndex,
		seed:          seed,
		chunksBuilt:   sumNum(log.Filter("build", "built")),
		chunksEvicted: sumNum(log.Filter("evict", "evicted")),
		modeToggles:   log.CountCategory("mode", "toggle"),
		respawns:      log.CountCategory("respawn", "world_floor"),
		recycles:      sumNum(log.Filter("recycle", "stray")),
		finalActive:   ts.World.Chunks().ActiveCount(),
		windowSummary: ts.Reporter.WindowSummary(),
		latest:        ts.Reporter.Latest(),
	}

	stats.firstUnderwaterTick = -1
	for _, e := range log.Filter("state", "underwater") {
		stats.underwaterFlips++
		if e.Value == "yes" && stats.firstUnderwaterTick < 0 {
			stats.firstUnderwaterTick = e.Tick
		}
	}
	stats.firstRespawnTick = -1
	if e, ok := log.LastOf("respawn", "world_floor"); ok {
		stats.firstRespawnTick = e.Tick
	}

	end := ts.World.Player.Pos
	dx := end.X() - start.X()
	dz := end.Z() - start.Z()
	stats.distanceMoved = math.Hypot(dx, dz)
	return stats
}

func sumNum(entries []game.SimLogEntry) int {
	total := 0
	for _, e := range entries {
		total += int(e.NumVal)
	}
	return total
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("streaming: built=%d evicted=%d resident_final=%d\n",
		rs.chunksBuilt, rs.chunksEvicted, rs.finalActive)
	fmt.Printf("player: distance=%.1f underwater_flips=%d first_underwater=%d mode_toggles=%d respawns=%d\n",
		rs.distanceMoved, rs.underwaterFlips, rs.firstUnderwaterTick, rs.modeToggles, rs.respawns)
	fmt.Printf("particles: recycled=%d\n", rs.recycles)
	if rs.windowSummary != nil {
		fmt.Print(rs.windowSummary.Format())
	}
	if rs.latest != nil {
		fmt.Printf("final: pos=(%.1f, %.1f, %.1f) speed=%.2f grounded=%v\n",
			rs.latest.PlayerX, rs.latest.PlayerY, rs.latest.PlayerZ,
			rs.latest.Speed, rs.latest.Grounded)
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	totalBuilt := 0
	totalEvicted := 0
	totalFlips := 0
	totalRecycles := 0
	totalRespawns := 0
	var totalDistance float64
	minActive, maxActive := math.MaxInt32, 0

	for _, rs := range all {
		totalBuilt += rs.chunksBuilt
		totalEvicted += rs.chunksEvicted
		totalFlips += rs.underwaterFlips
		totalRecycles += rs.recycles
		totalRespawns += rs.respawns
		totalDistance += rs.distanceMoved
		if rs.finalActive < minActive {
			minActive = rs.finalActive
		}
		if rs.finalActive > maxActive {
			maxActive = rs.finalActive
		}
	}

	n := len(all)
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d\n", n)
	fmt.Printf("avg_per_run: built=%.1f evicted=%.1f underwater_flips=%.1f recycles=%.1f respawns=%.1f distance=%.1f\n",
		avg(totalBuilt, n), avg(totalEvicted, n), avg(totalFlips, n),
		avg(totalRecycles, n), avg(totalRespawns, n), totalDistance/float64(n))
	fmt.Printf("resident_final[min/max]=%d/%d\n", minActive, maxActive)
}

func avg(sum, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
