package game

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

const (
	screenW = 1280
	screenH = 720

	// Overhead view scale: pixels per world unit.
	viewZoom = 6.0

	minimapSize = 160
	minimapStep = 4.0 // world units per minimap pixel
)

// Game is the ebiten front end: it captures input, drives the World's fixed
// step loop, and draws the overhead view. All simulation state lives in the
// World; Game only owns presentation caches.
type Game struct {
	world *World

	cam       Camera
	simSpeed  float64
	showHUD   bool
	showMap   bool
	prevKeys  map[ebiten.Key]bool
	lastFrame time.Time

	// Mouse-look state.
	cursorCaptured bool
	prevMouseX     int
	prevMouseY     int

	// Minimap cache, rebuilt when the player leaves its coverage.
	minimap        *ebiten.Image
	minimapCenterX float64
	minimapCenterZ float64

	reporter       *FrameReporter
	lastReportTick int
}

// New creates the game around a fresh world.
func New(cfg Config) *Game {
	return &Game{
		world:     NewWorld(cfg),
		simSpeed:  1.0,
		showHUD:   true,
		showMap:   true,
		prevKeys:  make(map[ebiten.Key]bool),
		lastFrame: time.Now(),
		reporter:  NewFrameReporter(reportWindowTicks),
	}
}

// World exposes the simulation for the headless binary and tests.
func (g *Game) World() *World { return g.world }

func (g *Game) Update() error {
	in := g.handleInput()

	now := time.Now()
	realDt := now.Sub(g.lastFrame).Seconds()
	g.lastFrame = now

	if g.simSpeed > 0 {
		g.world.Advance(realDt*g.simSpeed, g.cam, in)
	}

	// Collect a report roughly once a second of sim time.
	if tick := g.world.Tick(); tick%120 == 0 && tick != g.lastReportTick {
		g.reporter.Collect(g.world)
		g.lastReportTick = tick
	}
	return nil
}

// handleInput builds the keys-pressed snapshot and processes presentation
// hotkeys (edge-triggered via prevKeys, the usual previous-state compare).
func (g *Game) handleInput() InputState {
	in := InputState{
		Forward:   ebiten.IsKeyPressed(ebiten.KeyW),
		Back:      ebiten.IsKeyPressed(ebiten.KeyS),
		Left:      ebiten.IsKeyPressed(ebiten.KeyA),
		Right:     ebiten.IsKeyPressed(ebiten.KeyD),
		Jump:      ebiten.IsKeyPressed(ebiten.KeySpace),
		Up:        ebiten.IsKeyPressed(ebiten.KeySpace),
		Down:      ebiten.IsKeyPressed(ebiten.KeyControlLeft),
		Sprint:    ebiten.IsKeyPressed(ebiten.KeyShiftLeft),
		Crouch:    ebiten.IsKeyPressed(ebiten.KeyControlLeft),
		ToggleFly: ebiten.IsKeyPressed(ebiten.KeyF),
	}

	pressed := func(k ebiten.Key) bool {
		cur := ebiten.IsKeyPressed(k)
		edge := cur && !g.prevKeys[k]
		g.prevKeys[k] = cur
		return edge
	}

	if pressed(ebiten.KeyTab) {
		g.cursorCaptured = !g.cursorCaptured
		if g.cursorCaptured {
			ebiten.SetCursorMode(ebiten.CursorModeCaptured)
		} else {
			ebiten.SetCursorMode(ebiten.CursorModeVisible)
		}
	}
	if pressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if pressed(ebiten.KeyM) {
		g.showMap = !g.showMap
	}
	if pressed(ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if pressed(ebiten.KeyComma) && g.simSpeed > 0.25 {
		g.simSpeed /= 2
	}
	if pressed(ebiten.KeyPeriod) && g.simSpeed < 4 {
		if g.simSpeed == 0 {
			g.simSpeed = 1
		} else {
			g.simSpeed *= 2
		}
	}
	if pressed(ebiten.KeyF8) {
		if err := g.world.CopyDebugReport(); err == nil {
			g.world.Log().Add(g.world.Tick(), "--", "debug", "report_copied", "", 0)
		}
	}

	// Mouse look while captured; arrow keys as fallback.
	mx, my := ebiten.CursorPosition()
	if g.cursorCaptured {
		sens := g.world.Config().Sensitivity
		g.cam.Yaw += float64(mx-g.prevMouseX) * sens
		g.cam.Pitch -= float64(my-g.prevMouseY) * sens
	}
	g.prevMouseX, g.prevMouseY = mx, my

	const turn = 0.03
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.cam.Yaw -= turn
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.cam.Yaw += turn
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.cam.Pitch += turn
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.cam.Pitch -= turn
	}
	if limit := math.Pi/2 - 0.05; g.cam.Pitch > limit {
		g.cam.Pitch = limit
	} else if g.cam.Pitch < -limit {
		g.cam.Pitch = -limit
	}

	return in
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 18, G: 24, B: 34, A: 255})

	g.drawWorldView(screen)
	if g.showMap {
		g.drawMinimap(screen)
	}
	if g.showHUD {
		g.drawHUD(screen)
	}
}

// worldToScreen maps a world XZ position into view pixels, player-centred.
func (g *Game) worldToScreen(x, z float64) (float32, float32) {
	p := g.world.Player.Pos
	return float32((x-p.X())*viewZoom) + screenW/2, float32((z-p.Z())*viewZoom) + screenH/2
}

// drawWorldView renders the overhead view: chunk terrain tiles, grass, trees,
// particles and the player marker.
func (g *Game) drawWorldView(screen *ebiten.Image) {
	cfg := g.world.Config()

	g.world.Chunks().Each(func(c *Chunk) {
		if c.tile == nil {
			c.tile = buildChunkTile(c, g.world.HeightField().WaterLevel())
		}
		minX, minZ, _, _ := c.Bounds(cfg.ChunkSize)
		sx, sz := g.worldToScreen(minX, minZ)
		var op ebiten.DrawImageOptions
		scale := cfg.ChunkSize * viewZoom / float64(c.Grid+1)
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(float64(sx), float64(sz))
		screen.DrawImage(c.tile, &op)
	})

	// Grass as faint dots, trees as canopy discs with a trunk dot.
	g.world.Chunks().Each(func(c *Chunk) {
		for _, gr := range c.Grass {
			sx, sz := g.worldToScreen(gr.X, gr.Z)
			col := color.RGBA{R: 70, G: 130, B: 60, A: 140}
			if gr.Kind == GrassDry {
				col = color.RGBA{R: 150, G: 140, B: 80, A: 140}
			}
			vector.FillRect(screen, sx, sz, 2, 2, col, false)
		}
		for _, t := range c.Trees {
			shape := t.shape(g.world.Height(t.X, t.Z))
			sx, sz := g.worldToScreen(t.X, t.Z)
			vector.FillCircle(screen, sx, sz, float32(shape.canopyRadius*viewZoom),
				color.RGBA{R: 30, G: 80, B: 36, A: 220}, false)
			vector.FillCircle(screen, sx, sz, float32(shape.trunkRadius*viewZoom),
				color.RGBA{R: 90, G: 66, B: 40, A: 255}, false)
		}
	})

	// Particles: altitude maps to brightness so the swarm reads as 3D.
	for _, p := range g.world.ParticleSystem().Particles() {
		sx, sz := g.worldToScreen(p.Pos.X(), p.Pos.Z())
		if sx < -4 || sx > screenW+4 || sz < -4 || sz > screenH+4 {
			continue
		}
		alt := p.Pos.Y() - g.world.Height(p.Pos.X(), p.Pos.Z())
		b := uint8(140 + math.Min(alt*4, 100))
		vector.FillCircle(screen, sx, sz, 1.5, color.RGBA{R: b, G: b, B: 255, A: 200}, false)
	}

	// Player marker with a view direction tick.
	px, pz := g.worldToScreen(g.world.Player.Pos.X(), g.world.Player.Pos.Z())
	vector.FillCircle(screen, px, pz, 5, color.RGBA{R: 255, G: 250, B: 240, A: 255}, false)
	fx, _, fz := g.cam.Forward()
	vector.StrokeLine(screen, px, pz, px+float32(fx*18), pz+float32(fz*18),
		2, color.RGBA{R: 255, G: 250, B: 240, A: 200}, false)
}

// buildChunkTile bakes a chunk's color grid into an image, one pixel per
// height sample, with the water tint applied below the water line.
func buildChunkTile(c *Chunk, waterLevel float64) *ebiten.Image {
	side := c.Grid + 1
	img := ebiten.NewImage(side, side)
	pix := make([]byte, side*side*4)
	for i, col := range c.Colors {
		col = shadeTerrain(col, c.Height[i], waterLevel)
		pix[i*4+0] = col.R
		pix[i*4+1] = col.G
		pix[i*4+2] = col.B
		pix[i*4+3] = col.A
	}
	img.WritePixels(pix)
	return img
}

// shadeTerrain applies the shared water tint over a biome color. The minimap
// uses the same function so the two views agree.
func shadeTerrain(base color.RGBA, h, waterLevel float64) color.RGBA {
	if h >= waterLevel {
		return base
	}
	depth := waterLevel - h
	t := math.Min(depth/10, 1)
	water := color.RGBA{R: 30, G: 70, B: 140, A: 255}
	return lerpColor(base, water, 0.5+0.5*t)
}

// drawMinimap renders a coarse height-field sample around the player. The
// cache is rebuilt only when the player walks far enough from its centre.
func (g *Game) drawMinimap(screen *ebiten.Image) {
	p := g.world.Player.Pos
	if g.minimap == nil ||
		math.Abs(p.X()-g.minimapCenterX) > minimapStep*minimapSize/4 ||
		math.Abs(p.Z()-g.minimapCenterZ) > minimapStep*minimapSize/4 {
		g.rebuildMinimap(p.X(), p.Z())
	}

	const pad = 12
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(screenW-minimapSize-pad, pad)
	screen.DrawImage(g.minimap, &op)
	vector.StrokeRect(screen, screenW-minimapSize-pad, pad, minimapSize, minimapSize,
		1, color.RGBA{R: 220, G: 220, B: 220, A: 160}, false)

	// Player dot, offset from the cached centre.
	cx := screenW - minimapSize - pad + minimapSize/2 + float32((p.X()-g.minimapCenterX)/minimapStep)
	cz := pad + minimapSize/2 + float32((p.Z()-g.minimapCenterZ)/minimapStep)
	vector.FillCircle(screen, cx, cz, 2.5, color.RGBA{R: 255, G: 80, B: 60, A: 255}, false)
}

func (g *Game) rebuildMinimap(centerX, centerZ float64) {
	if g.minimap == nil {
		g.minimap = ebiten.NewImage(minimapSize, minimapSize)
	}
	g.minimapCenterX = centerX
	g.minimapCenterZ = centerZ
	wl := g.world.HeightField().WaterLevel()
	pix := make([]byte, minimapSize*minimapSize*4)
	for py := 0; py < minimapSize; py++ {
		for px := 0; px < minimapSize; px++ {
			wx := centerX + (float64(px)-minimapSize/2)*minimapStep
			wz := centerZ + (float64(py)-minimapSize/2)*minimapStep
			h := g.world.Height(wx, wz)
			col := shadeTerrain(BiomeColor(h), h, wl)
			i := (py*minimapSize + px) * 4
			pix[i+0] = col.R
			pix[i+1] = col.G
			pix[i+2] = col.B
			pix[i+3] = 255
		}
	}
	g.minimap.WritePixels(pix)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	p := &g.world.Player
	face := basicfont.Face7x13

	title := "DRIFTMERE"
	text.Draw(screen, title, face, 14, 22, color.RGBA{R: 230, G: 235, B: 240, A: 255})

	speedStr := fmt.Sprintf("%.2gx", g.simSpeed)
	if g.simSpeed == 0 {
		speedStr = "PAUSED"
	}
	lines := []string{
		fmt.Sprintf("pos (%.1f, %.1f, %.1f)  %s", p.Pos.X(), p.Pos.Y(), p.Pos.Z(), p.Mode),
		fmt.Sprintf("chunks %d  sim %s", g.world.Chunks().ActiveCount(), speedStr),
		"WASD move  Space jump  Shift sprint  Ctrl crouch  F fly",
		"Tab mouse-look  M map  P pause  ,/. speed  F8 copy report  H hide",
	}
	for i, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, 14, 32+i*14)
	}
	if p.Underwater {
		text.Draw(screen, "~ underwater ~", face, 14, 110, color.RGBA{R: 120, G: 180, B: 255, A: 255})
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return screenW, screenH
}
