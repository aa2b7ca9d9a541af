package main

import (
	"flag"
	"log"

	"driftmere/internal/game"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "optional YAML tuning overlay")
	flag.Parse()

	cfg, err := game.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ebiten.SetWindowTitle("Driftmere")
	ebiten.SetWindowSize(1280, 720)
	if err := ebiten.RunGame(game.New(cfg)); err != nil {
		log.Fatal(err)
	}
}
