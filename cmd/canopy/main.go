package main

import (
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/dreamware/canopy/internal/config"
	"github.com/dreamware/canopy/internal/overlay"
	"github.com/dreamware/canopy/internal/render"
)

func main() {
	cfg, err := config.Load(getenv("CANOPY_CONFIG", ""))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	seed := cfg.Overlay.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	cli := NewCLI(
		overlay.New(cfg.Overlay.Salt),
		render.New(cfg.Render.Cols, cfg.Render.Rows),
		rand.New(rand.NewSource(seed)),
		os.Stdin,
		os.Stdout,
	)
	if err := cli.Run(); err != nil {
		log.Fatalf("repl: %v", err)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
