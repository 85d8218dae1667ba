package main

import (
	"flag"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/parrot/prefabs"
	"github.com/milk9111/parrot/sim"
)

func main() {
	arena := flag.String("arena", sim.DefaultArena, "arena prefab in prefabs/")
	seed := flag.Int64("seed", 0, "random seed (0 picks one from the clock)")
	watch := flag.Bool("watch", false, "hot reload prefabs and scripts from disk")
	level := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "viewer", ReportTimestamp: true})
	lvl, err := log.ParseLevel(*level)
	if err != nil {
		logger.Fatal("bad log level", "level", *level, "err", err)
	}
	logger.SetLevel(lvl)

	s, err := sim.New(sim.Options{Arena: *arena, Seed: *seed, Logger: logger})
	if err != nil {
		logger.Fatal("start", "err", err)
	}
	defer s.Close()

	var watcher *prefabs.Watcher
	if *watch {
		watcher, err = prefabs.WatchDir()
		if err != nil {
			logger.Fatal("watch prefabs", "err", err)
		}
		defer watcher.Close()
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("parrot")

	if err := ebiten.RunGame(NewGame(s, watcher, logger)); err != nil {
		logger.Error("run", "err", err)
	}
}
