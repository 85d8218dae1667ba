package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/milk9111/parrot/ecs"
	"github.com/milk9111/parrot/ecs/system"
	"github.com/milk9111/parrot/prefabs"
	"github.com/milk9111/parrot/sim"
)

func main() {
	arena := flag.String("arena", sim.DefaultArena, "arena prefab in prefabs/")
	seed := flag.Int64("seed", 0, "random seed (0 picks one from the clock)")
	ticks := flag.Int("ticks", 3600, "number of steps to run (0 runs until interrupted)")
	dt := flag.Duration("dt", time.Second/60, "fixed step duration")
	watch := flag.Bool("watch", false, "hot reload prefabs and scripts from disk")
	realtime := flag.Bool("realtime", false, "sleep between steps so dt matches wall time")
	level := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "parrotsim", ReportTimestamp: true})
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

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	var summary runSummary
	for i := 0; *ticks == 0 || i < *ticks; i++ {
		select {
		case <-interrupt:
			logger.Info("interrupted", "step", i)
			summary.print(s.Snapshot())
			return
		default:
		}

		if _, err := s.PollReload(watcher); err != nil {
			logger.Warn("reload", "err", err)
		}

		events := s.Step(*dt)
		summary.record(s.World().Elapsed(), events)

		if *realtime {
			time.Sleep(*dt)
		}
	}

	summary.print(s.Snapshot())
}

type runSummary struct {
	modeChanges int
	fired       int
	hits        int
	landed      int
}

func (r *runSummary) record(at time.Duration, events []ecs.Event) {
	for _, evt := range events {
		switch evt.Type {
		case ecs.EventModeChanged:
			r.modeChanges++
			if change, ok := evt.Data.(system.ModeChange); ok {
				fmt.Printf("%10s  parrot %s  %s -> %s\n", at, evt.Entity, change.From, change.To)
			}
		case ecs.EventProjectileFired:
			r.fired++
		case ecs.EventProjectileHit:
			r.hits++
			if hit, ok := evt.Data.(system.ProjectileHit); ok {
				fmt.Printf("%10s  parrot %s hit target %s\n", at, hit.Owner, hit.Target)
			}
		case ecs.EventProjectileLand:
			r.landed++
		}
	}
}

func (r *runSummary) print(snap sim.Snapshot) {
	fmt.Printf("simulated %s in %d steps\n", snap.Elapsed, snap.Steps)
	fmt.Printf("mode changes: %d  shots: %d  hits: %d  landed: %d\n", r.modeChanges, r.fired, r.hits, r.landed)
	for _, p := range snap.Parrots {
		fmt.Printf("  %-8s %-6s at (%.2f, %.2f, %.2f) shots=%d\n", p.Name, p.State.Mode, p.Position.X, p.Position.Y, p.Position.Z, p.State.ShotsFired)
	}
}
