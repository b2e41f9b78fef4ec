// Command fireworks is the terminal fireworks editor: click to launch shells, record them
// on a timeline, scrub through the show and share it as a URL query.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/fireworks/audio"
	"github.com/lixenwraith/fireworks/config"
	"github.com/lixenwraith/fireworks/logging"
	"github.com/lixenwraith/fireworks/preview"
	"github.com/lixenwraith/fireworks/status"
)

func main() {
	cfg, err := config.Load("fireworks", os.Args[1:])
	if errors.Is(err, config.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fireworks: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "fireworks: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	level, _ := cfg.LogLevel()
	logger, closer := logging.New(logging.Options{
		Debug:      cfg.Debug,
		Level:      level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	defer closer.Close()
	logger.Info().Str("config", cfg.ConfigFile).Int64("seed", cfg.Seed).Int("fps", cfg.FPS).Msg("starting")

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("screen init: %w", err)
	}
	// Panic recovery: restore the terminal before the trace is printed
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			logger.Error().Interface("panic", r).Msg("crashed")
			fmt.Fprintf(os.Stderr, "\n\x1b[31mFIREWORKS CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	reg := status.NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var player *audio.Player
	if cfg.Audio.Enabled {
		player = audio.NewPlayer(cfg.Audio.Volume, cfg.Seed)
		if err := player.Initialize(); err != nil {
			logger.Warn().Err(err).Msg("audio unavailable, continuing silent")
			player = nil
		} else {
			defer player.Close()
		}
	}

	var hub *preview.Hub
	if cfg.Preview.Enabled {
		hub = preview.NewHub(reg, logger)
		srv := preview.NewServer(cfg.Preview.Addr, hub)
		srv.Start(ctx)
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			if err := srv.Shutdown(sctx); err != nil {
				logger.Warn().Err(err).Msg("preview shutdown")
			}
		}()
	}

	a := newApp(appOptions{
		Screen:   screen,
		Player:   player,
		Hub:      hub,
		Registry: reg,
		Logger:   logger,
		Seed:     cfg.Seed,
		Debounce: cfg.URLSync.Debounce,
		BaseURL:  cfg.URLSync.Base,
	})
	a.engine.SetLength(float64(cfg.Show.Length) * 1000)
	a.engine.SetNightSky(cfg.NightSky)
	if cfg.Show.URL != "" {
		if err := a.engine.LoadQuery(cfg.Show.URL); err != nil {
			a.notice = err.Error()
		}
	}

	a.loop(ctx, cfg.FrameInterval())
	logger.Info().Interface("status", reg.Snapshot()).Msg("exiting")
	return nil
}

// loop runs until quit: input arrives from the polling goroutine, frames from the ticker
func (a *app) loop(ctx context.Context, interval time.Duration) {
	frameTicker := time.NewTicker(interval)
	defer frameTicker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-eventChan:
			if !ok || !a.handleEvent(ev) {
				return
			}
		case now := <-frameTicker.C:
			a.frame(now)
		}
	}
}
