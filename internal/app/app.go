// Package app assembles the pieces every binary shares: logging, tuning, the
// score store, the pyramid engine and the bot with its commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"pyramid-bot/internal/bot"
	"pyramid-bot/internal/config"
	"pyramid-bot/internal/httpapi"
	"pyramid-bot/internal/logging"
	"pyramid-bot/internal/pyramid"
	"pyramid-bot/internal/score"
	"pyramid-bot/internal/tuning"
	"pyramid-bot/pkg/cmd"
)

type Runtime struct {
	Config *config.Config
	Tuning tuning.Tuning
	Store  score.Store
	Engine *pyramid.Engine
	Bot    *bot.Bot

	logs io.Closer
}

// Build wires a Runtime from cfg. botName overrides the tuning bot name when
// the host knows its own login.
func Build(cfg *config.Config, botName string) (*Runtime, error) {
	logs := logging.Setup(logging.Options{
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	})

	tn, err := tuning.Load(cfg.TuningPath)
	if err != nil {
		logs.Close()
		return nil, err
	}
	if botName != "" {
		tn.BotName = botName
	}

	backend, err := score.Open(cfg.StorageDriver, cfg.StoragePath)
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("open %s store: %w", cfg.StorageDriver, err)
	}
	store := score.WithRetry(backend, tn.Retry.Attempts)

	engine := pyramid.NewEngine(store, pyramid.Options{
		Modes:   tn.ModeDefaults(),
		Timeout: tn.FailedTimeout(),
		BotName: tn.BotName,
		Debug:   cfg.Debug,
	})

	reg := cmd.NewRegistry()
	bot.DefaultCommands(reg, bot.CommandDeps{
		Store:             store,
		Engine:            engine,
		Roulette:          bot.RouletteFromSeconds(tn.RouletteChambers, tn.RouletteTimeoutSeconds),
		SpamRepeats:       tn.SpamRepeats,
		HighScoresDefault: tn.HighScoresDefault,
	})

	return &Runtime{
		Config: cfg,
		Tuning: tn,
		Store:  store,
		Engine: engine,
		Bot:    bot.New(engine, reg, bot.Options{Name: tn.BotName, Prefix: cfg.CommandPrefix}),
		logs:   logs,
	}, nil
}

// ServeHTTP starts the stats API in the background when HTTP_ADDR is set.
func (r *Runtime) ServeHTTP(ctx context.Context) {
	if r.Config.HTTPAddr == "" {
		return
	}
	srv := httpapi.New(r.Store, r.Engine)
	go func() {
		if err := srv.Run(ctx, r.Config.HTTPAddr); err != nil {
			log.Printf("[ERR] HTTP API stopped: %v", err)
		}
	}()
}

// Close releases the store, then the log file.
func (r *Runtime) Close() error {
	err := r.Store.Close()
	return errors.Join(err, r.logs.Close())
}
