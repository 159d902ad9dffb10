package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pyramid-bot/internal/app"
	"pyramid-bot/internal/config"
	"pyramid-bot/internal/twitch"
	v "pyramid-bot/internal/version"
)

func main() {
	log.Printf("[INFO] Starting %v Twitch bot...", v.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.New()
	if err := cfg.RequireTwitch(); err != nil {
		log.Fatalf("[ERR] %v", err)
	}

	rt, err := app.Build(cfg, cfg.TwitchNick)
	if err != nil {
		log.Fatal(err)
	}
	defer rt.Close()

	rt.ServeHTTP(ctx)

	client := twitch.NewClient(twitch.Config{
		URL:              cfg.TwitchURL,
		Token:            cfg.TwitchToken,
		Nick:             cfg.TwitchNick,
		Channels:         cfg.TwitchChannels,
		PrivilegedBadges: rt.Tuning.PrivilegedBadges,
		ModeratorBadges:  rt.Tuning.ModeratorBadges,
		QueueSize:        rt.Tuning.QueueSize,
	}, rt.Bot)

	errCh := make(chan error, 1)
	go func() {
		if err := client.Serve(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...\n", s)
		cancel()
		<-errCh
	case err := <-errCh:
		cancel()
		if err != nil {
			log.Println("[ERR] Twitch bot error:", err)
			rt.Close()
			os.Exit(1)
		}
	}

	log.Println("[INFO] Twitch bot exited cleanly")
}
