package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pyramid-bot/internal/app"
	"pyramid-bot/internal/config"
	"pyramid-bot/internal/discord"
	v "pyramid-bot/internal/version"
)

func main() {
	log.Printf("[INFO] Starting %v Discord bot...", v.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.New()
	if err := cfg.RequireDiscord(); err != nil {
		log.Fatalf("[ERR] %v", err)
	}

	rt, err := app.Build(cfg, "")
	if err != nil {
		log.Fatal(err)
	}
	defer rt.Close()

	rt.ServeHTTP(ctx)

	bot := discord.NewBot(cfg.DiscordToken, rt.Bot, rt.Tuning.QueueSize)

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
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
			log.Println("[ERR] Discord bot error:", err)
			rt.Close()
			os.Exit(1)
		}
	}

	log.Println("[INFO] Discord bot exited cleanly")
}
