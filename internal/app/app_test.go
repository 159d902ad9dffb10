package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pyramid-bot/internal/chat"
	"pyramid-bot/internal/config"
	"pyramid-bot/internal/score"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		StorageDriver: driver,
		StoragePath:   filepath.Join(dir, "scores"),
		TuningPath:    filepath.Join(dir, "missing.yaml"),
		CommandPrefix: "?",
	}
}

func TestBuildRunsPyramidsAndCommands(t *testing.T) {
	for _, driver := range []string{score.DriverSQLite, score.DriverFile} {
		t.Run(driver, func(t *testing.T) {
			rt, err := Build(testConfig(t, driver), "")
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			defer rt.Close()

			if rt.Tuning.BotName != "OllieDoggoBot" {
				t.Fatalf("default tuning not applied: %q", rt.Tuning.BotName)
			}

			ctx := context.Background()
			for _, text := range []string{"A", "A A", "A A A", "A A", "A"} {
				rt.Bot.HandleMessage(ctx, chat.Message{Channel: "#c", Sender: "alice", Text: text})
			}
			intents, err := rt.Bot.HandleMessage(ctx, chat.Message{Channel: "#c", Sender: "bob", Text: "?pyramid-score success -user @Alice"})
			if err != nil {
				t.Fatalf("HandleMessage: %v", err)
			}
			if len(intents) != 1 || !strings.Contains(intents[0].Content, "alice has completed 1") {
				t.Fatalf("intents = %+v", intents)
			}
		})
	}
}

func TestBuildUsesTuningFile(t *testing.T) {
	cfg := testConfig(t, score.DriverSQLite)
	yaml := "bot_name: Tester\nmodes:\n  timeout: false\n"
	if err := os.WriteFile(cfg.TuningPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	rt, err := Build(cfg, "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer rt.Close()

	if rt.Tuning.BotName != "Tester" {
		t.Fatalf("BotName = %q", rt.Tuning.BotName)
	}
	if rt.Engine.Modes("#c").GetMode("timeout") {
		t.Fatalf("timeout mode should follow tuning")
	}

	rt2, err := Build(testConfig(t, score.DriverSQLite), "hostnick")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer rt2.Close()
	if rt2.Tuning.BotName != "hostnick" {
		t.Fatalf("host name override ignored: %q", rt2.Tuning.BotName)
	}
}

func TestBuildRejectsUnknownDriver(t *testing.T) {
	if _, err := Build(testConfig(t, "mongo"), ""); err == nil {
		t.Fatalf("expected error")
	}
}
