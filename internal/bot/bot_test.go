package bot

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"pyramid-bot/internal/chat"
	"pyramid-bot/internal/pyramid"
	"pyramid-bot/internal/score"
	"pyramid-bot/pkg/cmd"
)

type recorder struct {
	intents []chat.Intent
	fail    error
}

func (r *recorder) Emit(_ context.Context, in chat.Intent) error {
	if r.fail != nil {
		return r.fail
	}
	r.intents = append(r.intents, in)
	return nil
}

func newBot(t *testing.T) (*Bot, score.Store) {
	t.Helper()
	store, err := score.OpenSQLite(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	engine := pyramid.NewEngine(store, pyramid.Options{BotName: "OllieBot"})
	reg := cmd.NewRegistry()
	roulette := RouletteFromSeconds(6, 120)
	roulette.Roll = func(int) int { return 1 }
	DefaultCommands(reg, CommandDeps{Store: store, Engine: engine, Roulette: roulette})
	return New(engine, reg, Options{Name: "OllieBot"}), store
}

func TestPyramidThenScoreCommand(t *testing.T) {
	b, _ := newBot(t)
	ctx := context.Background()
	rec := &recorder{}

	for _, text := range []string{"A", "A A", "A A A", "A A", "A"} {
		b.Handle(ctx, rec, chat.Message{Channel: "#c", Sender: "alice", Text: text})
	}
	if len(rec.intents) != 1 || !strings.HasPrefix(rec.intents[0].Content, "OhMyDog Nice pyramid alice") {
		t.Fatalf("intents = %+v", rec.intents)
	}

	intents, err := b.HandleMessage(ctx, chat.Message{Channel: "#c", Sender: "alice", Text: "?pyramid-score success"})
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(intents) != 1 || intents[0].Content != "alice : You have completed 1 pyramids." {
		t.Fatalf("intents = %+v", intents)
	}
}

func TestCommandLineBreaksPyramid(t *testing.T) {
	b, _ := newBot(t)
	ctx := context.Background()
	b.HandleMessage(ctx, chat.Message{Channel: "#c", Sender: "alice", Text: "A"})
	b.HandleMessage(ctx, chat.Message{Channel: "#c", Sender: "alice", Text: "A A"})

	intents, _ := b.HandleMessage(ctx, chat.Message{Channel: "#c", Sender: "bob", Text: "?hello"})
	var kinds []chat.IntentKind
	for _, in := range intents {
		kinds = append(kinds, in.Kind)
	}
	// failure text, timeout, blocked text, then the greeting
	if len(intents) != 4 || kinds[1] != chat.IntentTimeout || !strings.Contains(intents[3].Content, "Herrow bob") {
		t.Fatalf("intents = %+v", intents)
	}
}

func TestLoveReply(t *testing.T) {
	b, _ := newBot(t)
	intents, _ := b.HandleMessage(context.Background(),
		chat.Message{Channel: "#c", Sender: "someone", Text: "Froggen sent love to @olliebot <3"})

	found := false
	for _, in := range intents {
		if in.Content == "!love @Froggen" {
			found = true
		}
	}
	if !found {
		t.Fatalf("love reply missing: %+v", intents)
	}
}

func TestModeCommandIsModeratorOnly(t *testing.T) {
	b, _ := newBot(t)
	ctx := context.Background()

	intents, _ := b.HandleMessage(ctx, chat.Message{Channel: "#c", Sender: "pleb", Text: "?mode thief"})
	if len(intents) != 0 || b.Engine().Modes("#c").Enabled(pyramid.ModeThief) {
		t.Fatalf("non-moderator changed a mode")
	}

	intents, _ = b.HandleMessage(ctx, chat.Message{Channel: "#c", Sender: "mod", Text: "?mode thief", Moderator: true})
	if len(intents) != 1 || !b.Engine().Modes("#c").Enabled(pyramid.ModeThief) {
		t.Fatalf("moderator could not change a mode: %+v", intents)
	}
	if b.Engine().Modes("#other").Enabled(pyramid.ModeThief) {
		t.Fatalf("mode leaked to another channel")
	}
}

func TestRouletteSurvivesWithInjectedRoll(t *testing.T) {
	b, _ := newBot(t)
	intents, _ := b.HandleMessage(context.Background(), chat.Message{Channel: "#c", Sender: "x", Text: "?roulette"})
	if len(intents) != 1 || !strings.Contains(intents[0].Content, "survives") {
		t.Fatalf("intents = %+v", intents)
	}
}

func TestHandleLogsEmitFailure(t *testing.T) {
	b, _ := newBot(t)
	rec := &recorder{fail: errors.New("offline")}
	b.Handle(context.Background(), rec, chat.Message{Channel: "#c", Sender: "x", Text: "?hello"})
	if len(rec.intents) != 0 {
		t.Fatalf("nothing should be recorded on failure")
	}
}
