package modes

import (
	"context"
	"testing"

	"pyramid-bot/internal/chat"
	"pyramid-bot/internal/command"
	"pyramid-bot/internal/pyramid"
	"pyramid-bot/pkg/cmd"
)

func setup() (*command.Router, map[string]*pyramid.Modes) {
	channels := map[string]*pyramid.Modes{}
	src := func(ch string) pyramid.ModeSetter {
		m, ok := channels[ch]
		if !ok {
			m = pyramid.NewModes(nil)
			channels[ch] = m
		}
		return m
	}
	reg := cmd.NewRegistry()
	Register(reg, src)
	return command.NewRouter("?", reg), channels
}

func reply(t *testing.T, r *command.Router, line string) string {
	t.Helper()
	intents, handled, err := r.Handle(context.Background(), chat.Message{Channel: "#c", Sender: "mod", Text: line, Moderator: true})
	if err != nil || !handled || len(intents) != 1 {
		t.Fatalf("Handle(%q): %v %v %+v", line, handled, err, intents)
	}
	return intents[0].Content
}

func TestToggleAndSet(t *testing.T) {
	r, channels := setup()

	if got := reply(t, r, "?mode theif"); got != "mod: theif mode was enabled" {
		t.Fatalf("got %q", got)
	}
	if !channels["#c"].Enabled(pyramid.ModeThief) {
		t.Fatalf("thief not enabled")
	}
	if got := reply(t, r, "?mode timeout off"); got != "mod: timeout mode was disabled" {
		t.Fatalf("got %q", got)
	}
	if got := reply(t, r, "?mode timeout off"); got != "mod: timeout mode was disabled" {
		t.Fatalf("explicit set should be idempotent: %q", got)
	}
}

func TestUnknownMode(t *testing.T) {
	r, _ := setup()
	if got := reply(t, r, "?mode echo"); got != "mod: echo mode is not recognised" {
		t.Fatalf("got %q", got)
	}
	if got := reply(t, r, "?mode thief maybe"); got != `mod: expected on or off, got "maybe"` {
		t.Fatalf("got %q", got)
	}
}

func TestListModes(t *testing.T) {
	r, _ := setup()
	if got := reply(t, r, "?mode"); got != "mod: modes :: destroy off, thief off, timeout on" {
		t.Fatalf("got %q", got)
	}
}
