package command

import (
	"context"
	"errors"
	"testing"

	"pyramid-bot/internal/chat"
	"pyramid-bot/pkg/cmd"
)

type echoCommand struct{ fail bool }

func (c *echoCommand) Name() string        { return "echo" }
func (c *echoCommand) Aliases() []string   { return []string{"say"} }
func (c *echoCommand) Description() string { return "echo" }
func (c *echoCommand) Run(_ context.Context, inv *cmd.Invocation) error {
	mc, _ := FromInvocation(inv)
	mc.Reply(inv.Raw)
	if c.fail {
		return errors.New("nope")
	}
	return nil
}

func TestRouterHandle(t *testing.T) {
	reg := cmd.NewRegistry()
	reg.MustRegister(&echoCommand{})
	r := NewRouter("", reg)

	msg := chat.Message{Channel: "#c", Sender: "alice", Text: "?SAY hi there"}
	intents, handled, err := r.Handle(context.Background(), msg)
	if err != nil || !handled {
		t.Fatalf("Handle: handled=%v err=%v", handled, err)
	}
	if len(intents) != 1 || intents[0].Content != "hi there" || intents[0].Channel != "#c" {
		t.Fatalf("intents = %+v", intents)
	}

	for _, text := range []string{"hi", "?unknown", ""} {
		msg.Text = text
		if _, handled, _ := r.Handle(context.Background(), msg); handled {
			t.Fatalf("%q should not be handled", text)
		}
	}
}

func TestRouterKeepsIntentsOnError(t *testing.T) {
	reg := cmd.NewRegistry()
	reg.MustRegister(&echoCommand{fail: true})
	r := NewRouter("!", reg)

	intents, handled, err := r.Handle(context.Background(), chat.Message{Channel: "#c", Text: "!echo x"})
	if !handled || err == nil {
		t.Fatalf("expected handled error, got handled=%v err=%v", handled, err)
	}
	if len(intents) != 1 {
		t.Fatalf("intents = %+v", intents)
	}
}

func TestMessageContextTimeout(t *testing.T) {
	mc := NewMessageContext(chat.Message{Channel: "#c"})
	mc.Timeout("bob", 5, "test")
	mc.Replyf("%d", 3)

	got := mc.Intents()
	if len(got) != 2 || got[0].Kind != chat.IntentTimeout || got[0].User != "bob" || got[1].Content != "3" {
		t.Fatalf("intents = %+v", got)
	}
}
