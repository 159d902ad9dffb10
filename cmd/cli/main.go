// Command cli runs the score commands against the configured store, e.g.
//
//	cli pyramid-high-scores success -n 5
//	cli pyramid-score failed -user alice
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"pyramid-bot/internal/app"
	"pyramid-bot/internal/chat"
	"pyramid-bot/internal/config"
	"pyramid-bot/pkg/cmd"
)

func main() {
	cfg := config.New()
	rt, err := app.Build(cfg, "")
	if err != nil {
		log.Fatal(err)
	}
	defer rt.Close()

	router := rt.Bot.Router()
	if len(os.Args) < 2 {
		usage(router.Registry().GetAll())
		return
	}

	msg := chat.Message{
		Sender: "cli",
		Text:   router.Prefix() + strings.Join(os.Args[1:], " "),
	}
	intents, handled, err := router.Handle(context.Background(), msg)
	if !handled {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage(router.Registry().GetAll())
		os.Exit(2)
	}
	for _, in := range intents {
		if in.Kind == chat.IntentSendText {
			fmt.Println(in.Content)
		}
	}
	if err != nil {
		log.Fatalf("[ERR] %v", err)
	}
}

func usage(cmds []cmd.Command) {
	fmt.Fprintln(os.Stderr, "usage: cli <command> [args]")
	for _, c := range cmds {
		fmt.Fprintf(os.Stderr, "  %-22s %s\n", c.Name(), c.Description())
	}
}
