package main

import (
	"log"

	"pyramid-bot/internal/bot"
	"pyramid-bot/internal/command"
	"pyramid-bot/internal/docs"
	"pyramid-bot/pkg/cmd"
)

func main() {
	reg := cmd.NewRegistry()
	bot.DefaultCommands(reg, bot.CommandDeps{})

	if err := docs.UpdateReadme(reg, command.DefaultPrefix, "README.md.tmpl", "README.md"); err != nil {
		log.Fatal(err)
	}
}
