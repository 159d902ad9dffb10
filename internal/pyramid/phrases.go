package pyramid

import (
	"fmt"

	"pyramid-bot/internal/chat"
)

// count renders " Thats your 3rd <what>" or nothing when the total is unknown.
func count(n int, what string) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf(" Thats your %s %s", chat.Ordinal(n), what)
}

func destroyText(sender string) string {
	return fmt.Sprintf("No %s :)", sender)
}

func voidText(sender string) string {
	return fmt.Sprintf("That doesn't count %s Weirdge", sender)
}

func successText(sender string, total int, stolenFrom string) string {
	s := fmt.Sprintf("OhMyDog Nice pyramid %s POGGERS%s", sender, count(total, "successful pyramid Radge"))
	if stolenFrom != "" {
		s += fmt.Sprintf(" You stole it from %s PepeLaugh", stolenFrom)
	}
	return s
}

func failedText(failer string, total int, timeout, byBot bool) string {
	tail := count(total, "failed pyramid WeirdChamping")
	switch {
	case timeout && byBot:
		return fmt.Sprintf("Get absolutely destroyed %s EZ Clap%s See you in 10 peepoHey", failer, tail)
	case timeout:
		return fmt.Sprintf("You tried %s, you failed :)%s See you in 10 peepoHey", failer, tail)
	default:
		return fmt.Sprintf("Absolute failure %s PogO%s", failer, tail)
	}
}

func blockedText(blocker string, total int) string {
	return fmt.Sprintf("Nice block %s BASED%s", blocker, count(total, "blocked pyramid YEP"))
}
