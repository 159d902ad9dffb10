// Package scores implements the pyramid score queries.
package scores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pyramid-bot/internal/chat"
	"pyramid-bot/internal/command"
	"pyramid-bot/internal/score"
	"pyramid-bot/pkg/cmd"
)

const unknownKind = "%s : Unknown score type, must be one of; success, failed, blocked, stolen"

type ScoreCommand struct {
	Store score.Store
}

func (c *ScoreCommand) Name() string        { return "pyramid-score" }
func (c *ScoreCommand) Aliases() []string   { return []string{"pyramid_score"} }
func (c *ScoreCommand) Description() string { return "Show a pyramid score: <success|failed|blocked|stolen> [-user NAME]" }

func (c *ScoreCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := command.FromInvocation(inv)
	if !ok {
		return nil
	}
	sender := mc.Message.Sender
	a := parseArgs(inv.Args)

	kind, err := score.ParseKind(a.kind)
	if err != nil {
		mc.Replyf(unknownKind, sender)
		return nil
	}

	user := chat.NormalizeUser(a.user)
	if user == "" {
		user = mc.Message.User()
	}

	n, err := c.Store.Score(ctx, user, kind)
	if errors.Is(err, score.ErrNotFound) {
		mc.Replyf("%s : Cannot find user %q in database.", sender, user)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s score of %s: %w", kind, user, err)
	}

	label := kindLabel(kind.String())
	if user != mc.Message.User() {
		mc.Replyf("%s : %s has %s %d pyramids.", sender, user, label, n)
	} else {
		mc.Replyf("%s : You have %s %d pyramids.", sender, label, n)
	}
	return nil
}

type HighScoresCommand struct {
	Store    score.Store
	DefaultN int // table size when -n is absent
}

func (c *HighScoresCommand) Name() string        { return "pyramid-high-scores" }
func (c *HighScoresCommand) Aliases() []string   { return []string{"pyramid_high_scores"} }
func (c *HighScoresCommand) Description() string { return "Show the pyramid leaderboard: <success|failed|blocked|stolen> [-n N]" }

func (c *HighScoresCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := command.FromInvocation(inv)
	if !ok {
		return nil
	}
	sender := mc.Message.Sender
	a := parseArgs(inv.Args)

	kind, err := score.ParseKind(a.kind)
	if err != nil {
		mc.Replyf(unknownKind, sender)
		return nil
	}

	n := a.n
	if n <= 0 {
		n = c.DefaultN
	}
	top, err := c.Store.TopScores(ctx, kind, n)
	if err != nil {
		return fmt.Errorf("read %s high scores: %w", kind, err)
	}

	mc.Replyf("%s : Current high scores for %s pyramids :: %s", sender, kindLabel(kind.String()), FormatTable(top))
	return nil
}

// FormatTable renders "1st: 5 - alice, 2nd: 3 - bob".
func FormatTable(top []score.Entry) string {
	if len(top) == 0 {
		return "nobody yet"
	}
	parts := make([]string, len(top))
	for i, e := range top {
		parts[i] = fmt.Sprintf("%s: %d - %s", chat.Ordinal(i+1), e.Value, e.User)
	}
	return strings.Join(parts, ", ")
}

// Register adds the score commands to reg. defaultN sizes high score tables
// when the caller gives no -n.
func Register(reg *cmd.Registry, store score.Store, defaultN int, mws ...cmd.Middleware) {
	reg.MustRegister(
		cmd.Apply(&ScoreCommand{Store: store}, mws...),
		cmd.Apply(&HighScoresCommand{Store: store, DefaultN: defaultN}, mws...),
	)
}
