// Package pyramid detects chat pyramids: one token repeated 1, 2, ... n, ... 2, 1
// times over consecutive messages of a channel.
package pyramid

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pyramid-bot/internal/chat"
	"pyramid-bot/internal/score"
)

const (
	// MinHeight is the smallest peak that completes a pyramid.
	MinHeight = 3
	// DefaultTimeout is the cooldown requested for failed builders.
	DefaultTimeout = 600 * time.Second
)

// Classification describes what a message did to the channel's attempt.
type Classification int

const (
	Continuing Classification = iota + 1 // valid step, attempt still open
	Success                              // completed pyramid, credited to the sender
	Voided                               // completed at minimum height by a privileged user
	Failed                               // broken or stolen attempt, charged to the last sender
	Blocked                              // sender interrupted someone else's attempt
	Reset                                // invalid step, tracking restarts at this message
)

func (c Classification) String() string {
	switch c {
	case Continuing:
		return "continuing"
	case Success:
		return "success"
	case Voided:
		return "voided"
	case Failed:
		return "failed"
	case Blocked:
		return "blocked"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("classification(%d)", int(c))
	}
}

// Result is the outcome of processing one message.
type Result struct {
	Classifications []Classification
	Intents         []chat.Intent
	Stolen          bool
	State           State // state after the transition
}

// Has reports whether c is among the classifications.
func (r Result) Has(c Classification) bool {
	for _, x := range r.Classifications {
		if x == c {
			return true
		}
	}
	return false
}

func (r *Result) classify(c Classification) {
	r.Classifications = append(r.Classifications, c)
}

// Settings tunes an Evaluator.
type Settings struct {
	Timeout time.Duration // timeout intent duration, DefaultTimeout when zero
	BotName string        // own account; its completions are not announced and its breaks are gloated over
}

// Evaluator runs the pyramid state machine and records outcomes in a score store.
type Evaluator struct {
	store    score.Store
	settings Settings
}

// NewEvaluator returns an Evaluator writing to store.
func NewEvaluator(store score.Store, settings Settings) *Evaluator {
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}
	return &Evaluator{store: store, settings: settings}
}

// Evaluate applies msg to st. The caller must not run two Evaluate calls for the
// same State concurrently. The transition is always applied; a non-nil error
// only reports score writes that failed.
func (e *Evaluator) Evaluate(ctx context.Context, st *State, modes *Modes, msg chat.Message) (Result, error) {
	var (
		res    Result
		errs   []error
		stolen bool
	)

	sender := msg.User()
	display := strings.TrimSpace(msg.Sender)
	if display == "" {
		display = sender
	}
	say := func(text string) {
		res.Intents = append(res.Intents, chat.SendText(msg.Channel, text))
	}
	record := func(user string, o score.Outcome, stolen bool, size int) int {
		rec, err := e.store.RecordOutcome(ctx, user, o, stolen, size)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %s for %s: %w", o, user, err))
			return 0
		}
		return rec.Value(o.Kind())
	}

	byBot := e.settings.BotName != "" && sender == chat.NormalizeUser(e.settings.BotName)

	tokens := strings.Fields(msg.Text)
	level := len(tokens)
	valid := level > 0 && allEqual(tokens, st.Emote) &&
		(level == st.Progress+1 || level == st.Progress-1)

	if valid {
		descending := level == st.Progress-1
		st.Progress = level
		if level > st.MaxHeight {
			st.MaxHeight = level
		}

		if modes.Enabled(ModeDestroy) && !descending && level == 3 {
			say(destroyText(display))
		}
		if modes.Enabled(ModeThief) && descending && level == 2 {
			say(st.Emote)
		}

		if descending && level == 1 && st.MaxHeight >= MinHeight {
			stolen = sender != st.LastSender
			if st.MaxHeight == MinHeight && !stolen && msg.Privileged {
				res.classify(Voided)
				say(voidText(display))
			} else {
				total := record(sender, score.OutcomeSuccess, stolen, st.MaxHeight)
				res.classify(Success)
				from := ""
				if stolen {
					from = st.LastSender
				}
				if !byBot {
					say(successText(display, total, from))
				}
			}
		} else {
			res.classify(Continuing)
		}
	}

	if (!valid && st.Progress >= 2) || stolen {
		failer := st.LastSender
		total := record(failer, score.OutcomeFailed, false, 0)
		res.classify(Failed)

		timeout := modes.Enabled(ModeTimeout)
		say(failedText(failer, total, timeout, byBot))
		if timeout {
			res.Intents = append(res.Intents,
				chat.Timeout(msg.Channel, failer, e.settings.Timeout, "failed pyramid"))
		}

		if !stolen && sender != failer {
			total := record(sender, score.OutcomeBlocked, false, 0)
			res.classify(Blocked)
			say(blockedText(display, total))
		}
	}

	if !valid {
		if level > 0 {
			st.Emote, st.Progress, st.MaxHeight = tokens[0], 1, 1
		} else {
			st.Emote, st.Progress, st.MaxHeight = "", 0, 0
		}
		res.classify(Reset)
	}

	st.LastSender = sender

	res.Stolen = stolen
	res.State = *st
	return res, errors.Join(errs...)
}

func allEqual(tokens []string, emote string) bool {
	if emote == "" {
		return false
	}
	for _, t := range tokens {
		if t != emote {
			return false
		}
	}
	return true
}
