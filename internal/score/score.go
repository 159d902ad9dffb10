// Package score persists per-user pyramid statistics.
//
// Two backends implement Store: SQLiteStore (the default) and FileStore, a JSON
// file kept in memory and flushed periodically. Column selection is always driven
// by the closed Kind and Outcome enumerations; no statement text is ever built
// from caller input.
package score

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultTop = 4
	MaxTop     = 25
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrUnknownKind = errors.New("unknown score type")
)

// Kind is a readable score column.
type Kind int

const (
	KindSuccess Kind = iota + 1
	KindFailed
	KindBlocked
	KindStolen
)

// Kinds lists every readable kind in display order.
var Kinds = []Kind{KindSuccess, KindFailed, KindBlocked, KindStolen}

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailed:
		return "failed"
	case KindBlocked:
		return "blocked"
	case KindStolen:
		return "stolen"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k >= KindSuccess && k <= KindStolen
}

// ParseKind resolves a user supplied kind name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success":
		return KindSuccess, nil
	case "failed":
		return KindFailed, nil
	case "blocked":
		return KindBlocked, nil
	case "stolen":
		return KindStolen, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Outcome is a recordable result of a pyramid attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota + 1
	OutcomeFailed
	OutcomeBlocked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	case OutcomeBlocked:
		return "blocked"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Kind returns the counter an outcome increments.
func (o Outcome) Kind() Kind {
	switch o {
	case OutcomeSuccess:
		return KindSuccess
	case OutcomeFailed:
		return KindFailed
	case OutcomeBlocked:
		return KindBlocked
	default:
		return 0
	}
}

// Record is one user's row.
type Record struct {
	User    string `json:"user"`
	Success int    `json:"success"`
	Failed  int    `json:"failed"`
	Blocked int    `json:"blocked"`
	Stolen  int    `json:"stolen"`
	Biggest int    `json:"biggest"`
}

// Value returns the counter selected by k.
func (r Record) Value(k Kind) int {
	switch k {
	case KindSuccess:
		return r.Success
	case KindFailed:
		return r.Failed
	case KindBlocked:
		return r.Blocked
	case KindStolen:
		return r.Stolen
	default:
		return 0
	}
}

// apply increments the counters for one recorded outcome.
func (r *Record) apply(o Outcome, stolen bool, size int) {
	switch o {
	case OutcomeSuccess:
		r.Success++
	case OutcomeFailed:
		r.Failed++
	case OutcomeBlocked:
		r.Blocked++
	}
	if stolen {
		r.Stolen++
	}
	if size > r.Biggest {
		r.Biggest = size
	}
}

// Entry is one line of a high score table.
type Entry struct {
	User  string `json:"user"`
	Value int    `json:"value"`
}

// Store is implemented by every score backend. Implementations must be safe for
// concurrent use; RecordOutcome is atomic per user row.
type Store interface {
	RecordOutcome(ctx context.Context, user string, outcome Outcome, stolen bool, size int) (Record, error)
	Score(ctx context.Context, user string, kind Kind) (int, error)
	Get(ctx context.Context, user string) (Record, error)
	TopScores(ctx context.Context, kind Kind, n int) ([]Entry, error)
	Close() error
}

// NormalizeUser is the row key for a user name.
func NormalizeUser(user string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(user), "@"))
}

// ClampTop bounds a requested table size.
func ClampTop(n int) int {
	if n <= 0 {
		return DefaultTop
	}
	if n > MaxTop {
		return MaxTop
	}
	return n
}

func validateWrite(user string, outcome Outcome, size int) (string, error) {
	key := NormalizeUser(user)
	if key == "" {
		return "", errors.New("empty user")
	}
	if outcome.Kind() == 0 {
		return "", fmt.Errorf("unknown outcome %d", int(outcome))
	}
	if size < 0 {
		return "", fmt.Errorf("negative size %d", size)
	}
	return key, nil
}
