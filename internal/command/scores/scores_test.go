package scores

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"pyramid-bot/internal/chat"
	"pyramid-bot/internal/command"
	"pyramid-bot/internal/score"
	"pyramid-bot/pkg/cmd"
)

func seededStore(t *testing.T) score.Store {
	t.Helper()
	s, err := score.OpenSQLite(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	for _, seed := range []struct {
		user string
		n    int
	}{{"alice", 3}, {"bob", 1}} {
		for i := 0; i < seed.n; i++ {
			if _, err := s.RecordOutcome(ctx, seed.user, score.OutcomeSuccess, false, 3); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
	}
	return s
}

func run(t *testing.T, store score.Store, sender, line string) []string {
	t.Helper()
	reg := cmd.NewRegistry()
	Register(reg, store, 0)
	r := command.NewRouter("?", reg)

	intents, handled, err := r.Handle(context.Background(), chat.Message{Channel: "#c", Sender: sender, Text: line})
	if err != nil || !handled {
		t.Fatalf("Handle(%q): handled=%v err=%v", line, handled, err)
	}
	var out []string
	for _, in := range intents {
		out = append(out, in.Content)
	}
	return out
}

func TestScoreSelf(t *testing.T) {
	got := run(t, seededStore(t), "Alice", "?pyramid-score success")
	if len(got) != 1 || got[0] != "Alice : You have completed 3 pyramids." {
		t.Fatalf("got %q", got)
	}
}

func TestScoreOtherUser(t *testing.T) {
	got := run(t, seededStore(t), "carol", "?pyramid_score -user @Bob success")
	if len(got) != 1 || got[0] != "carol : bob has completed 1 pyramids." {
		t.Fatalf("got %q", got)
	}
}

func TestScoreUnknownUser(t *testing.T) {
	got := run(t, seededStore(t), "carol", "?pyramid-score failed -user nobody")
	if len(got) != 1 || got[0] != `carol : Cannot find user "nobody" in database.` {
		t.Fatalf("got %q", got)
	}
}

func TestScoreUnknownKind(t *testing.T) {
	for _, line := range []string{"?pyramid-score bogus", "?pyramid-score", "?pyramid-high-scores wins"} {
		got := run(t, seededStore(t), "carol", line)
		if len(got) != 1 || !strings.Contains(got[0], "Unknown score type") {
			t.Fatalf("%q: got %q", line, got)
		}
	}
}

func TestHighScores(t *testing.T) {
	got := run(t, seededStore(t), "carol", "?pyramid-high-scores success")
	want := "carol : Current high scores for completed pyramids :: 1st: 3 - alice, 2nd: 1 - bob"
	if len(got) != 1 || got[0] != want {
		t.Fatalf("got %q", got)
	}

	got = run(t, seededStore(t), "carol", "?pyramid-high-scores success -n 1")
	if !strings.HasSuffix(got[0], ":: 1st: 3 - alice") {
		t.Fatalf("limit not applied: %q", got)
	}

	got = run(t, seededStore(t), "carol", "?pyramid-high-scores blocked -n 1")
	if !strings.HasSuffix(got[0], "blocked pyramids :: 1st: 0 - alice") {
		t.Fatalf("zero rows still rank: %q", got)
	}
}

func TestParseArgs(t *testing.T) {
	a := parseArgs([]string{"-n", "7", "stolen", "-user", "X", "extra"})
	if a.kind != "stolen" || a.user != "X" || a.n != 7 {
		t.Fatalf("parseArgs = %+v", a)
	}
	if a := parseArgs([]string{"failed", "-user"}); a.kind != "failed" || a.user != "" {
		t.Fatalf("dangling flag: %+v", a)
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if FormatTable(nil) != "nobody yet" {
		t.Fatalf("FormatTable(nil) = %q", FormatTable(nil))
	}
}
