package tuning

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"pyramid-bot/internal/pyramid"
)

func TestMissingFileUsesDefaults(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.FailedTimeout() != 600*time.Second || got.RouletteChambers != 6 || !got.Modes.Timeout {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := `
bot_name: SomeBot
modes:
  thief: true
  timeout: false
failed_timeout_seconds: 30
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.BotName != "SomeBot" || got.FailedTimeout() != 30*time.Second {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.SpamRepeats != 10 {
		t.Fatalf("untouched keys should keep defaults: %+v", got)
	}

	modes := got.ModeDefaults()
	if !modes[pyramid.ModeThief] || modes[pyramid.ModeTimeout] || modes[pyramid.ModeDestroy] {
		t.Fatalf("ModeDefaults = %v", modes)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	os.WriteFile(path, []byte("failed_timeout_seconds: 0\nqueue_size: 0\n"), 0644)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "failed_timeout_seconds") || !strings.Contains(err.Error(), "queue_size") {
		t.Fatalf("Load = %v", err)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	os.WriteFile(path, []byte("modes: [not, a, map]\n"), 0644)

	if _, err := Load(path); err == nil {
		t.Fatalf("expected a YAML error")
	}
}

func TestDefaultPrivilegedBadges(t *testing.T) {
	d := Default()
	if !slices.Equal(d.PrivilegedBadges, []string{"moderator", "vip"}) {
		t.Fatalf("PrivilegedBadges = %v", d.PrivilegedBadges)
	}
	if !slices.Contains(d.ModeratorBadges, "broadcaster") {
		t.Fatalf("broadcaster should still run moderator commands: %v", d.ModeratorBadges)
	}
}
