// Package tuning loads gameplay knobs from a YAML file.
package tuning

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"pyramid-bot/internal/pyramid"
	"pyramid-bot/internal/score"
)

type Tuning struct {
	BotName string `yaml:"bot_name"`

	Modes                  Modes `yaml:"modes"`
	FailedTimeoutSeconds   int   `yaml:"failed_timeout_seconds"`
	HighScoresDefault      int   `yaml:"high_scores_default"`
	RouletteChambers       int   `yaml:"roulette_chambers"`
	RouletteTimeoutSeconds int   `yaml:"roulette_timeout_seconds"`
	SpamRepeats            int   `yaml:"spam_repeats"`
	QueueSize              int   `yaml:"queue_size"`

	// Twitch badges that make a sender privileged or a moderator.
	PrivilegedBadges []string `yaml:"privileged_badges"`
	ModeratorBadges  []string `yaml:"moderator_badges"`

	Retry Retry `yaml:"retry"`
}

type Modes struct {
	Thief   bool `yaml:"thief"`
	Destroy bool `yaml:"destroy"`
	Timeout bool `yaml:"timeout"`
}

type Retry struct {
	Attempts int `yaml:"attempts"`
}

// Default returns the built-in settings.
func Default() Tuning {
	return Tuning{
		BotName:                "OllieDoggoBot",
		Modes:                  Modes{Timeout: true},
		FailedTimeoutSeconds:   600,
		HighScoresDefault:      score.DefaultTop,
		RouletteChambers:       6,
		RouletteTimeoutSeconds: 120,
		SpamRepeats:            10,
		QueueSize:              64,
		PrivilegedBadges:       []string{"moderator", "vip"},
		ModeratorBadges:        []string{"moderator", "broadcaster"},
		Retry:                  Retry{Attempts: 3},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("[INFO] No tuning file at %s, using defaults", path)
		return t, nil
	}
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Validate rejects values no component can run with.
func (t Tuning) Validate() error {
	var errs []error
	if t.FailedTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("failed_timeout_seconds must be positive"))
	}
	if t.HighScoresDefault <= 0 || t.HighScoresDefault > score.MaxTop {
		errs = append(errs, fmt.Errorf("high_scores_default must be within 1..%d", score.MaxTop))
	}
	if t.RouletteChambers < 1 {
		errs = append(errs, errors.New("roulette_chambers must be at least 1"))
	}
	if t.QueueSize < 1 {
		errs = append(errs, errors.New("queue_size must be at least 1"))
	}
	if t.Retry.Attempts < 1 {
		errs = append(errs, errors.New("retry.attempts must be at least 1"))
	}
	return errors.Join(errs...)
}

// ModeDefaults converts the mode section for pyramid.NewEngine.
func (t Tuning) ModeDefaults() map[pyramid.Mode]bool {
	return map[pyramid.Mode]bool{
		pyramid.ModeThief:   t.Modes.Thief,
		pyramid.ModeDestroy: t.Modes.Destroy,
		pyramid.ModeTimeout: t.Modes.Timeout,
	}
}

// FailedTimeout is the timeout given to failed builders.
func (t Tuning) FailedTimeout() time.Duration {
	return time.Duration(t.FailedTimeoutSeconds) * time.Second
}
