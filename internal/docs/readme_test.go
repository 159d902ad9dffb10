package docs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pyramid-bot/pkg/cmd"
)

type stubCommand struct {
	name    string
	aliases []string
}

func (s stubCommand) Name() string        { return s.name }
func (s stubCommand) Aliases() []string   { return s.aliases }
func (s stubCommand) Description() string { return "does " + s.name }
func (s stubCommand) Run(context.Context, *cmd.Invocation) error {
	return nil
}

func TestUpdateReadme(t *testing.T) {
	reg := cmd.NewRegistry()
	reg.MustRegister(
		stubCommand{name: "pyramid-score", aliases: []string{"pyramid_score"}},
		stubCommand{name: "hello"},
	)

	dir := t.TempDir()
	tmpl := filepath.Join(dir, "README.md.tmpl")
	out := filepath.Join(dir, "README.md")
	if err := os.WriteFile(tmpl, []byte("# Bot\n\n{{.CommandSections}}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := UpdateReadme(reg, "?", tmpl, out); err != nil {
		t.Fatalf("UpdateReadme: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "# Bot\n\n- **?hello** - does hello\n- **?pyramid-score (?pyramid_score)** - does pyramid-score\n"
	if string(got) != want {
		t.Fatalf("README =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderBadTemplate(t *testing.T) {
	var sb strings.Builder
	if err := Render(&sb, "{{.Missing", cmd.NewRegistry(), "?"); err == nil {
		t.Fatalf("expected parse error")
	}
}
