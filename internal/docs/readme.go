// Package docs renders the chat command reference into README.md.
package docs

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/template"

	"pyramid-bot/pkg/cmd"
)

// CommandList renders one markdown bullet per command, sorted by name.
func CommandList(registry *cmd.Registry, prefix string) string {
	var buf bytes.Buffer
	for _, c := range registry.GetAll() {
		name := prefix + c.Name()
		if aliases := c.Aliases(); len(aliases) > 0 {
			name += " (" + prefix + strings.Join(aliases, ", "+prefix) + ")"
		}
		fmt.Fprintf(&buf, "- **%s** - %s\n", name, c.Description())
	}
	return buf.String()
}

// Render executes tmpl with the command list as .CommandSections.
func Render(w io.Writer, tmpl string, registry *cmd.Registry, prefix string) error {
	t, err := template.New("readme").Parse(tmpl)
	if err != nil {
		return err
	}
	data := struct {
		CommandSections string
	}{
		CommandSections: CommandList(registry, prefix),
	}
	return t.Execute(w, data)
}

// UpdateReadme regenerates outPath from the template at tmplPath.
func UpdateReadme(registry *cmd.Registry, prefix, tmplPath, outPath string) error {
	raw, err := os.ReadFile(tmplPath)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := Render(&out, string(raw), registry, prefix); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, out.Bytes(), 0o644); err != nil {
		return err
	}

	log.Println("[INFO] README.md updated with current commands")
	return nil
}
