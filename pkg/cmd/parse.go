package cmd

import "strings"

// Parse splits a chat line starting with prefix into an invocation.
// ok is false when the line is not a command.
func Parse(prefix, line string) (inv *Invocation, ok bool) {
	line = strings.TrimSpace(line)
	if prefix == "" || !strings.HasPrefix(line, prefix) {
		return nil, false
	}
	rest := strings.TrimPrefix(line, prefix)
	name, raw, _ := strings.Cut(rest, " ")
	if name == "" || strings.TrimSpace(name) != name {
		return nil, false
	}
	raw = strings.TrimSpace(raw)
	return &Invocation{
		Name: strings.ToLower(name),
		Args: strings.Fields(raw),
		Raw:  raw,
	}, true
}
