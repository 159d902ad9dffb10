package twitch

import (
	"errors"
	"strings"
)

// Line is one IRC message with IRCv3 tags.
type Line struct {
	Tags    map[string]string
	Prefix  string
	Command string
	Params  []string
}

var errEmptyLine = errors.New("empty IRC line")

// ParseLine parses a single IRC line without its trailing CRLF.
func ParseLine(raw string) (Line, error) {
	var l Line
	s := strings.TrimRight(raw, "\r\n")
	if s == "" {
		return l, errEmptyLine
	}

	if strings.HasPrefix(s, "@") {
		tags, rest, _ := strings.Cut(s[1:], " ")
		l.Tags = parseTags(tags)
		s = strings.TrimLeft(rest, " ")
	}
	if strings.HasPrefix(s, ":") {
		prefix, rest, _ := strings.Cut(s[1:], " ")
		l.Prefix = prefix
		s = strings.TrimLeft(rest, " ")
	}

	for s != "" {
		if strings.HasPrefix(s, ":") {
			l.Params = append(l.Params, s[1:])
			break
		}
		word, rest, _ := strings.Cut(s, " ")
		if l.Command == "" {
			l.Command = strings.ToUpper(word)
		} else {
			l.Params = append(l.Params, word)
		}
		s = strings.TrimLeft(rest, " ")
	}
	if l.Command == "" {
		return l, errors.New("IRC line without command")
	}
	return l, nil
}

// Nick is the nickname part of the prefix.
func (l Line) Nick() string {
	nick, _, _ := strings.Cut(l.Prefix, "!")
	return nick
}

// Param returns the i-th parameter or "".
func (l Line) Param(i int) string {
	if i < 0 || i >= len(l.Params) {
		return ""
	}
	return l.Params[i]
}

// Trailing is the last parameter, the message text of a PRIVMSG.
func (l Line) Trailing() string {
	return l.Param(len(l.Params) - 1)
}

func parseTags(s string) map[string]string {
	tags := make(map[string]string)
	for _, kv := range strings.Split(s, ";") {
		if kv == "" {
			continue
		}
		k, v, _ := strings.Cut(kv, "=")
		tags[k] = unescapeTag(v)
	}
	return tags
}

var tagUnescaper = strings.NewReplacer(`\:`, ";", `\s`, " ", `\\`, `\`, `\r`, "\r", `\n`, "\n")

func unescapeTag(v string) string {
	if !strings.Contains(v, `\`) {
		return v
	}
	return tagUnescaper.Replace(v)
}

// badges parses "moderator/1,subscriber/12" into its badge names.
func badges(tag string) []string {
	if tag == "" {
		return nil
	}
	var out []string
	for _, b := range strings.Split(tag, ",") {
		name, _, _ := strings.Cut(b, "/")
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}
