package scores

import (
	"strconv"
	"strings"
)

type args struct {
	kind string
	user string
	n    int
}

// parseArgs reads "<kind> [-user NAME] [-n N]" in any order. Unknown flags
// and extra words are ignored.
func parseArgs(words []string) args {
	var a args
	for i := 0; i < len(words); i++ {
		w := words[i]
		switch strings.ToLower(strings.TrimLeft(w, "-")) {
		case "user", "u":
			if strings.HasPrefix(w, "-") && i+1 < len(words) {
				i++
				a.user = words[i]
				continue
			}
		case "n", "top":
			if strings.HasPrefix(w, "-") && i+1 < len(words) {
				i++
				a.n, _ = strconv.Atoi(words[i])
				continue
			}
		}
		if strings.HasPrefix(w, "-") {
			continue
		}
		if a.kind == "" {
			a.kind = w
		}
	}
	return a
}

// kindLabel is the verb used in replies: "completed" for successes.
func kindLabel(kind string) string {
	if kind == "success" {
		return "completed"
	}
	return kind
}
