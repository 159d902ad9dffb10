// Package version holds build identity, overridden with -ldflags "-X".
package version

import "fmt"

var (
	AppName   = "pyramid-bot"
	Version   = "dev"
	GoVersion = "unknown"
	BuildDate = "unknown"
)

// String is the one-line build summary logged at startup.
func String() string {
	return fmt.Sprintf("%s %s (built %s, %s)", AppName, Version, BuildDate, GoVersion)
}
