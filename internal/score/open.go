package score

import "fmt"

// Storage drivers accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "json"
)

// Open returns the backend named by driver at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case "", DriverSQLite:
		return OpenSQLite(path)
	case DriverFile:
		return OpenFile(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
