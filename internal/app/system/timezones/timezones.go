// Package timezones resolves the configured reporting time zone. Week labels
// are computed in this zone, so a report submitted late on the last evening
// of a month is labelled by the school's calendar rather than the server's.
package timezones

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zone database for hosts without /usr/share/zoneinfo
)

// Default is used when no zone is configured.
const Default = "UTC"

type Zone struct {
	ID    string
	Label string
}

// common zones get friendly labels; any IANA name is still accepted.
var common = []Zone{
	{"UTC", "Coordinated Universal Time"},
	{"America/New_York", "Eastern Time (US)"},
	{"America/Chicago", "Central Time (US)"},
	{"America/Denver", "Mountain Time (US)"},
	{"America/Phoenix", "Arizona"},
	{"America/Los_Angeles", "Pacific Time (US)"},
	{"America/Anchorage", "Alaska"},
	{"Pacific/Honolulu", "Hawaii"},
	{"Europe/London", "London"},
	{"Africa/Nairobi", "East Africa Time"},
	{"Asia/Kolkata", "India Standard Time"},
	{"Australia/Sydney", "Sydney"},
}

// All returns the zones that carry a friendly label.
func All() []Zone {
	out := make([]Zone, len(common))
	copy(out, common)
	return out
}

// Label returns the friendly label for id, or id itself.
func Label(id string) string {
	for _, z := range common {
		if z.ID == id {
			return z.Label
		}
	}
	return id
}

// Resolve loads the location for id. An empty id means Default.
func Resolve(id string) (*time.Location, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = Default
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", id, err)
	}
	return loc, nil
}

// Valid reports whether id names a loadable zone.
func Valid(id string) bool {
	_, err := Resolve(id)
	return err == nil
}
