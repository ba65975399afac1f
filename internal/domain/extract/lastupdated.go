package extract

import (
	"fmt"
	"regexp"
	"time"
)

var lastUpdatedPattern = regexp.MustCompile(`Rewards \(Last Updated: ([\d-]+ \d+:\d+[AP]M) (\w+)\)`)

// lastUpdatedLayout accepts both padded and unpadded month and day.
const lastUpdatedLayout = "2006-1-2 3:04PM"

// zoneOffsets lists the abbreviations the site is known to print. Unknown
// abbreviations keep their name with a zero offset.
var zoneOffsets = map[string]int{
	"UTC": 0,
	"GMT": 0,
	"PST": -8 * 3600,
	"PDT": -7 * 3600,
	"MST": -7 * 3600,
	"MDT": -6 * 3600,
	"CST": -6 * 3600,
	"CDT": -5 * 3600,
	"EST": -5 * 3600,
	"EDT": -4 * 3600,
}

// LastUpdated finds the "Rewards (Last Updated: <date> <time> <zone>)" marker
// in script and returns the time it names.
func LastUpdated(script string) (time.Time, error) {
	m := lastUpdatedPattern.FindStringSubmatch(script)
	if m == nil {
		return time.Time{}, ErrLastUpdatedNotFound
	}

	loc := time.FixedZone(m[2], zoneOffsets[m[2]])
	t, err := time.ParseInLocation(lastUpdatedLayout, m[1], loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last updated %q: %w", m[1], err)
	}
	return t, nil
}
