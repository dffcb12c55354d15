package alerts

import (
	"sync"
	"time"
)

var zoneCache sync.Map // map[string]*time.Location

// resolveZone loads an IANA zone, returning fallback for empty or unknown names.
func resolveZone(name string, fallback *time.Location) *time.Location {
	if fallback == nil {
		fallback = time.UTC
	}
	if name == "" {
		return fallback
	}
	if loc, ok := zoneCache.Load(name); ok {
		return loc.(*time.Location)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	zoneCache.Store(name, loc)
	return loc
}
