// Package tz resolves a tenant name to its IANA timezone and parses CRM slot
// strings, with or without an explicit offset, against it.
package tz

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultZone is used when a tenant has no MCP_TZ_<NAME> override.
const DefaultZone = "Europe/Moscow"

// SlotLayout is the naive (no-offset) slot layout CRM emits for same-day
// local times.
const SlotLayout = "2006-01-02 15:04"

// ZoneName returns the IANA zone name configured for tenant, reading
// MCP_TZ_<UPPER(tenant)> and falling back to DefaultZone.
func ZoneName(tenant string) string {
	key := "MCP_TZ_" + strings.ToUpper(tenant)
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return DefaultZone
}

// Resolve loads the *time.Location for tenant.
func Resolve(tenant string) (*time.Location, error) {
	name := ZoneName(tenant)
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q for tenant %q: %w", name, tenant, err)
	}
	return loc, nil
}

// NowLocal returns the current instant in tenant's timezone.
func NowLocal(tenant string) (time.Time, error) {
	loc, err := Resolve(tenant)
	if err != nil {
		return time.Time{}, err
	}
	return time.Now().In(loc), nil
}

// ParseSlot parses a CRM slot string against loc. If s parses as an
// offset-aware RFC3339-ish instant (including a trailing "Z"), that offset is
// honored as-is. Otherwise s is parsed as a naive "YYYY-MM-DD HH:MM" local
// time and loc is attached. This is the only place the core manufactures a
// timezone for a naive string.
func ParseSlot(loc *time.Location, s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if t, err := parseOffsetAware(trimmed); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(SlotLayout, trimmed, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing slot %q: %w", s, err)
	}
	return t, nil
}

// parseOffsetAware tries the ISO8601 layouts that carry their own offset.
// A naive "YYYY-MM-DD HH:MM" string never matches any of these, so callers
// can use success/failure here to decide which rule applied.
func parseOffsetAware(s string) (time.Time, error) {
	normalized := s
	if strings.HasSuffix(normalized, "Z") {
		normalized = strings.TrimSuffix(normalized, "Z") + "+00:00"
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-07:00", "2006-01-02 15:04:05-07:00", "2006-01-02T15:04-07:00"} {
		if t, err := time.Parse(layout, normalized); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not an offset-aware timestamp")
}
