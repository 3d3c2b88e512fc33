package tz

import (
	"os"
	"testing"
	"time"
)

func TestZoneNameDefault(t *testing.T) {
	os.Unsetenv("MCP_TZ_SOFIA")
	if got := ZoneName("sofia"); got != DefaultZone {
		t.Fatalf("expected default zone %q, got %q", DefaultZone, got)
	}
}

func TestZoneNameOverride(t *testing.T) {
	t.Setenv("MCP_TZ_ANISA", "Europe/Paris")
	if got := ZoneName("anisa"); got != "Europe/Paris" {
		t.Fatalf("expected Europe/Paris, got %q", got)
	}
}

func TestParseSlotOffsetAwareHonoredRegardlessOfZone(t *testing.T) {
	moscow, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Fatalf("loading Europe/Moscow: %v", err)
	}
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("loading Europe/Paris: %v", err)
	}

	const iso = "2030-06-01T10:00:00+02:00"

	gotMoscow, err := ParseSlot(moscow, iso)
	if err != nil {
		t.Fatalf("ParseSlot: %v", err)
	}
	gotParis, err := ParseSlot(paris, iso)
	if err != nil {
		t.Fatalf("ParseSlot: %v", err)
	}
	if !gotMoscow.Equal(gotParis) {
		t.Fatalf("offset-aware slot must parse to the same instant regardless of tenant zone")
	}
}

func TestParseSlotZSuffix(t *testing.T) {
	loc, _ := time.LoadLocation("Europe/Moscow")
	got, err := ParseSlot(loc, "2030-06-01T08:00:00Z")
	if err != nil {
		t.Fatalf("ParseSlot: %v", err)
	}
	if got.UTC().Hour() != 8 {
		t.Fatalf("expected 08:00 UTC, got %v", got.UTC())
	}
}

func TestParseSlotNaiveAttachesTenantZone(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Fatalf("loading Europe/Moscow: %v", err)
	}
	got, err := ParseSlot(loc, "2030-06-01 10:00")
	if err != nil {
		t.Fatalf("ParseSlot: %v", err)
	}
	if got.Location().String() != loc.String() {
		t.Fatalf("expected tenant zone %v, got %v", loc, got.Location())
	}
	if got.Hour() != 10 || got.Minute() != 0 {
		t.Fatalf("expected 10:00 local, got %v", got)
	}
}
