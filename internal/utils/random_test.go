package utils

import (
	"strings"
	"testing"
)

func TestUsernameFromName(t *testing.T) {
	u := UsernameFromName("Sarah Evans")
	if !strings.HasPrefix(u, "sarah.evans") {
		t.Fatalf("western username = %q", u)
	}

	u = UsernameFromName("王伟")
	if !strings.HasPrefix(u, "wangwei") {
		t.Fatalf("romanized username = %q", u)
	}
}

func TestRandomSubsetNonEmpty(t *testing.T) {
	ids := []int64{1, 2, 3, 4, 5}
	for i := 0; i < 100; i++ {
		subset := RandomSubset(ids)
		if len(subset) == 0 || len(subset) > len(ids) {
			t.Fatalf("subset size %d", len(subset))
		}
		seen := map[int64]bool{}
		for _, id := range subset {
			if seen[id] {
				t.Fatalf("duplicate id %d", id)
			}
			seen[id] = true
		}
	}
}

func TestRandomEngineerSectors(t *testing.T) {
	sectorIDs := []int64{10, 20, 30}
	e := RandomEngineer("FR", "example.com", sectorIDs)
	if e.CountryCode != "FR" {
		t.Fatalf("country = %q", e.CountryCode)
	}
	if len(e.SectorIDs) == 0 {
		t.Fatal("engineer must be eligible for at least one sector")
	}
	if !strings.HasSuffix(e.Email, "@example.com") {
		t.Fatalf("email = %q", e.Email)
	}
}
