package scraper

import (
	"testing"

	"github.com/derecho-hq/pasantias-monitor/internal/domain"
)

func TestDetectNewColdStartReturnsAllInOrder(t *testing.T) {
	current := []domain.Offer{{ID: "3"}, {ID: "1"}, {ID: "2"}}

	fresh := DetectNew(current, map[string]domain.Offer{})
	if len(fresh) != 3 {
		t.Fatalf("expected all offers on cold start, got %d", len(fresh))
	}
	for i, want := range []string{"3", "1", "2"} {
		if fresh[i].ID != want {
			t.Fatalf("document order lost: fresh[%d].ID = %s, want %s", i, fresh[i].ID, want)
		}
	}
}

func TestDetectNewSkipsKnownIDs(t *testing.T) {
	current := []domain.Offer{{ID: "1"}, {ID: "2"}}
	previous := map[string]domain.Offer{"1": {ID: "1"}}

	fresh := DetectNew(current, previous)
	if len(fresh) != 1 || fresh[0].ID != "2" {
		t.Fatalf("fresh = %#v", fresh)
	}
}

func TestDetectNewIsIdempotentOncePersisted(t *testing.T) {
	current := []domain.Offer{{ID: "1"}, {ID: "2"}}

	previous := map[string]domain.Offer{}
	first := DetectNew(current, previous)
	if len(first) != 2 {
		t.Fatalf("first pass: %#v", first)
	}

	for _, o := range current {
		previous[o.ID] = o
	}
	second := DetectNew(current, previous)
	if len(second) != 0 {
		t.Fatalf("second pass must be empty, got %#v", second)
	}
}

func TestDetectNewKnownMeansKeyPresenceOnly(t *testing.T) {
	current := []domain.Offer{{ID: "1", Schedule: domain.String("9 a 13")}}
	previous := map[string]domain.Offer{"1": {ID: "1", Schedule: domain.String("14 a 18")}}

	if fresh := DetectNew(current, previous); len(fresh) != 0 {
		t.Fatalf("changed fields must not make an offer new: %#v", fresh)
	}
}
