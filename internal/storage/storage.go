package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/derecho-hq/pasantias-monitor/internal/domain"
)

// Package storage provides the durable offer store.

// Store is a persistent mapping from offer id to the last-known offer.
// Lifecycle per cycle: Load, then UpsertAll with the scrape result, then
// Persist. Novelty detection must run against the loaded mapping before
// Persist overwrites it. Existing ids are overwritten, never deleted.
type Store interface {
	Close() error
	// Load reads persisted state. An absent file yields an empty mapping
	// (first-run semantics), not an error.
	Load() (map[string]domain.Offer, error)
	// UpsertAll merges offers into the loaded mapping in memory, newest
	// value winning per id, and stamps the store's last-updated time.
	UpsertAll(offers []domain.Offer)
	// Persist atomically writes the merged mapping back to durable
	// storage. Failure is reported to the caller; the in-memory state is
	// kept so the process result is unaffected.
	Persist() error
	LastUpdated() time.Time
}

// NewStore creates the configured storage backend.
func NewStore(typ, path string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "none", "disabled":
		return &noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path)
	case "json":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("json storage requires a path")
		}
		return newJSONStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

// noopStore remembers nothing; every cycle behaves like a cold start.
type noopStore struct {
	lastUpdated time.Time
}

func (*noopStore) Close() error { return nil }

func (*noopStore) Load() (map[string]domain.Offer, error) {
	return map[string]domain.Offer{}, nil
}

func (n *noopStore) UpsertAll([]domain.Offer) { n.lastUpdated = time.Now() }
func (*noopStore) Persist() error             { return nil }
func (n *noopStore) LastUpdated() time.Time   { return n.lastUpdated }
