package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/derecho-hq/pasantias-monitor/internal/domain"
)

// jsonStore implements Store as a single JSON document on disk, the layout
// the monitor has always persisted:
//
//	{"offers": {"1234": {...}}, "last_updated": "..."}
//
// Persist writes a temp file next to the target and renames it, so readers
// never observe a half-written document.
type jsonStore struct {
	path        string
	offers      map[string]domain.Offer
	lastUpdated time.Time
}

type jsonState struct {
	Offers      map[string]domain.Offer `json:"offers"`
	LastUpdated time.Time               `json:"last_updated"`
}

func newJSONStore(path string) *jsonStore {
	return &jsonStore{path: path, offers: make(map[string]domain.Offer)}
}

func (*jsonStore) Close() error { return nil }

// Load reads the persisted document; an absent file yields an empty mapping.
func (s *jsonStore) Load() (map[string]domain.Offer, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.offers = make(map[string]domain.Offer)
			s.lastUpdated = time.Time{}
			return map[string]domain.Offer{}, nil
		}
		return nil, fmt.Errorf("read offer store: %w", err)
	}

	var state jsonState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode offer store: %w", err)
	}
	if state.Offers == nil {
		state.Offers = map[string]domain.Offer{}
	}

	s.offers = make(map[string]domain.Offer, len(state.Offers))
	loaded := make(map[string]domain.Offer, len(state.Offers))
	for id, offer := range state.Offers {
		s.offers[id] = offer
		loaded[id] = offer
	}
	s.lastUpdated = state.LastUpdated
	return loaded, nil
}

// UpsertAll merges offers into the in-memory mapping, newest wins per id.
func (s *jsonStore) UpsertAll(offers []domain.Offer) {
	if s.offers == nil {
		s.offers = make(map[string]domain.Offer, len(offers))
	}
	for _, offer := range offers {
		s.offers[offer.ID] = offer
	}
	s.lastUpdated = time.Now().UTC()
}

// Persist atomically replaces the on-disk document.
func (s *jsonStore) Persist() error {
	dir := filepath.Dir(s.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage directory: %w", err)
		}
	}

	payload, err := json.MarshalIndent(jsonState{Offers: s.offers, LastUpdated: s.lastUpdated}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode offer store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp store file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// LastUpdated reports when the mapping was last merged.
func (s *jsonStore) LastUpdated() time.Time { return s.lastUpdated }
