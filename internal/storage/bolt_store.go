package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/derecho-hq/pasantias-monitor/internal/domain"
)

const (
	offerBucket    = "offers"
	metaBucket     = "meta"
	lastUpdatedKey = "last_updated"
)

// boltStore implements Store backed by BoltDB. The merged mapping lives in
// memory between Load and Persist; Persist writes it in a single
// transaction, so a crash mid-cycle leaves the previous state intact.
type boltStore struct {
	db          *bolt.DB
	offers      map[string]domain.Offer
	lastUpdated time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(offerBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(metaBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &boltStore{db: db, offers: make(map[string]domain.Offer)}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Load reads the persisted offer mapping and caches it in memory. The
// returned map is a copy; later UpsertAll calls do not alias it.
func (b *boltStore) Load() (map[string]domain.Offer, error) {
	if b == nil || b.db == nil {
		return map[string]domain.Offer{}, nil
	}

	loaded := make(map[string]domain.Offer)
	var stamp time.Time
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(offerBucket))
		if bucket == nil {
			return fmt.Errorf("offer bucket missing")
		}
		if err := bucket.ForEach(func(k, v []byte) error {
			var offer domain.Offer
			if err := json.Unmarshal(v, &offer); err != nil {
				return fmt.Errorf("decode offer %s: %w", k, err)
			}
			loaded[string(k)] = offer
			return nil
		}); err != nil {
			return err
		}

		meta := tx.Bucket([]byte(metaBucket))
		if meta == nil {
			return fmt.Errorf("meta bucket missing")
		}
		if raw := meta.Get([]byte(lastUpdatedKey)); raw != nil {
			if t, err := time.Parse(time.RFC3339Nano, string(raw)); err == nil {
				stamp = t
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.offers = make(map[string]domain.Offer, len(loaded))
	for id, offer := range loaded {
		b.offers[id] = offer
	}
	b.lastUpdated = stamp
	return loaded, nil
}

// UpsertAll merges offers into the in-memory mapping, newest wins per id.
func (b *boltStore) UpsertAll(offers []domain.Offer) {
	if b == nil {
		return
	}
	if b.offers == nil {
		b.offers = make(map[string]domain.Offer, len(offers))
	}
	for _, offer := range offers {
		b.offers[offer.ID] = offer
	}
	b.lastUpdated = time.Now().UTC()
}

// Persist writes the merged mapping and last-updated stamp in one
// transaction. The in-memory state survives a write failure.
func (b *boltStore) Persist() error {
	if b == nil || b.db == nil {
		return nil
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(offerBucket))
		if bucket == nil {
			return fmt.Errorf("offer bucket missing")
		}
		for id, offer := range b.offers {
			payload, err := json.Marshal(offer)
			if err != nil {
				return fmt.Errorf("encode offer %s: %w", id, err)
			}
			if err := bucket.Put([]byte(id), payload); err != nil {
				return err
			}
		}

		meta := tx.Bucket([]byte(metaBucket))
		if meta == nil {
			return fmt.Errorf("meta bucket missing")
		}
		return meta.Put([]byte(lastUpdatedKey), []byte(b.lastUpdated.Format(time.RFC3339Nano)))
	})
}

// LastUpdated reports when the mapping was last merged.
func (b *boltStore) LastUpdated() time.Time {
	if b == nil {
		return time.Time{}
	}
	return b.lastUpdated
}
