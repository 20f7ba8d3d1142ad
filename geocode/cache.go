package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var locationsBucket = []byte("locations")

// Cache stores successful lookups of the wrapped Geocoder in a bbolt file.
// Misses and failures are not stored.
type Cache struct {
	next Geocoder
	db   *bolt.DB
}

// OpenCache opens or creates the cache file at path.
func OpenCache(path string, next Geocoder) (*Cache, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("geocode: open cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(locationsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("geocode: init cache: %w", err)
	}
	return &Cache{next: next, db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// Lookup returns a cached location without calling the wrapped geocoder.
func (c *Cache) Lookup(name string) (Location, bool, error) {
	var (
		location Location
		found    bool
	)
	err := c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(locationsBucket).Get([]byte(normalize(name)))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &location)
	})
	return location, found, err
}

func (c *Cache) Resolve(ctx context.Context, name string) (Location, error) {
	key := normalize(name)
	if key == "" {
		return Location{}, ErrEmptyName
	}
	if location, found, err := c.Lookup(key); err != nil {
		return Location{}, fmt.Errorf("geocode: read cache: %w", err)
	} else if found {
		return location, nil
	}

	location, err := c.next.Resolve(ctx, name)
	if err != nil {
		return Location{}, err
	}
	raw, err := json.Marshal(location)
	if err != nil {
		return Location{}, err
	}
	err = c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(locationsBucket).Put([]byte(key), raw)
	})
	if err != nil {
		return Location{}, fmt.Errorf("geocode: write cache: %w", err)
	}
	return location, nil
}
