// Package store persists selected property values between runs. Each device
// gets its own bucket; each property is stored as a JSON object of member
// values.
package store

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"indikit/pkg/indikit"
)

type Store struct {
	db *bolt.DB
}

func New(db *bolt.DB) *Store {
	return &Store{db: db}
}

// SaveProperty writes the property's current member values.
func (s *Store) SaveProperty(device string, p indikit.Property) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(device))
		if err != nil {
			return err
		}

		value, err := json.Marshal(p.Values())
		if err != nil {
			return err
		}
		return b.Put([]byte(p.Name()), value)
	})
}

// LoadProperty restores saved member values onto the property. Members not
// present in the saved snapshot keep their current values.
func (s *Store) LoadProperty(device string, p indikit.Property) error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(device))
		if b == nil {
			return fmt.Errorf("no saved configuration for device %s", device)
		}

		value := b.Get([]byte(p.Name()))
		if value == nil {
			return fmt.Errorf("no saved values for %s.%s", device, p.Name())
		}

		var values map[string]any
		if err := json.Unmarshal(value, &values); err != nil {
			return err
		}
		return p.SetValues(values)
	})
}
