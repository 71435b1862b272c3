// Package memory persists named calculator memory registers, such as the
// value stored into M, in a bolt database.
package memory

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

// ErrNoVar is returned by Get when there is no such register.
var ErrNoVar = errors.New("no such variable")

const bucketVars = "vars"

// Store is a bolt-backed register file. It is safe for concurrent use.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open memory store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketVars))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize memory store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func marshalValue(v float64) []byte {
	return []byte(strconv.FormatFloat(v, 'g', -1, 64))
}

func unmarshalValue(data []byte) (float64, error) {
	return strconv.ParseFloat(string(data), 64)
}

// Get returns the value of register name.
func (s *Store) Get(name string) (float64, error) {
	var value float64
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketVars)).Get([]byte(name))
		if v == nil {
			return ErrNoVar
		}
		var err error
		value, err = unmarshalValue(v)
		return err
	})
	return value, err
}

// Set stores v in register name.
func (s *Store) Set(name string, v float64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketVars)).Put([]byte(name), marshalValue(v))
	})
}

// Delete removes register name. Deleting a missing register is not an error.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketVars)).Delete([]byte(name))
	})
}

// All returns every stored register. Entries that fail to parse are skipped.
func (s *Store) All() (map[string]float64, error) {
	vars := make(map[string]float64)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketVars)).ForEach(func(k, v []byte) error {
			if f, err := unmarshalValue(v); err == nil {
				vars[string(k)] = f
			}
			return nil
		})
	})
	return vars, err
}
