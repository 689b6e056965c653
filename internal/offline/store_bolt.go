package offline

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	queueBucket = []byte("queue")
	indexBucket = []byte("queue_index")
	metaBucket  = []byte("meta")

	lastPunchKey = []byte("last_punch_at")
)

// BoltStore keeps the queue in a bbolt file. Entries are keyed by a
// monotonically increasing sequence so a cursor walk is FIFO; queue_index
// maps LocalID to that key.
type BoltStore struct {
	db *bolt.DB
}

var (
	_ Store           = (*BoltStore)(nil)
	_ ConfirmationLog = (*BoltStore)(nil)
)

func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open queue %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{queueBucket, indexBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create queue buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Enqueue(_ context.Context, p QueuedPunch) error {
	if p.LocalID == "" {
		return fmt.Errorf("queued punch has no local id")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket(indexBucket)
		if index.Get([]byte(p.LocalID)) != nil {
			return nil
		}

		queue := tx.Bucket(queueBucket)
		seq, err := queue.NextSequence()
		if err != nil {
			return err
		}
		value, err := json.Marshal(p)
		if err != nil {
			return err
		}
		key := sequenceKey(seq)
		if err := queue.Put(key, value); err != nil {
			return err
		}
		return index.Put([]byte(p.LocalID), key)
	})
}

func (s *BoltStore) PeekAll(_ context.Context) ([]QueuedPunch, error) {
	var out []QueuedPunch
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(queueBucket).ForEach(func(_, v []byte) error {
			var p QueuedPunch
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			out = append(out, p)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read queue: %w", err)
	}
	return out, nil
}

func (s *BoltStore) Remove(_ context.Context, localID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket(indexBucket)
		key := index.Get([]byte(localID))
		if key == nil {
			return nil
		}
		if err := tx.Bucket(queueBucket).Delete(key); err != nil {
			return err
		}
		return index.Delete([]byte(localID))
	})
}

func (s *BoltStore) MarkFailed(_ context.Context, localID string, reason string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		key := tx.Bucket(indexBucket).Get([]byte(localID))
		if key == nil {
			return ErrEntryNotQueued
		}
		queue := tx.Bucket(queueBucket)

		var p QueuedPunch
		if err := json.Unmarshal(queue.Get(key), &p); err != nil {
			return err
		}
		p.Attempts++
		p.LastError = reason

		value, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return queue.Put(key, value)
	})
}

func (s *BoltStore) Len(_ context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(queueBucket).Stats().KeyN
		return nil
	})
	return n, err
}

func (s *BoltStore) LastPunchAt(_ context.Context) (time.Time, error) {
	var at time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(metaBucket).Get(lastPunchKey)
		if raw == nil {
			return nil
		}
		return at.UnmarshalText(raw)
	})
	return at, err
}

func (s *BoltStore) SetLastPunchAt(_ context.Context, at time.Time) error {
	raw, err := at.MarshalText()
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucket).Put(lastPunchKey, raw)
	})
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
