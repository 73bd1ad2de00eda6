package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"courserag/internal/apperrors"
	"courserag/internal/coursecode"
	"courserag/internal/domain"
)

var (
	bucketCourses = []byte("courses")
	bucketMeta    = []byte("meta")
	keyOrder      = []byte("order")
	keySavedAt    = []byte("saved_at")
)

// BoltStore mirrors the joined dataset in a bbolt file: one JSON value per
// course keyed by canonical code, plus the load order under meta/order.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the database at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Save replaces the stored dataset in one transaction.
func (s *BoltStore) Save(ctx context.Context, courses []domain.Course) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	order := make([]string, 0, len(courses))
	values := make(map[string][]byte, len(courses))
	for _, c := range courses {
		code := coursecode.Normalize(c.Code)
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", code, err)
		}
		if _, dup := values[code]; !dup {
			order = append(order, code)
		}
		values[code] = data
	}
	orderJSON, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketCourses) != nil {
			if err := tx.DeleteBucket(bucketCourses); err != nil {
				return err
			}
		}
		cb, err := tx.CreateBucket(bucketCourses)
		if err != nil {
			return err
		}
		for code, data := range values {
			if err := cb.Put([]byte(code), data); err != nil {
				return err
			}
		}
		mb, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		if err := mb.Put(keyOrder, orderJSON); err != nil {
			return err
		}
		return mb.Put(keySavedAt, []byte(time.Now().UTC().Format(time.RFC3339)))
	})
}

// Load returns the stored courses in their saved order. An empty database
// reports apperrors.ErrSnapshotMissing.
func (s *BoltStore) Load(ctx context.Context) ([]domain.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var courses []domain.Course
	err := s.db.View(func(tx *bolt.Tx) error {
		cb := tx.Bucket(bucketCourses)
		mb := tx.Bucket(bucketMeta)
		if cb == nil || mb == nil {
			return apperrors.ErrSnapshotMissing
		}
		raw := mb.Get(keyOrder)
		if raw == nil {
			return apperrors.ErrSnapshotMissing
		}
		var order []string
		if err := json.Unmarshal(raw, &order); err != nil {
			return fmt.Errorf("unmarshal order: %w", err)
		}
		courses = make([]domain.Course, 0, len(order))
		for _, code := range order {
			v := cb.Get([]byte(code))
			if v == nil {
				continue
			}
			// Unmarshal copies out of the mmap before the tx closes.
			var c domain.Course
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("unmarshal %s: %w", code, err)
			}
			courses = append(courses, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// Get fetches a single course by code.
func (s *BoltStore) Get(code string) (domain.Course, bool, error) {
	var (
		c     domain.Course
		found bool
	)
	key := []byte(coursecode.Normalize(code))
	err := s.db.View(func(tx *bolt.Tx) error {
		cb := tx.Bucket(bucketCourses)
		if cb == nil {
			return nil
		}
		v := cb.Get(key)
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &c)
	})
	return c, found, err
}
