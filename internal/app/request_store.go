package app

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/pickup/internal/ports/secondary"
)

// RequestStoreKey is the namespace key holding the completed pickup list.
const RequestStoreKey = "cashPickupRequests"

// KVRequestStore implements secondary.RequestStore as a JSON-encoded list
// under a single key of a KeyValueStore. The list is read once and then kept
// in memory; every append rewrites the whole value in one Set.
type KVRequestStore struct {
	kv  secondary.KeyValueStore
	key string
	log logrus.FieldLogger

	mu      sync.Mutex
	loaded  bool
	records []*secondary.PickupRecord
}

// NewKVRequestStore creates a new KVRequestStore with injected dependencies.
func NewKVRequestStore(kv secondary.KeyValueStore, key string, log logrus.FieldLogger) *KVRequestStore {
	if key == "" {
		key = RequestStoreKey
	}
	return &KVRequestStore{
		kv:  kv,
		key: key,
		log: log.WithField("store_key", key),
	}
}

// Load returns the stored records, most recent first.
func (s *KVRequestStore) Load(ctx context.Context) []*secondary.PickupRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)
	return copyRecords(s.records)
}

// Append inserts record at the head and persists the whole list.
// A record whose ID is already stored is left untouched and false is returned.
func (s *KVRequestStore) Append(ctx context.Context, record *secondary.PickupRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)

	for _, existing := range s.records {
		if existing.ID == record.ID {
			return false
		}
	}

	stored := *record
	s.records = append([]*secondary.PickupRecord{&stored}, s.records...)

	data, err := json.Marshal(s.records)
	if err != nil {
		s.log.WithError(err).Warn("failed to encode pickup records, keeping them in memory")
		return true
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		s.log.WithError(err).Warn("failed to persist pickup records, keeping them in memory")
	}
	return true
}

func (s *KVRequestStore) ensureLoadedLocked(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true
	s.records = nil

	value, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.log.WithError(err).Warn("failed to read pickup records, starting empty")
		return
	}
	if !found || value == "" {
		return
	}

	var records []*secondary.PickupRecord
	if err := json.Unmarshal([]byte(value), &records); err != nil {
		s.log.WithError(err).Warn("stored pickup records are corrupt, starting empty")
		return
	}

	// Drop null entries and keep the first occurrence of each ID.
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if r == nil || r.ID == "" || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		s.records = append(s.records, r)
	}
}

func copyRecords(records []*secondary.PickupRecord) []*secondary.PickupRecord {
	out := make([]*secondary.PickupRecord, len(records))
	for i, r := range records {
		c := *r
		out[i] = &c
	}
	return out
}

// Ensure KVRequestStore implements the interface
var _ secondary.RequestStore = (*KVRequestStore)(nil)
