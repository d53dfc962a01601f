package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// RecordGateway loads and saves the whole record collection as one unit.
// Load never fails: unreadable storage yields an empty collection.
type RecordGateway interface {
	Load(ctx context.Context) []Record
	Save(ctx context.Context, records []Record) error
}

// StoreMetrics receives store activity counters.
type StoreMetrics interface {
	RecordCreated()
	RecordUpdated()
	StorageWriteFailed()
	SetRecordCount(n int)
}

type noopStoreMetrics struct{}

func (noopStoreMetrics) RecordCreated() {}
func (noopStoreMetrics) RecordUpdated() {}
func (noopStoreMetrics) StorageWriteFailed() {}
func (noopStoreMetrics) SetRecordCount(int) {}

const maxIDAttempts = 3

// RecordStore owns the in-memory record collection. It is the single writer:
// every mutation is applied under its lock and then pushed to the gateway.
// The in-memory collection stays authoritative when a save fails.
type RecordStore struct {
	mu          sync.RWMutex
	records     []Record
	gateway     RecordGateway
	idGenerator func() string
	metrics     StoreMetrics
	logger      *slog.Logger
}

// NewRecordStore loads the collection from gateway and returns a store over it.
func NewRecordStore(ctx context.Context, gateway RecordGateway, idGenerator func() string) *RecordStore {
	return NewRecordStoreWithLogger(ctx, gateway, idGenerator, nil)
}

// NewRecordStoreWithLogger constructs a record store with a specified logger.
func NewRecordStoreWithLogger(ctx context.Context, gateway RecordGateway, idGenerator func() string, logger *slog.Logger) *RecordStore {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	s := &RecordStore{
		gateway:     gateway,
		idGenerator: idGenerator,
		metrics:     noopStoreMetrics{},
		logger:      defaultLogger(logger),
	}

	if gateway != nil {
		s.records = cloneRecords(gateway.Load(ctx))
	}
	if s.records == nil {
		s.records = []Record{}
	}
	logger = s.loggerWith(ctx, "Load")
	s.reassignDuplicateIDsLocked(ctx, logger)
	logger.InfoContext(ctx, "record collection loaded", "record_count", len(s.records))
	return s
}

// reassignDuplicateIDsLocked gives every record after the first holder of an
// id a freshly minted one, so that lookups by id address exactly one record.
// Records that cannot be given a unique id are dropped. The repaired
// collection is written by the next successful save.
func (s *RecordStore) reassignDuplicateIDsLocked(ctx context.Context, logger *slog.Logger) {
	seen := make(map[string]struct{}, len(s.records))
	kept := s.records[:0]
	reassigned, dropped := 0, 0
	for _, record := range s.records {
		if _, dup := seen[record.ID]; record.ID == "" || dup {
			id, err := s.mintIDLocked()
			if err != nil {
				dropped++
				continue
			}
			logger.WarnContext(ctx, "duplicate record id reassigned", "record_id", record.ID, "new_record_id", id, "error_kind", "storage_read")
			record.ID = id
			reassigned++
		}
		seen[record.ID] = struct{}{}
		kept = append(kept, record)
	}
	s.records = kept
	if reassigned > 0 || dropped > 0 {
		logger.WarnContext(ctx, "loaded records carried duplicate ids", "reassigned_count", reassigned, "dropped_count", dropped, "error_kind", "storage_read")
	}
}

// WithMetrics attaches activity counters to the store.
func (s *RecordStore) WithMetrics(m StoreMetrics) *RecordStore {
	if m != nil {
		s.metrics = m
		s.mu.RLock()
		m.SetRecordCount(len(s.records))
		s.mu.RUnlock()
	}
	return s
}

func (s *RecordStore) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RecordStore", operation, attrs...)
}

// Create mints a new id, appends the record and saves the collection.
func (s *RecordStore) Create(ctx context.Context, input RecordInput) (record Record, err error) {
	if s == nil {
		err = fmt.Errorf("RecordStore is nil")
		return
	}

	logger := s.loggerWith(ctx, "Create", "event_id", input.EventID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create record", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("record_id", record.ID).InfoContext(ctx, "record created")
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	var id string
	id, err = s.mintIDLocked()
	if err != nil {
		return
	}

	record = recordFromInput(id, input)
	s.records = append(s.records, record)
	s.metrics.RecordCreated()
	s.metrics.SetRecordCount(len(s.records))
	s.persistLocked(ctx, logger)
	return
}

// Update replaces every field of the record with the given id, keeping the id.
// Unknown ids return ErrNotFound and leave the collection untouched.
func (s *RecordStore) Update(ctx context.Context, id string, input RecordInput) (record Record, err error) {
	if s == nil {
		err = fmt.Errorf("RecordStore is nil")
		return
	}

	logger := s.loggerWith(ctx, "Update", "record_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update record", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "record updated")
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		err = ErrNotFound
		return
	}

	record = recordFromInput(id, input)
	s.records[idx] = record
	s.metrics.RecordUpdated()
	s.persistLocked(ctx, logger)
	return
}

// List returns a copy of the collection in insertion order.
func (s *RecordStore) List(context.Context) []Record {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.records)
}

// Get returns the record with the given id.
func (s *RecordStore) Get(_ context.Context, id string) (Record, error) {
	if s == nil {
		return Record{}, fmt.Errorf("RecordStore is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return Record{}, ErrNotFound
	}
	return s.records[idx], nil
}

// Len reports the collection size.
func (s *RecordStore) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *RecordStore) mintIDLocked() (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := s.idGenerator()
		if id == "" {
			continue
		}
		if s.indexLocked(id) < 0 {
			return id, nil
		}
	}
	return "", errors.New("application: could not mint a unique record id")
}

func (s *RecordStore) indexLocked(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked saves the collection. Failures are reported and dropped.
func (s *RecordStore) persistLocked(ctx context.Context, logger *slog.Logger) {
	if s.gateway == nil {
		return
	}
	if err := s.gateway.Save(ctx, cloneRecords(s.records)); err != nil {
		s.metrics.StorageWriteFailed()
		logger.WarnContext(ctx, "record collection kept in memory only", "error", err, "error_kind", "storage_write")
	}
}

func cloneRecords(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	copy(out, records)
	return out
}
