package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/nazolog/internal/logging"
)

// Gateway reads and writes the whole record collection as one JSON array
// stored under a single slot key.
type Gateway struct {
	slot   Slot
	key    string
	logger *slog.Logger
}

// NewGateway constructs a gateway over slot. An empty key is rejected.
func NewGateway(slot Slot, key string, logger *slog.Logger) (*Gateway, error) {
	if slot == nil {
		return nil, fmt.Errorf("persistence: slot is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("persistence: slot key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{slot: slot, key: key, logger: logger}, nil
}

// Key returns the slot key the gateway reads and writes.
func (g *Gateway) Key() string {
	return g.key
}

func (g *Gateway) log(ctx context.Context, operation string) *slog.Logger {
	return logging.Or(ctx, g.logger).With("component", "PersistenceGateway", "operation", operation, "slot_key", g.key)
}

// Load returns the stored records. A missing key, an unreadable slot or a
// malformed blob all yield an empty collection; the failure is only logged.
func (g *Gateway) Load(ctx context.Context) []Record {
	logger := g.log(ctx, "Load")

	raw, err := g.slot.Get(ctx, g.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.InfoContext(ctx, "no stored records yet")
		} else {
			logger.WarnContext(ctx, "failed to read record blob", "error", err, "error_kind", "storage_read")
		}
		return []Record{}
	}

	records, dropped, err := Decode([]byte(raw))
	if err != nil {
		logger.WarnContext(ctx, "discarding malformed record blob", "error", err, "error_kind", "storage_read")
		return []Record{}
	}
	if dropped > 0 {
		logger.WarnContext(ctx, "dropped unreadable records", "dropped_count", dropped, "error_kind", "storage_read")
	}
	logger.InfoContext(ctx, "records loaded", "result_count", len(records))
	return records
}

// Save writes the full collection back under the gateway key. Failures are
// logged and returned wrapped in ErrStorageWrite; there is no retry.
func (g *Gateway) Save(ctx context.Context, records []Record) error {
	logger := g.log(ctx, "Save")

	payload, err := Encode(records)
	if err == nil {
		err = g.slot.Put(ctx, g.key, string(payload))
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to write record blob", "error", err, "error_kind", "storage_write")
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	logger.DebugContext(ctx, "records saved", "result_count", len(records), "bytes", len(payload))
	return nil
}

// Export returns the raw stored blob.
func (g *Gateway) Export(ctx context.Context) (string, error) {
	return g.slot.Get(ctx, g.key)
}

// Import decodes data, normalises it and replaces the stored blob. Unlike
// Load it refuses a malformed blob instead of treating it as empty.
func (g *Gateway) Import(ctx context.Context, data []byte) ([]Record, error) {
	records, dropped, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		g.log(ctx, "Import").WarnContext(ctx, "dropped unreadable records", "dropped_count", dropped)
	}
	if err := g.Save(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Encode serialises records as a JSON array. A nil slice encodes as [].
func Encode(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(records)
}

// Decode parses a JSON array of records, upgrading entries written by the
// browser version: Japanese result labels are mapped to the enumeration and
// missing or out of range scores are clamped. Entries without an id or with
// an unknown result are skipped and counted in dropped.
func Decode(data []byte) (records []Record, dropped int, err error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return []Record{}, 0, nil
	}

	var stored []storedRecord
	if err := json.Unmarshal([]byte(trimmed), &stored); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	records = make([]Record, 0, len(stored))
	for _, s := range stored {
		record, ok := s.normalize()
		if !ok {
			dropped++
			continue
		}
		records = append(records, record)
	}
	return records, dropped, nil
}

func (s storedRecord) normalize() (Record, bool) {
	if strings.TrimSpace(s.ID) == "" {
		return Record{}, false
	}
	result, ok := normalizeResult(s.Result)
	if !ok {
		return Record{}, false
	}
	record := Record{
		ID:           s.ID,
		Title:        s.Title,
		Date:         s.Date,
		Result:       result,
		Score:        normalizeScore(s.Score),
		Memo:         s.Memo,
		Puzzle:       normalizeScore(s.Puzzle),
		Experience:   normalizeScore(s.Experience),
		Quantity:     normalizeScore(s.Quantity),
		Mystery:      normalizeScore(s.Mystery),
		Cheerfulness: normalizeScore(s.Cheerfulness),
	}
	if s.EventID != nil {
		record.EventID = *s.EventID
	}
	return record, true
}

func normalizeResult(value string) (string, bool) {
	switch strings.TrimSpace(value) {
	case ResultSuccess, legacyResultSuccess:
		return ResultSuccess, true
	case ResultFailure, legacyResultFailure:
		return ResultFailure, true
	}
	return "", false
}

func normalizeScore(value *int) int {
	if value == nil || *value == 0 {
		return DefaultScore
	}
	switch {
	case *value < 1:
		return 1
	case *value > 5:
		return 5
	}
	return *value
}
