package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/nazolog/internal/application"
	"github.com/example/nazolog/internal/config"
	"github.com/example/nazolog/internal/persistence"
	"github.com/example/nazolog/internal/persistence/redis"
	"github.com/example/nazolog/internal/persistence/s3"
	"github.com/example/nazolog/internal/persistence/sqlite"
)

// openSlot connects the storage driver selected by cfg. The returned close
// function is never nil.
func openSlot(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.Slot, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StorageDriver {
	case config.DriverMemory:
		logger.WarnContext(ctx, "using in-memory storage; records are lost on exit")
		return persistence.NewMemorySlot(), noop, nil
	case config.DriverSQLite:
		storage, err := sqlite.Open(cfg.SQLiteDSN)
		if err != nil {
			return nil, noop, err
		}
		storage = storage.WithLogger(logger)
		if err := storage.Migrate(ctx); err != nil {
			_ = storage.Close()
			return nil, noop, fmt.Errorf("apply migrations: %w", err)
		}
		return storage, storage.Close, nil
	case config.DriverRedis:
		store, err := redis.New(ctx, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case config.DriverS3:
		store, err := s3.New(ctx, s3.Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// recordGatewayAdapter exposes the persistence gateway with application types.
type recordGatewayAdapter struct {
	gateway *persistence.Gateway
}

func newRecordGatewayAdapter(gateway *persistence.Gateway) *recordGatewayAdapter {
	return &recordGatewayAdapter{gateway: gateway}
}

func (a *recordGatewayAdapter) Load(ctx context.Context) []application.Record {
	models := a.gateway.Load(ctx)
	records := make([]application.Record, 0, len(models))
	for _, model := range models {
		records = append(records, toApplicationRecord(model))
	}
	return records
}

func (a *recordGatewayAdapter) Save(ctx context.Context, records []application.Record) error {
	models := make([]persistence.Record, 0, len(records))
	for _, record := range records {
		models = append(models, toPersistenceRecord(record))
	}
	return a.gateway.Save(ctx, models)
}

func toApplicationRecord(model persistence.Record) application.Record {
	return application.Record{
		ID:      model.ID,
		EventID: model.EventID,
		Title:   model.Title,
		Date:    model.Date,
		Result:  application.Result(model.Result),
		Score:   model.Score,
		Memo:    model.Memo,
		SubScores: application.SubScores{
			Puzzle:       model.Puzzle,
			Experience:   model.Experience,
			Quantity:     model.Quantity,
			Mystery:      model.Mystery,
			Cheerfulness: model.Cheerfulness,
		},
	}
}

func toPersistenceRecord(record application.Record) persistence.Record {
	return persistence.Record{
		ID:           record.ID,
		EventID:      record.EventID,
		Title:        record.Title,
		Date:         record.Date,
		Result:       string(record.Result),
		Score:        record.Score,
		Memo:         record.Memo,
		Puzzle:       record.Puzzle,
		Experience:   record.Experience,
		Quantity:     record.Quantity,
		Mystery:      record.Mystery,
		Cheerfulness: record.Cheerfulness,
	}
}
