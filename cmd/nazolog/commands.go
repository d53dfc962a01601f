package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/nazolog/internal/application"
	"github.com/example/nazolog/internal/catalog"
	"github.com/example/nazolog/internal/config"
	httptransport "github.com/example/nazolog/internal/http"
	"github.com/example/nazolog/internal/metrics"
	"github.com/example/nazolog/internal/persistence"
)

func (c *cli) runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := c.setup(c.stdout)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	handler, closeStorage, err := buildServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStorage(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("nazolog API listening", "addr", server.Addr, "storage_driver", cfg.StorageDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		return err
	}
	return nil
}

// buildServer wires storage, application services and the router. The
// returned close function releases the storage connection.
func buildServer(ctx context.Context, cfg config.Config, logger *slog.Logger) (http.Handler, func() error, error) {
	events, err := loadCatalog(cfg)
	if err != nil {
		return nil, nil, err
	}

	guard, err := application.NewOwnerGuard(cfg.OwnerPasswordHash, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("NAZOLOG_OWNER_PASSWORD_HASH: %w", err)
	}

	slot, closeStorage, err := openSlot(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	gateway, err := persistence.NewGateway(slot, cfg.StorageKey, logger)
	if err != nil {
		_ = closeStorage()
		return nil, nil, err
	}

	collector := metrics.New()
	store := application.NewRecordStoreWithLogger(ctx, newRecordGatewayAdapter(gateway), uuid.NewString, logger).WithMetrics(collector)
	reconciler := application.NewReconcilerWithLogger(store, events, time.Now, logger)
	form := application.NewRecordFormWithLogger(store, events, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Catalog: httptransport.NewCatalogHandler(reconciler, logger),
		Events:  httptransport.NewEventHandler(reconciler, form, logger),
		Records: httptransport.NewRecordHandler(store, reconciler, form, logger),
		Metrics: collector.Handler(),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.Metrics(collector),
			httptransport.RequireOwner(guard, logger),
		},
	})

	logger.InfoContext(ctx, "application wired",
		"event_count", events.Len(),
		"record_count", store.Len(),
		"owner_guard", guard.Enabled(),
	)
	return router, closeStorage, nil
}

func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath == "" {
		return catalog.Default(), nil
	}
	events, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("NAZOLOG_CATALOG_PATH: %w", err)
	}
	return events, nil
}

func (c *cli) openGateway(ctx context.Context) (*persistence.Gateway, func() error, error) {
	cfg, logger, err := c.setup(c.stderr)
	if err != nil {
		return nil, nil, err
	}
	slot, closeStorage, err := openSlot(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	gateway, err := persistence.NewGateway(slot, cfg.StorageKey, logger)
	if err != nil {
		_ = closeStorage()
		return nil, nil, err
	}
	return gateway, closeStorage, nil
}

func (c *cli) runExport(cmd *cobra.Command, _ []string) error {
	gateway, closeStorage, err := c.openGateway(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStorage()

	blob, err := gateway.Export(cmd.Context())
	if errors.Is(err, persistence.ErrNotFound) {
		blob = "[]"
	} else if err != nil {
		return fmt.Errorf("read stored records: %w", err)
	}
	_, err = fmt.Fprintln(c.stdout, blob)
	return err
}

func (c *cli) runImport(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}

	gateway, closeStorage, err := c.openGateway(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStorage()

	records, err := gateway.Import(cmd.Context(), data)
	if err != nil {
		return fmt.Errorf("import records: %w", err)
	}
	_, err = fmt.Fprintf(c.stdout, "imported %d records\n", len(records))
	return err
}

func (c *cli) runHashPassword(cmd *cobra.Command, args []string) error {
	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := application.CreatePasswordHash(password, application.DefaultArgon2idParams)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.stdout, hash)
	return err
}
