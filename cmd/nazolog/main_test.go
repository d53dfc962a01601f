package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/example/nazolog/internal/application"
	"github.com/example/nazolog/internal/config"
	"github.com/example/nazolog/internal/persistence"
)

func testConfig(t *testing.T, driver string) config.Config {
	t.Helper()
	return config.Config{
		HTTPPort:      8080,
		LogLevel:      "error",
		StorageDriver: driver,
		StorageKey:    config.DefaultStorageKey,
		SQLiteDSN:     filepath.Join(t.TempDir(), "nazolog.db"),
	}
}

func runCommand(t *testing.T, cfg config.Config, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCommand(&stdout, &stderr, func() (config.Config, error) { return cfg, nil })
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestImportExport(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)

	legacy := `[
		{"id":"1700000000000","eventId":"E001","title":"時の迷宮からの脱出","date":"2023-11-14","result":"成功","score":5,"memo":"楽しかった"},
		{"id":"","title":"id missing","date":"2023-11-15","result":"success","score":3},
		{"id":"1700000000001","title":"自由記録","date":"2023-11-20","result":"失敗","score":0}
	]`
	path := filepath.Join(t.TempDir(), "export.json")
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("failed to write import file: %v", err)
	}

	out, err := runCommand(t, cfg, "", "import", path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if strings.TrimSpace(out) != "imported 2 records" {
		t.Fatalf("unexpected import output %q", out)
	}

	out, err = runCommand(t, cfg, "", "export")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var records []persistence.Record
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("export is not a record array: %v (%q)", err, out)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %#v", records)
	}
	if records[0].Result != persistence.ResultSuccess || records[0].Puzzle != persistence.DefaultScore {
		t.Fatalf("expected normalised legacy record, got %#v", records[0])
	}
	if records[1].Result != persistence.ResultFailure || records[1].Score != persistence.DefaultScore || records[1].EventID != "" {
		t.Fatalf("expected normalised free-form record, got %#v", records[1])
	}
}

func TestImport_FromStdinRejectsMalformedBlob(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)

	if _, err := runCommand(t, cfg, "{not an array", "import", "-"); err == nil {
		t.Fatal("expected malformed import to fail")
	}

	out, err := runCommand(t, cfg, "", "export")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("expected nothing stored, got %q", out)
	}
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{name: "argument", args: []string{"hash-password", "open-sesame"}},
		{name: "stdin", stdin: "open-sesame\n", args: []string{"hash-password"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := runCommand(t, config.Config{}, tc.stdin, tc.args...)
			if err != nil {
				t.Fatalf("hash-password failed: %v", err)
			}
			hash := strings.TrimSpace(out)
			if err := application.VerifyPassword(hash, "open-sesame"); err != nil {
				t.Fatalf("expected hash to verify, got %v", err)
			}
		})
	}

	if _, err := runCommand(t, config.Config{}, "", "hash-password", ""); err == nil {
		t.Fatal("expected empty password to be rejected")
	}
}

func TestBuildServer(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()
	cfg := testConfig(t, config.DriverMemory)

	handler, closeStorage, err := buildServer(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("buildServer failed: %v", err)
	}
	defer closeStorage()

	server := httptest.NewServer(handler)
	defer server.Close()

	resp, err := http.Get(server.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	var view application.CatalogView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("failed to decode catalog: %v", err)
	}
	resp.Body.Close()
	if len(view.Events) == 0 {
		t.Fatal("expected the default catalog to be served")
	}

	body := `{"title":"自由記録","date":"2024-06-15","result":"success","score":4,"puzzle":3,"experience":3,"quantity":3,"mystery":3,"cheerfulness":3}`
	resp, err = http.Post(server.URL+"/form", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /form failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	exposition, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	for _, want := range []string{
		"nazolog_records_created_total 1",
		`nazolog_http_requests_total{method="POST",route="/form",status="201"} 1`,
	} {
		if !strings.Contains(string(exposition), want) {
			t.Fatalf("expected %q in metrics output", want)
		}
	}
}

func TestBuildServer_OwnerGuard(t *testing.T) {
	hash, err := application.CreatePasswordHash("open-sesame", application.Argon2idParams{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("CreatePasswordHash failed: %v", err)
	}

	cfg := testConfig(t, config.DriverMemory)
	cfg.OwnerPasswordHash = hash
	handler, closeStorage, err := buildServer(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("buildServer failed: %v", err)
	}
	defer closeStorage()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/form", strings.NewReader("{}")))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	cfg.OwnerPasswordHash = "not-a-hash"
	if _, _, err := buildServer(context.Background(), cfg, discardLogger()); err == nil {
		t.Fatal("expected invalid owner hash to be rejected")
	}
}

func TestOpenSlot(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{name: "memory", mutate: func(c *config.Config) { c.StorageDriver = config.DriverMemory }},
		{name: "sqlite", mutate: func(c *config.Config) { c.StorageDriver = config.DriverSQLite }},
		{name: "redis", mutate: func(c *config.Config) {
			c.StorageDriver = config.DriverRedis
			c.RedisAddr = mr.Addr()
			c.RedisPrefix = "nazolog:"
		}},
		{name: "unknown driver", mutate: func(c *config.Config) { c.StorageDriver = "floppy" }, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(t, "")
			tc.mutate(&cfg)

			slot, closeStorage, err := openSlot(ctx, cfg, discardLogger())
			if closeStorage == nil {
				t.Fatal("expected a close function")
			}
			defer closeStorage()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("openSlot failed: %v", err)
			}

			if err := slot.Put(ctx, "nazoRecords", "[]"); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			got, err := slot.Get(ctx, "nazoRecords")
			if err != nil || got != "[]" {
				t.Fatalf("expected stored value, got %q (%v)", got, err)
			}
		})
	}

	if !mr.Exists("nazolog:nazoRecords") {
		t.Fatal("expected the redis slot to use the configured prefix")
	}
}

func TestRecordGatewayAdapter(t *testing.T) {
	ctx := context.Background()
	gateway, err := persistence.NewGateway(persistence.NewMemorySlot(), "nazoRecords", discardLogger())
	if err != nil {
		t.Fatalf("NewGateway failed: %v", err)
	}
	adapter := newRecordGatewayAdapter(gateway)

	if got := adapter.Load(ctx); len(got) != 0 {
		t.Fatalf("expected empty collection, got %#v", got)
	}

	record := application.Record{
		ID:        "r1",
		EventID:   "E001",
		Title:     "時の迷宮からの脱出",
		Date:      "2024-01-01",
		Result:    application.ResultFailure,
		Score:     2,
		Memo:      "惜しい",
		SubScores: application.SubScores{Puzzle: 1, Experience: 2, Quantity: 3, Mystery: 4, Cheerfulness: 5},
	}
	if err := adapter.Save(ctx, []application.Record{record}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got := adapter.Load(ctx)
	if len(got) != 1 || got[0] != record {
		t.Fatalf("expected round trip of %#v, got %#v", record, got)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
