package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsS3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/example/nazolog/internal/persistence"
)

// mockRoundTripper fakes the subset of S3 used by Store: GetObject and PutObject.
type mockRoundTripper struct {
	mu      sync.Mutex
	state   map[string][]byte
	failPut bool
}

func newMockRoundTripper() *mockRoundTripper {
	return &mockRoundTripper{state: make(map[string][]byte)}
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Path style: /{bucket}/{key}
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	switch req.Method {
	case http.MethodPut:
		if m.failPut {
			return xmlError(http.StatusForbidden, "AccessDenied"), nil
		}
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeChunked(body); ok {
			body = dec
		}
		m.state[key] = body
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"ETag": {"\"etag\""}}}, nil
	case http.MethodGet:
		body, ok := m.state[key]
		if !ok {
			return xmlError(http.StatusNotFound, "NoSuchKey"), nil
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(body)), Header: http.Header{
			"Content-Length": {strconv.Itoa(len(body))},
			"Content-Type":   {contentType},
		}}, nil
	}
	return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
}

func xmlError(status int, code string) *http.Response {
	body := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message></Error>`, code, code)
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body)), Header: http.Header{"Content-Type": {"application/xml"}}}
}

// decodeChunked decodes a single-chunk aws-chunked payload: <hex>\r\n<body>\r\n0\r\n...
func decodeChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	size, err := strconv.ParseInt(strings.SplitN(parts[0], ";", 2)[0], 16, 64)
	if err != nil || int64(len(parts[1])) != size || !strings.HasPrefix(parts[2], "0") {
		return nil, false
	}
	return []byte(parts[1]), true
}

func newTestStore(t *testing.T, rt *mockRoundTripper) *Store {
	t.Helper()
	store, err := New(context.Background(), Config{
		Bucket:          "nazolog",
		Region:          "us-east-1",
		Endpoint:        "https://mock.s3.local",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
		Prefix:          "slots/",
	}, func(o *awsS3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return store
}

func TestNew_RequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
}

func TestStore_GetPut(t *testing.T) {
	ctx := context.Background()
	rt := newMockRoundTripper()
	store := newTestStore(t, rt)

	if _, err := store.Get(ctx, "nazoRecords"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	blob := `[{"id":"a","title":"t"}]`
	if err := store.Put(ctx, "nazoRecords", blob); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, ok := rt.state["slots/nazoRecords"]; !ok {
		t.Fatalf("expected prefixed object key, have %v", rt.state)
	}

	got, err := store.Get(ctx, "nazoRecords")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != blob {
		t.Fatalf("expected %q, got %q", blob, got)
	}
}

func TestStore_PutFailure(t *testing.T) {
	rt := newMockRoundTripper()
	rt.failPut = true
	store := newTestStore(t, rt)

	err := store.Put(context.Background(), "nazoRecords", "[]")
	if err == nil {
		t.Fatalf("expected Put to fail")
	}
	if errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("access denied must not look like a missing object: %v", err)
	}
}
