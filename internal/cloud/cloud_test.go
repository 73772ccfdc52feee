package cloud

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-redis/redismock/v8"

	"github.com/meltforce/liftlog/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestNoop verifies the disabled backend reports every key absent.
func TestNoop(t *testing.T) {
	kv, err := New(context.Background(), config.CloudConfig{Backend: config.BackendNone}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Errorf("Set: %v", err)
	}
	_, ok, err := kv.Get(context.Background(), "k")
	if ok || err != nil {
		t.Errorf("Get = %v, %v; want absent", ok, err)
	}
}

// TestNewUnknownBackend verifies an unknown backend name is an error.
func TestNewUnknownBackend(t *testing.T) {
	if _, err := New(context.Background(), config.CloudConfig{Backend: "s3"}, testLogger()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

// TestSQLiteRoundTrip verifies last-writer-wins storage per namespace.
func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sub", "cloud.db")
	kv, err := OpenSQLite(path, "liftlog")
	if err != nil {
		t.Fatal(err)
	}
	defer kv.Close()

	if _, ok, err := kv.Get(ctx, "workoutPayload"); ok || err != nil {
		t.Fatalf("Get before Set = %v, %v; want absent", ok, err)
	}
	if err := kv.Set(ctx, "workoutPayload", []byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(ctx, "workoutPayload", []byte(`{"a":2}`)); err != nil {
		t.Fatal(err)
	}
	got, ok, err := kv.Get(ctx, "workoutPayload")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if string(got) != `{"a":2}` {
		t.Errorf("value = %s, want the last write", got)
	}

	other, err := OpenSQLite(path, "other")
	if err != nil {
		t.Fatal(err)
	}
	defer other.Close()
	if _, ok, _ := other.Get(ctx, "workoutPayload"); ok {
		t.Error("value leaked across namespaces")
	}
}

// TestSQLiteTooLarge verifies oversized values are rejected.
func TestSQLiteTooLarge(t *testing.T) {
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "cloud.db"), "liftlog")
	if err != nil {
		t.Fatal(err)
	}
	defer kv.Close()

	err = kv.Set(context.Background(), "k", make([]byte, MaxValueSize+1))
	if !errors.Is(err, ErrValueTooLarge) {
		t.Errorf("err = %v, want ErrValueTooLarge", err)
	}
}

// TestRedisGetSet verifies keys are prefixed with the namespace.
func TestRedisGetSet(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	kv := NewRedis(db, "liftlog")

	mock.ExpectGet("liftlog:workoutPayload").RedisNil()
	mock.ExpectSet("liftlog:workoutPayload", []byte("blob"), 0).SetVal("OK")
	mock.ExpectGet("liftlog:workoutPayload").SetVal("blob")

	if _, ok, err := kv.Get(ctx, "workoutPayload"); ok || err != nil {
		t.Errorf("Get = %v, %v; want absent", ok, err)
	}
	if err := kv.Set(ctx, "workoutPayload", []byte("blob")); err != nil {
		t.Errorf("Set: %v", err)
	}
	got, ok, err := kv.Get(ctx, "workoutPayload")
	if err != nil || !ok || string(got) != "blob" {
		t.Errorf("Get = %q, %v, %v; want blob", got, ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// TestRedisError verifies backend errors are returned.
func TestRedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	kv := NewRedis(db, "liftlog")
	mock.ExpectGet("liftlog:k").SetErr(errors.New("connection refused"))

	if _, _, err := kv.Get(context.Background(), "k"); err == nil {
		t.Error("expected error")
	}
}

// fakeKVServer serves the kv endpoints from a map.
type fakeKVServer struct {
	mu       sync.Mutex
	values   map[string][]byte
	failures atomic.Int32
}

func (f *fakeKVServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-API-Key") != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if f.failures.Load() > 0 {
		f.failures.Add(-1)
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	key := r.URL.Path[len("/api/v1/kv/"):]

	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		v, ok := f.values[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(v)
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.values[key] = body
		w.WriteHeader(http.StatusNoContent)
	}
}

// TestHTTPClientRoundTrip verifies Get and Set against the kv endpoints.
func TestHTTPClientRoundTrip(t *testing.T) {
	srv := httptest.NewServer(&fakeKVServer{values: map[string][]byte{}})
	defer srv.Close()

	ctx := context.Background()
	kv := NewHTTPClient(srv.URL+"/", "secret", testLogger())
	defer kv.Close()

	if _, ok, err := kv.Get(ctx, "workoutPayload"); ok || err != nil {
		t.Fatalf("Get = %v, %v; want absent", ok, err)
	}
	if err := kv.Set(ctx, "workoutPayload", []byte(`{"x":1}`)); err != nil {
		t.Fatal(err)
	}
	got, ok, err := kv.Get(ctx, "workoutPayload")
	if err != nil || !ok || !bytes.Equal(got, []byte(`{"x":1}`)) {
		t.Errorf("Get = %s, %v, %v", got, ok, err)
	}
}

// TestHTTPClientRetries verifies transient failures are retried.
func TestHTTPClientRetries(t *testing.T) {
	fake := &fakeKVServer{values: map[string][]byte{}}
	fake.failures.Store(2)
	srv := httptest.NewServer(fake)
	defer srv.Close()

	kv := NewHTTPClient(srv.URL, "secret", testLogger())
	kv.backoff = 0

	if err := kv.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("Set after two failures: %v", err)
	}
	if string(fake.values["k"]) != "v" {
		t.Errorf("stored = %q, want v", fake.values["k"])
	}
}

// TestHTTPClientGivesUp verifies the client stops after three attempts.
func TestHTTPClientGivesUp(t *testing.T) {
	fake := &fakeKVServer{values: map[string][]byte{}}
	fake.failures.Store(5)
	srv := httptest.NewServer(fake)
	defer srv.Close()

	kv := NewHTTPClient(srv.URL, "secret", testLogger())
	kv.backoff = 0

	if err := kv.Set(context.Background(), "k", []byte("v")); err == nil {
		t.Fatal("expected error after three failures")
	}
	if left := fake.failures.Load(); left != 2 {
		t.Errorf("remaining failures = %d, want 2", left)
	}
}
