package metadata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/resilience"
)

func writePages(t *testing.T, pages map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range pages {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestDirStoreLookup(t *testing.T) {
	dir := writePages(t, map[string]string{
		"1": "http://example.com/cats\n<html>cats</html>\n",
		"2": "http://example.com/dogs",
		"3": "\n<html>no url</html>",
		"4": "http://example.com/win\r\nbody",
	})
	store := NewDirStore(dir)
	ctx := context.Background()

	tests := []struct {
		docID int
		url   string
		found bool
	}{
		{1, "http://example.com/cats", true},
		{2, "http://example.com/dogs", true},
		{3, "", false},
		{4, "http://example.com/win", true},
		{99, "", false},
	}
	for _, tt := range tests {
		url, found, err := store.Lookup(ctx, tt.docID)
		if err != nil {
			t.Fatalf("Lookup(%d): %v", tt.docID, err)
		}
		if url != tt.url || found != tt.found {
			t.Errorf("Lookup(%d) = (%q, %v), want (%q, %v)", tt.docID, url, found, tt.url, tt.found)
		}
	}
}

func TestDirStorePingAndDocIDs(t *testing.T) {
	dir := writePages(t, map[string]string{
		"10": "u10", "2": "u2", "notes.txt": "x", "-1": "neg",
	})
	if err := os.Mkdir(filepath.Join(dir, "7"), 0o755); err != nil {
		t.Fatal(err)
	}
	store := NewDirStore(dir)
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	ids, err := store.DocIDs()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []int{2, 10}) {
		t.Errorf("DocIDs = %v, want [2 10]", ids)
	}

	if url, found, err := store.Lookup(context.Background(), 7); err != nil || found {
		t.Errorf("Lookup on a directory entry = (%q, %v, %v), want a miss", url, found, err)
	}

	missing := NewDirStore(filepath.Join(dir, "absent"))
	if err := missing.Ping(context.Background()); err == nil {
		t.Error("Ping on a missing directory should fail")
	}
}

type fakeKV struct {
	data   map[string]string
	getErr error
	closed bool
}

var errFakeNil = errors.New("fake: nil")

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", errFakeNil
	}
	return v, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value string) error {
	f.data[key] = value
	return nil
}

func (f *fakeKV) Ping(ctx context.Context) error { return nil }

func (f *fakeKV) Close() error {
	f.closed = true
	return nil
}

func isFakeNil(err error) bool { return errors.Is(err, errFakeNil) }

func TestRedisStore(t *testing.T) {
	kv := &fakeKV{data: map[string]string{"doc:url:5": "http://five", "doc:url:6": ""}}
	store := NewRedisStore(kv, "doc:url:", isFakeNil)
	ctx := context.Background()

	if got := store.Key(5); got != "doc:url:5" {
		t.Errorf("Key(5) = %q", got)
	}
	if url, found, err := store.Lookup(ctx, 5); err != nil || !found || url != "http://five" {
		t.Errorf("Lookup(5) = (%q, %v, %v)", url, found, err)
	}
	if _, found, err := store.Lookup(ctx, 6); err != nil || found {
		t.Errorf("empty value should be a miss, got found=%v err=%v", found, err)
	}
	if _, found, err := store.Lookup(ctx, 7); err != nil || found {
		t.Errorf("absent key should be a miss, got found=%v err=%v", found, err)
	}

	if err := store.Put(ctx, 8, "http://eight"); err != nil {
		t.Fatal(err)
	}
	if kv.data["doc:url:8"] != "http://eight" {
		t.Errorf("Put did not write key, data = %v", kv.data)
	}

	kv.getErr = errors.New("connection reset")
	if _, _, err := store.Lookup(ctx, 5); err == nil {
		t.Error("backend failure should surface as an error")
	}

	store.Close()
	if !kv.closed {
		t.Error("Close should close the client")
	}
}

func TestImportIntoRedisStore(t *testing.T) {
	dir := writePages(t, map[string]string{
		"1": "http://one\n", "2": "\n", "3": "http://three\n",
	})
	kv := &fakeKV{data: map[string]string{}}
	n, err := Import(context.Background(), NewDirStore(dir), NewRedisStore(kv, "p:", isFakeNil))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("imported %d, want 2", n)
	}
	want := map[string]string{"p:1": "http://one", "p:3": "http://three"}
	if !reflect.DeepEqual(kv.data, want) {
		t.Errorf("data = %v, want %v", kv.data, want)
	}
}

func TestNewSQLStoreRejectsBadTable(t *testing.T) {
	for _, table := range []string{"", "docs; DROP TABLE x", "1docs", "a-b"} {
		if _, err := NewSQLStore(nil, Postgres, table); err == nil {
			t.Errorf("table %q should be rejected", table)
		}
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "meta.db"), "documents")
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}
	for id, url := range map[int]string{1: "http://one", 2: "http://two"} {
		if err := store.Put(ctx, id, url); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Put(ctx, 2, "http://two/v2"); err != nil {
		t.Fatal(err)
	}
	if url, found, err := store.Lookup(ctx, 2); err != nil || !found || url != "http://two/v2" {
		t.Errorf("Lookup(2) = (%q, %v, %v)", url, found, err)
	}
	if _, found, err := store.Lookup(ctx, 3); err != nil || found {
		t.Errorf("Lookup(3) = found %v err %v, want miss", found, err)
	}
	if err := store.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestOpenSQLiteBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Metadata.Backend = "sqlite"
	cfg.Metadata.SQLitePath = filepath.Join(t.TempDir(), "meta.db")
	store, err := Open(context.Background(), cfg)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*SQLStore); !ok {
		t.Errorf("Open returned %T, want *SQLStore", store)
	}
}

func TestOpenDirBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Metadata.Dir = t.TempDir()
	store, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(*DirStore); !ok {
		t.Errorf("Open returned %T, want *DirStore", store)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Metadata.Backend = "memcached"
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Error("unknown backend should fail")
	}
}

func TestPostgresStore(t *testing.T) {
	cfg := config.Default().Postgres
	if v := os.Getenv("TEST_POSTGRES_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("TEST_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	client, err := postgres.New(ctx, cfg)
	if err != nil {
		t.Skipf("skipping: postgres unavailable: %v", err)
	}
	defer client.Close()

	table := "documents_test_" + strconv.FormatInt(time.Now().UnixNano(), 36)
	store, err := NewSQLStore(client.DB, Postgres, table)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}
	defer client.DB.Exec("DROP TABLE " + table)

	if err := store.Put(ctx, 42, "http://answer"); err != nil {
		t.Fatal(err)
	}
	if url, found, err := store.Lookup(ctx, 42); err != nil || !found || url != "http://answer" {
		t.Errorf("Lookup(42) = (%q, %v, %v)", url, found, err)
	}
	if _, found, err := store.Lookup(ctx, 43); err != nil || found {
		t.Errorf("Lookup(43) = found %v err %v", found, err)
	}
}

func TestGuardedStoreOpensOnFailures(t *testing.T) {
	kv := &fakeKV{data: map[string]string{"k:1": "http://one"}}
	cb := resilience.NewCircuitBreaker("test", resilience.CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour})
	store := Guard(NewRedisStore(kv, "k:", isFakeNil), cb)
	ctx := context.Background()

	if _, found, err := store.Lookup(ctx, 2); err != nil || found {
		t.Fatalf("miss should not be an error, got found=%v err=%v", found, err)
	}
	if cb.State() != resilience.StateClosed {
		t.Fatalf("misses must not trip the breaker")
	}

	kv.getErr = errors.New("timeout")
	store.Lookup(ctx, 1)
	store.Lookup(ctx, 1)
	kv.getErr = nil
	_, _, err := store.Lookup(ctx, 1)
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}

	if err := store.Put(ctx, 3, "http://three"); err != nil {
		t.Errorf("Put through guard: %v", err)
	}
}
