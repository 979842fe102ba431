package firestore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/suraksha/efir-anchor/internal/domain"
	"github.com/suraksha/efir-anchor/internal/infrastructure/cache"
)

func newFakeFirebase(t *testing.T) (*httptest.Server, map[string]map[string]string) {
	t.Helper()
	docs := map[string]map[string]string{}

	mux := http.NewServeMux()
	mux.HandleFunc("/firs.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("auth") != "sekrit" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if len(docs) == 0 {
			w.Write([]byte("null"))
			return
		}
		json.NewEncoder(w).Encode(docs)
	})
	mux.HandleFunc("/firs/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("auth") != "sekrit" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodPut {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := r.URL.Path[len("/firs/") : len(r.URL.Path)-len(".json")]
		buf, _ := io.ReadAll(r.Body)
		var doc map[string]string
		if err := json.Unmarshal(buf, &doc); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		docs[id] = doc
		w.Write(buf)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, docs
}

func TestPutAddsServerFields(t *testing.T) {
	srv, docs := newFakeFirebase(t)
	store := New(srv.URL, "sekrit", 5*time.Second, nil)

	record, err := store.Put(context.Background(), "FIR-1", map[string]string{
		"firId":           "FIR-1",
		"complainantName": "Asha",
		"incidentType":    "Theft",
	})
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if record.Status != "REGISTERED" {
		t.Fatalf("expected REGISTERED status, got %s", record.Status)
	}
	if record.CreatedAt.IsZero() {
		t.Fatalf("expected a creation timestamp")
	}

	doc := docs["FIR-1"]
	if doc == nil {
		t.Fatalf("document not written")
	}
	if doc["status"] != "REGISTERED" {
		t.Fatalf("stored status wrong: %q", doc["status"])
	}
	if _, err := time.Parse(time.RFC3339, doc["createdAt"]); err != nil {
		t.Fatalf("stored createdAt not RFC3339: %q", doc["createdAt"])
	}
	if doc["complainantName"] != "Asha" {
		t.Fatalf("submitted field lost: %q", doc["complainantName"])
	}
}

func TestListAllRoundTrip(t *testing.T) {
	srv, _ := newFakeFirebase(t)
	store := New(srv.URL, "sekrit", 5*time.Second, nil)
	ctx := context.Background()

	submitted := map[string]string{
		"firId":           "FIR-1",
		"complainantName": "Asha",
		"incidentType":    "Theft",
	}
	if _, err := store.Put(ctx, "FIR-1", submitted); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	records, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("listAll failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.FIRID != "FIR-1" {
		t.Fatalf("id mismatch: %s", got.FIRID)
	}
	for k, v := range submitted {
		if got.Fields[k] != v {
			t.Fatalf("field %s mismatch: got %q want %q", k, got.Fields[k], v)
		}
	}
	// Server-added fields must not leak into the hashed field set.
	if _, ok := got.Fields["createdAt"]; ok {
		t.Fatalf("createdAt leaked into fields")
	}
	if _, ok := got.Fields["status"]; ok {
		t.Fatalf("status leaked into fields")
	}
	if got.Status != "REGISTERED" {
		t.Fatalf("status mismatch: %s", got.Status)
	}
}

func TestListAllEmptyCollection(t *testing.T) {
	srv, _ := newFakeFirebase(t)
	store := New(srv.URL, "sekrit", 5*time.Second, nil)

	records, err := store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("listAll failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty collection, got %d", len(records))
	}
}

func TestAuthFailureIsStoreError(t *testing.T) {
	srv, _ := newFakeFirebase(t)
	store := New(srv.URL, "wrong-secret", 5*time.Second, nil)

	_, err := store.Put(context.Background(), "FIR-1", map[string]string{"firId": "FIR-1"})
	var storeErr *domain.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %v", err)
	}

	_, err = store.ListAll(context.Background())
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %v", err)
	}
}

func TestUnreachableStoreIsStoreError(t *testing.T) {
	store := New("http://127.0.0.1:1", "sekrit", 500*time.Millisecond, nil)

	_, err := store.ListAll(context.Background())
	var storeErr *domain.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %v", err)
	}
}

func TestPutInvalidatesListCache(t *testing.T) {
	srv, _ := newFakeFirebase(t)
	store := New(srv.URL, "sekrit", 5*time.Second, cache.NewMemory(time.Minute))
	ctx := context.Background()

	if _, err := store.Put(ctx, "FIR-1", map[string]string{"firId": "FIR-1"}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	records, err := store.ListAll(ctx)
	if err != nil || len(records) != 1 {
		t.Fatalf("first list failed: %d %v", len(records), err)
	}

	// A second put must bust the cached listing.
	if _, err := store.Put(ctx, "FIR-2", map[string]string{"firId": "FIR-2"}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	records, err = store.ListAll(ctx)
	if err != nil {
		t.Fatalf("second list failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("stale cache: expected 2 records, got %d", len(records))
	}
}
