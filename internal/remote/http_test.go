package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lakupos/internal/domain"
	"lakupos/internal/remote"
)

func newBackend(t *testing.T, h http.HandlerFunc) *remote.HTTPStore {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return remote.NewHTTPStore(srv.URL, "test-key", 2*time.Second)
}

func TestCurrentIdentity(t *testing.T) {
	s := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/identity" {
			t.Errorf("bad path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("bad auth header %q", got)
		}
		json.NewEncoder(w).Encode(remote.Identity{UserID: "u-1", Email: "a@b.c", StoreID: "s-1"})
	})

	id, err := s.CurrentIdentity(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if id == nil || id.UserID != "u-1" || id.StoreID != "s-1" {
		t.Fatalf("bad identity: %+v", id)
	}
}

func TestMissingResourceIsNil(t *testing.T) {
	s := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	ps, err := s.ProductStock(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if ps != nil {
		t.Fatalf("404 must map to nil, got %+v", ps)
	}

	id, err := s.CurrentIdentity(context.Background())
	if err != nil || id != nil {
		t.Fatalf("404 identity must be (nil, nil), got (%+v, %v)", id, err)
	}
}

func TestServerErrorIsRemoteError(t *testing.T) {
	s := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := s.ProductStock(context.Background(), "p-1")
	var remoteErr *domain.RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("want RemoteError, got %v", err)
	}
}

func TestUnreachableBackendIsRemoteError(t *testing.T) {
	s := remote.NewHTTPStore("http://127.0.0.1:1", "", 200*time.Millisecond)
	_, err := s.CurrentIdentity(context.Background())
	var remoteErr *domain.RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("want RemoteError, got %v", err)
	}
}

func TestInsertTransaction(t *testing.T) {
	var got remote.TransactionRecord
	s := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/transactions" {
			t.Errorf("bad request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		json.NewEncoder(w).Encode(map[string]string{"transaction_id": "tx-9"})
	})

	rec := remote.TransactionRecord{
		ClientRef: "ref-1", UserID: "u-1", StoreID: "s-1",
		TotalPrice: 4000, Quantity: 2, Type: "sale",
		CreatedAt: "2026-08-27T10:00:00Z",
	}
	txID, err := s.InsertTransaction(context.Background(), rec)
	if err != nil {
		t.Fatal(err)
	}
	if txID != "tx-9" {
		t.Fatalf("want tx-9, got %s", txID)
	}
	if got.ClientRef != "ref-1" {
		t.Fatalf("client ref must ride along, got %+v", got)
	}
}

func TestUpdateProductStock(t *testing.T) {
	s := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/v1/products/p-1/stock" {
			t.Errorf("bad request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]int
		json.NewDecoder(r.Body).Decode(&body)
		if body["stock"] != 7 {
			t.Errorf("want stock 7, got %v", body)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := s.UpdateProductStock(context.Background(), "p-1", 7); err != nil {
		t.Fatal(err)
	}
}

func TestListProducts(t *testing.T) {
	s := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/stores/s-1/products" {
			t.Errorf("bad path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]domain.Product{
			{ID: "p-1", StoreID: "s-1", Name: "Kopi", UnitPrice: 1500, Stock: 3},
		})
	})

	ps, err := s.ListProducts(context.Background(), "s-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 1 || ps[0].ID != "p-1" {
		t.Fatalf("bad catalog: %+v", ps)
	}
}

func TestProbe(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(up.Close)

	if !remote.NewProbe(up.URL).Online(context.Background()) {
		t.Fatal("healthy endpoint must read as online")
	}
	if remote.NewProbe("http://127.0.0.1:1").Online(context.Background()) {
		t.Fatal("unreachable endpoint must read as offline")
	}
}
