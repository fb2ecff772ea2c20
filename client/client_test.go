package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
)

func TestClient_bearerAttachment(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]string{"ok": "ok"})
	}))
	defer srv.Close()

	store := NewInMemTokenStore()
	c := NewClient(srv.URL, store, nil)

	// no token stored: no header
	if err := c.Get(context.Background(), "/departments", nil); err != nil {
		t.Fatalf("Get(): %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q without a token; want empty", gotAuth)
	}

	if err := c.SetToken("tok"); err != nil {
		t.Fatalf("SetToken(): %v", err)
	}
	if err := c.Get(context.Background(), "/departments", nil); err != nil {
		t.Fatalf("Get(): %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q; want %q", gotAuth, "Bearer tok")
	}
}

func TestClient_apiPrefix(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", NewInMemTokenStore(), nil)
	if err := c.Get(context.Background(), "/groups", nil); err != nil {
		t.Fatalf("Get(): %v", err)
	}
	if gotPath != "/api/groups" {
		t.Errorf("path = %q; want %q", gotPath, "/api/groups")
	}
}

func TestClient_errorMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "department has groups and cannot be deleted"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, NewInMemTokenStore(), nil)
	err := c.Delete(context.Background(), "/departments/1")
	if err == nil {
		t.Fatal("Delete() err = nil; want APIError")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Delete() err = %T; want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusConflict || apiErr.Message != "department has groups and cannot be deleted" {
		t.Errorf("APIError = %+v; want backend message surfaced", apiErr)
	}
}

// A 401 from any call must clear the token and navigate to sign-in
// exactly once, no matter how many requests fail concurrently.
func TestClient_concurrent401(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "user not authenticated"})
	}))
	defer srv.Close()

	var navigations int32
	store := NewInMemTokenStore()
	c := NewClient(srv.URL, store, func(path string) {
		if path != SignInPath {
			t.Errorf("navigate(%q); want %q", path, SignInPath)
		}
		atomic.AddInt32(&navigations, 1)
	})
	_ = c.SetToken("expired")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Get(context.Background(), "/quizzes", nil); err != ErrUnauthenticated {
				t.Errorf("Get() err = %v; want ErrUnauthenticated", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&navigations); got != 1 {
		t.Errorf("sign-in navigation fired %d times; want exactly 1", got)
	}
	if _, err := store.Token(); err != ErrNoToken {
		t.Errorf("Token() err = %v; want token cleared", err)
	}

	// a fresh login re-arms the interceptor
	_ = c.SetToken("expired again")
	_ = c.Get(context.Background(), "/quizzes", nil)
	if got := atomic.LoadInt32(&navigations); got != 2 {
		t.Errorf("sign-in navigation fired %d times after new session; want 2", got)
	}
}
