package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

const goodToken = "good-token"

// newProfileServer serves /api/auth/profile, accepting only goodToken.
// profileHits counts how many resolution calls reached the network.
func newProfileServer(t *testing.T, profileHits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(profileHits, 1)
		if r.Header.Get("Authorization") != "Bearer "+goodToken {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "user not authenticated"})
			return
		}
		_ = json.NewEncoder(w).Encode(Profile{
			ID:        1,
			FirstName: "Aysel",
			LastName:  "Quliyeva",
			Email:     "aysel@test.az",
			Role:      RoleStudent,
			Group:     &NamedRef{Name: "682.19E"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAuth_Start(t *testing.T) {
	t.Run("no token resolves without a network call", func(t *testing.T) {
		var hits int32
		srv := newProfileServer(t, &hits)
		auth := NewAuth(NewClient(srv.URL, NewInMemTokenStore(), nil))

		if state := auth.State(); !state.Loading {
			t.Error("State().Loading = false before Start(); want true")
		}

		auth.Start(context.Background())

		state := auth.State()
		if state.Loading {
			t.Error("State().Loading = true after Start(); want false")
		}
		if state.Authenticated {
			t.Error("State().Authenticated = true without a token")
		}
		if atomic.LoadInt32(&hits) != 0 {
			t.Errorf("profile fetched %d times without a token; want 0", hits)
		}
	})

	t.Run("stored token resolves the profile", func(t *testing.T) {
		var hits int32
		srv := newProfileServer(t, &hits)
		store := NewInMemTokenStore()
		_ = store.SetToken(goodToken)
		auth := NewAuth(NewClient(srv.URL, store, nil))

		auth.Start(context.Background())

		state := auth.State()
		if !state.Authenticated || state.Role != RoleStudent {
			t.Errorf("State() = %+v; want authenticated student", state)
		}
		prof, ok := auth.Profile()
		if !ok || prof.FirstName != "Aysel" || prof.Group == nil {
			t.Errorf("Profile() = %+v, %v; want resolved profile with group", prof, ok)
		}
	})

	t.Run("invalid stored token clears the session", func(t *testing.T) {
		var hits int32
		srv := newProfileServer(t, &hits)
		store := NewInMemTokenStore()
		_ = store.SetToken("stale")
		auth := NewAuth(NewClient(srv.URL, store, nil))

		auth.Start(context.Background())

		if state := auth.State(); state.Authenticated {
			t.Errorf("State() = %+v; want unauthenticated", state)
		}
		if _, err := store.Token(); err != ErrNoToken {
			t.Errorf("Token() err = %v; want ErrNoToken", err)
		}
	})
}

func TestAuth_Login(t *testing.T) {
	var hits int32
	srv := newProfileServer(t, &hits)

	t.Run("valid token", func(t *testing.T) {
		auth := NewAuth(NewClient(srv.URL, NewInMemTokenStore(), nil))
		auth.Login(context.Background(), goodToken)

		state := auth.State()
		if !state.Authenticated || state.Role != RoleStudent {
			t.Errorf("State() = %+v; want authenticated student", state)
		}
	})

	t.Run("token that fails profile fetch", func(t *testing.T) {
		store := NewInMemTokenStore()
		auth := NewAuth(NewClient(srv.URL, store, nil))
		auth.Login(context.Background(), "bad")

		if state := auth.State(); state.Authenticated {
			t.Errorf("State() = %+v; want unauthenticated", state)
		}
		if _, err := store.Token(); err != ErrNoToken {
			t.Errorf("Token() err = %v; want token cleared", err)
		}
	})
}

func TestAuth_Logout(t *testing.T) {
	var hits int32
	srv := newProfileServer(t, &hits)
	store := NewInMemTokenStore()

	var navigations []string
	auth := NewAuth(NewClient(srv.URL, store, func(path string) {
		navigations = append(navigations, path)
	}))
	auth.Login(context.Background(), goodToken)

	auth.Logout()

	state := auth.State()
	if state.Authenticated || state.Role != "" {
		t.Errorf("State() = %+v; want cleared", state)
	}
	if _, err := store.Token(); err != ErrNoToken {
		t.Errorf("Token() err = %v; want token cleared", err)
	}
	if len(navigations) != 1 || navigations[0] != SignInPath {
		t.Errorf("navigations = %v; want single sign-in redirect", navigations)
	}

	// a protected-route render right after logout must redirect to sign-in
	if got := NewRouteTable().Decide(state, "/student/quizzes"); got != RedirectSignIn {
		t.Errorf("Decide() after logout = %v; want RedirectSignIn", got)
	}
}

func TestAuth_FetchProfile(t *testing.T) {
	var hits int32
	srv := newProfileServer(t, &hits)
	store := NewInMemTokenStore()
	_ = store.SetToken(goodToken)
	auth := NewAuth(NewClient(srv.URL, store, nil))

	auth.Start(context.Background())
	auth.FetchProfile(context.Background())

	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("profile fetched %d times; want 2", got)
	}
	if state := auth.State(); !state.Authenticated {
		t.Errorf("State() = %+v; want authenticated", state)
	}
}
