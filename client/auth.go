package client

import (
	"context"
	"sync"
)

type (
	// NamedRef is a display-only reference embedded in the profile.
	NamedRef struct {
		Name string `json:"name"`
	}

	// Profile is the authenticated user's identity as resolved from the
	// backend.
	Profile struct {
		ID         int       `json:"id"`
		FirstName  string    `json:"first_name"`
		LastName   string    `json:"last_name"`
		Email      string    `json:"email"`
		Role       string    `json:"role"`
		Department *NamedRef `json:"department,omitempty"`
		Group      *NamedRef `json:"group,omitempty"`
	}

	// AuthState is the read model every role-based decision derives from.
	// While Loading is true no consumer may branch on Role or
	// Authenticated; the only valid rendering is a neutral placeholder.
	AuthState struct {
		Authenticated bool
		Role          string
		Loading       bool
	}

	// Auth owns the session token and the resolved profile. All mutation
	// goes through Start, Login, Logout and FetchProfile; everything else
	// reads State().
	Auth struct {
		client *Client

		mutex   sync.RWMutex
		loading bool
		profile *Profile
	}
)

func NewAuth(client *Client) *Auth {
	return &Auth{client: client, loading: true}
}

// State derives the current AuthState. Role is empty until a profile has
// been resolved.
func (a *Auth) State() AuthState {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	state := AuthState{Loading: a.loading}
	if a.profile != nil {
		state.Authenticated = true
		state.Role = a.profile.Role
	}
	return state
}

// Profile returns a copy of the resolved profile, or false when none
// exists.
func (a *Auth) Profile() (Profile, bool) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	if a.profile == nil {
		return Profile{}, false
	}
	return *a.profile, true
}

// Start runs the single startup resolution, transitioning INIT to
// RESOLVED whether or not a usable session was found.
func (a *Auth) Start(ctx context.Context) {
	a.resolve(ctx)
}

// Login stores the token and re-resolves the profile. It does not return
// until the state has been updated. When the token cannot resolve to a
// profile, the session is invalidated and the caller observes
// Authenticated=false; resolver errors are never surfaced.
//
// Concurrent logins are not cancelled; the last resolution to complete
// wins. Login is user-initiated and sequential in practice.
func (a *Auth) Login(ctx context.Context, token string) {
	if err := a.client.SetToken(token); err != nil {
		a.setProfile(nil)
		return
	}
	a.resolve(ctx)
}

// Logout is a hard reset: token and profile are dropped and the
// application is forced to the sign-in entry point so no state from the
// previous role leaks into the next session.
func (a *Auth) Logout() {
	_ = a.client.ClearToken()
	a.setProfile(nil)
	a.client.navigate(SignInPath)
}

// FetchProfile refreshes the profile without a logout/login cycle.
func (a *Auth) FetchProfile(ctx context.Context) {
	a.resolve(ctx)
}

// resolve turns the stored token into a profile. An absent token yields
// "no profile" without a network call. Any fetch failure, transport and
// auth alike, clears the token and yields "no profile".
func (a *Auth) resolve(ctx context.Context) {
	if _, err := a.client.tokens.Token(); err != nil {
		a.setProfile(nil)
		return
	}

	var prof Profile
	if err := a.client.Get(ctx, "/auth/profile", &prof); err != nil {
		_ = a.client.ClearToken()
		a.setProfile(nil)
		return
	}
	a.setProfile(&prof)
}

func (a *Auth) setProfile(prof *Profile) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.loading = false
	a.profile = prof
}
