package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCookieName is the cookie the remote API sets on login
const DefaultCookieName = "token"

// Resolver owns the session state derived from the credential cookie. It is
// the single writer of that state; everything else reads snapshots or
// subscribes to change notifications. Create one at startup and inject it
// into consumers.
type Resolver struct {
	cookieName string
	logger     zerolog.Logger

	mu          sync.RWMutex
	state       State
	subscribers []func(State)
}

// NewResolver creates a resolver reading the given cookie
func NewResolver(cookieName string, logger zerolog.Logger) *Resolver {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Resolver{
		cookieName: cookieName,
		logger:     logger,
	}
}

// CookieName returns the name of the credential cookie
func (r *Resolver) CookieName() string {
	return r.cookieName
}

// Resolve derives the session state from the request's credential cookie and
// stores it as the current snapshot, overwriting whatever the previous
// request resolved. A missing cookie yields an
// unauthenticated state. An undecodable token also yields an unauthenticated
// state: a broken token must never be read as a valid session, so decode
// failures are logged and swallowed rather than surfaced.
func (r *Resolver) Resolve(req *http.Request) State {
	state := r.deriveState(req)

	r.mu.Lock()
	r.state = state
	r.mu.Unlock()

	return state
}

func (r *Resolver) deriveState(req *http.Request) State {
	cookie, err := req.Cookie(r.cookieName)
	if err != nil || cookie.Value == "" {
		return State{}
	}

	claims, err := DecodeToken(cookie.Value)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Discarding undecodable credential token")
		return State{}
	}

	return State{Authenticated: true, IsAdmin: claims.IsAdmin}
}

// Snapshot returns the most recently resolved state. The snapshot is
// process-wide: with concurrent visitors it reflects whichever request
// resolved last. Per-request decisions must use the state Resolve returned
// for that request, never the snapshot.
func (r *Resolver) Snapshot() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Subscribe registers fn to be called whenever the state is republished.
// Notification is synchronous: Invalidate and Publish do not return until
// every subscriber has observed the new state.
func (r *Resolver) Subscribe(fn func(State)) {
	r.mu.Lock()
	r.subscribers = append(r.subscribers, fn)
	r.mu.Unlock()
}

// Publish stores state as the current snapshot and notifies subscribers.
// The login handler calls this after the credential cookie changes; it is
// the same-process "token updated" signal. Changes made by another tab are
// only observed on that tab's next request, there is no push channel.
func (r *Resolver) Publish(state State) {
	r.mu.Lock()
	r.state = state
	subscribers := make([]func(State), len(r.subscribers))
	copy(subscribers, r.subscribers)
	r.mu.Unlock()

	for _, fn := range subscribers {
		fn(state)
	}
}

// Invalidate expires the credential cookie and downgrades the session to
// unauthenticated. Subscribers observe the cleared state before Invalidate
// returns.
func (r *Resolver) Invalidate(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     r.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		SameSite: http.SameSiteLaxMode,
	})

	r.Publish(State{})
}
