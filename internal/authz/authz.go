// Package authz decides whether a role-restricted page renders or redirects.
// The decision itself is a pure function over the session state; the
// Authorizer wraps it with a server round trip that confirms the cookie
// still maps to a live session.
package authz

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/PrinceTyagiSec/Library-Management-System/internal/session"
)

// DecisionKind enumerates the possible outcomes of an authorization check
type DecisionKind int

const (
	// DecisionPending is the zero value: validation has not completed, no
	// protected content may be written.
	DecisionPending DecisionKind = iota
	DecisionRedirect
	DecisionRender
)

// Decision is the result of an authorization check. Redirect decisions
// carry the target path.
type Decision struct {
	Kind   DecisionKind
	Target string
}

// Paths holds the navigation targets used by redirect decisions
type Paths struct {
	Login          string
	UserDashboard  string
	AdminDashboard string
}

// DefaultPaths returns the application's standard navigation targets
func DefaultPaths() Paths {
	return Paths{
		Login:          "/login",
		UserDashboard:  "/dashboard",
		AdminDashboard: "/admin/dashboard",
	}
}

// DashboardFor returns the home path for the given role
func (p Paths) DashboardFor(role session.Role) string {
	if role == session.RoleAdmin {
		return p.AdminDashboard
	}
	return p.UserDashboard
}

// Decide evaluates the redirect matrix for a role-restricted page.
// Unauthenticated visitors go to the login page. A role mismatch redirects
// to the visitor's own dashboard rather than rendering an error page: the
// two dashboards are mutually exclusive homes, an admin never sees the user
// dashboard and vice versa.
func Decide(required session.Role, s session.State, p Paths) Decision {
	if !s.Authenticated {
		return Decision{Kind: DecisionRedirect, Target: p.Login}
	}

	switch required {
	case session.RoleAdmin:
		if !s.IsAdmin {
			return Decision{Kind: DecisionRedirect, Target: p.UserDashboard}
		}
	case session.RoleUser:
		if s.IsAdmin {
			return Decision{Kind: DecisionRedirect, Target: p.AdminDashboard}
		}
	}

	return Decision{Kind: DecisionRender}
}

// SessionValidator confirms a visitor's session against server state. The
// cookie can be decoded locally but only the remote API knows whether it is
// still valid.
type SessionValidator interface {
	ValidateSession(ctx context.Context, r *http.Request) (session.State, error)
}

// Authorizer gates navigation to role-restricted pages
type Authorizer struct {
	validator SessionValidator
	paths     Paths
	logger    zerolog.Logger
}

// New creates an authorizer that re-validates sessions through validator
func New(validator SessionValidator, paths Paths, logger zerolog.Logger) *Authorizer {
	return &Authorizer{
		validator: validator,
		paths:     paths,
		logger:    logger,
	}
}

// Paths returns the authorizer's navigation targets
func (a *Authorizer) Paths() Paths {
	return a.paths
}

// Authorize re-validates the visitor's session and evaluates the redirect
// matrix for the required role.
//
// A failed round trip degrades to unauthenticated and redirects to the
// login page, never to assumed access. If ctx is cancelled (the visitor
// navigated away while validation was outstanding) the pending decision is
// returned with the context error and the caller must discard it: nothing
// is rendered and no redirect is issued for a request that is no longer
// live.
func (a *Authorizer) Authorize(ctx context.Context, required session.Role, r *http.Request) (Decision, error) {
	state, err := a.validator.ValidateSession(ctx, r)
	if err != nil {
		if ctx.Err() != nil {
			return Decision{}, ctx.Err()
		}
		a.logger.Warn().Err(err).Str("required_role", string(required)).Msg("Session re-validation failed")
		return Decision{Kind: DecisionRedirect, Target: a.paths.Login}, nil
	}

	if ctx.Err() != nil {
		// The validator returned after cancellation; its result is stale.
		return Decision{}, ctx.Err()
	}

	return Decide(required, state, a.paths), nil
}
