package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrinceTyagiSec/Library-Management-System/internal/config"
	"github.com/PrinceTyagiSec/Library-Management-System/internal/session"
)

// signedToken mints a token shaped like the one the library API issues.
// The gateway never verifies the signature, so any secret works.
func signedToken(t *testing.T, isAdmin bool) string {
	t.Helper()

	claims := session.TokenClaims{
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * time.Minute)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return token
}

// stubAPI fakes the remote library API. Profile responses follow whatever
// token cookie the gateway forwards: admin tokens get an admin profile.
func stubAPI(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/api/login":
			var req struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password != "correct-horse" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "Invalid credentials"}`))
				return
			}
			token := signedToken(t, strings.HasPrefix(req.Email, "admin"))
			if strings.HasPrefix(req.Email, "broken") {
				token = "not-a-jwt"
			}
			json.NewEncoder(w).Encode(map[string]string{
				"message": "Login successful!",
				"token":   token,
			})

		case "/api/user/profile":
			cookie, err := r.Cookie(session.DefaultCookieName)
			if err != nil || cookie.Value == "" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"msg": "Token is missing"}`))
				return
			}
			claims, err := session.DecodeToken(cookie.Value)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"msg": "Token is invalid"}`))
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"id": 7, "name": "Visitor", "email": "visitor@example.com", "is_admin": claims.IsAdmin,
			})

		case "/api/books/available":
			w.Write([]byte(`{"books": [{"id": 1, "title": "Dune", "author": "Herbert", "available": true}], "totalPages": 1, "currentPage": 1, "totalBooks": 1}`))

		case "/api/books":
			w.Write([]byte(`{"books": [{"id": 1, "title": "Dune", "author": "Herbert", "available": true, "is_deleted": false}], "totalPages": 1}`))

		case "/api/books/1":
			w.Write([]byte(`{"message": "Book updated successfully"}`))

		case "/api/borrow/history":
			w.Write([]byte(`{"history": [], "totalPages": 1, "currentPage": 1}`))

		case "/api/borrow":
			w.Write([]byte(`{"message": "You have borrowed 'Dune'.", "due_date": "2026-09-14"}`))

		case "/api/admin/user":
			w.Write([]byte(`{"users": [{"id": 7, "name": "Visitor", "email": "visitor@example.com", "is_admin": false, "email_verified": true}], "totalPages": 1}`))

		case "/api/admin/user/7":
			w.Write([]byte(`{"message": "User updated successfully"}`))

		case "/api/borrow/records":
			w.Write([]byte(`{"records": [], "totalPages": 1}`))

		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"msg": "not found"}`))
		}
	}))
}

// newTestGateway wires a gateway against the stub API and returns an HTTP
// client with a cookie jar, like a browser.
func newTestGateway(t *testing.T, apiURL string) (*httptest.Server, *http.Client) {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			ListenAddr:    ":0",
			TemplatesGlob: "../../web/templates/*.tmpl",
			AllowedOrigin: "http://localhost:8080",
		},
		API:     config.APIConfig{BaseURL: apiURL},
		Session: config.SessionConfig{CookieName: session.DefaultCookieName},
		Logging: config.LoggingConfig{Level: "error", Format: "json"},
	}

	srv, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)

	gateway := httptest.NewServer(srv.Router())
	t.Cleanup(gateway.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return gateway, client
}

// setCookies seeds the jar with gateway cookies
func setCookies(t *testing.T, client *http.Client, gatewayURL string, cookies ...*http.Cookie) {
	t.Helper()
	u, err := url.Parse(gatewayURL)
	require.NoError(t, err)
	client.Jar.SetCookies(u, cookies)
}

// csrfFromJar fetches a page so the middleware issues a CSRF cookie, then
// reads it back out of the jar
func csrfFromJar(t *testing.T, client *http.Client, gatewayURL string) string {
	t.Helper()

	resp, err := client.Get(gatewayURL + "/login")
	require.NoError(t, err)
	resp.Body.Close()

	u, err := url.Parse(gatewayURL)
	require.NoError(t, err)
	for _, cookie := range client.Jar.Cookies(u) {
		if cookie.Name == csrfCookieName {
			return cookie.Value
		}
	}
	t.Fatal("no CSRF cookie issued")
	return ""
}

func TestHealthCheck(t *testing.T) {
	api := stubAPI(t)
	defer api.Close()
	gateway, client := newTestGateway(t, api.URL)

	resp, err := client.Get(gateway.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHomePage_RendersCatalog(t *testing.T) {
	api := stubAPI(t)
	defer api.Close()
	gateway, client := newTestGateway(t, api.URL)

	resp, err := client.Get(gateway.URL + "/?q=dune&by=title")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Dune")
	assert.Contains(t, string(body), "Herbert")
}

func TestHomePage_APIUnavailable(t *testing.T) {
	api := stubAPI(t)
	api.Close() // connection refused
	gateway, client := newTestGateway(t, api.URL)

	resp, err := client.Get(gateway.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestLogin_RedirectsByRole(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		expected string
	}{
		{"regular user lands on user dashboard", "reader@example.com", "/dashboard"},
		{"admin lands on admin dashboard", "admin@example.com", "/admin/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := stubAPI(t)
			defer api.Close()
			gateway, client := newTestGateway(t, api.URL)

			csrf := csrfFromJar(t, client, gateway.URL)

			form := url.Values{
				"csrf_token": {csrf},
				"email":      {tt.email},
				"password":   {"correct-horse"},
			}
			resp, err := client.PostForm(gateway.URL+"/login", form)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, http.StatusFound, resp.StatusCode)
			assert.Equal(t, tt.expected, resp.Header.Get("Location"))

			// The credential cookie is now in the jar.
			u, _ := url.Parse(gateway.URL)
			var tokenCookie *http.Cookie
			for _, cookie := range client.Jar.Cookies(u) {
				if cookie.Name == session.DefaultCookieName {
					tokenCookie = cookie
				}
			}
			require.NotNil(t, tokenCookie, "login must set the credential cookie")
			assert.NotEmpty(t, tokenCookie.Value)
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	api := stubAPI(t)
	defer api.Close()
	gateway, client := newTestGateway(t, api.URL)

	csrf := csrfFromJar(t, client, gateway.URL)
	form := url.Values{
		"csrf_token": {csrf},
		"email":      {"reader@example.com"},
		"password":   {"wrong"},
	}
	resp, err := client.PostForm(gateway.URL+"/login", form)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Invalid email or password")
}

func TestLogin_RejectsMissingCSRF(t *testing.T) {
	api := stubAPI(t)
	defer api.Close()
	gateway, client := newTestGateway(t, api.URL)

	form := url.Values{
		"email":    {"reader@example.com"},
		"password": {"correct-horse"},
	}
	resp, err := client.PostForm(gateway.URL+"/login", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLogin_UndecodableTokenStaysLoggedOut(t *testing.T) {
	api := stubAPI(t)
	defer api.Close()
	gateway, client := newTestGateway(t, api.URL)

	csrf := csrfFromJar(t, client, gateway.URL)
	form := url.Values{
		"csrf_token": {csrf},
		"email":      {"broken@example.com"},
		"password":   {"correct-horse"},
	}
	resp, err := client.PostForm(gateway.URL+"/login", form)
	require.NoError(t, err)
	resp.Body.Close()

	// The API accepted the credentials but issued a token we cannot read.
	// That must not produce an authenticated session anywhere: not in the
	// redirect, not in the snapshot the next request resolves.
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, err = client.Get(gateway.URL + "/api/session")
	require.NoError(t, err)
	defer resp.Body.Close()
	var state session.State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, session.State{}, state)
}

func TestLogout_ExpiresCookieAndRedirects(t *testing.T) {
	api := stubAPI(t)
	defer api.Close()
	gateway, client := newTestGateway(t, api.URL)

	setCookies(t, client, gateway.URL, &http.Cookie{
		Name:  session.DefaultCookieName,
		Value: signedToken(t, false),
	})

	resp, err := client.Get(gateway.URL + "/logout")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	// The jar drops the expired cookie.
	u, _ := url.Parse(gateway.URL)
	for _, cookie := range client.Jar.Cookies(u) {
		assert.NotEqual(t, session.DefaultCookieName, cookie.Name, "credential cookie should be gone")
	}
}

func TestSessionSnapshot(t *testing.T) {
	api := stubAPI(t)
	defer api.Close()
	gateway, client := newTestGateway(t, api.URL)

	// Without a cookie.
	resp, err := client.Get(gateway.URL + "/api/session")
	require.NoError(t, err)
	var state session.State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	resp.Body.Close()
	assert.Equal(t, session.State{}, state)

	// With an admin cookie.
	setCookies(t, client, gateway.URL, &http.Cookie{
		Name:  session.DefaultCookieName,
		Value: signedToken(t, true),
	})
	resp, err = client.Get(gateway.URL + "/api/session")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	resp.Body.Close()
	assert.Equal(t, session.State{Authenticated: true, IsAdmin: true}, state)
}

func TestSessionSnapshot_MalformedCookie(t *testing.T) {
	api := stubAPI(t)
	defer api.Close()
	gateway, client := newTestGateway(t, api.URL)

	setCookies(t, client, gateway.URL, &http.Cookie{
		Name:  session.DefaultCookieName,
		Value: "garbage-token",
	})

	resp, err := client.Get(gateway.URL + "/api/session")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode, "a broken token must not crash the page")
	var state session.State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, session.State{}, state)
}
