// Package libclient is the typed HTTP client for the remote library API.
// Every record lives behind that API; this process only forwards the
// visitor's credential cookie and renders what comes back.
package libclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PrinceTyagiSec/Library-Management-System/internal/session"
)

// APIError is a non-2xx response from the library API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("library API returned status %d: %s", e.StatusCode, e.Body)
}

// Client represents an HTTP client for the library API
type Client struct {
	baseURL    string
	cookieName string
	httpClient *http.Client
}

// New creates a new API client
func New(baseURL, cookieName string) *Client {
	if cookieName == "" {
		cookieName = session.DefaultCookieName
	}
	return &Client{
		baseURL:    baseURL,
		cookieName: cookieName,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// do sends a request and decodes the JSON response into out (if non-nil).
// A non-empty token is forwarded as the credential cookie so the API sees
// the same credentials the browser sent us.
func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: token})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// tokenFrom extracts the credential cookie value from a browser request
func (c *Client) tokenFrom(r *http.Request) string {
	cookie, err := r.Cookie(c.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	Error   string `json:"error,omitempty"`
}

// Login authenticates the visitor and returns the credential token
func (c *Client) Login(ctx context.Context, email, password string, rememberMe bool) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/login", "", nil, LoginRequest{
		Email:      email,
		Password:   password,
		RememberMe: rememberMe,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account; the API sends a verification email
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	return c.do(ctx, http.MethodPost, "/api/register", "", nil, RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}, nil)
}

// ForgotPassword asks the API to send a password reset link
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/forgot-password", "", nil,
		map[string]string{"email": email}, nil)
}

// ResetPassword redeems a reset token for a new password
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.do(ctx, http.MethodPost, "/api/reset-password", "", nil,
		map[string]string{"token": token, "password": password}, nil)
}

// ResendVerification asks the API to resend the verification email
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/resend-verification", "", nil,
		map[string]string{"email": email}, nil)
}

// Profile represents the authenticated visitor as the API sees them
type Profile struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// Profile fetches the current visitor's profile
func (c *Client) Profile(ctx context.Context, r *http.Request) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/api/user/profile", c.tokenFrom(r), nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ValidateSession confirms the visitor's cookie against server state. A
// missing id in an otherwise successful response means not authenticated. A
// 401/403 from the API also means not authenticated rather than an error,
// so expired cookies degrade cleanly instead of failing every page load.
func (c *Client) ValidateSession(ctx context.Context, r *http.Request) (session.State, error) {
	profile, err := c.Profile(ctx, r)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) &&
			(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			return session.State{}, nil
		}
		return session.State{}, err
	}
	if profile.ID == 0 {
		return session.State{}, nil
	}
	return session.State{Authenticated: true, IsAdmin: profile.IsAdmin}, nil
}

// Book represents a book record
type Book struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Available bool   `json:"available"`
	IsDeleted bool   `json:"is_deleted"`
}

// AvailableBooksResponse is the public book catalog page
type AvailableBooksResponse struct {
	Books       []Book `json:"books"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
	TotalBooks  int    `json:"totalBooks"`
}

// AvailableBooks lists non-deleted books for the public catalog
func (c *Client) AvailableBooks(ctx context.Context, params ListParams) (*AvailableBooksResponse, error) {
	var resp AvailableBooksResponse
	if err := c.do(ctx, http.MethodGet, "/api/books/available", "", params.availableBooksQuery(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AllBooksResponse is the admin book manager page
type AllBooksResponse struct {
	Books      []Book `json:"books"`
	TotalPages int    `json:"totalPages"`
}

// AllBooks lists every book, deleted ones included (admin only)
func (c *Client) AllBooks(ctx context.Context, r *http.Request, params ListParams) (*AllBooksResponse, error) {
	var resp AllBooksResponse
	if err := c.do(ctx, http.MethodGet, "/api/books", c.tokenFrom(r), params.allBooksQuery(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BookRequest represents an add or update book payload
type BookRequest struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Available bool   `json:"available"`
}

// AddBook creates a book (admin only)
func (c *Client) AddBook(ctx context.Context, r *http.Request, book BookRequest) (*Book, error) {
	var created Book
	if err := c.do(ctx, http.MethodPost, "/api/books", c.tokenFrom(r), nil, book, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateBook updates a book's title, author, and availability (admin only)
func (c *Client) UpdateBook(ctx context.Context, r *http.Request, bookID int, book BookRequest) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/books/%d", bookID), c.tokenFrom(r), nil, book, nil)
}

// DeleteBook soft-deletes a book (admin only)
func (c *Client) DeleteBook(ctx context.Context, r *http.Request, bookID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/books/delete/%d", bookID), c.tokenFrom(r), nil, nil, nil)
}

// RestoreBook undoes a soft delete (admin only)
func (c *Client) RestoreBook(ctx context.Context, r *http.Request, bookID int) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/books/restore/%d", bookID), c.tokenFrom(r), nil, nil, nil)
}

// BorrowResponse confirms a borrow with its due date
type BorrowResponse struct {
	Message string `json:"message"`
	DueDate string `json:"due_date"`
}

// BorrowBook borrows a book for the current visitor
func (c *Client) BorrowBook(ctx context.Context, r *http.Request, bookID int) (*BorrowResponse, error) {
	var resp BorrowResponse
	err := c.do(ctx, http.MethodPost, "/api/borrow", c.tokenFrom(r), nil,
		map[string]int{"book_id": bookID}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReturnResponse confirms a return with the resulting status
type ReturnResponse struct {
	Message string `json:"msg"`
	Status  string `json:"status"`
}

// ReturnBook returns a borrowed book
func (c *Client) ReturnBook(ctx context.Context, r *http.Request, borrowID int) (*ReturnResponse, error) {
	var resp ReturnResponse
	err := c.do(ctx, http.MethodPost, "/api/borrow/return", c.tokenFrom(r), nil,
		map[string]int{"borrow_id": borrowID}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// BorrowRecord is a single row of the admin borrow record view
type BorrowRecord struct {
	BorrowID      int    `json:"borrow_id"`
	BorrowDate    string `json:"borrow_date"`
	DueDate       string `json:"due_date"`
	ReturnDate    string `json:"return_date"`
	UserID        *int   `json:"user_id"`
	UserName      string `json:"user_name"`
	UserEmail     string `json:"user_email"`
	AccountStatus string `json:"account_status"`
	BookID        int    `json:"book_id"`
	BookTitle     string `json:"book_title"`
	BookAuthor    string `json:"book_author"`
	BorrowStatus  string `json:"borrow_status"`
}

// BorrowRecordsResponse is the admin borrow record page
type BorrowRecordsResponse struct {
	Records    []BorrowRecord `json:"records"`
	TotalPages int            `json:"totalPages"`
}

// BorrowRecords lists borrow records across all users (admin only)
func (c *Client) BorrowRecords(ctx context.Context, r *http.Request, params ListParams) (*BorrowRecordsResponse, error) {
	var resp BorrowRecordsResponse
	if err := c.do(ctx, http.MethodGet, "/api/borrow/records", c.tokenFrom(r), params.borrowRecordsQuery(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HistoryEntry is a single row of the visitor's own borrow history
type HistoryEntry struct {
	BorrowID   int    `json:"borrow_id"`
	UserName   string `json:"user_name"`
	UserEmail  string `json:"user_email"`
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author"`
	BorrowDate string `json:"borrow_date"`
	ReturnDate string `json:"return_date"`
	DueDate    string `json:"due_date"`
	Status     string `json:"status"`
}

// BorrowHistoryResponse is the visitor's borrow history page
type BorrowHistoryResponse struct {
	History     []HistoryEntry `json:"history"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

// BorrowHistory lists the current visitor's own borrows
func (c *Client) BorrowHistory(ctx context.Context, r *http.Request, params ListParams) (*BorrowHistoryResponse, error) {
	var resp BorrowHistoryResponse
	if err := c.do(ctx, http.MethodGet, "/api/borrow/history", c.tokenFrom(r), params.borrowHistoryQuery(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// User is a row of the admin user manager
type User struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	IsAdmin       bool   `json:"is_admin"`
	EmailVerified bool   `json:"email_verified"`
}

// UsersResponse is the admin user manager page
type UsersResponse struct {
	Users      []User `json:"users"`
	TotalPages int    `json:"totalPages"`
}

// ListUsers lists accounts (admin only)
func (c *Client) ListUsers(ctx context.Context, r *http.Request, params ListParams) (*UsersResponse, error) {
	var resp UsersResponse
	if err := c.do(ctx, http.MethodGet, "/api/admin/user", c.tokenFrom(r), params.usersQuery(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UserRequest represents an add or update user payload
type UserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
}

// AddUser creates an account (admin only); the API sends a verification email
func (c *Client) AddUser(ctx context.Context, r *http.Request, user UserRequest) error {
	return c.do(ctx, http.MethodPost, "/api/admin/user", c.tokenFrom(r), nil, user, nil)
}

// UpdateUser updates an account (admin only)
func (c *Client) UpdateUser(ctx context.Context, r *http.Request, userID int, user UserRequest) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/admin/user/%d", userID), c.tokenFrom(r), nil, user, nil)
}

// DeleteUser deletes an account, detaching its borrow history (admin only)
func (c *Client) DeleteUser(ctx context.Context, r *http.Request, userID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/user/%d", userID), c.tokenFrom(r), nil, nil, nil)
}
