package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PrinceTyagiSec/Library-Management-System/internal/libclient"
)

// BorrowForm represents the borrow form fields
type BorrowForm struct {
	BookID int `form:"book_id" binding:"required,min=1"`
}

// ReturnForm represents the return form fields
type ReturnForm struct {
	BorrowID int `form:"borrow_id" binding:"required,min=1"`
}

// userDashboard shows the catalog with borrow controls for the logged-in
// visitor
func (s *Server) userDashboard(c *gin.Context) {
	params := s.listParams(c)

	books, err := s.api.AvailableBooks(c.Request.Context(), params)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch available books")
		s.renderError(c, http.StatusBadGateway, "The catalog is unavailable right now.")
		return
	}

	s.render(c, http.StatusOK, "dashboard.tmpl", gin.H{
		"Books":      books.Books,
		"TotalPages": books.TotalPages,
		"Page":       books.CurrentPage,
		"Params":     params,
	})
}

// borrowHistoryPage shows the visitor's own borrows
func (s *Server) borrowHistoryPage(c *gin.Context) {
	params := s.listParams(c)

	history, err := s.api.BorrowHistory(c.Request.Context(), c.Request, params)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch borrow history")
		s.renderError(c, http.StatusBadGateway, "Could not load your borrow history.")
		return
	}

	s.render(c, http.StatusOK, "borrow_history.tmpl", gin.H{
		"History":    history.History,
		"TotalPages": history.TotalPages,
		"Page":       history.CurrentPage,
		"Params":     params,
	})
}

func (s *Server) borrowBook(c *gin.Context) {
	var form BorrowForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderError(c, http.StatusBadRequest, "Missing book id.")
		return
	}

	resp, err := s.api.BorrowBook(c.Request.Context(), c.Request, form.BookID)
	if err != nil {
		var apiErr *libclient.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			s.renderError(c, apiErr.StatusCode, "The book could not be borrowed. It may no longer be available.")
			return
		}
		s.logger.Error().Err(err).Int("book_id", form.BookID).Msg("Borrow request failed")
		s.renderError(c, http.StatusBadGateway, "The library service is unavailable. Please try again.")
		return
	}

	s.render(c, http.StatusOK, "borrow_confirmed.tmpl", gin.H{
		"Message": resp.Message,
		"DueDate": resp.DueDate,
	})
}

func (s *Server) returnBook(c *gin.Context) {
	var form ReturnForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderError(c, http.StatusBadRequest, "Missing borrow id.")
		return
	}

	if _, err := s.api.ReturnBook(c.Request.Context(), c.Request, form.BorrowID); err != nil {
		var apiErr *libclient.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			s.renderError(c, apiErr.StatusCode, "The book could not be returned. It may already be back.")
			return
		}
		s.logger.Error().Err(err).Int("borrow_id", form.BorrowID).Msg("Return request failed")
		s.renderError(c, http.StatusBadGateway, "The library service is unavailable. Please try again.")
		return
	}

	c.Redirect(http.StatusFound, "/borrow-history")
}
