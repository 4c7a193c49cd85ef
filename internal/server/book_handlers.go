package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PrinceTyagiSec/Library-Management-System/internal/libclient"
)

// BookForm represents the add/edit book form fields
type BookForm struct {
	Title     string `form:"title" binding:"required,max=150"`
	Author    string `form:"author" binding:"required,max=100"`
	Available bool   `form:"available"`
}

// homePage shows the public catalog of available books
func (s *Server) homePage(c *gin.Context) {
	params := s.listParams(c)

	books, err := s.api.AvailableBooks(c.Request.Context(), params)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch available books")
		s.renderError(c, http.StatusBadGateway, "The catalog is unavailable right now.")
		return
	}

	s.render(c, http.StatusOK, "home.tmpl", gin.H{
		"Books":      books.Books,
		"TotalPages": books.TotalPages,
		"Page":       books.CurrentPage,
		"TotalBooks": books.TotalBooks,
		"Params":     params,
	})
}

// adminBooksPage shows the book manager, deleted books included
func (s *Server) adminBooksPage(c *gin.Context) {
	params := s.listParams(c)

	books, err := s.api.AllBooks(c.Request.Context(), c.Request, params)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch book list")
		s.renderError(c, http.StatusBadGateway, "Could not load the book list.")
		return
	}

	s.render(c, http.StatusOK, "admin_books.tmpl", gin.H{
		"Books":      books.Books,
		"TotalPages": books.TotalPages,
		"Page":       params.Page,
		"Params":     params,
	})
}

func (s *Server) addBook(c *gin.Context) {
	var form BookForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderError(c, http.StatusBadRequest, "Title and author are required.")
		return
	}

	_, err := s.api.AddBook(c.Request.Context(), c.Request, libclient.BookRequest{
		Title:     form.Title,
		Author:    form.Author,
		Available: true,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to add book")
		s.renderError(c, http.StatusBadGateway, "Could not add the book.")
		return
	}

	c.Redirect(http.StatusFound, "/admin/books")
}

func (s *Server) updateBook(c *gin.Context) {
	bookID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, "Invalid book id.")
		return
	}

	var form BookForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderError(c, http.StatusBadRequest, "Title and author are required.")
		return
	}

	err = s.api.UpdateBook(c.Request.Context(), c.Request, bookID, libclient.BookRequest{
		Title:     form.Title,
		Author:    form.Author,
		Available: form.Available,
	})
	if err != nil {
		s.logger.Error().Err(err).Int("book_id", bookID).Msg("Failed to update book")
		s.renderError(c, http.StatusBadGateway, "Could not update the book.")
		return
	}

	c.Redirect(http.StatusFound, "/admin/books")
}

func (s *Server) deleteBook(c *gin.Context) {
	bookID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, "Invalid book id.")
		return
	}

	if err := s.api.DeleteBook(c.Request.Context(), c.Request, bookID); err != nil {
		s.logger.Error().Err(err).Int("book_id", bookID).Msg("Failed to delete book")
		s.renderError(c, http.StatusBadGateway, "Could not delete the book.")
		return
	}

	c.Redirect(http.StatusFound, "/admin/books")
}

func (s *Server) restoreBook(c *gin.Context) {
	bookID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, "Invalid book id.")
		return
	}

	if err := s.api.RestoreBook(c.Request.Context(), c.Request, bookID); err != nil {
		s.logger.Error().Err(err).Int("book_id", bookID).Msg("Failed to restore book")
		s.renderError(c, http.StatusBadGateway, "Could not restore the book.")
		return
	}

	c.Redirect(http.StatusFound, "/admin/books")
}
