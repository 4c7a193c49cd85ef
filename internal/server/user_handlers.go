package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PrinceTyagiSec/Library-Management-System/internal/libclient"
)

// UserForm represents the admin add/edit user form fields
type UserForm struct {
	Name     string `form:"name" binding:"required,max=50"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password"`
	IsAdmin  bool   `form:"is_admin"`
}

// adminDashboard is the admin landing page
func (s *Server) adminDashboard(c *gin.Context) {
	s.render(c, http.StatusOK, "admin_dashboard.tmpl", gin.H{})
}

// adminUsersPage shows the user manager
func (s *Server) adminUsersPage(c *gin.Context) {
	params := s.listParams(c)

	users, err := s.api.ListUsers(c.Request.Context(), c.Request, params)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch user list")
		s.renderError(c, http.StatusBadGateway, "Could not load the user list.")
		return
	}

	s.render(c, http.StatusOK, "admin_users.tmpl", gin.H{
		"Users":      users.Users,
		"TotalPages": users.TotalPages,
		"Page":       params.Page,
		"Params":     params,
	})
}

// borrowRecordsPage shows borrow records across all users
func (s *Server) borrowRecordsPage(c *gin.Context) {
	params := s.listParams(c)

	records, err := s.api.BorrowRecords(c.Request.Context(), c.Request, params)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch borrow records")
		s.renderError(c, http.StatusBadGateway, "Could not load the borrow records.")
		return
	}

	s.render(c, http.StatusOK, "admin_borrow_records.tmpl", gin.H{
		"Records":    records.Records,
		"TotalPages": records.TotalPages,
		"Page":       params.Page,
		"Params":     params,
	})
}

func (s *Server) addUser(c *gin.Context) {
	var form UserForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderError(c, http.StatusBadRequest, "Name and a valid email are required.")
		return
	}
	if form.Password == "" {
		s.renderError(c, http.StatusBadRequest, "A password is required for new accounts.")
		return
	}

	err := s.api.AddUser(c.Request.Context(), c.Request, libclient.UserRequest{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		IsAdmin:  form.IsAdmin,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to add user")
		s.renderError(c, http.StatusBadGateway, "Could not create the account.")
		return
	}

	c.Redirect(http.StatusFound, "/admin/users")
}

func (s *Server) updateUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, "Invalid user id.")
		return
	}

	var form UserForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderError(c, http.StatusBadRequest, "Name and a valid email are required.")
		return
	}

	err = s.api.UpdateUser(c.Request.Context(), c.Request, userID, libclient.UserRequest{
		Name:    form.Name,
		Email:   form.Email,
		IsAdmin: form.IsAdmin,
	})
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Failed to update user")
		s.renderError(c, http.StatusBadGateway, "Could not update the account.")
		return
	}

	c.Redirect(http.StatusFound, "/admin/users")
}

func (s *Server) deleteUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, "Invalid user id.")
		return
	}

	if err := s.api.DeleteUser(c.Request.Context(), c.Request, userID); err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Failed to delete user")
		s.renderError(c, http.StatusBadGateway, "Could not delete the account.")
		return
	}

	c.Redirect(http.StatusFound, "/admin/users")
}
