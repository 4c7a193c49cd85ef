package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PrinceTyagiSec/Library-Management-System/internal/libclient"
	"github.com/PrinceTyagiSec/Library-Management-System/internal/session"
)

const (
	// Cookie lifetimes mirror what the API issues: a short session by
	// default, a week with "remember me".
	sessionCookieMaxAge    = 30 * 60
	rememberMeCookieMaxAge = 7 * 24 * 60 * 60
)

// LoginForm represents the login form fields
type LoginForm struct {
	Email      string `form:"email" binding:"required,email"`
	Password   string `form:"password" binding:"required"`
	RememberMe bool   `form:"remember_me"`
}

// RegisterForm represents the registration form fields
type RegisterForm struct {
	Name     string `form:"name" binding:"required,max=50"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=8"`
}

// EmailForm is shared by the forgot-password and resend-verification forms
type EmailForm struct {
	Email string `form:"email" binding:"required,email"`
}

// ResetPasswordForm represents the reset-password form fields
type ResetPasswordForm struct {
	Token    string `form:"reset_token" binding:"required"`
	Password string `form:"password" binding:"required,min=8"`
}

func (s *Server) loginPage(c *gin.Context) {
	// Visitors with a decodable token skip the form and land on their
	// dashboard; a broken or expired token falls through to the form.
	if state, ok := GetSessionState(c); ok && state.Authenticated {
		c.Redirect(http.StatusFound, s.authorizer.Paths().DashboardFor(state.Role()))
		return
	}
	s.render(c, http.StatusOK, "login.tmpl", gin.H{})
}

func (s *Server) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		s.render(c, http.StatusBadRequest, "login.tmpl", gin.H{
			"Error": "Please enter a valid email address and password.",
		})
		return
	}

	resp, err := s.api.Login(c.Request.Context(), form.Email, form.Password, form.RememberMe)
	if err != nil {
		var apiErr *libclient.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			message := "Invalid email or password."
			if apiErr.StatusCode == http.StatusForbidden {
				message = "Please verify your email before logging in."
			}
			s.render(c, http.StatusUnauthorized, "login.tmpl", gin.H{"Error": message})
			return
		}
		s.logger.Error().Err(err).Msg("Login request to library API failed")
		s.render(c, http.StatusBadGateway, "login.tmpl", gin.H{
			"Error": "The library service is unavailable. Please try again.",
		})
		return
	}

	maxAge := sessionCookieMaxAge
	if form.RememberMe {
		maxAge = rememberMeCookieMaxAge
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.resolver.CookieName(),
		Value:    resp.Token,
		Path:     "/",
		MaxAge:   maxAge,
		SameSite: http.SameSiteLaxMode,
	})

	// Publish the token-updated signal so subscribers observe the new
	// session before the redirect is processed. The published state must
	// match what the next Resolve of this cookie derives: a token we
	// cannot decode reads as no session at all.
	var state session.State
	if claims, err := session.DecodeToken(resp.Token); err == nil {
		state = session.State{Authenticated: true, IsAdmin: claims.IsAdmin}
	} else {
		s.logger.Warn().Err(err).Msg("API issued a token this client cannot decode")
	}
	s.resolver.Publish(state)

	if !state.Authenticated {
		c.Redirect(http.StatusFound, s.authorizer.Paths().Login)
		return
	}

	s.logger.Info().Bool("is_admin", state.IsAdmin).Msg("Visitor logged in")

	c.Redirect(http.StatusFound, s.authorizer.Paths().DashboardFor(state.Role()))
}

func (s *Server) logout(c *gin.Context) {
	s.resolver.Invalidate(c.Writer)
	c.Redirect(http.StatusFound, s.authorizer.Paths().Login)
}

func (s *Server) registerPage(c *gin.Context) {
	s.render(c, http.StatusOK, "register.tmpl", gin.H{})
}

func (s *Server) register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		s.render(c, http.StatusBadRequest, "register.tmpl", gin.H{
			"Error": "Please fill in all fields; passwords need at least 8 characters.",
		})
		return
	}

	if err := s.api.Register(c.Request.Context(), form.Name, form.Email, form.Password); err != nil {
		s.logger.Warn().Err(err).Msg("Registration failed")
		s.render(c, http.StatusBadRequest, "register.tmpl", gin.H{
			"Error": "Registration failed. The email may already be in use.",
		})
		return
	}

	s.render(c, http.StatusOK, "login.tmpl", gin.H{
		"Notice": "Registration successful! Please check your email for verification.",
	})
}

func (s *Server) forgotPasswordPage(c *gin.Context) {
	s.render(c, http.StatusOK, "forgot_password.tmpl", gin.H{})
}

func (s *Server) forgotPassword(c *gin.Context) {
	var form EmailForm
	if err := c.ShouldBind(&form); err != nil {
		s.render(c, http.StatusBadRequest, "forgot_password.tmpl", gin.H{
			"Error": "Please enter a valid email address.",
		})
		return
	}

	// The API answers the same whether or not the account exists; so do we.
	if err := s.api.ForgotPassword(c.Request.Context(), form.Email); err != nil {
		s.logger.Warn().Err(err).Msg("Forgot-password request failed")
	}

	s.render(c, http.StatusOK, "forgot_password.tmpl", gin.H{
		"Notice": "If the email exists, you will receive a password reset link.",
	})
}

func (s *Server) resetPasswordPage(c *gin.Context) {
	s.render(c, http.StatusOK, "reset_password.tmpl", gin.H{
		"ResetToken": c.Query("token"),
	})
}

func (s *Server) resetPassword(c *gin.Context) {
	var form ResetPasswordForm
	if err := c.ShouldBind(&form); err != nil {
		s.render(c, http.StatusBadRequest, "reset_password.tmpl", gin.H{
			"Error":      "Passwords need at least 8 characters.",
			"ResetToken": c.PostForm("reset_token"),
		})
		return
	}

	if err := s.api.ResetPassword(c.Request.Context(), form.Token, form.Password); err != nil {
		s.logger.Warn().Err(err).Msg("Password reset failed")
		s.render(c, http.StatusBadRequest, "reset_password.tmpl", gin.H{
			"Error":      "The reset link is invalid or has expired. Please request a new one.",
			"ResetToken": form.Token,
		})
		return
	}

	s.render(c, http.StatusOK, "login.tmpl", gin.H{
		"Notice": "Password reset successful. You can now log in.",
	})
}

func (s *Server) resendVerificationPage(c *gin.Context) {
	s.render(c, http.StatusOK, "resend_verification.tmpl", gin.H{})
}

func (s *Server) resendVerification(c *gin.Context) {
	var form EmailForm
	if err := c.ShouldBind(&form); err != nil {
		s.render(c, http.StatusBadRequest, "resend_verification.tmpl", gin.H{
			"Error": "Please enter a valid email address.",
		})
		return
	}

	if err := s.api.ResendVerification(c.Request.Context(), form.Email); err != nil {
		s.logger.Warn().Err(err).Msg("Resend-verification request failed")
	}

	s.render(c, http.StatusOK, "resend_verification.tmpl", gin.H{
		"Notice": "If the email exists, a new verification link is on its way.",
	})
}
