package server

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PrinceTyagiSec/Library-Management-System/internal/libclient"
)

// render wraps gin's HTML renderer, injecting the fields every page needs
func (s *Server) render(c *gin.Context, status int, template string, data gin.H) {
	state, _ := GetSessionState(c)
	data["Session"] = state
	data["CSRFToken"] = csrfToken(c)
	c.HTML(status, template, data)
}

// renderError renders the shared error page for a failed API call
func (s *Server) renderError(c *gin.Context, status int, message string) {
	s.render(c, status, "error.tmpl", gin.H{"Message": message})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

// listParams collects the search/filter/pagination controls shared by the
// list views. Invalid combinations fall back to the first unfiltered page
// rather than erroring: these arrive via hand-editable URLs.
func (s *Server) listParams(c *gin.Context) libclient.ListParams {
	params := libclient.ListParams{
		Page:          queryInt(c, "page", 1),
		Limit:         queryInt(c, "limit", 10),
		SearchQuery:   c.Query("q"),
		SearchBy:      c.Query("by"),
		FilterStatus:  c.Query("filter"),
		ReturnStatus:  c.Query("return_status"),
		AccountStatus: c.Query("account_status"),
	}
	if params.SearchQuery != "" && params.SearchBy == "" {
		params.SearchBy = "title"
	}

	if err := s.validator.Struct(params); err != nil {
		s.logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Ignoring invalid list parameters")
		return libclient.ListParams{Page: 1, Limit: 10}
	}
	return params
}
