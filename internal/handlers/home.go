package handlers

import (
	"net/http"

	"hydronet/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Home is the landing page; logged-in users go straight to their
// project list.
func Home(c *gin.Context) {
	if _, ok := c.Get(middleware.CheckUserKey); ok {
		c.Redirect(http.StatusFound, "/projects")
		return
	}
	Render(c, http.StatusOK, "home.html", nil)
}
