package handlers

import (
	"net/http"
	"strings"

	"hydronet/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	// Inject Current User
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		obj["CurrentUser"] = user
	}
	if pid, exists := c.Get(middleware.ActiveProjectKey); exists {
		obj["ActiveProjectID"] = pid
	}

	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// Error helper
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

func msg(err error) string {
	if err == nil {
		return ""
	}
	// Simple way to return cleaner errors, can be expanded
	return strings.Title(err.Error())
}

// notFound is the shared 404 response for missing projects and runs.
func notFound(c *gin.Context, what string) {
	RenderError(c, http.StatusNotFound, what+" not found")
}
