package router

import (
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/gin-contrib/multitemplate"
)

// LoadTemplates builds the multitemplate renderer: every view is parsed
// together with the shared layout and includes under its handler name.
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, view)
		return files
	}

	// FuncMap
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"eq": func(a, b interface{}) bool {
			return a == b
		},
		"printf": fmt.Sprintf,
	}

	// Manual registration to ensure keys match handler expectation
	r.AddFromFilesFuncs("home.html", funcMap, assemble(templatesDir+"/views/home.html")...)

	// Auth
	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("auth/register.html", funcMap, assemble(templatesDir+"/views/auth/register.html")...)

	// Projects
	r.AddFromFilesFuncs("project/list.html", funcMap, assemble(templatesDir+"/views/project/list.html")...)
	r.AddFromFilesFuncs("project/detail.html", funcMap, assemble(templatesDir+"/views/project/detail.html")...)

	// Results
	r.AddFromFilesFuncs("results/show.html", funcMap, assemble(templatesDir+"/views/results/show.html")...)

	// Error
	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}
