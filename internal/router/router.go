package router

import (
	"hydronet/internal/handlers"
	"hydronet/internal/metrics"
	"hydronet/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	projectHandler := handlers.NewProjectHandler()
	dataHandler := handlers.NewDataHandler()
	simulateHandler := handlers.NewSimulateHandler()
	resultsHandler := handlers.NewResultsHandler()

	// Public Routes
	r.GET("/", handlers.Home)
	r.GET("/signup", authHandler.ShowRegister)
	r.POST("/signup", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	r.GET("/metrics", gin.WrapH(metrics.Get().Handler()))

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/projects", projectHandler.List)
		authorized.POST("/projects", projectHandler.Create)
		authorized.GET("/projects/:id", projectHandler.Show)
		authorized.POST("/projects/:id/notes", projectHandler.UpdateNotes)
		authorized.POST("/projects/:id/delete", projectHandler.Delete)

		authorized.POST("/projects/:id/data/csv", dataHandler.UploadCSV)
		authorized.POST("/projects/:id/data/xlsx", dataHandler.UploadXLSX)
		authorized.POST("/projects/:id/data/inp", dataHandler.UploadINP)
		authorized.POST("/projects/:id/data/sample", dataHandler.UseSample)
		authorized.GET("/projects/:id/export/inp", dataHandler.ExportINP)

		authorized.POST("/projects/:id/simulate", simulateHandler.Run)

		authorized.GET("/runs/:run", resultsHandler.Show)
		authorized.GET("/runs/:run/pressure.csv", resultsHandler.DownloadPressure)
		authorized.GET("/runs/:run/flowrate.csv", resultsHandler.DownloadFlow)
		authorized.POST("/runs/:run/discard", resultsHandler.Discard)
	}
}
