package handlers

import (
	"net/http"

	"hydronet/internal/network"
	"hydronet/internal/services"

	"github.com/gin-gonic/gin"
)

type SimulateHandler struct {
	simService *services.SimulationService
}

func NewSimulateHandler() *SimulateHandler {
	return &SimulateHandler{
		simService: services.GetSimulationService(),
	}
}

// Run validates the project's network, hands it to the solver and
// redirects to the results page. Validation failures bounce back to
// the project page, which shows the full report.
func (h *SimulateHandler) Run(c *gin.Context) {
	project := loadProject(c)
	if project == nil {
		notFound(c, "Project")
		return
	}
	tables, err := project.Tables()
	if err != nil {
		RenderError(c, http.StatusInternalServerError, msg(err))
		return
	}
	if len(tables.Pipes) == 0 {
		RenderError(c, http.StatusBadRequest, "The project has no network data yet; load or upload some first")
		return
	}
	if rep := network.Validate(tables); !rep.OK() {
		c.Redirect(http.StatusFound, projectPath(project.ID))
		return
	}

	res, err := h.simService.Run(c.Request.Context(), project, tables)
	if err != nil {
		Render(c, http.StatusBadGateway, "error.html", gin.H{
			"Error":  "Simulation failed: " + err.Error(),
			"Return": projectPath(project.ID),
		})
		return
	}

	c.Redirect(http.StatusFound, "/runs/"+res.RunID)
}
