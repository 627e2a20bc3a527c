package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"hydronet/internal/db"
	"hydronet/internal/middleware"
	"hydronet/internal/models"
	"hydronet/internal/network"
	"hydronet/internal/utils"
	"hydronet/internal/viz"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct{}

func NewProjectHandler() *ProjectHandler {
	return &ProjectHandler{}
}

// currentUser pulls the loaded user off the context; routes behind
// AuthRequired always have one.
func currentUser(c *gin.Context) *models.User {
	if u, ok := c.Get(middleware.CheckUserKey); ok {
		if user, ok := u.(*models.User); ok {
			return user
		}
	}
	return nil
}

// loadProject fetches a project by path param, restricted to the
// current user plus the seeded system projects.
func loadProject(c *gin.Context) *models.Project {
	user := currentUser(c)
	if user == nil {
		return nil
	}
	id := utils.StringToUint(c.Param("id"))
	var project models.Project
	err := db.DB.
		Joins("JOIN users ON users.id = projects.user_id").
		Where("projects.id = ? AND (projects.user_id = ? OR users.username = ?)", id, user.ID, "system").
		First(&project).Error
	if err != nil {
		return nil
	}
	return &project
}

// fillRunCounts batch-fills the run count shown in the project list.
func fillRunCounts(projects []models.Project) {
	if len(projects) == 0 {
		return
	}

	ids := make([]uint, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}

	type countResult struct {
		ProjectID uint
		Count     int
	}
	var rows []countResult
	db.DB.Model(&models.SimulationRun{}).
		Select("project_id, COUNT(*) as count").
		Where("project_id IN ?", ids).
		Group("project_id").
		Scan(&rows)

	counts := make(map[uint]int)
	for _, r := range rows {
		counts[r.ProjectID] = r.Count
	}
	for i := range projects {
		projects[i].RunCount = counts[projects[i].ID]
	}
}

func (h *ProjectHandler) List(c *gin.Context) {
	user := currentUser(c)

	var projects []models.Project
	db.DB.
		Preload("User").
		Joins("JOIN users ON users.id = projects.user_id").
		Where("projects.user_id = ? OR users.username = ?", user.ID, "system").
		Order("projects.updated_at DESC").
		Find(&projects)
	fillRunCounts(projects)

	Render(c, http.StatusOK, "project/list.html", gin.H{"Projects": projects})
}

func (h *ProjectHandler) Create(c *gin.Context) {
	user := currentUser(c)
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		RenderError(c, http.StatusBadRequest, "Project name is required")
		return
	}

	project := models.Project{UserID: user.ID, Name: name, Notes: c.PostForm("notes")}
	if err := project.SetTables(&network.Tables{}); err != nil {
		RenderError(c, http.StatusInternalServerError, msg(err))
		return
	}
	if err := db.DB.Create(&project).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, msg(err))
		return
	}

	session := sessions.Default(c)
	session.Set("project_id", project.ID)
	session.Save()

	c.Redirect(http.StatusFound, projectPath(project.ID))
}

// Show renders the project page: notes, the three tables, validation
// outcome and the topology graph when the network is clean.
func (h *ProjectHandler) Show(c *gin.Context) {
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

	session := sessions.Default(c)
	session.Set("project_id", project.ID)
	session.Save()

	rep := network.Validate(tables)

	var runs []models.SimulationRun
	db.DB.Where("project_id = ?", project.ID).Order("created_at DESC").Limit(10).Find(&runs)

	data := gin.H{
		"Project":   project,
		"NotesHTML": template.HTML(utils.RenderMarkdown(project.Notes)),
		"Tables":    tables,
		"Report":    rep,
		"Runs":      runs,
	}
	if rep.OK() && len(tables.Pipes) > 0 {
		data["DotGraph"] = viz.DOT(tables)
	}
	Render(c, http.StatusOK, "project/detail.html", data)
}

func (h *ProjectHandler) UpdateNotes(c *gin.Context) {
	project := loadProject(c)
	if project == nil {
		notFound(c, "Project")
		return
	}
	project.Notes = c.PostForm("notes")
	if err := db.DB.Save(project).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, msg(err))
		return
	}
	c.Redirect(http.StatusFound, projectPath(project.ID))
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	id := utils.StringToUint(c.Param("id"))

	// Deletion is owner-only; the shared sample stays.
	res := db.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Project{})
	if res.RowsAffected == 0 {
		notFound(c, "Project")
		return
	}

	session := sessions.Default(c)
	if pid, ok := session.Get("project_id").(uint); ok && pid == id {
		session.Delete("project_id")
		session.Save()
	}
	c.Redirect(http.StatusFound, "/projects")
}

func projectPath(id uint) string {
	return "/projects/" + utils.UintToString(id)
}
