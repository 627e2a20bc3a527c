package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"hydronet/internal/db"
	"hydronet/internal/ingest"
	"hydronet/internal/inp"
	"hydronet/internal/metrics"
	"hydronet/internal/network"

	"github.com/gin-gonic/gin"
)

// Upload size cap per file; network tables are small.
const maxUploadBytes = 10 * 1024 * 1024

// DataHandler moves network tables in and out of a project: CSV/XLSX/INP
// uploads, the bundled sample, and INP export.
type DataHandler struct{}

func NewDataHandler() *DataHandler {
	return &DataHandler{}
}

func openUpload(c *gin.Context, field string) (multipart.File, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing file %q", field)
	}
	if header.Size > maxUploadBytes {
		file.Close()
		return nil, fmt.Errorf("file %q exceeds 10 MB", header.Filename)
	}
	return file, nil
}

// saveTables validates before persisting; invalid networks are stored
// anyway so the user can see and fix them in the tables view, but the
// validation counter still ticks.
func (h *DataHandler) saveTables(c *gin.Context, t *network.Tables, format string) {
	project := loadProject(c)
	if project == nil {
		notFound(c, "Project")
		return
	}
	if err := project.SetTables(t); err != nil {
		RenderError(c, http.StatusInternalServerError, msg(err))
		return
	}
	if err := db.DB.Save(project).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, msg(err))
		return
	}

	m := metrics.Get()
	m.UploadsTotal.WithLabelValues(format).Inc()
	if !network.Validate(t).OK() {
		m.ValidationFailed.Inc()
	}

	c.Redirect(http.StatusFound, projectPath(project.ID))
}

// UploadCSV expects three files: nodes, pipes, demands.
func (h *DataHandler) UploadCSV(c *gin.Context) {
	nodes, err := openUpload(c, "nodes")
	if err != nil {
		RenderError(c, http.StatusBadRequest, msg(err))
		return
	}
	defer nodes.Close()
	pipes, err := openUpload(c, "pipes")
	if err != nil {
		RenderError(c, http.StatusBadRequest, msg(err))
		return
	}
	defer pipes.Close()
	demands, err := openUpload(c, "demands")
	if err != nil {
		RenderError(c, http.StatusBadRequest, msg(err))
		return
	}
	defer demands.Close()

	t, err := ingest.LoadCSV(nodes, pipes, demands)
	if err != nil {
		RenderError(c, http.StatusBadRequest, msg(err))
		return
	}
	h.saveTables(c, t, "csv")
}

// UploadXLSX expects one workbook with node/pipe/demand sheets.
func (h *DataHandler) UploadXLSX(c *gin.Context) {
	file, err := openUpload(c, "workbook")
	if err != nil {
		RenderError(c, http.StatusBadRequest, msg(err))
		return
	}
	defer file.Close()

	t, err := ingest.LoadXLSX(file)
	if err != nil {
		RenderError(c, http.StatusBadRequest, msg(err))
		return
	}
	h.saveTables(c, t, "xlsx")
}

// UploadINP parses an existing EPANET input file.
func (h *DataHandler) UploadINP(c *gin.Context) {
	file, err := openUpload(c, "inp")
	if err != nil {
		RenderError(c, http.StatusBadRequest, msg(err))
		return
	}
	defer file.Close()

	t, err := inp.Parse(file)
	if err != nil {
		RenderError(c, http.StatusBadRequest, msg(err))
		return
	}
	h.saveTables(c, t, "inp")
}

// UseSample loads the bundled demo network into the project.
func (h *DataHandler) UseSample(c *gin.Context) {
	h.saveTables(c, db.SampleTables(), "sample")
}

// ExportINP streams the generated EPANET input file.
func (h *DataHandler) ExportINP(c *gin.Context) {
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

	var sb strings.Builder
	if err := inp.Write(&sb, tables, project.Name); err != nil {
		RenderError(c, http.StatusInternalServerError, msg(err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="generated_network.inp"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(sb.String()))
}
