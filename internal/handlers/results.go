package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"hydronet/internal/results"
	"hydronet/internal/services"
	"hydronet/internal/utils"
	"hydronet/internal/viz"

	"github.com/gin-gonic/gin"
)

type ResultsHandler struct {
	simService *services.SimulationService
}

func NewResultsHandler() *ResultsHandler {
	return &ResultsHandler{
		simService: services.GetSimulationService(),
	}
}

// pipeStat gathers per-endpoint pressure statistics for one selected
// pipe, each endpoint paired with its chart.
type pipeStat struct {
	PipeID string
	Nodes  []nodeStat
}

type nodeStat struct {
	Stats     results.Stats
	ChartJSON string
	Missing   string // set when the node has no pressure column
}

// Show renders the results page: pressure map at a chosen timestep,
// endpoint statistics for selected pipes, line charts and the table
// for selected nodes.
func (h *ResultsHandler) Show(c *gin.Context) {
	res := h.simService.Result(c.Param("run"))
	if res == nil {
		notFound(c, "Simulation run (it may have expired; run the simulation again)")
		return
	}

	timestep := 0
	if v := c.Query("t"); v != "" {
		timestep = utils.StringToInt(v)
	}
	if max := res.Set.Pressure.Periods() - 1; timestep > max {
		timestep = max
	}
	if timestep < 0 {
		timestep = 0
	}

	selectedPipes := selection(c, "pipes")
	selectedNodes := selection(c, "nodes")

	mapJSON, err := viz.PressureMap(res.Tables, res.Set.Pressure, timestep).JSON()
	if err != nil {
		RenderError(c, http.StatusInternalServerError, msg(err))
		return
	}

	var stats []pipeStat
	for _, pid := range selectedPipes {
		pipe := res.Tables.PipeByID(pid)
		if pipe == nil {
			continue
		}
		ps := pipeStat{PipeID: pid}
		for _, nid := range []string{pipe.From, pipe.To} {
			ns := nodeStat{}
			if st, ok := res.Set.Pressure.ColumnStats(nid); ok {
				ns.Stats = st
				if fig, err := viz.SingleNodeLine(res.Set.Pressure, nid); err == nil {
					if j, err := fig.JSON(); err == nil {
						ns.ChartJSON = j
					}
				}
			} else {
				ns.Missing = nid
			}
			ps.Nodes = append(ps.Nodes, ns)
		}
		stats = append(stats, ps)
	}

	linesJSON := ""
	if len(selectedNodes) > 0 {
		if j, err := viz.NodeLines(res.Set.Pressure, selectedNodes).JSON(); err == nil {
			linesJSON = j
		}
	}

	Render(c, http.StatusOK, "results/show.html", gin.H{
		"Run":           res,
		"Timestep":      timestep,
		"MaxTimestep":   res.Set.Pressure.Periods() - 1,
		"MapJSON":       mapJSON,
		"PipeIDs":       res.Tables.PipeIDs(),
		"NodeIDs":       res.Tables.NodeIDs(),
		"SelectedPipes": selectedPipes,
		"SelectedNodes": selectedNodes,
		"PipeStats":     stats,
		"LinesJSON":     linesJSON,
		"Table":         tableFor(res.Set.Pressure, selectedNodes),
	})
}

// resultTable is the node-pressure matrix shown in the table view,
// restricted to the selected nodes.
type resultTable struct {
	IDs  []string
	Rows []tableRow
}

type tableRow struct {
	Time   int
	Values []float64
}

func tableFor(pressure *results.TimeSeries, nodeIDs []string) *resultTable {
	if len(nodeIDs) == 0 {
		return nil
	}
	cols := make([][]float64, 0, len(nodeIDs))
	ids := make([]string, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if col, ok := pressure.Column(id); ok {
			cols = append(cols, col)
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	t := &resultTable{IDs: ids}
	for i, sec := range pressure.Times {
		row := tableRow{Time: sec, Values: make([]float64, len(cols))}
		for j := range cols {
			row.Values[j] = cols[j][i]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// DownloadPressure streams the pressure matrix as CSV.
func (h *ResultsHandler) DownloadPressure(c *gin.Context) {
	h.download(c, "pressure.csv", func(res *services.RunResult) *results.TimeSeries {
		return res.Set.Pressure
	})
}

// DownloadFlow streams the flowrate matrix as CSV.
func (h *ResultsHandler) DownloadFlow(c *gin.Context) {
	h.download(c, "flowrate.csv", func(res *services.RunResult) *results.TimeSeries {
		return res.Set.Flow
	})
}

// Discard throws a run away, freeing its cache entry and work dir.
func (h *ResultsHandler) Discard(c *gin.Context) {
	runID := c.Param("run")
	res := h.simService.Result(runID)
	h.simService.Drop(runID)
	if res != nil {
		c.Redirect(http.StatusFound, projectPath(res.Project))
		return
	}
	c.Redirect(http.StatusFound, "/projects")
}

func (h *ResultsHandler) download(c *gin.Context, name string, pick func(*services.RunResult) *results.TimeSeries) {
	res := h.simService.Result(c.Param("run"))
	if res == nil {
		notFound(c, "Simulation run")
		return
	}
	var buf bytes.Buffer
	if err := pick(res).WriteCSV(&buf); err != nil {
		RenderError(c, http.StatusInternalServerError, msg(err))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// selection reads a multi-select query param ("J1,J2" or repeated keys).
func selection(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
