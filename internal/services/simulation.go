package services

import (
	"context"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"hydronet/internal/db"
	"hydronet/internal/metrics"
	"hydronet/internal/models"
	"hydronet/internal/network"
	"hydronet/internal/results"
	"hydronet/internal/sim"
	"hydronet/internal/utils"
)

// How long finished results stay available on the results pages.
const resultTTL = 30 * time.Minute

// RunResult is what the cache holds for one finished simulation.
type RunResult struct {
	RunID   string
	Project uint
	Tables  *network.Tables
	Set     *results.ResultSet
	Info    *sim.RunInfo
}

// SimulationService runs the solver and keeps recent results around
// for the results views and CSV downloads.
type SimulationService struct {
	runner *sim.Runner
	mu     sync.Mutex // one solver invocation at a time per process
}

var (
	simService *SimulationService
	simOnce    sync.Once
)

// GetSimulationService returns the singleton simulation service.
func GetSimulationService() *SimulationService {
	simOnce.Do(func() {
		simService = &SimulationService{runner: sim.NewRunner()}
		go simService.janitor()
	})
	return simService
}

// janitor sweeps expired results out of the cache so their work dirs
// are reclaimed even when nobody visits the results page again.
func (s *SimulationService) janitor() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		utils.GetCache().PurgeExpired()
	}
}

// Run executes the solver for a project's network, records the run in
// the database and caches the decoded results keyed by run id.
func (s *SimulationService) Run(ctx context.Context, project *models.Project, t *network.Tables) (*RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := metrics.Get()
	set, info, err := s.runner.Run(ctx, t, project.Name)

	run := models.SimulationRun{ProjectID: project.ID, Status: models.RunOK}
	if info != nil {
		run.RunID = info.RunID
		run.DurationMs = info.Duration.Milliseconds()
		run.Periods = info.Periods
		run.Warnings = strings.Join(info.Warnings, "\n")
		m.SolverDuration.Observe(info.Duration.Seconds())
	}
	if err != nil {
		run.Status = models.RunFailed
		run.Error = err.Error()
		m.SimulationsTotal.WithLabelValues("failed").Inc()
	} else {
		m.SimulationsTotal.WithLabelValues("ok").Inc()
	}
	if run.RunID != "" {
		if dberr := db.DB.Create(&run).Error; dberr != nil {
			log.Printf("Failed to record simulation run %s: %v", run.RunID, dberr)
		}
	}
	if err != nil {
		s.cleanup(info)
		return nil, err
	}

	res := &RunResult{RunID: info.RunID, Project: project.ID, Tables: t, Set: set, Info: info}
	s.store(res)
	log.Printf("Simulation %s finished: %s, %d periods in %s", info.RunID, t.Summary(), info.Periods, info.Duration)
	return res, nil
}

// store caches a finished run; when the entry leaves the cache for any
// reason its solver work dir is removed along with it.
func (s *SimulationService) store(res *RunResult) {
	s.storeFor(res, resultTTL)
}

func (s *SimulationService) storeFor(res *RunResult, ttl time.Duration) {
	utils.GetCache().SetWithEvict(cacheKey(res.RunID), res, ttl, func(data interface{}) {
		if r, ok := data.(*RunResult); ok {
			s.cleanup(r.Info)
		}
	})
}

// Result returns a cached run, or nil when it expired.
func (s *SimulationService) Result(runID string) *RunResult {
	if v := utils.GetCache().Get(cacheKey(runID)); v != nil {
		if res, ok := v.(*RunResult); ok {
			return res
		}
	}
	return nil
}

// Drop evicts a run; the eviction hook removes its work dir.
func (s *SimulationService) Drop(runID string) {
	utils.GetCache().Delete(cacheKey(runID))
}

func (s *SimulationService) cleanup(info *sim.RunInfo) {
	if info == nil || info.Dir == "" {
		return
	}
	if err := os.RemoveAll(info.Dir); err != nil {
		log.Printf("Failed to remove run dir %s: %v", info.Dir, err)
	}
}

func cacheKey(runID string) string { return "sim:run:" + runID }
