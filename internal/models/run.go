package models

import (
	"time"
)

// SimulationRun statuses.
const (
	RunOK     = "ok"
	RunFailed = "failed"
)

// SimulationRun records one solver invocation against a project.
type SimulationRun struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RunID      string    `gorm:"uniqueIndex;size:36;not null" json:"run_id"` // uuid
	ProjectID  uint      `gorm:"not null;index" json:"project_id"`
	Project    Project   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"project"`
	Status     string    `gorm:"size:16;not null" json:"status"`
	Error      string    `gorm:"type:text" json:"error"`
	DurationMs int64     `json:"duration_ms"`
	Periods    int       `json:"periods"`
	Warnings   string    `gorm:"type:text" json:"warnings"` // newline separated
	CreatedAt  time.Time `json:"created_at"`
}
