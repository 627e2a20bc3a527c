package models

import (
	"encoding/json"
	"time"

	"hydronet/internal/network"
)

// Project is one saved network. The three tables are stored as a JSON
// blob; the database never queries inside them.
type Project struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Name       string    `gorm:"not null" json:"name"`
	Notes      string    `gorm:"type:text" json:"notes"` // markdown
	TablesJSON string    `gorm:"type:text" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Filled on queries, not stored
	RunCount int `gorm:"-" json:"run_count"`
}

// Tables decodes the stored network; an empty project yields empty tables.
func (p *Project) Tables() (*network.Tables, error) {
	t := &network.Tables{}
	if p.TablesJSON == "" {
		return t, nil
	}
	if err := json.Unmarshal([]byte(p.TablesJSON), t); err != nil {
		return nil, err
	}
	return t, nil
}

// SetTables encodes the network into the project.
func (p *Project) SetTables(t *network.Tables) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	p.TablesJSON = string(b)
	return nil
}
