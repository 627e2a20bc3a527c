package network

import (
	"fmt"
	"strings"
)

// Node types understood by the model. Anything that is not a tank or a
// reservoir is a plain junction.
const (
	TypeJunction  = "node"
	TypeTank      = "tank"
	TypeReservoir = "reservoir"
)

// Node is one row of the node table. Elevation is in meters.
type Node struct {
	Type      string  `json:"type" validate:"required,oneof=node tank reservoir"`
	ID        string  `json:"id" validate:"required,max=31"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Elevation float64 `json:"elevation" validate:"gte=0"`
}

// Pipe is one row of the pipe table. Length in meters, diameter in
// millimeters, roughness is the Hazen-Williams coefficient.
type Pipe struct {
	ID        string  `json:"id" validate:"required,max=31"`
	From      string  `json:"from" validate:"required"`
	To        string  `json:"to" validate:"required"`
	Length    float64 `json:"length" validate:"gt=0"`
	Diameter  float64 `json:"diameter" validate:"gt=0"`
	Roughness float64 `json:"roughness" validate:"gt=0"`
}

// Demand is one row of the demand table, base demand in m3/s.
// Rows with an empty NodeID are ignored on load.
type Demand struct {
	NodeID string  `json:"node_id" validate:"required"`
	Flow   float64 `json:"demand" validate:"gte=0"`
}

// Tables holds the three user-facing tables that describe a network.
type Tables struct {
	Nodes   []Node   `json:"nodes"`
	Pipes   []Pipe   `json:"pipes"`
	Demands []Demand `json:"demands"`
}

// NodeByID returns the node with the given id, or nil.
func (t *Tables) NodeByID(id string) *Node {
	for i := range t.Nodes {
		if t.Nodes[i].ID == id {
			return &t.Nodes[i]
		}
	}
	return nil
}

// PipeByID returns the pipe with the given id, or nil.
func (t *Tables) PipeByID(id string) *Pipe {
	for i := range t.Pipes {
		if t.Pipes[i].ID == id {
			return &t.Pipes[i]
		}
	}
	return nil
}

// NodeIDs returns the node ids in table order.
func (t *Tables) NodeIDs() []string {
	ids := make([]string, len(t.Nodes))
	for i, n := range t.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// PipeIDs returns the pipe ids in table order.
func (t *Tables) PipeIDs() []string {
	ids := make([]string, len(t.Pipes))
	for i, p := range t.Pipes {
		ids[i] = p.ID
	}
	return ids
}

// BaseDemand sums every demand row assigned to the node.
func (t *Tables) BaseDemand(nodeID string) float64 {
	var total float64
	for _, d := range t.Demands {
		if d.NodeID == nodeID {
			total += d.Flow
		}
	}
	return total
}

// NormalizeType maps free-form type cells ("Tank", " RESERVOIR ") onto the
// canonical constants; unknown values become junctions.
func NormalizeType(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case TypeTank:
		return TypeTank
	case TypeReservoir:
		return TypeReservoir
	default:
		return TypeJunction
	}
}

// Summary is a one-line description used in logs and the project list.
func (t *Tables) Summary() string {
	return fmt.Sprintf("%d nodes, %d pipes, %d demands", len(t.Nodes), len(t.Pipes), len(t.Demands))
}
