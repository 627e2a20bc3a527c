package network

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate = validator.New()

// Report collects everything wrong with a network, each problem paired
// with a suggestion the UI shows next to it.
type Report struct {
	Errors      []string `json:"errors"`
	Suggestions []string `json:"suggestions"`
}

// OK reports whether the network passed every check.
func (r *Report) OK() bool { return len(r.Errors) == 0 }

func (r *Report) add(err, suggestion string) {
	r.Errors = append(r.Errors, err)
	r.Suggestions = append(r.Suggestions, suggestion)
}

// Validate runs schema checks on every row, then the cross-table checks:
// duplicate ids, pipes touching unknown nodes, demands at missing nodes,
// and isolated junctions. Tanks and reservoirs may be unconnected.
func Validate(t *Tables) *Report {
	rep := &Report{}

	for i, n := range t.Nodes {
		if err := validate.Struct(n); err != nil {
			rep.add(fmt.Sprintf("Node row %d (%s): %s", i+1, n.ID, schemaMsg(err)),
				"Fix the node row so that every column holds a valid value.")
		}
	}
	for i, p := range t.Pipes {
		if err := validate.Struct(p); err != nil {
			rep.add(fmt.Sprintf("Pipe row %d (%s): %s", i+1, p.ID, schemaMsg(err)),
				"Length, diameter and roughness must be positive numbers.")
		}
	}
	for i, d := range t.Demands {
		if err := validate.Struct(d); err != nil {
			rep.add(fmt.Sprintf("Demand row %d (%s): %s", i+1, d.NodeID, schemaMsg(err)),
				"Demands need a node id and a non-negative flow.")
		}
	}

	nodeIDs := make(map[string]bool, len(t.Nodes))
	for _, n := range t.Nodes {
		if n.ID == "" {
			continue
		}
		if nodeIDs[n.ID] {
			rep.add(fmt.Sprintf("Duplicate node ID: %s", n.ID),
				"Remove or rename duplicate node IDs.")
		}
		nodeIDs[n.ID] = true
	}

	pipeIDs := make(map[string]bool, len(t.Pipes))
	for _, p := range t.Pipes {
		if p.ID == "" {
			continue
		}
		if pipeIDs[p.ID] {
			rep.add(fmt.Sprintf("Duplicate pipe ID: %s", p.ID),
				"Ensure each pipe ID is unique.")
		}
		pipeIDs[p.ID] = true
	}

	for _, p := range t.Pipes {
		if p.From != "" && !nodeIDs[p.From] {
			rep.add(fmt.Sprintf("Pipe %s connects from unknown node '%s'", p.ID, p.From),
				fmt.Sprintf("Add node '%s' to the node table.", p.From))
		}
		if p.To != "" && !nodeIDs[p.To] {
			rep.add(fmt.Sprintf("Pipe %s connects to unknown node '%s'", p.ID, p.To),
				fmt.Sprintf("Add node '%s' to the node table.", p.To))
		}
	}

	for _, d := range t.Demands {
		if d.NodeID != "" && !nodeIDs[d.NodeID] {
			rep.add(fmt.Sprintf("Demand specified at non-existent node '%s'", d.NodeID),
				fmt.Sprintf("Check demand node '%s' or add it to the node table.", d.NodeID))
		}
	}

	connected := make(map[string]bool)
	for _, p := range t.Pipes {
		connected[p.From] = true
		connected[p.To] = true
	}
	var isolated []string
	for _, n := range t.Nodes {
		if n.Type != TypeJunction {
			continue
		}
		if !connected[n.ID] {
			isolated = append(isolated, n.ID)
		}
	}
	if len(isolated) > 0 {
		rep.add(fmt.Sprintf("Isolated nodes with no connected pipes: %s", strings.Join(isolated, ", ")),
			"Connect isolated nodes with pipes.")
	}

	return rep
}

// schemaMsg flattens a validator error into a single readable sentence.
func schemaMsg(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "gt":
			parts = append(parts, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		case "gte":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s is too long (max %s)", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
