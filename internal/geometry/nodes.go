package geometry

import (
	"fmt"
	"math"
)

// Node is the wire representation of one point in a flashing cross-section.
// Prev/next ids are kept for client-side editor reordering; server-side the
// chain is rebuilt into an ordered slice before anything else happens.
type Node struct {
	ID     string   `json:"node_id"`
	PrevID string   `json:"prev_node_id,omitempty"`
	NextID string   `json:"next_node_id,omitempty"`
	Left   float64  `json:"left"`
	Top    float64  `json:"top"`
	Length *float64 `json:"length,omitempty"`
}

// Validation rule identifiers, one per distinct failure kind.
const (
	RuleNode        = "node"
	RuleDuplicateID = "duplicate_id"
	RuleUnknownRef  = "unknown_ref"
	RuleOneHead     = "one_head"
	RuleOneTail     = "one_tail"
	RuleCycle       = "cycle"
	RuleIncomplete  = "incomplete"
)

type ValidationError struct {
	Rule string
	Msg  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid node chain (%s): %s", e.Rule, e.Msg)
}

func violation(rule, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Rule: rule, Msg: fmt.Sprintf(format, args...)}
}

// Chain is a validated node chain ordered head to tail.
type Chain []Node

// Validate checks a submitted node set and rebuilds it as an ordered chain.
// An empty input is valid and represents an unconfigured flashing. The checks
// run in a fixed order so a given malformed input always reports the same rule.
func Validate(nodes []Node) (Chain, error) {
	if len(nodes) == 0 {
		return Chain{}, nil
	}

	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return nil, violation(RuleNode, "each node must carry a node_id")
		}
		if !finite(n.Left) || !finite(n.Top) {
			return nil, violation(RuleNode, "node %q has non-finite coordinates", n.ID)
		}
		if n.Length != nil && (!finite(*n.Length) || *n.Length < 0) {
			return nil, violation(RuleNode, "node %q has an invalid length override", n.ID)
		}
		if _, dup := byID[n.ID]; dup {
			return nil, violation(RuleDuplicateID, "duplicate node_id %q", n.ID)
		}
		byID[n.ID] = n
	}

	for _, n := range nodes {
		if n.PrevID != "" {
			if _, ok := byID[n.PrevID]; !ok {
				return nil, violation(RuleUnknownRef, "node %q references unknown prev_node_id %q", n.ID, n.PrevID)
			}
		}
		if n.NextID != "" {
			if _, ok := byID[n.NextID]; !ok {
				return nil, violation(RuleUnknownRef, "node %q references unknown next_node_id %q", n.ID, n.NextID)
			}
		}
	}

	var heads, tails []string
	for _, n := range nodes {
		if n.PrevID == "" {
			heads = append(heads, n.ID)
		}
		if n.NextID == "" {
			tails = append(tails, n.ID)
		}
	}
	if len(heads) != 1 {
		return nil, violation(RuleOneHead, "there must be exactly one head, found %d", len(heads))
	}
	if len(tails) != 1 {
		return nil, violation(RuleOneTail, "there must be exactly one tail, found %d", len(tails))
	}

	ordered := make(Chain, 0, len(nodes))
	visited := make(map[string]bool, len(nodes))
	current := heads[0]
	for current != "" {
		if visited[current] {
			return nil, violation(RuleCycle, "node chain contains a cycle at %q", current)
		}
		visited[current] = true
		n := byID[current]
		ordered = append(ordered, n)
		current = n.NextID
	}
	if len(ordered) != len(nodes) {
		return nil, violation(RuleIncomplete, "node chain is broken: walked %d of %d nodes", len(ordered), len(nodes))
	}

	return ordered, nil
}

// Girth returns the total unfolded width of the cross-section: the sum of
// segment lengths along the chain. A per-node length override, when present,
// replaces the Euclidean distance of the segment that starts at that node
// (tapered flashings are not drawn to scale).
func (c Chain) Girth() float64 {
	total := 0.0
	for i := 0; i+1 < len(c); i++ {
		if c[i].Length != nil {
			total += *c[i].Length
			continue
		}
		dx := c[i+1].Left - c[i].Left
		dy := c[i+1].Top - c[i].Top
		total += math.Hypot(dx, dy)
	}
	return total
}

// FoldCount is the number of interior nodes. A straight two-node flashing has
// no folds.
func (c Chain) FoldCount() int {
	if len(c) < 3 {
		return 0
	}
	return len(c) - 2
}

// Reverse returns the chain walked tail to head, with prev/next links swapped.
func (c Chain) Reverse() Chain {
	out := make(Chain, len(c))
	for i, n := range c {
		n.PrevID, n.NextID = n.NextID, n.PrevID
		out[len(c)-1-i] = n
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
