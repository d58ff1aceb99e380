// Package citation models the lazily discovered citation hierarchy of a corpus.
package citation

import "strconv"

// FetchState tracks whether a node's children have been requested from the reference service.
type FetchState int

const (
	// Unfetched means children were never requested (or the last request failed).
	Unfetched FetchState = iota
	// Fetching means a request for the children is in flight.
	Fetching
	// Fetched means children are known; a fetched node may legitimately have none.
	Fetched
)

func (s FetchState) String() string {
	switch s {
	case Unfetched:
		return "unfetched"
	case Fetching:
		return "fetching"
	case Fetched:
		return "fetched"
	default:
		return "unknown"
	}
}

// Node is one reference label at one hierarchy depth.
// Nodes are only reachable through a Cache, which guards them.
type Node struct {
	label    string
	numeric  bool
	number   int
	value    int
	level    string
	state    FetchState
	children map[string]*Node
	order    []*Node
}

// Entry is a read-only snapshot of a Node.
type Entry struct {
	Label     string
	IsNumeric bool
	Value     int
	Level     string
	State     FetchState
}

// ParseNumber reports whether label is an integer reference and returns its value.
func ParseNumber(label string) (int, bool) {
	n, err := strconv.Atoi(label)
	if err != nil {
		return 0, false
	}
	return n, true
}

func newRoot() *Node {
	return &Node{children: map[string]*Node{}}
}

// newSiblings builds the children returned by one fetch, in service order.
// Numeric labels keep their integer as ordinal. If any sibling is non-numeric,
// every sibling takes its 1-based position instead so the set stays totally ordered.
func newSiblings(level string, labels []string) []*Node {
	nodes := make([]*Node, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	allNumeric := true
	for _, label := range labels {
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		n, ok := ParseNumber(label)
		if !ok {
			allNumeric = false
		}
		nodes = append(nodes, &Node{
			label:    label,
			numeric:  ok,
			number:   n,
			level:    level,
			children: map[string]*Node{},
		})
	}
	for i, node := range nodes {
		if allNumeric {
			node.value = node.number
		} else {
			node.value = i + 1
		}
	}
	return nodes
}

// segment is the node's part of a request URN: the canonical integer for numeric labels.
func (n *Node) segment() string {
	if n.numeric {
		return strconv.Itoa(n.number)
	}
	return n.label
}

func (n *Node) entry() Entry {
	return Entry{
		Label:     n.label,
		IsNumeric: n.numeric,
		Value:     n.value,
		Level:     n.level,
		State:     n.state,
	}
}
