// Package node declares the read-only contract between the runtime layer and
// the static graph model. The runtime reads only a node's stable identity and
// its independent-control flag; everything else about the graph (ports,
// connections, grouping) stays on the graph side of the boundary.
package node

// Definition is the immutable identity a runtime is constructed with.
type Definition interface {
	// ID returns the node's stable identifier, used as the registry key.
	ID() string

	// Label returns a human-readable name for logs.
	Label() string

	// IndependentControl reports whether the node opts out of registry-wide
	// pause and resume. Stop-all still applies.
	IndependentControl() bool
}

// StaticDefinition is a plain value implementation of Definition for wiring
// layers and tests.
type StaticDefinition struct {
	NodeID      string
	NodeLabel   string
	Independent bool
}

// NewStaticDefinition creates a definition with the given identity.
func NewStaticDefinition(id, label string, independent bool) StaticDefinition {
	return StaticDefinition{NodeID: id, NodeLabel: label, Independent: independent}
}

// ID returns the node's stable identifier.
func (d StaticDefinition) ID() string { return d.NodeID }

// Label returns the node's display name.
func (d StaticDefinition) Label() string { return d.NodeLabel }

// IndependentControl reports the independent-control flag.
func (d StaticDefinition) IndependentControl() bool { return d.Independent }
