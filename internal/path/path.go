// Package path extends and smooths the walked route across streamed terrain.
package path

import "github.com/samdwyer/terrainwalk/internal/world"

// Node is one accepted path position, lifted above the terrain.
type Node struct {
	Position world.Vec3
	Sample   world.SampleRef
}

// Path is the sliding window of accepted nodes. Nodes are appended at the
// tail and dropped from the head.
type Path struct {
	nodes []Node
}

// Append adds a node at the tail.
func (p *Path) Append(n Node) {
	p.nodes = append(p.nodes, n)
}

// PopFront drops the head node. It returns false on an empty path.
func (p *Path) PopFront() (Node, bool) {
	if len(p.nodes) == 0 {
		return Node{}, false
	}
	head := p.nodes[0]
	p.nodes = p.nodes[1:]
	return head, true
}

// Len returns the number of nodes.
func (p *Path) Len() int { return len(p.nodes) }

// Nodes returns the nodes head first. The slice must not be modified.
func (p *Path) Nodes() []Node { return p.nodes }

// Last returns the tail node.
func (p *Path) Last() (Node, bool) {
	if len(p.nodes) == 0 {
		return Node{}, false
	}
	return p.nodes[len(p.nodes)-1], true
}

// Tail returns at most n nodes from the end of the path.
func (p *Path) Tail(n int) []Node {
	if n >= len(p.nodes) || n < 0 {
		return p.nodes
	}
	return p.nodes[len(p.nodes)-n:]
}
