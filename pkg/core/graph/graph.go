// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package graph holds the immutable, content-addressed computation graph that the autodiff package
// differentiates.
//
// The main elements in the package are:
//
//   - Graph: the owner of the nodes. It interns every node by its structure, so building the same
//     operation twice on the same inputs returns the same *Node.
//
//   - Node: the result of one primitive operation (see NodeType). Nodes are never mutated after
//     they are created, and the *Node pointer can be used as a map key.
//
//   - Builders: Add, Mul, ReduceSum, Reshape, Permute, Shard, etc. Higher level operations (Sub, Div,
//     Exp, Cos, ...) are expressed as compositions of the primitives.
//
// # Error Handling
//
// Builders "throw" errors with panic(), with meaningful messages and a stack trace, the same way
// exceptions.Panicf does. Use exceptions.TryCatch[error] to convert them back to an error where needed.
//
// # Broadcasting
//
// There is no implicit broadcasting: binary operations require operands of the same shape.
// Use Expand (for axes of dimension 1) to broadcast explicitly.
package graph

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/gomlx/symgrad/pkg/support/xslices"
	"k8s.io/klog/v2"
)

// DefaultDevice is the device of nodes not explicitly placed elsewhere.
const DefaultDevice = "CPU"

// Graph owns a set of interned Node objects.
//
// It is safe to build nodes from multiple goroutines concurrently.
type Graph struct {
	name string

	mu       sync.Mutex
	nodes    []*Node
	interned map[string]*Node
}

// NewGraph creates an empty Graph with the given name, used only for printing.
func NewGraph(name string) *Graph {
	return &Graph{
		name:     name,
		interned: make(map[string]*Node),
	}
}

// Name of the graph.
func (g *Graph) Name() string { return g.name }

// AssertValid panics if the graph is nil.
func (g *Graph) AssertValid() {
	if g == nil {
		exceptions.Panicf("the Graph is nil")
	}
}

// NumNodes returns the number of distinct nodes created so far.
func (g *Graph) NumNodes() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// Nodes returns a copy of the slice of all nodes of the graph, in creation (and hence topological) order.
func (g *Graph) Nodes() []*Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*Node(nil), g.nodes...)
}

// NodeById returns the node with the given id. It panics if the id is out of range.
func (g *Graph) NodeById(id NodeId) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	if int(id) < 0 || int(id) >= len(g.nodes) {
		exceptions.Panicf("NodeById(%d): graph %q has only %d nodes", id, g.name, len(g.nodes))
	}
	return g.nodes[id]
}

// String pretty-prints the whole graph, one node per line.
func (g *Graph) String() string {
	if g == nil {
		return "Graph(nil)!?"
	}
	nodes := g.Nodes()
	parts := []string{fmt.Sprintf("Graph %q: %d nodes", g.name, len(nodes))}
	for _, node := range nodes {
		parts = append(parts, "\t"+node.String())
	}
	return strings.Join(parts, "\n")
}

// internKey is the structural identity of a node: two nodes with the same key are the same node.
func internKey(nodeType NodeType, shape shapes.Shape, device string, params nodeParams, inputs []*Node) string {
	var sb strings.Builder
	sb.WriteString(nodeType.String())
	sb.WriteByte('|')
	sb.WriteString(shape.String())
	sb.WriteByte('|')
	sb.WriteString(device)
	sb.WriteByte('|')
	if params != nil {
		sb.WriteString(params.String())
	}
	sb.WriteByte('|')
	sb.WriteString(strings.Join(xslices.Map(inputs, func(input *Node) string {
		return fmt.Sprintf("%d", input.id)
	}), ","))
	return sb.String()
}

// newNode returns the interned node with the given structure, creating it if it doesn't exist yet.
func (g *Graph) newNode(nodeType NodeType, shape shapes.Shape, device string, params nodeParams, inputs ...*Node) *Node {
	g.AssertValid()
	for ii, input := range inputs {
		input.AssertValid()
		if input.graph != g {
			exceptions.Panicf("%s: input #%d (%s) belongs to graph %q, not to graph %q",
				nodeType, ii, input, input.graph.name, g.name)
		}
	}
	key := internKey(nodeType, shape, device, params, inputs)
	g.mu.Lock()
	defer g.mu.Unlock()
	if node, found := g.interned[key]; found {
		return node
	}
	node := &Node{
		graph:    g,
		id:       NodeId(len(g.nodes)),
		nodeType: nodeType,
		shape:    shape,
		device:   device,
		inputs:   slices.Clone(inputs),
		params:   params,
	}
	g.nodes = append(g.nodes, node)
	g.interned[key] = node
	if klog.V(3).Enabled() {
		klog.Infof("graph %q: new node %s", g.name, node)
	}
	return node
}
