// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/symgrad/pkg/core/dtypes"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/gomlx/symgrad/pkg/support/xslices"
)

// NodeId is a unique identifier of a Node within its Graph, given in creation order.
type NodeId int

// Node represents the result of a primitive operation in the computation graph, and can be used as
// input to further operations.
//
// Nodes are immutable and content-addressed: building the same operation on the same inputs with the
// same attributes returns the very same *Node. So the pointer itself is the node identity, and can be
// used as a map key.
//
// Node.String allows for a pretty-printing of node. To see the full graph with all nodes, use Graph.String.
type Node struct {
	graph    *Graph
	id       NodeId
	nodeType NodeType
	shape    shapes.Shape
	device   string

	// inputs are the edges of the computation graph.
	inputs []*Node

	// params holds the static attributes of the node, if any. See the node*Params types.
	params nodeParams
}

// nodeParams are the static (non-node) attributes of an operation.
// Its String() is part of the node interning key, so it must be deterministic.
type nodeParams interface {
	String() string
}

type parameterParams struct{ name string }

func (p *parameterParams) String() string { return strconv.Quote(p.name) }

type constantParams struct{ value float64 }

func (p *constantParams) String() string { return strconv.FormatFloat(p.value, 'g', -1, 64) }

type reduceParams struct {
	op   ReduceOpType
	axes []int
}

func (p *reduceParams) String() string { return fmt.Sprintf("%s, axes=%v", p.op, p.axes) }

type permuteParams struct{ permutation []int }

func (p *permuteParams) String() string { return fmt.Sprintf("%v", p.permutation) }

// paddingParams is used both by Pad (before/after amounts) and Shrink (start/end bounds).
type paddingParams struct{ ranges [][2]int }

func (p *paddingParams) String() string { return fmt.Sprintf("%v", p.ranges) }

type flipParams struct{ axes []int }

func (p *flipParams) String() string { return fmt.Sprintf("axes=%v", p.axes) }

type multiParams struct{ axis int }

func (p *multiParams) String() string { return fmt.Sprintf("axis=%d", p.axis) }

// Graph that holds this Node.
func (n *Node) Graph() *Graph {
	if n == nil {
		return nil
	}
	return n.graph
}

// Id is the unique id of this node within the Graph.
func (n *Node) Id() NodeId { return n.id }

// Type of the primitive operation.
func (n *Node) Type() NodeType {
	if n == nil {
		return NodeTypeInvalid
	}
	return n.nodeType
}

// Shape of the Node's output.
func (n *Node) Shape() shapes.Shape {
	if n == nil {
		return shapes.Shape{}
	}
	return n.shape
}

// DType returns the DType of the node's shape.
func (n *Node) DType() dtypes.DType { return n.Shape().DType }

// Rank returns the rank of the node's shape.
func (n *Node) Rank() int { return n.Shape().Rank() }

// IsScalar returns whether the node's shape is a scalar.
func (n *Node) IsScalar() bool { return n.Shape().IsScalar() }

// Device where the node value lives. For Multi nodes it is the comma separated list of devices,
// see Devices.
func (n *Node) Device() string { return n.device }

// Inputs are the other nodes that are direct inputs (operands) to the node, in order.
// The returned slice must not be modified.
func (n *Node) Inputs() []*Node { return n.inputs }

// NumInputs is the number of operands of the node.
func (n *Node) NumInputs() int { return len(n.inputs) }

// AssertValid panics if n is nil, or if it is not attached to a graph.
func (n *Node) AssertValid() {
	if n == nil {
		exceptions.Panicf("Node is nil")
	}
	if n.graph == nil {
		exceptions.Panicf("Node %d is not attached to a graph", n.id)
	}
}

func (n *Node) assertType(nodeType NodeType) {
	n.AssertValid()
	if n.nodeType != nodeType {
		exceptions.Panicf("node %s is not of type %s", n, nodeType)
	}
}

// ParameterName returns the name of a Parameter node. It panics for other node types.
func (n *Node) ParameterName() string {
	n.assertType(NodeTypeParameter)
	return n.params.(*parameterParams).name
}

// ConstantValue returns the value a Constant node is filled with. It panics for other node types.
func (n *Node) ConstantValue() float64 {
	n.assertType(NodeTypeConstant)
	return n.params.(*constantParams).value
}

// ReduceParams returns the reduction type and the reduced axes of a ReduceAxis node.
// It panics for other node types.
func (n *Node) ReduceParams() (ReduceOpType, []int) {
	n.assertType(NodeTypeReduceAxis)
	p := n.params.(*reduceParams)
	return p.op, slices.Clone(p.axes)
}

// Permutation returns the axes permutation of a Permute node: output axis i is input axis permutation[i].
func (n *Node) Permutation() []int {
	n.assertType(NodeTypePermute)
	return slices.Clone(n.params.(*permuteParams).permutation)
}

// Paddings returns the (before, after) padding amounts per axis of a Pad node.
func (n *Node) Paddings() [][2]int {
	n.assertType(NodeTypePad)
	return slices.Clone(n.params.(*paddingParams).ranges)
}

// ShrinkBounds returns the [start, end) bounds per axis of a Shrink node.
func (n *Node) ShrinkBounds() [][2]int {
	n.assertType(NodeTypeShrink)
	return slices.Clone(n.params.(*paddingParams).ranges)
}

// FlipAxes returns the axes reversed by a Flip node.
func (n *Node) FlipAxes() []int {
	n.assertType(NodeTypeFlip)
	return slices.Clone(n.params.(*flipParams).axes)
}

// ShardAxis returns the axis along which a Multi node is split across its devices,
// or -1 if the value is replicated in every device.
func (n *Node) ShardAxis() int {
	n.assertType(NodeTypeMulti)
	return n.params.(*multiParams).axis
}

// Devices returns the devices of a Multi node, one per input (shard).
// For other nodes it returns a slice with its only device.
func (n *Node) Devices() []string {
	if n.Type() != NodeTypeMulti {
		return []string{n.device}
	}
	return xslices.Map(n.inputs, func(shard *Node) string { return shard.device })
}

// String implements fmt.Stringer, with a one line description of the node.
func (n *Node) String() string {
	if n == nil {
		return "Node(nil)"
	}
	if n.graph == nil {
		return "Node(invalid graph)"
	}
	parts := xslices.Map(n.inputs, func(input *Node) string { return fmt.Sprintf("#%d", input.id) })
	if n.params != nil {
		parts = append(parts, n.params.String())
	}
	str := fmt.Sprintf("#%d %s(%s) -> %s", n.id, n.nodeType, strings.Join(parts, ", "), n.shape)
	if n.device != DefaultDevice {
		str += " @" + n.device
	}
	if n.shape.Ok() {
		str += " - mem: " + humanize.Bytes(uint64(n.shape.Memory()))
	}
	return str
}

// MaxStringLength is the length to which TruncatedString cuts node descriptions in error messages.
const MaxStringLength = 1000

// TruncatedString returns a description of the node and of all the nodes it depends on, one per line,
// cut to at most maxLength bytes.
func (n *Node) TruncatedString(maxLength int) string {
	if n == nil {
		return "Node(nil)"
	}
	var sb strings.Builder
	for _, node := range Ancestors(n) {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(node.String())
		if sb.Len() > maxLength {
			break
		}
	}
	str := sb.String()
	if len(str) > maxLength {
		str = str[:maxLength] + "..."
	}
	return str
}

// Ancestors returns n and all nodes it depends on, ordered by their Id, which is always a valid
// topological order (producers before consumers), ending with n.
func Ancestors(n *Node) []*Node {
	seen := map[*Node]bool{n: true}
	stack := []*Node{n}
	var all []*Node
	for len(stack) > 0 {
		var node *Node
		node, stack = xslices.Pop(stack)
		all = append(all, node)
		for _, input := range node.inputs {
			if !seen[input] {
				seen[input] = true
				stack = append(stack, input)
			}
		}
	}
	slices.SortFunc(all, func(a, b *Node) int { return int(a.id) - int(b.id) })
	return all
}
