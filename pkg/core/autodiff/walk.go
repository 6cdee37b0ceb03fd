// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autodiff

import (
	. "github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/support/sets"
	"github.com/gomlx/symgrad/pkg/support/xslices"
)

// walker holds the state of one dependency walk. It must not be reused across calls.
type walker struct {
	targets sets.Set[*Node]

	// onPath memoizes whether some input of a node, direct or indirect, is a target.
	onPath map[*Node]bool
}

func newWalker(targets []*Node) *walker {
	return &walker{
		targets: sets.MakeWith(targets...),
		onPath:  make(map[*Node]bool),
	}
}

// isOnTargetPath returns whether any input of node is a target, or is itself on a target path.
// Notice a node is not on a target path just because it is a target.
func (w *walker) isOnTargetPath(start *Node) bool {
	if result, found := w.onPath[start]; found {
		return result
	}
	stack := []*Node{start}
	expanded := sets.Make[*Node]()
	for len(stack) > 0 {
		node := xslices.Last(stack)
		if _, found := w.onPath[node]; found {
			stack = stack[:len(stack)-1]
			continue
		}
		result := false
		for _, input := range node.Inputs() {
			if w.targets.Has(input) {
				result = true
				break
			}
		}
		if !result && !expanded.Has(node) {
			// First time here: resolve the inputs first, then come back to node.
			expanded.Insert(node)
			pushed := false
			for _, input := range node.Inputs() {
				if _, found := w.onPath[input]; !found {
					stack = append(stack, input)
					pushed = true
				}
			}
			if pushed {
				continue
			}
		}
		if !result {
			for _, input := range node.Inputs() {
				if w.onPath[input] {
					result = true
					break
				}
			}
		}
		w.onPath[node] = result
		stack = stack[:len(stack)-1]
	}
	return w.onPath[start]
}

// deepWalk returns the nodes that lie on some path from root to any of the targets, ordered
// so that every node comes after all of its inputs in the list.
//
// Detach nodes stop the walk: they are not included, and neither is anything reachable only through them.
// Nodes not on a target path are pruned, including their inputs.
func deepWalk(root *Node, targets []*Node) []*Node {
	w := newWalker(targets)
	visited := sets.MakeWith(root)
	if root.Type() == NodeTypeDetach || !w.isOnTargetPath(root) {
		return nil
	}

	type frame struct {
		node      *Node
		nextInput int
	}
	var order []*Node
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		inputs := top.node.Inputs()
		if top.nextInput >= len(inputs) {
			order = append(order, top.node)
			stack = stack[:len(stack)-1]
			continue
		}
		input := inputs[top.nextInput]
		top.nextInput++
		if !visited.InsertNew(input) || input.Type() == NodeTypeDetach || !w.isOnTargetPath(input) {
			continue
		}
		stack = append(stack, frame{node: input})
	}
	return order
}
