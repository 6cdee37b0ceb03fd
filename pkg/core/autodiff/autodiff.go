// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package autodiff implements symbolic reverse-mode automatic differentiation over the graph package
// computation graphs.
//
// Gradients are themselves graph nodes: ComputeGradient never evaluates numbers, it only builds new nodes.
// Since the gradient is a graph, higher order derivatives can be computed by differentiating it again.
//
// Conventions used in this package:
//
//   - root: the value being differentiated. It doesn't need to be a scalar: the caller provides the
//     gradient of the root (the "seed"), with the same shape as the root.
//   - targets: the nodes with respect to which the gradient of root is computed.
//   - v: the accumulated gradient of the root with respect to the node being processed. The gradient
//     rule of each NodeType converts it to the contributions to each of the node's inputs.
//
// Detach nodes block the gradient: nothing flows into their inputs.
package autodiff

import (
	"github.com/gomlx/exceptions"
	. "github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/core/metadata"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ComputeGradient returns the gradient of root with respect to every node reached by the gradient flow
// from root to the targets, given rootGradient, the gradient of the final value with respect to root.
//
// The returned map always includes root (mapped to rootGradient), and every target reachable from root
// without crossing a Detach node. Targets without an entry receive no gradient: callers should treat it
// as zero.
//
// If meta is not nil, every gradient contribution created for the inputs of a node with a metadata record
// gets a copy of that record, flagged as Backward. The first record added for a node is kept.
//
// It returns an *UnsupportedGradientError if the gradient has to flow through a node type without a
// gradient rule, or an *ArityMismatchError if a gradient rule is broken. Use errors.As to check for them.
func ComputeGradient(meta *metadata.Table, root, rootGradient *Node, targets ...*Node) (
	gradients map[*Node]*Node, err error) {
	err = exceptions.TryCatch[error](func() {
		gradients = MustComputeGradient(meta, root, rootGradient, targets...)
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "ComputeGradient(root=#%d)", root.Id())
	}
	return gradients, nil
}

// MustComputeGradient is like ComputeGradient, but panics on error, following the graph building style
// of the graph package.
func MustComputeGradient(meta *metadata.Table, root, rootGradient *Node, targets ...*Node) map[*Node]*Node {
	validateInputs(root, rootGradient, targets)
	order := deepWalk(root, targets)
	if klog.V(1).Enabled() {
		klog.Infof("ComputeGradient(#%d): %d nodes on the path to %d targets", root.Id(), len(order), len(targets))
	}

	gradients := map[*Node]*Node{root: rootGradient}
	for ii := len(order) - 1; ii >= 0; ii-- {
		node := order[ii]
		v, found := gradients[node]
		if !found {
			// No gradient arrived to the node, e.g.: all its consumers had no gradient to its output.
			continue
		}
		rule, found := gradientRules[node.Type()]
		if !found {
			panic(errors.WithStack(&UnsupportedGradientError{
				NodeType: node.Type(),
				Node:     node.TruncatedString(MaxStringLength),
			}))
		}
		grads := rule(node, v)
		if len(grads) != node.NumInputs() {
			panic(errors.WithStack(&ArityMismatchError{NodeType: node.Type(), Got: len(grads), Want: node.NumInputs()}))
		}
		checkGradientShapes(node, grads)
		if klog.V(2).Enabled() {
			klog.Infof("gradient of %s: %d contributions", node, countNonNil(grads))
		}

		forwardRecord, hasRecord := meta.Get(node)
		for inputIdx, input := range node.Inputs() {
			grad := grads[inputIdx]
			if grad == nil {
				continue
			}
			if accumulated, found := gradients[input]; found {
				gradients[input] = Add(accumulated, grad)
			} else {
				gradients[input] = grad
			}
			if hasRecord {
				meta.Add(grad, forwardRecord.AsBackward())
			}
		}
	}
	if klog.V(1).Enabled() {
		klog.Infof("ComputeGradient(#%d): %d gradients", root.Id(), len(gradients))
	}
	return gradients
}

// Gradient returns the gradient of root with respect to each of the targets, using ones as the gradient
// of root. Targets not reached by the gradient get zeros.
//
// It panics on errors, see ComputeGradient.
func Gradient(meta *metadata.Table, root *Node, targets ...*Node) []*Node {
	root.AssertValid()
	gradients := MustComputeGradient(meta, root, OnesLike(root), targets...)
	results := make([]*Node, len(targets))
	for ii, target := range targets {
		if grad, found := gradients[target]; found {
			results[ii] = grad
		} else {
			results[ii] = ZerosLike(target)
		}
	}
	return results
}

func validateInputs(root, rootGradient *Node, targets []*Node) {
	root.AssertValid()
	rootGradient.AssertValid()
	if rootGradient.Graph() != root.Graph() {
		exceptions.Panicf("root gradient %s belongs to a different graph than root %s", rootGradient, root)
	}
	if !rootGradient.Shape().Equal(root.Shape()) {
		exceptions.Panicf("root gradient must have the same shape as root %s, got %s", root.Shape(), rootGradient.Shape())
	}
	for ii, target := range targets {
		target.AssertValid()
		if target.Graph() != root.Graph() {
			exceptions.Panicf("target #%d (%s) belongs to a different graph than root %s", ii, target, root)
		}
	}
}

func countNonNil(nodes []*Node) (count int) {
	for _, node := range nodes {
		if node != nil {
			count++
		}
	}
	return
}
