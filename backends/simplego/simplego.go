// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package simplego is a pure Go reference interpreter for graph.Graph computations.
//
// It is not optimized in any way: every value is held as float64 (rounded to its dtype after each
// operation), and every operation is executed by iterating over the indices of its output. Its purpose
// is to check numerically the graphs built by the graph and autodiff packages.
//
// Devices are ignored: Copy is the identity and Multi nodes concatenate (or, if replicated, take the
// first of) their shards.
package simplego

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/gomlx/symgrad/pkg/core/tensors"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Buffer holds the value of one node during execution.
type Buffer struct {
	shape shapes.Shape
	flat  []float64
}

func newBuffer(shape shapes.Shape) *Buffer {
	return &Buffer{shape: shape, flat: make([]float64, shape.Size())}
}

// at returns the value at the given indices.
func (b *Buffer) at(indices []int) float64 {
	return b.flat[b.shape.FlatIndex(indices)]
}

// executor computes the value of node given the values of its inputs.
type executor func(node *graph.Node, inputs []*Buffer) *Buffer

// nodeExecutors is populated by the init() functions of the exec_*.go files.
var nodeExecutors = make(map[graph.NodeType]executor)

// Execute evaluates the outputs nodes, given the values of the parameters they depend on, indexed by
// the parameter names.
//
// It returns an error if a parameter is missing or has a different shape than fed, or if the graph has
// a node type not supported.
func Execute(outputs []*graph.Node, feeds map[string]*tensors.Tensor) (results []*tensors.Tensor, err error) {
	err = exceptions.TryCatch[error](func() {
		results = MustExecute(outputs, feeds)
	})
	return
}

// MustExecute is like Execute, but panics on errors.
func MustExecute(outputs []*graph.Node, feeds map[string]*tensors.Tensor) []*tensors.Tensor {
	values := make(map[*graph.Node]*Buffer)
	var numExecuted int
	for _, output := range outputs {
		output.AssertValid()
		for _, node := range graph.Ancestors(output) {
			if _, found := values[node]; found {
				continue
			}
			values[node] = executeNode(node, values, feeds)
			numExecuted++
		}
	}
	if klog.V(2).Enabled() {
		klog.Infof("simplego: executed %d nodes for %d outputs", numExecuted, len(outputs))
	}
	results := make([]*tensors.Tensor, len(outputs))
	for ii, output := range outputs {
		buf := values[output]
		results[ii] = tensors.FromFlat(buf.shape, buf.flat)
	}
	return results
}

func executeNode(node *graph.Node, values map[*graph.Node]*Buffer, feeds map[string]*tensors.Tensor) *Buffer {
	switch node.Type() {
	case graph.NodeTypeParameter:
		name := node.ParameterName()
		feed, found := feeds[name]
		if !found {
			panic(errors.Errorf("simplego: no value fed for parameter %q", name))
		}
		if !feed.Shape().Equal(node.Shape()) {
			panic(errors.Errorf("simplego: parameter %q has shape %s, but was fed a value with shape %s",
				name, node.Shape(), feed.Shape()))
		}
		return &Buffer{shape: node.Shape(), flat: feed.Flat()}

	case graph.NodeTypeConstant:
		buf := newBuffer(node.Shape())
		value := node.ConstantValue()
		for ii := range buf.flat {
			buf.flat[ii] = value
		}
		return buf
	}

	exec, found := nodeExecutors[node.Type()]
	if !found {
		panic(errors.Errorf("simplego: node type %s not supported, in node %s", node.Type(), node))
	}
	inputs := make([]*Buffer, node.NumInputs())
	for ii, input := range node.Inputs() {
		inputs[ii] = values[input]
	}
	buf := exec(node, inputs)
	dtype := node.DType()
	for ii, value := range buf.flat {
		buf.flat[ii] = dtype.Round(value)
	}
	return buf
}
