// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/symgrad/pkg/core/shapes"
)

// Copy transfers x to the given device. It returns x itself if it is already there.
func Copy(x *Node, device string) *Node {
	x.AssertValid()
	if device == "" {
		exceptions.Panicf("Copy(%s): empty device name", x)
	}
	if x.device == device {
		return x
	}
	return x.graph.newNode(NodeTypeCopy, x.shape.Clone(), device, nil, x)
}

// Multi groups shards living on different devices into one logical value.
//
// If axis >= 0 the logical value is the concatenation of the shards along axis, and all shards must
// have the same shape. If axis < 0 the value is replicated: every shard holds the full value.
//
// The device of the Multi node is the list of the shards' devices joined by ",".
func Multi(axis int, shards ...*Node) *Node {
	if len(shards) == 0 {
		exceptions.Panicf("Multi requires at least one shard")
	}
	first := shards[0]
	first.AssertValid()
	for ii, shard := range shards {
		shard.AssertValid()
		if !shard.shape.Equal(first.shape) {
			exceptions.Panicf("Multi: shard #%d has shape %s, but shard #0 has shape %s", ii, shard.shape, first.shape)
		}
	}
	if axis < 0 {
		axis = -1
	} else if axis >= first.Rank() {
		exceptions.Panicf("Multi: axis %d out of range for shards of shape %s", axis, first.shape)
	}
	dims := slices.Clone(first.shape.Dimensions)
	if axis >= 0 {
		dims[axis] *= len(shards)
	}
	devices := make([]string, len(shards))
	for ii, shard := range shards {
		devices[ii] = shard.device
	}
	return first.graph.newNode(NodeTypeMulti, shapes.Make(first.DType(), dims...), strings.Join(devices, ","),
		&multiParams{axis: axis}, shards...)
}

// Shard splits x into equal pieces along axis, one per device, and returns the Multi node grouping them.
// If axis < 0 every device receives a copy of the full x.
//
// The dimension of the sharded axis must be divisible by the number of devices.
func Shard(x *Node, devices []string, axis int) *Node {
	x.AssertValid()
	numDevices := len(devices)
	if numDevices == 0 {
		exceptions.Panicf("Shard(%s): no devices given", x)
	}
	if axis < 0 {
		shards := make([]*Node, numDevices)
		for ii, device := range devices {
			shards[ii] = Copy(x, device)
		}
		return Multi(-1, shards...)
	}
	if axis >= x.Rank() {
		exceptions.Panicf("Shard(%s): axis %d out of range", x.shape, axis)
	}
	dim := x.shape.Dimensions[axis]
	if dim%numDevices != 0 {
		exceptions.Panicf("Shard(%s): dimension %d of axis %d not divisible by the %d devices",
			x.shape, dim, axis, numDevices)
	}
	chunk := dim / numDevices
	shards := make([]*Node, numDevices)
	for ii, device := range devices {
		bounds := make([][2]int, x.Rank())
		for a, d := range x.shape.Dimensions {
			bounds[a] = [2]int{0, d}
		}
		bounds[axis] = [2]int{ii * chunk, (ii + 1) * chunk}
		shards[ii] = Copy(Shrink(x, bounds), device)
	}
	return Multi(axis, shards...)
}
