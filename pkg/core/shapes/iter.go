// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"iter"

	"github.com/pkg/errors"
)

// Strides returns the strides for each axis of the shape, assuming a "row-major" layout
// in memory.
//
// Notice the strides are **not in bytes**, but in indices.
func (s Shape) Strides() (strides []int) {
	rank := s.Rank()
	if rank == 0 {
		return
	}
	strides = make([]int, rank)
	currentStride := 1
	for axis := rank - 1; axis >= 0; axis-- {
		strides[axis] = currentStride
		currentStride *= s.Dimensions[axis]
	}
	return
}

// FlatIndex converts per-axis indices into the row-major flat index.
func (s Shape) FlatIndex(indices []int) int {
	if len(indices) != s.Rank() {
		panic(errors.Errorf("Shape.FlatIndex given len(indices) == %d, want it to be equal to the rank %d", len(indices), s.Rank()))
	}
	flat := 0
	for axis, idx := range indices {
		flat = flat*s.Dimensions[axis] + idx
	}
	return flat
}

// Iter iterates sequentially over all possible indices of the given shape.
//
// It yields the flat index (counter) and a slice of indices for each axis.
//
// To avoid allocating the slice of indices, the yielded indices is owned by the Iter() method:
// don't change it inside the loop.
func (s Shape) Iter() iter.Seq2[int, []int] {
	indices := make([]int, s.Rank())
	return s.IterOn(indices)
}

// IterOn iterates over all possible indices of the given shape, updating the given indices slice.
//
// It expects len(indices) == s.Rank(). It will panic otherwise.
// The iteration is empty for zero-sized shapes.
func (s Shape) IterOn(indices []int) iter.Seq2[int, []int] {
	if len(indices) != s.Rank() {
		panic(errors.Errorf("Shape.IterOn given len(indices) == %d, want it to be equal to the rank %d", len(indices), s.Rank()))
	}
	return func(yield func(int, []int) bool) {
		if !s.Ok() || s.IsZeroSize() {
			return
		}
		for i := range indices {
			indices[i] = 0
		}
		rank := s.Rank()
		flatIdx := 0
	yielder:
		for {
			if !yield(flatIdx, indices) {
				return
			}
			flatIdx++

			// Row-major order: the last index changes fastest.
			for axis := rank - 1; axis >= 0; axis-- {
				indices[axis]++
				if indices[axis] < s.Dimensions[axis] {
					continue yielder
				}
				indices[axis] = 0
			}
			break
		}
	}
}
