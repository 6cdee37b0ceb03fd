// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package xslices

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIota(t *testing.T) {
	assert.Equal(t, []int{2, 3, 4}, Iota(2, 3))
	assert.Equal(t, []float64{0.5, 1.5}, Iota(0.5, 2))
}

func TestArgSort(t *testing.T) {
	// Inverse of a permutation.
	perm := []int{2, 0, 1}
	inv := ArgSort(perm)
	assert.Equal(t, []int{1, 2, 0}, inv)
	for ii, p := range perm {
		assert.Equal(t, ii, inv[p])
	}

	// Stable on ties.
	assert.Equal(t, []int{1, 0, 2}, ArgSort([]float32{3, 1, 3}))
}

func TestPop(t *testing.T) {
	v, s := Pop([]int{1, 2, 3})
	assert.Equal(t, 3, v)
	assert.Equal(t, []int{1, 2}, s)
	v, s = Pop([]int{})
	assert.Equal(t, 0, v)
	assert.Empty(t, s)
}

func TestInDelta(t *testing.T) {
	assert.True(t, InDelta([]float64{1, 2}, []float64{1.00001, 2}, 1e-4))
	assert.False(t, InDelta([]float64{1, 2}, []float64{1.1, 2}, 1e-4))
	assert.False(t, InDelta([]float64{1}, []float64{1, 2}, 1e-4))
	assert.True(t, InDelta([]float64{math.Inf(-1), math.NaN()}, []float64{math.Inf(-1), math.NaN()}, 0))
	assert.False(t, InDelta([]float64{math.Inf(1)}, []float64{1e300}, 1e-4))
}
