// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

import (
	"math"
	"testing"

	"github.com/gomlx/symgrad/pkg/core/dtypes"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestFromValue(t *testing.T) {
	tensor := FromValue([][]float32{{1, 2, 3}, {4, 5, 6}})
	require.True(t, tensor.Shape().Equal(shapes.Make(dtypes.Float32, 2, 3)))
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Flat())
	assert.Equal(t, 6.0, tensor.At(1, 2))
	assert.Equal(t, [][]float32{{1, 2, 3}, {4, 5, 6}}, tensor.Value())

	scalar := FromValue(int32(7))
	assert.Equal(t, 0, scalar.Rank())
	assert.Equal(t, int32(7), scalar.Value())
	require.Same(t, scalar, FromValue(scalar))

	assert.Equal(t, []bool{true, false}, FromValue([]bool{true, false}).Value())
	half := FromValue([]float16.Float16{float16.Fromfloat32(1.5)})
	assert.Equal(t, []float64{1.5}, half.Flat())
	assert.Equal(t, []float16.Float16{float16.Fromfloat32(1.5)}, half.Value())

	require.Panics(t, func() { FromValue([][]float32{{1, 2}, {3}}) })
	require.Panics(t, func() { FromValue([]float32{}) })
	require.Panics(t, func() { FromValue("string") })
}

func TestFromFlat(t *testing.T) {
	tensor := FromFlat(shapes.Make(dtypes.Int8, 2), []float64{1.7, 200})
	assert.Equal(t, []int8{1, -56}, tensor.Value())
	require.Panics(t, func() { FromFlat(shapes.Make(dtypes.Float32, 3), []float64{1}) })

	zeros := FromShape(shapes.Make(dtypes.Float64, 2, 0))
	assert.Equal(t, 0, zeros.Size())

	tensor = FromFlatDataAndDimensions([]float64{1, 2, 3, 4}, 2, 2)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, tensor.Value())
	assert.Equal(t, "(Float64)[2 2][[1 2] [3 4]]", tensor.String())
	assert.Equal(t, "(Float32)(2.5)", FromScalar(float32(2.5)).String())
}

func TestInDelta(t *testing.T) {
	a := FromValue([]float64{1, math.NaN(), math.Inf(1)})
	b := FromValue([]float64{1.001, math.NaN(), math.Inf(1)})
	assert.True(t, a.InDelta(b, 0.01))
	assert.False(t, a.InDelta(b, 1e-6))
	assert.False(t, a.InDelta(FromValue([]float32{1, 2, 3}), 10))
}
