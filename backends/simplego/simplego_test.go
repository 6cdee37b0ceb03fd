// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simplego

import (
	"math"
	"testing"

	. "github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/core/dtypes"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/gomlx/symgrad/pkg/core/tensors"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run1 executes a single output with x fed.
func run1(t *testing.T, output *Node, feeds map[string]*tensors.Tensor) *tensors.Tensor {
	results, err := Execute([]*Node{output}, feeds)
	require.NoError(t, err)
	return results[0]
}

func TestElementwise(t *testing.T) {
	g := NewGraph("elementwise")
	x := Parameter(g, "x", shapes.Make(dtypes.Float64, 3))
	y := Parameter(g, "y", shapes.Make(dtypes.Float64, 3))
	feeds := map[string]*tensors.Tensor{
		"x": tensors.FromValue([]float64{1, 4, 0}),
		"y": tensors.FromValue([]float64{2, 4, -1}),
	}
	testCases := []struct {
		name   string
		output *Node
		want   any
	}{
		{"Add", Add(x, y), []float64{3, 8, -1}},
		{"Sub", Sub(x, y), []float64{-1, 0, 1}},
		{"Mul", Mul(x, y), []float64{2, 16, 0}},
		{"Div", Div(x, y), []float64{0.5, 1, 0}},
		{"Pow", Pow(x, y), []float64{1, 256, math.Inf(1)}},
		{"Max", Max(x, y), []float64{2, 4, 0}},
		{"Sqrt", Sqrt(x), []float64{1, 2, 0}},
		{"Exp2", Exp2(y), []float64{4, 16, 0.5}},
		{"Log2", Log2(x), []float64{0, 2, math.Inf(-1)}},
		{"LessThan", LessThan(x, y), []bool{true, false, false}},
		{"Equal", Equal(x, y), []bool{false, true, false}},
		{"Where", Where(GreaterThan(x, y), x, y), []float64{2, 4, 0}},
		{"Detach", Detach(Square(x)), []float64{1, 16, 0}},
		{"Cast", Cast(MulScalar(x, 0.6), dtypes.Int32), []int32{0, 2, 0}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, run1(t, tc.output, feeds).Value())
		})
	}

	got := run1(t, Cos(x), feeds)
	require.True(t, got.InDelta(tensors.FromValue([]float64{math.Cos(1), math.Cos(4), 1}), 1e-12), "got %s", got)
	got = run1(t, Exp(Log(AddScalar(x, 1))), feeds)
	require.True(t, got.InDelta(tensors.FromValue([]float64{2, 5, 1}), 1e-12), "got %s", got)
}

func TestRoundingAndBitcast(t *testing.T) {
	g := NewGraph("rounding")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32))
	third := DivScalar(x, 3)
	got := run1(t, third, map[string]*tensors.Tensor{"x": tensors.FromScalar(float32(1))})
	assert.Equal(t, float32(1)/3, got.Value())

	bits := run1(t, Bitcast(x, dtypes.Int32), map[string]*tensors.Tensor{"x": tensors.FromScalar(float32(1))})
	assert.Equal(t, int32(math.Float32bits(1)), bits.Value())
}

func TestReduce(t *testing.T) {
	g := NewGraph("reduce")
	x := Parameter(g, "x", shapes.Make(dtypes.Float64, 2, 3))
	feeds := map[string]*tensors.Tensor{"x": tensors.FromValue([][]float64{{1, 2, 3}, {4, 5, 6}})}
	assert.Equal(t, [][]float64{{6}, {15}}, run1(t, ReduceSum(x, 1), feeds).Value())
	assert.Equal(t, [][]float64{{4, 5, 6}}, run1(t, ReduceMax(x, 0), feeds).Value())
	assert.Equal(t, [][]float64{{720}}, run1(t, ReduceProd(x, 0, 1), feeds).Value())
}

func TestMovement(t *testing.T) {
	g := NewGraph("movement")
	x := Parameter(g, "x", shapes.Make(dtypes.Float64, 2, 3))
	feeds := map[string]*tensors.Tensor{"x": tensors.FromValue([][]float64{{1, 2, 3}, {4, 5, 6}})}
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}, {5, 6}}, run1(t, Reshape(x, 3, 2), feeds).Value())
	assert.Equal(t, [][]float64{{1, 4}, {2, 5}, {3, 6}}, run1(t, Permute(x, 1, 0), feeds).Value())
	assert.Equal(t, [][]float64{{0, 0, 0, 0}, {1, 2, 3, 0}, {4, 5, 6, 0}},
		run1(t, Pad(x, [][2]int{{1, 0}, {0, 1}}), feeds).Value())
	assert.Equal(t, [][]float64{{5, 6}}, run1(t, Shrink(x, [][2]int{{1, 2}, {1, 3}}), feeds).Value())
	assert.Equal(t, [][]float64{{6, 5, 4}, {3, 2, 1}}, run1(t, Flip(x, 0, 1), feeds).Value())
	assert.Equal(t, [][]float64{{6, 6}, {15, 15}}, run1(t, Expand(ReduceSum(x, 1), 2, 2), feeds).Value())
}

func TestSharding(t *testing.T) {
	g := NewGraph("sharding")
	x := Parameter(g, "x", shapes.Make(dtypes.Float64, 4, 2))
	value := [][]float64{{1, 2}, {3, 4}, {5, 6}, {7, 8}}
	feeds := map[string]*tensors.Tensor{"x": tensors.FromValue(value)}
	sharded := Shard(x, []string{"a", "b"}, 0)
	assert.Equal(t, value, run1(t, sharded, feeds).Value())
	results := must.M1(Execute(sharded.Inputs(), feeds))
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, results[0].Value())
	assert.Equal(t, [][]float64{{5, 6}, {7, 8}}, results[1].Value())
	assert.Equal(t, value, run1(t, Shard(x, []string{"a", "b"}, -1), feeds).Value())
}

func TestExecuteErrors(t *testing.T) {
	g := NewGraph("errors")
	x := Parameter(g, "x", shapes.Make(dtypes.Float64, 2))
	_, err := Execute([]*Node{x}, nil)
	require.ErrorContains(t, err, `no value fed for parameter "x"`)
	_, err = Execute([]*Node{x}, map[string]*tensors.Tensor{"x": tensors.FromValue([]float32{1, 2})})
	require.ErrorContains(t, err, "was fed a value with shape")
}

func TestNumericGradient(t *testing.T) {
	g := NewGraph("numeric")
	x := Parameter(g, "x", shapes.Make(dtypes.Float64, 3))
	feeds := map[string]*tensors.Tensor{"x": tensors.FromValue([]float64{1, 2, 3})}
	grad := must.M1(NumericGradient(ReduceSum(Square(x), 0), x, feeds, 1e-4))
	require.True(t, grad.InDelta(tensors.FromValue([]float64{2, 4, 6}), 1e-6), "got %s", grad)

	// Errors during the parallel evaluations are returned.
	y := Parameter(g, "y", shapes.Make(dtypes.Float64, 3))
	_, err := NumericGradient(Add(x, y), x, feeds, 1e-4)
	require.Error(t, err)
	_, err = NumericGradient(Add(x, y), y, feeds, 1e-4)
	require.ErrorContains(t, err, "no value fed")
}
