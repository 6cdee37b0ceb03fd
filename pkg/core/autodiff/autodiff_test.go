// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autodiff_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/gomlx/symgrad/backends/simplego"
	"github.com/gomlx/symgrad/pkg/core/autodiff"
	"github.com/gomlx/symgrad/pkg/core/dtypes"
	. "github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/core/metadata"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/gomlx/symgrad/pkg/core/tensors"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradientValues computes the gradient of root (seeded with ones) with respect to the targets, and
// evaluates them.
func gradientValues(t *testing.T, feeds map[string]*tensors.Tensor, root *Node, targets ...*Node) []*tensors.Tensor {
	grads := autodiff.Gradient(nil, root, targets...)
	return must.M1(simplego.Execute(grads, feeds))
}

func TestScenarioA(t *testing.T) {
	g := NewGraph("scenarioA")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 3))
	root := ReduceSum(Mul(x, x), 0)
	gradients, err := autodiff.ComputeGradient(nil, root, OnesLike(root), x)
	require.NoError(t, err)
	require.Contains(t, gradients, x)
	require.Contains(t, gradients, root)

	results := must.M1(simplego.Execute([]*Node{gradients[x]},
		map[string]*tensors.Tensor{"x": tensors.FromValue([]float32{1, 2, 3})}))
	assert.Equal(t, []float32{2, 4, 6}, results[0].Value())
}

func TestScenarioB(t *testing.T) {
	g := NewGraph("scenarioB")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
	root := ReduceAllSum(Permute(x, 1, 0))
	feeds := map[string]*tensors.Tensor{"x": tensors.FromValue([][]float32{{1, 2, 3}, {4, 5, 6}})}
	grad := gradientValues(t, feeds, root, x)[0]
	assert.Equal(t, [][]float32{{1, 1, 1}, {1, 1, 1}}, grad.Value())
}

func TestDiamondAdditivity(t *testing.T) {
	g := NewGraph("diamond")
	x := Parameter(g, "x", shapes.Make(dtypes.Float64, 3))
	feeds := map[string]*tensors.Tensor{"x": tensors.FromValue([]float64{0.5, 1, 2})}
	y := Sin(x)
	z := Square(x)

	gradY := gradientValues(t, feeds, y, x)[0]
	gradZ := gradientValues(t, feeds, z, x)[0]
	gradSum := gradientValues(t, feeds, Add(y, z), x)[0]
	want := make([]float64, 3)
	for ii := range want {
		want[ii] = gradY.Flat()[ii] + gradZ.Flat()[ii]
	}
	require.True(t, gradSum.InDelta(tensors.FromValue(want), 1e-12), "got %s, want %v", gradSum, want)
	require.True(t, gradSum.InDelta(tensors.FromValue([]float64{math.Cos(0.5) + 1, math.Cos(1) + 2, math.Cos(2) + 4}), 1e-12))
}

func TestBoundaryCutoff(t *testing.T) {
	g := NewGraph("cutoff")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 2))
	root := ReduceSum(Sqrt(Detach(Exp2(x))), 0)
	gradients := must.M1(autodiff.ComputeGradient(nil, root, OnesLike(root), x))
	_, found := gradients[x]
	assert.False(t, found, "x should have no gradient through a Detach")
	assert.Len(t, gradients, 3) // root, Sqrt and the Detach node itself.

	// Gradient returns zeros for unreached targets.
	grad := autodiff.Gradient(nil, root, x)[0]
	assert.Same(t, ZerosLike(x), grad)
}

func TestDetachIndependence(t *testing.T) {
	g := NewGraph("detach")
	x := Parameter(g, "x", shapes.Make(dtypes.Float64, 2))
	feeds := map[string]*tensors.Tensor{"x": tensors.FromValue([]float64{1, 3})}

	// root = x*x + detach(x*x): only the first path contributes.
	withDetach := Add(Square(x), Detach(Square(x)))
	grad := gradientValues(t, feeds, withDetach, x)[0]
	assert.Equal(t, []float64{2, 6}, grad.Value())

	// root = x * detach(x): the gradient is detach(x), as if it were a constant.
	grad = gradientValues(t, feeds, Mul(x, Detach(x)), x)[0]
	assert.Equal(t, []float64{1, 3}, grad.Value())
}

func TestMaxTies(t *testing.T) {
	g := NewGraph("ties")
	x := Parameter(g, "x", shapes.Make(dtypes.Float64, 3))
	feeds := map[string]*tensors.Tensor{"x": tensors.FromValue([]float64{3, 3, 3})}
	grad := gradientValues(t, feeds, ReduceMax(x, 0), x)[0]
	require.True(t, grad.InDelta(tensors.FromValue([]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}), 1e-12), "got %s", grad)

	feeds["x"] = tensors.FromValue([]float64{1, 5, 5})
	grad = gradientValues(t, feeds, ReduceMax(x, 0), x)[0]
	assert.Equal(t, []float64{0, 0.5, 0.5}, grad.Value())

	// Binary max.
	y := Parameter(g, "y", shapes.Make(dtypes.Float64, 3))
	feeds["x"] = tensors.FromValue([]float64{1, 2, 3})
	feeds["y"] = tensors.FromValue([]float64{3, 2, 1})
	grads := gradientValues(t, feeds, Max(x, y), x, y)
	assert.Equal(t, []float64{0, 0.5, 1}, grads[0].Value())
	assert.Equal(t, []float64{1, 0.5, 0}, grads[1].Value())

	// Ties per row of a matrix.
	m := Parameter(g, "m", shapes.Make(dtypes.Float64, 2, 2))
	feeds["m"] = tensors.FromValue([][]float64{{7, 7}, {1, 2}})
	grad = gradientValues(t, feeds, ReduceMax(m, 1), m)[0]
	assert.Equal(t, [][]float64{{0.5, 0.5}, {0, 1}}, grad.Value())
}

func TestPowEdgeCases(t *testing.T) {
	g := NewGraph("pow")
	x := Parameter(g, "x", shapes.Make(dtypes.Float64, 3))
	p := Parameter(g, "p", shapes.Make(dtypes.Float64, 3))
	feeds := map[string]*tensors.Tensor{
		"x": tensors.FromValue([]float64{0, 0, 2}),
		"p": tensors.FromValue([]float64{0, -1, 3}),
	}
	grads := gradientValues(t, feeds, Pow(x, p), x, p)
	gradX, gradP := grads[0].Flat(), grads[1].Flat()

	// 0^0: gradient with respect to the base is p = 0, and finite.
	assert.Equal(t, 0.0, gradX[0])
	assert.False(t, math.IsNaN(gradX[0]))
	assert.Equal(t, 12.0, gradX[2])

	// Gradient with respect to the exponent at x=0: 0 if p >= 0, -∞ if p < 0.
	assert.Equal(t, 0.0, gradP[0])
	assert.True(t, math.IsInf(gradP[1], -1))
	assert.InDelta(t, 8*math.Ln2, gradP[2], 1e-12)

	// x^0 at x=0 is finite.
	zeroExp := Pow(x, ZerosLike(x))
	feeds["x"] = tensors.FromValue([]float64{0, 0, 0})
	grad := gradientValues(t, feeds, zeroExp, x)[0]
	for _, value := range grad.Flat() {
		assert.False(t, math.IsNaN(value) || math.IsInf(value, 0), "gradient of x^0 at 0 is %g", value)
	}
}

func TestRootIsTarget(t *testing.T) {
	g := NewGraph("root-target")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 2))
	root := Sin(x)
	seed := OnesLike(root)
	gradients := must.M1(autodiff.ComputeGradient(nil, root, seed, root))
	require.Same(t, seed, gradients[root])
	_, found := gradients[x]
	assert.False(t, found)

	// The root itself as a leaf target.
	gradients = must.M1(autodiff.ComputeGradient(nil, x, OnesLike(x), x))
	assert.Len(t, gradients, 1)
	assert.Same(t, OnesLike(x), gradients[x])
}

func TestUnreachedTargets(t *testing.T) {
	g := NewGraph("unreached")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 2))
	y := Parameter(g, "y", shapes.Make(dtypes.Float32, 2))
	root := ReduceSum(Mul(x, x), 0)
	gradients := must.M1(autodiff.ComputeGradient(nil, root, OnesLike(root), x, y))
	assert.Contains(t, gradients, x)
	assert.NotContains(t, gradients, y)

	// Comparisons block the gradient, without errors.
	root = ReduceSum(Where(LessThan(x, y), x, ZerosLike(x)), 0)
	gradients = must.M1(autodiff.ComputeGradient(nil, root, OnesLike(root), x, y))
	assert.Contains(t, gradients, x)
	assert.NotContains(t, gradients, y)
}

func TestInvalidArguments(t *testing.T) {
	g := NewGraph("invalid")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 2))
	root := Sin(x)
	// Any node with the shape of root can be used as its gradient.
	_, err := autodiff.ComputeGradient(nil, root, x, x)
	require.NoError(t, err)
	_, err = autodiff.ComputeGradient(nil, root, Scalar(g, dtypes.Float32, 1), x)
	require.ErrorContains(t, err, "same shape as root")
	other := Parameter(NewGraph("other"), "x", shapes.Make(dtypes.Float32, 2))
	_, err = autodiff.ComputeGradient(nil, root, OnesLike(root), other)
	require.ErrorContains(t, err, "different graph")
}

func TestMetadataPropagation(t *testing.T) {
	g := NewGraph("metadata")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 3))
	meta := metadata.NewTable()
	y := meta.Annotate(Sin(x), "activation")
	root := meta.Annotate(ReduceSum(y, 0), "loss")
	numRecords := meta.Len()

	gradients := must.M1(autodiff.ComputeGradient(meta, root, OnesLike(root), x))
	gradX := gradients[x]
	record, found := meta.Get(gradX)
	require.True(t, found, "gradient of x has no metadata")
	assert.Equal(t, "activation", record.Name)
	assert.True(t, record.Backward)

	record, found = meta.Get(gradients[y])
	require.True(t, found)
	assert.Equal(t, "loss", record.Name)
	assert.True(t, record.Backward)
	assert.Greater(t, meta.Len(), numRecords)

	// Forward records are never replaced.
	record, _ = meta.Get(y)
	assert.False(t, record.Backward)
}

func TestMovementGradients(t *testing.T) {
	g := NewGraph("movement")
	x := Parameter(g, "x", shapes.Make(dtypes.Float64, 2, 3))
	xValue := tensors.FromValue([][]float64{{1, 2, 3}, {4, 5, 6}})

	testCases := []struct {
		name string
		fn   func(x *Node) *Node
	}{
		{"Reshape", func(x *Node) *Node { return Reshape(x, 3, 2) }},
		{"Permute", func(x *Node) *Node { return Permute(x, 1, 0) }},
		{"Pad", func(x *Node) *Node { return Pad(x, [][2]int{{1, 2}, {0, 1}}) }},
		{"Shrink", func(x *Node) *Node { return Shrink(x, [][2]int{{1, 2}, {0, 2}}) }},
		{"Flip", func(x *Node) *Node { return Flip(x, 0, 1) }},
		{"Expand", func(x *Node) *Node { return Expand(ReduceSum(x, 1), 2, 4) }},
		{"ReduceProd", func(x *Node) *Node { return ReduceProd(x, 1) }},
		{"Sharding", func(x *Node) *Node { return Shard(x, []string{"a", "b", "c"}, 1) }},
		{"Replicated", func(x *Node) *Node { return Shard(x, []string{"a", "b"}, -1) }},
		{"Copy", func(x *Node) *Node { return Copy(x, "GPU:0") }},
		{"Markers", func(x *Node) *Node { return Fuse(Contiguous(ContiguousBackward(x))) }},
		{"Cast", func(x *Node) *Node { return Cast(Cast(x, dtypes.Float32), dtypes.Float64) }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Weight each output position differently, so the gradients are not all equal.
			output := tc.fn(x)
			weights := Parameter(g, "weights", output.Shape())
			weightValues := make([]float64, output.Shape().Size())
			for ii := range weightValues {
				weightValues[ii] = float64(ii + 1)
			}
			feeds := map[string]*tensors.Tensor{
				"x":       xValue,
				"weights": tensors.FromFlat(output.Shape(), weightValues),
			}
			root := ReduceAllSum(Mul(output, weights))

			grad := gradientValues(t, feeds, root, x)[0]
			require.True(t, grad.Shape().Equal(x.Shape()))
			// root is linear on each element of x, so central differences are exact with any epsilon.
			want := must.M1(simplego.NumericGradient(root, x, feeds, 0.25))
			require.True(t, grad.InDelta(want, 1e-9), "got %s, want %s", grad, want)
		})
	}
}

func TestElementwiseGradients(t *testing.T) {
	g := NewGraph("elementwise")
	x := Parameter(g, "x", shapes.Make(dtypes.Float64, 4))
	y := Parameter(g, "y", shapes.Make(dtypes.Float64, 4))
	feeds := map[string]*tensors.Tensor{
		"x": tensors.FromValue([]float64{0.5, 1.5, 2, 3}),
		"y": tensors.FromValue([]float64{1.5, 0.5, 2.5, -1}),
	}
	testCases := []struct {
		name string
		root *Node
	}{
		{"Reciprocal", Reciprocal(x)},
		{"Sin", Sin(x)},
		{"Cos", Cos(x)},
		{"Log2", Log2(x)},
		{"Exp2", Exp2(x)},
		{"Sqrt", Sqrt(x)},
		{"Exp", Exp(x)},
		{"Log", Log(x)},
		{"Add", Add(x, y)},
		{"Sub", Sub(x, y)},
		{"Mul", Mul(x, y)},
		{"Div", Div(x, y)},
		{"Pow", Pow(x, y)},
		{"Max", Max(x, y)},
		{"Where", Where(LessThan(x, y), Square(x), Mul(x, y))},
		{"Composite", Div(Sin(Mul(x, y)), AddScalar(Square(y), 1))},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, target := range []*Node{x, y} {
				grad := gradientValues(t, feeds, tc.root, target)[0]
				want := must.M1(simplego.NumericGradient(tc.root, target, feeds, 1e-6))
				require.True(t, grad.InDelta(want, 1e-5), "%s wrt %s: got %s, want %s",
					tc.name, target.ParameterName(), grad, want)
			}
		})
	}
}

func TestSecondOrder(t *testing.T) {
	g := NewGraph("second-order")
	x := Parameter(g, "x", shapes.Make(dtypes.Float64, 3))
	feeds := map[string]*tensors.Tensor{"x": tensors.FromValue([]float64{1, 2, 3})}
	cube := Mul(Square(x), x)
	first := autodiff.Gradient(nil, ReduceSum(cube, 0), x)[0]
	second := autodiff.Gradient(nil, ReduceSum(first, 0), x)[0]
	got := must.M1(simplego.Execute([]*Node{first, second}, feeds))
	assert.Equal(t, []float64{3, 12, 27}, got[0].Value())
	assert.Equal(t, []float64{6, 12, 18}, got[1].Value())
}

func TestDeepChain(t *testing.T) {
	g := NewGraph("deep")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32))
	const depth = 100_000
	node := x
	for range depth {
		node = Contiguous(node)
	}
	gradients := must.M1(autodiff.ComputeGradient(nil, node, OnesLike(node), x))
	require.Contains(t, gradients, x)
	assert.Len(t, gradients, depth+1)
}

func ExampleComputeGradient() {
	g := NewGraph("example")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 3))
	root := ReduceSum(Mul(x, x), 0)
	gradients, err := autodiff.ComputeGradient(nil, root, OnesLike(root), x)
	if err != nil {
		panic(err)
	}
	results, err := simplego.Execute([]*Node{gradients[x]}, map[string]*tensors.Tensor{
		"x": tensors.FromValue([]float32{1, 2, 3}),
	})
	if err != nil {
		panic(err)
	}
	fmt.Println(results[0])
	// Output: (Float32)[3][2 4 6]
}
