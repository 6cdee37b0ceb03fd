// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"math"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/symgrad/pkg/core/dtypes"
	"github.com/gomlx/symgrad/pkg/core/shapes"
)

// Parameter creates an input to the graph with the given name and shape, placed on the DefaultDevice.
func Parameter(g *Graph, name string, shape shapes.Shape) *Node {
	return ParameterOnDevice(g, name, shape, DefaultDevice)
}

// ParameterOnDevice creates an input to the graph placed on the given device.
//
// Two parameters with the same name, shape and device are the same node.
func ParameterOnDevice(g *Graph, name string, shape shapes.Shape, device string) *Node {
	if !shape.Ok() {
		exceptions.Panicf("Parameter(%q): invalid shape", name)
	}
	return g.newNode(NodeTypeParameter, shape.Clone(), device, &parameterParams{name: name})
}

// Constant creates a node of the given shape filled with value, on the DefaultDevice.
// The value is rounded to the precision of the shape's dtype.
func Constant(g *Graph, value float64, shape shapes.Shape) *Node {
	return constantOnDevice(g, value, shape, DefaultDevice)
}

func constantOnDevice(g *Graph, value float64, shape shapes.Shape, device string) *Node {
	if !shape.Ok() {
		exceptions.Panicf("Constant(%g): invalid shape", value)
	}
	value = shape.DType.Round(value)
	return g.newNode(NodeTypeConstant, shape.Clone(), device, &constantParams{value: value})
}

// Scalar returns a scalar constant of the given dtype.
func Scalar(g *Graph, dtype dtypes.DType, value float64) *Node {
	return Constant(g, value, shapes.Make(dtype))
}

// ConstLike returns a constant with the same shape and device as x, filled with value.
func ConstLike(x *Node, value float64) *Node {
	x.AssertValid()
	return constantOnDevice(x.graph, value, x.shape, x.device)
}

// ZerosLike returns a constant 0 with the same shape and device as x.
func ZerosLike(x *Node) *Node { return ConstLike(x, 0) }

// OnesLike returns a constant 1 with the same shape and device as x.
func OnesLike(x *Node) *Node { return ConstLike(x, 1) }

// unaryOp creates a node with one input, the shape of the input and the given output dtype.
func unaryOp(nodeType NodeType, x *Node, dtype dtypes.DType) *Node {
	x.AssertValid()
	return x.graph.newNode(nodeType, x.shape.WithDType(dtype), x.device, nil, x)
}

// floatUnaryOp is a unaryOp restricted to float operands.
func floatUnaryOp(nodeType NodeType, x *Node) *Node {
	x.AssertValid()
	if !x.DType().IsFloat() {
		exceptions.Panicf("%s requires a float operand, got %s", nodeType, x.shape)
	}
	return unaryOp(nodeType, x, x.DType())
}

// Reciprocal returns 1/x.
func Reciprocal(x *Node) *Node { return floatUnaryOp(NodeTypeReciprocal, x) }

// Sin returns the sine of x, in radians.
func Sin(x *Node) *Node { return floatUnaryOp(NodeTypeSin, x) }

// Log2 returns the base 2 logarithm of x.
func Log2(x *Node) *Node { return floatUnaryOp(NodeTypeLog2, x) }

// Exp2 returns 2^x.
func Exp2(x *Node) *Node { return floatUnaryOp(NodeTypeExp2, x) }

// Sqrt returns the square root of x.
func Sqrt(x *Node) *Node { return floatUnaryOp(NodeTypeSqrt, x) }

// Cast converts x to the given dtype. It returns x itself if it already has that dtype.
func Cast(x *Node, dtype dtypes.DType) *Node {
	x.AssertValid()
	if x.DType() == dtype {
		return x
	}
	if !dtype.IsADType() || dtype == dtypes.InvalidDType {
		exceptions.Panicf("Cast(%s): invalid dtype %s", x, dtype)
	}
	return unaryOp(NodeTypeCast, x, dtype)
}

// Bitcast reinterprets the bits of x as the given dtype, which must have the same number of bits.
func Bitcast(x *Node, dtype dtypes.DType) *Node {
	x.AssertValid()
	if x.DType() == dtype {
		return x
	}
	if dtype == dtypes.InvalidDType || dtype.Bits() != x.DType().Bits() {
		exceptions.Panicf("Bitcast(%s, %s): dtypes must have the same number of bits", x.shape, dtype)
	}
	return unaryOp(NodeTypeBitcast, x, dtype)
}

// Contiguous marks x to be materialized contiguously in memory. It has no numeric effect.
func Contiguous(x *Node) *Node { return unaryOp(NodeTypeContiguous, x, x.DType()) }

// Fuse hints that x should be fused with its consumers. It has no numeric effect.
func Fuse(x *Node) *Node { return unaryOp(NodeTypeFuse, x, x.DType()) }

// ContiguousBackward is the identity in the forward pass, and forces the gradient flowing
// through it to be materialized (see Contiguous).
func ContiguousBackward(x *Node) *Node { return unaryOp(NodeTypeContiguousBackward, x, x.DType()) }

// Detach is the identity for values, but no gradient flows through it to x.
func Detach(x *Node) *Node { return unaryOp(NodeTypeDetach, x, x.DType()) }

// binaryOp creates a node from two operands of the same shape. The output takes the device of a.
func binaryOp(nodeType NodeType, a, b *Node, dtype dtypes.DType) *Node {
	a.AssertValid()
	b.AssertValid()
	if !a.shape.Equal(b.shape) {
		exceptions.Panicf("%s requires operands of the same shape (use Expand to broadcast), got %s and %s",
			nodeType, a.shape, b.shape)
	}
	return a.graph.newNode(nodeType, a.shape.WithDType(dtype), a.device, nil, a, b)
}

// Add returns a+b.
func Add(a, b *Node) *Node { return binaryOp(NodeTypeAdd, a, b, a.DType()) }

// Mul returns a*b.
func Mul(a, b *Node) *Node { return binaryOp(NodeTypeMul, a, b, a.DType()) }

// Pow returns base^exponent.
func Pow(base, exponent *Node) *Node { return binaryOp(NodeTypePow, base, exponent, base.DType()) }

// Max returns the elementwise maximum of a and b.
func Max(a, b *Node) *Node { return binaryOp(NodeTypeMax, a, b, a.DType()) }

// LessThan returns a Bool node with a < b.
func LessThan(a, b *Node) *Node { return binaryOp(NodeTypeLessThan, a, b, dtypes.Bool) }

// NotEqual returns a Bool node with a != b.
func NotEqual(a, b *Node) *Node { return binaryOp(NodeTypeNotEqual, a, b, dtypes.Bool) }

// LogicalAnd returns a && b, for Bool operands.
func LogicalAnd(a, b *Node) *Node {
	a.AssertValid()
	if a.DType() != dtypes.Bool {
		exceptions.Panicf("LogicalAnd requires Bool operands, got %s", a.shape)
	}
	return binaryOp(NodeTypeLogicalAnd, a, b, dtypes.Bool)
}

// Where returns onTrue where condition is true, and onFalse elsewhere.
// The condition must be Bool with the same dimensions as onTrue and onFalse.
func Where(condition, onTrue, onFalse *Node) *Node {
	condition.AssertValid()
	onTrue.AssertValid()
	onFalse.AssertValid()
	if condition.DType() != dtypes.Bool {
		exceptions.Panicf("Where requires a Bool condition, got %s", condition.shape)
	}
	if !onTrue.shape.Equal(onFalse.shape) || !condition.shape.EqualDimensions(onTrue.shape) {
		exceptions.Panicf("Where requires operands with the same dimensions, got condition=%s, onTrue=%s, onFalse=%s",
			condition.shape, onTrue.shape, onFalse.shape)
	}
	g := onTrue.graph
	if condition.graph != g {
		exceptions.Panicf("Where: condition belongs to a different graph")
	}
	return g.newNode(NodeTypeWhere, onTrue.shape.Clone(), onTrue.device, nil, condition, onTrue, onFalse)
}

// Neg returns -x.
func Neg(x *Node) *Node { return Mul(x, ConstLike(x, -1)) }

// Sub returns a-b.
func Sub(a, b *Node) *Node { return Add(a, Neg(b)) }

// Div returns a/b.
func Div(a, b *Node) *Node { return Mul(a, Reciprocal(b)) }

// Square returns x*x.
func Square(x *Node) *Node { return Mul(x, x) }

// AddScalar returns x+value.
func AddScalar(x *Node, value float64) *Node { return Add(x, ConstLike(x, value)) }

// MulScalar returns x*value.
func MulScalar(x *Node, value float64) *Node { return Mul(x, ConstLike(x, value)) }

// DivScalar returns x/value.
func DivScalar(x *Node, value float64) *Node { return Mul(x, ConstLike(x, 1/value)) }

// Cos returns the cosine of x, computed as sin(π/2 - x).
func Cos(x *Node) *Node { return Sin(Sub(ConstLike(x, math.Pi/2), x)) }

// Log returns the natural logarithm of x.
func Log(x *Node) *Node { return MulScalar(Log2(x), math.Ln2) }

// Exp returns e^x.
func Exp(x *Node) *Node { return Exp2(MulScalar(x, 1/math.Ln2)) }

// LogicalNot returns !x, for a Bool x.
func LogicalNot(x *Node) *Node { return NotEqual(x, ConstLike(x, 1)) }

// Equal returns a Bool node with a == b.
func Equal(a, b *Node) *Node { return LogicalNot(NotEqual(a, b)) }

// GreaterThan returns a Bool node with a > b.
func GreaterThan(a, b *Node) *Node { return LessThan(b, a) }

// Reduce x over the given axes with the given reduction. Reduced axes are kept with dimension 1.
//
// Negative axes are counted from the end. Duplicate axes are ignored. If no axes are given,
// it returns x unchanged.
func Reduce(x *Node, op ReduceOpType, axes ...int) *Node {
	x.AssertValid()
	if op == ReduceOpUndefined || !op.IsAReduceOpType() {
		exceptions.Panicf("Reduce(%s): invalid reduction %s", x, op)
	}
	if (op == ReduceOpSum || op == ReduceOpProduct) && x.DType() == dtypes.Bool {
		exceptions.Panicf("Reduce(%s): %s is not defined for Bool", x.shape, op)
	}
	axes = normalizeAxes("Reduce", x.shape, axes)
	if len(axes) == 0 {
		return x
	}
	dims := slices.Clone(x.shape.Dimensions)
	for _, axis := range axes {
		dims[axis] = 1
	}
	return x.graph.newNode(NodeTypeReduceAxis, shapes.Make(x.DType(), dims...), x.device,
		&reduceParams{op: op, axes: axes}, x)
}

// ReduceSum sums x over the given axes, keeping them with dimension 1.
func ReduceSum(x *Node, axes ...int) *Node { return Reduce(x, ReduceOpSum, axes...) }

// ReduceMax takes the maximum of x over the given axes, keeping them with dimension 1.
func ReduceMax(x *Node, axes ...int) *Node { return Reduce(x, ReduceOpMax, axes...) }

// ReduceProd multiplies x over the given axes, keeping them with dimension 1.
func ReduceProd(x *Node, axes ...int) *Node { return Reduce(x, ReduceOpProduct, axes...) }

// ReduceAllSum sums all elements of x, returning a node with the same rank and all dimensions 1.
func ReduceAllSum(x *Node) *Node {
	x.AssertValid()
	axes := make([]int, x.Rank())
	for ii := range axes {
		axes[ii] = ii
	}
	return ReduceSum(x, axes...)
}

// normalizeAxes returns the axes sorted, deduplicated, with negative values converted to positive ones.
func normalizeAxes(opName string, shape shapes.Shape, axes []int) []int {
	rank := shape.Rank()
	normalized := make([]int, 0, len(axes))
	for _, axis := range axes {
		adjusted := axis
		if adjusted < 0 {
			adjusted += rank
		}
		if adjusted < 0 || adjusted >= rank {
			exceptions.Panicf("%s: axis %d out of range for shape %s", opName, axis, shape)
		}
		normalized = append(normalized, adjusted)
	}
	slices.Sort(normalized)
	return slices.Compact(normalized)
}
