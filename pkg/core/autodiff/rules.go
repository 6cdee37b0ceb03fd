// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autodiff

import (
	"math"

	. "github.com/gomlx/exceptions"
	. "github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/support/xslices"
)

// gradientRule returns the gradient contribution of node to each of its inputs, given v, the accumulated
// gradient of the root with respect to node.
//
// It must return exactly one element per input. A nil element means no gradient flows to that input.
type gradientRule func(node, v *Node) []*Node

// gradientRules maps each NodeType to its gradient rule. It must be total over NodeTypeValues(),
// except NodeTypeInvalid.
var gradientRules = map[NodeType]gradientRule{
	NodeTypeParameter: leafGradient,
	NodeTypeConstant:  leafGradient,

	NodeTypeCast:    castGradient,
	NodeTypeBitcast: noGradient,

	NodeTypeReciprocal: reciprocalGradient,
	NodeTypeSin:        sinGradient,
	NodeTypeLog2:       log2Gradient,
	NodeTypeExp2:       exp2Gradient,
	NodeTypeSqrt:       sqrtGradient,

	NodeTypeLessThan:   noGradient,
	NodeTypeNotEqual:   noGradient,
	NodeTypeLogicalAnd: noGradient,

	NodeTypeAdd:   addGradient,
	NodeTypeMul:   mulGradient,
	NodeTypePow:   powGradient,
	NodeTypeMax:   maxGradient,
	NodeTypeWhere: whereGradient,

	NodeTypeReduceAxis: reduceGradient,

	NodeTypeContiguous:         identityGradient,
	NodeTypeFuse:               identityGradient,
	NodeTypeContiguousBackward: contiguousBackwardGradient,

	// The walk never emits Detach nodes, so this rule is never applied: it is here so the table is total.
	NodeTypeDetach: noGradient,

	NodeTypeReshape: reshapeGradient,
	NodeTypePermute: permuteGradient,
	NodeTypePad:     padGradient,
	NodeTypeShrink:  shrinkGradient,
	NodeTypeFlip:    flipGradient,
	NodeTypeExpand:  expandGradient,

	NodeTypeCopy:  copyGradient,
	NodeTypeMulti: multiGradient,
}

// leafGradient is used for nodes without inputs.
func leafGradient(node, _ *Node) []*Node {
	return nil
}

// noGradient returns no gradient to any of the inputs.
func noGradient(node, _ *Node) []*Node {
	return make([]*Node, node.NumInputs())
}

func identityGradient(_, v *Node) []*Node {
	return []*Node{v}
}

func castGradient(node, v *Node) []*Node {
	return []*Node{Cast(v, node.Inputs()[0].DType())}
}

// reciprocalGradient: y = 1/x, dy/dx = -y².
func reciprocalGradient(node, v *Node) []*Node {
	return []*Node{Mul(Mul(Neg(v), node), node)}
}

// sinGradient: cos(x) is computed as sin(π/2 - x).
func sinGradient(node, v *Node) []*Node {
	x := node.Inputs()[0]
	return []*Node{Mul(Sin(Sub(ConstLike(x, math.Pi/2), x)), v)}
}

func log2Gradient(node, v *Node) []*Node {
	x := node.Inputs()[0]
	return []*Node{Div(v, MulScalar(x, math.Ln2))}
}

func exp2Gradient(node, v *Node) []*Node {
	return []*Node{MulScalar(Mul(node, v), math.Ln2)}
}

func sqrtGradient(node, v *Node) []*Node {
	return []*Node{Div(v, MulScalar(node, 2))}
}

func addGradient(_, v *Node) []*Node {
	return []*Node{v, v}
}

func mulGradient(node, v *Node) []*Node {
	inputs := node.Inputs()
	return []*Node{Mul(inputs[1], v), Mul(inputs[0], v)}
}

// powGradient for y = x^p.
//
// With respect to x it is p·x^(p-1), except for x=0 and p=0, where it is p (so 0, and not NaN).
// With respect to p it is y·ln(x), except for x=0, where it is -∞ if p<0 and 0 otherwise.
func powGradient(node, v *Node) []*Node {
	x, p := node.Inputs()[0], node.Inputs()[1]
	xIsZero := Equal(x, ZerosLike(x))
	baseGrad := Where(
		LogicalAnd(xIsZero, Equal(p, ZerosLike(p))),
		p,
		Mul(p, Pow(x, AddScalar(p, -1))))
	expGrad := Where(
		xIsZero,
		Where(LessThan(p, ZerosLike(p)), ConstLike(node, math.Inf(-1)), ZerosLike(node)),
		MulScalar(Mul(node, Log2(x)), math.Ln2))
	return []*Node{Mul(v, baseGrad), Mul(v, expGrad)}
}

// maxGradient: the strictly larger operand gets all of v, ties get v/2 each.
func maxGradient(node, v *Node) []*Node {
	a, b := node.Inputs()[0], node.Inputs()[1]
	zeros := ZerosLike(v)
	half := MulScalar(v, 0.5)
	notEqual := NotEqual(a, b)
	return []*Node{
		Where(GreaterThan(a, b), v, Where(notEqual, zeros, half)),
		Where(LessThan(a, b), v, Where(notEqual, zeros, half)),
	}
}

// whereGradient: no gradient to the condition, each branch gets v where it was selected.
func whereGradient(node, v *Node) []*Node {
	condition := node.Inputs()[0]
	zeros := ZerosLike(v)
	return []*Node{nil, Where(condition, v, zeros), Where(condition, zeros, v)}
}

func reduceGradient(node, v *Node) []*Node {
	x := node.Inputs()[0]
	op, axes := node.ReduceParams()
	switch op {
	case ReduceOpSum:
		return []*Node{ExpandAs(v, x)}

	case ReduceOpMax:
		// Each element equal to the maximum gets an equal share of v: ties split it evenly.
		// The count is at least 1 for every reduced group, since the maximum is one of its elements.
		isMax := Cast(Equal(x, ExpandAs(node, x)), v.DType())
		count := ExpandAs(ReduceSum(isMax, axes...), x)
		return []*Node{Mul(Div(isMax, count), ExpandAs(v, x))}

	case ReduceOpProduct:
		return []*Node{Div(ExpandAs(Mul(v, node), x), x)}
	}
	Panicf("no gradient defined for reduction %s in node %s", op, node)
	return nil
}

func contiguousBackwardGradient(_, v *Node) []*Node {
	return []*Node{Contiguous(v)}
}

func reshapeGradient(node, v *Node) []*Node {
	return []*Node{Reshape(v, node.Inputs()[0].Shape().Dimensions...)}
}

func permuteGradient(node, v *Node) []*Node {
	return []*Node{Permute(v, xslices.ArgSort(node.Permutation())...)}
}

// padGradient shrinks v back to the range that the input occupied in the padded output.
func padGradient(node, v *Node) []*Node {
	x := node.Inputs()[0]
	paddings := node.Paddings()
	bounds := make([][2]int, len(paddings))
	for axis, pad := range paddings {
		bounds[axis] = [2]int{pad[0], pad[0] + x.Shape().Dim(axis)}
	}
	return []*Node{Shrink(v, bounds)}
}

// shrinkGradient pads v with zeros back to the input shape.
func shrinkGradient(node, v *Node) []*Node {
	x := node.Inputs()[0]
	bounds := node.ShrinkBounds()
	paddings := make([][2]int, len(bounds))
	for axis, bound := range bounds {
		paddings[axis] = [2]int{bound[0], x.Shape().Dim(axis) - bound[1]}
	}
	return []*Node{Pad(v, paddings)}
}

func flipGradient(node, v *Node) []*Node {
	return []*Node{Flip(v, node.FlipAxes()...)}
}

// expandGradient sums v over the broadcast axes.
func expandGradient(node, v *Node) []*Node {
	inputShape := node.Inputs()[0].Shape()
	var axes []int
	for axis, dim := range node.Shape().Dimensions {
		if inputShape.Dim(axis) != dim {
			axes = append(axes, axis)
		}
	}
	return []*Node{ReduceSum(v, axes...)}
}

// copyGradient moves v back to the device of the input.
func copyGradient(node, v *Node) []*Node {
	return []*Node{Copy(v, node.Inputs()[0].Device())}
}

// multiGradient shards v the same way as the node, one gradient per shard.
func multiGradient(node, v *Node) []*Node {
	return Shard(v, node.Devices(), node.ShardAxis()).Inputs()
}

// checkGradientShapes panics if a contribution doesn't have exactly the shape of the corresponding input.
func checkGradientShapes(node *Node, grads []*Node) {
	for ii, input := range node.Inputs() {
		grad := grads[ii]
		if grad == nil {
			continue
		}
		if !grad.Shape().Equal(input.Shape()) {
			Panicf("invalid gradient for node %s: input #%d (out of %d) has shape %s, but its gradient has shape %s"+
				" -- this indicates a bug in the gradient rule of %s",
				node, ii, node.NumInputs(), input.Shape(), grad.Shape(), node.Type())
		}
	}
}

