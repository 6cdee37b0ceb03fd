// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

// NodeType is the closed enumeration of primitive operations a Node can represent.
//
// Higher level operations (Sub, Div, Exp, ...) are built as compositions of these primitives,
// so the gradient of any graph only needs a rule per NodeType.
type NodeType int

//go:generate go tool enumer -type=NodeType -trimprefix=NodeType -output=gen_nodetype_enumer.go nodetype.go

const (
	NodeTypeInvalid NodeType = iota

	// Leaves.
	NodeTypeParameter
	NodeTypeConstant

	// Type conversions.
	NodeTypeCast
	NodeTypeBitcast

	// Elementwise unary.
	NodeTypeReciprocal
	NodeTypeSin
	NodeTypeLog2
	NodeTypeExp2
	NodeTypeSqrt

	// Comparisons and logic: they output Bool.
	NodeTypeLessThan
	NodeTypeNotEqual
	NodeTypeLogicalAnd

	// Elementwise binary.
	NodeTypeAdd
	NodeTypeMul
	NodeTypePow
	NodeTypeMax

	// Selection: Where(condition, onTrue, onFalse).
	NodeTypeWhere

	// Reduction over a set of axes, see ReduceOpType. Reduced axes are kept with dimension 1.
	NodeTypeReduceAxis

	// Markers: no numeric effect.
	NodeTypeContiguous
	NodeTypeFuse
	NodeTypeContiguousBackward
	NodeTypeDetach

	// Movement: shape-changing, value-preserving.
	NodeTypeReshape
	NodeTypePermute
	NodeTypePad
	NodeTypeShrink
	NodeTypeFlip
	NodeTypeExpand

	// Devices.
	NodeTypeCopy
	NodeTypeMulti
)

// ReduceOpType selects the reduction used by a NodeTypeReduceAxis node.
type ReduceOpType int

//go:generate go tool enumer -type ReduceOpType -trimprefix=ReduceOp -output=gen_reduceoptype_enumer.go nodetype.go

const (
	ReduceOpUndefined ReduceOpType = iota
	ReduceOpSum
	ReduceOpMax
	ReduceOpProduct
)
