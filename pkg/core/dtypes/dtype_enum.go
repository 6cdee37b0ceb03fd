// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dtypes

// DType is an enum represents the data type of a node or a tensor element.
//
// The numeric values follow the XLA/PJRT buffer types, so they line up with other GoMLX projects.
// Complex and sub-byte types are not supported: gradients are only defined for real values.
type DType int32

//go:generate go tool enumer -type=DType -output=gen_dtype_enumer.go dtype_enum.go

const (
	// InvalidDType is the zero value, used for uninitialized shapes.
	InvalidDType DType = 0

	// Bool is the result of comparisons and the condition of Where.
	Bool DType = 1

	// Int8 and the following are signed integral values of fixed width.
	Int8  DType = 2
	Int16 DType = 3
	Int32 DType = 4
	Int64 DType = 5

	// Uint8 and the following are unsigned integral values of fixed width.
	Uint8  DType = 6
	Uint16 DType = 7
	Uint32 DType = 8
	Uint64 DType = 9

	// Float16 is IEEE 754 half precision, implemented by github.com/x448/float16.
	Float16 DType = 10

	Float32 DType = 11
	Float64 DType = 12

	// BFloat16 is the truncated 16 bits float format: 1 sign bit, 8 bits exponent and 7 bits mantissa.
	BFloat16 DType = 13
)

// Short aliases.
const (
	F16  = Float16
	F32  = Float32
	F64  = Float64
	BF16 = BFloat16
	I32  = Int32
	I64  = Int64
)

// MapOfNames to their dtypes. It includes also aliases to the various dtypes.
// It is also later initialized to include the lower-case version of the names.
var MapOfNames = map[string]DType{
	"InvalidDType": InvalidDType,
	"Bool":         Bool,
	"PRED":         Bool,
	"Int8":         Int8,
	"S8":           Int8,
	"Int16":        Int16,
	"S16":          Int16,
	"Int32":        Int32,
	"S32":          Int32,
	"Int64":        Int64,
	"S64":          Int64,
	"Uint8":        Uint8,
	"U8":           Uint8,
	"Uint16":       Uint16,
	"U16":          Uint16,
	"Uint32":       Uint32,
	"U32":          Uint32,
	"Uint64":       Uint64,
	"U64":          Uint64,
	"Float16":      Float16,
	"F16":          Float16,
	"Float32":      Float32,
	"F32":          Float32,
	"Float64":      Float64,
	"F64":          Float64,
	"BFloat16":     BFloat16,
	"BF16":         BFloat16,
}
