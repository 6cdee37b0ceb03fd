// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package dtypes includes the DType enum for the data types a graph node can hold.
//
// It covers only the real-valued types that gradients are defined for. It includes converters
// to/from Go native types (and reflect.Type), and helpers used by the pure Go reference backend to
// round a float64 value to the precision of a DType, or reinterpret its bits.
package dtypes

import (
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/gomlx/symgrad/pkg/core/dtypes/bfloat16"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// panicf panics with the formatted description.
//
// It is only used for "bugs in the code" -- when parameters don't follow the specifications.
func panicf(format string, args ...any) {
	panic(errors.Errorf(format, args...))
}

func init() {
	// Add a mapping to the lower-case version of dtypes.
	keys := slices.Collect(maps.Keys(MapOfNames))
	for _, key := range keys {
		lowerKey := strings.ToLower(key)
		if _, found := MapOfNames[lowerKey]; found {
			continue
		}
		MapOfNames[lowerKey] = MapOfNames[key]
	}
}

// Supported lists the Go types that map to a DType.
// Used as traits for generics.
type Supported interface {
	bool | float16.Float16 | bfloat16.BFloat16 |
		float32 | float64 | int | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64
}

// GoFloat represent a continuous Go numeric type.
type GoFloat interface {
	float32 | float64
}

// FromGenericsType returns the DType enum for the given type that this package knows about.
func FromGenericsType[T Supported]() DType {
	var t T
	return FromAny(t)
}

// FromGoType returns the DType for the given "reflect.Type".
// It returns InvalidDType for unknown types.
func FromGoType(t reflect.Type) DType {
	if t == float16Type {
		return Float16
	} else if t == bfloat16Type {
		return BFloat16
	}
	switch t.Kind() {
	case reflect.Int:
		if strconv.IntSize == 32 {
			return Int32
		}
		return Int64
	case reflect.Int64:
		return Int64
	case reflect.Int32:
		return Int32
	case reflect.Int16:
		return Int16
	case reflect.Int8:
		return Int8
	case reflect.Uint64:
		return Uint64
	case reflect.Uint32:
		return Uint32
	case reflect.Uint16:
		return Uint16
	case reflect.Uint8:
		return Uint8
	case reflect.Bool:
		return Bool
	case reflect.Float32:
		return Float32
	case reflect.Float64:
		return Float64
	default:
		return InvalidDType
	}
}

// FromAny introspects the underlying type of any and returns the corresponding DType.
// Non-scalar types, or unsupported types return an InvalidType.
func FromAny(value any) DType {
	if value == nil {
		return InvalidDType
	}
	return FromGoType(reflect.TypeOf(value))
}

// Pre-generate constant reflect.TypeOf for convenience.
var (
	float16Type  = reflect.TypeOf(float16.Float16(0))
	bfloat16Type = reflect.TypeOf(bfloat16.BFloat16(0))
)

// GoType returns the Go `reflect.Type` corresponding to the DType.
func (dtype DType) GoType() reflect.Type {
	switch dtype {
	case Int64:
		return reflect.TypeOf(int64(0))
	case Int32:
		return reflect.TypeOf(int32(0))
	case Int16:
		return reflect.TypeOf(int16(0))
	case Int8:
		return reflect.TypeOf(int8(0))
	case Uint64:
		return reflect.TypeOf(uint64(0))
	case Uint32:
		return reflect.TypeOf(uint32(0))
	case Uint16:
		return reflect.TypeOf(uint16(0))
	case Uint8:
		return reflect.TypeOf(uint8(0))
	case Bool:
		return reflect.TypeOf(true)
	case Float16:
		return float16Type
	case BFloat16:
		return bfloat16Type
	case Float32:
		return reflect.TypeOf(float32(0))
	case Float64:
		return reflect.TypeOf(float64(0))
	default:
		panicf("unknown dtype %q (%d) in DType.GoType", dtype, dtype)
		panic(nil)
	}
}

// Size returns the number of bytes for the given DType.
func (dtype DType) Size() int {
	return int(dtype.GoType().Size())
}

// Bits returns the number of bits for the given DType.
func (dtype DType) Bits() int {
	return dtype.Size() * 8
}

// IsFloat returns whether dtype is a supported float.
func (dtype DType) IsFloat() bool {
	return dtype == Float32 || dtype == Float64 || dtype == Float16 || dtype == BFloat16
}

// IsFloat16 returns whether dtype is a supported float with 16 bits: [Float16] or [BFloat16].
func (dtype DType) IsFloat16() bool {
	return dtype == Float16 || dtype == BFloat16
}

// IsInt returns whether dtype is a supported integer type.
func (dtype DType) IsInt() bool {
	return dtype == Int64 || dtype == Int32 || dtype == Int16 || dtype == Int8 || dtype.IsUnsigned()
}

// IsUnsigned returns whether dtype is one of the unsigned integer types.
func (dtype DType) IsUnsigned() bool {
	return dtype == Uint8 || dtype == Uint16 || dtype == Uint32 || dtype == Uint64
}

// IsPromotableTo returns whether dtype can be promoted to target without loss:
// same category (bool, int or float) and not fewer bits.
func (dtype DType) IsPromotableTo(target DType) bool {
	if dtype == target {
		return true
	}
	isSameType := (dtype.IsInt() && target.IsInt() && dtype.IsUnsigned() == target.IsUnsigned()) ||
		(dtype.IsFloat() && target.IsFloat())
	if !isSameType {
		return false
	}
	return dtype.Bits() <= target.Bits()
}

// LowestValue for dtype as a float64. For float values it is negative infinity.
func (dtype DType) LowestValue() float64 {
	switch {
	case dtype.IsFloat():
		return math.Inf(-1)
	case dtype.IsUnsigned(), dtype == Bool:
		return 0
	case dtype.IsInt():
		return -math.Ldexp(1, dtype.Bits()-1)
	}
	panicf("LowestValue not defined for dtype %s", dtype)
	return 0
}

// Round converts value to the precision and range of dtype, and back to float64.
//
// Integers truncate toward zero and wrap around like a Go conversion, Bool maps any non-zero value to 1.
func (dtype DType) Round(value float64) float64 {
	switch dtype {
	case Float64:
		return value
	case Float32:
		return float64(float32(value))
	case Float16:
		return float64(float16.Fromfloat32(float32(value)).Float32())
	case BFloat16:
		return float64(bfloat16.FromFloat64(value).Float32())
	case Bool:
		if value != 0 {
			return 1
		}
		return 0
	case Int8:
		return float64(int8(int64(value)))
	case Int16:
		return float64(int16(int64(value)))
	case Int32:
		return float64(int32(int64(value)))
	case Int64:
		return float64(int64(value))
	case Uint8:
		return float64(uint8(int64(value)))
	case Uint16:
		return float64(uint16(int64(value)))
	case Uint32:
		return float64(uint32(int64(value)))
	case Uint64:
		return float64(uint64(value))
	}
	panicf("Round not defined for dtype %s", dtype)
	return 0
}

// ToBits returns the raw bit representation of value stored in dtype, in the lower Bits() bits.
func (dtype DType) ToBits(value float64) uint64 {
	switch dtype {
	case Float64:
		return math.Float64bits(value)
	case Float32:
		return uint64(math.Float32bits(float32(value)))
	case Float16:
		return uint64(float16.Fromfloat32(float32(value)).Bits())
	case BFloat16:
		return uint64(bfloat16.FromFloat64(value).Bits())
	case Bool:
		if value != 0 {
			return 1
		}
		return 0
	}
	if dtype.IsInt() {
		mask := uint64(math.MaxUint64)
		if dtype.Bits() < 64 {
			mask = 1<<dtype.Bits() - 1
		}
		if dtype.IsUnsigned() {
			return uint64(value) & mask
		}
		return uint64(int64(value)) & mask
	}
	panicf("ToBits not defined for dtype %s", dtype)
	return 0
}

// FromBits interprets the lower Bits() of bits as a value of dtype, returned as float64.
// It is the inverse of ToBits.
func (dtype DType) FromBits(bits uint64) float64 {
	switch dtype {
	case Float64:
		return math.Float64frombits(bits)
	case Float32:
		return float64(math.Float32frombits(uint32(bits)))
	case Float16:
		return float64(float16.Frombits(uint16(bits)).Float32())
	case BFloat16:
		return float64(bfloat16.FromBits(uint16(bits)).Float32())
	case Bool:
		if bits&1 != 0 {
			return 1
		}
		return 0
	case Int8:
		return float64(int8(bits))
	case Int16:
		return float64(int16(bits))
	case Int32:
		return float64(int32(bits))
	case Int64:
		return float64(int64(bits))
	case Uint8:
		return float64(uint8(bits))
	case Uint16:
		return float64(uint16(bits))
	case Uint32:
		return float64(uint32(bits))
	case Uint64:
		return float64(bits)
	}
	panicf("FromBits not defined for dtype %s", dtype)
	return 0
}
