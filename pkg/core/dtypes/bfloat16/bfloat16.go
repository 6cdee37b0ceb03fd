// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package bfloat16 is a small implementation of the bfloat16 type,
// modeled after https://github.com/x448/float16 (see https://github.com/x448/float16/issues/22).
package bfloat16

import (
	"math"
	"strconv"
)

// BFloat16 (brain floating point) is a 16 bits floating-point format: the upper half of an IEEE 754 float32,
// that is 1 sign bit, 8 bits of exponent and 7 bits of mantissa.
type BFloat16 uint16

// Float32 converts the value to float32. It is exact.
func (f BFloat16) Float32() float32 {
	return math.Float32frombits(uint32(f) << 16)
}

// FromFloat32 converts a float32 to a BFloat16, rounding to nearest-even.
// NaNs are kept quiet NaNs.
func FromFloat32(x float32) BFloat16 {
	bits := math.Float32bits(x)
	if x != x {
		return BFloat16(bits>>16 | 0x0040)
	}
	roundingBias := uint32(0x7FFF) + (bits>>16)&1
	return BFloat16((bits + roundingBias) >> 16)
}

// FromFloat64 converts a float64 to a BFloat16, passing through float32.
func FromFloat64(x float64) BFloat16 {
	return FromFloat32(float32(x))
}

// FromBits convert an uint16 to a BFloat16.
func FromBits(bits uint16) BFloat16 {
	return BFloat16(bits)
}

// Bits convert BFloat16 to an uint16.
func (f BFloat16) Bits() uint16 {
	return uint16(f)
}

// String implements fmt.Stringer, and prints a float representation of the BFloat16.
func (f BFloat16) String() string {
	return strconv.FormatFloat(float64(f.Float32()), 'f', -1, 32)
}

// Inf returns a BFloat16 with an infinity value with the specified sign.
// A sign >= 0 returns positive infinity, a sign < 0 returns negative infinity.
func Inf(sign int) BFloat16 {
	if sign >= 0 {
		return 0x7F80
	}
	return 0xFF80
}
