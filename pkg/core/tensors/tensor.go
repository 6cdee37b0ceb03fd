// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package tensors implements a simple host Tensor: a shape plus its values, stored flat in row-major
// order.
//
// Values of every dtype are held as float64, rounded to the precision of the dtype. This is what the
// pure Go reference backend (backends/simplego) consumes and produces.
package tensors

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/symgrad/pkg/core/dtypes"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/gomlx/symgrad/pkg/support/xslices"
	"github.com/pkg/errors"
)

// Tensor is an immutable multidimensional value.
type Tensor struct {
	shape shapes.Shape
	flat  []float64
}

// FromShape returns a Tensor of the given shape filled with zeros.
func FromShape(shape shapes.Shape) *Tensor {
	if !shape.Ok() {
		exceptions.Panicf("tensors.FromShape: invalid shape")
	}
	return &Tensor{shape: shape.Clone(), flat: make([]float64, shape.Size())}
}

// FromFlat returns a Tensor of the given shape with the given values in row-major order.
// The values are copied and rounded to the shape's dtype.
func FromFlat(shape shapes.Shape, flat []float64) *Tensor {
	if len(flat) != shape.Size() {
		exceptions.Panicf("tensors.FromFlat(%s): got %d values, wanted %d", shape, len(flat), shape.Size())
	}
	t := FromShape(shape)
	for ii, value := range flat {
		t.flat[ii] = shape.DType.Round(value)
	}
	return t
}

// FromFlatDataAndDimensions creates a Tensor from a flat slice of a Go type, and the dimensions.
func FromFlatDataAndDimensions[T dtypes.Supported](data []T, dimensions ...int) *Tensor {
	shape := shapes.Make(dtypes.FromGenericsType[T](), dimensions...)
	if len(data) != shape.Size() {
		exceptions.Panicf("FromFlatDataAndDimensions(dimensions=%v): got %d values, wanted %d",
			dimensions, len(data), shape.Size())
	}
	t := FromShape(shape)
	for ii, value := range data {
		t.flat[ii] = toFloat64(reflect.ValueOf(value))
	}
	return t
}

// FromScalar returns a scalar Tensor with the given value.
func FromScalar[T dtypes.Supported](value T) *Tensor {
	return FromFlatDataAndDimensions([]T{value})
}

// FromValue returns a Tensor from a scalar or a multidimensional slice (e.g.: [][]float32) of
// a supported Go type. The slices must be regular (all sub-slices of the same length).
// If value is already a *Tensor, it is returned as is.
//
// It panics with an error if the value type is unsupported or the shape is not regular.
func FromValue(value any) *Tensor {
	if t, ok := value.(*Tensor); ok {
		return t
	}
	shape, err := shapeForValue(value)
	if err != nil {
		panic(errors.Wrapf(err, "cannot create tensor from %T", value))
	}
	t := FromShape(shape)
	pos := 0
	copyValuesRecursively(t.flat, &pos, reflect.ValueOf(value))
	return t
}

// Shape of the tensor.
func (t *Tensor) Shape() shapes.Shape { return t.shape }

// DType of the tensor's shape.
func (t *Tensor) DType() dtypes.DType { return t.shape.DType }

// Rank of the tensor's shape.
func (t *Tensor) Rank() int { return t.shape.Rank() }

// Size is the number of elements of the tensor.
func (t *Tensor) Size() int { return t.shape.Size() }

// Flat returns a copy of the values in row-major order.
func (t *Tensor) Flat() []float64 { return slices.Clone(t.flat) }

// At returns the value at the given indices.
func (t *Tensor) At(indices ...int) float64 {
	return t.flat[t.shape.FlatIndex(indices)]
}

// Value returns the tensor as a Go value: a scalar for rank-0 tensors, otherwise a multidimensional
// slice of the Go type of the dtype, e.g.: [][]float32.
func (t *Tensor) Value() any {
	goType := t.shape.DType.GoType()
	if t.shape.IsScalar() {
		return fromFloat64(goType, t.shape.DType, t.flat[0]).Interface()
	}
	sliceType := goType
	for range t.shape.Rank() {
		sliceType = reflect.SliceOf(sliceType)
	}
	pos := 0
	return buildSlicesRecursively(sliceType, t.shape.DType, t.flat, &pos, t.shape.Dimensions).Interface()
}

// InDelta returns whether t and other have the same shape and all values are within delta of each other.
// NaN values are only considered equal to other NaN values.
func (t *Tensor) InDelta(other *Tensor, delta float64) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	return xslices.InDelta(t.flat, other.flat, delta)
}

// String implements fmt.Stringer.
func (t *Tensor) String() string {
	if t == nil {
		return "Tensor(nil)"
	}
	if t.shape.IsScalar() {
		return fmt.Sprintf("%s(%v)", t.shape, t.Value())
	}
	return fmt.Sprintf("%s%v", t.shape, t.Value())
}

func shapeForValue(v any) (shapes.Shape, error) {
	var shape shapes.Shape
	err := shapeForValueRecursive(&shape, reflect.ValueOf(v), reflect.TypeOf(v))
	return shape, err
}

func shapeForValueRecursive(shape *shapes.Shape, v reflect.Value, t reflect.Type) error {
	if t == nil {
		return errors.New("cannot convert nil to a tensor")
	}
	switch t.Kind() {
	case reflect.Slice:
		t = t.Elem()
		shape.Dimensions = append(shape.Dimensions, v.Len())
		shapePrefix := shape.Clone()
		if v.Len() == 0 {
			return errors.Errorf("empty slices are not valid for tensor conversion (%s), use FromShape instead", v.Type())
		}
		if err := shapeForValueRecursive(shape, v.Index(0), t); err != nil {
			return err
		}
		// Other elements must have the same shape as the first one.
		for ii := 1; ii < v.Len(); ii++ {
			shapeTest := shapePrefix.Clone()
			if err := shapeForValueRecursive(&shapeTest, v.Index(ii), t); err != nil {
				return err
			}
			if !shape.Equal(shapeTest) {
				return errors.Errorf("sub-slices have irregular shapes, found shapes %q, and %q", shape, shapeTest)
			}
		}
	default:
		shape.DType = dtypes.FromGoType(t)
		if shape.DType == dtypes.InvalidDType {
			return errors.Errorf("cannot convert type %s to a tensor value", t)
		}
	}
	return nil
}

func copyValuesRecursively(flat []float64, pos *int, v reflect.Value) {
	if v.Kind() == reflect.Slice {
		for ii := range v.Len() {
			copyValuesRecursively(flat, pos, v.Index(ii))
		}
		return
	}
	flat[*pos] = toFloat64(v)
	*pos++
}

func buildSlicesRecursively(sliceType reflect.Type, dtype dtypes.DType, flat []float64, pos *int,
	dimensions []int) reflect.Value {
	slice := reflect.MakeSlice(sliceType, dimensions[0], dimensions[0])
	for ii := range dimensions[0] {
		if len(dimensions) == 1 {
			slice.Index(ii).Set(fromFloat64(sliceType.Elem(), dtype, flat[*pos]))
			*pos++
		} else {
			slice.Index(ii).Set(buildSlicesRecursively(sliceType.Elem(), dtype, flat, pos, dimensions[1:]))
		}
	}
	return slice
}

// toFloat64 converts a reflected scalar of a supported Go type to float64.
func toFloat64(v reflect.Value) float64 {
	dtype := dtypes.FromGoType(v.Type())
	if dtype.IsFloat16() {
		return dtype.FromBits(v.Uint())
	}
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return 1
		}
		return 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	exceptions.Panicf("unsupported type %s for tensors", v.Type())
	return 0
}

// fromFloat64 converts value to a reflected scalar of goType, the Go type of dtype.
func fromFloat64(goType reflect.Type, dtype dtypes.DType, value float64) reflect.Value {
	result := reflect.New(goType).Elem()
	switch {
	case dtype.IsFloat16():
		result.SetUint(dtype.ToBits(value))
	case dtype == dtypes.Bool:
		result.SetBool(value != 0)
	case dtype.IsUnsigned():
		result.SetUint(uint64(value))
	case dtype.IsInt():
		result.SetInt(int64(value))
	default:
		result.SetFloat(value)
	}
	return result
}
