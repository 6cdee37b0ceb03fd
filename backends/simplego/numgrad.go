// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simplego

import (
	"maps"
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/symgrad/internal/workerspool"
	"github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/core/tensors"
	"github.com/pkg/errors"
)

// numericPool runs the perturbed evaluations of NumericGradient, one task per element of the parameter.
var numericPool = workerspool.New()

// NumericGradient estimates the gradient of the sum of all elements of output with respect to the
// parameter param, using central finite differences with the given epsilon.
//
// It is the numeric counterpart of a symbolic gradient seeded with ones, and is meant to check it.
// Use Float64 parameters for meaningful precision. Elements are perturbed in parallel.
func NumericGradient(output, param *graph.Node, feeds map[string]*tensors.Tensor, epsilon float64) (
	grad *tensors.Tensor, err error) {
	err = exceptions.TryCatch[error](func() {
		grad = mustNumericGradient(output, param, feeds, epsilon)
	})
	return
}

func mustNumericGradient(output, param *graph.Node, feeds map[string]*tensors.Tensor, epsilon float64) *tensors.Tensor {
	name := param.ParameterName()
	base, found := feeds[name]
	if !found {
		panic(errors.Errorf("NumericGradient: no value fed for parameter %q", name))
	}
	if !param.DType().IsFloat() {
		panic(errors.Errorf("NumericGradient: parameter %q must be a float, got %s", name, param.Shape()))
	}
	sumAt := func(index int, delta float64) float64 {
		values := base.Flat()
		values[index] += delta
		perturbed := maps.Clone(feeds)
		perturbed[name] = tensors.FromFlat(base.Shape(), values)
		var sum float64
		for _, value := range MustExecute([]*graph.Node{output}, perturbed)[0].Flat() {
			sum += value
		}
		return sum
	}
	grad := make([]float64, base.Size())
	var mu sync.Mutex
	var firstErr error
	numericPool.ForEach(len(grad), func(ii int) {
		err := exceptions.TryCatch[error](func() {
			grad[ii] = (sumAt(ii, epsilon) - sumAt(ii, -epsilon)) / (2 * epsilon)
		})
		if err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}
	})
	if firstErr != nil {
		panic(firstErr)
	}
	return tensors.FromFlat(base.Shape(), grad)
}
