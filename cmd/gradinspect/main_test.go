// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomlx/symgrad/backends/simplego"
	"github.com/gomlx/symgrad/pkg/core/autodiff"
	"github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/core/metadata"
	"github.com/gomlx/symgrad/pkg/core/tensors"
	"github.com/janpfeifer/must"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestInspectAllExpressions(t *testing.T) {
	for _, name := range expressionNames() {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, inspect(&buf, options{exprName: name, eval: true, all: true}))
			out := buf.String()
			assert.Contains(t, out, name)
			assert.Contains(t, out, "Gradients")
			assert.Contains(t, out, "Values")
			assert.Contains(t, out, "(backward)")
		})
	}
}

func TestInspectErrors(t *testing.T) {
	var buf bytes.Buffer
	require.ErrorContains(t, inspect(&buf, options{exprName: "nope"}), "unknown expression")
	require.ErrorContains(t, inspect(&buf, options{exprName: "pow", targets: []string{"x"}}), "unknown target")
}

func TestExpressionGradients(t *testing.T) {
	testCases := []struct {
		name               string
		epsilon, tolerance float64
	}{
		{"scenarioA", 0.25, 1e-9},
		{"scenarioB", 0.25, 1e-9},
		{"diamond", 1e-6, 1e-6},
		{"sharding", 0.25, 1e-9},
		{"movement", 0.25, 1e-9},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := must.M1(buildProgram(tc.name, metadata.NewTable()))
			grads := autodiff.Gradient(nil, p.root, p.params...)
			results := must.M1(simplego.Execute(grads, p.feeds))
			for ii, param := range p.params {
				want := must.M1(simplego.NumericGradient(p.root, param, p.feeds, tc.epsilon))
				assert.True(t, results[ii].InDelta(want, tc.tolerance),
					"gradient of %q: got %s, numeric %s", param.ParameterName(), results[ii], want)
			}
		})
	}
}

func TestExpressionValues(t *testing.T) {
	gradientsOf := func(name string) []*tensors.Tensor {
		p := must.M1(buildProgram(name, metadata.NewTable()))
		return must.M1(simplego.Execute(autodiff.Gradient(nil, p.root, p.params...), p.feeds))
	}
	assert.Equal(t, []float32{2, 4, 6}, gradientsOf("scenarioA")[0].Value())
	assert.Equal(t, []float32{1, 1}, gradientsOf("detach")[0].Value())
	third := float32(1) / 3
	assert.True(t, gradientsOf("max-ties")[0].InDelta(tensors.FromValue([]float32{third, third, third}), 1e-7))

	pow := gradientsOf("pow")
	// d(b^e)/db = e*b^(e-1): 0 for 0^0, 0 for 0^2.
	assert.True(t, pow[0].InDelta(tensors.FromValue([]float64{0, 0, 12, 0.5 / 1.7320508075688772}), 1e-12),
		"got %s", pow[0])
}

func TestDeepen(t *testing.T) {
	p := must.M1(buildProgram("scenarioA", metadata.NewTable()))
	before := p.root
	p.deepen(10_000, false)
	require.Equal(t, before.Shape(), p.root.Shape())
	require.Equal(t, graph.NodeTypeContiguous, p.root.Type())
	results := must.M1(simplego.Execute(autodiff.Gradient(nil, p.root, p.params...), p.feeds))
	assert.Equal(t, []float32{2, 4, 6}, results[0].Value())
}
