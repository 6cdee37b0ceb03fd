// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"strings"
	"sync"
	"testing"

	"github.com/gomlx/symgrad/pkg/core/dtypes"
	"github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	g := graph.NewGraph("metadata")
	x := graph.Parameter(g, "x", shapes.Make(dtypes.Float32, 3))
	y := graph.Square(x)

	table := NewTable()
	_, found := table.Get(y)
	require.False(t, found)

	require.True(t, table.Add(y, Record{Name: "square"}))
	record, found := table.Get(y)
	require.True(t, found)
	assert.Equal(t, "square", record.Name)
	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.False(t, record.Backward)

	// Append-only: the first record wins.
	require.False(t, table.Add(y, Record{Name: "other"}))
	record2, _ := table.Get(y)
	assert.Equal(t, record, record2)

	require.Same(t, x, table.Annotate(x, "input"))
	record, found = table.Get(x)
	require.True(t, found)
	assert.True(t, strings.Contains(record.Caller, "metadata_test.go:"), "caller=%q", record.Caller)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []*graph.Node{x, y}, table.Nodes())
}

func TestAsBackward(t *testing.T) {
	forward := Record{ID: uuid.New(), Name: "matmul", Caller: "model.go:10"}
	backward := forward.AsBackward()
	assert.True(t, backward.Backward)
	assert.False(t, forward.Backward)
	assert.Equal(t, forward.Name, backward.Name)
	assert.Equal(t, forward.Caller, backward.Caller)
	assert.NotEqual(t, forward.ID, backward.ID)
	assert.Equal(t, "matmul@model.go:10 (backward)", backward.String())
}

func TestNilTable(t *testing.T) {
	var table *Table
	_, found := table.Get(nil)
	assert.False(t, found)
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Nodes())
}

func TestConcurrentAdd(t *testing.T) {
	g := graph.NewGraph("metadata")
	x := graph.Parameter(g, "x", shapes.Make(dtypes.Float32))
	table := NewTable()
	var wg sync.WaitGroup
	var mu sync.Mutex
	var numStored int
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if table.Add(x, Record{Name: "x"}) {
				mu.Lock()
				numStored++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, numStored)
	assert.Equal(t, 1, table.Len())
}
