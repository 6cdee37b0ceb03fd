// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package metadata holds provenance records attached to graph nodes: which user-level operation created
// a node, from where it was called, and whether it was created while computing gradients.
//
// The Table is append-only: records are never removed or modified in place.
package metadata

import (
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/google/uuid"
	"golang.org/x/exp/maps"
)

// Record describes the provenance of a node.
type Record struct {
	// ID identifies the record. It is assigned by Table.Add if not set.
	ID uuid.UUID

	// Name of the user level operation that created the node, e.g.: "softmax".
	Name string

	// Caller is the "file:line" of the code that created the node, if known.
	Caller string

	// Backward is set for records attached to nodes created during gradient computation.
	Backward bool
}

// String implements fmt.Stringer.
func (r Record) String() string {
	str := r.Name
	if r.Caller != "" {
		str = fmt.Sprintf("%s@%s", str, r.Caller)
	}
	if r.Backward {
		str += " (backward)"
	}
	return str
}

// AsBackward returns a copy of the record flagged as created during the backward pass, with a new ID.
func (r Record) AsBackward() Record {
	r.ID = uuid.New()
	r.Backward = true
	return r
}

// Table maps nodes to their provenance Record.
//
// It is safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	records map[*graph.Node]Record
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{records: make(map[*graph.Node]Record)}
}

// Get returns the record of the node, if there is one. It is safe to call on a nil Table.
func (t *Table) Get(node *graph.Node) (Record, bool) {
	if t == nil {
		return Record{}, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	record, found := t.records[node]
	return record, found
}

// Add stores the record for the node, unless the node already has one, in which case it is a no-op.
// It returns whether the record was stored.
//
// A zero record ID is replaced by a new random one.
func (t *Table) Add(node *graph.Node, record Record) bool {
	node.AssertValid()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, found := t.records[node]; found {
		return false
	}
	t.records[node] = record
	return true
}

// Annotate adds a record with the given name to node, with the "file:line" of the caller of Annotate.
// It returns node, so it can be chained in graph building code.
func (t *Table) Annotate(node *graph.Node, name string) *graph.Node {
	record := Record{Name: name}
	if _, file, line, ok := runtime.Caller(1); ok {
		record.Caller = fmt.Sprintf("%s:%d", file, line)
	}
	t.Add(node, record)
	return node
}

// Len returns the number of records in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// Nodes returns the nodes with a record, sorted by their graph and node ids.
func (t *Table) Nodes() []*graph.Node {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	nodes := maps.Keys(t.records)
	t.mu.RUnlock()
	slices.SortFunc(nodes, func(a, b *graph.Node) int {
		if a.Graph() != b.Graph() {
			if a.Graph().Name() < b.Graph().Name() {
				return -1
			}
			return 1
		}
		return int(a.Id()) - int(b.Id())
	})
	return nodes
}
