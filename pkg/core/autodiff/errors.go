// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autodiff

import (
	"fmt"

	"github.com/gomlx/symgrad/pkg/core/graph"
)

// UnsupportedGradientError is returned when the gradient has to flow through a node type for which
// there is no gradient rule.
type UnsupportedGradientError struct {
	NodeType graph.NodeType

	// Node is the description of the offending node and its inputs, truncated to graph.MaxStringLength.
	Node string
}

func (e *UnsupportedGradientError) Error() string {
	return fmt.Sprintf("failed to compute gradient for %s\n\nin %s", e.NodeType, e.Node)
}

// ArityMismatchError is returned when a gradient rule returns a number of contributions different from
// the number of inputs of the node. It indicates a bug in the rule.
type ArityMismatchError struct {
	NodeType  graph.NodeType
	Got, Want int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("gradient rule for %s returned %d gradients, expected %d (one per input)",
		e.NodeType, e.Got, e.Want)
}
