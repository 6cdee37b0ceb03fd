// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gomlx/exceptions"
	. "github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/core/metadata"
	"github.com/gomlx/symgrad/pkg/core/tensors"
	"github.com/schollz/progressbar/v3"
)

// program is a canned expression ready to be differentiated.
type program struct {
	root   *Node
	params []*Node
	feeds  map[string]*tensors.Tensor
}

// param creates a Parameter fed with value, and registers it in the program.
func (p *program) param(g *Graph, meta *metadata.Table, name string, value any) *Node {
	t := tensors.FromValue(value)
	node := meta.Annotate(Parameter(g, name, t.Shape()), name)
	p.params = append(p.params, node)
	p.feeds[name] = t
	return node
}

// paramByName returns the parameter with the given name, or nil if not found.
func (p *program) paramByName(name string) *Node {
	idx := slices.IndexFunc(p.params, func(node *Node) bool { return node.ParameterName() == name })
	if idx < 0 {
		return nil
	}
	return p.params[idx]
}

type expression struct {
	name, description string
	build             func(p *program, g *Graph, meta *metadata.Table) *Node
}

var expressions = []expression{
	{
		name:        "scenarioA",
		description: "sum(x*x), x=[1 2 3]",
		build: func(p *program, g *Graph, meta *metadata.Table) *Node {
			x := p.param(g, meta, "x", []float32{1, 2, 3})
			return meta.Annotate(ReduceSum(meta.Annotate(Mul(x, x), "square"), 0), "sum")
		},
	},
	{
		name:        "scenarioB",
		description: "sum(transpose(x)), x of shape (2, 3)",
		build: func(p *program, g *Graph, meta *metadata.Table) *Node {
			x := p.param(g, meta, "x", [][]float32{{1, 2, 3}, {4, 5, 6}})
			return meta.Annotate(ReduceAllSum(meta.Annotate(Permute(x, 1, 0), "transpose")), "sum")
		},
	},
	{
		name:        "diamond",
		description: "sin(x) + x², x reaches the root through two paths",
		build: func(p *program, g *Graph, meta *metadata.Table) *Node {
			x := p.param(g, meta, "x", []float64{0.5, 1, 2})
			y := meta.Annotate(Sin(x), "sin")
			z := meta.Annotate(Square(x), "square")
			return meta.Annotate(ReduceAllSum(Add(y, z)), "sum")
		},
	},
	{
		name:        "max-ties",
		description: "max(x) with all elements tied, the gradient is split evenly",
		build: func(p *program, g *Graph, meta *metadata.Table) *Node {
			x := p.param(g, meta, "x", []float32{2, 2, 2})
			return meta.Annotate(ReduceMax(x, 0), "max")
		},
	},
	{
		name:        "pow",
		description: "sum(base^exponent), including 0^0 and 0^2",
		build: func(p *program, g *Graph, meta *metadata.Table) *Node {
			base := p.param(g, meta, "base", []float64{0, 0, 2, 3})
			exponent := p.param(g, meta, "exponent", []float64{0, 2, 3, 0.5})
			return meta.Annotate(ReduceAllSum(meta.Annotate(Pow(base, exponent), "pow")), "sum")
		},
	},
	{
		name:        "detach",
		description: "sum(sqrt(detach(2^x)) + x), only the direct path reaches x",
		build: func(p *program, g *Graph, meta *metadata.Table) *Node {
			x := p.param(g, meta, "x", []float32{1, 2})
			cut := meta.Annotate(Sqrt(Detach(Exp2(x))), "cut")
			return meta.Annotate(ReduceAllSum(Add(cut, x)), "sum")
		},
	},
	{
		name:        "sharding",
		description: "sum(x²) with x sharded on 2 devices along axis 0",
		build: func(p *program, g *Graph, meta *metadata.Table) *Node {
			x := p.param(g, meta, "x", [][]float32{{1, 2}, {3, 4}, {5, 6}, {7, 8}})
			sharded := meta.Annotate(Shard(x, []string{"GPU:0", "GPU:1"}, 0), "shard")
			return meta.Annotate(ReduceAllSum(Square(sharded)), "sum")
		},
	},
	{
		name:        "movement",
		description: "sum(w * flip(pad(shrink(x)))), exercising the movement ops",
		build: func(p *program, g *Graph, meta *metadata.Table) *Node {
			x := p.param(g, meta, "x", [][]float64{{1, 2, 3}, {4, 5, 6}})
			w := p.param(g, meta, "w", [][]float64{{1, 2, 3}, {4, 5, 6}})
			moved := Shrink(x, [][2]int{{0, 2}, {1, 3}})
			moved = Pad(moved, [][2]int{{0, 0}, {1, 0}})
			moved = meta.Annotate(Flip(moved, 1), "moved")
			return meta.Annotate(ReduceAllSum(Mul(w, moved)), "sum")
		},
	},
}

func expressionNames() []string {
	names := make([]string, len(expressions))
	for ii, expr := range expressions {
		names[ii] = expr.name
	}
	return names
}

// buildProgram builds the named expression in a new graph.
func buildProgram(name string, meta *metadata.Table) (*program, error) {
	idx := slices.IndexFunc(expressions, func(expr expression) bool { return expr.name == name })
	if idx < 0 {
		return nil, fmt.Errorf("unknown expression %q, valid expressions: %s", name, strings.Join(expressionNames(), ", "))
	}
	var p *program
	err := exceptions.TryCatch[error](func() {
		p = &program{feeds: make(map[string]*tensors.Tensor)}
		g := NewGraph(name)
		p.root = expressions[idx].build(p, g, meta)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// deepen wraps the root of the program in a chain of depth Contiguous nodes, with a progress bar
// if showProgress is set.
func (p *program) deepen(depth int, showProgress bool) {
	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.NewOptions(depth,
			progressbar.OptionSetDescription("Building chain"),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish())
	}
	root := p.root
	for range depth {
		root = Contiguous(root)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	p.root = root
}
