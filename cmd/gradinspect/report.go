// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/symgrad/backends/simplego"
	"github.com/gomlx/symgrad/pkg/core/autodiff"
	"github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/core/metadata"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// maxNodeWidth is the maximum length of a node description in a table cell.
const maxNodeWidth = 72

type options struct {
	exprName string
	targets  []string
	eval     bool
	all      bool
	depth    int
	progress bool
}

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)

	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)
)

func newPlainTable(withHeader bool) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if withHeader && row == 1 {
				return headerRowStyle
			}
			if row%2 == 0 {
				s = oddRowStyle
			} else {
				s = evenRowStyle
			}
			if col == 0 {
				return s.Align(lipgloss.Right)
			}
			return s.Align(lipgloss.Left)
		})
}

// selectTargets returns the parameters named in names, or all parameters if names is empty.
func (p *program) selectTargets(names []string) ([]*graph.Node, error) {
	if len(names) == 0 {
		return p.params, nil
	}
	targets := make([]*graph.Node, 0, len(names))
	for _, name := range names {
		target := p.paramByName(name)
		if target == nil {
			valid := make([]string, len(p.params))
			for ii, param := range p.params {
				valid[ii] = param.ParameterName()
			}
			return nil, errors.Errorf("unknown target %q, the expression parameters are: %s",
				name, strings.Join(valid, ", "))
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func provenance(meta *metadata.Table, node *graph.Node) string {
	if record, found := meta.Get(node); found {
		return record.String()
	}
	return "-"
}

// inspect builds, differentiates and reports the expression selected in opts to w.
func inspect(w io.Writer, opts options) error {
	meta := metadata.NewTable()
	p, err := buildProgram(opts.exprName, meta)
	if err != nil {
		return err
	}
	targets, err := p.selectTargets(opts.targets)
	if err != nil {
		return err
	}
	if opts.depth > 0 {
		p.deepen(opts.depth, opts.progress)
	}
	g := p.root.Graph()
	numForward := g.NumNodes()
	gradients, err := autodiff.ComputeGradient(meta, p.root, graph.OnesLike(p.root), targets...)
	if err != nil {
		return errors.WithMessagef(err, "differentiating expression %q", opts.exprName)
	}
	klog.V(1).Infof("%q: %d forward nodes, %d gradient nodes", g.Name(), numForward, g.NumNodes()-numForward)

	var gradMemory uintptr
	for _, target := range targets {
		if grad, found := gradients[target]; found {
			gradMemory += grad.Shape().Memory()
		}
	}
	expr := expressions[slices.IndexFunc(expressions, func(e expression) bool { return e.name == opts.exprName })]
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Expression %q", expr.name)))
	table := newPlainTable(false)
	table.Row("description", expr.description)
	table.Row("root", p.root.TruncatedString(maxNodeWidth))
	table.Row("# forward nodes", humanize.Comma(int64(numForward)))
	table.Row("# backward nodes", humanize.Comma(int64(g.NumNodes()-numForward)))
	table.Row("# gradients", humanize.Comma(int64(len(gradients))))
	table.Row("# metadata records", humanize.Comma(int64(meta.Len())))
	table.Row("gradients memory", humanize.Bytes(uint64(gradMemory)))
	fmt.Fprintln(w, table.Render())

	fmt.Fprintln(w, titleStyle.Render("Gradients"))
	table = newPlainTable(true)
	table.Row("Target", "Shape", "Gradient", "Provenance")
	for _, target := range targets {
		grad, found := gradients[target]
		if !found {
			table.Row(target.ParameterName(), target.Shape().String(), "(no gradient)", "-")
			continue
		}
		table.Row(target.ParameterName(), target.Shape().String(), grad.TruncatedString(maxNodeWidth),
			provenance(meta, grad))
	}
	fmt.Fprintln(w, table.Render())

	if opts.all {
		nodes := make([]*graph.Node, 0, len(gradients))
		for node := range gradients {
			nodes = append(nodes, node)
		}
		slices.SortFunc(nodes, func(a, b *graph.Node) int { return int(a.Id()) - int(b.Id()) })
		fmt.Fprintln(w, titleStyle.Render("All gradients"))
		table = newPlainTable(true)
		table.Row("Node", "Type", "Gradient", "Provenance")
		for _, node := range nodes {
			grad := gradients[node]
			table.Row(fmt.Sprintf("#%d", node.Id()), node.Type().String(), grad.TruncatedString(maxNodeWidth),
				provenance(meta, grad))
		}
		fmt.Fprintln(w, table.Render())
	}

	if opts.eval {
		outputs := []*graph.Node{p.root}
		for _, target := range targets {
			if grad, found := gradients[target]; found {
				outputs = append(outputs, grad)
			} else {
				outputs = append(outputs, graph.ZerosLike(target))
			}
		}
		results := must.M1(simplego.Execute(outputs, p.feeds))
		fmt.Fprintln(w, titleStyle.Render("Values"))
		table = newPlainTable(true)
		table.Row("Name", "Value", "Gradient")
		table.Row("root", results[0].String(), "-")
		for ii, target := range targets {
			name := target.ParameterName()
			table.Row(name, p.feeds[name].String(), results[ii+1].String())
		}
		fmt.Fprintln(w, table.Render())
	}
	return nil
}
