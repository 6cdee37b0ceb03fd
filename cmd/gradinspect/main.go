// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// gradinspect builds one of a set of canned expressions, computes its symbolic gradient and prints
// the resulting gradient graph. Optionally it evaluates the gradients with the simplego backend.
//
// Usage:
//
//	gradinspect -expr=diamond -eval
//	gradinspect -expr=pow -targets=base -all
//	gradinspect -expr=scenarioA -deep=100000
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomlx/symgrad/pkg/support/xslices"
	"github.com/muesli/termenv"
	"k8s.io/klog/v2"
)

// NoColorEnv is the environment variable that, if set to any non-empty value, disables colors in the output.
const NoColorEnv = "GRADINSPECT_NO_COLOR"

var (
	flagExpr = flag.String("expr", "scenarioA",
		fmt.Sprintf("Expression to differentiate, one of: %s.", strings.Join(expressionNames(), ", ")))
	flagTargets = xslices.Flag("targets", nil,
		"Comma-separated list of parameter names to differentiate against. Defaults to all parameters of the expression.",
		func(name string) (string, error) { return name, nil })
	flagEval = flag.Bool("eval", false, "Evaluate the expression and its gradients with the simplego backend.")
	flagAll  = flag.Bool("all", false, "List the gradient of every node reached, not only of the targets.")
	flagDeep = flag.Int("deep", 0, "If > 0, wraps the expression in a chain of that many nodes before "+
		"differentiating it, to stress test very deep graphs.")
	flagNoColor = flag.Bool("nocolor", false,
		fmt.Sprintf("Disable colors in the output. Setting %s in the environment has the same effect.", NoColorEnv))
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if len(flag.Args()) > 0 {
		klog.Errorf("Unexpected arguments %q. See 'gradinspect -help'.", flag.Args())
		os.Exit(1)
	}
	if *flagNoColor || os.Getenv(NoColorEnv) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	if *flagDeep < 0 {
		klog.Fatalf("-deep must be >= 0, got %d", *flagDeep)
	}
	err := inspect(os.Stdout, options{
		exprName: *flagExpr,
		targets:  *flagTargets,
		eval:     *flagEval,
		all:      *flagAll,
		depth:    *flagDeep,
		progress: true,
	})
	if err != nil {
		klog.Errorf("Failed to inspect %q: %+v", *flagExpr, err)
		os.Exit(1)
	}
}
