// Command poolcalc drives one of the pthreader example collaborators
// (identitysum, montecarlo, leastsquares) against a configurable pool size.
// It is a demonstration driver, not part of the library's API surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/wrossmorrow/pthreader"
	"github.com/wrossmorrow/pthreader/examples/identitysum"
	"github.com/wrossmorrow/pthreader/examples/leastsquares"
	"github.com/wrossmorrow/pthreader/examples/montecarlo"
)

func main() {
	workers := flag.Int("workers", 4, "total worker count, including the controller")
	verbose := flag.Bool("verbose", false, "print pool lifecycle diagnostics")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: poolcalc [-workers N] [-verbose] <identitysum|montecarlo|leastsquares>")
		os.Exit(1)
	}

	var err error
	switch flag.Arg(0) {
	case "identitysum":
		err = runIdentitySum(*workers, *verbose)
	case "montecarlo":
		err = runMonteCarlo(*workers, *verbose)
	case "leastsquares":
		err = runLeastSquares(*workers, *verbose)
	default:
		fmt.Fprintf(os.Stderr, "unknown example %q\n", flag.Arg(0))
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runIdentitySum(workers int, verbose bool) error {
	opts := []pthreader.PoolOption{}
	if verbose {
		opts = append(opts, pthreader.WithVerbose())
	}
	pool, err := identitysum.NewPool(workers, opts...)
	if err != nil {
		return err
	}
	defer pool.Discard() //nolint:errcheck

	ctx := context.Background()
	if err := pool.Launch(ctx, nil); err != nil {
		return err
	}
	if err := pool.Evaluate(ctx, nil, nil); err != nil {
		return err
	}

	sum := 0
	for i := 0; i < workers; i++ {
		sum += pool.Status(i)
	}
	fmt.Printf("sum of worker indices: %d (expected %d)\n", sum, identitysum.Sum(workers))
	return nil
}

func runMonteCarlo(workers int, verbose bool) error {
	opts := []pthreader.PoolOption{}
	if verbose {
		opts = append(opts, pthreader.WithVerbose())
	}
	pool, err := montecarlo.NewPool(workers, opts...)
	if err != nil {
		return err
	}
	defer pool.Discard() //nolint:errcheck

	ctx := context.Background()
	params := &montecarlo.Params{GridSize: 13}
	if err := pool.Launch(ctx, params); err != nil {
		return err
	}

	trials := 1000
	results := make([]float64, workers)
	if err := pool.Evaluate(ctx, trials, results); err != nil {
		return err
	}
	fmt.Printf("estimated probability: %0.4f\n", montecarlo.Aggregate(trials, results))
	return nil
}

func runLeastSquares(workers int, verbose bool) error {
	opts := []pthreader.PoolOption{}
	if verbose {
		opts = append(opts, pthreader.WithVerbose())
	}
	pool, err := leastsquares.NewPool(workers, opts...)
	if err != nil {
		return err
	}
	defer pool.Discard() //nolint:errcheck

	const nobsv, nvars = 200, 3
	trueCoeffs := []float64{1.5, -0.5, 0.25}
	d := make([][]float64, nobsv)
	y := make([]float64, nobsv)
	for i := range d {
		row := make([]float64, nvars)
		var yi float64
		for j := range row {
			row[j] = 2.0*rand.Float64() - 1.0
			yi += row[j] * trueCoeffs[j]
		}
		d[i] = row
		y[i] = yi
	}

	ctx := context.Background()
	params := &leastsquares.Params{Nvars: nvars, D: d, Y: y}
	if err := pool.Launch(ctx, params); err != nil {
		return err
	}

	x := []float64{0, 0, 0}
	out := &leastsquares.EvalOutput{
		S: make([]float64, workers),
		G: make([][]float64, workers),
	}
	in := &leastsquares.EvalInput{X: x, Mode: leastsquares.ModeValue}
	if err := pool.Evaluate(ctx, in, out); err != nil {
		return err
	}

	total := 0.0
	for _, s := range out.S {
		total += s
	}
	fmt.Printf("sum of squared residuals at x=0: %0.4f\n", total)
	return nil
}
