// Package grid evaluates functions of the model parameter over evenly spaced
// grids, for plotting and export.
package grid

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"

	"bayesplay/domain/core"
	"bayesplay/ports"
)

// chunkSize is the number of grid points evaluated per FunctionVec call.
const chunkSize = 256

// Series is a named function to sweep.
type Series struct {
	Name string
	Fn   ports.Function
}

// Column holds the values of one series. Nil cells are points outside the
// function's support or where it was not finite. Mass is the exact integral
// over the grid range and is set only for series whose function is a
// ports.Density.
type Column struct {
	Name   string
	Values []*float64
	Mass   *float64
}

// Table is the result of a sweep.
type Table struct {
	X       []float64
	Columns []Column
}

// Summary describes the finite cells of a column.
type Summary struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Missing int     `json:"missing"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	ArgMax  float64 `json:"argmax"`
	// Area is the trapezoidal integral over runs of consecutive finite cells.
	Area float64  `json:"area"`
	Mass *float64 `json:"mass,omitempty"`
}

// Points returns n evenly spaced points from lower to upper inclusive.
func Points(lower, upper float64, n int) ([]float64, error) {
	if math.IsNaN(lower) || math.IsNaN(upper) || math.IsInf(lower, 0) || math.IsInf(upper, 0) {
		return nil, core.NewInvalidInputError("grid bounds must be finite")
	}
	if !(lower < upper) {
		return nil, core.NewInvalidInputError(fmt.Sprintf("grid lower bound %g is not below upper bound %g", lower, upper))
	}
	if n < 2 {
		return nil, core.NewInvalidInputError(fmt.Sprintf("grid needs at least 2 points, got %d", n))
	}
	return floats.Span(make([]float64, n), lower, upper), nil
}

// Sweep evaluates every series over n points in [lower, upper]. Chunks are
// evaluated concurrently; the first hard error cancels the rest. Densities are
// also integrated over the range.
func Sweep(ctx context.Context, lower, upper float64, n int, series ...Series) (*Table, error) {
	xs, err := Points(lower, upper, n)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, core.NewInvalidInputError("nothing to sweep")
	}

	table := &Table{X: xs, Columns: make([]Column, len(series))}
	sem := semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))
	g, gctx := errgroup.WithContext(ctx)

	for i, s := range series {
		col := make([]*float64, len(xs))
		table.Columns[i] = Column{Name: s.Name, Values: col}

		for start := 0; start < len(xs); start += chunkSize {
			end := min(start+chunkSize, len(xs))
			g.Go(func() error {
				if err := sem.Acquire(gctx, 1); err != nil {
					return err
				}
				defer sem.Release(1)

				vals, err := s.Fn.FunctionVec(xs[start:end])
				if err != nil {
					return fmt.Errorf("%s: %w", s.Name, err)
				}
				copy(col[start:end], vals)
				return nil
			})
		}

		if d, ok := s.Fn.(ports.Density); ok {
			g.Go(func() error {
				if err := sem.Acquire(gctx, 1); err != nil {
					return err
				}
				defer sem.Release(1)

				m, err := d.Integrate(&lower, &upper)
				if err != nil {
					return fmt.Errorf("%s mass: %w", s.Name, err)
				}
				table.Columns[i].Mass = &m
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return table, nil
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Summaries summarizes every column of the table.
func (t *Table) Summaries() ([]Summary, error) {
	out := make([]Summary, 0, len(t.Columns))
	for _, c := range t.Columns {
		s, err := Summarize(t.X, c)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Summarize reports the finite cells of a column evaluated at xs.
func Summarize(xs []float64, c Column) (Summary, error) {
	if len(xs) != len(c.Values) {
		return Summary{}, core.NewInvalidInputError(
			fmt.Sprintf("column %q has %d values for %d points", c.Name, len(c.Values), len(xs)))
	}

	finite := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if v != nil {
			finite = append(finite, *v)
		}
	}
	summary := Summary{Name: c.Name, Count: len(finite), Missing: len(c.Values) - len(finite), Mass: c.Mass}
	if len(finite) == 0 {
		return summary, core.NewInvalidInputError(fmt.Sprintf("column %q has no finite values", c.Name))
	}

	var err error
	if summary.Min, err = stats.Min(finite); err != nil {
		return summary, err
	}
	if summary.Max, err = stats.Max(finite); err != nil {
		return summary, err
	}
	if summary.Mean, err = stats.Mean(finite); err != nil {
		return summary, err
	}
	for i, v := range c.Values {
		if v != nil && *v == summary.Max {
			summary.ArgMax = xs[i]
			break
		}
	}
	summary.Area = area(xs, c.Values)
	return summary, nil
}

func area(xs []float64, values []*float64) float64 {
	var total float64
	var runX, runY []float64
	flush := func() {
		if len(runX) > 1 {
			total += integrate.Trapezoidal(runX, runY)
		}
		runX, runY = runX[:0], runY[:0]
	}
	for i, v := range values {
		if v == nil {
			flush()
			continue
		}
		runX = append(runX, xs[i])
		runY = append(runY, *v)
	}
	flush()
	return total
}
