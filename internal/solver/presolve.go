package solver

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// TODO: see Andersen 1995 for a nice enumeration of simple presolving operations.

// preProcessor accumulates undo operations so that a presolved Problem's
// solution can be expanded back to the shape the caller originally declared.
type preProcessor struct {
	undoers []undoer
}

// rawSolution maps variable names to their computed optimal values.
// Contains only variables that survived preprocessing.
type rawSolution map[string]float64

type undoer func(rawSolution) rawSolution

func newPreprocessor() *preProcessor {
	return &preProcessor{}
}

func (prepper *preProcessor) addUndoer(u undoer) {
	prepper.undoers = append(prepper.undoers, u)
}

// preSolve applies every registered reduction to p, returning a (possibly)
// smaller problem and recording how to undo each reduction.
func (prepper *preProcessor) preSolve(p Problem) Problem {
	return prepper.filterFixedVars(p)
}

// postSolve walks the undoers in reverse (LIFO) order, reinstating the
// values of variables that were removed during preSolve.
func (prepper *preProcessor) postSolve(s rawSolution) rawSolution {
	postsolved := s
	for i := len(prepper.undoers) - 1; i >= 0; i-- {
		postsolved = prepper.undoers[i](postsolved)
	}
	return postsolved
}

// isFixed reports whether the variable's bounds pin it to a single value.
func isFixed(variable *Variable) bool {
	return variable.lower == variable.upper
}

// filterFixedVars removes all fixed variables from the problem definition,
// folding their contribution into the RHS of each constraint they appear in.
// The removed values are restored onto the raw solution during postSolve via
// an undoer closure.
func (prepper *preProcessor) filterFixedVars(p Problem) Problem {
	filteredProb := p

	var newVars []*Variable
	fixedVars := make(map[string]float64)
	for _, v := range filteredProb.variables {
		if !isFixed(v) {
			newVars = append(newVars, v)
		} else {
			// store the value each fixed variable is pinned to, for reinsertion into the raw solution during postsolve.
			fixedVars[v.name] = v.lower
		}
	}

	filteredProb.variables = newVars

	for _, c := range filteredProb.constraints {
		var replacementExpressions []expression
		for _, e := range c.expressions {
			if isFixed(e.variable) {
				// update the RHS of the constraint and remove the expression pointing to this variable:
				// bi = bi − aij xj ,
				c.rhs = c.rhs - (e.coef * e.variable.lower)
			} else {
				replacementExpressions = append(replacementExpressions, e)
			}
		}
		c.expressions = replacementExpressions
	}

	if len(fixedVars) == 0 {
		return filteredProb
	}

	undo := func(s rawSolution) rawSolution {
		for fixedVar, fvalue := range fixedVars {
			if _, already := s[fixedVar]; already {
				panic(fmt.Sprintf("variable %s already in raw solution", fixedVar))
			}
			s[fixedVar] = fvalue
		}
		return s
	}

	prepper.addUndoer(undo)

	return filteredProb
}

// removeEmptyRows drops all-zero rows from an equality system (A, b) along
// with their corresponding entry in b. A zero row with a nonzero RHS would
// render the problem infeasible and is left untouched here; detecting that
// case is the caller's responsibility.
func removeEmptyRows(A *mat.Dense, b []float64) (*mat.Dense, []float64) {
	if A == nil {
		return A, b
	}

	rows, cols := A.Dims()

	var keptRows [][]float64
	var bNew []float64
	for i := 0; i < rows; i++ {
		row := mat.Row(nil, i, A)
		if sliceSum(abs(row)) == 0 {
			continue
		}
		keptRows = append(keptRows, row)
		bNew = append(bNew, b[i])
	}

	if len(keptRows) == rows {
		return A, b
	}

	flat := make([]float64, 0, len(keptRows)*cols)
	for _, row := range keptRows {
		flat = append(flat, row...)
	}

	return mat.NewDense(len(keptRows), cols, flat), bNew
}

func abs(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if v < 0 {
			out[i] = -v
		} else {
			out[i] = v
		}
	}
	return out
}

func sliceSum(x []float64) float64 {
	total := 0.0
	for _, valuex := range x {
		total += valuex
	}

	return total
}
