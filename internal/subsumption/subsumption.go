// Package subsumption decides, for one care unit, whether a "big" day's
// operator roster subsumes a "small" day's: an injective assignment of
// small operators into big operators such that each small shift is
// contained in its assigned big shift, and no two small operators whose
// shifts overlap are assigned to the same big operator. Grounded on
// original_source/src/milp_models/subsumption_model.py.
package subsumption

import (
	"context"
	"fmt"

	"github.com/fevancin/Scheduler-Project/internal/model"
	"github.com/fevancin/Scheduler-Project/internal/solver"
)

type choiceKey struct {
	Small model.OperatorName
	Big   model.OperatorName
}

// Model is the feasibility matching MILP for one (big day, small day) pair
// within a single care unit.
type Model struct {
	problem *solver.Problem
	choose  map[choiceKey]*solver.Variable

	smallOperators map[model.OperatorName]model.Operator
}

// Build constructs the subsumption-feasibility model: bigOperators and
// smallOperators are the operator rosters of one care unit on the "big" and
// "small" day respectively.
func Build(bigOperators, smallOperators map[model.OperatorName]model.Operator) *Model {
	problem := solver.NewProblem()
	problem.Maximize()

	m := &Model{
		problem:        &problem,
		choose:         make(map[choiceKey]*solver.Variable),
		smallOperators: smallOperators,
	}

	for smallName, small := range smallOperators {
		for bigName, big := range bigOperators {
			if contains(big, small) {
				key := choiceKey{Small: smallName, Big: bigName}
				m.choose[key] = problem.AddVariable(fmt.Sprintf("choose|%s|%s", smallName, bigName)).IsInteger().UpperBound(1)
				m.choose[key].SetCoeff(1)
			}
		}
	}

	// max_one_choice_per_small_operators
	bySmall := make(map[model.OperatorName][]choiceKey)
	for key := range m.choose {
		bySmall[key.Small] = append(bySmall[key.Small], key)
	}
	for _, keys := range bySmall {
		c := problem.AddConstraint().SmallerThanOrEqualTo(1)
		for _, key := range keys {
			c.AddExpression(1, m.choose[key])
		}
	}

	// injectivity: each big operator receives at most one small operator.
	byBig := make(map[model.OperatorName][]choiceKey)
	for key := range m.choose {
		byBig[key.Big] = append(byBig[key.Big], key)
	}
	for _, keys := range byBig {
		c := problem.AddConstraint().SmallerThanOrEqualTo(1)
		for _, key := range keys {
			c.AddExpression(1, m.choose[key])
		}
	}

	// maintain_consistency: two small operators whose shifts overlap cannot
	// both be assigned to the same big operator.
	seen := make(map[[3]model.OperatorName]bool)
	for onName, on := range smallOperators {
		for oonName, oon := range smallOperators {
			if onName == oonName {
				continue
			}
			if !overlaps(on, oon) {
				continue
			}
			for bigName := range bigOperators {
				a, aOK := m.choose[choiceKey{Small: onName, Big: bigName}]
				b, bOK := m.choose[choiceKey{Small: oonName, Big: bigName}]
				if !aOK || !bOK {
					continue
				}
				triple := canonicalTriple(onName, oonName, bigName)
				if seen[triple] {
					continue
				}
				seen[triple] = true

				c := problem.AddConstraint().SmallerThanOrEqualTo(1)
				c.AddExpression(1, a)
				c.AddExpression(1, b)
			}
		}
	}

	return m
}

func contains(big, small model.Operator) bool {
	return small.Start >= big.Start && small.End() <= big.End()
}

func overlaps(a, b model.Operator) bool {
	return (a.Start <= b.Start && a.End() >= b.Start) || (b.Start <= a.Start && b.End() >= a.Start)
}

func canonicalTriple(a, b, big model.OperatorName) [3]model.OperatorName {
	if a > b {
		a, b = b, a
	}
	return [3]model.OperatorName{a, b, big}
}

// HasSolution reports whether every small operator was assigned a distinct,
// consistent big operator, i.e. the big day fully subsumes the small day.
func (m *Model) HasSolution(ctx context.Context) (bool, error) {
	soln, err := m.problem.Solve(ctx)
	if err != nil {
		return false, err
	}

	assigned := make(map[model.OperatorName]bool)
	for key, v := range m.choose {
		val, err := soln.GetValueFor(v.Name())
		if err != nil {
			return false, err
		}
		if val > 0.5 {
			assigned[key.Small] = true
		}
	}

	for name := range m.smallOperators {
		if !assigned[name] {
			return false, nil
		}
	}
	return true, nil
}
