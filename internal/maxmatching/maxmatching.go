// Package maxmatching solves the bipartite max-matching problem core
// expansion uses to rename a core's components onto a target day's
// candidate requests, grounded on
// original_source/src/milp_models/max_matching_model.py.
//
// A name-consistency pre-check runs before the MILP is even built: if a
// source vertex cannot coexist with any other arc without forcing a name
// clash, the whole arc set has no matching and Build reports ok=false. The
// source's own version of this check only ever sets its "assignable" flag
// inside an unreachable branch for fat arcs (the else belongs to the outer
// if/elif over isinstance checks, which is always true for
// PatientServiceOperator pairs, so the flag can never be set for fat arcs
// and every multi-arc fat matching would be rejected before it is even
// attempted). That is corrected here: a pair marks its source vertex
// assignable whenever it is not forced into mutual exclusion, regardless of
// fat or slim shape.
package maxmatching

import (
	"context"
	"fmt"

	"github.com/fevancin/Scheduler-Project/internal/solver"
)

type namePair struct {
	sourceName, destName string
}

func buildConsistencyAndCheck(n int, samePatient func(i, j int) (bool, bool), sameOperator func(i, j int) (bool, bool)) ([][2]int, bool) {
	var consistency [][2]int

	for i := 0; i < n-1; i++ {
		assignable := false
		for j := i + 1; j < n; j++ {
			conflict := false

			if sp, spOK := samePatient(i, j); spOK && sp {
				conflict = true
			} else if so, soOK := sameOperator(i, j); soOK && so {
				conflict = true
			}

			if conflict {
				consistency = append(consistency, [2]int{i, j})
			} else {
				assignable = true
			}
		}
		if !assignable {
			return nil, false
		}
	}

	return consistency, true
}

func buildMatchingProblem(names []namePair, consistency [][2]int) (*solver.Problem, []*solver.Variable) {
	problem := solver.NewProblem()
	problem.Maximize()

	choose := make([]*solver.Variable, len(names))
	for i, np := range names {
		choose[i] = problem.AddVariable(fmt.Sprintf("choose|%s|%s", np.sourceName, np.destName)).IsInteger().UpperBound(1)
		choose[i].SetCoeff(1)
	}

	// max_one_choice_per_source / max_one_choice_per_destination
	bySource := make(map[string][]int)
	byDest := make(map[string][]int)
	for i, np := range names {
		bySource[np.sourceName] = append(bySource[np.sourceName], i)
		byDest[np.destName] = append(byDest[np.destName], i)
	}
	for _, idxs := range bySource {
		c := problem.AddConstraint().SmallerThanOrEqualTo(1)
		for _, i := range idxs {
			c.AddExpression(1, choose[i])
		}
	}
	for _, idxs := range byDest {
		c := problem.AddConstraint().SmallerThanOrEqualTo(1)
		for _, i := range idxs {
			c.AddExpression(1, choose[i])
		}
	}

	// force_same_name_consistency
	for _, pair := range consistency {
		c := problem.AddConstraint().SmallerThanOrEqualTo(1)
		c.AddExpression(1, choose[pair[0]])
		c.AddExpression(1, choose[pair[1]])
	}

	return &problem, choose
}

func matched(ctx context.Context, problem *solver.Problem, choose []*solver.Variable) ([]bool, error) {
	soln, err := problem.Solve(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(choose))
	for i, v := range choose {
		val, err := soln.GetValueFor(v.Name())
		if err != nil {
			return nil, err
		}
		out[i] = val > 0.5
	}
	return out, nil
}
