package maxmatching

import (
	"context"

	"github.com/fevancin/Scheduler-Project/internal/model"
	"github.com/fevancin/Scheduler-Project/internal/solver"
)

// SlimArc is FatArc's operator-less counterpart.
type SlimArc struct {
	From, To model.PatientService
}

// SlimModel is SlimArc's FatModel counterpart.
type SlimModel struct {
	problem *solver.Problem
	arcs    []SlimArc
	choose  []*solver.Variable
}

// BuildSlimModel is BuildFatModel's slim counterpart: there is no operator
// to compare, so only the patient-name consistency check applies.
func BuildSlimModel(arcs []SlimArc) (model *SlimModel, ok bool) {
	n := len(arcs)

	samePatient := func(i, j int) (bool, bool) {
		a, b := arcs[i], arcs[j]
		return a.From.Patient == b.From.Patient && a.To.Patient != b.To.Patient, true
	}
	noOperator := func(i, j int) (bool, bool) { return false, false }

	consistency, ok := buildConsistencyAndCheck(n, samePatient, noOperator)
	if !ok {
		return nil, false
	}

	names := make([]namePair, n)
	for i, a := range arcs {
		names[i] = namePair{sourceName: string(a.From.Patient) + "|" + string(a.From.Service), destName: string(a.To.Patient) + "|" + string(a.To.Service)}
	}

	problem, choose := buildMatchingProblem(names, consistency)
	return &SlimModel{problem: problem, arcs: arcs, choose: choose}, true
}

// Solve returns the matching arcs chosen, i.e. the renames to apply.
func (m *SlimModel) Solve(ctx context.Context) ([]SlimArc, error) {
	chosen, err := matched(ctx, m.problem, m.choose)
	if err != nil {
		return nil, err
	}
	var matching []SlimArc
	for i, yes := range chosen {
		if yes {
			matching = append(matching, m.arcs[i])
		}
	}
	return matching, nil
}

// BanMatching is FatModel.BanMatching's slim counterpart.
func (m *SlimModel) BanMatching(matching []SlimArc) {
	if len(matching) == 0 {
		return
	}
	forbidden := make(map[SlimArc]bool, len(matching))
	for _, a := range matching {
		forbidden[a] = true
	}

	c := m.problem.AddConstraint().SmallerThanOrEqualTo(float64(len(matching) - 1))
	for i, a := range m.arcs {
		if forbidden[a] {
			c.AddExpression(1, m.choose[i])
		}
	}
}
