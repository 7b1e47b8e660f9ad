package maxmatching

import (
	"context"

	"github.com/fevancin/Scheduler-Project/internal/model"
	"github.com/fevancin/Scheduler-Project/internal/solver"
)

// FatArc is a candidate rename: From (a core component already present on
// its original day) may be renamed onto To (a request available on the
// target day).
type FatArc struct {
	From, To model.PatientServiceOperator
}

// FatModel is the bipartite max-matching MILP over a set of candidate fat
// arcs, plus whatever no-good cuts BanMatching has accumulated so far.
type FatModel struct {
	problem *solver.Problem
	arcs    []FatArc
	choose  []*solver.Variable
}

// BuildFatModel constructs the matching model for arcs. ok is false when a
// source vertex can never be assigned without an unavoidable name clash, in
// which case no matching exists and model is nil.
func BuildFatModel(arcs []FatArc) (model *FatModel, ok bool) {
	n := len(arcs)

	samePatient := func(i, j int) (bool, bool) {
		a, b := arcs[i], arcs[j]
		return a.From.Patient == b.From.Patient && a.To.Patient != b.To.Patient, true
	}
	sameOperator := func(i, j int) (bool, bool) {
		a, b := arcs[i], arcs[j]
		return a.From.Operator == b.From.Operator && a.To.Operator != b.To.Operator, true
	}

	consistency, ok := buildConsistencyAndCheck(n, samePatient, sameOperator)
	if !ok {
		return nil, false
	}

	names := make([]namePair, n)
	for i, a := range arcs {
		names[i] = namePair{sourceName: string(a.From.Patient) + "|" + string(a.From.Service) + "|" + string(a.From.Operator), destName: string(a.To.Patient) + "|" + string(a.To.Service) + "|" + string(a.To.Operator)}
	}

	problem, choose := buildMatchingProblem(names, consistency)
	return &FatModel{problem: problem, arcs: arcs, choose: choose}, true
}

// Solve returns the matching arcs chosen, i.e. the renames to apply.
func (m *FatModel) Solve(ctx context.Context) ([]FatArc, error) {
	chosen, err := matched(ctx, m.problem, m.choose)
	if err != nil {
		return nil, err
	}
	var matching []FatArc
	for i, yes := range chosen {
		if yes {
			matching = append(matching, m.arcs[i])
		}
	}
	return matching, nil
}

// BanMatching adds a no-good cut forbidding exactly this set of arcs from
// being chosen together again.
func (m *FatModel) BanMatching(matching []FatArc) {
	if len(matching) == 0 {
		return
	}
	forbidden := make(map[FatArc]bool, len(matching))
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
