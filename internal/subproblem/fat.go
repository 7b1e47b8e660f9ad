package subproblem

import (
	"context"
	"fmt"
	"sort"

	"github.com/fevancin/Scheduler-Project/internal/model"
	"github.com/fevancin/Scheduler-Project/internal/solver"
)

type overlapKey struct {
	PatientA model.PatientName
	ServiceA model.ServiceName
	OperatorA model.OperatorName
	PatientB model.PatientName
	ServiceB model.ServiceName
	OperatorB model.OperatorName
}

// FatModel is the operator-fixed packing model for a single day: every
// request already names its operator, so the model only decides whether
// the request is carried out and, if so, at what time.
type FatModel struct {
	instance model.SubproblemInstance
	problem  *solver.Problem

	do      map[doKey]*solver.Variable
	time    map[doKey]*solver.Variable
	overlap map[overlapKey]*solver.Variable
}

// BuildFatModel constructs the fat (operator-fixed) subproblem model for
// inst.
func BuildFatModel(inst model.SubproblemInstance) (*FatModel, error) {
	problem := solver.NewProblem()
	problem.Maximize()

	m := &FatModel{
		instance: inst,
		problem:  &problem,
		do:       make(map[doKey]*solver.Variable),
		time:     make(map[doKey]*solver.Variable),
		overlap:  make(map[overlapKey]*solver.Variable),
	}

	maxTime := careUnitMaxTime(inst.Roster)
	operators := inst.Roster.Operators()

	seen := make(map[doKey]bool)
	var keys []doKey
	for _, req := range inst.Requests {
		key := doKey{Patient: req.Patient, Service: req.Service, Operator: req.Operator}
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)

		svc, ok := inst.Services[req.Service]
		if !ok {
			return nil, fmt.Errorf("subproblem: unknown service %q requested by %q", req.Service, req.Patient)
		}
		op, ok := operators[req.Operator]
		if !ok {
			return nil, fmt.Errorf("subproblem: unknown operator %q for request (%q,%q)", req.Operator, req.Patient, req.Service)
		}
		ub := op.End() + 1 - svc.Duration

		m.do[key] = problem.AddVariable(fmt.Sprintf("do|%s|%s|%s", req.Patient, req.Service, req.Operator)).IsInteger().UpperBound(1)
		m.time[key] = problem.AddVariable(fmt.Sprintf("time|%s|%s|%s", req.Patient, req.Service, req.Operator)).IsInteger().UpperBound(float64(ub))

		// respect_operator_start
		c1 := problem.AddConstraint().SmallerThanOrEqualTo(0)
		c1.AddExpression(float64(op.Start+1), m.do[key])
		c1.AddExpression(-1, m.time[key])

		// respect_operator_end
		c2 := problem.AddConstraint().SmallerThanOrEqualTo(0)
		c2.AddExpression(1, m.time[key])
		c2.AddExpression(-float64(ub), m.do[key])
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Patient != keys[j].Patient {
			return keys[i].Patient < keys[j].Patient
		}
		if keys[i].Service != keys[j].Service {
			return keys[i].Service < keys[j].Service
		}
		return keys[i].Operator < keys[j].Operator
	})

	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			a, b := keys[i], keys[j]
			if a.Patient != b.Patient && a.Operator != b.Operator {
				continue
			}

			ok := overlapKey{PatientA: a.Patient, ServiceA: a.Service, OperatorA: a.Operator, PatientB: b.Patient, ServiceB: b.Service, OperatorB: b.Operator}
			overlapVar := problem.AddVariable(fmt.Sprintf("overlap|%s|%s|%s|%s|%s|%s", a.Patient, a.Service, a.Operator, b.Patient, b.Service, b.Operator)).IsInteger().UpperBound(1)
			m.overlap[ok] = overlapVar

			mtA := maxTime[inst.Services[a.Service].CareUnit]
			mtB := maxTime[inst.Services[b.Service].CareUnit]

			// not_overlap_1
			c1 := problem.AddConstraint().SmallerThanOrEqualTo(float64(mtA))
			c1.AddExpression(1, m.time[a])
			c1.AddExpression(float64(inst.Services[a.Service].Duration), m.do[a])
			c1.AddExpression(-1, m.time[b])
			c1.AddExpression(float64(mtA), overlapVar)

			// not_overlap_2
			c2 := problem.AddConstraint().SmallerThanOrEqualTo(0)
			c2.AddExpression(1, m.time[b])
			c2.AddExpression(float64(inst.Services[b.Service].Duration), m.do[b])
			c2.AddExpression(-1, m.time[a])
			c2.AddExpression(-float64(mtB), overlapVar)

			// overlap_auxiliary_constraint_1
			c3 := problem.AddConstraint().SmallerThanOrEqualTo(0)
			c3.AddExpression(1, overlapVar)
			c3.AddExpression(-1, m.do[b])

			// overlap_auxiliary_constraint_2
			c4 := problem.AddConstraint().SmallerThanOrEqualTo(0)
			c4.AddExpression(1, m.do[b])
			c4.AddExpression(-1, m.do[a])
			c4.AddExpression(-1, overlapVar)
		}
	}

	for _, key := range keys {
		m.do[key].SetCoeff(float64(inst.Services[key.Service].Duration) * patientPriority(inst, key.Patient))
	}

	return m, nil
}

// Solve runs the narrow MILP port and returns the extracted result.
func (m *FatModel) Solve(ctx context.Context) (model.SubproblemResult, error) {
	soln, err := m.problem.Solve(ctx)
	if err != nil {
		return model.SubproblemResult{}, err
	}
	return m.extractResult(soln)
}

func (m *FatModel) extractResult(soln *solver.Solution) (model.SubproblemResult, error) {
	result := model.SubproblemResult{Fat: true}

	for key, doVar := range m.do {
		val, err := soln.GetValueFor(doVar.Name())
		if err != nil {
			return model.SubproblemResult{}, err
		}
		if val < 0.5 {
			result.Rejected = append(result.Rejected, model.PatientServiceOperator{Patient: key.Patient, Service: key.Service, Operator: key.Operator})
			continue
		}
		tVal, err := soln.GetValueFor(m.time[key].Name())
		if err != nil {
			return model.SubproblemResult{}, err
		}
		result.Scheduled = append(result.Scheduled, model.PatientServiceOperatorTimeSlot{
			Patient:  key.Patient,
			Service:  key.Service,
			Operator: key.Operator,
			Time:     model.TimeSlot(tVal) - 1,
		})
	}

	sort.Slice(result.Scheduled, func(i, j int) bool {
		a, b := result.Scheduled[i], result.Scheduled[j]
		if a.Patient != b.Patient {
			return a.Patient < b.Patient
		}
		if a.Service != b.Service {
			return a.Service < b.Service
		}
		if a.Operator != b.Operator {
			return a.Operator < b.Operator
		}
		return a.Time < b.Time
	})
	sort.Slice(result.Rejected, func(i, j int) bool {
		if result.Rejected[i].Patient != result.Rejected[j].Patient {
			return result.Rejected[i].Patient < result.Rejected[j].Patient
		}
		return result.Rejected[i].Service < result.Rejected[j].Service
	})

	return result, nil
}
