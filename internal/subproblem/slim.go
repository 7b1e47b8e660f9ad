package subproblem

import (
	"context"
	"fmt"
	"sort"

	"github.com/fevancin/Scheduler-Project/internal/model"
	"github.com/fevancin/Scheduler-Project/internal/solver"
)

type satisfyKey struct {
	Patient model.PatientName
	Service model.ServiceName
}

type doKey struct {
	Patient  model.PatientName
	Service  model.ServiceName
	Operator model.OperatorName
}

type patientOverlapKey struct {
	Patient  model.PatientName
	ServiceA model.ServiceName
	ServiceB model.ServiceName
}

type operatorOverlapKey struct {
	PatientA model.PatientName
	ServiceA model.ServiceName
	PatientB model.PatientName
	ServiceB model.ServiceName
	Operator model.OperatorName
}

// SlimModel is the operator-undecided packing model for a single day: it
// chooses which requests to satisfy and, for each satisfied request, which
// operator carries it out and at what time.
type SlimModel struct {
	instance model.SubproblemInstance
	problem  *solver.Problem

	satisfy         map[satisfyKey]*solver.Variable
	time            map[satisfyKey]*solver.Variable
	do              map[doKey]*solver.Variable
	patientOverlap  map[patientOverlapKey]*solver.Variable
	operatorOverlap1 map[operatorOverlapKey]*solver.Variable
	operatorOverlap2 map[operatorOverlapKey]*solver.Variable
	exact           *solver.Variable
}

// BuildSlimModel constructs the slim (operator-undecided) subproblem model
// for inst. When additionalInfo contains "preemptive_forbidding" and
// fatRequests is non-empty, the model is biased toward reproducing
// fatRequests exactly: an "exact" flag worth 1000 can only be set when every
// fatRequests assignment present among the candidates is chosen.
func BuildSlimModel(inst model.SubproblemInstance, additionalInfo []string, fatRequests []model.PatientServiceOperator) (*SlimModel, error) {
	problem := solver.NewProblem()
	problem.Maximize()

	m := &SlimModel{
		instance:         inst,
		problem:          &problem,
		satisfy:          make(map[satisfyKey]*solver.Variable),
		time:             make(map[satisfyKey]*solver.Variable),
		do:               make(map[doKey]*solver.Variable),
		patientOverlap:   make(map[patientOverlapKey]*solver.Variable),
		operatorOverlap1: make(map[operatorOverlapKey]*solver.Variable),
		operatorOverlap2: make(map[operatorOverlapKey]*solver.Variable),
	}

	maxTime := careUnitMaxTime(inst.Roster)
	timeUpperBound := make(map[satisfyKey]model.TimeSlot)

	byPatient := groupRequestsByPatient(inst.Requests)

	for _, req := range inst.Requests {
		key := satisfyKey{Patient: req.Patient, Service: req.Service}
		if _, ok := m.satisfy[key]; ok {
			continue
		}

		svc, ok := inst.Services[req.Service]
		if !ok {
			return nil, fmt.Errorf("subproblem: unknown service %q requested by %q", req.Service, req.Patient)
		}
		ops, ok := inst.Roster.CareUnits[svc.CareUnit]
		if !ok {
			return nil, fmt.Errorf("subproblem: unknown care unit %q for service %q", svc.CareUnit, req.Service)
		}

		var maxOperatorEnd model.TimeSlot
		for _, op := range ops {
			if end := op.End(); end > maxOperatorEnd {
				maxOperatorEnd = end
			}
		}
		ub := maxOperatorEnd + 1 - svc.Duration
		timeUpperBound[key] = ub

		m.satisfy[key] = problem.AddVariable(fmt.Sprintf("satisfy|%s|%s", req.Patient, req.Service)).IsInteger().UpperBound(1)
		m.time[key] = problem.AddVariable(fmt.Sprintf("time|%s|%s", req.Patient, req.Service)).IsInteger().UpperBound(float64(ub))

		for opName := range ops {
			dk := doKey{Patient: req.Patient, Service: req.Service, Operator: opName}
			m.do[dk] = problem.AddVariable(fmt.Sprintf("do|%s|%s|%s", req.Patient, req.Service, opName)).IsInteger().UpperBound(1)
		}
	}

	// link_satisfy_to_time_variables / link_time_to_satisfy_variables
	for key, satVar := range m.satisfy {
		timeVar := m.time[key]

		c1 := problem.AddConstraint().SmallerThanOrEqualTo(0)
		c1.AddExpression(1, satVar)
		c1.AddExpression(-1, timeVar)

		c2 := problem.AddConstraint().SmallerThanOrEqualTo(0)
		c2.AddExpression(1, timeVar)
		c2.AddExpression(-float64(timeUpperBound[key]), satVar)
	}

	// link_satisfy_to_do_variables
	for key, satVar := range m.satisfy {
		c := problem.AddConstraint().EqualTo(0)
		c.AddExpression(1, satVar)
		for dk, doVar := range m.do {
			if dk.Patient == key.Patient && dk.Service == key.Service {
				c.AddExpression(-1, doVar)
			}
		}
	}

	// respect_operator_start / respect_operator_end
	for dk, doVar := range m.do {
		key := satisfyKey{Patient: dk.Patient, Service: dk.Service}
		timeVar := m.time[key]
		op := inst.Roster.Operators()[dk.Operator]
		svc := inst.Services[dk.Service]
		cu := svc.CareUnit

		c1 := problem.AddConstraint().SmallerThanOrEqualTo(0)
		c1.AddExpression(float64(op.Start+1), doVar)
		c1.AddExpression(-1, timeVar)

		c2 := problem.AddConstraint().SmallerThanOrEqualTo(float64(op.End() + 1 + maxTime[cu]))
		c2.AddExpression(1, timeVar)
		c2.AddExpression(float64(svc.Duration)+float64(maxTime[cu]), doVar)
	}

	// patient overlap: generated for every pair of requests of the same patient
	for patName, reqs := range byPatient {
		svcNames := uniqueServiceNames(reqs)
		for i := 0; i < len(svcNames)-1; i++ {
			for j := i + 1; j < len(svcNames); j++ {
				s, ss := svcNames[i], svcNames[j]
				pk := patientOverlapKey{Patient: patName, ServiceA: s, ServiceB: ss}

				overlapVar := problem.AddVariable(fmt.Sprintf("patient_overlap|%s|%s|%s", patName, s, ss)).IsInteger().UpperBound(1)
				m.patientOverlap[pk] = overlapVar

				keyS := satisfyKey{Patient: patName, Service: s}
				keySS := satisfyKey{Patient: patName, Service: ss}
				cuS := maxTime[inst.Services[s].CareUnit]
				cuSS := maxTime[inst.Services[ss].CareUnit]

				// patient_not_overlap_1
				c1 := problem.AddConstraint().SmallerThanOrEqualTo(float64(cuS))
				c1.AddExpression(1, m.time[keyS])
				c1.AddExpression(float64(inst.Services[s].Duration), m.satisfy[keyS])
				c1.AddExpression(-1, m.time[keySS])
				c1.AddExpression(float64(cuS), overlapVar)

				// patient_not_overlap_2
				c2 := problem.AddConstraint().SmallerThanOrEqualTo(0)
				c2.AddExpression(1, m.time[keySS])
				c2.AddExpression(float64(inst.Services[ss].Duration), m.satisfy[keySS])
				c2.AddExpression(-1, m.time[keyS])
				c2.AddExpression(-float64(cuSS), overlapVar)

				// patient_overlap_auxiliary_constraint_1
				c3 := problem.AddConstraint().SmallerThanOrEqualTo(0)
				c3.AddExpression(1, overlapVar)
				c3.AddExpression(-1, m.satisfy[keySS])

				// patient_overlap_auxiliary_constraint_2
				c4 := problem.AddConstraint().SmallerThanOrEqualTo(0)
				c4.AddExpression(1, m.satisfy[keySS])
				c4.AddExpression(-1, m.satisfy[keyS])
				c4.AddExpression(-1, overlapVar)
			}
		}
	}

	// operator overlap: every pair of distinct (patient,service) do-candidates
	// sharing the same candidate operator.
	doKeys := make([]doKey, 0, len(m.do))
	for dk := range m.do {
		doKeys = append(doKeys, dk)
	}
	sort.Slice(doKeys, func(i, j int) bool {
		if doKeys[i].Patient != doKeys[j].Patient {
			return doKeys[i].Patient < doKeys[j].Patient
		}
		if doKeys[i].Service != doKeys[j].Service {
			return doKeys[i].Service < doKeys[j].Service
		}
		return doKeys[i].Operator < doKeys[j].Operator
	})

	for i := 0; i < len(doKeys); i++ {
		for j := i + 1; j < len(doKeys); j++ {
			a, b := doKeys[i], doKeys[j]
			if a.Operator != b.Operator {
				continue
			}
			if a.Patient == b.Patient && a.Service == b.Service {
				continue
			}
			if a.Patient > b.Patient || (a.Patient == b.Patient && a.Service >= b.Service) {
				continue
			}

			ok := operatorOverlapKey{PatientA: a.Patient, ServiceA: a.Service, PatientB: b.Patient, ServiceB: b.Service, Operator: a.Operator}

			op1 := problem.AddVariable(fmt.Sprintf("operator_overlap_1|%s|%s|%s|%s|%s", a.Patient, a.Service, b.Patient, b.Service, a.Operator)).IsInteger().UpperBound(1)
			op2 := problem.AddVariable(fmt.Sprintf("operator_overlap_2|%s|%s|%s|%s|%s", a.Patient, a.Service, b.Patient, b.Service, a.Operator)).IsInteger().UpperBound(1)
			m.operatorOverlap1[ok] = op1
			m.operatorOverlap2[ok] = op2

			op := inst.Roster.Operators()[a.Operator]
			cu := op.CareUnit
			mt := maxTime[cu]

			keyA := satisfyKey{Patient: a.Patient, Service: a.Service}
			keyB := satisfyKey{Patient: b.Patient, Service: b.Service}

			// operator_not_overlap_1
			c1 := problem.AddConstraint().SmallerThanOrEqualTo(float64(mt))
			c1.AddExpression(1, m.time[keyA])
			c1.AddExpression(float64(inst.Services[a.Service].Duration), m.do[a])
			c1.AddExpression(-1, m.time[keyB])
			c1.AddExpression(float64(mt), op1)

			// operator_not_overlap_2
			c2 := problem.AddConstraint().SmallerThanOrEqualTo(float64(mt))
			c2.AddExpression(1, m.time[keyB])
			c2.AddExpression(float64(inst.Services[b.Service].Duration), m.do[b])
			c2.AddExpression(-1, m.time[keyA])
			c2.AddExpression(float64(mt), op2)

			// operator_overlap_auxiliary_constraint_1
			c3 := problem.AddConstraint().SmallerThanOrEqualTo(1)
			c3.AddExpression(1, m.do[a])
			c3.AddExpression(1, m.do[b])
			c3.AddExpression(-1, op1)
			c3.AddExpression(-1, op2)

			// operator_overlap_auxiliary_constraint_2
			c4 := problem.AddConstraint().SmallerThanOrEqualTo(0)
			c4.AddExpression(1, op1)
			c4.AddExpression(1, op2)
			c4.AddExpression(-1, m.do[a])

			// operator_overlap_auxiliary_constraint_3
			c5 := problem.AddConstraint().SmallerThanOrEqualTo(0)
			c5.AddExpression(1, op1)
			c5.AddExpression(1, op2)
			c5.AddExpression(-1, m.do[b])
		}
	}

	// respect_operator_duration (redundant cut, opt-in)
	if containsInfo(additionalInfo, useRedundantOperatorCutInfo) {
		byOperator := make(map[model.OperatorName][]doKey)
		for dk := range m.do {
			byOperator[dk.Operator] = append(byOperator[dk.Operator], dk)
		}
		for opName, keys := range byOperator {
			op := inst.Roster.Operators()[opName]
			var total model.TimeSlot
			for _, key := range keys {
				total += inst.Services[key.Service].Duration
			}
			if total <= op.Duration {
				continue
			}
			c := problem.AddConstraint().SmallerThanOrEqualTo(float64(op.Duration))
			for _, key := range keys {
				c.AddExpression(float64(inst.Services[key.Service].Duration), m.do[key])
			}
		}
	}

	// objective
	if !containsInfo(additionalInfo, preemptiveForbiddingInfo) || len(fatRequests) == 0 {
		for key, satVar := range m.satisfy {
			satVar.SetCoeff(float64(inst.Services[key.Service].Duration) * patientPriority(inst, key.Patient))
		}
	} else {
		m.exact = problem.AddVariable("exact").IsInteger().UpperBound(1)
		m.exact.SetCoeff(1000)

		exact := make(map[doKey]bool, len(fatRequests))
		for _, r := range fatRequests {
			exact[doKey{Patient: r.Patient, Service: r.Service, Operator: r.Operator}] = true
		}

		for dk, doVar := range m.do {
			if exact[dk] {
				c := problem.AddConstraint().SmallerThanOrEqualTo(0)
				c.AddExpression(1, m.exact)
				c.AddExpression(-1, doVar)
			}
			doVar.SetCoeff(float64(inst.Services[dk.Service].Duration) * patientPriority(inst, dk.Patient))
		}
	}

	return m, nil
}

func uniqueServiceNames(reqs []model.PatientServiceOperator) []model.ServiceName {
	seen := make(map[model.ServiceName]bool)
	var out []model.ServiceName
	for _, r := range reqs {
		if seen[r.Service] {
			continue
		}
		seen[r.Service] = true
		out = append(out, r.Service)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func patientPriority(inst model.SubproblemInstance, p model.PatientName) float64 {
	return float64(inst.Priority(p))
}

// Solve runs the narrow MILP port and returns the extracted result.
func (m *SlimModel) Solve(ctx context.Context) (model.SubproblemResult, error) {
	soln, err := m.problem.Solve(ctx)
	if err != nil {
		return model.SubproblemResult{}, err
	}
	return m.extractResult(soln)
}

func (m *SlimModel) extractResult(soln *solver.Solution) (model.SubproblemResult, error) {
	result := model.SubproblemResult{Fat: false}

	for dk, doVar := range m.do {
		val, err := soln.GetValueFor(doVar.Name())
		if err != nil {
			return model.SubproblemResult{}, err
		}
		if val < 0.5 {
			continue
		}
		key := satisfyKey{Patient: dk.Patient, Service: dk.Service}
		tVal, err := soln.GetValueFor(m.time[key].Name())
		if err != nil {
			return model.SubproblemResult{}, err
		}
		result.Scheduled = append(result.Scheduled, model.PatientServiceOperatorTimeSlot{
			Patient:  dk.Patient,
			Service:  dk.Service,
			Operator: dk.Operator,
			Time:     model.TimeSlot(tVal) - 1,
		})
	}

	for key, satVar := range m.satisfy {
		val, err := soln.GetValueFor(satVar.Name())
		if err != nil {
			return model.SubproblemResult{}, err
		}
		if val < 0.5 {
			result.Rejected = append(result.Rejected, model.PatientServiceOperator{Patient: key.Patient, Service: key.Service})
		}
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
