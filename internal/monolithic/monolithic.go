// Package monolithic builds and solves a single MILP over every day of an
// instance simultaneously: no decomposition, no cache, no cores. It exists
// purely as a benchmarking/validation baseline to compare against the
// decomposed driver's output on small instances, grounded on
// original_source/src/milp_models/monolithic_model.py and
// original_source/single_pass_solver.py.
package monolithic

import (
	"context"
	"fmt"
	"sort"

	"github.com/fevancin/Scheduler-Project/internal/model"
	"github.com/fevancin/Scheduler-Project/internal/solver"
)

type doKey struct {
	Patient  model.PatientName
	Service  model.ServiceName
	Day      model.DayName
	Operator model.OperatorName
}

type windowKey struct {
	Patient model.PatientName
	Service model.ServiceName
	Window  model.Window
}

type patientOverlapKey struct {
	A, B windowKey
	Day  model.DayName
}

type operatorOverlapKey struct {
	A, B     windowKey
	Operator model.OperatorName
	Day      model.DayName
}

// Model is the full-horizon reference MILP: every request window across
// every day, packed into one model instead of one per day.
type Model struct {
	instance model.MasterInstance
	problem  *solver.Problem

	do               map[doKey]*solver.Variable
	time             map[windowKey]*solver.Variable
	patientOverlap   map[patientOverlapKey]*solver.Variable
	operatorOverlap1 map[operatorOverlapKey]*solver.Variable
	operatorOverlap2 map[operatorOverlapKey]*solver.Variable

	windows []windowKey
}

func containsInfo(info []string, want string) bool {
	for _, v := range info {
		if v == want {
			return true
		}
	}
	return false
}

// Build constructs the monolithic model for inst, honoring the same
// additionalInfo flags as the master/subproblem models:
// minimize_hospital_accesses (objective penalty for spreading a patient's
// obligations over more days), use_redundant_operator_cut and
// use_redundant_patient_cut (capacity cuts that are implied by the base
// model but help branch-and-bound), grounded on get_monolithic_model.
func Build(inst model.MasterInstance, additionalInfo []string) (*Model, error) {
	problem := solver.NewProblem()
	problem.Maximize()

	m := &Model{
		instance:         inst,
		problem:          &problem,
		do:               make(map[doKey]*solver.Variable),
		time:             make(map[windowKey]*solver.Variable),
		patientOverlap:   make(map[patientOverlapKey]*solver.Variable),
		operatorOverlap1: make(map[operatorOverlapKey]*solver.Variable),
		operatorOverlap2: make(map[operatorOverlapKey]*solver.Variable),
	}

	patientNames := make([]model.PatientName, 0, len(inst.Patients))
	for p := range inst.Patients {
		patientNames = append(patientNames, p)
	}
	sort.Slice(patientNames, func(i, j int) bool { return patientNames[i] < patientNames[j] })

	windowSeen := make(map[windowKey]bool)
	for _, p := range patientNames {
		patient := inst.Patients[p]
		serviceNames := make([]model.ServiceName, 0, len(patient.Requests))
		for s := range patient.Requests {
			serviceNames = append(serviceNames, s)
		}
		sort.Slice(serviceNames, func(i, j int) bool { return serviceNames[i] < serviceNames[j] })

		for _, s := range serviceNames {
			svc, ok := inst.Services[s]
			if !ok {
				return nil, fmt.Errorf("monolithic: unknown service %q requested by %q", s, p)
			}
			for _, w := range patient.Requests[s] {
				key := windowKey{Patient: p, Service: s, Window: w}
				if windowSeen[key] {
					continue
				}
				windowSeen[key] = true
				m.windows = append(m.windows, key)

				for d := w.Start; d <= w.End; d++ {
					day, ok := inst.Days[d]
					if !ok {
						continue
					}
					for o := range day.CareUnits[svc.CareUnit] {
						dk := doKey{Patient: p, Service: s, Day: d, Operator: o}
						if _, exists := m.do[dk]; !exists {
							m.do[dk] = problem.AddVariable(fmt.Sprintf("do|%s|%s|%d|%s", p, s, d, o)).IsInteger().UpperBound(1)
						}
					}
				}

				m.time[key] = problem.AddVariable(fmt.Sprintf("time|%s|%s|%d|%d", p, s, w.Start, w.End)).IsInteger()
			}
		}
	}

	maxTimeByDayCareUnit := make(map[model.DayName]map[model.CareUnitName]float64)
	for d, day := range inst.Days {
		maxTimeByDayCareUnit[d] = make(map[model.CareUnitName]float64)
		for cu, ops := range day.CareUnits {
			var maxEnd model.TimeSlot
			first := true
			for _, op := range ops {
				if first || op.End() > maxEnd {
					maxEnd = op.End()
					first = false
				}
			}
			maxTimeByDayCareUnit[d][cu] = float64(maxEnd) + 1
		}
	}

	// respect_window / link_time_to_do / link_do_to_time
	for _, wk := range m.windows {
		svc := inst.Services[wk.Service]

		respectWindow := problem.AddConstraint().SmallerThanOrEqualTo(1)
		linkTimeToDo := problem.AddConstraint().SmallerThanOrEqualTo(0)
		linkDoToTime := problem.AddConstraint().SmallerThanOrEqualTo(0)
		linkDoToTime.AddExpression(1, m.time[wk])

		for d := wk.Window.Start; d <= wk.Window.End; d++ {
			day, ok := inst.Days[d]
			if !ok {
				continue
			}
			for o, op := range day.CareUnits[svc.CareUnit] {
				dk := doKey{Patient: wk.Patient, Service: wk.Service, Day: d, Operator: o}
				doVar := m.do[dk]

				respectWindow.AddExpression(1, doVar)

				linkTimeToDo.AddExpression(float64(op.Start+1), doVar)
				linkTimeToDo.AddExpression(-1, m.time[wk])

				ub := float64(op.End() - svc.Duration + 1)
				linkDoToTime.AddExpression(-ub, doVar)
			}
		}
	}

	// patient/operator disjunction pairs, in source iteration order
	for i := 0; i < len(m.windows)-1; i++ {
		a := m.windows[i]
		svcA := inst.Services[a.Service]

		for j := i + 1; j < len(m.windows); j++ {
			b := m.windows[j]

			if a.Patient == b.Patient && a.Window.Overlaps(b.Window) {
				ws, we := overlapRange(a.Window, b.Window)
				for d := ws; d <= we; d++ {
					pk := patientOverlapKey{A: a, B: b, Day: d}
					overlapVar := problem.AddVariable(fmt.Sprintf("patient_overlap|%s|%s|%d-%d|%s|%d-%d|%d", a.Patient, a.Service, a.Window.Start, a.Window.End, b.Service, b.Window.Start, b.Window.End, d)).IsInteger().UpperBound(1)
					m.patientOverlap[pk] = overlapVar

					maxTimeD := maxTimeByDayCareUnit[d][svcA.CareUnit]

					addPatientOverlapConstraints(problem, m, a, b, d, overlapVar, maxTimeD, inst)
				}
			}

			if svcA.CareUnit == inst.Services[b.Service].CareUnit && a.Window.Overlaps(b.Window) {
				ws, we := overlapRange(a.Window, b.Window)
				for d := ws; d <= we; d++ {
					day, ok := inst.Days[d]
					if !ok {
						continue
					}
					for o := range day.CareUnits[svcA.CareUnit] {
						key := operatorOverlapKey{A: a, B: b, Operator: o, Day: d}
						v1 := problem.AddVariable(fmt.Sprintf("operator_overlap_1|%s|%s|%d-%d|%s|%s|%d-%d|%s|%d", a.Patient, a.Service, a.Window.Start, a.Window.End, b.Patient, b.Service, b.Window.Start, b.Window.End, o, d)).IsInteger().UpperBound(1)
						v2 := problem.AddVariable(fmt.Sprintf("operator_overlap_2|%s|%s|%d-%d|%s|%s|%d-%d|%s|%d", a.Patient, a.Service, a.Window.Start, a.Window.End, b.Patient, b.Service, b.Window.Start, b.Window.End, o, d)).IsInteger().UpperBound(1)
						m.operatorOverlap1[key] = v1
						m.operatorOverlap2[key] = v2

						addOperatorOverlapConstraints(problem, m, a, b, o, d, v1, v2, inst, maxTimeByDayCareUnit[d][svcA.CareUnit])
					}
				}
			}
		}
	}

	if containsInfo(additionalInfo, "use_redundant_operator_cut") {
		addRedundantOperatorCut(problem, m, inst)
	}
	if containsInfo(additionalInfo, "use_redundant_patient_cut") {
		addRedundantPatientCut(problem, m, inst)
	}

	if containsInfo(additionalInfo, "minimize_hospital_accesses") {
		if err := addHospitalAccessObjective(problem, m, inst); err != nil {
			return nil, err
		}
	} else {
		for dk, doVar := range m.do {
			doVar.SetCoeff(float64(inst.Services[dk.Service].Duration) * float64(inst.Patients[dk.Patient].Priority))
		}
	}

	return m, nil
}

func overlapRange(a, b model.Window) (model.DayName, model.DayName) {
	start := a.Start
	if b.Start > start {
		start = b.Start
	}
	end := a.End
	if b.End < end {
		end = b.End
	}
	return start, end
}

// addPatientOverlapConstraints wires patient_not_overlap_1/2 and the two
// patient_overlap auxiliary constraints for obligations a and b of the same
// patient on day d, grounded on patient_not_overlap_1/2 and
// patient_overlap_auxiliary_constraint_1/2.
func addPatientOverlapConstraints(problem *solver.Problem, m *Model, a, b windowKey, d model.DayName, overlapVar *solver.Variable, maxTimeD float64, inst model.MasterInstance) {
	svcA := inst.Services[a.Service]
	svcB := inst.Services[b.Service]

	doSumA := doVarsOn(m, a, d)
	doSumB := doVarsOn(m, b, d)

	// patient_not_overlap_1: time[a] + dur(a)*sum(do_a on d) <= time[b] + (1-overlap)*M
	c1 := problem.AddConstraint().SmallerThanOrEqualTo(maxTimeD)
	c1.AddExpression(1, m.time[a])
	for _, v := range doSumA {
		c1.AddExpression(float64(svcA.Duration), v)
	}
	c1.AddExpression(-1, m.time[b])
	c1.AddExpression(maxTimeD, overlapVar)

	// patient_not_overlap_2: time[b] + dur(b)*sum(do_b on d) <= time[a] + overlap*M
	c2 := problem.AddConstraint().SmallerThanOrEqualTo(0)
	c2.AddExpression(1, m.time[b])
	for _, v := range doSumB {
		c2.AddExpression(float64(svcB.Duration), v)
	}
	c2.AddExpression(-1, m.time[a])
	c2.AddExpression(-maxTimeD, overlapVar)

	// patient_overlap_auxiliary_constraint_1: overlap <= sum(do_b on d)
	c3 := problem.AddConstraint().SmallerThanOrEqualTo(0)
	c3.AddExpression(1, overlapVar)
	for _, v := range doSumB {
		c3.AddExpression(-1, v)
	}

	// patient_overlap_auxiliary_constraint_2: sum(do_b on d) - sum(do_a on d) <= overlap
	c4 := problem.AddConstraint().SmallerThanOrEqualTo(0)
	for _, v := range doSumB {
		c4.AddExpression(1, v)
	}
	for _, v := range doSumA {
		c4.AddExpression(-1, v)
	}
	c4.AddExpression(-1, overlapVar)
}

// addOperatorOverlapConstraints wires operator_not_overlap_1/2 and the three
// operator_overlap auxiliary constraints for obligations a and b sharing
// candidate operator o on day d, grounded on operator_not_overlap_1/2 and
// operator_overlap_auxiliary_constraint_1/2/3.
func addOperatorOverlapConstraints(problem *solver.Problem, m *Model, a, b windowKey, o model.OperatorName, d model.DayName, v1, v2 *solver.Variable, inst model.MasterInstance, maxTimeD float64) {
	svcA := inst.Services[a.Service]
	svcB := inst.Services[b.Service]

	doA := m.do[doKey{Patient: a.Patient, Service: a.Service, Day: d, Operator: o}]
	doB := m.do[doKey{Patient: b.Patient, Service: b.Service, Day: d, Operator: o}]
	if doA == nil || doB == nil {
		return
	}

	c1 := problem.AddConstraint().SmallerThanOrEqualTo(maxTimeD)
	c1.AddExpression(1, m.time[a])
	c1.AddExpression(float64(svcA.Duration), doA)
	c1.AddExpression(-1, m.time[b])
	c1.AddExpression(maxTimeD, v1)

	c2 := problem.AddConstraint().SmallerThanOrEqualTo(maxTimeD)
	c2.AddExpression(1, m.time[b])
	c2.AddExpression(float64(svcB.Duration), doB)
	c2.AddExpression(-1, m.time[a])
	c2.AddExpression(maxTimeD, v2)

	c3 := problem.AddConstraint().SmallerThanOrEqualTo(1)
	c3.AddExpression(1, doA)
	c3.AddExpression(1, doB)
	c3.AddExpression(-1, v1)
	c3.AddExpression(-1, v2)

	c4 := problem.AddConstraint().SmallerThanOrEqualTo(0)
	c4.AddExpression(1, v1)
	c4.AddExpression(1, v2)
	c4.AddExpression(-1, doA)

	c5 := problem.AddConstraint().SmallerThanOrEqualTo(0)
	c5.AddExpression(1, v1)
	c5.AddExpression(1, v2)
	c5.AddExpression(-1, doB)
}

func doVarsOn(m *Model, wk windowKey, d model.DayName) []*solver.Variable {
	var out []*solver.Variable
	for dk, v := range m.do {
		if dk.Patient == wk.Patient && dk.Service == wk.Service && dk.Day == d {
			out = append(out, v)
		}
	}
	return out
}

// addRedundantOperatorCut bounds, per (day, operator), the summed duration
// of every request that operator could be assigned to no more than the
// operator's own shift duration, grounded on respect_operator_duration — a
// cut implied by the base model but left in for the same branch-and-bound
// speedup reason the source gives it.
func addRedundantOperatorCut(problem *solver.Problem, m *Model, inst model.MasterInstance) {
	type dayOp struct {
		Day      model.DayName
		Operator model.OperatorName
	}
	grouped := make(map[dayOp][]doKey)
	for dk := range m.do {
		key := dayOp{Day: dk.Day, Operator: dk.Operator}
		grouped[key] = append(grouped[key], dk)
	}

	for key, keys := range grouped {
		day := inst.Days[key.Day]
		op, ok := day.Operators()[key.Operator]
		if !ok {
			continue
		}

		var totalDuration model.TimeSlot
		for _, dk := range keys {
			totalDuration += inst.Services[dk.Service].Duration
		}
		if totalDuration <= op.Duration {
			continue
		}

		c := problem.AddConstraint().SmallerThanOrEqualTo(float64(op.Duration))
		for _, dk := range keys {
			c.AddExpression(float64(inst.Services[dk.Service].Duration), m.do[dk])
		}
	}
}

// addRedundantPatientCut bounds, per (patient, day), the summed duration of
// every request of that patient that day to no more than the day's maximum
// span, grounded on patient_total_duration.
func addRedundantPatientCut(problem *solver.Problem, m *Model, inst model.MasterInstance) {
	type patDay struct {
		Patient model.PatientName
		Day     model.DayName
	}
	grouped := make(map[patDay][]doKey)
	for dk := range m.do {
		key := patDay{Patient: dk.Patient, Day: dk.Day}
		grouped[key] = append(grouped[key], dk)
	}

	for key, keys := range grouped {
		day, ok := inst.Days[key.Day]
		if !ok {
			continue
		}
		maxSpan := day.MaxSpan()

		var totalDuration model.TimeSlot
		for _, dk := range keys {
			totalDuration += inst.Services[dk.Service].Duration
		}
		if totalDuration <= maxSpan {
			continue
		}

		c := problem.AddConstraint().SmallerThanOrEqualTo(float64(maxSpan))
		for _, dk := range keys {
			c.AddExpression(float64(inst.Services[dk.Service].Duration), m.do[dk])
		}
	}
}

// addHospitalAccessObjective adds the pat_uses_day binaries and links them
// to the do variables, then sets the do coefficients and a uniform negative
// coefficient on every pat_uses_day variable, together forming the
// objective Σ do*duration*priority - (1/|pat_days|)*Σ pat_uses_day exactly
// as objective_function's minimize_hospital_accesses branch.
func addHospitalAccessObjective(problem *solver.Problem, m *Model, inst model.MasterInstance) error {
	type patDay struct {
		Patient model.PatientName
		Day     model.DayName
	}
	patDaySet := make(map[patDay]bool)
	for dk := range m.do {
		patDaySet[patDay{Patient: dk.Patient, Day: dk.Day}] = true
	}
	if len(patDaySet) == 0 {
		return fmt.Errorf("monolithic: no (patient, day) pairs to build the hospital-access objective from")
	}

	patUsesDay := make(map[patDay]*solver.Variable, len(patDaySet))
	for pd := range patDaySet {
		patUsesDay[pd] = problem.AddVariable(fmt.Sprintf("pat_uses_day|%s|%d", pd.Patient, pd.Day)).IsInteger().UpperBound(1)
	}

	type patServiceDay struct {
		Patient model.PatientName
		Service model.ServiceName
		Day     model.DayName
	}
	grouped := make(map[patServiceDay][]doKey)
	for dk := range m.do {
		key := patServiceDay{Patient: dk.Patient, Service: dk.Service, Day: dk.Day}
		grouped[key] = append(grouped[key], dk)
	}
	for key, keys := range grouped {
		c := problem.AddConstraint().SmallerThanOrEqualTo(0)
		for _, dk := range keys {
			c.AddExpression(1, m.do[dk])
		}
		c.AddExpression(-1, patUsesDay[patDay{Patient: key.Patient, Day: key.Day}])
	}

	for dk, doVar := range m.do {
		doVar.SetCoeff(float64(inst.Services[dk.Service].Duration) * float64(inst.Patients[dk.Patient].Priority))
	}
	penalty := -1.0 / float64(len(patDaySet))
	for _, v := range patUsesDay {
		v.SetCoeff(penalty)
	}

	return nil
}

// Solve runs the narrow MILP port and extracts a final result shaped
// exactly like the decomposed driver's composed output, so the two can be
// compared directly, grounded on get_result_from_monolithic_model.
func (m *Model) Solve(ctx context.Context) (model.FinalResult, error) {
	soln, err := m.problem.Solve(ctx)
	if err != nil {
		return model.FinalResult{}, err
	}
	return m.extractResult(soln)
}

func (m *Model) extractResult(soln *solver.Solution) (model.FinalResult, error) {
	result := model.NewFinalResult()

	timeValues := make(map[windowKey]model.TimeSlot)
	for wk, v := range m.time {
		val, err := soln.GetValueFor(v.Name())
		if err != nil {
			return model.FinalResult{}, err
		}
		timeValues[wk] = model.TimeSlot(val) - 1
	}

	satisfied := make(map[windowKey]bool)
	for dk, doVar := range m.do {
		val, err := soln.GetValueFor(doVar.Name())
		if err != nil {
			return model.FinalResult{}, err
		}
		if val < 0.5 {
			continue
		}
		wk := windowKeyFor(m, dk)
		satisfied[wk] = true
		result.Scheduled[dk.Day] = append(result.Scheduled[dk.Day], model.PatientServiceOperatorTimeSlot{
			Patient:  dk.Patient,
			Service:  dk.Service,
			Operator: dk.Operator,
			Time:     timeValues[wk],
		})
	}

	for _, wk := range m.windows {
		if !satisfied[wk] {
			result.Rejected = append(result.Rejected, model.PatientServiceWindow{Patient: wk.Patient, Service: wk.Service, Window: wk.Window})
		}
	}

	for d := range result.Scheduled {
		sort.Slice(result.Scheduled[d], func(i, j int) bool {
			a, b := result.Scheduled[d][i], result.Scheduled[d][j]
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
	}
	sort.Slice(result.Rejected, func(i, j int) bool {
		if result.Rejected[i].Patient != result.Rejected[j].Patient {
			return result.Rejected[i].Patient < result.Rejected[j].Patient
		}
		return result.Rejected[i].Service < result.Rejected[j].Service
	})

	return result, nil
}

func windowKeyFor(m *Model, dk doKey) windowKey {
	for _, wk := range m.windows {
		if wk.Patient == dk.Patient && wk.Service == dk.Service && wk.Window.Contains(dk.Day) {
			return wk
		}
	}
	return windowKey{}
}
