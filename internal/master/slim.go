// Package master builds the master relaxation MILP (fat and slim variants),
// extracts its optimistic result, and injects core no-good cuts, grounded
// on original_source/src/milp_models/master_model.py.
package master

import (
	"context"
	"fmt"
	"sort"

	"github.com/fevancin/Scheduler-Project/internal/model"
	"github.com/fevancin/Scheduler-Project/internal/solver"
)

const hospitalAccessesInfo = "minimize_hospital_accesses"

type slimDoKey struct {
	Patient model.PatientName
	Service model.ServiceName
	Day     model.DayName
}

type patDayKey struct {
	Patient model.PatientName
	Day     model.DayName
}

// SlimModel is the care-unit-level master relaxation: it decides which
// (patient, service) request is attempted on which day, without
// committing to an operator.
type SlimModel struct {
	instance model.MasterInstance
	problem  *solver.Problem

	do         map[slimDoKey]*solver.Variable
	window     map[model.PatientServiceWindow]*solver.Variable
	patUsesDay map[patDayKey]*solver.Variable

	coreCuts int
}

// BuildSlimModel constructs the slim master model over inst. When
// additionalInfo contains "minimize_hospital_accesses", the objective
// gains the secondary penalty term described in spec §4.1.
func BuildSlimModel(inst model.MasterInstance, additionalInfo []string) (*SlimModel, error) {
	minimizeHospitalAccesses := containsInfo(additionalInfo, hospitalAccessesInfo)
	problem := solver.NewProblem()
	problem.Maximize()

	m := &SlimModel{
		instance: inst,
		problem:  &problem,
		do:       make(map[slimDoKey]*solver.Variable),
		window:   make(map[model.PatientServiceWindow]*solver.Variable),
	}

	maxSpan := computeMaxSpan(inst)

	// window and do variables
	patDays := make(map[patDayKey]bool)
	for patName, patient := range inst.Patients {
		for svcName, windows := range patient.Requests {
			for _, w := range windows {
				psw := model.PatientServiceWindow{Patient: patName, Service: svcName, Window: w}
				m.window[psw] = problem.AddVariable(fmt.Sprintf("window|%s|%s|%d|%d", patName, svcName, w.Start, w.End)).IsInteger().UpperBound(1)

				for d := w.Start; d <= w.End; d++ {
					key := slimDoKey{Patient: patName, Service: svcName, Day: d}
					if _, ok := m.do[key]; !ok {
						m.do[key] = problem.AddVariable(fmt.Sprintf("do|%s|%s|%d", patName, svcName, d)).IsInteger().UpperBound(1)
					}
					patDays[patDayKey{Patient: patName, Day: d}] = true
				}
			}
		}
	}

	// link_window_to_do_variables
	for psw, windowVar := range m.window {
		c := problem.AddConstraint().EqualTo(0)
		c.AddExpression(-1, windowVar)
		for d := psw.Window.Start; d <= psw.Window.End; d++ {
			key := slimDoKey{Patient: psw.Patient, Service: psw.Service, Day: d}
			c.AddExpression(1, m.do[key])
		}
	}

	// respect_care_unit_capacity
	type cuDayKey struct {
		Day      model.DayName
		CareUnit model.CareUnitName
	}
	affected := make(map[cuDayKey][]slimDoKey)
	for key := range m.do {
		svc := inst.Services[key.Service]
		affected[cuDayKey{Day: key.Day, CareUnit: svc.CareUnit}] = append(affected[cuDayKey{Day: key.Day, CareUnit: svc.CareUnit}], key)
	}
	for cuDay, keys := range affected {
		day, ok := inst.Days[cuDay.Day]
		if !ok {
			continue
		}
		ops := day.CareUnits[cuDay.CareUnit]
		var capacity model.TimeSlot
		for _, op := range ops {
			capacity += op.Duration
		}
		var total model.TimeSlot
		for _, key := range keys {
			total += inst.Services[key.Service].Duration
		}
		if total <= capacity {
			continue
		}
		c := problem.AddConstraint().SmallerThanOrEqualTo(float64(capacity))
		for _, key := range keys {
			c.AddExpression(float64(inst.Services[key.Service].Duration), m.do[key])
		}
	}

	// patient_total_duration
	patAffected := make(map[patDayKey][]slimDoKey)
	for key := range m.do {
		pd := patDayKey{Patient: key.Patient, Day: key.Day}
		patAffected[pd] = append(patAffected[pd], key)
	}
	for pd, keys := range patAffected {
		var total model.TimeSlot
		for _, key := range keys {
			total += inst.Services[key.Service].Duration
		}
		if total <= maxSpan[pd.Day] {
			continue
		}
		c := problem.AddConstraint().SmallerThanOrEqualTo(float64(maxSpan[pd.Day]))
		for _, key := range keys {
			c.AddExpression(float64(inst.Services[key.Service].Duration), m.do[key])
		}
	}

	if minimizeHospitalAccesses {
		m.patUsesDay = make(map[patDayKey]*solver.Variable)
		for pd := range patDays {
			m.patUsesDay[pd] = problem.AddVariable(fmt.Sprintf("pat_uses_day|%s|%d", pd.Patient, pd.Day)).IsInteger().UpperBound(1)
		}
		for key, doVar := range m.do {
			pd := patDayKey{Patient: key.Patient, Day: key.Day}
			c := problem.AddConstraint().SmallerThanOrEqualTo(0)
			c.AddExpression(1, doVar)
			c.AddExpression(-1, m.patUsesDay[pd])
		}

		penalty := 1.0 / float64(len(patDays))
		for psw, windowVar := range m.window {
			windowVar.SetCoeff(float64(inst.Services[psw.Service].Duration) * float64(inst.Patients[psw.Patient].Priority))
		}
		for _, v := range m.patUsesDay {
			v.SetCoeff(-penalty)
		}
	} else {
		for psw, windowVar := range m.window {
			windowVar.SetCoeff(float64(inst.Services[psw.Service].Duration) * float64(inst.Patients[psw.Patient].Priority))
		}
	}

	return m, nil
}

func computeMaxSpan(inst model.MasterInstance) map[model.DayName]model.TimeSlot {
	spans := make(map[model.DayName]model.TimeSlot, len(inst.Days))
	for name, day := range inst.Days {
		spans[name] = day.MaxSpan()
	}
	return spans
}

// AddCoreCuts injects the per-day no-good constraint for each core: on
// every day the core applies to, the sum of its components' do variables
// is bounded so the exact combination cannot recur.
func (m *SlimModel) AddCoreCuts(cores []model.SlimCore) {
	for _, core := range cores {
		for _, d := range core.Days {
			c := m.problem.AddConstraint().SmallerThanOrEqualTo(float64(len(core.Components) - 1))
			for _, comp := range core.Components {
				if v, ok := m.do[slimDoKey{Patient: comp.Patient, Service: comp.Service, Day: d}]; ok {
					c.AddExpression(1, v)
				}
			}
			m.coreCuts++
		}
	}
}

// Solve runs the narrow MILP port and returns the extracted result.
func (m *SlimModel) Solve(ctx context.Context) (model.MasterResult, error) {
	soln, err := m.problem.Solve(ctx)
	if err != nil {
		return model.MasterResult{}, err
	}
	return m.extractResult(soln)
}

func (m *SlimModel) extractResult(soln *solver.Solution) (model.MasterResult, error) {
	result := model.NewMasterResult(false)

	for key, v := range m.do {
		val, err := soln.GetValueFor(v.Name())
		if err != nil {
			return model.MasterResult{}, err
		}
		if val < 0.5 {
			continue
		}
		result.Scheduled[key.Day] = append(result.Scheduled[key.Day], model.PatientServiceOperator{Patient: key.Patient, Service: key.Service})
	}

	for psw, v := range m.window {
		val, err := soln.GetValueFor(v.Name())
		if err != nil {
			return model.MasterResult{}, err
		}
		if val >= 0.5 {
			continue
		}
		result.Rejected = append(result.Rejected, psw)
	}

	for _, reqs := range result.Scheduled {
		sort.Slice(reqs, func(i, j int) bool {
			if reqs[i].Patient != reqs[j].Patient {
				return reqs[i].Patient < reqs[j].Patient
			}
			return reqs[i].Service < reqs[j].Service
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
