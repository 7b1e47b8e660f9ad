package master

import (
	"context"
	"fmt"
	"sort"

	"github.com/fevancin/Scheduler-Project/internal/model"
	"github.com/fevancin/Scheduler-Project/internal/solver"
)

type fatDoKey struct {
	Patient  model.PatientName
	Service  model.ServiceName
	Day      model.DayName
	Operator model.OperatorName
}

// FatModel is the operator-level master relaxation: like SlimModel, but the
// do variables also commit to a specific operator, so respect_operator_duration
// is enforced per operator rather than per care unit as a whole.
type FatModel struct {
	instance model.MasterInstance
	problem  *solver.Problem

	do         map[fatDoKey]*solver.Variable
	window     map[model.PatientServiceWindow]*solver.Variable
	patUsesDay map[patDayKey]*solver.Variable
}

// BuildFatModel constructs the fat master model over inst.
func BuildFatModel(inst model.MasterInstance, additionalInfo []string) (*FatModel, error) {
	minimizeHospitalAccesses := containsInfo(additionalInfo, hospitalAccessesInfo)

	problem := solver.NewProblem()
	problem.Maximize()

	m := &FatModel{
		instance: inst,
		problem:  &problem,
		do:       make(map[fatDoKey]*solver.Variable),
		window:   make(map[model.PatientServiceWindow]*solver.Variable),
	}

	maxSpan := computeMaxSpan(inst)

	patDays := make(map[patDayKey]bool)
	for patName, patient := range inst.Patients {
		for svcName, windows := range patient.Requests {
			svc, ok := inst.Services[svcName]
			if !ok {
				continue
			}
			for _, w := range windows {
				psw := model.PatientServiceWindow{Patient: patName, Service: svcName, Window: w}
				m.window[psw] = problem.AddVariable(fmt.Sprintf("window|%s|%s|%d|%d", patName, svcName, w.Start, w.End)).IsInteger().UpperBound(1)

				for d := w.Start; d <= w.End; d++ {
					day, ok := inst.Days[d]
					if !ok {
						continue
					}
					for opName := range day.CareUnits[svc.CareUnit] {
						key := fatDoKey{Patient: patName, Service: svcName, Day: d, Operator: opName}
						if _, ok := m.do[key]; !ok {
							m.do[key] = problem.AddVariable(fmt.Sprintf("do|%s|%s|%d|%s", patName, svcName, d, opName)).IsInteger().UpperBound(1)
						}
						patDays[patDayKey{Patient: patName, Day: d}] = true
					}
				}
			}
		}
	}

	// link_window_to_do_variables
	for psw, windowVar := range m.window {
		c := problem.AddConstraint().EqualTo(0)
		c.AddExpression(-1, windowVar)
		for d := psw.Window.Start; d <= psw.Window.End; d++ {
			for key, v := range m.do {
				if key.Patient == psw.Patient && key.Service == psw.Service && key.Day == d {
					c.AddExpression(1, v)
				}
			}
		}
	}

	// respect_operator_duration
	type opDayKey struct {
		Day      model.DayName
		Operator model.OperatorName
	}
	affected := make(map[opDayKey][]fatDoKey)
	for key := range m.do {
		affected[opDayKey{Day: key.Day, Operator: key.Operator}] = append(affected[opDayKey{Day: key.Day, Operator: key.Operator}], key)
	}
	for opDay, keys := range affected {
		day, ok := inst.Days[opDay.Day]
		if !ok {
			continue
		}
		op, ok := day.Operators()[opDay.Operator]
		if !ok {
			continue
		}
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

	// patient_total_duration
	patAffected := make(map[patDayKey][]fatDoKey)
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
		type psdKey struct {
			Patient model.PatientName
			Service model.ServiceName
			Day     model.DayName
		}
		psdAffected := make(map[psdKey][]fatDoKey)
		for key := range m.do {
			psd := psdKey{Patient: key.Patient, Service: key.Service, Day: key.Day}
			psdAffected[psd] = append(psdAffected[psd], key)
		}
		for psd, keys := range psdAffected {
			c := problem.AddConstraint().SmallerThanOrEqualTo(0)
			for _, key := range keys {
				c.AddExpression(1, m.do[key])
			}
			c.AddExpression(-1, m.patUsesDay[patDayKey{Patient: psd.Patient, Day: psd.Day}])
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

// AddCoreCuts injects the per-day no-good constraint for each core.
func (m *FatModel) AddCoreCuts(cores []model.FatCore) {
	for _, core := range cores {
		for _, d := range core.Days {
			c := m.problem.AddConstraint().SmallerThanOrEqualTo(float64(len(core.Components) - 1))
			for _, comp := range core.Components {
				key := fatDoKey{Patient: comp.Patient, Service: comp.Service, Day: d, Operator: comp.Operator}
				if v, ok := m.do[key]; ok {
					c.AddExpression(1, v)
				}
			}
		}
	}
}

// Solve runs the narrow MILP port and returns the extracted result.
func (m *FatModel) Solve(ctx context.Context) (model.MasterResult, error) {
	soln, err := m.problem.Solve(ctx)
	if err != nil {
		return model.MasterResult{}, err
	}
	return m.extractResult(soln)
}

func (m *FatModel) extractResult(soln *solver.Solution) (model.MasterResult, error) {
	result := model.NewMasterResult(true)

	for key, v := range m.do {
		val, err := soln.GetValueFor(v.Name())
		if err != nil {
			return model.MasterResult{}, err
		}
		if val < 0.5 {
			continue
		}
		result.Scheduled[key.Day] = append(result.Scheduled[key.Day], model.PatientServiceOperator{Patient: key.Patient, Service: key.Service, Operator: key.Operator})
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
			if reqs[i].Service != reqs[j].Service {
				return reqs[i].Service < reqs[j].Service
			}
			return reqs[i].Operator < reqs[j].Operator
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
