package checkers

import (
	"fmt"

	"github.com/fevancin/Scheduler-Project/internal/model"
)

// CheckRejectedRequests verifies that every rejected (patient, service)
// names entities that actually exist in the instance.
func CheckRejectedRequests(inst model.MasterInstance, rejected []model.PatientServiceWindow) []string {
	var errors []string
	for _, req := range rejected {
		if _, ok := inst.Patients[req.Patient]; !ok {
			errors = append(errors, fmt.Sprintf("rejected patient %s does not exists", req.Patient))
		}
		if _, ok := inst.Services[req.Service]; !ok {
			errors = append(errors, fmt.Sprintf("rejected service %s does not exists", req.Service))
		}
	}
	return errors
}

// CheckWindowsRespect verifies that every instance obligation ends up
// satisfied exactly once — either present once in scheduled (on some day
// within its window) or present in rejected, never both, never neither.
func CheckWindowsRespect(inst model.MasterInstance, scheduled map[model.DayName][]model.PatientServiceOperator, rejected []model.PatientServiceWindow) []string {
	var errors []string

	remaining := make(map[model.PatientServiceWindow]int)
	for patName, patient := range inst.Patients {
		for svcName, windows := range patient.Requests {
			for _, w := range windows {
				remaining[model.PatientServiceWindow{Patient: patName, Service: svcName, Window: w}]++
			}
		}
	}

	for _, req := range rejected {
		if remaining[req] <= 0 {
			errors = append(errors, fmt.Sprintf("rejected request (%s, %s, [%d,%d]) is not present in the instance (or duplicated)", req.Patient, req.Service, req.Window.Start, req.Window.End))
			continue
		}
		remaining[req]--
	}

	for dayName, requests := range scheduled {
		for _, sched := range requests {
			found := false
			for psw, count := range remaining {
				if count <= 0 {
					continue
				}
				if psw.Patient != sched.Patient || psw.Service != sched.Service {
					continue
				}
				if !psw.Window.Contains(dayName) {
					continue
				}
				found = true
				remaining[psw]--
				break
			}
			if !found {
				errors = append(errors, fmt.Sprintf("request (%s, %s) on day %d is not requested by anyone in the instance (or already requested in the same window)", sched.Patient, sched.Service, dayName))
			}
		}
	}

	leftover := 0
	for _, count := range remaining {
		if count > 0 {
			leftover += count
		}
	}
	if leftover != 0 {
		errors = append(errors, fmt.Sprintf("%d requests are not in the result", leftover))
	}

	return errors
}

// CheckFatMasterResult validates a fat master (or final) result: entity
// references, capacity per operator, per-patient daily span, and window
// coverage.
func CheckFatMasterResult(inst model.MasterInstance, scheduled map[model.DayName][]model.PatientServiceOperator, rejected []model.PatientServiceWindow) []string {
	var errors []string

	for dayName, requests := range scheduled {
		day, dayOK := inst.Days[dayName]
		for _, req := range requests {
			if _, ok := inst.Patients[req.Patient]; !ok {
				errors = append(errors, fmt.Sprintf("patient %s in day %d does not exists", req.Patient, dayName))
			}
			svc, svcOK := inst.Services[req.Service]
			if !svcOK {
				errors = append(errors, fmt.Sprintf("service %s in day %d does not exists", req.Service, dayName))
				continue
			}
			if !dayOK {
				continue
			}
			ops, cuOK := day.CareUnits[svc.CareUnit]
			if !cuOK {
				errors = append(errors, fmt.Sprintf("care unit %s in day %d does not exists", svc.CareUnit, dayName))
				continue
			}
			if _, ok := ops[req.Operator]; !ok {
				errors = append(errors, fmt.Sprintf("operator %s in day %d does not exists", req.Operator, dayName))
			}
		}
	}

	errors = append(errors, CheckRejectedRequests(inst, rejected)...)

	for dayName, requests := range scheduled {
		day, ok := inst.Days[dayName]
		if !ok {
			continue
		}
		maxSpan := day.MaxSpan()
		patientRemaining := make(map[model.PatientName]model.TimeSlot)
		operatorRemaining := make(map[model.OperatorName]model.TimeSlot)
		for name, op := range day.Operators() {
			operatorRemaining[name] = op.Duration
		}

		for _, req := range requests {
			svc, ok := inst.Services[req.Service]
			if !ok {
				continue
			}
			if _, ok := patientRemaining[req.Patient]; !ok {
				patientRemaining[req.Patient] = maxSpan
			}
			patientRemaining[req.Patient] -= svc.Duration
			operatorRemaining[req.Operator] -= svc.Duration

			if patientRemaining[req.Patient] < 0 {
				errors = append(errors, fmt.Sprintf("patient %s is overloaded in day %d", req.Patient, dayName))
			}
			if operatorRemaining[req.Operator] < 0 {
				errors = append(errors, fmt.Sprintf("operator %s is overloaded in day %d", req.Operator, dayName))
			}
		}
	}

	errors = append(errors, CheckWindowsRespect(inst, scheduled, rejected)...)

	return errors
}

// CheckSlimMasterResult validates a slim master result: same shape as
// CheckFatMasterResult but capacity is checked per care-unit, not per
// operator, since the operator choice isn't made yet.
func CheckSlimMasterResult(inst model.MasterInstance, scheduled map[model.DayName][]model.PatientServiceOperator, rejected []model.PatientServiceWindow) []string {
	var errors []string

	for dayName, requests := range scheduled {
		if len(requests) == 0 {
			errors = append(errors, fmt.Sprintf("day %d has no requests", dayName))
		}
		day, dayOK := inst.Days[dayName]
		for _, req := range requests {
			if _, ok := inst.Patients[req.Patient]; !ok {
				errors = append(errors, fmt.Sprintf("patient %s in day %d does not exists", req.Patient, dayName))
			}
			svc, svcOK := inst.Services[req.Service]
			if !svcOK {
				errors = append(errors, fmt.Sprintf("service %s in day %d does not exists", req.Service, dayName))
				continue
			}
			if !dayOK {
				continue
			}
			if _, ok := day.CareUnits[svc.CareUnit]; !ok {
				errors = append(errors, fmt.Sprintf("care unit %s in day %d does not exists", svc.CareUnit, dayName))
			}
		}
	}

	errors = append(errors, CheckRejectedRequests(inst, rejected)...)

	for dayName, requests := range scheduled {
		day, ok := inst.Days[dayName]
		if !ok {
			continue
		}
		maxSpan := day.MaxSpan()
		patientRemaining := make(map[model.PatientName]model.TimeSlot)
		careUnitRemaining := make(map[model.CareUnitName]model.TimeSlot)
		for cuName, ops := range day.CareUnits {
			var total model.TimeSlot
			for _, op := range ops {
				total += op.Duration
			}
			careUnitRemaining[cuName] = total
		}

		for _, req := range requests {
			svc, ok := inst.Services[req.Service]
			if !ok {
				continue
			}
			if _, ok := patientRemaining[req.Patient]; !ok {
				patientRemaining[req.Patient] = maxSpan
			}
			patientRemaining[req.Patient] -= svc.Duration
			careUnitRemaining[svc.CareUnit] -= svc.Duration

			if patientRemaining[req.Patient] < 0 {
				errors = append(errors, fmt.Sprintf("patient %s is overloaded in day %d", req.Patient, dayName))
			}
			if careUnitRemaining[svc.CareUnit] < 0 {
				errors = append(errors, fmt.Sprintf("care unit %s is overloaded in day %d", svc.CareUnit, dayName))
			}
		}
	}

	errors = append(errors, CheckWindowsRespect(inst, scheduled, rejected)...)

	return errors
}

// CheckMasterResult dispatches to the fat or slim checker based on r.Fat.
func CheckMasterResult(inst model.MasterInstance, r model.MasterResult) []string {
	if r.Fat {
		return CheckFatMasterResult(inst, r.Scheduled, r.Rejected)
	}
	return CheckSlimMasterResult(inst, r.Scheduled, r.Rejected)
}
