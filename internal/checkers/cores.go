package checkers

import (
	"fmt"

	"github.com/fevancin/Scheduler-Project/internal/model"
)

// CheckSlimCores validates non-emptiness, day validity, reason-subset-of-
// components, and that every component is a real request covering every
// one of the core's days.
func CheckSlimCores(inst model.MasterInstance, cores []model.SlimCore) []string {
	var errors []string

	for _, core := range cores {
		errors = append(errors, checkCoreShape(inst, core.Reason, core.Days, core.Components)...)

		for _, reason := range core.Reason {
			if !containsPatientService(core.Components, reason) {
				errors = append(errors, fmt.Sprintf("reason %s, %s not found in core components", reason.Patient, reason.Service))
			}
		}

		for _, component := range core.Components {
			errors = append(errors, checkComponentAgainstInstance(inst, component.Patient, component.Service)...)
			for _, dayName := range core.Days {
				if !windowCoversDay(inst, component.Patient, component.Service, dayName) {
					errors = append(errors, fmt.Sprintf("patient %s has no window for service %s in day %d", component.Patient, component.Service, dayName))
				}
			}
		}
	}

	return errors
}

// CheckFatCores is the operator-aware counterpart of CheckSlimCores: it
// additionally requires the reason's operator to match and every
// component's operator to exist on every one of the core's days.
func CheckFatCores(inst model.MasterInstance, cores []model.FatCore) []string {
	var errors []string

	for _, core := range cores {
		errors = append(errors, checkCoreShape(inst, toPatientServices(core.Reason), core.Days, toPatientServices(core.Components))...)

		for _, reason := range core.Reason {
			if !containsPatientServiceOperator(core.Components, reason) {
				errors = append(errors, fmt.Sprintf("reason %s, %s, %s not found in core components", reason.Patient, reason.Service, reason.Operator))
			}
		}

		for _, component := range core.Components {
			errors = append(errors, checkComponentAgainstInstance(inst, component.Patient, component.Service)...)
			for _, dayName := range core.Days {
				if day, ok := inst.Days[dayName]; ok {
					if _, ok := day.Operators()[component.Operator]; !ok {
						errors = append(errors, fmt.Sprintf("operator %s does not exists in day %d", component.Operator, dayName))
					}
				}
				if !windowCoversDay(inst, component.Patient, component.Service, dayName) {
					errors = append(errors, fmt.Sprintf("patient %s has no window for service %s in day %d", component.Patient, component.Service, dayName))
				}
			}
		}
	}

	return errors
}

func checkCoreShape(inst model.MasterInstance, reason []model.PatientService, days []model.DayName, components []model.PatientService) []string {
	var errors []string
	if len(reason) == 0 {
		errors = append(errors, "a core has no reason")
	}
	if len(days) == 0 {
		errors = append(errors, "a core has no days")
	}
	if len(components) == 0 {
		errors = append(errors, "a core has no components")
	}
	for _, d := range days {
		if _, ok := inst.Days[d]; !ok {
			errors = append(errors, fmt.Sprintf("day %d is not present in the instance", d))
		}
	}
	return errors
}

func checkComponentAgainstInstance(inst model.MasterInstance, patName model.PatientName, svcName model.ServiceName) []string {
	var errors []string
	patient, patOK := inst.Patients[patName]
	if !patOK {
		errors = append(errors, fmt.Sprintf("patient %s does not exists", patName))
	}
	if _, ok := inst.Services[svcName]; !ok {
		errors = append(errors, fmt.Sprintf("service %s does not exists", svcName))
	}
	if patOK {
		if _, ok := patient.Requests[svcName]; !ok {
			errors = append(errors, fmt.Sprintf("service %s is not requested by patient %s", svcName, patName))
		}
	}
	return errors
}

func windowCoversDay(inst model.MasterInstance, patName model.PatientName, svcName model.ServiceName, day model.DayName) bool {
	patient, ok := inst.Patients[patName]
	if !ok {
		return false
	}
	for _, w := range patient.Requests[svcName] {
		if w.Contains(day) {
			return true
		}
	}
	return false
}

func containsPatientService(components []model.PatientService, target model.PatientService) bool {
	for _, c := range components {
		if c == target {
			return true
		}
	}
	return false
}

func containsPatientServiceOperator(components []model.PatientServiceOperator, target model.PatientServiceOperator) bool {
	for _, c := range components {
		if c == target {
			return true
		}
	}
	return false
}

func toPatientServices(cs []model.PatientServiceOperator) []model.PatientService {
	out := make([]model.PatientService, len(cs))
	for i, c := range cs {
		out[i] = c.Base()
	}
	return out
}
