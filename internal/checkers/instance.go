// Package checkers implements structural validation for instances, results
// and cores. Every checker returns a flat list of human-readable error
// strings rather than failing fast, so a caller can report every defect
// found in one pass — the driver treats a non-empty list as fatal to the
// current iteration (spec.md §7, "structural" errors).
package checkers

import (
	"fmt"
	"sort"

	"github.com/fevancin/Scheduler-Project/internal/model"
)

// CheckMasterInstance validates day contiguity, service/care-unit
// references, operator shift sanity, and request window bounds.
func CheckMasterInstance(inst model.MasterInstance) []string {
	var errors []string

	if len(inst.Days) == 0 {
		errors = append(errors, "instance has no days")
	}
	if len(inst.Services) == 0 {
		errors = append(errors, "instance has no services")
	}
	if len(inst.Patients) == 0 {
		errors = append(errors, "instance has no patients")
	}
	if len(inst.Days) == 0 {
		return errors
	}

	minDay, maxDay := inst.DayRange()
	if len(inst.Days) != int(maxDay-minDay)+1 {
		errors = append(errors, "instance days have gaps")
	}

	careUnitNames := make(map[model.CareUnitName]bool)
	for _, day := range inst.Days {
		for cu := range day.CareUnits {
			careUnitNames[cu] = true
		}
	}

	for dayName, day := range inst.Days {
		if len(day.CareUnits) == 0 {
			errors = append(errors, fmt.Sprintf("day %d has no care units", dayName))
		}
		for cuName, ops := range day.CareUnits {
			if len(ops) == 0 {
				errors = append(errors, fmt.Sprintf("care unit %s of day %d has no operators", cuName, dayName))
			}
			for opName, op := range ops {
				if op.Start < 0 || op.Duration <= 0 {
					errors = append(errors, fmt.Sprintf("operator %s of care unit %s of day %d has wrong parameters", opName, cuName, dayName))
				}
			}
		}
	}

	for svcName, svc := range inst.Services {
		if !careUnitNames[svc.CareUnit] {
			errors = append(errors, fmt.Sprintf("service %s has a non existent care unit (%s)", svcName, svc.CareUnit))
		}
		if svc.Duration <= 0 {
			errors = append(errors, fmt.Sprintf("service %s has an invalid duration (%d)", svcName, svc.Duration))
		}
	}

	for patName, patient := range inst.Patients {
		if patient.Priority <= 0 {
			errors = append(errors, fmt.Sprintf("priority of patient %s is invalid", patName))
		}
		if len(patient.Requests) == 0 {
			errors = append(errors, fmt.Sprintf("patient %s has no requests", patName))
		}
		for svcName, windows := range patient.Requests {
			if _, ok := inst.Services[svcName]; !ok {
				errors = append(errors, fmt.Sprintf("patient %s requests a non existent service (%s)", patName, svcName))
			}
			if len(windows) == 0 {
				errors = append(errors, fmt.Sprintf("patient %s requests service %s with no windows", patName, svcName))
			}
			for _, w := range windows {
				if w.Start < minDay || w.End > maxDay || w.Start > w.End {
					errors = append(errors, fmt.Sprintf("patient %s requests service %s with invalid window [%d, %d]", patName, svcName, w.Start, w.End))
				}
			}
		}
	}

	return errors
}

// CheckSubproblemInstance validates a single day's packing instance,
// covering the parts common to fat and slim shapes plus the shape-specific
// request references and capacity pre-checks.
func CheckSubproblemInstance(inst model.SubproblemInstance) []string {
	errors := checkCommonSubproblemParts(inst)

	if inst.Fat {
		errors = append(errors, checkFatSubproblemRequests(inst)...)
	} else {
		errors = append(errors, checkSlimSubproblemRequests(inst)...)
	}

	return errors
}

func checkCommonSubproblemParts(inst model.SubproblemInstance) []string {
	var errors []string

	if len(inst.Roster.CareUnits) == 0 {
		errors = append(errors, "instance has no care unit")
	}
	if len(inst.Services) == 0 {
		errors = append(errors, "instance has no services")
	}
	if len(byPatient(inst)) == 0 {
		errors = append(errors, "instance has no patients")
	}

	for cuName, ops := range inst.Roster.CareUnits {
		if len(ops) == 0 {
			errors = append(errors, fmt.Sprintf("care unit %s has no operators", cuName))
		}
		for opName, op := range ops {
			if op.Start < 0 || op.Duration <= 0 {
				errors = append(errors, fmt.Sprintf("operator %s of care unit %s has wrong parameters", opName, cuName))
			}
		}
	}

	for svcName, svc := range inst.Services {
		if _, ok := inst.Roster.CareUnits[svc.CareUnit]; !ok {
			errors = append(errors, fmt.Sprintf("service %s has a non existent care unit (%s)", svcName, svc.CareUnit))
		}
		if svc.Duration <= 0 {
			errors = append(errors, fmt.Sprintf("service %s has an invalid duration (%d)", svcName, svc.Duration))
		}
	}

	return errors
}

// byPatient groups requests by patient, preserving a stable order so that
// duplicate-detection and remaining-duration accounting iterate
// deterministically.
func byPatient(inst model.SubproblemInstance) map[model.PatientName][]model.PatientServiceOperator {
	grouped := make(map[model.PatientName][]model.PatientServiceOperator)
	for _, r := range inst.Requests {
		grouped[r.Patient] = append(grouped[r.Patient], r)
	}
	return grouped
}

func maxSpanOf(roster model.Day) model.TimeSlot {
	return roster.MaxSpan()
}

func checkFatSubproblemRequests(inst model.SubproblemInstance) []string {
	var errors []string

	grouped := byPatient(inst)
	patientNames := sortedPatientNames(grouped)

	for _, patName := range patientNames {
		reqs := grouped[patName]
		if len(reqs) == 0 {
			errors = append(errors, fmt.Sprintf("patient %s has no requests", patName))
		}
		for _, r := range reqs {
			svc, svcOK := inst.Services[r.Service]
			if !svcOK {
				errors = append(errors, fmt.Sprintf("patient %s requests a non existent service (%s)", patName, r.Service))
				continue
			}
			ops, cuOK := inst.Roster.CareUnits[svc.CareUnit]
			if !cuOK {
				errors = append(errors, fmt.Sprintf("patient %s request a non existent care unit (%s)", patName, svc.CareUnit))
				continue
			}
			if _, ok := ops[r.Operator]; !ok {
				errors = append(errors, fmt.Sprintf("patient %s request a non existent operator (%s)", patName, r.Operator))
			}
		}
	}

	maxSpan := maxSpanOf(inst.Roster)
	patientRemaining := make(map[model.PatientName]model.TimeSlot)
	operatorRemaining := make(map[model.OperatorName]model.TimeSlot)
	for name, op := range inst.Roster.Operators() {
		operatorRemaining[name] = op.Duration
	}

	for _, patName := range patientNames {
		reqs := grouped[patName]
		if hasDuplicate(reqs) {
			errors = append(errors, fmt.Sprintf("patient %s has some duplicate requests", patName))
		}
		if _, ok := patientRemaining[patName]; !ok {
			patientRemaining[patName] = maxSpan
		}
		for _, r := range reqs {
			svc, ok := inst.Services[r.Service]
			if !ok {
				continue
			}
			patientRemaining[patName] -= svc.Duration
			operatorRemaining[r.Operator] -= svc.Duration
			if patientRemaining[patName] < 0 {
				errors = append(errors, fmt.Sprintf("patient %s is overloaded", patName))
			}
			if operatorRemaining[r.Operator] < 0 {
				errors = append(errors, fmt.Sprintf("operator %s is overloaded", r.Operator))
			}
		}
	}

	return errors
}

func checkSlimSubproblemRequests(inst model.SubproblemInstance) []string {
	var errors []string

	grouped := byPatient(inst)
	patientNames := sortedPatientNames(grouped)

	for _, patName := range patientNames {
		reqs := grouped[patName]
		if len(reqs) == 0 {
			errors = append(errors, fmt.Sprintf("patient %s has no requests", patName))
		}
		for _, r := range reqs {
			svc, ok := inst.Services[r.Service]
			if !ok {
				errors = append(errors, fmt.Sprintf("patient %s requests a non existent service (%s)", patName, r.Service))
				continue
			}
			if _, ok := inst.Roster.CareUnits[svc.CareUnit]; !ok {
				errors = append(errors, fmt.Sprintf("patient %s request a non existent care unit (%s)", patName, svc.CareUnit))
			}
		}
	}

	maxSpan := maxSpanOf(inst.Roster)
	patientRemaining := make(map[model.PatientName]model.TimeSlot)
	careUnitRemaining := make(map[model.CareUnitName]model.TimeSlot)
	for cuName, ops := range inst.Roster.CareUnits {
		var total model.TimeSlot
		for _, op := range ops {
			total += op.Duration
		}
		careUnitRemaining[cuName] = total
	}

	for _, patName := range patientNames {
		reqs := grouped[patName]
		if hasDuplicate(reqs) {
			errors = append(errors, fmt.Sprintf("patient %s has some duplicate requests", patName))
		}
		if _, ok := patientRemaining[patName]; !ok {
			patientRemaining[patName] = maxSpan
		}
		for _, r := range reqs {
			svc, ok := inst.Services[r.Service]
			if !ok {
				continue
			}
			patientRemaining[patName] -= svc.Duration
			careUnitRemaining[svc.CareUnit] -= svc.Duration
			if patientRemaining[patName] < 0 {
				errors = append(errors, fmt.Sprintf("patient %s is overloaded", patName))
			}
			if careUnitRemaining[svc.CareUnit] < 0 {
				errors = append(errors, fmt.Sprintf("care unit %s is overloaded", svc.CareUnit))
			}
		}
	}

	return errors
}

func hasDuplicate(reqs []model.PatientServiceOperator) bool {
	seen := make(map[model.PatientServiceOperator]bool, len(reqs))
	for _, r := range reqs {
		if seen[r] {
			return true
		}
		seen[r] = true
	}
	return false
}

func sortedPatientNames(grouped map[model.PatientName][]model.PatientServiceOperator) []model.PatientName {
	names := make([]model.PatientName, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
