// Package analysis computes the weighted result value and the
// hospital-access penalty denominator the iteration driver needs to decide
// its stop conditions, grounded on
// original_source/src/analyzers/tools.py. It deliberately does not port the
// rest of that module (log parsing, plotting) — spec.md's Non-goals exclude
// a full analyzer/plotter suite; only the formula the driver itself
// consumes is in scope.
package analysis

import "github.com/fevancin/Scheduler-Project/internal/model"

func containsInfo(info []string, want string) bool {
	for _, v := range info {
		if v == want {
			return true
		}
	}
	return false
}

// patientOf and serviceOf extract the (patient, service) identity from the
// two shapes a scheduled entry can take, so ResultValue and
// DayNumberUsedByPatients work uniformly over a master result's
// PatientServiceOperator entries and a final result's
// PatientServiceOperatorTimeSlot entries.
type scheduledEntry interface {
	model.PatientService | model.PatientServiceOperator | model.PatientServiceOperatorTimeSlot
}

func patientOf[T scheduledEntry](e T) model.PatientName {
	switch v := any(e).(type) {
	case model.PatientService:
		return v.Patient
	case model.PatientServiceOperator:
		return v.Patient
	case model.PatientServiceOperatorTimeSlot:
		return v.Patient
	}
	return ""
}

func serviceOf[T scheduledEntry](e T) model.ServiceName {
	switch v := any(e).(type) {
	case model.PatientService:
		return v.Service
	case model.PatientServiceOperator:
		return v.Service
	case model.PatientServiceOperatorTimeSlot:
		return v.Service
	}
	return ""
}

// DayNumberUsedByPatients counts, across every patient, the number of
// distinct days on which that patient has at least one scheduled request,
// summed — the "total hospital accesses" count, grounded on
// get_days_number_used_by_patients. Used both on an actual result (for
// reporting) and on a worst-case scenario (as the penalty denominator).
func DayNumberUsedByPatients[T scheduledEntry](scheduled map[model.DayName][]T) int {
	daysByPatient := make(map[model.PatientName]map[model.DayName]bool)
	for dayName, requests := range scheduled {
		for _, req := range requests {
			p := patientOf(req)
			if daysByPatient[p] == nil {
				daysByPatient[p] = make(map[model.DayName]bool)
			}
			daysByPatient[p][dayName] = true
		}
	}

	total := 0
	for _, days := range daysByPatient {
		total += len(days)
	}
	return total
}

// ResultValue sums the weighted duration (service duration * patient
// priority) of every (patient, service) window satisfied by at least one
// day of scheduled, then, if additionalInfo requests
// minimize_hospital_accesses, subtracts
// DayNumberUsedByPatients(scheduled)/worstCaseDayNumber, grounded on
// get_result_value. worstCaseDayNumber is normally
// DayNumberUsedByPatients applied to WorstCaseFatScenario/
// WorstCaseSlimScenario; a zero value disables the penalty term the same
// way the source's "worst_case_day_number is None" guard does.
func ResultValue[T scheduledEntry](instance model.MasterInstance, scheduled map[model.DayName][]T, additionalInfo []string, worstCaseDayNumber int) float64 {
	var value float64

	for patientName, patient := range instance.Patients {
		for serviceName, windows := range patient.Requests {
			for _, window := range windows {
				satisfied := false

				for dayName := window.Start; dayName <= window.End && !satisfied; dayName++ {
					for _, req := range scheduled[dayName] {
						if patientOf(req) == patientName && serviceOf(req) == serviceName {
							satisfied = true
							break
						}
					}
				}

				if satisfied {
					value += float64(instance.Services[serviceName].Duration) * float64(patient.Priority)
				}
			}
		}
	}

	if worstCaseDayNumber > 0 && containsInfo(additionalInfo, "minimize_hospital_accesses") {
		value -= float64(DayNumberUsedByPatients(scheduled)) / float64(worstCaseDayNumber)
	}

	return value
}

// WorstCaseFatScenario builds the set of every (patient, service, day,
// operator) combination that could ever occur — every operator of the
// relevant care unit, on every day of every requested window — grounded on
// get_worst_fat_case_scenario. Its only use is as ResultValue's
// worstCaseDayNumber input via DayNumberUsedByPatients.
func WorstCaseFatScenario(instance model.MasterInstance) map[model.DayName][]model.PatientServiceOperator {
	scenario := make(map[model.DayName][]model.PatientServiceOperator)
	seen := make(map[model.DayName]map[model.PatientServiceOperator]bool)

	for patientName, patient := range instance.Patients {
		for serviceName, windows := range patient.Requests {
			careUnit := instance.Services[serviceName].CareUnit

			for _, window := range windows {
				for dayName := window.Start; dayName <= window.End; dayName++ {
					day, ok := instance.Days[dayName]
					if !ok {
						continue
					}
					for operatorName := range day.CareUnits[careUnit] {
						req := model.PatientServiceOperator{Patient: patientName, Service: serviceName, Operator: operatorName}
						if seen[dayName] == nil {
							seen[dayName] = make(map[model.PatientServiceOperator]bool)
						}
						if seen[dayName][req] {
							continue
						}
						seen[dayName][req] = true
						scenario[dayName] = append(scenario[dayName], req)
					}
				}
			}
		}
	}

	return scenario
}

// WorstCaseSlimScenario is WorstCaseFatScenario's operator-less
// counterpart, grounded on get_worst_slim_case_scenario.
func WorstCaseSlimScenario(instance model.MasterInstance) map[model.DayName][]model.PatientService {
	scenario := make(map[model.DayName][]model.PatientService)
	seen := make(map[model.DayName]map[model.PatientService]bool)

	for patientName, patient := range instance.Patients {
		for serviceName, windows := range patient.Requests {
			req := model.PatientService{Patient: patientName, Service: serviceName}

			for _, window := range windows {
				for dayName := window.Start; dayName <= window.End; dayName++ {
					if seen[dayName] == nil {
						seen[dayName] = make(map[model.PatientService]bool)
					}
					if seen[dayName][req] {
						continue
					}
					seen[dayName][req] = true
					scenario[dayName] = append(scenario[dayName], req)
				}
			}
		}
	}

	return scenario
}
