// Package driver runs the logic-based Benders decomposition loop: solve
// the master relaxation, derive one subproblem per day, compose the final
// result, extract no-good cores from whatever the subproblems rejected, and
// repeat until the master's optimistic value is matched or a stop
// condition fires. Grounded on original_source/solver.py's solve_instance.
package driver

import "github.com/fevancin/Scheduler-Project/internal/model"

// subproblemInstanceFromMasterResult projects masterResult's assignment for
// dayName into a standalone SubproblemInstance, grounded on
// get_subproblem_instance_from_master_result. The returned instance is
// fat (operators already chosen) exactly when masterResult is.
func subproblemInstanceFromMasterResult(instance model.MasterInstance, masterResult model.MasterResult, dayName model.DayName) model.SubproblemInstance {
	si := model.SubproblemInstance{
		Fat:      masterResult.Fat,
		Day:      dayName,
		Roster:   instance.Days[dayName],
		Services: instance.Services,
		Patients: make(map[model.PatientName]int),
	}

	for _, request := range masterResult.Scheduled[dayName] {
		if _, ok := si.Patients[request.Patient]; !ok {
			si.Patients[request.Patient] = instance.Patients[request.Patient].Priority
		}
		si.Requests = append(si.Requests, request)
	}

	return si
}

// slimSubproblemInstanceFromFinalResult rebuilds a day's slim subproblem
// instance from an already-composed final result instead of a master
// result, grounded on get_slim_subproblem_instance_from_final_result. It
// has no caller: core pruning works from the per-day instances built for
// the subproblem solves.
func slimSubproblemInstanceFromFinalResult(instance model.MasterInstance, result model.FinalResult, dayName model.DayName) model.SubproblemInstance {
	si := model.SubproblemInstance{
		Fat:      false,
		Day:      dayName,
		Roster:   instance.Days[dayName],
		Services: instance.Services,
		Patients: make(map[model.PatientName]int),
	}

	for _, request := range result.Scheduled[dayName] {
		if _, ok := si.Patients[request.Patient]; !ok {
			si.Patients[request.Patient] = instance.Patients[request.Patient].Priority
		}
		si.Requests = append(si.Requests, model.PatientServiceOperator{Patient: request.Patient, Service: request.Service})
	}

	return si
}

// composeFinalResult aggregates every day's subproblem outcome into one
// FinalResult, carrying the master's outright rejections forward and
// adding, for every obligation left unsatisfied by every day of its
// window, a rejection of its own, grounded on compose_final_result.
func composeFinalResult(instance model.MasterInstance, masterResult model.MasterResult, subproblemResults map[model.DayName]model.SubproblemResult) model.FinalResult {
	final := model.NewFinalResult()
	final.Rejected = append(final.Rejected, masterResult.Rejected...)

	for dayName, result := range subproblemResults {
		final.Scheduled[dayName] = append(final.Scheduled[dayName], result.Scheduled...)
	}

	for patientName, patient := range instance.Patients {
		for serviceName, windows := range patient.Requests {
			for _, window := range windows {
				request := model.PatientServiceWindow{Patient: patientName, Service: serviceName, Window: window}
				if containsRejectedWindow(final.Rejected, request) {
					continue
				}

				satisfied := false
				for dayName := window.Start; dayName <= window.End && !satisfied; dayName++ {
					for _, placed := range subproblemResults[dayName].Scheduled {
						if placed.Patient == patientName && placed.Service == serviceName {
							satisfied = true
							break
						}
					}
				}

				if !satisfied {
					final.Rejected = append(final.Rejected, request)
				}
			}
		}
	}

	return final
}

func containsRejectedWindow(list []model.PatientServiceWindow, target model.PatientServiceWindow) bool {
	for _, w := range list {
		if w == target {
			return true
		}
	}
	return false
}
