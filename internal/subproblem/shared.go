// Package subproblem builds the per-day packing MILPs (slim: operator not
// yet committed; fat: operator already fixed), grounded on
// original_source/src/milp_models/subproblem_model.py.
//
// The source file names its two builders get_fat_subproblem_model and
// get_slim_subproblem_model, but their bodies are swapped relative to that
// naming: get_fat_subproblem_model builds the operator-undecided (slim)
// formulation and get_slim_subproblem_model builds the operator-fixed
// (fat) one. The functions here are named after what they actually build.
package subproblem

import "github.com/fevancin/Scheduler-Project/internal/model"

const useRedundantOperatorCutInfo = "use_redundant_operator_cut"
const preemptiveForbiddingInfo = "preemptive_forbidding"

func containsInfo(info []string, want string) bool {
	for _, s := range info {
		if s == want {
			return true
		}
	}
	return false
}

// careUnitMaxTime computes, for every care unit present in the roster, one
// plus the latest end time of any operator assigned to it. It is the big-M
// constant used throughout the disjunctive mutual-exclusion constraints.
func careUnitMaxTime(roster model.Day) map[model.CareUnitName]model.TimeSlot {
	maxTime := make(map[model.CareUnitName]model.TimeSlot, len(roster.CareUnits))
	for cu, ops := range roster.CareUnits {
		var max model.TimeSlot
		for _, op := range ops {
			if end := op.End(); end > max {
				max = end
			}
		}
		maxTime[cu] = max + 1
	}
	return maxTime
}

func groupRequestsByPatient(requests []model.PatientServiceOperator) map[model.PatientName][]model.PatientServiceOperator {
	byPatient := make(map[model.PatientName][]model.PatientServiceOperator)
	for _, r := range requests {
		byPatient[r.Patient] = append(byPatient[r.Patient], r)
	}
	return byPatient
}
