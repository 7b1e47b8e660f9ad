package checkers

import (
	"fmt"

	"github.com/fevancin/Scheduler-Project/internal/model"
)

// CheckFinalResult validates a composed final result: it must satisfy every
// fat-master-result invariant (entity references, capacity, window
// coverage) plus, per day, pairwise overlap freedom and operator shift
// containment for every placed request.
func CheckFinalResult(inst model.MasterInstance, r model.FinalResult) []string {
	asPSO := make(map[model.DayName][]model.PatientServiceOperator, len(r.Scheduled))
	for day, reqs := range r.Scheduled {
		list := make([]model.PatientServiceOperator, len(reqs))
		for i, req := range reqs {
			list[i] = req.Base()
		}
		asPSO[day] = list
	}

	errors := CheckFatMasterResult(inst, asPSO, r.Rejected)

	for dayName, requests := range r.Scheduled {
		day, ok := inst.Days[dayName]
		if !ok {
			continue
		}

		for _, e := range CheckOverlaps(inst.Services, requests) {
			errors = append(errors, fmt.Sprintf("[day %d]: %s", dayName, e))
		}

		for _, req := range requests {
			svc, ok := inst.Services[req.Service]
			if !ok {
				continue
			}
			ops, ok := day.CareUnits[svc.CareUnit]
			if !ok {
				continue
			}
			op, ok := ops[req.Operator]
			if !ok {
				continue
			}
			if req.Time < op.Start || req.Time+svc.Duration > op.End() {
				errors = append(errors, fmt.Sprintf("service %s of patient %s doesn't respect operator %s time of activity", req.Service, req.Patient, req.Operator))
			}
		}
	}

	return errors
}
