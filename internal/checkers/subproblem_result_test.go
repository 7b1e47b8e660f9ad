package checkers

import (
	"testing"

	"github.com/fevancin/Scheduler-Project/internal/model"
)

func trivialSlimSubproblemResult() (model.SubproblemInstance, model.SubproblemResult) {
	inst := trivialSlimSubproblemInstance()
	r := model.SubproblemResult{
		Scheduled: []model.PatientServiceOperatorTimeSlot{
			{Patient: "p0", Service: "svc0", Operator: "op0", Time: 0},
		},
	}
	return inst, r
}

func TestCheckSubproblemResultValid(t *testing.T) {
	inst, r := trivialSlimSubproblemResult()
	if errs := CheckSubproblemResult(inst, r); len(errs) != 0 {
		t.Fatalf("CheckSubproblemResult() = %v, want no errors", errs)
	}
}

func TestCheckSubproblemResultOutsideOperatorShift(t *testing.T) {
	inst, r := trivialSlimSubproblemResult()
	r.Scheduled[0].Time = 7 // operator runs [0,10), service duration 4: 7+4 > 10

	errs := CheckSubproblemResult(inst, r)
	if !containsSubstring(errs, "doesn't respect operator") {
		t.Fatalf("CheckSubproblemResult() = %v, want an operator-time-of-activity error", errs)
	}
}

func TestCheckSubproblemResultMissingFromResult(t *testing.T) {
	inst := trivialSlimSubproblemInstance()
	r := model.SubproblemResult{} // neither scheduled nor rejected

	errs := CheckSubproblemResult(inst, r)
	if !containsSubstring(errs, "do not have service svc0 in the result") {
		t.Fatalf("CheckSubproblemResult() = %v, want a missing-from-the-result error", errs)
	}
}

func TestCheckSubproblemResultScheduledAndRejected(t *testing.T) {
	inst, r := trivialSlimSubproblemResult()
	r.Rejected = []model.PatientServiceOperator{{Patient: "p0", Service: "svc0"}}

	errs := CheckSubproblemResult(inst, r)
	if !containsSubstring(errs, "both satisfied and rejected") {
		t.Fatalf("CheckSubproblemResult() = %v, want a both-satisfied-and-rejected error", errs)
	}
}

func TestCheckSubproblemResultOverlap(t *testing.T) {
	roster := model.NewDay()
	roster.AddOperator("cu0", "op0", model.Operator{CareUnit: "cu0", Start: 0, Duration: 10})
	inst := model.SubproblemInstance{
		Fat:      false,
		Day:      1,
		Roster:   roster,
		Services: map[model.ServiceName]model.Service{"svc0": {CareUnit: "cu0", Duration: 4}},
		Patients: map[model.PatientName]int{"p0": 1},
		Requests: []model.PatientServiceOperator{{Patient: "p0", Service: "svc0"}},
	}
	r := model.SubproblemResult{
		Scheduled: []model.PatientServiceOperatorTimeSlot{
			{Patient: "p0", Service: "svc0", Operator: "op0", Time: 0},
			{Patient: "p0", Service: "svc0", Operator: "op0", Time: 2},
		},
	}

	errs := CheckSubproblemResult(inst, r)
	if !containsSubstring(errs, "multiple times") {
		t.Fatalf("CheckSubproblemResult() = %v, want a multiple-times error", errs)
	}
}
