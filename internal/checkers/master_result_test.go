package checkers

import (
	"testing"

	"github.com/fevancin/Scheduler-Project/internal/model"
)

func TestCheckMasterResultSlimValid(t *testing.T) {
	inst := trivialMasterInstance()
	r := model.NewMasterResult(false)
	r.Scheduled[1] = []model.PatientServiceOperator{{Patient: "p0", Service: "svc0"}}

	if errs := CheckMasterResult(inst, r); len(errs) != 0 {
		t.Fatalf("CheckMasterResult() = %v, want no errors", errs)
	}
}

func TestCheckMasterResultFatValid(t *testing.T) {
	inst := trivialMasterInstance()
	r := model.NewMasterResult(true)
	r.Scheduled[1] = []model.PatientServiceOperator{{Patient: "p0", Service: "svc0", Operator: "op0"}}

	if errs := CheckMasterResult(inst, r); len(errs) != 0 {
		t.Fatalf("CheckMasterResult() = %v, want no errors", errs)
	}
}

func TestCheckMasterResultMissingObligation(t *testing.T) {
	inst := trivialMasterInstance()
	r := model.NewMasterResult(false) // scheduled and rejected both empty

	errs := CheckMasterResult(inst, r)
	if !containsSubstring(errs, "not in the result") {
		t.Fatalf("CheckMasterResult() = %v, want a not-in-the-result error", errs)
	}
}

func TestCheckMasterResultRejectedUnknownEntity(t *testing.T) {
	inst := trivialMasterInstance()
	r := model.NewMasterResult(false)
	r.Rejected = []model.PatientServiceWindow{{Patient: "ghost", Service: "svc0", Window: model.Window{Start: 1, End: 1}}}

	errs := CheckMasterResult(inst, r)
	if !containsSubstring(errs, "does not exists") {
		t.Fatalf("CheckMasterResult() = %v, want a does-not-exist error", errs)
	}
}

func TestCheckFatMasterResultOperatorOverload(t *testing.T) {
	// Two patients each requesting a duration-4 service against a single
	// operator of duration 5: the operator cannot carry both.
	day := model.NewDay()
	day.AddOperator("cu0", "op0", model.Operator{CareUnit: "cu0", Start: 0, Duration: 5})

	p0 := model.NewMasterPatient(1)
	p0.AddRequest("svc0", model.Window{Start: 1, End: 1})
	p1 := model.NewMasterPatient(1)
	p1.AddRequest("svc0", model.Window{Start: 1, End: 1})

	inst := model.MasterInstance{
		Days:     map[model.DayName]model.Day{1: day},
		Services: map[model.ServiceName]model.Service{"svc0": {CareUnit: "cu0", Duration: 4}},
		Patients: map[model.PatientName]model.MasterPatient{"p0": p0, "p1": p1},
	}

	r := model.NewMasterResult(true)
	r.Scheduled[1] = []model.PatientServiceOperator{
		{Patient: "p0", Service: "svc0", Operator: "op0"},
		{Patient: "p1", Service: "svc0", Operator: "op0"},
	}

	errs := CheckMasterResult(inst, r)
	if !containsSubstring(errs, "operator op0 is overloaded") {
		t.Fatalf("CheckMasterResult() = %v, want an operator-overloaded error", errs)
	}
}
