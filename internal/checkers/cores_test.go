package checkers

import (
	"testing"

	"github.com/fevancin/Scheduler-Project/internal/model"
)

func TestCheckSlimCoresValid(t *testing.T) {
	inst := trivialMasterInstance()
	core := model.SlimCore{
		Days:       []model.DayName{1},
		Reason:     []model.PatientService{{Patient: "p0", Service: "svc0"}},
		Components: []model.PatientService{{Patient: "p0", Service: "svc0"}},
	}

	if errs := CheckSlimCores(inst, []model.SlimCore{core}); len(errs) != 0 {
		t.Fatalf("CheckSlimCores() = %v, want no errors", errs)
	}
}

func TestCheckSlimCoresEmptyShape(t *testing.T) {
	inst := trivialMasterInstance()
	core := model.SlimCore{}

	errs := CheckSlimCores(inst, []model.SlimCore{core})
	if !containsSubstring(errs, "no reason") || !containsSubstring(errs, "no days") || !containsSubstring(errs, "no components") {
		t.Fatalf("CheckSlimCores() = %v, want no-reason/no-days/no-components errors", errs)
	}
}

func TestCheckSlimCoresUnknownComponent(t *testing.T) {
	inst := trivialMasterInstance()
	core := model.SlimCore{
		Days:       []model.DayName{1},
		Reason:     []model.PatientService{{Patient: "p0", Service: "svc0"}},
		Components: []model.PatientService{{Patient: "p0", Service: "svc0"}, {Patient: "ghost", Service: "svc0"}},
	}

	errs := CheckSlimCores(inst, []model.SlimCore{core})
	if !containsSubstring(errs, "does not exists") {
		t.Fatalf("CheckSlimCores() = %v, want a does-not-exist error for the ghost component", errs)
	}
}

func TestCheckSlimCoresWindowDoesNotCoverDay(t *testing.T) {
	inst := trivialMasterInstance() // p0 requests svc0 only in window [1,1]
	core := model.SlimCore{
		Days:       []model.DayName{1},
		Reason:     []model.PatientService{{Patient: "p0", Service: "svc0"}},
		Components: []model.PatientService{{Patient: "p0", Service: "svc0"}},
	}
	// Extend the instance with a second day the patient never requested for.
	inst.Days[2] = inst.Days[1]
	core.Days = []model.DayName{1, 2}

	errs := CheckSlimCores(inst, []model.SlimCore{core})
	if !containsSubstring(errs, "has no window") {
		t.Fatalf("CheckSlimCores() = %v, want a no-window-for-day error", errs)
	}
}

func TestCheckFatCoresOperatorReference(t *testing.T) {
	inst := trivialMasterInstance()
	core := model.FatCore{
		Days:       []model.DayName{1},
		Reason:     []model.PatientServiceOperator{{Patient: "p0", Service: "svc0", Operator: "op0"}},
		Components: []model.PatientServiceOperator{{Patient: "p0", Service: "svc0", Operator: "no-such-operator"}},
	}

	errs := CheckFatCores(inst, []model.FatCore{core})
	if !containsSubstring(errs, "operator no-such-operator does not exists") {
		t.Fatalf("CheckFatCores() = %v, want an operator-does-not-exist error", errs)
	}
}

func TestCheckFatCoresValid(t *testing.T) {
	inst := trivialMasterInstance()
	core := model.FatCore{
		Days:       []model.DayName{1},
		Reason:     []model.PatientServiceOperator{{Patient: "p0", Service: "svc0", Operator: "op0"}},
		Components: []model.PatientServiceOperator{{Patient: "p0", Service: "svc0", Operator: "op0"}},
	}

	if errs := CheckFatCores(inst, []model.FatCore{core}); len(errs) != 0 {
		t.Fatalf("CheckFatCores() = %v, want no errors", errs)
	}
}
