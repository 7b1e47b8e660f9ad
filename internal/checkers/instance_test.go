package checkers

import (
	"strings"
	"testing"

	"github.com/fevancin/Scheduler-Project/internal/model"
)

// trivialMasterInstance mirrors spec.md's end-to-end scenario 1: one day,
// one care unit with one operator of duration 10, one priority-1 patient
// requesting a duration-4 service of care unit cu0 in window [1,1].
func trivialMasterInstance() model.MasterInstance {
	day := model.NewDay()
	day.AddOperator("cu0", "op0", model.Operator{CareUnit: "cu0", Start: 0, Duration: 10})

	patient := model.NewMasterPatient(1)
	patient.AddRequest("svc0", model.Window{Start: 1, End: 1})

	return model.MasterInstance{
		Days:     map[model.DayName]model.Day{1: day},
		Services: map[model.ServiceName]model.Service{"svc0": {CareUnit: "cu0", Duration: 4}},
		Patients: map[model.PatientName]model.MasterPatient{"p0": patient},
	}
}

func TestCheckMasterInstanceValid(t *testing.T) {
	if errs := CheckMasterInstance(trivialMasterInstance()); len(errs) != 0 {
		t.Fatalf("CheckMasterInstance() = %v, want no errors", errs)
	}
}

func TestCheckMasterInstanceEmpty(t *testing.T) {
	errs := CheckMasterInstance(model.MasterInstance{})
	if len(errs) == 0 {
		t.Fatalf("CheckMasterInstance() on an empty instance returned no errors")
	}
}

func TestCheckMasterInstanceDayGap(t *testing.T) {
	inst := trivialMasterInstance()
	day2 := model.NewDay()
	day2.AddOperator("cu0", "op0", model.Operator{CareUnit: "cu0", Start: 0, Duration: 10})
	inst.Days[3] = day2 // days 1 and 3 present, 2 missing

	errs := CheckMasterInstance(inst)
	if !containsSubstring(errs, "gaps") {
		t.Fatalf("CheckMasterInstance() = %v, want a day-gap error", errs)
	}
}

func TestCheckMasterInstanceBadService(t *testing.T) {
	inst := trivialMasterInstance()
	inst.Services["svc0"] = model.Service{CareUnit: "missing-cu", Duration: 4}

	errs := CheckMasterInstance(inst)
	if !containsSubstring(errs, "non existent care unit") {
		t.Fatalf("CheckMasterInstance() = %v, want a non-existent-care-unit error", errs)
	}
}

func TestCheckMasterInstanceBadWindow(t *testing.T) {
	inst := trivialMasterInstance()
	patient := inst.Patients["p0"]
	patient.Requests["svc0"] = []model.Window{{Start: 5, End: 6}}
	inst.Patients["p0"] = patient

	errs := CheckMasterInstance(inst)
	if !containsSubstring(errs, "invalid window") {
		t.Fatalf("CheckMasterInstance() = %v, want an invalid-window error", errs)
	}
}

func TestCheckMasterInstanceNonPositiveDuration(t *testing.T) {
	inst := trivialMasterInstance()
	inst.Services["svc0"] = model.Service{CareUnit: "cu0", Duration: 0}

	errs := CheckMasterInstance(inst)
	if !containsSubstring(errs, "invalid duration") {
		t.Fatalf("CheckMasterInstance() = %v, want an invalid-duration error", errs)
	}
}

func trivialSlimSubproblemInstance() model.SubproblemInstance {
	roster := model.NewDay()
	roster.AddOperator("cu0", "op0", model.Operator{CareUnit: "cu0", Start: 0, Duration: 10})
	return model.SubproblemInstance{
		Fat:      false,
		Day:      1,
		Roster:   roster,
		Services: map[model.ServiceName]model.Service{"svc0": {CareUnit: "cu0", Duration: 4}},
		Patients: map[model.PatientName]int{"p0": 1},
		Requests: []model.PatientServiceOperator{{Patient: "p0", Service: "svc0"}},
	}
}

func TestCheckSubproblemInstanceSlimValid(t *testing.T) {
	if errs := CheckSubproblemInstance(trivialSlimSubproblemInstance()); len(errs) != 0 {
		t.Fatalf("CheckSubproblemInstance() = %v, want no errors", errs)
	}
}

func TestCheckSubproblemInstanceSlimCareUnitOverload(t *testing.T) {
	inst := trivialSlimSubproblemInstance()
	inst.Requests = []model.PatientServiceOperator{
		{Patient: "p0", Service: "svc0"},
		{Patient: "p1", Service: "svc0"},
		{Patient: "p2", Service: "svc0"},
	}
	inst.Patients["p1"] = 1
	inst.Patients["p2"] = 1

	errs := CheckSubproblemInstance(inst)
	// 3 * duration 4 = 12 > care unit capacity 10.
	if !containsSubstring(errs, "overloaded") {
		t.Fatalf("CheckSubproblemInstance() = %v, want an overload error", errs)
	}
}

func TestCheckSubproblemInstanceFatOperatorReference(t *testing.T) {
	roster := model.NewDay()
	roster.AddOperator("cu0", "op0", model.Operator{CareUnit: "cu0", Start: 0, Duration: 10})
	inst := model.SubproblemInstance{
		Fat:      true,
		Day:      1,
		Roster:   roster,
		Services: map[model.ServiceName]model.Service{"svc0": {CareUnit: "cu0", Duration: 4}},
		Patients: map[model.PatientName]int{"p0": 1},
		Requests: []model.PatientServiceOperator{{Patient: "p0", Service: "svc0", Operator: "no-such-operator"}},
	}

	errs := CheckSubproblemInstance(inst)
	if !containsSubstring(errs, "non existent operator") {
		t.Fatalf("CheckSubproblemInstance() = %v, want a non-existent-operator error", errs)
	}
}

func TestCheckSubproblemInstanceDuplicateRequests(t *testing.T) {
	inst := trivialSlimSubproblemInstance()
	inst.Requests = append(inst.Requests, model.PatientServiceOperator{Patient: "p0", Service: "svc0"})

	errs := CheckSubproblemInstance(inst)
	if !containsSubstring(errs, "duplicate") {
		t.Fatalf("CheckSubproblemInstance() = %v, want a duplicate-request error", errs)
	}
}

func containsSubstring(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}
