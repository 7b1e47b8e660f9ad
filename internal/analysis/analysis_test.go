package analysis

import (
	"testing"

	"github.com/fevancin/Scheduler-Project/internal/model"
)

func twoDayInstance() model.MasterInstance {
	day := model.NewDay()
	day.AddOperator("cu0", "op0", model.Operator{CareUnit: "cu0", Start: 0, Duration: 10})

	p0 := model.NewMasterPatient(2)
	p0.AddRequest("svc0", model.Window{Start: 1, End: 2})

	return model.MasterInstance{
		Days:     map[model.DayName]model.Day{1: day, 2: day},
		Services: map[model.ServiceName]model.Service{"svc0": {CareUnit: "cu0", Duration: 4}},
		Patients: map[model.PatientName]model.MasterPatient{"p0": p0},
	}
}

func TestDayNumberUsedByPatients(t *testing.T) {
	scheduled := map[model.DayName][]model.PatientServiceOperator{
		1: {{Patient: "p0", Service: "svc0"}},
		2: {{Patient: "p0", Service: "svc0"}, {Patient: "p1", Service: "svc0"}},
	}
	// p0 used days 1 and 2 (2), p1 used day 2 (1): total 3.
	if got := DayNumberUsedByPatients(scheduled); got != 3 {
		t.Fatalf("DayNumberUsedByPatients() = %d, want 3", got)
	}
}

func TestResultValueWithoutPenalty(t *testing.T) {
	inst := twoDayInstance()
	scheduled := map[model.DayName][]model.PatientServiceOperator{
		1: {{Patient: "p0", Service: "svc0"}},
	}
	// duration 4 * priority 2 = 8.
	if got := ResultValue(inst, scheduled, nil, 0); got != 8 {
		t.Fatalf("ResultValue() = %v, want 8", got)
	}
}

func TestResultValueWithHospitalAccessPenalty(t *testing.T) {
	inst := twoDayInstance()
	scheduled := map[model.DayName][]model.PatientServiceOperator{
		1: {{Patient: "p0", Service: "svc0"}},
	}
	// base value 8, penalty = DayNumberUsedByPatients(1)/worstCase(4) = 0.25.
	got := ResultValue(inst, scheduled, []string{"minimize_hospital_accesses"}, 4)
	want := 8 - 1.0/4.0
	if got != want {
		t.Fatalf("ResultValue() = %v, want %v", got, want)
	}
}

func TestResultValueSatisfiedOnlyOnce(t *testing.T) {
	inst := twoDayInstance()
	// Satisfied on both days of its window: still counted once.
	scheduled := map[model.DayName][]model.PatientServiceOperator{
		1: {{Patient: "p0", Service: "svc0"}},
		2: {{Patient: "p0", Service: "svc0"}},
	}
	if got := ResultValue(inst, scheduled, nil, 0); got != 8 {
		t.Fatalf("ResultValue() = %v, want 8 (counted once)", got)
	}
}

func TestWorstCaseFatScenario(t *testing.T) {
	inst := twoDayInstance()
	scenario := WorstCaseFatScenario(inst)

	// Window spans days 1-2, one operator op0 on each day.
	if len(scenario[1]) != 1 || len(scenario[2]) != 1 {
		t.Fatalf("WorstCaseFatScenario() = %+v, want one entry per day", scenario)
	}
	if scenario[1][0].Operator != "op0" {
		t.Fatalf("WorstCaseFatScenario()[1][0].Operator = %q, want op0", scenario[1][0].Operator)
	}
}

func TestWorstCaseSlimScenario(t *testing.T) {
	inst := twoDayInstance()
	scenario := WorstCaseSlimScenario(inst)

	if len(scenario[1]) != 1 || len(scenario[2]) != 1 {
		t.Fatalf("WorstCaseSlimScenario() = %+v, want one entry per day", scenario)
	}
	if scenario[1][0] != (model.PatientService{Patient: "p0", Service: "svc0"}) {
		t.Fatalf("WorstCaseSlimScenario()[1][0] = %+v, unexpected", scenario[1][0])
	}
}
