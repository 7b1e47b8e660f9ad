package cores

import (
	"testing"

	"github.com/fevancin/Scheduler-Project/internal/model"
)

func sampleFatCore(day model.DayName) model.FatCore {
	return model.FatCore{
		Days:       []model.DayName{day},
		Reason:     []model.PatientServiceOperator{{Patient: "p0", Service: "svc0", Operator: "op0"}},
		Components: []model.PatientServiceOperator{{Patient: "p0", Service: "svc0", Operator: "op0"}},
	}
}

func sampleSlimCore(day model.DayName) model.SlimCore {
	return model.SlimCore{
		Days:       []model.DayName{day},
		Reason:     []model.PatientService{{Patient: "p0", Service: "svc0"}},
		Components: []model.PatientService{{Patient: "p0", Service: "svc0"}},
	}
}

func TestIsFatIncluded(t *testing.T) {
	existing := []model.FatCore{sampleFatCore(1)}

	if !IsFatIncluded(sampleFatCore(1), existing) {
		t.Fatalf("IsFatIncluded() = false for a structurally identical core")
	}
	if IsFatIncluded(sampleFatCore(2), existing) {
		t.Fatalf("IsFatIncluded() = true for a core on a different day")
	}
}

func TestIsSlimIncluded(t *testing.T) {
	existing := []model.SlimCore{sampleSlimCore(1)}

	if !IsSlimIncluded(sampleSlimCore(1), existing) {
		t.Fatalf("IsSlimIncluded() = false for a structurally identical core")
	}
	if IsSlimIncluded(sampleSlimCore(2), existing) {
		t.Fatalf("IsSlimIncluded() = true for a core on a different day")
	}
}

func TestDeduplicateFatCores(t *testing.T) {
	list := []model.FatCore{sampleFatCore(1), sampleFatCore(1), sampleFatCore(2)}
	unique := DeduplicateFatCores(list)
	if len(unique) != 2 {
		t.Fatalf("DeduplicateFatCores() = %d cores, want 2", len(unique))
	}
}

func TestDeduplicateSlimCores(t *testing.T) {
	list := []model.SlimCore{sampleSlimCore(1), sampleSlimCore(1)}
	unique := DeduplicateSlimCores(list)
	if len(unique) != 1 {
		t.Fatalf("DeduplicateSlimCores() = %d cores, want 1", len(unique))
	}
}

func TestAggregateFatCoreLists(t *testing.T) {
	a := []model.FatCore{sampleFatCore(1)}
	b := []model.FatCore{sampleFatCore(1), sampleFatCore(2)}

	aggregate := AggregateFatCoreLists(a, b)
	if len(aggregate) != 2 {
		t.Fatalf("AggregateFatCoreLists() = %d cores, want 2 (duplicate collapsed)", len(aggregate))
	}

	// Neither input is mutated.
	if len(a) != 1 || len(b) != 2 {
		t.Fatalf("AggregateFatCoreLists() mutated its inputs: a=%v b=%v", a, b)
	}
}

func TestAggregateSlimCoreLists(t *testing.T) {
	a := []model.SlimCore{sampleSlimCore(1)}
	b := []model.SlimCore{sampleSlimCore(2)}

	aggregate := AggregateSlimCoreLists(a, b)
	if len(aggregate) != 2 {
		t.Fatalf("AggregateSlimCoreLists() = %d cores, want 2", len(aggregate))
	}
}
