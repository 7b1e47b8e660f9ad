package cachestore

import (
	"testing"

	"github.com/fevancin/Scheduler-Project/internal/model"
)

func trivialInstanceWithOneWindow() model.MasterInstance {
	p0 := model.NewMasterPatient(1)
	p0.AddRequest("svc0", model.Window{Start: 1, End: 2})
	return model.MasterInstance{
		Services: map[model.ServiceName]model.Service{"svc0": {CareUnit: "cu0", Duration: 4}},
		Patients: map[model.PatientName]model.MasterPatient{"p0": p0},
	}
}

func TestIsRequestAlreadyPresent(t *testing.T) {
	cache := model.NewCache()
	req := model.PatientServiceWindow{Patient: "p0", Service: "svc0", Window: model.Window{Start: 1, End: 2}}

	requests := map[model.PatientServiceWindow]bool{req: true}
	if IsRequestAlreadyPresent(cache, requests, 1) {
		t.Fatalf("IsRequestAlreadyPresent() = true on an empty cache")
	}

	cache.Add(req, model.IterationDay{Iteration: 1, Day: 1})
	if !IsRequestAlreadyPresent(cache, requests, 1) {
		t.Fatalf("IsRequestAlreadyPresent() = false after adding the matching entry")
	}
	if IsRequestAlreadyPresent(cache, requests, 2) {
		t.Fatalf("IsRequestAlreadyPresent() = true for a day never cached")
	}
}

func TestAddFinalResultToCache(t *testing.T) {
	inst := trivialInstanceWithOneWindow()
	cache := model.NewCache()
	result := model.NewFinalResult()
	result.Scheduled[1] = []model.PatientServiceOperatorTimeSlot{
		{Patient: "p0", Service: "svc0", Operator: "op0", Time: 0},
	}

	AddFinalResultToCache(cache, inst, result, 1)

	req := model.PatientServiceWindow{Patient: "p0", Service: "svc0", Window: model.Window{Start: 1, End: 2}}
	if !cache.Has(req, model.IterationDay{Iteration: 1, Day: 1}) {
		t.Fatalf("AddFinalResultToCache() did not record the obligation")
	}

	// Adding the same final result again under a new iteration should not
	// duplicate the entry, since IsRequestAlreadyPresent short-circuits it.
	AddFinalResultToCache(cache, inst, result, 2)
	if len(cache[req]) != 1 {
		t.Fatalf("AddFinalResultToCache() duplicated an already-cached entry, got %d entries", len(cache[req]))
	}
}

func TestFixCacheFinalResultDropsDuplicateWindow(t *testing.T) {
	inst := trivialInstanceWithOneWindow()
	result := model.NewFinalResult()
	// Stale reuse placed the same obligation on both days of its window.
	result.Scheduled[1] = []model.PatientServiceOperatorTimeSlot{
		{Patient: "p0", Service: "svc0", Operator: "op0", Time: 0},
	}
	result.Scheduled[2] = []model.PatientServiceOperatorTimeSlot{
		{Patient: "p0", Service: "svc0", Operator: "op0", Time: 0},
	}

	FixCacheFinalResult(inst, &result)

	total := len(result.Scheduled[1]) + len(result.Scheduled[2])
	if total != 1 {
		t.Fatalf("FixCacheFinalResult() left %d scheduled occurrences, want 1", total)
	}
	if len(result.Rejected) != 0 {
		t.Fatalf("FixCacheFinalResult() rejected a satisfied obligation: %+v", result.Rejected)
	}
}

func TestFixCacheFinalResultRejectsUnsatisfiedWindow(t *testing.T) {
	inst := trivialInstanceWithOneWindow()
	result := model.NewFinalResult() // nothing scheduled at all

	FixCacheFinalResult(inst, &result)

	want := model.PatientServiceWindow{Patient: "p0", Service: "svc0", Window: model.Window{Start: 1, End: 2}}
	if !containsWindow(result.Rejected, want) {
		t.Fatalf("FixCacheFinalResult() rejected = %+v, want it to contain %+v", result.Rejected, want)
	}
}

func TestPreviousCacheDayIterations(t *testing.T) {
	inst := trivialInstanceWithOneWindow()
	cache := model.NewCache()
	req := model.PatientServiceWindow{Patient: "p0", Service: "svc0", Window: model.Window{Start: 1, End: 2}}
	cache.Add(req, model.IterationDay{Iteration: 3, Day: 1})
	cache.Add(req, model.IterationDay{Iteration: 1, Day: 1})

	masterResult := model.NewMasterResult(false)
	masterResult.Scheduled[1] = []model.PatientServiceOperator{{Patient: "p0", Service: "svc0"}}

	matches := PreviousCacheDayIterations(cache, inst, masterResult)
	iter, ok := matches[1]
	if !ok {
		t.Fatalf("PreviousCacheDayIterations() found no match for day 1")
	}
	// The earliest of the two cached iterations must win.
	if iter != 1 {
		t.Fatalf("PreviousCacheDayIterations()[1] = %d, want 1", iter)
	}
}

func TestRemoveRequestsNotPresent(t *testing.T) {
	masterResult := model.NewMasterResult(false)
	masterResult.Scheduled[1] = []model.PatientServiceOperator{{Patient: "p0", Service: "svc0"}}

	result := &model.SubproblemResult{
		Scheduled: []model.PatientServiceOperatorTimeSlot{
			{Patient: "p0", Service: "svc0", Operator: "op0", Time: 0},
			{Patient: "p1", Service: "svc0", Operator: "op0", Time: 4},
		},
		Rejected: []model.PatientServiceOperator{
			{Patient: "p2", Service: "svc0"},
		},
	}

	RemoveRequestsNotPresent(result, masterResult, 1)

	if len(result.Scheduled) != 1 || result.Scheduled[0].Patient != "p0" {
		t.Fatalf("RemoveRequestsNotPresent() scheduled = %+v, want only p0's request", result.Scheduled)
	}
	if len(result.Rejected) != 0 {
		t.Fatalf("RemoveRequestsNotPresent() rejected = %+v, want none (p2 wasn't in masterResult)", result.Rejected)
	}
}

func TestRemoveRequestsNotPresentSlimMasterIgnoresOperator(t *testing.T) {
	// A slim master proposes (patient, service) without an operator; the
	// reused subproblem result carries whichever operator the subproblem
	// itself picked. Matching must ignore that operator, not drop the
	// request for failing to match an empty one.
	masterResult := model.NewMasterResult(false)
	masterResult.Scheduled[1] = []model.PatientServiceOperator{{Patient: "p0", Service: "svc0"}}

	result := &model.SubproblemResult{
		Scheduled: []model.PatientServiceOperatorTimeSlot{
			{Patient: "p0", Service: "svc0", Operator: "op0", Time: 0},
		},
	}

	RemoveRequestsNotPresent(result, masterResult, 1)

	if len(result.Scheduled) != 1 {
		t.Fatalf("RemoveRequestsNotPresent() dropped a slim-master-matched request, got %+v", result.Scheduled)
	}
}

func TestRemoveRequestsNotPresentFatMasterMatchesOperator(t *testing.T) {
	masterResult := model.NewMasterResult(true)
	masterResult.Scheduled[1] = []model.PatientServiceOperator{{Patient: "p0", Service: "svc0", Operator: "op0"}}

	result := &model.SubproblemResult{
		Scheduled: []model.PatientServiceOperatorTimeSlot{
			{Patient: "p0", Service: "svc0", Operator: "op1", Time: 0},
		},
	}

	RemoveRequestsNotPresent(result, masterResult, 1)

	if len(result.Scheduled) != 0 {
		t.Fatalf("RemoveRequestsNotPresent() kept a request whose operator the fat master never proposed: %+v", result.Scheduled)
	}
}
