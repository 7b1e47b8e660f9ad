package model

import "testing"

func TestSlimCoreHasSameComponents(t *testing.T) {
	a := SlimCore{
		Days:       []DayName{1, 2},
		Components: []PatientService{{Patient: "p0", Service: "s0"}, {Patient: "p1", Service: "s0"}},
	}
	b := SlimCore{
		Days:       []DayName{2, 1},
		Components: []PatientService{{Patient: "p1", Service: "s0"}, {Patient: "p0", Service: "s0"}},
	}
	if !a.HasSameComponents(b) {
		t.Fatalf("HasSameComponents() = false for reordered-but-equal cores")
	}

	c := SlimCore{
		Days:       []DayName{1, 2},
		Components: []PatientService{{Patient: "p0", Service: "s0"}},
	}
	if a.HasSameComponents(c) {
		t.Fatalf("HasSameComponents() = true for cores with different component counts")
	}

	d := SlimCore{
		Days:       []DayName{1, 3},
		Components: a.Components,
	}
	if a.HasSameComponents(d) {
		t.Fatalf("HasSameComponents() = true for cores with different days")
	}
}

func TestFatCoreHasSameComponents(t *testing.T) {
	a := FatCore{
		Days:       []DayName{5},
		Components: []PatientServiceOperator{{Patient: "p0", Service: "s0", Operator: "o0"}},
	}
	b := FatCore{
		Days:       []DayName{5},
		Components: []PatientServiceOperator{{Patient: "p0", Service: "s0", Operator: "o1"}},
	}
	if a.HasSameComponents(b) {
		t.Fatalf("HasSameComponents() = true for cores differing only by operator")
	}
}

func TestCacheAddIsIdempotent(t *testing.T) {
	c := NewCache()
	req := PatientServiceWindow{Patient: "p0", Service: "s0", Window: Window{Start: 1, End: 1}}
	entry := IterationDay{Iteration: 1, Day: 1}

	c.Add(req, entry)
	c.Add(req, entry)

	if len(c[req]) != 1 {
		t.Fatalf("Cache.Add() inserted duplicate entry, got %d entries", len(c[req]))
	}
	if !c.Has(req, entry) {
		t.Fatalf("Cache.Has() = false for an inserted entry")
	}

	other := IterationDay{Iteration: 2, Day: 1}
	if c.Has(req, other) {
		t.Fatalf("Cache.Has() = true for an entry never inserted")
	}
	c.Add(req, other)
	if len(c[req]) != 2 {
		t.Fatalf("Cache.Add() of a distinct entry should grow the slice, got %d entries", len(c[req]))
	}
}

func TestSubproblemInstanceSlim(t *testing.T) {
	fat := SubproblemInstance{
		Fat: true,
		Requests: []PatientServiceOperator{
			{Patient: "p0", Service: "s0", Operator: "o0"},
			{Patient: "p1", Service: "s1", Operator: "o1"},
		},
	}
	slim := fat.Slim()
	if slim.Fat {
		t.Fatalf("Slim().Fat = true, want false")
	}
	for _, r := range slim.Requests {
		if r.Operator != "" {
			t.Fatalf("Slim() request %+v still carries an operator", r)
		}
	}
	// Original must be unchanged.
	if !fat.Fat || fat.Requests[0].Operator != "o0" {
		t.Fatalf("Slim() mutated the receiver")
	}

	alreadySlim := SubproblemInstance{Fat: false, Requests: []PatientServiceOperator{{Patient: "p0", Service: "s0"}}}
	if got := alreadySlim.Slim(); len(got.Requests) != 1 || got.Requests[0].Operator != "" {
		t.Fatalf("Slim() on an already-slim instance changed shape: %+v", got)
	}
}

func TestSubproblemInstancePriority(t *testing.T) {
	si := SubproblemInstance{Patients: map[PatientName]int{"p0": 5}}
	if got := si.Priority("p0"); got != 5 {
		t.Fatalf("Priority(p0) = %d, want 5", got)
	}
	if got := si.Priority("unknown"); got != 0 {
		t.Fatalf("Priority(unknown) = %d, want 0", got)
	}
}
