package model

import "testing"

func TestOperatorEnd(t *testing.T) {
	op := Operator{CareUnit: "cu0", Start: 2, Duration: 5}
	if got := op.End(); got != 7 {
		t.Fatalf("End() = %d, want 7", got)
	}
}

func TestDayAddOperatorAndOperators(t *testing.T) {
	d := NewDay()
	d.AddOperator("cu0", "op1", Operator{CareUnit: "cu0", Start: 0, Duration: 4})
	d.AddOperator("cu0", "op2", Operator{CareUnit: "cu0", Start: 4, Duration: 6})
	d.AddOperator("cu1", "op3", Operator{CareUnit: "cu1", Start: 0, Duration: 10})

	flat := d.Operators()
	if len(flat) != 3 {
		t.Fatalf("Operators() len = %d, want 3", len(flat))
	}

	if cu, ok := d.OperatorCareUnit("op2"); !ok || cu != "cu0" {
		t.Fatalf("OperatorCareUnit(op2) = (%q, %v), want (cu0, true)", cu, ok)
	}
	if _, ok := d.OperatorCareUnit("missing"); ok {
		t.Fatalf("OperatorCareUnit(missing) = true, want false")
	}
}

func TestDayDuration(t *testing.T) {
	d := NewDay()
	d.AddOperator("cu0", "op1", Operator{CareUnit: "cu0", Start: 0, Duration: 4})
	d.AddOperator("cu0", "op2", Operator{CareUnit: "cu0", Start: 4, Duration: 6})

	capacity, ok := d.Duration("cu0")
	if !ok || capacity != 10 {
		t.Fatalf("Duration(cu0) = (%d, %v), want (10, true)", capacity, ok)
	}

	opDuration, ok := d.Duration("op1")
	if !ok || opDuration != 4 {
		t.Fatalf("Duration(op1) = (%d, %v), want (4, true)", opDuration, ok)
	}

	if _, ok := d.Duration("nonexistent"); ok {
		t.Fatalf("Duration(nonexistent) = true, want false")
	}
}

func TestDayMaxSpan(t *testing.T) {
	d := NewDay()
	if got := d.MaxSpan(); got != 0 {
		t.Fatalf("MaxSpan() of empty day = %d, want 0", got)
	}

	d.AddOperator("cu0", "op1", Operator{CareUnit: "cu0", Start: 2, Duration: 3})
	d.AddOperator("cu0", "op2", Operator{CareUnit: "cu0", Start: 0, Duration: 4})

	if got := d.MaxSpan(); got != 5 {
		t.Fatalf("MaxSpan() = %d, want 5", got)
	}
}

func TestWindowContainsAndOverlaps(t *testing.T) {
	w := Window{Start: 2, End: 5}
	if !w.Contains(2) || !w.Contains(5) || !w.Contains(3) {
		t.Fatalf("Contains failed for in-range days")
	}
	if w.Contains(1) || w.Contains(6) {
		t.Fatalf("Contains succeeded for out-of-range days")
	}
	if got := w.Duration(); got != 3 {
		t.Fatalf("Duration() = %d, want 3", got)
	}

	disjoint := Window{Start: 6, End: 8}
	if w.Overlaps(disjoint) {
		t.Fatalf("Overlaps() true for disjoint windows")
	}

	touching := Window{Start: 5, End: 7}
	if !w.Overlaps(touching) {
		t.Fatalf("Overlaps() false for windows sharing an endpoint")
	}

	contained := Window{Start: 3, End: 4}
	if !w.Overlaps(contained) || !contained.Overlaps(w) {
		t.Fatalf("Overlaps() not symmetric for a contained window")
	}
}

func TestMasterPatientWindows(t *testing.T) {
	p := NewMasterPatient(3)
	p.AddRequest("svc1", Window{Start: 1, End: 2})
	p.AddRequests("svc1", []Window{{Start: 4, End: 4}})
	p.AddRequest("svc2", Window{Start: 1, End: 1})

	windows := p.Windows()
	if len(windows) != 3 {
		t.Fatalf("Windows() len = %d, want 3", len(windows))
	}

	counts := map[ServiceName]int{}
	for _, sw := range windows {
		counts[sw.Service]++
	}
	if counts["svc1"] != 2 || counts["svc2"] != 1 {
		t.Fatalf("unexpected window distribution: %+v", counts)
	}
}

func TestMasterInstanceDayRange(t *testing.T) {
	inst := MasterInstance{Days: map[DayName]Day{3: NewDay(), 1: NewDay(), 5: NewDay()}}
	min, max := inst.DayRange()
	if min != 1 || max != 5 {
		t.Fatalf("DayRange() = (%d, %d), want (1, 5)", min, max)
	}
}
