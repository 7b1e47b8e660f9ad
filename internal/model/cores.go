package model

import "sort"

// SlimCore is a no-good cut over care-unit-level (patient, service)
// components: Reason names which components triggered the cut,
// Components the full set the cut forbids jointly, and Days the days the
// cut applies to.
type SlimCore struct {
	Days       []DayName
	Reason     []PatientService
	Components []PatientService
}

// HasSameComponents reports whether two slim cores forbid the same
// (days, components) combination, ignoring ordering — the equality the
// Python prototype's hashable dataclasses gave it for free.
func (c SlimCore) HasSameComponents(other SlimCore) bool {
	return sameDaySet(c.Days, other.Days) && samePatientServiceSet(c.Components, other.Components)
}

// FatCore is the operator-aware counterpart of SlimCore.
type FatCore struct {
	Days       []DayName
	Reason     []PatientServiceOperator
	Components []PatientServiceOperator
}

// HasSameComponents reports whether two fat cores forbid the same
// (days, components) combination, ignoring ordering.
func (c FatCore) HasSameComponents(other FatCore) bool {
	return sameDaySet(c.Days, other.Days) && samePatientServiceOperatorSet(c.Components, other.Components)
}

func sameDaySet(a, b []DayName) bool {
	if len(a) != len(b) {
		return false
	}
	as, bs := append([]DayName{}, a...), append([]DayName{}, b...)
	sort.Slice(as, func(i, j int) bool { return as[i] < as[j] })
	sort.Slice(bs, func(i, j int) bool { return bs[i] < bs[j] })
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func samePatientServiceSet(a, b []PatientService) bool {
	if len(a) != len(b) {
		return false
	}
	count := make(map[PatientService]int)
	for _, c := range a {
		count[c]++
	}
	for _, c := range b {
		count[c]--
	}
	for _, n := range count {
		if n != 0 {
			return false
		}
	}
	return true
}

func samePatientServiceOperatorSet(a, b []PatientServiceOperator) bool {
	if len(a) != len(b) {
		return false
	}
	count := make(map[PatientServiceOperator]int)
	for _, c := range a {
		count[c]++
	}
	for _, c := range b {
		count[c]--
	}
	for _, n := range count {
		if n != 0 {
			return false
		}
	}
	return true
}
