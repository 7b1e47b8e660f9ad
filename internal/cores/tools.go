// Package cores implements the core-extraction strategies (basic,
// generalist, reduced, pruned), core expansion across renamed entities and
// subsuming days, and the dedup/aggregation helpers, grounded on
// original_source/src/cores/*.py.
package cores

import "github.com/fevancin/Scheduler-Project/internal/model"

// IsFatIncluded reports whether core is already present in cores (same
// days, same reason count, same components, regardless of order) — a
// structural equality check, not pointer identity.
func IsFatIncluded(core model.FatCore, cores []model.FatCore) bool {
	for _, other := range cores {
		if len(core.Components) != len(other.Components) {
			continue
		}
		if len(core.Days) != len(other.Days) {
			continue
		}
		if len(core.Reason) != len(other.Reason) {
			continue
		}
		if !sameDaySlice(core.Days, other.Days) {
			continue
		}
		if allComponentsPresent(core.Components, other.Components) {
			return true
		}
	}
	return false
}

// IsSlimIncluded is IsFatIncluded's slim-core counterpart.
func IsSlimIncluded(core model.SlimCore, cores []model.SlimCore) bool {
	for _, other := range cores {
		if len(core.Components) != len(other.Components) {
			continue
		}
		if len(core.Days) != len(other.Days) {
			continue
		}
		if len(core.Reason) != len(other.Reason) {
			continue
		}
		if !sameDaySlice(core.Days, other.Days) {
			continue
		}
		if allServicesPresent(core.Components, other.Components) {
			return true
		}
	}
	return false
}

// DeduplicateFatCores removes structural duplicates, keeping the first
// occurrence of each distinct core. The source's check_for_duplicate_cores
// inverted this condition (keeping only the cores it found *already
// included*, i.e. duplicates) — spec.md's dedup requirement (a core list
// with no structural duplicates) is the opposite of what that function
// computes, so this is implemented as the condition the name promises, not
// a verbatim port of the buggy body.
func DeduplicateFatCores(list []model.FatCore) []model.FatCore {
	var unique []model.FatCore
	for _, core := range list {
		if !IsFatIncluded(core, unique) {
			unique = append(unique, core)
		}
	}
	return unique
}

// DeduplicateSlimCores is DeduplicateFatCores' slim-core counterpart.
func DeduplicateSlimCores(list []model.SlimCore) []model.SlimCore {
	var unique []model.SlimCore
	for _, core := range list {
		if !IsSlimIncluded(core, unique) {
			unique = append(unique, core)
		}
	}
	return unique
}

// AggregateFatCoreLists merges two core lists, keeping only structurally
// unique cores. Neither input is modified. The source's
// aggregate_core_lists appends the stale loop variable `core` (left over
// from the first loop) instead of `other_core` in its second loop, and
// guards the append with is_core_included rather than its negation — both
// are corrected here per the same reasoning as DeduplicateFatCores, and per
// spec.md §9's resolved Open Question that aggregation is a plain
// set-union keyed by (days, reason, components[, operator]). As in
// IsFatIncluded, reasons are compared by count only.
func AggregateFatCoreLists(list, other []model.FatCore) []model.FatCore {
	var aggregate []model.FatCore
	for _, core := range list {
		if !IsFatIncluded(core, aggregate) {
			aggregate = append(aggregate, core)
		}
	}
	for _, core := range other {
		if !IsFatIncluded(core, aggregate) {
			aggregate = append(aggregate, core)
		}
	}
	return aggregate
}

// AggregateSlimCoreLists is AggregateFatCoreLists' slim-core counterpart.
func AggregateSlimCoreLists(list, other []model.SlimCore) []model.SlimCore {
	var aggregate []model.SlimCore
	for _, core := range list {
		if !IsSlimIncluded(core, aggregate) {
			aggregate = append(aggregate, core)
		}
	}
	for _, core := range other {
		if !IsSlimIncluded(core, aggregate) {
			aggregate = append(aggregate, core)
		}
	}
	return aggregate
}

func sameDaySlice(a, b []model.DayName) bool {
	set := make(map[model.DayName]bool, len(b))
	for _, d := range b {
		set[d] = true
	}
	for _, d := range a {
		if !set[d] {
			return false
		}
	}
	return true
}

func allComponentsPresent(a, b []model.PatientServiceOperator) bool {
	set := make(map[model.PatientServiceOperator]bool, len(b))
	for _, c := range b {
		set[c] = true
	}
	for _, c := range a {
		if !set[c] {
			return false
		}
	}
	return true
}

func allServicesPresent(a, b []model.PatientService) bool {
	set := make(map[model.PatientService]bool, len(b))
	for _, c := range b {
		set[c] = true
	}
	for _, c := range a {
		if !set[c] {
			return false
		}
	}
	return true
}
