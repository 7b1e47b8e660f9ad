// Package model defines the data entities shared across the decomposition
// engine: instances, requests, results, cores and the cross-iteration cache.
// It carries no validation logic of its own — structural checks live in
// internal/checkers — and no persistence logic — encode/decode lives in
// internal/codec.
package model

// CareUnitName, ServiceName, PatientName and OperatorName are opaque string
// identifiers; DayName, IterationName and TimeSlot are small integers.
type (
	CareUnitName  string
	ServiceName   string
	PatientName   string
	OperatorName  string
	DayName       int
	IterationName int
	TimeSlot      int
)

// Operator is a shift belonging to a care unit: it starts at Start and
// serves for Duration time-slots.
type Operator struct {
	CareUnit CareUnitName
	Start    TimeSlot
	Duration TimeSlot
}

// End is the first time-slot after the operator's shift ends.
func (o Operator) End() TimeSlot {
	return o.Start + o.Duration
}

// Day is a single day's roster: every operator grouped by the care unit it
// belongs to. The invariant that an operator appears under exactly one care
// unit is enforced by checkers, not here.
type Day struct {
	CareUnits map[CareUnitName]map[OperatorName]Operator
}

// NewDay returns an empty day ready to receive operators.
func NewDay() Day {
	return Day{CareUnits: make(map[CareUnitName]map[OperatorName]Operator)}
}

// AddOperator registers an operator under the given care unit, creating the
// care unit's bucket if this is its first operator.
func (d *Day) AddOperator(cu CareUnitName, name OperatorName, op Operator) {
	if d.CareUnits == nil {
		d.CareUnits = make(map[CareUnitName]map[OperatorName]Operator)
	}
	if _, ok := d.CareUnits[cu]; !ok {
		d.CareUnits[cu] = make(map[OperatorName]Operator)
	}
	d.CareUnits[cu][name] = op
}

// Operators returns the flat operator -> Operator view across every care
// unit, regardless of which care unit it is filed under.
func (d Day) Operators() map[OperatorName]Operator {
	flat := make(map[OperatorName]Operator)
	for _, ops := range d.CareUnits {
		for name, op := range ops {
			flat[name] = op
		}
	}
	return flat
}

// OperatorCareUnit returns the care unit an operator belongs to on this day.
func (d Day) OperatorCareUnit(name OperatorName) (CareUnitName, bool) {
	for cu, ops := range d.CareUnits {
		if _, ok := ops[name]; ok {
			return cu, true
		}
	}
	return "", false
}

// Duration resolves name as either a care-unit name (sum of its operators'
// durations, i.e. its capacity) or an operator name (its own duration).
func (d Day) Duration(name string) (TimeSlot, bool) {
	if ops, ok := d.CareUnits[CareUnitName(name)]; ok {
		var total TimeSlot
		for _, op := range ops {
			total += op.Duration
		}
		return total, true
	}
	if op, ok := d.Operators()[OperatorName(name)]; ok {
		return op.Duration, true
	}
	return 0, false
}

// MaxSpan is max(operator.End) - min(operator.Start) across every operator
// of the day — the upper bound on a single patient's served duration that
// day, regardless of care unit.
func (d Day) MaxSpan() TimeSlot {
	ops := d.Operators()
	if len(ops) == 0 {
		return 0
	}
	first := true
	var minStart, maxEnd TimeSlot
	for _, op := range ops {
		if first {
			minStart, maxEnd = op.Start, op.End()
			first = false
			continue
		}
		if op.Start < minStart {
			minStart = op.Start
		}
		if op.End() > maxEnd {
			maxEnd = op.End()
		}
	}
	return maxEnd - minStart
}

// Service is a unit of care offered by a care unit, consuming Duration
// time-slots whenever it is scheduled.
type Service struct {
	CareUnit CareUnitName
	Duration TimeSlot
}

// Window is a closed integer interval of day names during which a service
// request may be satisfied: exactly one day within must carry it.
type Window struct {
	Start DayName
	End   DayName
}

// Duration is End minus Start, so a one-day window has Duration 0.
func (w Window) Duration() DayName {
	return w.End - w.Start
}

// Contains reports whether d falls within the closed interval [Start, End].
func (w Window) Contains(d DayName) bool {
	return w.Start <= d && d <= w.End
}

// Overlaps reports whether w and other share at least one day, using a
// symmetric closed-interval test (either window's start may fall inside the
// other).
func (w Window) Overlaps(other Window) bool {
	return (w.Start <= other.Start && other.Start <= w.End) ||
		(other.Start <= w.Start && w.Start <= other.End)
}

// MasterPatient is a patient as seen by the master model: a priority weight
// and, per requested service, the list of independent window obligations.
type MasterPatient struct {
	Priority int
	Requests map[ServiceName][]Window
}

// NewMasterPatient returns a patient with an empty request set.
func NewMasterPatient(priority int) MasterPatient {
	return MasterPatient{Priority: priority, Requests: make(map[ServiceName][]Window)}
}

// AddRequest records one more window obligation for the given service. A
// patient may request the same service in overlapping windows; each is an
// independent obligation.
func (p *MasterPatient) AddRequest(s ServiceName, w Window) {
	if p.Requests == nil {
		p.Requests = make(map[ServiceName][]Window)
	}
	p.Requests[s] = append(p.Requests[s], w)
}

// AddRequests records every window in ws for service s.
func (p *MasterPatient) AddRequests(s ServiceName, ws []Window) {
	for _, w := range ws {
		p.AddRequest(s, w)
	}
}

// Windows flattens every (service, window) pair this patient has requested.
func (p MasterPatient) Windows() []ServiceWindow {
	var out []ServiceWindow
	for s, ws := range p.Requests {
		for _, w := range ws {
			out = append(out, ServiceWindow{Service: s, Window: w})
		}
	}
	return out
}

// MasterInstance is the full problem seen by the master model: every day in
// a contiguous range, the service catalog, and the patient population.
type MasterInstance struct {
	Days     map[DayName]Day
	Services map[ServiceName]Service
	Patients map[PatientName]MasterPatient
}

// DayRange returns the minimum and maximum day names present, assuming the
// contiguous-range invariant already holds (checkers verifies this).
func (mi MasterInstance) DayRange() (DayName, DayName) {
	first := true
	var min, max DayName
	for d := range mi.Days {
		if first {
			min, max = d, d
			first = false
			continue
		}
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}
