package model

// SubproblemInstance is a single day's packing problem. Fat instances carry
// the operator the master already chose for each request; slim instances
// leave the operator choice to the subproblem itself, in which case every
// PatientServiceOperator.Operator field in Requests is the empty string.
type SubproblemInstance struct {
	Fat        bool
	Day        DayName
	Roster     Day
	Services   map[ServiceName]Service
	Patients   map[PatientName]int // priority, keyed by patient
	Requests   []PatientServiceOperator
}

// Priority returns the priority of p, or 0 if p is unknown.
func (si SubproblemInstance) Priority(p PatientName) int {
	return si.Patients[p]
}

// Operators returns the flat operator roster for this instance's day.
func (si SubproblemInstance) Operators() map[OperatorName]Operator {
	return si.Roster.Operators()
}

// CareUnits returns the care-unit -> operator roster for this instance's
// day.
func (si SubproblemInstance) CareUnits() map[CareUnitName]map[OperatorName]Operator {
	return si.Roster.CareUnits
}

// Slim strips operator assignments, returning the forgetful projection used
// to build the preemptive-forbidding variant of a fat subproblem.
func (si SubproblemInstance) Slim() SubproblemInstance {
	if !si.Fat {
		return si
	}
	slim := si
	slim.Fat = false
	slim.Requests = make([]PatientServiceOperator, len(si.Requests))
	for i, r := range si.Requests {
		slim.Requests[i] = PatientServiceOperator{Patient: r.Patient, Service: r.Service}
	}
	return slim
}
