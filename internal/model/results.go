package model

// MasterResult is the master model's optimistic assignment: which requests
// are attempted on which day, and which obligations are rejected outright.
// It does not place start-times — a subproblem may still fail to pack a
// day's assignments. Fat results carry an operator per scheduled request;
// slim results leave Operator empty.
type MasterResult struct {
	Fat       bool
	Scheduled map[DayName][]PatientServiceOperator
	Rejected  []PatientServiceWindow
}

// NewMasterResult returns an empty result of the given shape.
func NewMasterResult(fat bool) MasterResult {
	return MasterResult{Fat: fat, Scheduled: make(map[DayName][]PatientServiceOperator)}
}

// Value sums duration*priority over every scheduled request, the master's
// own (optimistic) objective value.
func (r MasterResult) Value(inst MasterInstance) float64 {
	var total float64
	for _, reqs := range r.Scheduled {
		for _, req := range reqs {
			total += weightedDuration(inst, req.Patient, req.Service)
		}
	}
	return total
}

func weightedDuration(inst MasterInstance, p PatientName, s ServiceName) float64 {
	svc, ok := inst.Services[s]
	if !ok {
		return 0
	}
	pat, ok := inst.Patients[p]
	if !ok {
		return 0
	}
	return float64(svc.Duration) * float64(pat.Priority)
}

// SubproblemResult is a single day's packing outcome: the requests that
// were placed at a concrete time-slot, and the requests the packing could
// not accommodate. Fat results reject exactly the input (p,s,o); slim
// results reject (p,s) with Operator left empty.
type SubproblemResult struct {
	Fat       bool
	Scheduled []PatientServiceOperatorTimeSlot
	Rejected  []PatientServiceOperator
}

// Value sums duration*priority over every placed request.
func (r SubproblemResult) Value(inst MasterInstance) float64 {
	var total float64
	for _, s := range r.Scheduled {
		total += weightedDuration(inst, s.Patient, s.Service)
	}
	return total
}

// FinalResult is the composed, fully time-placed outcome of one iteration:
// the union of every day's subproblem schedule, plus every obligation that
// ended up rejected, whether by the master or by a subproblem.
type FinalResult struct {
	Scheduled map[DayName][]PatientServiceOperatorTimeSlot
	Rejected  []PatientServiceWindow
}

// NewFinalResult returns an empty final result.
func NewFinalResult() FinalResult {
	return FinalResult{Scheduled: make(map[DayName][]PatientServiceOperatorTimeSlot)}
}

// Value sums duration*priority over every placed request across all days.
func (r FinalResult) Value(inst MasterInstance) float64 {
	var total float64
	for _, reqs := range r.Scheduled {
		for _, req := range reqs {
			total += weightedDuration(inst, req.Patient, req.Service)
		}
	}
	return total
}
