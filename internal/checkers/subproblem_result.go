package checkers

import (
	"fmt"

	"github.com/fevancin/Scheduler-Project/internal/model"
)

// CheckOverlaps reports, for a flat list of placed requests sharing a
// single day's service catalog, every pair that either repeats the same
// (patient, service) or overlaps in time while sharing a patient or an
// operator.
func CheckOverlaps(services map[model.ServiceName]model.Service, requests []model.PatientServiceOperatorTimeSlot) []string {
	var errors []string

	for i := 0; i < len(requests)-1; i++ {
		req := requests[i]
		reqDuration := services[req.Service].Duration

		for j := i + 1; j < len(requests); j++ {
			other := requests[j]
			otherDuration := services[other.Service].Duration

			samePatient := req.Patient == other.Patient
			sameService := req.Service == other.Service
			if samePatient && sameService {
				errors = append(errors, fmt.Sprintf("patient %s requests service %s multiple times", req.Patient, req.Service))
			}

			sameOperator := req.Operator == other.Operator
			if samePatient || sameOperator {
				if overlapsInTime(req.Time, reqDuration, other.Time, otherDuration) {
					errors = append(errors, fmt.Sprintf("requests (%s,%s) and (%s,%s) overlap in time", req.Patient, req.Service, other.Patient, other.Service))
				}
			}
		}
	}

	return errors
}

func overlapsInTime(start1 model.TimeSlot, dur1 model.TimeSlot, start2 model.TimeSlot, dur2 model.TimeSlot) bool {
	return (start1 <= start2 && start1+dur1 > start2) || (start2 <= start1 && start2+dur2 > start1)
}

// CheckSubproblemResult validates a single day's packing result: entity
// references, operator shift containment, every instance request appearing
// in scheduled xor rejected (never both, never neither), and pairwise
// overlap freedom.
func CheckSubproblemResult(inst model.SubproblemInstance, r model.SubproblemResult) []string {
	var errors []string

	for _, req := range r.Scheduled {
		if !patientExists(inst, req.Patient) {
			errors = append(errors, fmt.Sprintf("patient %s does not exists", req.Patient))
		}
		svc, svcOK := inst.Services[req.Service]
		if !svcOK {
			errors = append(errors, fmt.Sprintf("service %s does not exists", req.Service))
			continue
		}
		ops, cuOK := inst.Roster.CareUnits[svc.CareUnit]
		if !cuOK {
			errors = append(errors, fmt.Sprintf("care unit %s does not exists", svc.CareUnit))
			continue
		}
		op, opOK := ops[req.Operator]
		if !opOK {
			errors = append(errors, fmt.Sprintf("operator %s does not exists", req.Operator))
			continue
		}
		if req.Time < op.Start || req.Time+svc.Duration > op.End() {
			errors = append(errors, fmt.Sprintf("service %s of patient %s doesn't respect operator %s time of activity", req.Service, req.Patient, req.Operator))
		}
	}

	for _, req := range groupedInstanceRequests(inst) {
		found := false
		for _, rej := range r.Rejected {
			if rej.Patient == req.Patient && rej.Service == req.Service {
				found = true
				break
			}
		}
		if !found {
			for _, sched := range r.Scheduled {
				if sched.Patient == req.Patient && sched.Service == req.Service {
					found = true
					break
				}
			}
		}
		if !found {
			errors = append(errors, fmt.Sprintf("patient %s do not have service %s in the result", req.Patient, req.Service))
		}
	}

	for _, rej := range r.Rejected {
		if !patientExists(inst, rej.Patient) {
			errors = append(errors, fmt.Sprintf("rejected patient %s does not exists", rej.Patient))
		}
		if _, ok := inst.Services[rej.Service]; !ok {
			errors = append(errors, fmt.Sprintf("rejected service %s does not exists", rej.Service))
		}
		for _, sched := range r.Scheduled {
			if sched.Patient == rej.Patient && sched.Service == rej.Service {
				errors = append(errors, fmt.Sprintf("patient %s has service %s both satisfied and rejected", rej.Patient, rej.Service))
			}
		}
	}

	errors = append(errors, CheckOverlaps(inst.Services, r.Scheduled)...)

	return errors
}

func patientExists(inst model.SubproblemInstance, p model.PatientName) bool {
	for _, r := range inst.Requests {
		if r.Patient == p {
			return true
		}
	}
	return false
}

func groupedInstanceRequests(inst model.SubproblemInstance) []model.PatientService {
	seen := make(map[model.PatientService]bool)
	var out []model.PatientService
	for _, r := range inst.Requests {
		ps := r.Base()
		if seen[ps] {
			continue
		}
		seen[ps] = true
		out = append(out, ps)
	}
	return out
}
