package model

// The structs in this file are deliberately comparable (string/int fields
// only, no slices or maps) so they can be used directly as map keys — the
// same role the Python prototype's @dataclass(eq=True, unsafe_hash=True)
// types played for request bookkeeping.

// ServiceWindow pairs a service with one of its candidate windows.
type ServiceWindow struct {
	Service ServiceName
	Window  Window
}

// ServiceOperator pairs a service with the operator chosen to provide it.
type ServiceOperator struct {
	Service  ServiceName
	Operator OperatorName
}

// PatientService identifies a (patient, service) request without reference
// to which window, day or operator eventually satisfies it. This is the
// slim component shape used throughout the core pipeline and slim results.
type PatientService struct {
	Patient PatientName
	Service ServiceName
}

// PatientServiceWindow is a full master-level obligation: a specific patient
// requesting a specific service within a specific window.
type PatientServiceWindow struct {
	Patient PatientName
	Service ServiceName
	Window  Window
}

// Base returns the (patient, service) identity of this obligation, dropping
// the window.
func (psw PatientServiceWindow) Base() PatientService {
	return PatientService{Patient: psw.Patient, Service: psw.Service}
}

// PatientServiceOperator is the fat component shape: a (patient, service)
// request together with the operator assigned to carry it out.
type PatientServiceOperator struct {
	Patient  PatientName
	Service  ServiceName
	Operator OperatorName
}

// Base drops the operator, returning the underlying (patient, service).
func (pso PatientServiceOperator) Base() PatientService {
	return PatientService{Patient: pso.Patient, Service: pso.Service}
}

// PatientServiceOperatorTimeSlot is a fully placed subproblem assignment:
// patient, service, operator and the time-slot it starts at.
type PatientServiceOperatorTimeSlot struct {
	Patient  PatientName
	Service  ServiceName
	Operator OperatorName
	Time     TimeSlot
}

// Base drops the time-slot, returning the underlying fat component.
func (psot PatientServiceOperatorTimeSlot) Base() PatientServiceOperator {
	return PatientServiceOperator{Patient: psot.Patient, Service: psot.Service, Operator: psot.Operator}
}

// IterationDay identifies a cached per-day solve: which iteration produced
// it, and which day it was for.
type IterationDay struct {
	Iteration IterationName
	Day       DayName
}
