// Package codec implements the JSON wire format for every persisted
// artifact, mirroring original_source/src/common/file_load_and_dump.py's
// hand-coded field-by-field approach: plain struct tags where the shape is
// uniform (instances), explicit encode/decode functions where the shape is
// a tagged union that sniffs its own variant from the payload (fat/slim
// results and cores), exactly the way the Python source inspects its first
// element to decide which dataclass to build.
package codec

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fevancin/Scheduler-Project/internal/model"
)

type jsonService struct {
	CareUnit string `json:"care_unit"`
	Duration int    `json:"duration"`
}

type jsonOperator struct {
	Start    int `json:"start"`
	Duration int `json:"duration"`
}

type jsonPatient struct {
	Priority int             `json:"priority"`
	Requests map[string][][2]int `json:"requests"`
}

type jsonMasterInstance struct {
	Services map[string]jsonService                    `json:"services"`
	Days     map[string]map[string]map[string]jsonOperator `json:"days"`
	Patients map[string]jsonPatient                    `json:"patients"`
}

// EncodeMasterInstance renders a MasterInstance as the JSON schema §6
// prescribes: {services, days, patients}.
func EncodeMasterInstance(inst model.MasterInstance) ([]byte, error) {
	obj := jsonMasterInstance{
		Services: make(map[string]jsonService, len(inst.Services)),
		Days:     make(map[string]map[string]map[string]jsonOperator, len(inst.Days)),
		Patients: make(map[string]jsonPatient, len(inst.Patients)),
	}

	for name, svc := range inst.Services {
		obj.Services[string(name)] = jsonService{CareUnit: string(svc.CareUnit), Duration: int(svc.Duration)}
	}

	for dayName, day := range inst.Days {
		dayObj := make(map[string]map[string]jsonOperator, len(day.CareUnits))
		for cuName, ops := range day.CareUnits {
			opsObj := make(map[string]jsonOperator, len(ops))
			for opName, op := range ops {
				opsObj[string(opName)] = jsonOperator{Start: int(op.Start), Duration: int(op.Duration)}
			}
			dayObj[string(cuName)] = opsObj
		}
		obj.Days[strconv.Itoa(int(dayName))] = dayObj
	}

	for name, patient := range inst.Patients {
		requests := make(map[string][][2]int, len(patient.Requests))
		for svcName, windows := range patient.Requests {
			pairs := make([][2]int, len(windows))
			for i, w := range windows {
				pairs[i] = [2]int{int(w.Start), int(w.End)}
			}
			requests[string(svcName)] = pairs
		}
		obj.Patients[string(name)] = jsonPatient{Priority: patient.Priority, Requests: requests}
	}

	return json.MarshalIndent(obj, "", "  ")
}

// DecodeMasterInstance parses the JSON schema §6 describes for an instance.
func DecodeMasterInstance(data []byte) (model.MasterInstance, error) {
	var obj jsonMasterInstance
	if err := json.Unmarshal(data, &obj); err != nil {
		return model.MasterInstance{}, fmt.Errorf("codec: decode master instance: %w", err)
	}

	inst := model.MasterInstance{
		Services: make(map[model.ServiceName]model.Service, len(obj.Services)),
		Days:     make(map[model.DayName]model.Day, len(obj.Days)),
		Patients: make(map[model.PatientName]model.MasterPatient, len(obj.Patients)),
	}

	for name, svc := range obj.Services {
		inst.Services[model.ServiceName(name)] = model.Service{
			CareUnit: model.CareUnitName(svc.CareUnit),
			Duration: model.TimeSlot(svc.Duration),
		}
	}

	for dayName, dayObj := range obj.Days {
		d, err := strconv.Atoi(dayName)
		if err != nil {
			return model.MasterInstance{}, fmt.Errorf("codec: bad day name %q: %w", dayName, err)
		}
		day := model.NewDay()
		for cuName, ops := range dayObj {
			for opName, op := range ops {
				day.AddOperator(model.CareUnitName(cuName), model.OperatorName(opName), model.Operator{
					CareUnit: model.CareUnitName(cuName),
					Start:    model.TimeSlot(op.Start),
					Duration: model.TimeSlot(op.Duration),
				})
			}
		}
		inst.Days[model.DayName(d)] = day
	}

	for name, patient := range obj.Patients {
		p := model.NewMasterPatient(patient.Priority)
		for svcName, windows := range patient.Requests {
			for _, w := range windows {
				p.AddRequest(model.ServiceName(svcName), model.Window{Start: model.DayName(w[0]), End: model.DayName(w[1])})
			}
		}
		inst.Patients[model.PatientName(name)] = p
	}

	return inst, nil
}

type jsonSubproblemRequest struct {
	Service  string `json:"service"`
	Operator string `json:"operator,omitempty"`
}

type jsonSubproblemInstance struct {
	Services map[string]jsonService            `json:"services"`
	Day      map[string]map[string]jsonOperator `json:"day"`
	Patients map[string]jsonSubproblemPatient   `json:"patients"`
}

type jsonSubproblemPatient struct {
	Priority int             `json:"priority"`
	Requests json.RawMessage `json:"requests"`
}

// EncodeSubproblemInstance renders a per-day SubproblemInstance. Fat
// instances emit `{service, operator}` request objects; slim instances
// emit bare service-name strings, mirroring encode_subproblem_instance's
// isinstance branch.
func EncodeSubproblemInstance(inst model.SubproblemInstance) ([]byte, error) {
	obj := jsonSubproblemInstance{
		Services: make(map[string]jsonService, len(inst.Services)),
		Day:      make(map[string]map[string]jsonOperator),
		Patients: make(map[string]jsonSubproblemPatient),
	}

	for name, svc := range inst.Services {
		obj.Services[string(name)] = jsonService{CareUnit: string(svc.CareUnit), Duration: int(svc.Duration)}
	}

	for cuName, ops := range inst.Roster.CareUnits {
		opsObj := make(map[string]jsonOperator, len(ops))
		for opName, op := range ops {
			opsObj[string(opName)] = jsonOperator{Start: int(op.Start), Duration: int(op.Duration)}
		}
		obj.Day[string(cuName)] = opsObj
	}

	byPatient := make(map[string][]model.PatientServiceOperator)
	var order []string
	for _, r := range inst.Requests {
		if _, seen := byPatient[string(r.Patient)]; !seen {
			order = append(order, string(r.Patient))
		}
		byPatient[string(r.Patient)] = append(byPatient[string(r.Patient)], r)
	}

	for _, pname := range order {
		reqs := byPatient[pname]
		var raw json.RawMessage
		var err error
		if inst.Fat {
			objs := make([]jsonSubproblemRequest, len(reqs))
			for i, r := range reqs {
				objs[i] = jsonSubproblemRequest{Service: string(r.Service), Operator: string(r.Operator)}
			}
			raw, err = json.Marshal(objs)
		} else {
			names := make([]string, len(reqs))
			for i, r := range reqs {
				names[i] = string(r.Service)
			}
			raw, err = json.Marshal(names)
		}
		if err != nil {
			return nil, err
		}
		obj.Patients[pname] = jsonSubproblemPatient{Priority: inst.Patients[model.PatientName(pname)], Requests: raw}
	}

	return json.MarshalIndent(obj, "", "  ")
}

// DecodeSubproblemInstance parses a per-day subproblem instance, sniffing
// fat vs slim shape from whether the first patient's first request is a
// JSON object (fat, carries an operator) or a bare string (slim) — the same
// test decode_subproblem_instance performs with `type(...) == dict`.
func DecodeSubproblemInstance(data []byte) (model.SubproblemInstance, error) {
	var obj jsonSubproblemInstance
	if err := json.Unmarshal(data, &obj); err != nil {
		return model.SubproblemInstance{}, fmt.Errorf("codec: decode subproblem instance: %w", err)
	}

	inst := model.SubproblemInstance{
		Services: make(map[model.ServiceName]model.Service, len(obj.Services)),
		Roster:   model.NewDay(),
		Patients: make(map[model.PatientName]int, len(obj.Patients)),
	}

	for name, svc := range obj.Services {
		inst.Services[model.ServiceName(name)] = model.Service{
			CareUnit: model.CareUnitName(svc.CareUnit),
			Duration: model.TimeSlot(svc.Duration),
		}
	}

	for cuName, ops := range obj.Day {
		for opName, op := range ops {
			inst.Roster.AddOperator(model.CareUnitName(cuName), model.OperatorName(opName), model.Operator{
				CareUnit: model.CareUnitName(cuName),
				Start:    model.TimeSlot(op.Start),
				Duration: model.TimeSlot(op.Duration),
			})
		}
	}

	fatDetermined := false
	for pname, patient := range obj.Patients {
		inst.Patients[model.PatientName(pname)] = patient.Priority

		var asObjects []jsonSubproblemRequest
		if err := json.Unmarshal(patient.Requests, &asObjects); err == nil {
			if !fatDetermined {
				inst.Fat = true
				fatDetermined = true
			}
			for _, r := range asObjects {
				inst.Requests = append(inst.Requests, model.PatientServiceOperator{
					Patient:  model.PatientName(pname),
					Service:  model.ServiceName(r.Service),
					Operator: model.OperatorName(r.Operator),
				})
			}
			continue
		}

		var asStrings []string
		if err := json.Unmarshal(patient.Requests, &asStrings); err != nil {
			return model.SubproblemInstance{}, fmt.Errorf("codec: patient %q requests neither fat nor slim shape: %w", pname, err)
		}
		fatDetermined = true
		for _, svcName := range asStrings {
			inst.Requests = append(inst.Requests, model.PatientServiceOperator{
				Patient: model.PatientName(pname),
				Service: model.ServiceName(svcName),
			})
		}
	}

	return inst, nil
}
