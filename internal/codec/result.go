package codec

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fevancin/Scheduler-Project/internal/model"
)

type jsonScheduledRequest struct {
	Patient  string `json:"patient"`
	Service  string `json:"service"`
	Operator string `json:"operator,omitempty"`
	Time     *int   `json:"time,omitempty"`
}

type jsonRejectedRequest struct {
	Patient  string `json:"patient"`
	Service  string `json:"service"`
	Operator string `json:"operator,omitempty"`
	Window   []int  `json:"window,omitempty"`
}

type jsonMasterResult struct {
	Scheduled map[string][]jsonScheduledRequest `json:"scheduled"`
	Rejected  []jsonRejectedRequest              `json:"rejected"`
}

func encodeRejectedWindows(rejected []model.PatientServiceWindow) []jsonRejectedRequest {
	out := make([]jsonRejectedRequest, len(rejected))
	for i, psw := range rejected {
		out[i] = jsonRejectedRequest{
			Patient: string(psw.Patient),
			Service: string(psw.Service),
			Window:  []int{int(psw.Window.Start), int(psw.Window.End)},
		}
	}
	return out
}

func decodeRejectedWindows(in []jsonRejectedRequest) []model.PatientServiceWindow {
	out := make([]model.PatientServiceWindow, len(in))
	for i, r := range in {
		var w model.Window
		if len(r.Window) == 2 {
			w = model.Window{Start: model.DayName(r.Window[0]), End: model.DayName(r.Window[1])}
		}
		out[i] = model.PatientServiceWindow{Patient: model.PatientName(r.Patient), Service: model.ServiceName(r.Service), Window: w}
	}
	return out
}

// EncodeMasterResult renders a master result per §6's schema. Fat results
// carry an "operator" field on each scheduled request; slim results omit
// it, matching encode_master_result's isinstance branch.
func EncodeMasterResult(r model.MasterResult) ([]byte, error) {
	obj := jsonMasterResult{
		Scheduled: make(map[string][]jsonScheduledRequest, len(r.Scheduled)),
		Rejected:  encodeRejectedWindows(r.Rejected),
	}

	for day, reqs := range r.Scheduled {
		list := make([]jsonScheduledRequest, len(reqs))
		for i, req := range reqs {
			entry := jsonScheduledRequest{Patient: string(req.Patient), Service: string(req.Service)}
			if r.Fat {
				entry.Operator = string(req.Operator)
			}
			list[i] = entry
		}
		obj.Scheduled[strconv.Itoa(int(day))] = list
	}

	return json.MarshalIndent(obj, "", "  ")
}

// DecodeMasterResult parses a master result, sniffing fat vs slim from
// whether the first scheduled request of the first day carries an
// "operator" field — the same test decode_master_result performs.
func DecodeMasterResult(data []byte) (model.MasterResult, error) {
	var obj jsonMasterResult
	if err := json.Unmarshal(data, &obj); err != nil {
		return model.MasterResult{}, fmt.Errorf("codec: decode master result: %w", err)
	}

	fat := false
	for _, reqs := range obj.Scheduled {
		if len(reqs) > 0 {
			fat = reqs[0].Operator != ""
		}
		break
	}

	r := model.NewMasterResult(fat)
	for day, reqs := range obj.Scheduled {
		d, err := strconv.Atoi(day)
		if err != nil {
			return model.MasterResult{}, fmt.Errorf("codec: bad day name %q: %w", day, err)
		}
		list := make([]model.PatientServiceOperator, len(reqs))
		for i, req := range reqs {
			list[i] = model.PatientServiceOperator{Patient: model.PatientName(req.Patient), Service: model.ServiceName(req.Service), Operator: model.OperatorName(req.Operator)}
		}
		r.Scheduled[model.DayName(d)] = list
	}
	r.Rejected = decodeRejectedWindows(obj.Rejected)

	return r, nil
}

type jsonSubproblemResult struct {
	Scheduled []jsonScheduledRequest `json:"scheduled"`
	Rejected  []jsonRejectedRequest  `json:"rejected"`
}

// EncodeSubproblemResult renders a subproblem result: scheduled requests
// always carry patient/service/operator/time; rejected requests carry an
// operator only for fat results.
func EncodeSubproblemResult(r model.SubproblemResult) ([]byte, error) {
	obj := jsonSubproblemResult{
		Scheduled: make([]jsonScheduledRequest, len(r.Scheduled)),
		Rejected:  make([]jsonRejectedRequest, len(r.Rejected)),
	}

	for i, s := range r.Scheduled {
		t := int(s.Time)
		obj.Scheduled[i] = jsonScheduledRequest{Patient: string(s.Patient), Service: string(s.Service), Operator: string(s.Operator), Time: &t}
	}

	for i, rej := range r.Rejected {
		entry := jsonRejectedRequest{Patient: string(rej.Patient), Service: string(rej.Service)}
		if r.Fat {
			entry.Operator = string(rej.Operator)
		}
		obj.Rejected[i] = entry
	}

	return json.MarshalIndent(obj, "", "  ")
}

// DecodeSubproblemResult parses a subproblem result, sniffing fat vs slim
// from whether the first rejected request carries an "operator" field — if
// nothing was rejected the variant is ambiguous from the payload alone and
// defaults to slim, same as the Python source's `len(obj['rejected']) > 0`
// guard collapsing to false on an empty list.
func DecodeSubproblemResult(data []byte) (model.SubproblemResult, error) {
	var obj jsonSubproblemResult
	if err := json.Unmarshal(data, &obj); err != nil {
		return model.SubproblemResult{}, fmt.Errorf("codec: decode subproblem result: %w", err)
	}

	fat := len(obj.Rejected) > 0 && obj.Rejected[0].Operator != ""

	r := model.SubproblemResult{Fat: fat}
	for _, s := range obj.Scheduled {
		time := 0
		if s.Time != nil {
			time = *s.Time
		}
		r.Scheduled = append(r.Scheduled, model.PatientServiceOperatorTimeSlot{
			Patient: model.PatientName(s.Patient), Service: model.ServiceName(s.Service),
			Operator: model.OperatorName(s.Operator), Time: model.TimeSlot(time),
		})
	}
	for _, rej := range obj.Rejected {
		r.Rejected = append(r.Rejected, model.PatientServiceOperator{
			Patient: model.PatientName(rej.Patient), Service: model.ServiceName(rej.Service), Operator: model.OperatorName(rej.Operator),
		})
	}

	return r, nil
}

type jsonFinalResult struct {
	Scheduled map[string][]jsonScheduledRequest `json:"scheduled"`
	Rejected  []jsonRejectedRequest              `json:"rejected"`
}

// EncodeFinalResult renders a final result: the master-result shape but
// every scheduled request also carries a placed time-slot.
func EncodeFinalResult(r model.FinalResult) ([]byte, error) {
	obj := jsonFinalResult{
		Scheduled: make(map[string][]jsonScheduledRequest, len(r.Scheduled)),
		Rejected:  encodeRejectedWindows(r.Rejected),
	}

	for day, reqs := range r.Scheduled {
		list := make([]jsonScheduledRequest, len(reqs))
		for i, req := range reqs {
			t := int(req.Time)
			list[i] = jsonScheduledRequest{Patient: string(req.Patient), Service: string(req.Service), Operator: string(req.Operator), Time: &t}
		}
		obj.Scheduled[strconv.Itoa(int(day))] = list
	}

	return json.MarshalIndent(obj, "", "  ")
}

// DecodeFinalResult parses a final result.
func DecodeFinalResult(data []byte) (model.FinalResult, error) {
	var obj jsonFinalResult
	if err := json.Unmarshal(data, &obj); err != nil {
		return model.FinalResult{}, fmt.Errorf("codec: decode final result: %w", err)
	}

	r := model.NewFinalResult()
	for day, reqs := range obj.Scheduled {
		d, err := strconv.Atoi(day)
		if err != nil {
			return model.FinalResult{}, fmt.Errorf("codec: bad day name %q: %w", day, err)
		}
		list := make([]model.PatientServiceOperatorTimeSlot, len(reqs))
		for i, req := range reqs {
			t := 0
			if req.Time != nil {
				t = *req.Time
			}
			list[i] = model.PatientServiceOperatorTimeSlot{
				Patient: model.PatientName(req.Patient), Service: model.ServiceName(req.Service),
				Operator: model.OperatorName(req.Operator), Time: model.TimeSlot(t),
			}
		}
		r.Scheduled[model.DayName(d)] = list
	}
	r.Rejected = decodeRejectedWindows(obj.Rejected)

	return r, nil
}
