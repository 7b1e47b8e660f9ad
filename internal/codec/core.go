package codec

import (
	"encoding/json"
	"fmt"

	"github.com/fevancin/Scheduler-Project/internal/model"
)

type jsonCoreComponent struct {
	Patient  string `json:"patient"`
	Service  string `json:"service"`
	Operator string `json:"operator,omitempty"`
}

type jsonCore struct {
	Reason     []jsonCoreComponent `json:"reason"`
	Days       []int               `json:"days"`
	Components []jsonCoreComponent `json:"components"`
}

// CoreSet holds a decoded core list, tagged with which variant it was
// decoded as — the Go counterpart of decode_cores' `list[FatCore] |
// list[SlimCore]` return type.
type CoreSet struct {
	Fat  bool
	Slim []model.SlimCore
	Fats []model.FatCore
}

// EncodeCores renders either core slice using the shared {reason, days,
// components} shape, omitting "operator" for slim cores.
func EncodeCores(set CoreSet) ([]byte, error) {
	var objs []jsonCore

	if set.Fat {
		objs = make([]jsonCore, len(set.Fats))
		for i, c := range set.Fats {
			objs[i] = jsonCore{
				Reason:     encodeFatComponents(c.Reason),
				Days:       encodeDays(c.Days),
				Components: encodeFatComponents(c.Components),
			}
		}
	} else {
		objs = make([]jsonCore, len(set.Slim))
		for i, c := range set.Slim {
			objs[i] = jsonCore{
				Reason:     encodeSlimComponents(c.Reason),
				Days:       encodeDays(c.Days),
				Components: encodeSlimComponents(c.Components),
			}
		}
	}

	return json.MarshalIndent(objs, "", "  ")
}

func encodeDays(days []model.DayName) []int {
	out := make([]int, len(days))
	for i, d := range days {
		out[i] = int(d)
	}
	return out
}

func encodeFatComponents(cs []model.PatientServiceOperator) []jsonCoreComponent {
	out := make([]jsonCoreComponent, len(cs))
	for i, c := range cs {
		out[i] = jsonCoreComponent{Patient: string(c.Patient), Service: string(c.Service), Operator: string(c.Operator)}
	}
	return out
}

func encodeSlimComponents(cs []model.PatientService) []jsonCoreComponent {
	out := make([]jsonCoreComponent, len(cs))
	for i, c := range cs {
		out[i] = jsonCoreComponent{Patient: string(c.Patient), Service: string(c.Service)}
	}
	return out
}

// DecodeCores parses a core list, sniffing fat vs slim the way decode_cores
// does: whether the first core's first reason component carries an
// "operator" field. An empty list decodes to an empty slim CoreSet.
func DecodeCores(data []byte) (CoreSet, error) {
	var objs []jsonCore
	if err := json.Unmarshal(data, &objs); err != nil {
		return CoreSet{}, fmt.Errorf("codec: decode cores: %w", err)
	}

	fat := len(objs) > 0 && len(objs[0].Reason) > 0 && objs[0].Reason[0].Operator != ""

	set := CoreSet{Fat: fat}
	for _, obj := range objs {
		days := make([]model.DayName, len(obj.Days))
		for i, d := range obj.Days {
			days[i] = model.DayName(d)
		}

		if fat {
			set.Fats = append(set.Fats, model.FatCore{
				Days:       days,
				Reason:     decodeFatComponents(obj.Reason),
				Components: decodeFatComponents(obj.Components),
			})
		} else {
			set.Slim = append(set.Slim, model.SlimCore{
				Days:       days,
				Reason:     decodeSlimComponents(obj.Reason),
				Components: decodeSlimComponents(obj.Components),
			})
		}
	}

	return set, nil
}

func decodeFatComponents(cs []jsonCoreComponent) []model.PatientServiceOperator {
	out := make([]model.PatientServiceOperator, len(cs))
	for i, c := range cs {
		out[i] = model.PatientServiceOperator{Patient: model.PatientName(c.Patient), Service: model.ServiceName(c.Service), Operator: model.OperatorName(c.Operator)}
	}
	return out
}

func decodeSlimComponents(cs []jsonCoreComponent) []model.PatientService {
	out := make([]model.PatientService, len(cs))
	for i, c := range cs {
		out[i] = model.PatientService{Patient: model.PatientName(c.Patient), Service: model.ServiceName(c.Service)}
	}
	return out
}
