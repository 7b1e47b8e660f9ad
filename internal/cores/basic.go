package cores

import (
	"sort"

	"github.com/fevancin/Scheduler-Project/internal/model"
)

// GetBasicFatCores generates, for every rejected request of every day, a
// core whose components are that single rejection plus every request
// scheduled that same day, grounded on get_basic_fat_cores.
func GetBasicFatCores(results map[model.DayName]model.SubproblemResult) []model.FatCore {
	var cores []model.FatCore

	for dayName, result := range results {
		if len(result.Rejected) == 0 {
			continue
		}

		for _, rejected := range result.Rejected {
			core := model.FatCore{
				Reason: []model.PatientServiceOperator{rejected},
				Days:   []model.DayName{dayName},
			}
			core.Components = append(core.Components, rejected)
			for _, scheduled := range result.Scheduled {
				core.Components = append(core.Components, scheduled.Base())
			}
			sortFatComponents(core.Components)
			cores = append(cores, core)
		}
	}

	return cores
}

// GetBasicSlimCores is GetBasicFatCores' slim-core counterpart: rejected and
// scheduled requests are projected down to (patient, service) pairs.
func GetBasicSlimCores(results map[model.DayName]model.SubproblemResult) []model.SlimCore {
	var cores []model.SlimCore

	for dayName, result := range results {
		if len(result.Rejected) == 0 {
			continue
		}

		for _, rejected := range result.Rejected {
			reason := rejected.Base()
			core := model.SlimCore{
				Reason: []model.PatientService{reason},
				Days:   []model.DayName{dayName},
			}
			core.Components = append(core.Components, reason)
			for _, scheduled := range result.Scheduled {
				core.Components = append(core.Components, scheduled.Base().Base())
			}
			sortSlimComponents(core.Components)
			cores = append(cores, core)
		}
	}

	return cores
}

func sortFatComponents(reqs []model.PatientServiceOperator) {
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].Patient != reqs[j].Patient {
			return reqs[i].Patient < reqs[j].Patient
		}
		return reqs[i].Service < reqs[j].Service
	})
}

func sortSlimComponents(reqs []model.PatientService) {
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].Patient != reqs[j].Patient {
			return reqs[i].Patient < reqs[j].Patient
		}
		return reqs[i].Service < reqs[j].Service
	})
}
