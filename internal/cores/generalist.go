package cores

import "github.com/fevancin/Scheduler-Project/internal/model"

// GetGeneralistFatCores generates one core per day with at least one
// rejected request, whose components are every request of that day
// (rejected and scheduled alike) and whose reason is the full set of
// rejections, grounded on get_generalist_cores.
func GetGeneralistFatCores(results map[model.DayName]model.SubproblemResult) []model.FatCore {
	var cores []model.FatCore

	for dayName, result := range results {
		if len(result.Rejected) == 0 {
			continue
		}

		core := model.FatCore{
			Reason: append([]model.PatientServiceOperator(nil), result.Rejected...),
			Days:   []model.DayName{dayName},
		}
		core.Components = append(core.Components, result.Rejected...)
		for _, scheduled := range result.Scheduled {
			core.Components = append(core.Components, scheduled.Base())
		}
		sortFatComponents(core.Components)
		cores = append(cores, core)
	}

	return cores
}

// GetGeneralistSlimCores is GetGeneralistFatCores' slim-core counterpart.
func GetGeneralistSlimCores(results map[model.DayName]model.SubproblemResult) []model.SlimCore {
	var cores []model.SlimCore

	for dayName, result := range results {
		if len(result.Rejected) == 0 {
			continue
		}

		reason := make([]model.PatientService, len(result.Rejected))
		for i, r := range result.Rejected {
			reason[i] = r.Base()
		}

		core := model.SlimCore{
			Reason: reason,
			Days:   []model.DayName{dayName},
		}
		core.Components = append(core.Components, reason...)
		for _, scheduled := range result.Scheduled {
			core.Components = append(core.Components, scheduled.Base().Base())
		}
		sortSlimComponents(core.Components)
		cores = append(cores, core)
	}

	return cores
}
