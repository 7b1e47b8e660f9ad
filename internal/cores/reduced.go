package cores

import "github.com/fevancin/Scheduler-Project/internal/model"

// GetReducedFatCores narrows each basic core's components to only those
// reachable from the reason request by a chain of shared patient or shared
// operator, discarding the rest, grounded on get_reduced_fat_cores.
func GetReducedFatCores(basicCores []model.FatCore) []model.FatCore {
	cores := make([]model.FatCore, len(basicCores))
	copy(cores, basicCores)

	for i := range cores {
		core := &cores[i]
		if len(core.Components) == 0 || len(core.Reason) == 0 {
			continue
		}

		visited := make(map[model.PatientServiceOperator]bool)
		toVisit := map[model.PatientServiceOperator]bool{core.Reason[0]: true}

		for len(toVisit) > 0 {
			var request model.PatientServiceOperator
			for r := range toVisit {
				request = r
				break
			}
			delete(toVisit, request)
			visited[request] = true

			for _, other := range core.Components {
				if visited[other] || toVisit[other] {
					continue
				}
				if request.Patient == other.Patient || request.Operator == other.Operator {
					toVisit[other] = true
				}
			}
		}

		var reachable []model.PatientServiceOperator
		for r := range visited {
			reachable = append(reachable, r)
		}
		sortFatComponents(reachable)
		core.Components = reachable
	}

	return cores
}

// GetReducedSlimCores is GetReducedFatCores' slim-core counterpart: two
// requests are linked by shared patient or shared care unit (the slim
// formulation has no operator to compare).
func GetReducedSlimCores(services map[model.ServiceName]model.Service, basicCores []model.SlimCore) []model.SlimCore {
	cores := make([]model.SlimCore, len(basicCores))
	copy(cores, basicCores)

	for i := range cores {
		core := &cores[i]
		if len(core.Components) == 0 || len(core.Reason) == 0 {
			continue
		}

		visited := make(map[model.PatientService]bool)
		toVisit := map[model.PatientService]bool{core.Reason[0]: true}

		for len(toVisit) > 0 {
			var request model.PatientService
			for r := range toVisit {
				request = r
				break
			}
			delete(toVisit, request)
			visited[request] = true

			careUnit := services[request.Service].CareUnit

			for _, other := range core.Components {
				if visited[other] || toVisit[other] {
					continue
				}
				if request.Patient == other.Patient || careUnit == services[other.Service].CareUnit {
					toVisit[other] = true
				}
			}
		}

		var reachable []model.PatientService
		for r := range visited {
			reachable = append(reachable, r)
		}
		sortSlimComponents(reachable)
		core.Components = reachable
	}

	return cores
}
