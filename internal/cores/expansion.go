package cores

import (
	"context"
	"time"

	"github.com/fevancin/Scheduler-Project/internal/maxmatching"
	"github.com/fevancin/Scheduler-Project/internal/model"
	"github.com/fevancin/Scheduler-Project/internal/subsumption"
)

// ExpansionOptions governs which names core expansion is allowed to
// anonymize (rename) and how hard it tries, grounded on the
// core_patient_expansion / core_service_expansion / core_operator_expansion
// / core_day_expansion / max_single_core_expansion config keys of
// core_expansion.py.
type ExpansionOptions struct {
	PatientExpansion       bool
	ServiceExpansion       bool
	OperatorExpansion      bool
	DayExpansion           bool
	MaxSingleCoreExpansion int
	TimeLimit              time.Duration
}

// GetFatExpansionArcs builds the bipartite candidate-rename arc set between
// core's components and a target day's requests, grounded on
// get_expansion_arcs.
func GetFatExpansionArcs(core model.FatCore, allPossibleMasterRequests []model.PatientServiceOperator, services map[model.ServiceName]model.Service, opts ExpansionOptions) []maxmatching.FatArc {
	seen := make(map[maxmatching.FatArc]bool)
	var arcs []maxmatching.FatArc

	for _, component := range core.Components {
		for _, request := range allPossibleMasterRequests {
			if services[component.Service].CareUnit != services[request.Service].CareUnit {
				continue
			}
			if services[component.Service].Duration > services[request.Service].Duration {
				continue
			}
			if !opts.PatientExpansion && component.Patient != request.Patient {
				continue
			}
			if !opts.ServiceExpansion && component.Service != request.Service {
				continue
			}
			if !opts.OperatorExpansion && component.Operator != request.Operator {
				continue
			}

			arc := maxmatching.FatArc{From: component, To: request}
			if !seen[arc] {
				seen[arc] = true
				arcs = append(arcs, arc)
			}
		}
	}

	return arcs
}

// GetSlimExpansionArcs is GetFatExpansionArcs' slim counterpart: there is
// no operator name to compare.
func GetSlimExpansionArcs(core model.SlimCore, allPossibleMasterRequests []model.PatientService, services map[model.ServiceName]model.Service, opts ExpansionOptions) []maxmatching.SlimArc {
	seen := make(map[maxmatching.SlimArc]bool)
	var arcs []maxmatching.SlimArc

	for _, component := range core.Components {
		for _, request := range allPossibleMasterRequests {
			if services[component.Service].CareUnit != services[request.Service].CareUnit {
				continue
			}
			if services[component.Service].Duration > services[request.Service].Duration {
				continue
			}
			if !opts.PatientExpansion && component.Patient != request.Patient {
				continue
			}
			if !opts.ServiceExpansion && component.Service != request.Service {
				continue
			}

			arc := maxmatching.SlimArc{From: component, To: request}
			if !seen[arc] {
				seen[arc] = true
				arcs = append(arcs, arc)
			}
		}
	}

	return arcs
}

// GetFatCoreFromMatching renames core's components and reason per matching,
// placing the result on day. Components with no matching arc pass through
// unchanged. core is not modified, grounded on get_core_from_matching.
func GetFatCoreFromMatching(core model.FatCore, matching []maxmatching.FatArc, day model.DayName) model.FatCore {
	rename := func(component model.PatientServiceOperator) model.PatientServiceOperator {
		for _, arc := range matching {
			if arc.From == component {
				return arc.To
			}
		}
		return component
	}

	renamed := model.FatCore{Days: []model.DayName{day}}
	for _, component := range core.Components {
		renamed.Components = append(renamed.Components, rename(component))
	}
	for _, reason := range core.Reason {
		renamed.Reason = append(renamed.Reason, rename(reason))
	}
	return renamed
}

// GetSlimCoreFromMatching is GetFatCoreFromMatching's slim counterpart.
func GetSlimCoreFromMatching(core model.SlimCore, matching []maxmatching.SlimArc, day model.DayName) model.SlimCore {
	rename := func(component model.PatientService) model.PatientService {
		for _, arc := range matching {
			if arc.From == component {
				return arc.To
			}
		}
		return component
	}

	renamed := model.SlimCore{Days: []model.DayName{day}}
	for _, component := range core.Components {
		renamed.Components = append(renamed.Components, rename(component))
	}
	for _, reason := range core.Reason {
		renamed.Reason = append(renamed.Reason, rename(reason))
	}
	return renamed
}

// daysToExpand computes the day set a core should be expanded onto: just
// its own days, unless day expansion is enabled, in which case it is the
// union of every day that subsumes (in every care unit the core touches)
// one of the core's own days.
func daysToExpand(core model.FatCore, services map[model.ServiceName]model.Service, opts ExpansionOptions, subsumptions map[model.CareUnitName]map[model.DayName]map[model.DayName]bool) map[model.DayName]bool {
	days := make(map[model.DayName]bool)
	for _, d := range core.Days {
		days[d] = true
	}
	if !opts.DayExpansion || subsumptions == nil {
		return days
	}

	careUnits := make(map[model.CareUnitName]bool)
	for _, c := range core.Components {
		careUnits[services[c.Service].CareUnit] = true
	}

	for _, dayName := range core.Days {
		var subsuming map[model.DayName]bool
		first := true
		for cu := range careUnits {
			cuDays := make(map[model.DayName]bool)
			for big, contained := range subsumptions[cu] {
				if contained[dayName] {
					cuDays[big] = true
				}
			}
			if first {
				subsuming = make(map[model.DayName]bool, len(cuDays))
				for d := range cuDays {
					subsuming[d] = true
				}
				first = false
				continue
			}
			for d := range subsuming {
				if !cuDays[d] {
					delete(subsuming, d)
				}
			}
		}
		for d := range subsuming {
			days[d] = true
		}
	}

	return days
}

func slimDaysToExpand(core model.SlimCore, services map[model.ServiceName]model.Service, opts ExpansionOptions, subsumptions map[model.CareUnitName]map[model.DayName]map[model.DayName]bool) map[model.DayName]bool {
	days := make(map[model.DayName]bool)
	for _, d := range core.Days {
		days[d] = true
	}
	if !opts.DayExpansion || subsumptions == nil {
		return days
	}

	careUnits := make(map[model.CareUnitName]bool)
	for _, c := range core.Components {
		careUnits[services[c.Service].CareUnit] = true
	}

	for _, dayName := range core.Days {
		var subsuming map[model.DayName]bool
		first := true
		for cu := range careUnits {
			cuDays := make(map[model.DayName]bool)
			for big, contained := range subsumptions[cu] {
				if contained[dayName] {
					cuDays[big] = true
				}
			}
			if first {
				subsuming = make(map[model.DayName]bool, len(cuDays))
				for d := range cuDays {
					subsuming[d] = true
				}
				first = false
				continue
			}
			for d := range subsuming {
				if !cuDays[d] {
					delete(subsuming, d)
				}
			}
		}
		for d := range subsuming {
			days[d] = true
		}
	}

	return days
}

// ExpandFatCores renames each core's components onto every candidate day
// (its own days, or also every subsuming day when opts.DayExpansion is
// set), enumerating successive distinct full matchings up to
// opts.MaxSingleCoreExpansion per day by banning each found matching before
// solving again, grounded on expand_cores.
func ExpandFatCores(ctx context.Context, cores []model.FatCore, allPossibleMasterRequests map[model.DayName][]model.PatientServiceOperator, services map[model.ServiceName]model.Service, opts ExpansionOptions, subsumptions map[model.CareUnitName]map[model.DayName]map[model.DayName]bool) ([]model.FatCore, error) {
	var expanded []model.FatCore

	for _, core := range cores {
		days := daysToExpand(core, services, opts, subsumptions)

		for dayName := range days {
			arcs := GetFatExpansionArcs(core, allPossibleMasterRequests[dayName], services, opts)

			matchModel, ok := maxmatching.BuildFatModel(arcs)
			if !ok {
				continue
			}

			for count := 0; count < opts.MaxSingleCoreExpansion; count++ {
				start := time.Now()
				matching, err := matchModel.Solve(ctx)
				if err != nil {
					return nil, err
				}
				if time.Since(start) >= opts.TimeLimit {
					break
				}
				if len(matching) != len(core.Components) {
					break
				}

				expanded = append(expanded, GetFatCoreFromMatching(core, matching, dayName))
				matchModel.BanMatching(matching)
			}
		}
	}

	return expanded, nil
}

// ExpandSlimCores is ExpandFatCores' slim counterpart.
func ExpandSlimCores(ctx context.Context, cores []model.SlimCore, allPossibleMasterRequests map[model.DayName][]model.PatientService, services map[model.ServiceName]model.Service, opts ExpansionOptions, subsumptions map[model.CareUnitName]map[model.DayName]map[model.DayName]bool) ([]model.SlimCore, error) {
	var expanded []model.SlimCore

	for _, core := range cores {
		days := slimDaysToExpand(core, services, opts, subsumptions)

		for dayName := range days {
			arcs := GetSlimExpansionArcs(core, allPossibleMasterRequests[dayName], services, opts)

			matchModel, ok := maxmatching.BuildSlimModel(arcs)
			if !ok {
				continue
			}

			for count := 0; count < opts.MaxSingleCoreExpansion; count++ {
				start := time.Now()
				matching, err := matchModel.Solve(ctx)
				if err != nil {
					return nil, err
				}
				if time.Since(start) >= opts.TimeLimit {
					break
				}
				if len(matching) != len(core.Components) {
					break
				}

				expanded = append(expanded, GetSlimCoreFromMatching(core, matching, dayName))
				matchModel.BanMatching(matching)
			}
		}
	}

	return expanded, nil
}

// GetSubsumptions computes, for every care unit, the full day >= day
// subsumption relation (subsumptions[cu][big] is the set of days whose
// roster a day's roster in that care unit fully contains), transitively
// closed, grounded on get_subsumptions. The source checks elapsed time
// against core_expansion's time limit rather than subsumption's own — a
// mismatched config reference corrected here to take a single, consistently
// applied timeLimit.
func GetSubsumptions(ctx context.Context, inst model.MasterInstance, timeLimit time.Duration) (map[model.CareUnitName]map[model.DayName]map[model.DayName]bool, error) {
	careUnitNames := make(map[model.CareUnitName]bool)
	for _, day := range inst.Days {
		for cu := range day.CareUnits {
			careUnitNames[cu] = true
		}
	}

	subsumptions := make(map[model.CareUnitName]map[model.DayName]map[model.DayName]bool)

	for cu := range careUnitNames {
		subsumptions[cu] = make(map[model.DayName]map[model.DayName]bool)

		for bigName, bigDay := range inst.Days {
			bigOperators, ok := bigDay.CareUnits[cu]
			if !ok {
				continue
			}
			subsumptions[cu][bigName] = make(map[model.DayName]bool)

			for smallName, smallDay := range inst.Days {
				if bigName == smallName {
					continue
				}
				smallOperators, ok := smallDay.CareUnits[cu]
				if !ok {
					continue
				}
				if subsumptions[cu][bigName][smallName] {
					continue
				}

				m := subsumption.Build(bigOperators, smallOperators)

				start := time.Now()
				has, err := m.HasSolution(ctx)
				if time.Since(start) >= timeLimit {
					continue
				}
				if err != nil {
					return nil, err
				}

				if has {
					subsumptions[cu][bigName][smallName] = true
					if transitive, ok := subsumptions[cu][smallName]; ok {
						for d := range transitive {
							subsumptions[cu][bigName][d] = true
						}
					}
				}
			}
		}
	}

	return subsumptions, nil
}
