package cores

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fevancin/Scheduler-Project/internal/checkers"
	"github.com/fevancin/Scheduler-Project/internal/model"
	"github.com/fevancin/Scheduler-Project/internal/subproblem"
)

// GetFatCoreComponentsMetric computes a heuristic distance from a fat
// core's reason request: a shared operator costs 1 hop, a shared patient
// costs 10, grounded on get_fat_core_components_metric. Traversal order is
// a FIFO queue rather than the source's arbitrary set.pop(), for
// deterministic output; the metric values produced are identical either
// way since each component is only ever assigned a distance once.
func GetFatCoreComponentsMetric(core model.FatCore) map[model.PatientServiceOperator]int {
	metric := make(map[model.PatientServiceOperator]int)
	if len(core.Reason) == 0 {
		return metric
	}

	visited := make(map[model.PatientServiceOperator]bool)
	queue := []model.PatientServiceOperator{core.Reason[0]}
	queued := map[model.PatientServiceOperator]bool{core.Reason[0]: true}
	metric[core.Reason[0]] = 0

	for len(queue) > 0 {
		request := queue[0]
		queue = queue[1:]
		delete(queued, request)
		visited[request] = true

		for _, other := range core.Components {
			if visited[other] || queued[other] {
				continue
			}
			var dist int
			linked := false
			if request.Operator == other.Operator {
				dist = metric[request] + 1
				linked = true
			} else if request.Patient == other.Patient {
				dist = metric[request] + 10
				linked = true
			}
			if linked {
				queue = append(queue, other)
				queued[other] = true
				metric[other] = dist
			}
		}
	}

	return metric
}

// GetSlimCoreComponentsMetric is GetFatCoreComponentsMetric's slim
// counterpart: the operator a request resolved to is looked up from the
// day's already-computed subproblem result (a slim instance has no
// operator of its own), falling back to a shared-care-unit hop, and
// independently always also considering a shared-patient hop, grounded on
// get_slim_core_components_metric.
func GetSlimCoreComponentsMetric(services map[model.ServiceName]model.Service, result model.SubproblemResult, core model.SlimCore) map[model.PatientService]int {
	metric := make(map[model.PatientService]int)
	if len(core.Reason) == 0 {
		return metric
	}

	resolvedOperator := func(p model.PatientName, s model.ServiceName) (model.OperatorName, bool) {
		for _, sched := range result.Scheduled {
			if sched.Patient == p && sched.Service == s {
				return sched.Operator, true
			}
		}
		return "", false
	}

	visited := make(map[model.PatientService]bool)
	queue := []model.PatientService{core.Reason[0]}
	queued := map[model.PatientService]bool{core.Reason[0]: true}
	metric[core.Reason[0]] = 0

	for len(queue) > 0 {
		request := queue[0]
		queue = queue[1:]
		delete(queued, request)
		visited[request] = true

		careUnit := services[request.Service].CareUnit
		operator, hasOperator := resolvedOperator(request.Patient, request.Service)

		for _, other := range core.Components {
			if visited[other] || queued[other] {
				continue
			}

			added := false
			if hasOperator {
				if otherOperator, ok := resolvedOperator(other.Patient, other.Service); ok && operator == otherOperator {
					queue = append(queue, other)
					queued[other] = true
					metric[other] = metric[request] + 1
					added = true
				}
			} else if careUnit == services[other.Service].CareUnit {
				queue = append(queue, other)
				queued[other] = true
				metric[other] = metric[request] + 1
				added = true
			}

			if !added {
				if _, already := metric[other]; !already && request.Patient == other.Patient {
					queue = append(queue, other)
					queued[other] = true
					metric[other] = metric[request] + 10
				}
			}
		}
	}

	return metric
}

// isInstanceFullySatisfiable solves inst's subproblem and reports whether
// every request was satisfied, grounded on is_instance_fully_satisfiable.
// If solving takes longer than timeLimit the instance is treated as fully
// satisfiable, matching the source's own wall-clock escape hatch for
// pruning under a time budget.
func isInstanceFullySatisfiable(ctx context.Context, inst model.SubproblemInstance, additionalInfo []string, timeLimit time.Duration) (bool, error) {
	start := time.Now()

	var rejected int
	if inst.Fat {
		m, err := subproblem.BuildFatModel(inst)
		if err != nil {
			return false, err
		}
		result, err := m.Solve(ctx)
		if err != nil {
			return false, err
		}
		rejected = len(result.Rejected)
	} else {
		m, err := subproblem.BuildSlimModel(inst, additionalInfo, nil)
		if err != nil {
			return false, err
		}
		result, err := m.Solve(ctx)
		if err != nil {
			return false, err
		}
		rejected = len(result.Rejected)
	}

	if time.Since(start) > timeLimit {
		return true, nil
	}
	return rejected == 0, nil
}

func cloneFatInstance(base model.SubproblemInstance, components []model.PatientServiceOperator) model.SubproblemInstance {
	clone := base
	clone.Patients = make(map[model.PatientName]int)
	clone.Requests = append([]model.PatientServiceOperator(nil), components...)
	for _, r := range components {
		clone.Patients[r.Patient] = base.Priority(r.Patient)
	}
	return clone
}

func cloneSlimInstance(base model.SubproblemInstance, components []model.PatientService) model.SubproblemInstance {
	requests := make([]model.PatientServiceOperator, len(components))
	for i, c := range components {
		requests[i] = model.PatientServiceOperator{Patient: c.Patient, Service: c.Service}
	}
	clone := base
	clone.Patients = make(map[model.PatientName]int)
	clone.Requests = requests
	for _, c := range components {
		clone.Patients[c.Patient] = base.Priority(c.Patient)
	}
	return clone
}

// GetPrunedFatCores binary-searches, per core, for the shortest prefix of
// its heuristically sorted components whose instance still cannot be
// solved with zero rejections, keeps that prefix, then optionally tries to remove each
// surviving non-edge component individually (config.PostPruningIrreducibility),
// grounded on get_pruned_fat_cores.
func GetPrunedFatCores(ctx context.Context, instances map[model.DayName]model.SubproblemInstance, reducedCores []model.FatCore, additionalInfo []string, timeLimit time.Duration, postPruningIrreducibility bool) ([]model.FatCore, error) {
	cores := append([]model.FatCore(nil), reducedCores...)

	for i := range cores {
		core := &cores[i]
		if len(core.Components) <= 1 {
			continue
		}

		metric := GetFatCoreComponentsMetric(*core)
		sortedRequests := sortedByMetric(metric, sortFatComponents)

		instance := instances[core.Days[0]]

		start, end := 0, len(sortedRequests)-1
		cursor := (end-start)/2 + start

		for end > start+1 {
			candidate := sortedRequests[:cursor+1]
			cloned := cloneFatInstance(instance, candidate)
			if errs := checkers.CheckSubproblemInstance(cloned); len(errs) > 0 {
				return nil, fmt.Errorf("core pruning produced an invalid instance: %v", errs)
			}

			ok, err := isInstanceFullySatisfiable(ctx, cloned, additionalInfo, timeLimit)
			if err != nil {
				return nil, err
			}
			if ok {
				start = cursor
			} else {
				end = cursor
			}
			cursor = (end-start)/2 + start
		}

		if end+1 < len(core.Reason) {
			return nil, fmt.Errorf("pruned core size %d is smaller than its reason size %d", end+1, len(core.Reason))
		}
		core.Components = append([]model.PatientServiceOperator(nil), sortedRequests[:end+1]...)

		if !postPruningIrreducibility {
			continue
		}

		irreducible := append([]model.PatientServiceOperator(nil), core.Components...)
		candidates := core.Components
		if len(candidates) > 2 {
			candidates = candidates[1 : len(candidates)-1]
		} else {
			candidates = nil
		}

		for _, component := range candidates {
			irreducible = removeComponent(irreducible, component)

			cloned := cloneFatInstance(instance, irreducible)
			if errs := checkers.CheckSubproblemInstance(cloned); len(errs) > 0 {
				return nil, fmt.Errorf("core irreducibility check produced an invalid instance: %v", errs)
			}

			ok, err := isInstanceFullySatisfiable(ctx, cloned, additionalInfo, timeLimit)
			if err != nil {
				return nil, err
			}
			if ok {
				irreducible = append(irreducible, component)
			}
		}

		core.Components = irreducible
	}

	return cores, nil
}

// GetPrunedSlimCores is GetPrunedFatCores' slim counterpart. Unlike the fat
// pass, the post-pruning irreducibility pass tries to remove every
// surviving component, including the first and last — an asymmetry the
// source itself carries (resolved as an intentional behavior to preserve,
// not a bug, since nothing about the slim shape privileges an edge
// component the way the fat metric's BFS order does).
func GetPrunedSlimCores(ctx context.Context, results map[model.DayName]model.SubproblemResult, instances map[model.DayName]model.SubproblemInstance, reducedCores []model.SlimCore, additionalInfo []string, timeLimit time.Duration, postPruningIrreducibility bool) ([]model.SlimCore, error) {
	cores := append([]model.SlimCore(nil), reducedCores...)

	for i := range cores {
		core := &cores[i]
		if len(core.Components) <= 1 {
			continue
		}

		dayName := core.Days[0]
		instance := instances[dayName]

		metric := GetSlimCoreComponentsMetric(instance.Services, results[dayName], *core)
		sortedRequests := sortedByMetric(metric, sortSlimComponents)

		start, end := 0, len(sortedRequests)-1
		cursor := (end-start)/2 + start

		for end > start+1 {
			candidate := sortedRequests[:cursor+1]
			cloned := cloneSlimInstance(instance, candidate)
			if errs := checkers.CheckSubproblemInstance(cloned); len(errs) > 0 {
				return nil, fmt.Errorf("core pruning produced an invalid instance: %v", errs)
			}

			ok, err := isInstanceFullySatisfiable(ctx, cloned, additionalInfo, timeLimit)
			if err != nil {
				return nil, err
			}
			if ok {
				start = cursor
			} else {
				end = cursor
			}
			cursor = (end-start)/2 + start
		}

		if end+1 < len(core.Reason) {
			return nil, fmt.Errorf("pruned core size %d is smaller than its reason size %d", end+1, len(core.Reason))
		}
		core.Components = append([]model.PatientService(nil), sortedRequests[:end+1]...)

		if !postPruningIrreducibility {
			continue
		}

		irreducible := append([]model.PatientService(nil), core.Components...)
		for _, component := range core.Components {
			irreducible = removeSlimComponent(irreducible, component)

			cloned := cloneSlimInstance(instance, irreducible)
			if errs := checkers.CheckSubproblemInstance(cloned); len(errs) > 0 {
				return nil, fmt.Errorf("core irreducibility check produced an invalid instance: %v", errs)
			}

			ok, err := isInstanceFullySatisfiable(ctx, cloned, additionalInfo, timeLimit)
			if err != nil {
				return nil, err
			}
			if ok {
				irreducible = append(irreducible, component)
			}
		}

		core.Components = irreducible
	}

	return cores, nil
}

func sortedByMetric[T comparable](metric map[T]int, sortFn func([]T)) []T {
	keys := make([]T, 0, len(metric))
	for k := range metric {
		keys = append(keys, k)
	}
	sortFn(keys)
	sort.SliceStable(keys, func(i, j int) bool { return metric[keys[i]] < metric[keys[j]] })
	return keys
}

func removeComponent(components []model.PatientServiceOperator, target model.PatientServiceOperator) []model.PatientServiceOperator {
	for i, c := range components {
		if c == target {
			return append(append([]model.PatientServiceOperator(nil), components[:i]...), components[i+1:]...)
		}
	}
	return components
}

func removeSlimComponent(components []model.PatientService, target model.PatientService) []model.PatientService {
	for i, c := range components {
		if c == target {
			return append(append([]model.PatientService(nil), components[:i]...), components[i+1:]...)
		}
	}
	return components
}
