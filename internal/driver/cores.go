package driver

import (
	"context"

	"github.com/fevancin/Scheduler-Project/internal/checkers"
	"github.com/fevancin/Scheduler-Project/internal/config"
	"github.com/fevancin/Scheduler-Project/internal/cores"
	"github.com/fevancin/Scheduler-Project/internal/model"
)

// collectFatCores runs the configured core-extraction pipeline
// (generalist, or basic[/reduced[/pruned]]) over one iteration's fat
// subproblem results, grounded on solve_instance's core-type dispatch;
// each stage is validated immediately with the exit code solve_instance's
// `return 7`..`return 10` sequence assigns it.
func collectFatCores(ctx context.Context, cfg config.Config, instance model.MasterInstance, results map[model.DayName]model.SubproblemResult, instances map[model.DayName]model.SubproblemInstance) ([]model.FatCore, error) {
	if cfg.CoreType == "generalist" {
		found := cores.GetGeneralistFatCores(results)
		if errs := checkers.CheckFatCores(instance, found); len(errs) > 0 {
			return nil, stageErrorf(7, "driver: invalid generalist cores: %v", errs)
		}
		return found, nil
	}

	found := cores.GetBasicFatCores(results)
	if errs := checkers.CheckFatCores(instance, found); len(errs) > 0 {
		return nil, stageErrorf(8, "driver: invalid basic cores: %v", errs)
	}
	if cfg.CoreType == "basic" {
		return found, nil
	}

	found = cores.GetReducedFatCores(found)
	if errs := checkers.CheckFatCores(instance, found); len(errs) > 0 {
		return nil, stageErrorf(9, "driver: invalid reduced cores: %v", errs)
	}
	if cfg.CoreType == "reduced" {
		return found, nil
	}

	found, err := cores.GetPrunedFatCores(ctx, instances, found, cfg.CorePruning.AdditionalInfo, cfg.CorePruning.TimeLimit(), cfg.PostPruningIrreducibility)
	if err != nil {
		return nil, err
	}
	if errs := checkers.CheckFatCores(instance, found); len(errs) > 0 {
		return nil, stageErrorf(10, "driver: invalid pruned cores: %v", errs)
	}
	return found, nil
}

// collectSlimCores is collectFatCores' slim counterpart: the generalist
// stage shares code 7, and the basic, reduced and pruned stages take the
// `return 11`..`return 13` codes.
func collectSlimCores(ctx context.Context, cfg config.Config, instance model.MasterInstance, results map[model.DayName]model.SubproblemResult, instances map[model.DayName]model.SubproblemInstance) ([]model.SlimCore, error) {
	if cfg.CoreType == "generalist" {
		found := cores.GetGeneralistSlimCores(results)
		if errs := checkers.CheckSlimCores(instance, found); len(errs) > 0 {
			return nil, stageErrorf(7, "driver: invalid generalist cores: %v", errs)
		}
		return found, nil
	}

	found := cores.GetBasicSlimCores(results)
	if errs := checkers.CheckSlimCores(instance, found); len(errs) > 0 {
		return nil, stageErrorf(11, "driver: invalid basic cores: %v", errs)
	}
	if cfg.CoreType == "basic" {
		return found, nil
	}

	found = cores.GetReducedSlimCores(instance.Services, found)
	if errs := checkers.CheckSlimCores(instance, found); len(errs) > 0 {
		return nil, stageErrorf(12, "driver: invalid reduced cores: %v", errs)
	}
	if cfg.CoreType == "reduced" {
		return found, nil
	}

	found, err := cores.GetPrunedSlimCores(ctx, results, instances, found, cfg.CorePruning.AdditionalInfo, cfg.CorePruning.TimeLimit(), cfg.PostPruningIrreducibility)
	if err != nil {
		return nil, err
	}
	if errs := checkers.CheckSlimCores(instance, found); len(errs) > 0 {
		return nil, stageErrorf(13, "driver: invalid pruned cores: %v", errs)
	}
	return found, nil
}
