package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fevancin/Scheduler-Project/internal/analysis"
	"github.com/fevancin/Scheduler-Project/internal/cachemodel"
	"github.com/fevancin/Scheduler-Project/internal/cachestore"
	"github.com/fevancin/Scheduler-Project/internal/checkers"
	"github.com/fevancin/Scheduler-Project/internal/codec"
	"github.com/fevancin/Scheduler-Project/internal/config"
	"github.com/fevancin/Scheduler-Project/internal/cores"
	"github.com/fevancin/Scheduler-Project/internal/master"
	"github.com/fevancin/Scheduler-Project/internal/metrics"
	"github.com/fevancin/Scheduler-Project/internal/model"
	"github.com/fevancin/Scheduler-Project/internal/subproblem"
)

const preemptiveForbiddingInfo = "preemptive_forbidding"

// masterIsFat reports whether structureType commits the master to choosing
// operators outright, i.e. the first half of the "<master>-<subproblem>"
// pair is "fat".
func masterIsFat(structureType string) bool {
	return structureType == "fat-slim" || structureType == "fat-fat"
}

// subproblemDecidesOperator reports whether the day packing step must
// itself choose an operator, i.e. the second half of structureType is
// "fat" — note that, per subproblem.BuildSlimModel/BuildFatModel's own
// doc comments, the source's own get_fat_subproblem_model /
// get_slim_subproblem_model builders are named the opposite of what they
// build; structureType's vocabulary still follows the source's (buggy)
// naming, so a "fat" subproblem dispatches to BuildSlimModel here.
func subproblemDecidesOperator(structureType string) bool {
	return structureType == "slim-fat" || structureType == "fat-fat"
}

// Run executes the Benders iteration loop for a single master instance
// under cfg, writing every iteration's artifacts under outputPath, grounded
// on solve_instance.
func Run(ctx context.Context, logger *zap.Logger, collectors *metrics.Collectors, cfg config.Config, instance model.MasterInstance, outputPath string) (model.FinalResult, error) {
	if errs := checkers.CheckMasterInstance(instance); len(errs) > 0 {
		return model.FinalResult{}, stageErrorf(1, "driver: invalid master instance: %v", errs)
	}

	encoded, err := codec.EncodeMasterInstance(instance)
	if err != nil {
		return model.FinalResult{}, err
	}
	if err := codec.WriteFile(filepath.Join(outputPath, "master_instance.json"), encoded); err != nil {
		return model.FinalResult{}, err
	}

	cache := model.NewCache()

	var bestFinalResultValue *float64
	var bestCacheResultValue *float64
	var bestSubproblemResultValue *float64

	fatMaster := masterIsFat(cfg.StructureType)
	fatSubproblem := subproblemDecidesOperator(cfg.StructureType)

	var worstCaseDayNumber int
	if fatMaster {
		worstCaseDayNumber = analysis.DayNumberUsedByPatients(analysis.WorstCaseFatScenario(instance))
	} else {
		worstCaseDayNumber = analysis.DayNumberUsedByPatients(analysis.WorstCaseSlimScenario(instance))
	}

	var fatCores []model.FatCore
	var slimCores []model.SlimCore

	var fatMasterModel *master.FatModel
	var slimMasterModel *master.SlimModel

	logger.Info("building master model")
	if fatMaster {
		fatMasterModel, err = master.BuildFatModel(instance, cfg.Master.AdditionalInfo)
	} else {
		slimMasterModel, err = master.BuildSlimModel(instance, cfg.Master.AdditionalInfo)
	}
	if err != nil {
		return model.FinalResult{}, fmt.Errorf("driver: build master model: %w", err)
	}

	var subsumptions map[model.CareUnitName]map[model.DayName]map[model.DayName]bool
	if cfg.CoreDayExpansion {
		logger.Info("computing operator subsumptions")
		subsumptions, err = cores.GetSubsumptions(ctx, instance, cfg.Subsumption.TimeLimit())
		if err != nil {
			return model.FinalResult{}, fmt.Errorf("driver: subsumptions: %w", err)
		}
	}

	expansionOpts := cores.ExpansionOptions{
		PatientExpansion:       cfg.CorePatientExpansion,
		ServiceExpansion:       cfg.CoreServiceExpansion,
		OperatorExpansion:      cfg.CoreOperatorExpansion,
		DayExpansion:           cfg.CoreDayExpansion,
		MaxSingleCoreExpansion: cfg.MaxSingleCoreExpansion,
		TimeLimit:              cfg.CoreExpansion.TimeLimit(),
	}

	var allPossibleFatRequests map[model.DayName][]model.PatientServiceOperator
	var allPossibleSlimRequests map[model.DayName][]model.PatientService
	if fatMaster {
		allPossibleFatRequests = analysis.WorstCaseFatScenario(instance)
	} else {
		allPossibleSlimRequests = analysis.WorstCaseSlimScenario(instance)
	}

	var totalTimeElapsed time.Duration
	var finalResult model.FinalResult

	for iteration := 1; iteration <= cfg.MaxIteration; iteration++ {
		iterationName := model.IterationName(iteration)
		iterLog := logger.With(zap.Int("iteration", iteration))
		iterationPath := filepath.Join(outputPath, fmt.Sprintf("iter_%d", iteration))
		if collectors != nil {
			collectors.Iteration.Set(float64(iteration))
		}

		iterLog.Info("solving master")
		masterCtx, cancel := context.WithTimeout(ctx, cfg.Master.TimeLimit())
		var masterResult model.MasterResult
		masterStart := time.Now()
		if fatMaster {
			masterResult, err = fatMasterModel.Solve(masterCtx)
		} else {
			masterResult, err = slimMasterModel.Solve(masterCtx)
		}
		masterElapsed := time.Since(masterStart)
		cancel()
		if err != nil {
			return model.FinalResult{}, fmt.Errorf("driver: iteration %d: master solve: %w", iteration, err)
		}
		totalTimeElapsed += masterElapsed
		observeSolverSeconds(collectors, "master", masterElapsed)

		if errs := checkMasterResult(instance, masterResult); len(errs) > 0 {
			return model.FinalResult{}, stageErrorf(2, "driver: iteration %d: invalid master result: %v", iteration, errs)
		}

		if data, err := codec.EncodeMasterResult(masterResult); err == nil {
			_ = codec.WriteFile(filepath.Join(iterationPath, "master_result.json"), data)
		}

		masterResultValue := analysis.ResultValue(instance, masterResult.Scheduled, cfg.Master.AdditionalInfo, worstCaseDayNumber)
		iterLog.Info("master solved", zap.Float64("optimistic_value", masterResultValue))

		var previousCacheDayIterations map[model.DayName]model.IterationName
		if cfg.UseCache && iteration > 2 {
			cacheModel, err := cachemodel.Build(instance, cache)
			if err != nil {
				return model.FinalResult{}, fmt.Errorf("driver: iteration %d: build cache model: %w", iteration, err)
			}
			cacheCtx, cancel := context.WithTimeout(ctx, cfg.Cache.TimeLimit())
			cacheStart := time.Now()
			matching, err := cacheModel.Solve(cacheCtx)
			cacheElapsed := time.Since(cacheStart)
			cancel()
			totalTimeElapsed += cacheElapsed
			observeSolverSeconds(collectors, "cache", cacheElapsed)
			if err != nil {
				return model.FinalResult{}, fmt.Errorf("driver: iteration %d: cache solve: %w", iteration, err)
			}

			cacheFinalResult, err := exhumeResultFromMatching(matching, outputPath)
			if err != nil {
				return model.FinalResult{}, fmt.Errorf("driver: iteration %d: exhume cache result: %w", iteration, err)
			}
			cachestore.FixCacheFinalResult(instance, &cacheFinalResult)

			if data, err := codec.EncodeFinalResult(cacheFinalResult); err == nil {
				_ = codec.WriteFile(filepath.Join(iterationPath, "cache_final_result.json"), data)
			}

			if errs := checkers.CheckFinalResult(instance, cacheFinalResult); len(errs) > 0 {
				return model.FinalResult{}, stageErrorf(3, "driver: iteration %d: invalid cache final result: %v", iteration, errs)
			}

			cacheFinalResultValue := analysis.ResultValue(instance, cacheFinalResult.Scheduled, cfg.Master.AdditionalInfo, worstCaseDayNumber)

			if bestCacheResultValue == nil || cacheFinalResultValue > *bestCacheResultValue {
				bestCacheResultValue = &cacheFinalResultValue
			}
			if bestFinalResultValue == nil || cacheFinalResultValue > *bestFinalResultValue {
				bestFinalResultValue = &cacheFinalResultValue
				if data, err := codec.EncodeFinalResult(cacheFinalResult); err == nil {
					_ = codec.WriteFile(filepath.Join(outputPath, "best_final_result_so_far.json"), data)
				}
			}
			if collectors != nil && bestFinalResultValue != nil {
				collectors.BestValue.Set(*bestFinalResultValue)
			}

			if cacheFinalResultValue >= masterResultValue {
				iterLog.Info("reached optimum via cache", zap.Float64("value", cacheFinalResultValue))
				finalResult = cacheFinalResult
				break
			}
		}

		if cfg.UseCache && iteration > 1 {
			previousCacheDayIterations = cachestore.PreviousCacheDayIterations(cache, instance, masterResult)
		}

		subproblemInstances := make(map[model.DayName]model.SubproblemInstance)
		subproblemResults := make(map[model.DayName]model.SubproblemResult)

		dayNames := sortedDayKeys(masterResult.Scheduled)
		for _, dayName := range dayNames {
			subInst := subproblemInstanceFromMasterResult(instance, masterResult, dayName)
			subproblemInstances[dayName] = subInst

			if data, err := codec.EncodeSubproblemInstance(subInst); err == nil {
				_ = codec.WriteFile(filepath.Join(iterationPath, fmt.Sprintf("subproblem_day_%d_instance.json", dayName)), data)
			}
			if errs := checkers.CheckSubproblemInstance(subInst); len(errs) > 0 {
				return model.FinalResult{}, stageErrorf(4, "driver: iteration %d: invalid subproblem instance for day %d: %v", iteration, dayName, errs)
			}

			var subResult model.SubproblemResult
			if cfg.UseCache && iteration > 1 {
				if cachedIteration, ok := previousCacheDayIterations[dayName]; ok {
					iterLog.Info("reusing cached day", zap.Int("day", int(dayName)), zap.Int("cached_iteration", int(cachedIteration)))
					data, err := codec.ReadFile(filepath.Join(outputPath, fmt.Sprintf("iter_%d", cachedIteration), fmt.Sprintf("subproblem_day_%d_result.json", dayName)))
					if err != nil {
						return model.FinalResult{}, fmt.Errorf("driver: iteration %d: read cached day %d: %w", iteration, dayName, err)
					}
					subResult, err = codec.DecodeSubproblemResult(data)
					if err != nil {
						return model.FinalResult{}, fmt.Errorf("driver: iteration %d: decode cached day %d: %w", iteration, dayName, err)
					}
					cachestore.RemoveRequestsNotPresent(&subResult, masterResult, dayName)
				}
			}

			if subResult.Scheduled == nil && subResult.Rejected == nil {
				subproblemStart := time.Now()
				subResult, err = solveSubproblem(ctx, cfg, fatSubproblem, subInst, masterResult, dayName)
				subproblemElapsed := time.Since(subproblemStart)
				totalTimeElapsed += subproblemElapsed
				observeSolverSeconds(collectors, "subproblem", subproblemElapsed)
				if err != nil {
					return model.FinalResult{}, fmt.Errorf("driver: iteration %d: subproblem day %d: %w", iteration, dayName, err)
				}
			}

			if data, err := codec.EncodeSubproblemResult(subResult); err == nil {
				_ = codec.WriteFile(filepath.Join(iterationPath, fmt.Sprintf("subproblem_day_%d_result.json", dayName)), data)
			}
			if errs := checkers.CheckSubproblemResult(subInst, subResult); len(errs) > 0 {
				return model.FinalResult{}, stageErrorf(5, "driver: iteration %d: invalid subproblem result for day %d: %v", iteration, dayName, errs)
			}

			subproblemResults[dayName] = subResult
		}

		finalResult = composeFinalResult(instance, masterResult, subproblemResults)
		if data, err := codec.EncodeFinalResult(finalResult); err == nil {
			_ = codec.WriteFile(filepath.Join(iterationPath, "final_result.json"), data)
		}
		if errs := checkers.CheckFinalResult(instance, finalResult); len(errs) > 0 {
			return model.FinalResult{}, stageErrorf(6, "driver: iteration %d: invalid final result: %v", iteration, errs)
		}

		finalResultValue := analysis.ResultValue(instance, finalResult.Scheduled, cfg.Master.AdditionalInfo, worstCaseDayNumber)
		iterLog.Info("composed final result", zap.Float64("value", finalResultValue))

		if bestSubproblemResultValue == nil || finalResultValue > *bestSubproblemResultValue {
			bestSubproblemResultValue = &finalResultValue
		}
		if bestFinalResultValue == nil || finalResultValue > *bestFinalResultValue {
			bestFinalResultValue = &finalResultValue
			if data, err := codec.EncodeFinalResult(finalResult); err == nil {
				_ = codec.WriteFile(filepath.Join(outputPath, "best_final_result_so_far.json"), data)
			}
		}
		if collectors != nil && bestFinalResultValue != nil {
			collectors.BestValue.Set(*bestFinalResultValue)
		}

		if finalResultValue >= masterResultValue {
			iterLog.Info("reached optimum", zap.Float64("value", finalResultValue))
			break
		}

		var daysWithRejected []model.DayName
		for dayName, result := range subproblemResults {
			if len(result.Rejected) > 0 {
				daysWithRejected = append(daysWithRejected, dayName)
			}
		}
		if len(daysWithRejected) == 0 {
			iterLog.Info("all days fully satisfied", zap.Float64("value", finalResultValue))
			break
		}

		if cfg.StructureType == "fat-fat" && containsInfo(cfg.Subproblem.AdditionalInfo, preemptiveForbiddingInfo) {
			preemptiveCores := findPreemptiveCores(masterResult, subproblemResults)
			if len(preemptiveCores) > 0 {
				fatMasterModel.AddCoreCuts(preemptiveCores)
				iterLog.Info("added preemptive cores", zap.Int("count", len(preemptiveCores)))
			}
		}

		if cfg.StructureType == "fat-fat" {
			realignFatSubproblemOperators(masterResult, subproblemResults)
		}

		if fatMaster {
			newFatCores, err := collectFatCores(ctx, cfg, instance, subproblemResults, subproblemInstances)
			if err != nil {
				return model.FinalResult{}, fmt.Errorf("driver: iteration %d: cores: %w", iteration, err)
			}
			if cfg.CorePatientExpansion || cfg.CoreServiceExpansion || cfg.CoreOperatorExpansion || cfg.CoreDayExpansion {
				expanded, err := cores.ExpandFatCores(ctx, newFatCores, allPossibleFatRequests, instance.Services, expansionOpts, subsumptions)
				if err != nil {
					return model.FinalResult{}, fmt.Errorf("driver: iteration %d: core expansion: %w", iteration, err)
				}
				newFatCores = cores.DeduplicateFatCores(cores.AggregateFatCoreLists(newFatCores, expanded))
				if errs := checkers.CheckFatCores(instance, newFatCores); len(errs) > 0 {
					return model.FinalResult{}, stageErrorf(14, "driver: iteration %d: invalid expanded cores: %v", iteration, errs)
				}
			}
			if collectors != nil {
				collectors.CoreCount.Add(float64(len(newFatCores)))
			}
			fatCores = append(fatCores, newFatCores...)
			fatMasterModel.AddCoreCuts(fatCores)
		} else {
			newSlimCores, err := collectSlimCores(ctx, cfg, instance, subproblemResults, subproblemInstances)
			if err != nil {
				return model.FinalResult{}, fmt.Errorf("driver: iteration %d: cores: %w", iteration, err)
			}
			if cfg.CorePatientExpansion || cfg.CoreServiceExpansion || cfg.CoreOperatorExpansion || cfg.CoreDayExpansion {
				expanded, err := cores.ExpandSlimCores(ctx, newSlimCores, allPossibleSlimRequests, instance.Services, expansionOpts, subsumptions)
				if err != nil {
					return model.FinalResult{}, fmt.Errorf("driver: iteration %d: core expansion: %w", iteration, err)
				}
				newSlimCores = cores.DeduplicateSlimCores(cores.AggregateSlimCoreLists(newSlimCores, expanded))
				if errs := checkers.CheckSlimCores(instance, newSlimCores); len(errs) > 0 {
					return model.FinalResult{}, stageErrorf(14, "driver: iteration %d: invalid expanded cores: %v", iteration, errs)
				}
			}
			if collectors != nil {
				collectors.CoreCount.Add(float64(len(newSlimCores)))
			}
			slimCores = append(slimCores, newSlimCores...)
			slimMasterModel.AddCoreCuts(slimCores)
		}

		if cfg.UseCache {
			cachestore.AddFinalResultToCache(cache, instance, finalResult, iterationName)
		}

		if pct := cfg.EarlyStopOptimumApproximationPercentage; pct > 0 && pct != 1.0 {
			if finalResultValue >= masterResultValue*pct {
				iterLog.Info("reached optimum approximation", zap.Float64("final", finalResultValue), zap.Float64("master", masterResultValue))
				break
			}
		}

		if cfg.TotalTimeLimitSeconds > 0 && totalTimeElapsed >= cfg.TotalTimeLimit() {
			iterLog.Info("reached total time limit", zap.Duration("elapsed", totalTimeElapsed))
			break
		}
	}

	return finalResult, nil
}

func observeSolverSeconds(collectors *metrics.Collectors, phase string, d time.Duration) {
	if collectors == nil {
		return
	}
	collectors.SolverSeconds.WithLabelValues(phase).Observe(d.Seconds())
}

func checkMasterResult(instance model.MasterInstance, r model.MasterResult) []string {
	return checkers.CheckMasterResult(instance, r)
}

func sortedDayKeys(scheduled map[model.DayName][]model.PatientServiceOperator) []model.DayName {
	keys := make([]model.DayName, 0, len(scheduled))
	for k := range scheduled {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func containsInfo(info []string, want string) bool {
	for _, s := range info {
		if s == want {
			return true
		}
	}
	return false
}

func exhumeResultFromMatching(matching model.CacheMatch, outputPath string) (model.FinalResult, error) {
	final := model.NewFinalResult()
	for dayName, iterationName := range matching {
		data, err := codec.ReadFile(filepath.Join(outputPath, fmt.Sprintf("iter_%d", iterationName), fmt.Sprintf("subproblem_day_%d_result.json", dayName)))
		if err != nil {
			return model.FinalResult{}, err
		}
		subResult, err := codec.DecodeSubproblemResult(data)
		if err != nil {
			return model.FinalResult{}, err
		}
		final.Scheduled[dayName] = subResult.Scheduled
	}
	return final, nil
}

func solveSubproblem(ctx context.Context, cfg config.Config, fatSubproblem bool, subInst model.SubproblemInstance, masterResult model.MasterResult, dayName model.DayName) (model.SubproblemResult, error) {
	subCtx, cancel := context.WithTimeout(ctx, cfg.Subproblem.TimeLimit())
	defer cancel()

	if cfg.StructureType == "fat-fat" && containsInfo(cfg.Subproblem.AdditionalInfo, preemptiveForbiddingInfo) {
		forgetful := subInst.Slim()
		m, err := subproblem.BuildSlimModel(forgetful, cfg.Subproblem.AdditionalInfo, masterResult.Scheduled[dayName])
		if err != nil {
			return model.SubproblemResult{}, err
		}
		return m.Solve(subCtx)
	}

	if fatSubproblem {
		m, err := subproblem.BuildSlimModel(subInst, cfg.Subproblem.AdditionalInfo, nil)
		if err != nil {
			return model.SubproblemResult{}, err
		}
		return m.Solve(subCtx)
	}

	m, err := subproblem.BuildFatModel(subInst)
	if err != nil {
		return model.SubproblemResult{}, err
	}
	return m.Solve(subCtx)
}

// findPreemptiveCores detects, for fat-fat with preemptive_forbidding,
// days the subproblem fully satisfied but with a different operator
// assignment than the master proposed, and forbids repeating that exact
// master proposal, grounded on solve_instance's preemptive-core block.
func findPreemptiveCores(masterResult model.MasterResult, subproblemResults map[model.DayName]model.SubproblemResult) []model.FatCore {
	var out []model.FatCore

	for dayName, result := range subproblemResults {
		masterScheduled := masterResult.Scheduled[dayName]
		if len(result.Rejected) > 0 || len(result.Scheduled) != len(masterScheduled) {
			continue
		}

		equal := true
		for _, request := range masterScheduled {
			found := false
			for _, placed := range result.Scheduled {
				if placed.Patient == request.Patient && placed.Service == request.Service && placed.Operator == request.Operator {
					found = true
					break
				}
			}
			if !found {
				equal = false
				break
			}
		}

		if !equal && len(masterScheduled) > 0 {
			out = append(out, model.FatCore{
				Days:       []model.DayName{dayName},
				Reason:     []model.PatientServiceOperator{masterScheduled[0]},
				Components: append([]model.PatientServiceOperator(nil), masterScheduled...),
			})
		}
	}

	return out
}

// realignFatSubproblemOperators copies the master's chosen operator back
// onto every subproblem-placed request, for fat-fat instances, so the
// cores derived afterward reference the master's own request identities,
// grounded on solve_instance's operator-realignment block.
func realignFatSubproblemOperators(masterResult model.MasterResult, subproblemResults map[model.DayName]model.SubproblemResult) {
	for dayName, result := range subproblemResults {
		if len(result.Rejected) == 0 {
			continue
		}
		dailyMaster := masterResult.Scheduled[dayName]

		for i, scheduled := range result.Scheduled {
			for _, request := range dailyMaster {
				if request.Patient == scheduled.Patient && request.Service == scheduled.Service {
					result.Scheduled[i].Operator = request.Operator
					break
				}
			}
		}
		subproblemResults[dayName] = result
	}
}
