// Command scheduler is the CLI entry point for the iterative Benders
// solver: it walks a directory of instance groups under --input, resolves
// a YAML configuration's base/group overrides for each, and writes every
// iteration's artifacts under --output, grounded on
// original_source/solver.py's `if __name__ == '__main__'` driver block
// (ArgumentParser with -c/-i/-o/--overwrite) and built with the same CLI
// library the rest of the example pack's tools use,
// github.com/spf13/cobra.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fevancin/Scheduler-Project/internal/checkers"
	"github.com/fevancin/Scheduler-Project/internal/codec"
	"github.com/fevancin/Scheduler-Project/internal/config"
	"github.com/fevancin/Scheduler-Project/internal/driver"
	"github.com/fevancin/Scheduler-Project/internal/logging"
	"github.com/fevancin/Scheduler-Project/internal/metrics"
	"github.com/fevancin/Scheduler-Project/internal/model"
	"github.com/fevancin/Scheduler-Project/internal/monolithic"
)

// cliOptions holds the flag-bound state of the root command, grounded on
// solve.py's argparse Namespace (config/input/output/overwrite) plus two
// flags the Python script never needed because it had no always-on
// metrics server: verbose and metrics-addr.
type cliOptions struct {
	configPath  string
	inputPath   string
	outputPath  string
	overwrite   bool
	verbose     bool
	metricsAddr string
}

func main() {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Logic-based Benders decomposition solver for multi-day patient scheduling",
		Long: "Solves a multi-day resource-constrained patient/operator scheduling problem " +
			"by logic-based Benders decomposition: a master relaxation proposes assignments, " +
			"per-day subproblems check intra-day packing feasibility, and infeasibilities are " +
			"fed back to the master as no-good cuts until the optimum (or a stop criterion) is reached.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
		SilenceUsage: true,
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "location of the solving configuration YAML (required)")
	flags.StringVarP(&opts.inputPath, "input", "i", "", "location of master instance groups (required)")
	flags.StringVarP(&opts.outputPath, "output", "o", "", "where the output will be written (required)")
	flags.BoolVar(&opts.overwrite, "overwrite", false, "if output can overwrite previous files")
	flags.BoolVar(&opts.verbose, "verbose", false, "enable development-mode (human-readable, debug-level) logging")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "if set, serve Prometheus /metrics on this address while solving")
	_ = rootCmd.MarkFlagRequired("config")
	_ = rootCmd.MarkFlagRequired("input")
	_ = rootCmd.MarkFlagRequired("output")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "scheduler: %v\n", err)
		os.Exit(1)
	}
}

// run resolves every (config-group, instance-group, instance) combination
// under opts.inputPath against opts.configPath's groups and solves each
// one in turn, grounded on solver.py's top-level three-nested-loop driver
// (config groups outer, instance-group directories middle, instance JSON
// files inner).
func run(ctx context.Context, opts *cliOptions) error {
	logger, err := logging.Setup(opts.verbose)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer logger.Sync()

	var collectors *metrics.Collectors
	if opts.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		collectors = metrics.NewCollectors(reg)
		go func() {
			if err := metrics.Serve(opts.metricsAddr, reg); err != nil {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	configFile, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outputPath, 0o755); err != nil {
		return fmt.Errorf("create output directory %q: %w", opts.outputPath, err)
	}

	groupNames := configFile.GroupNames()
	sort.Strings(groupNames)

	totalSolved := 0
	worstExitCode := 0

	for _, configName := range groupNames {
		cfg, err := configFile.Resolve(configName)
		if err != nil {
			return fmt.Errorf("resolve config %q: %w", configName, err)
		}
		if !config.IsCombinationToDo(&configName, nil, nil, cfg) {
			continue
		}

		instanceGroupDirs, err := instanceGroupDirectories(opts.inputPath)
		if err != nil {
			return err
		}

		for _, groupDir := range instanceGroupDirs {
			groupName := filepath.Base(groupDir)
			if !config.IsCombinationToDo(&configName, &groupName, nil, cfg) {
				continue
			}

			instanceFiles, err := instanceJSONFiles(groupDir)
			if err != nil {
				return err
			}

			for _, instancePath := range instanceFiles {
				instanceName := strings.TrimSuffix(filepath.Base(instancePath), ".json")
				if !config.IsCombinationToDo(&configName, &groupName, &instanceName, cfg) {
					continue
				}

				solvingPath := filepath.Join(opts.outputPath, fmt.Sprintf("%s__%s__%s", configName, groupName, instanceName))
				if !opts.overwrite {
					if _, statErr := os.Stat(solvingPath); statErr == nil {
						logger.Warn("skipping: output directory already exists", zap.String("path", solvingPath))
						continue
					}
				}
				if err := os.MkdirAll(solvingPath, 0o755); err != nil {
					return fmt.Errorf("create solving directory %q: %w", solvingPath, err)
				}

				instanceLogger := logger.With(
					zap.String("config", configName),
					zap.String("group", groupName),
					zap.String("instance", instanceName),
				)

				code, err := solveOne(ctx, instanceLogger, collectors, cfg, configFile, configName, instancePath, solvingPath)
				totalSolved++
				if code > worstExitCode {
					worstExitCode = code
				}
				if err != nil {
					instanceLogger.Error("instance solve failed", zap.Int("exit_code", code), zap.Error(err))
				} else {
					instanceLogger.Info("instance solved", zap.Int("exit_code", code))
				}
			}
		}
	}

	logger.Info("run complete", zap.Int("instances_solved", totalSolved))
	if worstExitCode != 0 {
		os.Exit(worstExitCode)
	}
	return nil
}

// solveOne persists cfg as config.yaml alongside the solving path, decodes
// the instance at instancePath, and dispatches to either the monolithic
// reference solver or the iterative decomposition driver depending on
// cfg.StructureType, returning the spec.md §6 exit code for whatever
// outcome (or failure) resulted.
func solveOne(ctx context.Context, logger *zap.Logger, collectors *metrics.Collectors, cfg config.Config, configFile *config.File, configName string, instancePath, solvingPath string) (int, error) {
	if err := writeResolvedConfig(configFile, configName, solvingPath); err != nil {
		return 1, err
	}

	raw, err := codec.ReadFile(instancePath)
	if err != nil {
		return 1, fmt.Errorf("read instance %q: %w", instancePath, err)
	}
	instance, err := codec.DecodeMasterInstance(raw)
	if err != nil {
		return 1, fmt.Errorf("decode instance %q: %w", instancePath, err)
	}
	if errs := checkers.CheckMasterInstance(instance); len(errs) > 0 {
		return 1, fmt.Errorf("invalid instance %q: %v", instancePath, errs)
	}

	if cfg.StructureType == "monolithic" {
		return solveMonolithic(ctx, logger, cfg, instance, solvingPath)
	}

	final, err := driver.Run(ctx, logger, collectors, cfg, instance, solvingPath)
	if err != nil {
		return driver.ExitCode(err), err
	}
	logResultSummary(logger, instance, final)
	return 0, nil
}

// solveMonolithic runs the single-shot reference MILP instead of the
// Benders loop, for cfg.StructureType == "monolithic", grounded on
// single_pass_solver.py's own problem_type == 'monolithic' branch.
func solveMonolithic(ctx context.Context, logger *zap.Logger, cfg config.Config, instance model.MasterInstance, solvingPath string) (int, error) {
	m, err := monolithic.Build(instance, cfg.Master.AdditionalInfo)
	if err != nil {
		return 1, fmt.Errorf("build monolithic model: %w", err)
	}

	solveCtx, cancel := context.WithTimeout(ctx, cfg.Master.TimeLimit())
	defer cancel()
	final, err := m.Solve(solveCtx)
	if err != nil {
		return 1, fmt.Errorf("solve monolithic model: %w", err)
	}

	if errs := checkers.CheckFinalResult(instance, final); len(errs) > 0 {
		return 6, fmt.Errorf("invalid monolithic result: %v", errs)
	}

	encoded, err := codec.EncodeFinalResult(final)
	if err != nil {
		return 1, err
	}
	if err := codec.WriteFile(filepath.Join(solvingPath, "best_final_result_so_far.json"), encoded); err != nil {
		return 1, err
	}

	logResultSummary(logger, instance, final)
	return 0, nil
}

func logResultSummary(logger *zap.Logger, instance model.MasterInstance, final model.FinalResult) {
	scheduledCount := 0
	for _, requests := range final.Scheduled {
		scheduledCount += len(requests)
	}
	logger.Info("final result",
		zap.Int("scheduled", scheduledCount),
		zap.Int("rejected", len(final.Rejected)),
	)
}

// writeResolvedConfig persists the fully-merged configuration (base plus
// this config-group's overrides) as config.yaml under solvingPath, per
// spec.md §6's filesystem layout.
func writeResolvedConfig(configFile *config.File, configName, solvingPath string) error {
	merged := make(map[string]interface{}, len(configFile.Base))
	for k, v := range configFile.Base {
		merged[k] = v
	}
	for k, v := range configFile.Groups[configName] {
		merged[k] = v
	}
	data, err := yaml.Marshal(merged)
	if err != nil {
		return fmt.Errorf("marshal resolved config: %w", err)
	}
	return codec.WriteFile(filepath.Join(solvingPath, "config.yaml"), data)
}

// instanceGroupDirectories lists the immediate subdirectories of root,
// sorted, each expected to hold one instance group's *.json files.
func instanceGroupDirectories(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read input directory %q: %w", root, err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// instanceJSONFiles lists every *.json file directly inside dir, sorted.
func instanceJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read instance group directory %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
