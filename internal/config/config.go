// Package config loads the driver's YAML configuration: a base block plus
// named group overrides, grounded on original_source/solver.py's own
// config['base'] / config['groups'] shape and loaded with gopkg.in/yaml.v3
// (the Go counterpart of the Python prototype's yaml loader), the way
// KhryptorGraphics-OllamaMax's training config manager decodes its own
// YAML profiles into tagged structs.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PhaseConfig is the time/memory/solver-flag block repeated for every MILP
// phase (master, subproblem, cache, core_pruning, core_expansion,
// subsumption), grounded on each phase's config['<phase>']['time_limit'] /
// ['memory_limit'] / ['additional_info'] usage throughout solver.py.
type PhaseConfig struct {
	TimeLimitSeconds float64  `yaml:"time_limit"`
	MemoryLimitMB    int      `yaml:"memory_limit"`
	AdditionalInfo   []string `yaml:"additional_info"`
}

// TimeLimit converts TimeLimitSeconds to a time.Duration for use with
// context.WithTimeout around a solver call.
func (p PhaseConfig) TimeLimit() time.Duration {
	return time.Duration(p.TimeLimitSeconds * float64(time.Second))
}

// Config is one fully-resolved run configuration (base merged with a
// group's overrides), grounded on the config keys solver.py reads via
// config['...'] throughout solve_instance and get_preliminary_solving_info.
type Config struct {
	StructureType string `yaml:"structure_type"`
	ProblemType   string `yaml:"problem_type"`
	CoreType      string `yaml:"core_type"`

	UseCache     bool `yaml:"use_cache"`
	MaxIteration int  `yaml:"max_iteration"`

	TotalTimeLimitSeconds                   float64 `yaml:"total_time_limit"`
	EarlyStopOptimumApproximationPercentage float64 `yaml:"early_stop_optimum_approximation_percentage"`

	CorePatientExpansion      bool `yaml:"core_patient_expansion"`
	CoreServiceExpansion      bool `yaml:"core_service_expansion"`
	CoreOperatorExpansion     bool `yaml:"core_operator_expansion"`
	CoreDayExpansion          bool `yaml:"core_day_expansion"`
	MaxSingleCoreExpansion    int  `yaml:"max_single_core_expansion"`
	PostPruningIrreducibility bool `yaml:"post_pruning_irreducibility"`

	Master        PhaseConfig `yaml:"master"`
	Subproblem    PhaseConfig `yaml:"subproblem"`
	Cache         PhaseConfig `yaml:"cache"`
	CorePruning   PhaseConfig `yaml:"core_pruning"`
	CoreExpansion PhaseConfig `yaml:"core_expansion"`
	Subsumption   PhaseConfig `yaml:"subsumption"`

	ConfigsToDo      []string `yaml:"configs_to_do"`
	ConfigsToAvoid   []string `yaml:"configs_to_avoid"`
	GroupsToDo       []string `yaml:"groups_to_do"`
	GroupsToAvoid    []string `yaml:"groups_to_avoid"`
	InstancesToDo    []string `yaml:"instances_to_do"`
	InstancesToAvoid []string `yaml:"instances_to_avoid"`
}

// TotalTimeLimit converts TotalTimeLimitSeconds to a time.Duration.
func (c Config) TotalTimeLimit() time.Duration {
	return time.Duration(c.TotalTimeLimitSeconds * float64(time.Second))
}

// File is the on-disk shape: a base configuration and a set of named group
// overrides, each a partial map of the same keys, grounded on solver.py's
// `config['base']` / `config['groups']` top-level structure.
type File struct {
	Base   map[string]interface{}            `yaml:"base"`
	Groups map[string]map[string]interface{} `yaml:"groups"`
}

// Load reads and parses a config file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &f, nil
}

// GroupNames returns every configured group name.
func (f *File) GroupNames() []string {
	names := make([]string, 0, len(f.Groups))
	for name := range f.Groups {
		names = append(names, name)
	}
	return names
}

// Resolve merges groupName's overrides onto the base block and decodes the
// result into a Config, grounded on get_preliminary_solving_info's
// `group_config = copy.deepcopy(base_config); for key, value in
// config_diff_from_base.items(): group_config[key] = value` — a shallow,
// top-level-key overwrite, not a recursive merge: a group that overrides
// `master` replaces the whole phase block, it does not merge individual
// phase fields.
func (f *File) Resolve(groupName string) (Config, error) {
	merged := make(map[string]interface{}, len(f.Base))
	for k, v := range f.Base {
		merged[k] = v
	}
	for k, v := range f.Groups[groupName] {
		merged[k] = v
	}

	data, err := yaml.Marshal(merged)
	if err != nil {
		return Config{}, fmt.Errorf("config: remarshal group %q: %w", groupName, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode group %q: %w", groupName, err)
	}
	return cfg, nil
}

// IsCombinationToDo reports whether the given (config, group, instance)
// triple should be solved under cfg's filters, grounded on
// is_combination_to_do. A nil name skips that level's check, matching the
// source's three independent call sites (config-level, group-level,
// instance-level) that each pass None for the names not yet known.
func IsCombinationToDo(configName, groupName, instanceName *string, cfg Config) bool {
	if configName != nil && !passesFilter(*configName, cfg.ConfigsToDo, cfg.ConfigsToAvoid) {
		return false
	}
	if groupName != nil && !passesFilter(*groupName, cfg.GroupsToDo, cfg.GroupsToAvoid) {
		return false
	}
	if instanceName != nil && !passesFilter(*instanceName, cfg.InstancesToDo, cfg.InstancesToAvoid) {
		return false
	}
	return true
}

func passesFilter(name string, toDo, toAvoid []string) bool {
	if containsString(toAvoid, name) {
		return false
	}
	if len(toDo) > 0 && !containsString(toDo, "all") && !containsString(toDo, name) {
		return false
	}
	return true
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
