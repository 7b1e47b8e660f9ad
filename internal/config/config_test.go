package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleConfig = `
base:
  structure_type: decomposed
  problem_type: fat
  core_type: pruned
  use_cache: true
  max_iteration: 50
  master:
    time_limit: 30
    memory_limit: 512
    additional_info: [warm_start]
groups:
  quick:
    max_iteration: 5
    master:
      time_limit: 5
  filtered:
    groups_to_do: [filtered]
    instances_to_avoid: [slow-instance]
`

func writeSampleConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatalf("failed to write sample config: %v", err)
	}
	return path
}

func TestLoadAndResolveMergesBaseAndGroup(t *testing.T) {
	path := writeSampleConfig(t)
	file, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg, err := file.Resolve("quick")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if cfg.StructureType != "decomposed" {
		t.Fatalf("StructureType = %q, want decomposed (inherited from base)", cfg.StructureType)
	}
	if cfg.MaxIteration != 5 {
		t.Fatalf("MaxIteration = %d, want 5 (overridden by group)", cfg.MaxIteration)
	}
	if cfg.Master.TimeLimitSeconds != 5 {
		t.Fatalf("Master.TimeLimitSeconds = %v, want 5 (group replaces the whole phase block)", cfg.Master.TimeLimitSeconds)
	}
	if len(cfg.Master.AdditionalInfo) != 0 {
		t.Fatalf("Master.AdditionalInfo = %v, want empty: group override replaces the phase block wholesale, not merges fields", cfg.Master.AdditionalInfo)
	}
}

func TestResolveUnknownGroupFallsBackToBase(t *testing.T) {
	path := writeSampleConfig(t)
	file, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg, err := file.Resolve("does-not-exist")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.MaxIteration != 50 {
		t.Fatalf("MaxIteration = %d, want 50 (base, unmodified)", cfg.MaxIteration)
	}
}

func TestGroupNames(t *testing.T) {
	path := writeSampleConfig(t)
	file, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	names := file.GroupNames()
	if len(names) != 2 {
		t.Fatalf("GroupNames() = %v, want 2 entries", names)
	}
}

func TestPhaseConfigTimeLimit(t *testing.T) {
	p := PhaseConfig{TimeLimitSeconds: 1.5}
	if got := p.TimeLimit(); got != 1500*time.Millisecond {
		t.Fatalf("TimeLimit() = %v, want 1.5s", got)
	}
}

func TestTotalTimeLimit(t *testing.T) {
	c := Config{TotalTimeLimitSeconds: 2}
	if got := c.TotalTimeLimit(); got != 2*time.Second {
		t.Fatalf("TotalTimeLimit() = %v, want 2s", got)
	}
}

func TestIsCombinationToDoFilters(t *testing.T) {
	cfg := Config{
		GroupsToDo:       []string{"filtered"},
		InstancesToAvoid: []string{"slow-instance"},
	}

	group := "filtered"
	otherGroup := "other"
	instance := "slow-instance"
	okInstance := "fast-instance"

	if !IsCombinationToDo(nil, &group, nil, cfg) {
		t.Fatalf("IsCombinationToDo(group=filtered) = false, want true")
	}
	if IsCombinationToDo(nil, &otherGroup, nil, cfg) {
		t.Fatalf("IsCombinationToDo(group=other) = true, want false (not in groups_to_do)")
	}
	if IsCombinationToDo(nil, nil, &instance, cfg) {
		t.Fatalf("IsCombinationToDo(instance=slow-instance) = true, want false (in instances_to_avoid)")
	}
	if !IsCombinationToDo(nil, nil, &okInstance, cfg) {
		t.Fatalf("IsCombinationToDo(instance=fast-instance) = false, want true")
	}
}

func TestIsCombinationToDoAllKeyword(t *testing.T) {
	cfg := Config{ConfigsToDo: []string{"all"}}
	name := "anything"
	if !IsCombinationToDo(&name, nil, nil, cfg) {
		t.Fatalf("IsCombinationToDo() with configs_to_do=[all] = false, want true for any name")
	}
}
