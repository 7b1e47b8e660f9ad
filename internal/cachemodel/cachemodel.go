// Package cachemodel builds the cache-matching MILP: given the cache of
// previously-solved (iteration, day) packings for each request window, pick
// exactly one iteration per day so that the set of requests this choice
// satisfies is maximized, grounded on
// original_source/src/milp_models/cache_model.py.
package cachemodel

import (
	"context"
	"fmt"
	"sort"

	"github.com/fevancin/Scheduler-Project/internal/model"
	"github.com/fevancin/Scheduler-Project/internal/solver"
)

type choiceKey struct {
	Iteration model.IterationName
	Day       model.DayName
}

// Model is the cache-matching MILP for a single master instance and its
// accumulated cache.
type Model struct {
	instance model.MasterInstance
	cache    model.Cache
	problem  *solver.Problem

	choose map[choiceKey]*solver.Variable
	window map[model.PatientServiceWindow]*solver.Variable
}

// Build constructs the cache-matching model over instance and cache.
func Build(instance model.MasterInstance, cache model.Cache) (*Model, error) {
	problem := solver.NewProblem()
	problem.Maximize()

	m := &Model{
		instance: instance,
		cache:    cache,
		problem:  &problem,
		choose:   make(map[choiceKey]*solver.Variable),
		window:   make(map[model.PatientServiceWindow]*solver.Variable),
	}

	dayNames := make(map[model.DayName]bool)
	for _, iterDays := range cache {
		for _, id := range iterDays {
			dayNames[id.Day] = true
			key := choiceKey{Iteration: id.Iteration, Day: id.Day}
			if _, ok := m.choose[key]; !ok {
				m.choose[key] = problem.AddVariable(fmt.Sprintf("choose|%s|%d", id.Iteration, id.Day)).IsInteger().UpperBound(1)
			}
		}
	}

	for request, iterDays := range cache {
		windowVar := problem.AddVariable(fmt.Sprintf("window|%s|%s|%d|%d", request.Patient, request.Service, request.Window.Start, request.Window.End)).IsInteger().UpperBound(1)
		m.window[request] = windowVar

		// link_choose_to_window_variables: sum(choose) >= window
		c := problem.AddConstraint().SmallerThanOrEqualTo(0)
		c.AddExpression(1, windowVar)
		for _, id := range iterDays {
			c.AddExpression(-1, m.choose[choiceKey{Iteration: id.Iteration, Day: id.Day}])
		}
	}

	// iteration_chooses_one_day
	byDay := make(map[model.DayName][]choiceKey)
	for key := range m.choose {
		byDay[key.Day] = append(byDay[key.Day], key)
	}
	for day, keys := range byDay {
		_ = day
		c := problem.AddConstraint().EqualTo(1)
		for _, key := range keys {
			c.AddExpression(1, m.choose[key])
		}
	}

	for request, windowVar := range m.window {
		svc, ok := instance.Services[request.Service]
		if !ok {
			continue
		}
		pat, ok := instance.Patients[request.Patient]
		if !ok {
			continue
		}
		windowVar.SetCoeff(float64(svc.Duration) * float64(pat.Priority))
	}

	_ = dayNames
	return m, nil
}

// Solve runs the narrow MILP port and returns the chosen (day -> iteration)
// matching.
func (m *Model) Solve(ctx context.Context) (model.CacheMatch, error) {
	soln, err := m.problem.Solve(ctx)
	if err != nil {
		return nil, err
	}

	matching := make(model.CacheMatch)
	for key, choiceVar := range m.choose {
		val, err := soln.GetValueFor(choiceVar.Name())
		if err != nil {
			return nil, err
		}
		if val >= 0.5 {
			matching[key.Day] = key.Iteration
		}
	}

	return matching, nil
}

// SortedDays returns the matched days in ascending order, matching the
// source's "ordina le chiavi" sort-by-key before returning the matching.
func SortedDays(matching model.CacheMatch) []model.DayName {
	days := make([]model.DayName, 0, len(matching))
	for d := range matching {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}
