// Package cachestore maintains and repairs the solution cache
// (model.Cache): recording which (iteration, day) pairs already satisfy a
// given obligation, and fixing up a composed final result so each window
// is honored by at most one day and every unsatisfied window ends up
// rejected. Grounded on original_source/src/cache/cache.py.
package cachestore

import "github.com/fevancin/Scheduler-Project/internal/model"

// IsRequestAlreadyPresent reports whether every obligation in requestsToAdd
// is already recorded against the same (iteration, day) in cache for
// dayName — i.e. whether this exact combination of reused requests has
// already been cached, grounded on is_request_already_present.
func IsRequestAlreadyPresent(cache model.Cache, requestsToAdd map[model.PatientServiceWindow]bool, dayName model.DayName) bool {
	var possible map[model.IterationDay]bool
	started := false

	for request := range requestsToAdd {
		entries, ok := cache[request]
		if !ok {
			return false
		}

		if !started {
			possible = make(map[model.IterationDay]bool)
			for _, id := range entries {
				if id.Day == dayName {
					possible[id] = true
				}
			}
			started = true
		} else {
			present := make(map[model.IterationDay]bool, len(entries))
			for _, id := range entries {
				present[id] = true
			}
			for id := range possible {
				if !present[id] {
					delete(possible, id)
				}
			}
		}

		if len(possible) == 0 {
			return false
		}
	}

	return true
}

// AddFinalResultToCache records iterationName's scheduled requests in
// cache, keyed by the specific window each request's day falls within,
// unless that exact combination is already cached for the day, grounded on
// add_final_result_to_cache.
func AddFinalResultToCache(cache model.Cache, instance model.MasterInstance, result model.FinalResult, iterationName model.IterationName) {
	for dayName, requests := range result.Scheduled {
		requestsToAdd := make(map[model.PatientServiceWindow]bool)

		for _, request := range requests {
			patient, ok := instance.Patients[request.Patient]
			if !ok {
				continue
			}
			for _, window := range patient.Requests[request.Service] {
				if window.Contains(dayName) {
					requestsToAdd[model.PatientServiceWindow{Patient: request.Patient, Service: request.Service, Window: window}] = true
				}
			}
		}

		if IsRequestAlreadyPresent(cache, requestsToAdd, dayName) {
			continue
		}

		for request := range requestsToAdd {
			cache.Add(request, model.IterationDay{Iteration: iterationName, Day: dayName})
		}
	}
}

// FixCacheFinalResult repairs a composed final result in place: for every
// (patient, service) window, it drops every scheduled occurrence after the
// first (a window can only be honored once, but a stale cache reuse can
// place it on more than one of its days), then records every window that
// ended up honored by none of its days as rejected, grounded on
// fix_cache_final_result.
func FixCacheFinalResult(instance model.MasterInstance, result *model.FinalResult) {
	for patientName, patient := range instance.Patients {
		for serviceName, windows := range patient.Requests {
			for _, window := range windows {
				satisfied := false
				toRemove := make(map[model.DayName]model.PatientServiceOperatorTimeSlot)

				for dayName := window.Start; dayName <= window.End; dayName++ {
					for _, request := range result.Scheduled[dayName] {
						if request.Patient == patientName && request.Service == serviceName {
							if satisfied {
								toRemove[dayName] = request
							}
							satisfied = true
						}
					}
				}

				for dayName, request := range toRemove {
					result.Scheduled[dayName] = removeScheduled(result.Scheduled[dayName], request)
				}
			}
		}
	}

	for patientName, patient := range instance.Patients {
		for serviceName, windows := range patient.Requests {
			for _, window := range windows {
				satisfied := false

				for dayName := window.Start; dayName <= window.End && !satisfied; dayName++ {
					for _, request := range result.Scheduled[dayName] {
						if request.Patient == patientName && request.Service == serviceName {
							satisfied = true
							break
						}
					}
				}

				if !satisfied {
					rejected := model.PatientServiceWindow{Patient: patientName, Service: serviceName, Window: window}
					if !containsWindow(result.Rejected, rejected) {
						result.Rejected = append(result.Rejected, rejected)
					}
				}
			}
		}
	}
}

func removeScheduled(requests []model.PatientServiceOperatorTimeSlot, target model.PatientServiceOperatorTimeSlot) []model.PatientServiceOperatorTimeSlot {
	for i, r := range requests {
		if r == target {
			return append(append([]model.PatientServiceOperatorTimeSlot(nil), requests[:i]...), requests[i+1:]...)
		}
	}
	return requests
}

func containsWindow(windows []model.PatientServiceWindow, target model.PatientServiceWindow) bool {
	for _, w := range windows {
		if w == target {
			return true
		}
	}
	return false
}

// PreviousCacheDayIterations finds, for each day masterResult schedules
// anything on, the earliest already-cached iteration whose persisted
// subproblem result covers every one of that day's requests, so the
// driver can reuse that iteration's file instead of re-solving the day.
//
// Grounded on solver.py's get_previous_cache_day_iterations call, whose own
// definition is missing from src/cache/cache.py under that name (cache.py
// stops at fix_cache_final_result); this is built from the call site's
// contract instead — reusing IsRequestAlreadyPresent's per-day
// intersection logic, keyed by day, returning the matched iteration rather
// than a bool.
func PreviousCacheDayIterations(cache model.Cache, instance model.MasterInstance, masterResult model.MasterResult) map[model.DayName]model.IterationName {
	matches := make(map[model.DayName]model.IterationName)

	for dayName, requests := range masterResult.Scheduled {
		requestsToAdd := make(map[model.PatientServiceWindow]bool)
		for _, request := range requests {
			patient, ok := instance.Patients[request.Patient]
			if !ok {
				continue
			}
			for _, window := range patient.Requests[request.Service] {
				if window.Contains(dayName) {
					requestsToAdd[model.PatientServiceWindow{Patient: request.Patient, Service: request.Service, Window: window}] = true
				}
			}
		}
		if len(requestsToAdd) == 0 {
			continue
		}

		if iteration, ok := commonCachedIteration(cache, requestsToAdd, dayName); ok {
			matches[dayName] = iteration
		}
	}

	return matches
}

func commonCachedIteration(cache model.Cache, requestsToAdd map[model.PatientServiceWindow]bool, dayName model.DayName) (model.IterationName, bool) {
	var possible map[model.IterationName]bool
	started := false

	for request := range requestsToAdd {
		entries, ok := cache[request]
		if !ok {
			return 0, false
		}

		present := make(map[model.IterationName]bool, len(entries))
		for _, id := range entries {
			if id.Day == dayName {
				present[id.Iteration] = true
			}
		}

		if !started {
			possible = present
			started = true
		} else {
			for iter := range possible {
				if !present[iter] {
					delete(possible, iter)
				}
			}
		}

		if len(possible) == 0 {
			return 0, false
		}
	}

	best, first := model.IterationName(0), true
	for iter := range possible {
		if first || iter < best {
			best = iter
			first = false
		}
	}
	return best, true
}

// RemoveRequestsNotPresent trims a subproblem result reused from a previous
// iteration's cache entry down to only the requests the current iteration's
// master result actually scheduled for dayName. A cached result may have
// been computed against a different (typically larger) master proposal for
// that day, so reusing it verbatim could report requests this iteration
// never asked for. Grounded on solver.py's remove_requests_not_present
// call, whose own definition is likewise absent from the extracted
// src/common/tools.py.
//
// A slim master hasn't chosen an operator, so masterResult.Scheduled's
// entries carry an empty Operator while the reused subproblem result's
// entries carry whatever operator the subproblem itself picked; matching
// is done on the operator-agnostic (patient, service) pair in that case,
// and on the full (patient, service, operator) triple only when the master
// is fat.
func RemoveRequestsNotPresent(result *model.SubproblemResult, masterResult model.MasterResult, dayName model.DayName) {
	if masterResult.Fat {
		wanted := make(map[model.PatientServiceOperator]bool)
		for _, req := range masterResult.Scheduled[dayName] {
			wanted[req] = true
		}

		keptScheduled := result.Scheduled[:0]
		for _, s := range result.Scheduled {
			if wanted[s.Base()] {
				keptScheduled = append(keptScheduled, s)
			}
		}
		result.Scheduled = keptScheduled

		keptRejected := result.Rejected[:0]
		for _, r := range result.Rejected {
			if wanted[r] {
				keptRejected = append(keptRejected, r)
			}
		}
		result.Rejected = keptRejected
		return
	}

	wanted := make(map[model.PatientService]bool)
	for _, req := range masterResult.Scheduled[dayName] {
		wanted[req.Base()] = true
	}

	keptScheduled := result.Scheduled[:0]
	for _, s := range result.Scheduled {
		if wanted[s.Base().Base()] {
			keptScheduled = append(keptScheduled, s)
		}
	}
	result.Scheduled = keptScheduled

	keptRejected := result.Rejected[:0]
	for _, r := range result.Rejected {
		if wanted[r.Base()] {
			keptRejected = append(keptRejected, r)
		}
	}
	result.Rejected = keptRejected
}
