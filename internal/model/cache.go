package model

// Cache records, for every specific (patient, service, window) obligation,
// every (iteration, day) pair whose persisted subproblem result contained
// it. It grows monotonically across iterations; no (iteration, day) tuple
// is ever inserted twice for the same obligation.
type Cache map[PatientServiceWindow][]IterationDay

// NewCache returns an empty cache.
func NewCache() Cache {
	return make(Cache)
}

// Has reports whether (iter, day) is already recorded for req.
func (c Cache) Has(req PatientServiceWindow, entry IterationDay) bool {
	for _, e := range c[req] {
		if e == entry {
			return true
		}
	}
	return false
}

// Add records (iter, day) for req unless it is already present.
func (c Cache) Add(req PatientServiceWindow, entry IterationDay) {
	if c.Has(req, entry) {
		return
	}
	c[req] = append(c[req], entry)
}

// CacheMatch is the outcome of the cache matching MILP: for each cached day
// considered, the iteration whose persisted result is reused to cover it.
type CacheMatch map[DayName]IterationName
