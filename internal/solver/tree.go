package solver

// Branch-and-bound decisions that can be made by the algorithm.
// These are consumed by BnbMiddleware implementations (see instrumentation.go)
// so that tree-walking stays loosely coupled from any particular logging or
// visualisation concern.
type bnbDecision string

const (
	SUBPROBLEM_IS_DEGENERATE        bnbDecision = "subproblem contains a degenerate (singular) matrix"
	SUBPROBLEM_NOT_FEASIBLE         bnbDecision = "subproblem has no feasible solution"
	WORSE_THAN_INCUMBENT            bnbDecision = "worse than incumbent"
	BETTER_THAN_INCUMBENT_BRANCHING bnbDecision = "better than incumbent but infeasible, so branching"
	BETTER_THAN_INCUMBENT_FEASIBLE  bnbDecision = "better than incumbent and feasible, so replacing incumbent"
	INITIAL_RX_FEASIBLE_FOR_IP      bnbDecision = "initial relaxation is feasible for IP"
	INITIAL_RELAXATION_LEGAL       bnbDecision = "initial relaxation is legal"
)

// feasibleForIP reports whether x satisfies every integrality constraint
// within floating-point tolerance. A variable without an integrality
// constraint is never consulted.
func feasibleForIP(integralityConstraints []bool, x []float64) bool {
	const tolerance = 1e-6

	for i, isInteger := range integralityConstraints {
		if !isInteger {
			continue
		}
		remainder := x[i] - float64(int64(x[i]+0.5))
		if remainder < 0 {
			remainder = -remainder
		}
		if remainder > tolerance {
			return false
		}
	}
	return true
}
