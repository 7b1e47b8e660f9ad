package solver

import (
	"context"
	"sync"
)

// enumerationTree walks the branch-and-bound search space rooted at a single
// LP relaxation, refining the incumbent integer-feasible solution as better
// candidates are found. It does not itself decide how nodes are logged; that
// is delegated entirely to a BnbMiddleware (see instrumentation.go) so the
// search procedure and its observability stay decoupled.
type enumerationTree struct {
	root            subProblem
	instrumentation BnbMiddleware

	mu        sync.Mutex
	nextID    int64
	incumbent *solution
	explored  int
}

func newEnumerationTree(root subProblem, instrumentation BnbMiddleware) *enumerationTree {
	if instrumentation == nil {
		instrumentation = dummyMiddleware{}
	}
	return &enumerationTree{
		root:            root,
		instrumentation: instrumentation,
		nextID:          root.id + 1,
	}
}

// startSearch explores the tree breadth-first, bounding by the best
// incumbent found so far, using up to workers concurrent LP relaxation
// solves per level. It stops early if ctx expires, returning whatever
// incumbent has been found up to that point. The second return value is the
// total number of subproblems explored, useful for logging/diagnostics.
func (t *enumerationTree) startSearch(ctx context.Context, workers int) (*solution, int) {
	if workers < 1 {
		workers = 1
	}

	t.instrumentation.NewSubProblem(t.root)

	frontier := []subProblem{t.root}

	for len(frontier) > 0 {
		if ctx.Err() != nil {
			break
		}

		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup
		var mu sync.Mutex
		var next []subProblem

		for _, p := range frontier {
			if ctx.Err() != nil {
				break
			}

			sem <- struct{}{}
			wg.Add(1)
			go func(p subProblem) {
				defer wg.Done()
				defer func() { <-sem }()

				children := t.exploreNode(p)
				if len(children) == 0 {
					return
				}

				mu.Lock()
				next = append(next, children...)
				mu.Unlock()
			}(p)
		}

		wg.Wait()
		frontier = next
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.incumbent, t.explored
}

// exploreNode solves the LP relaxation of p, classifies the result via a
// bnbDecision, reports it to the instrumentation, and returns the (zero or
// two) child subproblems that should be explored next.
func (t *enumerationTree) exploreNode(p subProblem) []subProblem {
	s := p.solve()

	t.mu.Lock()
	t.explored++
	t.mu.Unlock()

	isRoot := p.id == t.root.id

	if decision, expected := expectedFailures[s.err]; expected {
		t.instrumentation.ProcessDecision(s, decision)
		return nil
	}
	if s.err != nil {
		t.instrumentation.ProcessDecision(s, SUBPROBLEM_NOT_FEASIBLE)
		return nil
	}

	t.mu.Lock()
	worseThanIncumbent := t.incumbent != nil && s.z >= t.incumbent.z
	t.mu.Unlock()

	if worseThanIncumbent {
		t.instrumentation.ProcessDecision(s, WORSE_THAN_INCUMBENT)
		return nil
	}

	if feasibleForIP(p.integralityConstraints, s.x) {
		decision := BETTER_THAN_INCUMBENT_FEASIBLE
		if isRoot {
			decision = INITIAL_RX_FEASIBLE_FOR_IP
		}
		t.instrumentation.ProcessDecision(s, decision)

		t.mu.Lock()
		if t.incumbent == nil || s.z < t.incumbent.z {
			incumbent := s
			t.incumbent = &incumbent
		}
		t.mu.Unlock()
		return nil
	}

	decision := BETTER_THAN_INCUMBENT_BRANCHING
	if isRoot {
		decision = INITIAL_RELAXATION_LEGAL
	}
	t.instrumentation.ProcessDecision(s, decision)

	child1, child2 := s.branch()

	t.mu.Lock()
	child1.id = t.nextID
	child1.parent = p.id
	child2.id = t.nextID + 1
	child2.parent = p.id
	t.nextID += 2
	t.mu.Unlock()

	t.instrumentation.NewSubProblem(child1)
	t.instrumentation.NewSubProblem(child2)

	return []subProblem{child1, child2}
}
