package taskgraph

import "fmt"

// ExecutionPlan groups a graph's tasks into stages: every task in one
// stage can run concurrently because all of its dependencies finished in
// an earlier stage.
type ExecutionPlan struct {
	Stages [][]string
}

// Validate checks for missing dependency references, self-dependencies,
// and cycles, in that order, matching the checks the teacher's dependency
// graph runs before ever attempting a topological sort.
func (g *Graph) Validate() error {
	for taskID, node := range g.nodes {
		for _, dep := range node.DependsOn {
			if _, exists := g.nodes[dep]; !exists {
				return fmt.Errorf("unknown dependency %q in task %q", dep, taskID)
			}
			if dep == taskID {
				return fmt.Errorf("task %q depends on itself", taskID)
			}
		}
	}
	if cycle := g.detectCycle(); cycle != nil {
		return fmt.Errorf("circular dependency detected: %v", cycle)
	}
	return nil
}

// detectCycle runs a DFS with a recursion stack, returning the cycle path
// if one exists.
func (g *Graph) detectCycle() []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var path []string

	var visit func(node string) []string
	visit = func(node string) []string {
		visited[node] = true
		onStack[node] = true
		path = append(path, node)

		for _, dep := range g.nodes[node].DependsOn {
			if !visited[dep] {
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			} else if onStack[dep] {
				start := 0
				for i, n := range path {
					if n == dep {
						start = i
						break
					}
				}
				cycle := append(append([]string{}, path[start:]...), dep)
				return cycle
			}
		}

		onStack[node] = false
		path = path[:len(path)-1]
		return nil
	}

	for _, id := range g.order {
		if !visited[id] {
			if cycle := visit(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// topologicalSort returns every task id in dependency order.
func (g *Graph) topologicalSort() ([]string, error) {
	visited := make(map[string]bool)
	inProgress := make(map[string]bool)
	var result []string

	var visit func(node string) error
	visit = func(node string) error {
		if inProgress[node] {
			return fmt.Errorf("circular dependency detected involving task %q", node)
		}
		if visited[node] {
			return nil
		}
		inProgress[node] = true
		for _, dep := range g.nodes[node].DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		inProgress[node] = false
		visited[node] = true
		result = append(result, node)
		return nil
	}

	for _, id := range g.order {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ExecutionPlan performs a topological sort and groups tasks into
// parallel stages: a task joins the earliest stage in which every one of
// its dependencies has already appeared in an earlier stage. Tasks
// already in a terminal status (Succeeded/Skipped) are omitted, so
// resuming a partially-completed job only re-schedules what's left.
func (g *Graph) ExecutionPlan() (*ExecutionPlan, error) {
	sorted, err := g.topologicalSort()
	if err != nil {
		return nil, err
	}

	var stages [][]string
	done := make(map[string]bool)
	for _, id := range sorted {
		if g.nodes[id].Status == StatusSucceeded || g.nodes[id].Status == StatusSkipped {
			done[id] = true
		}
	}

	for len(done) < len(sorted) {
		var stage []string
		for _, id := range sorted {
			if done[id] {
				continue
			}
			ready := true
			for _, dep := range g.nodes[id].DependsOn {
				if !done[dep] {
					ready = false
					break
				}
			}
			if ready {
				stage = append(stage, id)
			}
		}
		if len(stage) == 0 {
			return nil, fmt.Errorf("unable to build execution plan: no runnable tasks remain but %d are unfinished", len(sorted)-len(done))
		}
		stages = append(stages, stage)
		for _, id := range stage {
			done[id] = true
		}
	}

	return &ExecutionPlan{Stages: stages}, nil
}
