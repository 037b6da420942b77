package graph

import (
	"fmt"
	"slices"

	"github.com/cwbudde/algo-voice/dsp/stage"
)

// router tracks directed connections between stages and compiles the
// render order. Connections form a set: each (src, dst) pair appears at
// most once, in the order it was first made.
//
// Stages are used as map keys, so concrete stage types must be comparable
// (all stages in package stage are pointers).
type router struct {
	out map[stage.Stage][]stage.Stage

	dirty    bool
	order    []stage.Stage
	incoming map[stage.Stage][]stage.Stage
}

func newRouter() *router {
	return &router{
		out:   make(map[stage.Stage][]stage.Stage),
		dirty: true,
	}
}

func (r *router) connect(src, dst stage.Stage) error {
	if !src.Ports().Has(stage.PortOut) {
		return fmt.Errorf("graph: connect %q -> %q: %w: %q has no output", src.Name(), dst.Name(), ErrNoPort, src.Name())
	}

	if !dst.Ports().Has(stage.PortIn) {
		return fmt.Errorf("graph: connect %q -> %q: %w: %q has no input", src.Name(), dst.Name(), ErrNoPort, dst.Name())
	}

	if r.connected(src, dst) {
		return nil
	}

	if src == dst || r.reaches(dst, src) {
		return fmt.Errorf("graph: connect %q -> %q: %w", src.Name(), dst.Name(), ErrCycle)
	}

	r.out[src] = append(r.out[src], dst)
	r.dirty = true

	return nil
}

// disconnect removes the src -> dst edge and reports whether it existed.
func (r *router) disconnect(src, dst stage.Stage) bool {
	outs := r.out[src]

	i := slices.Index(outs, dst)
	if i < 0 {
		return false
	}

	r.out[src] = slices.Delete(outs, i, i+1)
	if len(r.out[src]) == 0 {
		delete(r.out, src)
	}

	r.dirty = true

	return true
}

// disconnectAll removes every outgoing edge of src.
func (r *router) disconnectAll(src stage.Stage) int {
	n := len(r.out[src])
	if n > 0 {
		delete(r.out, src)
		r.dirty = true
	}

	return n
}

func (r *router) connected(src, dst stage.Stage) bool {
	return slices.Contains(r.out[src], dst)
}

func (r *router) outputs(src stage.Stage) []stage.Stage {
	return slices.Clone(r.out[src])
}

// reaches reports whether to is reachable from from.
func (r *router) reaches(from, to stage.Stage) bool {
	seen := map[stage.Stage]struct{}{}
	stack := []stage.Stage{from}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n == to {
			return true
		}

		if _, ok := seen[n]; ok {
			continue
		}

		seen[n] = struct{}{}
		stack = append(stack, r.out[n]...)
	}

	return false
}

// compile returns the stages reachable from roots in topological order
// (Kahn's algorithm) together with each stage's incoming edges, restricted
// to reachable sources. The result is cached until the next mutation.
func (r *router) compile(roots ...stage.Stage) ([]stage.Stage, map[stage.Stage][]stage.Stage) {
	if !r.dirty {
		return r.order, r.incoming
	}

	reachable := make([]stage.Stage, 0, len(r.out)+len(roots))
	seen := make(map[stage.Stage]struct{}, len(r.out)+len(roots))

	for _, root := range roots {
		if _, ok := seen[root]; !ok {
			seen[root] = struct{}{}
			reachable = append(reachable, root)
		}
	}

	for i := 0; i < len(reachable); i++ {
		for _, next := range r.out[reachable[i]] {
			if _, ok := seen[next]; !ok {
				seen[next] = struct{}{}
				reachable = append(reachable, next)
			}
		}
	}

	incoming := make(map[stage.Stage][]stage.Stage, len(reachable))
	indegree := make(map[stage.Stage]int, len(reachable))

	for _, n := range reachable {
		for _, next := range r.out[n] {
			incoming[next] = append(incoming[next], n)
			indegree[next]++
		}
	}

	queue := make([]stage.Stage, 0, len(reachable))

	for _, n := range reachable {
		if indegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	order := make([]stage.Stage, 0, len(reachable))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		order = append(order, n)
		for _, next := range r.out[n] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	r.order = order
	r.incoming = incoming
	r.dirty = false

	return order, incoming
}
