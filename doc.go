// Package search provides a generic state-space search engine.
//
// A domain implements Problem over its own comparable state type and the
// same driver runs breadth-first, depth-first, uniform-cost, greedy or A*
// search over it. It exposes three entry points:
//
//   - Search: run one search to completion and get a Result.
//   - Stepper: advance a search one expansion at a time to drive UIs or debugging tools.
//   - RunAll: run independent searches concurrently on a bounded worker pool.
//
// Every run owns its node arena, frontier and explored set, so nothing is
// shared between concurrent runs as long as the Problem is free of side effects.
package search
